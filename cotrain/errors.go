package cotrain

import "fmt"

// InsufficientDataError reports a pool too small for the requested sizes
type InsufficientDataError struct {
	Operation string
	Need      int
	Have      int
}

func (e *InsufficientDataError) Error() string {
	return fmt.Sprintf("%s: insufficient data, need %d examples, have %d", e.Operation, e.Need, e.Have)
}

// TrainingDataError is a classifier fit fault. It means the experiment is
// misconfigured and the run should stop.
type TrainingDataError struct {
	View string
	Err  error
}

func (e *TrainingDataError) Error() string {
	return fmt.Sprintf("fitting view %s: %v", e.View, e.Err)
}

// Unwrap returns the fit error
func (e *TrainingDataError) Unwrap() error { return e.Err }

// Cause returns the fit error for github.com/pkg/errors
func (e *TrainingDataError) Cause() error { return e.Err }

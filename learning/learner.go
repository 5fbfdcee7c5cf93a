// Package learning defines the pluggable base learners of co-training: the
// capability interfaces, the feature vectorizing pipeline and model artifacts.
package learning

import "github.com/pkg/errors"

import "github.com/neurlang/cotrain/datasets"

var (
	// ErrNotProbabilistic is returned when a model can't score confidences
	ErrNotProbabilistic = errors.New("classifier is not probabilistic")

	// ErrSingleClass is returned when training data holds only one class
	ErrSingleClass = errors.New("training data holds a single class")

	// ErrEmptyTraining is returned when there is nothing to train on
	ErrEmptyTraining = errors.New("training data is empty")
)

// Trainer fits a fresh model on labeled feature vectors. Trainers hold only
// hyperparameters; a fit never changes the trainer or an earlier model.
type Trainer interface {
	Fit(X []datasets.Vector, y []bool) (Model, error)
	Name() string
}

// Model is an immutable trained binary classifier
type Model interface {
	Predict(X []datasets.Vector) []bool
	Kind() string
}

// ConfidenceScorer is implemented by models which can score how likely each
// vector is to be positive, in the range 0 to 1
type ConfidenceScorer interface {
	Confidence(X []datasets.Vector) []float64
}

// ScoreResult is either a list of scores or the statement that the model
// could not produce any
type ScoreResult struct {
	Scored bool
	Values []float64
}

// Scored wraps the scores into a result
func Scored(values []float64) ScoreResult {
	return ScoreResult{Scored: true, Values: values}
}

// Unscored is the result of a model without confidence scoring
func Unscored() ScoreResult {
	return ScoreResult{}
}

// Err converts an unscored result into ErrNotProbabilistic
func (r ScoreResult) Err() error {
	if !r.Scored {
		return ErrNotProbabilistic
	}
	return nil
}

// Score asks the model for confidences if it is able to give them
func Score(m Model, X []datasets.Vector) ScoreResult {
	if cs, ok := m.(ConfidenceScorer); ok {
		return Scored(cs.Confidence(X))
	}
	return Unscored()
}

// CheckTraining validates the shape and the classes of training data
func CheckTraining(X []datasets.Vector, y []bool) error {
	if len(X) != len(y) {
		return errors.Errorf("%d vectors but %d labels", len(X), len(y))
	}
	if len(y) == 0 {
		return ErrEmptyTraining
	}
	var positives int
	for _, v := range y {
		if v {
			positives++
		}
	}
	if positives == 0 || positives == len(y) {
		return errors.Wrapf(ErrSingleClass, "%d positive of %d", positives, len(y))
	}
	return nil
}

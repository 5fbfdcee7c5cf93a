package datasets

import "github.com/pkg/errors"

// Label is the ternary class of an example
type Label int8

const (
	// Unlabeled examples have not been tagged or promoted yet
	Unlabeled Label = iota
	// Negative examples belong to the negative class
	Negative
	// Positive examples belong to the positive class
	Positive
)

// LabelOf converts a boolean class into a Label
func LabelOf(positive bool) Label {
	if positive {
		return Positive
	}
	return Negative
}

// Bool reports the class of the label and whether the label is set at all
func (l Label) Bool() (positive bool, ok bool) {
	return l == Positive, l == Positive || l == Negative
}

func (l Label) String() string {
	switch l {
	case Positive:
		return "positive"
	case Negative:
		return "negative"
	default:
		return "unlabeled"
	}
}

// MarshalJSON encodes the label as true, false or null
func (l Label) MarshalJSON() ([]byte, error) {
	switch l {
	case Positive:
		return []byte("true"), nil
	case Negative:
		return []byte("false"), nil
	default:
		return []byte("null"), nil
	}
}

// UnmarshalJSON decodes true, false or null
func (l *Label) UnmarshalJSON(b []byte) error {
	switch string(b) {
	case "true":
		*l = Positive
	case "false":
		*l = Negative
	case "null":
		*l = Unlabeled
	default:
		return errors.Errorf("invalid label %q", b)
	}
	return nil
}

package datasets

// Vector is a sparse feature dictionary
type Vector map[string]float64

// Example is a record with its label and the feature views derived from it.
// Views are shared between copies of an example and must not be modified.
type Example struct {
	ID     string            `json:"id"`
	Label  Label             `json:"label"`
	Views  map[string]Vector `json:"views"`
	Record *Record           `json:"record,omitempty"`
}

// WithLabel returns a copy of the example carrying the label l
func (e Example) WithLabel(l Label) Example {
	e.Label = l
	return e
}

// IDSet is a set of example identities
type IDSet map[string]struct{}

// SetOf collects the identities of examples
func SetOf(examples []Example) IDSet {
	s := make(IDSet, len(examples))
	for _, e := range examples {
		s[e.ID] = struct{}{}
	}
	return s
}

// Has reports whether id is in the set
func (s IDSet) Has(id string) bool {
	_, ok := s[id]
	return ok
}

// Without returns the examples whose identity is not in s, keeping their order
func Without(examples []Example, s IDSet) []Example {
	out := make([]Example, 0, len(examples))
	for _, e := range examples {
		if !s.Has(e.ID) {
			out = append(out, e)
		}
	}
	return out
}

// Clone copies the slice, not the examples' views
func Clone(examples []Example) []Example {
	if examples == nil {
		return nil
	}
	return append(make([]Example, 0, len(examples)), examples...)
}

// Labels extracts the boolean class of every labeled example. ok is false
// when any example is unlabeled.
func Labels(examples []Example) (y []bool, ok bool) {
	y = make([]bool, len(examples))
	for i, e := range examples {
		positive, set := e.Label.Bool()
		if !set {
			return nil, false
		}
		y[i] = positive
	}
	return y, true
}

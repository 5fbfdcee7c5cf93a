package learning

import "math"

// Preprocessor is the optional stage between the vectorizer and the learner.
// A nil Preprocessor in a Pipeline means the rows pass unchanged.
type Preprocessor interface {
	Transform(rows []SparseRow) []SparseRow
	Kind() string
}

// MaxAbsScaler divides every column by its largest absolute training value
type MaxAbsScaler struct {
	Scale []float64 `json:"scale"`
}

// FitMaxAbsScaler learns the column scales of the rows
func FitMaxAbsScaler(rows []SparseRow, dim int) *MaxAbsScaler {
	scale := make([]float64, dim)
	for _, r := range rows {
		for k, j := range r.Index {
			if a := math.Abs(r.Value[k]); a > scale[j] {
				scale[j] = a
			}
		}
	}
	return &MaxAbsScaler{Scale: scale}
}

// Transform implements Preprocessor
func (m *MaxAbsScaler) Transform(rows []SparseRow) []SparseRow {
	out := make([]SparseRow, len(rows))
	for i, r := range rows {
		row := SparseRow{Index: r.Index, Value: make([]float64, len(r.Value))}
		for k, j := range r.Index {
			if j < len(m.Scale) && m.Scale[j] != 0 {
				row.Value[k] = r.Value[k] / m.Scale[j]
			} else {
				row.Value[k] = r.Value[k]
			}
		}
		out[i] = row
	}
	return out
}

// Kind implements Preprocessor
func (m *MaxAbsScaler) Kind() string { return MaxAbsPreprocessor }

// Normalizer scales every row to unit euclidean length
type Normalizer struct{}

// Transform implements Preprocessor
func (Normalizer) Transform(rows []SparseRow) []SparseRow {
	out := make([]SparseRow, len(rows))
	for i, r := range rows {
		var norm float64
		for _, v := range r.Value {
			norm += v * v
		}
		norm = math.Sqrt(norm)
		row := SparseRow{Index: r.Index, Value: make([]float64, len(r.Value))}
		for k, v := range r.Value {
			if norm > 0 {
				v /= norm
			}
			row.Value[k] = v
		}
		out[i] = row
	}
	return out
}

// Kind implements Preprocessor
func (Normalizer) Kind() string { return L2Preprocessor }

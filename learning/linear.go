package learning

import "math"

// Linear is a weight vector with an intercept over transformed rows
type Linear struct {
	Weights []float64 `json:"weights"`
	Bias    float64   `json:"bias"`
}

// Decision returns the signed distance of every row from the hyperplane
func (l *Linear) Decision(rows []SparseRow) []float64 {
	out := make([]float64, len(rows))
	for i, r := range rows {
		out[i] = r.Dot(l.Weights) + l.Bias
	}
	return out
}

// Sigmoid is the logistic function, clamped to avoid overflow
func Sigmoid(z float64) float64 {
	if z > 35 {
		z = 35
	} else if z < -35 {
		z = -35
	}
	return 1 / (1 + math.Exp(-z))
}

// Package sgd implements a logistic regression learner fitted by stochastic
// gradient descent with an elastic-net penalty
package sgd

import "encoding/json"
import "math"

import "github.com/neurlang/cotrain/datasets"
import "github.com/neurlang/cotrain/learning"

// Kind is the registered model kind
const Kind = "sgd"

func init() {
	learning.Register(Kind, decode)
}

// HyperParameters of the SGD learner
type HyperParameters struct {
	learning.HyperParameters

	Alpha   float64 // regularization strength
	L1Ratio float64 // share of the L1 term in the elastic-net penalty
	Epochs  int     // passes over the training rows
}

// New returns the default SGD learner
func New() *HyperParameters {
	return &HyperParameters{
		Alpha:   1e-5,
		L1Ratio: 0.15,
		Epochs:  20,
	}
}

// Name implements learning.Trainer
func (h *HyperParameters) Name() string {
	return Kind
}

// Fit implements learning.Trainer
func (h *HyperParameters) Fit(X []datasets.Vector, y []bool) (learning.Model, error) {
	if err := learning.CheckTraining(X, y); err != nil {
		return nil, err
	}
	pipeline, err := h.FitPipeline(X)
	if err != nil {
		return nil, err
	}
	rows := pipeline.Transform(X)

	alpha := h.Alpha
	if alpha <= 0 {
		alpha = 1e-5
	}
	epochs := h.Epochs
	if epochs <= 0 {
		epochs = 1
	}

	// optimal learning rate: eta = 1 / (alpha * (t0 + t))
	typw := math.Sqrt(1 / math.Sqrt(alpha))
	eta0 := typw / math.Max(1, logLossGradient(-typw, 1))
	t0 := 1 / (eta0 * alpha)

	dim := pipeline.Dim()
	w := make([]float64, dim)
	q := make([]float64, dim) // cumulative L1 penalty applied per weight
	var wscale = 1.0
	var bias float64
	var u float64 // cumulative L1 penalty available per weight
	var t = 1.0

	order := h.Shuffle(len(rows))
	for epoch := 0; epoch < epochs; epoch++ {
		for _, i := range order {
			row := rows[i]
			target := -1.0
			if y[i] {
				target = 1
			}
			eta := 1 / (alpha * (t0 + t - 1))
			p := row.Dot(w)*wscale + bias
			update := eta * logLossGradient(p, target)

			wscale *= math.Max(0, 1-(1-h.L1Ratio)*eta*alpha)
			if update != 0 {
				for k, j := range row.Index {
					w[j] += update * row.Value[k] / wscale
				}
				bias += update
			}
			if h.L1Ratio > 0 {
				u += h.L1Ratio * eta * alpha
				for _, j := range row.Index {
					z := w[j]
					if z > 0 {
						w[j] = math.Max(0, w[j]-(u+q[j])/wscale)
					} else if z < 0 {
						w[j] = math.Min(0, w[j]+(u-q[j])/wscale)
					}
					q[j] += wscale * (w[j] - z)
				}
			}
			if wscale < 1e-9 {
				for j := range w {
					w[j] *= wscale
				}
				wscale = 1
			}
			t++
		}
	}
	for j := range w {
		w[j] *= wscale
	}
	return &Model{pipeline: pipeline, linear: learning.Linear{Weights: w, Bias: bias}}, nil
}

// logLossGradient is the negated log loss derivative with respect to p
func logLossGradient(p, y float64) float64 {
	z := p * y
	if z > 18 {
		return y * math.Exp(-z)
	}
	if z < -18 {
		return y
	}
	return y / (math.Exp(z) + 1)
}

// Model is a fitted logistic regression
type Model struct {
	pipeline *learning.Pipeline
	linear   learning.Linear
}

// Predict implements learning.Model
func (m *Model) Predict(X []datasets.Vector) []bool {
	d := m.linear.Decision(m.pipeline.Transform(X))
	out := make([]bool, len(d))
	for i := range d {
		out[i] = d[i] > 0
	}
	return out
}

// Confidence implements learning.ConfidenceScorer
func (m *Model) Confidence(X []datasets.Vector) []float64 {
	d := m.linear.Decision(m.pipeline.Transform(X))
	for i := range d {
		d[i] = learning.Sigmoid(d[i])
	}
	return d
}

// Kind implements learning.Model
func (m *Model) Kind() string { return Kind }

// Pipeline implements learning.Persistable
func (m *Model) Pipeline() *learning.Pipeline { return m.pipeline }

// Params implements learning.Persistable
func (m *Model) Params() interface{} { return &m.linear }

func decode(params json.RawMessage, pipeline *learning.Pipeline) (learning.Model, error) {
	m := &Model{pipeline: pipeline}
	if err := json.Unmarshal(params, &m.linear); err != nil {
		return nil, err
	}
	return m, nil
}

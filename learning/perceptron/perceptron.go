// Package perceptron implements the averaged perceptron. It predicts labels
// only and has no confidence scores, so co-training can't rank with it.
package perceptron

import "encoding/json"

import "github.com/neurlang/cotrain/datasets"
import "github.com/neurlang/cotrain/learning"

// Kind is the registered model kind
const Kind = "perceptron"

func init() {
	learning.Register(Kind, decode)
}

// HyperParameters of the averaged perceptron
type HyperParameters struct {
	learning.HyperParameters

	Epochs int
}

// New returns the default perceptron learner
func New() *HyperParameters {
	return &HyperParameters{Epochs: 10}
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
	dim := pipeline.Dim()

	w := make([]float64, dim)
	acc := make([]float64, dim) // updates weighted by the step they happened at
	var bias, accBias float64
	var c = 1.0

	order := h.Shuffle(len(rows))
	for epoch := 0; epoch < h.Epochs; epoch++ {
		for _, i := range order {
			r := rows[i]
			target := -1.0
			if y[i] {
				target = 1
			}
			if target*(r.Dot(w)+bias) <= 0 {
				for k, j := range r.Index {
					w[j] += target * r.Value[k]
					acc[j] += c * target * r.Value[k]
				}
				bias += target
				accBias += c * target
			}
			c++
		}
	}
	for j := range w {
		w[j] -= acc[j] / c
	}
	bias -= accBias / c
	return &Model{pipeline: pipeline, linear: learning.Linear{Weights: w, Bias: bias}}, nil
}

// Model is a fitted averaged perceptron
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

// Package bayes implements naive Bayes learners over the transformed rows
package bayes

import "encoding/json"
import "math"

import "github.com/neurlang/cotrain/datasets"
import "github.com/neurlang/cotrain/learning"

// Kind is the registered model kind
const Kind = "bayes"

func init() {
	learning.Register(Kind, decode)
}

// HyperParameters of naive Bayes
type HyperParameters struct {
	learning.HyperParameters

	Alpha     float64 // additive (Laplace) smoothing
	Bernoulli bool    // binary feature presence instead of multinomial counts
}

// New returns multinomial naive Bayes with Laplace smoothing
func New() *HyperParameters {
	return &HyperParameters{Alpha: 1}
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
	alpha := h.Alpha
	if alpha <= 0 {
		alpha = 1
	}

	var classCount [2]float64
	var featureCount [2][]float64
	featureCount[0] = make([]float64, dim)
	featureCount[1] = make([]float64, dim)
	for i, r := range rows {
		c := class(y[i])
		classCount[c]++
		for k, j := range r.Index {
			featureCount[c][j] += h.value(r.Value[k])
		}
	}

	p := Params{Bernoulli: h.Bernoulli}
	for c := 0; c < 2; c++ {
		p.ClassLogPrior[c] = math.Log(classCount[c] / float64(len(rows)))
		p.FeatureLogProb[c] = make([]float64, dim)
		if h.Bernoulli {
			p.NegLogProb[c] = make([]float64, dim)
			for j := 0; j < dim; j++ {
				prob := (featureCount[c][j] + alpha) / (classCount[c] + 2*alpha)
				p.FeatureLogProb[c][j] = math.Log(prob)
				p.NegLogProb[c][j] = math.Log(1 - prob)
			}
			continue
		}
		var total float64
		for _, v := range featureCount[c] {
			total += v
		}
		total += alpha * float64(dim)
		for j := 0; j < dim; j++ {
			p.FeatureLogProb[c][j] = math.Log((featureCount[c][j] + alpha) / total)
		}
	}
	return &Model{pipeline: pipeline, params: p}, nil
}

func (h *HyperParameters) value(v float64) float64 {
	if h.Bernoulli {
		if v > 0 {
			return 1
		}
		return 0
	}
	return math.Max(0, v)
}

func class(positive bool) int {
	if positive {
		return 1
	}
	return 0
}

// Params are the fitted log probabilities, index 1 is the positive class
type Params struct {
	Bernoulli      bool         `json:"bernoulli"`
	ClassLogPrior  [2]float64   `json:"class_log_prior"`
	FeatureLogProb [2][]float64 `json:"feature_log_prob"`
	NegLogProb     [2][]float64 `json:"neg_log_prob,omitempty"`
}

// Model is a fitted naive Bayes classifier
type Model struct {
	pipeline *learning.Pipeline
	params   Params
}

// jointLogLikelihood returns the positive minus negative class log likelihood
func (m *Model) jointLogLikelihood(X []datasets.Vector) []float64 {
	rows := m.pipeline.Transform(X)
	p := &m.params

	var absent [2]float64
	if p.Bernoulli {
		for c := 0; c < 2; c++ {
			for _, v := range p.NegLogProb[c] {
				absent[c] += v
			}
		}
	}
	out := make([]float64, len(rows))
	for i, r := range rows {
		var jll [2]float64
		for c := 0; c < 2; c++ {
			jll[c] = p.ClassLogPrior[c] + absent[c]
			for k, j := range r.Index {
				if p.Bernoulli {
					if r.Value[k] > 0 {
						jll[c] += p.FeatureLogProb[c][j] - p.NegLogProb[c][j]
					}
				} else {
					jll[c] += math.Max(0, r.Value[k]) * p.FeatureLogProb[c][j]
				}
			}
		}
		out[i] = jll[1] - jll[0]
	}
	return out
}

// Predict implements learning.Model
func (m *Model) Predict(X []datasets.Vector) []bool {
	d := m.jointLogLikelihood(X)
	out := make([]bool, len(d))
	for i := range d {
		out[i] = d[i] > 0
	}
	return out
}

// Confidence implements learning.ConfidenceScorer
func (m *Model) Confidence(X []datasets.Vector) []float64 {
	d := m.jointLogLikelihood(X)
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
func (m *Model) Params() interface{} { return &m.params }

func decode(params json.RawMessage, pipeline *learning.Pipeline) (learning.Model, error) {
	m := &Model{pipeline: pipeline}
	if err := json.Unmarshal(params, &m.params); err != nil {
		return nil, err
	}
	return m, nil
}

package cotrain

import (
	"math"

	"github.com/pkg/errors"

	"github.com/neurlang/cotrain/datasets"
	"github.com/neurlang/cotrain/features"
	"github.com/neurlang/cotrain/learning"
)

// Combination merges the positive class probabilities of the views
type Combination int

const (
	// Product compares the product of p against the product of 1-p
	Product Combination = iota
	// Mean averages p
	Mean
	// Max takes p of the view farthest from indecision
	Max
)

// ParseCombination parses "product", "mean" or "max"
func ParseCombination(s string) (Combination, error) {
	switch s {
	case "", "product":
		return Product, nil
	case "mean":
		return Mean, nil
	case "max":
		return Max, nil
	}
	return 0, errors.Errorf("unknown combination %q", s)
}

// Combined scores examples with every view jointly. It is used for
// evaluation only, selection always works per view.
type Combined struct {
	Views       []View
	Combination Combination
}

// Confidence returns the combined probability of the positive class, or an
// unscored result when some view can't score
func (c *Combined) Confidence(examples []datasets.Example) learning.ScoreResult {
	if len(c.Views) == 0 {
		return learning.Unscored()
	}
	scores := make([][]float64, len(c.Views))
	for v, view := range c.Views {
		if view.Model == nil {
			return learning.Unscored()
		}
		r := learning.Score(view.Model, features.RestrictAll(examples, view.Subset))
		if !r.Scored {
			return r
		}
		scores[v] = r.Values
	}

	out := make([]float64, len(examples))
	for i := range out {
		switch c.Combination {
		case Mean:
			var sum float64
			for v := range scores {
				sum += scores[v][i]
			}
			out[i] = sum / float64(len(scores))
		case Max:
			best := scores[0][i]
			for v := range scores[1:] {
				if p := scores[v+1][i]; math.Abs(p-0.5) > math.Abs(best-0.5) {
					best = p
				}
			}
			out[i] = best
		default:
			pos, neg := 1.0, 1.0
			for v := range scores {
				pos *= scores[v][i]
				neg *= 1 - scores[v][i]
			}
			if pos+neg == 0 {
				out[i] = 0.5
			} else {
				out[i] = pos / (pos + neg)
			}
		}
	}
	return learning.Scored(out)
}

// Predict labels examples positive when the combined probability is above
// one half. Without confidence scores from every view it fails with
// learning.ErrNotProbabilistic.
func (c *Combined) Predict(examples []datasets.Example) ([]bool, error) {
	r := c.Confidence(examples)
	if err := r.Err(); err != nil {
		return nil, err
	}
	out := make([]bool, len(r.Values))
	for i, p := range r.Values {
		out[i] = p > 0.5
	}
	return out, nil
}

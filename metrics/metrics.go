// Package metrics accumulates per fold evaluation results over the
// co-training iterations and averages them across folds.
package metrics

import (
	"sort"
	"sync"

	"github.com/montanaflynn/stats"
	"github.com/pkg/errors"

	"github.com/neurlang/cotrain/datasets"
)

// Scorer labels examples. Per view classifiers and the combined view both
// implement it; an error means nothing is recorded.
type Scorer interface {
	Predict(examples []datasets.Example) ([]bool, error)
}

// Result holds the binary classification metrics of the positive class
type Result struct {
	Accuracy  float64 `json:"accuracy"`
	Precision float64 `json:"precision"`
	Recall    float64 `json:"recall"`
	FMeasure  float64 `json:"f_measure"`
}

// Evaluate compares predictions with the ground truth
func Evaluate(truth, predicted []bool) Result {
	var tp, fp, fn, correct float64
	for i := range truth {
		switch {
		case truth[i] && predicted[i]:
			tp++
		case !truth[i] && predicted[i]:
			fp++
		case truth[i] && !predicted[i]:
			fn++
		}
		if truth[i] == predicted[i] {
			correct++
		}
	}
	var r Result
	if len(truth) > 0 {
		r.Accuracy = correct / float64(len(truth))
	}
	if tp+fp > 0 {
		r.Precision = tp / (tp + fp)
	}
	if tp+fn > 0 {
		r.Recall = tp / (tp + fn)
	}
	if r.Precision+r.Recall > 0 {
		r.FMeasure = 2 * r.Precision * r.Recall / (r.Precision + r.Recall)
	}
	return r
}

// Point is the fold average of one iteration
type Point struct {
	Iteration int
	Folds     int // folds which contributed
	Result
}

// Accumulator collects results per name and fold, safe for concurrent use
type Accumulator struct {
	mu         sync.Mutex
	numFolds   int
	names      []string
	pending    map[string]map[int]Result
	trajectory map[string][]Point
}

// NewAccumulator creates an accumulator for the named scorers
func NewAccumulator(numFolds int, names []string) *Accumulator {
	a := &Accumulator{
		numFolds:   numFolds,
		names:      append([]string(nil), names...),
		pending:    make(map[string]map[int]Result),
		trajectory: make(map[string][]Point),
	}
	for _, n := range names {
		a.pending[n] = make(map[int]Result)
	}
	return a
}

// Names lists the scorer names in the order given at construction
func (a *Accumulator) Names() []string {
	return append([]string(nil), a.names...)
}

// Add evaluates scorer on the testing examples of fold and records the
// result under name until the next Average. A scorer error is returned
// unchanged and nothing is recorded.
func (a *Accumulator) Add(fold int, name string, scorer Scorer, testing []datasets.Example) error {
	if fold < 0 || fold >= a.numFolds {
		return errors.Errorf("fold %d out of range [0, %d)", fold, a.numFolds)
	}
	truth, ok := datasets.Labels(testing)
	if !ok {
		return errors.New("testing data holds unlabeled examples")
	}
	predicted, err := scorer.Predict(testing)
	if err != nil {
		return err
	}
	if len(predicted) != len(truth) {
		return errors.Errorf("%d predictions for %d examples", len(predicted), len(truth))
	}
	r := Evaluate(truth, predicted)

	a.mu.Lock()
	defer a.mu.Unlock()
	folds, ok := a.pending[name]
	if !ok {
		return errors.Errorf("unknown metric name %q", name)
	}
	folds[fold] = r
	return nil
}

// Average closes the iteration for name: the recorded fold results are
// averaged and appended to its trajectory. It reports false when no fold
// recorded anything.
func (a *Accumulator) Average(name string, iteration int) (Point, bool) {
	a.mu.Lock()
	defer a.mu.Unlock()
	folds := a.pending[name]
	if len(folds) == 0 {
		return Point{}, false
	}
	order := make([]int, 0, len(folds))
	for f := range folds {
		order = append(order, f)
	}
	sort.Ints(order)

	var acc, prec, rec, fm stats.Float64Data
	for _, f := range order {
		r := folds[f]
		acc = append(acc, r.Accuracy)
		prec = append(prec, r.Precision)
		rec = append(rec, r.Recall)
		fm = append(fm, r.FMeasure)
	}
	p := Point{Iteration: iteration, Folds: len(order)}
	p.Accuracy, _ = stats.Mean(acc)
	p.Precision, _ = stats.Mean(prec)
	p.Recall, _ = stats.Mean(rec)
	p.FMeasure, _ = stats.Mean(fm)

	a.trajectory[name] = append(a.trajectory[name], p)
	a.pending[name] = make(map[int]Result)
	return p, true
}

// Trajectory returns the averaged points of name
func (a *Accumulator) Trajectory(name string) []Point {
	a.mu.Lock()
	defer a.mu.Unlock()
	return append([]Point(nil), a.trajectory[name]...)
}

// FMeasures returns the averaged F-measure trajectory of every name
func (a *Accumulator) FMeasures() map[string][]float64 {
	a.mu.Lock()
	defer a.mu.Unlock()
	out := make(map[string][]float64, len(a.names))
	for _, n := range a.names {
		fs := make([]float64, len(a.trajectory[n]))
		for i, p := range a.trajectory[n] {
			fs[i] = p.FMeasure
		}
		out[n] = fs
	}
	return out
}

// Spread is the standard deviation of a name's F-measure over iterations
func (a *Accumulator) Spread(name string) float64 {
	var fs stats.Float64Data
	for _, p := range a.Trajectory(name) {
		fs = append(fs, p.FMeasure)
	}
	sd, err := stats.StandardDeviation(fs)
	if err != nil {
		return 0
	}
	return sd
}

// Iterations is the number of iterations averaged for any name
func (a *Accumulator) Iterations() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	var n int
	for _, points := range a.trajectory {
		if len(points) > 0 && points[len(points)-1].Iteration+1 > n {
			n = points[len(points)-1].Iteration + 1
		}
	}
	return n
}

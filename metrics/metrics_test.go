package metrics

import (
	"bytes"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/neurlang/cotrain/datasets"
)

var errNotProbabilistic = errors.New("classifier is not probabilistic")

type fixed []bool

func (f fixed) Predict(examples []datasets.Example) ([]bool, error) {
	return f[:len(examples)], nil
}

type failing struct{}

func (failing) Predict([]datasets.Example) ([]bool, error) {
	return nil, errNotProbabilistic
}

func testing4() []datasets.Example {
	return []datasets.Example{
		{ID: "1", Label: datasets.Positive},
		{ID: "2", Label: datasets.Positive},
		{ID: "3", Label: datasets.Negative},
		{ID: "4", Label: datasets.Negative},
	}
}

func TestEvaluate(t *testing.T) {
	r := Evaluate([]bool{true, true, false, false}, []bool{true, false, true, false})
	assert.Equal(t, Result{Accuracy: 0.5, Precision: 0.5, Recall: 0.5, FMeasure: 0.5}, r)

	r = Evaluate([]bool{true, false}, []bool{false, false})
	assert.Equal(t, Result{Accuracy: 0.5}, r)

	assert.Equal(t, Result{}, Evaluate(nil, nil))
}

func TestAverage(t *testing.T) {
	a := NewAccumulator(2, []string{"semantic", "combined"})
	require.NoError(t, a.Add(0, "semantic", fixed{true, true, false, false}, testing4()))
	require.NoError(t, a.Add(1, "semantic", fixed{true, false, true, false}, testing4()))

	p, ok := a.Average("semantic", 0)
	require.True(t, ok)
	assert.Equal(t, 2, p.Folds)
	assert.InDelta(t, 0.75, p.Accuracy, 1e-12)
	assert.InDelta(t, 0.75, p.FMeasure, 1e-12)

	_, ok = a.Average("semantic", 1)
	assert.False(t, ok, "results are cleared by Average")
	assert.Len(t, a.Trajectory("semantic"), 1)
	assert.Equal(t, 1, a.Iterations())
}

func TestNotProbabilisticSkipsCombinedOnly(t *testing.T) {
	a := NewAccumulator(2, []string{"semantic", "combined"})
	for fold := 0; fold < 2; fold++ {
		assert.NoError(t, a.Add(fold, "semantic", fixed{true, true, false, false}, testing4()))
		err := a.Add(fold, "combined", failing{}, testing4())
		assert.Equal(t, errNotProbabilistic, err)
	}
	_, ok := a.Average("semantic", 0)
	assert.True(t, ok)
	_, ok = a.Average("combined", 0)
	assert.False(t, ok)

	assert.Equal(t, map[string][]float64{"semantic": {1}, "combined": {}}, a.FMeasures())
}

func TestAddErrors(t *testing.T) {
	a := NewAccumulator(2, []string{"semantic"})
	assert.Error(t, a.Add(2, "semantic", fixed{true}, testing4()[:1]))
	assert.Error(t, a.Add(0, "lexical", fixed{true}, testing4()[:1]))
	assert.Error(t, a.Add(0, "semantic", fixed{true}, []datasets.Example{{ID: "x"}}))
}

func TestConcurrentAdd(t *testing.T) {
	a := NewAccumulator(8, []string{"semantic"})
	var wg sync.WaitGroup
	for fold := 0; fold < 8; fold++ {
		wg.Add(1)
		go func(fold int) {
			defer wg.Done()
			assert.NoError(t, a.Add(fold, "semantic", fixed{true, true, false, false}, testing4()))
		}(fold)
	}
	wg.Wait()
	p, ok := a.Average("semantic", 0)
	require.True(t, ok)
	assert.Equal(t, 8, p.Folds)
}

func TestSpread(t *testing.T) {
	a := NewAccumulator(1, []string{"semantic"})
	require.NoError(t, a.Add(0, "semantic", fixed{true, true, false, false}, testing4()))
	a.Average("semantic", 0)
	require.NoError(t, a.Add(0, "semantic", fixed{true, false, true, false}, testing4()))
	a.Average("semantic", 1)
	assert.InDelta(t, 0.25, a.Spread("semantic"), 1e-12)
	assert.Zero(t, a.Spread("missing"))
}

func TestSavePlot(t *testing.T) {
	a := NewAccumulator(1, []string{"syntactic+lexical+structural", "semantic", "combined"})
	dir := t.TempDir()

	// a run stopped before its first iteration still gets its plot
	empty := filepath.Join(dir, "empty.png")
	require.NoError(t, a.SavePlot(empty))
	data, err := os.ReadFile(empty)
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(data, []byte("\x89PNG")))

	for i := 0; i < 3; i++ {
		require.NoError(t, a.Add(0, "semantic", fixed{true, i > 0, false, false}, testing4()))
		require.NoError(t, a.Add(0, "syntactic+lexical+structural", fixed{true, true, i > 1, false}, testing4()))
		a.Average("semantic", i)
		a.Average("syntactic+lexical+structural", i)
	}
	path := filepath.Join(dir, "cotrain_sgd_2_2_10_2.png")
	require.NoError(t, a.SavePlot(path))
	data, err = os.ReadFile(path)
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(data, []byte("\x89PNG")))
}

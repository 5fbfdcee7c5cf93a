package perceptron

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/neurlang/cotrain/datasets"
	"github.com/neurlang/cotrain/learning"
)

func separable() ([]datasets.Vector, []bool) {
	return []datasets.Vector{
			{"w:yes": 1}, {"w:yes": 1, "w:maybe": 1}, {"w:no": 1}, {"w:no": 1, "w:maybe": 1},
		},
		[]bool{true, true, false, false}
}

func TestFitSeparable(t *testing.T) {
	X, y := separable()
	m, err := New().Fit(X, y)
	require.NoError(t, err)
	assert.Equal(t, y, m.Predict(X))
}

func TestNotProbabilistic(t *testing.T) {
	X, y := separable()
	m, err := New().Fit(X, y)
	require.NoError(t, err)

	r := learning.Score(m, X)
	assert.False(t, r.Scored)
	assert.Equal(t, learning.ErrNotProbabilistic, r.Err())
}

func TestSaveLoad(t *testing.T) {
	X, y := separable()
	m, err := New().Fit(X, y)
	require.NoError(t, err)

	name := filepath.Join(t.TempDir(), "model")
	require.NoError(t, learning.Save(name, m))
	loaded, err := learning.Load(name)
	require.NoError(t, err)
	assert.Equal(t, Kind, loaded.Kind())
	assert.Equal(t, m.Predict(X), loaded.Predict(X))
}

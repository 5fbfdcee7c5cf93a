package cotrain

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/neurlang/cotrain/datasets"
)

func members(f Fold) map[string]map[string]datasets.Label {
	out := make(map[string]map[string]datasets.Label)
	for name, set := range map[string][]datasets.Example{
		"training": f.Training, "testing": f.Testing, "untagged": f.Untagged, "reserve": f.Reserve,
	} {
		out[name] = byID(set)
	}
	return out
}

func TestSnapshotRoundTrip(t *testing.T) {
	h := newTestHandler(t, 0)
	c := NewCotrainer(&stubTrainer{probabilistic: true}, testSubsets)
	round(t, h, c, 0, 2, 2)

	for _, name := range []string{"dump.json", "dump.json.sz"} {
		t.Run(name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), name)
			require.NoError(t, h.WriteJSON(path))

			loaded := NewHandler(99, 99)
			require.NoError(t, loaded.LoadJSON(path))
			assert.Equal(t, h.RunID(), loaded.RunID())
			assert.Equal(t, h.Unlabeled(), loaded.Unlabeled())
			assert.Equal(t, h.Subsets(), loaded.Subsets())
			require.Equal(t, h.NumFolds(), loaded.NumFolds())
			for i := 0; i < h.NumFolds(); i++ {
				assert.Equal(t, h.Counts(i), loaded.Counts(i))
				assert.Equal(t, members(h.Fold(i)), members(loaded.Fold(i)))
			}

			var a, b bytes.Buffer
			require.NoError(t, h.Encode(&a))
			require.NoError(t, loaded.Encode(&b))
			assert.JSONEq(t, a.String(), b.String())
		})
	}
}

func TestSnapshotCompressed(t *testing.T) {
	h := newTestHandler(t, 0)
	dir := t.TempDir()
	require.NoError(t, h.WriteJSON(filepath.Join(dir, "plain.json")))
	require.NoError(t, h.WriteJSON(filepath.Join(dir, "small.sz")))

	plain, err := os.Stat(filepath.Join(dir, "plain.json"))
	require.NoError(t, err)
	small, err := os.Stat(filepath.Join(dir, "small.sz"))
	require.NoError(t, err)
	assert.Less(t, small.Size(), plain.Size())
}

func TestSnapshotLoadedHandlerKeepsWorking(t *testing.T) {
	h := newTestHandler(t, 0)
	path := filepath.Join(t.TempDir(), "dump.json")
	require.NoError(t, h.WriteJSON(path))

	loaded := NewHandler(0, 0)
	require.NoError(t, loaded.LoadJSON(path))
	c := NewCotrainer(&stubTrainer{probabilistic: true}, testSubsets)
	round(t, loaded, c, 1, 1, 1)
	assert.Equal(t, 10, loaded.Counts(1).Untagged)
	assertPartition(t, loaded.Fold(1))
}

func TestSnapshotErrors(t *testing.T) {
	dir := t.TempDir()
	bad := filepath.Join(dir, "bad.json")
	require.NoError(t, os.WriteFile(bad, []byte(`{"version":2,"folds":[{}]}`), 0o644))
	assert.Error(t, NewHandler(0, 10).LoadJSON(bad))

	empty := filepath.Join(dir, "empty.json")
	require.NoError(t, os.WriteFile(empty, []byte(`{"version":1,"folds":[]}`), 0o644))
	assert.Error(t, NewHandler(0, 10).LoadJSON(empty))

	assert.Error(t, NewHandler(0, 10).LoadJSON(filepath.Join(dir, "missing.json")))
}

func TestSnapshotRejectsBrokenFolds(t *testing.T) {
	for name, breakFold := range map[string]func(f *Fold){
		"shared example": func(f *Fold) { f.Reserve = append(f.Reserve, f.Untagged[0]) },
		"trained twice":  func(f *Fold) { f.Testing = append(f.Testing, f.Training[0]) },
		"labeled reserve": func(f *Fold) {
			f.Reserve[0] = f.Reserve[0].WithLabel(datasets.Positive)
		},
		"unlabeled training": func(f *Fold) {
			f.Training[0] = f.Training[0].WithLabel(datasets.Unlabeled)
		},
	} {
		var buf bytes.Buffer
		require.NoError(t, newTestHandler(t, 0).Encode(&buf))
		var s snapshot
		require.NoError(t, json.Unmarshal(buf.Bytes(), &s))
		breakFold(&s.Folds[1])
		data, err := json.Marshal(&s)
		require.NoError(t, err)

		h := newTestHandler(t, 0)
		before := h.Counts(1)
		err = h.Decode(bytes.NewReader(data))
		assert.ErrorContains(t, err, "fold 1", name)
		assert.Equal(t, before, h.Counts(1), "%s: a rejected snapshot leaves the handler alone", name)
	}
}

package datasets

import (
	"encoding/json"
	"fmt"
	"math/rand"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func makeExamples(pos, neg int) []Example {
	var d []Example
	for i := 0; i < pos; i++ {
		d = append(d, Example{ID: fmt.Sprintf("p%d", i), Label: Positive})
	}
	for i := 0; i < neg; i++ {
		d = append(d, Example{ID: fmt.Sprintf("n%d", i), Label: Negative})
	}
	return d
}

func TestLabelJSON(t *testing.T) {
	for _, l := range []Label{Positive, Negative, Unlabeled} {
		b, err := json.Marshal(l)
		require.NoError(t, err)
		var back Label
		require.NoError(t, json.Unmarshal(b, &back))
		assert.Equal(t, l, back)
	}
	var l Label
	assert.Error(t, json.Unmarshal([]byte(`"yes"`), &l))

	positive, ok := Unlabeled.Bool()
	assert.False(t, positive)
	assert.False(t, ok)
}

func TestReadRecords(t *testing.T) {
	input := `[
		{"sentence": "it rained so we stayed in", "tag": true},
		{"sentence": "it rained so we stayed in", "tag": true},
		{"id": "x", "sentence": "the cat sat", "metadata": {"pos": ["DT", "NN", "VBD"]}}
	]`
	records, err := ReadRecords(strings.NewReader(input))
	require.NoError(t, err)
	require.Len(t, records, 3)

	assert.Len(t, records[0].ID, 16)
	assert.Equal(t, records[0].ID+"-1", records[1].ID)
	assert.Equal(t, "x", records[2].ID)
	assert.Equal(t, Positive, records[0].Label())
	assert.Equal(t, Unlabeled, records[2].Label())
}

func TestLoadRecordsMissingFile(t *testing.T) {
	_, err := LoadRecords(filepath.Join(t.TempDir(), "missing.json"))
	assert.Error(t, err)
}

func TestLoadRecords(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tagged.json")
	require.NoError(t, os.WriteFile(path, []byte(`[{"sentence":"a","tag":false}]`), 0644))
	records, err := LoadRecords(path)
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, Negative, records[0].Label())
}

func TestSplitAndBalance(t *testing.T) {
	d := makeExamples(2, 7)
	d = append(d, Example{ID: "u"})
	sd := SplitDataset(d)
	assert.Len(t, sd[0], 7)
	assert.Len(t, sd[1], 2)

	balanced := Balance(d, rand.New(rand.NewSource(1)))
	got := SplitDataset(balanced)
	assert.Len(t, got[0], 7)
	assert.Len(t, got[1], 7)
	for _, e := range got[1] {
		assert.True(t, strings.HasPrefix(e.ID, "p"))
	}
	// the input is untouched
	assert.Len(t, d, 10)
}

func TestBalanceSingleClass(t *testing.T) {
	d := makeExamples(0, 3)
	assert.Len(t, Balance(d, rand.New(rand.NewSource(1))), 3)
}

func TestStratifiedFolds(t *testing.T) {
	d := makeExamples(5, 5)
	folds, err := StratifiedFolds(d, 2, rand.New(rand.NewSource(3)))
	require.NoError(t, err)
	require.Len(t, folds, 2)

	var tested = make(IDSet)
	for _, f := range folds {
		assert.Len(t, f.Training, 5)
		assert.Len(t, f.Testing, 5)
		training := SetOf(f.Training)
		for _, e := range f.Testing {
			assert.False(t, training.Has(e.ID), "training and testing overlap on %s", e.ID)
			tested[e.ID] = struct{}{}
		}
		sd := SplitDataset(f.Testing)
		assert.InDelta(t, len(sd[0]), len(sd[1]), 1)
	}
	assert.Len(t, tested, 10)
}

func TestStratifiedFoldsErrors(t *testing.T) {
	rng := rand.New(rand.NewSource(1))
	_, err := StratifiedFolds(makeExamples(5, 5), 1, rng)
	assert.Error(t, err)
	_, err = StratifiedFolds(makeExamples(1, 5), 2, rng)
	assert.Error(t, err)
}

func TestSample(t *testing.T) {
	pool := makeExamples(0, 20)
	drawn, rest := Sample(pool, 6, rand.New(rand.NewSource(9)))
	assert.Len(t, drawn, 6)
	assert.Len(t, rest, 14)

	all := SetOf(append(Clone(drawn), rest...))
	assert.Len(t, all, 20)
	for _, e := range drawn {
		assert.False(t, SetOf(rest).Has(e.ID))
	}

	drawn, rest = Sample(pool, 50, rand.New(rand.NewSource(9)))
	assert.Len(t, drawn, 20)
	assert.Empty(t, rest)

	drawn, rest = Sample(pool, 0, rand.New(rand.NewSource(9)))
	assert.Empty(t, drawn)
	assert.Equal(t, pool, rest)
}

func TestWithoutAndLabels(t *testing.T) {
	d := makeExamples(2, 2)
	rest := Without(d, SetOf(d[:1]))
	assert.Len(t, rest, 3)
	assert.Equal(t, "p1", rest[0].ID)

	y, ok := Labels(d)
	assert.True(t, ok)
	assert.Equal(t, []bool{true, true, false, false}, y)

	_, ok = Labels(append(d, Example{ID: "u"}))
	assert.False(t, ok)

	relabeled := d[2].WithLabel(Positive)
	assert.Equal(t, Negative, d[2].Label)
	assert.Equal(t, Positive, relabeled.Label)
}

package main

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/alexflint/go-arg"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/neurlang/cotrain/config"
	"github.com/neurlang/cotrain/datasets"
)

func TestApply(t *testing.T) {
	p, k, c, tb := 3, 12, "bayes", "confident"
	cfg := config.Config{Positive: 1, Negative: 2, Iterations: 30, Classifier: "sgd", TieBreak: "first"}
	args{Positive: &p, Iterations: &k, Classifier: &c, TieBreak: &tb}.apply(&cfg)
	assert.Equal(t, 3, cfg.Positive)
	assert.Equal(t, 2, cfg.Negative, "flags which were not given keep the config value")
	assert.Equal(t, 12, cfg.Iterations)
	assert.Equal(t, "bayes", cfg.Classifier)
	assert.Equal(t, "confident", cfg.TieBreak)
}

func parse(t *testing.T, argv ...string) (args, error) {
	var a args
	p, err := arg.NewParser(arg.Config{}, &a)
	require.NoError(t, err)
	return a, p.Parse(argv)
}

func TestParseRequiresCounts(t *testing.T) {
	for _, k := range []string{"COTRAIN_POSITIVE", "COTRAIN_NEGATIVE"} {
		t.Setenv(k, "")
		os.Unsetenv(k)
	}
	_, err := parse(t, "tagged.json", "untagged.json")
	assert.Error(t, err)
	_, err = parse(t, "tagged.json", "untagged.json", "-p", "2")
	assert.Error(t, err)

	a, err := parse(t, "tagged.json", "untagged.json", "-p", "2", "-n", "0", "--quota", "view")
	require.NoError(t, err)
	assert.Equal(t, 2, *a.Positive)
	assert.Equal(t, 0, *a.Negative)
	assert.Equal(t, "view", *a.Quota)

	t.Setenv("COTRAIN_POSITIVE", "3")
	t.Setenv("COTRAIN_NEGATIVE", "1")
	a, err = parse(t, "--load", "dump.json")
	require.NoError(t, err)
	assert.Equal(t, 3, *a.Positive)
	assert.Equal(t, 1, *a.Negative)
}

func TestPlotName(t *testing.T) {
	cfg := config.Config{Classifier: "sgd", Positive: 2, Negative: 3, Unlabeled: 75, NumFolds: 2}
	assert.Equal(t, "cotrain_sgd_2_3_75_2.png", plotName(cfg))
}

func writeRecords(t *testing.T, path string, records []datasets.Record) {
	data, err := json.Marshal(records)
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(path, data, 0o644))
}

func sentence(topic string, i int) datasets.Record {
	return datasets.Record{
		Sentence: fmt.Sprintf("the %s report number %d arrived today.", topic, i),
		Metadata: map[string]interface{}{
			"pos":    []interface{}{"DT", "NN", "NN", "NN", "CD", "VBD", "NN"},
			"lemmas": []interface{}{topic, "report", "arrive"},
		},
	}
}

func TestRun(t *testing.T) {
	for _, k := range []string{"COTRAIN_CONFIG", "COTRAIN_POSITIVE", "COTRAIN_NEGATIVE", "COTRAIN_SUBSETS"} {
		t.Setenv(k, "")
	}
	dir := t.TempDir()
	wd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	defer os.Chdir(wd)

	yes, no := true, false
	var tagged, untagged []datasets.Record
	for i := 0; i < 6; i++ {
		r := sentence("fire", i)
		r.Tag = &yes
		tagged = append(tagged, r)
		r = sentence("lunch", i)
		r.Tag = &no
		tagged = append(tagged, r)
	}
	for i := 0; i < 60; i++ {
		topic := "fire"
		if i%2 == 1 {
			topic = "lunch"
		}
		untagged = append(untagged, sentence(topic, 100+i))
	}
	writeRecords(t, "tagged.json", tagged)
	writeRecords(t, "untagged.json", untagged)

	p, n, u, k := 1, 1, 10, 2
	c := "bayes"
	a := args{
		TaggedFile:   "tagged.json",
		UntaggedFile: "untagged.json",
		Positive:     &p,
		Negative:     &n,
		Unlabeled:    &u,
		Iterations:   &k,
		Classifier:   &c,
		Dump:         "dump.json",
		Save:         "model",
	}
	require.Equal(t, 0, run(a, zap.NewNop()))
	assert.FileExists(t, "dump.json")
	assert.FileExists(t, "cotrain_bayes_1_1_10_2.png")
	assert.FileExists(t, "model.syntactic+lexical+structural")
	assert.FileExists(t, "model.semantic_vectorizer")

	// resume from the dump without the inputs, the dump keeps its batch size
	require.NoError(t, os.Remove("cotrain_bayes_1_1_10_2.png"))
	u = 30
	a.TaggedFile, a.UntaggedFile, a.Dump, a.Load = "", "", "", "dump.json"
	assert.Equal(t, 0, run(a, zap.NewNop()))
	assert.FileExists(t, "cotrain_bayes_1_1_10_2.png")
	assert.NoFileExists(t, "cotrain_bayes_1_1_30_2.png")
}

func TestRunInvalidConfig(t *testing.T) {
	t.Setenv("COTRAIN_CONFIG", "")
	t.Setenv("COTRAIN_POSITIVE", "")
	t.Setenv("COTRAIN_NEGATIVE", "")
	assert.Equal(t, 2, run(args{}, zap.NewNop()))
	assert.Equal(t, 2, run(args{Config: filepath.Join(t.TempDir(), "missing.yaml")}, zap.NewNop()))
}

package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/neurlang/cotrain/features"
	"github.com/neurlang/cotrain/learning/bayes"
	"github.com/neurlang/cotrain/learning/sgd"
)

func clearEnv(t *testing.T) {
	for _, k := range []string{EnvConfigPath, "COTRAIN_POSITIVE", "COTRAIN_NEGATIVE", "COTRAIN_UNLABELED",
		"COTRAIN_CLASSIFIER", "COTRAIN_SUBSETS", "COTRAIN_SEED", "COTRAIN_ALPHA", "COTRAIN_BALANCE", "COTRAIN_QUOTA"} {
		t.Setenv(k, "")
	}
}

func writeConfig(t *testing.T, content string) string {
	path := filepath.Join(t.TempDir(), "cotrain.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestDefaults(t *testing.T) {
	clearEnv(t)
	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, 75, cfg.Unlabeled)
	assert.Equal(t, 0, cfg.Limit)
	assert.Equal(t, 30, cfg.Iterations)
	assert.Equal(t, 2, cfg.NumFolds)
	assert.Equal(t, "sgd", cfg.Classifier)
	assert.Equal(t, "first", cfg.TieBreak)
	assert.Equal(t, "shared", cfg.Quota)
	assert.Equal(t, []features.Subset{
		{"syntactic", "lexical", "structural"},
		{"semantic"},
	}, cfg.FeatureSubsets())

	assert.Error(t, cfg.Validate(), "positive and negative are required")
	cfg.Positive, cfg.Negative = 2, 2
	assert.NoError(t, cfg.Validate())
}

func TestLoadFileAndEnv(t *testing.T) {
	clearEnv(t)
	path := writeConfig(t, `
positive: 3
negative: 4
unlabeled: 20
classifier: bayes
tie_break: confident
subsets:
  - [lexical]
  - [semantic]
learner:
  vectorizer: hashing
  hash_width: 1024
`)
	t.Setenv("COTRAIN_NEGATIVE", "5")
	t.Setenv("COTRAIN_ALPHA", "0.5")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 3, cfg.Positive)
	assert.Equal(t, 5, cfg.Negative, "environment overrides the file")
	assert.Equal(t, 20, cfg.Unlabeled)
	assert.Equal(t, "bayes", cfg.Classifier)
	assert.Equal(t, "confident", cfg.TieBreak)
	assert.Equal(t, []features.Subset{{"lexical"}, {"semantic"}}, cfg.FeatureSubsets())
	require.NoError(t, cfg.Validate())

	tr, err := cfg.Trainer()
	require.NoError(t, err)
	nb := tr.(*bayes.HyperParameters)
	assert.Equal(t, 0.5, nb.Alpha)
	assert.Equal(t, "hashing", nb.Vectorizer)
	assert.Equal(t, uint32(1024), nb.HashWidth)
}

func TestLoadFromEnvPath(t *testing.T) {
	clearEnv(t)
	t.Setenv(EnvConfigPath, writeConfig(t, "iterations: 7\n"))
	t.Setenv("COTRAIN_SUBSETS", "lexical+structural, semantic")
	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, 7, cfg.Iterations)
	assert.Equal(t, []features.Subset{{"lexical", "structural"}, {"semantic"}}, cfg.FeatureSubsets())
}

func TestLoadErrors(t *testing.T) {
	clearEnv(t)
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)

	_, err = Load(writeConfig(t, "positive: [1\n"))
	assert.Error(t, err)

	t.Setenv("COTRAIN_POSITIVE", "many")
	_, err = Load("")
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	clearEnv(t)
	base, err := Load("")
	require.NoError(t, err)
	base.Positive, base.Negative = 1, 1

	for name, mutate := range map[string]func(*Config){
		"negative count":   func(c *Config) { c.Positive = -1 },
		"one fold":         func(c *Config) { c.NumFolds = 1 },
		"classifier":       func(c *Config) { c.Classifier = "svm" },
		"tie break":        func(c *Config) { c.TieBreak = "random" },
		"combination":      func(c *Config) { c.Combination = "vote" },
		"quota":            func(c *Config) { c.Quota = "fold" },
		"single subset":    func(c *Config) { c.Subsets = [][]string{{"lexical"}} },
		"overlapping view": func(c *Config) { c.Subsets = [][]string{{"lexical"}, {"lexical", "semantic"}} },
		"negative limit":   func(c *Config) { c.Limit = -3 },
	} {
		cfg := base
		cfg.Subsets = append([][]string(nil), base.Subsets...)
		mutate(&cfg)
		assert.Error(t, cfg.Validate(), name)
	}
}

func TestClassifiers(t *testing.T) {
	assert.Equal(t, []string{"bayes", "bernoulli", "perceptron", "sgd"}, ClassifierNames())
	for _, name := range ClassifierNames() {
		cfg := Config{Classifier: name, Seed: 9, Learner: Learner{Epochs: 3}}
		tr, err := cfg.Trainer()
		require.NoError(t, err)
		assert.NotEmpty(t, tr.Name())
	}

	s, err := Config{Classifier: "sgd", Seed: 9, Learner: Learner{Epochs: 3}}.Trainer()
	require.NoError(t, err)
	assert.Equal(t, 3, s.(*sgd.HyperParameters).Epochs)
	assert.Equal(t, int64(9), s.(*sgd.HyperParameters).Seed)

	b, err := Config{Classifier: "bernoulli"}.Trainer()
	require.NoError(t, err)
	assert.True(t, b.(*bayes.HyperParameters).Bernoulli)

	_, err = Config{Classifier: "svm"}.Trainer()
	assert.Error(t, err)
}

func TestCotrainerOptions(t *testing.T) {
	opts, err := Config{TieBreak: "confident", Combination: "mean", Balance: true}.CotrainerOptions(zap.NewNop())
	require.NoError(t, err)
	assert.Len(t, opts, 5)

	_, err = Config{TieBreak: "first", Combination: "vote"}.CotrainerOptions(zap.NewNop())
	assert.Error(t, err)
	_, err = Config{Quota: "fold"}.CotrainerOptions(zap.NewNop())
	assert.Error(t, err)
}

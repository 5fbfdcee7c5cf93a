// Package config loads the settings of a co-training experiment from an
// optional YAML file, COTRAIN_* environment variables and defaults.
package config

import (
	"os"
	"strconv"
	"strings"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"

	"github.com/neurlang/cotrain/cotrain"
	"github.com/neurlang/cotrain/features"
)

// EnvConfigPath names the config file when no path is given
const EnvConfigPath = "COTRAIN_CONFIG"

// Config of one experiment. Zero values are replaced by defaults.
type Config struct {
	Positive    int    `yaml:"positive"`
	Negative    int    `yaml:"negative"`
	Unlabeled   int    `yaml:"unlabeled"`
	Limit       int    `yaml:"limit"` // reserve cap per fold, 0 is unlimited
	Iterations  int    `yaml:"iterations"`
	NumFolds    int    `yaml:"num_folds"`
	Classifier  string `yaml:"classifier"`
	Seed        int64  `yaml:"seed"`
	Parallel    int    `yaml:"parallel"`
	TieBreak    string `yaml:"tie_break"`
	Quota       string `yaml:"quota"` // shared or view
	Combination string `yaml:"combination"`
	Balance     bool   `yaml:"balance"`

	Subsets [][]string `yaml:"subsets"`

	Learner Learner `yaml:"learner"`
}

// Learner holds the hyperparameters passed to the chosen classifier
type Learner struct {
	Vectorizer   string  `yaml:"vectorizer"`
	HashWidth    uint32  `yaml:"hash_width"`
	Preprocessor string  `yaml:"preprocessor"`
	Alpha        float64 `yaml:"alpha"`
	L1Ratio      float64 `yaml:"l1_ratio"`
	Epochs       int     `yaml:"epochs"`
}

// DefaultSubsets pairs the semantic view against all the others
var DefaultSubsets = [][]string{
	{features.Syntactic, features.Lexical, features.Structural},
	{features.Semantic},
}

// Load reads the config file at path, or the one named by COTRAIN_CONFIG.
// A missing file is an error only when a path was given. Environment
// variables override the file, defaults fill what is still unset.
func Load(path string) (Config, error) {
	var cfg Config

	explicit := path != ""
	if !explicit {
		path = os.Getenv(EnvConfigPath)
		explicit = path != ""
	}
	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case err == nil:
			if err := yaml.Unmarshal(data, &cfg); err != nil {
				return cfg, errors.Wrapf(err, "parsing %s", path)
			}
		case explicit:
			return cfg, errors.Wrap(err, "reading config")
		}
	}

	if err := cfg.applyEnv(); err != nil {
		return cfg, err
	}
	cfg.applyDefaults()
	return cfg, nil
}

func (cfg *Config) applyEnv() error {
	for _, err := range []error{
		envOverrideInt(&cfg.Positive, "COTRAIN_POSITIVE"),
		envOverrideInt(&cfg.Negative, "COTRAIN_NEGATIVE"),
		envOverrideInt(&cfg.Unlabeled, "COTRAIN_UNLABELED"),
		envOverrideInt(&cfg.Limit, "COTRAIN_LIMIT"),
		envOverrideInt(&cfg.Iterations, "COTRAIN_ITERATIONS"),
		envOverrideInt(&cfg.NumFolds, "COTRAIN_NUM_FOLDS"),
		envOverride(&cfg.Classifier, "COTRAIN_CLASSIFIER"),
		envOverrideInt64(&cfg.Seed, "COTRAIN_SEED"),
		envOverrideInt(&cfg.Parallel, "COTRAIN_PARALLEL"),
		envOverride(&cfg.TieBreak, "COTRAIN_TIE_BREAK"),
		envOverride(&cfg.Quota, "COTRAIN_QUOTA"),
		envOverride(&cfg.Combination, "COTRAIN_COMBINATION"),
		envOverrideBool(&cfg.Balance, "COTRAIN_BALANCE"),
		envOverride(&cfg.Learner.Vectorizer, "COTRAIN_VECTORIZER"),
		envOverride(&cfg.Learner.Preprocessor, "COTRAIN_PREPROCESSOR"),
		envOverrideFloat(&cfg.Learner.Alpha, "COTRAIN_ALPHA"),
		envOverrideInt(&cfg.Learner.Epochs, "COTRAIN_EPOCHS"),
	} {
		if err != nil {
			return err
		}
	}

	// COTRAIN_SUBSETS="syntactic+lexical+structural,semantic"
	if val := os.Getenv("COTRAIN_SUBSETS"); val != "" {
		cfg.Subsets = nil
		for _, name := range strings.Split(val, ",") {
			if s := features.ParseSubset(name); len(s) > 0 {
				cfg.Subsets = append(cfg.Subsets, s)
			}
		}
	}
	return nil
}

func (cfg *Config) applyDefaults() {
	if cfg.Unlabeled == 0 {
		cfg.Unlabeled = 75
	}
	if cfg.Iterations == 0 {
		cfg.Iterations = 30
	}
	if cfg.NumFolds == 0 {
		cfg.NumFolds = 2
	}
	if cfg.Classifier == "" {
		cfg.Classifier = DefaultClassifier
	}
	if cfg.Parallel == 0 {
		cfg.Parallel = 1
	}
	if cfg.TieBreak == "" {
		cfg.TieBreak = cotrain.FirstView.String()
	}
	if cfg.Quota == "" {
		cfg.Quota = cotrain.SharedQuota.String()
	}
	if cfg.Combination == "" {
		cfg.Combination = "product"
	}
	if len(cfg.Subsets) == 0 {
		for _, s := range DefaultSubsets {
			cfg.Subsets = append(cfg.Subsets, append([]string(nil), s...))
		}
	}
}

// Validate checks the final config, after flags were applied
func (cfg Config) Validate() error {
	if cfg.Positive < 0 || cfg.Negative < 0 {
		return errors.Errorf("positive and negative must not be negative, got %d and %d", cfg.Positive, cfg.Negative)
	}
	if cfg.Positive+cfg.Negative == 0 {
		return errors.New("positive and negative are both zero, nothing would be promoted")
	}
	if cfg.Unlabeled < 1 {
		return errors.Errorf("invalid unlabeled %d: must be >= 1", cfg.Unlabeled)
	}
	if cfg.Limit < 0 {
		return errors.Errorf("invalid limit %d: must be >= 0", cfg.Limit)
	}
	if cfg.Iterations < 0 {
		return errors.Errorf("invalid iterations %d: must be >= 0", cfg.Iterations)
	}
	if cfg.NumFolds < 2 {
		return errors.Errorf("invalid num_folds %d: must be >= 2", cfg.NumFolds)
	}
	if _, ok := Classifiers[cfg.Classifier]; !ok {
		return errors.Errorf("unknown classifier %q, choices: %s", cfg.Classifier, strings.Join(ClassifierNames(), ", "))
	}
	if _, err := cotrain.ParseTieBreak(cfg.TieBreak); err != nil {
		return err
	}
	if _, err := cotrain.ParseQuota(cfg.Quota); err != nil {
		return err
	}
	if _, err := cotrain.ParseCombination(cfg.Combination); err != nil {
		return err
	}
	return features.ValidateSubsets(cfg.FeatureSubsets())
}

// FeatureSubsets converts the configured subsets
func (cfg Config) FeatureSubsets() []features.Subset {
	out := make([]features.Subset, len(cfg.Subsets))
	for i, s := range cfg.Subsets {
		out[i] = append(features.Subset(nil), s...)
	}
	return out
}

func envOverride(field *string, envKey string) error {
	if val := os.Getenv(envKey); val != "" {
		*field = val
	}
	return nil
}

func envOverrideInt(field *int, envKey string) error {
	if val := os.Getenv(envKey); val != "" {
		parsed, err := strconv.Atoi(val)
		if err != nil {
			return errors.Errorf("invalid %s %q: %v", envKey, val, err)
		}
		*field = parsed
	}
	return nil
}

func envOverrideInt64(field *int64, envKey string) error {
	if val := os.Getenv(envKey); val != "" {
		parsed, err := strconv.ParseInt(val, 10, 64)
		if err != nil {
			return errors.Errorf("invalid %s %q: %v", envKey, val, err)
		}
		*field = parsed
	}
	return nil
}

func envOverrideFloat(field *float64, envKey string) error {
	if val := os.Getenv(envKey); val != "" {
		parsed, err := strconv.ParseFloat(val, 64)
		if err != nil {
			return errors.Errorf("invalid %s %q: %v", envKey, val, err)
		}
		*field = parsed
	}
	return nil
}

func envOverrideBool(field *bool, envKey string) error {
	if val := os.Getenv(envKey); val != "" {
		parsed, err := strconv.ParseBool(val)
		if err != nil {
			return errors.Errorf("invalid %s %q: %v", envKey, val, err)
		}
		*field = parsed
	}
	return nil
}

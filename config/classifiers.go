package config

import (
	"sort"

	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/neurlang/cotrain/cotrain"
	"github.com/neurlang/cotrain/learning"
	"github.com/neurlang/cotrain/learning/bayes"
	"github.com/neurlang/cotrain/learning/perceptron"
	"github.com/neurlang/cotrain/learning/sgd"
)

// DefaultClassifier is used when no classifier is configured
const DefaultClassifier = "sgd"

// Classifiers makes a base learner by name
var Classifiers = map[string]func(l Learner, seed int64) learning.Trainer{
	"sgd": func(l Learner, seed int64) learning.Trainer {
		h := sgd.New()
		h.HyperParameters = l.shared(seed)
		if l.Alpha > 0 {
			h.Alpha = l.Alpha
		}
		if l.L1Ratio > 0 {
			h.L1Ratio = l.L1Ratio
		}
		if l.Epochs > 0 {
			h.Epochs = l.Epochs
		}
		return h
	},
	"bayes": func(l Learner, seed int64) learning.Trainer {
		h := bayes.New()
		h.HyperParameters = l.shared(seed)
		if l.Alpha > 0 {
			h.Alpha = l.Alpha
		}
		return h
	},
	"bernoulli": func(l Learner, seed int64) learning.Trainer {
		h := bayes.New()
		h.HyperParameters = l.shared(seed)
		h.Bernoulli = true
		if l.Alpha > 0 {
			h.Alpha = l.Alpha
		}
		return h
	},
	"perceptron": func(l Learner, seed int64) learning.Trainer {
		h := perceptron.New()
		h.HyperParameters = l.shared(seed)
		if l.Epochs > 0 {
			h.Epochs = l.Epochs
		}
		return h
	},
}

func (l Learner) shared(seed int64) learning.HyperParameters {
	return learning.HyperParameters{
		Vectorizer:   l.Vectorizer,
		HashWidth:    l.HashWidth,
		Preprocessor: l.Preprocessor,
		Seed:         seed,
	}
}

// ClassifierNames lists the classifier choices
func ClassifierNames() []string {
	names := make([]string, 0, len(Classifiers))
	for n := range Classifiers {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// Trainer makes the configured base learner
func (cfg Config) Trainer() (learning.Trainer, error) {
	mk, ok := Classifiers[cfg.Classifier]
	if !ok {
		return nil, errors.Errorf("unknown classifier %q", cfg.Classifier)
	}
	return mk(cfg.Learner, cfg.Seed), nil
}

// CotrainerOptions translates the selection settings
func (cfg Config) CotrainerOptions(logger *zap.Logger) ([]cotrain.Option, error) {
	tb, err := cotrain.ParseTieBreak(cfg.TieBreak)
	if err != nil {
		return nil, err
	}
	quota, err := cotrain.ParseQuota(cfg.Quota)
	if err != nil {
		return nil, err
	}
	comb, err := cotrain.ParseCombination(cfg.Combination)
	if err != nil {
		return nil, err
	}
	opts := []cotrain.Option{
		cotrain.WithTieBreak(tb),
		cotrain.WithQuota(quota),
		cotrain.WithCombination(comb),
		cotrain.WithLogger(logger),
	}
	if cfg.Balance {
		opts = append(opts, cotrain.WithBalance(cfg.Seed))
	}
	return opts, nil
}

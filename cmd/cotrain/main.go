package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/alexflint/go-arg"
	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/neurlang/cotrain/config"
	"github.com/neurlang/cotrain/cotrain"
	"github.com/neurlang/cotrain/datasets"
	"github.com/neurlang/cotrain/features"
	"github.com/neurlang/cotrain/logging"
	"github.com/neurlang/cotrain/metrics"
	"github.com/neurlang/cotrain/trainer"
)

type args struct {
	TaggedFile   string `arg:"positional" help:"tagged records in JSON"`
	UntaggedFile string `arg:"positional" help:"untagged records in JSON"`

	Positive   *int    `arg:"-p,required,env:COTRAIN_POSITIVE" help:"number of positive examples promoted per iteration"`
	Negative   *int    `arg:"-n,required,env:COTRAIN_NEGATIVE" help:"number of negative examples promoted per iteration"`
	Unlabeled  *int    `arg:"-u" help:"size of the untagged batch offered each iteration (default: 75) (P + N must be less than U)"`
	Limit      *int    `arg:"-l" help:"number of untagged examples kept in reserve per fold (default: unlimited)"`
	Iterations *int    `arg:"-k" help:"number of iterations (default: 30)"`
	NumFolds   *int    `arg:"--numFolds" help:"number of folds for crossvalidation (default: 2)"`
	Classifier *string `arg:"-c" help:"supervised learner: sgd bayes bernoulli or perceptron (default: sgd)"`

	Dump string `help:"dump the processed folds to this file"`
	Load string `help:"load processed folds from this file instead of the inputs"`
	Save string `help:"save the fold 0 model of every view with this prefix"`

	Config   string  `help:"YAML config file"`
	Seed     *int64  `help:"random seed"`
	Parallel *int    `help:"number of folds trained concurrently"`
	TieBreak *string `arg:"--tiebreak" help:"first or confident"`
	Quota    *string `help:"shared (default) or view: whether the views share the promotion budget"`
	Verbose  bool    `arg:"-v" help:"log every fold step"`
}

func (args) Description() string {
	return "multi-view co-training of a binary classifier"
}

// apply overrides the config with the flags that were given
func (a args) apply(cfg *config.Config) {
	setInt := func(dst *int, src *int) {
		if src != nil {
			*dst = *src
		}
	}
	setInt(&cfg.Positive, a.Positive)
	setInt(&cfg.Negative, a.Negative)
	setInt(&cfg.Unlabeled, a.Unlabeled)
	setInt(&cfg.Limit, a.Limit)
	setInt(&cfg.Iterations, a.Iterations)
	setInt(&cfg.NumFolds, a.NumFolds)
	setInt(&cfg.Parallel, a.Parallel)
	if a.Classifier != nil {
		cfg.Classifier = *a.Classifier
	}
	if a.Seed != nil {
		cfg.Seed = *a.Seed
	}
	if a.TieBreak != nil {
		cfg.TieBreak = *a.TieBreak
	}
	if a.Quota != nil {
		cfg.Quota = *a.Quota
	}
}

func plotName(cfg config.Config) string {
	return fmt.Sprintf("cotrain_%s_%d_%d_%d_%d.png",
		cfg.Classifier, cfg.Positive, cfg.Negative, cfg.Unlabeled, cfg.NumFolds)
}

func main() {
	var a args
	p := arg.MustParse(&a)
	if a.Load == "" && (a.TaggedFile == "" || a.UntaggedFile == "") {
		p.Fail("taggedFile and untaggedFile are required unless --load is given")
	}

	logger := logging.New(a.Verbose)
	code := run(a, logger)
	logger.Sync()
	os.Exit(code)
}

func run(a args, logger *zap.Logger) int {
	cfg, err := config.Load(a.Config)
	if err != nil {
		logger.Error("loading config", zap.Error(err))
		return 2
	}
	a.apply(&cfg)
	if err := cfg.Validate(); err != nil {
		logger.Error("invalid config", zap.Error(err))
		return 2
	}

	handler, err := prepare(a, cfg, logger)
	if err != nil {
		logger.Error("preparing folds", zap.Error(err))
		return 1
	}
	// a loaded snapshot decides the batch size and the folds
	if handler.Unlabeled() != cfg.Unlabeled || handler.NumFolds() != cfg.NumFolds {
		logger.Info("settings taken from the snapshot",
			zap.Int("unlabeled", handler.Unlabeled()),
			zap.Int("folds", handler.NumFolds()))
		cfg.Unlabeled, cfg.NumFolds = handler.Unlabeled(), handler.NumFolds()
	}
	logger.Info("folds ready",
		zap.String("run_id", handler.RunID()),
		zap.Int("folds", handler.NumFolds()),
		zap.Strings("views", features.Names(handler.Subsets())))

	tr, err := cfg.Trainer()
	if err != nil {
		logger.Error("creating classifier", zap.Error(err))
		return 2
	}
	copts, err := cfg.CotrainerOptions(logger)
	if err != nil {
		logger.Error("creating cotrainer", zap.Error(err))
		return 2
	}

	subsets := handler.Subsets()
	acc := metrics.NewAccumulator(handler.NumFolds(), trainer.Names(subsets))
	var first *cotrain.Cotrainer
	newCotrainer := func(fold int) *cotrain.Cotrainer {
		c := cotrain.NewCotrainer(tr, subsets, copts...)
		if fold == 0 {
			first = c
		}
		return c
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	code := 0
	completed, err := trainer.Run(ctx, trainer.Options{
		Iterations: cfg.Iterations,
		Positive:   cfg.Positive,
		Negative:   cfg.Negative,
		Parallel:   cfg.Parallel,
		Logger:     logger,
	}, handler, newCotrainer, acc)
	switch {
	case errors.Is(err, context.Canceled):
		logger.Warn("terminating on interrupt", zap.Int("completed", completed))
	case err != nil:
		logger.Error("terminating on error", zap.Int("completed", completed), zap.Error(err))
		code = 1
	default:
		logger.Info("finished", zap.Int("completed", completed))
	}

	// metrics are reported whatever ended the run
	logger.Info("f-measures", zap.Any("f_measures", acc.FMeasures()))
	path := plotName(cfg)
	if err := acc.SavePlot(path); err != nil {
		logger.Warn("plot not written", zap.String("path", path), zap.Error(err))
	} else {
		logger.Info("plot written", zap.String("path", path))
	}

	if a.Save != "" && first != nil {
		written, err := trainer.SaveModels(first, a.Save)
		if err != nil {
			logger.Error("saving models", zap.Error(err))
			code = 1
		}
		for _, name := range written {
			logger.Info("model saved", zap.String("path", name))
		}
	}
	return code
}

// prepare loads a dumped handler or builds the folds from the input files
func prepare(a args, cfg config.Config, logger *zap.Logger) (*cotrain.Handler, error) {
	handler := cotrain.NewHandler(cfg.Limit, cfg.Unlabeled,
		cotrain.WithSeed(cfg.Seed),
		cotrain.WithHandlerLogger(logger))

	resumed, err := trainer.Resume(handler, a.Load)
	if err != nil {
		return nil, err
	}
	if !resumed {
		tagged, err := datasets.LoadRecords(a.TaggedFile)
		if err != nil {
			return nil, err
		}
		untagged, err := datasets.LoadRecords(a.UntaggedFile)
		if err != nil {
			return nil, err
		}
		logger.Info("records loaded", zap.Int("tagged", len(tagged)), zap.Int("untagged", len(untagged)))
		err = handler.MakeDataset(tagged, untagged, cfg.NumFolds, cfg.FeatureSubsets(), features.DefaultExtractor{})
		if err != nil {
			return nil, err
		}
	}
	if a.Dump != "" {
		if err := handler.WriteJSON(a.Dump); err != nil {
			return nil, err
		}
	}
	return handler, nil
}

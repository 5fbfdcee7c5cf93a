package trainer

import "context"

import "github.com/pkg/errors"
import "go.uber.org/zap"

import "github.com/neurlang/cotrain/cotrain"
import "github.com/neurlang/cotrain/datasets"
import "github.com/neurlang/cotrain/learning"
import "github.com/neurlang/cotrain/metrics"
import "github.com/neurlang/cotrain/parallel"

// Options of the driving loop
type Options struct {
	Iterations int
	Positive   int // examples promoted per view and round as positive
	Negative   int // examples promoted per view and round as negative
	Parallel   int // folds processed concurrently, 1 or less is sequential
	Logger     *zap.Logger
}

func (o Options) logger() *zap.Logger {
	if o.Logger == nil {
		return zap.NewNop()
	}
	return o.Logger
}

func (o Options) workers(folds int) int {
	if o.Parallel <= 1 {
		return 1
	}
	w := parallel.Workers(o.Parallel)
	if w > folds {
		w = folds
	}
	return w
}

// NewFoldFunc returns one co-training step of a fold: promote from the
// Untagged batch, replenish it, then evaluate. A cotrainer which can't rank
// its batch promotes nothing but is still evaluated.
func NewFoldFunc(ctx context.Context, h *cotrain.Handler, opts Options,
	evaluate func(fold int, c *cotrain.Cotrainer, testing []datasets.Example) error,
) func(fold int, d cotrain.FoldData, c *cotrain.Cotrainer) error {

	logger := opts.logger()
	return func(fold int, d cotrain.FoldData, c *cotrain.Cotrainer) error {
		if err := ctx.Err(); err != nil {
			return err
		}
		untagged := h.CotrainingData(fold)
		reserve := h.SamplingData(fold)
		logger.Debug("fold step",
			zap.Int("fold", fold),
			zap.Int("training", len(d.Training)),
			zap.Int("testing", len(d.Testing)),
			zap.Int("untagged", len(untagged)),
			zap.Int("reserve", len(reserve)))

		newTagged, remaining, err := c.Train(d.Training, untagged, opts.Positive, opts.Negative)
		switch {
		case errors.Is(err, learning.ErrNotProbabilistic):
			logger.Warn("views can't rank the untagged batch, nothing promoted",
				zap.Int("fold", fold), zap.Error(err))
		case err != nil:
			return errors.Wrapf(err, "fold %d", fold)
		default:
			h.UpdateTaggedData(newTagged, fold)
			drawn := h.UpdateUntaggedData(fold, remaining, reserve, opts.Positive, opts.Negative)
			if drawn < len(newTagged) {
				logger.Info("reserve exhausted, untagged batch shrinks",
					zap.Int("fold", fold),
					zap.Int("promoted", len(newTagged)),
					zap.Int("drawn", drawn))
			}
			logger.Debug("promoted",
				zap.Int("fold", fold),
				zap.Int("promoted", len(newTagged)),
				zap.Int("remaining", len(remaining)))
		}
		return evaluate(fold, c, d.Testing)
	}
}

// protect turns a panic of a fold step into an error
func protect(fold int, step func() error) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = errors.Errorf("fold %d: panic: %v", fold, r)
		}
	}()
	return step()
}

// Run co-trains every fold of the handler for opts.Iterations iterations,
// with one cotrainer per fold made by newCotrainer. After each iteration
// the fold metrics of every name are averaged in acc. It returns the number
// of completed iterations. Running out of untagged data ends the run early
// without an error; cancellation, fit faults and panics end it with one.
// Either way acc keeps the completed iterations.
func Run(ctx context.Context, opts Options, h *cotrain.Handler,
	newCotrainer func(fold int) *cotrain.Cotrainer, acc *metrics.Accumulator) (completed int, err error) {

	logger := opts.logger()
	defer func() {
		if r := recover(); r != nil {
			err = errors.Errorf("panic: %v", r)
			logger.Error("terminating on panic", zap.Any("panic", r))
		}
	}()

	numFolds := h.NumFolds()
	cotrainers := make([]*cotrain.Cotrainer, numFolds)
	for i := range cotrainers {
		cotrainers[i] = newCotrainer(i)
	}
	evaluate := NewEvaluateFunc(acc, logger)
	step := NewFoldFunc(ctx, h, opts, evaluate)
	names := Names(h.Subsets())
	workers := opts.workers(numFolds)

	for i := 0; i < opts.Iterations; i++ {
		if err := ctx.Err(); err != nil {
			logger.Info("terminating on interrupt", zap.Int("completed", completed))
			return completed, err
		}
		logger.Info("iteration", zap.Int("iteration", i))

		data := make([]cotrain.FoldData, 0, numFolds)
		for _, d := range h.IterData() {
			data = append(data, d)
		}
		err := parallel.ForEachErr(numFolds, workers, func(fold int) error {
			return protect(fold, func() error {
				return step(fold, data[fold], cotrainers[fold])
			})
		})
		var insufficient *cotrain.InsufficientDataError
		switch {
		case errors.As(err, &insufficient):
			logger.Info("terminating early, untagged data exhausted",
				zap.Int("completed", completed), zap.Error(err))
			return completed, nil
		case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
			logger.Info("terminating on interrupt", zap.Int("completed", completed))
			return completed, err
		case err != nil:
			logger.Error("terminating on error", zap.Int("completed", completed), zap.Error(err))
			return completed, err
		}

		for _, name := range names {
			if p, ok := acc.Average(name, i); ok {
				logger.Info("metrics",
					zap.Int("iteration", i),
					zap.String("name", name),
					zap.Float64("accuracy", p.Accuracy),
					zap.Float64("precision", p.Precision),
					zap.Float64("recall", p.Recall),
					zap.Float64("f_measure", p.FMeasure))
			}
		}
		completed++
	}
	return completed, nil
}

package trainer

import "github.com/pkg/errors"
import "go.uber.org/zap"

import "github.com/neurlang/cotrain/cotrain"
import "github.com/neurlang/cotrain/datasets"
import "github.com/neurlang/cotrain/features"
import "github.com/neurlang/cotrain/learning"
import "github.com/neurlang/cotrain/metrics"

// Combined is the metric name of the joint view score
const Combined = "combined"

// Names are the metric names of a run: every view subset, then Combined
func Names(subsets []features.Subset) []string {
	return append(features.Names(subsets), Combined)
}

// NewEvaluateFunc returns a function recording the metrics of every view of
// a fold's cotrainer and of their combination on the fold's testing set.
// A combination without confidence scores is skipped.
func NewEvaluateFunc(acc *metrics.Accumulator, logger *zap.Logger) func(fold int, c *cotrain.Cotrainer,
	testing []datasets.Example) error {

	return func(fold int, c *cotrain.Cotrainer, testing []datasets.Example) error {
		for _, v := range c.Views() {
			if err := acc.Add(fold, v.Subset.Name(), v, testing); err != nil {
				return errors.Wrapf(err, "evaluating view %s", v.Subset.Name())
			}
		}
		err := acc.Add(fold, Combined, c.Combined(), testing)
		if errors.Is(err, learning.ErrNotProbabilistic) {
			logger.Debug("combined metrics skipped", zap.Int("fold", fold), zap.Error(err))
			return nil
		}
		return errors.Wrap(err, "evaluating combined views")
	}
}

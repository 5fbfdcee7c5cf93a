package cotrain

import (
	"math/rand"
	"sort"

	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/neurlang/cotrain/datasets"
	"github.com/neurlang/cotrain/features"
	"github.com/neurlang/cotrain/learning"
)

// TieBreak decides which view labels an example that several views want
type TieBreak int

const (
	// FirstView lets views select in declared order, earlier views win
	FirstView TieBreak = iota
	// MostConfident processes the claims of all views by descending
	// confidence, ties go to the earlier view
	MostConfident
)

// ParseTieBreak parses "first" or "confident"
func ParseTieBreak(s string) (TieBreak, error) {
	switch s {
	case "", "first":
		return FirstView, nil
	case "confident":
		return MostConfident, nil
	}
	return 0, errors.Errorf("unknown tie break %q", s)
}

func (t TieBreak) String() string {
	if t == MostConfident {
		return "confident"
	}
	return "first"
}

// Quota decides how the promotion budget of a round is shared by the views
type Quota int

const (
	// SharedQuota promotes at most numPositive positive and numNegative
	// negative examples per round, whichever views select them
	SharedQuota Quota = iota
	// PerViewQuota gives every view its own numPositive and numNegative
	PerViewQuota
)

// ParseQuota parses "shared" or "view"
func ParseQuota(s string) (Quota, error) {
	switch s {
	case "", "shared":
		return SharedQuota, nil
	case "view":
		return PerViewQuota, nil
	}
	return 0, errors.Errorf("unknown quota %q", s)
}

func (q Quota) String() string {
	if q == PerViewQuota {
		return "view"
	}
	return "shared"
}

// View is a view subset with the model most recently fitted on it
type View struct {
	Subset features.Subset
	Model  learning.Model
}

// Predict classifies examples on the view's features
func (v View) Predict(examples []datasets.Example) ([]bool, error) {
	if v.Model == nil {
		return nil, errors.Errorf("view %s is not trained", v.Subset.Name())
	}
	return v.Model.Predict(features.RestrictAll(examples, v.Subset)), nil
}

// Cotrainer runs promotion rounds with one model per view subset. It is not
// safe for concurrent use; run one Cotrainer per fold.
type Cotrainer struct {
	trainer     learning.Trainer
	subsets     []features.Subset
	tieBreak    TieBreak
	quota       Quota
	combination Combination
	balance     bool
	rng         *rand.Rand
	logger      *zap.Logger

	views []View
}

// Option configures a Cotrainer
type Option func(*Cotrainer)

// WithTieBreak sets the policy for examples selected by several views
func WithTieBreak(t TieBreak) Option {
	return func(c *Cotrainer) { c.tieBreak = t }
}

// WithQuota sets whether the views share the promotion budget
func WithQuota(q Quota) Option {
	return func(c *Cotrainer) { c.quota = q }
}

// WithCombination sets how the combined scorer merges view confidences
func WithCombination(m Combination) Option {
	return func(c *Cotrainer) { c.combination = m }
}

// WithBalance oversamples the minority class of the training set before fitting
func WithBalance(seed int64) Option {
	return func(c *Cotrainer) {
		c.balance = true
		c.rng = rand.New(rand.NewSource(seed))
	}
}

// WithLogger sets the logger, the default discards everything
func WithLogger(l *zap.Logger) Option {
	return func(c *Cotrainer) { c.logger = l }
}

// NewCotrainer creates a cotrainer fitting trainer on every subset
func NewCotrainer(trainer learning.Trainer, subsets []features.Subset, opts ...Option) *Cotrainer {
	c := &Cotrainer{
		trainer: trainer,
		subsets: append([]features.Subset(nil), subsets...),
		logger:  zap.NewNop(),
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

// Views returns the subsets with their current models, in declared order
func (c *Cotrainer) Views() []View {
	if c.views == nil {
		views := make([]View, len(c.subsets))
		for i, s := range c.subsets {
			views[i].Subset = s
		}
		return views
	}
	return append([]View(nil), c.views...)
}

// Combined scores examples with all current views together
func (c *Cotrainer) Combined() *Combined {
	return &Combined{Views: c.Views(), Combination: c.combination}
}

// Fit fits a fresh model per view on the training examples
func (c *Cotrainer) Fit(training []datasets.Example) error {
	if c.balance {
		training = datasets.Balance(training, c.rng)
	}
	y, ok := datasets.Labels(training)
	if !ok {
		return &TrainingDataError{View: "all", Err: errors.New("training data holds unlabeled examples")}
	}
	views := make([]View, len(c.subsets))
	for i, s := range c.subsets {
		m, err := c.trainer.Fit(features.RestrictAll(training, s), y)
		if err != nil {
			return &TrainingDataError{View: s.Name(), Err: err}
		}
		views[i] = View{Subset: s, Model: m}
	}
	c.views = views
	return nil
}

type claim struct {
	view       int
	index      int
	positive   bool
	confidence float64
}

// Train runs one promotion round: it fits every view on training, scores
// the untagged batch and selects the most confident positive and negative
// predictions. By default the round promotes at most numPositive positive
// and numNegative negative examples in total; the views take turns by rank
// under FirstView, or compete by confidence under MostConfident. With
// PerViewQuota every view selects up to that many on its own.
// newTagged holds the selections labeled with the selecting view's
// prediction; remaining is the batch without them. The inputs are not
// modified. If a view has no confidence scores the models stay fitted and
// learning.ErrNotProbabilistic is returned.
func (c *Cotrainer) Train(training, untagged []datasets.Example, numPositive, numNegative int) (
	newTagged, remaining []datasets.Example, err error) {

	if numPositive+numNegative >= len(untagged) {
		return nil, nil, &InsufficientDataError{
			Operation: "select",
			Need:      numPositive + numNegative + 1,
			Have:      len(untagged),
		}
	}
	if err := c.Fit(training); err != nil {
		return nil, nil, err
	}

	ranked := make([][]claim, len(c.views))
	for v, view := range c.views {
		X := features.RestrictAll(untagged, view.Subset)
		score := learning.Score(view.Model, X)
		if err := score.Err(); err != nil {
			return nil, nil, errors.Wrapf(err, "view %s", view.Subset.Name())
		}
		predicted := view.Model.Predict(X)
		claims := make([]claim, len(untagged))
		for i, p := range score.Values {
			conf := p
			if !predicted[i] {
				conf = 1 - p
			}
			claims[i] = claim{view: v, index: i, positive: predicted[i], confidence: conf}
		}
		sort.SliceStable(claims, func(a, b int) bool {
			return claims[a].confidence > claims[b].confidence
		})
		ranked[v] = claims
	}

	order := c.order(ranked)

	// budget per view and class, one shared budget unless PerViewQuota
	quota := make([]*[2]int, len(c.views))
	shared := &[2]int{numNegative, numPositive}
	for v := range quota {
		quota[v] = shared
		if c.quota == PerViewQuota {
			quota[v] = &[2]int{numNegative, numPositive}
		}
	}
	selected := make(datasets.IDSet)
	selectedBy := make([]int, len(c.views))
	for _, cl := range order {
		e := untagged[cl.index]
		if selected.Has(e.ID) {
			continue
		}
		class := 0
		if cl.positive {
			class = 1
		}
		if quota[cl.view][class] == 0 {
			continue
		}
		quota[cl.view][class]--
		selected[e.ID] = struct{}{}
		selectedBy[cl.view]++
		newTagged = append(newTagged, e.WithLabel(datasets.LabelOf(cl.positive)))
	}
	remaining = datasets.Without(untagged, selected)

	for v, view := range c.views {
		c.logger.Debug("view selection",
			zap.String("view", view.Subset.Name()),
			zap.Int("selected", selectedBy[v]))
	}
	return newTagged, remaining, nil
}

// order lists the claims of all views in the order they are served
func (c *Cotrainer) order(ranked [][]claim) []claim {
	var order []claim
	switch {
	case c.tieBreak == MostConfident:
		for _, claims := range ranked {
			order = append(order, claims...)
		}
		sort.SliceStable(order, func(a, b int) bool {
			return order[a].confidence > order[b].confidence
		})
	case c.quota == PerViewQuota:
		for _, claims := range ranked {
			order = append(order, claims...)
		}
	default:
		// views take turns rank by rank, the earlier view first
		for r := 0; len(ranked) > 0 && r < len(ranked[0]); r++ {
			for _, claims := range ranked {
				order = append(order, claims[r])
			}
		}
	}
	return order
}

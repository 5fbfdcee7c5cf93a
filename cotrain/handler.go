package cotrain

import (
	"fmt"
	"iter"
	"math/rand"
	"sync"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/neurlang/cotrain/datasets"
	"github.com/neurlang/cotrain/features"
)

// Fold holds the four example sets of one cross-validation fold
type Fold struct {
	Training []datasets.Example `json:"training"`
	Testing  []datasets.Example `json:"testing"`
	Untagged []datasets.Example `json:"untagged"`
	Reserve  []datasets.Example `json:"reserve"`
}

// FoldData is the labeled part of a fold
type FoldData struct {
	Training []datasets.Example
	Testing  []datasets.Example
}

// Counts are the sizes of a fold's sets
type Counts struct {
	Training int
	Testing  int
	Untagged int
	Reserve  int
}

// Total is the number of examples owned by the fold
func (c Counts) Total() int {
	return c.Training + c.Testing + c.Untagged + c.Reserve
}

type foldState struct {
	mu   sync.Mutex
	fold Fold
	rng  *rand.Rand
}

// Handler owns the per fold example sets and all moves between them. Folds
// are locked one by one, so different folds may be updated concurrently.
type Handler struct {
	limit     int
	unlabeled int
	seed      int64
	runID     string
	logger    *zap.Logger

	mu      sync.RWMutex
	subsets []features.Subset
	folds   []*foldState
}

// HandlerOption configures a Handler
type HandlerOption func(*Handler)

// WithSeed seeds the fold split and all sampling
func WithSeed(seed int64) HandlerOption {
	return func(h *Handler) { h.seed = seed }
}

// WithHandlerLogger sets the logger, the default discards everything
func WithHandlerLogger(l *zap.Logger) HandlerOption {
	return func(h *Handler) { h.logger = l }
}

// NewHandler creates an empty handler. limit caps the reserve of each fold,
// zero or less means no cap. unlabeled is the target size of the Untagged batch.
func NewHandler(limit, unlabeled int, opts ...HandlerOption) *Handler {
	h := &Handler{
		limit:     limit,
		unlabeled: unlabeled,
		runID:     uuid.New().String(),
		logger:    zap.NewNop(),
	}
	for _, o := range opts {
		o(h)
	}
	return h
}

// RunID identifies the dataset across dumps and loads
func (h *Handler) RunID() string { return h.runID }

// Unlabeled is the target size of the Untagged batch
func (h *Handler) Unlabeled() int { return h.unlabeled }

// NumFolds is the number of folds
func (h *Handler) NumFolds() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.folds)
}

// Subsets are the view subsets the examples were extracted for
func (h *Handler) Subsets() []features.Subset {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return append([]features.Subset(nil), h.subsets...)
}

// MakeDataset extracts the records, splits the tagged ones into stratified
// folds and gives every fold its own Untagged batch and Reserve, drawn
// without replacement from the untagged records.
func (h *Handler) MakeDataset(tagged, untagged []datasets.Record, numFolds int,
	subsets []features.Subset, extractor features.Extractor) error {

	if numFolds < 2 {
		return errors.Errorf("need at least 2 folds, got %d", numFolds)
	}
	if h.unlabeled <= 0 {
		return errors.Errorf("unlabeled batch size must be positive, got %d", h.unlabeled)
	}
	if need := numFolds * h.unlabeled; len(untagged) < need {
		return &InsufficientDataError{Operation: "make dataset", Need: need, Have: len(untagged)}
	}
	if err := features.ValidateSubsets(subsets); err != nil {
		return err
	}
	for i, r := range tagged {
		if r.Tag == nil {
			return errors.Errorf("tagged record %d has no tag", i)
		}
	}

	// identities must be unique across both inputs
	records := make([]datasets.Record, 0, len(tagged)+len(untagged))
	records = append(records, tagged...)
	for _, r := range untagged {
		r.Tag = nil
		records = append(records, r)
	}
	datasets.AssignIDs(records)

	examples, err := features.Examples(records, extractor, subsets)
	if err != nil {
		return err
	}
	taggedExamples, untaggedExamples := examples[:len(tagged)], examples[len(tagged):]

	rng := rand.New(rand.NewSource(h.seed))
	split, err := datasets.StratifiedFolds(taggedExamples, numFolds, rng)
	if err != nil {
		return err
	}

	pool := datasets.Shuffled(untaggedExamples, rng)
	folds := make([]*foldState, numFolds)
	for i := range folds {
		folds[i] = &foldState{
			fold: Fold{
				Training: split[i].Training,
				Testing:  split[i].Testing,
				Untagged: datasets.Clone(pool[i*h.unlabeled : (i+1)*h.unlabeled]),
			},
		}
	}
	var dropped int
	for n, e := range pool[numFolds*h.unlabeled:] {
		f := &folds[n%numFolds].fold
		if h.limit > 0 && len(f.Reserve) >= h.limit {
			dropped++
			continue
		}
		f.Reserve = append(f.Reserve, e)
	}

	h.install(subsets, folds)
	for i := range folds {
		c := h.Counts(i)
		h.logger.Info("fold created",
			zap.Int("fold", i),
			zap.Int("training", c.Training),
			zap.Int("testing", c.Testing),
			zap.Int("untagged", c.Untagged),
			zap.Int("reserve", c.Reserve))
	}
	if dropped > 0 {
		h.logger.Info("reserve limit reached", zap.Int("limit", h.limit), zap.Int("dropped", dropped))
	}
	return nil
}

// install replaces all folds, each with its own sampling source
func (h *Handler) install(subsets []features.Subset, folds []*foldState) {
	for i, f := range folds {
		f.rng = rand.New(rand.NewSource(h.seed + int64(i) + 1))
	}
	h.mu.Lock()
	h.subsets = append([]features.Subset(nil), subsets...)
	h.folds = folds
	h.mu.Unlock()
}

func (h *Handler) fold(i int) *foldState {
	h.mu.RLock()
	defer h.mu.RUnlock()
	if i < 0 || i >= len(h.folds) {
		panic(fmt.Sprintf("cotrain: fold %d out of range [0, %d)", i, len(h.folds)))
	}
	return h.folds[i]
}

// IterData yields a copy of the Training and Testing sets of every fold in
// fold order. Each call starts over.
func (h *Handler) IterData() iter.Seq2[int, FoldData] {
	return func(yield func(int, FoldData) bool) {
		for i := 0; i < h.NumFolds(); i++ {
			f := h.fold(i)
			f.mu.Lock()
			d := FoldData{
				Training: datasets.Clone(f.fold.Training),
				Testing:  datasets.Clone(f.fold.Testing),
			}
			f.mu.Unlock()
			if !yield(i, d) {
				return
			}
		}
	}
}

// CotrainingData returns a copy of the fold's Untagged batch
func (h *Handler) CotrainingData(fold int) []datasets.Example {
	f := h.fold(fold)
	f.mu.Lock()
	defer f.mu.Unlock()
	return datasets.Clone(f.fold.Untagged)
}

// SamplingData returns a copy of the fold's Reserve
func (h *Handler) SamplingData(fold int) []datasets.Example {
	f := h.fold(fold)
	f.mu.Lock()
	defer f.mu.Unlock()
	return datasets.Clone(f.fold.Reserve)
}

// Fold returns a copy of all four sets of the fold
func (h *Handler) Fold(fold int) Fold {
	f := h.fold(fold)
	f.mu.Lock()
	defer f.mu.Unlock()
	return Fold{
		Training: datasets.Clone(f.fold.Training),
		Testing:  datasets.Clone(f.fold.Testing),
		Untagged: datasets.Clone(f.fold.Untagged),
		Reserve:  datasets.Clone(f.fold.Reserve),
	}
}

// Counts returns the sizes of the fold's sets
func (h *Handler) Counts(fold int) Counts {
	f := h.fold(fold)
	f.mu.Lock()
	defer f.mu.Unlock()
	return Counts{
		Training: len(f.fold.Training),
		Testing:  len(f.fold.Testing),
		Untagged: len(f.fold.Untagged),
		Reserve:  len(f.fold.Reserve),
	}
}

// UpdateTaggedData moves newly labeled examples from the fold's Untagged
// batch to its Training set. Passing an example that is not in the batch,
// or one without a label, is a programming error and panics.
func (h *Handler) UpdateTaggedData(newExamples []datasets.Example, fold int) {
	f := h.fold(fold)
	f.mu.Lock()
	defer f.mu.Unlock()

	batch := datasets.SetOf(f.fold.Untagged)
	moved := make(datasets.IDSet, len(newExamples))
	for _, e := range newExamples {
		if !batch.Has(e.ID) || moved.Has(e.ID) {
			panic(fmt.Sprintf("cotrain: example %s is not in the untagged batch of fold %d", e.ID, fold))
		}
		if e.Label == datasets.Unlabeled {
			panic(fmt.Sprintf("cotrain: example %s promoted without a label", e.ID))
		}
		moved[e.ID] = struct{}{}
	}
	f.fold.Training = append(f.fold.Training, newExamples...)
	f.fold.Untagged = datasets.Without(f.fold.Untagged, moved)
}

// UpdateUntaggedData refills the fold's Untagged batch. remaining must be
// part of the current batch and reserve part of the fold's Reserve, anything
// else panics. Examples are drawn from reserve without replacement until
// the batch is back at its target size or reserve runs out; the number
// drawn is returned. Batch members left out of remaining go back to Reserve.
// numPositive and numNegative are accepted for symmetry with Train and do
// not change the refill, which always aims at the target batch size.
func (h *Handler) UpdateUntaggedData(fold int, remaining, reserve []datasets.Example,
	numPositive, numNegative int) int {

	f := h.fold(fold)
	f.mu.Lock()
	defer f.mu.Unlock()

	batch := datasets.SetOf(f.fold.Untagged)
	kept := make(datasets.IDSet, len(remaining))
	for _, e := range remaining {
		if !batch.Has(e.ID) || kept.Has(e.ID) {
			panic(fmt.Sprintf("cotrain: example %s is not in the untagged batch of fold %d", e.ID, fold))
		}
		kept[e.ID] = struct{}{}
	}
	pool := datasets.SetOf(f.fold.Reserve)
	offered := make(datasets.IDSet, len(reserve))
	for _, e := range reserve {
		if !pool.Has(e.ID) || offered.Has(e.ID) {
			panic(fmt.Sprintf("cotrain: example %s is not in the reserve of fold %d", e.ID, fold))
		}
		offered[e.ID] = struct{}{}
	}

	need := h.unlabeled - len(remaining)
	if need < 0 {
		need = 0
	}
	drawn, _ := datasets.Sample(reserve, need, f.rng)

	// canonical copies, the caller's slices may carry stale labels
	returned := make([]datasets.Example, 0, len(f.fold.Untagged)-len(remaining))
	untagged := make([]datasets.Example, 0, len(remaining)+len(drawn))
	for _, e := range f.fold.Untagged {
		if kept.Has(e.ID) {
			untagged = append(untagged, e)
		} else {
			returned = append(returned, e)
		}
	}
	untagged = append(untagged, drawn...)

	f.fold.Reserve = append(datasets.Without(f.fold.Reserve, datasets.SetOf(drawn)), returned...)
	f.fold.Untagged = untagged

	h.logger.Debug("untagged batch replenished",
		zap.Int("fold", fold),
		zap.Int("kept", len(remaining)),
		zap.Int("drawn", len(drawn)),
		zap.Int("returned", len(returned)),
		zap.Int("untagged", len(untagged)),
		zap.Int("reserve", len(f.fold.Reserve)))
	return len(drawn)
}

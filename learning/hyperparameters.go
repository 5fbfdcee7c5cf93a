package learning

import "math/rand"

import "github.com/pkg/errors"

import "github.com/neurlang/cotrain/datasets"

// Vectorizer kinds
const (
	DictVectorizerKind    = "dict"
	HashingVectorizerKind = "hashing"
)

// Preprocessor kinds, the empty kind disables the stage
const (
	NoPreprocessor     = ""
	MaxAbsPreprocessor = "maxabs"
	L2Preprocessor     = "l2"
)

// HyperParameters are shared by every learner. Learner packages embed them.
type HyperParameters struct {
	Vectorizer   string // dict (default) or hashing
	HashWidth    uint32 // number of hashing buckets, hashing vectorizer only
	Preprocessor string // optional stage after vectorizing: maxabs, l2 or empty

	Seed int64 // seed of the training row shuffle
}

// H returns the shared hyperparameters
func (h *HyperParameters) H() *HyperParameters {
	return h
}

// Shuffle returns a permutation of n training rows. Learners such as SGD
// depend on the row order, so it is seeded for reproducible fits.
func (h HyperParameters) Shuffle(n int) []int {
	return rand.New(rand.NewSource(h.Seed)).Perm(n)
}

// FitPipeline fits the vectorizer and the optional preprocessor on the training vectors
func (h HyperParameters) FitPipeline(X []datasets.Vector) (*Pipeline, error) {
	var p Pipeline
	switch h.Vectorizer {
	case "", DictVectorizerKind:
		p.Vectorizer = FitDictVectorizer(X)
	case HashingVectorizerKind:
		p.Vectorizer = NewHashingVectorizer(h.HashWidth)
	default:
		return nil, errors.Errorf("unknown vectorizer %q", h.Vectorizer)
	}
	switch h.Preprocessor {
	case NoPreprocessor:
	case MaxAbsPreprocessor:
		p.Preprocessor = FitMaxAbsScaler(p.Vectorizer.Transform(X), p.Vectorizer.Dim())
	case L2Preprocessor:
		p.Preprocessor = Normalizer{}
	default:
		return nil, errors.Errorf("unknown preprocessor %q", h.Preprocessor)
	}
	return &p, nil
}

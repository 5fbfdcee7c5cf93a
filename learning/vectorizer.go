package learning

import "sort"

import "github.com/neurlang/cotrain/datasets"
import "github.com/neurlang/cotrain/hash"

// SparseRow is one vectorized example, indices ascending
type SparseRow struct {
	Index []int
	Value []float64
}

// Dot computes the dot product with a dense weight vector
func (r SparseRow) Dot(w []float64) (sum float64) {
	for k, j := range r.Index {
		sum += w[j] * r.Value[k]
	}
	return
}

// Vectorizer maps feature dictionaries to sparse rows of a fixed dimension
type Vectorizer interface {
	Transform(X []datasets.Vector) []SparseRow
	Dim() int
	Kind() string
}

// DictVectorizer assigns every feature name seen at fit time its own
// column. Features unseen at fit time are ignored.
type DictVectorizer struct {
	Names []string `json:"names"`

	index map[string]int
}

// FitDictVectorizer learns the sorted vocabulary of X
func FitDictVectorizer(X []datasets.Vector) *DictVectorizer {
	seen := make(map[string]struct{})
	for _, x := range X {
		for k := range x {
			seen[k] = struct{}{}
		}
	}
	names := make([]string, 0, len(seen))
	for k := range seen {
		names = append(names, k)
	}
	sort.Strings(names)
	return NewDictVectorizer(names)
}

// NewDictVectorizer builds a vectorizer over a known vocabulary
func NewDictVectorizer(names []string) *DictVectorizer {
	index := make(map[string]int, len(names))
	for i, k := range names {
		index[k] = i
	}
	return &DictVectorizer{Names: names, index: index}
}

// Transform implements Vectorizer
func (d *DictVectorizer) Transform(X []datasets.Vector) []SparseRow {
	rows := make([]SparseRow, len(X))
	for i, x := range X {
		var row SparseRow
		for k, v := range x {
			if j, ok := d.index[k]; ok && v != 0 {
				row.Index = append(row.Index, j)
				row.Value = append(row.Value, v)
			}
		}
		rows[i] = sortRow(row)
	}
	return rows
}

// Dim implements Vectorizer
func (d *DictVectorizer) Dim() int { return len(d.Names) }

// Kind implements Vectorizer
func (d *DictVectorizer) Kind() string { return DictVectorizerKind }

// DefaultHashWidth is used when the hashing vectorizer is given no width
const DefaultHashWidth = 1 << 18

// hashingSalt keeps feature columns stable across runs and artifacts
const hashingSalt = 0x2545F491

// HashingVectorizer folds feature names into a fixed number of columns. It
// needs no fitting, colliding features share a column.
type HashingVectorizer struct {
	Width uint32 `json:"width"`
}

// NewHashingVectorizer builds a hashing vectorizer with width columns
func NewHashingVectorizer(width uint32) *HashingVectorizer {
	if width == 0 {
		width = DefaultHashWidth
	}
	return &HashingVectorizer{Width: width}
}

// Transform implements Vectorizer
func (h *HashingVectorizer) Transform(X []datasets.Vector) []SparseRow {
	rows := make([]SparseRow, len(X))
	for i, x := range X {
		keys := make([]string, 0, len(x))
		for k, v := range x {
			if v != 0 {
				keys = append(keys, k)
			}
		}
		cols := make([]uint32, len(keys))
		hash.StringsHashVectorized(cols, keys, hashingSalt, h.Width)

		merged := make(map[int]float64, len(keys))
		for n, k := range keys {
			merged[int(cols[n])] += x[k]
		}
		var row SparseRow
		for j, v := range merged {
			row.Index = append(row.Index, j)
			row.Value = append(row.Value, v)
		}
		rows[i] = sortRow(row)
	}
	return rows
}

// Dim implements Vectorizer
func (h *HashingVectorizer) Dim() int { return int(h.Width) }

// Kind implements Vectorizer
func (h *HashingVectorizer) Kind() string { return HashingVectorizerKind }

type byIndex SparseRow

func (r byIndex) Len() int           { return len(r.Index) }
func (r byIndex) Less(i, j int) bool { return r.Index[i] < r.Index[j] }
func (r byIndex) Swap(i, j int) {
	r.Index[i], r.Index[j] = r.Index[j], r.Index[i]
	r.Value[i], r.Value[j] = r.Value[j], r.Value[i]
}

func sortRow(r SparseRow) SparseRow {
	sort.Sort(byIndex(r))
	return r
}

package features

import (
	"github.com/pkg/errors"

	"github.com/neurlang/cotrain/datasets"
)

// Names of the views produced by DefaultExtractor
const (
	Lexical    = "lexical"
	Structural = "structural"
	Syntactic  = "syntactic"
	Semantic   = "semantic"
)

// Extractor converts a raw record into its named feature views
type Extractor interface {
	Extract(r datasets.Record) (map[string]datasets.Vector, error)
}

// ExtractorFunc adapts a function to the Extractor interface
type ExtractorFunc func(r datasets.Record) (map[string]datasets.Vector, error)

// Extract calls f(r)
func (f ExtractorFunc) Extract(r datasets.Record) (map[string]datasets.Vector, error) {
	return f(r)
}

// Examples extracts every record into an example labeled with the record's
// tag. Only views named by the subsets are kept; a missing view is an error.
func Examples(records []datasets.Record, ex Extractor, subsets []Subset) ([]datasets.Example, error) {
	wanted := Views(subsets)
	out := make([]datasets.Example, len(records))
	for i := range records {
		r := records[i]
		views, err := ex.Extract(r)
		if err != nil {
			return nil, errors.Wrapf(err, "extracting record %s", r.ID)
		}
		kept := make(map[string]datasets.Vector, len(wanted))
		for _, v := range wanted {
			vec, ok := views[v]
			if !ok {
				return nil, errors.Errorf("record %s: extractor produced no %q view", r.ID, v)
			}
			kept[v] = vec
		}
		out[i] = datasets.Example{
			ID:     r.ID,
			Label:  r.Label(),
			Views:  kept,
			Record: &r,
		}
	}
	return out, nil
}

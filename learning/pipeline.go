package learning

import "encoding/json"

import "github.com/pkg/errors"

import "github.com/neurlang/cotrain/datasets"

// Pipeline turns feature dictionaries into the rows a learner consumes
type Pipeline struct {
	Vectorizer   Vectorizer
	Preprocessor Preprocessor
}

// Transform runs the vectorizer and, if present, the preprocessor
func (p *Pipeline) Transform(X []datasets.Vector) []SparseRow {
	rows := p.Vectorizer.Transform(X)
	if p.Preprocessor != nil {
		rows = p.Preprocessor.Transform(rows)
	}
	return rows
}

// Dim is the number of columns of the transformed rows
func (p *Pipeline) Dim() int {
	return p.Vectorizer.Dim()
}

type stage struct {
	Kind   string          `json:"kind"`
	Params json.RawMessage `json:"params"`
}

type pipelineJSON struct {
	Vectorizer   stage  `json:"vectorizer"`
	Preprocessor *stage `json:"preprocessor,omitempty"`
}

// MarshalJSON writes both stages tagged with their kind
func (p *Pipeline) MarshalJSON() ([]byte, error) {
	var out pipelineJSON
	params, err := json.Marshal(p.Vectorizer)
	if err != nil {
		return nil, err
	}
	out.Vectorizer = stage{Kind: p.Vectorizer.Kind(), Params: params}
	if p.Preprocessor != nil {
		params, err = json.Marshal(p.Preprocessor)
		if err != nil {
			return nil, err
		}
		out.Preprocessor = &stage{Kind: p.Preprocessor.Kind(), Params: params}
	}
	return json.Marshal(out)
}

// UnmarshalJSON restores both stages by their kind
func (p *Pipeline) UnmarshalJSON(data []byte) error {
	var in pipelineJSON
	if err := json.Unmarshal(data, &in); err != nil {
		return err
	}
	switch in.Vectorizer.Kind {
	case DictVectorizerKind:
		var d DictVectorizer
		if err := json.Unmarshal(in.Vectorizer.Params, &d); err != nil {
			return errors.Wrap(err, "dict vectorizer")
		}
		p.Vectorizer = NewDictVectorizer(d.Names)
	case HashingVectorizerKind:
		var h HashingVectorizer
		if err := json.Unmarshal(in.Vectorizer.Params, &h); err != nil {
			return errors.Wrap(err, "hashing vectorizer")
		}
		p.Vectorizer = NewHashingVectorizer(h.Width)
	default:
		return errors.Errorf("unknown vectorizer %q", in.Vectorizer.Kind)
	}
	p.Preprocessor = nil
	if in.Preprocessor == nil {
		return nil
	}
	switch in.Preprocessor.Kind {
	case MaxAbsPreprocessor:
		var m MaxAbsScaler
		if err := json.Unmarshal(in.Preprocessor.Params, &m); err != nil {
			return errors.Wrap(err, "maxabs scaler")
		}
		p.Preprocessor = &m
	case L2Preprocessor:
		p.Preprocessor = Normalizer{}
	default:
		return errors.Errorf("unknown preprocessor %q", in.Preprocessor.Kind)
	}
	return nil
}

package learning

import "encoding/json"
import "io"
import "os"

import "github.com/golang/snappy"
import "github.com/pkg/errors"

// VectorizerSuffix names the companion artifact holding the pipeline
const VectorizerSuffix = "_vectorizer"

type artifact struct {
	Kind   string          `json:"kind"`
	Params json.RawMessage `json:"params"`
}

// Save writes the model parameters to filename and its pipeline to
// filename+VectorizerSuffix, both as snappy framed JSON
func Save(filename string, m Model) error {
	p, ok := m.(Persistable)
	if !ok {
		return errors.Errorf("model %s can't be saved", m.Kind())
	}
	params, err := json.Marshal(p.Params())
	if err != nil {
		return errors.Wrap(err, "encoding parameters")
	}
	err = writeCompressedFile(filename, artifact{Kind: m.Kind(), Params: params})
	if err != nil {
		return err
	}
	return writeCompressedFile(filename+VectorizerSuffix, p.Pipeline())
}

// Load reads a model written by Save
func Load(filename string) (Model, error) {
	var a artifact
	if err := readCompressedFile(filename, &a); err != nil {
		return nil, err
	}
	dec, err := decoder(a.Kind)
	if err != nil {
		return nil, err
	}
	var p Pipeline
	if err := readCompressedFile(filename+VectorizerSuffix, &p); err != nil {
		return nil, err
	}
	m, err := dec(a.Params, &p)
	if err != nil {
		return nil, errors.Wrapf(err, "decoding %s model", a.Kind)
	}
	return m, nil
}

func writeCompressedFile(name string, v interface{}) error {
	file, err := os.Create(name)
	if err != nil {
		return errors.Wrap(err, "creating artifact")
	}
	err = WriteCompressed(file, v)
	if cerr := file.Close(); err == nil {
		err = cerr
	}
	return errors.Wrapf(err, "writing %s", name)
}

func readCompressedFile(name string, v interface{}) error {
	file, err := os.Open(name)
	if err != nil {
		return errors.Wrap(err, "opening artifact")
	}
	defer file.Close()
	return errors.Wrapf(ReadCompressed(file, v), "reading %s", name)
}

// WriteCompressed encodes v as snappy framed JSON
func WriteCompressed(w io.Writer, v interface{}) error {
	sw := snappy.NewBufferedWriter(w)
	if err := json.NewEncoder(sw).Encode(v); err != nil {
		sw.Close()
		return err
	}
	return sw.Close()
}

// ReadCompressed decodes snappy framed JSON into v
func ReadCompressed(r io.Reader, v interface{}) error {
	return json.NewDecoder(snappy.NewReader(r)).Decode(v)
}

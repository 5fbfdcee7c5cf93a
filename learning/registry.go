package learning

import "encoding/json"
import "sort"
import "sync"

import "github.com/pkg/errors"

// Persistable is a model which can be written as a pair of artifacts
type Persistable interface {
	Model
	Pipeline() *Pipeline
	Params() interface{}
}

// Decoder rebuilds a model of one kind from its parameters and pipeline
type Decoder func(params json.RawMessage, pipeline *Pipeline) (Model, error)

var (
	registryMu sync.RWMutex
	decoders   = make(map[string]Decoder)
)

// Register makes a model kind loadable. Learner packages call it from init.
func Register(kind string, dec Decoder) {
	registryMu.Lock()
	defer registryMu.Unlock()
	if dec == nil {
		panic("learning: Register decoder is nil")
	}
	if _, dup := decoders[kind]; dup {
		panic("learning: Register called twice for kind " + kind)
	}
	decoders[kind] = dec
}

// Kinds lists the registered model kinds
func Kinds() []string {
	registryMu.RLock()
	defer registryMu.RUnlock()
	kinds := make([]string, 0, len(decoders))
	for k := range decoders {
		kinds = append(kinds, k)
	}
	sort.Strings(kinds)
	return kinds
}

func decoder(kind string) (Decoder, error) {
	registryMu.RLock()
	defer registryMu.RUnlock()
	dec, ok := decoders[kind]
	if !ok {
		return nil, errors.Errorf("unknown model kind %q", kind)
	}
	return dec, nil
}

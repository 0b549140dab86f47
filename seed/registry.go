package seed

import (
	"context"
	"encoding/json"
	"fmt"
	"io"

	"github.com/puzpuzpuz/xsync/v4"
)

// Source produces the content of one seeded file
type Source interface {
	Open(ctx context.Context) (io.ReadCloser, error)
}

// Factory decodes the raw JSON of a source definition
type Factory func(raw []byte) (Source, error)

// Registry maps a source "type" to the factory that decodes it
type Registry struct {
	factories *xsync.Map[string, Factory]
}

func NewRegistry() *Registry {
	return &Registry{factories: xsync.NewMap[string, Factory]()}
}

// Register ties a factory to a source type. The first registration of a type
// wins; later ones are ignored.
func (r *Registry) Register(sourceType string, factory Factory) {
	r.factories.LoadOrStore(sourceType, factory)
}

// Len returns the number of registered source types
func (r *Registry) Len() int {
	return r.factories.Size()
}

// Decode picks the factory named by the "type" field of raw
func (r *Registry) Decode(raw []byte) (Source, error) {
	var meta struct {
		Type string `json:"type"`
	}
	if err := json.Unmarshal(raw, &meta); err != nil {
		return nil, err
	}
	factory, ok := r.factories.Load(meta.Type)
	if !ok {
		return nil, fmt.Errorf("no source factory for %q", meta.Type)
	}
	return factory(raw)
}

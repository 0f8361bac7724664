// Package pipeline compiles pipeline definitions into ordered processor
// chains and runs documents through them.
package pipeline

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/joseph-ayodele/ingest-attachment/internal/configutil"
	"github.com/joseph-ayodele/ingest-attachment/internal/document"
)

// Processor transforms one document in place.
type Processor interface {
	Type() string
	Tag() string
	Execute(ctx context.Context, doc *document.Document) error
}

// Factory builds a Processor from its configuration. Every key the factory
// understands must be read through props; leftovers are rejected by the
// caller.
type Factory interface {
	Create(props *configutil.Properties) (Processor, error)
}

// FactoryFunc adapts a function to Factory.
type FactoryFunc func(props *configutil.Properties) (Processor, error)

func (f FactoryFunc) Create(props *configutil.Properties) (Processor, error) {
	return f(props)
}

// Registry maps processor type names to factories. It is safe for
// concurrent use.
type Registry struct {
	mu        sync.RWMutex
	factories map[string]Factory
}

func NewRegistry() *Registry {
	return &Registry{factories: map[string]Factory{}}
}

// Register adds f under name. Names are unique.
func (r *Registry) Register(name string, f Factory) error {
	if name == "" || f == nil {
		return fmt.Errorf("register processor: name and factory are required")
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.factories[name]; exists {
		return fmt.Errorf("processor type [%s] is already registered", name)
	}
	r.factories[name] = f
	return nil
}

func (r *Registry) Lookup(name string) (Factory, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	f, ok := r.factories[name]
	return f, ok
}

// Types returns the registered names, sorted.
func (r *Registry) Types() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]string, 0, len(r.factories))
	for name := range r.factories {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}

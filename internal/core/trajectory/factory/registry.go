package factory

import (
	"fmt"
	"sort"
	"sync"
)

// Registry holds factories by name and by service route.
type Registry struct {
	mu        sync.RWMutex
	byName    map[string]Factory
	byService map[string]Factory
}

func NewRegistry() *Registry {
	return &Registry{
		byName:    make(map[string]Factory),
		byService: make(map[string]Factory),
	}
}

// Register adds f. Names and service routes must be unique.
func (r *Registry) Register(f Factory) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.byName[f.Name()]; exists {
		return fmt.Errorf("%w: %s", ErrFactoryExists, f.Name())
	}
	if other, exists := r.byService[f.Service()]; exists {
		return fmt.Errorf("%w: service %s taken by %s", ErrFactoryExists, f.Service(), other.Name())
	}
	r.byName[f.Name()] = f
	r.byService[f.Service()] = f
	return nil
}

// MustRegister is Register for wiring code that cannot recover.
func (r *Registry) MustRegister(factories ...Factory) *Registry {
	for _, f := range factories {
		if err := r.Register(f); err != nil {
			panic(err)
		}
	}
	return r
}

func (r *Registry) Get(name string) (Factory, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	f, ok := r.byName[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownFactory, name)
	}
	return f, nil
}

func (r *Registry) ByService(service string) (Factory, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	f, ok := r.byService[service]
	return f, ok
}

// Names returns the registered factory names, sorted.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.byName))
	for name := range r.byName {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// All returns the registered factories ordered by name.
func (r *Registry) All() []Factory {
	names := r.Names()

	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]Factory, 0, len(names))
	for _, name := range names {
		if f, ok := r.byName[name]; ok {
			out = append(out, f)
		}
	}
	return out
}

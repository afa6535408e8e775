package services

import (
	"fmt"
	"sync"

	"github.com/mrlokans/schooldesk/internal/entities"
)

// Registry is the static lookup table from service tag to adapter.
type Registry struct {
	mu       sync.RWMutex
	adapters map[entities.Service]Adapter
}

// NewRegistry creates a registry holding the given adapters.
func NewRegistry(adapters ...Adapter) *Registry {
	r := &Registry{adapters: make(map[entities.Service]Adapter, len(adapters))}
	for _, a := range adapters {
		r.Register(a)
	}
	return r
}

// Register adds or replaces the adapter for a.Service().
func (r *Registry) Register(a Adapter) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.adapters[a.Service()] = a
}

// Lookup returns the adapter registered for service.
func (r *Registry) Lookup(service entities.Service) (Adapter, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	a, ok := r.adapters[service]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrServiceNotImplemented, service)
	}
	return a, nil
}

// Missing lists the known services without a registered adapter.
func (r *Registry) Missing() []entities.Service {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var missing []entities.Service
	for _, s := range entities.AllServices() {
		if _, ok := r.adapters[s]; !ok {
			missing = append(missing, s)
		}
	}
	return missing
}

// Exhaustive fails when a known service has no adapter.
func (r *Registry) Exhaustive() error {
	if missing := r.Missing(); len(missing) > 0 {
		return fmt.Errorf("%w: %v", ErrServiceNotImplemented, missing)
	}
	return nil
}

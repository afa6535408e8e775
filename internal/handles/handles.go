// Package handles keeps provider-native objects needed for follow-up calls
// (e.g. fetching a discussion's messages) out of the serializable entities.
//
// Handles live only in memory, keyed by service and entity id, and are
// dropped when the current account changes.
package handles

import (
	"sync"

	"github.com/mrlokans/schooldesk/internal/entities"
)

type key struct {
	service entities.Service
	id      string
}

// Registry is a concurrency-safe side map from entity id to provider handle.
type Registry struct {
	mu      sync.RWMutex
	handles map[key]any
}

func NewRegistry() *Registry {
	return &Registry{handles: make(map[key]any)}
}

// Put stores the handle for an entity id, replacing any previous one.
func (r *Registry) Put(service entities.Service, id string, handle any) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.handles[key{service, id}] = handle
}

// Get returns the handle stored for an entity id.
func (r *Registry) Get(service entities.Service, id string) (any, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	h, ok := r.handles[key{service, id}]
	return h, ok
}

// Reset drops every handle.
func (r *Registry) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.handles = make(map[key]any)
}

// Len returns the number of stored handles.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.handles)
}

// Lookup returns the handle for id asserted to type T.
func Lookup[T any](r *Registry, service entities.Service, id string) (T, bool) {
	var zero T
	h, ok := r.Get(service, id)
	if !ok {
		return zero, false
	}
	typed, ok := h.(T)
	return typed, ok
}

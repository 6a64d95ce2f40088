// Package preview hands out scoped references to locally selected videos so a
// player can show the original before any upload finishes.
//
// Every Acquire must be paired with a Release; the registry's live count lets
// callers verify that repeated selections do not accumulate handles.
package preview

import (
	"errors"
	"sync"

	"github.com/google/uuid"

	"sportanalyzer/internal/media"
)

// ErrReleased is returned when resolving a handle that is no longer live.
var ErrReleased = errors.New("preview handle released")

// Handle is a scoped reference to a selected file.
type Handle struct {
	ID   string
	Ref  string
	File media.File
}

// Valid reports whether the handle has been issued.
func (h Handle) Valid() bool {
	return h.ID != ""
}

// Registry tracks issued preview handles.
type Registry struct {
	mu   sync.Mutex
	live map[string]Handle
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{live: make(map[string]Handle)}
}

// Acquire issues a handle for file. The reference is the file path, which any
// local media engine can open directly.
func (r *Registry) Acquire(file media.File) Handle {
	h := Handle{ID: uuid.NewString(), Ref: file.Path, File: file}
	r.mu.Lock()
	r.live[h.ID] = h
	r.mu.Unlock()
	return h
}

// Release invalidates h. Releasing an unknown or zero handle is a no-op.
func (r *Registry) Release(h Handle) {
	if !h.Valid() {
		return
	}
	r.mu.Lock()
	delete(r.live, h.ID)
	r.mu.Unlock()
}

// Resolve returns the reference for a live handle.
func (r *Registry) Resolve(id string) (string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	h, ok := r.live[id]
	if !ok {
		return "", ErrReleased
	}
	return h.Ref, nil
}

// Live returns the number of handles not yet released.
func (r *Registry) Live() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.live)
}

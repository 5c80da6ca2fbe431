// Package registry implements the backend registry (component C4): it owns
// the set of live staging buffers, handing one out per producer on first use
// and reclaiming it once the producer is gone and the consumer has drained
// it. The mutex here is held only briefly, on buffer birth and death; it is
// never touched by a producer's hot path once its buffer has been obtained.
package registry

import (
	"sync"

	"github.com/hncelestialtech/static-logger/internal/ring"
)

// Registry tracks every staging buffer currently known to the backend.
type Registry struct {
	mu      sync.Mutex
	buffers []*ring.Buffer
	nextID  uint64

	wake chan struct{}
}

// New returns an empty registry.
func New() *Registry {
	return &Registry{wake: make(chan struct{}, 1)}
}

// NewBuffer allocates a buffer of the given capacity, registers it, and
// returns it. capacity of 0 selects ring.DefaultCapacity.
func (r *Registry) NewBuffer(capacity uint64) *ring.Buffer {
	r.mu.Lock()
	id := r.nextID
	r.nextID++
	b := ring.New(id, capacity)
	r.buffers = append(r.buffers, b)
	r.mu.Unlock()
	r.Wake()
	return b
}

// Snapshot returns the current set of registered buffers, a private copy of
// the live slice header safe to iterate without holding the registry lock.
func (r *Registry) Snapshot() []*ring.Buffer {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]*ring.Buffer, len(r.buffers))
	copy(out, r.buffers)
	return out
}

// Reclaim drops every buffer that reports CanReclaim, returning how many
// were removed. The drain loop calls this once per pass.
func (r *Registry) Reclaim() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := 0
	kept := r.buffers[:0]
	for _, b := range r.buffers {
		if b.CanReclaim() {
			n++
			continue
		}
		kept = append(kept, b)
	}
	r.buffers = kept
	return n
}

// Len reports the number of currently registered buffers.
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.buffers)
}

// Notify returns the channel the drain loop selects on to wake up between
// poll intervals, e.g. when a new buffer is registered.
func (r *Registry) Notify() <-chan struct{} {
	return r.wake
}

// Wake signals the drain loop's Notify channel without blocking.
func (r *Registry) Wake() {
	select {
	case r.wake <- struct{}{}:
	default:
	}
}

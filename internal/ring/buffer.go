// Package ring implements the per-producer single-producer/single-consumer
// byte staging buffer (component C3). There is exactly one Buffer per
// producer; the producer side of the API must only ever be called from one
// goroutine, and the consumer side from one (possibly different) goroutine.
//
// The two positions and the wrap marker are kept in atomic.Uint64 fields so
// that a write by one side becomes visible to the other with the
// release/acquire ordering the design calls for; Go's atomics are
// sequentially consistent, which is strictly stronger than required. Each
// side additionally keeps a private, non-atomic cache of its own position to
// avoid atomic loads on the fast path.
package ring

import (
	"runtime"
	"sync/atomic"
)

// DefaultCapacity is the staging buffer size used when none is specified,
// matching original_source's STAGING_BUFFER_SIZE.
const DefaultCapacity = 1 << 20 // 1 MiB

// Buffer is one producer's staging ring.
type Buffer struct {
	storage  []byte
	capacity uint64
	id       uint64

	// Producer-owned. producerPosCache mirrors producerPos and is read/written
	// only by the producer; producerPos is the atomically published copy the
	// consumer observes.
	producerPosCache   uint64
	minFreeSpace       uint64
	producerPos        atomic.Uint64
	endOfRecordedSpace atomic.Uint64

	// Consumer-owned.
	consumerPosCache uint64
	consumerPos      atomic.Uint64

	shouldDeallocate atomic.Bool
}

// New allocates a Buffer with the given capacity (0 selects DefaultCapacity)
// and identifier.
func New(id uint64, capacity uint64) *Buffer {
	if capacity == 0 {
		capacity = DefaultCapacity
	}
	b := &Buffer{
		storage:  make([]byte, capacity),
		capacity: capacity,
		id:       id,
	}
	b.minFreeSpace = capacity
	b.endOfRecordedSpace.Store(capacity)
	return b
}

// ID returns the buffer's registry identifier.
func (b *Buffer) ID() uint64 { return b.id }

// Capacity returns the buffer's total byte capacity.
func (b *Buffer) Capacity() uint64 { return b.capacity }

// Reserve attempts to reserve n contiguous bytes for the producer without
// making them visible to the consumer. The producer must follow with Commit
// before calling Reserve again. It blocks until space is available.
func (b *Buffer) Reserve(n uint64) []byte {
	if n < b.minFreeSpace {
		pos := b.producerPosCache
		return b.storage[pos : pos+n]
	}
	return b.reserveSlow(n, true)
}

// TryReserve behaves like Reserve but returns nil instead of blocking when
// there is not enough space. It exists to support the "discard on full"
// benchmark path and tests of the blocking behavior.
func (b *Buffer) TryReserve(n uint64) []byte {
	if n < b.minFreeSpace {
		pos := b.producerPosCache
		return b.storage[pos : pos+n]
	}
	return b.reserveSlow(n, false)
}

func (b *Buffer) reserveSlow(n uint64, blocking bool) []byte {
	spins := 0
	for b.minFreeSpace <= n {
		c := b.consumerPos.Load() // acquire: paired with Consume's release

		if c <= b.producerPosCache {
			b.minFreeSpace = b.capacity - b.producerPosCache

			if b.minFreeSpace > n {
				break
			}

			// Not enough space at the tail; publish the wrap boundary before
			// rolling producerPos back to the front of storage.
			b.endOfRecordedSpace.Store(b.producerPosCache)

			// Never roll over onto the consumer's position: doing so would
			// make a full buffer indistinguishable from an empty one.
			if c != 0 {
				b.producerPosCache = 0
				b.producerPos.Store(0)
				b.minFreeSpace = c
			}
		} else {
			b.minFreeSpace = c - b.producerPosCache
		}

		if b.minFreeSpace <= n {
			if !blocking {
				return nil
			}
			spins = spinWait(spins)
		}
	}

	pos := b.producerPosCache
	return b.storage[pos : pos+n]
}

// Commit publishes n bytes, previously obtained from Reserve, to the
// consumer. This is the release operation: it must happen only after the
// producer has finished writing into the reserved bytes.
func (b *Buffer) Commit(n uint64) {
	b.minFreeSpace -= n
	b.producerPosCache += n
	b.producerPos.Store(b.producerPosCache)
}

// Peek returns a contiguous slice of unconsumed bytes and its length. It is
// the consumer's acquire operation: reading producerPos here is what makes
// the producer's prior Commit visible.
func (b *Buffer) Peek() ([]byte, uint64) {
	p := b.producerPos.Load() // acquire: paired with Commit's release
	c := b.consumerPosCache

	if p < c {
		end := b.endOfRecordedSpace.Load()
		if avail := end - c; avail > 0 {
			return b.storage[c : c+avail], avail
		}
		c = 0
		b.consumerPosCache = 0
		b.consumerPos.Store(0)
	}

	avail := p - c
	if avail == 0 {
		return nil, 0
	}
	return b.storage[c : c+avail], avail
}

// Consume returns n bytes, previously obtained from Peek, back to the
// producer. This is the consumer's release operation.
func (b *Buffer) Consume(n uint64) {
	b.consumerPosCache += n
	b.consumerPos.Store(b.consumerPosCache)
}

// MarkShouldDeallocate flags the buffer for reclamation once drained,
// mirroring a producer thread's destructor running.
func (b *Buffer) MarkShouldDeallocate() {
	b.shouldDeallocate.Store(true)
}

// CanReclaim reports whether the consumer may safely drop this buffer.
func (b *Buffer) CanReclaim() bool {
	if !b.shouldDeallocate.Load() {
		return false
	}
	return b.consumerPos.Load() == b.producerPos.Load()
}

func spinWait(spins int) int {
	switch {
	case spins < 64:
		// busy spin, no-op
	case spins < 1024:
		runtime.Gosched()
	default:
		runtime.Gosched()
		return 1024
	}
	return spins + 1
}

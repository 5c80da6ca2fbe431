package staticlog

import (
	"github.com/hncelestialtech/static-logger/internal/encode"
	"github.com/hncelestialtech/static-logger/internal/ring"
)

// Producer is a single goroutine's handle onto its own staging buffer. It
// must never be used from more than one goroutine at a time: the ring it
// wraps is strictly single-producer/single-consumer, the Go translation of
// a producer thread's thread-local StagingBuffer pointer (spec.md §4.4,
// §9).
type Producer struct {
	buf    *ring.Buffer
	widths []byte
	sizes  []uint64
}

// NewProducer registers a new staging buffer with the process-wide backend
// and returns a handle for the calling goroutine. An optional capacity
// overrides ring.DefaultCapacity; calling this ahead of the goroutine's
// first Log is the equivalent of spec.md §4.6's preallocate().
func NewProducer(capacity ...uint64) *Producer {
	global.ensureStarted()
	var c uint64
	if len(capacity) > 0 {
		c = capacity[0]
	}
	return &Producer{buf: global.reg.NewBuffer(c)}
}

// Close marks the producer's buffer for reclamation once the drain has
// consumed everything already committed, mirroring a producer thread's
// destructor flipping should_deallocate. It does not block; call Sync
// first if the caller needs the buffer drained before this returns.
func (p *Producer) Close() {
	p.buf.MarkShouldDeallocate()
}

// Log encodes and commits one entry for site if the process-wide level
// permits it. It performs no I/O, no formatting, and the only allocation on
// this path is boxing each variadic argument into an any — unavoidable in
// Go without a code generator, and called out in DESIGN.md as the one
// accepted deviation from "no allocation."
func (p *Producer) Log(site *Site, args ...any) {
	lvl := GetLevel()
	if site.level == Silent || lvl < site.level {
		return
	}

	n := len(site.params)
	if cap(p.widths) < n {
		p.widths = make([]byte, n)
		p.sizes = make([]uint64, n)
	}
	widths := p.widths[:n]
	sizes := p.sizes[:n]

	payloadSize, err := encode.Size(site.params, args, widths, sizes)
	if err != nil {
		global.decodeErrors.Add(1)
		return
	}

	total := uint64(ring.HeaderSize) + uint64(n) + payloadSize
	dst := p.buf.Reserve(total)

	ring.PutHeader(dst, ring.Header{
		Timestamp: uint64(defaultClock.UnixNano()),
		EntrySize: uint32(total),
		SiteID:    site.id,
		NumParams: uint16(n),
	})
	copy(dst[ring.WidthsOffset:ring.WidthsOffset+n], widths)

	// Size already validated every argument against its ParamType, so
	// Serialize operating over the same data cannot fail in steady state;
	// the counter exists for defence against a future encode/classify
	// mismatch rather than an expected runtime occurrence.
	if err := encode.Serialize(site.params, sizes, args, dst[ring.PayloadOffset(uint16(n)):]); err != nil {
		global.decodeErrors.Add(1)
	}

	p.buf.Commit(total)
}

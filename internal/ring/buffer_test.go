package ring

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReserveCommitPeekConsumeRoundTrip(t *testing.T) {
	b := New(1, 64)

	dst := b.Reserve(8)
	copy(dst, []byte("ABCDEFGH"))
	b.Commit(8)

	data, n := b.Peek()
	require.EqualValues(t, 8, n)
	assert.Equal(t, "ABCDEFGH", string(data))

	b.Consume(8)
	_, n2 := b.Peek()
	assert.EqualValues(t, 0, n2)
}

func TestEmptyAndFullAreDistinguishable(t *testing.T) {
	b := New(1, 16)
	// A reservation may never consume every last byte of capacity: doing so
	// would make producer_pos collide with consumer_pos and a full buffer
	// would look identical to an empty one. Fill all but one byte instead.
	dst := b.Reserve(15)
	for i := range dst {
		dst[i] = byte(i)
	}
	b.Commit(15)
	data, n := b.Peek()
	require.EqualValues(t, 15, n)
	b.Consume(uint64(len(data)))
	_, n2 := b.Peek()
	assert.EqualValues(t, 0, n2)
}

func TestWrapAroundPreservesOrderAndContent(t *testing.T) {
	b := New(1, 40)

	// Write and fully drain a few times so producer_pos approaches the end
	// of storage, forcing a wrap on the next reservation.
	for i := 0; i < 3; i++ {
		dst := b.Reserve(12)
		copy(dst, []byte("entry-number"))
		b.Commit(12)
		data, n := b.Peek()
		require.EqualValues(t, 12, n)
		assert.Equal(t, "entry-number", string(data))
		b.Consume(uint64(n))
	}

	// Only 4 bytes remain before the end of storage; this reservation must
	// wrap back to offset 0.
	dst := b.Reserve(8)
	copy(dst, []byte("ABCDEFGH"))
	b.Commit(8)
	data, n := b.Peek()
	require.EqualValues(t, 8, n)
	assert.Equal(t, "ABCDEFGH", string(data))
	b.Consume(uint64(n))
}

// TestSPSCStress emulates S5/S6: one producer committing many small entries
// while a consumer, deliberately slowed, drains them, on a small capacity
// buffer that is forced to wrap repeatedly. No byte may be corrupted or
// reordered.
func TestSPSCStress(t *testing.T) {
	const (
		capacity   = 4096
		entrySize  = 37 // header-ish + payload, deliberately not a divisor of capacity
		numEntries = 20000
	)
	b := New(1, capacity)

	var wg sync.WaitGroup
	wg.Add(2)

	go func() {
		defer wg.Done()
		for i := 0; i < numEntries; i++ {
			dst := b.Reserve(entrySize)
			fillMarked(dst, uint32(i))
			b.Commit(entrySize)
		}
	}()

	var mismatches int
	go func() {
		defer wg.Done()
		received := 0
		for received < numEntries {
			data, n := b.Peek()
			if n == 0 {
				time.Sleep(time.Microsecond)
				continue
			}
			for uint64(entrySize) <= n {
				if !checkMarked(data[:entrySize], uint32(received)) {
					mismatches++
				}
				data = data[entrySize:]
				n -= entrySize
				b.Consume(entrySize)
				received++
			}
		}
	}()

	wg.Wait()
	assert.Equal(t, 0, mismatches)
}

func fillMarked(dst []byte, seq uint32) {
	for i := range dst {
		dst[i] = byte(seq) ^ byte(i)
	}
}

func checkMarked(data []byte, seq uint32) bool {
	for i, v := range data {
		if v != byte(seq)^byte(i) {
			return false
		}
	}
	return true
}

func TestCanReclaimOnlyWhenDrainedAndFlagged(t *testing.T) {
	b := New(1, 16)
	assert.False(t, b.CanReclaim())

	dst := b.Reserve(4)
	copy(dst, []byte("abcd"))
	b.Commit(4)
	b.MarkShouldDeallocate()
	assert.False(t, b.CanReclaim(), "should not reclaim while unread bytes remain")

	_, n := b.Peek()
	b.Consume(n)
	assert.True(t, b.CanReclaim())
}

func TestTryReserveReturnsNilWhenFull(t *testing.T) {
	// Capacity must exceed the reservation by at least one byte: equal
	// producer/consumer positions always mean "empty", so the ring can
	// never be filled to the very last byte without that becoming
	// indistinguishable from empty.
	b := New(1, 9)
	dst := b.TryReserve(8)
	require.NotNil(t, dst)
	b.Commit(8)

	// Only 1 byte remains and the consumer hasn't moved; a non-blocking
	// reservation must fail rather than spin forever.
	assert.Nil(t, b.TryReserve(1))
}

package staticlog

import (
	"context"
	"fmt"
	"os"
	"sync"
	"sync/atomic"
	"time"

	"github.com/pkg/errors"

	"github.com/hncelestialtech/static-logger/internal/registry"
	"github.com/hncelestialtech/static-logger/internal/ring"
)

// DefaultPollInterval is the drain's park duration when every buffer is
// empty (spec.md §4.5, §6).
const DefaultPollInterval = 10 * time.Microsecond

// DefaultLogPath is the output file the backend opens when it starts, on
// the first NewProducer, SetLogFile or Sync call; SetLogFile then swaps to
// its own path (spec.md §6).
const DefaultLogPath = "log.txt"

type cmdKind int

const (
	cmdSetFile cmdKind = iota
	cmdSync
)

type drainCmd struct {
	kind cmdKind
	path string
	done chan error
}

// backend is the process-wide registry + drain pair. staticlog keeps one
// instance (global) matching the original's process-global static_log
// namespace; nothing prevents constructing additional backends for tests
// that want isolation.
type backend struct {
	reg   *registry.Registry
	level atomic.Int32

	out     *os.File
	outPath string

	decodeErrors atomic.Uint64
	writeErrors  atomic.Uint64

	cmdCh       chan drainCmd
	drainCtx    context.Context
	drainCancel context.CancelFunc
	drainDone   chan struct{}

	startOnce sync.Once
	closeOnce sync.Once
}

func newBackend() *backend {
	b := &backend{
		reg:       registry.New(),
		cmdCh:     make(chan drainCmd),
		drainDone: make(chan struct{}),
	}
	b.level.Store(int32(Debug))
	b.drainCtx, b.drainCancel = context.WithCancel(context.Background())
	return b
}

var global = newBackend()

func (b *backend) ensureStarted() {
	b.startOnce.Do(func() {
		f, err := os.OpenFile(DefaultLogPath, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o666)
		if err != nil {
			fmt.Fprintln(os.Stderr, errors.Wrapf(err, "staticlog: open %s", DefaultLogPath))
		} else {
			b.out = f
			b.outPath = DefaultLogPath
		}
		go b.drainLoop()
	})
}

// SetLevel clamps l into [Silent, Debug] and makes it the process-wide
// minimum severity; producers observe the new value on their very next
// Log call (spec.md §4.6).
func SetLevel(l Level) { global.level.Store(int32(l.Clamp())) }

// GetLevel returns the process-wide minimum severity.
func GetLevel() Level { return Level(global.level.Load()) }

// SetLogFile drains every currently pending entry against the previous
// sink, then swaps to path, opened for append/create with mode 0666. This
// resolves spec.md §9's open question in favor of drain-to-completion,
// then swap: every already-committed entry lands in exactly one file.
func SetLogFile(path string) error {
	global.ensureStarted()
	done := make(chan error, 1)
	select {
	case global.cmdCh <- drainCmd{kind: cmdSetFile, path: path, done: done}:
	case <-global.drainDone:
		return errors.New("staticlog: backend is closed")
	}
	return <-done
}

// Sync blocks until the drain has processed every entry committed before
// Sync was called. Entries committed while Sync is running are not
// guaranteed to be included (spec.md §4.6, §8 P6).
func Sync() {
	global.ensureStarted()
	done := make(chan error, 1)
	select {
	case global.cmdCh <- drainCmd{kind: cmdSync, done: done}:
	case <-global.drainDone:
		return
	}
	<-done
}

// Close stops the drain after it finishes writing every entry committed
// before Close was called, then closes the output file. It is safe to call
// more than once.
func Close() {
	global.closeOnce.Do(func() {
		global.drainCancel()
		<-global.drainDone
	})
}

func (b *backend) drainLoop() {
	defer close(b.drainDone)
	defer func() {
		if b.out != nil {
			_ = b.out.Close()
		}
	}()
	for {
		for b.drainPass() > 0 {
		}
		select {
		case <-b.drainCtx.Done():
			for b.drainPass() > 0 {
			}
			return
		case cmd := <-b.cmdCh:
			b.handleCmd(cmd)
		case <-b.reg.Notify():
		case <-time.After(DefaultPollInterval):
		}
	}
}

func (b *backend) handleCmd(cmd drainCmd) {
	for b.drainPass() > 0 {
	}
	switch cmd.kind {
	case cmdSetFile:
		f, err := os.OpenFile(cmd.path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o666)
		if err != nil {
			cmd.done <- errors.Wrapf(err, "staticlog: open %s", cmd.path)
			return
		}
		if b.out != nil {
			_ = b.out.Close()
		}
		b.out = f
		b.outPath = cmd.path
		cmd.done <- nil
	case cmdSync:
		cmd.done <- nil
	}
}

// drainPass reclaims finished buffers, picks the pending entry with the
// smallest timestamp across every registered buffer, formats and writes
// it, and consumes it. It returns 1 if an entry was taken off a buffer
// (written, or dropped after a decode or write error), 0 if every buffer
// was empty.
func (b *backend) drainPass() int {
	b.reg.Reclaim()
	buffers := b.reg.Snapshot()

	var (
		winner    *ring.Buffer
		winnerHdr ring.Header
		winnerBuf []byte
	)
	winnerTs := uint64(0)
	found := false

	for _, buf := range buffers {
		data, avail := buf.Peek()
		if avail < uint64(ring.HeaderSize) {
			continue
		}
		hdr := ring.GetHeader(data)
		if uint64(len(data)) < uint64(hdr.EntrySize) {
			continue
		}
		if !found || hdr.Timestamp < winnerTs {
			winner, winnerHdr, winnerBuf, winnerTs, found = buf, hdr, data, hdr.Timestamp, true
		}
	}
	if !found {
		return 0
	}

	if err := b.writeEntry(winnerHdr, winnerBuf); err != nil {
		b.writeErrors.Add(1)
		fmt.Fprintln(os.Stderr, err)
	}
	winner.Consume(uint64(winnerHdr.EntrySize))
	return 1
}

func (b *backend) writeEntry(hdr ring.Header, data []byte) error {
	site := lookupSite(hdr.SiteID)
	if site == nil {
		b.decodeErrors.Add(1)
		return errors.Errorf("staticlog: entry references unknown site id %d", hdr.SiteID)
	}

	widthsEnd := ring.WidthsOffset + int(hdr.NumParams)
	if len(data) < widthsEnd {
		b.decodeErrors.Add(1)
		return errors.New("staticlog: entry truncated before its parameter widths")
	}
	widths := data[ring.WidthsOffset:widthsEnd]
	payload := data[ring.PayloadOffset(hdr.NumParams):hdr.EntrySize]

	lw := acquireLineWriter(b.out)
	defer releaseLineWriter(lw)

	lw.writeByte('[')
	lw.buf = appendTimestamp(lw.buf, int64(hdr.Timestamp))
	lw.writeByte(']')
	lw.writeByte('[')
	lw.writeString(site.level.String())
	lw.writeByte(']')
	lw.writeByte('[')
	lw.writeString(site.function)
	lw.writeByte(']')
	lw.writeByte('[')
	lw.writeInt64(int64(site.line))
	lw.writeByte(']')

	if err := renderMessage(lw, site.format, site.params, widths, payload); err != nil {
		b.decodeErrors.Add(1)
		return errors.Wrap(err, "staticlog: decode entry payload")
	}
	lw.writeByte('\n')

	if b.out == nil {
		return errors.New("staticlog: no output sink configured")
	}
	if err := lw.flush(); err != nil {
		return errors.Wrap(err, "staticlog: write entry")
	}
	return nil
}

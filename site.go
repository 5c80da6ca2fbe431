package staticlog

import (
	"runtime"
	"strings"
	"sync"
	"sync/atomic"

	"github.com/hncelestialtech/static-logger/internal/classify"
)

// Site is the program-static metadata for one log call site: its severity,
// literal format string, classified parameter types, and the calling
// function and line captured once at construction. A Site is meant to be
// assigned to a package-level var so NewSite's classification work runs
// during program init, before any goroutine can reach the call site's Log
// calls; a Site built lazily still amortizes to the same cost after its
// first use.
type Site struct {
	id       uint32
	level    Level
	format   string
	params   []classify.ParamType
	function string
	line     int
}

var (
	// siteMu serializes NewSite's append-and-publish; it is never touched by
	// the drain's lookupSite, which is the hot path this split exists for.
	siteMu   sync.Mutex
	siteByID atomic.Pointer[[]*Site]
)

// NewSite classifies format and registers a new call site at the given
// level. It panics on a malformed or unsupported format string: classify
// errors are build-time errors in spirit (spec.md §7.1), and Go has no
// earlier point at which to raise them than the var initializer this is
// meant to run in.
func NewSite(level Level, format string) *Site {
	params := classify.MustParse(format)
	fn, line := callerLocation(2)
	s := &Site{
		level:    level.Clamp(),
		format:   format,
		params:   params,
		function: fn,
		line:     line,
	}

	siteMu.Lock()
	defer siteMu.Unlock()
	var cur []*Site
	if p := siteByID.Load(); p != nil {
		cur = *p
	}
	s.id = uint32(len(cur))
	next := make([]*Site, len(cur)+1)
	copy(next, cur)
	next[s.id] = s
	siteByID.Store(&next)
	return s
}

// Level reports the site's configured severity.
func (s *Site) Level() Level { return s.level }

// lookupSite is the drain's hot-path read: a lock-free load of the latest
// published site slice, safe to call concurrently with NewSite.
func lookupSite(id uint32) *Site {
	p := siteByID.Load()
	if p == nil {
		return nil
	}
	list := *p
	if int(id) >= len(list) {
		return nil
	}
	return list[id]
}

// callerLocation returns the short function name and line number of the
// caller skip frames up from this function's own frame.
func callerLocation(skip int) (string, int) {
	pc, _, line, ok := runtime.Caller(skip)
	if !ok {
		return "unknown", 0
	}
	fn := runtime.FuncForPC(pc)
	if fn == nil {
		return "unknown", line
	}
	name := fn.Name()
	if i := strings.LastIndexByte(name, '/'); i >= 0 {
		name = name[i+1:]
	}
	if i := strings.IndexByte(name, '.'); i >= 0 {
		name = name[i+1:]
	}
	return name, line
}

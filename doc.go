// Package staticlog is a low-latency, asynchronous, printf-style logger. A
// call site's format string is classified exactly once, on construction; the
// hot path that follows never parses the format string again, never
// allocates a formatted string, and never blocks on I/O. Each producer
// goroutine encodes its arguments into a lock-free single-producer/
// single-consumer ring buffer; a single background goroutine drains every
// registered buffer, formats each entry, and writes it to the configured
// sink.
//
// # Design overview
//
//   - Classify once: NewSite scans the format string (package classify) and
//     caches a []ParamType on the Site forever. Meant to be assigned to a
//     package-level var so classification happens during program init.
//   - Size, then copy: a log call computes the exact encoded size of its
//     arguments (package encode), reserves that many bytes from its
//     producer's ring (package ring), and copies the argument bytes in —
//     no intermediate allocation beyond boxing each argument into an any.
//   - One ring per goroutine: NewProducer hands back a handle that must be
//     confined to a single goroutine; the registry (package registry) is
//     only ever touched at producer birth and death, never on the hot path.
//   - One drain: a single background goroutine polls every registered ring,
//     decodes entries in commit order per ring, formats them, and writes
//     them to the current sink.
//
// # Usage
//
//	var siteHello = staticlog.NewSite(staticlog.Notice, "hello %s, attempt %d")
//
//	p := staticlog.NewProducer()
//	defer p.Close()
//	p.Log(siteHello, "world", 3)
//
// Package-level convenience functions (SetLevel, SetLogFile, Sync, Close)
// operate against a single process-wide backend, matching the common case of
// one logger per process.
package staticlog

package staticlog

import "github.com/pkg/errors"

// errDecodeMismatch marks a ring entry whose payload could not be decoded
// against its site's parameter types (spec.md §7.4): the entry is skipped
// and counted rather than crashing the drain.
var errDecodeMismatch = errors.New("staticlog: entry payload does not match its site's parameter types")

// DecodeErrors reports how many ring entries the drain has had to skip
// because their payload did not match their site's parameter types, or
// because the entry's site id was unknown. It also counts Log calls whose
// arguments a producer could not encode against the site's parameter types.
func DecodeErrors() uint64 { return global.decodeErrors.Load() }

// WriteErrors reports how many entries the drain dropped after the sink
// write failed.
func WriteErrors() uint64 { return global.writeErrors.Load() }

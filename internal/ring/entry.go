package ring

import "encoding/binary"

// HeaderSize is the fixed portion of every encoded LogEntry: timestamp (u64),
// total entry size (u32), call-site identifier (u32), and parameter count
// (u16). It intentionally excludes any pointer: storing a raw Go pointer as
// bytes inside a []byte would hide it from the garbage collector, so the
// call site is referenced by a small integer id resolved through the site
// registry (see package staticlog's site table) instead of a *StaticInfo
// pointer, as original_source does.
const HeaderSize = 8 + 4 + 4 + 2

// Header is the decoded form of an entry's fixed header.
type Header struct {
	Timestamp uint64
	EntrySize uint32
	SiteID    uint32
	NumParams uint16
}

// PutHeader serializes h into dst[:HeaderSize].
func PutHeader(dst []byte, h Header) {
	binary.LittleEndian.PutUint64(dst[0:8], h.Timestamp)
	binary.LittleEndian.PutUint32(dst[8:12], h.EntrySize)
	binary.LittleEndian.PutUint32(dst[12:16], h.SiteID)
	binary.LittleEndian.PutUint16(dst[16:18], h.NumParams)
}

// GetHeader decodes a Header from src[:HeaderSize].
func GetHeader(src []byte) Header {
	return Header{
		Timestamp: binary.LittleEndian.Uint64(src[0:8]),
		EntrySize: binary.LittleEndian.Uint32(src[8:12]),
		SiteID:    binary.LittleEndian.Uint32(src[12:16]),
		NumParams: binary.LittleEndian.Uint16(src[16:18]),
	}
}

// WidthsOffset is where the per-parameter native-width byte array begins,
// immediately after the fixed header. This is the Go-safe stand-in for
// original_source's "pointer to a per-call parameter-size array": the sizes
// travel inline in the ring instead of through a pointer into static
// storage, so no part of an entry outlives the bytes that describe it.
const WidthsOffset = HeaderSize

// PayloadOffset returns the byte offset where the argument payload begins
// for an entry with numParams parameters.
func PayloadOffset(numParams uint16) int {
	return WidthsOffset + int(numParams)
}

// Package encode implements the hot-path argument sizer and serializer
// (component C2): computing the exact byte size of each logged argument and
// copying argument bytes into a reserved ring region. Every function here
// runs on the producer's fast path and performs no allocation of its own;
// callers supply pre-sized scratch slices that they own and reuse across
// calls (see staticlog.Producer).
package encode

import (
	"encoding/binary"
	"math"
	"unsafe"

	"github.com/pkg/errors"

	"github.com/hncelestialtech/static-logger/internal/classify"
)

// MaxStringBytes is the largest string length staticlog can encode; the
// length prefix is a u32, so anything beyond this is an encode-time fatal
// error per the design's oversized-string rule.
const MaxStringBytes = math.MaxUint32

// Size computes, for each parameter in types, its native byte width (0 for
// strings, used later by the decoder) and its total encoded size (stored in
// sizes), returning the sum. widths and sizes must have length len(types);
// args must have the same length too.
func Size(types []classify.ParamType, args []any, widths []byte, sizes []uint64) (uint64, error) {
	var lastDynPrecision uint64
	var total uint64
	for i, t := range types {
		w, sz, err := argSize(t, args[i], &lastDynPrecision)
		if err != nil {
			return 0, errors.Wrapf(err, "staticlog: encode arg %d", i)
		}
		widths[i] = w
		sizes[i] = sz
		total += sz
	}
	return total, nil
}

// Serialize writes each argument's bytes into dst, using the sizes
// previously computed by Size. dst must be at least as long as the sum of
// sizes.
func Serialize(types []classify.ParamType, sizes []uint64, args []any, dst []byte) error {
	cursor := 0
	for i, t := range types {
		sz := int(sizes[i])
		switch t.Kind {
		case classify.StringFixed, classify.StringDynPrecision, classify.StringNoPrecision:
			s, ok := stringArg(args[i])
			if !ok {
				return errors.Errorf("staticlog: arg %d is not a string", i)
			}
			l := sz - 4
			binary.LittleEndian.PutUint32(dst[cursor:cursor+4], uint32(l))
			copy(dst[cursor+4:cursor+4+l], s[:l])
		default:
			if err := writeNonString(dst[cursor:cursor+sz], args[i]); err != nil {
				return errors.Wrapf(err, "staticlog: encode arg %d", i)
			}
		}
		cursor += sz
	}
	return nil
}

func argSize(t classify.ParamType, arg any, lastDynPrecision *uint64) (byte, uint64, error) {
	switch t.Kind {
	case classify.DynamicWidth, classify.NonString:
		return nonStringSize(arg)
	case classify.DynamicPrecision:
		*lastDynPrecision = asUint64(arg)
		return nonStringSize(arg)
	case classify.StringFixed:
		s, ok := stringArg(arg)
		if !ok {
			return 0, 0, errors.Errorf("expected string argument, got %T", arg)
		}
		l := uint64(len(s))
		if p := uint64(t.Precision); p < l {
			l = p
		}
		if l > MaxStringBytes {
			return 0, 0, errors.Errorf("string argument exceeds %d bytes", MaxStringBytes)
		}
		return 0, l + 4, nil
	case classify.StringDynPrecision:
		s, ok := stringArg(arg)
		if !ok {
			return 0, 0, errors.Errorf("expected string argument, got %T", arg)
		}
		l := uint64(len(s))
		if *lastDynPrecision < l {
			l = *lastDynPrecision
		}
		if l > MaxStringBytes {
			return 0, 0, errors.Errorf("string argument exceeds %d bytes", MaxStringBytes)
		}
		return 0, l + 4, nil
	case classify.StringNoPrecision:
		s, ok := stringArg(arg)
		if !ok {
			return 0, 0, errors.Errorf("expected string argument, got %T", arg)
		}
		l := uint64(len(s))
		if l > MaxStringBytes {
			return 0, 0, errors.Errorf("string argument exceeds %d bytes", MaxStringBytes)
		}
		return 0, l + 4, nil
	default:
		return 0, 0, errors.Errorf("staticlog: unrecognized parameter classification")
	}
}

// nonStringSize reports the native byte width of a non-string argument. It
// is a closed type switch, deliberately avoiding reflect so the hot path
// stays branch-light.
func nonStringSize(arg any) (byte, uint64, error) {
	switch arg.(type) {
	case bool, int8, uint8:
		return 1, 1, nil
	case int16, uint16:
		return 2, 2, nil
	case int32, uint32, float32:
		return 4, 4, nil
	case int64, uint64, float64, int, uint, uintptr, unsafe.Pointer:
		return 8, 8, nil
	default:
		return 0, 0, errors.Errorf("unsupported argument type %T", arg)
	}
}

func asUint64(arg any) uint64 {
	switch v := arg.(type) {
	case int:
		return uint64(v)
	case int8:
		return uint64(v)
	case int16:
		return uint64(v)
	case int32:
		return uint64(v)
	case int64:
		return uint64(v)
	case uint:
		return uint64(v)
	case uint8:
		return uint64(v)
	case uint16:
		return uint64(v)
	case uint32:
		return uint64(v)
	case uint64:
		return v
	case uintptr:
		return uint64(v)
	default:
		// Floating point dynamic widths/precisions are nonsensical; mirror
		// original_source's as_uint64_t fallback of 0 for inconvertible types.
		return 0
	}
}

func stringArg(arg any) (string, bool) {
	switch v := arg.(type) {
	case string:
		return v, true
	case []byte:
		return string(v), true
	default:
		return "", false
	}
}

func writeNonString(dst []byte, arg any) error {
	switch v := arg.(type) {
	case bool:
		if v {
			dst[0] = 1
		} else {
			dst[0] = 0
		}
	case int8:
		dst[0] = byte(v)
	case uint8:
		dst[0] = v
	case int16:
		binary.LittleEndian.PutUint16(dst, uint16(v))
	case uint16:
		binary.LittleEndian.PutUint16(dst, v)
	case int32:
		binary.LittleEndian.PutUint32(dst, uint32(v))
	case uint32:
		binary.LittleEndian.PutUint32(dst, v)
	case float32:
		binary.LittleEndian.PutUint32(dst, math.Float32bits(v))
	case int64:
		binary.LittleEndian.PutUint64(dst, uint64(v))
	case uint64:
		binary.LittleEndian.PutUint64(dst, v)
	case float64:
		binary.LittleEndian.PutUint64(dst, math.Float64bits(v))
	case int:
		binary.LittleEndian.PutUint64(dst, uint64(v))
	case uint:
		binary.LittleEndian.PutUint64(dst, uint64(v))
	case uintptr:
		binary.LittleEndian.PutUint64(dst, uint64(v))
	case unsafe.Pointer:
		binary.LittleEndian.PutUint64(dst, uint64(uintptr(v)))
	default:
		return errors.Errorf("unsupported argument type %T", arg)
	}
	return nil
}

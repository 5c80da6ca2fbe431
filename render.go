package staticlog

import (
	"math"
	"strconv"
	"strings"

	"github.com/hncelestialtech/static-logger/internal/classify"
)

// renderMessage walks a site's literal format string byte by byte exactly
// as package classify does, but instead of emitting ParamType values it
// consumes one decoded argument per parameter from payload (using widths to
// know each non-string argument's native byte count) and appends the
// rendered text to lw. types and widths must be the slices produced for
// this entry's site and header.
func renderMessage(lw *lineWriter, format string, types []classify.ParamType, widths []byte, payload []byte) error {
	paramIdx := 0
	cursor := 0
	pos := 0
	n := len(format)

	readNonString := func() (uint64, int, error) {
		if paramIdx >= len(types) || paramIdx >= len(widths) {
			return 0, 0, errDecodeMismatch
		}
		w := int(widths[paramIdx])
		if w == 0 || cursor+w > len(payload) {
			return 0, 0, errDecodeMismatch
		}
		v := leUint(payload[cursor : cursor+w])
		cursor += w
		paramIdx++
		return v, w, nil
	}
	readString := func() (string, error) {
		if paramIdx >= len(types) || cursor+4 > len(payload) {
			return "", errDecodeMismatch
		}
		l := int(leUint32(payload[cursor : cursor+4]))
		cursor += 4
		if l < 0 || cursor+l > len(payload) {
			return "", errDecodeMismatch
		}
		s := string(payload[cursor : cursor+l])
		cursor += l
		paramIdx++
		return s, nil
	}

	for pos < n {
		c := format[pos]
		if c != '%' {
			lw.writeByte(c)
			pos++
			continue
		}
		pos++
		if pos >= n {
			return errDecodeMismatch
		}
		if format[pos] == '%' {
			lw.writeByte('%')
			pos++
			continue
		}

		flagsStart := pos
		for pos < n && isFlagByte(format[pos]) {
			pos++
		}
		flags := format[flagsStart:pos]

		dynamicWidth := false
		width := -1
		if pos < n && format[pos] == '*' {
			dynamicWidth = true
			pos++
		} else {
			start := pos
			for pos < n && isDigitByte(format[pos]) {
				pos++
			}
			if pos > start {
				width, _ = strconv.Atoi(format[start:pos])
			}
		}

		dynamicPrecision := false
		hasPrecision := false
		precision := 0
		if pos < n && format[pos] == '.' {
			hasPrecision = true
			pos++
			if pos < n && format[pos] == '*' {
				dynamicPrecision = true
				pos++
			} else {
				start := pos
				for pos < n && isDigitByte(format[pos]) {
					pos++
				}
				precision, _ = strconv.Atoi(format[start:pos])
			}
		}

		for pos < n && isLengthByte(format[pos]) {
			pos++
		}
		if pos >= n {
			return errDecodeMismatch
		}
		terminal := format[pos]
		pos++

		if dynamicWidth {
			v, _, err := readNonString()
			if err != nil {
				return err
			}
			width = int(int64(v))
		}
		if dynamicPrecision {
			v, _, err := readNonString()
			if err != nil {
				return err
			}
			precision = int(int64(v))
			hasPrecision = true
		}

		if terminal == 's' {
			s, err := readString()
			if err != nil {
				return err
			}
			lw.writeString(padString(s, flags, width))
			continue
		}

		raw, widthBytes, err := readNonString()
		if err != nil {
			return err
		}
		lw.writeString(renderNumeric(terminal, flags, width, precision, hasPrecision, raw, widthBytes))
	}
	return nil
}

func isFlagByte(c byte) bool {
	switch c {
	case '-', '+', ' ', '#', '0':
		return true
	default:
		return false
	}
}

func isDigitByte(c byte) bool { return c >= '0' && c <= '9' }

func isLengthByte(c byte) bool {
	switch c {
	case 'h', 'l', 'j', 'z', 't', 'L':
		return true
	default:
		return false
	}
}

func leUint(b []byte) uint64 {
	var v uint64
	for i := len(b) - 1; i >= 0; i-- {
		v = v<<8 | uint64(b[i])
	}
	return v
}

func leUint32(b []byte) uint32 {
	return uint32(b[0]) | uint32(b[1])<<8 | uint32(b[2])<<16 | uint32(b[3])<<24
}

func signExtend(raw uint64, widthBytes int) int64 {
	switch widthBytes {
	case 1:
		return int64(int8(raw))
	case 2:
		return int64(int16(raw))
	case 4:
		return int64(int32(raw))
	default:
		return int64(raw)
	}
}

func maskWidth(raw uint64, widthBytes int) uint64 {
	if widthBytes >= 8 {
		return raw
	}
	return raw & (uint64(1)<<(8*widthBytes) - 1)
}

func floatFromBits(raw uint64, widthBytes int) float64 {
	if widthBytes == 4 {
		return float64(math.Float32frombits(uint32(raw)))
	}
	return math.Float64frombits(raw)
}

func renderNumeric(terminal byte, flags string, width, precision int, hasPrecision bool, raw uint64, widthBytes int) string {
	var s string
	switch terminal {
	case 'd', 'i':
		iv := signExtend(raw, widthBytes)
		s = strconv.FormatInt(iv, 10)
		s = applySign(s, flags, iv >= 0)
	case 'u':
		s = strconv.FormatUint(maskWidth(raw, widthBytes), 10)
	case 'o':
		s = maybeOctalPrefix(strconv.FormatUint(maskWidth(raw, widthBytes), 8), flags)
	case 'x':
		s = maybeHexPrefix(strconv.FormatUint(maskWidth(raw, widthBytes), 16), flags)
	case 'X':
		s = strings.ToUpper(maybeHexPrefix(strconv.FormatUint(maskWidth(raw, widthBytes), 16), flags))
	case 'c':
		s = string(rune(maskWidth(raw, widthBytes)))
	case 'p':
		s = "0x" + strconv.FormatUint(raw, 16)
	case 'f', 'F':
		f := floatFromBits(raw, widthBytes)
		prec := 6
		if hasPrecision {
			prec = precision
		}
		s = strconv.FormatFloat(f, 'f', prec, 64)
		s = applySign(s, flags, !strings.HasPrefix(s, "-"))
	case 'e', 'E':
		f := floatFromBits(raw, widthBytes)
		prec := 6
		if hasPrecision {
			prec = precision
		}
		verb := byte('e')
		if terminal == 'E' {
			verb = 'E'
		}
		s = strconv.FormatFloat(f, verb, prec, 64)
		s = applySign(s, flags, !strings.HasPrefix(s, "-"))
	case 'g', 'G':
		f := floatFromBits(raw, widthBytes)
		prec := -1
		if hasPrecision {
			prec = precision
		}
		verb := byte('g')
		if terminal == 'G' {
			verb = 'G'
		}
		s = strconv.FormatFloat(f, verb, prec, 64)
		s = applySign(s, flags, !strings.HasPrefix(s, "-"))
	case 'a', 'A':
		f := floatFromBits(raw, widthBytes)
		verb := byte('x')
		if terminal == 'A' {
			verb = 'X'
		}
		s = strconv.FormatFloat(f, verb, -1, 64)
	default:
		s = strconv.FormatUint(raw, 10)
	}
	return pad(s, flags, width)
}

func applySign(s, flags string, nonNegative bool) string {
	if nonNegative && strings.Contains(flags, "+") {
		return "+" + s
	}
	return s
}

func maybeOctalPrefix(s, flags string) string {
	if strings.Contains(flags, "#") && s != "0" && !strings.HasPrefix(s, "0") {
		return "0" + s
	}
	return s
}

func maybeHexPrefix(s, flags string) string {
	if strings.Contains(flags, "#") && s != "0" {
		return "0x" + s
	}
	return s
}

func pad(s, flags string, width int) string {
	if width <= 0 || len(s) >= width {
		return s
	}
	padLen := width - len(s)
	if strings.Contains(flags, "-") {
		return s + strings.Repeat(" ", padLen)
	}
	if strings.Contains(flags, "0") {
		if len(s) > 0 && (s[0] == '-' || s[0] == '+') {
			return s[:1] + strings.Repeat("0", padLen) + s[1:]
		}
		return strings.Repeat("0", padLen) + s
	}
	return strings.Repeat(" ", padLen) + s
}

func padString(s, flags string, width int) string {
	if width <= 0 || len(s) >= width {
		return s
	}
	padLen := width - len(s)
	if strings.Contains(flags, "-") {
		return s + strings.Repeat(" ", padLen)
	}
	return strings.Repeat(" ", padLen) + s
}

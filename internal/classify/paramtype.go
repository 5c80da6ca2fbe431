// Package classify implements the compile-time-style analysis of printf
// format strings used by staticlog call sites (component C1). A format
// string is scanned exactly once, producing a fixed-length slice of
// ParamType values that the argument sizer/serializer (package encode) and
// the drain's formatter consume without re-parsing the string.
package classify

import (
	"fmt"

	"github.com/pkg/errors"
)

// Kind classifies a single %... conversion's parameter requirement.
type Kind int8

const (
	// Invalid is the zero Kind; Parse never returns it in a successful
	// result.
	Invalid Kind = iota
	// DynamicWidth corresponds to the '*' in a width field (e.g. "%*d").
	DynamicWidth
	// DynamicPrecision corresponds to the '*' in a precision field (e.g. "%.*s").
	DynamicPrecision
	// NonString is any terminal other than 's' (numeric, char, pointer, '%').
	NonString
	// StringDynPrecision is "%.*s": truncate to the preceding dynamic precision value.
	StringDynPrecision
	// StringNoPrecision is "%s" with no precision given: full strlen.
	StringNoPrecision
	// StringFixed is "%.Ns": truncate to the static precision N.
	StringFixed
)

// ParamType is the classification of a single logged parameter.
type ParamType struct {
	Kind Kind
	// Precision holds the static truncation length when Kind == StringFixed.
	Precision int
}

func (t ParamType) String() string {
	switch t.Kind {
	case DynamicWidth:
		return "dynamic-width"
	case DynamicPrecision:
		return "dynamic-precision"
	case NonString:
		return "non-string"
	case StringDynPrecision:
		return "string(dyn-precision)"
	case StringNoPrecision:
		return "string(no-precision)"
	case StringFixed:
		return fmt.Sprintf("string(precision=%d)", t.Precision)
	default:
		return "invalid"
	}
}

// ParseError reports a format string staticlog cannot log, mirroring
// original_source's build-time throw on an unrecognized or rejected
// specifier. staticlog raises this lazily, the first time the offending
// Site is constructed, instead of at compile time.
type ParseError struct {
	Format string
	Pos    int
	Reason string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("staticlog: invalid format string %q at byte %d: %s", e.Format, e.Pos, e.Reason)
}

const flagBytes = "-+ #0"

func isFlag(c byte) bool { return indexByte(flagBytes, c) }
func isLength(c byte) bool {
	switch c {
	case 'h', 'l', 'j', 'z', 't', 'L':
		return true
	default:
		return false
	}
}
func isDigit(c byte) bool { return c >= '0' && c <= '9' }

func isTerminal(c byte) bool {
	switch c {
	case 'd', 'i', 'u', 'o', 'x', 'X', 'f', 'F', 'e', 'E', 'g', 'G', 'a', 'A', 'c', 'p', '%', 's', 'n':
		return true
	default:
		return false
	}
}

func indexByte(s string, c byte) bool {
	for i := 0; i < len(s); i++ {
		if s[i] == c {
			return true
		}
	}
	return false
}

// Parse scans a printf-style format string and returns one ParamType per
// parameter the string requires, in argument order. It rejects %n (cannot
// be supported without formatting on the hot path) and any malformed
// specifier.
func Parse(format string) ([]ParamType, error) {
	var out []ParamType
	pos := 0
	n := len(format)
	for pos < n {
		if format[pos] != '%' {
			pos++
			continue
		}
		pos++
		if pos >= n {
			return nil, &ParseError{Format: format, Pos: pos, Reason: "dangling '%' at end of format string"}
		}
		if format[pos] == '%' {
			pos++
			continue
		}

		for pos < n && isFlag(format[pos]) {
			pos++
		}

		sawDynamicWidth := false
		if pos < n && format[pos] == '*' {
			sawDynamicWidth = true
			pos++
		} else {
			for pos < n && isDigit(format[pos]) {
				pos++
			}
		}

		sawDynamicPrecision := false
		precision := -1
		if pos < n && format[pos] == '.' {
			pos++
			if pos < n && format[pos] == '*' {
				sawDynamicPrecision = true
				pos++
			} else {
				precision = 0
				for pos < n && isDigit(format[pos]) {
					precision = precision*10 + int(format[pos]-'0')
					pos++
				}
			}
		}

		for pos < n && isLength(format[pos]) {
			pos++
		}

		if pos >= n || !isTerminal(format[pos]) {
			return nil, &ParseError{Format: format, Pos: pos, Reason: "unrecognized specifier after '%'"}
		}
		terminal := format[pos]
		pos++

		if terminal == 'n' {
			return nil, &ParseError{Format: format, Pos: pos - 1, Reason: "%n is not supported"}
		}

		if sawDynamicWidth {
			out = append(out, ParamType{Kind: DynamicWidth})
		}
		if sawDynamicPrecision {
			out = append(out, ParamType{Kind: DynamicPrecision})
		}

		if terminal != 's' {
			out = append(out, ParamType{Kind: NonString})
			continue
		}
		switch {
		case sawDynamicPrecision:
			out = append(out, ParamType{Kind: StringDynPrecision})
		case precision >= 0:
			out = append(out, ParamType{Kind: StringFixed, Precision: precision})
		default:
			out = append(out, ParamType{Kind: StringNoPrecision})
		}
	}
	return out, nil
}

// MustParse is Parse with a panic on error, intended for call sites that
// build a Site from a package-level var initializer where there is no
// sensible way to propagate an error.
func MustParse(format string) []ParamType {
	types, err := Parse(format)
	if err != nil {
		panic(errors.Wrap(err, "staticlog: classify.MustParse"))
	}
	return types
}

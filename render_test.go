package staticlog

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hncelestialtech/static-logger/internal/classify"
	"github.com/hncelestialtech/static-logger/internal/encode"
)

func renderFor(t *testing.T, format string, args ...any) string {
	t.Helper()
	types, err := classify.Parse(format)
	require.NoError(t, err)

	widths := make([]byte, len(types))
	sizes := make([]uint64, len(types))
	payloadSize, err := encode.Size(types, args, widths, sizes)
	require.NoError(t, err)

	payload := make([]byte, payloadSize)
	require.NoError(t, encode.Serialize(types, sizes, args, payload))

	lw := acquireLineWriter(nil)
	defer releaseLineWriter(lw)
	require.NoError(t, renderMessage(lw, format, types, widths, payload))
	return string(lw.buf)
}

func TestRenderPlainStringAndInt(t *testing.T) {
	assert.Equal(t, "hello world attempt 3", renderFor(t, "%s attempt %d", "hello world", 3))
}

func TestRenderPercentLiteral(t *testing.T) {
	assert.Equal(t, "100%", renderFor(t, "100%%"))
}

func TestRenderWidthAndZeroPad(t *testing.T) {
	assert.Equal(t, "0007", renderFor(t, "%04d", 7))
}

func TestRenderPlusFlag(t *testing.T) {
	assert.Equal(t, "+7", renderFor(t, "%+d", 7))
}

func TestRenderHexAndOctal(t *testing.T) {
	assert.Equal(t, "ff 377", renderFor(t, "%x %o", 255, 255))
}

func TestRenderFloatPrecision(t *testing.T) {
	assert.Equal(t, "3.14", renderFor(t, "%.2f", 3.14159))
}

func TestRenderDynamicPrecisionString(t *testing.T) {
	assert.Equal(t, "hello", renderFor(t, "%.*s", 5, "hello world"))
}

func TestRenderDynamicWidth(t *testing.T) {
	assert.Equal(t, "   7", renderFor(t, "%*d", 4, 7))
}

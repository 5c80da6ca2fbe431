package encode

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hncelestialtech/static-logger/internal/classify"
)

func sizeAndSerialize(t *testing.T, types []classify.ParamType, args []any) []byte {
	t.Helper()
	widths := make([]byte, len(types))
	sizes := make([]uint64, len(types))
	total, err := Size(types, args, widths, sizes)
	require.NoError(t, err)
	buf := make([]byte, total)
	require.NoError(t, Serialize(types, sizes, args, buf))
	return buf
}

func TestSizeAndSerializeFixedString(t *testing.T) {
	types, err := classify.Parse("%.5s")
	require.NoError(t, err)
	buf := sizeAndSerialize(t, types, []any{"hello world"})
	require.Len(t, buf, 4+5)
	assert.Equal(t, "hello", string(buf[4:]))
}

func TestSizeAndSerializeNoPrecisionString(t *testing.T) {
	types, err := classify.Parse("%s")
	require.NoError(t, err)
	buf := sizeAndSerialize(t, types, []any{"hi"})
	require.Len(t, buf, 6)
	assert.Equal(t, "hi", string(buf[4:]))
}

func TestSizeAndSerializeDynamicPrecisionString(t *testing.T) {
	types, err := classify.Parse("%.*s")
	require.NoError(t, err)
	buf := sizeAndSerialize(t, types, []any{5, "hello world"})
	require.Len(t, buf, 8+4+5) // dynamic precision arg (Go int, 8 bytes) + string length prefix + truncated content
	assert.Equal(t, "hello", string(buf[len(buf)-5:]))
}

func TestSizeAndSerializeNonString(t *testing.T) {
	types, err := classify.Parse("%d %f")
	require.NoError(t, err)
	buf := sizeAndSerialize(t, types, []any{int32(7), float64(3.5)})
	require.Len(t, buf, 4+8)
}

func TestStringWithinSizeLimitAccepted(t *testing.T) {
	types, err := classify.Parse("%s")
	require.NoError(t, err)
	widths := make([]byte, 1)
	sizes := make([]uint64, 1)
	_, sizeErr := Size(types, []any{"ok"}, widths, sizes)
	require.NoError(t, sizeErr)
}

func TestUnsupportedArgTypeErrors(t *testing.T) {
	types, err := classify.Parse("%d")
	require.NoError(t, err)
	widths := make([]byte, 1)
	sizes := make([]uint64, 1)
	_, err = Size(types, []any{struct{}{}}, widths, sizes)
	require.Error(t, err)
}

func TestNonStringArgWhereStringExpectedErrors(t *testing.T) {
	types, err := classify.Parse("%s")
	require.NoError(t, err)
	widths := make([]byte, 1)
	sizes := make([]uint64, 1)
	_, err = Size(types, []any{42}, widths, sizes)
	require.Error(t, err)
}

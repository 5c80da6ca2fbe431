package classify

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLiteral(t *testing.T) {
	types, err := Parse("hello world")
	require.NoError(t, err)
	assert.Empty(t, types)
}

func TestParsePercentLiteral(t *testing.T) {
	types, err := Parse("100%% done")
	require.NoError(t, err)
	assert.Empty(t, types)
}

func TestParseSimpleConversions(t *testing.T) {
	types, err := Parse("%s %i %f")
	require.NoError(t, err)
	require.Len(t, types, 3)
	assert.Equal(t, StringNoPrecision, types[0].Kind)
	assert.Equal(t, NonString, types[1].Kind)
	assert.Equal(t, NonString, types[2].Kind)
}

func TestParseStaticPrecisionString(t *testing.T) {
	types, err := Parse("%.5s")
	require.NoError(t, err)
	require.Len(t, types, 1)
	assert.Equal(t, StringFixed, types[0].Kind)
	assert.Equal(t, 5, types[0].Precision)
}

func TestParseDynamicPrecisionString(t *testing.T) {
	types, err := Parse("%.*s")
	require.NoError(t, err)
	require.Len(t, types, 2)
	assert.Equal(t, DynamicPrecision, types[0].Kind)
	assert.Equal(t, StringDynPrecision, types[1].Kind)
}

func TestParseDynamicWidth(t *testing.T) {
	types, err := Parse("%*d")
	require.NoError(t, err)
	require.Len(t, types, 2)
	assert.Equal(t, DynamicWidth, types[0].Kind)
	assert.Equal(t, NonString, types[1].Kind)
}

func TestParseDynamicWidthAndPrecision(t *testing.T) {
	types, err := Parse("%*.*d")
	require.NoError(t, err)
	require.Len(t, types, 3)
	assert.Equal(t, DynamicWidth, types[0].Kind)
	assert.Equal(t, DynamicPrecision, types[1].Kind)
	assert.Equal(t, NonString, types[2].Kind)
}

func TestParseFlagsAndLength(t *testing.T) {
	types, err := Parse("%+010.3lld")
	require.NoError(t, err)
	require.Len(t, types, 1)
	assert.Equal(t, NonString, types[0].Kind)
}

func TestParseRejectsPercentN(t *testing.T) {
	_, err := Parse("%n")
	require.Error(t, err)
	var pe *ParseError
	require.ErrorAs(t, err, &pe)
}

func TestParseRejectsUnknownSpecifier(t *testing.T) {
	_, err := Parse("%k")
	require.Error(t, err)
}

func TestParseRejectsDanglingPercent(t *testing.T) {
	_, err := Parse("abc%")
	require.Error(t, err)
}

func TestMustParsePanicsOnError(t *testing.T) {
	assert.Panics(t, func() {
		MustParse("%n")
	})
}

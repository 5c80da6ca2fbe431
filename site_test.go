package staticlog

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewSiteClassifiesAndRegisters(t *testing.T) {
	before := 0
	if p := siteByID.Load(); p != nil {
		before = len(*p)
	}
	s := NewSite(Notice, "hello %s, attempt %d")
	assert.Equal(t, Notice, s.Level())
	assert.Equal(t, "hello %s, attempt %d", s.format)
	require.Len(t, s.params, 2)
	assert.Equal(t, before, int(s.id))
	assert.Same(t, s, lookupSite(s.id))
}

func TestNewSitePanicsOnMalformedFormat(t *testing.T) {
	assert.Panics(t, func() {
		NewSite(Notice, "%n")
	})
}

func TestLookupSiteUnknownIDReturnsNil(t *testing.T) {
	assert.Nil(t, lookupSite(^uint32(0)))
}

package app

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestResolveUniversity_SingleMatch(t *testing.T) {
	uni, ok := ResolveUniversity("Tell me about admissions at NUST")
	assert.True(t, ok)
	assert.Equal(t, "nust", uni)
}

func TestResolveUniversity_CaseInsensitive(t *testing.T) {
	uni, ok := ResolveUniversity("what are the hostels like at HaRvArD?")
	assert.True(t, ok)
	assert.Equal(t, "harvard", uni)
}

func TestResolveUniversity_NoMatch(t *testing.T) {
	_, ok := ResolveUniversity("What is the weather today")
	assert.False(t, ok)
}

func TestResolveUniversity_EmptyQuery(t *testing.T) {
	_, ok := ResolveUniversity("")
	assert.False(t, ok)

	_, ok = ResolveUniversity("   \t  ")
	assert.False(t, ok)
}

func TestResolveUniversity_WholeWordOnly(t *testing.T) {
	// "breakfast" contains "fast" and "airport" contains "air", but neither
	// is a whole-word mention.
	_, ok := ResolveUniversity("I had breakfast near the airport")
	assert.False(t, ok)
}

func TestResolveUniversity_EnumerationOrderWins(t *testing.T) {
	// "mit" appears first in the text, but "nust" comes first in the
	// keyword enumeration.
	uni, ok := ResolveUniversity("compare MIT with NUST please")
	assert.True(t, ok)
	assert.Equal(t, "nust", uni)
}

func TestResolveUniversity_MultipleMentions(t *testing.T) {
	uni, ok := ResolveUniversity("is stanford better than oxford or caltech?")
	assert.True(t, ok)
	assert.Equal(t, "stanford", uni)
}

package core

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFindMaskSpan(t *testing.T) {
	tests := []struct {
		name      string
		run       string
		wantSpan  Span
		wantFound bool
	}{
		{"empty run", "", Span{}, false},
		{"single digit", "4", Span{}, false},
		{"14 digit number", "56613959932537", Span{0, 14}, true},
		{"15 digit number", "378282246310005", Span{0, 15}, true},
		{"16 digit number", "6853371389452376", Span{0, 16}, true},
		{"invalid 14 digits", "49536290423965", Span{}, false},
		{"too few digits", "411111111111111", Span{}, false},
		{"number inside longer run", "9875610591081018250321", Span{3, 19}, true},
		{"leading digits survive", "1256613959932537", Span{2, 16}, true},
		{"spaced number", "4352 7211 4223 5131", Span{0, 19}, true},
		{"trailing hyphen", "4111111111111111-", Span{0, 16}, true},
		{"two adjacent numbers", "5661395993253756613959932537", Span{0, 28}, true},
		{"gap between numbers is covered", "4111111111111111  99999 5555555555554444", Span{0, 40}, true},
		{"separators only", "               ", Span{0, 15}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			span, found := FindMaskSpan([]rune(tt.run))
			assert.Equal(t, tt.wantFound, found)
			assert.Equal(t, tt.wantSpan, span)
		})
	}
}

func TestFindMaskSpanPrefersLongestWindow(t *testing.T) {
	// A 14 digit window starting at 0 would also be checked; the 16 digit one wins
	span, found := FindMaskSpan([]rune("411111111111111123"))
	assert.True(t, found)
	assert.Equal(t, Span{0, 16}, span)
}

func TestWindowEnd(t *testing.T) {
	run := []rune("12 34-56")
	assert.Equal(t, 1, windowEnd(run, 0, 1))
	assert.Equal(t, 4, windowEnd(run, 0, 3))
	assert.Equal(t, 8, windowEnd(run, 0, 6))
	assert.Equal(t, 8, windowEnd(run, 0, 16), "stops at the end when digits run out")
	assert.Equal(t, 5, windowEnd(run, 2, 2))
}

func TestSpan(t *testing.T) {
	s := Span{Start: 2, End: 5}
	assert.False(t, s.Contains(1))
	assert.True(t, s.Contains(2))
	assert.True(t, s.Contains(4))
	assert.False(t, s.Contains(5))
	assert.Equal(t, 3, s.Len())

	var zero Span
	assert.False(t, zero.Contains(0))
}

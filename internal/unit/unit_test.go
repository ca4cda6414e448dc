package unit

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConversions(t *testing.T) {
	assert.InDelta(t, 72.0, In(1).Points(), 1e-9)
	assert.InDelta(t, 25.4, Inch.Millimeters(), 1e-9)
	assert.InDelta(t, 210.0, Mm(210).Millimeters(), 1e-9)
	assert.InDelta(t, 595.2756, Mm(210).Points(), 1e-3)
	assert.InDelta(t, 2.0, In(2).Inches(), 1e-9)
}

func TestPtMmRoundTrip(t *testing.T) {
	for _, pt := range []float64{0, 0.001, 1, 12, 14.4, 72, 595.28, 1000} {
		back := Mm(Pt(pt).Millimeters())
		assert.InDelta(t, pt, back.Points(), 1e-9)
	}
}

func TestArithmeticStaysInPoints(t *testing.T) {
	sum := Mm(10) + Pt(10)
	assert.InDelta(t, 10*72/25.4+10, sum.Points(), 1e-9)
	assert.Equal(t, Pt(6), Pt(12)/2)
	assert.True(t, Pt(3) < Mm(3))
	assert.Equal(t, Pt(3), Max(Pt(3), Pt(2)))
	assert.Equal(t, Pt(2), Min(Pt(3), Pt(2)))
}

func TestRound(t *testing.T) {
	assert.Equal(t, Pt(12.35), Pt(12.345678).Round(2))
	assert.Equal(t, Pt(-3), Pt(-3.2).Round(0))
}

func TestParse(t *testing.T) {
	tests := []struct {
		in   string
		want Unit
	}{
		{"12", 12},
		{"12pt", 12},
		{"1in", 72},
		{"2pc", 24},
		{"25.4mm", 72},
		{"2.54cm", 72},
		{"16px", 12},
		{"2em", 20},
		{"50%", 100},
		{" 3 pt ", 3},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := Parse(tt.in, 10, 200)
			require.NoError(t, err)
			assert.InDelta(t, tt.want.Points(), got.Points(), 1e-9)
		})
	}
}

func TestParseInvalid(t *testing.T) {
	for _, in := range []string{"", "abc", "pt", "1..2mm"} {
		_, err := Parse(in, 12, 0)
		assert.ErrorIs(t, err, ErrInvalidLength, in)
	}
}

func TestEqual(t *testing.T) {
	assert.True(t, Equal(1, 1.0000001, 1e-3))
	assert.False(t, Equal(1, 1.1, 1e-3))
}

package pagination

import (
	"testing"

	"github.com/gompdf/pageflow/internal/style"
	"github.com/gompdf/pageflow/internal/unit"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSizeOfA4(t *testing.T) {
	sz, err := SizeOf("a4")
	require.NoError(t, err)
	assert.InDelta(t, 210, sz.Width.Millimeters(), 1)
	assert.InDelta(t, 297, sz.Height.Millimeters(), 1)

	l := sz.Landscape()
	assert.InDelta(t, 297, l.Width.Millimeters(), 1)
	assert.InDelta(t, 210, l.Height.Millimeters(), 1)
	assert.Equal(t, l, l.Landscape())
}

func TestSizeOfTable(t *testing.T) {
	tests := []struct {
		name          string
		width, height unit.Unit
	}{
		{"Letter", 612, 792},
		{"legal", 612, 1008},
		{"TABLOID", 792, 1224},
		{"A0", 2383.94, 3370.39},
		{"executive", 521.86, 756},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sz, err := SizeOf(tt.name)
			require.NoError(t, err)
			assert.InDelta(t, tt.width.Points(), sz.Width.Points(), 0.01)
			assert.InDelta(t, tt.height.Points(), sz.Height.Points(), 0.01)
		})
	}

	_, err := SizeOf("napkin")
	assert.ErrorIs(t, err, ErrUnknownPaperSize)
	assert.Contains(t, Names(), "A4")
	assert.Contains(t, Names(), "B5")
}

func TestResolveSetup(t *testing.T) {
	base := DefaultSetup()
	assert.Equal(t, "A4", base.Paper)
	assert.InDelta(t, 595.28-144, base.ContentWidth().Points(), 1e-9)

	rule := &style.PageRule{Name: "wide", Paper: "A4", Orientation: style.Landscape, HasOrientation: true,
		Margin: style.Edges{Top: 10, Right: 10, Bottom: 10, Left: 10}, HasMargin: true}
	s, err := Resolve(base, rule, nil)
	require.NoError(t, err)
	assert.Equal(t, "wide", s.Name)
	assert.Equal(t, style.Landscape, s.Orientation)
	assert.InDelta(t, 297, s.Width.Millimeters(), 1)
	assert.Equal(t, unit.Unit(10), s.Margins.Left)

	section := &style.Style{PageWidth: unit.Mm(100), PageHeight: unit.Mm(50), HasPageSize: true}
	s, err = Resolve(base, rule, section)
	require.NoError(t, err)
	assert.InDelta(t, 100, s.Width.Millimeters(), 1e-9)
	assert.Equal(t, "", s.Paper)
	assert.Equal(t, style.Landscape, s.Orientation)

	s, err = Resolve(base, nil, &style.Style{Orientation: style.Landscape, HasOrientation: true})
	require.NoError(t, err)
	assert.InDelta(t, 297, s.Width.Millimeters(), 1)

	_, err = Resolve(base, &style.PageRule{Paper: "napkin"}, nil)
	assert.ErrorIs(t, err, ErrUnknownPaperSize)
}

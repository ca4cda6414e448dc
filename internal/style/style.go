package style

import (
	"github.com/gompdf/pageflow/internal/numbering"
	"github.com/gompdf/pageflow/internal/unit"
)

// Display is the display mode of a node.
type Display int

const (
	DisplayBlock Display = iota
	DisplayInline
	DisplayInlineBlock
	DisplayListItem
	DisplayNone
)

// Position is the positioning scheme of a node.
type Position int

const (
	PositionStatic Position = iota
	PositionRelative
	PositionAbsolute
)

// Float moves a box out of the normal flow to one side of its column.
type Float int

const (
	FloatNone Float = iota
	FloatLeft
	FloatRight
)

// HorizontalAlign is the inline alignment of line content.
type HorizontalAlign int

const (
	AlignLeft HorizontalAlign = iota
	AlignCenter
	AlignRight
	AlignJustified
)

// VerticalAlign positions inline-level boxes within their line.
type VerticalAlign int

const (
	VAlignBaseline VerticalAlign = iota
	VAlignTop
	VAlignMiddle
	VAlignBottom
)

// Orientation of a page.
type Orientation int

const (
	Portrait Orientation = iota
	Landscape
)

// Edges holds a thickness for each side of a box.
type Edges struct {
	Top, Right, Bottom, Left unit.Unit
}

// Horizontal returns Left + Right.
func (e Edges) Horizontal() unit.Unit { return e.Left + e.Right }

// Vertical returns Top + Bottom.
func (e Edges) Vertical() unit.Unit { return e.Top + e.Bottom }

// Font describes the face used for text.
type Font struct {
	Family string
	Size   unit.Unit
	Bold   bool
	Italic bool
}

// Hyphens configures automatic hyphenation.
type Hyphens struct {
	Enabled   bool
	MinBefore int
	MinAfter  int
	MinWord   int
	Char      rune
}

// ListAlign aligns a list label inside its marker box.
type ListAlign int

const (
	ListAlignRight ListAlign = iota
	ListAlignLeft
)

// List holds the numbering settings of a list and its items.
type List struct {
	Style       numbering.Style
	Prefix      string
	Postfix     string
	Inset       unit.Unit
	HasInset    bool
	Align       ListAlign
	Group       string
	Concatenate bool
	Start       int
	HasStart    bool
}

// Columns splits a block into side by side regions.
type Columns struct {
	Count int
	Alley unit.Unit
}

// OverlayGrid is a diagnostic grid drawn over a page.
type OverlayGrid struct {
	Show    bool
	Spacing unit.Unit
	Color   string
}

// Style is the resolved, immutable style of one content node.
type Style struct {
	Display  Display
	Position Position
	Float    Float
	Left     unit.Unit
	Top      unit.Unit

	Margin  Edges
	Padding Edges
	Border  Edges

	Width    unit.Unit
	HasWidth bool
	// WidthRatio is a percentage width as a fraction of the available width.
	WidthRatio float64
	Height     unit.Unit
	HasHeight  bool
	MinHeight  unit.Unit

	HAlign HorizontalAlign
	VAlign VerticalAlign

	Font           Font
	Leading        unit.Unit
	HasLeading     bool
	CharSpacing    unit.Unit
	HasCharSpacing bool
	WordSpacing    unit.Unit
	HasWordSpacing bool
	Hyphens        Hyphens
	NoWrap         bool

	List    List
	Columns Columns

	PageName       string
	PaperSize      string
	Orientation    Orientation
	HasOrientation bool
	PageWidth      unit.Unit
	PageHeight     unit.Unit
	HasPageSize    bool

	OverlayGrid OverlayGrid

	Color       string
	Background  string
	BorderColor string
}

// Default font settings.
const (
	DefaultFontFamily = "Helvetica"
	DefaultFontSize   = unit.Unit(12)
	// DefaultLeadingFactor is the line height of unstyled text relative to
	// its font size.
	DefaultLeadingFactor = 1.2
)

// Default returns the style of the document root.
func Default() *Style {
	return &Style{
		Font: Font{Family: DefaultFontFamily, Size: DefaultFontSize},
		Hyphens: Hyphens{
			MinBefore: 2,
			MinAfter:  3,
			MinWord:   5,
			Char:      '-',
		},
		List: List{
			Style: numbering.Decimal,
		},
		Columns: Columns{Count: 1, Alley: 10},
		Color:   "#000000",
	}
}

// LineHeight returns the explicit leading or the default 1.2 x font size.
func (s *Style) LineHeight() unit.Unit {
	if s.HasLeading {
		return s.Leading
	}
	return s.Font.Size * DefaultLeadingFactor
}

// IsOutOfFlow reports whether the box is taken out of the normal flow.
func (s *Style) IsOutOfFlow() bool {
	return s.Position == PositionAbsolute || s.Float != FloatNone
}

// IsInlineLevel reports whether the node participates in an inline
// formatting context.
func (s *Style) IsInlineLevel() bool {
	return s.Display == DisplayInline || s.Display == DisplayInlineBlock
}

// inherit copies the inherited properties of parent into a fresh style.
func inherit(parent *Style) *Style {
	s := Default()
	if parent == nil {
		return s
	}
	s.HAlign = parent.HAlign
	s.Font = parent.Font
	s.Leading, s.HasLeading = parent.Leading, parent.HasLeading
	s.CharSpacing, s.HasCharSpacing = parent.CharSpacing, parent.HasCharSpacing
	s.WordSpacing, s.HasWordSpacing = parent.WordSpacing, parent.HasWordSpacing
	s.Hyphens = parent.Hyphens
	s.NoWrap = parent.NoWrap
	s.List = parent.List
	// Counter scoping settings belong to the list that declares them.
	s.List.Group, s.List.Concatenate = "", false
	s.List.Start, s.List.HasStart = 0, false
	s.PageName = parent.PageName
	s.Color = parent.Color
	return s
}

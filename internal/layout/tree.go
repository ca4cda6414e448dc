package layout

import (
	"github.com/gompdf/pageflow/internal/content"
	"github.com/gompdf/pageflow/internal/pagination"
	"github.com/gompdf/pageflow/internal/style"
	"github.com/gompdf/pageflow/internal/text"
	"github.com/gompdf/pageflow/internal/unit"
)

// Handles into the arenas of a Document.
type (
	BlockID  int32
	LineID   int32
	RegionID int32
)

// Zero handles.
const (
	NoBlock  BlockID  = -1
	NoLine   LineID   = -1
	NoRegion RegionID = -1
)

// Rect is a rectangle; Y grows downwards.
type Rect struct {
	X, Y, Width, Height unit.Unit
}

// Bottom returns Y + Height.
func (r Rect) Bottom() unit.Unit { return r.Y + r.Height }

// Right returns X + Width.
func (r Rect) Right() unit.Unit { return r.X + r.Width }

// Document is the result of a layout pass. All entities live in arenas and
// refer to each other through handles.
type Document struct {
	Pages []*Page

	blocks       []Block
	lines        []Line
	regions      []PositionedRegion
	arrangements map[content.NodeID][]Arrangement
}

func newDocument() *Document {
	return &Document{arrangements: make(map[content.NodeID][]Arrangement)}
}

// Page is one physical output page.
type Page struct {
	Index  int
	Width  unit.Unit
	Height unit.Unit
	Setup  pagination.Setup
	// ContentBlock is the fragment of the section laid out on this page.
	ContentBlock BlockID
}

// Column is one vertical flow region of a block.
type Column struct {
	// Bounds is relative to the border box of the owning block.
	Bounds   Rect
	Contents []ContentRef
}

// ContentKind tells lines and blocks apart inside a column.
type ContentKind int

const (
	ContentLine ContentKind = iota
	ContentBlock
)

// ContentRef is an entry of a column.
type ContentRef struct {
	Kind  ContentKind
	Line  LineID
	Block BlockID
}

// Block is the box of one block-level content node on one page or column.
type Block struct {
	ID    BlockID
	Owner content.NodeID
	Style *style.Style
	// Bounds is the border box, relative to the column (or region) it is
	// placed in.
	Bounds  Rect
	Margin  style.Edges
	Padding style.Edges
	Border  style.Edges
	Columns []Column
	// Positioned lists the regions owned by this block in discovery order.
	Positioned []RegionID
	// RepeatIndex counts the fragments of Owner laid out before this one.
	RepeatIndex int
	// Abs is the border box in page coordinates, set when the page is
	// finalized.
	Abs Rect
}

// LineSpacing holds the extra spacing applied to a justified line.
type LineSpacing struct {
	WordSpace unit.Unit
	CharSpace unit.Unit
}

// Line is one line box.
type Line struct {
	ID   LineID
	Runs []Run
	// Bounds is relative to the column.
	Bounds           Rect
	Height           unit.Unit
	BaseLineOffset   unit.Unit
	BaseLineToBottom unit.Unit
	// AvailableWidth is the width the line was broken against; FullWidth is
	// the natural width of its content without trailing spaces.
	AvailableWidth unit.Unit
	FullWidth      unit.Unit
	Spacing        *LineSpacing
	// Extents lists the inline nodes with content on the line, in order of
	// appearance.
	Extents []InlineExtent
	Abs     Rect
}

// InlineExtent is the horizontal span of an inline node on one line,
// relative to the line's left edge.
type InlineExtent struct {
	Owner  content.NodeID
	X0, X1 unit.Unit
}

// RunKind identifies the variant of a Run.
type RunKind int

const (
	RunTextBegin RunKind = iota
	RunCharacters
	RunTextEnd
	RunNewLine
	RunSpacer
	RunComponent
	RunInlineBlock
	RunPositionedRegion
	RunInlineBegin
	RunInlineEnd
)

var runKindNames = [...]string{
	RunTextBegin:        "TextBegin",
	RunCharacters:       "Characters",
	RunTextEnd:          "TextEnd",
	RunNewLine:          "NewLine",
	RunSpacer:           "Spacer",
	RunComponent:        "Component",
	RunInlineBlock:      "InlineBlock",
	RunPositionedRegion: "PositionedRegion",
	RunInlineBegin:      "InlineBegin",
	RunInlineEnd:        "InlineEnd",
}

func (k RunKind) String() string {
	if int(k) < len(runKindNames) {
		return runKindNames[k]
	}
	return "RunKind(?)"
}

// Cursor is a text cursor move. For TextBegin it is the start position
// relative to the line's top-left corner (Height is the baseline offset);
// for NewLine it is relative to the start of the previous text line.
type Cursor struct {
	Width  unit.Unit
	Height unit.Unit
}

// TextRenderOptions is the text state in effect for a run.
type TextRenderOptions struct {
	Font      text.Font
	CharSpace unit.Unit
	WordSpace unit.Unit
	Color     string
}

// Run is one element of a line.
type Run struct {
	Kind  RunKind
	Owner content.NodeID
	// Chars is set on Characters runs.
	Chars string
	Width unit.Unit
	// Cursor is set on TextBegin and NewLine runs.
	Cursor Cursor
	// Options is set on TextBegin, Characters, InlineBegin and InlineEnd runs.
	Options *TextRenderOptions
	// Region is set on InlineBlock and PositionedRegion runs.
	Region RegionID
	// X, Y and Height place Component runs inside the line.
	X, Y   unit.Unit
	Height unit.Unit
	// Src is the resource of a Component run.
	Src string
}

// RegionKind is the reason a region exists.
type RegionKind int

const (
	RegionInlineBlock RegionKind = iota
	RegionMarker
	RegionFloat
	RegionAbsolute
)

var regionKindNames = [...]string{"InlineBlock", "Marker", "Float", "Absolute"}

func (k RegionKind) String() string {
	if int(k) < len(regionKindNames) {
		return regionKindNames[k]
	}
	return "RegionKind(?)"
}

// Anchor is the box a region's TotalBounds are relative to: a line (its
// top-left corner) or a block (its border box).
type Anchor struct {
	Line  LineID
	Block BlockID
}

// PositionedRegion is an out-of-flow box.
type PositionedRegion struct {
	ID          RegionID
	Kind        RegionKind
	Owner       content.NodeID
	Anchor      Anchor
	TotalBounds Rect
	Contents    []BlockID
	// Label is the marker text of RegionMarker regions.
	Label string
	Abs   Rect
}

// Arrangement is the resolved placement of a content node.
type Arrangement struct {
	Page         int
	RenderBounds Rect
	Style        *style.Style
	Block        BlockID
	Region       RegionID
	RepeatIndex  int
}

// Block returns the block for id.
func (d *Document) Block(id BlockID) *Block {
	if id < 0 || int(id) >= len(d.blocks) {
		return nil
	}
	return &d.blocks[id]
}

// Line returns the line for id.
func (d *Document) Line(id LineID) *Line {
	if id < 0 || int(id) >= len(d.lines) {
		return nil
	}
	return &d.lines[id]
}

// Region returns the region for id.
func (d *Document) Region(id RegionID) *PositionedRegion {
	if id < 0 || int(id) >= len(d.regions) {
		return nil
	}
	return &d.regions[id]
}

// Arrangements returns every placement of node in page order.
func (d *Document) Arrangements(node content.NodeID) []Arrangement {
	return d.arrangements[node]
}

// FirstArrangement returns the first placement of node.
func (d *Document) FirstArrangement(node content.NodeID) (Arrangement, bool) {
	a := d.arrangements[node]
	if len(a) == 0 {
		return Arrangement{}, false
	}
	return a[0], true
}

// Blocks returns every block fragment owned by node, in page order.
func (d *Document) Blocks(node content.NodeID) []*Block {
	var out []*Block
	for _, a := range d.arrangements[node] {
		if b := d.Block(a.Block); b != nil {
			out = append(out, b)
		}
	}
	return out
}

func (d *Document) addBlock(b Block) BlockID {
	b.ID = BlockID(len(d.blocks))
	d.blocks = append(d.blocks, b)
	return b.ID
}

func (d *Document) addLine(l Line) LineID {
	l.ID = LineID(len(d.lines))
	d.lines = append(d.lines, l)
	return l.ID
}

func (d *Document) addRegion(r PositionedRegion) RegionID {
	r.ID = RegionID(len(d.regions))
	d.regions = append(d.regions, r)
	return r.ID
}

// Lines returns the lines of a block in column order, descending into
// nested blocks.
func (d *Document) Lines(id BlockID) []*Line {
	var out []*Line
	b := d.Block(id)
	if b == nil {
		return nil
	}
	for _, col := range b.Columns {
		for _, c := range col.Contents {
			switch c.Kind {
			case ContentLine:
				out = append(out, d.Line(c.Line))
			case ContentBlock:
				out = append(out, d.Lines(c.Block)...)
			}
		}
	}
	return out
}

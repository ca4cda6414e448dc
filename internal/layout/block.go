package layout

import (
	"github.com/gompdf/pageflow/internal/content"
	"github.com/gompdf/pageflow/internal/numbering"
	"github.com/gompdf/pageflow/internal/style"
	"github.com/gompdf/pageflow/internal/unit"
)

// status is the way a box left its flow.
type status int

const (
	statusDone status = iota
	statusOverflow
	statusPageBreak
	statusColumnBreak
)

func (s status) String() string {
	switch s {
	case statusDone:
		return "done"
	case statusOverflow:
		return "overflow"
	case statusPageBreak:
		return "page-break"
	case statusColumnBreak:
		return "column-break"
	}
	return "status(?)"
}

// frame is the space offered to a block.
type frame struct {
	width  unit.Unit
	height unit.Unit
	// fresh is set while nothing has been placed above the block in its
	// column. The first line or box of a fresh frame is always placed.
	fresh bool
}

func isUnbounded(h unit.Unit) bool { return h > unbounded/2 }

// inlinePos addresses a position inside the items of an inline formatting
// context: offset counts the runes of items[item] already placed.
type inlinePos struct {
	item   int
	offset int
}

// resumePoint is where the next fragment of a block continues.
type resumePoint struct {
	repeat int
	child  int
	inline inlinePos
	nested *resumePoint
	// spent is the part of an explicit height already taken by earlier
	// fragments.
	spent unit.Unit
}

func (r *resumePoint) same(o *resumePoint) bool {
	var a, b resumePoint
	if r != nil {
		a = *r
	}
	if o != nil {
		b = *o
	}
	if a.repeat != b.repeat || a.child != b.child || a.inline != b.inline || a.spent != b.spent {
		return false
	}
	if a.nested == nil && b.nested == nil {
		return true
	}
	return a.nested.same(b.nested)
}

// outcome is the result of laying out one fragment of a block.
type outcome struct {
	status status
	// height is the margin-box height consumed in the parent's column.
	height unit.Unit
	resume *resumePoint
}

// blockBuilder collects what a block owns while its columns are filled.
type blockBuilder struct {
	regions []RegionID
}

func lineRef(id LineID) ContentRef   { return ContentRef{Kind: ContentLine, Line: id, Block: NoBlock} }
func blockRef(id BlockID) ContentRef { return ContentRef{Kind: ContentBlock, Line: NoLine, Block: id} }

// borderWidth is the border-box width of a block given the width of its
// containing column.
func borderWidth(st *style.Style, avail unit.Unit, margin style.Edges) unit.Unit {
	deco := st.Padding.Horizontal() + st.Border.Horizontal()
	switch {
	case st.HasWidth:
		return st.Width + deco
	case st.WidthRatio > 0:
		return unit.Unit(float64(avail)*st.WidthRatio) + deco
	}
	return unit.Max(0, avail-margin.Horizontal())
}

func (p *pass) isInline(n *content.Node, st *style.Style) bool {
	switch n.Kind {
	case content.KindText, content.KindLineBreak:
		return true
	}
	return st.IsInlineLevel()
}

// inlineEnd returns the end of the run of inline-level nodes starting at i.
func (p *pass) inlineEnd(nodes []*content.Node, i int) int {
	for ; i < len(nodes); i++ {
		st := p.style(nodes[i])
		if st.Display != style.DisplayNone && !p.isInline(nodes[i], st) {
			break
		}
	}
	return i
}

// layoutBlock lays out the fragment of n that starts at rp (nil for the
// first fragment). It returns NoBlock when nothing of n could be placed.
func (p *pass) layoutBlock(n *content.Node, fr frame, rp *resumePoint) (BlockID, outcome, error) {
	st := p.style(n)
	repeat := 0
	var spent unit.Unit
	if rp != nil {
		repeat, spent = rp.repeat, rp.spent
	}
	margin := st.Margin
	if repeat > 0 {
		margin.Top = 0
	}

	if n.Kind.IsList() {
		p.beginList(n, st)
	}
	var (
		indent, inset unit.Unit
		label         numbering.Label
	)
	if n.Kind == content.KindListItem || st.Display == style.DisplayListItem {
		inset, label = p.listItem(n, st)
		indent = inset + numbering.Gutter
	}

	borderW := borderWidth(st, fr.width, margin)
	contentW := unit.Max(0, borderW-st.Border.Horizontal()-st.Padding.Horizontal()-indent)
	topDeco := st.Border.Top + st.Padding.Top
	bottomDeco := st.Border.Bottom + st.Padding.Bottom

	limit := fr.height - margin.Top - topDeco - bottomDeco
	if limit < 0 && !fr.fresh {
		next := resumePoint{}
		if rp != nil {
			next = *rp
		}
		return NoBlock, outcome{status: statusOverflow, resume: &next}, nil
	}
	limit = unit.Max(0, limit)
	if st.HasHeight {
		// A fragment takes what is left of the explicit height, or as much
		// of it as the column offers.
		want := st.Height - spent
		if limit <= 0 && fr.fresh {
			limit = want
		}
		limit = unit.Min(limit, want)
	}

	var ctx []RegionID
	isContext := st.Position != style.PositionStatic || n.ID == p.section
	if isContext {
		p.contexts = append(p.contexts, &ctx)
	}

	count := st.Columns.Count
	if count < 1 {
		count = 1
	}
	colW := contentW
	if count > 1 {
		colW = unit.Max(0, (contentW-st.Columns.Alley*unit.Unit(count-1))/unit.Unit(count))
	}
	columns := make([]Column, count)
	for c := range columns {
		columns[c].Bounds = Rect{
			X:     st.Border.Left + st.Padding.Left + indent + unit.Unit(c)*(colW+st.Columns.Alley),
			Y:     topDeco,
			Width: colW,
		}
	}

	b := &blockBuilder{}
	cursor := rp
	result := statusDone
	var used unit.Unit
	for c := 0; c < count; c++ {
		h, s, next, err := p.flowColumn(n, st, b, &columns[c], limit, fr.fresh, cursor)
		if err != nil {
			return NoBlock, outcome{}, err
		}
		used = unit.Max(used, h)
		cursor, result = next, s
		if s == statusDone || s == statusPageBreak {
			break
		}
		if c == count-1 && s == statusColumnBreak && count > 1 {
			result = statusPageBreak
		}
	}
	if isContext {
		p.contexts = p.contexts[:len(p.contexts)-1]
	}

	placed := len(b.regions) > 0 || len(ctx) > 0
	for _, col := range columns {
		if len(col.Contents) > 0 {
			placed = true
		}
	}
	if !placed && result != statusDone {
		next := resumePoint{repeat: repeat, spent: spent}
		if cursor != nil {
			next.child, next.inline, next.nested = cursor.child, cursor.inline, cursor.nested
		}
		return NoBlock, outcome{status: result, resume: &next}, nil
	}

	contentH := used
	if st.HasHeight {
		contentH = limit
		spent += limit
		if spent < st.Height-unit.Epsilon {
			// The rest of the height continues on the next page even when
			// the children are exhausted.
			if result == statusDone {
				result = statusOverflow
			}
		} else {
			// Content beyond the explicit height starts a new box of that
			// height.
			spent = 0
		}
	}
	contentH = unit.Max(contentH, unit.Min(st.MinHeight, limit))
	for c := range columns {
		columns[c].Bounds.Height = contentH
	}
	borderH := topDeco + contentH + bottomDeco
	if result != statusDone {
		margin.Bottom = 0
	}

	id := p.out.addBlock(Block{
		Owner:       n.ID,
		Style:       st,
		Bounds:      Rect{X: margin.Left, Y: margin.Top, Width: borderW, Height: borderH},
		Margin:      margin,
		Padding:     st.Padding,
		Border:      st.Border,
		Columns:     columns,
		RepeatIndex: repeat,
	})

	regions := b.regions
	if repeat == 0 && label.Text != "" {
		rid, err := p.markerRegion(n, st, id, label, inset)
		if err != nil {
			return NoBlock, outcome{}, err
		}
		regions = append([]RegionID{rid}, regions...)
	}
	regions = append(regions, ctx...)
	for _, rid := range regions {
		if r := p.out.Region(rid); r.Anchor.Line == NoLine {
			r.Anchor.Block = id
		}
	}
	p.out.Block(id).Positioned = regions

	out := outcome{status: result, height: margin.Top + borderH + margin.Bottom}
	if result != statusDone {
		next := resumePoint{repeat: repeat + 1, child: len(n.Children), spent: spent}
		if cursor != nil {
			next.child, next.inline, next.nested = cursor.child, cursor.inline, cursor.nested
		}
		out.resume = &next
	}
	return id, out, nil
}

// flowColumn fills one column of the block owned by n, starting at from.
// It returns the height used and, unless the children are exhausted, where
// the next column or fragment continues.
func (p *pass) flowColumn(n *content.Node, st *style.Style, b *blockBuilder, col *Column, limit unit.Unit, fresh bool, from *resumePoint) (unit.Unit, status, *resumePoint, error) {
	children := n.Children
	i := 0
	var (
		nested *resumePoint
		pos    inlinePos
	)
	if from != nil {
		i, nested, pos = from.child, from.nested, from.inline
	}
	var y unit.Unit
	empty := func() bool { return fresh && y == 0 && len(col.Contents) == 0 }

	for i < len(children) {
		child := children[i]
		cst := p.style(child)
		switch {
		case cst.Display == style.DisplayNone:
			i++

		case child.Kind.IsBreak():
			i++
			if empty() || isUnbounded(limit) {
				continue
			}
			s := statusPageBreak
			if child.Kind == content.KindColumnBreak {
				s = statusColumnBreak
			}
			return y, s, &resumePoint{child: i}, nil

		case p.isInline(child, cst):
			j := p.inlineEnd(children, i)
			used, s, next, err := p.layoutInline(n, st, children[i:j], b, col, y, limit-y, empty(), pos)
			if err != nil {
				return y, statusDone, nil, err
			}
			pos = inlinePos{}
			y += used
			if s != statusDone {
				return y, s, &resumePoint{child: i, inline: next}, nil
			}
			i = j

		case cst.IsOutOfFlow():
			if err := p.placeDetached(child, cst, b, col, y); err != nil {
				return y, statusDone, nil, err
			}
			i++

		default:
			if cst.PageName != p.pageName && !empty() && !isUnbounded(limit) {
				return y, statusPageBreak, &resumePoint{child: i, nested: nested}, nil
			}
			id, out, err := p.layoutBlock(child, frame{width: col.Bounds.Width, height: limit - y, fresh: empty()}, nested)
			if err != nil {
				return y, statusDone, nil, err
			}
			nested = nil
			if id != NoBlock {
				p.out.Block(id).Bounds.Y += y
				col.Contents = append(col.Contents, blockRef(id))
			}
			y += out.height
			if out.status != statusDone {
				return y, out.status, &resumePoint{child: i, nested: out.resume}, nil
			}
			i++
		}
	}
	return y, statusDone, nil, nil
}

// placeDetached lays out a block-level float or absolutely positioned child.
// Floats sit at the current flow position on their side of the column and
// do not push other content aside.
func (p *pass) placeDetached(n *content.Node, st *style.Style, b *blockBuilder, col *Column, y unit.Unit) error {
	box, err := p.detached(n, st, col.Bounds.Width)
	if err != nil {
		return err
	}
	if st.Position == style.PositionAbsolute {
		p.addAbsolute(n, st, box, Anchor{Line: NoLine, Block: NoBlock})
		return nil
	}
	p.adopt(box.absolutes)
	x := col.Bounds.X
	if st.Float == style.FloatRight {
		x += col.Bounds.Width - box.width
	}
	rid := p.out.addRegion(PositionedRegion{
		Kind:        RegionFloat,
		Owner:       n.ID,
		Anchor:      Anchor{Line: NoLine, Block: NoBlock},
		TotalBounds: Rect{X: x, Y: col.Bounds.Y + y, Width: box.width, Height: box.height},
		Contents:    []BlockID{box.block},
	})
	b.regions = append(b.regions, rid)
	return nil
}

// addAbsolute attaches an absolutely positioned box to the innermost
// positioning context.
func (p *pass) addAbsolute(n *content.Node, st *style.Style, box detachedBox, anchor Anchor) RegionID {
	rid := p.out.addRegion(PositionedRegion{
		Kind:        RegionAbsolute,
		Owner:       n.ID,
		Anchor:      anchor,
		TotalBounds: Rect{X: st.Left, Y: st.Top, Width: box.width, Height: box.height},
		Contents:    []BlockID{box.block},
	})
	p.adopt(append([]RegionID{rid}, box.absolutes...))
	return rid
}

// adopt attaches regions to the innermost positioning context. Regions
// found while a detached box was laid out are adopted when the box is
// placed, so they follow it to its page.
func (p *pass) adopt(regions []RegionID) {
	if len(regions) == 0 || len(p.contexts) == 0 {
		return
	}
	ctx := p.contexts[len(p.contexts)-1]
	*ctx = append(*ctx, regions...)
}

func (p *pass) beginList(n *content.Node, st *style.Style) {
	parentItem := content.NoNode
	for a := p.doc.Parent(n.ID); a != nil; a = p.doc.Parent(a.ID) {
		if a.Kind == content.KindListItem {
			parentItem = a.ID
			break
		}
	}
	p.numbers.Begin(n.ID, numbering.Settings{
		Style:       st.List.Style,
		Prefix:      st.List.Prefix,
		Postfix:     st.List.Postfix,
		Group:       st.List.Group,
		Concatenate: st.List.Concatenate,
		Start:       st.List.Start,
		HasStart:    st.List.HasStart,
	}, parentItem)
}

// listItem numbers item within its parent list and returns the width of its
// marker box.
func (p *pass) listItem(item *content.Node, st *style.Style) (unit.Unit, numbering.Label) {
	inset := markerInset(st)
	list := item.ID
	if parent := p.doc.Parent(item.ID); parent != nil {
		list = parent.ID
		p.beginList(parent, p.style(parent))
	}
	return inset, p.numbers.Next(list, item.ID)
}

func markerInset(st *style.Style) unit.Unit {
	if st.List.HasInset {
		return st.List.Inset
	}
	return numbering.DefaultInset
}

// markerRegion builds the marker of a list item's first fragment. The
// marker's baseline is aligned with the first baseline of the item.
func (p *pass) markerRegion(item *content.Node, st *style.Style, owner BlockID, label numbering.Label, inset unit.Unit) (RegionID, error) {
	m, err := p.measure(label.Text, st, item.ID)
	if err != nil {
		return NoRegion, err
	}
	lh := st.LineHeight()
	base := unit.Min(lh, (lh-st.Font.Size)/2+m.Metrics.Ascent)
	var x unit.Unit
	if st.List.Align == style.ListAlignRight {
		x = unit.Max(0, inset-numbering.LabelPadding-m.Width)
	}
	opts := p.textOptions(item, st)
	lineID := p.out.addLine(Line{
		Runs: []Run{
			{Kind: RunTextBegin, Owner: item.ID, Cursor: Cursor{Width: x, Height: base}, Options: opts, Region: NoRegion},
			{Kind: RunCharacters, Owner: item.ID, Chars: label.Text, Width: m.Width, Options: opts, Region: NoRegion},
			{Kind: RunTextEnd, Owner: item.ID, Region: NoRegion},
		},
		Bounds:           Rect{Width: inset, Height: lh},
		Height:           lh,
		BaseLineOffset:   base,
		BaseLineToBottom: lh - base,
		AvailableWidth:   inset,
		FullWidth:        m.Width,
	})
	blk := p.out.addBlock(Block{
		Owner:   item.ID,
		Style:   st,
		Bounds:  Rect{Width: inset, Height: lh},
		Columns: []Column{{Bounds: Rect{Width: inset, Height: lh}, Contents: []ContentRef{lineRef(lineID)}}},
	})

	y := st.Border.Top + st.Padding.Top
	if fb, ok := p.firstBaseline(owner); ok {
		y = fb - base
	}
	return p.out.addRegion(PositionedRegion{
		Kind:        RegionMarker,
		Owner:       item.ID,
		Anchor:      Anchor{Line: NoLine, Block: owner},
		TotalBounds: Rect{X: st.Border.Left + st.Padding.Left, Y: y, Width: inset, Height: lh},
		Contents:    []BlockID{blk},
		Label:       label.Text,
	}), nil
}

// firstBaseline returns the offset of the first baseline inside the border
// box of a block.
func (p *pass) firstBaseline(id BlockID) (unit.Unit, bool) {
	b := p.out.Block(id)
	for _, col := range b.Columns {
		for _, c := range col.Contents {
			switch c.Kind {
			case ContentLine:
				l := p.out.Line(c.Line)
				return col.Bounds.Y + l.Bounds.Y + l.BaseLineOffset, true
			case ContentBlock:
				if v, ok := p.firstBaseline(c.Block); ok {
					return col.Bounds.Y + p.out.Block(c.Block).Bounds.Y + v, true
				}
			}
		}
	}
	return 0, false
}

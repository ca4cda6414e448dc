package layout

import (
	"github.com/gompdf/pageflow/internal/content"
	"github.com/gompdf/pageflow/internal/style"
	"github.com/gompdf/pageflow/internal/unit"
)

// finalizePage resolves page coordinates for everything reachable from the
// page's content block and records the arrangements of its nodes.
func (p *pass) finalizePage(page *Page) {
	b := p.out.Block(page.ContentBlock)
	if b == nil {
		return
	}
	m := page.Setup.Margins
	p.finalizeBlock(page.Index, page.ContentBlock, m.Left+b.Bounds.X, m.Top+b.Bounds.Y, true)
}

func (p *pass) finalizeBlock(page int, id BlockID, x, y unit.Unit, record bool) {
	b := p.out.Block(id)
	if b.Style != nil && b.Style.Position == style.PositionRelative {
		x += b.Style.Left
		y += b.Style.Top
	}
	b.Abs = Rect{X: x, Y: y, Width: b.Bounds.Width, Height: b.Bounds.Height}
	if record {
		p.arrange(b.Owner, Arrangement{
			Page:         page,
			RenderBounds: b.Abs,
			Style:        b.Style,
			Block:        id,
			Region:       NoRegion,
			RepeatIndex:  b.RepeatIndex,
		})
	}

	for _, col := range b.Columns {
		cx, cy := x+col.Bounds.X, y+col.Bounds.Y
		for _, c := range col.Contents {
			switch c.Kind {
			case ContentLine:
				l := p.out.Line(c.Line)
				l.Abs = Rect{X: cx + l.Bounds.X, Y: cy + l.Bounds.Y, Width: l.Bounds.Width, Height: l.Bounds.Height}
				if !record {
					continue
				}
				for _, e := range l.Extents {
					p.arrange(e.Owner, Arrangement{
						Page:         page,
						RenderBounds: Rect{X: l.Abs.X + e.X0, Y: l.Abs.Y, Width: e.X1 - e.X0, Height: l.Height},
						Style:        p.styles[e.Owner],
						Block:        NoBlock,
						Region:       NoRegion,
						RepeatIndex:  len(p.out.arrangements[e.Owner]),
					})
				}
				for _, r := range l.Runs {
					if r.Kind != RunComponent {
						continue
					}
					p.arrange(r.Owner, Arrangement{
						Page:         page,
						RenderBounds: Rect{X: l.Abs.X + r.X, Y: l.Abs.Y + r.Y, Width: r.Width, Height: r.Height},
						Style:        p.styles[r.Owner],
						Block:        NoBlock,
						Region:       NoRegion,
					})
				}
			case ContentBlock:
				child := p.out.Block(c.Block)
				p.finalizeBlock(page, c.Block, cx+child.Bounds.X, cy+child.Bounds.Y, record)
			}
		}
	}

	for _, rid := range b.Positioned {
		p.finalizeRegion(page, rid, b.Abs)
	}
}

func (p *pass) finalizeRegion(page int, rid RegionID, anchor Rect) {
	r := p.out.Region(rid)
	if l := p.out.Line(r.Anchor.Line); l != nil {
		anchor = l.Abs
	}
	r.Abs = Rect{X: anchor.X + r.TotalBounds.X, Y: anchor.Y + r.TotalBounds.Y, Width: r.TotalBounds.Width, Height: r.TotalBounds.Height}
	for _, id := range r.Contents {
		cb := p.out.Block(id)
		if cb == nil {
			continue
		}
		p.finalizeBlock(page, id, r.Abs.X+cb.Bounds.X, r.Abs.Y+cb.Bounds.Y, r.Kind != RegionMarker)
	}
}

func (p *pass) arrange(node content.NodeID, a Arrangement) {
	p.out.arrangements[node] = append(p.out.arrangements[node], a)
}

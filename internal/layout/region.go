package layout

import (
	"github.com/gompdf/pageflow/internal/content"
	"github.com/gompdf/pageflow/internal/numbering"
	"github.com/gompdf/pageflow/internal/style"
	"github.com/gompdf/pageflow/internal/text"
	"github.com/gompdf/pageflow/internal/unit"
)

type detachedKey struct {
	node  content.NodeID
	width unit.Unit
}

// detachedBox is a box laid out outside the flow of its parent: an
// inline-block, a float or an absolutely positioned box. width and height
// are its margin box.
type detachedBox struct {
	block  BlockID
	width  unit.Unit
	height unit.Unit
	// absolutes are the absolutely positioned regions inside the box that
	// belong to the positioning context it is placed in.
	absolutes []RegionID
}

// detached lays out n as a self-contained box no wider than avail. Boxes
// without an explicit width shrink to their max-content width. Results are
// memoized so that re-collecting a line after a page break reuses the
// same blocks. Absolutely positioned descendants are held back until the
// box is placed; see adopt.
func (p *pass) detached(n *content.Node, st *style.Style, avail unit.Unit) (detachedBox, error) {
	key := detachedKey{node: n.ID, width: avail}
	if box, ok := p.detachedMemo[key]; ok {
		return box, nil
	}
	w := avail
	if !st.HasWidth && st.WidthRatio == 0 {
		iw, err := p.intrinsicWidth(n)
		if err != nil {
			return detachedBox{}, err
		}
		w = unit.Min(iw+st.Margin.Horizontal(), avail)
	}
	var absolutes []RegionID
	p.contexts = append(p.contexts, &absolutes)
	id, out, err := p.layoutBlock(n, frame{width: w, height: unbounded, fresh: true}, nil)
	p.contexts = p.contexts[:len(p.contexts)-1]
	if err != nil {
		return detachedBox{}, err
	}
	if out.status != statusDone {
		p.Logger.Debug("detached box truncated", "node", n.ID, "status", out.status.String())
	}
	box := detachedBox{block: id, height: out.height, absolutes: absolutes}
	if b := p.out.Block(id); b != nil {
		box.width = b.Bounds.Width + b.Margin.Horizontal()
	}
	p.detachedMemo[key] = box
	return box, nil
}

// intrinsicWidth returns the max-content border-box width of n: the width
// it would take if no line was ever broken except at forced breaks.
func (p *pass) intrinsicWidth(n *content.Node) (unit.Unit, error) {
	st := p.style(n)
	deco := st.Padding.Horizontal() + st.Border.Horizontal()
	if st.HasWidth {
		return st.Width + deco, nil
	}
	if n.Kind == content.KindListItem || st.Display == style.DisplayListItem {
		deco += markerInset(st) + numbering.Gutter
	}

	var widest unit.Unit
	kids := n.Children
	for i := 0; i < len(kids); {
		c := kids[i]
		cst := p.style(c)
		switch {
		case cst.Display == style.DisplayNone || c.Kind.IsBreak():
			i++
		case p.isInline(c, cst):
			j := p.inlineEnd(kids, i)
			items, err := p.collectItems(n, st, kids[i:j], unbounded)
			if err != nil {
				return 0, err
			}
			var line, pending unit.Unit
			for k := range items {
				it := &items[k]
				switch {
				case it.kind == itemBreak:
					widest = unit.Max(widest, line)
					line, pending = 0, 0
				case it.kind == itemSpace:
					if line > 0 {
						pending += it.width
					}
				case it.atomic():
					line += pending + it.width
					pending = 0
				}
			}
			widest = unit.Max(widest, line)
			i = j
		case cst.IsOutOfFlow():
			i++
		default:
			w, err := p.intrinsicWidth(c)
			if err != nil {
				return 0, err
			}
			widest = unit.Max(widest, w+cst.Margin.Horizontal())
			i++
		}
	}
	return widest + deco, nil
}

// componentSize returns the content size of an image, graphic or leaf
// component: explicit style sizes first, then the intrinsic size of its
// resource scaled to keep the aspect ratio, then DefaultComponentSize.
func (p *pass) componentSize(st *style.Style, src string, avail unit.Unit) (w, h unit.Unit) {
	hasW, hasH := st.HasWidth, st.HasHeight
	w, h = st.Width, st.Height
	if !hasW && st.WidthRatio > 0 {
		w, hasW = unit.Unit(float64(avail)*st.WidthRatio), true
	}
	if hasW && hasH {
		return w, h
	}

	var iw, ih unit.Unit
	if p.Sizer != nil && src != "" {
		var err error
		if iw, ih, err = p.Sizer.IntrinsicSize(src); err != nil {
			p.Logger.Warn("resource size unavailable", "src", src, "err", err)
			iw, ih = 0, 0
		}
	}
	switch {
	case iw > 0 && ih > 0 && hasW:
		h = w * ih / iw
	case iw > 0 && ih > 0 && hasH:
		w = h * iw / ih
	case iw > 0 && ih > 0:
		w, h = iw, ih
	default:
		if !hasW {
			w = DefaultComponentSize
		}
		if !hasH {
			h = DefaultComponentSize
		}
	}
	return w, h
}

// textOptions returns the shared render options of the text scope opened
// by n.
func (p *pass) textOptions(n *content.Node, st *style.Style) *TextRenderOptions {
	if o, ok := p.optsMemo[n.ID]; ok {
		return o
	}
	o := &TextRenderOptions{
		Font:      fontOf(st),
		CharSpace: st.CharSpacing,
		WordSpace: st.WordSpacing,
		Color:     st.Color,
	}
	p.optsMemo[n.ID] = o
	return o
}

// spaceOf measures a single space in the font of st.
func (p *pass) spaceOf(st *style.Style, owner content.NodeID) (text.Measurement, error) {
	f := fontOf(st)
	if m, ok := p.spaceMemo[f]; ok {
		return m, nil
	}
	m, err := p.measure(" ", st, owner)
	if err != nil {
		return m, err
	}
	p.spaceMemo[f] = m
	return m, nil
}

package layout

import (
	"unicode/utf8"

	"github.com/gompdf/pageflow/internal/content"
	"github.com/gompdf/pageflow/internal/style"
	"github.com/gompdf/pageflow/internal/text"
	"github.com/gompdf/pageflow/internal/unit"
)

type itemKind int

const (
	itemWord itemKind = iota
	itemSpace
	itemBreak
	itemBegin
	itemEnd
	itemBox
	itemComponent
	itemPositioned
)

// item is one unit of an inline formatting context.
type item struct {
	kind  itemKind
	node  *content.Node
	style *style.Style
	opts  *TextRenderOptions
	text  string
	// width is the advance of words and spaces and the margin-box width of
	// boxes and components.
	width   unit.Unit
	height  unit.Unit
	metrics text.Metrics
	// glued marks a word that directly follows another word, with at most
	// inline boundaries in between. No break is allowed before it.
	glued bool
	box   detachedBox
	// Component content size and source.
	compW, compH unit.Unit
	src          string
}

func (it *item) atomic() bool {
	return it.kind == itemWord || it.kind == itemBox || it.kind == itemComponent
}

func (it *item) isText() bool {
	return it.kind == itemWord || it.kind == itemSpace
}

type collector struct {
	p     *pass
	avail unit.Unit
	items []item
	// lastWord tracks whether the previous atomic item was a word.
	lastWord bool
}

// itemsKey identifies a run of inline-level children collected at one
// width.
type itemsKey struct {
	container content.NodeID
	first     content.NodeID
	count     int
	width     unit.Unit
}

// collectItems flattens inline-level nodes into items. Words are measured
// and inline-blocks are laid out against avail. The items of a run are
// collected once per pass and shared by all of its fragments; callers must
// not modify them.
func (p *pass) collectItems(container *content.Node, cst *style.Style, nodes []*content.Node, avail unit.Unit) ([]item, error) {
	if len(nodes) == 0 {
		return nil, nil
	}
	key := itemsKey{container: container.ID, first: nodes[0].ID, count: len(nodes), width: avail}
	if items, ok := p.itemsMemo[key]; ok {
		return items, nil
	}
	c := &collector{p: p, avail: avail}
	if err := c.add(nodes, p.textOptions(container, cst)); err != nil {
		return nil, err
	}
	p.itemsMemo[key] = c.items
	return c.items, nil
}

func (c *collector) add(nodes []*content.Node, scope *TextRenderOptions) error {
	for _, n := range nodes {
		st := c.p.style(n)
		if st.Display == style.DisplayNone || n.Kind.IsBreak() {
			continue
		}
		switch {
		case n.Kind == content.KindText:
			if err := c.text(n, st, scope); err != nil {
				return err
			}
		case n.Kind == content.KindLineBreak:
			c.items = append(c.items, item{kind: itemBreak, node: n, style: st})
			c.lastWord = false
		case st.IsOutOfFlow():
			c.items = append(c.items, item{kind: itemPositioned, node: n, style: st})
		case n.Kind == content.KindImage || n.Kind == content.KindGraphic ||
			(n.Kind == content.KindComponent && len(n.Children) == 0):
			c.component(n, st)
		case st.Display == style.DisplayInlineBlock || n.Kind == content.KindComponent || !st.IsInlineLevel():
			box, err := c.p.detached(n, st, c.avail)
			if err != nil {
				return err
			}
			c.items = append(c.items, item{kind: itemBox, node: n, style: st, box: box, width: box.width, height: box.height})
			c.lastWord = false
		default:
			opts := c.p.textOptions(n, st)
			c.items = append(c.items, item{kind: itemBegin, node: n, style: st, opts: opts})
			if err := c.add(n.Children, opts); err != nil {
				return err
			}
			c.items = append(c.items, item{kind: itemEnd, node: n, style: st, opts: scope})
		}
	}
	return nil
}

func (c *collector) text(n *content.Node, st *style.Style, scope *TextRenderOptions) error {
	tokens := text.Tokenize(text.Normalize(n.Text), true)
	if st.NoWrap {
		tokens = joinTokens(tokens)
	}
	for _, tok := range tokens {
		switch tok.Kind {
		case text.TokenWord:
			m, err := c.p.measure(tok.Text, st, n.ID)
			if err != nil {
				return err
			}
			c.items = append(c.items, item{
				kind:    itemWord,
				node:    n,
				style:   st,
				opts:    scope,
				text:    tok.Text,
				width:   m.Width + st.CharSpacing*unit.Unit(utf8.RuneCountInString(tok.Text)),
				metrics: m.Metrics,
				glued:   c.lastWord,
			})
			c.lastWord = true
		case text.TokenSpace:
			m, err := c.p.spaceOf(st, n.ID)
			if err != nil {
				return err
			}
			c.items = append(c.items, item{
				kind:    itemSpace,
				node:    n,
				style:   st,
				opts:    scope,
				text:    " ",
				width:   m.Width + st.CharSpacing + st.WordSpacing,
				metrics: m.Metrics,
			})
			c.lastWord = false
		case text.TokenBreak:
			c.items = append(c.items, item{kind: itemBreak, node: n, style: st})
			c.lastWord = false
		}
	}
	return nil
}

// joinTokens merges words and spaces between forced breaks into single
// unbreakable words.
func joinTokens(tokens []text.Token) []text.Token {
	var out []text.Token
	var cur []byte
	flush := func() {
		if len(cur) > 0 {
			out = append(out, text.Token{Kind: text.TokenWord, Text: string(cur)})
			cur = cur[:0]
		}
	}
	for _, tok := range tokens {
		if tok.Kind == text.TokenBreak {
			flush()
			out = append(out, tok)
			continue
		}
		cur = append(cur, tok.Text...)
	}
	flush()
	return out
}

func (c *collector) component(n *content.Node, st *style.Style) {
	src, _ := n.Attr("src")
	w, h := c.p.componentSize(st, src, c.avail)
	c.items = append(c.items, item{
		kind:   itemComponent,
		node:   n,
		style:  st,
		width:  w + st.Margin.Horizontal(),
		height: h + st.Margin.Vertical(),
		compW:  w,
		compH:  h,
		src:    src,
	})
	c.lastWord = false
}

type placedItem struct {
	item  int
	text  string
	width unit.Unit
}

// lineBreak is one line chosen by breakLine.
type lineBreak struct {
	placed []placedItem
	next   inlinePos
	forced bool
	// natural is the width of the placed items without trailing spaces.
	natural unit.Unit
	atomic  int
}

func (lb *lineBreak) empty(items []item) bool {
	if lb.atomic > 0 || lb.forced {
		return false
	}
	for _, pl := range lb.placed {
		if items[pl.item].kind == itemPositioned {
			return false
		}
	}
	return true
}

func (p *pass) wordWidth(it *item, s string) (unit.Unit, error) {
	m, err := p.measure(s, it.style, it.node.ID)
	if err != nil {
		return 0, err
	}
	return m.Width + it.style.CharSpacing*unit.Unit(utf8.RuneCountInString(s)), nil
}

// breakLine picks the items of the next line greedily: as many as fit in
// avail, always at least one atomic item.
func (p *pass) breakLine(items []item, pos inlinePos, avail unit.Unit) (lineBreak, error) {
	var lb lineBreak
	var x unit.Unit
	i, offset := pos.item, pos.offset
	// brk is the last position inside the line where a break is allowed.
	brk, brkItem := -1, 0
	hyphenated := false

loop:
	for i < len(items) {
		it := &items[i]
		switch it.kind {
		case itemSpace:
			if lb.atomic == 0 {
				i++
				continue
			}
			lb.placed = append(lb.placed, placedItem{item: i, text: it.text, width: it.width})
			x += it.width
			i++
		case itemBegin, itemEnd, itemPositioned:
			lb.placed = append(lb.placed, placedItem{item: i})
			i++
		case itemBreak:
			lb.placed = append(lb.placed, placedItem{item: i})
			lb.forced = true
			i++
			break loop
		default:
			word, w := it.text, it.width
			if offset > 0 {
				word = string([]rune(it.text)[offset:])
				var err error
				if w, err = p.wordWidth(it, word); err != nil {
					return lb, err
				}
			}
			glued := it.glued && offset == 0
			if lb.atomic > 0 && !glued {
				brk, brkItem = len(lb.placed), i
			}
			if x+w <= avail+unit.Epsilon {
				lb.placed = append(lb.placed, placedItem{item: i, text: word, width: w})
				x += w
				lb.atomic++
				i, offset = i+1, 0
				continue
			}
			if it.kind == itemWord && !glued && it.style.Hyphens.Enabled {
				head, tail, ok, err := p.hyphenate(it, word, avail-x)
				if err != nil {
					return lb, err
				}
				if ok {
					hw, err := p.wordWidth(it, head)
					if err != nil {
						return lb, err
					}
					lb.placed = append(lb.placed, placedItem{item: i, text: head, width: hw})
					lb.atomic++
					offset += utf8.RuneCountInString(word) - utf8.RuneCountInString(tail)
					hyphenated = true
					break loop
				}
			}
			switch {
			case lb.atomic == 0 || (glued && brk < 0):
				// Nothing to break at: the item overflows the line.
				lb.placed = append(lb.placed, placedItem{item: i, text: word, width: w})
				x += w
				lb.atomic++
				i, offset = i+1, 0
				continue
			case glued:
				lb.placed = lb.placed[:brk]
				i, offset = brkItem, 0
			}
			break loop
		}
	}
	lb.next = inlinePos{item: i, offset: offset}

	// Inline boundaries opening at the end of a line belong to the next one.
	if !lb.forced && !hyphenated && i < len(items) {
		for n := len(lb.placed); n > 0 && items[lb.placed[n-1].item].kind == itemBegin && lb.placed[n-1].item == lb.next.item-1; n-- {
			lb.placed = lb.placed[:n-1]
			lb.next.item--
		}
	}

	last := -1
	for k, pl := range lb.placed {
		if items[pl.item].atomic() {
			last = k
		}
	}
	kept := lb.placed[:0]
	lb.natural = 0
	for k, pl := range lb.placed {
		if k > last && items[pl.item].kind == itemSpace {
			continue
		}
		kept = append(kept, pl)
		lb.natural += pl.width
	}
	lb.placed = kept
	return lb, nil
}

func (p *pass) hyphenate(it *item, word string, room unit.Unit) (head, tail string, ok bool, err error) {
	h := it.style.Hyphens
	head, tail, ok = text.Hyphenate(word, text.HyphenOptions{
		MinBefore: h.MinBefore,
		MinAfter:  h.MinAfter,
		MinWord:   h.MinWord,
		Char:      h.Char,
	}, func(candidate string) bool {
		if err != nil {
			return false
		}
		var w unit.Unit
		w, err = p.wordWidth(it, candidate)
		return err == nil && w <= room+unit.Epsilon
	})
	if err != nil {
		return "", "", false, err
	}
	return head, tail, ok, nil
}

// atEnd reports whether nothing but spaces and inline boundaries remain.
func atEnd(items []item, pos inlinePos) bool {
	for i := pos.item; i < len(items); i++ {
		switch items[i].kind {
		case itemSpace, itemBegin, itemEnd:
		default:
			return false
		}
	}
	return true
}

// lineMetrics returns the height and baseline offset of a line and the Y
// offset of every box and component in it (keyed by placed index).
func (p *pass) lineMetrics(items []item, lb *lineBreak, cst *style.Style, strut text.Metrics) (h, base unit.Unit, ys map[int]unit.Unit) {
	hasText, hasBox := false, false
	for _, pl := range lb.placed {
		it := &items[pl.item]
		switch {
		case it.isText():
			lh := it.style.LineHeight()
			h = unit.Max(h, lh)
			base = unit.Max(base, (lh-it.style.Font.Size)/2+it.metrics.Ascent)
			hasText = true
		case it.kind == itemBox || it.kind == itemComponent:
			hasBox = true
		}
	}
	if !hasText && !hasBox {
		h = cst.LineHeight()
		base = (h-cst.Font.Size)/2 + strut.Ascent
	}
	base = unit.Max(0, unit.Min(base, h))
	if !hasBox {
		return h, base, nil
	}

	ys = make(map[int]unit.Unit)
	boxes := func(baseline bool, fn func(k int, it *item)) {
		for k, pl := range lb.placed {
			it := &items[pl.item]
			if it.kind != itemBox && it.kind != itemComponent {
				continue
			}
			if (it.style.VAlign == style.VAlignBaseline) == baseline {
				fn(k, it)
			}
		}
	}
	boxes(true, func(_ int, it *item) {
		below := h - base
		base = unit.Max(base, it.height)
		h = unit.Max(h, base+below)
	})
	boxes(false, func(_ int, it *item) {
		switch it.style.VAlign {
		case style.VAlignTop:
			h = unit.Max(h, it.height)
		case style.VAlignBottom:
			if it.height > h {
				base += it.height - h
				h = it.height
			}
		case style.VAlignMiddle:
			if it.height > h {
				base += (it.height - h) / 2
				h = it.height
			}
		}
	})
	for k, pl := range lb.placed {
		it := &items[pl.item]
		if it.kind != itemBox && it.kind != itemComponent {
			continue
		}
		switch it.style.VAlign {
		case style.VAlignTop:
			ys[k] = 0
		case style.VAlignBottom:
			ys[k] = h - it.height
		case style.VAlignMiddle:
			ys[k] = (h - it.height) / 2
		default:
			ys[k] = base - it.height
		}
	}
	return h, base, ys
}

// textFlow tracks the text object that stays open across lines.
type textFlow struct {
	open  bool
	lineX unit.Unit
	line  LineID
	below unit.Unit
}

func (p *pass) closeText(tf *textFlow) {
	if !tf.open {
		return
	}
	l := p.out.Line(tf.line)
	l.Runs = append(l.Runs, Run{Kind: RunTextEnd, Owner: content.NoNode, Region: NoRegion})
	tf.open = false
}

// layoutInline breaks the items of a run of inline-level nodes into lines
// and appends them to col, starting at y. limit is the height left in the
// column.
func (p *pass) layoutInline(container *content.Node, cst *style.Style, nodes []*content.Node, b *blockBuilder, col *Column, y, limit unit.Unit, fresh bool, pos inlinePos) (unit.Unit, status, inlinePos, error) {
	items, err := p.collectItems(container, cst, nodes, col.Bounds.Width)
	if err != nil {
		return 0, statusDone, pos, err
	}
	strut, err := p.spaceOf(cst, container.ID)
	if err != nil {
		return 0, statusDone, pos, err
	}

	avail := col.Bounds.Width
	var used unit.Unit
	var tf textFlow
	lines := 0
	for {
		lb, err := p.breakLine(items, pos, avail)
		if err != nil {
			return used, statusDone, pos, err
		}
		if lb.empty(items) {
			break
		}
		h, base, ys := p.lineMetrics(items, &lb, cst, strut.Metrics)
		if used+h > limit+unit.Epsilon && !(fresh && lines == 0) {
			p.closeText(&tf)
			return used, statusOverflow, pos, nil
		}

		last := lb.forced || atEnd(items, lb.next)
		id, err := p.emitLine(container, items, &lb, cst, b, &tf, avail, y+used, h, base, ys, last)
		if err != nil {
			return used, statusDone, pos, err
		}
		col.Contents = append(col.Contents, lineRef(id))
		used += h
		lines++
		pos = lb.next
		if pos.item >= len(items) {
			break
		}
	}
	p.closeText(&tf)
	return used, statusDone, pos, nil
}

// extents collects the horizontal extent of every inline node on a line.
type extents struct {
	p *pass
	// stop is the block whose inline content the line belongs to.
	stop  content.NodeID
	list  []InlineExtent
	index map[content.NodeID]int
}

func (e *extents) grow(id content.NodeID, x0, x1 unit.Unit) {
	k, ok := e.index[id]
	if !ok {
		e.index[id] = len(e.list)
		e.list = append(e.list, InlineExtent{Owner: id, X0: x0, X1: x1})
		return
	}
	ext := &e.list[k]
	ext.X0 = unit.Min(ext.X0, x0)
	ext.X1 = unit.Max(ext.X1, x1)
}

// cover extends the inline ancestors of n, and n itself when self is set,
// over [x0, x1].
func (e *extents) cover(n *content.Node, x0, x1 unit.Unit, self bool) {
	if self {
		e.grow(n.ID, x0, x1)
	}
	for a := e.p.doc.Parent(n.ID); a != nil && a.ID != e.stop; a = e.p.doc.Parent(a.ID) {
		e.grow(a.ID, x0, x1)
	}
}

// emitLine turns a broken line into runs and stores it.
func (p *pass) emitLine(container *content.Node, items []item, lb *lineBreak, cst *style.Style, b *blockBuilder, tf *textFlow,
	avail, y, h, base unit.Unit, ys map[int]unit.Unit, last bool) (LineID, error) {

	var spacing *LineSpacing
	var inset unit.Unit
	spaces := 0
	for _, pl := range lb.placed {
		if items[pl.item].kind == itemSpace {
			spaces++
		}
	}
	switch cst.HAlign {
	case style.AlignJustified:
		spacing = &LineSpacing{}
		if !last && spaces > 0 && avail > lb.natural {
			spacing.WordSpace = (avail - lb.natural) / unit.Unit(spaces)
		}
	case style.AlignRight:
		inset = unit.Max(0, avail-lb.natural)
	case style.AlignCenter:
		inset = unit.Max(0, (avail-lb.natural)/2)
	}

	// Text only continues on a line that starts with a word.
	startsWithText := false
	for _, pl := range lb.placed {
		if it := &items[pl.item]; it.atomic() {
			startsWithText = it.kind == itemWord
			break
		}
	}
	if !startsWithText {
		p.closeText(tf)
	}

	id := p.out.addLine(Line{})
	var runs []Run
	ext := &extents{p: p, stop: container.ID, index: make(map[content.NodeID]int)}
	x := inset
	firstText := true
	for k, pl := range lb.placed {
		it := &items[pl.item]
		switch it.kind {
		case itemWord, itemSpace:
			switch {
			case !tf.open:
				runs = append(runs, Run{Kind: RunTextBegin, Owner: it.node.ID, Cursor: Cursor{Width: x, Height: base}, Options: it.opts, Region: NoRegion})
				tf.open, tf.lineX = true, x
			case firstText:
				runs = append(runs, Run{Kind: RunNewLine, Owner: it.node.ID, Cursor: Cursor{Width: x - tf.lineX, Height: tf.below + base}, Region: NoRegion})
				tf.lineX = x
			}
			firstText = false
			ext.cover(it.node, x, x+pl.width, true)
			if n := len(runs); n > 0 && runs[n-1].Kind == RunCharacters && runs[n-1].Options == it.opts {
				runs[n-1].Chars += pl.text
				runs[n-1].Width += pl.width
			} else {
				runs = append(runs, Run{Kind: RunCharacters, Owner: it.node.ID, Chars: pl.text, Width: pl.width, Options: it.opts, Region: NoRegion})
			}
			x += pl.width
			if it.kind == itemSpace && spacing != nil {
				x += spacing.WordSpace
			}

		case itemBegin:
			ext.cover(it.node, x, x, true)
			runs = append(runs, Run{Kind: RunInlineBegin, Owner: it.node.ID, Options: it.opts, Region: NoRegion})
		case itemEnd:
			ext.cover(it.node, x, x, true)
			runs = append(runs, Run{Kind: RunInlineEnd, Owner: it.node.ID, Options: it.opts, Region: NoRegion})
		case itemBreak:
			runs = append(runs, Run{Kind: RunSpacer, Owner: it.node.ID, Region: NoRegion})

		case itemBox:
			if tf.open {
				runs = append(runs, Run{Kind: RunTextEnd, Owner: content.NoNode, Region: NoRegion})
				tf.open = false
			}
			rid := p.out.addRegion(PositionedRegion{
				Kind:        RegionInlineBlock,
				Owner:       it.node.ID,
				Anchor:      Anchor{Line: id, Block: NoBlock},
				TotalBounds: Rect{X: x, Y: ys[k], Width: it.width, Height: it.height},
				Contents:    []BlockID{it.box.block},
			})
			b.regions = append(b.regions, rid)
			p.adopt(it.box.absolutes)
			runs = append(runs, Run{Kind: RunInlineBlock, Owner: it.node.ID, Width: it.width, Region: rid})
			ext.cover(it.node, x, x+it.width, false)
			x += it.width

		case itemComponent:
			if tf.open {
				runs = append(runs, Run{Kind: RunTextEnd, Owner: content.NoNode, Region: NoRegion})
				tf.open = false
			}
			runs = append(runs, Run{
				Kind:   RunComponent,
				Owner:  it.node.ID,
				Width:  it.compW,
				Height: it.compH,
				X:      x + it.style.Margin.Left,
				Y:      ys[k] + it.style.Margin.Top,
				Src:    it.src,
				Region: NoRegion,
			})
			ext.cover(it.node, x, x+it.width, false)
			x += it.width

		case itemPositioned:
			box, err := p.detached(it.node, it.style, avail)
			if err != nil {
				return NoLine, err
			}
			var rid RegionID
			if it.style.Position == style.PositionAbsolute {
				rid = p.addAbsolute(it.node, it.style, box, Anchor{Line: NoLine, Block: NoBlock})
			} else {
				fx := unit.Unit(0)
				if it.style.Float == style.FloatRight {
					fx = avail - box.width
				}
				rid = p.out.addRegion(PositionedRegion{
					Kind:        RegionFloat,
					Owner:       it.node.ID,
					Anchor:      Anchor{Line: id, Block: NoBlock},
					TotalBounds: Rect{X: fx, Width: box.width, Height: box.height},
					Contents:    []BlockID{box.block},
				})
				b.regions = append(b.regions, rid)
				p.adopt(box.absolutes)
			}
			runs = append(runs, Run{Kind: RunPositionedRegion, Owner: it.node.ID, Region: rid})
		}
	}

	l := p.out.Line(id)
	l.Runs = runs
	l.Bounds = Rect{Y: y, Width: avail, Height: h}
	l.Height = h
	l.BaseLineOffset = base
	l.BaseLineToBottom = h - base
	l.AvailableWidth = avail
	l.FullWidth = lb.natural
	l.Spacing = spacing
	l.Extents = ext.list
	if tf.open {
		tf.line, tf.below = id, h-base
	}
	return id, nil
}

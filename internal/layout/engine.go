// Package layout turns a styled content tree into pages of positioned
// blocks, lines and runs.
package layout

import (
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/gompdf/pageflow/internal/content"
	"github.com/gompdf/pageflow/internal/numbering"
	"github.com/gompdf/pageflow/internal/pagination"
	"github.com/gompdf/pageflow/internal/style"
	"github.com/gompdf/pageflow/internal/text"
	"github.com/gompdf/pageflow/internal/unit"
)

// ErrNoContent is returned when there is no document to lay out.
var ErrNoContent = errors.New("layout: no content")

// DefaultComponentSize is the edge of images and components that have
// neither an explicit nor an intrinsic size.
const DefaultComponentSize = unit.Unit(40)

// unbounded is the height available to boxes that never fragment.
const unbounded = unit.Unit(1e9)

// maxPages stops a section that makes no progress.
const maxPages = 100000

// ResourceSizer reports the intrinsic size of images and graphics.
type ResourceSizer interface {
	IntrinsicSize(src string) (width, height unit.Unit, err error)
}

// Options represents options for the layout engine
type Options struct {
	Measurer text.Measurer
	Resolver style.Resolver
	Sizer    ResourceSizer
	// Page is the setup of pages not otherwise configured.
	Page   pagination.Setup
	Logger *slog.Logger
}

// Engine lays out documents. It holds no per-document state; Layout may be
// called repeatedly.
type Engine struct {
	options Options
}

// NewEngine creates a layout engine, filling unset options with defaults.
func NewEngine(options Options) *Engine {
	if options.Logger == nil {
		options.Logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	if options.Measurer == nil {
		options.Measurer = text.NewCoreMeasurer(options.Logger)
	}
	if options.Resolver == nil {
		options.Resolver = style.NewEngine()
	}
	if options.Page.Width <= 0 || options.Page.Height <= 0 {
		options.Page = pagination.DefaultSetup()
	}
	return &Engine{options: options}
}

// Options returns the effective options.
func (e *Engine) Options() Options {
	return e.options
}

// Layout performs one layout pass over doc.
func (e *Engine) Layout(doc *content.Document) (*Document, error) {
	if doc == nil || doc.Root == nil {
		return nil, ErrNoContent
	}
	p := &pass{
		Options:      e.options,
		doc:          doc,
		out:          newDocument(),
		styles:       make(map[content.NodeID]*style.Style),
		numbers:      numbering.NewContext(),
		detachedMemo: make(map[detachedKey]detachedBox),
		itemsMemo:    make(map[itemsKey][]item),
		optsMemo:     make(map[content.NodeID]*TextRenderOptions),
		spaceMemo:    make(map[text.Font]text.Measurement),
	}
	for _, sec := range p.sections() {
		if err := p.layoutSection(sec); err != nil {
			return nil, err
		}
	}
	if len(p.out.Pages) == 0 {
		p.newPage(e.options.Page)
	}
	return p.out, nil
}

// pass is the state of one layout run. It is owned by a single goroutine.
type pass struct {
	Options

	doc     *content.Document
	out     *Document
	styles  map[content.NodeID]*style.Style
	numbers *numbering.Context

	// pageName is the @page name of the page being filled.
	pageName string
	// section is the node whose fragment fills the current page.
	section content.NodeID
	// contexts collects absolutely positioned regions for the enclosing
	// positioned blocks, innermost last.
	contexts []*[]RegionID

	detachedMemo map[detachedKey]detachedBox
	itemsMemo    map[itemsKey][]item
	optsMemo     map[content.NodeID]*TextRenderOptions
	spaceMemo    map[text.Font]text.Measurement
}

// style returns the computed style of n, resolving ancestors first. A
// resolver error is logged and the style it returned (or the inherited
// style) is used instead.
func (p *pass) style(n *content.Node) *style.Style {
	if s, ok := p.styles[n.ID]; ok {
		return s
	}
	var parent *style.Style
	if par := p.doc.Parent(n.ID); par != nil {
		parent = p.style(par)
	}
	s, err := p.Resolver.Resolve(p.doc, n, parent)
	if err != nil {
		p.Logger.Warn("style fallback", "node", n.ID, "kind", n.Kind.String(), "err", err)
		if s == nil {
			s = style.Inherit(parent)
		}
	}
	p.styles[n.ID] = s
	return s
}

func fontOf(st *style.Style) text.Font {
	return text.Font{Family: st.Font.Family, Size: st.Font.Size, Bold: st.Font.Bold, Italic: st.Font.Italic}
}

func (p *pass) measure(s string, st *style.Style, owner content.NodeID) (text.Measurement, error) {
	m, err := p.Measurer.Measure(s, fontOf(st))
	if err != nil {
		return text.Measurement{}, fmt.Errorf("layout: measure text in node %d: %w", owner, err)
	}
	return m, nil
}

// sections splits the document into page sequences: every Section or Page
// child of the root starts its own, and runs of other children share one.
func (p *pass) sections() []*content.Node {
	root := p.doc.Root
	var out []*content.Node
	var loose []*content.Node
	flush := func() {
		if len(loose) == 0 {
			return
		}
		if len(loose) == len(root.Children) {
			out = append(out, root)
		} else {
			out = append(out, &content.Node{ID: root.ID, Kind: root.Kind, Tag: root.Tag, Children: loose})
		}
		loose = nil
	}
	for _, c := range root.Children {
		if c.Kind.IsSection() {
			flush()
			out = append(out, c)
			continue
		}
		loose = append(loose, c)
	}
	flush()
	return out
}

func (p *pass) newPage(setup pagination.Setup) *Page {
	page := &Page{
		Index:        len(p.out.Pages),
		Width:        setup.Width,
		Height:       setup.Height,
		Setup:        setup,
		ContentBlock: NoBlock,
	}
	p.out.Pages = append(p.out.Pages, page)
	p.Logger.Debug("new page", "index", page.Index, "name", setup.Name, "paper", setup.Paper,
		"width", page.Width.Round(2), "height", page.Height.Round(2))
	return page
}

// baseSetup is the setup of a section before named pages apply.
func (p *pass) baseSetup(sec *content.Node) pagination.Setup {
	var rule *style.PageRule
	if r, ok := p.Resolver.PageSetup(p.doc, ""); ok {
		rule = &r
	}
	var st *style.Style
	if sec.Kind.IsSection() {
		st = p.style(sec)
	}
	setup, err := pagination.Resolve(p.Page, rule, st)
	if err != nil {
		p.Logger.Warn("page setup fallback", "node", sec.ID, "err", err)
		return p.Page
	}
	return setup
}

func (p *pass) namedSetup(base pagination.Setup, name string) pagination.Setup {
	if name == "" {
		return base
	}
	rule, ok := p.Resolver.PageSetup(p.doc, name)
	if !ok {
		p.Logger.Debug("no @page rule for page name", "name", name)
		base.Name = name
		return base
	}
	setup, err := pagination.Resolve(base, &rule, nil)
	if err != nil {
		p.Logger.Warn("page setup fallback", "name", name, "err", err)
		base.Name = name
		return base
	}
	return setup
}

// layoutSection fills pages with fragments of sec until it is exhausted.
func (p *pass) layoutSection(sec *content.Node) error {
	base := p.baseSetup(sec)
	p.section = sec.ID

	var rp *resumePoint
	for n := 0; n < maxPages; n++ {
		name := p.peekPageName(sec, rp)
		if name != p.pageName && n > 0 {
			p.Logger.Debug("named page switch", "from", p.pageName, "to", name)
		}
		p.pageName = name
		setup := p.namedSetup(base, name)
		page := p.newPage(setup)

		p.contexts = p.contexts[:0]
		id, out, err := p.layoutBlock(sec, frame{
			width:  setup.ContentWidth(),
			height: setup.ContentHeight(),
			fresh:  true,
		}, rp)
		if err != nil {
			return err
		}
		page.ContentBlock = id
		p.finalizePage(page)

		if out.status == statusDone {
			return nil
		}
		if id == NoBlock && out.resume.same(rp) {
			return fmt.Errorf("layout: node %d makes no progress on an empty page", sec.ID)
		}
		p.Logger.Debug("continuing on next page", "page", page.Index, "status", out.status.String())
		rp = out.resume
	}
	return fmt.Errorf("layout: section %d exceeds %d pages", sec.ID, maxPages)
}

// peekPageName returns the page name of the first box that will be laid
// out when n resumes at rp.
func (p *pass) peekPageName(n *content.Node, rp *resumePoint) string {
	name := p.style(n).PageName
	for depth := 0; depth < 256; depth++ {
		i := 0
		var nested *resumePoint
		if rp != nil {
			i, nested = rp.child, rp.nested
		}
		var next *content.Node
		for ; i < len(n.Children); i++ {
			c := n.Children[i]
			cst := p.style(c)
			if cst.Display == style.DisplayNone || c.Kind.IsBreak() || cst.IsOutOfFlow() {
				nested = nil
				continue
			}
			if p.isInline(c, cst) {
				return name
			}
			next = c
			break
		}
		if next == nil {
			return name
		}
		n, rp = next, nested
		name = p.style(next).PageName
	}
	return name
}

// Package pdf draws a layout tree with fpdf. It is a debugging aid: every
// page, box, line and marker of the layout ends up where the layout put it.
package pdf

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"codeberg.org/go-pdf/fpdf"
	"github.com/gompdf/pageflow/internal/layout"
	"github.com/gompdf/pageflow/internal/res"
	"github.com/gompdf/pageflow/internal/text"
	"github.com/gompdf/pageflow/internal/unit"
)

// Renderer handles rendering to PDF
type Renderer struct {
	// Loader resolves image sources of Component runs. A nil Loader draws
	// placeholders.
	Loader *res.Loader
	// Fonts are embedded as UTF-8 TrueType fonts.
	Fonts  []text.FontFile
	Logger *slog.Logger
	// RenderBackgrounds controls whether box backgrounds are painted
	RenderBackgrounds bool
	// RenderBorders controls whether box borders are painted
	RenderBorders bool
	// DebugDrawBoxes outlines blocks, lines and regions.
	DebugDrawBoxes bool
	// Compress deflates page content streams.
	Compress bool
}

// RenderOptions contains options for rendering
type RenderOptions struct {
	Title    string
	Author   string
	Subject  string
	Keywords string
	Creator  string
	Producer string
}

// NewRenderer creates a new PDF renderer
func NewRenderer() *Renderer {
	return &Renderer{
		Logger:            slog.New(slog.NewTextHandler(io.Discard, nil)),
		RenderBackgrounds: true,
		RenderBorders:     true,
		Compress:          true,
	}
}

// job is the state of one Render call.
type job struct {
	*Renderer
	doc       *layout.Document
	pdf       *fpdf.Fpdf
	core      *text.CoreMeasurer
	translate func(string) string
	utf8      map[string]bool
	images    map[string]registered
}

// Render writes one PDF page per layout page to w.
func (r *Renderer) Render(doc *layout.Document, w io.Writer, options RenderOptions) error {
	if doc == nil || len(doc.Pages) == 0 {
		return layout.ErrNoContent
	}
	first := doc.Pages[0]
	pdf := fpdf.NewCustom(&fpdf.InitType{
		OrientationStr: "P",
		UnitStr:        "pt",
		Size:           fpdf.SizeType{Wd: first.Width.Points(), Ht: first.Height.Points()},
	})
	pdf.SetAutoPageBreak(false, 0)
	pdf.SetMargins(0, 0, 0)
	pdf.SetCompression(r.Compress)
	pdf.SetTitle(options.Title, true)
	pdf.SetAuthor(options.Author, true)
	pdf.SetSubject(options.Subject, true)
	pdf.SetKeywords(options.Keywords, true)
	pdf.SetCreator(options.Creator, true)
	pdf.SetProducer(options.Producer, true)

	j := &job{
		Renderer:  r,
		doc:       doc,
		pdf:       pdf,
		core:      text.NewCoreMeasurer(r.Logger),
		translate: pdf.UnicodeTranslatorFromDescriptor(""),
		utf8:      make(map[string]bool),
		images:    make(map[string]registered),
	}
	j.registerFonts()

	for _, page := range doc.Pages {
		j.renderPage(page)
		if err := pdf.Error(); err != nil {
			return fmt.Errorf("pdf: page %d: %w", page.Index, err)
		}
	}
	if err := pdf.Output(w); err != nil {
		return fmt.Errorf("pdf: write: %w", err)
	}
	return nil
}

// RenderFile renders doc to outputPath, creating its directory if needed.
func (r *Renderer) RenderFile(doc *layout.Document, outputPath string, options RenderOptions) error {
	outputDir := filepath.Dir(outputPath)
	if _, err := os.Stat(outputDir); os.IsNotExist(err) {
		if err := os.MkdirAll(outputDir, 0755); err != nil {
			return fmt.Errorf("failed to create output directory: %w", err)
		}
	}
	f, err := os.Create(outputPath)
	if err != nil {
		return err
	}
	if err := r.Render(doc, f, options); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

// registerFonts registers the TrueType files with the PDF document
func (j *job) registerFonts() {
	for _, ff := range j.Fonts {
		family := strings.ToLower(ff.Family)
		style := text.Font{Bold: ff.Bold, Italic: ff.Italic}.StyleString()
		j.pdf.AddUTF8Font(family, style, ff.Path)
		j.utf8[family+"/"+style] = true
		j.Logger.Debug("font registered", "family", family, "style", style, "path", ff.Path)
	}
}

func (j *job) renderPage(page *layout.Page) {
	j.pdf.AddPageFormat("P", fpdf.SizeType{Wd: page.Width.Points(), Ht: page.Height.Points()})
	j.Logger.Debug("rendering page", "index", page.Index, "name", page.Setup.Name,
		"width", page.Width.Points(), "height", page.Height.Points())

	if page.ContentBlock != layout.NoBlock {
		j.renderBlock(page.ContentBlock)
	}
	if g := page.Setup.OverlayGrid; g.Show && g.Spacing > 0 {
		j.renderGrid(page, g.Spacing, parseColor(g.Color))
	}
}

// renderGrid draws the diagnostic overlay grid over the whole page.
func (j *job) renderGrid(page *layout.Page, spacing unit.Unit, c [3]int) {
	j.pdf.SetDrawColor(c[0], c[1], c[2])
	j.pdf.SetLineWidth(0.25)
	w, h := page.Width.Points(), page.Height.Points()
	step := spacing.Points()
	for x := step; x < w; x += step {
		j.pdf.Line(x, 0, x, h)
	}
	for y := step; y < h; y += step {
		j.pdf.Line(0, y, w, y)
	}
}

// renderBlock renders a block fragment, its columns and its regions.
func (j *job) renderBlock(id layout.BlockID) {
	b := j.doc.Block(id)
	if b == nil {
		return
	}
	j.renderBackground(b)
	j.renderBorders(b)

	for _, col := range b.Columns {
		var ts textState
		for _, c := range col.Contents {
			switch c.Kind {
			case layout.ContentLine:
				j.renderLine(j.doc.Line(c.Line), &ts)
			case layout.ContentBlock:
				ts = textState{}
				j.renderBlock(c.Block)
			}
		}
	}

	for _, rid := range b.Positioned {
		j.renderRegion(rid)
	}

	if j.DebugDrawBoxes {
		j.pdf.SetDrawColor(200, 0, 0)
		j.pdf.SetLineWidth(0.5)
		rect(j.pdf, b.Abs, "D")
	}
}

func (j *job) renderRegion(id layout.RegionID) {
	r := j.doc.Region(id)
	for _, bid := range r.Contents {
		j.renderBlock(bid)
	}
	if j.DebugDrawBoxes {
		j.pdf.SetDrawColor(0, 160, 0)
		j.pdf.SetLineWidth(0.3)
		rect(j.pdf, r.Abs, "D")
	}
}

// renderBackground renders the background of a box
func (j *job) renderBackground(b *layout.Block) {
	if !j.RenderBackgrounds || b.Style == nil || !hasColor(b.Style.Background) {
		return
	}
	c := parseColor(b.Style.Background)
	j.pdf.SetFillColor(c[0], c[1], c[2])
	rect(j.pdf, b.Abs, "F")
}

// renderBorders paints each border edge as a filled strip.
func (j *job) renderBorders(b *layout.Block) {
	if !j.RenderBorders || b.Style == nil {
		return
	}
	e := b.Border
	if e.Top <= 0 && e.Right <= 0 && e.Bottom <= 0 && e.Left <= 0 {
		return
	}
	c := [3]int{0, 0, 0}
	if hasColor(b.Style.BorderColor) {
		c = parseColor(b.Style.BorderColor)
	}
	j.pdf.SetFillColor(c[0], c[1], c[2])
	a := b.Abs
	strips := []layout.Rect{
		{X: a.X, Y: a.Y, Width: a.Width, Height: e.Top},
		{X: a.X, Y: a.Bottom() - e.Bottom, Width: a.Width, Height: e.Bottom},
		{X: a.X, Y: a.Y, Width: e.Left, Height: a.Height},
		{X: a.Right() - e.Right, Y: a.Y, Width: e.Right, Height: a.Height},
	}
	for _, s := range strips {
		if s.Width > 0 && s.Height > 0 {
			rect(j.pdf, s, "F")
		}
	}
}

// textState follows an open text object across the lines of a column.
type textState struct {
	open     bool
	startX   unit.Unit
	baseline unit.Unit
	x        unit.Unit
}

// renderLine renders the runs of one line box
func (j *job) renderLine(l *layout.Line, ts *textState) {
	var wordSpace unit.Unit
	if l.Spacing != nil {
		wordSpace = l.Spacing.WordSpace
	}
	for _, r := range l.Runs {
		switch r.Kind {
		case layout.RunTextBegin:
			ts.open = true
			ts.startX = l.Abs.X + r.Cursor.Width
			ts.baseline = l.Abs.Y + r.Cursor.Height
			ts.x = ts.startX
		case layout.RunNewLine:
			ts.startX += r.Cursor.Width
			ts.baseline += r.Cursor.Height
			ts.x = ts.startX
		case layout.RunCharacters:
			if !ts.open {
				continue
			}
			j.renderText(r, ts, wordSpace)
		case layout.RunTextEnd:
			ts.open = false
		case layout.RunComponent:
			j.renderComponent(r, l.Abs.X+r.X, l.Abs.Y+r.Y)
		}
	}

	if j.DebugDrawBoxes {
		j.pdf.SetDrawColor(0, 0, 200)
		j.pdf.SetLineWidth(0.1)
		rect(j.pdf, l.Abs, "D")
		j.pdf.SetDrawColor(0, 180, 0)
		y := (l.Abs.Y + l.BaseLineOffset).Points()
		j.pdf.Line(l.Abs.X.Points(), y, l.Abs.Right().Points(), y)
	}
}

// renderText draws one Characters run at the current text position. Runs
// with character spacing or extra word spacing are placed rune by rune.
func (j *job) renderText(r layout.Run, ts *textState, lineWordSpace unit.Unit) {
	o := r.Options
	if o == nil {
		o = &layout.TextRenderOptions{Font: text.Font{Family: "Helvetica", Size: 12}}
	}
	utf8Font := j.setFont(o.Font)
	c := [3]int{0, 0, 0}
	if hasColor(o.Color) {
		c = parseColor(o.Color)
	}
	j.pdf.SetTextColor(c[0], c[1], c[2])

	encode := j.translate
	if utf8Font {
		encode = func(s string) string { return s }
	}

	wordSpace := o.WordSpace + lineWordSpace
	if o.CharSpace == 0 && wordSpace == 0 {
		j.pdf.Text(ts.x.Points(), ts.baseline.Points(), encode(r.Chars))
		ts.x += r.Width
		return
	}
	x := ts.x
	for _, ch := range r.Chars {
		s := string(ch)
		j.pdf.Text(x.Points(), ts.baseline.Points(), encode(s))
		x += unit.Unit(j.pdf.GetStringWidth(encode(s))) + o.CharSpace
		if ch == ' ' {
			x += wordSpace
		}
	}
	// The layout width is authoritative; justification adds to it.
	ts.x += r.Width + lineWordSpace*unit.Unit(strings.Count(r.Chars, " "))
}

// setFont selects f and reports whether it is an embedded UTF-8 font.
func (j *job) setFont(f text.Font) bool {
	family := strings.ToLower(f.Family)
	style := f.StyleString()
	switch {
	case j.utf8[family+"/"+style]:
		j.pdf.SetFont(family, style, f.Size.Points())
		return true
	case j.utf8[family+"/"]:
		j.pdf.SetFont(family, "", f.Size.Points())
		return true
	}
	j.pdf.SetFont(j.core.Resolve(f), style, f.Size.Points())
	return false
}

func rect(pdf *fpdf.Fpdf, r layout.Rect, style string) {
	pdf.Rect(r.X.Points(), r.Y.Points(), r.Width.Points(), r.Height.Points(), style)
}

func hasColor(v string) bool {
	v = strings.TrimSpace(strings.ToLower(v))
	return v != "" && v != "transparent" && v != "none"
}

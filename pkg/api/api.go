package api

import (
	"bytes"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/gompdf/pageflow/internal/content"
	"github.com/gompdf/pageflow/internal/layout"
	"github.com/gompdf/pageflow/internal/pagination"
	"github.com/gompdf/pageflow/internal/parser/css"
	"github.com/gompdf/pageflow/internal/parser/html"
	"github.com/gompdf/pageflow/internal/render/pdf"
	"github.com/gompdf/pageflow/internal/res"
	"github.com/gompdf/pageflow/internal/style"
	"github.com/gompdf/pageflow/internal/text"
	"github.com/gompdf/pageflow/internal/unit"
)

// Producer is written to the metadata of every rendered PDF.
const Producer = "pageflow"

// Converter lays out documents and renders them to PDF. A Converter is
// immutable; the With and Set methods return modified copies.
type Converter struct {
	options Options
	loader  *res.Loader
	logger  *slog.Logger
}

// New creates a new converter with default options
func New() *Converter {
	return NewWithOptions(DefaultOptions())
}

// NewWithOptions creates a new converter with the specified options
func NewWithOptions(options Options) *Converter {
	return newConverter(options, "")
}

func newConverter(options Options, baseDir string) *Converter {
	logger := options.Logger
	if logger == nil {
		if options.Debug {
			logger = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelDebug}))
		} else {
			logger = slog.New(slog.NewTextHandler(io.Discard, nil))
		}
	}
	loader := res.NewLoader(baseDir)
	loader.Logger = logger
	for _, path := range options.ResourcePaths {
		loader.AddSearchPath(path)
	}
	return &Converter{options: options, loader: loader, logger: logger}
}

// Options returns the converter's options.
func (c *Converter) Options() Options {
	return c.options.Apply()
}

// ParseHTML parses an HTML document. Linked stylesheets are loaded through
// the converter's resource loader.
func (c *Converter) ParseHTML(r io.Reader) (*content.Document, error) {
	p := html.NewParser()
	p.LoadCSS = func(href string) (string, error) {
		rs, err := c.loader.LoadCSS(href)
		if err != nil {
			return "", err
		}
		return rs.GetString(), nil
	}
	doc, err := p.Parse(r)
	if err != nil {
		return nil, fmt.Errorf("failed to parse HTML: %w", err)
	}
	return doc, nil
}

// Layout lays out a content document into pages.
func (c *Converter) Layout(doc *content.Document) (*layout.Document, error) {
	engine, err := c.layoutEngine()
	if err != nil {
		return nil, err
	}
	return engine.Layout(doc)
}

// LayoutHTML parses and lays out an HTML document.
func (c *Converter) LayoutHTML(r io.Reader) (*layout.Document, error) {
	doc, err := c.ParseHTML(r)
	if err != nil {
		return nil, err
	}
	return c.Layout(doc)
}

// LayoutFile parses and lays out an HTML file. Relative resources resolve
// against the directory of the input.
func (c *Converter) LayoutFile(inputPath string) (*layout.Document, error) {
	f, err := os.Open(inputPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read HTML file: %w", err)
	}
	defer f.Close()
	return c.forFile(inputPath).LayoutHTML(f)
}

// forFile returns a copy of c loading resources relative to path.
func (c *Converter) forFile(path string) *Converter {
	fc := newConverter(c.options, filepath.Dir(path))
	fc.logger = c.logger
	fc.loader.Logger = c.logger
	return fc
}

// Render writes a laid out document as PDF.
func (c *Converter) Render(doc *layout.Document, w io.Writer) error {
	renderer := pdf.NewRenderer()
	renderer.Loader = c.loader
	renderer.Logger = c.logger
	renderer.RenderBackgrounds = c.options.RenderBackgrounds
	renderer.RenderBorders = c.options.RenderBorders
	renderer.DebugDrawBoxes = c.options.DebugDrawBoxes
	fonts, err := c.fontFiles()
	if err != nil {
		return err
	}
	renderer.Fonts = fonts

	err = renderer.Render(doc, w, pdf.RenderOptions{
		Title:    c.options.Title,
		Author:   c.options.Author,
		Subject:  c.options.Subject,
		Keywords: c.options.Keywords,
		Creator:  Producer,
		Producer: Producer,
	})
	if err != nil {
		return fmt.Errorf("failed to render PDF: %w", err)
	}
	return nil
}

// ConvertHTML converts HTML to PDF and writes the result to output
func (c *Converter) ConvertHTML(htmlContent string, output io.Writer) error {
	doc, err := c.LayoutHTML(strings.NewReader(htmlContent))
	if err != nil {
		return err
	}
	c.logger.Debug("layout done", "pages", len(doc.Pages))
	return c.Render(doc, output)
}

// ConvertToFile converts HTML to PDF and writes the result to the specified file
func (c *Converter) ConvertToFile(htmlContent, outputPath string) error {
	var buf bytes.Buffer
	if err := c.ConvertHTML(htmlContent, &buf); err != nil {
		return err
	}
	return writeFile(outputPath, buf.Bytes())
}

// ConvertFile converts an HTML file to PDF. Relative resources resolve
// against the directory of the input.
func (c *Converter) ConvertFile(inputPath, outputPath string) error {
	htmlContent, err := os.ReadFile(inputPath)
	if err != nil {
		return fmt.Errorf("failed to read HTML file: %w", err)
	}
	return c.forFile(inputPath).ConvertToFile(string(htmlContent), outputPath)
}

// ConvertBytes converts HTML bytes to PDF bytes
func (c *Converter) ConvertBytes(htmlContent []byte) ([]byte, error) {
	var buf bytes.Buffer
	if err := c.ConvertHTML(string(htmlContent), &buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func writeFile(path string, data []byte) error {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create output directory: %w", err)
		}
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write PDF: %w", err)
	}
	return nil
}

// layoutEngine assembles the style and layout engines for the options.
func (c *Converter) layoutEngine() (*layout.Engine, error) {
	setup, err := c.options.pageSetup()
	if err != nil {
		return nil, err
	}

	cssParser := css.NewParser()
	var sheets []*css.Stylesheet
	if c.options.FontFamily != "" || c.options.FontSize > 0 {
		sheet, err := cssParser.ParseString(defaultFontCSS(c.options.FontFamily, c.options.FontSize))
		if err != nil {
			return nil, fmt.Errorf("failed to parse CSS: %w", err)
		}
		sheets = append(sheets, sheet)
	}
	if strings.TrimSpace(c.options.UserStylesheet) != "" {
		sheet, err := cssParser.ParseString(c.options.UserStylesheet)
		if err != nil {
			return nil, fmt.Errorf("failed to parse CSS: %w", err)
		}
		sheets = append(sheets, sheet)
	}

	measurer, err := c.measurer()
	if err != nil {
		return nil, err
	}
	c.logger.Debug("page setup", "paper", setup.Paper,
		"width", setup.Width.Points(), "height", setup.Height.Points())

	return layout.NewEngine(layout.Options{
		Measurer: measurer,
		Resolver: style.NewEngine(sheets...),
		Sizer:    c.loader,
		Page:     setup,
		Logger:   c.logger,
	}), nil
}

func defaultFontCSS(family string, size float64) string {
	var b strings.Builder
	b.WriteString("body {")
	if family != "" {
		fmt.Fprintf(&b, " font-family: %s;", family)
	}
	if size > 0 {
		fmt.Fprintf(&b, " font-size: %gpt;", size)
	}
	b.WriteString(" }")
	return b.String()
}

// measurer measures registered TrueType fonts and falls back to the PDF
// core fonts.
func (c *Converter) measurer() (text.Measurer, error) {
	core := text.NewCoreMeasurer(c.logger)
	files, err := c.fontFiles()
	if err != nil {
		return nil, err
	}
	if len(files) == 0 {
		return core, nil
	}
	tt := text.NewTrueTypeMeasurer(core)
	for _, ff := range files {
		if err := tt.Register(ff); err != nil {
			return nil, err
		}
	}
	return tt, nil
}

// fontFiles lists the explicit font files followed by those found in the
// font directories.
func (c *Converter) fontFiles() ([]text.FontFile, error) {
	var files []text.FontFile
	for _, f := range c.options.FontFiles {
		files = append(files, text.FontFile{Family: f.Family, Path: f.Path, Bold: f.Bold, Italic: f.Italic})
	}
	for _, dir := range c.options.FontDirectories {
		found, err := scanFontDirectory(dir)
		if err != nil {
			return nil, err
		}
		files = append(files, found...)
	}
	return files, nil
}

// scanFontDirectory registers every .ttf file of dir. The family is the
// file name without its face suffix: "Inter-BoldItalic.ttf" is the bold
// italic face of "Inter".
func scanFontDirectory(dir string) ([]text.FontFile, error) {
	matches, err := filepath.Glob(filepath.Join(dir, "*.ttf"))
	if err != nil {
		return nil, err
	}
	files := make([]text.FontFile, 0, len(matches))
	for _, path := range matches {
		files = append(files, fontFileOf(path))
	}
	return files, nil
}

func fontFileOf(path string) text.FontFile {
	name := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	ff := text.FontFile{Family: name, Path: path}
	family, face, ok := strings.Cut(name, "-")
	if !ok {
		return ff
	}
	switch strings.ToLower(face) {
	case "regular":
	case "bold":
		ff.Bold = true
	case "italic", "oblique":
		ff.Italic = true
	case "bolditalic", "boldoblique":
		ff.Bold, ff.Italic = true, true
	default:
		return ff
	}
	ff.Family = family
	return ff
}

// pageSetup returns the default page geometry. A named paper wins over the
// explicit dimensions.
func (o Options) pageSetup() (pagination.Setup, error) {
	s := pagination.Setup{
		Width:  unit.Unit(o.PageWidth),
		Height: unit.Unit(o.PageHeight),
		Margins: pagination.Margins{
			Top:    unit.Unit(o.MarginTop),
			Right:  unit.Unit(o.MarginRight),
			Bottom: unit.Unit(o.MarginBottom),
			Left:   unit.Unit(o.MarginLeft),
		},
	}
	orientation := style.Portrait
	if o.PageOrientation == PageOrientationLandscape {
		orientation = style.Landscape
	}
	if o.Paper != "" {
		return s.WithPaper(o.Paper, orientation)
	}
	if s.Width <= 0 || s.Height <= 0 {
		return s, fmt.Errorf("invalid page size %gx%g", o.PageWidth, o.PageHeight)
	}

	s.Orientation = orientation
	switch orientation {
	case style.Landscape:
		// Always swap dimensions for landscape to ensure width > height
		if s.Width < s.Height {
			s.Width, s.Height = s.Height, s.Width
		}
	default:
		if s.Width > s.Height {
			s.Width, s.Height = s.Height, s.Width
		}
	}
	return s, nil
}

// WithOptions returns a new converter with the specified options
func (c *Converter) WithOptions(options Options) *Converter {
	return NewWithOptions(options)
}

// WithOption returns a new converter with the specified options applied
func (c *Converter) WithOption(opts ...Option) *Converter {
	return NewWithOptions(c.options.Apply(opts...))
}

// AddResourcePath adds a path to search for resources
func (c *Converter) AddResourcePath(path string) *Converter {
	return c.WithOption(WithResourcePath(path))
}

// AddFontDirectory adds a directory to search for fonts
func (c *Converter) AddFontDirectory(dir string) *Converter {
	return c.WithOption(WithFontDirectory(dir))
}

// SetPageSize sets the page size
func (c *Converter) SetPageSize(width, height float64) *Converter {
	return c.WithOption(WithPageSize(width, height))
}

// SetMargins sets the page margins
func (c *Converter) SetMargins(top, right, bottom, left float64) *Converter {
	return c.WithOption(WithMargins(top, right, bottom, left))
}

// SetDebug sets the debug mode
func (c *Converter) SetDebug(debug bool) *Converter {
	return c.WithOption(WithDebug(debug))
}

// SetTitle sets the document title
func (c *Converter) SetTitle(title string) *Converter {
	return c.WithOption(WithTitle(title))
}

// SetAuthor sets the document author
func (c *Converter) SetAuthor(author string) *Converter {
	return c.WithOption(WithAuthor(author))
}

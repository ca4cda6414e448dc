package api

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/gompdf/pageflow/internal/layout"
	"github.com/gompdf/pageflow/internal/pagination"
	"github.com/gompdf/pageflow/internal/style"
	"github.com/gompdf/pageflow/internal/text"
	"github.com/gompdf/pageflow/internal/unit"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConvertBytes(t *testing.T) {
	c := New().SetTitle("Report").SetAuthor("Ops")
	out, err := c.ConvertBytes([]byte(`<html><body><h1>Title</h1><p>Hello world</p></body></html>`))
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(out, []byte("%PDF-")))
}

func TestLayoutHTMLUsesPageOptions(t *testing.T) {
	c := NewWithOptions(DefaultOptions().Apply(
		WithPageSize(300, 200),
		WithMargins(10, 10, 10, 10),
		WithPageOrientation(PageOrientationLandscape),
	))
	doc, err := c.LayoutHTML(strings.NewReader(`<p>one</p><div class="page-break"></div><p>two</p>`))
	require.NoError(t, err)
	require.Len(t, doc.Pages, 2)
	assert.Equal(t, unit.Unit(300), doc.Pages[0].Width)
	assert.Equal(t, unit.Unit(200), doc.Pages[0].Height)
}

func TestPageSetup(t *testing.T) {
	a4, err := pagination.SizeOf("A4")
	require.NoError(t, err)

	tests := []struct {
		name   string
		opts   Options
		width  unit.Unit
		height unit.Unit
	}{
		{"explicit", DefaultOptions().Apply(WithPageSize(200, 400)), 200, 400},
		{"portrait swaps", DefaultOptions().Apply(WithPageSize(400, 200)), 200, 400},
		{"landscape swaps", DefaultOptions().Apply(WithPageSize(200, 400), WithPageOrientation(PageOrientationLandscape)), 400, 200},
		{"paper", DefaultOptions().Apply(WithPageSizeA4()), a4.Width, a4.Height},
		{"paper landscape", DefaultOptions().Apply(WithPaper("a4"), WithPageOrientation(PageOrientationLandscape)), a4.Height, a4.Width},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, err := tt.opts.pageSetup()
			require.NoError(t, err)
			assert.InDelta(t, tt.width.Points(), s.Width.Points(), 0.01)
			assert.InDelta(t, tt.height.Points(), s.Height.Points(), 0.01)
		})
	}

	s, err := DefaultOptions().Apply(WithPageOrientation(PageOrientationLandscape)).pageSetup()
	require.NoError(t, err)
	assert.Equal(t, style.Landscape, s.Orientation)
	assert.Equal(t, unit.Unit(72), s.Margins.Left)
}

func TestPageSetupErrors(t *testing.T) {
	_, err := DefaultOptions().Apply(WithPaper("Napkin")).pageSetup()
	assert.ErrorIs(t, err, pagination.ErrUnknownPaperSize)

	_, err = DefaultOptions().Apply(WithPageSize(0, 100)).pageSetup()
	assert.Error(t, err)

	_, err = NewWithOptions(DefaultOptions().Apply(WithPaper("Napkin"))).ConvertBytes([]byte("<p>x</p>"))
	assert.ErrorIs(t, err, pagination.ErrUnknownPaperSize)
}

func firstLine(t *testing.T, c *Converter, src string) *layout.Line {
	t.Helper()
	doc, err := c.LayoutHTML(strings.NewReader(src))
	require.NoError(t, err)
	l := doc.Line(0)
	require.NotNil(t, l)
	return l
}

func TestDefaultFontIsApplied(t *testing.T) {
	normal := firstLine(t, New(), `<p>x</p>`)
	large := firstLine(t, New().WithOption(WithFont("Courier", 24)), `<p>x</p>`)
	assert.Greater(t, large.Abs.Height, normal.Abs.Height)
}

func TestUserStylesheet(t *testing.T) {
	l := firstLine(t, New().WithOption(WithUserStylesheet(`p { margin-left: 50pt; }`)), `<p>x</p>`)
	assert.InDelta(t, 72+50, l.Abs.X.Points(), 0.01)
}

func TestConvertFileResolvesRelativeStylesheets(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "site.css"), []byte(`p { margin-left: 40pt; }`), 0644))
	in := filepath.Join(dir, "in.html")
	require.NoError(t, os.WriteFile(in, []byte(`<link rel="stylesheet" href="site.css"><p>styled</p>`), 0644))

	out := filepath.Join(dir, "out", "in.pdf")
	require.NoError(t, New().ConvertFile(in, out))
	data, err := os.ReadFile(out)
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(data, []byte("%PDF-")))
}

func TestConvertFileMissingInput(t *testing.T) {
	err := New().ConvertFile(filepath.Join(t.TempDir(), "nope.html"), filepath.Join(t.TempDir(), "x.pdf"))
	assert.ErrorContains(t, err, "failed to read HTML file")
}

func TestConverterIsImmutable(t *testing.T) {
	base := New()
	derived := base.AddResourcePath("/tmp/assets").SetMargins(1, 2, 3, 4).SetDebug(true)
	assert.Empty(t, base.Options().ResourcePaths)
	assert.Equal(t, []string{"/tmp/assets"}, derived.Options().ResourcePaths)
	assert.Equal(t, 4.0, derived.Options().MarginLeft)
	assert.False(t, base.Options().Debug)
}

func TestFontFileOf(t *testing.T) {
	tests := []struct {
		path string
		want text.FontFile
	}{
		{"/f/Inter.ttf", text.FontFile{Family: "Inter", Path: "/f/Inter.ttf"}},
		{"/f/Inter-Regular.ttf", text.FontFile{Family: "Inter", Path: "/f/Inter-Regular.ttf"}},
		{"/f/Inter-Bold.ttf", text.FontFile{Family: "Inter", Path: "/f/Inter-Bold.ttf", Bold: true}},
		{"/f/Inter-Italic.ttf", text.FontFile{Family: "Inter", Path: "/f/Inter-Italic.ttf", Italic: true}},
		{"/f/Inter-BoldItalic.ttf", text.FontFile{Family: "Inter", Path: "/f/Inter-BoldItalic.ttf", Bold: true, Italic: true}},
		{"/f/Noto-Sans.ttf", text.FontFile{Family: "Noto-Sans", Path: "/f/Noto-Sans.ttf"}},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, fontFileOf(tt.path), tt.path)
	}
}

func TestScanFontDirectoryEmpty(t *testing.T) {
	files, err := scanFontDirectory(t.TempDir())
	require.NoError(t, err)
	assert.Empty(t, files)
}

func TestDefaultFontCSS(t *testing.T) {
	assert.Equal(t, "body { font-family: Courier; font-size: 10.5pt; }", defaultFontCSS("Courier", 10.5))
	assert.Equal(t, "body { font-size: 9pt; }", defaultFontCSS("", 9))
}

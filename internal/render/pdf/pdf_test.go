package pdf

import (
	"bytes"
	"encoding/base64"
	"image"
	"image/png"
	"path/filepath"
	"strings"
	"testing"

	"github.com/gompdf/pageflow/internal/content"
	"github.com/gompdf/pageflow/internal/layout"
	"github.com/gompdf/pageflow/internal/pagination"
	"github.com/gompdf/pageflow/internal/res"
	"github.com/gompdf/pageflow/internal/text/texttest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func layoutOf(t *testing.T, root *content.Node) *layout.Document {
	t.Helper()
	e := layout.NewEngine(layout.Options{
		Measurer: &texttest.Measurer{},
		Sizer:    res.NewLoader(""),
		Page:     pagination.Setup{Width: 300, Height: 200, Margins: pagination.Margins{Top: 10, Right: 10, Bottom: 10, Left: 10}},
	})
	d, err := e.Layout(content.MustDocument(root))
	require.NoError(t, err)
	return d
}

func render(t *testing.T, r *Renderer, d *layout.Document) string {
	t.Helper()
	r.Compress = false
	var buf bytes.Buffer
	require.NoError(t, r.Render(d, &buf, RenderOptions{Title: "test"}))
	out := buf.String()
	require.True(t, strings.HasPrefix(out, "%PDF-"))
	return out
}

func TestRenderNoContent(t *testing.T) {
	var buf bytes.Buffer
	assert.ErrorIs(t, NewRenderer().Render(nil, &buf, RenderOptions{}), layout.ErrNoContent)
}

func TestRenderPagesAndText(t *testing.T) {
	d := layoutOf(t, content.Doc(
		content.P(content.Text("Hello world")),
		content.Section(content.P(content.Text("second"))).Styled("size: 400pt 200pt"),
	))
	require.Len(t, d.Pages, 2)

	out := render(t, NewRenderer(), d)
	assert.Equal(t, 2, strings.Count(out, "<</Type /Page\n"))
	assert.Contains(t, out, "(Hello world) Tj")
	assert.Contains(t, out, "(second) Tj")
	assert.Contains(t, out, "/MediaBox [0 0 400.00 200.00]")
}

func TestRenderJustifiedTextRuneByRune(t *testing.T) {
	d := layoutOf(t, content.Doc(content.P(
		content.Text("aaaa bbbb cccc dddd eeee ffff gggg hhhh iiii jjjj kkkk llll"),
	).Styled("text-align: justify")))
	out := render(t, NewRenderer(), d)
	assert.Contains(t, out, "(a) Tj")
	assert.NotContains(t, out, "(aaaa bbbb")
}

func TestRenderListMarkers(t *testing.T) {
	d := layoutOf(t, content.Doc(content.OL(content.LI(content.Text("x")), content.LI(content.Text("y")))))
	out := render(t, NewRenderer(), d)
	assert.Contains(t, out, "(1) Tj")
	assert.Contains(t, out, "(2) Tj")
}

func TestRenderImages(t *testing.T) {
	img := image.NewGray(image.Rect(0, 0, 8, 4))
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	pngSrc := "data:image/png;base64," + base64.StdEncoding.EncodeToString(buf.Bytes())
	svg := `<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 10 10"><circle cx="5" cy="5" r="4" fill="red"/></svg>`
	svgSrc := "data:image/svg+xml;base64," + base64.StdEncoding.EncodeToString([]byte(svg))

	d := layoutOf(t, content.Doc(content.P(content.Image(pngSrc), content.Graphic(svgSrc), content.Image(pngSrc))))
	r := NewRenderer()
	r.Loader = res.NewLoader("")
	out := render(t, r, d)
	// The rasterised SVG carries an alpha mask of its own.
	assert.GreaterOrEqual(t, strings.Count(out, "/Subtype /Image"), 2)
}

func TestRenderMissingImageDrawsPlaceholder(t *testing.T) {
	d := layoutOf(t, content.Doc(content.P(content.Image("missing.png"))))
	r := NewRenderer()
	r.Loader = res.NewLoader(t.TempDir())
	out := render(t, r, d)
	assert.NotContains(t, out, "/Subtype /Image")
}

func TestRenderFileCreatesDirectory(t *testing.T) {
	d := layoutOf(t, content.Doc(content.P(
		content.Text("boxed"),
	).Styled("background-color: #eeeeee; border: 1pt solid red; -pf-overlay-grid: 20pt")))
	r := NewRenderer()
	r.DebugDrawBoxes = true
	path := filepath.Join(t.TempDir(), "out", "doc.pdf")
	require.NoError(t, r.RenderFile(d, path, RenderOptions{}))
	assert.FileExists(t, path)
}

func TestParseColor(t *testing.T) {
	tests := []struct {
		in   string
		want [3]int
	}{
		{"#ff0000", [3]int{255, 0, 0}},
		{"#0f0", [3]int{0, 255, 0}},
		{"navy", [3]int{0, 0, 128}},
		{"RGB(1, 2, 300)", [3]int{1, 2, 255}},
		{"nonsense", [3]int{0, 0, 0}},
		{"#12", [3]int{0, 0, 0}},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, parseColor(tt.in), tt.in)
	}
}

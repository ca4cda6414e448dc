package res

import (
	"bytes"
	"encoding/base64"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func pngBytes(t *testing.T, w, h int) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	img.Set(0, 0, color.Black)
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

const logo = `<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 200 100"><rect width="200" height="100" fill="#336699"/></svg>`

func TestLoadLocalFile(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "a.css"), []byte("p { color: red }"), 0o644))

	l := NewLoader(dir)
	r, err := l.Load("a.css")
	require.NoError(t, err)
	assert.Equal(t, ResourceTypeCSS, r.Type)
	assert.Equal(t, "text/css", r.MimeType)
	assert.Equal(t, "p { color: red }", r.GetString())

	css, err := l.LoadCSS("a.css")
	require.NoError(t, err)
	assert.Same(t, r, css)
}

func TestLoadIsCached(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "x.png")
	require.NoError(t, os.WriteFile(path, pngBytes(t, 2, 2), 0o644))

	l := NewLoader("")
	first, err := l.Load(path)
	require.NoError(t, err)
	require.NoError(t, os.Remove(path))
	second, err := l.Load(path)
	require.NoError(t, err)
	assert.Same(t, first, second)
}

func TestLoadFromSearchPaths(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "logo.svg"), []byte(logo), 0o644))

	l := NewLoader(t.TempDir())
	l.AddSearchPath(dir)
	r, err := l.LoadImage("images/logo.svg")
	require.NoError(t, err)
	assert.Equal(t, ResourceTypeSVG, r.Type)
	assert.Equal(t, []string{dir}, l.SearchPaths())
}

func TestLoadMissing(t *testing.T) {
	l := NewLoader(t.TempDir())
	_, err := l.Load("nope.png")
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = l.Load("https://example.com/a.png")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestLoadDataURL(t *testing.T) {
	tests := []struct {
		name string
		src  string
		mime string
		data string
		typ  ResourceType
	}{
		{"plain", "data:text/plain,Hello%20World", "text/plain", "Hello World", ResourceTypeOther},
		{"base64", "data:text/css;base64," + base64.StdEncoding.EncodeToString([]byte("a{}")), "text/css", "a{}", ResourceTypeCSS},
		{"default mime", "data:,x", "application/octet-stream", "x", ResourceTypeOther},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r, err := NewLoader("").Load(tt.src)
			require.NoError(t, err)
			assert.Equal(t, tt.mime, r.MimeType)
			assert.Equal(t, tt.data, r.GetString())
			assert.Equal(t, tt.typ, r.Type)
		})
	}

	_, err := NewLoader("").Load("data:image/png;base64,@@@")
	assert.Error(t, err)
	_, err = NewLoader("").Load("data:nocomma")
	assert.Error(t, err)
}

func TestLoadImageRejectsOtherTypes(t *testing.T) {
	_, err := NewLoader("").LoadImage("data:text/plain,x")
	assert.Error(t, err)
}

func TestIntrinsicSizeRaster(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "p.png"), pngBytes(t, 40, 20), 0o644))

	w, h, err := NewLoader(dir).IntrinsicSize("p.png")
	require.NoError(t, err)
	assert.InDelta(t, 30, w.Points(), 1e-9)
	assert.InDelta(t, 15, h.Points(), 1e-9)
}

func TestIntrinsicSizeSVG(t *testing.T) {
	src := "data:image/svg+xml;base64," + base64.StdEncoding.EncodeToString([]byte(logo))
	w, h, err := NewLoader("").IntrinsicSize(src)
	require.NoError(t, err)
	assert.InDelta(t, 150, w.Points(), 1e-9)
	assert.InDelta(t, 75, h.Points(), 1e-9)
}

func TestIntrinsicSizeUndecodable(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "bad.png"), []byte("not a png"), 0o644))
	_, _, err := NewLoader(dir).IntrinsicSize("bad.png")
	assert.Error(t, err)
}

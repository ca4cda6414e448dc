package config

import (
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/gompdf/pageflow/internal/unit"
	"github.com/gompdf/pageflow/pkg/api"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range []string{"PAGEFLOW_PAPER", "PAGEFLOW_ORIENTATION", "PAGEFLOW_LOG_LEVEL"} {
		t.Setenv(k, "")
	}
}

const tomlConfig = `
stylesheet = "print.css"
log_level = "warn"

[page]
paper = "Letter"
orientation = "landscape"

[page.margins]
top = "20mm"
right = "1in"
bottom = 36
left = "2cm"

[fonts]
default = "Times"
size = "10pt"
directories = ["/usr/share/fonts/truetype"]

[[fonts.files]]
family = "Inter"
path = "/fonts/Inter-Bold.ttf"
bold = true

[resources]
paths = ["assets", "images"]

[document]
title = "Quarterly"

[render]
borders = false
debug_boxes = true
`

const yamlConfig = `
page:
  width: 300pt
  height: 200pt
  margins:
    top: 10
    right: 10
    bottom: 10
    left: 10
fonts:
  default: Courier
  size: 9
debug: true
`

func TestLoadFromReaderTOML(t *testing.T) {
	clearEnv(t)
	cfg, err := LoadFromReader(strings.NewReader(tomlConfig), FormatTOML)
	require.NoError(t, err)

	assert.Equal(t, "Letter", cfg.Page.Paper)
	assert.Equal(t, "landscape", cfg.Page.Orientation)
	assert.InDelta(t, unit.MustParse("20mm").Points(), cfg.Page.Margins.Top.Points(), 1e-9)
	assert.InDelta(t, 72, cfg.Page.Margins.Right.Points(), 1e-9)
	assert.InDelta(t, 36, cfg.Page.Margins.Bottom.Points(), 1e-9)
	assert.Equal(t, "Times", cfg.Fonts.Default)
	assert.InDelta(t, 10, cfg.Fonts.Size.Points(), 1e-9)
	require.Len(t, cfg.Fonts.Files, 1)
	assert.True(t, cfg.Fonts.Files[0].Bold)
	assert.Equal(t, []string{"assets", "images"}, cfg.Resources.Paths)
	assert.False(t, cfg.Render.Borders)
	// Unset keys keep their defaults.
	assert.True(t, cfg.Render.Backgrounds)
	assert.Equal(t, "warn", cfg.LogLevel)
}

func TestLoadFromReaderYAML(t *testing.T) {
	clearEnv(t)
	cfg, err := LoadFromReader(strings.NewReader(yamlConfig), FormatYAML)
	require.NoError(t, err)

	assert.InDelta(t, 300, cfg.Page.Width.Points(), 1e-9)
	assert.InDelta(t, 200, cfg.Page.Height.Points(), 1e-9)
	assert.Equal(t, "Courier", cfg.Fonts.Default)
	assert.InDelta(t, 9, cfg.Fonts.Size.Points(), 1e-9)
	assert.True(t, cfg.Debug)
	assert.Equal(t, "portrait", cfg.Page.Orientation)
}

func TestLoadFromReaderEmptyYAML(t *testing.T) {
	clearEnv(t)
	cfg, err := LoadFromReader(strings.NewReader(""), FormatYAML)
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
}

func TestLoadFromReaderErrors(t *testing.T) {
	clearEnv(t)
	tests := []struct {
		name   string
		input  string
		format Format
	}{
		{"bad toml", "[page\n", FormatTOML},
		{"bad yaml", "page: [", FormatYAML},
		{"bad length", "[page.margins]\ntop = \"wide\"\n", FormatTOML},
		{"negative length", "fonts:\n  size: -3pt\n", FormatYAML},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := LoadFromReader(strings.NewReader(tt.input), tt.format)
			assert.Error(t, err)
		})
	}

	_, err := LoadFromReader(strings.NewReader(""), Format("json"))
	assert.ErrorIs(t, err, ErrUnsupportedFormat)
}

func TestEnvOverrides(t *testing.T) {
	clearEnv(t)
	t.Setenv("PAGEFLOW_PAPER", "A5")
	t.Setenv("PAGEFLOW_ORIENTATION", "landscape")
	t.Setenv("PAGEFLOW_LOG_LEVEL", "debug")

	cfg, err := LoadFromReader(strings.NewReader(tomlConfig), FormatTOML)
	require.NoError(t, err)
	assert.Equal(t, "A5", cfg.Page.Paper)
	assert.Equal(t, "landscape", cfg.Page.Orientation)
	lvl, err := cfg.Level()
	require.NoError(t, err)
	assert.Equal(t, slog.LevelDebug, lvl)
}

func TestLoadFromFile(t *testing.T) {
	clearEnv(t)
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "print.css"), []byte("p { color: red; }"), 0644))
	path := filepath.Join(dir, "pageflow.toml")
	require.NoError(t, os.WriteFile(path, []byte(tomlConfig), 0644))

	cfg, err := LoadFromFile(path)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "print.css"), cfg.Stylesheet)

	o, err := cfg.Options()
	require.NoError(t, err)
	assert.Equal(t, "p { color: red; }", o.UserStylesheet)
}

func TestLoadFromFileErrors(t *testing.T) {
	_, err := LoadFromFile("settings.json")
	assert.ErrorIs(t, err, ErrUnsupportedFormat)

	_, err = LoadFromFile(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestFormatOf(t *testing.T) {
	for path, want := range map[string]Format{
		"a.toml": FormatTOML,
		"a.TOML": FormatTOML,
		"a.yaml": FormatYAML,
		"b.yml":  FormatYAML,
	} {
		got, err := FormatOf(path)
		require.NoError(t, err, path)
		assert.Equal(t, want, got, path)
	}
}

func TestOptions(t *testing.T) {
	clearEnv(t)
	cfg, err := LoadFromReader(strings.NewReader(tomlConfig), FormatTOML)
	require.NoError(t, err)
	cfg.Stylesheet = ""

	o, err := cfg.Options()
	require.NoError(t, err)
	assert.Equal(t, "Letter", o.Paper)
	assert.Equal(t, api.PageOrientationLandscape, o.PageOrientation)
	assert.InDelta(t, 72, o.MarginRight, 1e-9)
	assert.Equal(t, "Times", o.FontFamily)
	assert.InDelta(t, 10, o.FontSize, 1e-9)
	assert.Equal(t, []string{"/usr/share/fonts/truetype"}, o.FontDirectories)
	assert.Equal(t, []api.FontFile{{Family: "Inter", Path: "/fonts/Inter-Bold.ttf", Bold: true}}, o.FontFiles)
	assert.Equal(t, "Quarterly", o.Title)
	assert.False(t, o.RenderBorders)
	assert.True(t, o.DebugDrawBoxes)
}

func TestOptionsExplicitSize(t *testing.T) {
	clearEnv(t)
	cfg, err := LoadFromReader(strings.NewReader(yamlConfig), FormatYAML)
	require.NoError(t, err)

	o, err := cfg.Options()
	require.NoError(t, err)
	assert.Empty(t, o.Paper)
	assert.Equal(t, 300.0, o.PageWidth)
	assert.Equal(t, 200.0, o.PageHeight)
	assert.True(t, o.Debug)
}

func TestOptionsErrors(t *testing.T) {
	cfg := Default()
	cfg.Page.Orientation = "diagonal"
	_, err := cfg.Options()
	assert.Error(t, err)

	cfg = Default()
	cfg.Stylesheet = filepath.Join(t.TempDir(), "missing.css")
	_, err = cfg.Options()
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestLogger(t *testing.T) {
	cfg := Default()
	cfg.LogLevel = "loud"
	_, err := cfg.Logger(os.Stderr)
	assert.Error(t, err)

	var sb strings.Builder
	cfg = Default()
	cfg.Debug = true
	logger, err := cfg.Logger(&sb)
	require.NoError(t, err)
	logger.Debug("visible")
	assert.Contains(t, sb.String(), "msg=visible")
}

func TestLengthMarshalText(t *testing.T) {
	text, err := Length(12.5).MarshalText()
	require.NoError(t, err)
	assert.Equal(t, "12.5pt", string(text))
}

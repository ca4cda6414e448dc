// Package config provides TOML and YAML file configuration for pageflow.
package config

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/gompdf/pageflow/internal/unit"
	"github.com/gompdf/pageflow/pkg/api"
	"gopkg.in/yaml.v3"
)

// ErrUnsupportedFormat is returned for configuration files that are neither
// TOML nor YAML.
var ErrUnsupportedFormat = errors.New("config: unsupported format")

// Format is a configuration file syntax.
type Format string

const (
	FormatTOML Format = "toml"
	FormatYAML Format = "yaml"
)

// Config is the file configuration of a conversion.
type Config struct {
	Page      PageConfig      `toml:"page" yaml:"page"`
	Fonts     FontsConfig     `toml:"fonts" yaml:"fonts"`
	Resources ResourcesConfig `toml:"resources" yaml:"resources"`
	Document  DocumentConfig  `toml:"document" yaml:"document"`
	Render    RenderConfig    `toml:"render" yaml:"render"`
	// Stylesheet is the path of a user stylesheet.
	Stylesheet string `toml:"stylesheet" yaml:"stylesheet"`
	LogLevel   string `toml:"log_level" yaml:"log_level"`
	Debug      bool   `toml:"debug" yaml:"debug"`
}

// PageConfig is the default page setup. Paper wins over Width and Height;
// with neither set pages are A4.
type PageConfig struct {
	Paper       string        `toml:"paper" yaml:"paper"`
	Orientation string        `toml:"orientation" yaml:"orientation"`
	Width       Length        `toml:"width" yaml:"width"`
	Height      Length        `toml:"height" yaml:"height"`
	Margins     MarginsConfig `toml:"margins" yaml:"margins"`
}

type MarginsConfig struct {
	Top    Length `toml:"top" yaml:"top"`
	Right  Length `toml:"right" yaml:"right"`
	Bottom Length `toml:"bottom" yaml:"bottom"`
	Left   Length `toml:"left" yaml:"left"`
}

type FontsConfig struct {
	Default     string           `toml:"default" yaml:"default"`
	Size        Length           `toml:"size" yaml:"size"`
	Directories []string         `toml:"directories" yaml:"directories"`
	Files       []FontFileConfig `toml:"files" yaml:"files"`
}

type FontFileConfig struct {
	Family string `toml:"family" yaml:"family"`
	Path   string `toml:"path" yaml:"path"`
	Bold   bool   `toml:"bold" yaml:"bold"`
	Italic bool   `toml:"italic" yaml:"italic"`
}

type ResourcesConfig struct {
	Paths []string `toml:"paths" yaml:"paths"`
}

type DocumentConfig struct {
	Title    string `toml:"title" yaml:"title"`
	Author   string `toml:"author" yaml:"author"`
	Subject  string `toml:"subject" yaml:"subject"`
	Keywords string `toml:"keywords" yaml:"keywords"`
}

type RenderConfig struct {
	Backgrounds bool `toml:"backgrounds" yaml:"backgrounds"`
	Borders     bool `toml:"borders" yaml:"borders"`
	DebugBoxes  bool `toml:"debug_boxes" yaml:"debug_boxes"`
}

// Default returns the configuration used when no file is present.
func Default() *Config {
	return &Config{
		Page: PageConfig{
			Orientation: string(api.PageOrientationPortrait),
			Margins:     MarginsConfig{Top: 72, Right: 72, Bottom: 72, Left: 72},
		},
		Fonts: FontsConfig{
			Default: "Helvetica",
			Size:    12,
		},
		Render: RenderConfig{
			Backgrounds: true,
			Borders:     true,
		},
		LogLevel: "info",
	}
}

// Load reads configuration from the standard config path.
// Search order:
//  1. ./pageflow.toml, ./pageflow.yaml
//  2. $XDG_CONFIG_HOME/pageflow/config.toml (or ~/.config)
//
// If no file exists, returns Default().
func Load() (*Config, error) {
	for _, p := range searchPaths() {
		if _, err := os.Stat(p); err == nil {
			return LoadFromFile(p)
		}
	}
	cfg := Default()
	applyEnvOverrides(cfg)
	return cfg, nil
}

// LoadFromFile reads configuration from path. The format follows the file
// extension.
func LoadFromFile(path string) (*Config, error) {
	format, err := FormatOf(path)
	if err != nil {
		return nil, err
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	cfg, err := LoadFromReader(f, format)
	if err != nil {
		return nil, fmt.Errorf("config: %s: %w", path, err)
	}
	if cfg.Stylesheet != "" && !filepath.IsAbs(cfg.Stylesheet) {
		cfg.Stylesheet = filepath.Join(filepath.Dir(path), cfg.Stylesheet)
	}
	return cfg, nil
}

// LoadFromReader decodes configuration over Default() and applies the
// environment overrides.
func LoadFromReader(r io.Reader, format Format) (*Config, error) {
	cfg := Default()
	switch format {
	case FormatTOML:
		if _, err := toml.NewDecoder(r).Decode(cfg); err != nil {
			return nil, err
		}
	case FormatYAML:
		if err := yaml.NewDecoder(r).Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
			return nil, err
		}
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedFormat, format)
	}
	applyEnvOverrides(cfg)
	return cfg, nil
}

// FormatOf returns the format of a configuration file by extension.
func FormatOf(path string) (Format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".toml":
		return FormatTOML, nil
	case ".yaml", ".yml":
		return FormatYAML, nil
	}
	return "", fmt.Errorf("%w: %s", ErrUnsupportedFormat, path)
}

// applyEnvOverrides checks environment variables and overrides config values.
func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("PAGEFLOW_PAPER"); v != "" {
		cfg.Page.Paper = v
	}
	if v := os.Getenv("PAGEFLOW_ORIENTATION"); v != "" {
		cfg.Page.Orientation = v
	}
	if v := os.Getenv("PAGEFLOW_LOG_LEVEL"); v != "" {
		cfg.LogLevel = v
	}
}

func searchPaths() []string {
	paths := []string{"pageflow.toml", "pageflow.yaml"}
	home, _ := os.UserHomeDir()
	xdg := os.Getenv("XDG_CONFIG_HOME")
	if xdg == "" && home != "" {
		xdg = filepath.Join(home, ".config")
	}
	if xdg != "" {
		paths = append(paths, filepath.Join(xdg, "pageflow", "config.toml"))
	}
	return paths
}

// Level parses LogLevel.
func (c *Config) Level() (slog.Level, error) {
	var lvl slog.Level
	if c.LogLevel == "" {
		return slog.LevelInfo, nil
	}
	if err := lvl.UnmarshalText([]byte(c.LogLevel)); err != nil {
		return slog.LevelInfo, fmt.Errorf("config: log level: %w", err)
	}
	return lvl, nil
}

// Logger returns a text logger writing to w at the configured level. Debug
// lowers the level to debug.
func (c *Config) Logger(w io.Writer) (*slog.Logger, error) {
	lvl, err := c.Level()
	if err != nil {
		return nil, err
	}
	if c.Debug {
		lvl = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: lvl})), nil
}

// Options maps the configuration onto converter options. The user
// stylesheet is read from disk.
func (c *Config) Options() (api.Options, error) {
	o := api.DefaultOptions()

	switch orientation := api.PageOrientation(strings.ToLower(c.Page.Orientation)); orientation {
	case api.PageOrientationPortrait, api.PageOrientationLandscape:
		o.PageOrientation = orientation
	case "":
	default:
		return o, fmt.Errorf("config: page orientation %q", c.Page.Orientation)
	}
	if c.Page.Width > 0 && c.Page.Height > 0 {
		o.PageWidth, o.PageHeight = c.Page.Width.Points(), c.Page.Height.Points()
	}
	o.Paper = c.Page.Paper
	m := c.Page.Margins
	o.MarginTop, o.MarginRight, o.MarginBottom, o.MarginLeft = m.Top.Points(), m.Right.Points(), m.Bottom.Points(), m.Left.Points()

	o.FontFamily = c.Fonts.Default
	o.FontSize = c.Fonts.Size.Points()
	o.FontDirectories = append(o.FontDirectories, c.Fonts.Directories...)
	for _, f := range c.Fonts.Files {
		o.FontFiles = append(o.FontFiles, api.FontFile{Family: f.Family, Path: f.Path, Bold: f.Bold, Italic: f.Italic})
	}
	o.ResourcePaths = append(o.ResourcePaths, c.Resources.Paths...)

	o.Title, o.Author = c.Document.Title, c.Document.Author
	o.Subject, o.Keywords = c.Document.Subject, c.Document.Keywords

	o.RenderBackgrounds = c.Render.Backgrounds
	o.RenderBorders = c.Render.Borders
	o.DebugDrawBoxes = c.Render.DebugBoxes
	o.Debug = c.Debug

	if c.Stylesheet != "" {
		data, err := os.ReadFile(c.Stylesheet)
		if err != nil {
			return o, fmt.Errorf("config: stylesheet: %w", err)
		}
		o.UserStylesheet = string(data)
	}
	return o, nil
}

// Length is a CSS length such as "20mm" or "0.5in". Bare numbers are
// points.
type Length unit.Unit

// Points returns the length in points.
func (l Length) Points() float64 {
	return unit.Unit(l).Points()
}

// UnmarshalText implements encoding.TextUnmarshaler for TOML and YAML parsing.
func (l *Length) UnmarshalText(text []byte) error {
	s := strings.TrimSpace(string(text))
	if s == "" {
		*l = 0
		return nil
	}
	u, err := unit.Parse(s, 12, 0)
	if err != nil {
		return fmt.Errorf("invalid length %q: %w", s, err)
	}
	if u < 0 {
		return fmt.Errorf("negative length %q not allowed", s)
	}
	*l = Length(u)
	return nil
}

// MarshalText implements encoding.TextMarshaler.
func (l Length) MarshalText() ([]byte, error) {
	return []byte(fmt.Sprintf("%gpt", l.Points())), nil
}

package api

import (
	"log/slog"
)

// Options represents configuration options for the layout engine and the
// PDF renderer. Lengths are in points.
type Options struct {
	// Page dimensions, used when Paper is empty
	PageWidth  float64
	PageHeight float64
	// Paper is a named paper size (A4, Letter, ...). It wins over
	// PageWidth and PageHeight.
	Paper string
	// Page orientation: portrait or landscape
	PageOrientation PageOrientation

	// Page margins
	MarginTop    float64
	MarginRight  float64
	MarginBottom float64
	MarginLeft   float64

	// Default font of the document body
	FontFamily string
	FontSize   float64

	Debug bool

	// Visual rendering toggles
	// When false, backgrounds will not be painted
	RenderBackgrounds bool
	// When false, borders will not be painted
	RenderBorders bool
	// When true, outline blocks, lines and regions
	DebugDrawBoxes bool

	// Resource paths
	ResourcePaths   []string
	FontDirectories []string
	FontFiles       []FontFile

	// Document metadata
	Title    string
	Author   string
	Subject  string
	Keywords string

	// UserStylesheet is CSS applied after the built-in defaults and before
	// the document's own stylesheets.
	UserStylesheet string

	// Logger receives engine diagnostics. Nil discards them unless Debug
	// is set.
	Logger *slog.Logger
}

// FontFile is a TrueType file providing one face of a family.
type FontFile struct {
	Family string
	Path   string
	Bold   bool
	Italic bool
}

// Option is a function that modifies Options
type Option func(*Options)

// PageOrientation represents page orientation
type PageOrientation string

const (
	// PageOrientationPortrait sets the page to portrait orientation
	PageOrientationPortrait PageOrientation = "portrait"
	// PageOrientationLandscape sets the page to landscape orientation
	PageOrientationLandscape PageOrientation = "landscape"
)

// DefaultOptions returns the default options
func DefaultOptions() Options {
	return Options{
		// Default to A4 paper size (595.28 x 841.89 points)
		PageWidth:       PageSizeA4Width,
		PageHeight:      PageSizeA4Height,
		PageOrientation: PageOrientationPortrait,

		// Default margins (1 inch = 72 points)
		MarginTop:    72,
		MarginRight:  72,
		MarginBottom: 72,
		MarginLeft:   72,

		FontFamily: "Helvetica",
		FontSize:   12,

		RenderBackgrounds: true,
		RenderBorders:     true,
	}
}

// Apply returns a copy of o with opts applied in order.
func (o Options) Apply(opts ...Option) Options {
	o.ResourcePaths = append([]string(nil), o.ResourcePaths...)
	o.FontDirectories = append([]string(nil), o.FontDirectories...)
	o.FontFiles = append([]FontFile(nil), o.FontFiles...)
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

// WithPageSize sets the page size
func WithPageSize(width, height float64) Option {
	return func(o *Options) {
		o.PageWidth = width
		o.PageHeight = height
		o.Paper = ""
	}
}

// WithPaper selects a named paper size
func WithPaper(name string) Option {
	return func(o *Options) {
		o.Paper = name
	}
}

// WithMargins sets the page margins
func WithMargins(top, right, bottom, left float64) Option {
	return func(o *Options) {
		o.MarginTop = top
		o.MarginRight = right
		o.MarginBottom = bottom
		o.MarginLeft = left
	}
}

// WithFont sets the default font family and size
func WithFont(family string, size float64) Option {
	return func(o *Options) {
		o.FontFamily = family
		o.FontSize = size
	}
}

// WithDebug sets the debug mode
func WithDebug(debug bool) Option {
	return func(o *Options) {
		o.Debug = debug
	}
}

// WithDebugBoxes toggles the debug outlines
func WithDebugBoxes(draw bool) Option {
	return func(o *Options) {
		o.DebugDrawBoxes = draw
	}
}

// WithResourcePath adds a path to search for resources
func WithResourcePath(path string) Option {
	return func(o *Options) {
		o.ResourcePaths = append(o.ResourcePaths, path)
	}
}

// WithFontDirectory adds a directory whose TrueType files are registered
func WithFontDirectory(dir string) Option {
	return func(o *Options) {
		o.FontDirectories = append(o.FontDirectories, dir)
	}
}

// WithFontFile registers a TrueType file for a family
func WithFontFile(f FontFile) Option {
	return func(o *Options) {
		o.FontFiles = append(o.FontFiles, f)
	}
}

// WithTitle sets the document title
func WithTitle(title string) Option {
	return func(o *Options) {
		o.Title = title
	}
}

// WithAuthor sets the document author
func WithAuthor(author string) Option {
	return func(o *Options) {
		o.Author = author
	}
}

// WithSubject sets the document subject
func WithSubject(subject string) Option {
	return func(o *Options) {
		o.Subject = subject
	}
}

// WithKeywords sets the document keywords
func WithKeywords(keywords string) Option {
	return func(o *Options) {
		o.Keywords = keywords
	}
}

// WithUserStylesheet sets the user stylesheet
func WithUserStylesheet(stylesheet string) Option {
	return func(o *Options) {
		o.UserStylesheet = stylesheet
	}
}

// WithPageOrientation sets the page orientation
func WithPageOrientation(orientation PageOrientation) Option {
	return func(o *Options) {
		o.PageOrientation = orientation
	}
}

// WithLogger sets the logger
func WithLogger(logger *slog.Logger) Option {
	return func(o *Options) {
		o.Logger = logger
	}
}

// Standard page sizes in points (1/72 inch)
const (
	PageSizeA4Width  = 595.28
	PageSizeA4Height = 841.89
	PageSizeA5Width  = 419.53
	PageSizeA5Height = 595.28

	// US Letter and Legal
	PageSizeLetterWidth  = 612
	PageSizeLetterHeight = 792
	PageSizeLegalWidth   = 612
	PageSizeLegalHeight  = 1008
)

// WithPageSizeA4 sets the page size to A4
func WithPageSizeA4() Option {
	return WithPaper("A4")
}

// WithPageSizeLetter sets the page size to US Letter
func WithPageSizeLetter() Option {
	return WithPaper("Letter")
}

// WithPageSizeLegal sets the page size to US Legal
func WithPageSizeLegal() Option {
	return WithPaper("Legal")
}

// Package pageflow lays out HTML documents into pages and renders them as PDF.
package pageflow

import (
	"github.com/gompdf/pageflow/internal/content"
	"github.com/gompdf/pageflow/internal/layout"
	"github.com/gompdf/pageflow/pkg/api"
)

type Converter = api.Converter
type Options = api.Options
type Option = api.Option
type PageOrientation = api.PageOrientation
type FontFile = api.FontFile

// Content is a parsed document; Layout is its laid out form.
type Content = content.Document
type Layout = layout.Document

func New() *Converter                           { return api.New() }
func NewWithOptions(options Options) *Converter { return api.NewWithOptions(options) }
func DefaultOptions() Options                   { return api.DefaultOptions() }

var (
	WithPageSize        = api.WithPageSize
	WithPaper           = api.WithPaper
	WithMargins         = api.WithMargins
	WithFont            = api.WithFont
	WithDebug           = api.WithDebug
	WithDebugBoxes      = api.WithDebugBoxes
	WithResourcePath    = api.WithResourcePath
	WithFontDirectory   = api.WithFontDirectory
	WithFontFile        = api.WithFontFile
	WithTitle           = api.WithTitle
	WithAuthor          = api.WithAuthor
	WithSubject         = api.WithSubject
	WithKeywords        = api.WithKeywords
	WithUserStylesheet  = api.WithUserStylesheet
	WithPageSizeA4      = api.WithPageSizeA4
	WithPageSizeLetter  = api.WithPageSizeLetter
	WithPageSizeLegal   = api.WithPageSizeLegal
	WithPageOrientation = api.WithPageOrientation
	WithLogger          = api.WithLogger
)

const (
	PageSizeA4Width  = api.PageSizeA4Width
	PageSizeA4Height = api.PageSizeA4Height
	PageSizeA5Width  = api.PageSizeA5Width
	PageSizeA5Height = api.PageSizeA5Height

	PageSizeLetterWidth  = api.PageSizeLetterWidth
	PageSizeLetterHeight = api.PageSizeLetterHeight
	PageSizeLegalWidth   = api.PageSizeLegalWidth
	PageSizeLegalHeight  = api.PageSizeLegalHeight

	PageOrientationPortrait  = api.PageOrientationPortrait
	PageOrientationLandscape = api.PageOrientationLandscape
)

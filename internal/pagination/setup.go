package pagination

import (
	"fmt"

	"github.com/gompdf/pageflow/internal/style"
	"github.com/gompdf/pageflow/internal/unit"
)

// Margins represents page margins
type Margins struct {
	Top    unit.Unit
	Right  unit.Unit
	Bottom unit.Unit
	Left   unit.Unit
}

// Setup is the geometry of one page.
type Setup struct {
	// Name is the @page name the setup was derived from, "" for the default.
	Name        string
	Paper       string
	Orientation style.Orientation
	Width       unit.Unit
	Height      unit.Unit
	Margins     Margins
	OverlayGrid style.OverlayGrid
}

// DefaultSetup is A4 portrait with 72pt margins.
func DefaultSetup() Setup {
	s := Setup{
		Paper:   "A4",
		Margins: Margins{72, 72, 72, 72},
	}
	sz, _ := SizeOf(s.Paper)
	s.Width, s.Height = sz.Width, sz.Height
	return s
}

// ContentWidth is the width inside the margins.
func (s Setup) ContentWidth() unit.Unit {
	return unit.Max(0, s.Width-s.Margins.Left-s.Margins.Right)
}

// ContentHeight is the height inside the margins.
func (s Setup) ContentHeight() unit.Unit {
	return unit.Max(0, s.Height-s.Margins.Top-s.Margins.Bottom)
}

// WithPaper sets a named paper size in the given orientation.
func (s Setup) WithPaper(name string, o style.Orientation) (Setup, error) {
	sz, err := SizeOf(name)
	if err != nil {
		return s, err
	}
	if o == style.Landscape {
		sz = sz.Landscape()
	}
	s.Paper, s.Orientation = sz.Name, o
	s.Width, s.Height = sz.Width, sz.Height
	return s, nil
}

// Resolve layers a named @page rule and the style of a section element over
// base. Either layer may be nil. Explicit sizes win over named papers.
func Resolve(base Setup, rule *style.PageRule, section *style.Style) (Setup, error) {
	s := base
	paper, orientation := "", s.Orientation
	hasOrientation := false
	explicit := false

	apply := func(p string, o style.Orientation, hasO bool, w, h unit.Unit, hasSize bool) {
		if p != "" {
			paper, explicit = p, false
		}
		if hasO {
			orientation, hasOrientation = o, true
		}
		if hasSize {
			s.Width, s.Height = w, h
			paper, explicit = "", true
		}
	}
	if rule != nil {
		s.Name = rule.Name
		apply(rule.Paper, rule.Orientation, rule.HasOrientation, rule.Width, rule.Height, rule.HasSize)
		if rule.HasMargin {
			s.Margins = Margins{rule.Margin.Top, rule.Margin.Right, rule.Margin.Bottom, rule.Margin.Left}
		}
		if rule.OverlayGrid.Show {
			s.OverlayGrid = rule.OverlayGrid
		}
	}
	if section != nil {
		apply(section.PaperSize, section.Orientation, section.HasOrientation, section.PageWidth, section.PageHeight, section.HasPageSize)
		if section.OverlayGrid.Show {
			s.OverlayGrid = section.OverlayGrid
		}
	}

	switch {
	case explicit:
		s.Paper = ""
		s.Orientation = style.Portrait
		if s.Width > s.Height {
			s.Orientation = style.Landscape
		}
	case paper != "":
		var err error
		if s, err = s.WithPaper(paper, orientation); err != nil {
			return base, fmt.Errorf("pagination: page setup %q: %w", s.Name, err)
		}
	case hasOrientation && orientation != s.Orientation && s.Paper != "":
		var err error
		if s, err = s.WithPaper(s.Paper, orientation); err != nil {
			return base, err
		}
	case hasOrientation && orientation != s.Orientation:
		s.Width, s.Height = s.Height, s.Width
		s.Orientation = orientation
	}
	return s, nil
}

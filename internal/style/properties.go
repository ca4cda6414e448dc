package style

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/gompdf/pageflow/internal/numbering"
	"github.com/gompdf/pageflow/internal/parser/css"
	"github.com/gompdf/pageflow/internal/unit"
)

// PageRule is the page setup declared by @page rules.
type PageRule struct {
	Name           string
	Paper          string
	Orientation    Orientation
	HasOrientation bool
	Width          unit.Unit
	Height         unit.Unit
	HasSize        bool
	Margin         Edges
	HasMargin      bool
	OverlayGrid    OverlayGrid
}

func (r *PageRule) apply(decls []*css.Declaration) {
	for _, d := range decls {
		switch d.Property {
		case "size":
			ps, err := parsePageSize(d.Value)
			if err != nil {
				continue
			}
			if ps.paper != "" {
				r.Paper, r.HasSize = ps.paper, false
			}
			if ps.hasSize {
				r.Width, r.Height, r.HasSize = ps.width, ps.height, true
				r.Paper = ""
			}
			if ps.hasOrientation {
				r.Orientation, r.HasOrientation = ps.orientation, true
			}
		case "margin":
			if e, err := parseEdges(d.Value, DefaultFontSize); err == nil {
				r.Margin, r.HasMargin = e, true
			}
		case "margin-top", "margin-right", "margin-bottom", "margin-left":
			if v, err := unit.Parse(d.Value, DefaultFontSize, 0); err == nil {
				setSide(&r.Margin, strings.TrimPrefix(d.Property, "margin-"), v)
				r.HasMargin = true
			}
		case "-pf-overlay-grid":
			if g, err := parseOverlayGrid(d.Value); err == nil {
				r.OverlayGrid = g
			}
		}
	}
}

// Inherit returns a fresh style carrying the inherited properties of parent.
func Inherit(parent *Style) *Style {
	return inherit(parent)
}

func sortedNames(cs ComputedStyle) []string {
	names := make([]string, 0, len(cs))
	for name := range cs {
		names = append(names, name)
	}
	// Shorthands before longhands so "margin-left" refines "margin".
	sort.Slice(names, func(i, j int) bool {
		if len(names[i]) != len(names[j]) {
			return len(names[i]) < len(names[j])
		}
		return names[i] < names[j]
	})
	return names
}

func invalid(name, value string) error {
	return fmt.Errorf("%w: %s: %q", ErrInvalidValue, name, value)
}

// applyProperty interprets a single declaration on s. parent is the style
// em and percentage font sizes resolve against.
func applyProperty(s, parent *Style, name, value string) error {
	v := strings.TrimSpace(value)
	kw := strings.ToLower(v)
	if kw == "inherit" {
		if parent != nil {
			return inheritProperty(s, parent, name)
		}
		return nil
	}
	em := s.Font.Size
	length := func() (unit.Unit, error) {
		u, err := unit.Parse(v, em, 0)
		if err != nil {
			return 0, invalid(name, value)
		}
		return u, nil
	}

	switch name {
	case "display":
		switch kw {
		case "block", "flex", "table", "grid":
			s.Display = DisplayBlock
		case "inline":
			s.Display = DisplayInline
		case "inline-block", "inline-flex", "inline-table":
			s.Display = DisplayInlineBlock
		case "list-item":
			s.Display = DisplayListItem
		case "none":
			s.Display = DisplayNone
		default:
			return invalid(name, value)
		}
	case "position":
		switch kw {
		case "static":
			s.Position = PositionStatic
		case "relative":
			s.Position = PositionRelative
		case "absolute", "fixed":
			s.Position = PositionAbsolute
		default:
			return invalid(name, value)
		}
	case "float":
		switch kw {
		case "none":
			s.Float = FloatNone
		case "left":
			s.Float = FloatLeft
		case "right":
			s.Float = FloatRight
		default:
			return invalid(name, value)
		}
	case "left", "top":
		if kw == "auto" {
			return nil
		}
		u, err := length()
		if err != nil {
			return err
		}
		if name == "left" {
			s.Left = u
		} else {
			s.Top = u
		}

	case "margin", "padding", "border-width":
		e, err := parseEdges(v, em)
		if err != nil {
			return invalid(name, value)
		}
		switch name {
		case "margin":
			s.Margin = e
		case "padding":
			s.Padding = e
		default:
			s.Border = e
		}
	case "margin-top", "margin-right", "margin-bottom", "margin-left":
		if kw == "auto" {
			return nil
		}
		u, err := length()
		if err != nil {
			return err
		}
		setSide(&s.Margin, strings.TrimPrefix(name, "margin-"), u)
	case "padding-top", "padding-right", "padding-bottom", "padding-left":
		u, err := length()
		if err != nil {
			return err
		}
		setSide(&s.Padding, strings.TrimPrefix(name, "padding-"), u)
	case "border-top-width", "border-right-width", "border-bottom-width", "border-left-width":
		u, err := length()
		if err != nil {
			return err
		}
		side := strings.TrimSuffix(strings.TrimPrefix(name, "border-"), "-width")
		setSide(&s.Border, side, u)
	case "border":
		width, color, err := parseBorder(v, em)
		if err != nil {
			return invalid(name, value)
		}
		s.Border = Edges{width, width, width, width}
		if color != "" {
			s.BorderColor = color
		}
	case "border-color":
		s.BorderColor = v

	case "width", "height", "min-height":
		if kw == "auto" {
			return nil
		}
		if name == "width" && strings.HasSuffix(kw, "%") {
			f, err := strconv.ParseFloat(strings.TrimSuffix(kw, "%"), 64)
			if err != nil {
				return invalid(name, value)
			}
			s.WidthRatio = f / 100
			return nil
		}
		u, err := length()
		if err != nil {
			return err
		}
		switch name {
		case "width":
			s.Width, s.HasWidth = u, true
		case "height":
			s.Height, s.HasHeight = u, true
		default:
			s.MinHeight = u
		}

	case "text-align":
		switch kw {
		case "left", "start":
			s.HAlign = AlignLeft
		case "center":
			s.HAlign = AlignCenter
		case "right", "end":
			s.HAlign = AlignRight
		case "justify":
			s.HAlign = AlignJustified
		default:
			return invalid(name, value)
		}
	case "vertical-align":
		switch kw {
		case "baseline":
			s.VAlign = VAlignBaseline
		case "top", "text-top":
			s.VAlign = VAlignTop
		case "middle":
			s.VAlign = VAlignMiddle
		case "bottom", "text-bottom":
			s.VAlign = VAlignBottom
		default:
			return invalid(name, value)
		}

	case "font-family":
		family := strings.TrimSpace(strings.Split(v, ",")[0])
		family = strings.Trim(family, `"'`)
		if family == "" {
			return invalid(name, value)
		}
		s.Font.Family = family
	case "font-size":
		base := DefaultFontSize
		if parent != nil {
			base = parent.Font.Size
		}
		size, err := parseFontSize(kw, base)
		if err != nil {
			return invalid(name, value)
		}
		s.Font.Size = size
	case "font-weight":
		switch kw {
		case "bold", "bolder":
			s.Font.Bold = true
		case "normal", "lighter":
			s.Font.Bold = false
		default:
			w, err := strconv.Atoi(kw)
			if err != nil {
				return invalid(name, value)
			}
			s.Font.Bold = w >= 600
		}
	case "font-style":
		switch kw {
		case "italic", "oblique":
			s.Font.Italic = true
		case "normal":
			s.Font.Italic = false
		default:
			return invalid(name, value)
		}
	case "line-height":
		if kw == "normal" {
			s.Leading, s.HasLeading = 0, false
			return nil
		}
		if f, err := strconv.ParseFloat(kw, 64); err == nil {
			s.Leading, s.HasLeading = s.Font.Size*unit.Unit(f), true
			return nil
		}
		u, err := unit.Parse(v, em, s.Font.Size)
		if err != nil {
			return invalid(name, value)
		}
		s.Leading, s.HasLeading = u, true
	case "letter-spacing", "word-spacing":
		var u unit.Unit
		set := kw != "normal"
		if set {
			var err error
			if u, err = length(); err != nil {
				return err
			}
		}
		if name == "letter-spacing" {
			s.CharSpacing, s.HasCharSpacing = u, set
		} else {
			s.WordSpacing, s.HasWordSpacing = u, set
		}
	case "white-space":
		s.NoWrap = kw == "nowrap" || kw == "pre"

	case "hyphens":
		switch kw {
		case "auto":
			s.Hyphens.Enabled = true
		case "none", "manual":
			s.Hyphens.Enabled = false
		default:
			return invalid(name, value)
		}
	case "-pf-hyphen-min-before", "-pf-hyphen-min-after", "-pf-hyphen-min-word":
		n, err := strconv.Atoi(kw)
		if err != nil || n < 1 {
			return invalid(name, value)
		}
		switch name {
		case "-pf-hyphen-min-before":
			s.Hyphens.MinBefore = n
		case "-pf-hyphen-min-after":
			s.Hyphens.MinAfter = n
		default:
			s.Hyphens.MinWord = n
		}
	case "-pf-hyphen-char":
		c, size := utf8.DecodeRuneInString(unquote(v))
		if size == 0 {
			return invalid(name, value)
		}
		s.Hyphens.Char = c

	case "list-style-type":
		st, ok := numbering.ParseStyle(kw)
		if !ok {
			return invalid(name, value)
		}
		s.List.Style = st
	case "list-style":
		for _, tok := range strings.Fields(kw) {
			if st, ok := numbering.ParseStyle(tok); ok {
				s.List.Style = st
				return nil
			}
		}
		return invalid(name, value)
	case "-pf-number-prefix":
		s.List.Prefix = unquote(v)
	case "-pf-number-postfix":
		s.List.Postfix = unquote(v)
	case "-pf-number-inset":
		u, err := length()
		if err != nil {
			return err
		}
		s.List.Inset, s.List.HasInset = u, true
	case "-pf-number-alignment":
		switch kw {
		case "left":
			s.List.Align = ListAlignLeft
		case "right":
			s.List.Align = ListAlignRight
		default:
			return invalid(name, value)
		}
	case "-pf-number-group":
		s.List.Group = unquote(v)
	case "-pf-number-concat":
		b, err := parseBool(kw)
		if err != nil {
			return invalid(name, value)
		}
		s.List.Concatenate = b
	case "-pf-number-start":
		n, err := strconv.Atoi(kw)
		if err != nil {
			return invalid(name, value)
		}
		s.List.Start, s.List.HasStart = n, true

	case "column-count":
		if kw == "auto" {
			s.Columns.Count = 1
			return nil
		}
		n, err := strconv.Atoi(kw)
		if err != nil || n < 1 {
			return invalid(name, value)
		}
		s.Columns.Count = n
	case "column-gap":
		if kw == "normal" {
			s.Columns.Alley = Default().Columns.Alley
			return nil
		}
		u, err := length()
		if err != nil {
			return err
		}
		s.Columns.Alley = u

	case "page":
		if kw == "auto" {
			s.PageName = ""
			return nil
		}
		s.PageName = unquote(v)
	case "size":
		ps, err := parsePageSize(v)
		if err != nil {
			return invalid(name, value)
		}
		if ps.paper != "" {
			s.PaperSize = ps.paper
		}
		if ps.hasSize {
			s.PageWidth, s.PageHeight, s.HasPageSize = ps.width, ps.height, true
		}
		if ps.hasOrientation {
			s.Orientation, s.HasOrientation = ps.orientation, true
		}
	case "-pf-overlay-grid":
		g, err := parseOverlayGrid(v)
		if err != nil {
			return invalid(name, value)
		}
		s.OverlayGrid = g

	case "color":
		s.Color = v
	case "background-color", "background":
		s.Background = v
	}
	// Unknown properties are ignored, as browsers do.
	return nil
}

func inheritProperty(s, parent *Style, name string) error {
	switch {
	case strings.HasPrefix(name, "margin"):
		s.Margin = parent.Margin
	case strings.HasPrefix(name, "padding"):
		s.Padding = parent.Padding
	case name == "width":
		s.Width, s.HasWidth, s.WidthRatio = parent.Width, parent.HasWidth, parent.WidthRatio
	case name == "height":
		s.Height, s.HasHeight = parent.Height, parent.HasHeight
	case name == "display":
		s.Display = parent.Display
	case name == "background-color", name == "background":
		s.Background = parent.Background
	}
	return nil
}

func setSide(e *Edges, side string, v unit.Unit) {
	switch side {
	case "top":
		e.Top = v
	case "right":
		e.Right = v
	case "bottom":
		e.Bottom = v
	case "left":
		e.Left = v
	}
}

// parseEdges reads the 1 to 4 value box shorthand.
func parseEdges(v string, em unit.Unit) (Edges, error) {
	fields := strings.Fields(v)
	if len(fields) == 0 || len(fields) > 4 {
		return Edges{}, unit.ErrInvalidLength
	}
	vals := make([]unit.Unit, len(fields))
	for i, f := range fields {
		if strings.EqualFold(f, "auto") {
			continue
		}
		u, err := unit.Parse(f, em, 0)
		if err != nil {
			return Edges{}, err
		}
		vals[i] = u
	}
	switch len(vals) {
	case 1:
		return Edges{vals[0], vals[0], vals[0], vals[0]}, nil
	case 2:
		return Edges{vals[0], vals[1], vals[0], vals[1]}, nil
	case 3:
		return Edges{vals[0], vals[1], vals[2], vals[1]}, nil
	}
	return Edges{vals[0], vals[1], vals[2], vals[3]}, nil
}

var borderStyles = map[string]bool{
	"solid": true, "dashed": true, "dotted": true, "double": true,
	"groove": true, "ridge": true, "inset": true, "outset": true,
}

func parseBorder(v string, em unit.Unit) (unit.Unit, string, error) {
	var width unit.Unit
	var color string
	for _, tok := range strings.Fields(v) {
		lower := strings.ToLower(tok)
		switch {
		case lower == "none" || lower == "hidden":
			return 0, "", nil
		case borderStyles[lower]:
		case lower == "thin":
			width = 0.75
		case lower == "medium":
			width = 2.25
		case lower == "thick":
			width = 3.75
		default:
			if u, err := unit.Parse(tok, em, 0); err == nil {
				width = u
			} else {
				color = tok
			}
		}
	}
	return width, color, nil
}

var fontSizeKeywords = map[string]unit.Unit{
	"xx-small": 7, "x-small": 7.5, "small": 10, "medium": 12,
	"large": 13.5, "x-large": 18, "xx-large": 24,
}

func parseFontSize(kw string, base unit.Unit) (unit.Unit, error) {
	if u, ok := fontSizeKeywords[kw]; ok {
		return u, nil
	}
	switch kw {
	case "smaller":
		return base / 1.2, nil
	case "larger":
		return base * 1.2, nil
	}
	u, err := unit.Parse(kw, base, base)
	if err != nil {
		return 0, err
	}
	if u <= 0 {
		return 0, unit.ErrInvalidLength
	}
	return u, nil
}

type pageSize struct {
	paper          string
	width, height  unit.Unit
	hasSize        bool
	orientation    Orientation
	hasOrientation bool
}

// parsePageSize reads the @page size descriptor: "A4", "A4 landscape",
// "landscape", "210mm 297mm" or a single square length.
func parsePageSize(v string) (pageSize, error) {
	var ps pageSize
	var lengths []unit.Unit
	for _, tok := range strings.Fields(v) {
		lower := strings.ToLower(tok)
		switch lower {
		case "auto":
		case "portrait":
			ps.orientation, ps.hasOrientation = Portrait, true
		case "landscape":
			ps.orientation, ps.hasOrientation = Landscape, true
		default:
			if u, err := unit.Parse(tok, DefaultFontSize, 0); err == nil {
				lengths = append(lengths, u)
				continue
			}
			ps.paper = tok
		}
	}
	switch len(lengths) {
	case 0:
	case 1:
		ps.width, ps.height, ps.hasSize = lengths[0], lengths[0], true
	case 2:
		ps.width, ps.height, ps.hasSize = lengths[0], lengths[1], true
	default:
		return ps, unit.ErrInvalidLength
	}
	if ps.paper == "" && !ps.hasSize && !ps.hasOrientation && strings.TrimSpace(v) != "auto" {
		return ps, unit.ErrInvalidLength
	}
	return ps, nil
}

// parseOverlayGrid reads "none" or "<spacing> [color]".
func parseOverlayGrid(v string) (OverlayGrid, error) {
	fields := strings.Fields(v)
	if len(fields) == 0 {
		return OverlayGrid{}, unit.ErrInvalidLength
	}
	if strings.EqualFold(fields[0], "none") {
		return OverlayGrid{}, nil
	}
	spacing, err := unit.Parse(fields[0], DefaultFontSize, 0)
	if err != nil || spacing <= 0 {
		return OverlayGrid{}, unit.ErrInvalidLength
	}
	g := OverlayGrid{Show: true, Spacing: spacing, Color: "#C0C0C0"}
	if len(fields) > 1 {
		g.Color = fields[1]
	}
	return g, nil
}

func parseBool(kw string) (bool, error) {
	switch kw {
	case "yes", "on":
		return true, nil
	case "no", "off":
		return false, nil
	}
	return strconv.ParseBool(kw)
}

func unquote(v string) string {
	v = strings.TrimSpace(v)
	if len(v) >= 2 && (v[0] == '"' || v[0] == '\'') && v[len(v)-1] == v[0] {
		return v[1 : len(v)-1]
	}
	return v
}

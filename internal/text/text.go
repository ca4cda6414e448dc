// Package text measures strings for the layout engine and splits inline text
// into the words, spaces and breaks the line breaker consumes.
package text

import (
	"errors"
	"strings"

	"github.com/gompdf/pageflow/internal/unit"
)

// ErrUnknownFont is reported when a family has no metrics. Measurers recover
// from it by substituting the default serif family.
var ErrUnknownFont = errors.New("text: unknown font family")

// FallbackFamily is the family used for fonts that cannot be resolved.
const FallbackFamily = "Times"

// Font selects a face and size.
type Font struct {
	Family string
	Size   unit.Unit
	Bold   bool
	Italic bool
}

// StyleString returns the fpdf style letters of the face ("", "B", "I", "BI").
func (f Font) StyleString() string {
	var sb strings.Builder
	if f.Bold {
		sb.WriteByte('B')
	}
	if f.Italic {
		sb.WriteByte('I')
	}
	return sb.String()
}

// Metrics are the vertical metrics of a font at a given size.
type Metrics struct {
	Ascent    unit.Unit
	Descent   unit.Unit
	LineGap   unit.Unit
	CapHeight unit.Unit
	XHeight   unit.Unit
}

// Measurement is the result of measuring one string.
type Measurement struct {
	// Advances holds one advance width per rune of the measured string.
	Advances []unit.Unit
	Width    unit.Unit
	Metrics  Metrics
}

// Measurer returns advance widths and vertical metrics. Implementations must
// be deterministic; an error aborts the layout pass.
type Measurer interface {
	Measure(s string, f Font) (Measurement, error)
}

// Width is a convenience returning only the advance width of s.
func Width(m Measurer, s string, f Font) (unit.Unit, error) {
	r, err := m.Measure(s, f)
	if err != nil {
		return 0, err
	}
	return r.Width, nil
}

// Package texttest provides a deterministic Measurer for layout tests.
package texttest

import (
	"errors"
	"fmt"

	"github.com/gompdf/pageflow/internal/text"
	"github.com/gompdf/pageflow/internal/unit"
)

// Metrics of the fake font, in em.
const (
	Advance      = 0.5
	SpaceAdvance = 0.25
	Ascent       = 0.8
	Descent      = 0.2
)

// ErrMeasure is returned for the family configured in Measurer.Fail.
var ErrMeasure = errors.New("texttest: measure failed")

// Measurer advances every rune by half an em and spaces by a quarter em.
type Measurer struct {
	// Fail makes Measure return ErrMeasure for this family.
	Fail string
	// Calls counts Measure invocations.
	Calls int
}

// Measure implements text.Measurer.
func (m *Measurer) Measure(s string, f text.Font) (text.Measurement, error) {
	m.Calls++
	if m.Fail != "" && f.Family == m.Fail {
		return text.Measurement{}, fmt.Errorf("%w: %s", ErrMeasure, f.Family)
	}
	res := text.Measurement{Advances: make([]unit.Unit, 0, len(s))}
	for _, r := range s {
		adv := f.Size * Advance
		if r == ' ' {
			adv = f.Size * SpaceAdvance
		}
		res.Advances = append(res.Advances, adv)
		res.Width += adv
	}
	res.Metrics = text.Metrics{
		Ascent:    f.Size * Ascent,
		Descent:   f.Size * Descent,
		CapHeight: f.Size * 0.7,
		XHeight:   f.Size * 0.5,
	}
	return res, nil
}

// Width returns the width of s at the given size under this measurer.
func Width(s string, size unit.Unit) unit.Unit {
	var w unit.Unit
	for _, r := range s {
		if r == ' ' {
			w += size * SpaceAdvance
		} else {
			w += size * Advance
		}
	}
	return w
}

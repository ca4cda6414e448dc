// Package unit provides the length type used throughout layout. Every value is
// stored in PDF points (1/72 inch) so arithmetic never mixes scales.
package unit

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// Unit is a length in points.
type Unit float64

// Scale factors, expressed in points.
const (
	Point      Unit = 1
	Pica       Unit = 12
	Inch       Unit = 72
	Millimeter Unit = 72 / 25.4
	Centimeter Unit = 72 / 2.54
	Pixel      Unit = 0.75
)

// Zero is the zero length.
const Zero Unit = 0

// ErrInvalidLength is returned by Parse for malformed input.
var ErrInvalidLength = errors.New("unit: invalid length")

// Pt returns v points.
func Pt(v float64) Unit { return Unit(v) }

// Mm returns v millimeters.
func Mm(v float64) Unit { return Unit(v) * Millimeter }

// In returns v inches.
func In(v float64) Unit { return Unit(v) * Inch }

// Px returns v CSS pixels.
func Px(v float64) Unit { return Unit(v) * Pixel }

// Points returns the value in points.
func (u Unit) Points() float64 { return float64(u) }

// Millimeters returns the value in millimeters.
func (u Unit) Millimeters() float64 { return float64(u / Millimeter) }

// Inches returns the value in inches.
func (u Unit) Inches() float64 { return float64(u / Inch) }

// Round rounds to the given number of decimal places (in points).
func (u Unit) Round(places int) Unit {
	p := math.Pow(10, float64(places))
	return Unit(math.Round(float64(u)*p) / p)
}

// Abs returns the absolute value.
func (u Unit) Abs() Unit { return Unit(math.Abs(float64(u))) }

// String formats the value in points.
func (u Unit) String() string {
	return strconv.FormatFloat(float64(u), 'f', -1, 64) + "pt"
}

// Min returns the smaller of a and b.
func Min(a, b Unit) Unit {
	if a < b {
		return a
	}
	return b
}

// Max returns the larger of a and b.
func Max(a, b Unit) Unit {
	if a > b {
		return a
	}
	return b
}

// Epsilon is the tolerance used when comparing layout positions.
const Epsilon Unit = 1e-6

// Equal reports whether a and b differ by less than eps.
func Equal(a, b, eps Unit) bool {
	return (a - b).Abs() < eps
}

// Parse converts a CSS-like length into points. Relative units resolve against
// fontSize (em) and percentBase (%). A bare number is taken as points.
func Parse(s string, fontSize, percentBase Unit) (Unit, error) {
	v := strings.ToLower(strings.TrimSpace(s))
	if v == "" {
		return 0, ErrInvalidLength
	}
	suffixes := []struct {
		suffix string
		scale  Unit
	}{
		{"rem", 12},
		{"em", fontSize},
		{"pt", Point},
		{"pc", Pica},
		{"mm", Millimeter},
		{"cm", Centimeter},
		{"in", Inch},
		{"px", Pixel},
		{"%", percentBase / 100},
	}
	scale := Point
	for _, sf := range suffixes {
		if strings.HasSuffix(v, sf.suffix) {
			v = strings.TrimSpace(strings.TrimSuffix(v, sf.suffix))
			scale = sf.scale
			break
		}
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: %q", ErrInvalidLength, s)
	}
	return Unit(f) * scale, nil
}

// MustParse is Parse for constants known to be valid; it panics otherwise.
func MustParse(s string) Unit {
	u, err := Parse(s, 12, 0)
	if err != nil {
		panic(err)
	}
	return u
}

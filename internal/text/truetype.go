package text

import (
	"fmt"
	"strings"
	"sync"

	"github.com/fogleman/gg"
	"github.com/gompdf/pageflow/internal/unit"
	"golang.org/x/image/font"
	"golang.org/x/image/math/fixed"
)

// faceSize is the size faces are loaded at; measurements are scaled from it.
const faceSize = 1000

// FontFile registers a TrueType file for one face of a family.
type FontFile struct {
	Family string
	Bold   bool
	Italic bool
	Path   string
}

// TrueTypeMeasurer measures registered TrueType fonts and hands every other
// family to a fallback measurer. font.Face values are not safe for
// concurrent use, so lookups are serialised.
type TrueTypeMeasurer struct {
	fallback Measurer

	mu    sync.Mutex
	faces map[faceKey]font.Face
	files []FontFile
}

// NewTrueTypeMeasurer returns a measurer delegating unknown families to
// fallback.
func NewTrueTypeMeasurer(fallback Measurer) *TrueTypeMeasurer {
	return &TrueTypeMeasurer{
		fallback: fallback,
		faces:    make(map[faceKey]font.Face),
	}
}

// Register loads a font file.
func (m *TrueTypeMeasurer) Register(ff FontFile) error {
	face, err := gg.LoadFontFace(ff.Path, faceSize)
	if err != nil {
		return fmt.Errorf("text: load font %s: %w", ff.Path, err)
	}
	key := faceKey{family: strings.ToLower(ff.Family), style: Font{Bold: ff.Bold, Italic: ff.Italic}.StyleString()}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.faces[key] = face
	m.files = append(m.files, ff)
	return nil
}

// Files returns the registered font files in registration order.
func (m *TrueTypeMeasurer) Files() []FontFile {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]FontFile(nil), m.files...)
}

// Has reports whether f resolves to a registered face.
func (m *TrueTypeMeasurer) Has(f Font) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.lookup(f) != nil
}

// lookup finds the face for f, preferring the exact style and falling back
// to the regular face of the family.
func (m *TrueTypeMeasurer) lookup(f Font) font.Face {
	family := strings.ToLower(f.Family)
	if face, ok := m.faces[faceKey{family: family, style: f.StyleString()}]; ok {
		return face
	}
	return m.faces[faceKey{family: family}]
}

// Measure implements Measurer.
func (m *TrueTypeMeasurer) Measure(s string, f Font) (Measurement, error) {
	m.mu.Lock()
	face := m.lookup(f)
	if face == nil {
		m.mu.Unlock()
		if m.fallback == nil {
			return Measurement{}, fmt.Errorf("%w: %q", ErrUnknownFont, f.Family)
		}
		return m.fallback.Measure(s, f)
	}
	defer m.mu.Unlock()

	scale := f.Size / faceSize
	res := Measurement{Advances: make([]unit.Unit, 0, len(s))}
	prev := rune(-1)
	for _, r := range s {
		adv, ok := face.GlyphAdvance(r)
		if !ok {
			adv, _ = face.GlyphAdvance('?')
		}
		if prev >= 0 {
			adv += face.Kern(prev, r)
		}
		w := fixedToUnit(adv) * scale
		res.Advances = append(res.Advances, w)
		res.Width += w
		prev = r
	}

	fm := face.Metrics()
	res.Metrics = Metrics{
		Ascent:    fixedToUnit(fm.Ascent) * scale,
		Descent:   fixedToUnit(fm.Descent) * scale,
		CapHeight: fixedToUnit(fm.CapHeight) * scale,
		XHeight:   fixedToUnit(fm.XHeight) * scale,
	}
	if gap := fixedToUnit(fm.Height)*scale - res.Metrics.Ascent - res.Metrics.Descent; gap > 0 {
		res.Metrics.LineGap = gap
	}
	return res, nil
}

func fixedToUnit(v fixed.Int26_6) unit.Unit {
	return unit.Unit(v) / 64
}

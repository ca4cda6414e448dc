package text

import (
	"fmt"
	"io"
	"log/slog"
	"strings"
	"sync"

	"codeberg.org/go-pdf/fpdf"
	"github.com/gompdf/pageflow/internal/unit"
)

// afm holds the vertical metrics of the standard 14 fonts in 1/1000 em.
// fpdf only ships advance widths for them.
type afm struct {
	ascent, descent, capHeight, xHeight int
}

var coreMetrics = map[string]afm{
	"Helvetica": {718, -207, 718, 523},
	"Times":     {683, -217, 662, 450},
	"Courier":   {629, -157, 562, 426},
}

// coreFamily maps CSS-like family names to core PDF fonts.
func coreFamily(family string) (string, error) {
	switch strings.ToLower(strings.TrimSpace(family)) {
	case "", "helvetica", "arial", "sans-serif", "sans":
		return "Helvetica", nil
	case "times", "times new roman", "times-roman", "serif":
		return "Times", nil
	case "courier", "courier new", "monospace", "mono":
		return "Courier", nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownFont, family)
}

type faceKey struct {
	family string
	style  string
}

// CoreMeasurer measures text with the metrics of the PDF core fonts. It keeps
// one fpdf instance for width lookups; calls are serialised.
type CoreMeasurer struct {
	logger *slog.Logger

	mu        sync.Mutex
	pdf       *fpdf.Fpdf
	translate func(string) string
	widths    map[faceKey]map[rune]int
	warned    map[string]bool
}

// NewCoreMeasurer creates a measurer for the core fonts. A nil logger
// discards fallback warnings.
func NewCoreMeasurer(logger *slog.Logger) *CoreMeasurer {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	pdf := fpdf.New("P", "pt", "", "")
	pdf.SetFont("Helvetica", "", 1000)
	return &CoreMeasurer{
		logger:    logger,
		pdf:       pdf,
		translate: pdf.UnicodeTranslatorFromDescriptor(""),
		widths:    make(map[faceKey]map[rune]int),
		warned:    make(map[string]bool),
	}
}

// Resolve returns the core family used for f, substituting the fallback
// family for unknown names.
func (m *CoreMeasurer) Resolve(f Font) string {
	family, err := coreFamily(f.Family)
	if err != nil {
		m.mu.Lock()
		if !m.warned[f.Family] {
			m.warned[f.Family] = true
			m.logger.Warn("font fallback", "family", f.Family, "substitute", FallbackFamily, "err", err)
		}
		m.mu.Unlock()
		return FallbackFamily
	}
	return family
}

// Measure implements Measurer.
func (m *CoreMeasurer) Measure(s string, f Font) (Measurement, error) {
	family := m.Resolve(f)
	key := faceKey{family: family, style: f.StyleString()}

	m.mu.Lock()
	defer m.mu.Unlock()

	table := m.widths[key]
	if table == nil {
		table = make(map[rune]int)
		m.widths[key] = table
	}

	scale := f.Size / 1000
	res := Measurement{Advances: make([]unit.Unit, 0, len(s))}
	for _, r := range s {
		w, ok := table[r]
		if !ok {
			m.pdf.SetFont(family, key.style, 1000)
			w = m.pdf.GetStringSymbolWidth(m.translate(string(r)))
			if err := m.pdf.Error(); err != nil {
				return Measurement{}, fmt.Errorf("text: measure %q in %s: %w", r, family, err)
			}
			table[r] = w
		}
		adv := unit.Unit(w) * scale
		res.Advances = append(res.Advances, adv)
		res.Width += adv
	}

	a := coreMetrics[family]
	res.Metrics = Metrics{
		Ascent:    unit.Unit(a.ascent) * scale,
		Descent:   unit.Unit(-a.descent) * scale,
		CapHeight: unit.Unit(a.capHeight) * scale,
		XHeight:   unit.Unit(a.xHeight) * scale,
	}
	return res, nil
}

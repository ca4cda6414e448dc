// Package pagination resolves paper sizes and the page setup of sections.
package pagination

import (
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"

	"codeberg.org/go-pdf/fpdf"
	"github.com/gompdf/pageflow/internal/unit"
)

// ErrUnknownPaperSize is returned for paper names missing from the table.
var ErrUnknownPaperSize = errors.New("pagination: unknown paper size")

// PageSize represents a paper size in points (1/72 inch), portrait.
type PageSize struct {
	Width  unit.Unit
	Height unit.Unit
	Name   string
}

// fpdfSizes are the names fpdf has a size table for.
var fpdfSizes = []string{"A1", "A2", "A3", "A4", "A5", "A6", "A7", "Letter", "Legal", "Tabloid"}

// Sizes fpdf does not know about.
var extraSizes = map[string]PageSize{
	"a0":        {Width: 2383.94, Height: 3370.39, Name: "A0"},
	"b4":        {Width: 708.66, Height: 1000.63, Name: "B4"},
	"b5":        {Width: 498.90, Height: 708.66, Name: "B5"},
	"executive": {Width: 521.86, Height: 756.00, Name: "Executive"},
}

var (
	tableOnce sync.Once
	table     map[string]PageSize
)

func initTable() {
	table = make(map[string]PageSize, len(fpdfSizes)+len(extraSizes))
	// fpdf's table is only reachable through an instance; with "pt" as the
	// unit its sizes come back in points.
	pdf := fpdf.New("P", "pt", "A4", "")
	for _, name := range fpdfSizes {
		sz := pdf.GetPageSizeStr(name)
		table[strings.ToLower(name)] = PageSize{Width: unit.Unit(sz.Wd), Height: unit.Unit(sz.Ht), Name: name}
	}
	for key, sz := range extraSizes {
		table[key] = sz
	}
}

// SizeOf returns the portrait size of a named paper.
func SizeOf(name string) (PageSize, error) {
	tableOnce.Do(initTable)
	sz, ok := table[strings.ToLower(strings.TrimSpace(name))]
	if !ok {
		return PageSize{}, fmt.Errorf("%w: %q", ErrUnknownPaperSize, name)
	}
	return sz, nil
}

// Names lists the known paper names, sorted.
func Names() []string {
	tableOnce.Do(initTable)
	names := make([]string, 0, len(table))
	for _, sz := range table {
		names = append(names, sz.Name)
	}
	sort.Strings(names)
	return names
}

// Landscape returns the size with width and height swapped so that the
// longer edge is horizontal.
func (p PageSize) Landscape() PageSize {
	if p.Width >= p.Height {
		return p
	}
	return PageSize{Width: p.Height, Height: p.Width, Name: p.Name}
}

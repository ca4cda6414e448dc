package layout

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"github.com/gompdf/pageflow/internal/unit"
)

// Dump writes a deterministic, indented description of the layout to w.
// Numbers are rounded to two decimals.
func (d *Document) Dump(w io.Writer) error {
	bw := bufio.NewWriter(w)
	dd := dumper{d: d, w: bw}
	for _, page := range d.Pages {
		name := page.Setup.Name
		if name == "" {
			name = "-"
		}
		dd.printf(0, "page %d name=%s paper=%s size=%sx%s\n", page.Index, name, orDash(page.Setup.Paper), num(page.Width), num(page.Height))
		if page.ContentBlock != NoBlock {
			dd.block(1, page.ContentBlock)
		}
	}
	return bw.Flush()
}

type dumper struct {
	d *Document
	w *bufio.Writer
}

func (dd dumper) printf(depth int, format string, args ...any) {
	dd.w.WriteString(strings.Repeat("  ", depth))
	fmt.Fprintf(dd.w, format, args...)
}

func (dd dumper) block(depth int, id BlockID) {
	b := dd.d.Block(id)
	dd.printf(depth, "block %d owner=%d repeat=%d bounds=%s abs=%s\n", id, b.Owner, b.RepeatIndex, rect(b.Bounds), rect(b.Abs))
	for i, col := range b.Columns {
		dd.printf(depth+1, "column %d bounds=%s\n", i, rect(col.Bounds))
		for _, c := range col.Contents {
			if c.Kind == ContentBlock {
				dd.block(depth+2, c.Block)
				continue
			}
			dd.line(depth+2, c.Line)
		}
	}
	for _, rid := range b.Positioned {
		dd.region(depth+1, rid)
	}
}

func (dd dumper) line(depth int, id LineID) {
	l := dd.d.Line(id)
	dd.printf(depth, "line %d bounds=%s base=%s below=%s avail=%s full=%s", id, rect(l.Bounds),
		num(l.BaseLineOffset), num(l.BaseLineToBottom), num(l.AvailableWidth), num(l.FullWidth))
	if l.Spacing != nil {
		fmt.Fprintf(dd.w, " wordspace=%s", num(l.Spacing.WordSpace))
	}
	dd.w.WriteByte('\n')
	for _, r := range l.Runs {
		dd.printf(depth+1, "%s", r.Kind)
		switch r.Kind {
		case RunTextBegin, RunNewLine:
			fmt.Fprintf(dd.w, " cursor=(%s,%s)", num(r.Cursor.Width), num(r.Cursor.Height))
		case RunCharacters:
			fmt.Fprintf(dd.w, " %q width=%s", r.Chars, num(r.Width))
		case RunInlineBegin, RunInlineEnd, RunSpacer:
			fmt.Fprintf(dd.w, " owner=%d", r.Owner)
		case RunComponent:
			fmt.Fprintf(dd.w, " owner=%d src=%q at=(%s,%s) size=%sx%s", r.Owner, r.Src, num(r.X), num(r.Y), num(r.Width), num(r.Height))
		case RunInlineBlock, RunPositionedRegion:
			fmt.Fprintf(dd.w, " region=%d", r.Region)
		}
		if r.Options != nil {
			o := r.Options
			fmt.Fprintf(dd.w, " font=%s/%s/%s", o.Font.Family, orDash(o.Font.StyleString()), num(o.Font.Size))
		}
		dd.w.WriteByte('\n')
	}
}

func (dd dumper) region(depth int, id RegionID) {
	r := dd.d.Region(id)
	dd.printf(depth, "region %d %s owner=%d bounds=%s abs=%s", id, r.Kind, r.Owner, rect(r.TotalBounds), rect(r.Abs))
	if r.Label != "" {
		fmt.Fprintf(dd.w, " label=%q", r.Label)
	}
	dd.w.WriteByte('\n')
	for _, b := range r.Contents {
		dd.block(depth+1, b)
	}
}

func num(u unit.Unit) string {
	return fmt.Sprintf("%.2f", u.Round(2).Points())
}

func rect(r Rect) string {
	return fmt.Sprintf("(%s,%s %sx%s)", num(r.X), num(r.Y), num(r.Width), num(r.Height))
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}

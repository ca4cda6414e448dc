package layout

import (
	"fmt"
	"strings"
	"testing"

	"github.com/gompdf/pageflow/internal/content"
	"github.com/gompdf/pageflow/internal/text/texttest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func linesOf(t *testing.T, d *Document, n *content.Node) []*Line {
	t.Helper()
	blocks := d.Blocks(n.ID)
	require.NotEmpty(t, blocks)
	var out []*Line
	for _, b := range blocks {
		out = append(out, d.Lines(b.ID)...)
	}
	return out
}

func TestInlineSingleLine(t *testing.T) {
	p := content.P(content.Text("Hello world"))
	d := layoutTree(t, content.Doc(p), page(300, 100))

	lines := linesOf(t, d, p)
	require.Len(t, lines, 1)
	l := lines[0]
	assert.InDelta(t, 14.4, l.Height.Points(), eps)
	assert.InDelta(t, 10.8, l.BaseLineOffset.Points(), eps)
	assert.InDelta(t, 3.6, l.BaseLineToBottom.Points(), eps)
	assert.InDelta(t, l.Height.Points(), (l.BaseLineOffset + l.BaseLineToBottom).Points(), eps)
	assert.InDelta(t, 300, l.AvailableWidth.Points(), eps)
	assert.InDelta(t, 63, l.FullWidth.Points(), eps)
	assert.Nil(t, l.Spacing)

	require.Equal(t, []RunKind{RunTextBegin, RunCharacters, RunTextEnd}, kinds(l))
	assert.InDelta(t, 0, l.Runs[0].Cursor.Width.Points(), eps)
	assert.InDelta(t, 10.8, l.Runs[0].Cursor.Height.Points(), eps)
	assert.Equal(t, "Hello world", l.Runs[1].Chars)
	assert.InDelta(t, 63, l.Runs[1].Width.Points(), eps)
	assert.NotNil(t, l.Runs[1].Options)
}

func TestInlineWrapKeepsTextOpen(t *testing.T) {
	p := content.P(content.Text("aaaa bbbb cccc"))
	d := layoutTree(t, content.Doc(p), page(60, 100))

	lines := linesOf(t, d, p)
	require.Len(t, lines, 2)
	assert.Equal(t, []RunKind{RunTextBegin, RunCharacters}, kinds(lines[0]))
	assert.Equal(t, "aaaa bbbb", lines[0].Runs[1].Chars)
	assert.InDelta(t, 51, lines[0].FullWidth.Points(), eps)

	assert.Equal(t, []RunKind{RunNewLine, RunCharacters, RunTextEnd}, kinds(lines[1]))
	assert.InDelta(t, 0, lines[1].Runs[0].Cursor.Width.Points(), eps)
	// Bottom of the previous line plus the baseline of this one.
	assert.InDelta(t, 14.4, lines[1].Runs[0].Cursor.Height.Points(), eps)
	assert.InDelta(t, 14.4, lines[1].Bounds.Y.Points(), eps)
	assert.InDelta(t, 14.4, lines[1].Abs.Y.Points(), eps)
}

func TestInlineAlignment(t *testing.T) {
	tests := []struct {
		align  string
		inset  float64
		spaces float64
	}{
		{"left", 0, 0},
		{"right", 9, 0},
		{"center", 4.5, 0},
		{"justify", 0, 9},
	}
	for _, tt := range tests {
		t.Run(tt.align, func(t *testing.T) {
			p := content.P(content.Text("aaaa bbbb cccc")).Styled("text-align: " + tt.align)
			d := layoutTree(t, content.Doc(p), page(60, 100))
			lines := linesOf(t, d, p)
			require.Len(t, lines, 2)
			assert.InDelta(t, tt.inset, lines[0].Runs[0].Cursor.Width.Points(), eps)
			if tt.align != "justify" {
				assert.Nil(t, lines[0].Spacing)
				return
			}
			require.NotNil(t, lines[0].Spacing)
			assert.InDelta(t, tt.spaces, lines[0].Spacing.WordSpace.Points(), eps)
			// The last line is never stretched.
			require.NotNil(t, lines[1].Spacing)
			assert.Zero(t, lines[1].Spacing.WordSpace)
		})
	}
}

func TestInlineJustifyWordSpace(t *testing.T) {
	// Natural width 165 with three spaces on a 195pt line.
	p := content.P(content.Text("aaaaaaa aaaaaaa aaaaaa aaaaaa zzzzz zz")).Styled("text-align: justify")
	d := layoutTree(t, content.Doc(p), page(195, 100))
	lines := linesOf(t, d, p)
	require.Len(t, lines, 2)
	assert.InDelta(t, 165, lines[0].FullWidth.Points(), eps)
	require.NotNil(t, lines[0].Spacing)
	assert.InDelta(t, 10, lines[0].Spacing.WordSpace.Points(), eps)

	// The last line has a space to stretch but stays at its natural width.
	assert.InDelta(t, 45, lines[1].FullWidth.Points(), eps)
	require.NotNil(t, lines[1].Spacing)
	assert.Zero(t, lines[1].Spacing.WordSpace)
}

func TestInlineForcedBreak(t *testing.T) {
	p := content.P(content.Text("ab\ncd"), content.LineBreak(), content.Text("ef")).Styled("text-align: justify")
	d := layoutTree(t, content.Doc(p), page(300, 100))

	lines := linesOf(t, d, p)
	require.Len(t, lines, 3)
	assert.Equal(t, []RunKind{RunTextBegin, RunCharacters, RunSpacer}, kinds(lines[0]))
	assert.Equal(t, []RunKind{RunNewLine, RunCharacters, RunSpacer}, kinds(lines[1]))
	assert.Equal(t, []RunKind{RunNewLine, RunCharacters, RunTextEnd}, kinds(lines[2]))
	for _, l := range lines {
		assert.Zero(t, l.Spacing.WordSpace)
	}
}

func TestInlineEmptyLineUsesStrut(t *testing.T) {
	p := content.P(content.Text("a"), content.LineBreak(), content.LineBreak(), content.Text("b"))
	d := layoutTree(t, content.Doc(p), page(300, 100))

	lines := linesOf(t, d, p)
	require.Len(t, lines, 3)
	assert.Equal(t, []RunKind{RunSpacer}, kinds(lines[1]))
	assert.InDelta(t, 14.4, lines[1].Height.Points(), eps)
	assert.Equal(t, RunTextEnd, lines[0].Runs[len(lines[0].Runs)-1].Kind)
	assert.Equal(t, RunTextBegin, lines[2].Runs[0].Kind)
}

func TestInlineLineHeightIsMaxOfRuns(t *testing.T) {
	span := content.Span(content.Text("cd")).Styled("font-size: 24pt")
	p := content.P(content.Text("ab "), span)
	d := layoutTree(t, content.Doc(p), page(300, 100))

	lines := linesOf(t, d, p)
	require.Len(t, lines, 1)
	l := lines[0]
	assert.InDelta(t, 28.8, l.Height.Points(), eps)
	assert.InDelta(t, 21.6, l.BaseLineOffset.Points(), eps)
	require.Equal(t, []RunKind{RunTextBegin, RunCharacters, RunInlineBegin, RunCharacters, RunInlineEnd, RunTextEnd}, kinds(l))
	assert.Equal(t, "ab ", l.Runs[1].Chars)
	assert.Equal(t, "cd", l.Runs[3].Chars)
	assert.InDelta(t, 24, l.Runs[3].Width.Points(), eps)
	assert.InDelta(t, 24, l.Runs[2].Options.Font.Size.Points(), eps)
	assert.InDelta(t, 12, l.Runs[4].Options.Font.Size.Points(), eps)
}

func TestInlineNodesAreArranged(t *testing.T) {
	lead := content.Text("ab ")
	span := content.Span(content.Text("cd"))
	p := content.P(lead, span)
	d := layoutTree(t, content.Doc(p), page(300, 100))

	a, ok := d.FirstArrangement(span.ID)
	require.True(t, ok)
	assert.Equal(t, 0, a.Page)
	assert.Equal(t, NoBlock, a.Block)
	assert.NotNil(t, a.Style)
	assert.InDelta(t, 15, a.RenderBounds.X.Points(), eps)
	assert.InDelta(t, 0, a.RenderBounds.Y.Points(), eps)
	assert.InDelta(t, 12, a.RenderBounds.Width.Points(), eps)
	assert.InDelta(t, 14.4, a.RenderBounds.Height.Points(), eps)

	a, ok = d.FirstArrangement(lead.ID)
	require.True(t, ok)
	assert.InDelta(t, 0, a.RenderBounds.X.Points(), eps)
	assert.InDelta(t, 15, a.RenderBounds.Width.Points(), eps)
}

func TestInlineNodeSplitAcrossPages(t *testing.T) {
	span := content.Span(content.Text("aaaa bbbb cccc"))
	d := layoutTree(t, content.Doc(content.P(span)), page(30, 30))

	require.Len(t, d.Pages, 2)
	arrs := d.Arrangements(span.ID)
	require.Len(t, arrs, 3)
	for i, want := range []int{0, 0, 1} {
		assert.Equal(t, want, arrs[i].Page)
		assert.Equal(t, i, arrs[i].RepeatIndex)
		assert.InDelta(t, 24, arrs[i].RenderBounds.Width.Points(), eps)
	}
	assert.InDelta(t, 14.4, arrs[1].RenderBounds.Y.Points(), eps)
	assert.InDelta(t, 0, arrs[2].RenderBounds.Y.Points(), eps)
}

func TestInlineItemsAreMeasuredOncePerPass(t *testing.T) {
	words := make([]string, 20)
	for i := range words {
		words[i] = "ab"
	}
	p := content.P(content.Text(strings.Join(words, " ")))
	m := &texttest.Measurer{}
	d, err := NewEngine(Options{Measurer: m, Page: page(20, 30)}).Layout(content.MustDocument(content.Doc(p)))
	require.NoError(t, err)

	require.Len(t, d.Pages, 10)
	assert.Len(t, d.Blocks(p.ID), 10)
	// One measurement per word plus the space, however many fragments.
	assert.Equal(t, len(words)+1, m.Calls)
}

func TestInlineExplicitLeading(t *testing.T) {
	p := content.P(content.Text("ab")).Styled("line-height: 20pt")
	d := layoutTree(t, content.Doc(p), page(300, 100))
	l := linesOf(t, d, p)[0]
	assert.InDelta(t, 20, l.Height.Points(), eps)
	assert.InDelta(t, 13.6, l.BaseLineOffset.Points(), eps)
}

func TestInlineHyphenation(t *testing.T) {
	p := content.P(content.Text("abcdefghijklmn")).Styled("hyphens: auto")
	d := layoutTree(t, content.Doc(p), page(60, 100))

	lines := linesOf(t, d, p)
	require.Len(t, lines, 2)
	assert.Equal(t, "abcdefghi-", lines[0].Runs[1].Chars)
	assert.InDelta(t, 60, lines[0].FullWidth.Points(), eps)
	assert.Equal(t, "jklmn", lines[1].Runs[1].Chars)
}

func TestInlineOverlongWordOverflows(t *testing.T) {
	p := content.P(content.Text("abcdefghijklmn xy"))
	d := layoutTree(t, content.Doc(p), page(60, 100))

	lines := linesOf(t, d, p)
	require.Len(t, lines, 2)
	assert.Equal(t, "abcdefghijklmn", lines[0].Runs[1].Chars)
	assert.InDelta(t, 84, lines[0].FullWidth.Points(), eps)
}

func TestInlineNoBreakBetweenGluedWords(t *testing.T) {
	p := content.P(content.Text("x "), content.Text("aa"), content.Span(content.Text("bb")))
	d := layoutTree(t, content.Doc(p), page(20, 100))

	lines := linesOf(t, d, p)
	require.Len(t, lines, 2)
	assert.InDelta(t, 6, lines[0].FullWidth.Points(), eps)
	assert.InDelta(t, 24, lines[1].FullWidth.Points(), eps)
	// The span opens on the line that holds its text.
	assert.NotContains(t, kinds(lines[0]), RunInlineBegin)
	assert.Contains(t, kinds(lines[1]), RunInlineBegin)
}

func TestInlineBlockVerticalAlign(t *testing.T) {
	tests := []struct {
		valign      string
		height      float64
		lineH, base float64
		y           float64
	}{
		{"baseline", 10, 14.4, 10.8, 0.8},
		{"baseline", 40, 43.6, 40, 0},
		{"top", 40, 40, 10.8, 0},
		{"bottom", 40, 40, 36.4, 0},
		{"middle", 10, 14.4, 10.8, 2.2},
		{"middle", 40, 40, 23.6, 0},
	}
	for _, tt := range tests {
		t.Run(fmt.Sprintf("%s-%v", tt.valign, tt.height), func(t *testing.T) {
			box := content.Span().Styled(fmt.Sprintf("display: inline-block; width: 20pt; height: %vpt; vertical-align: %s", tt.height, tt.valign))
			p := content.P(content.Text("ab "), box)
			d := layoutTree(t, content.Doc(p), page(300, 200))

			lines := linesOf(t, d, p)
			require.Len(t, lines, 1)
			assert.InDelta(t, tt.lineH, lines[0].Height.Points(), eps)
			assert.InDelta(t, tt.base, lines[0].BaseLineOffset.Points(), eps)

			regions := regionsOf(d, p, RegionInlineBlock)
			require.Len(t, regions, 1)
			r := regions[0]
			assert.Equal(t, lines[0].ID, r.Anchor.Line)
			assert.InDelta(t, 15, r.TotalBounds.X.Points(), eps)
			assert.InDelta(t, tt.y, r.TotalBounds.Y.Points(), eps)
			assert.InDelta(t, 20, r.TotalBounds.Width.Points(), eps)

			a, ok := d.FirstArrangement(box.ID)
			require.True(t, ok)
			assert.Equal(t, r.ID, lines[0].Runs[len(lines[0].Runs)-1].Region)
			assert.InDelta(t, 15, a.RenderBounds.X.Points(), eps)
		})
	}
}

func TestInlineBlockShrinksToFit(t *testing.T) {
	box := content.Span(content.Text("abc")).Styled("display: inline-block; padding: 2pt")
	p := content.P(box, content.Text(" tail"))
	d := layoutTree(t, content.Doc(p), page(300, 100))

	regions := regionsOf(d, p, RegionInlineBlock)
	require.Len(t, regions, 1)
	assert.InDelta(t, 22, regions[0].TotalBounds.Width.Points(), eps)
	assert.InDelta(t, 18.4, regions[0].TotalBounds.Height.Points(), eps)
	// Text resumes after the box with a fresh text object.
	l := linesOf(t, d, p)[0]
	assert.Equal(t, []RunKind{RunInlineBlock, RunTextBegin, RunCharacters, RunTextEnd}, kinds(l))
	assert.InDelta(t, 22, l.Runs[1].Cursor.Width.Points(), eps)
}

func TestInlineCharacterAndWordSpacing(t *testing.T) {
	p := content.P(content.Text("ab cd")).Styled("letter-spacing: 1pt; word-spacing: 2pt")
	d := layoutTree(t, content.Doc(p), page(300, 100))
	l := linesOf(t, d, p)[0]
	// Four glyphs at 6+1, one space at 3+1+2.
	assert.InDelta(t, 34, l.FullWidth.Points(), eps)
	assert.InDelta(t, 1, l.Runs[1].Options.CharSpace.Points(), eps)
	assert.InDelta(t, 2, l.Runs[1].Options.WordSpace.Points(), eps)
}

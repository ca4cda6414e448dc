package numbering

import (
	"fmt"
	"testing"

	"github.com/gompdf/pageflow/internal/content"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFormat(t *testing.T) {
	tests := []struct {
		n     int
		style Style
		want  string
	}{
		{1, Decimal, "1"},
		{42, Decimal, "42"},
		{1, UppercaseLetters, "A"},
		{26, UppercaseLetters, "Z"},
		{27, UppercaseLetters, "AA"},
		{52, LowercaseLetters, "az"},
		{703, LowercaseLetters, "aaa"},
		{4, UppercaseRoman, "IV"},
		{1994, UppercaseRoman, "MCMXCIV"},
		{3999, UppercaseRoman, "MMMCMXCIX"},
		{9, LowercaseRoman, "ix"},
		{7, Bullet, "•"},
		{7, None, ""},
		{0, UppercaseRoman, "0"},
	}
	for _, tt := range tests {
		t.Run(fmt.Sprintf("%s/%d", tt.style, tt.n), func(t *testing.T) {
			assert.Equal(t, tt.want, Format(tt.n, tt.style))
		})
	}
}

func TestFormatDecodeRoundTrip(t *testing.T) {
	for _, style := range []Style{Decimal, UppercaseLetters, LowercaseLetters, UppercaseRoman, LowercaseRoman} {
		for n := 1; n <= 5000; n++ {
			got, err := Decode(Format(n, style), style)
			require.NoError(t, err, "style %s n %d", style, n)
			require.Equal(t, n, got, "style %s", style)
		}
	}
}

func TestDecodeRejectsInvalidLabels(t *testing.T) {
	for _, tc := range []struct {
		label string
		style Style
	}{
		{"", UppercaseLetters},
		{"a", UppercaseLetters},
		{"IIII", UppercaseRoman},
		{"VX", UppercaseRoman},
		{"Iv", LowercaseRoman},
		{"x1", Decimal},
		{"•", Bullet},
	} {
		_, err := Decode(tc.label, tc.style)
		assert.ErrorIs(t, err, ErrInvalidLabel, tc.label)
	}
}

func TestParseStyle(t *testing.T) {
	s, ok := ParseStyle("Lower-Roman")
	assert.True(t, ok)
	assert.Equal(t, LowercaseRoman, s)
	s, ok = ParseStyle("circle")
	assert.True(t, ok)
	assert.Equal(t, Bullet, s)
	_, ok = ParseStyle("klingon")
	assert.False(t, ok)
}

func TestContextNumbersItemsOnce(t *testing.T) {
	c := NewContext()
	c.Begin(1, Settings{Style: Decimal}, content.NoNode)
	for i := 0; i < 5; i++ {
		l := c.Next(1, content.NodeID(10+i))
		assert.Equal(t, fmt.Sprint(i+1), l.Text)
	}
	// Resuming the list after a break must not renumber or restart it.
	c.Begin(1, Settings{Style: Decimal}, content.NoNode)
	assert.Equal(t, "3", c.Next(1, 12).Text)
	assert.Equal(t, "6", c.Next(1, 15).Text)
	l, ok := c.Label(13)
	require.True(t, ok)
	assert.Equal(t, 4, l.Number)
}

func TestContextPrefixPostfixAndStart(t *testing.T) {
	c := NewContext()
	c.Begin(1, Settings{Style: UppercaseLetters, Prefix: "(", Postfix: ")", Start: 3, HasStart: true}, content.NoNode)
	assert.Equal(t, "(C)", c.Next(1, 2).Text)
	assert.Equal(t, "D", c.Next(1, 3).Core)
}

func TestContextConcatenatesParentLabel(t *testing.T) {
	c := NewContext()
	c.Begin(1, Settings{Style: Decimal}, content.NoNode)
	c.Next(1, 2)
	parent := c.Next(1, 3)
	require.Equal(t, "2", parent.Text)

	c.Begin(4, Settings{Style: LowercaseRoman, Prefix: ".", Concatenate: true}, 3)
	var got []string
	for i := 0; i < 5; i++ {
		got = append(got, c.Next(4, content.NodeID(5+i)).Text)
	}
	assert.Equal(t, []string{"2.i", "2.ii", "2.iii", "2.iv", "2.v"}, got)

	c.Begin(20, Settings{Style: UppercaseLetters, Prefix: "-", Postfix: ")", Concatenate: true}, 6)
	assert.Equal(t, "2.ii-A)", c.Next(20, 21).Text)
}

func TestContextGroupsShareCounter(t *testing.T) {
	c := NewContext()
	c.Begin(1, Settings{Style: Decimal, Group: "g"}, content.NoNode)
	c.Next(1, 2)
	c.Next(1, 3)
	c.Begin(10, Settings{Style: Decimal, Group: "g"}, content.NoNode)
	assert.Equal(t, "3", c.Next(10, 11).Text)
	assert.Equal(t, 3, c.Group("g"))

	c.Begin(20, Settings{Style: Decimal}, content.NoNode)
	assert.Equal(t, "1", c.Next(20, 21).Text)
}

func TestContextNoneAndBullet(t *testing.T) {
	c := NewContext()
	c.Begin(1, Settings{Style: None}, content.NoNode)
	assert.Equal(t, "", c.Next(1, 2).Text)
	c.Begin(5, Settings{Style: Bullet}, content.NoNode)
	l := c.Next(5, 6)
	assert.Equal(t, "•", l.Text)
	assert.Equal(t, 1, l.Number)
}

// Package numbering computes list labels: ordinal formatting, per-list
// counters, shared numbering groups and concatenated parent labels.
package numbering

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// Style selects how an ordinal is rendered.
type Style int

const (
	Decimal Style = iota
	UppercaseLetters
	LowercaseLetters
	UppercaseRoman
	LowercaseRoman
	Bullet
	None
)

var styleNames = map[Style]string{
	Decimal:          "decimal",
	UppercaseLetters: "upper-alpha",
	LowercaseLetters: "lower-alpha",
	UppercaseRoman:   "upper-roman",
	LowercaseRoman:   "lower-roman",
	Bullet:           "disc",
	None:             "none",
}

func (s Style) String() string {
	if n, ok := styleNames[s]; ok {
		return n
	}
	return "Style(" + strconv.Itoa(int(s)) + ")"
}

// ParseStyle maps a CSS list-style-type keyword to a Style.
func ParseStyle(keyword string) (Style, bool) {
	switch strings.ToLower(strings.TrimSpace(keyword)) {
	case "decimal", "decimals", "numbers":
		return Decimal, true
	case "upper-alpha", "upper-latin", "uppercaseletters":
		return UppercaseLetters, true
	case "lower-alpha", "lower-latin", "lowercaseletters":
		return LowercaseLetters, true
	case "upper-roman", "uppercaseroman":
		return UppercaseRoman, true
	case "lower-roman", "lowercaseroman":
		return LowercaseRoman, true
	case "disc", "circle", "square", "bullet":
		return Bullet, true
	case "none":
		return None, true
	}
	return Decimal, false
}

// BulletLabel is the glyph used for Bullet lists.
const BulletLabel = "•"

// ErrInvalidLabel is returned by Decode for text that is not a valid label.
var ErrInvalidLabel = errors.New("numbering: invalid label")

// Format renders n (n >= 1) in the given style. Values below 1 render as
// decimals since neither alphabetic nor roman numbering has a zero.
func Format(n int, style Style) string {
	switch style {
	case Bullet:
		return BulletLabel
	case None:
		return ""
	}
	if n < 1 {
		return strconv.Itoa(n)
	}
	switch style {
	case UppercaseLetters:
		return alpha(n, 'A')
	case LowercaseLetters:
		return alpha(n, 'a')
	case UppercaseRoman:
		return roman(n)
	case LowercaseRoman:
		return strings.ToLower(roman(n))
	default:
		return strconv.Itoa(n)
	}
}

// alpha is bijective base 26: 1->A, 26->Z, 27->AA.
func alpha(n int, base rune) string {
	var buf []rune
	for n > 0 {
		n--
		buf = append(buf, base+rune(n%26))
		n /= 26
	}
	for i, j := 0, len(buf)-1; i < j; i, j = i+1, j-1 {
		buf[i], buf[j] = buf[j], buf[i]
	}
	return string(buf)
}

var romanTable = []struct {
	value  int
	symbol string
}{
	{1000, "M"}, {900, "CM"}, {500, "D"}, {400, "CD"},
	{100, "C"}, {90, "XC"}, {50, "L"}, {40, "XL"},
	{10, "X"}, {9, "IX"}, {5, "V"}, {4, "IV"}, {1, "I"},
}

func roman(n int) string {
	var sb strings.Builder
	for _, r := range romanTable {
		for n >= r.value {
			sb.WriteString(r.symbol)
			n -= r.value
		}
	}
	return sb.String()
}

// Decode is the inverse of Format for the numeric styles.
func Decode(label string, style Style) (int, error) {
	switch style {
	case Decimal:
		n, err := strconv.Atoi(label)
		if err != nil {
			return 0, fmt.Errorf("%w: %q", ErrInvalidLabel, label)
		}
		return n, nil
	case UppercaseLetters, LowercaseLetters:
		return decodeAlpha(label, style)
	case UppercaseRoman, LowercaseRoman:
		return decodeRoman(label, style)
	}
	return 0, fmt.Errorf("%w: style %s has no ordinal", ErrInvalidLabel, style)
}

func decodeAlpha(label string, style Style) (int, error) {
	base := 'A'
	if style == LowercaseLetters {
		base = 'a'
	}
	if label == "" {
		return 0, fmt.Errorf("%w: empty", ErrInvalidLabel)
	}
	n := 0
	for _, r := range label {
		d := r - base
		if d < 0 || d >= 26 {
			return 0, fmt.Errorf("%w: %q", ErrInvalidLabel, label)
		}
		n = n*26 + int(d) + 1
	}
	return n, nil
}

func decodeRoman(label string, style Style) (int, error) {
	s := label
	if style == LowercaseRoman {
		if strings.ToLower(label) != label {
			return 0, fmt.Errorf("%w: %q", ErrInvalidLabel, label)
		}
		s = strings.ToUpper(label)
	}
	if s == "" {
		return 0, fmt.Errorf("%w: empty", ErrInvalidLabel)
	}
	n, rest := 0, s
	for _, r := range romanTable {
		for strings.HasPrefix(rest, r.symbol) {
			n += r.value
			rest = rest[len(r.symbol):]
		}
	}
	// Reject non-canonical spellings such as "IIII" or "VX".
	if rest != "" || roman(n) != s {
		return 0, fmt.Errorf("%w: %q", ErrInvalidLabel, label)
	}
	return n, nil
}

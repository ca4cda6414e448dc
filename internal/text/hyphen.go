package text

import (
	"unicode"
)

// HyphenOptions configures Hyphenate.
type HyphenOptions struct {
	// MinBefore and MinAfter are the minimum number of runes kept on each
	// side of a break.
	MinBefore int
	MinAfter  int
	// MinWord is the shortest word that is hyphenated at all.
	MinWord int
	Char    rune
}

// Hyphenate finds the longest prefix of word that, followed by the hyphen
// character, satisfies fits. head includes the hyphen character; tail is the
// remainder of the word. ok is false when no break point qualifies.
//
// Break points are probed from the end of the word towards its start, so fits
// is typically called a handful of times with decreasing prefixes.
func Hyphenate(word string, opts HyphenOptions, fits func(head string) bool) (head, tail string, ok bool) {
	runes := []rune(word)
	if opts.Char == 0 {
		opts.Char = '-'
	}
	if opts.MinBefore < 1 {
		opts.MinBefore = 1
	}
	if opts.MinAfter < 1 {
		opts.MinAfter = 1
	}
	if len(runes) < opts.MinWord || len(runes) < opts.MinBefore+opts.MinAfter {
		return "", "", false
	}

	for i := len(runes) - opts.MinAfter; i >= opts.MinBefore; i-- {
		if !breakable(runes, i) {
			continue
		}
		candidate := string(runes[:i])
		// Words that already carry a hyphen at the break keep it.
		if runes[i-1] != '-' {
			candidate += string(opts.Char)
		}
		if fits(candidate) {
			return candidate, string(runes[i:]), true
		}
	}
	return "", "", false
}

// breakable reports whether a word may be split before runes[i]. Breaks
// are allowed between letters and directly after an existing hyphen.
func breakable(runes []rune, i int) bool {
	before, after := runes[i-1], runes[i]
	if before == '-' {
		return true
	}
	return unicode.IsLetter(before) && unicode.IsLetter(after)
}

package text

import (
	"strings"
	"unicode"

	"golang.org/x/text/unicode/norm"
)

// TokenKind classifies a piece of inline text.
type TokenKind int

const (
	TokenWord TokenKind = iota
	TokenSpace
	TokenBreak
)

// Token is a word, a collapsed run of spaces or a forced line break.
type Token struct {
	Kind TokenKind
	Text string
}

// Normalize returns s in Unicode normalisation form C.
func Normalize(s string) string {
	return norm.NFC.String(s)
}

// CollapseSpace collapses runs of whitespace into single spaces. Unlike
// strings.TrimSpace, it keeps a leading or trailing space.
func CollapseSpace(s string) string {
	var sb strings.Builder
	lastWasSpace := false
	for _, r := range s {
		if unicode.IsSpace(r) {
			if !lastWasSpace {
				sb.WriteByte(' ')
			}
			lastWasSpace = true
			continue
		}
		sb.WriteRune(r)
		lastWasSpace = false
	}
	return sb.String()
}

// Tokenize splits s into words and single-space tokens. Line feeds ("\n" or
// "\r\n") become TokenBreak unless preserveBreaks is false, in which case they
// count as ordinary white space.
func Tokenize(s string, preserveBreaks bool) []Token {
	var tokens []Token
	var cur []rune
	flush := func() {
		if len(cur) > 0 {
			tokens = append(tokens, Token{Kind: TokenWord, Text: string(cur)})
			cur = cur[:0]
		}
	}
	space := func() {
		flush()
		if n := len(tokens); n > 0 && tokens[n-1].Kind == TokenSpace {
			return
		}
		tokens = append(tokens, Token{Kind: TokenSpace, Text: " "})
	}

	for i, r := range s {
		switch {
		case r == '\r' && preserveBreaks:
			if i+1 < len(s) && s[i+1] == '\n' {
				continue
			}
			flush()
			tokens = append(tokens, Token{Kind: TokenBreak})
		case r == '\n' && preserveBreaks:
			flush()
			// A space directly before a break never renders.
			if n := len(tokens); n > 0 && tokens[n-1].Kind == TokenSpace {
				tokens = tokens[:n-1]
			}
			tokens = append(tokens, Token{Kind: TokenBreak})
		case unicode.IsSpace(r):
			space()
		default:
			cur = append(cur, r)
		}
	}
	flush()
	return tokens
}

package query

import (
	"slices"
	"strings"
	"unicode"
	"unicode/utf8"

	"golang.org/x/text/unicode/norm"
)

type tokenKind uint8

const (
	tokLabel tokenKind = iota
	tokAnd
	tokOr
	tokNot
	tokUnset
	tokOpen
	tokClose
)

func (k tokenKind) String() string {
	switch k {
	case tokLabel:
		return "label"
	case tokAnd:
		return "'.'"
	case tokOr:
		return "'+'"
	case tokNot:
		return "'!'"
	case tokUnset:
		return "'?'"
	case tokOpen:
		return "'('"
	case tokClose:
		return "')'"
	default:
		return "token"
	}
}

type token struct {
	kind tokenKind
	text string // label name when kind == tokLabel
	pos  int    // rune offset in the stripped expression
}

// stripSpace removes all Unicode whitespace.
func stripSpace(s string) string {
	return strings.Map(func(r rune) rune {
		if unicode.IsSpace(r) {
			return -1
		}
		return r
	}, s)
}

// tokenize scans the expression into tokens. The input is NFC-normalized and
// whitespace-stripped first; all reported offsets count runes in the stripped
// text. Label names are matched longest-first, so a label that is a prefix of
// another resolves to the longer one. A synthesized AND token is inserted
// whenever a label, '!', '?', or '(' directly follows a label or ')'.
func tokenize(expr string, names []string) ([]token, []rune, error) {
	src := []rune(stripSpace(norm.NFC.String(expr)))

	byLen := slices.Clone(names)
	slices.SortStableFunc(byLen, func(a, b string) int { return len(b) - len(a) })

	var toks []token
	i := 0
	for i < len(src) {
		var kind tokenKind
		switch src[i] {
		case '!':
			kind = tokNot
		case '?':
			kind = tokUnset
		case '+':
			kind = tokOr
		case '.':
			kind = tokAnd
		case '(':
			kind = tokOpen
		case ')':
			kind = tokClose
		default:
			name, ok := matchLabel(string(src[i:]), byLen)
			if !ok {
				return nil, src, &SyntaxError{
					Offset:  i,
					Excerpt: excerpt(src, i),
					Reason:  "unknown character",
				}
			}
			toks = appendImplicitAnd(toks, i)
			toks = append(toks, token{kind: tokLabel, text: name, pos: i})
			i += utf8.RuneCountInString(name)
			continue
		}
		switch kind {
		case tokNot, tokUnset, tokOpen:
			toks = appendImplicitAnd(toks, i)
		}
		toks = append(toks, token{kind: kind, pos: i})
		i++
	}
	return toks, src, nil
}

// matchLabel finds the first (longest, given the sort) label name prefixing
// the remaining input.
func matchLabel(rest string, byLen []string) (string, bool) {
	for _, name := range byLen {
		if strings.HasPrefix(rest, name) {
			return name, true
		}
	}
	return "", false
}

// appendImplicitAnd inserts the synthesized AND when the previous token can
// end an operand. Never fires at the start of the stream.
func appendImplicitAnd(toks []token, pos int) []token {
	if len(toks) == 0 {
		return toks
	}
	switch toks[len(toks)-1].kind {
	case tokLabel, tokClose:
		return append(toks, token{kind: tokAnd, pos: pos})
	}
	return toks
}

// excerpt returns up to ten runes starting at pos.
func excerpt(src []rune, pos int) string {
	if pos >= len(src) {
		return ""
	}
	return string(src[pos:min(pos+10, len(src))])
}

package model

import (
	"unicode"

	"github.com/tpnx/bcdr/internal/bcdrerr"
)

type tokenKind int

const (
	tokIdent tokenKind = iota
	tokEquals
	tokTilde
	tokAmp
	tokPipe
	tokCaret
	tokImplies
	tokIff
	tokLParen
	tokRParen
	tokEOF
)

type token struct {
	kind tokenKind
	text string
	pos  int
}

// lex tokenizes a propositional expression string. The grammar's only
// identifier characters are letters, digits, and underscore; everything
// else is either one of the fixed operator tokens or whitespace.
func lex(s string) ([]token, error) {
	var toks []token
	runes := []rune(s)
	i := 0
	for i < len(runes) {
		r := runes[i]
		switch {
		case unicode.IsSpace(r):
			i++
		case r == '(':
			toks = append(toks, token{tokLParen, "(", i})
			i++
		case r == ')':
			toks = append(toks, token{tokRParen, ")", i})
			i++
		case r == '~':
			toks = append(toks, token{tokTilde, "~", i})
			i++
		case r == '&':
			toks = append(toks, token{tokAmp, "&", i})
			i++
		case r == '^':
			toks = append(toks, token{tokCaret, "^", i})
			i++
		case r == '|':
			toks = append(toks, token{tokPipe, "|", i})
			i++
		case r == '=':
			if i+1 < len(runes) && runes[i+1] == '>' {
				toks = append(toks, token{tokImplies, "=>", i})
				i += 2
			} else {
				toks = append(toks, token{tokEquals, "=", i})
				i++
			}
		case r == '<':
			if i+2 < len(runes) && runes[i+1] == '=' && runes[i+2] == '>' {
				toks = append(toks, token{tokIff, "<=>", i})
				i += 3
			} else {
				return nil, bcdrerr.Parsef(i, "unexpected character %q", r)
			}
		case unicode.IsLetter(r) || unicode.IsDigit(r) || r == '_':
			start := i
			for i < len(runes) && (unicode.IsLetter(runes[i]) || unicode.IsDigit(runes[i]) || runes[i] == '_') {
				i++
			}
			toks = append(toks, token{tokIdent, string(runes[start:i]), start})
		default:
			return nil, bcdrerr.Parsef(i, "unexpected character %q", r)
		}
	}
	toks = append(toks, token{tokEOF, "", len(runes)})
	return toks, nil
}

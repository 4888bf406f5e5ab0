package token

import (
	"yarax/internal/source"
)

// Token represents a single source token with its location and trivia.
type Token struct {
	Kind    Kind
	Span    source.Span
	Text    string
	Leading []Trivia
}

// IsLiteral reports whether the token is a numeric, boolean, string or hex literal.
func (t Token) IsLiteral() bool {
	switch t.Kind {
	case IntLit, FloatLit, StringLit, HexLit, KwTrue, KwFalse:
		return true
	default:
		return false
	}
}

// IsPattern reports whether the token refers to a pattern ($a, #a, @a, !a).
func (t Token) IsPattern() bool {
	switch t.Kind {
	case PatternIdent, PatternCount, PatternOffset, PatternLength:
		return true
	default:
		return false
	}
}

// IsKeyword reports whether the token is a language keyword.
func (t Token) IsKeyword() bool {
	return t.Kind >= KwRule && t.Kind <= KwFullword
}

// IsIdent reports whether the token is an identifier.
func (t Token) IsIdent() bool { return t.Kind == Ident }

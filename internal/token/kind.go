package token

// Kind represents the category of a source token.
type Kind uint8

const (
	// Invalid indicates an erroneous token.
	Invalid Kind = iota
	// EOF marks the end of the source input.
	EOF

	// Ident represents an identifier token.
	Ident
	// PatternIdent is `$name`, a bare `$`, or a `$prefix*` wildcard.
	PatternIdent
	// PatternCount is `#name`.
	PatternCount
	// PatternOffset is `@name`.
	PatternOffset
	// PatternLength is `!name`.
	PatternLength

	KwRule        // rule
	KwImport      // import
	KwPrivate     // private
	KwGlobal      // global
	KwMeta        // meta
	KwStrings     // strings
	KwCondition   // condition
	KwTrue        // true
	KwFalse       // false
	KwAnd         // and
	KwOr          // or
	KwNot         // not
	KwDefined     // defined
	KwAt          // at
	KwIn          // in
	KwOf          // of
	KwThem        // them
	KwAny         // any
	KwAll         // all
	KwNone        // none
	KwFilesize    // filesize
	KwContains    // contains
	KwIContains   // icontains
	KwStartsWith  // startswith
	KwIStartsWith // istartswith
	KwEndsWith    // endswith
	KwIEndsWith   // iendswith
	KwIEquals     // iequals
	KwMatches     // matches (reserved, unsupported)
	KwFor         // for (reserved, unsupported)
	KwAscii       // ascii
	KwWide        // wide
	KwNocase      // nocase
	KwFullword    // fullword

	// IntLit represents an integer literal, including KB/MB suffixed ones.
	IntLit
	// FloatLit represents a float literal.
	FloatLit
	// StringLit represents a double-quoted string literal, quotes included.
	StringLit
	// HexLit is the raw body of a `{ ... }` hex pattern.
	HexLit

	Plus      // +
	Minus     // -
	Star      // *
	Backslash // \
	Percent   // %
	Amp       // &
	Pipe      // |
	Caret     // ^
	Tilde     // ~
	Shl       // <<
	Shr       // >>
	EqEq      // ==
	BangEq    // !=
	Lt        // <
	LtEq      // <=
	Gt        // >
	GtEq      // >=
	Assign    // =
	LParen    // (
	RParen    // )
	LBrace    // {
	RBrace    // }
	LBracket  // [
	RBracket  // ]
	Dot       // .
	DotDot    // ..
	Comma     // ,
	Colon     // :

	kindCount
)

var kindNames = [kindCount]string{
	Invalid:       "invalid token",
	EOF:           "end of file",
	Ident:         "identifier",
	PatternIdent:  "pattern identifier",
	PatternCount:  "pattern count",
	PatternOffset: "pattern offset",
	PatternLength: "pattern length",
	KwRule:        "`rule`",
	KwImport:      "`import`",
	KwPrivate:     "`private`",
	KwGlobal:      "`global`",
	KwMeta:        "`meta`",
	KwStrings:     "`strings`",
	KwCondition:   "`condition`",
	KwTrue:        "`true`",
	KwFalse:       "`false`",
	KwAnd:         "`and`",
	KwOr:          "`or`",
	KwNot:         "`not`",
	KwDefined:     "`defined`",
	KwAt:          "`at`",
	KwIn:          "`in`",
	KwOf:          "`of`",
	KwThem:        "`them`",
	KwAny:         "`any`",
	KwAll:         "`all`",
	KwNone:        "`none`",
	KwFilesize:    "`filesize`",
	KwContains:    "`contains`",
	KwIContains:   "`icontains`",
	KwStartsWith:  "`startswith`",
	KwIStartsWith: "`istartswith`",
	KwEndsWith:    "`endswith`",
	KwIEndsWith:   "`iendswith`",
	KwIEquals:     "`iequals`",
	KwMatches:     "`matches`",
	KwFor:         "`for`",
	KwAscii:       "`ascii`",
	KwWide:        "`wide`",
	KwNocase:      "`nocase`",
	KwFullword:    "`fullword`",
	IntLit:        "integer literal",
	FloatLit:      "float literal",
	StringLit:     "string literal",
	HexLit:        "hex pattern",
	Plus:          "`+`",
	Minus:         "`-`",
	Star:          "`*`",
	Backslash:     "`\\`",
	Percent:       "`%`",
	Amp:           "`&`",
	Pipe:          "`|`",
	Caret:         "`^`",
	Tilde:         "`~`",
	Shl:           "`<<`",
	Shr:           "`>>`",
	EqEq:          "`==`",
	BangEq:        "`!=`",
	Lt:            "`<`",
	LtEq:          "`<=`",
	Gt:            "`>`",
	GtEq:          "`>=`",
	Assign:        "`=`",
	LParen:        "`(`",
	RParen:        "`)`",
	LBrace:        "`{`",
	RBrace:        "`}`",
	LBracket:      "`[`",
	RBracket:      "`]`",
	Dot:           "`.`",
	DotDot:        "`..`",
	Comma:         "`,`",
	Colon:         "`:`",
}

func (k Kind) String() string {
	if k < kindCount {
		return kindNames[k]
	}
	return "unknown token"
}

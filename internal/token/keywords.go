package token

var keywords = map[string]Kind{
	"rule":        KwRule,
	"import":      KwImport,
	"private":     KwPrivate,
	"global":      KwGlobal,
	"meta":        KwMeta,
	"strings":     KwStrings,
	"condition":   KwCondition,
	"true":        KwTrue,
	"false":       KwFalse,
	"and":         KwAnd,
	"or":          KwOr,
	"not":         KwNot,
	"defined":     KwDefined,
	"at":          KwAt,
	"in":          KwIn,
	"of":          KwOf,
	"them":        KwThem,
	"any":         KwAny,
	"all":         KwAll,
	"none":        KwNone,
	"filesize":    KwFilesize,
	"contains":    KwContains,
	"icontains":   KwIContains,
	"startswith":  KwStartsWith,
	"istartswith": KwIStartsWith,
	"endswith":    KwEndsWith,
	"iendswith":   KwIEndsWith,
	"iequals":     KwIEquals,
	"matches":     KwMatches,
	"for":         KwFor,
	"ascii":       KwAscii,
	"wide":        KwWide,
	"nocase":      KwNocase,
	"fullword":    KwFullword,
}

// LookupKeyword возвращает тип и bool если это ключевое слово.
// Ключевые слова регистрозависимые - только lowercase версии распознаются.
func LookupKeyword(ident string) (Kind, bool) {
	k, ok := keywords[ident]
	return k, ok
}

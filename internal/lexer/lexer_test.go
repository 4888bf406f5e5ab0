package lexer_test

import (
	"strings"
	"testing"

	"yarax/internal/diag"
	"yarax/internal/lexer"
	"yarax/internal/source"
	"yarax/internal/token"
)

func makeTestLexer(input string) (*lexer.Lexer, *diag.Bag) {
	fs := source.NewFileSet()
	id := fs.AddVirtual("test.yar", []byte(input))
	bag := diag.NewBag(0)
	return lexer.New(fs.Get(id), lexer.Options{Reporter: &diag.BagReporter{Bag: bag}}), bag
}

func collectAllTokens(lx *lexer.Lexer) []token.Token {
	var toks []token.Token
	for {
		tok := lx.Next()
		if tok.Kind == token.EOF {
			return toks
		}
		toks = append(toks, tok)
	}
}

func expectTokens(t *testing.T, input string, expected ...token.Kind) []token.Token {
	t.Helper()
	lx, bag := makeTestLexer(input)
	toks := collectAllTokens(lx)
	if bag.HasErrors() {
		t.Fatalf("unexpected diagnostics for %q: %v", input, bag.Items())
	}
	if len(toks) != len(expected) {
		t.Fatalf("%q: want %d tokens, got %d: %s", input, len(expected), len(toks), tokensToString(toks))
	}
	for i, k := range expected {
		if toks[i].Kind != k {
			t.Fatalf("%q: token %d: want %v, got %v (%q)", input, i, k, toks[i].Kind, toks[i].Text)
		}
	}
	return toks
}

func tokensToString(tokens []token.Token) string {
	parts := make([]string, 0, len(tokens))
	for _, tok := range tokens {
		parts = append(parts, tok.Kind.String()+"("+tok.Text+")")
	}
	return strings.Join(parts, " ")
}

func TestKeywordsAndIdents(t *testing.T) {
	toks := expectTokens(t, "rule Rule condition filesize _x1",
		token.KwRule, token.Ident, token.KwCondition, token.KwFilesize, token.Ident)
	if toks[1].Text != "Rule" || toks[4].Text != "_x1" {
		t.Fatalf("unexpected texts: %s", tokensToString(toks))
	}
}

func TestPatternSigils(t *testing.T) {
	toks := expectTokens(t, "$a #a @a[1] !a $ $b* != #a*2",
		token.PatternIdent, token.PatternCount, token.PatternOffset, token.LBracket, token.IntLit, token.RBracket,
		token.PatternLength, token.PatternIdent, token.PatternIdent, token.BangEq,
		token.PatternCount, token.Star, token.IntLit)
	if toks[7].Text != "$" || toks[8].Text != "$b*" {
		t.Fatalf("unexpected pattern texts: %s", tokensToString(toks))
	}
}

func TestNumbers(t *testing.T) {
	toks := expectTokens(t, "10 0x1F 0o17 2KB 1MB 1.5 2.5e3 0..10",
		token.IntLit, token.IntLit, token.IntLit, token.IntLit, token.IntLit,
		token.FloatLit, token.FloatLit, token.IntLit, token.DotDot, token.IntLit)
	want := []int64{10, 31, 15, 2048, 1 << 20}
	for i, w := range want {
		v, err := lexer.ParseInt(toks[i].Text)
		if err != nil || v != w {
			t.Fatalf("ParseInt(%q) = %d, %v; want %d", toks[i].Text, v, err, w)
		}
	}
	if f, err := lexer.ParseFloat(toks[6].Text); err != nil || f != 2500 {
		t.Fatalf("ParseFloat(%q) = %v, %v", toks[6].Text, f, err)
	}
}

func TestNumbers_Invalid(t *testing.T) {
	for _, input := range []string{"10abc", "0x", "1.5e"} {
		lx, bag := makeTestLexer(input)
		tok := lx.Next()
		if tok.Kind != token.Invalid {
			t.Errorf("%q: want Invalid, got %v", input, tok.Kind)
		}
		if first, ok := bag.FirstError(); !ok || first.Code != diag.LexBadNumber {
			t.Errorf("%q: want LexBadNumber, got %v", input, bag.Items())
		}
	}
}

func TestParseInt_Range(t *testing.T) {
	if _, err := lexer.ParseInt("9223372036854775808"); err != lexer.ErrIntRange {
		t.Fatalf("want ErrIntRange, got %v", err)
	}
	if _, err := lexer.ParseInt("9007199254740992MB"); err != lexer.ErrIntRange {
		t.Fatalf("want ErrIntRange for suffix overflow, got %v", err)
	}
}

func TestString_Escapes(t *testing.T) {
	toks := expectTokens(t, `"a\n\t\"\\\x41\xff"`, token.StringLit)
	got, err := lexer.Unquote(toks[0].Text)
	if err != nil {
		t.Fatal(err)
	}
	if want := []byte("a\n\t\"\\A\xff"); string(got) != string(want) {
		t.Fatalf("Unquote = %q, want %q", got, want)
	}
}

func TestString_Errors(t *testing.T) {
	cases := map[string]diag.Code{
		`"abc`:       diag.LexUnterminatedString,
		"\"ab\ncd\"": diag.LexUnterminatedString,
		`"\q"`:       diag.LexBadEscape,
		`"\x4"`:      diag.LexBadEscape,
	}
	for input, code := range cases {
		lx, bag := makeTestLexer(input)
		collectAllTokens(lx)
		first, ok := bag.FirstError()
		if !ok || first.Code != code {
			t.Errorf("%q: want %v, got %v", input, code, bag.Items())
		}
	}
}

func TestOperators(t *testing.T) {
	expectTokens(t, "+ - * \\ % & | ^ ~ << >> == != < <= > >= = ( ) { } [ ] . .. , :",
		token.Plus, token.Minus, token.Star, token.Backslash, token.Percent, token.Amp, token.Pipe,
		token.Caret, token.Tilde, token.Shl, token.Shr, token.EqEq, token.BangEq, token.Lt, token.LtEq,
		token.Gt, token.GtEq, token.Assign, token.LParen, token.RParen, token.LBrace, token.RBrace,
		token.LBracket, token.RBracket, token.Dot, token.DotDot, token.Comma, token.Colon)
}

func TestTrivia(t *testing.T) {
	lx, bag := makeTestLexer("// head\n  /* block */ rule")
	tok := lx.Next()
	if tok.Kind != token.KwRule || bag.Len() != 0 {
		t.Fatalf("want rule without diagnostics, got %v / %v", tok.Kind, bag.Items())
	}
	kinds := make([]token.TriviaKind, 0, len(tok.Leading))
	for _, tr := range tok.Leading {
		kinds = append(kinds, tr.Kind)
	}
	want := []token.TriviaKind{token.TriviaLineComment, token.TriviaNewline, token.TriviaSpace, token.TriviaBlockComment, token.TriviaSpace}
	if len(kinds) != len(want) {
		t.Fatalf("trivia = %v, want %v", kinds, want)
	}
	for i := range want {
		if kinds[i] != want[i] {
			t.Fatalf("trivia = %v, want %v", kinds, want)
		}
	}
}

func TestTrivia_UnterminatedBlockComment(t *testing.T) {
	lx, bag := makeTestLexer("rule /* never closed")
	collectAllTokens(lx)
	first, ok := bag.FirstError()
	if !ok || first.Code != diag.LexUnterminatedBlockComment {
		t.Fatalf("want LexUnterminatedBlockComment, got %v", bag.Items())
	}
}

func TestUnknownCharacter(t *testing.T) {
	lx, bag := makeTestLexer("rule ё ?")
	toks := collectAllTokens(lx)
	if len(toks) != 3 || toks[1].Kind != token.Invalid || toks[2].Kind != token.Invalid {
		t.Fatalf("unexpected tokens: %s", tokensToString(toks))
	}
	if toks[1].Text != "ё" {
		t.Fatalf("multi-byte rune should stay in one token, got %q", toks[1].Text)
	}
	if bag.Len() != 2 {
		t.Fatalf("want 2 diagnostics, got %d", bag.Len())
	}
}

func TestScanHex(t *testing.T) {
	lx, bag := makeTestLexer("= { 4D 5A ?? [2-4] } condition")
	if tok := lx.Next(); tok.Kind != token.Assign {
		t.Fatalf("want =, got %v", tok.Kind)
	}
	if tok := lx.Next(); tok.Kind != token.LBrace {
		t.Fatalf("want {, got %v", tok.Kind)
	}
	hex := lx.ScanHex()
	if hex.Kind != token.HexLit || hex.Text != " 4D 5A ?? [2-4] " {
		t.Fatalf("unexpected hex token %v %q", hex.Kind, hex.Text)
	}
	if tok := lx.Next(); tok.Kind != token.KwCondition {
		t.Fatalf("want condition after hex body, got %v", tok.Kind)
	}
	if bag.Len() != 0 {
		t.Fatalf("unexpected diagnostics: %v", bag.Items())
	}
}

func TestScanHex_Unterminated(t *testing.T) {
	lx, bag := makeTestLexer("{ 4D 5A")
	lx.Next()
	if tok := lx.ScanHex(); tok.Kind != token.Invalid {
		t.Fatalf("want Invalid, got %v", tok.Kind)
	}
	first, ok := bag.FirstError()
	if !ok || first.Code != diag.LexUnterminatedHex {
		t.Fatalf("want LexUnterminatedHex, got %v", bag.Items())
	}
}

func TestPeekDoesNotConsume(t *testing.T) {
	lx, _ := makeTestLexer("rule a")
	if lx.Peek().Kind != token.KwRule || lx.Peek().Kind != token.KwRule {
		t.Fatal("Peek must be idempotent")
	}
	if lx.Next().Kind != token.KwRule || lx.Next().Kind != token.Ident {
		t.Fatal("Next after Peek must return the peeked token first")
	}
	if lx.Next().Kind != token.EOF || lx.Next().Kind != token.EOF {
		t.Fatal("EOF must be sticky")
	}
}

func BenchmarkLexer(b *testing.B) {
	input := strings.Repeat("rule r { strings: $a = \"abc\" condition: #a > 2 and @a[1] < 0x100 }\n", 200)
	for b.Loop() {
		lx, _ := makeTestLexer(input)
		collectAllTokens(lx)
	}
}

package parser

import (
	"fmt"
	"strings"
	"testing"

	"yarax/internal/ast"
)

// render prints an expression tree in a fully parenthesized form.
func render(b *ast.Builder, id ast.ExprID) string {
	e := b.Exprs.Get(id)
	switch e.Kind {
	case ast.ExprLit:
		lit, _ := b.Exprs.Literal(id)
		switch lit.Kind {
		case ast.LitInt:
			return fmt.Sprint(lit.Int)
		case ast.LitFloat:
			return fmt.Sprint(lit.Float)
		case ast.LitString:
			return fmt.Sprintf("%q", lit.Str)
		default:
			return fmt.Sprint(lit.Bool)
		}
	case ast.ExprFilesize:
		return "filesize"
	case ast.ExprIdent:
		data, _ := b.Exprs.Ident(id)
		return data.Name
	case ast.ExprMember:
		data, _ := b.Exprs.Member(id)
		return render(b, data.Target) + "." + data.Field
	case ast.ExprIndex:
		data, _ := b.Exprs.Index(id)
		return render(b, data.Target) + "[" + render(b, data.Index) + "]"
	case ast.ExprCall:
		data, _ := b.Exprs.Call(id)
		args := make([]string, 0, len(data.Args))
		for _, a := range data.Args {
			args = append(args, render(b, a))
		}
		return render(b, data.Callee) + "(" + strings.Join(args, ", ") + ")"
	case ast.ExprBinary:
		data, _ := b.Exprs.Binary(id)
		return "(" + render(b, data.Left) + " " + data.Op.String() + " " + render(b, data.Right) + ")"
	case ast.ExprUnary:
		data, _ := b.Exprs.Unary(id)
		return "(" + data.Op.String() + " " + render(b, data.Operand) + ")"
	case ast.ExprGroup:
		data, _ := b.Exprs.Group(id)
		return render(b, data.Inner)
	case ast.ExprPattern:
		data, _ := b.Exprs.Pattern(id)
		switch data.Kind {
		case ast.PatRefAt:
			return data.Name + " at " + render(b, data.At)
		case ast.PatRefIn:
			return data.Name + " in (" + render(b, data.Lo) + ".." + render(b, data.Hi) + ")"
		case ast.PatRefCount:
			return "#" + data.Name[1:]
		case ast.PatRefOffset, ast.PatRefLength:
			sigil := "@"
			if data.Kind == ast.PatRefLength {
				sigil = "!"
			}
			if data.Index.IsValid() {
				return sigil + data.Name[1:] + "[" + render(b, data.Index) + "]"
			}
			return sigil + data.Name[1:]
		default:
			return data.Name
		}
	case ast.ExprOf:
		data, _ := b.Exprs.Of(id)
		q := [...]string{"any", "all", "none", ""}[data.Quantifier]
		if data.Quantifier == ast.QuantExpr {
			q = render(b, data.Count)
		}
		if data.Them {
			return q + " of them"
		}
		items := make([]string, 0, len(data.Items))
		for _, it := range data.Items {
			s := it.Name
			if it.Wildcard {
				s += "*"
			}
			items = append(items, s)
		}
		return q + " of (" + strings.Join(items, ", ") + ")"
	}
	return "?"
}

func TestExpressionPrecedence(t *testing.T) {
	cases := []struct {
		input string
		want  string
	}{
		{"1 + 2 * 3", "(1 + (2 * 3))"},
		{"1 - 2 - 3", "((1 - 2) - 3)"},
		{"10 \\ 3 % 2", "((10 \\ 3) % 2)"},
		{"a or b and c", "(a or (b and c))"},
		{"not a == b", "(not (a == b))"},
		{"not a and b", "((not a) and b)"},
		{"defined x.y or true", "((defined x.y) or true)"},
		{"-1 < 2", "((- 1) < 2)"},
		{"1 | 2 ^ 3 & 4 << 1", "(1 | (2 ^ (3 & (4 << 1))))"},
		{"~1 + 2", "((~ 1) + 2)"},
		{"(1 + 2) * 3", "((1 + 2) * 3)"},
		{`"abc" contains "b" and "x" iequals "X"`, `(("abc" contains "b") and ("x" iequals "X"))`},
		{"1 < 2 == true", "((1 < 2) == true)"},
		{"filesize > 10KB", "(filesize > 10240)"},
		{"1.5 >= 0.5", "(1.5 >= 0.5)"},
	}
	for _, tc := range cases {
		t.Run(tc.input, func(t *testing.T) {
			b, cond := conditionOf(t, tc.input)
			if got := render(b, cond); got != tc.want {
				t.Fatalf("got %s, want %s", got, tc.want)
			}
		})
	}
}

func TestPostfixExpressions(t *testing.T) {
	cases := []struct {
		input string
		want  string
	}{
		{`string.to_int("A", 16) == 10`, `(string.to_int("A", 16) == 10)`},
		{"test.nested.int_two", "test.nested.int_two"},
		{"test.array_int[1 + 1]", "test.array_int[(1 + 1)]"},
		{"test.undef_fn()", "test.undef_fn()"},
	}
	for _, tc := range cases {
		b, cond := conditionOf(t, tc.input)
		if got := render(b, cond); got != tc.want {
			t.Fatalf("%s: got %s, want %s", tc.input, got, tc.want)
		}
	}
}

func TestPatternExpressions(t *testing.T) {
	cases := []struct {
		input string
		want  string
	}{
		{"$a", "$a"},
		{"$a at 100 + 1", "$a at (100 + 1)"},
		{"$a at 5 and true", "($a at 5 and true)"},
		{"$a in (0..filesize)", "$a in (0..filesize)"},
		{"#a == 2", "(#a == 2)"},
		{"@a[2] > 1", "(@a[2] > 1)"},
		{"@a", "@a"},
		{"!a[1] == 3", "(!a[1] == 3)"},
		{"any of them", "any of them"},
		{"all of ($a, $b*)", "all of ($a, $b*)"},
		{"none of ($a)", "none of ($a)"},
		{"2 of them", "2 of them"},
		{"1 of ($*) or false", "(1 of ($*) or false)"},
	}
	for _, tc := range cases {
		b, cond := conditionOf(t, tc.input)
		if got := render(b, cond); got != tc.want {
			t.Fatalf("%s: got %s, want %s", tc.input, got, tc.want)
		}
	}
}

func TestStringLiteralEscapesInCondition(t *testing.T) {
	b, cond := conditionOf(t, `"\x41\n" == "A\n"`)
	data, ok := b.Exprs.Binary(cond)
	if !ok {
		t.Fatal("want binary")
	}
	lit, _ := b.Exprs.Literal(data.Left)
	if string(lit.Str) != "A\n" {
		t.Fatalf("unexpected literal bytes %q", lit.Str)
	}
}

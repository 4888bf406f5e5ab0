package compiler

import (
	"fmt"
	"strings"

	"yarax/internal/ast"
	"yarax/internal/diag"
	"yarax/internal/symbols"
)

var (
	anyScalar = symbols.NewTypeSet(symbols.Bool, symbols.Integer, symbols.Float, symbols.String)
	numeric   = symbols.NewTypeSet(symbols.Integer, symbols.Float)
	integer   = symbols.NewTypeSet(symbols.Integer)
	str       = symbols.NewTypeSet(symbols.String)
)

// semcheck assigns a type to expr and every node below it, and fails when
// the type of expr is not in allowed. The types are kept in ctx for emit.
func semcheck(ctx *Context, allowed symbols.TypeSet, expr ast.ExprID) (symbols.Type, error) {
	tv, err := check(ctx, expr)
	if err != nil {
		return symbols.Unknown, err
	}
	ctx.types[expr] = tv
	t := tv.Type
	if t == symbols.Rule {
		t = symbols.Bool
	}
	if !allowed.Has(t) {
		e := ctx.exprs.Get(expr)
		return symbols.Unknown, ctx.errorf(diag.SemaTypeMismatch, e.Span,
			"wrong type: expected %s, found `%s`", allowed, t)
	}
	return t, nil
}

func check(ctx *Context, expr ast.ExprID) (symbols.TypeValue, error) {
	e := ctx.exprs.Get(expr)
	if e == nil {
		panic(fmt.Sprintf("compiler: invalid expression id %d", expr))
	}
	switch e.Kind {
	case ast.ExprLit:
		lit, _ := ctx.exprs.Literal(expr)
		switch lit.Kind {
		case ast.LitInt:
			return symbols.ConstInt(lit.Int), nil
		case ast.LitFloat:
			return symbols.ConstFloat(lit.Float), nil
		case ast.LitString:
			return symbols.ConstString(lit.Str), nil
		default:
			return symbols.ConstBool(lit.Bool), nil
		}

	case ast.ExprFilesize:
		return symbols.Var(symbols.Integer, ""), nil

	case ast.ExprPattern:
		return checkPattern(ctx, e, expr)

	case ast.ExprOf:
		return checkOf(ctx, e, expr)

	case ast.ExprIdent:
		id, _ := ctx.exprs.Ident(expr)
		tv, ok := ctx.lookup(id.Name)
		if !ok {
			return tv, ctx.errorf(diag.SemaUnresolvedSymbol, e.Span, "unknown identifier `%s`", id.Name)
		}
		return tv, nil

	case ast.ExprMember:
		return checkMember(ctx, e, expr)

	case ast.ExprIndex:
		idx, _ := ctx.exprs.Index(expr)
		target, err := check(ctx, idx.Target)
		if err != nil {
			return target, err
		}
		ctx.types[idx.Target] = target
		if target.Type != symbols.Array {
			return target, ctx.errorf(diag.SemaNotAnArray, ctx.exprs.Get(idx.Target).Span,
				"`%s` is not an array", target.Type)
		}
		if _, err := semcheck(ctx, integer, idx.Index); err != nil {
			return target, err
		}
		if !target.Elem.Type.IsScalar() {
			return target, ctx.errorf(diag.SemaInvalidOperands, e.Span, "arrays of `%s` cannot be indexed", target.Elem.Type)
		}
		return symbols.Var(target.Elem.Type, target.Path), nil

	case ast.ExprCall:
		return checkCall(ctx, e, expr)

	case ast.ExprBinary:
		return checkBinary(ctx, e, expr)

	case ast.ExprUnary:
		return checkUnary(ctx, e, expr)

	case ast.ExprGroup:
		g, _ := ctx.exprs.Group(expr)
		tv, err := check(ctx, g.Inner)
		ctx.types[g.Inner] = tv
		return tv, err
	}
	panic(fmt.Sprintf("compiler: unexpected expression kind %d", e.Kind))
}

func checkPattern(ctx *Context, e *ast.Expr, expr ast.ExprID) (symbols.TypeValue, error) {
	p, _ := ctx.exprs.Pattern(expr)
	if p.Name == "$" {
		return symbols.TypeValue{}, ctx.errorf(diag.SemaAnonymousOutsideSet, e.Span,
			"anonymous pattern identifier can only be used in `of` sets")
	}
	if _, ok := ctx.patternID(p.Name); !ok {
		return symbols.TypeValue{}, ctx.errorf(diag.SemaUnknownPattern, e.Span,
			"unknown pattern `%s`", p.Name)
	}
	switch p.Kind {
	case ast.PatRefAt:
		if _, err := semcheck(ctx, integer, p.At); err != nil {
			return symbols.TypeValue{}, err
		}
	case ast.PatRefIn:
		if _, err := semcheck(ctx, integer, p.Lo); err != nil {
			return symbols.TypeValue{}, err
		}
		if _, err := semcheck(ctx, integer, p.Hi); err != nil {
			return symbols.TypeValue{}, err
		}
	case ast.PatRefOffset, ast.PatRefLength:
		if p.Index.IsValid() {
			if _, err := semcheck(ctx, integer, p.Index); err != nil {
				return symbols.TypeValue{}, err
			}
		}
	}
	switch p.Kind {
	case ast.PatRefCount, ast.PatRefOffset, ast.PatRefLength:
		return symbols.Var(symbols.Integer, ""), nil
	default:
		return symbols.Var(symbols.Bool, ""), nil
	}
}

func checkOf(ctx *Context, e *ast.Expr, expr ast.ExprID) (symbols.TypeValue, error) {
	of, _ := ctx.exprs.Of(expr)
	if of.Quantifier == ast.QuantExpr {
		if _, err := semcheck(ctx, integer, of.Count); err != nil {
			return symbols.TypeValue{}, err
		}
	}

	var set []PatternID
	seen := make(map[PatternID]bool)
	add := func(id PatternID) {
		if !seen[id] {
			seen[id] = true
			set = append(set, id)
		}
	}
	if of.Them {
		for _, p := range ctx.rule.Patterns {
			add(p.Pattern)
		}
		if len(set) == 0 {
			return symbols.TypeValue{}, ctx.errorf(diag.SemaEmptyPatternSet, e.Span,
				"`them` refers to no patterns: the rule declares none")
		}
	}
	for _, item := range of.Items {
		matched := false
		for _, p := range ctx.rule.Patterns {
			name := ctx.idents.MustResolve(p.Ident)
			if item.Wildcard && strings.HasPrefix(name, item.Name) || !item.Wildcard && name == item.Name {
				add(p.Pattern)
				matched = true
				if !item.Wildcard {
					break
				}
			}
		}
		if !matched {
			display := item.Name
			if item.Wildcard {
				display += "*"
			}
			return symbols.TypeValue{}, ctx.errorf(diag.SemaEmptyPatternSet, item.Span,
				"`%s` does not match any pattern of this rule", display)
		}
	}
	ctx.sets[expr] = set
	return symbols.Var(symbols.Bool, ""), nil
}

func checkMember(ctx *Context, e *ast.Expr, expr ast.ExprID) (symbols.TypeValue, error) {
	m, _ := ctx.exprs.Member(expr)
	target, err := check(ctx, m.Target)
	if err != nil {
		return target, err
	}
	ctx.types[m.Target] = target
	if target.Type != symbols.Struct {
		return target, ctx.errorf(diag.SemaNotAStruct, ctx.exprs.Get(m.Target).Span,
			"`%s` is not a structure", target.Type)
	}
	saved := ctx.currentStruct
	ctx.currentStruct = target.Fields
	tv, ok := ctx.lookup(m.Field)
	ctx.currentStruct = saved
	if !ok {
		return tv, ctx.errorf(diag.SemaUnresolvedSymbol, m.FieldSpan, "unknown field `%s`", m.Field)
	}
	return tv, nil
}

func checkCall(ctx *Context, e *ast.Expr, expr ast.ExprID) (symbols.TypeValue, error) {
	call, _ := ctx.exprs.Call(expr)
	callee, err := check(ctx, call.Callee)
	if err != nil {
		return callee, err
	}
	ctx.types[call.Callee] = callee
	if callee.Type != symbols.Func {
		return callee, ctx.errorf(diag.SemaNotCallable, ctx.exprs.Get(call.Callee).Span,
			"`%s` is not a function", callee.Type)
	}
	args := make([]symbols.Type, len(call.Args))
	for i, a := range call.Args {
		t, err := semcheck(ctx, anyScalar, a)
		if err != nil {
			return callee, err
		}
		args[i] = t
	}
	sig, ok := callee.FindOverload(args)
	if !ok {
		d := diag.NewError(diag.SemaNoOverload, e.Span,
			fmt.Sprintf("no overload of `%s` accepts (%s)", callee.Funcs[0].Name, typeNames(args)))
		for _, f := range callee.Funcs {
			d = d.WithNote(e.Span, fmt.Sprintf("candidate: %s(%s) -> %s", f.Name, typeNames(f.Args), f.Result))
		}
		return callee, &diagError{d: d}
	}
	ctx.calls[expr] = sig
	if r, bad := constArgOutOfRange(ctx, sig, call.Args); bad {
		ctx.warn(diag.NewWarning(diag.SemaInvalidBase, ctx.exprs.Get(call.Args[r.arg]).Span,
			fmt.Sprintf("argument must be in range %d..%d; `%s` is always undefined here", r.lo, r.hi, sig.Name)))
	}
	return symbols.Var(sig.Result, ""), nil
}

func typeNames(ts []symbols.Type) string {
	parts := make([]string, len(ts))
	for i, t := range ts {
		parts[i] = t.String()
	}
	return strings.Join(parts, ", ")
}

// argRange restricts a constant integer argument of a module function.
type argRange struct {
	arg    int
	lo, hi int64
}

var constArgRanges = map[string]argRange{
	"string.to_int@si":  {arg: 1, lo: 2, hi: 36},
	"math.to_string@ii": {arg: 1, lo: 2, hi: 36},
}

// constArgOutOfRange reports whether a call has a constant argument that
// makes the result undefined regardless of the scanned data.
func constArgOutOfRange(ctx *Context, sig symbols.FuncSig, args []ast.ExprID) (argRange, bool) {
	r, ok := constArgRanges[sig.Mangled()]
	if !ok || r.arg >= len(args) {
		return r, false
	}
	tv := ctx.types[args[r.arg]]
	if !tv.Const || tv.Type != symbols.Integer {
		return r, false
	}
	return r, tv.Value.Int < r.lo || tv.Value.Int > r.hi
}

func checkBinary(ctx *Context, e *ast.Expr, expr ast.ExprID) (symbols.TypeValue, error) {
	b, _ := ctx.exprs.Binary(expr)
	operands := func(allowed symbols.TypeSet) (symbols.Type, symbols.Type, error) {
		lt, err := semcheck(ctx, allowed, b.Left)
		if err != nil {
			return lt, symbols.Unknown, err
		}
		rt, err := semcheck(ctx, allowed, b.Right)
		return lt, rt, err
	}

	switch {
	case b.Op == ast.ExprBinaryAnd || b.Op == ast.ExprBinaryOr:
		if _, _, err := operands(anyScalar); err != nil {
			return symbols.TypeValue{}, err
		}
		return symbols.Var(symbols.Bool, ""), nil

	case b.Op.IsComparison():
		lt, rt, err := operands(anyScalar)
		if err != nil {
			return symbols.TypeValue{}, err
		}
		ok := lt.IsNumeric() && rt.IsNumeric() ||
			lt == symbols.String && rt == symbols.String ||
			lt == symbols.Bool && rt == symbols.Bool && (b.Op == ast.ExprBinaryEq || b.Op == ast.ExprBinaryNe)
		if !ok {
			return symbols.TypeValue{}, ctx.errorf(diag.SemaInvalidOperands, e.Span,
				"operands of `%s` must be two numbers or two strings, found `%s` and `%s`", b.Op, lt, rt)
		}
		return symbols.Var(symbols.Bool, ""), nil

	case b.Op.IsStringOp():
		if _, _, err := operands(str); err != nil {
			return symbols.TypeValue{}, err
		}
		return symbols.Var(symbols.Bool, ""), nil

	case b.Op == ast.ExprBinaryBitOr || b.Op == ast.ExprBinaryBitXor || b.Op == ast.ExprBinaryBitAnd ||
		b.Op == ast.ExprBinaryShl || b.Op == ast.ExprBinaryShr || b.Op == ast.ExprBinaryMod:
		if _, _, err := operands(integer); err != nil {
			return symbols.TypeValue{}, err
		}
		return symbols.Var(symbols.Integer, ""), nil

	default: // + - * \
		lt, rt, err := operands(numeric)
		if err != nil {
			return symbols.TypeValue{}, err
		}
		if lt == symbols.Float || rt == symbols.Float {
			return symbols.Var(symbols.Float, ""), nil
		}
		return symbols.Var(symbols.Integer, ""), nil
	}
}

func checkUnary(ctx *Context, e *ast.Expr, expr ast.ExprID) (symbols.TypeValue, error) {
	u, _ := ctx.exprs.Unary(expr)
	switch u.Op {
	case ast.ExprUnaryNot, ast.ExprUnaryDefined:
		if _, err := semcheck(ctx, anyScalar, u.Operand); err != nil {
			return symbols.TypeValue{}, err
		}
		return symbols.Var(symbols.Bool, ""), nil

	case ast.ExprUnaryNeg:
		if _, err := semcheck(ctx, numeric, u.Operand); err != nil {
			return symbols.TypeValue{}, err
		}
		tv := ctx.types[u.Operand]
		if tv.Const {
			if tv.Type == symbols.Integer {
				return symbols.ConstInt(-tv.Value.Int), nil
			}
			return symbols.ConstFloat(-tv.Value.Float), nil
		}
		return symbols.Var(tv.Type, ""), nil

	default: // ~
		if _, err := semcheck(ctx, integer, u.Operand); err != nil {
			return symbols.TypeValue{}, err
		}
		tv := ctx.types[u.Operand]
		if tv.Const {
			return symbols.ConstInt(^tv.Value.Int), nil
		}
		return symbols.Var(symbols.Integer, ""), nil
	}
}

// warnIfNotBool emits the coercion warning for a rule condition of type t.
func warnIfNotBool(ctx *Context, t symbols.Type, expr ast.ExprID) {
	if t == symbols.Bool {
		return
	}
	e := ctx.exprs.Get(expr)
	d := diag.NewWarning(diag.SemaNonBoolCondition, e.Span,
		fmt.Sprintf("this expression is `%s` but is used as a boolean", t))
	switch t {
	case symbols.String:
		d = d.WithNote(e.Span, "non-empty strings are true")
	default:
		d = d.WithNote(e.Span, "non-zero numbers are true")
	}
	ctx.warn(d)
}

package compiler

import (
	"fmt"
	"strings"

	"fortio.org/safecast"

	"yarax/internal/ast"
	"yarax/internal/symbols"
	"yarax/internal/wasm"
)

// tryExcept emits
//
//	block(ty) { block() { try; br outer } except }
//
// with a handler frame pushed while try is generated, so that raise inside
// try jumps to the except branch. try must leave a ty value; so must except.
func tryExcept(ctx *Context, seq *wasm.InstrSeqBuilder, ty wasm.ValType, try, except func(*wasm.InstrSeqBuilder)) {
	seq.Block(ty, func(outer *wasm.InstrSeqBuilder) {
		outer.Block(wasm.ValNone, func(inner *wasm.InstrSeqBuilder) {
			ctx.handlers = append(ctx.handlers, handlerFrame{ty: ty, id: inner.ID()})
			try(inner)
			ctx.handlers = ctx.handlers[:len(ctx.handlers)-1]
			if !ctx.raiseEmitted {
				inner.Br(outer.ID())
			}
		})
		except(outer)
	})
	ctx.raiseEmitted = false
}

func (ctx *Context) innermost() handlerFrame {
	if len(ctx.handlers) == 0 {
		panic("compiler: undefined value raised outside of any handler")
	}
	return ctx.handlers[len(ctx.handlers)-1]
}

// raise unconditionally transfers control to the innermost handler.
func raise(ctx *Context, seq *wasm.InstrSeqBuilder) {
	seq.Br(ctx.innermost().id)
	ctx.raiseEmitted = true
}

// raiseIf pops an i32 and raises when it is non-zero.
func raiseIf(ctx *Context, seq *wasm.InstrSeqBuilder) {
	seq.BrIf(ctx.innermost().id)
}

// raiseIfUndefined consumes the "defined" flag a host import left on top of its value.
func raiseIfUndefined(ctx *Context, seq *wasm.InstrSeqBuilder) {
	seq.Op(wasm.OpI32Eqz)
	raiseIf(ctx, seq)
}

func (ctx *Context) runtime(name string) wasm.FuncID {
	return ctx.builder.MustFunc(wasm.RuntimeModule, name)
}

// typeOf is the checked type of expr; rule references read as booleans.
func (ctx *Context) typeOf(expr ast.ExprID) symbols.Type {
	tv, ok := ctx.types[expr]
	if !ok {
		panic(fmt.Sprintf("compiler: expression %d was not checked", expr))
	}
	if tv.Type == symbols.Rule {
		return symbols.Bool
	}
	return tv.Type
}

// emitRule evaluates the condition and calls rule_match when it holds.
// Any undefined value in the condition makes the rule not match.
func emitRule(ctx *Context, main *wasm.InstrSeqBuilder, cond ast.ExprID) {
	id, err := safecast.Conv[int32](ctx.ruleID)
	if err != nil {
		panic(fmt.Errorf("compiler: rule id overflow: %w", err))
	}
	main.Block(wasm.ValNone, func(blk *wasm.InstrSeqBuilder) {
		tryExcept(ctx, blk, wasm.I32,
			func(try *wasm.InstrSeqBuilder) { emitBool(ctx, try, cond) },
			func(except *wasm.InstrSeqBuilder) { except.I32Const(0) },
		)
		blk.Op(wasm.OpI32Eqz).BrIf(blk.ID())
		blk.I32Const(id).Call(ctx.runtime("rule_match"))
	})
}

// emitBool leaves expr coerced to an i32 truth value.
func emitBool(ctx *Context, seq *wasm.InstrSeqBuilder, expr ast.ExprID) {
	emitExpr(ctx, seq, expr)
	if ctx.raiseEmitted {
		return
	}
	switch ctx.typeOf(expr) {
	case symbols.Integer:
		seq.I64Const(0).Op(wasm.OpI64Ne)
	case symbols.Float:
		seq.F64Const(0).Op(wasm.OpF64Ne)
	case symbols.String:
		seq.Call(ctx.runtime("str_len")).I64Const(0).Op(wasm.OpI64Ne)
	}
}

func emitConst(ctx *Context, seq *wasm.InstrSeqBuilder, tv symbols.TypeValue) {
	switch tv.Type {
	case symbols.Bool:
		if tv.Value.Bool {
			seq.I32Const(1)
		} else {
			seq.I32Const(0)
		}
	case symbols.Integer:
		seq.I64Const(tv.Value.Int)
	case symbols.Float:
		seq.F64Const(tv.Value.Float)
	case symbols.String:
		seq.I64Const(int64(ctx.builder.AddLiteral(tv.Value.Str)))
	default:
		panic(fmt.Sprintf("compiler: constant of type %s", tv.Type))
	}
}

// emitExpr leaves the value of expr on the stack: i32 for booleans, i64 for
// integers and string handles, f64 for floats.
func emitExpr(ctx *Context, seq *wasm.InstrSeqBuilder, expr ast.ExprID) {
	tv := ctx.types[expr]
	if tv.Const {
		emitConst(ctx, seq, tv)
		return
	}
	e := ctx.exprs.Get(expr)
	switch e.Kind {
	case ast.ExprFilesize:
		seq.Call(ctx.runtime("filesize"))
	case ast.ExprPattern:
		emitPattern(ctx, seq, expr)
	case ast.ExprOf:
		emitOf(ctx, seq, expr)
	case ast.ExprIdent, ast.ExprMember:
		emitSymbol(ctx, seq, tv)
	case ast.ExprIndex:
		emitIndex(ctx, seq, expr)
	case ast.ExprCall:
		emitCall(ctx, seq, expr)
	case ast.ExprBinary:
		emitBinary(ctx, seq, expr)
	case ast.ExprUnary:
		emitUnary(ctx, seq, expr)
	case ast.ExprGroup:
		g, _ := ctx.exprs.Group(expr)
		emitExpr(ctx, seq, g.Inner)
	default:
		panic(fmt.Sprintf("compiler: cannot emit expression kind %d", e.Kind))
	}
}

func lookupSuffix(t symbols.Type) string {
	switch t {
	case symbols.Integer:
		return "int"
	case symbols.Float:
		return "float"
	case symbols.String:
		return "string"
	case symbols.Bool:
		return "bool"
	}
	panic(fmt.Sprintf("compiler: no lookup for type %s", t))
}

func (ctx *Context) pathHandle(path string) int64 {
	return int64(ctx.builder.AddLiteral([]byte(path)))
}

// emitSymbol fetches a value that is only known at scan time.
func emitSymbol(ctx *Context, seq *wasm.InstrSeqBuilder, tv symbols.TypeValue) {
	if tv.Type == symbols.Rule {
		id, err := safecast.Conv[int32](tv.RuleID)
		if err != nil {
			panic(err)
		}
		seq.I32Const(id).Call(ctx.runtime("rule_matched"))
		return
	}
	if !tv.Type.IsScalar() || tv.Path == "" {
		panic(fmt.Sprintf("compiler: cannot load %s without a path", tv.Type))
	}
	seq.I64Const(ctx.pathHandle(tv.Path))
	seq.Call(ctx.runtime("lookup_" + lookupSuffix(tv.Type)))
	raiseIfUndefined(ctx, seq)
}

func emitIndex(ctx *Context, seq *wasm.InstrSeqBuilder, expr ast.ExprID) {
	idx, _ := ctx.exprs.Index(expr)
	arr := ctx.types[idx.Target]
	seq.I64Const(ctx.pathHandle(arr.Path))
	emitExpr(ctx, seq, idx.Index)
	if ctx.raiseEmitted {
		return
	}
	seq.Call(ctx.runtime("array_" + lookupSuffix(arr.Elem.Type)))
	raiseIfUndefined(ctx, seq)
}

func emitCall(ctx *Context, seq *wasm.InstrSeqBuilder, expr ast.ExprID) {
	call, _ := ctx.exprs.Call(expr)
	sig := ctx.calls[expr]
	if _, bad := constArgOutOfRange(ctx, sig, call.Args); bad {
		raise(ctx, seq)
		return
	}
	for _, a := range call.Args {
		emitExpr(ctx, seq, a)
		if ctx.raiseEmitted {
			return
		}
	}
	mangled := sig.Mangled()
	module, name, _ := strings.Cut(mangled, ".")
	seq.Call(ctx.builder.MustFunc(module, name))
	raiseIfUndefined(ctx, seq)
}

func (ctx *Context) patternConst(seq *wasm.InstrSeqBuilder, name string) {
	id, err := safecast.Conv[int32](ctx.mustPatternID(name))
	if err != nil {
		panic(err)
	}
	seq.I32Const(id)
}

func emitPattern(ctx *Context, seq *wasm.InstrSeqBuilder, expr ast.ExprID) {
	p, _ := ctx.exprs.Pattern(expr)
	ctx.patternConst(seq, p.Name)
	switch p.Kind {
	case ast.PatRefMatch:
		seq.Call(ctx.runtime("pat_matched"))
	case ast.PatRefAt:
		emitExpr(ctx, seq, p.At)
		if ctx.raiseEmitted {
			return
		}
		seq.Call(ctx.runtime("pat_at"))
	case ast.PatRefIn:
		emitExpr(ctx, seq, p.Lo)
		if ctx.raiseEmitted {
			return
		}
		emitExpr(ctx, seq, p.Hi)
		if ctx.raiseEmitted {
			return
		}
		seq.Call(ctx.runtime("pat_in"))
	case ast.PatRefCount:
		seq.Call(ctx.runtime("pat_count"))
	case ast.PatRefOffset, ast.PatRefLength:
		if p.Index.IsValid() {
			emitExpr(ctx, seq, p.Index)
			if ctx.raiseEmitted {
				return
			}
		} else {
			seq.I64Const(1)
		}
		if p.Kind == ast.PatRefOffset {
			seq.Call(ctx.runtime("pat_offset"))
		} else {
			seq.Call(ctx.runtime("pat_length"))
		}
		raiseIfUndefined(ctx, seq)
	}
}

// emitOf counts the matched patterns of the set and compares the count
// against the quantifier.
func emitOf(ctx *Context, seq *wasm.InstrSeqBuilder, expr ast.ExprID) {
	of, _ := ctx.exprs.Of(expr)
	set := ctx.sets[expr]
	for i, pid := range set {
		id, err := safecast.Conv[int32](pid)
		if err != nil {
			panic(err)
		}
		seq.I32Const(id).Call(ctx.runtime("pat_matched")).Op(wasm.OpI64ExtendI32U)
		if i > 0 {
			seq.Op(wasm.OpI64Add)
		}
	}
	switch of.Quantifier {
	case ast.QuantAny:
		seq.I64Const(0).Op(wasm.OpI64GtS)
	case ast.QuantAll:
		seq.I64Const(int64(len(set))).Op(wasm.OpI64Eq)
	case ast.QuantNone:
		seq.Op(wasm.OpI64Eqz)
	case ast.QuantExpr:
		emitExpr(ctx, seq, of.Count)
		if ctx.raiseEmitted {
			return
		}
		seq.Op(wasm.OpI64GeS)
	}
}

// Left operand of and/or as a three-state value.
const (
	triFalse int32 = iota
	triTrue
	triUndefined
)

// emitLogical lowers `and`/`or`. An undefined operand is absorbed only when
// the other one decides the result on its own (false for and, true for or);
// otherwise the undefined value is raised to the enclosing handler.
//
// The left operand is evaluated into a three-state local, the right one
// directly under the enclosing handler, each exactly once.
func emitLogical(ctx *Context, seq *wasm.InstrSeqBuilder, b *ast.ExprBinaryData) {
	t := ctx.triLocal()
	ctx.depth++
	defer func() { ctx.depth-- }()

	tryExcept(ctx, seq, wasm.I32,
		func(try *wasm.InstrSeqBuilder) { emitBool(ctx, try, b.Left) },
		func(except *wasm.InstrSeqBuilder) { except.I32Const(triUndefined) },
	)
	seq.LocalTee(t)

	// при вызове t - settled или triUndefined
	raiseIfLeftUndefined := func(s *wasm.InstrSeqBuilder, settled int32) {
		s.LocalGet(t)
		if settled != triFalse {
			s.I32Const(settled).Op(wasm.OpI32Xor)
		}
		raiseIf(ctx, s)
	}
	right := func(s *wasm.InstrSeqBuilder) {
		emitBool(ctx, s, b.Right)
		if ctx.raiseEmitted {
			ctx.raiseEmitted = false
			return
		}
		if b.Op == ast.ExprBinaryAnd {
			s.IfElse(wasm.I32,
				func(then *wasm.InstrSeqBuilder) {
					raiseIfLeftUndefined(then, triTrue)
					then.I32Const(triTrue)
				},
				func(els *wasm.InstrSeqBuilder) { els.I32Const(triFalse) },
			)
			return
		}
		s.IfElse(wasm.I32,
			func(then *wasm.InstrSeqBuilder) { then.I32Const(triTrue) },
			func(els *wasm.InstrSeqBuilder) {
				raiseIfLeftUndefined(els, triFalse)
				els.I32Const(triFalse)
			},
		)
	}

	if b.Op == ast.ExprBinaryAnd {
		// false слева решает всё
		seq.IfElse(wasm.I32, right, func(els *wasm.InstrSeqBuilder) { els.I32Const(triFalse) })
		return
	}
	// or: true слева решает всё
	seq.I32Const(triTrue).Op(wasm.OpI32Xor)
	seq.IfElse(wasm.I32, right, func(els *wasm.InstrSeqBuilder) { els.I32Const(triTrue) })
}

var (
	intCmp = map[ast.ExprBinaryOp]wasm.Op{
		ast.ExprBinaryEq: wasm.OpI64Eq, ast.ExprBinaryNe: wasm.OpI64Ne,
		ast.ExprBinaryLt: wasm.OpI64LtS, ast.ExprBinaryLe: wasm.OpI64LeS,
		ast.ExprBinaryGt: wasm.OpI64GtS, ast.ExprBinaryGe: wasm.OpI64GeS,
	}
	floatCmp = map[ast.ExprBinaryOp]wasm.Op{
		ast.ExprBinaryEq: wasm.OpF64Eq, ast.ExprBinaryNe: wasm.OpF64Ne,
		ast.ExprBinaryLt: wasm.OpF64Lt, ast.ExprBinaryLe: wasm.OpF64Le,
		ast.ExprBinaryGt: wasm.OpF64Gt, ast.ExprBinaryGe: wasm.OpF64Ge,
	}
	stringOps = map[ast.ExprBinaryOp]string{
		ast.ExprBinaryContains:    "str_contains",
		ast.ExprBinaryIContains:   "str_icontains",
		ast.ExprBinaryStartsWith:  "str_startswith",
		ast.ExprBinaryIStartsWith: "str_istartswith",
		ast.ExprBinaryEndsWith:    "str_endswith",
		ast.ExprBinaryIEndsWith:   "str_iendswith",
		ast.ExprBinaryIEquals:     "str_iequals",
	}
	intArith = map[ast.ExprBinaryOp]wasm.Op{
		ast.ExprBinaryAdd: wasm.OpI64Add, ast.ExprBinarySub: wasm.OpI64Sub, ast.ExprBinaryMul: wasm.OpI64Mul,
		ast.ExprBinaryBitAnd: wasm.OpI64And, ast.ExprBinaryBitOr: wasm.OpI64Or, ast.ExprBinaryBitXor: wasm.OpI64Xor,
	}
	floatArith = map[ast.ExprBinaryOp]wasm.Op{
		ast.ExprBinaryAdd: wasm.OpF64Add, ast.ExprBinarySub: wasm.OpF64Sub,
		ast.ExprBinaryMul: wasm.OpF64Mul, ast.ExprBinaryDiv: wasm.OpF64Div,
	}
)

// emitOperands emits both operands, converting integers to floats when
// asFloat is set. It reports false when the code after it is unreachable.
func emitOperands(ctx *Context, seq *wasm.InstrSeqBuilder, b *ast.ExprBinaryData, asFloat bool) bool {
	for _, x := range [2]ast.ExprID{b.Left, b.Right} {
		emitExpr(ctx, seq, x)
		if ctx.raiseEmitted {
			return false
		}
		if asFloat && ctx.typeOf(x) == symbols.Integer {
			seq.Op(wasm.OpF64ConvertI64S)
		}
	}
	return true
}

func emitBinary(ctx *Context, seq *wasm.InstrSeqBuilder, expr ast.ExprID) {
	b, _ := ctx.exprs.Binary(expr)
	lt, rt := ctx.typeOf(b.Left), ctx.typeOf(b.Right)

	switch {
	case b.Op == ast.ExprBinaryAnd || b.Op == ast.ExprBinaryOr:
		emitLogical(ctx, seq, b)

	case b.Op.IsComparison():
		switch {
		case lt == symbols.String:
			if emitOperands(ctx, seq, b, false) {
				seq.Call(ctx.runtime("str_cmp")).I64Const(0).Op(intCmp[b.Op])
			}
		case lt == symbols.Bool:
			if emitOperands(ctx, seq, b, false) {
				seq.Op(wasm.OpI32Xor)
				if b.Op == ast.ExprBinaryEq {
					seq.Op(wasm.OpI32Eqz)
				}
			}
		case lt == symbols.Integer && rt == symbols.Integer:
			if emitOperands(ctx, seq, b, false) {
				seq.Op(intCmp[b.Op])
			}
		default:
			if emitOperands(ctx, seq, b, true) {
				seq.Op(floatCmp[b.Op])
			}
		}

	case b.Op.IsStringOp():
		if emitOperands(ctx, seq, b, false) {
			seq.Call(ctx.runtime(stringOps[b.Op]))
		}

	case b.Op == ast.ExprBinaryShl || b.Op == ast.ExprBinaryShr:
		// отрицательный сдвиг не определён
		emitChecked(ctx, seq, b, wasm.OpI64LtS, map[ast.ExprBinaryOp]wasm.Op{
			ast.ExprBinaryShl: wasm.OpI64Shl, ast.ExprBinaryShr: wasm.OpI64ShrS,
		}[b.Op])

	case (b.Op == ast.ExprBinaryDiv || b.Op == ast.ExprBinaryMod) && ctx.typeOf(expr) == symbols.Integer:
		op := wasm.OpI64DivS
		if b.Op == ast.ExprBinaryMod {
			op = wasm.OpI64RemS
		}
		emitChecked(ctx, seq, b, wasm.OpI64Eq, op)

	case ctx.typeOf(expr) == symbols.Float:
		if emitOperands(ctx, seq, b, true) {
			seq.Op(floatArith[b.Op])
		}

	default:
		if emitOperands(ctx, seq, b, false) {
			seq.Op(intArith[b.Op])
		}
	}
}

// emitChecked emits an integer op whose right operand is tested first:
// `right <cmp> 0` raises. Used for division by zero and negative shifts.
func emitChecked(ctx *Context, seq *wasm.InstrSeqBuilder, b *ast.ExprBinaryData, cmp, op wasm.Op) {
	if !emitOperands(ctx, seq, b, false) {
		return
	}
	seq.LocalTee(ctx.scratch).I64Const(0).Op(cmp)
	raiseIf(ctx, seq)
	seq.LocalGet(ctx.scratch).Op(op)
}

func emitUnary(ctx *Context, seq *wasm.InstrSeqBuilder, expr ast.ExprID) {
	u, _ := ctx.exprs.Unary(expr)
	switch u.Op {
	case ast.ExprUnaryNot:
		emitBool(ctx, seq, u.Operand)
		if !ctx.raiseEmitted {
			seq.Op(wasm.OpI32Eqz)
		}

	case ast.ExprUnaryDefined:
		tryExcept(ctx, seq, wasm.I32,
			func(try *wasm.InstrSeqBuilder) {
				emitExpr(ctx, try, u.Operand)
				if !ctx.raiseEmitted {
					try.Drop().I32Const(1)
				}
			},
			func(except *wasm.InstrSeqBuilder) { except.I32Const(0) },
		)

	case ast.ExprUnaryNeg:
		if ctx.typeOf(u.Operand) == symbols.Float {
			emitExpr(ctx, seq, u.Operand)
			if !ctx.raiseEmitted {
				seq.Op(wasm.OpF64Neg)
			}
			return
		}
		seq.I64Const(0)
		emitExpr(ctx, seq, u.Operand)
		if !ctx.raiseEmitted {
			seq.Op(wasm.OpI64Sub)
		}

	case ast.ExprUnaryBitNot:
		emitExpr(ctx, seq, u.Operand)
		if !ctx.raiseEmitted {
			seq.I64Const(-1).Op(wasm.OpI64Xor)
		}
	}
}

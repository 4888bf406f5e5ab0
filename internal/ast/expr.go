package ast

import (
	"yarax/internal/source"
)

type ExprKind uint8

const (
	ExprLit ExprKind = iota
	ExprFilesize
	ExprPattern
	ExprOf
	ExprIdent
	ExprMember
	ExprIndex
	ExprCall
	ExprBinary
	ExprUnary
	ExprGroup
)

type Expr struct {
	Kind    ExprKind
	Span    source.Span
	Payload PayloadID
}

type ExprLitKind uint8

const (
	LitInt ExprLitKind = iota
	LitFloat
	LitString
	LitBool
)

type ExprLiteralData struct {
	Kind  ExprLitKind
	Int   int64
	Float float64
	Str   []byte
	Bool  bool
}

type PatternRefKind uint8

const (
	PatRefMatch  PatternRefKind = iota // $a
	PatRefAt                           // $a at e
	PatRefIn                           // $a in (lo..hi)
	PatRefCount                        // #a
	PatRefOffset                       // @a[i]
	PatRefLength                       // !a[i]
)

// ExprPatternData references a pattern of the enclosing rule.
// Name keeps the `$` sigil regardless of the operator used.
type ExprPatternData struct {
	Kind  PatternRefKind
	Name  string
	Index ExprID // @a[i], !a[i]; NoExprID means index 1
	At    ExprID
	Lo    ExprID
	Hi    ExprID
}

type Quantifier uint8

const (
	QuantAny Quantifier = iota
	QuantAll
	QuantNone
	QuantExpr
)

// PatternSetItem is `$a` or `$a*` inside an `of` set.
type PatternSetItem struct {
	Name     string
	Wildcard bool
	Span     source.Span
}

type ExprOfData struct {
	Quantifier Quantifier
	Count      ExprID // for QuantExpr
	Them       bool
	Items      []PatternSetItem
}

type ExprIdentData struct {
	Name string
}

type ExprMemberData struct {
	Target    ExprID
	Field     string
	FieldSpan source.Span
}

type ExprIndexData struct {
	Target ExprID
	Index  ExprID
}

type ExprCallData struct {
	Callee ExprID
	Args   []ExprID
}

type ExprBinaryOp uint8

const (
	ExprBinaryOr ExprBinaryOp = iota
	ExprBinaryAnd
	ExprBinaryEq
	ExprBinaryNe
	ExprBinaryLt
	ExprBinaryLe
	ExprBinaryGt
	ExprBinaryGe
	ExprBinaryContains
	ExprBinaryIContains
	ExprBinaryStartsWith
	ExprBinaryIStartsWith
	ExprBinaryEndsWith
	ExprBinaryIEndsWith
	ExprBinaryIEquals
	ExprBinaryBitOr
	ExprBinaryBitXor
	ExprBinaryBitAnd
	ExprBinaryShl
	ExprBinaryShr
	ExprBinaryAdd
	ExprBinarySub
	ExprBinaryMul
	ExprBinaryDiv
	ExprBinaryMod
)

var binaryOpNames = [...]string{
	ExprBinaryOr:          "or",
	ExprBinaryAnd:         "and",
	ExprBinaryEq:          "==",
	ExprBinaryNe:          "!=",
	ExprBinaryLt:          "<",
	ExprBinaryLe:          "<=",
	ExprBinaryGt:          ">",
	ExprBinaryGe:          ">=",
	ExprBinaryContains:    "contains",
	ExprBinaryIContains:   "icontains",
	ExprBinaryStartsWith:  "startswith",
	ExprBinaryIStartsWith: "istartswith",
	ExprBinaryEndsWith:    "endswith",
	ExprBinaryIEndsWith:   "iendswith",
	ExprBinaryIEquals:     "iequals",
	ExprBinaryBitOr:       "|",
	ExprBinaryBitXor:      "^",
	ExprBinaryBitAnd:      "&",
	ExprBinaryShl:         "<<",
	ExprBinaryShr:         ">>",
	ExprBinaryAdd:         "+",
	ExprBinarySub:         "-",
	ExprBinaryMul:         "*",
	ExprBinaryDiv:         "\\",
	ExprBinaryMod:         "%",
}

func (op ExprBinaryOp) String() string {
	if int(op) < len(binaryOpNames) {
		return binaryOpNames[op]
	}
	return "?"
}

// IsComparison reports whether op is one of == != < <= > >=.
func (op ExprBinaryOp) IsComparison() bool {
	return op >= ExprBinaryEq && op <= ExprBinaryGe
}

// IsStringOp reports whether op is one of the string operators (contains ... iequals).
func (op ExprBinaryOp) IsStringOp() bool {
	return op >= ExprBinaryContains && op <= ExprBinaryIEquals
}

type ExprBinaryData struct {
	Op    ExprBinaryOp
	Left  ExprID
	Right ExprID
}

type ExprUnaryOp uint8

const (
	ExprUnaryNot ExprUnaryOp = iota
	ExprUnaryNeg
	ExprUnaryBitNot
	ExprUnaryDefined
)

func (op ExprUnaryOp) String() string {
	switch op {
	case ExprUnaryNot:
		return "not"
	case ExprUnaryNeg:
		return "-"
	case ExprUnaryBitNot:
		return "~"
	case ExprUnaryDefined:
		return "defined"
	default:
		return "?"
	}
}

type ExprUnaryData struct {
	Op      ExprUnaryOp
	Operand ExprID
}

type ExprGroupData struct {
	Inner ExprID
}

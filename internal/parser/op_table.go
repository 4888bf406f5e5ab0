package parser

import (
	"yarax/internal/ast"
	"yarax/internal/token"
)

// Таблица приоритетов для бинарных операторов
// Чем больше число, тем выше приоритет
const (
	precLogicalOr      = 1  // or
	precLogicalAnd     = 2  // and
	precNot            = 3  // not, defined (префиксные)
	precEquality       = 4  // == != contains icontains startswith ... iequals
	precComparison     = 5  // < <= > >=
	precBitwiseOr      = 6  // |
	precBitwiseXor     = 7  // ^
	precBitwiseAnd     = 8  // &
	precShift          = 9  // << >>
	precAdditive       = 10 // + -
	precMultiplicative = 11 // * \ %
)

// binaryOps: приоритет и узел AST для каждого бинарного токена.
// Все бинарные операторы левоассоциативны.
var binaryOps = map[token.Kind]struct {
	prec int
	op   ast.ExprBinaryOp
}{
	token.KwOr:          {precLogicalOr, ast.ExprBinaryOr},
	token.KwAnd:         {precLogicalAnd, ast.ExprBinaryAnd},
	token.EqEq:          {precEquality, ast.ExprBinaryEq},
	token.BangEq:        {precEquality, ast.ExprBinaryNe},
	token.KwContains:    {precEquality, ast.ExprBinaryContains},
	token.KwIContains:   {precEquality, ast.ExprBinaryIContains},
	token.KwStartsWith:  {precEquality, ast.ExprBinaryStartsWith},
	token.KwIStartsWith: {precEquality, ast.ExprBinaryIStartsWith},
	token.KwEndsWith:    {precEquality, ast.ExprBinaryEndsWith},
	token.KwIEndsWith:   {precEquality, ast.ExprBinaryIEndsWith},
	token.KwIEquals:     {precEquality, ast.ExprBinaryIEquals},
	token.Lt:            {precComparison, ast.ExprBinaryLt},
	token.LtEq:          {precComparison, ast.ExprBinaryLe},
	token.Gt:            {precComparison, ast.ExprBinaryGt},
	token.GtEq:          {precComparison, ast.ExprBinaryGe},
	token.Pipe:          {precBitwiseOr, ast.ExprBinaryBitOr},
	token.Caret:         {precBitwiseXor, ast.ExprBinaryBitXor},
	token.Amp:           {precBitwiseAnd, ast.ExprBinaryBitAnd},
	token.Shl:           {precShift, ast.ExprBinaryShl},
	token.Shr:           {precShift, ast.ExprBinaryShr},
	token.Plus:          {precAdditive, ast.ExprBinaryAdd},
	token.Minus:         {precAdditive, ast.ExprBinarySub},
	token.Star:          {precMultiplicative, ast.ExprBinaryMul},
	token.Backslash:     {precMultiplicative, ast.ExprBinaryDiv},
	token.Percent:       {precMultiplicative, ast.ExprBinaryMod},
}

// getBinaryOperatorPrec возвращает приоритет оператора или -1.
func getBinaryOperatorPrec(kind token.Kind) int {
	if info, ok := binaryOps[kind]; ok {
		return info.prec
	}
	return -1
}

// getUnaryOperator возвращает тип унарного оператора и приоритет его операнда.
// `not` и `defined` охватывают сравнения целиком: `not a == b` - это `not (a == b)`.
func getUnaryOperator(kind token.Kind) (ast.ExprUnaryOp, int, bool) {
	switch kind {
	case token.KwNot:
		return ast.ExprUnaryNot, precNot + 1, true
	case token.KwDefined:
		return ast.ExprUnaryDefined, precNot + 1, true
	case token.Minus:
		return ast.ExprUnaryNeg, precMultiplicative + 1, true
	case token.Tilde:
		return ast.ExprUnaryBitNot, precMultiplicative + 1, true
	default:
		return 0, 0, false
	}
}

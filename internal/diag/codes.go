package diag

import (
	"fmt"
)

type Code uint16

const (
	UnknownCode Code = 0

	// Лексические
	LexInfo                     Code = 1000
	LexUnknownChar              Code = 1001
	LexUnterminatedString       Code = 1002
	LexUnterminatedBlockComment Code = 1003
	LexBadNumber                Code = 1004
	LexBadEscape                Code = 1005
	LexUnterminatedHex          Code = 1006

	// Синтаксические
	SynInfo               Code = 2000
	SynUnexpectedToken    Code = 2001
	SynUnexpectedTopLevel Code = 2002
	SynExpectIdentifier   Code = 2003
	SynExpectExpression   Code = 2004
	SynExpectColon        Code = 2005
	SynExpectLBrace       Code = 2006
	SynUnclosedBrace      Code = 2007
	SynUnclosedParen      Code = 2008
	SynUnclosedBracket    Code = 2009
	SynExpectCondition    Code = 2010
	SynExpectPatternValue Code = 2011
	SynBadHexPattern      Code = 2012
	SynBadMetaValue       Code = 2013
	SynUnsupported        Code = 2014
	SynExpectModuleName   Code = 2015
	SynIntLiteralRange    Code = 2016

	// Семантические
	SemaInfo                Code = 3000
	SemaUnknownModule       Code = 3001
	SemaDuplicateImport     Code = 3002
	SemaUnresolvedSymbol    Code = 3003
	SemaTypeMismatch        Code = 3004
	SemaInvalidOperands     Code = 3005
	SemaNonBoolCondition    Code = 3006
	SemaUnknownPattern      Code = 3007
	SemaDuplicateRule       Code = 3008
	SemaNotAStruct          Code = 3009
	SemaNotAnArray          Code = 3010
	SemaNotCallable         Code = 3011
	SemaNoOverload          Code = 3012
	SemaEmptyPatternSet     Code = 3013
	SemaInvalidBase         Code = 3014
	SemaAnonymousOutsideSet Code = 3015

	// I/O
	IOLoadFileError Code = 4000
)

var (
	codeDescription = map[Code]string{
		UnknownCode:                 "Unknown error",
		LexInfo:                     "Lexical information",
		LexUnknownChar:              "Unknown character",
		LexUnterminatedString:       "Unterminated string",
		LexUnterminatedBlockComment: "Unterminated block comment",
		LexBadNumber:                "Bad number",
		LexBadEscape:                "Invalid escape sequence",
		LexUnterminatedHex:          "Unterminated hex pattern",
		SynInfo:                     "Syntax information",
		SynUnexpectedToken:          "Unexpected token",
		SynUnexpectedTopLevel:       "Unexpected top-level construct",
		SynExpectIdentifier:         "Expected identifier",
		SynExpectExpression:         "Expected expression",
		SynExpectColon:              "Expected ':'",
		SynExpectLBrace:             "Expected '{'",
		SynUnclosedBrace:            "Unclosed brace",
		SynUnclosedParen:            "Unclosed parenthesis",
		SynUnclosedBracket:          "Unclosed bracket",
		SynExpectCondition:          "Missing condition section",
		SynExpectPatternValue:       "Expected pattern value",
		SynBadHexPattern:            "Malformed hex pattern",
		SynBadMetaValue:             "Invalid metadata value",
		SynUnsupported:              "Unsupported construct",
		SynExpectModuleName:         "Expected module name",
		SynIntLiteralRange:          "Integer literal out of range",
		SemaInfo:                    "Semantic information",
		SemaUnknownModule:           "Unknown module",
		SemaDuplicateImport:         "Duplicate import",
		SemaUnresolvedSymbol:        "Unresolved identifier",
		SemaTypeMismatch:            "Type mismatch",
		SemaInvalidOperands:         "Invalid operands",
		SemaNonBoolCondition:        "Non-boolean condition",
		SemaUnknownPattern:          "Unknown pattern",
		SemaDuplicateRule:           "Duplicate rule",
		SemaNotAStruct:              "Not a structure",
		SemaNotAnArray:              "Not an array",
		SemaNotCallable:             "Not callable",
		SemaNoOverload:              "No matching overload",
		SemaEmptyPatternSet:         "Empty pattern set",
		SemaInvalidBase:             "Invalid numeric base",
		SemaAnonymousOutsideSet:     "Anonymous pattern outside pattern set",
		IOLoadFileError:             "I/O load file error",
	}
)

func (c Code) ID() string {
	switch ic := int(c); {
	case ic >= 1000 && ic < 2000:
		return fmt.Sprintf("LEX%04d", ic)
	case ic >= 2000 && ic < 3000:
		return fmt.Sprintf("SYN%04d", ic)
	case ic >= 3000 && ic < 4000:
		return fmt.Sprintf("SEM%04d", ic)
	case ic >= 4000 && ic < 5000:
		return fmt.Sprintf("IO%04d", ic)
	}
	return "E0000"
}

func (c Code) Title() string {
	desc, ok := codeDescription[c]
	if !ok {
		return codeDescription[UnknownCode]
	}
	return desc
}

func (c Code) String() string {
	return fmt.Sprintf("[%s]: %s", c.ID(), c.Title())
}

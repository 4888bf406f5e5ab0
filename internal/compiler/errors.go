package compiler

import (
	"errors"

	"yarax/internal/diag"
)

// ErrAlreadyBuilt is returned by AddSource, DefineGlobal, NewNamespace and
// Build once the compiler has been built.
var ErrAlreadyBuilt = errors.New("compiler: rules already built")

// ErrorKind classifies errors reported for rule sources.
type ErrorKind uint8

const (
	SyntaxError ErrorKind = iota
	CompileError
)

func (k ErrorKind) String() string {
	switch k {
	case SyntaxError:
		return "syntax error"
	case CompileError:
		return "compile error"
	default:
		return "error"
	}
}

// Error is the first error found in a source passed to AddSource.
// Report is the rendered diagnostic, colorized when the compiler was
// created WithColorizeErrors(true).
type Error struct {
	Kind       ErrorKind
	Diagnostic diag.Diagnostic
	Report     string
}

func (e *Error) Error() string { return e.Report }

// Warning is a non-fatal diagnostic collected during compilation.
type Warning struct {
	Diagnostic diag.Diagnostic
	Report     string
}

func (w Warning) String() string { return w.Report }

// diagError carries a diagnostic out of semcheck.
type diagError struct {
	d diag.Diagnostic
}

func (e *diagError) Error() string { return e.d.Message }

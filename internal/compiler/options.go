package compiler

import (
	"github.com/rs/zerolog"
)

type options struct {
	colorize       bool
	logger         zerolog.Logger
	maxDiagnostics int
	relaxed        bool
}

// Option configures a Compiler.
type Option func(*options)

// WithColorizeErrors turns ANSI colors on in rendered reports.
func WithColorizeErrors(on bool) Option {
	return func(o *options) { o.colorize = on }
}

func WithLogger(l zerolog.Logger) Option {
	return func(o *options) { o.logger = l }
}

// WithMaxDiagnostics limits how many parser diagnostics are collected per source.
func WithMaxDiagnostics(n int) Option {
	return func(o *options) { o.maxDiagnostics = n }
}

// WithRelaxed disables the warning for non-boolean rule conditions.
func WithRelaxed(on bool) Option {
	return func(o *options) { o.relaxed = on }
}

func defaultOptions() options {
	return options{
		logger:         zerolog.Nop(),
		maxDiagnostics: 32,
	}
}

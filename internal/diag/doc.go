// Package diag defines the diagnostic model shared by the lexer, the parser
// and the rule compiler.
//
// Diagnostic is the central record: Severity, a numeric Code with a stable
// string form (LEX/SYN/SEM/IO prefixes), a short Message, the Primary span and
// optional Notes pointing at related locations.
//
// Phases emit through a Reporter so they stay decoupled from storage;
// BagReporter collects into a Bag, which supports sorting, deduplication and
// truncation (the compiler truncates on a failed AddSource to restore the
// previous state).
//
// Package diag does no formatting or IO. Rendering lives in internal/diagfmt.
package diag

// Package token defines lexical token kinds and trivia for the rule language.
// Invariants:
//   - Token.Text is the exact source slice covered by Token.Span.
//   - Pattern references keep their sigil in Text ("$a", "#a", "@a", "!a").
//   - Module and field names are plain identifiers; only the grammar's own
//     words are keywords.
package token

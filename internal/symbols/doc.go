// Package symbols models the names visible to rule conditions: scalar types,
// typed values with optional compile-time constants, and lookup-capable
// namespaces (modules, nested structures, the per-namespace table).
package symbols

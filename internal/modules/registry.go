// Package modules is the catalog of built-in data modules a rule can import.
//
// Each module has two faces: a symbols.Fields describing its exported fields
// and functions to the compiler, and the data/function implementations the
// scanner calls at scan time. Both are produced by the same builder so their
// paths and mangled names always agree.
package modules

import (
	"fmt"
	"slices"
	"sort"
	"strings"

	"yarax/internal/symbols"
)

// Func implements one overload of a module function.
// The boolean result is false when the value is undefined.
type Func func(args []symbols.Value) (symbols.Value, bool)

// Field is a module data value visible at scan time.
type Field struct {
	Type    symbols.Type
	Defined bool
	Value   symbols.Value
	Array   []symbols.Value // для массивов
	IsArray bool
}

// Module is one importable module.
type Module struct {
	Name   string
	Decl   *symbols.Fields
	Funcs  map[string]Func  // mangled name -> implementation
	Fields map[string]Field // full path -> value
}

var registry = map[string]*Module{}

// Register adds m to the catalog; registering the same name twice panics.
func Register(m *Module) {
	if _, dup := registry[m.Name]; dup {
		panic(fmt.Sprintf("modules: %q registered twice", m.Name))
	}
	registry[m.Name] = m
}

// Lookup returns the module called name.
func Lookup(name string) (*Module, bool) {
	m, ok := registry[name]
	return m, ok
}

// Names returns all module names, sorted.
func Names() []string {
	names := make([]string, 0, len(registry))
	for n := range registry {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// Signature describes an exported function overload for import declaration.
type Signature struct {
	Mangled string
	Sig     symbols.FuncSig
}

// Signatures lists every function overload of every module in a stable order:
// modules by name, then overloads by mangled name.
func Signatures() []Signature {
	var out []Signature
	for _, name := range Names() {
		m := registry[name]
		var local []Signature
		collectSigs(m.Decl, &local)
		slices.SortFunc(local, func(a, b Signature) int { return strings.Compare(a.Mangled, b.Mangled) })
		out = append(out, local...)
	}
	return out
}

func collectSigs(s *symbols.Fields, out *[]Signature) {
	for _, n := range s.Names() {
		v, _ := s.Lookup(n)
		switch v.Type {
		case symbols.Func:
			for _, f := range v.Funcs {
				*out = append(*out, Signature{Mangled: f.Mangled(), Sig: f})
			}
		case symbols.Struct:
			if st, ok := v.Fields.(*symbols.Fields); ok {
				collectSigs(st, out)
			}
		}
	}
}

// Resolver answers scan-time queries across all registered modules.
type Resolver struct{}

// Field returns the data value stored at path.
func (Resolver) Field(path string) (Field, bool) {
	m, ok := registry[moduleOf(path)]
	if !ok {
		return Field{}, false
	}
	f, ok := m.Fields[path]
	return f, ok
}

// Func returns the implementation of a mangled overload.
func (Resolver) Func(mangled string) (Func, bool) {
	m, ok := registry[moduleOf(mangled)]
	if !ok {
		return nil, false
	}
	f, ok := m.Funcs[mangled]
	return f, ok
}

func moduleOf(path string) string {
	for i := 0; i < len(path); i++ {
		if path[i] == '.' || path[i] == '@' {
			return path[:i]
		}
	}
	return path
}

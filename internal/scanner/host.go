package scanner

import (
	"bytes"
	"context"
	"fmt"
	"strings"

	"yarax/internal/compiler"
	"yarax/internal/modules"
	"yarax/internal/symbols"
	"yarax/internal/vm"
	"yarax/internal/wasm"
)

// hostFunc implements one import. results has one slot per declared result.
type hostFunc func(st *scanState, args, results []vm.Value) error

// scanState is the per-scan data the host functions read and update.
type scanState struct {
	ctx     context.Context
	s       *Scanner
	data    []byte
	matches [][]Match
	matched []bool
	strs    [][]byte // строки, созданные во время сканирования
}

func (st *scanState) Call(fn wasm.FuncID, args, results []vm.Value) error {
	if err := st.ctx.Err(); err != nil {
		return err
	}
	if int(fn) >= len(st.s.funcs) {
		return fmt.Errorf("scanner: import %d out of range", fn)
	}
	return st.s.funcs[fn](st, args, results)
}

func (st *scanState) literals() [][]byte { return st.s.rules.Module().Literals }

// str resolves a string handle: literal ids come first, then the strings
// produced while scanning.
func (st *scanState) str(h int64) ([]byte, error) {
	lits := st.literals()
	n := int64(len(lits))
	switch {
	case h >= 1 && h <= n:
		return lits[h-1], nil
	case h > n && h-n-1 < int64(len(st.strs)):
		return st.strs[h-n-1], nil
	}
	return nil, fmt.Errorf("scanner: invalid string handle %d", h)
}

func (st *scanState) newString(b []byte) int64 {
	st.strs = append(st.strs, b)
	return int64(len(st.literals()) + len(st.strs))
}

func (st *scanState) rule(v vm.Value) (int, error) {
	id := int(v.I32())
	if id < 0 || id >= len(st.matched) {
		return 0, fmt.Errorf("scanner: invalid rule id %d", id)
	}
	return id, nil
}

func (st *scanState) pattern(v vm.Value) ([]Match, error) {
	id := int(v.I32())
	if id < 0 || id >= len(st.matches) {
		return nil, fmt.Errorf("scanner: invalid pattern id %d", id)
	}
	return st.matches[id], nil
}

// encode stores v into results as (value, defined).
func (st *scanState) encode(t symbols.Type, v symbols.Value, results []vm.Value) {
	switch t {
	case symbols.Integer:
		results[0] = vm.I64(v.Int)
	case symbols.Float:
		results[0] = vm.F64(v.Float)
	case symbols.Bool:
		results[0] = vm.Bool(v.Bool)
	case symbols.String:
		results[0] = vm.I64(st.newString(v.Str))
	}
	results[1] = vm.Bool(true)
}

func undefined(results []vm.Value) {
	results[0], results[1] = 0, vm.Bool(false)
}

// field finds a scalar by path: external variables first, then module data.
func (st *scanState) field(path string) (symbols.Type, symbols.Value, bool) {
	if g, ok := st.s.globals[path]; ok {
		return g.Type, g.Value, true
	}
	f, ok := modules.Resolver{}.Field(path)
	if !ok || !f.Defined || f.IsArray {
		return symbols.Unknown, symbols.Value{}, false
	}
	return f.Type, f.Value, true
}

func lookupFunc(st *scanState, args, results []vm.Value) error {
	path, err := st.str(args[0].I64())
	if err != nil {
		return err
	}
	t, v, ok := st.field(string(path))
	if !ok {
		undefined(results)
		return nil
	}
	st.encode(t, v, results)
	return nil
}

func arrayFunc(st *scanState, args, results []vm.Value) error {
	path, err := st.str(args[0].I64())
	if err != nil {
		return err
	}
	f, ok := modules.Resolver{}.Field(string(path))
	idx := args[1].I64()
	if !ok || !f.IsArray || idx < 0 || idx >= int64(len(f.Array)) {
		undefined(results)
		return nil
	}
	st.encode(f.Type, f.Array[idx], results)
	return nil
}

// strBinary adapts a predicate over two strings.
func strBinary(pred func(a, b []byte) bool) hostFunc {
	return func(st *scanState, args, results []vm.Value) error {
		a, err := st.str(args[0].I64())
		if err != nil {
			return err
		}
		b, err := st.str(args[1].I64())
		if err != nil {
			return err
		}
		results[0] = vm.Bool(pred(a, b))
		return nil
	}
}

func lowerBytes(b []byte) []byte { return bytes.ToLower(b) }

// occurrence returns the i-th (1-based) match of a pattern.
func occurrence(st *scanState, args []vm.Value) (Match, bool, error) {
	ms, err := st.pattern(args[0])
	if err != nil {
		return Match{}, false, err
	}
	i := args[1].I64()
	if i < 1 || i > int64(len(ms)) {
		return Match{}, false, nil
	}
	return ms[i-1], true, nil
}

var runtimeFuncs = map[string]hostFunc{
	"rule_match": func(st *scanState, args, _ []vm.Value) error {
		id, err := st.rule(args[0])
		if err != nil {
			return err
		}
		st.matched[id] = true
		return nil
	},
	"rule_matched": func(st *scanState, args, results []vm.Value) error {
		id, err := st.rule(args[0])
		if err != nil {
			return err
		}
		results[0] = vm.Bool(st.matched[id])
		return nil
	},
	"pat_matched": func(st *scanState, args, results []vm.Value) error {
		ms, err := st.pattern(args[0])
		results[0] = vm.Bool(len(ms) > 0)
		return err
	},
	"pat_count": func(st *scanState, args, results []vm.Value) error {
		ms, err := st.pattern(args[0])
		results[0] = vm.I64(int64(len(ms)))
		return err
	},
	"pat_offset": func(st *scanState, args, results []vm.Value) error {
		m, ok, err := occurrence(st, args)
		if !ok {
			undefined(results)
			return err
		}
		results[0], results[1] = vm.I64(m.Offset), vm.Bool(true)
		return nil
	},
	"pat_length": func(st *scanState, args, results []vm.Value) error {
		m, ok, err := occurrence(st, args)
		if !ok {
			undefined(results)
			return err
		}
		results[0], results[1] = vm.I64(m.Length), vm.Bool(true)
		return nil
	},
	"pat_at": func(st *scanState, args, results []vm.Value) error {
		ms, err := st.pattern(args[0])
		off := args[1].I64()
		found := false
		for _, m := range ms {
			if m.Offset == off {
				found = true
				break
			}
		}
		results[0] = vm.Bool(found)
		return err
	},
	"pat_in": func(st *scanState, args, results []vm.Value) error {
		ms, err := st.pattern(args[0])
		lo, hi := args[1].I64(), args[2].I64()
		found := false
		for _, m := range ms {
			if m.Offset >= lo && m.Offset <= hi {
				found = true
				break
			}
		}
		results[0] = vm.Bool(found)
		return err
	},
	"filesize": func(st *scanState, _, results []vm.Value) error {
		results[0] = vm.I64(int64(len(st.data)))
		return nil
	},
	"str_cmp": func(st *scanState, args, results []vm.Value) error {
		a, err := st.str(args[0].I64())
		if err != nil {
			return err
		}
		b, err := st.str(args[1].I64())
		if err != nil {
			return err
		}
		results[0] = vm.I64(int64(bytes.Compare(a, b)))
		return nil
	},
	"str_len": func(st *scanState, args, results []vm.Value) error {
		s, err := st.str(args[0].I64())
		results[0] = vm.I64(int64(len(s)))
		return err
	},
	"str_contains":    strBinary(bytes.Contains),
	"str_icontains":   strBinary(func(a, b []byte) bool { return bytes.Contains(lowerBytes(a), lowerBytes(b)) }),
	"str_startswith":  strBinary(bytes.HasPrefix),
	"str_istartswith": strBinary(func(a, b []byte) bool { return bytes.HasPrefix(lowerBytes(a), lowerBytes(b)) }),
	"str_endswith":    strBinary(bytes.HasSuffix),
	"str_iendswith":   strBinary(func(a, b []byte) bool { return bytes.HasSuffix(lowerBytes(a), lowerBytes(b)) }),
	"str_iequals":     strBinary(bytes.EqualFold),
	"lookup_int":      lookupFunc,
	"lookup_float":    lookupFunc,
	"lookup_string":   lookupFunc,
	"lookup_bool":     lookupFunc,
	"array_int":       arrayFunc,
	"array_float":     arrayFunc,
	"array_string":    arrayFunc,
	"array_bool":      arrayFunc,
}

// moduleFunc adapts a module function to the stack calling convention.
func moduleFunc(sig symbols.FuncSig, impl modules.Func) hostFunc {
	return func(st *scanState, args, results []vm.Value) error {
		in := make([]symbols.Value, len(sig.Args))
		for i, t := range sig.Args {
			switch t {
			case symbols.Integer:
				in[i].Int = args[i].I64()
			case symbols.Float:
				in[i].Float = args[i].F64()
			case symbols.Bool:
				in[i].Bool = args[i].Bool()
			case symbols.String:
				s, err := st.str(args[i].I64())
				if err != nil {
					return err
				}
				in[i].Str = s
			}
		}
		out, ok := impl(in)
		if !ok {
			undefined(results)
			return nil
		}
		st.encode(sig.Result, out, results)
		return nil
	}
}

// bind resolves every import of the module to its implementation.
// Imports nobody provides fail only when called.
func bind(imports []wasm.Import) []hostFunc {
	sigs := make(map[string]symbols.FuncSig)
	for _, s := range modules.Signatures() {
		sigs[s.Mangled] = s.Sig
	}
	funcs := make([]hostFunc, len(imports))
	for i, imp := range imports {
		name := imp.FullName()
		if imp.Module == wasm.RuntimeModule {
			funcs[i] = runtimeFuncs[imp.Name]
		} else if impl, ok := (modules.Resolver{}).Func(name); ok {
			funcs[i] = moduleFunc(sigs[name], impl)
		}
		if funcs[i] == nil {
			funcs[i] = func(*scanState, []vm.Value, []vm.Value) error {
				return fmt.Errorf("scanner: no implementation for %s", name)
			}
		}
	}
	return funcs
}

func describeGlobal(g compiler.Global) string {
	return strings.ToLower(g.Type.String()) + " " + g.Name
}

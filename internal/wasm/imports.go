package wasm

import (
	"yarax/internal/modules"
	"yarax/internal/symbols"
)

// RuntimeModule is the import namespace of scanner callbacks.
const RuntimeModule = "yara"

// Import is a host function the module calls.
type Import struct {
	Module  string    `msgpack:"m"`
	Name    string    `msgpack:"n"`
	Params  []ValType `msgpack:"p"`
	Results []ValType `msgpack:"r"`
}

// FullName is module.name; for module functions this is the mangled
// overload name the scanner dispatches on.
func (imp Import) FullName() string { return imp.Module + "." + imp.Name }

func fn(name string, params []ValType, results ...ValType) Import {
	return Import{Module: RuntimeModule, Name: name, Params: params, Results: results}
}

func vals(v ...ValType) []ValType { return v }

// Scanner callbacks. Functions that can produce undefined return an extra
// i32 that is zero when the value is undefined.
//
// String values are i64 handles: literal ids from the pool, or handles the
// scanner issues for strings produced at scan time.
func runtimeImports() []Import {
	strPred := vals(I64, I64)
	return []Import{
		fn("rule_match", vals(I32)),
		fn("rule_matched", vals(I32), I32),
		fn("pat_matched", vals(I32), I32),
		fn("pat_count", vals(I32), I64),
		fn("pat_offset", vals(I32, I64), I64, I32),
		fn("pat_length", vals(I32, I64), I64, I32),
		fn("pat_at", vals(I32, I64), I32),
		fn("pat_in", vals(I32, I64, I64), I32),
		fn("filesize", nil, I64),
		fn("str_cmp", strPred, I64),
		fn("str_len", vals(I64), I64),
		fn("str_contains", strPred, I32),
		fn("str_icontains", strPred, I32),
		fn("str_startswith", strPred, I32),
		fn("str_istartswith", strPred, I32),
		fn("str_endswith", strPred, I32),
		fn("str_iendswith", strPred, I32),
		fn("str_iequals", strPred, I32),
		fn("lookup_int", vals(I64), I64, I32),
		fn("lookup_float", vals(I64), F64, I32),
		fn("lookup_string", vals(I64), I64, I32),
		fn("lookup_bool", vals(I64), I32, I32),
		fn("array_int", vals(I64, I64), I64, I32),
		fn("array_float", vals(I64, I64), F64, I32),
		fn("array_string", vals(I64, I64), I64, I32),
		fn("array_bool", vals(I64, I64), I32, I32),
	}
}

// ValTypeOf maps a rule-language type to its stack representation.
func ValTypeOf(t symbols.Type) ValType {
	switch t {
	case symbols.Bool:
		return I32
	case symbols.Integer, symbols.String:
		return I64
	case symbols.Float:
		return F64
	default:
		return ValNone
	}
}

// moduleImports declares one import per module function overload.
func moduleImports() []Import {
	sigs := modules.Signatures()
	out := make([]Import, 0, len(sigs))
	for _, s := range sigs {
		params := make([]ValType, len(s.Sig.Args))
		for i, a := range s.Sig.Args {
			params[i] = ValTypeOf(a)
		}
		mod := moduleOfSig(s.Sig.Name)
		out = append(out, Import{
			Module:  mod,
			Name:    s.Mangled[len(mod)+1:],
			Params:  params,
			Results: vals(ValTypeOf(s.Sig.Result), I32),
		})
	}
	return out
}

func moduleOfSig(name string) string {
	for i := 0; i < len(name); i++ {
		if name[i] == '.' {
			return name[:i]
		}
	}
	return name
}

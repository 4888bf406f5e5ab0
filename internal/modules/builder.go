package modules

import (
	"yarax/internal/symbols"
)

// builder declares fields and functions of a module under one path prefix.
type builder struct {
	mod    *Module
	prefix string
	decl   *symbols.Fields
}

func newModule(name string) *builder {
	m := &Module{
		Name:   name,
		Decl:   symbols.NewFields(),
		Funcs:  make(map[string]Func),
		Fields: make(map[string]Field),
	}
	return &builder{mod: m, prefix: name, decl: m.Decl}
}

func (b *builder) path(name string) string { return b.prefix + "." + name }

func (b *builder) scalar(name string, t symbols.Type, v symbols.Value, defined bool) *builder {
	p := b.path(name)
	b.decl.AddField(name, symbols.Var(t, p))
	b.mod.Fields[p] = Field{Type: t, Defined: defined, Value: v}
	return b
}

func (b *builder) Int(name string, v int64) *builder {
	return b.scalar(name, symbols.Integer, symbols.Value{Int: v}, true)
}

func (b *builder) Float(name string, v float64) *builder {
	return b.scalar(name, symbols.Float, symbols.Value{Float: v}, true)
}

func (b *builder) String(name, v string) *builder {
	return b.scalar(name, symbols.String, symbols.Value{Str: []byte(v)}, true)
}

func (b *builder) Bool(name string, v bool) *builder {
	return b.scalar(name, symbols.Bool, symbols.Value{Bool: v}, true)
}

// Undefined declares a field whose value is never set at scan time.
func (b *builder) Undefined(name string, t symbols.Type) *builder {
	return b.scalar(name, t, symbols.Value{}, false)
}

func (b *builder) Array(name string, elem symbols.Type, values ...symbols.Value) *builder {
	p := b.path(name)
	b.decl.AddField(name, symbols.ArrayOf(symbols.Var(elem, p+"[]"), p))
	b.mod.Fields[p] = Field{Type: elem, Defined: true, Array: values, IsArray: true}
	return b
}

// Struct opens a nested structure; fields declared on the result live under name.
func (b *builder) Struct(name string) *builder {
	nested := symbols.NewFields()
	b.decl.AddField(name, symbols.StructValue(nested))
	return &builder{mod: b.mod, prefix: b.path(name), decl: nested}
}

// Func declares one overload; overloads of the same name accumulate.
func (b *builder) Func(name string, args []symbols.Type, result symbols.Type, impl Func) *builder {
	sig := symbols.FuncSig{Name: b.path(name), Args: args, Result: result}
	v, ok := b.decl.Lookup(name)
	if !ok {
		v = symbols.FuncValue()
	}
	v.Funcs = append(append([]symbols.FuncSig(nil), v.Funcs...), sig)
	b.decl.AddField(name, v)
	b.mod.Funcs[sig.Mangled()] = impl
	return b
}

func (b *builder) Build() *Module { return b.mod }

func intArgs(vals ...int64) []symbols.Value {
	out := make([]symbols.Value, len(vals))
	for i, v := range vals {
		out[i].Int = v
	}
	return out
}

func strArgs(vals ...string) []symbols.Value {
	out := make([]symbols.Value, len(vals))
	for i, v := range vals {
		out[i].Str = []byte(v)
	}
	return out
}

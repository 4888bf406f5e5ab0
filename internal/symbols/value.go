package symbols

import (
	"strings"
)

// Value holds a compile-time constant; only the field matching the type is meaningful.
type Value struct {
	Int   int64
	Float float64
	Str   []byte
	Bool  bool
}

// FuncSig is one overload of a module function.
type FuncSig struct {
	Name   string // полное имя: "string.to_int"
	Args   []Type
	Result Type
}

// Mangled returns the import name of the overload: name@<arg letters>.
func (f FuncSig) Mangled() string {
	var sb strings.Builder
	sb.WriteString(f.Name)
	sb.WriteByte('@')
	for _, a := range f.Args {
		sb.WriteByte(a.Letter())
	}
	return sb.String()
}

// Accepts reports whether args match the overload exactly.
func (f FuncSig) Accepts(args []Type) bool {
	if len(args) != len(f.Args) {
		return false
	}
	for i, a := range args {
		if a != f.Args[i] {
			return false
		}
	}
	return true
}

// TypeValue is what a name resolves to.
//
// Scalars carry either a constant (Const) or a runtime Path the generated code
// uses to fetch the value from the host. Structs carry a SymbolLookup, arrays
// their element description, functions their overloads, rules their id.
type TypeValue struct {
	Type   Type
	Const  bool
	Value  Value
	Path   string
	Fields SymbolLookup
	Elem   *TypeValue
	Funcs  []FuncSig
	RuleID uint32
}

func ConstBool(v bool) TypeValue     { return TypeValue{Type: Bool, Const: true, Value: Value{Bool: v}} }
func ConstInt(v int64) TypeValue     { return TypeValue{Type: Integer, Const: true, Value: Value{Int: v}} }
func ConstFloat(v float64) TypeValue { return TypeValue{Type: Float, Const: true, Value: Value{Float: v}} }
func ConstString(v []byte) TypeValue { return TypeValue{Type: String, Const: true, Value: Value{Str: v}} }

// Var is a scalar known only at scan time, fetched through path.
func Var(t Type, path string) TypeValue { return TypeValue{Type: t, Path: path} }

func StructValue(fields SymbolLookup) TypeValue { return TypeValue{Type: Struct, Fields: fields} }

// ArrayOf describes an array whose elements look like elem; path locates the array.
func ArrayOf(elem TypeValue, path string) TypeValue {
	return TypeValue{Type: Array, Elem: &elem, Path: path}
}

func FuncValue(sigs ...FuncSig) TypeValue { return TypeValue{Type: Func, Funcs: sigs} }

func RuleValue(id uint32) TypeValue { return TypeValue{Type: Rule, RuleID: id} }

// Truthy reports the boolean coercion of a constant: nonzero / non-empty is true.
func (v TypeValue) Truthy() bool {
	switch v.Type {
	case Bool:
		return v.Value.Bool
	case Integer:
		return v.Value.Int != 0
	case Float:
		return v.Value.Float != 0
	case String:
		return len(v.Value.Str) != 0
	default:
		return false
	}
}

// FindOverload returns the overload accepting args.
func (v TypeValue) FindOverload(args []Type) (FuncSig, bool) {
	for _, f := range v.Funcs {
		if f.Accepts(args) {
			return f, true
		}
	}
	return FuncSig{}, false
}

package modules

import (
	"yarax/internal/symbols"
)

// Модуль test - фиксированные данные для проверки структур, массивов и undefined.
func init() {
	b := newModule("test").
		Int("int_zero", 0).
		Int("int_one", 1).
		Float("float_one", 1.0).
		String("string_foo", "foo").
		Bool("bool_true", true).
		Undefined("int_undef", tInteger).
		Undefined("string_undef", tString).
		Array("array_int", tInteger, intArgs(1, 10, 100)...).
		Array("array_str", tString, strArgs("foo", "bar")...).
		Func("add", []symbols.Type{tInteger, tInteger}, tInteger, testAddInt).
		Func("add", []symbols.Type{tFloat, tFloat}, tFloat, testAddFloat).
		Func("undef_fn", nil, tInteger, testUndef)
	b.Struct("nested").
		Int("int_two", 2).
		String("string_bar", "bar")
	Register(b.Build())
}

func testAddInt(args []symbols.Value) (symbols.Value, bool) {
	return symbols.Value{Int: args[0].Int + args[1].Int}, true
}

func testAddFloat(args []symbols.Value) (symbols.Value, bool) {
	return symbols.Value{Float: args[0].Float + args[1].Float}, true
}

func testUndef([]symbols.Value) (symbols.Value, bool) {
	return symbols.Value{}, false
}

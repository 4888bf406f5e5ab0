package modules

import (
	"strconv"

	"yarax/internal/symbols"
)

func init() {
	Register(newModule("math").
		Func("abs", []symbols.Type{tInteger}, tInteger, mathAbs).
		Func("min", []symbols.Type{tInteger, tInteger}, tInteger, mathMin).
		Func("max", []symbols.Type{tInteger, tInteger}, tInteger, mathMax).
		Func("to_string", []symbols.Type{tInteger}, tString, mathToString).
		Func("to_string", []symbols.Type{tInteger, tInteger}, tString, mathToStringBase).
		Build())
}

func mathAbs(args []symbols.Value) (symbols.Value, bool) {
	v := args[0].Int
	if v < 0 {
		v = -v
	}
	return symbols.Value{Int: v}, true
}

func mathMin(args []symbols.Value) (symbols.Value, bool) {
	return symbols.Value{Int: min(args[0].Int, args[1].Int)}, true
}

func mathMax(args []symbols.Value) (symbols.Value, bool) {
	return symbols.Value{Int: max(args[0].Int, args[1].Int)}, true
}

func mathToString(args []symbols.Value) (symbols.Value, bool) {
	return symbols.Value{Str: []byte(strconv.FormatInt(args[0].Int, 10))}, true
}

func mathToStringBase(args []symbols.Value) (symbols.Value, bool) {
	base := args[1].Int
	if base < 2 || base > 36 {
		return symbols.Value{}, false
	}
	return symbols.Value{Str: []byte(strconv.FormatInt(args[0].Int, int(base)))}, true
}

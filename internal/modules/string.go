package modules

import (
	"strconv"

	"yarax/internal/symbols"
)

var (
	tString  = symbols.String
	tInteger = symbols.Integer
	tFloat   = symbols.Float
)

func init() {
	Register(newModule("string").
		Func("to_int", []symbols.Type{tString}, tInteger, stringToInt).
		Func("to_int", []symbols.Type{tString, tInteger}, tInteger, stringToIntBase).
		Func("length", []symbols.Type{tString}, tInteger, stringLength).
		Build())
}

func stringToInt(args []symbols.Value) (symbols.Value, bool) {
	n, err := strconv.ParseInt(string(args[0].Str), 10, 64)
	if err != nil {
		return symbols.Value{}, false
	}
	return symbols.Value{Int: n}, true
}

// stringToIntBase: base outside 2..36 or a malformed number is undefined.
func stringToIntBase(args []symbols.Value) (symbols.Value, bool) {
	base := args[1].Int
	if base < 2 || base > 36 {
		return symbols.Value{}, false
	}
	n, err := strconv.ParseInt(string(args[0].Str), int(base), 64)
	if err != nil {
		return symbols.Value{}, false
	}
	return symbols.Value{Int: n}, true
}

func stringLength(args []symbols.Value) (symbols.Value, bool) {
	return symbols.Value{Int: int64(len(args[0].Str))}, true
}

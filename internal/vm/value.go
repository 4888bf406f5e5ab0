package vm

import (
	"math"
)

// Value is one stack slot holding the raw bits of an i32, i64, or f64.
type Value uint64

func I32(v int32) Value   { return Value(uint32(v)) }
func I64(v int64) Value   { return Value(v) }
func F64(v float64) Value { return Value(math.Float64bits(v)) }

// Bool is the i32 encoding of b.
func Bool(b bool) Value {
	if b {
		return 1
	}
	return 0
}

func (v Value) I32() int32   { return int32(uint32(v)) }
func (v Value) I64() int64   { return int64(v) }
func (v Value) F64() float64 { return math.Float64frombits(uint64(v)) }

// Bool reads an i32 as a truth value.
func (v Value) Bool() bool { return uint32(v) != 0 }

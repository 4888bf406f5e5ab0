package vm

import (
	"yarax/internal/wasm"
)

func evalPlain(pc int, op wasm.Op, stack []Value) ([]Value, error) {
	pops, _, _ := op.StackEffect()
	if len(stack) < pops {
		return stack, trapf(TrapStackUnderflow, pc, "%s needs %d values", op, pops)
	}
	if pops == 1 {
		top := len(stack) - 1
		v, err := evalUnary(pc, op, stack[top])
		stack[top] = v
		return stack, err
	}
	a, b := stack[len(stack)-2], stack[len(stack)-1]
	v, err := evalBinary(pc, op, a, b)
	stack = stack[:len(stack)-1]
	stack[len(stack)-1] = v
	return stack, err
}

func evalUnary(pc int, op wasm.Op, v Value) (Value, error) {
	switch op {
	case wasm.OpI32Eqz:
		return Bool(v.I32() == 0), nil
	case wasm.OpI64Eqz:
		return Bool(v.I64() == 0), nil
	case wasm.OpF64Neg:
		return F64(-v.F64()), nil
	case wasm.OpI64ExtendI32U:
		return I64(int64(uint32(v))), nil
	case wasm.OpF64ConvertI64S:
		return F64(float64(v.I64())), nil
	}
	return v, trapf(TrapUnimplemented, pc, "%s", op)
}

func evalBinary(pc int, op wasm.Op, a, b Value) (Value, error) {
	switch op {
	case wasm.OpI32And:
		return I32(a.I32() & b.I32()), nil
	case wasm.OpI32Or:
		return I32(a.I32() | b.I32()), nil
	case wasm.OpI32Xor:
		return I32(a.I32() ^ b.I32()), nil

	case wasm.OpI64Eq:
		return Bool(a.I64() == b.I64()), nil
	case wasm.OpI64Ne:
		return Bool(a.I64() != b.I64()), nil
	case wasm.OpI64LtS:
		return Bool(a.I64() < b.I64()), nil
	case wasm.OpI64LeS:
		return Bool(a.I64() <= b.I64()), nil
	case wasm.OpI64GtS:
		return Bool(a.I64() > b.I64()), nil
	case wasm.OpI64GeS:
		return Bool(a.I64() >= b.I64()), nil
	case wasm.OpI64Add:
		return I64(a.I64() + b.I64()), nil
	case wasm.OpI64Sub:
		return I64(a.I64() - b.I64()), nil
	case wasm.OpI64Mul:
		return I64(a.I64() * b.I64()), nil
	case wasm.OpI64DivS:
		if b.I64() == 0 {
			return 0, trapf(TrapDivideByZero, pc, "integer division by zero")
		}
		return I64(a.I64() / b.I64()), nil
	case wasm.OpI64RemS:
		if b.I64() == 0 {
			return 0, trapf(TrapDivideByZero, pc, "integer remainder by zero")
		}
		return I64(a.I64() % b.I64()), nil
	case wasm.OpI64And:
		return I64(a.I64() & b.I64()), nil
	case wasm.OpI64Or:
		return I64(a.I64() | b.I64()), nil
	case wasm.OpI64Xor:
		return I64(a.I64() ^ b.I64()), nil
	case wasm.OpI64Shl:
		// сдвиг на 64 и больше даёт 0
		if n := uint64(b.I64()); n < 64 {
			return I64(a.I64() << n), nil
		}
		return 0, nil
	case wasm.OpI64ShrS:
		if n := uint64(b.I64()); n < 64 {
			return I64(a.I64() >> n), nil
		}
		return 0, nil

	case wasm.OpF64Eq:
		return Bool(a.F64() == b.F64()), nil
	case wasm.OpF64Ne:
		return Bool(a.F64() != b.F64()), nil
	case wasm.OpF64Lt:
		return Bool(a.F64() < b.F64()), nil
	case wasm.OpF64Le:
		return Bool(a.F64() <= b.F64()), nil
	case wasm.OpF64Gt:
		return Bool(a.F64() > b.F64()), nil
	case wasm.OpF64Ge:
		return Bool(a.F64() >= b.F64()), nil
	case wasm.OpF64Add:
		return F64(a.F64() + b.F64()), nil
	case wasm.OpF64Sub:
		return F64(a.F64() - b.F64()), nil
	case wasm.OpF64Mul:
		return F64(a.F64() * b.F64()), nil
	case wasm.OpF64Div:
		return F64(a.F64() / b.F64()), nil
	}
	return 0, trapf(TrapUnimplemented, pc, "%s", op)
}

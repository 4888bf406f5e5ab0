package vm

import (
	"yarax/internal/wasm"
)

// Host supplies the imported functions. args holds the call arguments in
// declaration order; the host fills results, one slot per declared result.
type Host interface {
	Call(fn wasm.FuncID, args []Value, results []Value) error
}

// HostFuncs is a Host backed by a slice indexed by FuncID.
type HostFuncs []func(args, results []Value) error

func (h HostFuncs) Call(fn wasm.FuncID, args, results []Value) error {
	if int(fn) >= len(h) || h[fn] == nil {
		return trapf(TrapHost, -1, "import %d is not provided", fn)
	}
	return h[fn](args, results)
}

// Run executes the program once.
func (p *Program) Run(host Host) error {
	stack := make([]Value, 0, p.maxHeight+4)
	locals := make([]Value, len(p.locals))
	var results [4]Value

	need := func(pc, n int) error {
		if len(stack) < n {
			return trapf(TrapStackUnderflow, pc, "need %d values, have %d", n, len(stack))
		}
		return nil
	}
	unwind := func(in *instr) {
		keep := int(in.keep)
		height := int(in.height)
		if len(stack)-keep > height {
			copy(stack[height:], stack[len(stack)-keep:])
			stack = stack[:height+keep]
		}
	}

	for pc := 0; pc < len(p.code); pc++ {
		in := &p.code[pc]
		switch in.op {
		case opNop:
		case opTrap:
			return trapf(TrapUnreachable, pc, "unreachable")
		case opJump:
			pc = int(in.target) - 1
		case opJumpIfZero:
			if err := need(pc, 1); err != nil {
				return err
			}
			c := stack[len(stack)-1]
			stack = stack[:len(stack)-1]
			if !c.Bool() {
				pc = int(in.target) - 1
			}
		case opBr:
			unwind(in)
			pc = int(in.target) - 1
		case opBrIf:
			if err := need(pc, 1); err != nil {
				return err
			}
			c := stack[len(stack)-1]
			stack = stack[:len(stack)-1]
			if c.Bool() {
				unwind(in)
				pc = int(in.target) - 1
			}
		case opCall:
			imp := &p.imports[in.arg]
			n := len(imp.Params)
			if err := need(pc, n); err != nil {
				return err
			}
			args := stack[len(stack)-n:]
			res := results[:len(imp.Results)]
			clear(res)
			if err := host.Call(wasm.FuncID(in.arg), args, res); err != nil {
				return &Trap{Code: TrapHost, PC: pc, Message: imp.FullName(), Err: err}
			}
			stack = append(stack[:len(stack)-n], res...)
		case opDrop:
			if err := need(pc, 1); err != nil {
				return err
			}
			stack = stack[:len(stack)-1]
		case opLocalGet:
			stack = append(stack, locals[in.arg])
		case opLocalSet:
			if err := need(pc, 1); err != nil {
				return err
			}
			locals[in.arg] = stack[len(stack)-1]
			stack = stack[:len(stack)-1]
		case opLocalTee:
			if err := need(pc, 1); err != nil {
				return err
			}
			locals[in.arg] = stack[len(stack)-1]
		case opConst:
			stack = append(stack, Value(in.arg))
		case opPlain:
			var err error
			stack, err = evalPlain(pc, in.plain, stack)
			if err != nil {
				return err
			}
		default:
			return trapf(TrapUnimplemented, pc, "opcode %d", in.op)
		}
	}
	return nil
}

// Package vm executes compiled rule modules.
//
// Compile flattens the structured sequences of a wasm.Module into one linear
// instruction stream where every branch is a jump with a precomputed stack
// height. A Program is immutable, so many goroutines may Run it at once, each
// with its own Host.
package vm

import (
	"errors"
	"fmt"

	"fortio.org/safecast"

	"yarax/internal/wasm"
)

type opcode uint8

const (
	opNop opcode = iota
	opTrap
	opJump       // pc = target
	opJumpIfZero // pop i32; jump when zero
	opBr         // unwind to height keeping keep values, jump
	opBrIf       // pop i32; when nonzero behave like opBr
	opCall
	opDrop
	opLocalGet
	opLocalSet
	opLocalTee
	opConst
	opPlain
)

type instr struct {
	op     opcode
	plain  wasm.Op
	target int32
	height int32
	keep   int32
	arg    uint64 // const bits, local index, or import index
}

// Program is a flattened, ready to run module.
type Program struct {
	code      []instr
	locals    []wasm.ValType
	imports   []wasm.Import
	maxHeight int
}

// Imports lists the host functions the program calls, by FuncID.
func (p *Program) Imports() []wasm.Import { return p.imports }

// Len is the number of flattened instructions.
func (p *Program) Len() int { return len(p.code) }

type label struct {
	seq     wasm.SeqID
	height  int
	keep    int
	patches []int
}

type flattener struct {
	m         *wasm.Module
	code      []instr
	labels    []*label
	maxHeight int
}

// Compile flattens m. The module must have passed wasm.Validate.
func Compile(m *wasm.Module) (*Program, error) {
	if m == nil {
		return nil, errors.New("vm: nil module")
	}
	f := &flattener{m: m}
	if err := f.seq(m.Main, 0); err != nil {
		return nil, err
	}
	return &Program{
		code:      f.code,
		locals:    m.Locals,
		imports:   m.Imports,
		maxHeight: f.maxHeight,
	}, nil
}

func (f *flattener) emit(in instr) int {
	f.code = append(f.code, in)
	return len(f.code) - 1
}

func (f *flattener) pc() (int32, error) {
	return safecast.Conv[int32](len(f.code))
}

func arity(t wasm.ValType) int {
	if t == wasm.ValNone {
		return 0
	}
	return 1
}

func (f *flattener) findLabel(id wasm.SeqID) (*label, error) {
	for i := len(f.labels) - 1; i >= 0; i-- {
		if f.labels[i].seq == id {
			return f.labels[i], nil
		}
	}
	return nil, fmt.Errorf("vm: branch to non-enclosing sequence %d", id)
}

func (f *flattener) bind(l *label) error {
	end, err := f.pc()
	if err != nil {
		return err
	}
	for _, at := range l.patches {
		f.code[at].target = end
	}
	return nil
}

// body compiles seq under label l and returns the height after it.
func (f *flattener) body(id wasm.SeqID, l *label, h int) (int, error) {
	f.labels = append(f.labels, l)
	defer func() { f.labels = f.labels[:len(f.labels)-1] }()
	return f.instrs(id, h)
}

func (f *flattener) seq(id wasm.SeqID, h int) error {
	_, err := f.instrs(id, h)
	return err
}

func (f *flattener) track(h int) int {
	if h > f.maxHeight {
		f.maxHeight = h
	}
	return h
}

func (f *flattener) instrs(id wasm.SeqID, h int) (int, error) {
	seq := f.m.Seq(id)
	if seq == nil {
		return 0, fmt.Errorf("vm: sequence %d out of range", id)
	}
	for _, in := range seq.Instrs {
		switch in.Op {
		case wasm.OpNop:
		case wasm.OpUnreachable:
			f.emit(instr{op: opTrap})
		case wasm.OpBlock:
			inner := f.m.Seq(in.Seq)
			if inner == nil {
				return 0, fmt.Errorf("vm: block sequence %d out of range", in.Seq)
			}
			l := &label{seq: in.Seq, height: h, keep: arity(inner.Result)}
			if _, err := f.body(in.Seq, l, h); err != nil {
				return 0, err
			}
			if err := f.bind(l); err != nil {
				return 0, err
			}
			h = f.track(h + l.keep)
		case wasm.OpIfElse:
			then := f.m.Seq(in.Seq)
			if then == nil {
				return 0, fmt.Errorf("vm: if sequence %d out of range", in.Seq)
			}
			h--
			keep := arity(then.Result)
			jz := f.emit(instr{op: opJumpIfZero})
			thenLabel := &label{seq: in.Seq, height: h, keep: keep}
			if _, err := f.body(in.Seq, thenLabel, h); err != nil {
				return 0, err
			}
			thenLabel.patches = append(thenLabel.patches, f.emit(instr{op: opJump}))
			elseStart, err := f.pc()
			if err != nil {
				return 0, err
			}
			f.code[jz].target = elseStart
			elseLabel := &label{seq: in.Else, height: h, keep: keep}
			if _, err := f.body(in.Else, elseLabel, h); err != nil {
				return 0, err
			}
			if err := f.bind(thenLabel); err != nil {
				return 0, err
			}
			if err := f.bind(elseLabel); err != nil {
				return 0, err
			}
			h = f.track(h + keep)
		case wasm.OpBr, wasm.OpBrIf:
			l, err := f.findLabel(in.Target)
			if err != nil {
				return 0, err
			}
			op := opBr
			if in.Op == wasm.OpBrIf {
				op = opBrIf
				h--
			}
			height, err := safecast.Conv[int32](l.height)
			if err != nil {
				return 0, err
			}
			at := f.emit(instr{op: op, height: height, keep: int32(l.keep)})
			l.patches = append(l.patches, at)
		case wasm.OpCall:
			if int(in.Func) >= len(f.m.Imports) {
				return 0, fmt.Errorf("vm: call to unknown import %d", in.Func)
			}
			imp := f.m.Imports[in.Func]
			f.emit(instr{op: opCall, arg: uint64(in.Func)})
			h = f.track(h - len(imp.Params) + len(imp.Results))
		case wasm.OpDrop:
			f.emit(instr{op: opDrop})
			h--
		case wasm.OpLocalGet:
			f.emit(instr{op: opLocalGet, arg: uint64(in.Local)})
			h = f.track(h + 1)
		case wasm.OpLocalSet:
			f.emit(instr{op: opLocalSet, arg: uint64(in.Local)})
			h--
		case wasm.OpLocalTee:
			f.emit(instr{op: opLocalTee, arg: uint64(in.Local)})
		case wasm.OpI32Const:
			f.emit(instr{op: opConst, arg: uint64(I32(int32(in.Int)))})
			h = f.track(h + 1)
		case wasm.OpI64Const:
			f.emit(instr{op: opConst, arg: uint64(I64(in.Int))})
			h = f.track(h + 1)
		case wasm.OpF64Const:
			f.emit(instr{op: opConst, arg: uint64(F64(in.Float))})
			h = f.track(h + 1)
		default:
			pops, pushes, ok := in.Op.StackEffect()
			if !ok {
				return 0, fmt.Errorf("vm: unsupported instruction %s", in.Op)
			}
			f.emit(instr{op: opPlain, plain: in.Op})
			h = f.track(h - pops + pushes)
		}
	}
	return h, nil
}

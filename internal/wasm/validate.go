package wasm

import (
	"errors"
	"fmt"
)

// Validate type-checks every instruction sequence reachable from the entry
// function. It also checks that each sequence is used by exactly one
// structural instruction and that every branch targets an enclosing block.
func Validate(m *Module) error {
	if m == nil {
		return errors.New("nil module")
	}
	if int(m.Main) >= len(m.Seqs) {
		return fmt.Errorf("entry sequence %d out of range", m.Main)
	}
	for i, t := range m.Locals {
		if t == ValNone || t > F64 {
			return fmt.Errorf("local %d: invalid type %d", i, t)
		}
	}
	v := &validator{m: m, used: make([]bool, len(m.Seqs))}
	v.seq(m.Main, nil)
	return errors.Join(v.errs...)
}

type label struct {
	id     SeqID
	result ValType
}

type validator struct {
	m    *Module
	used []bool
	errs []error
}

func (v *validator) errorf(id SeqID, idx int, format string, args ...any) {
	v.errs = append(v.errs, fmt.Errorf("seq %d instr %d: %s", id, idx, fmt.Sprintf(format, args...)))
}

// operand stack of one sequence
type opStack struct {
	vals        []ValType
	unreachable bool
}

func (s *opStack) push(t ValType) {
	if t != ValNone {
		s.vals = append(s.vals, t)
	}
}

// pop removes the top value; in unreachable code an empty stack yields anything.
func (s *opStack) pop(want ValType) (ValType, bool) {
	if len(s.vals) == 0 {
		return want, s.unreachable
	}
	t := s.vals[len(s.vals)-1]
	s.vals = s.vals[:len(s.vals)-1]
	return t, want == ValNone || t == want
}

func (s *opStack) kill() {
	s.vals = s.vals[:0]
	s.unreachable = true
}

func (v *validator) seq(id SeqID, labels []label) {
	if int(id) >= len(v.m.Seqs) {
		v.errs = append(v.errs, fmt.Errorf("sequence %d out of range", id))
		return
	}
	if v.used[id] {
		v.errs = append(v.errs, fmt.Errorf("sequence %d used more than once", id))
		return
	}
	v.used[id] = true

	seq := &v.m.Seqs[id]
	labels = append(labels[:len(labels):len(labels)], label{id: id, result: seq.Result})
	st := &opStack{}

	expect := func(idx int, want ValType) {
		got, ok := st.pop(want)
		if !ok {
			if len(st.vals) == 0 && got == want {
				v.errorf(id, idx, "stack underflow, want %s", want)
			} else {
				v.errorf(id, idx, "type mismatch: want %s, got %s", want, got)
			}
		}
	}

	for idx, in := range seq.Instrs {
		switch in.Op {
		case OpNop:
		case OpUnreachable:
			st.kill()
		case OpBlock:
			v.seq(in.Seq, labels)
			st.push(v.resultOf(in.Seq))
		case OpIfElse:
			expect(idx, I32)
			v.seq(in.Seq, labels)
			v.seq(in.Else, labels)
			if v.resultOf(in.Seq) != v.resultOf(in.Else) {
				v.errorf(id, idx, "if branches disagree: %s vs %s", v.resultOf(in.Seq), v.resultOf(in.Else))
			}
			st.push(v.resultOf(in.Seq))
		case OpBr, OpBrIf:
			l, ok := findLabel(labels, in.Target)
			if !ok {
				v.errorf(id, idx, "branch to %d which does not enclose it", in.Target)
				st.kill()
				continue
			}
			if in.Op == OpBrIf {
				expect(idx, I32)
			}
			if l.result != ValNone {
				expect(idx, l.result)
			}
			if in.Op == OpBr {
				st.kill()
			} else {
				st.push(l.result)
			}
		case OpCall:
			if int(in.Func) >= len(v.m.Imports) {
				v.errorf(id, idx, "call to unknown import %d", in.Func)
				st.kill()
				continue
			}
			imp := v.m.Imports[in.Func]
			for i := len(imp.Params) - 1; i >= 0; i-- {
				expect(idx, imp.Params[i])
			}
			for _, r := range imp.Results {
				st.push(r)
			}
		case OpDrop:
			if _, ok := st.pop(ValNone); !ok {
				v.errorf(id, idx, "drop on empty stack")
			}
		case OpLocalGet, OpLocalSet, OpLocalTee:
			if int(in.Local) >= len(v.m.Locals) {
				v.errorf(id, idx, "unknown local %d", in.Local)
				continue
			}
			lt := v.m.Locals[in.Local]
			if in.Op != OpLocalGet {
				expect(idx, lt)
			}
			if in.Op != OpLocalSet {
				st.push(lt)
			}
		case OpI32Const:
			st.push(I32)
		case OpI64Const:
			st.push(I64)
		case OpF64Const:
			st.push(F64)
		default:
			sig, ok := plainSigs[in.Op]
			if !ok {
				v.errorf(id, idx, "unknown opcode %d", in.Op)
				continue
			}
			for i := len(sig.in) - 1; i >= 0; i-- {
				expect(idx, sig.in[i])
			}
			st.push(sig.out)
		}
	}

	end := len(seq.Instrs)
	if seq.Result != ValNone {
		expect(end, seq.Result)
	}
	if len(st.vals) != 0 {
		v.errorf(id, end, "%d value(s) left on stack at end of sequence", len(st.vals))
	}
}

func (v *validator) resultOf(id SeqID) ValType {
	if int(id) >= len(v.m.Seqs) {
		return ValNone
	}
	return v.m.Seqs[id].Result
}

func findLabel(labels []label, id SeqID) (label, bool) {
	for i := len(labels) - 1; i >= 0; i-- {
		if labels[i].id == id {
			return labels[i], true
		}
	}
	return label{}, false
}

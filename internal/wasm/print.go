package wasm

import (
	"fmt"
	"io"
	"strconv"
	"strings"
)

// Disassemble writes a WAT-like listing of the module.
func (m *Module) Disassemble(w io.Writer) error {
	if m == nil {
		return nil
	}
	var sb strings.Builder
	sb.WriteString("(module\n")
	for i, imp := range m.Imports {
		fmt.Fprintf(&sb, "  (import %d %q %q%s%s)\n", i, imp.Module, imp.Name,
			typeList(" (param", imp.Params), typeList(" (result", imp.Results))
	}
	for i, lit := range m.Literals {
		fmt.Fprintf(&sb, "  (literal %d %s)\n", i+1, strconv.Quote(string(lit)))
	}
	if len(m.Locals) > 0 {
		sb.WriteString("  (locals")
		for i, t := range m.Locals {
			fmt.Fprintf(&sb, " $l%d:%s", i, t)
		}
		sb.WriteString(")\n")
	}
	sb.WriteString("  (func $main\n")
	m.printSeq(&sb, m.Main, 2)
	sb.WriteString("  ))\n")
	_, err := io.WriteString(w, sb.String())
	return err
}

func typeList(prefix string, ts []ValType) string {
	if len(ts) == 0 {
		return ""
	}
	var sb strings.Builder
	sb.WriteString(prefix)
	for _, t := range ts {
		sb.WriteByte(' ')
		sb.WriteString(t.String())
	}
	sb.WriteByte(')')
	return sb.String()
}

func (m *Module) printSeq(sb *strings.Builder, id SeqID, depth int) {
	seq := m.Seq(id)
	if seq == nil {
		return
	}
	indent := strings.Repeat("  ", depth)
	for _, in := range seq.Instrs {
		sb.WriteString(indent)
		switch in.Op {
		case OpBlock:
			fmt.Fprintf(sb, "block $s%d%s\n", in.Seq, resultSuffix(m.Seqs[in.Seq].Result))
			m.printSeq(sb, in.Seq, depth+1)
			sb.WriteString(indent + "end\n")
		case OpIfElse:
			fmt.Fprintf(sb, "if $s%d%s\n", in.Seq, resultSuffix(m.Seqs[in.Seq].Result))
			m.printSeq(sb, in.Seq, depth+1)
			fmt.Fprintf(sb, "%selse $s%d\n", indent, in.Else)
			m.printSeq(sb, in.Else, depth+1)
			sb.WriteString(indent + "end\n")
		case OpBr, OpBrIf:
			fmt.Fprintf(sb, "%s $s%d\n", in.Op, in.Target)
		case OpCall:
			name := "?"
			if int(in.Func) < len(m.Imports) {
				name = m.Imports[in.Func].FullName()
			}
			fmt.Fprintf(sb, "call %d ;; %s\n", in.Func, name)
		case OpLocalGet, OpLocalSet, OpLocalTee:
			fmt.Fprintf(sb, "%s $l%d\n", in.Op, in.Local)
		case OpI32Const, OpI64Const:
			fmt.Fprintf(sb, "%s %d\n", in.Op, in.Int)
		case OpF64Const:
			fmt.Fprintf(sb, "%s %s\n", in.Op, strconv.FormatFloat(in.Float, 'g', -1, 64))
		default:
			sb.WriteString(in.Op.String())
			sb.WriteByte('\n')
		}
	}
}

func resultSuffix(t ValType) string {
	if t == ValNone {
		return ""
	}
	return " (result " + t.String() + ")"
}

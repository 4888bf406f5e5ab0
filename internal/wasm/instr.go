package wasm

// Op enumerates instruction kinds.
type Op uint8

const (
	OpNop Op = iota
	OpUnreachable

	// структурные
	OpBlock
	OpIfElse
	OpBr
	OpBrIf

	OpCall
	OpDrop

	OpLocalGet
	OpLocalSet
	OpLocalTee

	OpI32Const
	OpI64Const
	OpF64Const

	OpI32Eqz
	OpI32And
	OpI32Or
	OpI32Xor

	OpI64Eqz
	OpI64Eq
	OpI64Ne
	OpI64LtS
	OpI64LeS
	OpI64GtS
	OpI64GeS
	OpI64Add
	OpI64Sub
	OpI64Mul
	OpI64DivS
	OpI64RemS
	OpI64And
	OpI64Or
	OpI64Xor
	OpI64Shl
	OpI64ShrS

	OpF64Eq
	OpF64Ne
	OpF64Lt
	OpF64Le
	OpF64Gt
	OpF64Ge
	OpF64Add
	OpF64Sub
	OpF64Mul
	OpF64Div
	OpF64Neg

	OpI64ExtendI32U
	OpF64ConvertI64S

	opCount
)

var opNames = [...]string{
	OpNop:            "nop",
	OpUnreachable:    "unreachable",
	OpBlock:          "block",
	OpIfElse:         "if",
	OpBr:             "br",
	OpBrIf:           "br_if",
	OpCall:           "call",
	OpDrop:           "drop",
	OpLocalGet:       "local.get",
	OpLocalSet:       "local.set",
	OpLocalTee:       "local.tee",
	OpI32Const:       "i32.const",
	OpI64Const:       "i64.const",
	OpF64Const:       "f64.const",
	OpI32Eqz:         "i32.eqz",
	OpI32And:         "i32.and",
	OpI32Or:          "i32.or",
	OpI32Xor:         "i32.xor",
	OpI64Eqz:         "i64.eqz",
	OpI64Eq:          "i64.eq",
	OpI64Ne:          "i64.ne",
	OpI64LtS:         "i64.lt_s",
	OpI64LeS:         "i64.le_s",
	OpI64GtS:         "i64.gt_s",
	OpI64GeS:         "i64.ge_s",
	OpI64Add:         "i64.add",
	OpI64Sub:         "i64.sub",
	OpI64Mul:         "i64.mul",
	OpI64DivS:        "i64.div_s",
	OpI64RemS:        "i64.rem_s",
	OpI64And:         "i64.and",
	OpI64Or:          "i64.or",
	OpI64Xor:         "i64.xor",
	OpI64Shl:         "i64.shl",
	OpI64ShrS:        "i64.shr_s",
	OpF64Eq:          "f64.eq",
	OpF64Ne:          "f64.ne",
	OpF64Lt:          "f64.lt",
	OpF64Le:          "f64.le",
	OpF64Gt:          "f64.gt",
	OpF64Ge:          "f64.ge",
	OpF64Add:         "f64.add",
	OpF64Sub:         "f64.sub",
	OpF64Mul:         "f64.mul",
	OpF64Div:         "f64.div",
	OpF64Neg:         "f64.neg",
	OpI64ExtendI32U:  "i64.extend_i32_u",
	OpF64ConvertI64S: "f64.convert_i64_s",
}

func (op Op) String() string {
	if int(op) < len(opNames) && opNames[op] != "" {
		return opNames[op]
	}
	return "op?"
}

// signature of a plain (non-structural, non-call, non-local) op: inputs -> output.
type opSig struct {
	in  []ValType
	out ValType
}

var (
	sigI32I32 = opSig{in: []ValType{I32, I32}, out: I32}
	sigI64Cmp = opSig{in: []ValType{I64, I64}, out: I32}
	sigI64Bin = opSig{in: []ValType{I64, I64}, out: I64}
	sigF64Cmp = opSig{in: []ValType{F64, F64}, out: I32}
	sigF64Bin = opSig{in: []ValType{F64, F64}, out: F64}
)

var plainSigs = map[Op]opSig{
	OpI32Eqz:         {in: []ValType{I32}, out: I32},
	OpI32And:         sigI32I32,
	OpI32Or:          sigI32I32,
	OpI32Xor:         sigI32I32,
	OpI64Eqz:         {in: []ValType{I64}, out: I32},
	OpI64Eq:          sigI64Cmp,
	OpI64Ne:          sigI64Cmp,
	OpI64LtS:         sigI64Cmp,
	OpI64LeS:         sigI64Cmp,
	OpI64GtS:         sigI64Cmp,
	OpI64GeS:         sigI64Cmp,
	OpI64Add:         sigI64Bin,
	OpI64Sub:         sigI64Bin,
	OpI64Mul:         sigI64Bin,
	OpI64DivS:        sigI64Bin,
	OpI64RemS:        sigI64Bin,
	OpI64And:         sigI64Bin,
	OpI64Or:          sigI64Bin,
	OpI64Xor:         sigI64Bin,
	OpI64Shl:         sigI64Bin,
	OpI64ShrS:        sigI64Bin,
	OpF64Eq:          sigF64Cmp,
	OpF64Ne:          sigF64Cmp,
	OpF64Lt:          sigF64Cmp,
	OpF64Le:          sigF64Cmp,
	OpF64Gt:          sigF64Cmp,
	OpF64Ge:          sigF64Cmp,
	OpF64Add:         sigF64Bin,
	OpF64Sub:         sigF64Bin,
	OpF64Mul:         sigF64Bin,
	OpF64Div:         sigF64Bin,
	OpF64Neg:         {in: []ValType{F64}, out: F64},
	OpI64ExtendI32U:  {in: []ValType{I32}, out: I64},
	OpF64ConvertI64S: {in: []ValType{I64}, out: F64},
}

// Instr is one instruction; only the fields used by Op are meaningful.
type Instr struct {
	Op     Op      `msgpack:"o"`
	Seq    SeqID   `msgpack:"s,omitempty"` // Block body, IfElse then-branch
	Else   SeqID   `msgpack:"e,omitempty"` // IfElse else-branch
	Target SeqID   `msgpack:"t,omitempty"` // Br, BrIf
	Func   FuncID  `msgpack:"f,omitempty"`
	Local  LocalID `msgpack:"l,omitempty"`
	Int    int64   `msgpack:"i,omitempty"` // I32Const, I64Const
	Float  float64 `msgpack:"x,omitempty"`
}

// Seq is an instruction sequence. Result is what the sequence leaves on the
// stack when it falls through its end.
type Seq struct {
	Result ValType `msgpack:"r"`
	Instrs []Instr `msgpack:"i"`
}

// StackEffect reports how many values a plain instruction pops and pushes.
// ok is false for structural, call, local, and const instructions.
func (op Op) StackEffect() (pops, pushes int, ok bool) {
	sig, ok := plainSigs[op]
	if !ok {
		return 0, 0, false
	}
	return len(sig.in), 1, true
}

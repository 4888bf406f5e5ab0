package wasm

// ValType is the type of a stack value or block result.
type ValType uint8

const (
	// ValNone marks a block that leaves nothing on the stack.
	ValNone ValType = iota
	I32
	I64
	F64
)

func (t ValType) String() string {
	switch t {
	case ValNone:
		return "none"
	case I32:
		return "i32"
	case I64:
		return "i64"
	case F64:
		return "f64"
	default:
		return "?"
	}
}

// SeqID identifies an instruction sequence; blocks are sequences and branch
// targets name them.
type SeqID uint32

// LocalID indexes a local of the entry function.
type LocalID uint32

// FuncID indexes the import table.
type FuncID uint32

// LiteralID indexes the string literal pool. Zero is never issued.
type LiteralID uint32

package vm

import (
	"fmt"
)

// TrapCode identifies why execution stopped.
type TrapCode int

// Stable trap codes - do not change values.
const (
	TrapUnreachable    TrapCode = 1001 // VM1001: unreachable executed
	TrapDivideByZero   TrapCode = 1002 // VM1002: integer division by zero
	TrapStackUnderflow TrapCode = 1003 // VM1003: malformed program
	TrapHost           TrapCode = 1004 // VM1004: host function failed
	TrapUnimplemented  TrapCode = 1999 // VM1999: unknown opcode
)

// String returns the code as "VM1001" format.
func (c TrapCode) String() string {
	return fmt.Sprintf("VM%d", c)
}

// Trap is returned by Run when execution cannot continue.
type Trap struct {
	Code    TrapCode
	Message string
	PC      int
	Err     error // причина для TrapHost
}

func (t *Trap) Error() string {
	if t.Err != nil {
		return fmt.Sprintf("trap %s at pc %d: %s: %v", t.Code, t.PC, t.Message, t.Err)
	}
	return fmt.Sprintf("trap %s at pc %d: %s", t.Code, t.PC, t.Message)
}

func (t *Trap) Unwrap() error { return t.Err }

func trapf(code TrapCode, pc int, format string, args ...any) *Trap {
	return &Trap{Code: code, PC: pc, Message: fmt.Sprintf(format, args...)}
}

package ast

import (
	"yarax/internal/source"
)

// Exprs manages allocation of expressions.
type Exprs struct {
	Arena    *Arena[Expr]
	Literals *Arena[ExprLiteralData]
	Patterns *Arena[ExprPatternData]
	Ofs      *Arena[ExprOfData]
	Idents   *Arena[ExprIdentData]
	Members  *Arena[ExprMemberData]
	Indices  *Arena[ExprIndexData]
	Calls    *Arena[ExprCallData]
	Binaries *Arena[ExprBinaryData]
	Unaries  *Arena[ExprUnaryData]
	Groups   *Arena[ExprGroupData]
}

// NewExprs creates a new Exprs with per-kind arenas preallocated using capHint.
// If capHint is 0, a default capacity of 1<<8 is used.
func NewExprs(capHint uint) *Exprs {
	if capHint == 0 {
		capHint = 1 << 8
	}
	return &Exprs{
		Arena:    NewArena[Expr](capHint),
		Literals: NewArena[ExprLiteralData](capHint),
		Patterns: NewArena[ExprPatternData](capHint),
		Ofs:      NewArena[ExprOfData](capHint),
		Idents:   NewArena[ExprIdentData](capHint),
		Members:  NewArena[ExprMemberData](capHint),
		Indices:  NewArena[ExprIndexData](capHint),
		Calls:    NewArena[ExprCallData](capHint),
		Binaries: NewArena[ExprBinaryData](capHint),
		Unaries:  NewArena[ExprUnaryData](capHint),
		Groups:   NewArena[ExprGroupData](capHint),
	}
}

func (e *Exprs) new(kind ExprKind, span source.Span, payload PayloadID) ExprID {
	return ExprID(e.Arena.Allocate(Expr{
		Kind:    kind,
		Span:    span,
		Payload: payload,
	}))
}

// Get returns the expression with the given ID.
func (e *Exprs) Get(id ExprID) *Expr {
	return e.Arena.Get(uint32(id))
}

// NewFilesize creates a `filesize` expression.
func (e *Exprs) NewFilesize(span source.Span) ExprID {
	return e.new(ExprFilesize, span, NoPayloadID)
}

// NewLiteral allocates a literal expression.
func (e *Exprs) NewLiteral(span source.Span, data ExprLiteralData) ExprID {
	payload := e.Literals.Allocate(data)
	return e.new(ExprLit, span, PayloadID(payload))
}

// Literal returns the literal payload for the given expression ID.
func (e *Exprs) Literal(id ExprID) (*ExprLiteralData, bool) {
	expr := e.Get(id)
	if expr == nil || expr.Kind != ExprLit {
		return nil, false
	}
	return e.Literals.Get(uint32(expr.Payload)), true
}

// NewPattern allocates a pattern expression.
func (e *Exprs) NewPattern(span source.Span, data ExprPatternData) ExprID {
	payload := e.Patterns.Allocate(data)
	return e.new(ExprPattern, span, PayloadID(payload))
}

// Pattern returns the pattern payload for the given expression ID.
func (e *Exprs) Pattern(id ExprID) (*ExprPatternData, bool) {
	expr := e.Get(id)
	if expr == nil || expr.Kind != ExprPattern {
		return nil, false
	}
	return e.Patterns.Get(uint32(expr.Payload)), true
}

// NewOf allocates an of expression.
func (e *Exprs) NewOf(span source.Span, data ExprOfData) ExprID {
	payload := e.Ofs.Allocate(data)
	return e.new(ExprOf, span, PayloadID(payload))
}

// Of returns the of payload for the given expression ID.
func (e *Exprs) Of(id ExprID) (*ExprOfData, bool) {
	expr := e.Get(id)
	if expr == nil || expr.Kind != ExprOf {
		return nil, false
	}
	return e.Ofs.Get(uint32(expr.Payload)), true
}

// NewIdent allocates an ident expression.
func (e *Exprs) NewIdent(span source.Span, data ExprIdentData) ExprID {
	payload := e.Idents.Allocate(data)
	return e.new(ExprIdent, span, PayloadID(payload))
}

// Ident returns the ident payload for the given expression ID.
func (e *Exprs) Ident(id ExprID) (*ExprIdentData, bool) {
	expr := e.Get(id)
	if expr == nil || expr.Kind != ExprIdent {
		return nil, false
	}
	return e.Idents.Get(uint32(expr.Payload)), true
}

// NewMember allocates a member expression.
func (e *Exprs) NewMember(span source.Span, data ExprMemberData) ExprID {
	payload := e.Members.Allocate(data)
	return e.new(ExprMember, span, PayloadID(payload))
}

// Member returns the member payload for the given expression ID.
func (e *Exprs) Member(id ExprID) (*ExprMemberData, bool) {
	expr := e.Get(id)
	if expr == nil || expr.Kind != ExprMember {
		return nil, false
	}
	return e.Members.Get(uint32(expr.Payload)), true
}

// NewIndex allocates an index expression.
func (e *Exprs) NewIndex(span source.Span, data ExprIndexData) ExprID {
	payload := e.Indices.Allocate(data)
	return e.new(ExprIndex, span, PayloadID(payload))
}

// Index returns the index payload for the given expression ID.
func (e *Exprs) Index(id ExprID) (*ExprIndexData, bool) {
	expr := e.Get(id)
	if expr == nil || expr.Kind != ExprIndex {
		return nil, false
	}
	return e.Indices.Get(uint32(expr.Payload)), true
}

// NewCall allocates a call expression.
func (e *Exprs) NewCall(span source.Span, data ExprCallData) ExprID {
	payload := e.Calls.Allocate(data)
	return e.new(ExprCall, span, PayloadID(payload))
}

// Call returns the call payload for the given expression ID.
func (e *Exprs) Call(id ExprID) (*ExprCallData, bool) {
	expr := e.Get(id)
	if expr == nil || expr.Kind != ExprCall {
		return nil, false
	}
	return e.Calls.Get(uint32(expr.Payload)), true
}

// NewBinary allocates a binary expression.
func (e *Exprs) NewBinary(span source.Span, data ExprBinaryData) ExprID {
	payload := e.Binaries.Allocate(data)
	return e.new(ExprBinary, span, PayloadID(payload))
}

// Binary returns the binary payload for the given expression ID.
func (e *Exprs) Binary(id ExprID) (*ExprBinaryData, bool) {
	expr := e.Get(id)
	if expr == nil || expr.Kind != ExprBinary {
		return nil, false
	}
	return e.Binaries.Get(uint32(expr.Payload)), true
}

// NewUnary allocates an unary expression.
func (e *Exprs) NewUnary(span source.Span, data ExprUnaryData) ExprID {
	payload := e.Unaries.Allocate(data)
	return e.new(ExprUnary, span, PayloadID(payload))
}

// Unary returns the unary payload for the given expression ID.
func (e *Exprs) Unary(id ExprID) (*ExprUnaryData, bool) {
	expr := e.Get(id)
	if expr == nil || expr.Kind != ExprUnary {
		return nil, false
	}
	return e.Unaries.Get(uint32(expr.Payload)), true
}

// NewGroup allocates a group expression.
func (e *Exprs) NewGroup(span source.Span, data ExprGroupData) ExprID {
	payload := e.Groups.Allocate(data)
	return e.new(ExprGroup, span, PayloadID(payload))
}

// Group returns the group payload for the given expression ID.
func (e *Exprs) Group(id ExprID) (*ExprGroupData, bool) {
	expr := e.Get(id)
	if expr == nil || expr.Kind != ExprGroup {
		return nil, false
	}
	return e.Groups.Get(uint32(expr.Payload)), true
}

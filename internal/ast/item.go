package ast

import (
	"yarax/internal/source"
)

type ItemKind uint8

const (
	ItemImport ItemKind = iota
	ItemRule
)

type Item struct {
	Kind    ItemKind
	Span    source.Span
	Payload PayloadID
}

// ImportItem is `import "name"`.
type ImportItem struct {
	Module     string
	ModuleSpan source.Span
}

// RuleModifiers are the flags written before `rule`.
type RuleModifiers uint8

const (
	RulePrivate RuleModifiers = 1 << iota
	RuleGlobal
)

func (m RuleModifiers) Has(flag RuleModifiers) bool { return m&flag != 0 }

type Tag struct {
	Name string
	Span source.Span
}

type MetaKind uint8

const (
	MetaString MetaKind = iota
	MetaInt
	MetaBool
	MetaFloat
)

// Meta is one `key = value` entry of the meta section.
type Meta struct {
	Key   string
	Span  source.Span
	Kind  MetaKind
	Str   []byte
	Int   int64
	Bool  bool
	Float float64
}

type PatternKind uint8

const (
	PatternText PatternKind = iota
	PatternHex
)

type PatternModifiers uint8

const (
	PatAscii PatternModifiers = 1 << iota
	PatWide
	PatNocase
	PatFullword
)

func (m PatternModifiers) Has(flag PatternModifiers) bool { return m&flag != 0 }

// PatternDecl is one entry of the strings section.
// For hex patterns Mask marks the bits that must match (0x00 for `??`).
type PatternDecl struct {
	Name      string // с сигилом: "$a", "$" для анонимных
	Span      source.Span
	Kind      PatternKind
	Bytes     []byte
	Mask      []byte
	Modifiers PatternModifiers
}

// RuleItem is a parsed rule declaration.
type RuleItem struct {
	Name      string
	NameSpan  source.Span
	Modifiers RuleModifiers
	Tags      []Tag
	Meta      []Meta
	Patterns  []PatternDecl
	Condition ExprID
}

type Items struct {
	Arena   *Arena[Item]
	Imports *Arena[ImportItem]
	Rules   *Arena[RuleItem]
}

func NewItems(capHint uint) *Items {
	if capHint == 0 {
		capHint = 1 << 6
	}
	return &Items{
		Arena:   NewArena[Item](capHint),
		Imports: NewArena[ImportItem](capHint),
		Rules:   NewArena[RuleItem](capHint),
	}
}

func (i *Items) new(kind ItemKind, span source.Span, payload PayloadID) ItemID {
	return ItemID(i.Arena.Allocate(Item{Kind: kind, Span: span, Payload: payload}))
}

func (i *Items) Get(id ItemID) *Item {
	return i.Arena.Get(uint32(id))
}

func (i *Items) NewImport(span source.Span, data ImportItem) ItemID {
	return i.new(ItemImport, span, PayloadID(i.Imports.Allocate(data)))
}

func (i *Items) Import(id ItemID) (*ImportItem, bool) {
	item := i.Get(id)
	if item == nil || item.Kind != ItemImport {
		return nil, false
	}
	return i.Imports.Get(uint32(item.Payload)), true
}

func (i *Items) NewRule(span source.Span, data RuleItem) ItemID {
	return i.new(ItemRule, span, PayloadID(i.Rules.Allocate(data)))
}

func (i *Items) Rule(id ItemID) (*RuleItem, bool) {
	item := i.Get(id)
	if item == nil || item.Kind != ItemRule {
		return nil, false
	}
	return i.Rules.Get(uint32(item.Payload)), true
}

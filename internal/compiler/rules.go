package compiler

import (
	"errors"
	"fmt"
	"io"

	"github.com/vmihailenco/msgpack/v5"

	"yarax/internal/ast"
	"yarax/internal/ident"
	"yarax/internal/symbols"
	"yarax/internal/vm"
	"yarax/internal/wasm"
)

// RuleID indexes the rule table; ids are dense and start at 0.
type RuleID uint32

// PatternID indexes the pattern table; ids are dense and start at 0.
type PatternID uint32

// PatternEntry pairs a pattern identifier with its global id.
type PatternEntry struct {
	Ident   ident.ID  `msgpack:"ident"`
	Pattern PatternID `msgpack:"pattern"`
}

// Meta is one metadata entry of a compiled rule.
type Meta struct {
	Ident ident.ID     `msgpack:"ident"`
	Kind  ast.MetaKind `msgpack:"kind"`
	Str   []byte       `msgpack:"str,omitempty"`
	Int   int64        `msgpack:"int,omitempty"`
	Bool  bool         `msgpack:"bool,omitempty"`
	Float float64      `msgpack:"float,omitempty"`
}

// CompiledRule describes one rule. Patterns keep declaration order and may
// contain the same identifier more than once.
type CompiledRule struct {
	Ident     ident.ID       `msgpack:"ident"`
	Namespace ident.ID       `msgpack:"ns"`
	Patterns  []PatternEntry `msgpack:"patterns"`
	Tags      []ident.ID     `msgpack:"tags,omitempty"`
	Meta      []Meta         `msgpack:"meta,omitempty"`
	Private   bool           `msgpack:"private,omitempty"`
	Global    bool           `msgpack:"global,omitempty"`
}

// Pattern is what the scanner searches for.
type Pattern struct {
	Rule      RuleID               `msgpack:"rule"`
	Ident     ident.ID             `msgpack:"ident"`
	Hex       bool                 `msgpack:"hex,omitempty"`
	Bytes     []byte               `msgpack:"bytes"`
	Mask      []byte               `msgpack:"mask,omitempty"`
	Modifiers ast.PatternModifiers `msgpack:"mods,omitempty"`
}

// Global is an external variable and its default value.
type Global struct {
	Name  string        `msgpack:"name"`
	Type  symbols.Type  `msgpack:"type"`
	Value symbols.Value `msgpack:"value"`
}

// Rules is the compiled artifact. It is immutable and safe to share between
// concurrent scanners.
type Rules struct {
	idents   *ident.Pool
	module   *wasm.Module
	program  *vm.Program
	rules    []CompiledRule
	patterns []Pattern
	globals  []Global
}

func (r *Rules) Idents() *ident.Pool          { return r.idents }
func (r *Rules) Module() *wasm.Module         { return r.module }
func (r *Rules) Program() *vm.Program         { return r.program }
func (r *Rules) Rules() []CompiledRule        { return r.rules }
func (r *Rules) Patterns() []Pattern          { return r.patterns }
func (r *Rules) Globals() []Global            { return r.globals }
func (r *Rules) Rule(id RuleID) *CompiledRule { return &r.rules[id] }

// RuleName resolves the identifier of rule id.
func (r *Rules) RuleName(id RuleID) string {
	return r.idents.MustResolve(r.rules[id].Ident)
}

// schema of the serialized artifact; bump on layout change
const rulesSchemaVersion uint16 = 1

var rulesMagic = []byte("YRXC")

type rulesPayload struct {
	Schema   uint16         `msgpack:"schema"`
	Idents   []string       `msgpack:"idents"`
	Module   []byte         `msgpack:"module"`
	Rules    []CompiledRule `msgpack:"rules"`
	Patterns []Pattern      `msgpack:"patterns"`
	Globals  []Global       `msgpack:"globals"`
}

// Serialize writes the artifact so that Deserialize can restore it without
// the original rule sources.
func (r *Rules) Serialize(w io.Writer) error {
	if _, err := w.Write(rulesMagic); err != nil {
		return fmt.Errorf("serialize rules: %w", err)
	}
	enc := msgpack.NewEncoder(w)
	err := enc.Encode(&rulesPayload{
		Schema:   rulesSchemaVersion,
		Idents:   r.idents.Snapshot(),
		Module:   r.module.EmitBinary(),
		Rules:    r.rules,
		Patterns: r.patterns,
		Globals:  r.globals,
	})
	if err != nil {
		return fmt.Errorf("serialize rules: %w", err)
	}
	return nil
}

// ErrNotRules is returned by Deserialize for input that is not a serialized artifact.
var ErrNotRules = errors.New("compiler: input is not compiled rules")

// Deserialize reads an artifact written by Serialize.
func Deserialize(r io.Reader) (*Rules, error) {
	magic := make([]byte, len(rulesMagic))
	if _, err := io.ReadFull(r, magic); err != nil || string(magic) != string(rulesMagic) {
		return nil, ErrNotRules
	}
	var p rulesPayload
	if err := msgpack.NewDecoder(r).Decode(&p); err != nil {
		return nil, fmt.Errorf("deserialize rules: %w", err)
	}
	if p.Schema != rulesSchemaVersion {
		return nil, fmt.Errorf("deserialize rules: unsupported schema %d", p.Schema)
	}
	pool, err := ident.FromSnapshot(p.Idents)
	if err != nil {
		return nil, fmt.Errorf("deserialize rules: %w", err)
	}
	mod, err := wasm.DecodeBinary(p.Module)
	if err != nil {
		return nil, fmt.Errorf("deserialize rules: %w", err)
	}
	prog, err := vm.Compile(mod)
	if err != nil {
		return nil, fmt.Errorf("deserialize rules: %w", err)
	}
	return &Rules{
		idents:   pool,
		module:   mod,
		program:  prog,
		rules:    p.Rules,
		patterns: p.Patterns,
		globals:  p.Globals,
	}, nil
}

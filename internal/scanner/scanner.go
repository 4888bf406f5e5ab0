// Package scanner runs compiled rules against input buffers.
//
// Rules are shared and immutable; a Scanner holds the per-caller state
// (external variable values) and is not safe for concurrent use. Create one
// Scanner per goroutine over the same compiler.Rules.
package scanner

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"yarax/internal/compiler"
	"yarax/internal/ident"
	"yarax/internal/symbols"
)

var (
	ErrUnknownGlobal = errors.New("scanner: unknown global")
	ErrGlobalType    = errors.New("scanner: wrong type for global")
)

// Option configures a Scanner.
type Option func(*Scanner)

func WithLogger(l zerolog.Logger) Option {
	return func(s *Scanner) { s.log = l }
}

// WithTimeout bounds each scan; zero means no limit.
func WithTimeout(d time.Duration) Option {
	return func(s *Scanner) { s.timeout = d }
}

type Scanner struct {
	rules   *compiler.Rules
	log     zerolog.Logger
	timeout time.Duration
	globals map[string]compiler.Global
	funcs   []hostFunc
}

// New prepares a scanner for rules. External variables start at the values
// given to compiler.DefineGlobal.
func New(rules *compiler.Rules, opts ...Option) *Scanner {
	s := &Scanner{
		rules:   rules,
		log:     zerolog.Nop(),
		globals: make(map[string]compiler.Global, len(rules.Globals())),
		funcs:   bind(rules.Module().Imports),
	}
	for _, g := range rules.Globals() {
		s.globals[g.Name] = g
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// SetGlobal changes the value of an external variable for the following
// scans. Integers are accepted for float variables.
func (s *Scanner) SetGlobal(name string, value any) error {
	g, ok := s.globals[name]
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownGlobal, name)
	}
	var v symbols.Value
	switch x := value.(type) {
	case bool:
		if g.Type != symbols.Bool {
			return fmt.Errorf("%w: cannot assign %T to %s", ErrGlobalType, value, describeGlobal(g))
		}
		v.Bool = x
	case int, int32, int64:
		n := toInt64(x)
		switch g.Type {
		case symbols.Integer:
			v.Int = n
		case symbols.Float:
			v.Float = float64(n)
		default:
			return fmt.Errorf("%w: cannot assign %T to %s", ErrGlobalType, value, describeGlobal(g))
		}
	case float32, float64:
		if g.Type != symbols.Float {
			return fmt.Errorf("%w: cannot assign %T to %s", ErrGlobalType, value, describeGlobal(g))
		}
		v.Float = toFloat64(x)
	case string:
		if g.Type != symbols.String {
			return fmt.Errorf("%w: cannot assign %T to %s", ErrGlobalType, value, describeGlobal(g))
		}
		v.Str = []byte(x)
	default:
		return fmt.Errorf("%w: unsupported value %T", ErrGlobalType, value)
	}
	g.Value = v
	s.globals[name] = g
	return nil
}

func toInt64(x any) int64 {
	switch n := x.(type) {
	case int:
		return int64(n)
	case int32:
		return int64(n)
	default:
		return n.(int64)
	}
}

func toFloat64(x any) float64 {
	if f, ok := x.(float32); ok {
		return float64(f)
	}
	return x.(float64)
}

// Scan evaluates every rule against data.
func (s *Scanner) Scan(data []byte) (*Results, error) {
	return s.ScanContext(context.Background(), data)
}

// ScanContext is Scan with cancellation. Undefined values inside conditions
// are not errors; an error means the scan itself could not finish.
func (s *Scanner) ScanContext(ctx context.Context, data []byte) (*Results, error) {
	if s.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}
	started := time.Now()

	matches, err := findAll(ctx, s.rules.Patterns(), data)
	if err != nil {
		return nil, fmt.Errorf("scan: %w", err)
	}
	st := &scanState{
		ctx:     ctx,
		s:       s,
		data:    data,
		matches: matches,
		matched: make([]bool, len(s.rules.Rules())),
	}
	if err := s.rules.Program().Run(st); err != nil {
		return nil, fmt.Errorf("scan: %w", err)
	}

	res := &Results{rules: s.rules, matches: matches}
	rules := s.rules.Rules()
	// правило global, которое не сработало, гасит всё своё пространство имён
	failed := make(map[ident.ID]bool)
	for id, r := range rules {
		if r.Global && !st.matched[id] {
			failed[r.Namespace] = true
		}
	}
	for id, r := range rules {
		if st.matched[id] && !r.Private && !failed[r.Namespace] {
			res.matching = append(res.matching, compiler.RuleID(id))
		}
	}

	s.log.Debug().
		Int("size", len(data)).
		Int("matching", len(res.matching)).
		Dur("elapsed", time.Since(started)).
		Msg("scan finished")
	return res, nil
}

package scanner

import (
	"yarax/internal/ast"
	"yarax/internal/compiler"
)

// Results of one scan. They reference the rules, not the scanner, and stay
// valid after the scanner is reused.
type Results struct {
	rules    *compiler.Rules
	matching []compiler.RuleID
	matches  [][]Match
}

// MatchingRule is a rule whose condition held, in report form.
type MatchingRule struct {
	Name      string           `json:"rule" yaml:"rule"`
	Namespace string           `json:"namespace" yaml:"namespace"`
	Tags      []string         `json:"tags,omitempty" yaml:"tags,omitempty"`
	Meta      []MetaEntry      `json:"meta,omitempty" yaml:"meta,omitempty"`
	Patterns  []PatternMatches `json:"patterns,omitempty" yaml:"patterns,omitempty"`
}

type MetaEntry struct {
	Key   string `json:"key" yaml:"key"`
	Value any    `json:"value" yaml:"value"`
}

// PatternMatches lists where one pattern of the rule was found.
type PatternMatches struct {
	Ident   string  `json:"ident" yaml:"ident"`
	Matches []Match `json:"matches" yaml:"matches"`
}

func (r *Results) NumMatchingRules() int { return len(r.matching) }

// MatchingRules returns the non-private rules that matched, in rule id order.
func (r *Results) MatchingRules() []MatchingRule {
	idents := r.rules.Idents()
	out := make([]MatchingRule, 0, len(r.matching))
	for _, id := range r.matching {
		rule := r.rules.Rule(id)
		mr := MatchingRule{
			Name:      idents.MustResolve(rule.Ident),
			Namespace: idents.MustResolve(rule.Namespace),
		}
		for _, t := range rule.Tags {
			mr.Tags = append(mr.Tags, idents.MustResolve(t))
		}
		for _, m := range rule.Meta {
			mr.Meta = append(mr.Meta, MetaEntry{Key: idents.MustResolve(m.Ident), Value: metaValue(m)})
		}
		for _, p := range rule.Patterns {
			if ms := r.matches[p.Pattern]; len(ms) > 0 {
				mr.Patterns = append(mr.Patterns, PatternMatches{Ident: idents.MustResolve(p.Ident), Matches: ms})
			}
		}
		out = append(out, mr)
	}
	return out
}

func metaValue(m compiler.Meta) any {
	switch m.Kind {
	case ast.MetaInt:
		return m.Int
	case ast.MetaBool:
		return m.Bool
	case ast.MetaFloat:
		return m.Float
	default:
		return string(m.Str)
	}
}

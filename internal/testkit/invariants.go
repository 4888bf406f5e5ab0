// Package testkit holds structural checks shared by parser and compiler tests.
package testkit

import (
	"fmt"

	"fortio.org/safecast"

	"yarax/internal/ast"
	"yarax/internal/source"
)

// CheckSpanInvariants runs a minimal set of span invariants on a parsed file:
// 1) file.Span is non-empty and within file content bounds
// 2) every item span is non-empty and fully contained in file.Span
// 3) every span inside a rule (name, tags, meta, patterns, condition) lies
// within the rule span
func CheckSpanInvariants(b *ast.Builder, fileID ast.FileID, sf *source.File) error {
	if b == nil || sf == nil {
		return fmt.Errorf("nil builder or file")
	}
	f := b.Files.Get(fileID)
	if f == nil {
		return fmt.Errorf("file node not found")
	}

	// 1) file span sanity
	if f.Span.End <= f.Span.Start {
		return fmt.Errorf("file span is empty: %v", f.Span)
	}
	if f.Span.File != sf.ID {
		return fmt.Errorf("file span points to different file id: got=%d want=%d", f.Span.File, sf.ID)
	}
	lenContent, err := safecast.Conv[uint32](len(sf.Content))
	if err != nil {
		return fmt.Errorf("len content overflow: %w", err)
	}
	if f.Span.End > lenContent {
		return fmt.Errorf("file span end beyond content: %d > %d", f.Span.End, lenContent)
	}

	for _, it := range f.Items {
		item := b.Items.Get(it)
		if item == nil {
			return fmt.Errorf("nil item for id=%d", it)
		}
		if err := within("item", item.Span, f.Span, sf.ID); err != nil {
			return err
		}
		if rule, ok := b.Items.Rule(it); ok {
			if err := checkRule(b, rule, item.Span, sf.ID); err != nil {
				return fmt.Errorf("rule %s: %w", rule.Name, err)
			}
		}
	}
	return nil
}

func checkRule(b *ast.Builder, r *ast.RuleItem, outer source.Span, file source.FileID) error {
	if err := within("name", r.NameSpan, outer, file); err != nil {
		return err
	}
	for _, t := range r.Tags {
		if err := within("tag "+t.Name, t.Span, outer, file); err != nil {
			return err
		}
	}
	for _, m := range r.Meta {
		if err := within("meta "+m.Key, m.Span, outer, file); err != nil {
			return err
		}
	}
	for _, p := range r.Patterns {
		if err := within("pattern "+p.Name, p.Span, outer, file); err != nil {
			return err
		}
	}
	if r.Condition.IsValid() {
		cond := b.Exprs.Get(r.Condition)
		if cond == nil {
			return fmt.Errorf("condition %d not found", r.Condition)
		}
		if err := within("condition", cond.Span, outer, file); err != nil {
			return err
		}
	}
	return nil
}

func within(what string, sp, outer source.Span, file source.FileID) error {
	if sp.End <= sp.Start {
		return fmt.Errorf("empty %s span: %v", what, sp)
	}
	if sp.File != file {
		return fmt.Errorf("%s span file mismatch: got=%d want=%d", what, sp.File, file)
	}
	if sp.Start < outer.Start || sp.End > outer.End {
		return fmt.Errorf("%s span %v is outside %v", what, sp, outer)
	}
	return nil
}

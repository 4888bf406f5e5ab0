package scanner

import (
	"context"

	"yarax/internal/ast"
	"yarax/internal/compiler"
)

// Match is one occurrence of a pattern in the scanned data.
type Match struct {
	Offset int64 `json:"offset" yaml:"offset"`
	Length int64 `json:"length" yaml:"length"`
}

// checkEvery is how many data offsets the finder scans between context checks.
const checkEvery = 1 << 16

// findAll returns every match of every pattern, indexed by pattern id.
// Matches of one pattern are ordered by offset and may overlap.
func findAll(ctx context.Context, patterns []compiler.Pattern, data []byte) ([][]Match, error) {
	out := make([][]Match, len(patterns))
	for i := range patterns {
		ms, err := findPattern(ctx, &patterns[i], data)
		if err != nil {
			return nil, err
		}
		out[i] = ms
	}
	return out, nil
}

func findPattern(ctx context.Context, p *compiler.Pattern, data []byte) ([]Match, error) {
	if p.Hex {
		return scan(ctx, data, p.Bytes, p.Mask, false, false)
	}
	nocase := p.Modifiers.Has(ast.PatNocase)
	fullword := p.Modifiers.Has(ast.PatFullword)
	wide := p.Modifiers.Has(ast.PatWide)
	ascii := p.Modifiers.Has(ast.PatAscii) || !wide

	var out []Match
	if ascii {
		ms, err := scan(ctx, data, p.Bytes, nil, nocase, fullword)
		if err != nil {
			return nil, err
		}
		out = append(out, ms...)
	}
	if wide {
		ms, err := scan(ctx, data, widen(p.Bytes), nil, nocase, fullword)
		if err != nil {
			return nil, err
		}
		out = mergeByOffset(out, ms)
	}
	return out, nil
}

// widen interleaves zero bytes, the UTF-16LE form of ASCII text.
func widen(b []byte) []byte {
	w := make([]byte, 0, 2*len(b))
	for _, c := range b {
		w = append(w, c, 0)
	}
	return w
}

func lower(c byte) byte {
	if 'A' <= c && c <= 'Z' {
		return c + 'a' - 'A'
	}
	return c
}

func isWordByte(c byte) bool {
	return c == '_' || '0' <= c && c <= '9' || 'a' <= c && c <= 'z' || 'A' <= c && c <= 'Z'
}

// scan is a naive search at every offset. mask, when set, selects the bits
// of each byte that must match.
func scan(ctx context.Context, data, needle, mask []byte, nocase, fullword bool) ([]Match, error) {
	if len(needle) == 0 || len(needle) > len(data) {
		return nil, nil
	}
	var out []Match
	last := len(data) - len(needle)
	for off := 0; off <= last; off++ {
		if off%checkEvery == 0 {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
		}
		if !matchAt(data[off:], needle, mask, nocase) {
			continue
		}
		end := off + len(needle)
		if fullword && (off > 0 && isWordByte(data[off-1]) || end < len(data) && isWordByte(data[end])) {
			continue
		}
		out = append(out, Match{Offset: int64(off), Length: int64(len(needle))})
	}
	return out, nil
}

func matchAt(hay, needle, mask []byte, nocase bool) bool {
	for i, want := range needle {
		got := hay[i]
		switch {
		case mask != nil:
			if got&mask[i] != want&mask[i] {
				return false
			}
		case nocase:
			if lower(got) != lower(want) {
				return false
			}
		default:
			if got != want {
				return false
			}
		}
	}
	return true
}

func mergeByOffset(a, b []Match) []Match {
	out := make([]Match, 0, len(a)+len(b))
	i, j := 0, 0
	for i < len(a) && j < len(b) {
		if a[i].Offset <= b[j].Offset {
			out = append(out, a[i])
			i++
		} else {
			out = append(out, b[j])
			j++
		}
	}
	out = append(out, a[i:]...)
	return append(out, b[j:]...)
}

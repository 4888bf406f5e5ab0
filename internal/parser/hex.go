package parser

import (
	"yarax/internal/diag"
	"yarax/internal/source"
	"yarax/internal/token"
)

// parseHexBody разбирает тело `{ 4D 5A ?? 9? }` в байты и маску.
// Прыжки `[n-m]` и альтернативы `( a | b )` не поддерживаются.
func (p *Parser) parseHexBody(tok token.Token) (bytes, mask []byte, ok bool) {
	body := tok.Text
	var nibbles []byte // по одному полубайту; 0xFF - wildcard
	for i := 0; i < len(body); i++ {
		c := body[i]
		at := source.Span{File: tok.Span.File, Start: tok.Span.Start + uint32(i), End: tok.Span.Start + uint32(i) + 1}
		switch {
		case c == ' ' || c == '\t' || c == '\n' || c == '\r':
		case c == '?':
			nibbles = append(nibbles, 0xFF)
		case hexNibble(c) >= 0:
			nibbles = append(nibbles, byte(hexNibble(c)))
		case c == '[' || c == '(' || c == '|' || c == '~':
			p.errAt(diag.SynUnsupported, at, "hex jumps, alternatives and negations are not supported")
			return nil, nil, false
		default:
			p.errAt(diag.SynBadHexPattern, at, "invalid character in hex pattern")
			return nil, nil, false
		}
	}
	if len(nibbles) == 0 {
		p.errAt(diag.SynBadHexPattern, tok.Span, "empty hex pattern")
		return nil, nil, false
	}
	if len(nibbles)%2 != 0 {
		p.errAt(diag.SynBadHexPattern, tok.Span, "hex pattern has an odd number of digits")
		return nil, nil, false
	}
	bytes = make([]byte, 0, len(nibbles)/2)
	mask = make([]byte, 0, len(nibbles)/2)
	for i := 0; i < len(nibbles); i += 2 {
		var b, m byte
		for _, n := range nibbles[i : i+2] {
			b, m = b<<4, m<<4
			if n != 0xFF {
				b |= n
				m |= 0x0F
			}
		}
		bytes = append(bytes, b)
		mask = append(mask, m)
	}
	if allWildcards(mask) {
		p.errAt(diag.SynBadHexPattern, tok.Span, "hex pattern consists only of wildcards")
		return nil, nil, false
	}
	return bytes, mask, true
}

func hexNibble(c byte) int {
	switch {
	case c >= '0' && c <= '9':
		return int(c - '0')
	case c >= 'a' && c <= 'f':
		return int(c-'a') + 10
	case c >= 'A' && c <= 'F':
		return int(c-'A') + 10
	default:
		return -1
	}
}

func allWildcards(mask []byte) bool {
	for _, m := range mask {
		if m != 0 {
			return false
		}
	}
	return true
}

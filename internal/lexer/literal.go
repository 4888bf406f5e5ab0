package lexer

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// ErrIntRange is returned when an integer literal does not fit into int64.
var ErrIntRange = errors.New("integer literal out of range")

// ParseInt computes the value of an IntLit token text.
func ParseInt(text string) (int64, error) {
	mult := int64(1)
	switch {
	case strings.HasSuffix(text, "KB"):
		mult, text = 1024, strings.TrimSuffix(text, "KB")
	case strings.HasSuffix(text, "MB"):
		mult, text = 1024*1024, strings.TrimSuffix(text, "MB")
	}
	base := 10
	switch {
	case strings.HasPrefix(text, "0x"), strings.HasPrefix(text, "0X"):
		base, text = 16, text[2:]
	case strings.HasPrefix(text, "0o"), strings.HasPrefix(text, "0O"):
		base, text = 8, text[2:]
	}
	v, err := strconv.ParseInt(text, base, 64)
	if err != nil {
		var numErr *strconv.NumError
		if errors.As(err, &numErr) && errors.Is(numErr.Err, strconv.ErrRange) {
			return 0, ErrIntRange
		}
		return 0, err
	}
	if v > math.MaxInt64/mult {
		return 0, ErrIntRange
	}
	return v * mult, nil
}

// ParseFloat computes the value of a FloatLit token text.
func ParseFloat(text string) (float64, error) {
	return strconv.ParseFloat(text, 64)
}

// Unquote decodes a StringLit token text (quotes included) into raw bytes.
// `\xNN` yields an arbitrary byte, so the result is not necessarily UTF-8.
func Unquote(text string) ([]byte, error) {
	if len(text) < 2 || text[0] != '"' || text[len(text)-1] != '"' {
		return nil, fmt.Errorf("malformed string literal %q", text)
	}
	body := text[1 : len(text)-1]
	out := make([]byte, 0, len(body))
	for i := 0; i < len(body); i++ {
		c := body[i]
		if c != '\\' {
			out = append(out, c)
			continue
		}
		i++
		if i >= len(body) {
			return nil, errors.New("trailing backslash in string literal")
		}
		switch body[i] {
		case 'n':
			out = append(out, '\n')
		case 't':
			out = append(out, '\t')
		case 'r':
			out = append(out, '\r')
		case '"':
			out = append(out, '"')
		case '\\':
			out = append(out, '\\')
		case 'x':
			if i+3 > len(body) {
				return nil, errors.New("short \\x escape")
			}
			v, err := strconv.ParseUint(body[i+1:i+3], 16, 8)
			if err != nil {
				return nil, fmt.Errorf("bad \\x escape: %w", err)
			}
			out = append(out, byte(v))
			i += 2
		default:
			return nil, fmt.Errorf("unknown escape \\%c", body[i])
		}
	}
	return out, nil
}

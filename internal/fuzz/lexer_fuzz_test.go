package fuzztests

import (
	"testing"

	"yarax/internal/diag"
	"yarax/internal/lexer"
	"yarax/internal/source"
	"yarax/internal/token"
)

const maxFuzzInput = 1 << 16 // 64 KiB

func clampInput(input []byte) []byte {
	if len(input) > maxFuzzInput {
		return append([]byte(nil), input[:maxFuzzInput]...)
	}
	return append([]byte(nil), input...)
}

func FuzzLexerTokens(f *testing.F) {
	addCorpusSeeds(f)
	f.Fuzz(func(t *testing.T, input []byte) {
		input = clampInput(input)

		fs := source.NewFileSet()
		file := fs.Get(fs.AddVirtual("fuzz.yar", input))

		bag := diag.NewBag(64)
		lx := lexer.New(file, lexer.Options{Reporter: &diag.BagReporter{Bag: bag}})
		// каждый токен съедает хотя бы байт, иначе лексер зациклился
		for n := 0; ; n++ {
			if n > len(input)+1 {
				t.Fatalf("lexer produced more tokens than input bytes: %q", truncateForLog(input, 200))
			}
			if lx.Next().Kind == token.EOF {
				break
			}
		}
	})
}

// truncateForLog truncates input for logging purposes
func truncateForLog(input []byte, maxLen int) []byte {
	if len(input) <= maxLen {
		return input
	}
	return append(input[:maxLen:maxLen], []byte("...")...)
}

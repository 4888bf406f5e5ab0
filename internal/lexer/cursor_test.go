package lexer

import (
	"testing"

	"yarax/internal/source"
)

func createFile(content string) *source.File {
	fs := source.NewFileSet()
	id := fs.AddVirtual("test.yar", []byte(content))
	return fs.Get(id)
}

// TestSequentialReading проверяет последовательное чтение: "a\nb" → a, \n, b, EOF
func TestSequentialReading(t *testing.T) {
	cursor := NewCursor(createFile("a\nb"))
	for _, want := range []byte{'a', '\n', 'b'} {
		if cursor.EOF() {
			t.Fatalf("unexpected EOF before %q", want)
		}
		if got := cursor.Peek(); got != want {
			t.Fatalf("peek: want %q, got %q", want, got)
		}
		if got := cursor.Bump(); got != want {
			t.Fatalf("bump: want %q, got %q", want, got)
		}
	}
	if !cursor.EOF() || cursor.Peek() != 0 || cursor.Bump() != 0 {
		t.Fatal("expected EOF state at the end")
	}
}

func TestPeek2(t *testing.T) {
	cursor := NewCursor(createFile("ab"))
	b0, b1, ok := cursor.Peek2()
	if !ok || b0 != 'a' || b1 != 'b' {
		t.Fatalf("Peek2 = %q %q %v", b0, b1, ok)
	}
	cursor.Bump()
	if _, _, ok := cursor.Peek2(); ok {
		t.Fatal("Peek2 should fail with a single byte left")
	}
}

func TestMarkResetSpan(t *testing.T) {
	file := createFile("rule x")
	cursor := NewCursor(file)
	m := cursor.Mark()
	for range 4 {
		cursor.Bump()
	}
	sp := cursor.SpanFrom(m)
	if sp.Start != 0 || sp.End != 4 || sp.File != file.ID {
		t.Fatalf("unexpected span %v", sp)
	}
	cursor.Reset(m)
	if cursor.Off != 0 {
		t.Fatalf("reset: off = %d", cursor.Off)
	}
	if !cursor.Eat('r') || cursor.Eat('r') {
		t.Fatal("Eat should consume exactly one matching byte")
	}
}

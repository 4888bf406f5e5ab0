package compiler

// SourceCode is rule text plus the name used for it in diagnostics.
type SourceCode struct {
	Origin string
	Data   []byte
}

// Source wraps literal rule text.
func Source(text string) SourceCode {
	return SourceCode{Data: []byte(text)}
}

// WithOrigin names the source, usually after the file it came from.
func (s SourceCode) WithOrigin(origin string) SourceCode {
	s.Origin = origin
	return s
}

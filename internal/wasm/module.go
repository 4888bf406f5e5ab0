package wasm

// Module is a finished, validated program. It is never mutated after Build.
type Module struct {
	Imports  []Import  `msgpack:"imports"`
	Locals   []ValType `msgpack:"locals"`
	Seqs     []Seq     `msgpack:"seqs"`
	Main     SeqID     `msgpack:"main"`
	Literals [][]byte  `msgpack:"literals"`
}

// Seq returns the sequence id; nil when out of range.
func (m *Module) Seq(id SeqID) *Seq {
	if m == nil || int(id) >= len(m.Seqs) {
		return nil
	}
	return &m.Seqs[id]
}

// Literal returns the pooled bytes for id.
func (m *Module) Literal(id LiteralID) ([]byte, bool) {
	if id == 0 || int(id) > len(m.Literals) {
		return nil, false
	}
	return m.Literals[id-1], true
}

// ImportIndex finds an import by module and name.
func (m *Module) ImportIndex(module, name string) (FuncID, bool) {
	for i, imp := range m.Imports {
		if imp.Module == module && imp.Name == name {
			return FuncID(i), true
		}
	}
	return 0, false
}

// InstrCount is the number of instructions across all sequences.
func (m *Module) InstrCount() int {
	n := 0
	for i := range m.Seqs {
		n += len(m.Seqs[i].Instrs)
	}
	return n
}

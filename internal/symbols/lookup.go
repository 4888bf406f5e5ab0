package symbols

// SymbolLookup is anything that resolves a member by name: modules, nested
// structures, the per-namespace table, or a stack of those.
type SymbolLookup interface {
	Lookup(name string) (TypeValue, bool)
}

// Fields is an ordered set of named fields.
type Fields struct {
	names  []string
	fields map[string]TypeValue
}

func NewFields() *Fields {
	return &Fields{fields: make(map[string]TypeValue)}
}

// AddField declares a field; redeclaring replaces the value but keeps the original position.
func (s *Fields) AddField(name string, v TypeValue) *Fields {
	if _, ok := s.fields[name]; !ok {
		s.names = append(s.names, name)
	}
	s.fields[name] = v
	return s
}

func (s *Fields) Lookup(name string) (TypeValue, bool) {
	v, ok := s.fields[name]
	return v, ok
}

// Names returns field names in declaration order.
func (s *Fields) Names() []string {
	return append([]string(nil), s.names...)
}

// Stack resolves a name in the topmost layer that knows it.
type Stack []SymbolLookup

func (s Stack) Lookup(name string) (TypeValue, bool) {
	for i := len(s) - 1; i >= 0; i-- {
		if s[i] == nil {
			continue
		}
		if v, ok := s[i].Lookup(name); ok {
			return v, true
		}
	}
	return TypeValue{}, false
}

// Push returns a stack with l on top.
func (s Stack) Push(l SymbolLookup) Stack {
	return append(s[:len(s):len(s)], l)
}

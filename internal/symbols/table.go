package symbols

// Table holds the top-level bindings of one namespace: imported modules,
// external variables and the rules declared so far.
type Table struct {
	names   []string
	entries map[string]TypeValue
}

func NewTable() *Table {
	return &Table{entries: make(map[string]TypeValue)}
}

// Insert adds or replaces a binding and reports whether the name was new.
func (t *Table) Insert(name string, v TypeValue) bool {
	_, existed := t.entries[name]
	if !existed {
		t.names = append(t.names, name)
	}
	t.entries[name] = v
	return !existed
}

func (t *Table) Lookup(name string) (TypeValue, bool) {
	v, ok := t.entries[name]
	return v, ok
}

// Names returns bound names in insertion order.
func (t *Table) Names() []string {
	return append([]string(nil), t.names...)
}

func (t *Table) Len() int { return len(t.names) }

// Clone returns an independent copy; values are shared since they are immutable.
func (t *Table) Clone() *Table {
	c := &Table{
		names:   append([]string(nil), t.names...),
		entries: make(map[string]TypeValue, len(t.entries)),
	}
	for k, v := range t.entries {
		c.entries[k] = v
	}
	return c
}

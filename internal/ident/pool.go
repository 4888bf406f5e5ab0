// Package ident implements the identifier pool shared by every rule compiled
// in one session. Rule names, pattern names and namespace names are interned
// once and referenced by a 32-bit ID afterwards.
package ident

import (
	"fmt"
	"slices"

	"fortio.org/safecast"
)

// ID is a handle to an interned identifier.
type ID uint32

// NoID is reserved for the empty identifier.
const NoID ID = 0

// Pool interns identifiers. Entries are never removed, so every ID returned
// by Intern stays valid for the lifetime of the pool.
type Pool struct {
	byID  []string      // индекс -> строка (byID[0] = "" для NoID)
	index map[string]ID // строка -> ID
}

// NewPool creates an empty pool.
func NewPool() *Pool {
	return &Pool{
		byID:  []string{""},
		index: map[string]ID{"": NoID},
	}
}

// Intern returns the ID of s, allocating a new one on first sight.
func (p *Pool) Intern(s string) ID {
	if id, ok := p.index[s]; ok {
		return id
	}

	// Собственная копия строки, чтобы не держать исходный буфер.
	cpy := string([]byte(s))
	n, err := safecast.Conv[uint32](len(p.byID))
	if err != nil {
		panic(fmt.Errorf("identifier pool overflow: %w", err))
	}
	id := ID(n)
	p.byID = append(p.byID, cpy)
	p.index[cpy] = id
	return id
}

// Get returns the ID of s without interning it.
func (p *Pool) Get(s string) (ID, bool) {
	id, ok := p.index[s]
	return id, ok
}

// Resolve returns the identifier for id.
func (p *Pool) Resolve(id ID) (string, bool) {
	if !p.Has(id) {
		return "", false
	}
	return p.byID[id], true
}

// MustResolve returns the identifier for id and panics if id was never
// returned by Intern. An unknown handle is a programming error.
func (p *Pool) MustResolve(id ID) string {
	s, ok := p.Resolve(id)
	if !ok {
		panic(fmt.Sprintf("invalid identifier ID %d", id))
	}
	return s
}

// Has reports whether id is a valid handle.
func (p *Pool) Has(id ID) bool {
	return int(id) < len(p.byID)
}

// Len returns the number of identifiers, including the reserved empty one.
func (p *Pool) Len() int {
	return len(p.byID)
}

// Snapshot returns a copy of every identifier indexed by ID.
func (p *Pool) Snapshot() []string {
	return slices.Clone(p.byID)
}

// FromSnapshot rebuilds a pool from the output of Snapshot.
func FromSnapshot(items []string) (*Pool, error) {
	if len(items) == 0 || items[0] != "" {
		return nil, fmt.Errorf("identifier snapshot must start with the empty identifier")
	}
	p := &Pool{
		byID:  slices.Clone(items),
		index: make(map[string]ID, len(items)),
	}
	for i, s := range p.byID {
		if _, dup := p.index[s]; dup {
			return nil, fmt.Errorf("duplicate identifier %q in snapshot", s)
		}
		id, err := safecast.Conv[uint32](i)
		if err != nil {
			return nil, fmt.Errorf("identifier snapshot too large: %w", err)
		}
		p.index[s] = ID(id)
	}
	return p, nil
}

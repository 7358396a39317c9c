package uniform

import (
	"github.com/Carmen-Shannon/oxy-gl/engine/renderer/backend"
)

// Table is an ordered set of uniforms keyed by name. Uploads happen in insertion order.
type Table struct {
	order  []*Uniform
	byName map[string]int
}

// NewTable returns an empty Table.
func NewTable() *Table {
	return &Table{byName: make(map[string]int)}
}

// Put inserts a uniform, replacing any uniform of the same name in place.
func (t *Table) Put(u *Uniform) {
	if i, ok := t.byName[u.Name]; ok {
		t.order[i] = u
		return
	}
	t.byName[u.Name] = len(t.order)
	t.order = append(t.order, u)
}

// Get returns the uniform with the given name.
func (t *Table) Get(name string) (*Uniform, bool) {
	i, ok := t.byName[name]
	if !ok {
		return nil, false
	}
	return t.order[i], true
}

// All returns the uniforms in insertion order.
func (t *Table) All() []*Uniform {
	return t.order
}

// Len returns the number of uniforms.
func (t *Table) Len() int { return len(t.order) }

// Resolve recomputes every well-known uniform in the table.
func (t *Table) Resolve() {
	for _, u := range t.order {
		u.Resolve()
	}
}

// Upload sends every uniform to the current program.
func (t *Table) Upload(b backend.Backend) {
	for _, u := range t.order {
		u.Upload(b)
	}
}

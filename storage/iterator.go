package storage

import "github.com/lattice-works/lattice/internal/assert"

// NextVisit returns the first live, enabled row after the given one, 0
// when none remain. The basis of every iterator in and above this package.
func (t *Table) NextVisit(after int) int {
	for row := after + 1; row <= t.cursor; row++ {
		if t.visits(row) {
			return row
		}
	}
	return 0
}

// EnabledAt reports whether the row holds a live component that iterators
// visit.
func (t *Table) EnabledAt(row int) bool {
	if row <= 0 || row >= len(t.rowToEntity) {
		return false
	}
	return t.visits(row)
}

// Iterator walks one table's live, enabled components in row order and
// yields the canonical handle of each, safe to retain.
type Iterator struct {
	t    *Table
	next int
}

// NewIterator returns an iterator over the table's components.
func NewIterator(t *Table) *Iterator {
	return &Iterator{t: t, next: t.NextVisit(0)}
}

// HasNext reports whether another component remains.
func (it *Iterator) HasNext() bool {
	return it.next != 0
}

// Next returns the next canonical handle. Call only after HasNext reports
// true.
func (it *Iterator) Next() *Component {
	assert.That(it.next != 0, "iterator exhausted")
	c := it.t.handles[it.next]
	it.next = it.t.NextVisit(it.next)
	return c
}

// Reset rewinds to the first component.
func (it *Iterator) Reset() {
	it.next = it.t.NextVisit(0)
}

// FastIterator walks like Iterator but yields one shared handle whose row
// mutates per step, so iteration allocates nothing per element. The handle
// must not be retained across steps; grab the canonical handle from the
// table when a component needs to outlive its step.
type FastIterator struct {
	t      *Table
	next   int
	shared Component
}

// NewFastIterator returns an allocation-free iterator over the table's
// components.
func NewFastIterator(t *Table) *FastIterator {
	it := &FastIterator{t: t, shared: Component{table: t}}
	it.next = t.NextVisit(0)
	return it
}

// HasNext reports whether another component remains.
func (it *FastIterator) HasNext() bool {
	return it.next != 0
}

// Next repoints the shared handle at the next component and returns it.
// Call only after HasNext reports true.
func (it *FastIterator) Next() *Component {
	assert.That(it.next != 0, "iterator exhausted")
	it.shared.row = it.next
	it.next = it.t.NextVisit(it.next)
	return &it.shared
}

// Reset rewinds to the first component and detaches the shared handle.
func (it *FastIterator) Reset() {
	it.next = it.t.NextVisit(0)
	it.shared.row = 0
}

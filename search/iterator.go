// Package search provides the conjunctive iterator over multiple
// component tables: visit every entity that has all required component
// types, binding optional types best-effort along the way.
package search

import (
	"github.com/lattice-works/lattice/storage"
)

// View is one table's binding inside an Iterator. After every successful
// Next the view's row points at the current entity's component in that
// table, 0 for an optional view when the entity has none. Row 0 is the
// sentinel, so reading a column through an unbound optional view yields
// defaults rather than garbage.
type View struct {
	table *storage.Table
	row   int
}

// Table returns the viewed table.
func (v *View) Table() *storage.Table {
	return v.table
}

// Row returns the bound row for the current entity. Meaningful only
// between a Next that returned true and the following Next.
func (v *View) Row() int {
	return v.row
}

// Valid reports whether the view is bound for the current entity. Required
// views are always valid after a successful Next.
func (v *View) Valid() bool {
	return v.row != 0
}

// Component returns the canonical handle behind the binding, nil when
// unbound.
func (v *View) Component() *storage.Component {
	if v.row == 0 {
		return nil
	}
	return v.table.Handle(v.table.EntityAt(v.row))
}

// Iterator visits every entity that has a live, enabled component in each
// required table. The table with the fewest allocated rows at registration
// time drives the scan; the choice is never re-evaluated per step, so
// register all views before iterating. Work is bounded by the driver's
// allocated rows times the number of required views.
type Iterator struct {
	required []*View
	optional []*View
	driver   *View

	row    int
	entity int
	done   bool
}

// NewIterator returns an empty iterator. Register at least one required
// view before calling Next.
func NewIterator() *Iterator {
	return &Iterator{}
}

// Require adds a table the visited entities must have. The returned view
// is bound on every successful Next.
func (it *Iterator) Require(t *storage.Table) *View {
	v := &View{table: t}
	it.required = append(it.required, v)
	if it.driver == nil || t.AllocatedRows() < it.driver.table.AllocatedRows() {
		it.driver = v
	}
	return v
}

// Optional adds a table that is bound when the visited entity has it and
// left at row 0 when it does not. Optional views never affect which
// entities are visited.
func (it *Iterator) Optional(t *storage.Table) *View {
	v := &View{table: t}
	it.optional = append(it.optional, v)
	return v
}

// Driver returns the table driving the scan: the required table with the
// fewest allocated rows when it was registered. Nil before the first
// Require.
func (it *Iterator) Driver() *storage.Table {
	if it.driver == nil {
		return nil
	}
	return it.driver.table
}

// Next advances to the next matching entity and binds every view. Returns
// false when the scan is exhausted or no required view was registered.
func (it *Iterator) Next() bool {
	if it.done || it.driver == nil {
		return false
	}
	d := it.driver.table
	row := it.row
	for {
		row = d.NextVisit(row)
		if row == 0 {
			it.done = true
			it.entity = 0
			return false
		}
		entity := d.EntityAt(row)
		matched := true
		for _, v := range it.required {
			if v == it.driver {
				v.row = row
				continue
			}
			other := v.table.RowOf(entity)
			if !v.table.EnabledAt(other) {
				matched = false
				break
			}
			v.row = other
		}
		if !matched {
			continue
		}
		for _, v := range it.optional {
			other := v.table.RowOf(entity)
			if !v.table.EnabledAt(other) {
				other = 0
			}
			v.row = other
		}
		it.row = row
		it.entity = entity
		return true
	}
}

// EntityIndex returns the entity index of the current match, 0 before the
// first Next and after exhaustion.
func (it *Iterator) EntityIndex() int {
	return it.entity
}

// Entity returns the current entity handle, nil when not positioned.
func (it *Iterator) Entity() *storage.Entity {
	if it.entity == 0 {
		return nil
	}
	return it.driver.table.Registry().EntityAt(it.entity)
}

// Reset rewinds the iterator for another pass. Registered views are kept;
// bindings are cleared.
func (it *Iterator) Reset() {
	it.row = 0
	it.entity = 0
	it.done = false
	for _, v := range it.required {
		v.row = 0
	}
	for _, v := range it.optional {
		v.row = 0
	}
}

// Each resets, then calls fn for every match until fn returns false.
func (it *Iterator) Each(fn func(entityIndex int) bool) {
	it.Reset()
	for it.Next() {
		if !fn(it.entity) {
			return
		}
	}
}

// Count resets, runs the scan to exhaustion and returns the number of
// matches.
func (it *Iterator) Count() int {
	it.Reset()
	n := 0
	for it.Next() {
		n++
	}
	return n
}

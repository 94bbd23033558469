package storage

// ComponentID is a stable per-table component identifier. IDs start at 1,
// grow monotonically and are never reused, so they survive compaction and
// identify a component for as long as it lives.
type ComponentID uint64

// Component is the canonical handle to one component: a table plus a row.
// The row is rewritten by compaction; everything else is immutable. Once
// the component is removed the handle is permanently dead, it never
// revives even if the entity regains a component of the same type.
type Component struct {
	table *Table
	row   int
}

// Table returns the owning table.
func (c *Component) Table() *Table {
	return c.table
}

// Row returns the current row, 0 when the handle is dead. Valid only until
// the next compaction.
func (c *Component) Row() int {
	return c.row
}

// Alive reports whether the handle still points at a live component.
func (c *Component) Alive() bool {
	return c != nil && c.row != 0
}

// EntityIndex returns the index of the owning entity, 0 when dead.
func (c *Component) EntityIndex() int {
	if !c.Alive() {
		return 0
	}
	return c.table.rowToEntity[c.row]
}

// ID returns the stable component id, 0 when dead.
func (c *Component) ID() ComponentID {
	if !c.Alive() {
		return 0
	}
	return c.table.idCol.Get(c.row)
}

// Enabled reports whether iterators visit this component. Dead handles
// report false.
func (c *Component) Enabled() bool {
	if !c.Alive() {
		return false
	}
	return c.table.enabledCol.Get(c.row)
}

// SetEnabled toggles iterator visibility without touching the component
// data. A no-op on dead handles.
func (c *Component) SetEnabled(enabled bool) {
	if !c.Alive() {
		return
	}
	c.table.enabledCol.Set(c.row, enabled)
}

package storage

import (
	"github.com/rotisserie/eris"

	"github.com/lattice-works/lattice/internal/assert"
)

// Column is the abstract view of one packed attribute array. Concrete
// columns are always *TypedColumn[T] instances produced by a ColumnFactory;
// tables drive capacity, swaps and compaction through this interface
// without knowing the element type.
type Column interface {
	// Kind describes the element type, for diagnostics and schema
	// fingerprints.
	Kind() string
	// Capacity returns the number of allocated rows, sentinel included.
	Capacity() int
	// Swap exchanges the values of two rows.
	Swap(a, b int)
	// ValueAt boxes the value at a row. Prefer TypedColumn accessors; this
	// exists for introspection such as state dumps.
	ValueAt(row int) any

	setCapacity(n int)
	writeDefault(row int)
	compactInto(newToOld []int, live int)
}

var _ Column = &TypedColumn[int]{}

// TypedColumn is the packed backing store for one attribute. Rows
// correspond 1:1 with the owning table's component rows; row 0 always
// holds the default value so reads through an absent component are safe.
type TypedColumn[T any] struct {
	kind string
	def  T
	data []T
	// Spare buffer reused by compaction so repeated compactions of a
	// stable working set allocate nothing.
	spare []T
}

// Get returns the value at a row. The caller is responsible for the row
// being inside the column.
func (c *TypedColumn[T]) Get(row int) T {
	assert.That(row >= 0 && row < len(c.data), "column read out of range: row %d cap %d", row, len(c.data))
	return c.data[row]
}

// Set replaces the value at a row.
func (c *TypedColumn[T]) Set(row int, v T) {
	assert.That(row >= 0 && row < len(c.data), "column write out of range: row %d cap %d", row, len(c.data))
	c.data[row] = v
}

// Ref returns a pointer to the value at a row for in-place mutation. The
// pointer is invalidated by any capacity change or compaction.
func (c *TypedColumn[T]) Ref(row int) *T {
	assert.That(row >= 0 && row < len(c.data), "column ref out of range: row %d cap %d", row, len(c.data))
	return &c.data[row]
}

// Kind describes the element type.
func (c *TypedColumn[T]) Kind() string {
	return c.kind
}

// Capacity returns the number of allocated rows.
func (c *TypedColumn[T]) Capacity() int {
	return len(c.data)
}

// Swap exchanges two rows.
func (c *TypedColumn[T]) Swap(a, b int) {
	assert.That(a >= 0 && a < len(c.data) && b >= 0 && b < len(c.data),
		"column swap out of range: rows %d,%d cap %d", a, b, len(c.data))
	c.data[a], c.data[b] = c.data[b], c.data[a]
}

// ValueAt boxes the value at a row.
func (c *TypedColumn[T]) ValueAt(row int) any {
	return c.Get(row)
}

// setCapacity resizes the backing array to exactly n rows, preserving the
// overlapping prefix and default-filling any newly exposed rows.
func (c *TypedColumn[T]) setCapacity(n int) {
	assert.That(n >= 1, "column capacity must cover the sentinel row")
	if n == len(c.data) {
		return
	}
	next := make([]T, n)
	copied := copy(next, c.data)
	for i := copied; i < n; i++ {
		next[i] = c.def
	}
	c.data = next
	c.spare = nil
}

// writeDefault resets a row to the column default.
func (c *TypedColumn[T]) writeDefault(row int) {
	c.Set(row, c.def)
}

// compactInto packs the live rows to the front of the column. newToOld maps
// every post-compaction row 1..live to the row currently holding its value.
// Values are moved in maximal contiguous runs into a cached spare buffer,
// then the buffers trade places; rows past the live range are reset to the
// default so stale values do not outlive their components.
func (c *TypedColumn[T]) compactInto(newToOld []int, live int) {
	assert.That(live < len(c.data), "live rows %d exceed column capacity %d", live, len(c.data))
	if cap(c.spare) < len(c.data) {
		c.spare = make([]T, len(c.data))
	}
	buf := c.spare[:len(c.data)]
	buf[0] = c.def

	next := 1
	for next <= live {
		end := next
		for end+1 <= live && newToOld[end+1] == newToOld[end]+1 {
			end++
		}
		run := end - next + 1
		src := newToOld[next]
		copy(buf[next:next+run], c.data[src:src+run])
		next = end + 1
	}
	for i := live + 1; i < len(buf); i++ {
		buf[i] = c.def
	}
	c.data, c.spare = buf, c.data
}

// As resolves the concrete typed column behind an abstract Column. It fails
// when the element type does not match.
func As[T any](col Column) (*TypedColumn[T], error) {
	typed, ok := col.(*TypedColumn[T])
	if !ok {
		return nil, eris.Wrapf(ErrColumnType, "want %s", col.Kind())
	}
	return typed, nil
}

package storage

import (
	"slices"

	"github.com/kelindar/bitmap"
	"github.com/rotisserie/eris"
	"github.com/rs/zerolog"

	"github.com/lattice-works/lattice/internal/assert"
)

// TypeID identifies a registered component type within one registry.
// Assigned sequentially in registration order.
type TypeID int

// DeclaredColumn names one attribute of a component type and the factory
// that services its column.
type DeclaredColumn struct {
	Name    string
	Factory ColumnFactory
}

// bound pairs a live column with the factory that services it. The
// compaction capability is resolved once here, when the column is bound,
// so compaction never does per-column type inspection.
type bound struct {
	name      string
	col       Column
	fac       ColumnFactory
	onCompact func(col Column, oldToNew []int)
}

// Table stores every component of one type. Component data lives in packed
// parallel columns addressed by row; entityToRow and rowToEntity are
// mutual inverses over the live components. Row 0 is the reserved sentinel
// for "no component". Rows are allocated from a monotonic cursor and only
// reclaimed by compaction, so removal leaves holes.
type Table struct {
	id   TypeID
	name string
	reg  *Registry

	declared  []*bound
	decorated []*bound
	byName    map[string]*bound

	entityToRow []int
	rowToEntity []int
	handles     []*Component
	// occupied tracks live rows for iteration. The live counter is kept
	// separately because counting bitmap bits is linear.
	occupied bitmap.Bitmap
	live     int

	cursor int
	nextID ComponentID

	enabledCol *TypedColumn[bool]
	idCol      *TypedColumn[ComponentID]

	pol Policy
	log zerolog.Logger
}

func newTable(reg *Registry, id TypeID, name string, declared []DeclaredColumn) (*Table, error) {
	t := &Table{
		id:          id,
		name:        name,
		reg:         reg,
		byName:      make(map[string]*bound, len(declared)),
		entityToRow: make([]int, len(reg.entities)),
		rowToEntity: make([]int, reg.pol.InitialCapacity),
		handles:     make([]*Component, reg.pol.InitialCapacity),
		pol:         reg.pol,
		log:         reg.log.With().Str("table", name).Logger(),
	}
	for _, d := range declared {
		if d.Factory == nil {
			return nil, eris.Wrapf(ErrNilFactory, "column %q of table %q", d.Name, name)
		}
		if _, taken := t.byName[d.Name]; taken {
			return nil, eris.Errorf("table %q declares column %q twice", name, d.Name)
		}
		t.byName[d.Name] = t.bind(d.Name, d.Factory, false)
	}

	// Every table carries two built-in decorations: the iterator
	// visibility flag and the stable per-component id.
	enabled := t.bind("", NewFactory[bool](true, CloneNone), true)
	ids := t.bind("", NewFactory[ComponentID](0, CloneNone), true)
	t.enabledCol = enabled.col.(*TypedColumn[bool])
	t.idCol = ids.col.(*TypedColumn[ComponentID])
	return t, nil
}

// bind creates a column at the table's current capacity, seeds rows
// 1..cursor with the factory default, and attaches it to the declared or
// decorated list.
func (t *Table) bind(name string, fac ColumnFactory, decorated bool) *bound {
	col := fac.New()
	col.setCapacity(len(t.rowToEntity))
	for row := 1; row <= t.cursor; row++ {
		fac.SetDefault(col, row)
	}
	b := &bound{name: name, col: col, fac: fac}
	if aware, ok := fac.(CompactionAware); ok {
		b.onCompact = aware.OnCompacted
	}
	if decorated {
		t.decorated = append(t.decorated, b)
	} else {
		t.declared = append(t.declared, b)
	}
	return b
}

// ID returns the table's type id.
func (t *Table) ID() TypeID {
	return t.id
}

// Name returns the component type name.
func (t *Table) Name() string {
	return t.name
}

// Registry returns the owning registry.
func (t *Table) Registry() *Registry {
	return t.reg
}

// Len returns the number of live components.
func (t *Table) Len() int {
	return t.live
}

// AllocatedRows returns the row cursor: the number of rows handed out
// since the last compaction, live or not. It bounds any row scan.
func (t *Table) AllocatedRows() int {
	return t.cursor
}

// RowOf returns the row of the entity's component, 0 when the entity has
// none or the index is out of range.
func (t *Table) RowOf(entityIndex int) int {
	if entityIndex <= 0 || entityIndex >= len(t.entityToRow) {
		return 0
	}
	return t.entityToRow[entityIndex]
}

// EntityAt returns the entity index owning a row, 0 for holes and the
// sentinel.
func (t *Table) EntityAt(row int) int {
	if row <= 0 || row >= len(t.rowToEntity) {
		return 0
	}
	return t.rowToEntity[row]
}

// Handle returns the canonical handle of the entity's component, nil when
// the entity has none.
func (t *Table) Handle(entityIndex int) *Component {
	row := t.RowOf(entityIndex)
	if row == 0 {
		return nil
	}
	return t.handles[row]
}

// ColumnByName resolves a declared column.
func (t *Table) ColumnByName(name string) (Column, error) {
	b, ok := t.byName[name]
	if !ok {
		return nil, eris.Wrapf(ErrUnknownColumn, "%q in table %q", name, t.name)
	}
	return b.col, nil
}

// DeclaredNames returns the declared column names in declaration order.
func (t *Table) DeclaredNames() []string {
	names := make([]string, len(t.declared))
	for i, b := range t.declared {
		names[i] = b.name
	}
	return names
}

// Add attaches a fresh component to the entity, replacing any existing one
// of this type (the replacement is removed first, with its notification).
// Every column starts at its default. Returns the new canonical handle.
func (t *Table) Add(entityIndex int) (*Component, error) {
	return t.add(entityIndex, nil)
}

// AddFromTemplate attaches a component whose declared columns are cloned
// from the template per each factory's clone policy. The template must be
// a live component of this same table; it is validated before anything is
// mutated. Decorated columns keep their defaults, so the new component
// gets a fresh id and starts enabled.
func (t *Table) AddFromTemplate(entityIndex int, template *Component) (*Component, error) {
	if template == nil {
		return nil, eris.Wrapf(ErrNilTemplate, "table %q", t.name)
	}
	if template.table != t {
		return nil, eris.Wrapf(ErrForeignTable, "template from table %q, target table %q",
			template.table.name, t.name)
	}
	if !template.Alive() {
		return nil, eris.Wrapf(ErrNotLive, "template component of table %q", t.name)
	}
	return t.add(entityIndex, template)
}

func (t *Table) add(entityIndex int, template *Component) (*Component, error) {
	if err := t.reg.checkLiveIndex(entityIndex); err != nil {
		return nil, eris.Wrapf(err, "add %q", t.name)
	}
	// The template row is captured before the replace-removal below so a
	// component can serve as the template for its own replacement.
	templateRow := 0
	if template != nil {
		templateRow = template.row
	}
	if t.entityToRow[entityIndex] != 0 {
		t.Remove(entityIndex)
	}

	t.cursor++
	row := t.cursor
	if row >= len(t.rowToEntity) {
		t.growRows(t.pol.grow(row + 1))
	}
	for _, b := range t.declared {
		b.fac.SetDefault(b.col, row)
	}
	for _, b := range t.decorated {
		b.fac.SetDefault(b.col, row)
	}
	if template != nil {
		for _, b := range t.declared {
			b.fac.Clone(b.col, templateRow, b.col, row)
		}
	}
	t.nextID++
	t.idCol.Set(row, t.nextID)

	t.entityToRow[entityIndex] = row
	t.rowToEntity[row] = entityIndex
	t.occupied.Set(uint32(row))
	t.live++
	c := &Component{table: t, row: row}
	t.handles[row] = c

	t.reg.notifyComponentAdded(c)
	return c, nil
}

// Remove detaches the entity's component. Absence is not an error: the
// sentinel lookup simply reports false and nothing changes. The remove
// notification fires while the component is still fully queryable; only
// then are the maps cleared and the handle marked dead.
func (t *Table) Remove(entityIndex int) bool {
	if entityIndex <= 0 || entityIndex >= len(t.entityToRow) {
		return false
	}
	row := t.entityToRow[entityIndex]
	if row == 0 {
		return false
	}
	c := t.handles[row]
	assert.That(c != nil && c.row == row, "canonical handle out of sync at row %d", row)

	t.reg.notifyComponentRemoved(c)

	t.entityToRow[entityIndex] = 0
	t.rowToEntity[row] = 0
	t.occupied.Remove(uint32(row))
	t.handles[row] = nil
	c.row = 0
	t.live--
	return true
}

// Decorate attaches a runtime column serviced by the factory. The column
// is sized to the table's current capacity and every existing row is
// seeded with the factory default. Decorated columns grow, shrink and
// compact exactly like declared ones.
func (t *Table) Decorate(fac ColumnFactory) (Column, error) {
	if fac == nil {
		return nil, eris.Wrapf(ErrNilFactory, "decorate table %q", t.name)
	}
	b := t.bind("", fac, true)
	t.log.Debug().Str("kind", fac.Kind()).Int("decorated", len(t.decorated)).Msg("column decorated")
	return b.col, nil
}

// Undecorate detaches a decorated column by identity. The decoration list
// is compacted by swapping in its last element, so other decorated columns
// keep working but their notification order may change. Unknown columns,
// including declared ones, are a no-op returning false.
func (t *Table) Undecorate(col Column) bool {
	for i, b := range t.decorated {
		if b.col != col {
			continue
		}
		last := len(t.decorated) - 1
		t.decorated[i] = t.decorated[last]
		t.decorated[last] = nil
		t.decorated = t.decorated[:last]
		t.log.Debug().Str("kind", col.Kind()).Int("decorated", len(t.decorated)).Msg("column undecorated")
		return true
	}
	return false
}

// growRows resizes every row-indexed structure to n.
func (t *Table) growRows(n int) {
	for _, b := range t.declared {
		b.col.setCapacity(n)
	}
	for _, b := range t.decorated {
		b.col.setCapacity(n)
	}
	rows := make([]int, n)
	copy(rows, t.rowToEntity)
	t.rowToEntity = rows
	hs := make([]*Component, n)
	copy(hs, t.handles)
	t.handles = hs
	t.occupied.Grow(uint32(n - 1))
}

// ensureEntityCapacity widens the entity-index half of the map. Called by
// the registry whenever its entity array grows.
func (t *Table) ensureEntityCapacity(n int) {
	if n <= len(t.entityToRow) {
		return
	}
	rows := make([]int, n)
	copy(rows, t.entityToRow)
	t.entityToRow = rows
}

// compact packs live components to the front of the row space in entity
// order. oldToNew maps pre-compaction entity indices to post-compaction
// ones; entityCap is the registry's entity capacity after its own
// compaction. Returns the number of components that changed row.
//
// The steps: stable-sort the canonical handles by owning entity, dead
// slots last; bulk-copy every column in contiguous runs; rebuild
// rowToEntity and rewrite handle rows; shrink when occupancy is low;
// rebuild entityToRow; finally tell compaction-aware factories how rows
// moved, declared columns before decorated ones.
func (t *Table) compact(oldToNew []int, entityCap int) int {
	live := t.live
	oldCursor := t.cursor

	hs := t.handles[1 : oldCursor+1]
	slices.SortStableFunc(hs, func(a, b *Component) int {
		switch {
		case a == nil && b == nil:
			return 0
		case a == nil:
			return 1
		case b == nil:
			return -1
		default:
			return t.rowToEntity[a.row] - t.rowToEntity[b.row]
		}
	})

	// newToOld[newRow] is the row whose value moves to newRow.
	newToOld := make([]int, live+1)
	for newRow := 1; newRow <= live; newRow++ {
		h := t.handles[newRow]
		assert.That(h != nil, "live count %d exceeds surviving handles at row %d", live, newRow)
		newToOld[newRow] = h.row
	}

	for _, b := range t.declared {
		b.col.compactInto(newToOld, live)
	}
	for _, b := range t.decorated {
		b.col.compactInto(newToOld, live)
	}

	// Owning entities, read before rowToEntity is overwritten.
	owners := make([]int, live+1)
	for newRow := 1; newRow <= live; newRow++ {
		owners[newRow] = t.rowToEntity[newToOld[newRow]]
	}

	moved := 0
	for newRow := 1; newRow <= live; newRow++ {
		owner := oldToNew[owners[newRow]]
		assert.That(owner != 0, "live component at old row %d owned by dead entity", newToOld[newRow])
		t.rowToEntity[newRow] = owner
		h := t.handles[newRow]
		if h.row != newRow {
			moved++
		}
		h.row = newRow
	}
	for row := live + 1; row <= oldCursor; row++ {
		t.rowToEntity[row] = 0
		t.handles[row] = nil
	}
	t.cursor = live

	rowCap := len(t.rowToEntity)
	if t.pol.shouldShrink(live, rowCap) {
		if target := t.pol.shrinkTarget(live); target < rowCap {
			t.shrinkRows(target)
		}
	}

	t.occupied.Clear()
	for row := 1; row <= live; row++ {
		t.occupied.Set(uint32(row))
	}

	if len(t.entityToRow) != entityCap {
		t.entityToRow = make([]int, entityCap)
	} else {
		for i := range t.entityToRow {
			t.entityToRow[i] = 0
		}
	}
	for row := 1; row <= live; row++ {
		t.entityToRow[t.rowToEntity[row]] = row
	}

	t.notifyCompacted(oldCursor, newToOld, live)
	return moved
}

func (t *Table) shrinkRows(n int) {
	for _, b := range t.declared {
		b.col.setCapacity(n)
	}
	for _, b := range t.decorated {
		b.col.setCapacity(n)
	}
	rows := make([]int, n)
	copy(rows, t.rowToEntity)
	t.rowToEntity = rows
	hs := make([]*Component, n)
	copy(hs, t.handles)
	t.handles = hs
}

func (t *Table) notifyCompacted(oldCursor int, newToOld []int, live int) {
	aware := false
	for _, b := range t.declared {
		if b.onCompact != nil {
			aware = true
			break
		}
	}
	if !aware {
		for _, b := range t.decorated {
			if b.onCompact != nil {
				aware = true
				break
			}
		}
	}
	if !aware {
		return
	}
	oldToNewRows := make([]int, oldCursor+1)
	for newRow := 1; newRow <= live; newRow++ {
		oldToNewRows[newToOld[newRow]] = newRow
	}
	for _, b := range t.declared {
		if b.onCompact != nil {
			b.onCompact(b.col, oldToNewRows)
		}
	}
	for _, b := range t.decorated {
		if b.onCompact != nil {
			b.onCompact(b.col, oldToNewRows)
		}
	}
}

// visits reports whether iterators should visit a row: occupied and
// enabled.
func (t *Table) visits(row int) bool {
	return t.occupied.Contains(uint32(row)) && t.enabledCol.Get(row)
}

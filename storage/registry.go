package storage

import (
	"time"

	"github.com/kamstrup/intmap"
	"github.com/rotisserie/eris"
	"github.com/rs/zerolog"

	"github.com/lattice-works/lattice/internal/assert"
)

// Registry owns the entities and the per-type tables built on them.
// Entity indices are allocated from a monotonic cursor, freed slots stay
// as holes until Compact renumbers the survivors. Entity ids are never
// reused.
//
// A registry and everything it owns is single-threaded; callers serialize
// all mutation.
type Registry struct {
	pol Policy
	log zerolog.Logger

	// entities[0] is never used; index 0 is the dead sentinel.
	entities []*Entity
	cursor   int
	live     int
	nextID   EntityID

	byID *intmap.Map[EntityID, *Entity]

	tables      []*Table
	tableByName map[string]*Table

	observers []Observer
}

// CompactStats summarizes one compaction pass.
type CompactStats struct {
	LiveEntities  int
	MovedEntities int
	MovedRows     int
	Elapsed       time.Duration
}

// NewRegistry creates an empty registry with the given tuning. Zeroed
// policy fields fall back to the defaults.
func NewRegistry(pol Policy, log zerolog.Logger) *Registry {
	pol = pol.normalize()
	return &Registry{
		pol:         pol,
		log:         log,
		entities:    make([]*Entity, pol.InitialCapacity),
		byID:        intmap.New[EntityID, *Entity](pol.InitialCapacity),
		tableByName: make(map[string]*Table),
	}
}

// NewTable registers a component type under a unique name with its
// declared columns. Tables participate in template copies and compaction
// in registration order.
func (r *Registry) NewTable(name string, declared []DeclaredColumn) (*Table, error) {
	if _, taken := r.tableByName[name]; taken {
		return nil, eris.Wrapf(ErrDuplicateTable, "%q", name)
	}
	t, err := newTable(r, TypeID(len(r.tables)), name, declared)
	if err != nil {
		return nil, err
	}
	r.tables = append(r.tables, t)
	r.tableByName[name] = t
	r.log.Debug().Str("table", name).Int("columns", len(declared)).Msg("table registered")
	return t, nil
}

// Table resolves a registered table by name.
func (r *Registry) Table(name string) (*Table, bool) {
	t, ok := r.tableByName[name]
	return t, ok
}

// Tables returns the registered tables in registration order. The slice is
// shared; callers must not mutate it.
func (r *Registry) Tables() []*Table {
	return r.tables
}

// Len returns the number of live entities.
func (r *Registry) Len() int {
	return r.live
}

// Cursor returns the highest allocated entity index. It bounds any index
// scan.
func (r *Registry) Cursor() int {
	return r.cursor
}

// EntityAt returns the live entity at an index, nil for holes, the
// sentinel and out-of-range indices.
func (r *Registry) EntityAt(index int) *Entity {
	if index <= 0 || index > r.cursor {
		return nil
	}
	return r.entities[index]
}

// EntityByID resolves a live entity by its stable id.
func (r *Registry) EntityByID(id EntityID) (*Entity, bool) {
	return r.byID.Get(id)
}

// EachEntity calls fn for every live entity in index order until fn
// returns false.
func (r *Registry) EachEntity(fn func(*Entity) bool) {
	for i := 1; i <= r.cursor; i++ {
		if e := r.entities[i]; e != nil {
			if !fn(e) {
				return
			}
		}
	}
}

// ComponentsOf returns the entity's live components in table registration
// order. Nil for dead or foreign entities.
func (r *Registry) ComponentsOf(e *Entity) []*Component {
	if e == nil || e.reg != r || !e.Alive() {
		return nil
	}
	var comps []*Component
	for _, t := range r.tables {
		if h := t.Handle(e.index); h != nil {
			comps = append(comps, h)
		}
	}
	return comps
}

// AddObserver attaches a lifecycle observer. Observers are notified in
// attachment order.
func (r *Registry) AddObserver(o Observer) {
	r.observers = append(r.observers, o)
}

// RemoveObserver detaches an observer by identity, preserving the order of
// the rest. Returns false when the observer was never attached.
func (r *Registry) RemoveObserver(o Observer) bool {
	for i, attached := range r.observers {
		if attached == o {
			r.observers = append(r.observers[:i], r.observers[i+1:]...)
			return true
		}
	}
	return false
}

// AddEntity creates a fresh entity with no components.
func (r *Registry) AddEntity() *Entity {
	e, err := r.addEntity(nil)
	assert.That(err == nil, "untemplated add cannot fail: %v", err)
	return e
}

// AddEntityFromTemplate creates an entity and copies every component the
// template entity has, honoring each column's clone policy. The template
// must be a live entity of this registry; it is validated before anything
// is mutated. The entity-added notification fires before the per-component
// ones.
func (r *Registry) AddEntityFromTemplate(template *Entity) (*Entity, error) {
	if template == nil {
		return nil, eris.Wrap(ErrNilTemplate, "add entity")
	}
	if template.reg != r {
		return nil, eris.Wrapf(ErrForeignRegistry, "template entity id %d", template.id)
	}
	if !template.Alive() {
		return nil, eris.Wrapf(ErrNotLive, "template entity id %d", template.id)
	}
	return r.addEntity(template)
}

func (r *Registry) addEntity(template *Entity) (*Entity, error) {
	r.cursor++
	index := r.cursor
	if index >= len(r.entities) {
		r.growEntities(r.pol.grow(index + 1))
	}
	r.nextID++
	e := &Entity{reg: r, index: index, id: r.nextID}
	r.entities[index] = e
	r.byID.Put(e.id, e)
	r.live++

	r.notifyEntityAdded(e)

	if template != nil {
		for _, t := range r.tables {
			h := t.Handle(template.index)
			if h == nil {
				continue
			}
			_, err := t.AddFromTemplate(index, h)
			assert.That(err == nil, "template component copy cannot fail: %v", err)
		}
	}
	r.log.Debug().Uint64("entity_id", uint64(e.id)).Int("index", index).Msg("entity added")
	return e, nil
}

// RemoveEntity removes a live entity: every component is removed first,
// each with its own notification, then entity-removed fires while the
// index is still valid, and finally the slot is cleared. The slot stays a
// hole until the next compaction.
func (r *Registry) RemoveEntity(e *Entity) error {
	if e == nil {
		return eris.Wrap(ErrNotLive, "remove entity: nil")
	}
	if e.reg != r {
		return eris.Wrapf(ErrForeignRegistry, "entity id %d", e.id)
	}
	if !e.Alive() {
		return eris.Wrapf(ErrNotLive, "entity id %d", e.id)
	}
	assert.That(r.entities[e.index] == e, "entity slot %d out of sync", e.index)

	for _, t := range r.tables {
		t.Remove(e.index)
	}
	r.notifyEntityRemoved(e)

	r.entities[e.index] = nil
	r.byID.Del(e.id)
	r.log.Debug().Uint64("entity_id", uint64(e.id)).Int("index", e.index).Msg("entity removed")
	e.index = 0
	r.live--
	return nil
}

// Compact renumbers the live entities into a dense prefix, preserving
// their relative order, then compacts every table. This is the only
// operation that changes entity indices. Outstanding Entity and Component
// handles stay valid throughout; only their indices and rows move.
func (r *Registry) Compact() CompactStats {
	start := time.Now()

	oldToNew := make([]int, r.cursor+1)
	write := 1
	movedEntities := 0
	for read := 1; read <= r.cursor; read++ {
		e := r.entities[read]
		if e == nil {
			continue
		}
		if write != read {
			r.entities[write] = e
			r.entities[read] = nil
			e.index = write
			movedEntities++
		}
		oldToNew[read] = write
		write++
	}
	live := write - 1
	assert.That(live == r.live, "live sweep found %d entities, counter says %d", live, r.live)
	r.cursor = live

	if r.pol.shouldShrink(live, len(r.entities)) {
		if target := r.pol.shrinkTarget(live); target < len(r.entities) {
			next := make([]*Entity, target)
			copy(next, r.entities)
			r.entities = next
		}
	}
	entityCap := len(r.entities)

	movedRows := 0
	for _, t := range r.tables {
		movedRows += t.compact(oldToNew, entityCap)
	}

	stats := CompactStats{
		LiveEntities:  live,
		MovedEntities: movedEntities,
		MovedRows:     movedRows,
		Elapsed:       time.Since(start),
	}
	r.log.Debug().
		Int("live", stats.LiveEntities).
		Int("moved_entities", stats.MovedEntities).
		Int("moved_rows", stats.MovedRows).
		Dur("elapsed", stats.Elapsed).
		Msg("registry compacted")
	return stats
}

// checkLiveIndex validates an entity index before a table mutation.
func (r *Registry) checkLiveIndex(index int) error {
	if index <= 0 || index > r.cursor || r.entities[index] == nil {
		return eris.Wrapf(ErrNotLive, "entity index %d", index)
	}
	return nil
}

func (r *Registry) growEntities(n int) {
	next := make([]*Entity, n)
	copy(next, r.entities)
	r.entities = next
	for _, t := range r.tables {
		t.ensureEntityCapacity(n)
	}
}

func (r *Registry) notifyEntityAdded(e *Entity) {
	for _, o := range r.observers {
		o.EntityAdded(e)
	}
}

func (r *Registry) notifyEntityRemoved(e *Entity) {
	for _, o := range r.observers {
		o.EntityRemoved(e)
	}
}

func (r *Registry) notifyComponentAdded(c *Component) {
	for _, o := range r.observers {
		o.ComponentAdded(c)
	}
}

func (r *Registry) notifyComponentRemoved(c *Component) {
	for _, o := range r.observers {
		o.ComponentRemoved(c)
	}
}

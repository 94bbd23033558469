package storage

// EntityID is a stable entity identifier. IDs start at 1, grow
// monotonically within a registry and are never reused.
type EntityID uint64

// Entity is the handle to one logical entity. The index locates the entity
// inside its registry and is rewritten by compaction; the id is assigned at
// creation and is the basis for equality. Index 0 means the entity is no
// longer live.
type Entity struct {
	reg   *Registry
	index int
	id    EntityID
}

// ID returns the stable entity id.
func (e *Entity) ID() EntityID {
	return e.id
}

// Index returns the current entity index, 0 when dead. Valid only until
// the next compaction.
func (e *Entity) Index() int {
	return e.index
}

// Alive reports whether the entity is still live in its registry.
func (e *Entity) Alive() bool {
	return e != nil && e.index != 0
}

// Same reports whether two handles name the same entity, by id.
func (e *Entity) Same(o *Entity) bool {
	return e != nil && o != nil && e.id == o.id
}

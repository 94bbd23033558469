package lattice

import (
	"github.com/lattice-works/lattice/codec"
	"github.com/lattice-works/lattice/storage"
)

// StateEntity is one entity in a state dump: its identity plus the value
// of every declared column of every component it carries, keyed by table
// name then column name.
type StateEntity struct {
	ID         storage.EntityID          `json:"id"`
	Index      int                       `json:"index"`
	Components map[string]map[string]any `json:"components"`
}

// DumpState renders every live entity and its component data as indented
// JSON, in entity index order. This is an introspection surface for tests
// and debugging, not a persistence format; decorated columns are omitted
// because they are not part of the declared schema.
func (w *World) DumpState() ([]byte, error) {
	state := make([]StateEntity, 0, w.reg.Len())
	w.reg.EachEntity(func(e *storage.Entity) bool {
		se := StateEntity{
			ID:         e.ID(),
			Index:      e.Index(),
			Components: make(map[string]map[string]any),
		}
		for _, c := range w.reg.ComponentsOf(e) {
			t := c.Table()
			values := make(map[string]any)
			for _, name := range t.DeclaredNames() {
				col, err := t.ColumnByName(name)
				if err != nil {
					continue
				}
				values[name] = col.ValueAt(c.Row())
			}
			se.Components[t.Name()] = values
		}
		state = append(state, se)
		return true
	})
	return codec.EncodeIndent(state)
}

// ReadState parses a DumpState payload back into entities, for tools
// that inspect dumps without holding the world that produced them.
func ReadState(bz []byte) ([]StateEntity, error) {
	return codec.Decode[[]StateEntity](bz)
}

package storage

// Observer receives lifecycle notifications from a registry and its
// tables. Ordering contract:
//
//   - entity-added fires before any component-added of that entity's
//     templated components
//   - component-added fires after the component is fully initialized,
//     including any template clone
//   - component-removed fires while the component is still queryable
//   - entity-removed fires after the entity's component removals, while
//     the entity index is still valid
//
// Observers run on the mutating goroutine. State shared between observers
// belongs in a sidetable.Table, not in the store.
type Observer interface {
	EntityAdded(e *Entity)
	EntityRemoved(e *Entity)
	ComponentAdded(c *Component)
	ComponentRemoved(c *Component)
}

// NoopObserver implements Observer with empty methods, for embedding when
// only some notifications matter.
type NoopObserver struct{}

var _ Observer = NoopObserver{}

func (NoopObserver) EntityAdded(*Entity)         {}
func (NoopObserver) EntityRemoved(*Entity)       {}
func (NoopObserver) ComponentAdded(*Component)   {}
func (NoopObserver) ComponentRemoved(*Component) {}

package lattice_test

import (
	"testing"

	"github.com/rs/zerolog"

	"github.com/lattice-works/lattice"
	"github.com/lattice-works/lattice/assert"
	"github.com/lattice-works/lattice/schema"
	"github.com/lattice-works/lattice/storage"
	"github.com/lattice-works/lattice/system"
)

type position struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

func positionDescriptor() schema.Descriptor {
	return schema.Descriptor{
		Name: "position",
		Attributes: []schema.Attribute{
			{Name: "x", Factory: storage.NewFactory[float64](0, storage.CloneCopy)},
			{Name: "y", Factory: storage.NewFactory[float64](0, storage.CloneCopy)},
		},
		Template: position{},
	}
}

func newTestWorld(t *testing.T) *lattice.World {
	t.Helper()
	w, err := lattice.NewWorld(lattice.WithLogger(zerolog.Nop()))
	assert.NilError(t, err)
	return w
}

func TestNewWorld(t *testing.T) {
	a := newTestWorld(t)
	b := newTestWorld(t)
	assert.NotEqual(t, a.InstanceID(), b.InstanceID())
	assert.Equal(t, a.Registry().Len(), 0)
}

func TestNewWorldRejectsBadEnvironment(t *testing.T) {
	t.Setenv("LATTICE_LOG_LEVEL", "shouting")
	_, err := lattice.NewWorld()
	assert.IsError(t, err)
}

func TestRegisterTypeIdempotentWhenCompatible(t *testing.T) {
	w := newTestWorld(t)

	first, err := w.RegisterType(positionDescriptor())
	assert.NilError(t, err)
	again, err := w.RegisterType(positionDescriptor())
	assert.NilError(t, err)
	assert.Same(t, first, again)
}

func TestRegisterTypeRejectsSchemaDrift(t *testing.T) {
	w := newTestWorld(t)
	_, err := w.RegisterType(positionDescriptor())
	assert.NilError(t, err)

	drifted := positionDescriptor()
	drifted.Attributes = drifted.Attributes[:1]
	_, err = w.RegisterType(drifted)
	assert.ErrorIs(t, err, lattice.ErrSchemaMismatch)
}

func TestRegisterTypeValidates(t *testing.T) {
	w := newTestWorld(t)
	_, err := w.RegisterType(schema.Descriptor{})
	assert.ErrorContains(t, err, "name is empty")
}

func TestWorldEntityFlow(t *testing.T) {
	w := newTestWorld(t)
	tbl, err := w.RegisterType(positionDescriptor())
	assert.NilError(t, err)
	col, err := tbl.ColumnByName("x")
	assert.NilError(t, err)
	xs, err := storage.As[float64](col)
	assert.NilError(t, err)

	a := w.AddEntity()
	c, err := tbl.Add(a.Index())
	assert.NilError(t, err)
	xs.Set(c.Row(), 5)

	b, err := w.AddEntityFromTemplate(a)
	assert.NilError(t, err)
	assert.Equal(t, xs.Get(tbl.RowOf(b.Index())), 5.0)

	assert.NilError(t, w.RemoveEntity(a))
	stats := w.Compact()
	assert.Equal(t, stats.LiveEntities, 1)
	assert.Equal(t, tbl.Len(), 1)
}

func TestWithPolicyOverridesEnvironment(t *testing.T) {
	t.Setenv("LATTICE_INITIAL_CAPACITY", "64")
	w, err := lattice.NewWorld(
		lattice.WithLogger(zerolog.Nop()),
		lattice.WithPolicy(storage.Policy{InitialCapacity: 4}),
	)
	assert.NilError(t, err)
	tbl, err := w.RegisterType(positionDescriptor())
	assert.NilError(t, err)
	col, err := tbl.ColumnByName("x")
	assert.NilError(t, err)
	assert.Equal(t, col.Capacity(), 4)
}

func TestWithObserver(t *testing.T) {
	added := 0
	obs := &countingObserver{onEntityAdded: func() { added++ }}
	w, err := lattice.NewWorld(lattice.WithLogger(zerolog.Nop()), lattice.WithObserver(obs))
	assert.NilError(t, err)

	w.AddEntity()
	w.AddEntity()
	assert.Equal(t, added, 2)
}

type countingObserver struct {
	storage.NoopObserver
	onEntityAdded func()
}

func (o *countingObserver) EntityAdded(*storage.Entity) {
	o.onEntityAdded()
}

func TestWorldRunsPhases(t *testing.T) {
	w := newTestWorld(t)
	tbl, err := w.RegisterType(positionDescriptor())
	assert.NilError(t, err)

	assert.NilError(t, w.Systems().Register(system.PhaseUpdate, func(ctx *system.Context) error {
		e := ctx.Registry().AddEntity()
		stats, ok := ctx.Registry().Table("position")
		if !ok {
			return nil
		}
		_, err := stats.Add(e.Index())
		return err
	}))

	assert.NilError(t, w.RunInit())
	assert.NilError(t, w.RunPhase(system.PhaseUpdate))
	assert.NilError(t, w.RunPhase(system.PhaseUpdate))
	assert.Equal(t, w.Registry().Len(), 2)
	assert.Equal(t, tbl.Len(), 2)
}

func TestDumpState(t *testing.T) {
	w := newTestWorld(t)
	tbl, err := w.RegisterType(positionDescriptor())
	assert.NilError(t, err)

	e := w.AddEntity()
	c, err := tbl.Add(e.Index())
	assert.NilError(t, err)
	col, err := tbl.ColumnByName("x")
	assert.NilError(t, err)
	xs, err := storage.As[float64](col)
	assert.NilError(t, err)
	xs.Set(c.Row(), 7.5)
	w.AddEntity()

	bz, err := w.DumpState()
	assert.NilError(t, err)

	state, err := lattice.ReadState(bz)
	assert.NilError(t, err)
	assert.Len(t, state, 2)
	assert.Equal(t, state[0].ID, e.ID())
	values := state[0].Components["position"]
	assert.Equal(t, values["x"], 7.5)
	assert.Equal(t, values["y"], 0.0)
	assert.Len(t, state[1].Components, 0)
}

package lattice

import (
	"os"

	"github.com/google/uuid"
	"github.com/rotisserie/eris"
	"github.com/rs/zerolog"

	"github.com/lattice-works/lattice/log"
	"github.com/lattice-works/lattice/schema"
	"github.com/lattice-works/lattice/sidetable"
	"github.com/lattice-works/lattice/statsd"
	"github.com/lattice-works/lattice/storage"
	"github.com/lattice-works/lattice/system"
)

// World is the user-facing facade over one storage registry: component
// type registration with schema checking, entity lifecycle, compaction
// with metrics, logging and the shared sidetable.
//
// A World is single-threaded like the registry it owns; only the sidetable
// tolerates concurrent use.
type World struct {
	instanceID string
	cfg        worldConfig
	logger     zerolog.Logger
	reg        *storage.Registry
	shared     *sidetable.Table
	systems    *system.Manager

	// Schema fingerprints by type name, for re-registration checks.
	fingerprints map[string][]byte

	// Construction-time state consumed by options.
	baseLogger zerolog.Logger
	pol        *storage.Policy
	observers  []storage.Observer
}

// NewWorld creates a world configured from the environment, then from the
// options, which win.
func NewWorld(opts ...WorldOption) (*World, error) {
	cfg, err := loadWorldConfig()
	if err != nil {
		return nil, eris.Wrap(err, "failed to create world")
	}

	w := &World{
		instanceID:   uuid.New().String(),
		cfg:          cfg,
		shared:       sidetable.New(),
		systems:      system.NewManager(),
		fingerprints: make(map[string][]byte),
		baseLogger:   zerolog.New(os.Stdout).With().Timestamp().Logger(),
	}
	for _, opt := range opts {
		opt(w)
	}

	level, err := zerolog.ParseLevel(cfg.LogLevel)
	if err != nil {
		return nil, eris.Wrap(err, "failed to create world")
	}
	logger := w.baseLogger.Level(level).With().Str("instance_id", w.instanceID).Logger()
	if cfg.TraceID != "" {
		logger = *log.CreateTraceLogger(&logger, cfg.TraceID)
	}
	w.logger = logger

	pol := cfg.policy()
	if w.pol != nil {
		pol = *w.pol
	}
	w.reg = storage.NewRegistry(pol, w.logger)
	for _, o := range w.observers {
		w.reg.AddObserver(o)
	}

	if cfg.StatsdAddress != "" {
		if err := statsd.Init(cfg.StatsdAddress, []string{"instance:" + w.instanceID}); err != nil {
			return nil, eris.Wrap(err, "failed to init statsd")
		}
	}

	w.logger.Info().Msg("world created")
	return w, nil
}

// InstanceID returns the unique id of this world instance, the same one
// stamped on its log lines.
func (w *World) InstanceID() string {
	return w.instanceID
}

// Logger returns the world's logger.
func (w *World) Logger() *zerolog.Logger {
	return &w.logger
}

// Registry exposes the underlying storage registry.
func (w *World) Registry() *storage.Registry {
	return w.reg
}

// Shared returns the concurrent sidetable observers and systems exchange
// data through.
func (w *World) Shared() *sidetable.Table {
	return w.shared
}

// Systems returns the system manager for phase registration.
func (w *World) Systems() *system.Manager {
	return w.systems
}

// RunInit runs the registered init system once.
func (w *World) RunInit() error {
	return w.systems.RunInit(system.NewContext(w.reg, w.shared, &w.logger))
}

// RunPhase dispatches every system registered in the phase.
func (w *World) RunPhase(phase system.Phase) error {
	return w.systems.Run(phase, system.NewContext(w.reg, w.shared, &w.logger))
}

// RegisterType registers a component type and returns its table.
// Registering the same name again with a compatible schema is a no-op that
// returns the existing table; an incompatible redefinition fails fast.
func (w *World) RegisterType(desc schema.Descriptor) (*storage.Table, error) {
	if err := desc.Validate(); err != nil {
		return nil, eris.Wrap(err, "failed to register type")
	}
	fp, err := schema.Fingerprint(desc)
	if err != nil {
		return nil, eris.Wrap(err, "failed to register type")
	}

	if existing, ok := w.reg.Table(desc.Name); ok {
		same, err := schema.Compatible(w.fingerprints[desc.Name], fp)
		if err != nil {
			return nil, eris.Wrapf(err, "failed to register type %q", desc.Name)
		}
		if !same {
			return nil, eris.Wrapf(ErrSchemaMismatch, "%q", desc.Name)
		}
		return existing, nil
	}

	t, err := w.reg.NewTable(desc.Name, desc.Columns())
	if err != nil {
		return nil, eris.Wrap(err, "failed to register type")
	}
	w.fingerprints[desc.Name] = fp
	return t, nil
}

// AddEntity creates a fresh entity.
func (w *World) AddEntity() *storage.Entity {
	return w.reg.AddEntity()
}

// AddEntityFromTemplate creates an entity cloned from the template's
// components.
func (w *World) AddEntityFromTemplate(template *storage.Entity) (*storage.Entity, error) {
	return w.reg.AddEntityFromTemplate(template)
}

// RemoveEntity removes a live entity and all its components.
func (w *World) RemoveEntity(e *storage.Entity) error {
	return w.reg.RemoveEntity(e)
}

// AddObserver attaches a lifecycle observer.
func (w *World) AddObserver(o storage.Observer) {
	w.reg.AddObserver(o)
}

// RemoveObserver detaches a lifecycle observer.
func (w *World) RemoveObserver(o storage.Observer) bool {
	return w.reg.RemoveObserver(o)
}

// Compact defragments the registry and every table, emitting timing and
// movement metrics. Call it between units of work, never concurrently
// with other mutation.
func (w *World) Compact() storage.CompactStats {
	stats := w.reg.Compact()
	statsd.EmitCompactionStat(stats.Elapsed, stats.MovedEntities, stats.MovedRows)
	statsd.EmitGauge("entities.live", float64(stats.LiveEntities), nil)
	return stats
}

// LogState logs the registry summary at info level.
func (w *World) LogState() {
	log.Registry(&w.logger, w.reg, zerolog.InfoLevel)
}

package lattice

import (
	"github.com/caarlos0/env/v11"
	"github.com/rotisserie/eris"
	"github.com/rs/zerolog"

	"github.com/lattice-works/lattice/storage"
)

// worldConfig holds the configuration for a World instance. Configuration
// can be set via environment variables with the specified defaults.
type worldConfig struct {
	// Starting capacity of the entity array and of every table's rows,
	// sentinel slot included.
	InitialCapacity int `env:"LATTICE_INITIAL_CAPACITY" envDefault:"16"`

	// Capacity multiplier applied when an array runs out of room.
	GrowthFactor float64 `env:"LATTICE_GROWTH_FACTOR" envDefault:"1.5"`

	// Occupancy fraction below which compaction shrinks backing arrays.
	ShrinkThreshold float64 `env:"LATTICE_SHRINK_THRESHOLD" envDefault:"0.6"`

	// Multiplier over the live count for the post-shrink capacity.
	ShrinkHeadroom float64 `env:"LATTICE_SHRINK_HEADROOM" envDefault:"1.2"`

	// Log level: trace, debug, info, warn, error, fatal, panic, disabled.
	LogLevel string `env:"LATTICE_LOG_LEVEL" envDefault:"info"`

	// Optional statsd agent address, e.g. localhost:8125. Metrics are
	// no-ops when unset.
	StatsdAddress string `env:"LATTICE_STATSD_ADDRESS"`

	// Optional id stamped on every log line, for following one instance
	// through shared output.
	TraceID string `env:"LATTICE_TRACE_ID"`
}

// loadWorldConfig loads the world configuration from environment variables.
func loadWorldConfig() (worldConfig, error) {
	cfg := worldConfig{}

	if err := env.Parse(&cfg); err != nil {
		return cfg, eris.Wrap(err, "failed to parse world config")
	}

	if err := cfg.validate(); err != nil {
		return cfg, eris.Wrap(err, "failed to validate config")
	}

	return cfg, nil
}

// validate performs validation on the loaded configuration.
func (cfg *worldConfig) validate() error {
	if cfg.InitialCapacity < 2 {
		return eris.New("initial capacity must cover the sentinel slot and at least one entity")
	}
	if cfg.GrowthFactor <= 1 {
		return eris.New("growth factor must be greater than 1")
	}
	if cfg.ShrinkThreshold <= 0 || cfg.ShrinkThreshold >= 1 {
		return eris.New("shrink threshold must be between 0 and 1")
	}
	if cfg.ShrinkHeadroom < 1 {
		return eris.New("shrink headroom must be at least 1")
	}
	if _, err := zerolog.ParseLevel(cfg.LogLevel); err != nil {
		return eris.Wrapf(err, "invalid log level %q", cfg.LogLevel)
	}
	return nil
}

// policy converts the tunables into the storage layer's shape.
func (cfg *worldConfig) policy() storage.Policy {
	return storage.Policy{
		InitialCapacity: cfg.InitialCapacity,
		GrowthFactor:    cfg.GrowthFactor,
		ShrinkThreshold: cfg.ShrinkThreshold,
		ShrinkHeadroom:  cfg.ShrinkHeadroom,
	}
}

package lattice

import (
	"testing"

	"gotest.tools/v3/assert"
)

func TestLoadWorldConfigDefaults(t *testing.T) {
	cfg, err := loadWorldConfig()
	assert.NilError(t, err)
	assert.Equal(t, cfg.InitialCapacity, 16)
	assert.Equal(t, cfg.GrowthFactor, 1.5)
	assert.Equal(t, cfg.ShrinkThreshold, 0.6)
	assert.Equal(t, cfg.ShrinkHeadroom, 1.2)
	assert.Equal(t, cfg.LogLevel, "info")
	assert.Equal(t, cfg.StatsdAddress, "")
}

func TestLoadWorldConfigFromEnv(t *testing.T) {
	t.Setenv("LATTICE_INITIAL_CAPACITY", "64")
	t.Setenv("LATTICE_GROWTH_FACTOR", "2.0")
	t.Setenv("LATTICE_LOG_LEVEL", "debug")
	t.Setenv("LATTICE_TRACE_ID", "req-123")

	cfg, err := loadWorldConfig()
	assert.NilError(t, err)
	assert.Equal(t, cfg.InitialCapacity, 64)
	assert.Equal(t, cfg.GrowthFactor, 2.0)
	assert.Equal(t, cfg.LogLevel, "debug")
	assert.Equal(t, cfg.TraceID, "req-123")

	pol := cfg.policy()
	assert.Equal(t, pol.InitialCapacity, 64)
	assert.Equal(t, pol.GrowthFactor, 2.0)
}

func TestLoadWorldConfigRejectsBadValues(t *testing.T) {
	tests := []struct {
		name  string
		key   string
		value string
	}{
		{"capacity too small", "LATTICE_INITIAL_CAPACITY", "1"},
		{"growth not expanding", "LATTICE_GROWTH_FACTOR", "1.0"},
		{"threshold above one", "LATTICE_SHRINK_THRESHOLD", "1.5"},
		{"headroom below one", "LATTICE_SHRINK_HEADROOM", "0.5"},
		{"unknown log level", "LATTICE_LOG_LEVEL", "verbose"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Setenv(tc.key, tc.value)
			_, err := loadWorldConfig()
			assert.Assert(t, err != nil)
		})
	}
}

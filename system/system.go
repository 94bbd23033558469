// Package system is the thin orchestration layer over the store: named
// systems grouped into phases, dispatched in registration order on the
// single mutating goroutine.
package system

import (
	"path/filepath"
	"reflect"
	"runtime"
	"slices"
	"time"

	"github.com/rotisserie/eris"
	"github.com/rs/zerolog"

	"github.com/lattice-works/lattice/log"
	"github.com/lattice-works/lattice/sidetable"
	"github.com/lattice-works/lattice/statsd"
	"github.com/lattice-works/lattice/storage"
)

// Phase groups systems by when they run inside one unit of work.
type Phase uint8

const (
	PhasePre Phase = iota
	PhaseUpdate
	PhasePost
	numPhases
)

// String returns the phase name.
func (p Phase) String() string {
	switch p {
	case PhasePre:
		return "pre"
	case PhaseUpdate:
		return "update"
	case PhasePost:
		return "post"
	}
	return "unknown"
}

// System is one unit of work over the store. Systems run on the mutating
// goroutine; anything they share with observers goes through the sidetable.
type System func(ctx *Context) error

// Context is what a running system sees: the registry it operates on, a
// logger already tagged with the system name, and the shared sidetable.
type Context struct {
	reg    *storage.Registry
	shared *sidetable.Table
	logger zerolog.Logger
}

// NewContext builds a dispatch context. The manager re-tags the logger per
// system before each call.
func NewContext(reg *storage.Registry, shared *sidetable.Table, logger *zerolog.Logger) *Context {
	return &Context{reg: reg, shared: shared, logger: *logger}
}

// Registry returns the store the system operates on.
func (c *Context) Registry() *storage.Registry {
	return c.reg
}

// Shared returns the concurrent sidetable.
func (c *Context) Shared() *sidetable.Table {
	return c.shared
}

// Logger returns the logger tagged with the current system name.
func (c *Context) Logger() *zerolog.Logger {
	return &c.logger
}

// Manager owns the registered systems. Within a phase systems run in
// registration order; phases are independent and the caller decides when
// each runs. System names are derived from the function name and must be
// unique across all phases.
type Manager struct {
	// names preserves registration order per phase; Go maps are unordered.
	names    [numPhases][]string
	systems  map[string]System
	current  string
	initFn   System
	initDone bool
}

// NewManager creates an empty system manager.
func NewManager() *Manager {
	return &Manager{systems: make(map[string]System)}
}

// Register adds systems to a phase. Either every given system registers or
// none do: a duplicate name anywhere fails the whole call.
func (m *Manager) Register(phase Phase, systems ...System) error {
	if phase >= numPhases {
		return eris.Errorf("unknown phase %d", phase)
	}
	names := make([]string, 0, len(systems))
	for _, sys := range systems {
		name := systemName(sys)
		if slices.Contains(names, name) {
			return eris.Errorf("duplicate system %q in slice", name)
		}
		if _, taken := m.systems[name]; taken {
			return eris.Errorf("system %q is already registered", name)
		}
		names = append(names, name)
	}
	for i, name := range names {
		m.names[phase] = append(m.names[phase], name)
		m.systems[name] = systems[i]
	}
	return nil
}

// RegisterInit sets the system that runs once before any phase.
func (m *Manager) RegisterInit(sys System) {
	m.initFn = sys
}

// RunInit runs the init system. Calling it a second time is an error even
// when no init system is registered, so setup bugs surface immediately.
func (m *Manager) RunInit(ctx *Context) error {
	if m.initDone {
		return eris.New("init system already ran")
	}
	m.initDone = true
	if m.initFn == nil {
		return nil
	}
	m.current = "init"
	defer func() { m.current = "" }()
	ctx.logger = *log.CreateSystemLogger(&ctx.logger, "init")
	if err := m.initFn(ctx); err != nil {
		return eris.Wrap(err, "init system generated an error")
	}
	return nil
}

// Run dispatches every system of a phase in registration order. The first
// system error stops the phase and is returned wrapped with the system
// name.
func (m *Manager) Run(phase Phase, ctx *Context) error {
	if phase >= numPhases {
		return eris.Errorf("unknown phase %d", phase)
	}
	phaseStart := time.Now()
	base := ctx.logger
	for _, name := range m.names[phase] {
		m.current = name
		ctx.logger = *log.CreateSystemLogger(&base, name)

		start := time.Now()
		if err := m.systems[name](ctx); err != nil {
			m.current = ""
			return eris.Wrapf(err, "system %s generated an error", name)
		}
		statsd.EmitPhaseStat(start, name)
	}
	m.current = ""
	ctx.logger = base
	statsd.EmitPhaseStat(phaseStart, "phase_"+phase.String())
	return nil
}

// Names returns the registered system names of a phase in registration
// order.
func (m *Manager) Names(phase Phase) []string {
	if phase >= numPhases {
		return nil
	}
	return m.names[phase]
}

// Current returns the name of the system running right now, "no_system"
// between dispatches.
func (m *Manager) Current() string {
	if m.current == "" {
		return "no_system"
	}
	return m.current
}

func systemName(sys System) string {
	return filepath.Base(runtime.FuncForPC(reflect.ValueOf(sys).Pointer()).Name())
}

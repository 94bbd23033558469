package log

import (
	"github.com/rs/zerolog"

	"github.com/lattice-works/lattice/storage"
)

// Loggable is anything owning a set of component tables. The registry
// satisfies it.
type Loggable interface {
	Tables() []*storage.Table
	Len() int
}

func loadTableIntoArrayLogger(t *storage.Table, arrayLogger *zerolog.Array) *zerolog.Array {
	dictLogger := zerolog.Dict()
	dictLogger = dictLogger.Int("table_id", int(t.ID()))
	dictLogger = dictLogger.Str("table_name", t.Name())
	dictLogger = dictLogger.Int("live", t.Len())
	dictLogger = dictLogger.Int("allocated", t.AllocatedRows())
	return arrayLogger.Dict(dictLogger)
}

func loadTablesToEvent(zeroLoggerEvent *zerolog.Event, target Loggable) *zerolog.Event {
	tables := target.Tables()
	zeroLoggerEvent.Int("total_tables", len(tables))
	arrayLogger := zerolog.Arr()
	for _, t := range tables {
		arrayLogger = loadTableIntoArrayLogger(t, arrayLogger)
	}
	return zeroLoggerEvent.Array("tables", arrayLogger)
}

// Tables logs every registered table with its occupancy.
func Tables(logger *zerolog.Logger, target Loggable, level zerolog.Level) {
	zeroLoggerEvent := logger.WithLevel(level)
	zeroLoggerEvent = loadTablesToEvent(zeroLoggerEvent, target)
	zeroLoggerEvent.Send()
}

// Registry logs the whole registry: entity count plus every table.
func Registry(logger *zerolog.Logger, target Loggable, level zerolog.Level) {
	zeroLoggerEvent := logger.WithLevel(level)
	zeroLoggerEvent.Int("live_entities", target.Len())
	zeroLoggerEvent = loadTablesToEvent(zeroLoggerEvent, target)
	zeroLoggerEvent.Send()
}

// Entity logs one entity and the component types attached to it.
func Entity(logger *zerolog.Logger, level zerolog.Level, reg *storage.Registry, e *storage.Entity) {
	zeroLoggerEvent := logger.WithLevel(level)
	zeroLoggerEvent.Uint64("entity_id", uint64(e.ID()))
	zeroLoggerEvent.Int("entity_index", e.Index())
	arrayLogger := zerolog.Arr()
	for _, c := range reg.ComponentsOf(e) {
		dictLogger := zerolog.Dict()
		dictLogger = dictLogger.Str("table_name", c.Table().Name())
		dictLogger = dictLogger.Uint64("component_id", uint64(c.ID()))
		dictLogger = dictLogger.Int("row", c.Row())
		arrayLogger = arrayLogger.Dict(dictLogger)
	}
	zeroLoggerEvent.Array("components", arrayLogger)
	zeroLoggerEvent.Send()
}

// CreateSystemLogger creates a sub logger with the entry {"system": systemName}.
func CreateSystemLogger(logger *zerolog.Logger, systemName string) *zerolog.Logger {
	newLogger := logger.With().Str("system", systemName).Logger()
	return &newLogger
}

// CreateTraceLogger creates a trace logger. Using a single id you can use this
// logger to follow and log a data path.
func CreateTraceLogger(logger *zerolog.Logger, traceID string) *zerolog.Logger {
	newLogger := logger.With().Str("trace_id", traceID).Logger()
	return &newLogger
}

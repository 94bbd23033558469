package log_test

import (
	"bytes"
	"testing"

	"github.com/goccy/go-json"
	"github.com/rs/zerolog"

	"github.com/lattice-works/lattice/assert"
	"github.com/lattice-works/lattice/log"
	"github.com/lattice-works/lattice/storage"
)

func setup(t *testing.T) (*storage.Registry, *storage.Table, *storage.Entity) {
	t.Helper()
	reg := storage.NewRegistry(storage.DefaultPolicy(), zerolog.Nop())
	tbl, err := reg.NewTable("position", []storage.DeclaredColumn{
		{Name: "x", Factory: storage.NewFactory[float64](0, storage.CloneCopy)},
	})
	assert.NilError(t, err)
	e := reg.AddEntity()
	_, err = tbl.Add(e.Index())
	assert.NilError(t, err)
	return reg, tbl, e
}

func decodeLine(t *testing.T, buf *bytes.Buffer) map[string]any {
	t.Helper()
	var line map[string]any
	assert.NilError(t, json.Unmarshal(buf.Bytes(), &line))
	return line
}

func TestRegistryEvent(t *testing.T) {
	reg, _, _ := setup(t)
	var buf bytes.Buffer
	logger := zerolog.New(&buf)

	log.Registry(&logger, reg, zerolog.InfoLevel)

	line := decodeLine(t, &buf)
	assert.Equal(t, line["live_entities"], float64(1))
	assert.Equal(t, line["total_tables"], float64(1))
	tables := line["tables"].([]any)
	assert.Len(t, tables, 1)
	tbl := tables[0].(map[string]any)
	assert.Equal(t, tbl["table_name"], "position")
	assert.Equal(t, tbl["live"], float64(1))
}

func TestEntityEvent(t *testing.T) {
	reg, _, e := setup(t)
	var buf bytes.Buffer
	logger := zerolog.New(&buf)

	log.Entity(&logger, zerolog.DebugLevel, reg, e)

	line := decodeLine(t, &buf)
	assert.Equal(t, line["entity_id"], float64(e.ID()))
	comps := line["components"].([]any)
	assert.Len(t, comps, 1)
	comp := comps[0].(map[string]any)
	assert.Equal(t, comp["table_name"], "position")
}

func TestCreateSystemLogger(t *testing.T) {
	var buf bytes.Buffer
	logger := zerolog.New(&buf)
	sysLogger := log.CreateSystemLogger(&logger, "physics")
	sysLogger.Info().Msg("step")

	line := decodeLine(t, &buf)
	assert.Equal(t, line["system"], "physics")
	assert.Equal(t, line["message"], "step")
}

func TestCreateTraceLogger(t *testing.T) {
	var buf bytes.Buffer
	logger := zerolog.New(&buf)
	traceLogger := log.CreateTraceLogger(&logger, "trace-1")
	traceLogger.Info().Msg("step")

	line := decodeLine(t, &buf)
	assert.Equal(t, line["trace_id"], "trace-1")
}

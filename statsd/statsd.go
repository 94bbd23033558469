// Package statsd is a helper package that wraps some common statsd methods.
// It hides the datadog dependency so if we decide to migrate away from datadog
// in the future, we only need to edit this single file.
package statsd

import (
	"time"

	ddstatsd "github.com/DataDog/datadog-go/v5/statsd"
	"github.com/rotisserie/eris"
	"github.com/rs/zerolog/log"
)

var client ddstatsd.ClientInterface = &ddstatsd.NoOpClient{}

func Client() ddstatsd.ClientInterface {
	return client
}

// EmitCompactionStat reports how long a compaction pass took and how much
// it moved.
func EmitCompactionStat(elapsed time.Duration, movedEntities, movedRows int) {
	if err := Client().Timing("compaction", elapsed, nil, 1); err != nil {
		log.Logger.Warn().Msgf("failed to emit compaction timing: %v", err)
	}
	if err := Client().Count("compaction.moved_entities", int64(movedEntities), nil, 1); err != nil {
		log.Logger.Warn().Msgf("failed to emit compaction stat: %v", err)
	}
	if err := Client().Count("compaction.moved_rows", int64(movedRows), nil, 1); err != nil {
		log.Logger.Warn().Msgf("failed to emit compaction stat: %v", err)
	}
}

// EmitPhaseStat reports how long a named system or phase took to run.
func EmitPhaseStat(start time.Time, name string) {
	if err := Client().Timing("phase", time.Since(start), []string{"segment:" + name}, 1); err != nil {
		log.Logger.Warn().Msgf("failed to emit phase stat: %v", err)
	}
}

// EmitGauge reports a point-in-time value such as a live count.
func EmitGauge(name string, value float64, tags []string) {
	if err := Client().Gauge(name, value, tags, 1); err != nil {
		log.Logger.Warn().Msgf("failed to emit gauge %s: %v", name, err)
	}
}

func Init(address string, tags []string) error {
	if address == "" {
		return eris.New("address must not be empty")
	}
	opts := []ddstatsd.Option{
		// The statsd namespace is the prefix of all metrics
		ddstatsd.WithNamespace("lattice"),
	}
	if len(tags) > 0 {
		opts = append(opts, ddstatsd.WithTags(tags))
	}

	newClient, err := ddstatsd.New(address, opts...)
	if err != nil {
		return err
	}
	// Success! replace the global client
	client = newClient
	return nil
}

// CPU profile of the compaction pass under heavy fragmentation.
//
//	go build ./profile/compaction
//	./compaction
//	go tool pprof -http=":8000" ./compaction cpu.pprof
package main

import (
	"math/rand"

	"github.com/pkg/profile"
	"github.com/rs/zerolog"

	"github.com/lattice-works/lattice/storage"
)

func main() {
	p := profile.Start(profile.CPUProfile, profile.ProfilePath("."), profile.NoShutdownHook)
	defer p.Stop()

	const entities = 100_000
	const rounds = 20

	rng := rand.New(rand.NewSource(1))
	reg := storage.NewRegistry(storage.DefaultPolicy(), zerolog.Nop())
	tbl, err := reg.NewTable("body", []storage.DeclaredColumn{
		{Name: "x", Factory: storage.NewFactory[float64](0, storage.CloneCopy)},
		{Name: "y", Factory: storage.NewFactory[float64](0, storage.CloneCopy)},
	})
	if err != nil {
		panic(err)
	}

	for round := 0; round < rounds; round++ {
		live := make([]*storage.Entity, 0, entities)
		reg.EachEntity(func(e *storage.Entity) bool {
			live = append(live, e)
			return true
		})
		for len(live) < entities {
			e := reg.AddEntity()
			if _, err := tbl.Add(e.Index()); err != nil {
				panic(err)
			}
			live = append(live, e)
		}
		// Fragment roughly half the table, then defragment.
		for _, e := range live {
			if rng.Intn(2) == 0 {
				if err := reg.RemoveEntity(e); err != nil {
					panic(err)
				}
			}
		}
		reg.Compact()
	}
}

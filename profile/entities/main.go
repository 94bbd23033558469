// Allocation profile of entity and component creation.
//
//	go build ./profile/entities
//	./entities
//	go tool pprof -http=":8000" ./entities mem.pprof
package main

import (
	"github.com/pkg/profile"
	"github.com/rs/zerolog"

	"github.com/lattice-works/lattice/storage"
)

type vec struct {
	X, Y float64
}

func main() {
	p := profile.Start(profile.MemProfileAllocs, profile.ProfilePath("."), profile.NoShutdownHook)
	defer p.Stop()

	const entities = 100_000

	reg := storage.NewRegistry(storage.DefaultPolicy(), zerolog.Nop())
	tbl, err := reg.NewTable("body", []storage.DeclaredColumn{
		{Name: "pos", Factory: storage.NewFactory[vec](vec{}, storage.CloneCopy)},
		{Name: "vel", Factory: storage.NewFactory[vec](vec{}, storage.CloneCopy)},
		{Name: "mass", Factory: storage.NewFactory[float64](1, storage.CloneCopy)},
	})
	if err != nil {
		panic(err)
	}

	for i := 0; i < entities; i++ {
		e := reg.AddEntity()
		if _, err := tbl.Add(e.Index()); err != nil {
			panic(err)
		}
	}

	sum := 0.0
	col, _ := tbl.ColumnByName("mass")
	mass, _ := storage.As[float64](col)
	it := storage.NewFastIterator(tbl)
	for it.HasNext() {
		sum += mass.Get(it.Next().Row())
	}
	if sum != entities {
		panic("iteration missed components")
	}
}

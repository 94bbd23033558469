package storage_test

import (
	"testing"

	"github.com/rs/zerolog"

	"github.com/lattice-works/lattice/storage"
)

func benchSetup(b *testing.B, n int) (*storage.Registry, *storage.Table, *storage.TypedColumn[int]) {
	b.Helper()
	reg := storage.NewRegistry(storage.DefaultPolicy(), zerolog.Nop())
	tbl, err := reg.NewTable("bench", []storage.DeclaredColumn{
		{Name: "field", Factory: storage.NewFactory[int](0, storage.CloneCopy)},
	})
	if err != nil {
		b.Fatal(err)
	}
	col, _ := tbl.ColumnByName("field")
	typed, _ := storage.As[int](col)
	for i := 0; i < n; i++ {
		e := reg.AddEntity()
		c, err := tbl.Add(e.Index())
		if err != nil {
			b.Fatal(err)
		}
		typed.Set(c.Row(), i)
	}
	return reg, tbl, typed
}

func BenchmarkAddComponent(b *testing.B) {
	reg := storage.NewRegistry(storage.DefaultPolicy(), zerolog.Nop())
	tbl, err := reg.NewTable("bench", []storage.DeclaredColumn{
		{Name: "field", Factory: storage.NewFactory[int](0, storage.CloneCopy)},
	})
	if err != nil {
		b.Fatal(err)
	}
	entities := make([]*storage.Entity, b.N)
	for i := range entities {
		entities[i] = reg.AddEntity()
	}
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, err := tbl.Add(entities[i].Index()); err != nil {
			b.Fatal(err)
		}
	}
}

func BenchmarkFastIterator(b *testing.B) {
	_, tbl, field := benchSetup(b, 10000)
	b.ResetTimer()
	sum := 0
	for i := 0; i < b.N; i++ {
		it := storage.NewFastIterator(tbl)
		for it.HasNext() {
			sum += field.Get(it.Next().Row())
		}
	}
	_ = sum
}

func BenchmarkCompact(b *testing.B) {
	for i := 0; i < b.N; i++ {
		b.StopTimer()
		reg, tbl, _ := benchSetup(b, 10000)
		for idx := 2; idx <= 10000; idx += 2 {
			tbl.Remove(idx)
		}
		b.StartTimer()
		reg.Compact()
	}
}

// Package sidetable provides the one concurrency-tolerant structure in the
// module: a shared key-value table that observers and systems use to
// exchange data, since the store itself is single-threaded and its
// notification callbacks may fan work out to other goroutines.
package sidetable

import (
	"sync"

	"github.com/rotisserie/eris"
)

type Table struct {
	items sync.Map
}

func New() *Table {
	return &Table{}
}

func (t *Table) Store(key string, value any) {
	t.items.Store(key, value)
}

func (t *Table) Load(key string) (any, bool) {
	return t.items.Load(key)
}

func (t *Table) Delete(key string) {
	t.items.Delete(key)
}

func (t *Table) GetUint64(key string) (uint64, error) {
	v, ok := t.items.Load(key)
	if !ok {
		return 0, eris.Errorf("key: %s does not exist", key)
	}
	n, ok := v.(uint64)
	if !ok {
		return 0, eris.Errorf("stored type for %s is not uint64", key)
	}
	return n, nil
}

func (t *Table) GetString(key string) (string, error) {
	v, ok := t.items.Load(key)
	if !ok {
		return "", eris.Errorf("key: %s does not exist", key)
	}
	s, ok := v.(string)
	if !ok {
		return "", eris.Errorf("stored type for %s is not string", key)
	}
	return s, nil
}

// Increment adds delta to the uint64 counter at key, creating it first
// when absent. Safe under concurrent increments of the same key.
func (t *Table) Increment(key string, delta uint64) (uint64, error) {
	for {
		v, loaded := t.items.LoadOrStore(key, delta)
		if !loaded {
			return delta, nil
		}
		n, ok := v.(uint64)
		if !ok {
			return 0, eris.Errorf("stored type for %s is not uint64", key)
		}
		if t.items.CompareAndSwap(key, n, n+delta) {
			return n + delta, nil
		}
	}
}

// Range calls fn for every entry until fn returns false.
func (t *Table) Range(fn func(key string, value any) bool) {
	t.items.Range(func(k, v any) bool {
		key, ok := k.(string)
		if !ok {
			return true
		}
		return fn(key, v)
	})
}

// Counts snapshots every uint64 counter in the table, skipping entries of
// other types.
func (t *Table) Counts() map[string]uint64 {
	result := map[string]uint64{}
	t.items.Range(func(k, v any) bool {
		key, kok := k.(string)
		n, vok := v.(uint64)
		if kok && vok {
			result[key] = n
		}
		return true
	})
	return result
}

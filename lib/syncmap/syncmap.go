// Package syncmap is a typed sync.Map.
package syncmap

import "sync"

type SyncMap[K comparable, V any] struct {
	_map *sync.Map
}

func New[K comparable, V any]() SyncMap[K, V] {
	return SyncMap[K, V]{
		_map: &sync.Map{},
	}
}

func (sm SyncMap[K, V]) Lookup(key K) (value V, ok bool) {
	v, has := sm._map.Load(key)
	if !has {
		return value, false
	}
	return v.(V), true
}

// LoadOrCompute returns the value of key, computing and storing it with fn when absent.
// fn may run more than once under contention but every caller gets the stored value.
func (sm SyncMap[K, V]) LoadOrCompute(key K, fn func() V) V {
	if v, ok := sm.Lookup(key); ok {
		return v
	}
	v, _ := sm._map.LoadOrStore(key, fn())
	return v.(V)
}

func (sm SyncMap[K, V]) Len() int {
	n := 0
	sm._map.Range(func(_, _ any) bool {
		n++
		return true
	})
	return n
}

package syncmap

import "sync"

// Map is a concurrency-safe map keyed by name.
type Map[T any] struct {
	mux sync.RWMutex
	m   map[string]T
}

// NewRegistry creates an empty Map.
func NewRegistry[T any]() *Map[T] {
	return &Map[T]{m: make(map[string]T)}
}

// Get returns the item stored under name or the zero value.
func (r *Map[T]) Get(name string) T {
	value, _ := r.Lookup(name)
	return value
}

// Lookup returns the item stored under name and whether it exists.
func (r *Map[T]) Lookup(name string) (T, bool) {
	r.mux.RLock()
	defer r.mux.RUnlock()
	value, ok := r.m[name]
	return value, ok
}

// PutIfAbsent stores value unless name is already taken and reports whether
// it was stored.
func (r *Map[T]) PutIfAbsent(name string, value T) bool {
	r.mux.Lock()
	defer r.mux.Unlock()
	if _, ok := r.m[name]; ok {
		return false
	}
	r.m[name] = value
	return true
}

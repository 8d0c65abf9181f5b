// Package globals holds application-wide shared values keyed by their type, such as the
// default sampler created at renderer startup.
package globals

import (
	"reflect"
	"sync"
)

// Globals stores at most one value per type.
type Globals struct {
	mu     sync.RWMutex
	values map[reflect.Type]any
}

// New creates an empty Globals.
func New() *Globals {
	return &Globals{values: make(map[reflect.Type]any)}
}

// Set stores v under its type T, replacing any previous value of that type.
func Set[T any](g *Globals, v T) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.values[reflect.TypeFor[T]()] = v
}

// Get returns the value stored for type T.
//
// Parameters:
//   - g: the globals to read
//
// Returns:
//   - T: the stored value, or the zero value
//   - bool: true if a value of type T was stored
func Get[T any](g *Globals) (T, bool) {
	g.mu.RLock()
	defer g.mu.RUnlock()
	v, ok := g.values[reflect.TypeFor[T]()]
	if !ok {
		var zero T
		return zero, false
	}
	return v.(T), true
}

// Remove deletes the value stored for type T.
func Remove[T any](g *Globals) bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	key := reflect.TypeFor[T]()
	_, ok := g.values[key]
	delete(g.values, key)
	return ok
}

package pipeline

import (
	"sort"

	"github.com/Carmen-Shannon/oxy-pipeline/engine/renderer/bind_group"
	"github.com/Carmen-Shannon/oxy-pipeline/engine/renderer/shader"
)

// Compiled is a backend pipeline object. Only the Cache holds it.
type Compiled interface {
	// Kind reports whether the pipeline draws or dispatches.
	Kind() shader.Kind

	// Layout returns the slot layout bindings are resolved against.
	Layout() bind_group.Layout

	// Release frees the backend pipeline.
	Release()
}

// Entry is a cached compiled pipeline together with the generation it was inserted under.
type Entry struct {
	Compiled   Compiled
	Generation uint64
}

// CacheStats reports cache activity.
type CacheStats struct {
	Entries  int
	Hits     uint64
	Misses   uint64
	Compiles uint64
	Drops    uint64
}

// Cache maps shader IDs to compiled pipelines. It holds at most one pipeline per ID.
// Every insert is stamped with a new generation so bindings resolved against a replaced or
// dropped pipeline can be recognised as stale.
//
// Cache has no internal locking; the renderer only uses it from the frame thread.
type Cache struct {
	entries        map[shader.ID]Entry
	lastGeneration uint64
	hits           uint64
	misses         uint64
	compiles       uint64
	drops          uint64
}

// NewCache creates an empty Cache.
func NewCache() *Cache {
	return &Cache{entries: make(map[shader.ID]Entry)}
}

// Has reports whether a compiled pipeline exists for id.
func (c *Cache) Has(id shader.ID) bool {
	_, ok := c.entries[id]
	return ok
}

// Get returns the cached entry for id and records a hit or a miss.
//
// Parameters:
//   - id: the shader ID
//
// Returns:
//   - Entry: the compiled pipeline and its generation
//   - bool: true if the entry exists
func (c *Cache) Get(id shader.ID) (Entry, bool) {
	e, ok := c.entries[id]
	if ok {
		c.hits++
	} else {
		c.misses++
	}
	return e, ok
}

// Insert stores compiled under id, releasing any pipeline it replaces.
//
// Parameters:
//   - id: the shader ID
//   - compiled: the compiled pipeline, owned by the cache from now on
//
// Returns:
//   - uint64: the generation assigned to the entry, never zero
func (c *Cache) Insert(id shader.ID, compiled Compiled) uint64 {
	if prev, ok := c.entries[id]; ok && prev.Compiled != compiled {
		prev.Compiled.Release()
	}
	c.lastGeneration++
	c.entries[id] = Entry{Compiled: compiled, Generation: c.lastGeneration}
	c.compiles++
	return c.lastGeneration
}

// Drop releases and removes the pipeline for id.
//
// Returns:
//   - bool: true if a pipeline was cached for id
func (c *Cache) Drop(id shader.ID) bool {
	e, ok := c.entries[id]
	if !ok {
		return false
	}
	e.Compiled.Release()
	delete(c.entries, id)
	c.drops++
	return true
}

// DropAll releases and removes every cached pipeline.
//
// Returns:
//   - int: the number of pipelines dropped
func (c *Cache) DropAll() int {
	n := len(c.entries)
	for _, e := range c.entries {
		e.Compiled.Release()
	}
	clear(c.entries)
	c.drops += uint64(n)
	return n
}

// Len returns the number of cached pipelines.
func (c *Cache) Len() int {
	return len(c.entries)
}

// IDs returns the cached shader IDs in ascending order.
func (c *Cache) IDs() []shader.ID {
	ids := make([]shader.ID, 0, len(c.entries))
	for id := range c.entries {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

// Stats returns a snapshot of the cache counters.
func (c *Cache) Stats() CacheStats {
	return CacheStats{
		Entries:  len(c.entries),
		Hits:     c.hits,
		Misses:   c.misses,
		Compiles: c.compiles,
		Drops:    c.drops,
	}
}

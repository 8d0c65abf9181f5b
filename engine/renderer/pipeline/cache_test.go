package pipeline

import (
	"testing"

	"github.com/Carmen-Shannon/oxy-pipeline/engine/renderer/bind_group"
	"github.com/Carmen-Shannon/oxy-pipeline/engine/renderer/shader"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeCompiled struct {
	kind     shader.Kind
	released int
}

func (f *fakeCompiled) Kind() shader.Kind {
	return f.kind
}

func (f *fakeCompiled) Layout() bind_group.Layout {
	return nil
}

func (f *fakeCompiled) Release() {
	f.released++
}

func TestCacheInsertAndGet(t *testing.T) {
	c := NewCache()
	p := &fakeCompiled{kind: shader.KindRender}

	_, ok := c.Get(1)
	assert.False(t, ok)

	gen := c.Insert(1, p)
	assert.NotZero(t, gen)
	assert.True(t, c.Has(1))

	e, ok := c.Get(1)
	require.True(t, ok)
	assert.Same(t, p, e.Compiled)
	assert.Equal(t, gen, e.Generation)

	stats := c.Stats()
	assert.Equal(t, CacheStats{Entries: 1, Hits: 1, Misses: 1, Compiles: 1}, stats)
}

func TestCacheInsertReplacesAndBumpsGeneration(t *testing.T) {
	c := NewCache()
	old, replacement := &fakeCompiled{}, &fakeCompiled{}

	first := c.Insert(7, old)
	second := c.Insert(7, replacement)

	assert.Greater(t, second, first)
	assert.Equal(t, 1, old.released)
	assert.Equal(t, 0, replacement.released)
	assert.Equal(t, 1, c.Len())
}

func TestCacheGenerationsNeverRepeat(t *testing.T) {
	c := NewCache()

	first := c.Insert(1, &fakeCompiled{})
	c.Drop(1)
	second := c.Insert(1, &fakeCompiled{})

	assert.NotEqual(t, first, second)
}

func TestCacheDrop(t *testing.T) {
	c := NewCache()
	p := &fakeCompiled{}
	c.Insert(2, p)

	assert.True(t, c.Drop(2))
	assert.False(t, c.Drop(2))
	assert.False(t, c.Has(2))
	assert.Equal(t, 1, p.released)
	assert.Equal(t, uint64(1), c.Stats().Drops)
}

func TestCacheDropAll(t *testing.T) {
	c := NewCache()
	pipelines := []*fakeCompiled{{}, {}, {}}
	for i, p := range pipelines {
		c.Insert(shader.ID(i+1), p)
	}

	assert.Equal(t, 3, c.DropAll())
	assert.Zero(t, c.Len())
	for _, p := range pipelines {
		assert.Equal(t, 1, p.released)
	}
	assert.Zero(t, c.DropAll())
}

func TestCacheIDsSorted(t *testing.T) {
	c := NewCache()
	for _, id := range []shader.ID{9, 3, 5} {
		c.Insert(id, &fakeCompiled{})
	}
	assert.Equal(t, []shader.ID{3, 5, 9}, c.IDs())
}

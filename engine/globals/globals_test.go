package globals

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

type clearColor struct{ R, G, B float64 }

type frameLimit int

func TestSetGetRemove(t *testing.T) {
	g := New()

	_, ok := Get[clearColor](g)
	assert.False(t, ok)

	Set(g, clearColor{R: 1})
	Set(g, frameLimit(60))
	Set(g, clearColor{G: 1})

	c, ok := Get[clearColor](g)
	assert.True(t, ok)
	assert.Equal(t, clearColor{G: 1}, c)

	limit, ok := Get[frameLimit](g)
	assert.True(t, ok)
	assert.Equal(t, frameLimit(60), limit)

	assert.True(t, Remove[clearColor](g))
	assert.False(t, Remove[clearColor](g))
	_, ok = Get[clearColor](g)
	assert.False(t, ok)
}

func TestPointerAndValueTypesAreDistinct(t *testing.T) {
	g := New()
	Set(g, &clearColor{R: 1})

	_, ok := Get[clearColor](g)
	assert.False(t, ok)
	p, ok := Get[*clearColor](g)
	assert.True(t, ok)
	assert.Equal(t, 1.0, p.R)
}

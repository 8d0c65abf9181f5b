package resource

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

type fakeNative struct {
	released int
}

func (f *fakeNative) Release() {
	f.released++
}

func TestHandleStartsUnloaded(t *testing.T) {
	buf := NewUniformBuffer("camera")

	assert.Equal(t, "camera", buf.Label())
	assert.False(t, buf.Loaded())
	assert.Nil(t, buf.Native())
	assert.NotPanics(t, buf.Release)
}

func TestSetReleasesPreviousNative(t *testing.T) {
	first, second := &fakeNative{}, &fakeNative{}
	buf := NewStorageBuffer("particles")

	buf.Set(first, 64)
	assert.True(t, buf.Loaded())
	assert.Equal(t, uint64(64), buf.Size())

	buf.Set(second, 128)
	assert.Equal(t, 1, first.released)
	assert.Equal(t, 0, second.released)
	assert.Same(t, second, buf.Native())
	assert.Equal(t, uint64(128), buf.Size())
}

func TestSetSameNativeKeepsIt(t *testing.T) {
	n := &fakeNative{}
	buf := NewUniformBuffer("params")

	buf.Set(n, 16)
	buf.Set(n, 16)

	assert.Equal(t, 0, n.released)
	assert.True(t, buf.Loaded())
}

func TestReleaseFreesOnce(t *testing.T) {
	n := &fakeNative{}
	s := NewSampler("default")
	s.Set(n)

	s.Release()
	s.Release()

	assert.Equal(t, 1, n.released)
	assert.False(t, s.Loaded())
}

func TestVertexBufferCount(t *testing.T) {
	vb := NewVertexBuffer("quad")
	vb.Set(&fakeNative{}, 6, true)
	assert.Equal(t, uint32(6), vb.Count())
	assert.True(t, vb.Indexed())

	vb.Set(&fakeNative{}, 4, false)
	assert.Equal(t, uint32(4), vb.Count())
	assert.False(t, vb.Indexed())
}

func TestShaderModuleName(t *testing.T) {
	m := NewShaderModule("triangle")
	m.Set(&fakeNative{}, "triangle#2")
	assert.Equal(t, "triangle#2", m.Name())
}

func TestTextureUsage(t *testing.T) {
	tex := NewTextureBuffer("albedo")
	assert.True(t, tex.Usage().Has(TextureUsageTextureBinding))
	assert.False(t, tex.Usage().Has(TextureUsageStorageBinding))

	tex.Set(&fakeNative{}, 4, 4, 2, DefaultTextureUsage|TextureUsageStorageBinding)
	w, h, layers := tex.Extent()
	assert.Equal(t, [3]uint32{4, 4, 2}, [3]uint32{w, h, layers})
	assert.True(t, tex.Usage().Has(TextureUsageStorageBinding|TextureUsageCopyDst))
}

package mesh

import (
	"testing"

	"github.com/Carmen-Shannon/oxy-pipeline/common"
	"github.com/Carmen-Shannon/oxy-pipeline/engine/renderer/resource"
	"github.com/cogentcore/webgpu/wgpu"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeNative struct{}

func (fakeNative) Release() {}

type fakeLoader struct {
	attributes []byte
	indices    []uint32
	count      uint32
}

func (l *fakeLoader) LoadVertexBuffer(buf *resource.VertexBuffer, attributes []byte, indices []uint32, count uint32) error {
	l.attributes, l.indices, l.count = attributes, indices, count
	buf.Set(fakeNative{}, count, len(indices) > 0)
	return nil
}

var quadAttributes = []AttributeFormat{Float32x2, Float32x3}

func quadVertices() []byte {
	return common.SliceToBytes([]float32{
		-1, -1, 1, 0, 0,
		1, -1, 0, 1, 0,
		1, 1, 0, 0, 1,
		-1, 1, 1, 1, 1,
	})
}

func TestNewMesh(t *testing.T) {
	m, err := NewMesh("quad", quadAttributes, quadVertices(), WithIndices([]uint32{0, 1, 2, 0, 2, 3}))
	require.NoError(t, err)

	assert.Equal(t, uint64(20), m.Stride())
	assert.Equal(t, uint32(4), m.VertexCount())
	assert.Len(t, m.Indices(), 6)
	assert.False(t, m.Loaded())
}

func TestNewMeshRejectsBadData(t *testing.T) {
	_, err := NewMesh("empty", nil, nil)
	assert.Error(t, err)

	_, err = NewMesh("ragged", quadAttributes, make([]byte, 21))
	assert.Error(t, err)

	_, err = NewMesh("unknown", []AttributeFormat{AttributeFormat(99)}, make([]byte, 4))
	assert.Error(t, err)
}

func TestMeshLoadAndUnload(t *testing.T) {
	m, err := NewMesh("quad", quadAttributes, quadVertices())
	require.NoError(t, err)
	loader := &fakeLoader{}

	require.NoError(t, m.Load(loader))
	assert.True(t, m.Loaded())
	assert.Equal(t, uint32(4), loader.count)
	assert.Nil(t, loader.indices)
	assert.Equal(t, m.Vertices(), loader.attributes)

	m.Unload()
	assert.False(t, m.Loaded())
}

func TestSetVerticesUpdatesCount(t *testing.T) {
	m, err := NewMesh("quad", quadAttributes, quadVertices())
	require.NoError(t, err)

	require.NoError(t, m.SetVertices(quadVertices()[:40]))
	assert.Equal(t, uint32(2), m.VertexCount())
	assert.Error(t, m.SetVertices(make([]byte, 7)))
	assert.Equal(t, uint32(2), m.VertexCount())
}

func TestVertexLayout(t *testing.T) {
	layout := VertexLayout([]AttributeFormat{Float32x3, Float32x2, Uint32})

	assert.Equal(t, uint64(24), layout.ArrayStride)
	require.Len(t, layout.Attributes, 3)
	assert.Equal(t, uint64(12), layout.Attributes[1].Offset)
	assert.Equal(t, uint32(2), layout.Attributes[2].ShaderLocation)
	assert.Equal(t, wgpu.VertexFormatUint32, layout.Attributes[2].Format)
}

package renderer

import (
	"testing"

	"github.com/Carmen-Shannon/oxy-pipeline/engine/renderer/bind_group"
	"github.com/Carmen-Shannon/oxy-pipeline/engine/renderer/pipeline"
	"github.com/Carmen-Shannon/oxy-pipeline/engine/renderer/resource"
	"github.com/Carmen-Shannon/oxy-pipeline/engine/renderer/shader"
	"github.com/cogentcore/webgpu/wgpu"
	"github.com/stretchr/testify/assert"
)

func TestShaderStagesMapsAllOntoPipelineStages(t *testing.T) {
	assert.Equal(t, wgpu.ShaderStageCompute, shaderStages(bind_group.StageAll, shader.KindCompute))
	assert.Equal(t, wgpu.ShaderStageVertex|wgpu.ShaderStageFragment, shaderStages(bind_group.StageAll, shader.KindRender))
	assert.Equal(t, wgpu.ShaderStageFragment, shaderStages(bind_group.StageFragment, shader.KindRender))
}

func TestLayoutEntryKinds(t *testing.T) {
	tests := []struct {
		kind  bind_group.Kind
		check func(t *testing.T, e wgpu.BindGroupLayoutEntry)
	}{
		{bind_group.KindUniform, func(t *testing.T, e wgpu.BindGroupLayoutEntry) {
			assert.Equal(t, wgpu.BufferBindingTypeUniform, e.Buffer.Type)
		}},
		{bind_group.KindStorage, func(t *testing.T, e wgpu.BindGroupLayoutEntry) {
			assert.Equal(t, wgpu.BufferBindingTypeStorage, e.Buffer.Type)
		}},
		{bind_group.KindStorageAsUniform, func(t *testing.T, e wgpu.BindGroupLayoutEntry) {
			assert.Equal(t, wgpu.BufferBindingTypeReadOnlyStorage, e.Buffer.Type)
		}},
		{bind_group.KindSampler, func(t *testing.T, e wgpu.BindGroupLayoutEntry) {
			assert.Equal(t, wgpu.SamplerBindingTypeFiltering, e.Sampler.Type)
		}},
		{bind_group.KindTexture3D, func(t *testing.T, e wgpu.BindGroupLayoutEntry) {
			assert.Equal(t, wgpu.TextureViewDimension3D, e.Texture.ViewDimension)
		}},
		{bind_group.KindStorageTexture, func(t *testing.T, e wgpu.BindGroupLayoutEntry) {
			assert.Equal(t, wgpu.StorageTextureAccessWriteOnly, e.StorageTexture.Access)
			assert.Equal(t, wgpu.TextureFormatRGBA8Unorm, e.StorageTexture.Format)
		}},
	}
	for _, tt := range tests {
		t.Run(tt.kind.String(), func(t *testing.T) {
			slot := bind_group.Slot{Binding: 3, Stage: bind_group.StageCompute, Kind: tt.kind}
			e := layoutEntry(slot, shader.KindCompute, wgpu.TextureFormatRGBA8Unorm)
			assert.Equal(t, uint32(3), e.Binding)
			assert.Equal(t, wgpu.ShaderStageCompute, e.Visibility)
			tt.check(t, e)
		})
	}
}

func TestStorageTextureFormatFollowsBoundTexture(t *testing.T) {
	tex := resource.NewTextureBufferWithFormat("field", resource.TextureFormatRGBA32Float, resource.TextureDimension2D)
	groups := []bind_group.BindGroup{
		bind_group.NewBindGroup("output", bind_group.StorageTexture("field", bind_group.StageCompute, tex)),
	}
	slot := bind_group.Describe(groups)[0][0]

	assert.Equal(t, wgpu.TextureFormatRGBA32Float, storageTextureFormat(groups, slot))
}

func TestPrimitiveTopology(t *testing.T) {
	assert.Equal(t, wgpu.PrimitiveTopologyTriangleList, primitiveTopology(pipeline.TopologyTriangleList))
	assert.Equal(t, wgpu.PrimitiveTopologyPointList, primitiveTopology(pipeline.TopologyPointList))
	assert.Equal(t, wgpu.PrimitiveTopologyLineStrip, primitiveTopology(pipeline.TopologyLineStrip))
}

func TestScissorRect(t *testing.T) {
	tests := []struct {
		name       string
		rect       *pipeline.ScissorsRect
		x, y, w, h uint32
	}{
		{"nil resets to full surface", nil, 0, 0, 800, 600},
		{"inside surface", &pipeline.ScissorsRect{ClipMinX: 10, ClipMinY: 20, Width: 100, Height: 50}, 10, 20, 100, 50},
		{"clamped to surface edge", &pipeline.ScissorsRect{ClipMinX: 700, ClipMinY: 500, Width: 300, Height: 300}, 700, 500, 100, 100},
		{"origin past surface", &pipeline.ScissorsRect{ClipMinX: 900, ClipMinY: 700, Width: 10, Height: 10}, 800, 600, 0, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			x, y, w, h := scissorRect(tt.rect, 800, 600)
			assert.Equal(t, [4]uint32{tt.x, tt.y, tt.w, tt.h}, [4]uint32{x, y, w, h})
		})
	}
}

func TestNewWGPUBackendRejectsPlainSurface(t *testing.T) {
	_, err := NewWGPUBackend(plainSurface{}, BackendConfig{SampleCount: MSAA4x})
	assert.Error(t, err)
}

type plainSurface struct{}

func (plainSurface) Width() int  { return 1 }
func (plainSurface) Height() int { return 1 }

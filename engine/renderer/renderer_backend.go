package renderer

import (
	"github.com/Carmen-Shannon/oxy-pipeline/common"
	"github.com/Carmen-Shannon/oxy-pipeline/engine/renderer/bind_group"
	"github.com/Carmen-Shannon/oxy-pipeline/engine/renderer/pipeline"
	"github.com/Carmen-Shannon/oxy-pipeline/engine/renderer/resource"
)

// PresentMode controls how rendered frames are presented to the display surface.
type PresentMode int

const (
	// PresentModeVSync waits for the next vertical blank before presenting, capping frame rate
	// to the monitor's refresh rate. Eliminates tearing.
	PresentModeVSync PresentMode = iota

	// PresentModeUncapped presents frames immediately without waiting for vertical blank.
	// May cause screen tearing but provides the lowest latency.
	PresentModeUncapped
)

// MSAASampleCount controls the number of samples used for multisample anti-aliasing (MSAA).
// Only specific power-of-two values are valid for GPU hardware. WebGPU guarantees support for
// 1 (off) and 4; higher values (8, 16) are adapter-dependent and may not be available.
type MSAASampleCount uint32

const (
	// MSAAOff disables multisample anti-aliasing (sample count 1).
	MSAAOff MSAASampleCount = 1

	// MSAA4x enables 4× multisample anti-aliasing. This is the default.
	MSAA4x MSAASampleCount = 4

	// MSAA8x enables 8× multisample anti-aliasing. Adapter-dependent; not all hardware supports this.
	MSAA8x MSAASampleCount = 8

	// MSAA16x enables 16× multisample anti-aliasing. Adapter-dependent; not all hardware supports this.
	MSAA16x MSAASampleCount = 16
)

// Valid reports whether c is one of the supported sample counts.
func (c MSAASampleCount) Valid() bool {
	switch c {
	case MSAAOff, MSAA4x, MSAA8x, MSAA16x:
		return true
	default:
		return false
	}
}

// Surface is the drawable area the backend presents to. Windows implement it.
type Surface interface {
	Width() int
	Height() int
}

// BackendConfig is the configuration handed to a BackendFactory.
type BackendConfig struct {
	PresentMode          PresentMode
	SampleCount          MSAASampleCount
	ForceFallbackAdapter bool
}

// BackendFactory creates the backend for a surface. It may block until the device is ready.
type BackendFactory func(surface Surface, config BackendConfig) (Backend, error)

// TextureDescriptor describes a texture upload.
type TextureDescriptor struct {
	Width     uint32
	Height    uint32
	Format    resource.TextureFormat
	Dimension resource.TextureDimension
	Usage     resource.TextureUsage
}

// Backend performs the native GPU work the Renderer sequences: surface management, resource
// uploads, pipeline compilation, bind group creation and command submission.
// It never decides when these happen.
type Backend interface {
	// Resize reconfigures the surface and its attachments for a new size.
	//
	// Parameters:
	//   - width: the new width of the surface in pixels
	//   - height: the new height of the surface in pixels
	Resize(width, height int)

	// BeginFrame acquires the next surface texture and starts recording a frame that clears to clear.
	//
	// Parameters:
	//   - clear: the clear color of the frame
	//
	// Returns:
	//   - error: an error if the surface texture could not be acquired
	BeginFrame(clear common.Color) error

	// SubmitFrame submits everything recorded since BeginFrame and presents the surface.
	//
	// Returns:
	//   - error: an error if the recorded commands could not be finished
	SubmitFrame() error

	// UploadVertexBuffer creates vertex and optional index buffers holding the given data.
	//
	// Parameters:
	//   - label: the debug label
	//   - attributes: interleaved vertex bytes
	//   - indices: optional 32-bit indices
	//
	// Returns:
	//   - resource.Native: the backend vertex buffer
	//   - error: an error if a buffer could not be created
	UploadVertexBuffer(label string, attributes []byte, indices []uint32) (resource.Native, error)

	// UploadTexture creates a texture and writes one byte slice per layer.
	//
	// Parameters:
	//   - label: the debug label
	//   - desc: the texture extent, format, dimension and usage
	//   - layers: the texel data of each layer
	//
	// Returns:
	//   - resource.Native: the backend texture
	//   - error: an error if the texture could not be created
	UploadTexture(label string, desc TextureDescriptor, layers [][]byte) (resource.Native, error)

	// UploadUniformBuffer writes data to a uniform buffer. prev is the buffer the handle already
	// holds, which the backend may write into when it is large enough.
	//
	// Parameters:
	//   - prev: the handle's current backend buffer, or nil
	//   - label: the debug label
	//   - data: the buffer contents
	//
	// Returns:
	//   - resource.Native: the buffer now holding data
	//   - error: an error if a buffer could not be created
	UploadUniformBuffer(prev resource.Native, label string, data []byte) (resource.Native, error)

	// UploadStorageBuffer writes data to a storage buffer, with the same reuse rules as UploadUniformBuffer.
	//
	// Parameters:
	//   - prev: the handle's current backend buffer, or nil
	//   - label: the debug label
	//   - data: the buffer contents
	//
	// Returns:
	//   - resource.Native: the buffer now holding data
	//   - error: an error if a buffer could not be created
	UploadStorageBuffer(prev resource.Native, label string, data []byte) (resource.Native, error)

	// CreateSampler creates a sampler. Zero fields of data fall back to linear filtering with repeat addressing.
	//
	// Parameters:
	//   - label: the debug label
	//   - data: the sampler configuration
	//
	// Returns:
	//   - resource.Native: the backend sampler
	//   - error: an error if the sampler could not be created
	CreateSampler(label string, data common.SamplerStagingData) (resource.Native, error)

	// CreateShaderModule compiles WGSL source into a shader module.
	//
	// Parameters:
	//   - name: the debug name
	//   - code: the WGSL source
	//
	// Returns:
	//   - resource.Native: the backend shader module
	//   - error: an error if the source was rejected
	CreateShaderModule(name, code string) (resource.Native, error)

	// CompilePipeline builds a render or compute pipeline from a layout whose shader is loaded.
	//
	// Parameters:
	//   - layout: the pipeline layout
	//
	// Returns:
	//   - pipeline.Compiled: the compiled pipeline, owned by the caller
	//   - error: an error if the layout does not fit the shader or compilation failed
	CompilePipeline(layout *pipeline.Layout) (pipeline.Compiled, error)

	// CreateBindGroup creates the backend bind group for one resolved group of a compiled pipeline.
	//
	// Parameters:
	//   - compiled: the pipeline the group belongs to
	//   - index: the @group index
	//   - label: the debug label
	//   - entries: the resolved entries in @binding order
	//
	// Returns:
	//   - resource.Native: the backend bind group
	//   - error: an error if the bind group could not be created
	CreateBindGroup(compiled pipeline.Compiled, index int, label string, entries []bind_group.Entry) (resource.Native, error)

	// RunRenderPipeline records a draw into the current frame.
	//
	// Parameters:
	//   - compiled: a render pipeline
	//   - vertices: the loaded vertex buffer to draw
	//   - bindings: the bindings resolved against compiled
	//   - options: draw range and scissor
	//
	// Returns:
	//   - error: an error if no frame is being recorded
	RunRenderPipeline(compiled pipeline.Compiled, vertices *resource.VertexBuffer, bindings *bind_group.Bindings, options pipeline.DrawOptions) error

	// RunComputePipeline records a compute dispatch into the current frame. Dispatches are
	// submitted ahead of the frame's draws.
	//
	// Parameters:
	//   - compiled: a compute pipeline
	//   - bindings: the bindings resolved against compiled
	//   - workGroups: the number of work groups in each dimension
	//
	// Returns:
	//   - error: an error if no frame is being recorded
	RunComputePipeline(compiled pipeline.Compiled, bindings *bind_group.Bindings, workGroups pipeline.WorkGroups) error

	// Release frees the device, surface and every frame resource the backend owns.
	Release()
}

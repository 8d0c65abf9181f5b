package renderer

import (
	"fmt"

	"github.com/Carmen-Shannon/oxy-pipeline/common"
	"github.com/Carmen-Shannon/oxy-pipeline/engine/renderer/bind_group"
	"github.com/Carmen-Shannon/oxy-pipeline/engine/renderer/mesh"
	"github.com/Carmen-Shannon/oxy-pipeline/engine/renderer/pipeline"
	"github.com/Carmen-Shannon/oxy-pipeline/engine/renderer/resource"
	"github.com/Carmen-Shannon/oxy-pipeline/engine/renderer/shader"
)

// Shaders is the set of shader assets the frame-bind step compiles. shader.Store implements it.
// Generation must move whenever a shader is added, changes source or is removed.
type Shaders interface {
	Each(fn func(shader.Shader))
	Generation() uint64
}

// renderer is the implementation of the Renderer interface.
type renderer struct {
	clearColor common.Color
	cycle      uint
	backend    Backend
	loaded     bool
	epoch      uint64
	shadersGen uint64
	known      map[shader.ID]bool

	pipelines *pipeline.Cache

	factory BackendFactory
	config  BackendConfig
}

// Renderer sequences resource uploads, pipeline compilation and frame submission on top of a Backend.
//
// A Renderer starts unbound. Startup binds the backend exactly once; every operation that
// touches the backend panics with ErrNotReady before that. The Renderer has no internal locking:
// the caller must run Startup, BeginFrame, the frame's loads and draws, EndFrame and Resize
// from one goroutine at a time.
type Renderer interface {
	// SetClearColor sets the color the next frame clears to.
	//
	// Parameters:
	//   - color: the clear color
	SetClearColor(color common.Color)

	// ClearColor returns the current clear color.
	//
	// Returns:
	//   - common.Color: the clear color
	ClearColor() common.Color

	// Cycle returns the frame counter. It starts at 1, advances at every EndFrame and never reads 0.
	//
	// Returns:
	//   - uint: the current frame cycle
	Cycle() uint

	// Loaded reports whether every known shader compiled since the last reload or pipeline drop.
	//
	// Returns:
	//   - bool: true when the frame-bind step can skip the shader pass
	Loaded() bool

	// Ready reports whether Startup has bound a backend.
	//
	// Returns:
	//   - bool: true after Startup succeeded
	Ready() bool

	// Epoch returns the reload epoch. Shader modules loaded in an earlier epoch are recompiled.
	//
	// Returns:
	//   - uint64: the current epoch
	Epoch() uint64

	// LoadVertexBuffer uploads vertex data and optional indices, replacing whatever buf held.
	//
	// Parameters:
	//   - buf: the vertex buffer handle
	//   - attributes: interleaved vertex bytes
	//   - indices: optional 32-bit indices, nil for non-indexed draws
	//   - count: the number of vertices in attributes
	//
	// Returns:
	//   - error: an error if the upload failed
	LoadVertexBuffer(buf *resource.VertexBuffer, attributes []byte, indices []uint32, count uint32) error

	// LoadTextureBuffer uploads texture layers with the default usage (sampled and copy destination).
	//
	// Parameters:
	//   - buf: the texture handle
	//   - width: the texture width in texels
	//   - height: the texture height in texels
	//   - layers: the texel data of each layer
	//
	// Returns:
	//   - error: an error if the upload failed
	LoadTextureBuffer(buf *resource.TextureBuffer, width, height uint32, layers [][]byte) error

	// LoadTextureBufferWithUsage uploads texture layers with explicit usage flags.
	//
	// Parameters:
	//   - buf: the texture handle
	//   - width: the texture width in texels
	//   - height: the texture height in texels
	//   - layers: the texel data of each layer
	//   - usage: the usage flags, e.g. with TextureUsageStorageBinding for storage textures
	//
	// Returns:
	//   - error: an error if the upload failed
	LoadTextureBufferWithUsage(buf *resource.TextureBuffer, width, height uint32, layers [][]byte, usage resource.TextureUsage) error

	// LoadUniformBuffer uploads uniform data.
	//
	// Parameters:
	//   - buf: the uniform buffer handle
	//   - data: the buffer contents
	//
	// Returns:
	//   - error: an error if the upload failed
	LoadUniformBuffer(buf *resource.UniformBuffer, data []byte) error

	// LoadStorageBuffer uploads storage data.
	//
	// Parameters:
	//   - buf: the storage buffer handle
	//   - data: the buffer contents
	//
	// Returns:
	//   - error: an error if the upload failed
	LoadStorageBuffer(buf *resource.StorageBuffer, data []byte) error

	// LoadSampler creates the sampler for a handle.
	//
	// Parameters:
	//   - s: the sampler handle
	//   - data: the sampler configuration, the zero value is linear filtering with repeat addressing
	//
	// Returns:
	//   - error: an error if the sampler could not be created
	LoadSampler(s *resource.Sampler, data common.SamplerStagingData) error

	// LoadShaderModule compiles WGSL source into a shader module handle.
	//
	// Parameters:
	//   - module: the shader module handle
	//   - name: the debug name
	//   - code: the WGSL source
	//
	// Returns:
	//   - error: an error if the backend rejected the source
	LoadShaderModule(module *resource.ShaderModule, name, code string) error

	// Bind makes sure a compiled pipeline exists for the layout's shader, compiling and caching it
	// on first use, then resolves the layout's bind groups against it and stores the result on p.
	// p.Bindings is only replaced when resolution succeeds. A failed compile is not cached.
	// Once bound, p stays tied to its shader until p.Release.
	//
	// Parameters:
	//   - p: the pipeline to bind
	//   - layout: the shader, bind groups and options to bind with
	//
	// Returns:
	//   - error: ErrShaderMismatch, ErrShaderNotLoaded, a compile error, or a bind_group error
	Bind(p *pipeline.Pipeline, layout pipeline.Layout) error

	// Run records a draw of m with p's compiled render pipeline into the current frame.
	//
	// Parameters:
	//   - p: a pipeline bound to a render shader
	//   - m: a loaded mesh
	//
	// Returns:
	//   - error: ErrPipelineNotFound, ErrPipelineKind, ErrStaleBindings, ErrNilMesh, or a backend error
	Run(p *pipeline.Pipeline, m mesh.Mesh) error

	// Compute records a dispatch with p's compiled compute pipeline into the current frame.
	//
	// Parameters:
	//   - p: a pipeline bound to a compute shader
	//   - workGroups: the number of work groups in each dimension
	//
	// Returns:
	//   - error: ErrPipelineNotFound, ErrPipelineKind, ErrStaleBindings, or a backend error
	Compute(p *pipeline.Pipeline, workGroups pipeline.WorkGroups) error

	// Reload drops every compiled pipeline and starts a new epoch, so the next frame-bind
	// recompiles every shader from source. Shaders keep reporting Loaded with their old module
	// until that frame-bind, so a Bind issued after Reload in the same frame compiles its
	// pipeline from the previous module. Call Reload between frames.
	Reload()

	// DropPipeline drops the compiled pipeline of one shader and clears Loaded.
	//
	// Parameters:
	//   - id: the shader ID
	//
	// Returns:
	//   - bool: true if a pipeline was cached for id
	DropPipeline(id shader.ID) bool

	// DropAllPipelines drops every compiled pipeline and clears Loaded.
	//
	// Returns:
	//   - int: the number of pipelines dropped
	DropAllPipelines() int

	// HasPipeline reports whether a compiled pipeline is cached for a shader.
	//
	// Parameters:
	//   - id: the shader ID
	//
	// Returns:
	//   - bool: true if cached
	HasPipeline(id shader.ID) bool

	// CacheStats returns the pipeline cache counters.
	//
	// Returns:
	//   - pipeline.CacheStats: the counters
	CacheStats() pipeline.CacheStats

	// Startup creates the backend for surface. Later calls are no-ops.
	//
	// Parameters:
	//   - surface: the surface to render to
	//
	// Returns:
	//   - error: an error if the backend could not be created
	Startup(surface Surface) error

	// BeginFrame starts a frame that clears to the clear color. When the Generation of shaders has
	// moved since the last frame, it drops the pipelines of shaders whose source changed or that were
	// removed and clears Loaded. Unless Loaded, it then loads every shader in shaders that is not
	// loaded in the current epoch, and sets Loaded only if all of them ended up loaded. Compile
	// failures are logged and retried on the next frame.
	//
	// Parameters:
	//   - shaders: the shader assets to keep compiled, may be nil
	//
	// Returns:
	//   - error: an error if the backend could not begin the frame
	BeginFrame(shaders Shaders) error

	// EndFrame submits the frame and advances the cycle, wrapping past the maximum to 1.
	// The cycle advances even if submission fails.
	//
	// Returns:
	//   - error: the submission error
	EndFrame() error

	// Resize forwards a new surface size to the backend.
	//
	// Parameters:
	//   - width: the new width in pixels
	//   - height: the new height in pixels
	Resize(width, height int)

	// Shutdown drops every compiled pipeline and releases the backend. The Renderer is unbound afterwards.
	Shutdown()
}

var _ Renderer = &renderer{}
var _ shader.ModuleLoader = &renderer{}
var _ mesh.VertexLoader = &renderer{}

// NewRenderer creates an unbound Renderer with all specified options applied.
// The backend is created later by Startup.
//
// Parameters:
//   - options: variadic list of RendererBuilderOption functions to configure the Renderer
//
// Returns:
//   - Renderer: the unbound renderer
func NewRenderer(options ...RendererBuilderOption) Renderer {
	r := &renderer{
		clearColor: common.DefaultClearColor,
		cycle:      1,
		epoch:      1,
		pipelines:  pipeline.NewCache(),
		factory:    NewWGPUBackend,
		config: BackendConfig{
			PresentMode: PresentModeUncapped,
			SampleCount: MSAA4x,
		},
	}
	for _, opt := range options {
		opt(r)
	}
	return r
}

// mustBackend returns the bound backend or panics with ErrNotReady.
func (r *renderer) mustBackend() Backend {
	if r.backend == nil {
		panic(ErrNotReady)
	}
	return r.backend
}

func (r *renderer) SetClearColor(color common.Color) {
	r.clearColor = color
}

func (r *renderer) ClearColor() common.Color {
	return r.clearColor
}

func (r *renderer) Cycle() uint {
	return r.cycle
}

func (r *renderer) Loaded() bool {
	return r.loaded
}

func (r *renderer) Ready() bool {
	return r.backend != nil
}

func (r *renderer) Epoch() uint64 {
	return r.epoch
}

func (r *renderer) LoadVertexBuffer(buf *resource.VertexBuffer, attributes []byte, indices []uint32, count uint32) error {
	backend := r.mustBackend()
	native, err := backend.UploadVertexBuffer(buf.Label(), attributes, indices)
	if err != nil {
		return fmt.Errorf("failed to load vertex buffer %s: %w", buf.Label(), err)
	}
	if len(indices) > 0 {
		buf.Set(native, uint32(len(indices)), true)
	} else {
		buf.Set(native, count, false)
	}
	return nil
}

func (r *renderer) LoadTextureBuffer(buf *resource.TextureBuffer, width, height uint32, layers [][]byte) error {
	return r.LoadTextureBufferWithUsage(buf, width, height, layers, resource.DefaultTextureUsage)
}

func (r *renderer) LoadTextureBufferWithUsage(buf *resource.TextureBuffer, width, height uint32, layers [][]byte, usage resource.TextureUsage) error {
	backend := r.mustBackend()
	if len(layers) == 0 {
		return fmt.Errorf("failed to load texture %s: at least one layer is required", buf.Label())
	}
	desc := TextureDescriptor{
		Width:     width,
		Height:    height,
		Format:    buf.Format(),
		Dimension: buf.Dimension(),
		Usage:     usage,
	}
	native, err := backend.UploadTexture(buf.Label(), desc, layers)
	if err != nil {
		return fmt.Errorf("failed to load texture %s: %w", buf.Label(), err)
	}
	buf.Set(native, width, height, uint32(len(layers)), usage)
	return nil
}

func (r *renderer) LoadUniformBuffer(buf *resource.UniformBuffer, data []byte) error {
	backend := r.mustBackend()
	native, err := backend.UploadUniformBuffer(buf.Native(), buf.Label(), data)
	if err != nil {
		return fmt.Errorf("failed to load uniform buffer %s: %w", buf.Label(), err)
	}
	buf.Set(native, uint64(len(data)))
	return nil
}

func (r *renderer) LoadStorageBuffer(buf *resource.StorageBuffer, data []byte) error {
	backend := r.mustBackend()
	native, err := backend.UploadStorageBuffer(buf.Native(), buf.Label(), data)
	if err != nil {
		return fmt.Errorf("failed to load storage buffer %s: %w", buf.Label(), err)
	}
	buf.Set(native, uint64(len(data)))
	return nil
}

func (r *renderer) LoadSampler(s *resource.Sampler, data common.SamplerStagingData) error {
	backend := r.mustBackend()
	native, err := backend.CreateSampler(s.Label(), data)
	if err != nil {
		return fmt.Errorf("failed to load sampler %s: %w", s.Label(), err)
	}
	s.Set(native)
	return nil
}

func (r *renderer) LoadShaderModule(module *resource.ShaderModule, name, code string) error {
	backend := r.mustBackend()
	native, err := backend.CreateShaderModule(name, code)
	if err != nil {
		return err
	}
	module.Set(native, name)
	return nil
}

func (r *renderer) Bind(p *pipeline.Pipeline, layout pipeline.Layout) error {
	backend := r.mustBackend()
	if layout.Shader == nil {
		return fmt.Errorf("%w: layout %s has no shader", ErrShaderNotLoaded, layout.Label)
	}

	id := layout.Shader.ID()
	if p.Shader != 0 && p.Shader != id {
		return fmt.Errorf("%w: pipeline is bound to shader %d, layout %s uses shader %d", ErrShaderMismatch, p.Shader, layout.Label, id)
	}
	if !layout.Shader.Loaded() {
		return fmt.Errorf("%w: %s", ErrShaderNotLoaded, layout.Shader.Name())
	}

	entry, ok := r.pipelines.Get(id)
	if !ok {
		compiled, err := backend.CompilePipeline(&layout)
		if err != nil {
			return fmt.Errorf("failed to compile pipeline %s for shader %s: %w", layout.Label, layout.Shader.Name(), err)
		}
		entry = pipeline.Entry{Compiled: compiled, Generation: r.pipelines.Insert(id, compiled)}
		common.Logger().Debug("pipeline compiled",
			"label", layout.Label, "shader", layout.Shader.Name(), "id", id,
			"kind", compiled.Kind().String(), "generation", entry.Generation)
	}

	bindings, err := bind_group.Assemble(entry.Compiled.Layout(), entry.Generation, layout.Bindings,
		func(index int, label string, entries []bind_group.Entry) (resource.Native, error) {
			return backend.CreateBindGroup(entry.Compiled, index, label, entries)
		})
	if err != nil {
		return fmt.Errorf("failed to bind pipeline %s: %w", layout.Label, err)
	}

	p.Bindings.Release()
	p.Shader = id
	p.Bindings = bindings
	return nil
}

// lookup finds the compiled pipeline for p and checks its kind and that p's bindings belong to it.
func (r *renderer) lookup(p *pipeline.Pipeline, kind shader.Kind) (pipeline.Compiled, error) {
	entry, ok := r.pipelines.Get(p.Shader)
	if !ok {
		return nil, fmt.Errorf("%w: shader %d", ErrPipelineNotFound, p.Shader)
	}
	if entry.Compiled.Kind() != kind {
		return nil, fmt.Errorf("%w: shader %d is a %s pipeline, not %s", ErrPipelineKind, p.Shader, entry.Compiled.Kind(), kind)
	}
	if p.Bindings.Generation() != entry.Generation {
		return nil, fmt.Errorf("%w: shader %d", ErrStaleBindings, p.Shader)
	}
	return entry.Compiled, nil
}

func (r *renderer) Run(p *pipeline.Pipeline, m mesh.Mesh) error {
	backend := r.mustBackend()
	compiled, err := r.lookup(p, shader.KindRender)
	if err != nil {
		return err
	}
	if m == nil {
		return ErrNilMesh
	}
	if !m.Loaded() {
		return fmt.Errorf("%w: mesh %s", bind_group.ErrUnloadedResource, m.Label())
	}
	return backend.RunRenderPipeline(compiled, m.VertexBuffer(), &p.Bindings, p.Options)
}

func (r *renderer) Compute(p *pipeline.Pipeline, workGroups pipeline.WorkGroups) error {
	backend := r.mustBackend()
	compiled, err := r.lookup(p, shader.KindCompute)
	if err != nil {
		return err
	}
	return backend.RunComputePipeline(compiled, &p.Bindings, workGroups)
}

func (r *renderer) Reload() {
	r.mustBackend()
	r.epoch++
	n := r.DropAllPipelines()
	common.Logger().Info("renderer reloaded", "epoch", r.epoch, "dropped", n)
}

func (r *renderer) DropPipeline(id shader.ID) bool {
	r.mustBackend()
	r.loaded = false
	dropped := r.pipelines.Drop(id)
	if dropped {
		common.Logger().Debug("pipeline dropped", "id", id)
	}
	return dropped
}

func (r *renderer) DropAllPipelines() int {
	r.mustBackend()
	r.loaded = false
	return r.pipelines.DropAll()
}

func (r *renderer) HasPipeline(id shader.ID) bool {
	return r.pipelines.Has(id)
}

func (r *renderer) CacheStats() pipeline.CacheStats {
	return r.pipelines.Stats()
}

func (r *renderer) Startup(surface Surface) error {
	if r.backend != nil {
		return nil
	}
	backend, err := r.factory(surface, r.config)
	if err != nil {
		return fmt.Errorf("failed to initialize renderer backend: %w", err)
	}
	r.backend = backend
	common.Logger().Info("renderer backend ready",
		"width", surface.Width(), "height", surface.Height(),
		"msaa", uint32(r.config.SampleCount))
	return nil
}

func (r *renderer) BeginFrame(shaders Shaders) error {
	backend := r.mustBackend()
	if err := backend.BeginFrame(r.clearColor); err != nil {
		return err
	}

	if shaders == nil {
		return nil
	}
	if gen := shaders.Generation(); gen != r.shadersGen {
		r.syncShaders(shaders)
		r.shadersGen = gen
	}
	if r.loaded {
		return nil
	}

	loaded := true
	shaders.Each(func(s shader.Shader) {
		if err := s.Load(r); err != nil {
			common.Logger().Warn("shader compile failed", "shader", s.Name(), "id", s.ID(), "error", err)
		}
		if !s.Loaded() {
			loaded = false
		}
	})
	r.loaded = loaded
	return nil
}

// syncShaders drops the pipelines of shaders that were unloaded by a source change or removed
// from shaders since the last sync, and clears Loaded so the shader pass runs again.
func (r *renderer) syncShaders(shaders Shaders) {
	live := make(map[shader.ID]bool)
	shaders.Each(func(s shader.Shader) {
		live[s.ID()] = true
		if !s.Loaded() && r.pipelines.Drop(s.ID()) {
			common.Logger().Debug("pipeline dropped for changed shader", "shader", s.Name(), "id", s.ID())
		}
	})
	for id := range r.known {
		if !live[id] && r.pipelines.Drop(id) {
			common.Logger().Debug("pipeline dropped for removed shader", "id", id)
		}
	}
	r.known = live
	r.loaded = false
}

func (r *renderer) EndFrame() error {
	backend := r.mustBackend()
	err := backend.SubmitFrame()

	r.cycle++
	if r.cycle == 0 {
		r.cycle = 1
	}
	return err
}

func (r *renderer) Resize(width, height int) {
	r.mustBackend().Resize(width, height)
}

func (r *renderer) Shutdown() {
	if r.backend == nil {
		return
	}
	r.pipelines.DropAll()
	r.loaded = false
	r.backend.Release()
	r.backend = nil
}

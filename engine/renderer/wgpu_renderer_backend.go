package renderer

import (
	"errors"
	"fmt"
	"runtime"
	"sync"

	"github.com/Carmen-Shannon/oxy-pipeline/common"
	"github.com/Carmen-Shannon/oxy-pipeline/engine/renderer/bind_group"
	"github.com/Carmen-Shannon/oxy-pipeline/engine/renderer/mesh"
	"github.com/Carmen-Shannon/oxy-pipeline/engine/renderer/pipeline"
	"github.com/Carmen-Shannon/oxy-pipeline/engine/renderer/resource"
	"github.com/Carmen-Shannon/oxy-pipeline/engine/renderer/shader"
	"github.com/cogentcore/webgpu/wgpu"
)

// WGPUSurface is a Surface that can describe itself to WebGPU. The GLFW window implements it.
type WGPUSurface interface {
	Surface
	SurfaceDescriptor() *wgpu.SurfaceDescriptor
}

// wgpuVertexBuffer is the native form of a resource.VertexBuffer.
type wgpuVertexBuffer struct {
	vertex *wgpu.Buffer
	index  *wgpu.Buffer
}

func (v *wgpuVertexBuffer) Release() {
	if v.vertex != nil {
		v.vertex.Release()
	}
	if v.index != nil {
		v.index.Release()
	}
}

// wgpuTexture is the native form of a resource.TextureBuffer.
type wgpuTexture struct {
	texture *wgpu.Texture
	view    *wgpu.TextureView
}

func (t *wgpuTexture) Release() {
	t.view.Release()
	t.texture.Release()
}

// wgpuBuffer is the native form of uniform and storage buffers; size is the allocated size.
type wgpuBuffer struct {
	buffer *wgpu.Buffer
	size   uint64
}

func (b *wgpuBuffer) Release() {
	b.buffer.Release()
}

// wgpuPipeline is a compiled render or compute pipeline with the layouts it was created from.
type wgpuPipeline struct {
	kind           shader.Kind
	layout         bind_group.Layout
	groupLayouts   []*wgpu.BindGroupLayout
	pipelineLayout *wgpu.PipelineLayout
	render         *wgpu.RenderPipeline
	compute        *wgpu.ComputePipeline
}

var _ pipeline.Compiled = &wgpuPipeline{}

func (p *wgpuPipeline) Kind() shader.Kind {
	return p.kind
}

func (p *wgpuPipeline) Layout() bind_group.Layout {
	return p.layout
}

func (p *wgpuPipeline) Release() {
	if p.render != nil {
		p.render.Release()
	}
	if p.compute != nil {
		p.compute.Release()
	}
	if p.pipelineLayout != nil {
		p.pipelineLayout.Release()
	}
	for _, l := range p.groupLayouts {
		l.Release()
	}
}

type wgpuRendererBackend struct {
	mu     sync.Mutex
	device *wgpu.Device
	queue  *wgpu.Queue

	instance *wgpu.Instance
	adapter  *wgpu.Adapter
	surface  *wgpu.Surface

	surfaceFormat        wgpu.TextureFormat
	surfaceWidth         uint32
	surfaceHeight        uint32
	msaaTexture          *wgpu.Texture
	msaaTextureView      *wgpu.TextureView
	depthTexture         *wgpu.Texture
	depthTextureView     *wgpu.TextureView
	renderPassDescriptor *wgpu.RenderPassDescriptor

	presentMode wgpu.PresentMode
	sampleCount MSAASampleCount

	// per-frame state, valid between BeginFrame and SubmitFrame
	frameEncoder   *wgpu.CommandEncoder
	framePass      *wgpu.RenderPassEncoder
	frameSurface   *wgpu.Texture
	frameView      *wgpu.TextureView
	computeEncoder *wgpu.CommandEncoder
}

var _ Backend = &wgpuRendererBackend{}

// NewWGPUBackend is the default BackendFactory. It creates a WebGPU instance, adapter and device
// for surface and configures the surface at its current size. surface must implement WGPUSurface.
//
// The calling goroutine is locked to its OS thread, since the surface belongs to the window's thread.
//
// Parameters:
//   - surface: the window to render to
//   - config: the present mode, sample count and adapter selection
//
// Returns:
//   - Backend: the WebGPU backend
//   - error: an error if the surface is unsupported or no adapter or device is available
func NewWGPUBackend(surface Surface, config BackendConfig) (Backend, error) {
	ws, ok := surface.(WGPUSurface)
	if !ok {
		return nil, errors.New("surface does not provide a WebGPU surface descriptor")
	}
	desc := ws.SurfaceDescriptor()
	if desc == nil {
		return nil, errors.New("surface is not initialized")
	}
	if !config.SampleCount.Valid() {
		return nil, fmt.Errorf("unsupported MSAA sample count %d", config.SampleCount)
	}

	runtime.LockOSThread()
	b := &wgpuRendererBackend{
		instance:    wgpu.CreateInstance(nil),
		presentMode: wgpu.PresentModeImmediate,
		sampleCount: config.SampleCount,
	}
	if config.PresentMode == PresentModeVSync {
		b.presentMode = wgpu.PresentModeFifo
	}
	b.surface = b.instance.CreateSurface(desc)

	a, err := b.instance.RequestAdapter(&wgpu.RequestAdapterOptions{
		ForceFallbackAdapter: config.ForceFallbackAdapter,
		CompatibleSurface:    b.surface,
	})
	if err != nil {
		b.Release()
		return nil, fmt.Errorf("failed to request adapter: %w", err)
	}
	b.adapter = a

	limits := wgpu.DefaultLimits()
	limits.MaxBindGroups = 8

	d, err := a.RequestDevice(&wgpu.DeviceDescriptor{
		Label: "Main Device",
		RequiredLimits: &wgpu.RequiredLimits{
			Limits: limits,
		},
	})
	if err != nil {
		b.Release()
		return nil, fmt.Errorf("failed to request device: %w", err)
	}
	b.device = d
	b.queue = d.GetQueue()

	if err := b.configureSurface(surface.Width(), surface.Height()); err != nil {
		b.Release()
		return nil, err
	}
	return b, nil
}

func (b *wgpuRendererBackend) configureSurface(width, height int) error {
	if width <= 0 || height <= 0 {
		// minimized; keep the previous attachments until a real size arrives
		return nil
	}

	capabilities := b.surface.GetCapabilities(b.adapter)
	if len(capabilities.Formats) == 0 {
		return errors.New("surface reports no supported formats")
	}
	b.surfaceFormat = capabilities.Formats[0]

	b.surface.Configure(b.adapter, b.device, &wgpu.SurfaceConfiguration{
		Usage:       wgpu.TextureUsageRenderAttachment,
		Format:      b.surfaceFormat,
		Width:       uint32(width),
		Height:      uint32(height),
		PresentMode: b.presentMode,
		AlphaMode:   capabilities.AlphaModes[0],
	})
	b.surfaceWidth, b.surfaceHeight = uint32(width), uint32(height)

	b.releaseAttachments()

	count := uint32(b.sampleCount)
	msaaEnabled := count > 1
	size := wgpu.Extent3D{Width: uint32(width), Height: uint32(height), DepthOrArrayLayers: 1}

	var err error
	if msaaEnabled {
		b.msaaTexture, err = b.device.CreateTexture(&wgpu.TextureDescriptor{
			Label:         "MSAA Texture",
			Size:          size,
			MipLevelCount: 1,
			SampleCount:   count,
			Dimension:     wgpu.TextureDimension2D,
			Format:        b.surfaceFormat,
			Usage:         wgpu.TextureUsageRenderAttachment,
		})
		if err != nil {
			return err
		}
		if b.msaaTextureView, err = b.msaaTexture.CreateView(nil); err != nil {
			return err
		}
	}

	b.depthTexture, err = b.device.CreateTexture(&wgpu.TextureDescriptor{
		Label:         "Depth Texture",
		Size:          size,
		MipLevelCount: 1,
		SampleCount:   count,
		Dimension:     wgpu.TextureDimension2D,
		Format:        wgpu.TextureFormatDepth24Plus,
		Usage:         wgpu.TextureUsageRenderAttachment,
	})
	if err != nil {
		return err
	}
	if b.depthTextureView, err = b.depthTexture.CreateView(nil); err != nil {
		return err
	}

	// With MSAA the pass draws into the MSAA view and resolves into the swapchain view set
	// in BeginFrame. Without it the swapchain view is the attachment itself.
	storeOp := wgpu.StoreOpStore
	if msaaEnabled {
		storeOp = wgpu.StoreOpDiscard
	}
	b.renderPassDescriptor = &wgpu.RenderPassDescriptor{
		ColorAttachments: []wgpu.RenderPassColorAttachment{
			{
				View:    b.msaaTextureView,
				LoadOp:  wgpu.LoadOpClear,
				StoreOp: storeOp,
			},
		},
		DepthStencilAttachment: &wgpu.RenderPassDepthStencilAttachment{
			View:            b.depthTextureView,
			DepthLoadOp:     wgpu.LoadOpClear,
			DepthStoreOp:    wgpu.StoreOpDiscard,
			DepthClearValue: 1.0,
		},
	}
	return nil
}

func (b *wgpuRendererBackend) releaseAttachments() {
	if b.msaaTextureView != nil {
		b.msaaTextureView.Release()
		b.msaaTexture.Release()
		b.msaaTextureView, b.msaaTexture = nil, nil
	}
	if b.depthTextureView != nil {
		b.depthTextureView.Release()
		b.depthTexture.Release()
		b.depthTextureView, b.depthTexture = nil, nil
	}
}

func (b *wgpuRendererBackend) Resize(width, height int) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if err := b.configureSurface(width, height); err != nil {
		common.Logger().Error("surface reconfigure failed", "width", width, "height", height, "error", err)
	}
}

func (b *wgpuRendererBackend) BeginFrame(clear common.Color) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.frameSurface != nil {
		return errors.New("previous frame surface not yet presented")
	}

	surfaceTexture, err := b.surface.GetCurrentTexture()
	if err != nil {
		return err
	}
	view, err := surfaceTexture.CreateView(nil)
	if err != nil {
		surfaceTexture.Release()
		return err
	}
	encoder, err := b.device.CreateCommandEncoder(nil)
	if err != nil {
		view.Release()
		surfaceTexture.Release()
		return err
	}
	computeEncoder, err := b.device.CreateCommandEncoder(nil)
	if err != nil {
		encoder.Release()
		view.Release()
		surfaceTexture.Release()
		return err
	}

	attachment := &b.renderPassDescriptor.ColorAttachments[0]
	attachment.ClearValue = wgpu.Color{R: clear.R, G: clear.G, B: clear.B, A: clear.A}
	if b.sampleCount > 1 {
		attachment.ResolveTarget = view
	} else {
		attachment.View = view
	}

	b.frameEncoder = encoder
	b.computeEncoder = computeEncoder
	b.framePass = encoder.BeginRenderPass(b.renderPassDescriptor)
	b.frameSurface = surfaceTexture
	b.frameView = view
	return nil
}

func (b *wgpuRendererBackend) SubmitFrame() error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.frameEncoder == nil {
		return errors.New("no frame in progress")
	}
	defer b.endFrame()

	// compute work is submitted first so a draw in the same frame sees its results
	computeBuffer, err := b.computeEncoder.Finish(nil)
	if err != nil {
		return fmt.Errorf("failed to finish compute commands: %w", err)
	}
	defer computeBuffer.Release()

	b.framePass.End()
	b.framePass = nil
	renderBuffer, err := b.frameEncoder.Finish(nil)
	if err != nil {
		return fmt.Errorf("failed to finish render commands: %w", err)
	}
	defer renderBuffer.Release()

	b.queue.Submit(computeBuffer, renderBuffer)
	b.surface.Present()
	return nil
}

// endFrame releases the per-frame state whether or not the frame was submitted.
func (b *wgpuRendererBackend) endFrame() {
	if b.framePass != nil {
		b.framePass.End()
		b.framePass = nil
	}
	b.frameEncoder.Release()
	b.computeEncoder.Release()
	b.frameView.Release()
	b.frameSurface.Release()
	b.frameEncoder, b.computeEncoder = nil, nil
	b.frameView, b.frameSurface = nil, nil
}

func (b *wgpuRendererBackend) UploadVertexBuffer(label string, attributes []byte, indices []uint32) (resource.Native, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if len(attributes) == 0 {
		return nil, errors.New("vertex data is empty")
	}

	data := common.AlignTo(attributes, 4)
	vertex, err := b.device.CreateBuffer(&wgpu.BufferDescriptor{
		Label: label + " Vertex Buffer",
		Size:  uint64(len(data)),
		Usage: wgpu.BufferUsageVertex | wgpu.BufferUsageCopyDst,
	})
	if err != nil {
		return nil, err
	}
	b.queue.WriteBuffer(vertex, 0, data)

	native := &wgpuVertexBuffer{vertex: vertex}
	if len(indices) > 0 {
		indexData := common.SliceToBytes(indices)
		native.index, err = b.device.CreateBuffer(&wgpu.BufferDescriptor{
			Label: label + " Index Buffer",
			Size:  uint64(len(indexData)),
			Usage: wgpu.BufferUsageIndex | wgpu.BufferUsageCopyDst,
		})
		if err != nil {
			native.Release()
			return nil, err
		}
		b.queue.WriteBuffer(native.index, 0, indexData)
	}
	return native, nil
}

func (b *wgpuRendererBackend) UploadTexture(label string, desc TextureDescriptor, layers [][]byte) (resource.Native, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	dimension := wgpu.TextureDimension2D
	viewDimension := wgpu.TextureViewDimension2D
	if desc.Dimension == resource.TextureDimension3D {
		dimension = wgpu.TextureDimension3D
		viewDimension = wgpu.TextureViewDimension3D
	} else if len(layers) > 1 {
		viewDimension = wgpu.TextureViewDimension2DArray
	}

	// writes need CopyDst regardless of the requested usage
	usage := wgpu.TextureUsage(desc.Usage) | wgpu.TextureUsageCopyDst
	tex, err := b.device.CreateTexture(&wgpu.TextureDescriptor{
		Label:     label + " Texture",
		Usage:     usage,
		Dimension: dimension,
		Size: wgpu.Extent3D{
			Width:              desc.Width,
			Height:             desc.Height,
			DepthOrArrayLayers: uint32(len(layers)),
		},
		Format:        desc.Format.WGPU(),
		MipLevelCount: 1,
		SampleCount:   1,
	})
	if err != nil {
		return nil, err
	}

	bytesPerRow := desc.Width * desc.Format.BytesPerPixel()
	for i, layer := range layers {
		if want := int(bytesPerRow * desc.Height); len(layer) != want {
			tex.Release()
			return nil, fmt.Errorf("layer %d holds %d bytes, want %d", i, len(layer), want)
		}
		b.queue.WriteTexture(
			&wgpu.ImageCopyTexture{
				Texture:  tex,
				MipLevel: 0,
				Origin:   wgpu.Origin3D{Z: uint32(i)},
				Aspect:   wgpu.TextureAspectAll,
			},
			layer,
			&wgpu.TextureDataLayout{
				Offset:       0,
				BytesPerRow:  bytesPerRow,
				RowsPerImage: desc.Height,
			},
			&wgpu.Extent3D{
				Width:              desc.Width,
				Height:             desc.Height,
				DepthOrArrayLayers: 1,
			},
		)
	}

	view, err := tex.CreateView(&wgpu.TextureViewDescriptor{
		Label:           label + " Texture View",
		Format:          desc.Format.WGPU(),
		Dimension:       viewDimension,
		BaseMipLevel:    0,
		MipLevelCount:   1,
		BaseArrayLayer:  0,
		ArrayLayerCount: arrayLayerCount(viewDimension, len(layers)),
		Aspect:          wgpu.TextureAspectAll,
	})
	if err != nil {
		tex.Release()
		return nil, err
	}
	return &wgpuTexture{texture: tex, view: view}, nil
}

func arrayLayerCount(dimension wgpu.TextureViewDimension, layers int) uint32 {
	if dimension == wgpu.TextureViewDimension3D {
		return 1
	}
	return uint32(layers)
}

func (b *wgpuRendererBackend) UploadUniformBuffer(prev resource.Native, label string, data []byte) (resource.Native, error) {
	return b.writeBuffer(prev, label+" Uniform Buffer", data, wgpu.BufferUsageUniform|wgpu.BufferUsageCopyDst)
}

func (b *wgpuRendererBackend) UploadStorageBuffer(prev resource.Native, label string, data []byte) (resource.Native, error) {
	return b.writeBuffer(prev, label+" Storage Buffer", data, wgpu.BufferUsageStorage|wgpu.BufferUsageCopyDst|wgpu.BufferUsageCopySrc)
}

// writeBuffer writes into prev when it is large enough and allocates a new buffer otherwise.
func (b *wgpuRendererBackend) writeBuffer(prev resource.Native, label string, data []byte, usage wgpu.BufferUsage) (resource.Native, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if len(data) == 0 {
		return nil, errors.New("buffer data is empty")
	}
	data = common.AlignTo(data, 16)

	if existing, ok := prev.(*wgpuBuffer); ok && existing.size >= uint64(len(data)) {
		b.queue.WriteBuffer(existing.buffer, 0, data)
		return existing, nil
	}

	buf, err := b.device.CreateBuffer(&wgpu.BufferDescriptor{
		Label: label,
		Size:  uint64(len(data)),
		Usage: usage,
	})
	if err != nil {
		return nil, err
	}
	b.queue.WriteBuffer(buf, 0, data)
	return &wgpuBuffer{buffer: buf, size: uint64(len(data))}, nil
}

func (b *wgpuRendererBackend) CreateSampler(label string, data common.SamplerStagingData) (resource.Native, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	samp, err := b.device.CreateSampler(&wgpu.SamplerDescriptor{
		Label:         label,
		AddressModeU:  common.Coalesce(data.AddressModeU, wgpu.AddressModeRepeat),
		AddressModeV:  common.Coalesce(data.AddressModeV, wgpu.AddressModeRepeat),
		AddressModeW:  common.Coalesce(data.AddressModeW, wgpu.AddressModeRepeat),
		MagFilter:     common.Coalesce(data.MagFilter, wgpu.FilterModeLinear),
		MinFilter:     common.Coalesce(data.MinFilter, wgpu.FilterModeLinear),
		MipmapFilter:  common.Coalesce(data.MipmapFilter, wgpu.MipmapFilterModeLinear),
		LodMinClamp:   common.Coalesce(data.LodMinClamp, 0.0),
		LodMaxClamp:   common.Coalesce(data.LodMaxClamp, 32.0),
		MaxAnisotropy: common.Coalesce(data.MaxAnisotropy, 1),
		Compare:       data.Compare,
	})
	if err != nil {
		return nil, err
	}
	return samp, nil
}

func (b *wgpuRendererBackend) CreateShaderModule(name, code string) (resource.Native, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	module, err := b.device.CreateShaderModule(&wgpu.ShaderModuleDescriptor{
		Label: name,
		WGSLDescriptor: &wgpu.ShaderModuleWGSLDescriptor{
			Code: code,
		},
	})
	if err != nil {
		return nil, err
	}
	return module, nil
}

// shaderStages maps a binding stage onto the stages of a pipeline. StageAll becomes every stage
// the pipeline actually has.
func shaderStages(stage bind_group.Stage, kind shader.Kind) wgpu.ShaderStage {
	switch stage {
	case bind_group.StageVertex:
		return wgpu.ShaderStageVertex
	case bind_group.StageFragment:
		return wgpu.ShaderStageFragment
	case bind_group.StageCompute:
		return wgpu.ShaderStageCompute
	default:
		if kind == shader.KindCompute {
			return wgpu.ShaderStageCompute
		}
		return wgpu.ShaderStageVertex | wgpu.ShaderStageFragment
	}
}

// layoutEntry builds the bind group layout entry of one slot.
func layoutEntry(slot bind_group.Slot, kind shader.Kind, storageFormat wgpu.TextureFormat) wgpu.BindGroupLayoutEntry {
	entry := wgpu.BindGroupLayoutEntry{
		Binding:    slot.Binding,
		Visibility: shaderStages(slot.Stage, kind),
	}
	switch slot.Kind {
	case bind_group.KindUniform:
		entry.Buffer.Type = wgpu.BufferBindingTypeUniform
	case bind_group.KindStorage:
		entry.Buffer.Type = wgpu.BufferBindingTypeStorage
	case bind_group.KindStorageAsUniform:
		entry.Buffer.Type = wgpu.BufferBindingTypeReadOnlyStorage
	case bind_group.KindSampler:
		entry.Sampler.Type = wgpu.SamplerBindingTypeFiltering
	case bind_group.KindTexture:
		entry.Texture.SampleType = wgpu.TextureSampleTypeFloat
		entry.Texture.ViewDimension = wgpu.TextureViewDimension2D
	case bind_group.KindTexture3D:
		entry.Texture.SampleType = wgpu.TextureSampleTypeFloat
		entry.Texture.ViewDimension = wgpu.TextureViewDimension3D
	case bind_group.KindStorageTexture:
		entry.StorageTexture.Access = wgpu.StorageTextureAccessWriteOnly
		entry.StorageTexture.Format = storageFormat
		entry.StorageTexture.ViewDimension = wgpu.TextureViewDimension2D
	}
	return entry
}

// storageTextureFormat picks the format of a storage texture slot from the resource bound to it,
// since the format is part of the layout.
func storageTextureFormat(groups []bind_group.BindGroup, slot bind_group.Slot) wgpu.TextureFormat {
	h := groups[slot.Group].Bindings[slot.Binding].Resource
	if tex, ok := h.(*resource.TextureBuffer); ok && tex != nil {
		return tex.Format().WGPU()
	}
	return resource.TextureFormatRGBA8Unorm.WGPU()
}

func (b *wgpuRendererBackend) CompilePipeline(layout *pipeline.Layout) (pipeline.Compiled, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	s := layout.Shader
	if s == nil || !s.Loaded() {
		return nil, errors.New("shader is not loaded")
	}
	slots := bind_group.Describe(layout.Bindings)
	if err := s.CheckLayout(slots); err != nil {
		return nil, err
	}
	module, ok := s.Module().Native().(*wgpu.ShaderModule)
	if !ok {
		return nil, fmt.Errorf("shader %s has no WebGPU module", s.Name())
	}

	compiled := &wgpuPipeline{kind: s.Kind(), layout: slots}
	for g, group := range slots {
		entries := make([]wgpu.BindGroupLayoutEntry, len(group))
		for i, slot := range group {
			var format wgpu.TextureFormat
			if slot.Kind == bind_group.KindStorageTexture {
				format = storageTextureFormat(layout.Bindings, slot)
			}
			entries[i] = layoutEntry(slot, compiled.kind, format)
		}
		bgl, err := b.device.CreateBindGroupLayout(&wgpu.BindGroupLayoutDescriptor{
			Label:   fmt.Sprintf("%s Group %d", layout.Label, g),
			Entries: entries,
		})
		if err != nil {
			compiled.Release()
			return nil, fmt.Errorf("failed to create bind group layout for group %d: %w", g, err)
		}
		compiled.groupLayouts = append(compiled.groupLayouts, bgl)
	}

	var err error
	compiled.pipelineLayout, err = b.device.CreatePipelineLayout(&wgpu.PipelineLayoutDescriptor{
		Label:            layout.Label,
		BindGroupLayouts: compiled.groupLayouts,
	})
	if err != nil {
		compiled.Release()
		return nil, err
	}

	entryPoints := s.EntryPoints()
	switch compiled.kind {
	case shader.KindCompute:
		compiled.compute, err = b.device.CreateComputePipeline(&wgpu.ComputePipelineDescriptor{
			Label:  layout.Label + " Compute Pipeline",
			Layout: compiled.pipelineLayout,
			Compute: wgpu.ProgrammableStageDescriptor{
				Module:     module,
				EntryPoint: entryPoints.Compute,
			},
		})
	case shader.KindRender:
		compiled.render, err = b.device.CreateRenderPipeline(b.renderPipelineDescriptor(layout, module, compiled.pipelineLayout))
	default:
		err = shader.ErrNoEntryPoint
	}
	if err != nil {
		compiled.Release()
		return nil, err
	}
	return compiled, nil
}

func (b *wgpuRendererBackend) renderPipelineDescriptor(layout *pipeline.Layout, module *wgpu.ShaderModule, pipelineLayout *wgpu.PipelineLayout) *wgpu.RenderPipelineDescriptor {
	opts := layout.Options
	entryPoints := layout.Shader.EntryPoints()

	var buffers []wgpu.VertexBufferLayout
	if layout.Mesh != nil {
		buffers = []wgpu.VertexBufferLayout{mesh.VertexLayout(layout.Mesh.Attributes())}
	}

	target := wgpu.ColorTargetState{
		Format:    b.surfaceFormat,
		WriteMask: wgpu.ColorWriteMaskAll,
	}
	if !opts.DisableBlend {
		target.Blend = &wgpu.BlendState{
			Color: wgpu.BlendComponent{
				SrcFactor: wgpu.BlendFactorSrcAlpha,
				DstFactor: wgpu.BlendFactorOneMinusSrcAlpha,
				Operation: wgpu.BlendOperationAdd,
			},
			Alpha: wgpu.BlendComponent{
				SrcFactor: wgpu.BlendFactorOne,
				DstFactor: wgpu.BlendFactorOneMinusSrcAlpha,
				Operation: wgpu.BlendOperationAdd,
			},
		}
	}

	fragmentEntry := entryPoints.Fragment
	var fragment *wgpu.FragmentState
	if fragmentEntry != "" {
		fragment = &wgpu.FragmentState{
			Module:     module,
			EntryPoint: fragmentEntry,
			Targets:    []wgpu.ColorTargetState{target},
		}
	}

	cullMode := wgpu.CullModeBack
	if opts.DisableCullMode {
		cullMode = wgpu.CullModeNone
	}

	depthCompare := wgpu.CompareFunctionLess
	depthWrite := true
	switch opts.DepthBufferMode {
	case pipeline.DepthBufferRead:
		depthWrite = false
	case pipeline.DepthBufferDisabled:
		depthCompare = wgpu.CompareFunctionAlways
		depthWrite = false
	}

	return &wgpu.RenderPipelineDescriptor{
		Label:  layout.Label + " Render Pipeline",
		Layout: pipelineLayout,
		Vertex: wgpu.VertexState{
			Module:     module,
			EntryPoint: entryPoints.Vertex,
			Buffers:    buffers,
		},
		Fragment: fragment,
		Primitive: wgpu.PrimitiveState{
			Topology:  primitiveTopology(opts.Topology),
			FrontFace: wgpu.FrontFaceCCW,
			CullMode:  cullMode,
		},
		Multisample: wgpu.MultisampleState{
			Count: uint32(b.sampleCount),
			Mask:  0xFFFFFFFF,
		},
		DepthStencil: &wgpu.DepthStencilState{
			Format:              wgpu.TextureFormatDepth24Plus,
			DepthWriteEnabled:   depthWrite,
			DepthCompare:        depthCompare,
			DepthBias:           opts.DepthBias,
			DepthBiasSlopeScale: opts.DepthBiasSlopeScale,
			StencilFront: wgpu.StencilFaceState{
				Compare: wgpu.CompareFunctionAlways,
			},
			StencilBack: wgpu.StencilFaceState{
				Compare: wgpu.CompareFunctionAlways,
			},
		},
	}
}

func primitiveTopology(t pipeline.Topology) wgpu.PrimitiveTopology {
	switch t {
	case pipeline.TopologyTriangleStrip:
		return wgpu.PrimitiveTopologyTriangleStrip
	case pipeline.TopologyLineList:
		return wgpu.PrimitiveTopologyLineList
	case pipeline.TopologyLineStrip:
		return wgpu.PrimitiveTopologyLineStrip
	case pipeline.TopologyPointList:
		return wgpu.PrimitiveTopologyPointList
	default:
		return wgpu.PrimitiveTopologyTriangleList
	}
}

// bindGroupEntry converts one resolved entry into its WebGPU form.
func bindGroupEntry(e bind_group.Entry) (wgpu.BindGroupEntry, error) {
	entry := wgpu.BindGroupEntry{Binding: e.Slot.Binding}
	switch n := e.Resource.Native().(type) {
	case *wgpuBuffer:
		entry.Buffer = n.buffer
		entry.Offset = 0
		entry.Size = wgpu.WholeSize
	case *wgpuTexture:
		entry.TextureView = n.view
	case *wgpu.Sampler:
		entry.Sampler = n
	default:
		return entry, fmt.Errorf("binding %s holds an unsupported resource %T", e.Slot.Label, n)
	}
	return entry, nil
}

func (b *wgpuRendererBackend) CreateBindGroup(compiled pipeline.Compiled, index int, label string, entries []bind_group.Entry) (resource.Native, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	p, ok := compiled.(*wgpuPipeline)
	if !ok || index < 0 || index >= len(p.groupLayouts) {
		return nil, fmt.Errorf("no bind group layout %d for %s", index, label)
	}

	wgpuEntries := make([]wgpu.BindGroupEntry, len(entries))
	for i, e := range entries {
		entry, err := bindGroupEntry(e)
		if err != nil {
			return nil, err
		}
		wgpuEntries[i] = entry
	}

	bindGroup, err := b.device.CreateBindGroup(&wgpu.BindGroupDescriptor{
		Label:   label + " Bind Group",
		Layout:  p.groupLayouts[index],
		Entries: wgpuEntries,
	})
	if err != nil {
		return nil, err
	}
	return bindGroup, nil
}

func (b *wgpuRendererBackend) RunRenderPipeline(compiled pipeline.Compiled, vertices *resource.VertexBuffer, bindings *bind_group.Bindings, options pipeline.DrawOptions) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.framePass == nil {
		return errors.New("no frame in progress")
	}
	p, ok := compiled.(*wgpuPipeline)
	if !ok || p.render == nil {
		return errors.New("not a WebGPU render pipeline")
	}
	vb, ok := vertices.Native().(*wgpuVertexBuffer)
	if !ok {
		return fmt.Errorf("vertex buffer %s is not loaded", vertices.Label())
	}

	b.framePass.SetPipeline(p.render)
	for i, g := range bindings.Groups() {
		b.framePass.SetBindGroup(uint32(i), g.Native.(*wgpu.BindGroup), nil)
	}
	// scissor state persists across draws in the pass, so every draw sets its own
	x, y, w, h := scissorRect(options.ScissorsRect, b.surfaceWidth, b.surfaceHeight)
	b.framePass.SetScissorRect(x, y, w, h)

	start, end := options.InstanceRange()
	instances := uint32(0)
	if end > start {
		instances = end - start
	}
	b.framePass.SetVertexBuffer(0, vb.vertex, 0, wgpu.WholeSize)
	if vertices.Indexed() && vb.index != nil {
		b.framePass.SetIndexBuffer(vb.index, wgpu.IndexFormatUint32, 0, wgpu.WholeSize)
		b.framePass.DrawIndexed(vertices.Count(), instances, 0, 0, start)
	} else {
		b.framePass.Draw(vertices.Count(), instances, 0, start)
	}
	return nil
}

// scissorRect returns the scissor for a draw: rect clamped to the surface, or the whole surface
// when rect is nil.
func scissorRect(rect *pipeline.ScissorsRect, width, height uint32) (x, y, w, h uint32) {
	if rect == nil {
		return 0, 0, width, height
	}
	x, y = min(rect.ClipMinX, width), min(rect.ClipMinY, height)
	return x, y, min(rect.Width, width-x), min(rect.Height, height-y)
}

func (b *wgpuRendererBackend) RunComputePipeline(compiled pipeline.Compiled, bindings *bind_group.Bindings, workGroups pipeline.WorkGroups) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.computeEncoder == nil {
		return errors.New("no frame in progress")
	}
	p, ok := compiled.(*wgpuPipeline)
	if !ok || p.compute == nil {
		return errors.New("not a WebGPU compute pipeline")
	}

	pass := b.computeEncoder.BeginComputePass(nil)
	pass.SetPipeline(p.compute)
	for i, g := range bindings.Groups() {
		pass.SetBindGroup(uint32(i), g.Native.(*wgpu.BindGroup), nil)
	}
	pass.DispatchWorkgroups(
		common.Coalesce(workGroups.X, 1),
		common.Coalesce(workGroups.Y, 1),
		common.Coalesce(workGroups.Z, 1),
	)
	pass.End()
	pass.Release()
	return nil
}

func (b *wgpuRendererBackend) Release() {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.frameEncoder != nil {
		b.endFrame()
	}
	b.releaseAttachments()
	if b.queue != nil {
		b.queue.Release()
	}
	if b.device != nil {
		b.device.Release()
	}
	if b.adapter != nil {
		b.adapter.Release()
	}
	if b.surface != nil {
		b.surface.Release()
	}
	if b.instance != nil {
		b.instance.Release()
	}
	b.queue, b.device, b.adapter, b.surface, b.instance = nil, nil, nil, nil, nil
}

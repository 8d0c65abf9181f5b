// Package renderertest provides a recording in-memory Backend for testing code built on the renderer
// without a GPU.
package renderertest

import (
	"errors"
	"fmt"
	"sync"

	"github.com/Carmen-Shannon/oxy-pipeline/common"
	"github.com/Carmen-Shannon/oxy-pipeline/engine/renderer"
	"github.com/Carmen-Shannon/oxy-pipeline/engine/renderer/bind_group"
	"github.com/Carmen-Shannon/oxy-pipeline/engine/renderer/pipeline"
	"github.com/Carmen-Shannon/oxy-pipeline/engine/renderer/resource"
	"github.com/Carmen-Shannon/oxy-pipeline/engine/renderer/shader"
)

// Native is the backend object handed to every resource handle and bind group.
type Native struct {
	Kind     string
	Label    string
	Size     int
	Released bool
}

func (n *Native) Release() {
	n.Released = true
}

// Compiled is a recorded compiled pipeline.
type Compiled struct {
	Label    string
	Shader   shader.ID
	kind     shader.Kind
	layout   bind_group.Layout
	Released bool
}

func (c *Compiled) Kind() shader.Kind {
	return c.kind
}

func (c *Compiled) Layout() bind_group.Layout {
	return c.layout
}

func (c *Compiled) Release() {
	c.Released = true
}

// Draw is a recorded RunRenderPipeline call.
type Draw struct {
	Pipeline *Compiled
	Vertices *resource.VertexBuffer
	Groups   int
	Options  pipeline.DrawOptions
}

// Dispatch is a recorded RunComputePipeline call.
type Dispatch struct {
	Pipeline   *Compiled
	Groups     int
	WorkGroups pipeline.WorkGroups
}

// Surface is a fixed-size surface.
type Surface struct {
	W, H int
}

func (s Surface) Width() int {
	return s.W
}

func (s Surface) Height() int {
	return s.H
}

// Backend records every call it receives. Set the Fail fields to inject errors.
// Fields are guarded by an internal mutex only for calls; read them after the code under test returns.
type Backend struct {
	mu sync.Mutex

	Config   renderer.BackendConfig
	Width    int
	Height   int
	Released bool

	// Calls lists the method names in call order.
	Calls []string

	// FailShaders makes CreateShaderModule fail for the named shaders.
	FailShaders map[string]error
	// FailCompile makes every CompilePipeline call fail.
	FailCompile error
	// FailBindGroup makes every CreateBindGroup call fail.
	FailBindGroup error
	FailBegin     error
	FailSubmit    error

	ModuleLoads map[string]int
	Compiled    []*Compiled
	BindGroups  []*Native
	Draws       []Draw
	Dispatches  []Dispatch
	Clears      []common.Color
	Frames      int
	inFrame     bool
}

var _ renderer.Backend = &Backend{}

// NewBackend creates an empty recording backend.
func NewBackend() *Backend {
	return &Backend{
		FailShaders: make(map[string]error),
		ModuleLoads: make(map[string]int),
	}
}

// Factory returns a BackendFactory that hands out b.
func (b *Backend) Factory() renderer.BackendFactory {
	return func(surface renderer.Surface, config renderer.BackendConfig) (renderer.Backend, error) {
		b.mu.Lock()
		defer b.mu.Unlock()
		b.Config = config
		b.Width, b.Height = surface.Width(), surface.Height()
		b.Calls = append(b.Calls, "Init")
		return b, nil
	}
}

// FailingFactory returns a BackendFactory that always fails with err.
func FailingFactory(err error) renderer.BackendFactory {
	return func(renderer.Surface, renderer.BackendConfig) (renderer.Backend, error) {
		return nil, err
	}
}

// CallCount returns how often the named method was called.
func (b *Backend) CallCount(name string) int {
	b.mu.Lock()
	defer b.mu.Unlock()
	n := 0
	for _, c := range b.Calls {
		if c == name {
			n++
		}
	}
	return n
}

func (b *Backend) record(name string) {
	b.Calls = append(b.Calls, name)
}

func (b *Backend) Resize(width, height int) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.record("Resize")
	b.Width, b.Height = width, height
}

func (b *Backend) BeginFrame(clear common.Color) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.record("BeginFrame")
	if b.FailBegin != nil {
		return b.FailBegin
	}
	if b.inFrame {
		return errors.New("previous frame not submitted")
	}
	b.inFrame = true
	b.Clears = append(b.Clears, clear)
	return nil
}

func (b *Backend) SubmitFrame() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.record("SubmitFrame")
	b.inFrame = false
	if b.FailSubmit != nil {
		return b.FailSubmit
	}
	b.Frames++
	return nil
}

func (b *Backend) UploadVertexBuffer(label string, attributes []byte, indices []uint32) (resource.Native, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.record("UploadVertexBuffer")
	return &Native{Kind: "vertex", Label: label, Size: len(attributes) + 4*len(indices)}, nil
}

func (b *Backend) UploadTexture(label string, desc renderer.TextureDescriptor, layers [][]byte) (resource.Native, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.record("UploadTexture")
	size := 0
	for _, l := range layers {
		size += len(l)
	}
	return &Native{Kind: "texture", Label: label, Size: size}, nil
}

func (b *Backend) UploadUniformBuffer(prev resource.Native, label string, data []byte) (resource.Native, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.record("UploadUniformBuffer")
	return reuse(prev, "uniform", label, data), nil
}

func (b *Backend) UploadStorageBuffer(prev resource.Native, label string, data []byte) (resource.Native, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.record("UploadStorageBuffer")
	return reuse(prev, "storage", label, data), nil
}

// reuse mirrors the WebGPU backend: a large enough previous buffer is written in place.
func reuse(prev resource.Native, kind, label string, data []byte) resource.Native {
	if n, ok := prev.(*Native); ok && n.Size >= len(data) {
		return n
	}
	return &Native{Kind: kind, Label: label, Size: len(data)}
}

func (b *Backend) CreateSampler(label string, data common.SamplerStagingData) (resource.Native, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.record("CreateSampler")
	return &Native{Kind: "sampler", Label: label}, nil
}

func (b *Backend) CreateShaderModule(name, code string) (resource.Native, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.record("CreateShaderModule")
	b.ModuleLoads[name]++
	if err := b.FailShaders[name]; err != nil {
		return nil, err
	}
	return &Native{Kind: "shader", Label: name, Size: len(code)}, nil
}

func (b *Backend) CompilePipeline(layout *pipeline.Layout) (pipeline.Compiled, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.record("CompilePipeline")
	if b.FailCompile != nil {
		return nil, b.FailCompile
	}
	slots := bind_group.Describe(layout.Bindings)
	if err := layout.Shader.CheckLayout(slots); err != nil {
		return nil, err
	}
	c := &Compiled{
		Label:  layout.Label,
		Shader: layout.Shader.ID(),
		kind:   layout.Shader.Kind(),
		layout: slots,
	}
	b.Compiled = append(b.Compiled, c)
	return c, nil
}

func (b *Backend) CreateBindGroup(compiled pipeline.Compiled, index int, label string, entries []bind_group.Entry) (resource.Native, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.record("CreateBindGroup")
	if b.FailBindGroup != nil {
		return nil, b.FailBindGroup
	}
	n := &Native{Kind: "bind_group", Label: fmt.Sprintf("%s/%d", label, index), Size: len(entries)}
	b.BindGroups = append(b.BindGroups, n)
	return n, nil
}

func (b *Backend) RunRenderPipeline(compiled pipeline.Compiled, vertices *resource.VertexBuffer, bindings *bind_group.Bindings, options pipeline.DrawOptions) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.record("RunRenderPipeline")
	b.Draws = append(b.Draws, Draw{
		Pipeline: compiled.(*Compiled),
		Vertices: vertices,
		Groups:   len(bindings.Groups()),
		Options:  options,
	})
	return nil
}

func (b *Backend) RunComputePipeline(compiled pipeline.Compiled, bindings *bind_group.Bindings, workGroups pipeline.WorkGroups) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.record("RunComputePipeline")
	b.Dispatches = append(b.Dispatches, Dispatch{
		Pipeline:   compiled.(*Compiled),
		Groups:     len(bindings.Groups()),
		WorkGroups: workGroups,
	})
	return nil
}

func (b *Backend) Release() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.record("Release")
	b.Released = true
}

// Package pipeline defines the caller-held Pipeline value, the transient Layout a pipeline is
// compiled from, and the Cache that owns compiled pipelines keyed by shader ID.
package pipeline

import (
	"github.com/Carmen-Shannon/oxy-pipeline/engine/renderer/bind_group"
	"github.com/Carmen-Shannon/oxy-pipeline/engine/renderer/mesh"
	"github.com/Carmen-Shannon/oxy-pipeline/engine/renderer/shader"
)

// DepthBufferMode controls how a render pipeline uses the depth buffer.
type DepthBufferMode int

const (
	// DepthBufferWrite tests against and writes to the depth buffer. This is the default.
	DepthBufferWrite DepthBufferMode = iota

	// DepthBufferRead tests against the depth buffer without writing to it.
	DepthBufferRead

	// DepthBufferDisabled neither tests nor writes depth.
	DepthBufferDisabled
)

func (m DepthBufferMode) String() string {
	switch m {
	case DepthBufferWrite:
		return "write"
	case DepthBufferRead:
		return "read"
	case DepthBufferDisabled:
		return "disabled"
	default:
		return "unknown"
	}
}

// Topology is the primitive topology of a render pipeline.
type Topology int

const (
	// TopologyTriangleList is the default.
	TopologyTriangleList Topology = iota
	TopologyTriangleStrip
	TopologyLineList
	TopologyLineStrip
	TopologyPointList
)

// Options configures how a render pipeline is compiled. The zero value is the default:
// depth write, back-face culling, triangle lists and alpha blending.
// Compute pipelines ignore Options.
type Options struct {
	DepthBufferMode     DepthBufferMode
	DisableCullMode     bool
	DisableBlend        bool
	Topology            Topology
	DepthBias           int32
	DepthBiasSlopeScale float32
}

// NewOptions creates Options with all specified options applied on top of the defaults.
//
// Parameters:
//   - options: optional builder options
//
// Returns:
//   - Options: the compile options
func NewOptions(options ...OptionsBuilderOption) Options {
	var o Options
	for _, opt := range options {
		opt(&o)
	}
	return o
}

// ScissorsRect clips drawing to a rectangle of the surface, in pixels.
type ScissorsRect struct {
	ClipMinX uint32
	ClipMinY uint32
	Width    uint32
	Height   uint32
}

// DrawOptions is the per-draw state carried by a Pipeline. StartIndex and EndIndex select the
// instance range. A zero DrawOptions draws one instance without a scissor.
type DrawOptions struct {
	ScissorsRect *ScissorsRect
	StartIndex   uint32
	EndIndex     uint32
}

// DefaultDrawOptions draws instance 0 only.
func DefaultDrawOptions() DrawOptions {
	return DrawOptions{StartIndex: 0, EndIndex: 1}
}

// InstanceRange returns the instance range to draw. A zero range is read as the default 0..1.
func (o DrawOptions) InstanceRange() (start, end uint32) {
	if o.StartIndex == 0 && o.EndIndex == 0 {
		return 0, 1
	}
	return o.StartIndex, o.EndIndex
}

// Pipeline is the caller-held handle of a compiled pipeline. The renderer's Bind fills in
// Shader and Bindings; Run and Compute read them. Options may be changed freely between draws.
type Pipeline struct {
	Shader   shader.ID
	Bindings bind_group.Bindings
	Options  DrawOptions
}

// NewPipeline creates an unbound Pipeline with the default draw options.
func NewPipeline() *Pipeline {
	return &Pipeline{Options: DefaultDrawOptions()}
}

// Release frees the pipeline's resolved bind groups and unties it from its shader, so it may be
// bound to any shader again. The compiled pipeline stays cached.
func (p *Pipeline) Release() {
	p.Bindings.Release()
	p.Shader = 0
}

// Layout describes what a pipeline is compiled and bound from. It is only read during a Bind call.
// Mesh is optional; without one a render pipeline has no vertex buffers.
type Layout struct {
	Label    string
	Mesh     mesh.Mesh
	Shader   shader.Shader
	Bindings []bind_group.BindGroup
	Options  Options
}

// WorkGroups is the number of work groups a compute dispatch runs in each dimension.
type WorkGroups struct {
	X, Y, Z uint32
}

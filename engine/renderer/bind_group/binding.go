package bind_group

import (
	"github.com/Carmen-Shannon/oxy-pipeline/engine/renderer/resource"
)

// Stage is the shader stage a binding is visible to.
type Stage int

const (
	StageVertex Stage = iota
	StageFragment
	StageCompute
	// StageAll is visible to every stage.
	StageAll
)

// Covers reports whether a slot declared with stage s accepts a binding declared with stage other.
func (s Stage) Covers(other Stage) bool {
	return s == other || s == StageAll
}

func (s Stage) String() string {
	switch s {
	case StageVertex:
		return "vertex"
	case StageFragment:
		return "fragment"
	case StageCompute:
		return "compute"
	case StageAll:
		return "all"
	default:
		return "unknown"
	}
}

// Kind is the resource kind a binding carries.
type Kind int

const (
	KindUniform Kind = iota
	KindTexture
	KindTexture3D
	KindStorageTexture
	KindSampler
	KindStorage
	// KindStorageAsUniform binds a storage buffer through a read-only storage slot.
	KindStorageAsUniform
)

func (k Kind) String() string {
	switch k {
	case KindUniform:
		return "uniform"
	case KindTexture:
		return "texture"
	case KindTexture3D:
		return "texture_3d"
	case KindStorageTexture:
		return "storage_texture"
	case KindSampler:
		return "sampler"
	case KindStorage:
		return "storage"
	case KindStorageAsUniform:
		return "storage_as_uniform"
	default:
		return "unknown"
	}
}

// Binding is a single entry of a BindGroup. Use the kind constructors below rather than
// building the struct directly so the resource type always agrees with the Kind.
type Binding struct {
	Kind     Kind
	Label    string
	Stage    Stage
	Resource resource.Handle
}

// handleOf keeps a nil handle pointer from turning into a non-nil interface.
func handleOf[T any, P interface {
	*T
	resource.Handle
}](p P) resource.Handle {
	if p == nil {
		return nil
	}
	return p
}

// Uniform binds a uniform buffer.
func Uniform(label string, stage Stage, buf *resource.UniformBuffer) Binding {
	return Binding{Kind: KindUniform, Label: label, Stage: stage, Resource: handleOf(buf)}
}

// Texture binds a sampled 2D texture.
func Texture(label string, stage Stage, tex *resource.TextureBuffer) Binding {
	return Binding{Kind: KindTexture, Label: label, Stage: stage, Resource: handleOf(tex)}
}

// Texture3D binds a sampled 3D texture.
func Texture3D(label string, stage Stage, tex *resource.TextureBuffer) Binding {
	return Binding{Kind: KindTexture3D, Label: label, Stage: stage, Resource: handleOf(tex)}
}

// StorageTexture binds a write-only storage texture. The texture must be loaded with
// storage binding usage.
func StorageTexture(label string, stage Stage, tex *resource.TextureBuffer) Binding {
	return Binding{Kind: KindStorageTexture, Label: label, Stage: stage, Resource: handleOf(tex)}
}

// Sampler binds a texture sampler.
func Sampler(label string, stage Stage, s *resource.Sampler) Binding {
	return Binding{Kind: KindSampler, Label: label, Stage: stage, Resource: handleOf(s)}
}

// Storage binds a read-write storage buffer.
func Storage(label string, stage Stage, buf *resource.StorageBuffer) Binding {
	return Binding{Kind: KindStorage, Label: label, Stage: stage, Resource: handleOf(buf)}
}

// StorageAsUniform binds a storage buffer as read-only storage.
func StorageAsUniform(label string, stage Stage, buf *resource.StorageBuffer) Binding {
	return Binding{Kind: KindStorageAsUniform, Label: label, Stage: stage, Resource: handleOf(buf)}
}

// BindGroup is a named, ordered list of bindings submitted together.
// The position of a BindGroup in a pipeline layout is its @group index, and the
// position of each Binding is its @binding index.
type BindGroup struct {
	Label    string
	Bindings []Binding
}

// NewBindGroup creates a BindGroup from the given bindings in order.
func NewBindGroup(label string, bindings ...Binding) BindGroup {
	return BindGroup{Label: label, Bindings: bindings}
}

// Package shader holds WGSL shader assets: their stable identity, reflected entry points and
// resource declarations, the compile step that loads them into a GPU shader module, and the
// Store and Watcher that supply them to the renderer.
package shader

import (
	"fmt"
	"sync/atomic"

	"github.com/Carmen-Shannon/oxy-pipeline/engine/renderer/bind_group"
	"github.com/Carmen-Shannon/oxy-pipeline/engine/renderer/resource"
)

// ID identifies a shader for the lifetime of the process. It is the pipeline cache key.
// Zero is never assigned.
type ID uint64

// lastID is the most recently assigned ID.
var lastID atomic.Uint64

func nextID() ID {
	return ID(lastID.Add(1))
}

// Kind identifies whether a shader drives a render pipeline or a compute pipeline.
type Kind int

const (
	// KindUnknown is reported for sources without a usable entry point.
	KindUnknown Kind = iota

	// KindRender indicates a shader containing a @vertex entry point, optionally with a @fragment entry point.
	KindRender

	// KindCompute indicates a shader containing a @compute entry point.
	KindCompute
)

func (k Kind) String() string {
	switch k {
	case KindRender:
		return "render"
	case KindCompute:
		return "compute"
	default:
		return "unknown"
	}
}

// ModuleLoader compiles shader source into a shader module on the GPU.
// The renderer implements it.
type ModuleLoader interface {
	// LoadShaderModule compiles code into module, replacing any module it already holds.
	//
	// Parameters:
	//   - module: the handle that receives the compiled module
	//   - name: the debug name of the module
	//   - code: the WGSL source
	//
	// Returns:
	//   - error: an error if the backend rejected the source
	LoadShaderModule(module *resource.ShaderModule, name, code string) error

	// Epoch returns the loader's reload epoch. Modules loaded in an earlier epoch are stale.
	//
	// Returns:
	//   - uint64: the current epoch
	Epoch() uint64
}

// shader is the implementation of the Shader interface.
// It is not safe for concurrent use; the renderer only touches shaders between frames.
type shader struct {
	id       ID
	name     string
	path     string
	source   string
	validate Validator

	kind          Kind
	entryPoints   EntryPoints
	workGroupSize [3]uint32
	declarations  []Declaration

	module *resource.ShaderModule
	epoch  uint64
	err    error
}

// Shader defines the interface for a WGSL shader asset. It exposes the shader's stable ID,
// its source and reflected metadata, and the compile step that loads it into a shader module.
type Shader interface {
	// ID returns the stable identity of the shader, used as the pipeline cache key.
	//
	// Returns:
	//   - ID: the shader's ID, never zero
	ID() ID

	// Name returns the name the shader was registered under.
	//
	// Returns:
	//   - string: the shader's name
	Name() string

	// Path returns the file the shader was read from, or an empty string for in-memory sources.
	//
	// Returns:
	//   - string: the source file path
	Path() string

	// Source returns the current WGSL source.
	//
	// Returns:
	//   - string: the WGSL source code of the shader
	Source() string

	// SetSource replaces the WGSL source, re-runs reflection and unloads the shader so the next
	// frame-bind recompiles it. The ID does not change.
	//
	// Parameters:
	//   - source: the new WGSL source
	SetSource(source string)

	// Kind returns whether the shader is a render or a compute shader.
	//
	// Returns:
	//   - Kind: KindRender, KindCompute, or KindUnknown if no entry point was found
	Kind() Kind

	// EntryPoints returns the reflected entry point names.
	//
	// Returns:
	//   - EntryPoints: the vertex, fragment and compute entry points
	EntryPoints() EntryPoints

	// WorkgroupSize returns the workgroup size dimensions for compute shaders.
	// Returns [0, 0, 0] for render shaders and [1, 1, 1] as the default when
	// @workgroup_size is not specified.
	//
	// Returns:
	//   - [3]uint32: the workgroup size as [x, y, z]
	WorkgroupSize() [3]uint32

	// Declarations returns the @group/@binding resources declared by the source, sorted by group then binding.
	//
	// Returns:
	//   - []Declaration: the declared resources
	Declarations() []Declaration

	// Module returns the shader module handle the shader compiles into.
	//
	// Returns:
	//   - *resource.ShaderModule: the module handle
	Module() *resource.ShaderModule

	// Loaded reports whether the shader compiled successfully and has not been unloaded since.
	//
	// Returns:
	//   - bool: true if the shader module is loaded
	Loaded() bool

	// Err returns the error from the most recent failed Load, or nil.
	//
	// Returns:
	//   - error: the last compile failure
	Err() error

	// Load compiles the shader through loader. It is a no-op when the shader is already loaded
	// in the loader's current epoch. On failure the shader stays unloaded and the error is kept for Err.
	//
	// Parameters:
	//   - loader: the renderer that owns the GPU device
	//
	// Returns:
	//   - error: the compile failure, wrapped with the shader name
	Load(loader ModuleLoader) error

	// Unload releases the shader module.
	Unload()

	// CheckLayout verifies that a bind group slot layout fills exactly the resources the source
	// declares, with compatible kinds and stages.
	//
	// Parameters:
	//   - layout: the slot layout a pipeline will be compiled with
	//
	// Returns:
	//   - error: an error wrapping bind_group.ErrLayoutMismatch if the layout does not fit
	CheckLayout(layout bind_group.Layout) error
}

var _ Shader = &shader{}

// NewShader creates a new Shader from WGSL source with a freshly assigned ID.
// Reflection runs immediately; a source without entry points still produces a Shader,
// which then fails to Load with ErrNoEntryPoint.
//
// Parameters:
//   - name: the shader name, also used as the module label
//   - source: the WGSL source
//   - options: optional builder options
//
// Returns:
//   - Shader: the new, unloaded shader
func NewShader(name, source string, options ...ShaderBuilderOption) Shader {
	s := &shader{
		id:     nextID(),
		name:   name,
		module: resource.NewShaderModule(name),
	}
	for _, opt := range options {
		opt(s)
	}
	s.parseSource(source)
	return s
}

func (s *shader) ID() ID {
	return s.id
}

func (s *shader) Name() string {
	return s.name
}

func (s *shader) Path() string {
	return s.path
}

func (s *shader) Source() string {
	return s.source
}

func (s *shader) SetSource(source string) {
	s.parseSource(source)
	s.Unload()
}

func (s *shader) Kind() Kind {
	return s.kind
}

func (s *shader) EntryPoints() EntryPoints {
	return s.entryPoints
}

func (s *shader) WorkgroupSize() [3]uint32 {
	return s.workGroupSize
}

func (s *shader) Declarations() []Declaration {
	return s.declarations
}

func (s *shader) Module() *resource.ShaderModule {
	return s.module
}

func (s *shader) Loaded() bool {
	return s.module.Loaded()
}

func (s *shader) Err() error {
	return s.err
}

func (s *shader) Load(loader ModuleLoader) error {
	epoch := loader.Epoch()
	if s.module.Loaded() && s.epoch == epoch {
		return nil
	}

	if err := s.compile(loader); err != nil {
		s.module.Release()
		s.err = fmt.Errorf("shader %s: %w", s.name, err)
		return s.err
	}

	s.epoch = epoch
	s.err = nil
	return nil
}

func (s *shader) compile(loader ModuleLoader) error {
	if s.kind == KindUnknown {
		return ErrNoEntryPoint
	}
	if s.validate != nil {
		if err := s.validate(s.source); err != nil {
			return err
		}
	}
	return loader.LoadShaderModule(s.module, s.name, s.source)
}

func (s *shader) Unload() {
	s.module.Release()
}

func (s *shader) CheckLayout(layout bind_group.Layout) error {
	type slotKey struct{ group, binding uint32 }

	declared := make(map[slotKey]Declaration, len(s.declarations))
	for _, d := range s.declarations {
		declared[slotKey{d.Group, d.Binding}] = d
	}

	filled := 0
	for _, slots := range layout {
		for _, slot := range slots {
			d, ok := declared[slotKey{slot.Group, slot.Binding}]
			if !ok {
				return fmt.Errorf("%w: shader %s declares nothing at group %d binding %d",
					bind_group.ErrLayoutMismatch, s.name, slot.Group, slot.Binding)
			}
			if d.Kind != slot.Kind {
				return fmt.Errorf("%w: shader %s declares %s %s at group %d binding %d, layout binds %s",
					bind_group.ErrLayoutMismatch, s.name, d.Kind, d.Name, d.Group, d.Binding, slot.Kind)
			}
			if !s.stageFits(slot.Stage) {
				return fmt.Errorf("%w: %s shader %s cannot see %s stage binding at group %d binding %d",
					bind_group.ErrLayoutMismatch, s.kind, s.name, slot.Stage, slot.Group, slot.Binding)
			}
			filled++
		}
	}

	if filled != len(s.declarations) {
		for _, d := range s.declarations {
			if int(d.Group) >= len(layout) || int(d.Binding) >= len(layout[d.Group]) {
				return fmt.Errorf("%w: shader %s declares %s at group %d binding %d but the layout does not bind it",
					bind_group.ErrLayoutMismatch, s.name, d.Name, d.Group, d.Binding)
			}
		}
	}
	return nil
}

func (s *shader) stageFits(stage bind_group.Stage) bool {
	switch stage {
	case bind_group.StageAll:
		return true
	case bind_group.StageCompute:
		return s.kind == KindCompute
	default:
		return s.kind == KindRender
	}
}

// parseSource sets the WGSL source and extracts the entry points, shader kind,
// workgroup size and resource declarations.
func (s *shader) parseSource(source string) {
	s.source = source
	s.entryPoints = parseEntryPoints(source)
	s.declarations = parseDeclarations(source)

	switch {
	case s.entryPoints.Vertex != "":
		s.kind = KindRender
		s.workGroupSize = [3]uint32{}
	case s.entryPoints.Compute != "":
		s.kind = KindCompute
		s.workGroupSize = parseWorkgroupSize(source)
	default:
		s.kind = KindUnknown
		s.workGroupSize = [3]uint32{}
	}
}

// Package resource holds the typed GPU resource handles the renderer loads data into.
// A handle owns at most one opaque backend object and only reports Loaded after the
// renderer has successfully uploaded into it.
package resource

// Native is an opaque backend-side object owned by a handle.
// The renderer backend decides the concrete type; handles only ever release it.
type Native interface {
	Release()
}

// Handle is the behavior shared by every resource handle.
type Handle interface {
	// Label returns the debug label of the handle.
	//
	// Returns:
	//   - string: the label given at construction
	Label() string

	// Loaded reports whether the handle currently holds a backend object.
	//
	// Returns:
	//   - bool: true after a successful load and until Release is called
	Loaded() bool

	// Native returns the backend object, or nil when the handle is not loaded.
	//
	// Returns:
	//   - Native: the opaque backend object
	Native() Native

	// Release frees the backend object and marks the handle as not loaded.
	// Calling Release on an unloaded handle is a no-op.
	Release()
}

type handle struct {
	label  string
	native Native
}

func (h *handle) Label() string {
	return h.label
}

func (h *handle) Loaded() bool {
	return h.native != nil
}

func (h *handle) Native() Native {
	return h.native
}

func (h *handle) Release() {
	if h.native != nil {
		h.native.Release()
		h.native = nil
	}
}

// set replaces the backend object. The previous object is always released first,
// so repeated loads never leak backend memory.
func (h *handle) set(n Native) {
	if h.native != nil && h.native != n {
		h.native.Release()
	}
	h.native = n
}

// VertexBuffer holds vertex data and optional index data for a mesh.
type VertexBuffer struct {
	handle
	count   uint32
	indexed bool
}

// NewVertexBuffer creates an unloaded VertexBuffer.
func NewVertexBuffer(label string) *VertexBuffer {
	return &VertexBuffer{handle: handle{label: label}}
}

// Set stores the backend object produced by a vertex upload.
//
// Parameters:
//   - n: the backend object holding vertex and optional index buffers
//   - count: the number of indices when indexed, otherwise the number of vertices
//   - indexed: whether the draw should use the index buffer
func (v *VertexBuffer) Set(n Native, count uint32, indexed bool) {
	v.set(n)
	v.count = count
	v.indexed = indexed
}

// Count returns the number of indices or vertices to draw.
func (v *VertexBuffer) Count() uint32 {
	return v.count
}

// Indexed reports whether the buffer carries index data.
func (v *VertexBuffer) Indexed() bool {
	return v.indexed
}

// UniformBuffer holds a uniform buffer.
type UniformBuffer struct {
	handle
	size uint64
}

// NewUniformBuffer creates an unloaded UniformBuffer.
func NewUniformBuffer(label string) *UniformBuffer {
	return &UniformBuffer{handle: handle{label: label}}
}

// Set stores the backend buffer and its size in bytes.
func (u *UniformBuffer) Set(n Native, size uint64) {
	u.set(n)
	u.size = size
}

// Size returns the byte size of the last upload.
func (u *UniformBuffer) Size() uint64 {
	return u.size
}

// StorageBuffer holds a storage buffer.
type StorageBuffer struct {
	handle
	size uint64
}

// NewStorageBuffer creates an unloaded StorageBuffer.
func NewStorageBuffer(label string) *StorageBuffer {
	return &StorageBuffer{handle: handle{label: label}}
}

// Set stores the backend buffer and its size in bytes.
func (s *StorageBuffer) Set(n Native, size uint64) {
	s.set(n)
	s.size = size
}

// Size returns the byte size of the last upload.
func (s *StorageBuffer) Size() uint64 {
	return s.size
}

// Sampler holds a texture sampler.
type Sampler struct {
	handle
}

// NewSampler creates an unloaded Sampler.
func NewSampler(label string) *Sampler {
	return &Sampler{handle: handle{label: label}}
}

// Set stores the backend sampler.
func (s *Sampler) Set(n Native) {
	s.set(n)
}

// ShaderModule holds a compiled shader module.
type ShaderModule struct {
	handle
	name string
}

// NewShaderModule creates an unloaded ShaderModule.
func NewShaderModule(label string) *ShaderModule {
	return &ShaderModule{handle: handle{label: label}}
}

// Set stores the backend module along with the name it was compiled under.
func (m *ShaderModule) Set(n Native, name string) {
	m.set(n)
	m.name = name
}

// Name returns the name the module was last compiled under.
func (m *ShaderModule) Name() string {
	return m.name
}

var (
	_ Handle = &VertexBuffer{}
	_ Handle = &UniformBuffer{}
	_ Handle = &StorageBuffer{}
	_ Handle = &Sampler{}
	_ Handle = &ShaderModule{}
	_ Handle = &TextureBuffer{}
)

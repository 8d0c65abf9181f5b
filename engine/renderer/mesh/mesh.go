// Package mesh holds vertex data ready to be uploaded to a vertex buffer and drawn by a render pipeline.
package mesh

import (
	"fmt"

	"github.com/Carmen-Shannon/oxy-pipeline/engine/renderer/resource"
)

// VertexLoader uploads interleaved vertex data to the GPU. The renderer implements it.
type VertexLoader interface {
	// LoadVertexBuffer uploads vertex data and optional indices into buf, replacing any prior allocation.
	//
	// Parameters:
	//   - buf: the vertex buffer handle
	//   - attributes: the interleaved vertex bytes
	//   - indices: optional 32-bit indices, nil for non-indexed draws
	//   - count: the number of vertices in attributes
	//
	// Returns:
	//   - error: an error if the upload failed
	LoadVertexBuffer(buf *resource.VertexBuffer, attributes []byte, indices []uint32, count uint32) error
}

// mesh is the implementation of the Mesh interface.
type mesh struct {
	label      string
	attributes []AttributeFormat
	vertices   []byte
	indices    []uint32
	count      uint32
	buffer     *resource.VertexBuffer
}

// Mesh is interleaved vertex data described by a list of attribute formats, with an optional
// index list and the vertex buffer the data is uploaded into.
type Mesh interface {
	// Label returns the mesh label.
	//
	// Returns:
	//   - string: the label
	Label() string

	// Attributes returns the attribute formats in shader location order.
	//
	// Returns:
	//   - []AttributeFormat: the attributes
	Attributes() []AttributeFormat

	// Stride returns the byte distance between two vertices.
	//
	// Returns:
	//   - uint64: the vertex stride
	Stride() uint64

	// Vertices returns the interleaved vertex bytes.
	//
	// Returns:
	//   - []byte: the vertex data
	Vertices() []byte

	// Indices returns the index list, nil for non-indexed meshes.
	//
	// Returns:
	//   - []uint32: the indices
	Indices() []uint32

	// VertexCount returns the number of vertices.
	//
	// Returns:
	//   - uint32: the vertex count
	VertexCount() uint32

	// SetVertices replaces the vertex data. The mesh must be loaded again to take effect.
	//
	// Parameters:
	//   - vertices: the interleaved vertex bytes, a whole multiple of Stride
	//
	// Returns:
	//   - error: an error if the data length is not a multiple of the stride
	SetVertices(vertices []byte) error

	// VertexBuffer returns the vertex buffer handle the mesh uploads into.
	//
	// Returns:
	//   - *resource.VertexBuffer: the vertex buffer
	VertexBuffer() *resource.VertexBuffer

	// Loaded reports whether the vertex buffer holds the mesh data.
	//
	// Returns:
	//   - bool: true once Load succeeded
	Loaded() bool

	// Load uploads the mesh data. Every call re-uploads.
	//
	// Parameters:
	//   - loader: the renderer
	//
	// Returns:
	//   - error: an error if the upload failed
	Load(loader VertexLoader) error

	// Unload releases the vertex buffer.
	Unload()
}

var _ Mesh = &mesh{}

// NewMesh creates a mesh from interleaved vertex bytes.
//
// Parameters:
//   - label: the mesh label, also used for the vertex buffer
//   - attributes: the attribute formats in shader location order
//   - vertices: the interleaved vertex bytes, a whole multiple of the attribute stride
//   - options: optional builder options
//
// Returns:
//   - Mesh: the new, unloaded mesh
//   - error: an error if the attributes are empty or the data does not divide into whole vertices
func NewMesh(label string, attributes []AttributeFormat, vertices []byte, options ...MeshBuilderOption) (Mesh, error) {
	if len(attributes) == 0 {
		return nil, fmt.Errorf("mesh %s: at least one vertex attribute is required", label)
	}
	m := &mesh{
		label:      label,
		attributes: attributes,
		buffer:     resource.NewVertexBuffer(label),
	}
	if err := m.SetVertices(vertices); err != nil {
		return nil, err
	}
	for _, opt := range options {
		opt(m)
	}
	return m, nil
}

func (m *mesh) Label() string {
	return m.label
}

func (m *mesh) Attributes() []AttributeFormat {
	return m.attributes
}

func (m *mesh) Stride() uint64 {
	return Stride(m.attributes)
}

func (m *mesh) Vertices() []byte {
	return m.vertices
}

func (m *mesh) Indices() []uint32 {
	return m.indices
}

func (m *mesh) VertexCount() uint32 {
	return m.count
}

func (m *mesh) SetVertices(vertices []byte) error {
	stride := m.Stride()
	if stride == 0 {
		return fmt.Errorf("mesh %s: unknown vertex attribute format", m.label)
	}
	if uint64(len(vertices))%stride != 0 {
		return fmt.Errorf("mesh %s: %d bytes is not a multiple of the %d byte stride", m.label, len(vertices), stride)
	}
	m.vertices = vertices
	m.count = uint32(uint64(len(vertices)) / stride)
	return nil
}

func (m *mesh) VertexBuffer() *resource.VertexBuffer {
	return m.buffer
}

func (m *mesh) Loaded() bool {
	return m.buffer.Loaded()
}

func (m *mesh) Load(loader VertexLoader) error {
	return loader.LoadVertexBuffer(m.buffer, m.vertices, m.indices, m.count)
}

func (m *mesh) Unload() {
	m.buffer.Release()
}

package mesh

import "github.com/cogentcore/webgpu/wgpu"

// AttributeFormat is the format of one interleaved vertex attribute.
type AttributeFormat int

const (
	Float32 AttributeFormat = iota
	Float32x2
	Float32x3
	Float32x4
	Uint16x2
	Uint16x4
	Uint32
	Uint32x2
	Uint32x3
	Uint32x4
)

// Size returns the byte size of the attribute.
func (f AttributeFormat) Size() uint64 {
	switch f {
	case Float32, Uint32, Uint16x2:
		return 4
	case Float32x2, Uint32x2, Uint16x4:
		return 8
	case Float32x3, Uint32x3:
		return 12
	case Float32x4, Uint32x4:
		return 16
	default:
		return 0
	}
}

// WGPU returns the WebGPU vertex format of the attribute.
func (f AttributeFormat) WGPU() wgpu.VertexFormat {
	switch f {
	case Float32:
		return wgpu.VertexFormatFloat32
	case Float32x2:
		return wgpu.VertexFormatFloat32x2
	case Float32x3:
		return wgpu.VertexFormatFloat32x3
	case Float32x4:
		return wgpu.VertexFormatFloat32x4
	case Uint16x2:
		return wgpu.VertexFormatUint16x2
	case Uint16x4:
		return wgpu.VertexFormatUint16x4
	case Uint32:
		return wgpu.VertexFormatUint32
	case Uint32x2:
		return wgpu.VertexFormatUint32x2
	case Uint32x3:
		return wgpu.VertexFormatUint32x3
	case Uint32x4:
		return wgpu.VertexFormatUint32x4
	default:
		return wgpu.VertexFormatUndefined
	}
}

// Stride returns the combined byte size of the attributes, the distance between two interleaved vertices.
func Stride(attributes []AttributeFormat) uint64 {
	var stride uint64
	for _, a := range attributes {
		stride += a.Size()
	}
	return stride
}

// VertexLayout builds the WebGPU vertex buffer layout for interleaved attributes.
// Shader locations are assigned in attribute order starting at 0.
//
// Parameters:
//   - attributes: the attribute formats in location order
//
// Returns:
//   - wgpu.VertexBufferLayout: the per-vertex buffer layout
func VertexLayout(attributes []AttributeFormat) wgpu.VertexBufferLayout {
	attrs := make([]wgpu.VertexAttribute, len(attributes))
	var offset uint64
	for i, a := range attributes {
		attrs[i] = wgpu.VertexAttribute{
			Format:         a.WGPU(),
			Offset:         offset,
			ShaderLocation: uint32(i),
		}
		offset += a.Size()
	}
	return wgpu.VertexBufferLayout{
		ArrayStride: offset,
		StepMode:    wgpu.VertexStepModeVertex,
		Attributes:  attrs,
	}
}

package resource

import "github.com/cogentcore/webgpu/wgpu"

// TextureDimension is the dimensionality of a texture resource.
type TextureDimension int

const (
	// TextureDimension2D is a 2D texture, possibly with several array layers.
	TextureDimension2D TextureDimension = iota
	// TextureDimension3D is a volume texture, layers form the depth axis.
	TextureDimension3D
)

// TextureUsage is a set of usage flags a texture is created with.
// The values mirror the WebGPU texture usage bits.
type TextureUsage uint32

const (
	TextureUsageCopySrc          = TextureUsage(wgpu.TextureUsageCopySrc)
	TextureUsageCopyDst          = TextureUsage(wgpu.TextureUsageCopyDst)
	TextureUsageTextureBinding   = TextureUsage(wgpu.TextureUsageTextureBinding)
	TextureUsageStorageBinding   = TextureUsage(wgpu.TextureUsageStorageBinding)
	TextureUsageRenderAttachment = TextureUsage(wgpu.TextureUsageRenderAttachment)

	// DefaultTextureUsage is used by plain texture loads: sampled in shaders and written from the CPU.
	DefaultTextureUsage = TextureUsageTextureBinding | TextureUsageCopyDst
)

// Has reports whether every flag in other is set.
func (u TextureUsage) Has(other TextureUsage) bool {
	return u&other == other
}

// TextureFormat is the texel format of a texture resource.
type TextureFormat int

const (
	// TextureFormatRGBA8UnormSrgb is 8-bit sRGB color with alpha. This is the default.
	TextureFormatRGBA8UnormSrgb TextureFormat = iota
	TextureFormatRGBA8Unorm
	TextureFormatR32Float
	TextureFormatRG32Float
	TextureFormatRGBA32Float
)

// BytesPerPixel returns the byte size of a single texel.
func (f TextureFormat) BytesPerPixel() uint32 {
	switch f {
	case TextureFormatR32Float, TextureFormatRGBA8UnormSrgb, TextureFormatRGBA8Unorm:
		return 4
	case TextureFormatRG32Float:
		return 8
	case TextureFormatRGBA32Float:
		return 16
	default:
		return 4
	}
}

// WGPU returns the WebGPU equivalent of the format.
func (f TextureFormat) WGPU() wgpu.TextureFormat {
	switch f {
	case TextureFormatRGBA8Unorm:
		return wgpu.TextureFormatRGBA8Unorm
	case TextureFormatR32Float:
		return wgpu.TextureFormatR32Float
	case TextureFormatRG32Float:
		return wgpu.TextureFormatRG32Float
	case TextureFormatRGBA32Float:
		return wgpu.TextureFormatRGBA32Float
	default:
		return wgpu.TextureFormatRGBA8UnormSrgb
	}
}

// TextureBuffer holds a texture together with the view shaders bind to.
type TextureBuffer struct {
	handle
	format    TextureFormat
	dimension TextureDimension
	usage     TextureUsage
	width     uint32
	height    uint32
	layers    uint32
}

// NewTextureBuffer creates an unloaded 2D RGBA8 sRGB texture.
func NewTextureBuffer(label string) *TextureBuffer {
	return &TextureBuffer{handle: handle{label: label}, usage: DefaultTextureUsage}
}

// NewTextureBufferWithFormat creates an unloaded texture with an explicit format and dimension.
//
// Parameters:
//   - label: the debug label
//   - format: the texel format used for every upload
//   - dimension: 2D (layers are array layers) or 3D (layers are depth slices)
//
// Returns:
//   - *TextureBuffer: the unloaded texture handle
func NewTextureBufferWithFormat(label string, format TextureFormat, dimension TextureDimension) *TextureBuffer {
	return &TextureBuffer{handle: handle{label: label}, format: format, dimension: dimension, usage: DefaultTextureUsage}
}

// Set stores the backend texture and the extent it was created with.
func (t *TextureBuffer) Set(n Native, width, height, layers uint32, usage TextureUsage) {
	t.set(n)
	t.width = width
	t.height = height
	t.layers = layers
	t.usage = usage
}

func (t *TextureBuffer) Format() TextureFormat {
	return t.format
}

func (t *TextureBuffer) Dimension() TextureDimension {
	return t.dimension
}

func (t *TextureBuffer) Usage() TextureUsage {
	return t.usage
}

// Extent returns width, height and layer count of the last upload.
func (t *TextureBuffer) Extent() (width, height, layers uint32) {
	return t.width, t.height, t.layers
}

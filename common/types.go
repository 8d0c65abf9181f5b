// package common contains common types that are used throughout this module. They are not interface-wrapped structs, just plain structs that express
// commonly used data-types.
package common

import (
	"github.com/cogentcore/webgpu/wgpu"
)

// Color is a linear RGBA color with components in the [0, 1] range.
type Color struct {
	R, G, B, A float64
}

// DefaultClearColor is the color a Renderer clears the surface to until SetClearColor is called.
var DefaultClearColor = Color{R: 0.1, G: 0.2, B: 0.3, A: 1.0}

// ColorFromSlice builds a Color from a 3 or 4 element slice. A missing alpha defaults to 1.
//
// Parameters:
//   - values: the RGB or RGBA components
//
// Returns:
//   - Color: the resulting color
//   - bool: false if the slice does not hold 3 or 4 components
func ColorFromSlice(values []float64) (Color, bool) {
	switch len(values) {
	case 3:
		return Color{R: values[0], G: values[1], B: values[2], A: 1}, true
	case 4:
		return Color{R: values[0], G: values[1], B: values[2], A: values[3]}, true
	default:
		return Color{}, false
	}
}

// Valid reports whether every component lies within [0, 1].
func (c Color) Valid() bool {
	for _, v := range [4]float64{c.R, c.G, c.B, c.A} {
		if v < 0 || v > 1 {
			return false
		}
	}
	return true
}

// SamplerStagingData holds the configuration for a sampler pending GPU creation.
// Zero-valued fields fall back to linear filtering with repeat addressing.
type SamplerStagingData struct {
	// AddressModeU, AddressModeV, AddressModeW specify the addressing mode for texture coordinates outside the [0, 1] range in each dimension (U, V, W).
	AddressModeU, AddressModeV, AddressModeW wgpu.AddressMode
	// MagFilter and MinFilter specify the filtering mode for magnification and minification.
	MagFilter, MinFilter wgpu.FilterMode
	// MipmapFilter specifies the filtering mode for mipmap level selection.
	MipmapFilter wgpu.MipmapFilterMode
	// LodMinClamp and LodMaxClamp specify the minimum and maximum level of detail (LOD) for mipmapping.
	LodMinClamp, LodMaxClamp float32
	// Compare specifies the comparison function for comparison samplers.
	Compare wgpu.CompareFunction
	// MaxAnisotropy specifies the maximum anisotropy level for anisotropic filtering.
	MaxAnisotropy uint16
}

package renderer

import (
	"github.com/Carmen-Shannon/oxy-pipeline/common"
	"github.com/Carmen-Shannon/oxy-pipeline/engine/globals"
	"github.com/Carmen-Shannon/oxy-pipeline/engine/renderer/resource"
)

// The systems below are the renderer's entry points for a frame scheduler. The scheduler runs
// StartupSystem once, then BindSystem, any number of loads, draws and dispatches, and ReleaseSystem
// for every frame, and ResizeSystem between frames when the surface size changes.

// DefaultSampler is the sampler StartupSystem stores in globals.
type DefaultSampler struct {
	Sampler *resource.Sampler
}

// StartupSystem binds the renderer's backend to surface and stores a default sampler in g.
//
// Parameters:
//   - r: the renderer
//   - g: the globals receiving a DefaultSampler
//   - surface: the surface to render to
//
// Returns:
//   - error: an error if the backend or the sampler could not be created
func StartupSystem(r Renderer, g *globals.Globals, surface Surface) error {
	if err := r.Startup(surface); err != nil {
		return err
	}

	sampler := resource.NewSampler("Default Sampler")
	if err := r.LoadSampler(sampler, common.SamplerStagingData{}); err != nil {
		return err
	}
	globals.Set(g, DefaultSampler{Sampler: sampler})
	return nil
}

// BindSystem starts a frame and compiles any shaders that are not loaded yet.
//
// Parameters:
//   - r: the renderer
//   - shaders: the shader assets, may be nil
//
// Returns:
//   - error: an error if the frame could not begin
func BindSystem(r Renderer, shaders Shaders) error {
	return r.BeginFrame(shaders)
}

// ReleaseSystem submits the frame and advances the frame cycle.
//
// Parameters:
//   - r: the renderer
//
// Returns:
//   - error: the submission error
func ReleaseSystem(r Renderer) error {
	return r.EndFrame()
}

// ResizeSystem forwards a new surface size. It does not touch the pipeline cache.
//
// Parameters:
//   - r: the renderer
//   - width: the new width in pixels
//   - height: the new height in pixels
func ResizeSystem(r Renderer, width, height int) {
	r.Resize(width, height)
}

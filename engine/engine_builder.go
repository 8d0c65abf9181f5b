package engine

import (
	"github.com/Carmen-Shannon/oxy-pipeline/engine/globals"
	"github.com/Carmen-Shannon/oxy-pipeline/engine/renderer"
	"github.com/Carmen-Shannon/oxy-pipeline/engine/renderer/shader"
	"github.com/Carmen-Shannon/oxy-pipeline/engine/window"
)

// EngineBuilderOption is a functional option for configuring an Engine.
type EngineBuilderOption func(*engine)

// WithProfiling enables or disables performance profiling output.
//
// Parameters:
//   - enabled: if true, enables performance profiling
//
// Returns:
//   - EngineBuilderOption: option function to apply
func WithProfiling(enabled bool) EngineBuilderOption {
	return func(e *engine) {
		e.profilingEnabled.Store(enabled)
	}
}

// WithTickRate sets the engine tick rate in ticks per second. Values <= 0 mean 60.
//
// Parameters:
//   - fps: target ticks per second
//
// Returns:
//   - EngineBuilderOption: option function to apply
func WithTickRate(fps float64) EngineBuilderOption {
	return func(e *engine) {
		e.engineTickRate = tickDuration(fps)
	}
}

// WithWindow sets the window the engine renders to and reads resize and key events from.
//
// Parameters:
//   - w: the window
//
// Returns:
//   - EngineBuilderOption: option function to apply
func WithWindow(w window.Window) EngineBuilderOption {
	return func(e *engine) {
		e.window = w
	}
}

// WithRenderer sets the renderer. It must not have been started up yet.
//
// Parameters:
//   - r: the renderer
//
// Returns:
//   - EngineBuilderOption: option function to apply
func WithRenderer(r renderer.Renderer) EngineBuilderOption {
	return func(e *engine) {
		e.renderer = r
	}
}

// WithShaderStore sets the shader store the frame-bind step compiles from.
//
// Parameters:
//   - s: the store
//
// Returns:
//   - EngineBuilderOption: option function to apply
func WithShaderStore(s shader.Store) EngineBuilderOption {
	return func(e *engine) {
		e.shaders = s
	}
}

// WithGlobals sets the shared values container.
//
// Parameters:
//   - g: the globals
//
// Returns:
//   - EngineBuilderOption: option function to apply
func WithGlobals(g *globals.Globals) EngineBuilderOption {
	return func(e *engine) {
		e.globals = g
	}
}

// WithShaderDirs sets directories whose .wgsl files are loaded into the store at startup.
//
// Parameters:
//   - dirs: the directories
//
// Returns:
//   - EngineBuilderOption: option function to apply
func WithShaderDirs(dirs ...string) EngineBuilderOption {
	return func(e *engine) {
		e.shaderDirs = append(e.shaderDirs, dirs...)
	}
}

// WithHotReload watches the shader directories and recompiles changed shaders between frames.
//
// Parameters:
//   - enabled: true to watch
//
// Returns:
//   - EngineBuilderOption: option function to apply
func WithHotReload(enabled bool) EngineBuilderOption {
	return func(e *engine) {
		e.hotReload = enabled
	}
}

// WithRenderFrameLimit sets an optional render frame rate cap in frames per second.
//
// Parameters:
//   - fps: maximum render frames per second (0 = uncapped)
//
// Returns:
//   - EngineBuilderOption: option function to apply
func WithRenderFrameLimit(fps float64) EngineBuilderOption {
	return func(e *engine) {
		e.renderFrameLimit.Store(int64(frameLimit(fps)))
	}
}

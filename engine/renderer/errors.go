package renderer

import "errors"

var (
	// ErrNotReady is the panic value of every Renderer operation that needs a backend before Startup has run.
	ErrNotReady = errors.New("renderer backend is not initialized, Startup must run first")

	// ErrPipelineNotFound is returned by Run and Compute when no compiled pipeline exists for the pipeline's shader.
	ErrPipelineNotFound = errors.New("no compiled pipeline for shader, call Bind first")

	// ErrPipelineKind is returned when a render pipeline is dispatched as compute or the other way around.
	ErrPipelineKind = errors.New("pipeline kind does not match the operation")

	// ErrStaleBindings is returned when a pipeline's bindings were resolved against a compiled pipeline
	// that has since been dropped or recompiled.
	ErrStaleBindings = errors.New("pipeline bindings are stale, call Bind again")

	// ErrShaderMismatch is returned by Bind when the layout's shader is not the shader the pipeline was bound to.
	ErrShaderMismatch = errors.New("layout shader does not match the pipeline shader")

	// ErrShaderNotLoaded is returned by Bind when the layout's shader has not been compiled yet.
	ErrShaderNotLoaded = errors.New("shader is not loaded")

	// ErrNilMesh is returned by Run without a mesh.
	ErrNilMesh = errors.New("mesh is nil")
)

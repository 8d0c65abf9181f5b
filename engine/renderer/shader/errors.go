package shader

import "errors"

var (
	// ErrNoEntryPoint is returned when a source declares neither a @vertex nor a @compute entry point.
	ErrNoEntryPoint = errors.New("shader declares no vertex or compute entry point")

	// ErrCompile wraps failures reported by a Validator.
	ErrCompile = errors.New("shader failed to compile")

	// ErrNotFound is returned by Store lookups for unknown shaders.
	ErrNotFound = errors.New("shader not found")
)

package bind_group

import "errors"

var (
	// ErrUnloadedResource is returned when a binding references a resource handle that was never loaded.
	ErrUnloadedResource = errors.New("bind group references an unloaded resource")

	// ErrLayoutMismatch is returned when the bind groups do not structurally match the pipeline's slots.
	ErrLayoutMismatch = errors.New("bind groups do not match the pipeline layout")
)

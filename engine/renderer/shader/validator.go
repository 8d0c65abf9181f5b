package shader

import (
	"fmt"

	"github.com/gogpu/naga"
)

// Validator checks WGSL source before it is handed to the GPU backend.
// A non-nil error is treated as a compile failure for the shader.
type Validator func(source string) error

// NagaValidator compiles the source to SPIR-V on the CPU with naga and discards the output.
// Syntax and type errors surface here with readable messages instead of as device errors.
func NagaValidator(source string) error {
	if _, err := naga.Compile(source); err != nil {
		return fmt.Errorf("%w: %w", ErrCompile, err)
	}
	return nil
}

// NopValidator accepts every source.
func NopValidator(string) error {
	return nil
}

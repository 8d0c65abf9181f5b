package shader

// ShaderBuilderOption is a functional option applied to a shader during construction via NewShader.
type ShaderBuilderOption func(*shader)

// WithPath records the file the source was read from so hot reload can find the shader again.
//
// Parameters:
//   - path: the source file path
//
// Returns:
//   - ShaderBuilderOption: a function that applies the path option to a shader
func WithPath(path string) ShaderBuilderOption {
	return func(s *shader) {
		s.path = path
	}
}

// WithValidator sets a Validator that runs before the source is handed to the GPU.
// When not specified no CPU-side validation is performed.
//
// Parameters:
//   - v: the validator, e.g. NagaValidator
//
// Returns:
//   - ShaderBuilderOption: a function that applies the validator option to a shader
func WithValidator(v Validator) ShaderBuilderOption {
	return func(s *shader) {
		s.validate = v
	}
}

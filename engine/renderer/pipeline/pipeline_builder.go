package pipeline

// OptionsBuilderOption is a functional option applied to Options via NewOptions.
type OptionsBuilderOption func(*Options)

// WithDepthBufferMode sets how the pipeline uses the depth buffer.
// When not specified the pipeline tests and writes depth.
//
// Parameters:
//   - mode: DepthBufferWrite, DepthBufferRead, or DepthBufferDisabled
//
// Returns:
//   - OptionsBuilderOption: a function that applies the depth buffer mode to Options
func WithDepthBufferMode(mode DepthBufferMode) OptionsBuilderOption {
	return func(o *Options) {
		o.DepthBufferMode = mode
	}
}

// WithCullMode toggles back-face culling. Culling is enabled by default.
//
// Parameters:
//   - enabled: false to draw both faces
//
// Returns:
//   - OptionsBuilderOption: a function that applies the cull option to Options
func WithCullMode(enabled bool) OptionsBuilderOption {
	return func(o *Options) {
		o.DisableCullMode = !enabled
	}
}

// WithBlendEnabled toggles alpha blending on the color target. Blending is enabled by default.
//
// Parameters:
//   - enabled: false to overwrite the color target
//
// Returns:
//   - OptionsBuilderOption: a function that applies the blend option to Options
func WithBlendEnabled(enabled bool) OptionsBuilderOption {
	return func(o *Options) {
		o.DisableBlend = !enabled
	}
}

// WithTopology sets the primitive topology.
//
// Parameters:
//   - topology: the primitive topology
//
// Returns:
//   - OptionsBuilderOption: a function that applies the topology option to Options
func WithTopology(topology Topology) OptionsBuilderOption {
	return func(o *Options) {
		o.Topology = topology
	}
}

// WithDepthBias sets a constant and slope-scaled depth bias.
//
// Parameters:
//   - bias: the constant depth bias
//   - slopeScale: the slope-scaled depth bias
//
// Returns:
//   - OptionsBuilderOption: a function that applies the depth bias option to Options
func WithDepthBias(bias int32, slopeScale float32) OptionsBuilderOption {
	return func(o *Options) {
		o.DepthBias = bias
		o.DepthBiasSlopeScale = slopeScale
	}
}

package pipeline

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewOptionsDefaults(t *testing.T) {
	o := NewOptions()

	assert.Equal(t, DepthBufferWrite, o.DepthBufferMode)
	assert.Equal(t, TopologyTriangleList, o.Topology)
	assert.False(t, o.DisableCullMode)
	assert.False(t, o.DisableBlend)
}

func TestNewOptionsApplied(t *testing.T) {
	o := NewOptions(
		WithDepthBufferMode(DepthBufferDisabled),
		WithCullMode(false),
		WithBlendEnabled(false),
		WithTopology(TopologyPointList),
		WithDepthBias(2, 1.5),
	)

	assert.Equal(t, DepthBufferDisabled, o.DepthBufferMode)
	assert.True(t, o.DisableCullMode)
	assert.True(t, o.DisableBlend)
	assert.Equal(t, TopologyPointList, o.Topology)
	assert.Equal(t, int32(2), o.DepthBias)
	assert.Equal(t, float32(1.5), o.DepthBiasSlopeScale)
}

func TestInstanceRange(t *testing.T) {
	tests := []struct {
		name       string
		options    DrawOptions
		start, end uint32
	}{
		{"zero value", DrawOptions{}, 0, 1},
		{"default", DefaultDrawOptions(), 0, 1},
		{"explicit", DrawOptions{StartIndex: 2, EndIndex: 10}, 2, 10},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			start, end := tt.options.InstanceRange()
			assert.Equal(t, tt.start, start)
			assert.Equal(t, tt.end, end)
		})
	}
}

func TestPipelineReleaseIsSafeWhenUnbound(t *testing.T) {
	p := NewPipeline()
	assert.NotPanics(t, p.Release)
	assert.True(t, p.Bindings.Empty())
}

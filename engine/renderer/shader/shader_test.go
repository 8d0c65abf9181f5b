package shader

import (
	"errors"
	"testing"

	"github.com/Carmen-Shannon/oxy-pipeline/engine/renderer/bind_group"
	"github.com/Carmen-Shannon/oxy-pipeline/engine/renderer/resource"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeModule struct {
	released bool
}

func (f *fakeModule) Release() {
	f.released = true
}

type fakeLoader struct {
	epoch   uint64
	loads   int
	fail    error
	modules []*fakeModule
}

func (l *fakeLoader) LoadShaderModule(module *resource.ShaderModule, name, code string) error {
	l.loads++
	if l.fail != nil {
		return l.fail
	}
	m := &fakeModule{}
	l.modules = append(l.modules, m)
	module.Set(m, name)
	return nil
}

func (l *fakeLoader) Epoch() uint64 {
	return l.epoch
}

func TestNewShaderAssignsUniqueIDs(t *testing.T) {
	a := NewShader("a", triangleSource)
	b := NewShader("a", triangleSource)

	assert.NotZero(t, a.ID())
	assert.NotEqual(t, a.ID(), b.ID())
}

func TestNewShaderReflects(t *testing.T) {
	render := NewShader("triangle", triangleSource, WithPath("/shaders/triangle.wgsl"))
	compute := NewShader("particles", computeSource)
	empty := NewShader("empty", "fn helper() {}")

	assert.Equal(t, KindRender, render.Kind())
	assert.Equal(t, "/shaders/triangle.wgsl", render.Path())
	assert.Equal(t, KindCompute, compute.Kind())
	assert.Equal(t, [3]uint32{64, 2, 1}, compute.WorkgroupSize())
	assert.Equal(t, KindUnknown, empty.Kind())
	assert.False(t, render.Loaded())
}

func TestLoadSkipsWhenCurrent(t *testing.T) {
	s := NewShader("triangle", triangleSource)
	loader := &fakeLoader{epoch: 1}

	require.NoError(t, s.Load(loader))
	require.NoError(t, s.Load(loader))

	assert.True(t, s.Loaded())
	assert.Equal(t, 1, loader.loads)
	assert.NoError(t, s.Err())
}

func TestLoadRecompilesOnNewEpoch(t *testing.T) {
	s := NewShader("triangle", triangleSource)
	loader := &fakeLoader{epoch: 1}
	require.NoError(t, s.Load(loader))

	loader.epoch = 2
	require.NoError(t, s.Load(loader))

	assert.Equal(t, 2, loader.loads)
	assert.True(t, loader.modules[0].released)
	assert.False(t, loader.modules[1].released)
}

func TestLoadFailureLeavesShaderUnloaded(t *testing.T) {
	s := NewShader("triangle", triangleSource)
	loader := &fakeLoader{epoch: 1}
	require.NoError(t, s.Load(loader))

	loader.epoch = 2
	loader.fail = errors.New("invalid module")
	err := s.Load(loader)

	assert.ErrorContains(t, err, "invalid module")
	assert.ErrorContains(t, err, "triangle")
	assert.Equal(t, err, s.Err())
	assert.False(t, s.Loaded())
	assert.True(t, loader.modules[0].released)
}

func TestLoadWithoutEntryPoint(t *testing.T) {
	s := NewShader("empty", "fn helper() {}")
	loader := &fakeLoader{epoch: 1}

	assert.ErrorIs(t, s.Load(loader), ErrNoEntryPoint)
	assert.Zero(t, loader.loads)
}

func TestLoadRunsValidator(t *testing.T) {
	rejected := errors.New("rejected")
	s := NewShader("triangle", triangleSource, WithValidator(func(string) error { return rejected }))
	loader := &fakeLoader{epoch: 1}

	assert.ErrorIs(t, s.Load(loader), rejected)
	assert.Zero(t, loader.loads)
}

func TestSetSourceUnloads(t *testing.T) {
	s := NewShader("swap", triangleSource)
	loader := &fakeLoader{epoch: 1}
	require.NoError(t, s.Load(loader))

	s.SetSource(computeSource)

	assert.False(t, s.Loaded())
	assert.Equal(t, KindCompute, s.Kind())
	require.NoError(t, s.Load(loader))
	assert.Equal(t, 2, loader.loads)
}

func TestCheckLayout(t *testing.T) {
	compute := NewShader("particles", computeSource)

	matching := bind_group.Layout{{
		{Group: 0, Binding: 0, Label: "params", Stage: bind_group.StageCompute, Kind: bind_group.KindUniform},
		{Group: 0, Binding: 1, Label: "particles", Stage: bind_group.StageAll, Kind: bind_group.KindStorage},
	}}
	assert.NoError(t, compute.CheckLayout(matching))

	tests := []struct {
		name   string
		layout bind_group.Layout
	}{
		{"missing binding", bind_group.Layout{{
			{Group: 0, Binding: 0, Stage: bind_group.StageCompute, Kind: bind_group.KindUniform},
		}}},
		{"wrong kind", bind_group.Layout{{
			{Group: 0, Binding: 0, Stage: bind_group.StageCompute, Kind: bind_group.KindUniform},
			{Group: 0, Binding: 1, Stage: bind_group.StageCompute, Kind: bind_group.KindStorageAsUniform},
		}}},
		{"wrong stage", bind_group.Layout{{
			{Group: 0, Binding: 0, Stage: bind_group.StageVertex, Kind: bind_group.KindUniform},
			{Group: 0, Binding: 1, Stage: bind_group.StageCompute, Kind: bind_group.KindStorage},
		}}},
		{"undeclared slot", bind_group.Layout{
			matching[0],
			{{Group: 1, Binding: 0, Stage: bind_group.StageCompute, Kind: bind_group.KindUniform}},
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.ErrorIs(t, compute.CheckLayout(tt.layout), bind_group.ErrLayoutMismatch)
		})
	}
}

func TestNagaValidator(t *testing.T) {
	assert.NoError(t, NopValidator("anything"))
	assert.ErrorIs(t, NagaValidator("@compute @workgroup_size(1) fn main( {"), ErrCompile)
}

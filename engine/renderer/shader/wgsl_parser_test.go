package shader

import (
	"testing"

	"github.com/Carmen-Shannon/oxy-pipeline/engine/renderer/bind_group"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseEntryPoints(t *testing.T) {
	assert.Equal(t, EntryPoints{Vertex: "vs_main", Fragment: "fs_main"}, parseEntryPoints(triangleSource))
	assert.Equal(t, EntryPoints{Compute: "cs_main"}, parseEntryPoints(computeSource))
	assert.Equal(t, EntryPoints{}, parseEntryPoints("fn helper() {}"))
}

func TestParseWorkgroupSize(t *testing.T) {
	assert.Equal(t, [3]uint32{64, 2, 1}, parseWorkgroupSize(computeSource))
	assert.Equal(t, [3]uint32{8, 8, 4}, parseWorkgroupSize("@compute @workgroup_size(8, 8, 4) fn main() {}"))
	assert.Equal(t, [3]uint32{1, 1, 1}, parseWorkgroupSize(triangleSource))
}

func TestParseDeclarationsSortedAndCommentsIgnored(t *testing.T) {
	decls := parseDeclarations(computeSource)

	require.Len(t, decls, 2)
	assert.Equal(t, Declaration{Group: 0, Binding: 0, Name: "params", Type: "Params", Kind: bind_group.KindUniform}, decls[0])
	assert.Equal(t, "particles", decls[1].Name)
	assert.Equal(t, "array<vec4<f32>>", decls[1].Type)
	assert.Equal(t, bind_group.KindStorage, decls[1].Kind)
}

func TestClassifyResource(t *testing.T) {
	tests := []struct {
		space, typ string
		want       bind_group.Kind
	}{
		{"uniform", "Camera", bind_group.KindUniform},
		{"storage, read_write", "array<f32>", bind_group.KindStorage},
		{"storage, read", "array<f32>", bind_group.KindStorageAsUniform},
		{"storage", "array<f32>", bind_group.KindStorageAsUniform},
		{"", "sampler", bind_group.KindSampler},
		{"", "sampler_comparison", bind_group.KindSampler},
		{"", "texture_2d<f32>", bind_group.KindTexture},
		{"", "texture_2d_array<f32>", bind_group.KindTexture},
		{"", "texture_3d<f32>", bind_group.KindTexture3D},
		{"", "texture_storage_2d<rgba8unorm, write>", bind_group.KindStorageTexture},
	}
	for _, tt := range tests {
		t.Run(tt.space+" "+tt.typ, func(t *testing.T) {
			assert.Equal(t, tt.want, classifyResource(tt.space, tt.typ))
		})
	}
}

func TestStripNestedBlockComments(t *testing.T) {
	assert.Equal(t, "a  b", stripBlockComments("a /* x /* y */ z */ b"))
}

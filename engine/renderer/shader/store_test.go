package shader

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeShader(t *testing.T, dir, name, source string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(source), 0o644))
	return path
}

func TestStoreAddKeepsIDAcrossUpdates(t *testing.T) {
	s := NewStore()

	first := s.Add("particles", triangleSource)
	second := s.Add("particles", computeSource)

	assert.Same(t, first, second)
	assert.Equal(t, KindCompute, second.Kind())
	assert.Equal(t, 1, s.Len())

	byName, ok := s.ByName("particles")
	require.True(t, ok)
	assert.Equal(t, first.ID(), byName.ID())
}

func TestStoreLoadDir(t *testing.T) {
	dir := t.TempDir()
	writeShader(t, dir, "b_compute.wgsl", computeSource)
	writeShader(t, dir, "a_triangle.wgsl", triangleSource)
	writeShader(t, dir, "notes.txt", "not a shader")
	require.NoError(t, os.Mkdir(filepath.Join(dir, "nested.wgsl"), 0o755))

	s := NewStore(WithWorkers(2))
	loaded, err := s.LoadDir(dir)
	require.NoError(t, err)

	require.Len(t, loaded, 2)
	assert.Equal(t, "a_triangle", loaded[0].Name())
	assert.Equal(t, "b_compute", loaded[1].Name())
	assert.Equal(t, KindRender, loaded[0].Kind())
	assert.True(t, filepath.IsAbs(loaded[1].Path()))
}

func TestStoreLoadDirMissing(t *testing.T) {
	_, err := NewStore().LoadDir(filepath.Join(t.TempDir(), "missing"))
	assert.Error(t, err)
}

func TestStoreReload(t *testing.T) {
	dir := t.TempDir()
	path := writeShader(t, dir, "swap.wgsl", triangleSource)

	s := NewStore()
	sh, err := s.AddFromPath(path)
	require.NoError(t, err)
	id := sh.ID()

	writeShader(t, dir, "swap.wgsl", computeSource)
	reloaded, err := s.Reload(path)
	require.NoError(t, err)

	assert.Equal(t, id, reloaded.ID())
	assert.Equal(t, KindCompute, reloaded.Kind())
}

func TestStoreReloadUnknownPath(t *testing.T) {
	_, err := NewStore().Reload(filepath.Join(t.TempDir(), "ghost.wgsl"))
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestStoreRemoveAndEachOrder(t *testing.T) {
	s := NewStore()
	a := s.Add("a", triangleSource)
	b := s.Add("b", computeSource)
	c := s.Add("c", triangleSource)

	assert.True(t, s.Remove(b.ID()))
	assert.False(t, s.Remove(b.ID()))

	var names []string
	s.Each(func(sh Shader) { names = append(names, sh.Name()) })
	assert.Equal(t, []string{"a", "c"}, names)

	_, ok := s.Get(a.ID())
	assert.True(t, ok)
	_, ok = s.ByName("b")
	assert.False(t, ok)
	_, ok = s.Get(c.ID())
	assert.True(t, ok)
}

func TestStoreGenerationMovesOnEveryChange(t *testing.T) {
	dir := t.TempDir()
	path := writeShader(t, dir, "gen.wgsl", triangleSource)
	s := NewStore()
	assert.Zero(t, s.Generation())

	a := s.Add("a", triangleSource)
	afterAdd := s.Generation()
	assert.NotZero(t, afterAdd)

	s.Add("a", computeSource)
	afterUpdate := s.Generation()
	assert.Greater(t, afterUpdate, afterAdd)

	_, err := s.AddFromPath(path)
	require.NoError(t, err)
	_, err = s.Reload(path)
	require.NoError(t, err)
	afterReload := s.Generation()
	assert.Greater(t, afterReload, afterUpdate)

	assert.False(t, s.Remove(ID(0)))
	assert.Equal(t, afterReload, s.Generation())
	assert.True(t, s.Remove(a.ID()))
	assert.Greater(t, s.Generation(), afterReload)

	s.Each(func(Shader) {})
	_, _ = s.ByName("gen")
	assert.Equal(t, afterReload+1, s.Generation())
}

func TestStoreValidatorAppliesToShaders(t *testing.T) {
	var seen []string
	s := NewStore(WithStoreValidator(func(src string) error {
		seen = append(seen, src)
		return nil
	}))
	sh := s.Add("triangle", triangleSource)

	require.NoError(t, sh.Load(&fakeLoader{epoch: 1}))
	assert.Equal(t, []string{triangleSource}, seen)
}

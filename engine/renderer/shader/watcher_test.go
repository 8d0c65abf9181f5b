package shader

import (
	"path/filepath"
	"slices"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWatcherQueuesChangedShaders(t *testing.T) {
	dir := t.TempDir()
	w, err := NewWatcher(dir)
	require.NoError(t, err)
	defer w.Close()

	path := writeShader(t, dir, "live.wgsl", triangleSource)
	writeShader(t, dir, "ignored.txt", "text")
	want, err := filepath.Abs(path)
	require.NoError(t, err)

	var flushed []string
	assert.Eventually(t, func() bool {
		flushed = append(flushed, w.Flush()...)
		return slices.Contains(flushed, want)
	}, 2*time.Second, 10*time.Millisecond)

	for _, p := range flushed {
		assert.Equal(t, ".wgsl", filepath.Ext(p))
	}
	assert.Empty(t, w.Flush())
}

func TestWatcherCloseTwice(t *testing.T) {
	w, err := NewWatcher(t.TempDir())
	require.NoError(t, err)

	assert.NoError(t, w.Close())
	assert.NoError(t, w.Close())
}

func TestWatcherMissingDir(t *testing.T) {
	_, err := NewWatcher(filepath.Join(t.TempDir(), "missing"))
	assert.Error(t, err)
}

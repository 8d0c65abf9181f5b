package common

import (
	"bytes"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestColorFromSlice(t *testing.T) {
	c, ok := ColorFromSlice([]float64{0.5, 0.25, 0})
	assert.True(t, ok)
	assert.Equal(t, Color{R: 0.5, G: 0.25, B: 0, A: 1}, c)

	c, ok = ColorFromSlice([]float64{0, 0, 0, 0.5})
	assert.True(t, ok)
	assert.Equal(t, 0.5, c.A)

	_, ok = ColorFromSlice([]float64{1, 1})
	assert.False(t, ok)
}

func TestColorValid(t *testing.T) {
	assert.True(t, DefaultClearColor.Valid())
	assert.False(t, Color{R: 1.5, A: 1}.Valid())
	assert.False(t, Color{G: -0.1}.Valid())
}

func TestAlignTo(t *testing.T) {
	aligned := []byte{1, 2, 3, 4}
	assert.Equal(t, aligned, AlignTo(aligned, 4))

	padded := AlignTo([]byte{1, 2, 3, 4, 5}, 4)
	assert.Equal(t, []byte{1, 2, 3, 4, 5, 0, 0, 0}, padded)
	assert.Len(t, AlignTo(make([]byte, 20), 16), 32)
	assert.Empty(t, AlignTo(nil, 16))
}

func TestSliceToBytes(t *testing.T) {
	assert.Nil(t, SliceToBytes[float32](nil))
	assert.Len(t, SliceToBytes([]float32{1, 2, 3}), 12)
	assert.Equal(t, []byte{1, 0, 0, 0}, SliceToBytes([]uint32{1}))
}

func TestCoalesce(t *testing.T) {
	assert.Equal(t, 3, Coalesce(0, 3, 5))
	assert.Equal(t, "", Coalesce("", ""))
	assert.Equal(t, uint32(1), Coalesce(uint32(0), 1))
}

func TestSetLogger(t *testing.T) {
	defer SetLogger(nil)

	assert.False(t, Logger().Enabled(t.Context(), slog.LevelError))

	var buf bytes.Buffer
	SetLogger(slog.New(slog.NewTextHandler(&buf, nil)))
	Logger().Info("pipeline compiled", "shader", 1)
	assert.Contains(t, buf.String(), "pipeline compiled")

	SetLogger(nil)
	assert.NotNil(t, Logger())
	assert.False(t, Logger().Enabled(t.Context(), slog.LevelError))
}

func TestClamp(t *testing.T) {
	assert.Equal(t, 320, Clamp(10, 320, 3840))
	assert.Equal(t, 3840, Clamp(5000, 320, 3840))
	assert.Equal(t, 5000, Clamp(5000, 320, 0))
	assert.Equal(t, 0.5, Clamp(0.5, 0.0, 1.0))
}

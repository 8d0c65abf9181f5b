// Package config loads the TOML configuration of an oxy-pipeline application and turns it into
// builder options for the window, renderer and shader store.
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/Carmen-Shannon/oxy-pipeline/common"
	"github.com/Carmen-Shannon/oxy-pipeline/engine"
	"github.com/Carmen-Shannon/oxy-pipeline/engine/renderer"
	"github.com/Carmen-Shannon/oxy-pipeline/engine/renderer/shader"
	"github.com/Carmen-Shannon/oxy-pipeline/engine/window"
	"github.com/pelletier/go-toml/v2"
)

// ErrInvalid is wrapped by every validation error.
var ErrInvalid = errors.New("invalid configuration")

// Config is the root of the configuration file.
type Config struct {
	Window   WindowConfig   `toml:"window"`
	Renderer RendererConfig `toml:"renderer"`
	Shaders  ShaderConfig   `toml:"shaders"`
	Log      LogConfig      `toml:"log"`
}

type WindowConfig struct {
	Title     string `toml:"title"`
	Width     int    `toml:"width"`
	Height    int    `toml:"height"`
	Resizable bool   `toml:"resizable"`
}

type RendererConfig struct {
	// PresentMode is "vsync" or "uncapped".
	PresentMode   string    `toml:"present_mode"`
	MSAA          uint32    `toml:"msaa"`
	ClearColor    []float64 `toml:"clear_color"`
	ForceSoftware bool      `toml:"force_software"`
	// FrameLimit caps the frame rate, 0 is uncapped.
	FrameLimit float64 `toml:"frame_limit"`
	Profiling  bool    `toml:"profiling"`
}

type ShaderConfig struct {
	// Dirs are scanned for .wgsl files at startup.
	Dirs     []string `toml:"dirs"`
	Watch    bool     `toml:"watch"`
	Workers  int      `toml:"workers"`
	Validate bool     `toml:"validate"`
}

type LogConfig struct {
	// Level is one of debug, info, warn, error.
	Level  string `toml:"level"`
	Format string `toml:"format"`
}

// Default returns the configuration used for keys a file leaves out.
func Default() Config {
	c := common.DefaultClearColor
	return Config{
		Window: WindowConfig{
			Title:     "oxy-pipeline",
			Width:     1280,
			Height:    720,
			Resizable: true,
		},
		Renderer: RendererConfig{
			PresentMode: "vsync",
			MSAA:        uint32(renderer.MSAA4x),
			ClearColor:  []float64{c.R, c.G, c.B, c.A},
		},
		Shaders: ShaderConfig{
			Dirs:     []string{"shaders"},
			Watch:    true,
			Workers:  4,
			Validate: true,
		},
		Log: LogConfig{
			Level:  "info",
			Format: "text",
		},
	}
}

// Load reads a TOML file on top of Default and validates the result.
// A missing file yields the defaults.
//
// Parameters:
//   - path: the file to read
//
// Returns:
//   - Config: the configuration
//   - error: a read, decode or validation error
func Load(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		cfg := Default()
		return cfg, cfg.Validate()
	}
	if err != nil {
		return Config{}, fmt.Errorf("failed to read config %s: %w", path, err)
	}
	return Parse(data)
}

// Parse decodes TOML on top of Default and validates the result.
//
// Parameters:
//   - data: the TOML document
//
// Returns:
//   - Config: the configuration
//   - error: a decode or validation error
func Parse(data []byte) (Config, error) {
	cfg := Default()
	if err := toml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("failed to decode config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks every field that has a restricted range.
func (c Config) Validate() error {
	if c.Window.Width <= 0 || c.Window.Height <= 0 {
		return fmt.Errorf("%w: window size %dx%d must be positive", ErrInvalid, c.Window.Width, c.Window.Height)
	}
	if _, err := c.presentMode(); err != nil {
		return err
	}
	if !renderer.MSAASampleCount(c.Renderer.MSAA).Valid() {
		return fmt.Errorf("%w: msaa must be 1, 4, 8 or 16, got %d", ErrInvalid, c.Renderer.MSAA)
	}
	if _, err := c.clearColor(); err != nil {
		return err
	}
	if c.Renderer.FrameLimit < 0 {
		return fmt.Errorf("%w: frame_limit must not be negative", ErrInvalid)
	}
	if c.Shaders.Workers < 1 {
		return fmt.Errorf("%w: shaders.workers must be at least 1, got %d", ErrInvalid, c.Shaders.Workers)
	}
	if _, err := c.SlogLevel(); err != nil {
		return err
	}
	switch c.Log.Format {
	case "text", "json":
	default:
		return fmt.Errorf("%w: log format must be text or json, got %q", ErrInvalid, c.Log.Format)
	}
	return nil
}

func (c Config) presentMode() (renderer.PresentMode, error) {
	switch strings.ToLower(c.Renderer.PresentMode) {
	case "vsync":
		return renderer.PresentModeVSync, nil
	case "uncapped":
		return renderer.PresentModeUncapped, nil
	default:
		return 0, fmt.Errorf("%w: present_mode must be vsync or uncapped, got %q", ErrInvalid, c.Renderer.PresentMode)
	}
}

func (c Config) clearColor() (common.Color, error) {
	color, ok := common.ColorFromSlice(c.Renderer.ClearColor)
	if !ok || len(c.Renderer.ClearColor) != 4 || !color.Valid() {
		return common.Color{}, fmt.Errorf("%w: clear_color must hold 4 components in [0, 1]", ErrInvalid)
	}
	return color, nil
}

// SlogLevel converts the log level name.
//
// Returns:
//   - slog.Level: the level
//   - error: an error for unknown names
func (c Config) SlogLevel() (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(c.Log.Level)); err != nil {
		return 0, fmt.Errorf("%w: log level %q", ErrInvalid, c.Log.Level)
	}
	return level, nil
}

// NewLogger builds the slog logger the configuration describes, writing to stderr.
//
// Returns:
//   - *slog.Logger: the logger
func (c Config) NewLogger() *slog.Logger {
	level, _ := c.SlogLevel()
	opts := &slog.HandlerOptions{Level: level}
	if c.Log.Format == "json" {
		return slog.New(slog.NewJSONHandler(os.Stderr, opts))
	}
	return slog.New(slog.NewTextHandler(os.Stderr, opts))
}

// RendererOptions converts the renderer section. The configuration must be valid.
//
// Returns:
//   - []renderer.RendererBuilderOption: the options for renderer.NewRenderer
func (c Config) RendererOptions() []renderer.RendererBuilderOption {
	mode, _ := c.presentMode()
	color, _ := c.clearColor()
	return []renderer.RendererBuilderOption{
		renderer.WithPresentMode(mode),
		renderer.WithMSAA(renderer.MSAASampleCount(c.Renderer.MSAA)),
		renderer.WithClearColor(color),
		renderer.WithForceSoftwareRenderer(c.Renderer.ForceSoftware),
	}
}

// WindowOptions converts the window section.
//
// Returns:
//   - []window.WindowBuilderOption: the options for window.NewWindow
func (c Config) WindowOptions() []window.WindowBuilderOption {
	return []window.WindowBuilderOption{
		window.WithTitle(c.Window.Title),
		window.WithSize(c.Window.Width, c.Window.Height),
		window.WithResizable(c.Window.Resizable),
	}
}

// StoreOptions converts the shaders section.
//
// Returns:
//   - []shader.StoreBuilderOption: the options for shader.NewStore
func (c Config) StoreOptions() []shader.StoreBuilderOption {
	opts := []shader.StoreBuilderOption{shader.WithWorkers(c.Shaders.Workers)}
	if c.Shaders.Validate {
		opts = append(opts, shader.WithStoreValidator(shader.NagaValidator))
	}
	return opts
}

// EngineOptions converts the shader directories, hot reload, frame limit and profiling settings.
//
// Returns:
//   - []engine.EngineBuilderOption: the options for engine.NewEngine
func (c Config) EngineOptions() []engine.EngineBuilderOption {
	return []engine.EngineBuilderOption{
		engine.WithShaderDirs(c.Shaders.Dirs...),
		engine.WithHotReload(c.Shaders.Watch),
		engine.WithRenderFrameLimit(c.Renderer.FrameLimit),
		engine.WithProfiling(c.Renderer.Profiling),
	}
}

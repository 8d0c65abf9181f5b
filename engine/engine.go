// Package engine is the frame scheduler: it runs the renderer's lifecycle systems in order,
// drives the tick and render loops, and applies window resizes and shader hot reloads at frame
// boundaries.
package engine

import (
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/Carmen-Shannon/oxy-pipeline/common"
	"github.com/Carmen-Shannon/oxy-pipeline/engine/globals"
	"github.com/Carmen-Shannon/oxy-pipeline/engine/profiler"
	"github.com/Carmen-Shannon/oxy-pipeline/engine/renderer"
	"github.com/Carmen-Shannon/oxy-pipeline/engine/renderer/shader"
	"github.com/Carmen-Shannon/oxy-pipeline/engine/window"
)

// size is a pending surface size.
type size struct {
	width, height int
}

// engine implements the Engine interface.
type engine struct {
	tickRateChannel chan time.Duration

	running atomic.Bool
	wg      sync.WaitGroup

	quitChannel chan struct{}
	quitOnce    sync.Once

	window   window.Window
	renderer renderer.Renderer
	shaders  shader.Store
	globals  *globals.Globals

	shaderDirs []string
	hotReload  bool
	watcher    *shader.Watcher

	profiler         *profiler.Profiler
	profilingEnabled atomic.Bool

	engineTickRate   time.Duration
	renderFrameLimit atomic.Int64
	tickCallback     atomic.Pointer[func(deltaTime float32)]
	renderCallback   atomic.Pointer[func(deltaTime float32) error]
	started          bool

	// written by the window thread, applied by the render loop between frames
	pendingMu       sync.Mutex
	pendingResize   *size
	reloadRequested atomic.Bool
}

// Engine owns a window, a renderer and a shader store and schedules the renderer's lifecycle:
// StartupSystem once, then BindSystem, the render callback and ReleaseSystem for every frame.
// Resizes, reload requests and changed shader files are applied before BindSystem so they never
// land inside a frame.
type Engine interface {
	// Window returns the window frames are presented to.
	//
	// Returns:
	//   - window.Window: the window, or nil if none was configured
	Window() window.Window

	// Renderer returns the renderer.
	//
	// Returns:
	//   - renderer.Renderer: the renderer
	Renderer() renderer.Renderer

	// Shaders returns the shader store the frame-bind step compiles from.
	//
	// Returns:
	//   - shader.Store: the store
	Shaders() shader.Store

	// Globals returns the shared values, including the renderer.DefaultSampler stored at startup.
	//
	// Returns:
	//   - *globals.Globals: the globals
	Globals() *globals.Globals

	// EnableProfiler enables performance profiling output to the log.
	EnableProfiler()

	// DisableProfiler disables performance profiling output.
	DisableProfiler()

	// SetTickRate sets the engine tick rate in ticks per second.
	//
	// Parameters:
	//   - fps: target ticks per second (defaults to 60 if <= 0)
	SetTickRate(fps float64)

	// SetTickCallback registers the function called each engine tick, on the tick goroutine.
	//
	// Parameters:
	//   - callback: function receiving the delta time in seconds
	SetTickCallback(callback func(deltaTime float32))

	// SetRenderCallback registers the function called inside every frame, between BindSystem and
	// ReleaseSystem. Loads, binds, draws and dispatches belong here. A returned error is logged
	// and the frame is still submitted.
	//
	// Parameters:
	//   - callback: function receiving the delta time in seconds
	SetRenderCallback(callback func(deltaTime float32) error)

	// SetRenderFrameLimit sets an optional render frame rate cap in frames per second.
	//
	// Parameters:
	//   - fps: maximum render frames per second (0 = uncapped)
	SetRenderFrameLimit(fps float64)

	// RequestReload asks for every pipeline to be dropped and every shader recompiled before the next frame.
	RequestReload()

	// RequestResize queues a surface size to apply before the next frame.
	//
	// Parameters:
	//   - width: the new width in pixels
	//   - height: the new height in pixels
	RequestResize(width, height int)

	// Startup runs StartupSystem against the window, loads the configured shader directories and
	// starts the hot reload watcher. Run calls it; call it earlier to load resources before the
	// first frame. Later calls are no-ops.
	//
	// Returns:
	//   - error: an error if the renderer, the shaders or the watcher could not be set up
	Startup() error

	// Frame runs one frame: pending resizes and reloads, BindSystem, the render callback and ReleaseSystem.
	//
	// Parameters:
	//   - deltaTime: the time since the previous frame in seconds
	//
	// Returns:
	//   - error: a begin or submit error
	Frame(deltaTime float32) error

	// Run starts up, runs the tick and render loops and processes window messages until the
	// window closes, then shuts everything down. Must be called from the goroutine that created the window.
	//
	// Returns:
	//   - error: a startup error
	Run() error

	// Quit signals all engine goroutines to stop. Safe to call multiple times.
	Quit()

	// Shutdown stops the shader watcher, releases the renderer and closes the window.
	// Run calls it after the loops exit; call it directly when driving frames with Frame.
	Shutdown()
}

var _ Engine = &engine{}

// NewEngine creates a new Engine with the provided options. Without WithRenderer a WebGPU renderer
// with default options is used; without WithShaderStore an empty store is used.
//
// Parameters:
//   - options: functional options for engine configuration
//
// Returns:
//   - Engine: the newly created engine
func NewEngine(options ...EngineBuilderOption) Engine {
	e := &engine{
		tickRateChannel: make(chan time.Duration, 1),
		quitChannel:     make(chan struct{}),
		engineTickRate:  time.Second / 60,
	}
	for _, opt := range options {
		opt(e)
	}

	if e.renderer == nil {
		e.renderer = renderer.NewRenderer()
	}
	if e.shaders == nil {
		e.shaders = shader.NewStore()
	}
	if e.globals == nil {
		e.globals = globals.New()
	}
	e.profiler = profiler.NewProfiler(e.renderer)

	if e.window != nil {
		e.window.SetResizeCallback(e.RequestResize)
		e.window.SetKeyDownCallback(func(keyCode uint32) {
			if keyCode == common.KeyF5 {
				e.RequestReload()
			}
		})
	}
	return e
}

func (e *engine) Window() window.Window {
	return e.window
}

func (e *engine) Renderer() renderer.Renderer {
	return e.renderer
}

func (e *engine) Shaders() shader.Store {
	return e.shaders
}

func (e *engine) Globals() *globals.Globals {
	return e.globals
}

func (e *engine) Startup() error {
	if e.started {
		return nil
	}
	if e.window == nil {
		return errors.New("engine has no window to render to")
	}
	if err := renderer.StartupSystem(e.renderer, e.globals, e.window); err != nil {
		return err
	}

	for _, dir := range e.shaderDirs {
		loaded, err := e.shaders.LoadDir(dir)
		if err != nil {
			return err
		}
		common.Logger().Info("shaders loaded", "dir", dir, "count", len(loaded))
	}

	if e.hotReload && len(e.shaderDirs) > 0 && e.watcher == nil {
		w, err := shader.NewWatcher(e.shaderDirs...)
		if err != nil {
			return fmt.Errorf("failed to watch shader directories: %w", err)
		}
		e.watcher = w
	}
	e.started = true
	return nil
}

func (e *engine) RequestReload() {
	e.reloadRequested.Store(true)
}

func (e *engine) RequestResize(width, height int) {
	e.pendingMu.Lock()
	e.pendingResize = &size{width: width, height: height}
	e.pendingMu.Unlock()
}

// applyPending runs everything that must happen outside a frame.
func (e *engine) applyPending() {
	e.pendingMu.Lock()
	resize := e.pendingResize
	e.pendingResize = nil
	e.pendingMu.Unlock()

	if resize != nil {
		renderer.ResizeSystem(e.renderer, resize.width, resize.height)
	}

	if e.reloadRequested.Swap(false) {
		e.renderer.Reload()
	}

	if e.watcher == nil {
		return
	}
	for _, path := range e.watcher.Flush() {
		s, err := e.shaders.Reload(path)
		if errors.Is(err, shader.ErrNotFound) {
			s, err = e.shaders.AddFromPath(path)
		}
		if err != nil {
			common.Logger().Warn("shader hot reload failed", "path", path, "error", err)
			continue
		}
		common.Logger().Info("shader hot reloaded", "shader", s.Name(), "path", path)
	}
}

func (e *engine) Frame(deltaTime float32) error {
	e.applyPending()

	if err := renderer.BindSystem(e.renderer, e.shaders); err != nil {
		return err
	}
	if callback := e.renderCallback.Load(); callback != nil {
		if err := (*callback)(deltaTime); err != nil {
			common.Logger().Error("render callback failed", "cycle", e.renderer.Cycle(), "error", err)
		}
	}
	if err := renderer.ReleaseSystem(e.renderer); err != nil {
		return err
	}

	if e.profilingEnabled.Load() {
		e.profiler.Tick()
	}
	return nil
}

func (e *engine) Run() error {
	if err := e.Startup(); err != nil {
		return err
	}
	e.running.Store(true)

	e.wg.Add(2)
	go e.handleEngine()
	go e.handleRender()

	e.window.ProcessMessages()

	e.Quit()
	e.wg.Wait()
	e.Shutdown()
	return nil
}

func (e *engine) Shutdown() {
	if e.watcher != nil {
		if err := e.watcher.Close(); err != nil {
			common.Logger().Warn("shader watcher close failed", "error", err)
		}
		e.watcher = nil
	}
	e.renderer.Shutdown()
	if e.window != nil {
		_ = e.window.Close()
	}
}

func (e *engine) Quit() {
	e.quitOnce.Do(func() {
		e.running.Store(false)
		close(e.quitChannel)
	})
}

// handleEngine runs the fixed-rate tick loop until quit.
func (e *engine) handleEngine() {
	defer e.wg.Done()

	ticker := time.NewTicker(e.engineTickRate)
	defer ticker.Stop()

	lastTick := time.Now()
	for {
		select {
		case <-e.quitChannel:
			return
		case <-ticker.C:
			now := time.Now()
			dt := float32(now.Sub(lastTick).Seconds())
			lastTick = now

			if callback := e.tickCallback.Load(); callback != nil {
				(*callback)(dt)
			}
		case newRate := <-e.tickRateChannel:
			ticker.Reset(newRate)
			e.engineTickRate = newRate
		}
	}
}

// handleRender runs frames until quit. A panic, such as ErrNotReady from lifecycle misuse, is
// logged and stops the engine instead of crashing the process.
func (e *engine) handleRender() {
	defer e.wg.Done()
	defer func() {
		if r := recover(); r != nil {
			common.Logger().Error("render loop panicked", "panic", r)
			e.Quit()
		}
	}()

	lastRender := time.Now()
	for {
		select {
		case <-e.quitChannel:
			return
		default:
		}

		frameStart := time.Now()
		dt := float32(frameStart.Sub(lastRender).Seconds())
		lastRender = frameStart

		if err := e.Frame(dt); err != nil {
			common.Logger().Warn("frame failed", "cycle", e.renderer.Cycle(), "error", err)
		}

		if limit := time.Duration(e.renderFrameLimit.Load()); limit > 0 {
			if remaining := limit - time.Since(frameStart); remaining > 0 {
				time.Sleep(remaining)
			}
		}
	}
}

func (e *engine) EnableProfiler() {
	e.profilingEnabled.Store(true)
}

func (e *engine) DisableProfiler() {
	e.profilingEnabled.Store(false)
}

func (e *engine) SetTickRate(fps float64) {
	newRate := tickDuration(fps)
	if !e.running.Load() {
		e.engineTickRate = newRate
		return
	}
	// replace a pending update that the loop has not picked up yet
	select {
	case e.tickRateChannel <- newRate:
	default:
		select {
		case <-e.tickRateChannel:
		default:
		}
		e.tickRateChannel <- newRate
	}
}

func tickDuration(fps float64) time.Duration {
	if fps <= 0 {
		fps = 60
	}
	return time.Duration(float64(time.Second) / fps)
}

func (e *engine) SetTickCallback(callback func(deltaTime float32)) {
	if callback == nil {
		e.tickCallback.Store(nil)
		return
	}
	e.tickCallback.Store(&callback)
}

func (e *engine) SetRenderCallback(callback func(deltaTime float32) error) {
	if callback == nil {
		e.renderCallback.Store(nil)
		return
	}
	e.renderCallback.Store(&callback)
}

func (e *engine) SetRenderFrameLimit(fps float64) {
	e.renderFrameLimit.Store(int64(frameLimit(fps)))
}

// frameLimit converts a frame cap to the minimum frame duration, 0 meaning uncapped.
func frameLimit(fps float64) time.Duration {
	if fps <= 0 {
		return 0
	}
	return time.Duration(float64(time.Second) / fps)
}

// Package engine ties the window, the graphics context, the world and its systems into a frame
// loop: poll input, run tick systems, draw every mesh entity, present.
package engine

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/Carmen-Shannon/skygen/common"
	"github.com/Carmen-Shannon/skygen/engine/camera"
	"github.com/Carmen-Shannon/skygen/engine/config"
	"github.com/Carmen-Shannon/skygen/engine/graphics"
	"github.com/Carmen-Shannon/skygen/engine/model"
	"github.com/Carmen-Shannon/skygen/engine/profiler"
	"github.com/Carmen-Shannon/skygen/engine/renderer"
	"github.com/Carmen-Shannon/skygen/engine/renderer/device"
	"github.com/Carmen-Shannon/skygen/engine/renderer/material"
	"github.com/Carmen-Shannon/skygen/engine/renderer/vertex"
	"github.com/Carmen-Shannon/skygen/engine/window"
	"github.com/Carmen-Shannon/skygen/engine/world"
)

// ErrNoDevice is returned by NewEngine when no device was supplied.
var ErrNoDevice = errors.New("engine requires a device")

// ErrNoWindow is returned by Run when the engine has no window to poll.
var ErrNoWindow = errors.New("engine has no window")

// engine implements the Engine interface.
type engine struct {
	mu *sync.Mutex

	window   window.Window
	dev      device.Device
	graphics graphics.Context

	world    *world.World
	schedule world.Schedule

	cfg          config.Config
	camera       camera.Camera
	projection   *camera.Projection
	rendererOpts []renderer.RendererBuilderOption

	profiler         *profiler.Profiler
	profilingEnabled bool
	frameLimit       time.Duration

	now      func() time.Time
	pending  chan config.Config
	quit     chan struct{}
	quitOnce sync.Once
}

// Engine is the main entry point. It owns the graphics context and drives the frame loop over a
// world and its schedule.
type Engine interface {
	// Window returns the window the engine presents into.
	//
	// Returns:
	//   - window.Window: the window, or nil for a headless engine
	Window() window.Window

	// World returns the entity store drawn each frame.
	//
	// Returns:
	//   - *world.World: the world
	World() *world.World

	// Graphics returns the graphics context.
	//
	// Returns:
	//   - graphics.Context: the context
	Graphics() graphics.Context

	// Renderer returns the render container.
	//
	// Returns:
	//   - renderer.Renderer: the renderer
	Renderer() renderer.Renderer

	// AddSystem registers a system with the engine's schedule.
	//
	// Parameters:
	//   - freq: world.Init to run once before the first frame, world.Tick to run every frame
	//   - name: a name used in error messages
	//   - sys: the system
	AddSystem(freq world.Frequency, name string, sys world.System)

	// InsertTypedPipeline builds a pipeline ahead of the first frame that needs it.
	//
	// Parameters:
	//   - kind: the render kind
	//   - vf: the vertex format
	//   - mat: the material kind
	//
	// Returns:
	//   - error: a pipeline build error
	InsertTypedPipeline(kind model.Kind, vf vertex.Format, mat material.Kind) error

	// Frame runs the tick systems, then draws and presents the world. Transient surface errors skip
	// the frame, reconfiguring the surface when it was lost or outdated.
	//
	// Parameters:
	//   - deltaTime: seconds since the previous frame
	//
	// Returns:
	//   - error: a system error, a fatal surface error or a recording error
	Frame(deltaTime float32) error

	// Resize reconfigures the surface and projection.
	//
	// Parameters:
	//   - width: the surface width in pixels
	//   - height: the surface height in pixels
	//
	// Returns:
	//   - error: an error if the surface could not be configured
	Resize(width, height int) error

	// ApplyConfig applies the live parts of a configuration: log level, present mode, frame limit
	// and profiling. Window size, MSAA and device features only take effect on restart.
	//
	// Parameters:
	//   - cfg: the new configuration
	//
	// Returns:
	//   - error: an error if the log level or present mode could not be applied
	ApplyConfig(cfg config.Config) error

	// QueueConfig hands a configuration to the frame loop, which applies it before the next frame.
	// Safe to call from any goroutine; a newer configuration replaces one still pending.
	//
	// Parameters:
	//   - cfg: the new configuration
	QueueConfig(cfg config.Config)

	// Run runs the init systems once, then frames until the window closes, Quit is called or a
	// frame fails.
	//
	// Returns:
	//   - error: ErrNoWindow, an init system error or the error that ended the loop
	Run() error

	// Quit stops Run after the current frame. Safe to call multiple times.
	Quit()

	// Release frees the graphics context and closes the window.
	Release()
}

var _ Engine = &engine{}

// NewEngine creates an Engine. A device is required; the window is optional so the engine can be
// driven headless through Frame.
//
// Parameters:
//   - options: functional options for engine configuration (device, window, config, world, etc.)
//
// Returns:
//   - Engine: the newly created engine
//   - error: ErrNoDevice, or an error if the graphics context could not be created
func NewEngine(options ...EngineBuilderOption) (Engine, error) {
	e := &engine{
		mu:      &sync.Mutex{},
		cfg:     config.Default(),
		camera:  camera.NewCamera(),
		now:     time.Now,
		pending: make(chan config.Config, 1),
		quit:    make(chan struct{}),
	}
	for _, opt := range options {
		opt(e)
	}
	if e.dev == nil {
		return nil, ErrNoDevice
	}

	if err := common.SetLogLevel(e.cfg.Log.Level); err != nil {
		return nil, fmt.Errorf("log level: %w", err)
	}
	e.profilingEnabled = e.profilingEnabled || e.cfg.Engine.Profiling
	e.frameLimit = frameLimit(e.cfg.Engine.TickRate)
	if e.world == nil {
		e.world = world.New()
	}
	if e.schedule == nil {
		var opts []world.ScheduleBuilderOption
		if e.cfg.Engine.Workers > 0 {
			opts = append(opts, world.WithWorkers(e.cfg.Engine.Workers))
		}
		e.schedule = world.NewSchedule(opts...)
	}
	if e.profiler == nil {
		e.profiler = profiler.NewProfiler()
	}

	width, height := e.cfg.Window.Width, e.cfg.Window.Height
	if e.window != nil {
		width, height = e.window.Size()
	}
	proj := camera.Perspective(60, 1)
	if e.projection != nil {
		proj = *e.projection
	}
	ctx, err := graphics.NewContext(e.dev, width, height, func(dev device.Device) (renderer.Renderer, error) {
		return renderer.NewRenderer(dev, e.camera, proj, e.rendererOpts...)
	})
	if err != nil {
		return nil, err
	}
	e.graphics = ctx

	if e.window != nil {
		e.window.SetResizeCallback(func(width, height int) {
			if err := e.Resize(width, height); err != nil {
				common.Logger().Error("resize", "err", err)
			}
		})
	}
	return e, nil
}

func frameLimit(fps float64) time.Duration {
	if fps <= 0 {
		return 0
	}
	return time.Duration(float64(time.Second) / fps)
}

func (e *engine) Window() window.Window {
	return e.window
}

func (e *engine) World() *world.World {
	return e.world
}

func (e *engine) Graphics() graphics.Context {
	return e.graphics
}

func (e *engine) Renderer() renderer.Renderer {
	var out renderer.Renderer
	_ = e.graphics.Read(func(_ device.Device, r renderer.Renderer) error {
		out = r
		return nil
	})
	return out
}

func (e *engine) AddSystem(freq world.Frequency, name string, sys world.System) {
	e.schedule.Add(freq, name, sys)
}

func (e *engine) InsertTypedPipeline(kind model.Kind, vf vertex.Format, mat material.Kind) error {
	return e.graphics.Read(func(_ device.Device, r renderer.Renderer) error {
		return r.InsertTypedPipeline(kind, vf, mat)
	})
}

func (e *engine) Frame(deltaTime float32) error {
	if err := e.schedule.Run(world.Tick, e.world, deltaTime); err != nil {
		return err
	}

	var stats renderer.Stats
	err := e.graphics.Read(func(_ device.Device, r renderer.Renderer) error {
		var err error
		stats, err = r.Render(e.world)
		return err
	})
	if err != nil {
		return e.handleFrameError(err)
	}

	e.mu.Lock()
	profiling := e.profilingEnabled
	e.mu.Unlock()
	if profiling {
		e.profiler.Tick(stats.Draws)
	}
	return nil
}

// handleFrameError classifies a render error: transient surface errors are logged and swallowed, after a
// reconfigure if the surface needs one. Everything else is returned.
func (e *engine) handleFrameError(err error) error {
	var se *device.SurfaceError
	if !errors.As(err, &se) || !se.Transient() {
		return err
	}
	common.Logger().Warn("frame skipped", "status", se.Status, "err", se.Err)
	if se.NeedsReconfigure() {
		width, height := e.graphics.Size()
		if err := e.graphics.Resize(width, height); err != nil {
			return err
		}
	}
	return nil
}

func (e *engine) Resize(width, height int) error {
	return e.graphics.Resize(width, height)
}

func (e *engine) ApplyConfig(cfg config.Config) error {
	if err := common.SetLogLevel(cfg.Log.Level); err != nil {
		return fmt.Errorf("log level: %w", err)
	}
	mode, ok := device.ParsePresentMode(cfg.Renderer.PresentMode)
	if !ok {
		return fmt.Errorf("%w: unknown present_mode %q", config.ErrInvalid, cfg.Renderer.PresentMode)
	}

	e.mu.Lock()
	changed := mode != e.presentMode()
	e.cfg = cfg
	e.frameLimit = frameLimit(cfg.Engine.TickRate)
	e.profilingEnabled = cfg.Engine.Profiling
	e.mu.Unlock()

	if changed {
		return e.graphics.SetPresentMode(mode)
	}
	return nil
}

func (e *engine) QueueConfig(cfg config.Config) {
	for {
		select {
		case e.pending <- cfg:
			return
		default:
		}
		select {
		case <-e.pending:
		default:
		}
	}
}

// applyPending applies a queued configuration, if any. Invalid ones are logged and dropped.
func (e *engine) applyPending() {
	select {
	case cfg := <-e.pending:
		if err := e.ApplyConfig(cfg); err != nil {
			common.Logger().Warn("config not applied", "err", err)
		}
	default:
	}
}

// presentMode is called with e.mu held.
func (e *engine) presentMode() device.PresentMode {
	mode, _ := device.ParsePresentMode(e.cfg.Renderer.PresentMode)
	return mode
}

func (e *engine) Run() error {
	if e.window == nil {
		return ErrNoWindow
	}
	if err := e.schedule.Run(world.Init, e.world, 0); err != nil {
		return err
	}

	last := e.now()
	for !e.window.ShouldClose() {
		select {
		case <-e.quit:
			return nil
		default:
		}

		start := e.now()
		e.window.PollEvents()
		e.applyPending()
		dt := float32(start.Sub(last).Seconds())
		last = start
		if err := e.Frame(dt); err != nil {
			return err
		}

		e.mu.Lock()
		limit := e.frameLimit
		e.mu.Unlock()
		if limit > 0 {
			if remaining := limit - e.now().Sub(start); remaining > 0 {
				time.Sleep(remaining)
			}
		}
	}
	return nil
}

func (e *engine) Quit() {
	e.quitOnce.Do(func() {
		close(e.quit)
	})
}

func (e *engine) Release() {
	e.graphics.Release()
	if e.window != nil {
		if err := e.window.Close(); err != nil {
			common.Logger().Warn("close window", "err", err)
		}
	}
}

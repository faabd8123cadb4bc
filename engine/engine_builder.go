package engine

import (
	"time"

	"github.com/Carmen-Shannon/skygen/engine/camera"
	"github.com/Carmen-Shannon/skygen/engine/config"
	"github.com/Carmen-Shannon/skygen/engine/profiler"
	"github.com/Carmen-Shannon/skygen/engine/renderer"
	"github.com/Carmen-Shannon/skygen/engine/renderer/device"
	"github.com/Carmen-Shannon/skygen/engine/window"
	"github.com/Carmen-Shannon/skygen/engine/world"
)

// EngineBuilderOption is a functional option for configuring an Engine.
// Use the With* functions to create options that are applied directly to the engine instance.
type EngineBuilderOption func(*engine)

// WithDevice sets the device the engine renders with. Required.
//
// Parameters:
//   - dev: the device
//
// Returns:
//   - EngineBuilderOption: option function to apply
func WithDevice(dev device.Device) EngineBuilderOption {
	return func(e *engine) {
		e.dev = dev
	}
}

// WithWindow sets the window the engine polls and presents into. The initial surface size is taken
// from the window rather than the configuration.
//
// Parameters:
//   - w: a window instance
//
// Returns:
//   - EngineBuilderOption: option function to apply
func WithWindow(w window.Window) EngineBuilderOption {
	return func(e *engine) {
		e.window = w
	}
}

// WithConfig sets the configuration. Defaults to config.Default().
//
// Parameters:
//   - cfg: the configuration
//
// Returns:
//   - EngineBuilderOption: option function to apply
func WithConfig(cfg config.Config) EngineBuilderOption {
	return func(e *engine) {
		e.cfg = cfg
	}
}

// WithProfiling enables or disables performance profiling output, overriding the configuration
// when enabled.
//
// Parameters:
//   - enabled: if true, enables performance profiling
//
// Returns:
//   - EngineBuilderOption: option function to apply
func WithProfiling(enabled bool) EngineBuilderOption {
	return func(e *engine) {
		e.profilingEnabled = enabled
	}
}

// WithProfiler replaces the default profiler.
//
// Parameters:
//   - p: the profiler
//
// Returns:
//   - EngineBuilderOption: option function to apply
func WithProfiler(p *profiler.Profiler) EngineBuilderOption {
	return func(e *engine) {
		e.profiler = p
	}
}

// WithWorld sets the world the engine draws. Defaults to an empty world.
//
// Parameters:
//   - w: the world
//
// Returns:
//   - EngineBuilderOption: option function to apply
func WithWorld(w *world.World) EngineBuilderOption {
	return func(e *engine) {
		e.world = w
	}
}

// WithSchedule sets the system schedule. Defaults to a schedule sized by the configuration.
//
// Parameters:
//   - s: the schedule
//
// Returns:
//   - EngineBuilderOption: option function to apply
func WithSchedule(s world.Schedule) EngineBuilderOption {
	return func(e *engine) {
		e.schedule = s
	}
}

// WithCamera sets the initial camera.
//
// Parameters:
//   - c: the camera
//
// Returns:
//   - EngineBuilderOption: option function to apply
func WithCamera(c camera.Camera) EngineBuilderOption {
	return func(e *engine) {
		e.camera = c
	}
}

// WithProjection sets the initial projection. Defaults to a 60 degree perspective fitted to the
// surface.
//
// Parameters:
//   - p: the projection
//
// Returns:
//   - EngineBuilderOption: option function to apply
func WithProjection(p camera.Projection) EngineBuilderOption {
	return func(e *engine) {
		e.projection = &p
	}
}

// WithRendererOptions passes options through to renderer.NewRenderer.
//
// Parameters:
//   - opts: the renderer options
//
// Returns:
//   - EngineBuilderOption: option function to apply
func WithRendererOptions(opts ...renderer.RendererBuilderOption) EngineBuilderOption {
	return func(e *engine) {
		e.rendererOpts = append(e.rendererOpts, opts...)
	}
}

// WithClock replaces time.Now for frame timing.
//
// Parameters:
//   - now: the clock
//
// Returns:
//   - EngineBuilderOption: option function to apply
func WithClock(now func() time.Time) EngineBuilderOption {
	return func(e *engine) {
		e.now = now
	}
}

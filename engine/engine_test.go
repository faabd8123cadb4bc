package engine

import (
	"errors"
	"sync/atomic"
	"testing"

	"github.com/Carmen-Shannon/skygen/engine/config"
	"github.com/Carmen-Shannon/skygen/engine/model"
	"github.com/Carmen-Shannon/skygen/engine/renderer"
	"github.com/Carmen-Shannon/skygen/engine/renderer/device"
	"github.com/Carmen-Shannon/skygen/engine/renderer/device/devicetest"
	"github.com/Carmen-Shannon/skygen/engine/renderer/material"
	"github.com/Carmen-Shannon/skygen/engine/renderer/pipeline"
	"github.com/Carmen-Shannon/skygen/engine/renderer/vertex"
	"github.com/Carmen-Shannon/skygen/engine/window"
	"github.com/Carmen-Shannon/skygen/engine/world"
	"github.com/cogentcore/webgpu/wgpu"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeWindow closes itself after a fixed number of polls.
type fakeWindow struct {
	width, height int
	polls, limit  int
	onResize      func(width, height int)
	closed        bool
}

func (w *fakeWindow) SurfaceDescriptor() *wgpu.SurfaceDescriptor { return nil }
func (w *fakeWindow) Size() (int, int) { return w.width, w.height }
func (w *fakeWindow) SetResizeCallback(cb func(width, height int)) { w.onResize = cb }
func (w *fakeWindow) SetKeyCallback(func(key window.Key, down bool)) {}
func (w *fakeWindow) SetScrollCallback(func(delta float32)) {}
func (w *fakeWindow) PollEvents() { w.polls++ }
func (w *fakeWindow) ShouldClose() bool { return w.polls >= w.limit }
func (w *fakeWindow) Close() error {
	w.closed = true
	return nil
}

func newEngine(t *testing.T, opts ...EngineBuilderOption) (*devicetest.Recorder, Engine) {
	t.Helper()
	dev := devicetest.New()
	opts = append([]EngineBuilderOption{
		WithDevice(dev),
		WithRendererOptions(renderer.WithPipelineOptions(pipeline.WithShaderValidation(false))),
	}, opts...)
	e, err := NewEngine(opts...)
	require.NoError(t, err)
	return dev, e
}

func spawnCube(t *testing.T, dev device.Device, w *world.World) world.Entity {
	t.Helper()
	mesh, err := model.NewCube(dev, 1, [4]float32{1, 0, 0, 1})
	require.NoError(t, err)
	e := w.Spawn()
	require.NoError(t, world.Insert(w, e, mesh))
	require.NoError(t, world.Insert(w, e, model.NewTransform(0, 0, 0)))
	require.NoError(t, world.Insert(w, e, material.NewMaterial(material.KindColored)))
	return e
}

func TestNewEngineRequiresDevice(t *testing.T) {
	_, err := NewEngine()
	assert.ErrorIs(t, err, ErrNoDevice)
}

func TestNewEngineUsesWindowSize(t *testing.T) {
	win := &fakeWindow{width: 300, height: 200}
	dev, e := newEngine(t, WithWindow(win))

	assert.Equal(t, 300, dev.Width)
	assert.InDelta(t, 1.5, e.Renderer().Projection().Aspect(), 1e-6)

	require.NotNil(t, win.onResize)
	win.onResize(400, 100)
	assert.Equal(t, 400, dev.Width)
	assert.InDelta(t, 4.0, e.Renderer().Projection().Aspect(), 1e-6)
}

func TestFrameRunsSystemsThenDraws(t *testing.T) {
	dev, e := newEngine(t)
	entity := spawnCube(t, dev, e.World())

	var ticks atomic.Int32
	e.AddSystem(world.Tick, "spin", func(w *world.World, dt float32) error {
		ticks.Add(1)
		world.Modify(w, entity, func(tr *model.Transform) { tr.Rotate(0, dt, 0) })
		return nil
	})

	require.NoError(t, e.Frame(0.5))
	assert.Equal(t, int32(1), ticks.Load())
	assert.Equal(t, 1, dev.Presents)
	require.Len(t, dev.Draws, 1)

	tr, ok := world.Get[model.Transform](e.World(), entity)
	require.True(t, ok)
	assert.InDelta(t, 0.5, tr.Yaw, 1e-6)
}

func TestFrameReturnsSystemError(t *testing.T) {
	dev, e := newEngine(t)
	boom := errors.New("boom")
	e.AddSystem(world.Tick, "fail", func(*world.World, float32) error { return boom })

	assert.ErrorIs(t, e.Frame(0), boom)
	assert.Equal(t, 0, dev.Frames)
}

func TestFrameSurfaceErrors(t *testing.T) {
	dev, e := newEngine(t)
	configs := dev.Configs

	dev.FrameErrors = []error{&device.SurfaceError{Status: device.StatusTimeout}}
	require.NoError(t, e.Frame(0))
	assert.Equal(t, configs, dev.Configs)

	dev.FrameErrors = []error{&device.SurfaceError{Status: device.StatusOutdated}}
	require.NoError(t, e.Frame(0))
	assert.Equal(t, configs+1, dev.Configs)

	dev.FrameErrors = []error{&device.SurfaceError{Status: device.StatusOutOfMemory}}
	var se *device.SurfaceError
	require.ErrorAs(t, e.Frame(0), &se)
	assert.Equal(t, device.StatusOutOfMemory, se.Status)

	dev.FrameErrors = []error{&device.SurfaceError{Status: device.StatusUnknown}}
	require.ErrorAs(t, e.Frame(0), &se)
	assert.Equal(t, device.StatusUnknown, se.Status)

	require.NoError(t, e.Frame(0))
	assert.Equal(t, 1, dev.Presents)
}

func TestRunInitOnceThenFramesUntilClose(t *testing.T) {
	win := &fakeWindow{width: 64, height: 64, limit: 3}
	dev, e := newEngine(t, WithWindow(win))

	var inits, ticks atomic.Int32
	e.AddSystem(world.Init, "setup", func(*world.World, float32) error {
		inits.Add(1)
		return nil
	})
	e.AddSystem(world.Tick, "tick", func(*world.World, float32) error {
		ticks.Add(1)
		return nil
	})

	require.NoError(t, e.Run())
	assert.Equal(t, int32(1), inits.Load())
	assert.Equal(t, int32(3), ticks.Load())
	assert.Equal(t, 3, dev.Presents)

	e.Release()
	assert.True(t, win.closed)
}

func TestRunStopsOnFatalFrame(t *testing.T) {
	win := &fakeWindow{width: 64, height: 64, limit: 10}
	dev, e := newEngine(t, WithWindow(win))
	dev.FrameErrors = []error{&device.SurfaceError{Status: device.StatusOutOfMemory}}

	assert.Error(t, e.Run())
	assert.Equal(t, 1, win.polls)
}

func TestRunWithoutWindow(t *testing.T) {
	_, e := newEngine(t)
	assert.ErrorIs(t, e.Run(), ErrNoWindow)
}

func TestQuitStopsRun(t *testing.T) {
	win := &fakeWindow{width: 64, height: 64, limit: 1000}
	_, e := newEngine(t, WithWindow(win))
	e.AddSystem(world.Tick, "quit", func(*world.World, float32) error {
		e.Quit()
		return nil
	})

	require.NoError(t, e.Run())
	assert.Equal(t, 1, win.polls)
	e.Quit()
}

func TestApplyConfigChangesPresentMode(t *testing.T) {
	dev, e := newEngine(t)
	configs := dev.Configs

	cfg := config.Default()
	require.NoError(t, e.ApplyConfig(cfg))
	assert.Equal(t, configs, dev.Configs)

	cfg.Renderer.PresentMode = "uncapped"
	cfg.Log.Level = "warn"
	require.NoError(t, e.ApplyConfig(cfg))
	assert.Equal(t, device.PresentModeUncapped, dev.PresentMode)
	assert.Equal(t, configs+1, dev.Configs)

	cfg.Renderer.PresentMode = "mailbox"
	assert.ErrorIs(t, e.ApplyConfig(cfg), config.ErrInvalid)
	require.NoError(t, e.ApplyConfig(config.Default()))
}

func TestInsertTypedPipeline(t *testing.T) {
	dev, e := newEngine(t)
	require.NoError(t, e.InsertTypedPipeline(model.KindMesh, vertex.FormatColored, material.KindColored))
	assert.Equal(t, 1, e.Renderer().Len())
	assert.Len(t, dev.Pipelines, 1)
}

func TestQueuedConfigAppliedByRun(t *testing.T) {
	win := &fakeWindow{width: 64, height: 64, limit: 1}
	dev, e := newEngine(t, WithWindow(win))

	first, second := config.Default(), config.Default()
	first.Renderer.PresentMode = "vsync"
	second.Renderer.PresentMode = "uncapped"
	e.QueueConfig(first)
	e.QueueConfig(second)

	require.NoError(t, e.Run())
	assert.Equal(t, device.PresentModeUncapped, dev.PresentMode)
}

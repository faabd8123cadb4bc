package main

import (
	"fmt"
	"sync"

	"github.com/Carmen-Shannon/skygen/common"
	"github.com/Carmen-Shannon/skygen/engine"
	"github.com/Carmen-Shannon/skygen/engine/camera"
	"github.com/Carmen-Shannon/skygen/engine/model"
	"github.com/Carmen-Shannon/skygen/engine/renderer"
	"github.com/Carmen-Shannon/skygen/engine/renderer/device"
	"github.com/Carmen-Shannon/skygen/engine/renderer/material"
	"github.com/Carmen-Shannon/skygen/engine/renderer/vertex"
	"github.com/Carmen-Shannon/skygen/engine/window"
	"github.com/Carmen-Shannon/skygen/engine/world"
)

const (
	cubeSpacing = 2.0
	spinSpeed   = 0.8 // radians per second
	orbitSpeed  = 1.5 // radians per second
	zoomStep    = 1.0
)

var palette = [][4]float32{
	{0.90, 0.30, 0.25, 1},
	{0.25, 0.70, 0.35, 1},
	{0.25, 0.45, 0.90, 1},
	{0.95, 0.80, 0.25, 1},
}

// input collects window events for the camera system, which runs on a worker goroutine.
type input struct {
	mu     sync.Mutex
	held   map[window.Key]bool
	scroll float32
}

func (in *input) key(k window.Key, down bool) {
	in.mu.Lock()
	defer in.mu.Unlock()
	in.held[k] = down
}

func (in *input) addScroll(delta float32) {
	in.mu.Lock()
	defer in.mu.Unlock()
	in.scroll += delta
}

// take returns the orbit direction from held arrow keys and drains the accumulated scroll.
func (in *input) take() (azimuth, elevation, scroll float32) {
	in.mu.Lock()
	defer in.mu.Unlock()
	if in.held[window.KeyLeft] {
		azimuth--
	}
	if in.held[window.KeyRight] {
		azimuth++
	}
	if in.held[window.KeyUp] {
		elevation++
	}
	if in.held[window.KeyDown] {
		elevation--
	}
	scroll, in.scroll = in.scroll, 0
	return azimuth, elevation, scroll
}

// cube marks the spinning cubes.
type cube struct {
	speed float32
}

func setupScene(eng engine.Engine, count int) error {
	if err := eng.InsertTypedPipeline(model.KindMesh, vertex.FormatColored, material.KindColored); err != nil {
		return err
	}

	orbit := camera.NewOrbit(
		camera.WithRadius(float32(count)*cubeSpacing+4),
		camera.WithRadiusBounds(2, 200),
		camera.WithAngles(0.4, 0.35),
	)
	in := &input{held: make(map[window.Key]bool)}
	if win := eng.Window(); win != nil {
		win.SetKeyCallback(in.key)
		win.SetScrollCallback(in.addScroll)
	}

	// Meshes allocate device buffers, which must happen on the thread that owns the device, so
	// cubes are spawned here rather than in an init system.
	if err := spawnCubes(eng, eng.World(), count); err != nil {
		return err
	}
	eng.AddSystem(world.Init, "log scene", func(w *world.World, _ float32) error {
		common.Logger().Info("scene ready", "entities", w.Len(), "cubes", world.Count[cube](w))
		return nil
	})
	eng.AddSystem(world.Tick, "spin cubes", spinCubes)
	eng.AddSystem(world.Tick, "orbit camera", func(_ *world.World, dt float32) error {
		az, el, scroll := in.take()
		orbit.Rotate(az*orbitSpeed*dt, el*orbitSpeed*dt)
		orbit.Zoom(scroll * zoomStep)

		r := eng.Renderer()
		cam := r.Camera()
		orbit.Apply(&cam)
		r.SetCamera(cam)
		return nil
	})
	return nil
}

func spawnCubes(eng engine.Engine, w *world.World, count int) error {
	offset := float32(count-1) * cubeSpacing / 2
	return eng.Graphics().Read(func(dev device.Device, _ renderer.Renderer) error {
		for i := 0; i < count; i++ {
			color := palette[i%len(palette)]
			mesh, err := model.NewCube(dev, 1, color)
			if err != nil {
				return fmt.Errorf("cube %d: %w", i, err)
			}
			e := w.Spawn()
			for _, err := range []error{
				world.Insert(w, e, mesh),
				world.Insert(w, e, model.NewTransform(float32(i)*cubeSpacing-offset, 0, 0)),
				world.Insert(w, e, material.NewMaterial(material.KindColored,
					material.WithName(fmt.Sprintf("cube %d", i)),
					material.WithColor(color),
				)),
				world.Insert(w, e, cube{speed: spinSpeed * float32(i+1) / float32(count)}),
			} {
				if err != nil {
					return err
				}
			}
		}
		return nil
	})
}

func spinCubes(w *world.World, dt float32) error {
	for _, row := range world.Query2[model.Transform, cube](w) {
		speed := row.B.speed
		world.Modify(w, row.Entity, func(tr *model.Transform) {
			tr.Rotate(speed*dt*0.5, speed*dt, 0)
		})
	}
	return nil
}

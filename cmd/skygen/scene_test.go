package main

import (
	"testing"

	"github.com/Carmen-Shannon/skygen/common"
	"github.com/Carmen-Shannon/skygen/engine"
	"github.com/Carmen-Shannon/skygen/engine/camera"
	"github.com/Carmen-Shannon/skygen/engine/model"
	"github.com/Carmen-Shannon/skygen/engine/renderer"
	"github.com/Carmen-Shannon/skygen/engine/renderer/device/devicetest"
	"github.com/Carmen-Shannon/skygen/engine/renderer/pipeline"
	"github.com/Carmen-Shannon/skygen/engine/window"
	"github.com/Carmen-Shannon/skygen/engine/world"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInputTakeDrainsScroll(t *testing.T) {
	in := &input{held: make(map[window.Key]bool)}
	in.key(window.KeyLeft, true)
	in.key(window.KeyUp, true)
	in.addScroll(2)
	in.addScroll(0.5)

	az, el, scroll := in.take()
	assert.Equal(t, float32(-1), az)
	assert.Equal(t, float32(1), el)
	assert.Equal(t, float32(2.5), scroll)

	in.key(window.KeyLeft, false)
	az, _, scroll = in.take()
	assert.Zero(t, az)
	assert.Zero(t, scroll)
}

func TestSceneSpawnsAndSpins(t *testing.T) {
	dev := devicetest.New()
	eng, err := engine.NewEngine(
		engine.WithDevice(dev),
		engine.WithRendererOptions(renderer.WithPipelineOptions(pipeline.WithShaderValidation(false))),
	)
	require.NoError(t, err)

	require.NoError(t, setupScene(eng, 3))
	assert.Equal(t, 3, world.Count[cube](eng.World()))
	assert.Equal(t, 1, eng.Renderer().Len())

	require.NoError(t, eng.Frame(1))
	assert.Len(t, dev.Draws, 3)

	rows := world.Query2[model.Transform, cube](eng.World())
	require.Len(t, rows, 3)
	assert.InDelta(t, -cubeSpacing, rows[0].A.Position[0], 1e-6)
	assert.InDelta(t, spinSpeed/3, rows[0].A.Yaw, 1e-6)
	assert.InDelta(t, spinSpeed, rows[2].A.Yaw, 1e-6)

	cam := eng.Renderer().Camera()
	assert.Equal(t, common.Vec3{}, cam.Target)
	assert.Equal(t, camera.ModeLookAt, cam.Mode)
}

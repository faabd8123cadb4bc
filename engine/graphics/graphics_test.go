package graphics

import (
	"sync"
	"testing"

	"github.com/Carmen-Shannon/skygen/engine/camera"
	"github.com/Carmen-Shannon/skygen/engine/model"
	"github.com/Carmen-Shannon/skygen/engine/renderer"
	"github.com/Carmen-Shannon/skygen/engine/renderer/device"
	"github.com/Carmen-Shannon/skygen/engine/renderer/device/devicetest"
	"github.com/Carmen-Shannon/skygen/engine/renderer/material"
	"github.com/Carmen-Shannon/skygen/engine/renderer/pipeline"
	"github.com/Carmen-Shannon/skygen/engine/renderer/vertex"
	"github.com/cogentcore/webgpu/wgpu"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newContext(t *testing.T) (*devicetest.Recorder, Context) {
	t.Helper()
	dev := devicetest.New()
	ctx, err := NewContext(dev, 640, 480, func(dev device.Device) (renderer.Renderer, error) {
		return renderer.NewRenderer(dev, camera.NewCamera(), camera.Perspective(60, 1))
	})
	require.NoError(t, err)
	return dev, ctx
}

func TestNewContextConfiguresSurface(t *testing.T) {
	dev, ctx := newContext(t)

	w, h := ctx.Size()
	assert.Equal(t, 640, w)
	assert.Equal(t, 480, h)
	assert.Equal(t, 1, dev.Configs)
	require.NoError(t, ctx.Read(func(_ device.Device, r renderer.Renderer) error {
		assert.InDelta(t, 640.0/480.0, r.Projection().Aspect(), 1e-6)
		return nil
	}))
}

func TestNewContextPropagatesRendererError(t *testing.T) {
	dev := devicetest.New()
	_, err := NewContext(dev, 640, 480, func(device.Device) (renderer.Renderer, error) {
		return nil, assert.AnError
	})
	assert.ErrorIs(t, err, assert.AnError)
}

func TestResizeZeroIsDeferred(t *testing.T) {
	dev, ctx := newContext(t)

	require.NoError(t, ctx.Resize(0, 0))
	assert.Equal(t, 1, dev.Configs)
	w, _ := ctx.Size()
	assert.Equal(t, 0, w)

	require.NoError(t, ctx.Resize(1024, 512))
	assert.Equal(t, 2, dev.Configs)
	assert.Equal(t, 1024, dev.Width)
}

func TestZeroSizedStartBuildsPipelinesAfterResize(t *testing.T) {
	dev := devicetest.New()
	dev.Format = wgpu.TextureFormatUndefined
	dev.ConfigureFormat = wgpu.TextureFormatBGRA8UnormSrgb
	ctx, err := NewContext(dev, 0, 0, func(dev device.Device) (renderer.Renderer, error) {
		return renderer.NewRenderer(dev, camera.NewCamera(), camera.Perspective(60, 1),
			renderer.WithPipelineOptions(pipeline.WithShaderValidation(false)))
	})
	require.NoError(t, err)
	assert.Equal(t, 0, dev.Configs)

	require.NoError(t, ctx.Resize(800, 600))
	require.NoError(t, ctx.Read(func(_ device.Device, r renderer.Renderer) error {
		return r.InsertTypedPipeline(model.KindMesh, vertex.FormatColored, material.KindColored)
	}))
	require.Len(t, dev.Pipelines, 1)
	assert.Equal(t, wgpu.TextureFormatBGRA8UnormSrgb, dev.Pipelines[0].Pipeline.Format)
}

func TestSetPresentModeReconfigures(t *testing.T) {
	dev, ctx := newContext(t)

	require.NoError(t, ctx.SetPresentMode(device.PresentModeUncapped))
	assert.Equal(t, device.PresentModeUncapped, dev.PresentMode)
	assert.Equal(t, 2, dev.Configs)
}

func TestReadAndResizeDoNotRace(t *testing.T) {
	_, ctx := newContext(t)

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			_ = ctx.Read(func(_ device.Device, r renderer.Renderer) error {
				_ = r.Projection()
				return nil
			})
		}()
		go func(i int) {
			defer wg.Done()
			assert.NoError(t, ctx.Resize(100+i, 100))
		}(i)
	}
	wg.Wait()
}

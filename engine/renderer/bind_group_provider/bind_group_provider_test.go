package bind_group_provider

import (
	"testing"

	"github.com/Carmen-Shannon/skygen/common"
	"github.com/Carmen-Shannon/skygen/engine/renderer/buffer"
	"github.com/Carmen-Shannon/skygen/engine/renderer/device"
	"github.com/Carmen-Shannon/skygen/engine/renderer/device/devicetest"
	"github.com/cogentcore/webgpu/wgpu"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newLayout(t *testing.T, dev device.Device) device.BindGroupLayout {
	t.Helper()
	layout, err := dev.CreateBindGroupLayout("test", []wgpu.BindGroupLayoutEntry{{
		Binding:    0,
		Visibility: wgpu.ShaderStageVertex,
		Buffer:     wgpu.BufferBindingLayout{Type: wgpu.BufferBindingTypeUniform},
	}})
	require.NoError(t, err)
	return layout
}

func TestRefreshBuildsOnceWhileHandlesAreStable(t *testing.T) {
	dev := devicetest.New()
	color, err := buffer.New(dev, "color", wgpu.BufferUsageUniform, []buffer.Vec4{{1, 0, 0, 1}})
	require.NoError(t, err)

	p := NewBindGroupProvider("material", newLayout(t, dev), WithBuffer(0, color))

	first, err := p.Refresh(dev)
	require.NoError(t, err)

	require.NoError(t, color.Set(0, buffer.Vec4{0, 1, 0, 1}))
	second, err := p.Refresh(dev)
	require.NoError(t, err)

	assert.Same(t, first, second)
	assert.Equal(t, 1, p.Rebuilds())
	assert.Len(t, dev.Writes, 1)
}

func TestRefreshRebuildsWhenBufferReallocates(t *testing.T) {
	dev := devicetest.New()
	m, err := buffer.New(dev, "matrices", wgpu.BufferUsageUniform, []buffer.Mat4{{}})
	require.NoError(t, err)

	p := NewBindGroupProvider("projection", newLayout(t, dev), WithBuffer(0, m))
	first, err := p.Refresh(dev)
	require.NoError(t, err)

	m.Push(buffer.Mat4{})
	second, err := p.Refresh(dev)
	require.NoError(t, err)

	assert.NotSame(t, first, second)
	assert.True(t, first.(*devicetest.Object).Released)
	assert.Equal(t, 2, p.Rebuilds())
}

func TestReleaseFreesOwnedResources(t *testing.T) {
	dev := devicetest.New()
	color, err := buffer.New(dev, "color", wgpu.BufferUsageUniform, []buffer.Vec4{{}})
	require.NoError(t, err)
	sampler, err := dev.CreateSampler("s", common.SamplerStagingData{})
	require.NoError(t, err)

	layout := newLayout(t, dev)
	p := NewBindGroupProvider("material", layout, WithBuffer(0, color), WithSampler(1, sampler))
	_, err = p.Refresh(dev)
	require.NoError(t, err)

	p.Release()
	assert.Empty(t, dev.LiveBuffers())
	assert.True(t, sampler.(*devicetest.Object).Released)
	assert.False(t, layout.(*devicetest.Object).Released)
	assert.Nil(t, p.BindGroup())
}

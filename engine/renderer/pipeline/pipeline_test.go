package pipeline

import (
	"testing"

	"github.com/Carmen-Shannon/skygen/engine/renderer/device"
	"github.com/Carmen-Shannon/skygen/engine/renderer/device/devicetest"
	"github.com/Carmen-Shannon/skygen/engine/renderer/material"
	"github.com/Carmen-Shannon/skygen/engine/renderer/vertex"
	"github.com/cogentcore/webgpu/wgpu"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var coloredKey = Key{Vertex: vertex.FormatColored, Material: material.KindColored}

func layouts(t *testing.T, dev device.Device) []device.BindGroupLayout {
	t.Helper()
	camera, err := dev.CreateBindGroupLayout("camera", nil)
	require.NoError(t, err)
	entries, err := material.LayoutEntries(material.KindColored)
	require.NoError(t, err)
	mat, err := dev.CreateBindGroupLayout("material", entries)
	require.NoError(t, err)
	return []device.BindGroupLayout{camera, mat}
}

func TestBuild(t *testing.T) {
	dev := devicetest.New()
	ls := layouts(t, dev)

	p, err := NewBuilder(coloredKey,
		WithTopology(wgpu.PrimitiveTopologyTriangleList),
		WithSurfaceFormat(dev.SurfaceFormat()),
		WithBindGroupLayouts(ls...),
		WithCullMode(wgpu.CullModeBack),
		WithShaderValidation(false),
	).Build(dev)
	require.NoError(t, err)

	assert.Equal(t, coloredKey, p.Key())
	assert.Equal(t, wgpu.PrimitiveTopologyTriangleList, p.Topology())
	assert.Equal(t, ls, p.BindGroupLayouts())
	require.Len(t, p.VertexLayouts(), 2)
	assert.Equal(t, wgpu.VertexStepModeInstance, p.VertexLayouts()[1].StepMode)

	require.Len(t, dev.Pipelines, 1)
	desc := dev.Pipelines[0].Pipeline
	assert.Equal(t, "vs_main", desc.VertexEntryPoint)
	assert.Equal(t, "fs_main", desc.FragmentEntryPoint)
	assert.Equal(t, wgpu.CullModeBack, desc.CullMode)
	assert.Equal(t, dev.SampleCount(), desc.SampleCount)
	assert.Nil(t, desc.Blend)
	require.NotNil(t, desc.DepthStencil)
	assert.Equal(t, DepthFormat, desc.DepthStencil.Format)
	assert.Equal(t, wgpu.CompareFunctionLess, desc.DepthStencil.DepthCompare)
	assert.Contains(t, desc.ShaderSource, "material_color")

	p.Release()
	assert.True(t, dev.Pipelines[0].Released)
	assert.False(t, ls[0].(*devicetest.Object).Released)
}

func TestBuildMissingFields(t *testing.T) {
	dev := devicetest.New()
	ls := layouts(t, dev)

	cases := map[string][]BuilderOption{
		"topology": {
			WithSurfaceFormat(dev.SurfaceFormat()),
			WithBindGroupLayouts(ls...),
		},
		"bind group layouts": {
			WithTopology(wgpu.PrimitiveTopologyLineList),
			WithSurfaceFormat(dev.SurfaceFormat()),
		},
		"surface format": {
			WithTopology(wgpu.PrimitiveTopologyLineList),
			WithBindGroupLayouts(ls...),
		},
	}
	for field, opts := range cases {
		t.Run(field, func(t *testing.T) {
			_, err := NewBuilder(coloredKey, opts...).Build(dev)
			require.ErrorIs(t, err, ErrMissingField)
			var mf *MissingFieldError
			require.ErrorAs(t, err, &mf)
			assert.Equal(t, field, mf.Field)
		})
	}
	assert.Empty(t, dev.Pipelines)
}

func TestBuildConsumesBuilder(t *testing.T) {
	dev := devicetest.New()
	b := NewBuilder(coloredKey,
		WithTopology(wgpu.PrimitiveTopologyPointList),
		WithSurfaceFormat(dev.SurfaceFormat()),
		WithBindGroupLayouts(layouts(t, dev)...),
		WithShaderValidation(false),
	)
	_, err := b.Build(dev)
	require.NoError(t, err)

	_, err = b.Build(dev)
	assert.ErrorIs(t, err, ErrBuilderConsumed)
	assert.Len(t, dev.Pipelines, 1)
}

func TestBuildRejectsIncompatibleMaterial(t *testing.T) {
	dev := devicetest.New()
	_, err := NewBuilder(Key{Vertex: vertex.FormatColored, Material: material.KindTextured},
		WithTopology(wgpu.PrimitiveTopologyTriangleList),
		WithSurfaceFormat(dev.SurfaceFormat()),
		WithBindGroupLayouts(layouts(t, dev)...),
	).Build(dev)
	assert.ErrorIs(t, err, ErrIncompatibleMaterial)
	assert.Empty(t, dev.Pipelines)
}

func TestBuildValidatesShaderBeforeDevice(t *testing.T) {
	dev := devicetest.New()
	_, err := NewBuilder(coloredKey,
		WithTopology(wgpu.PrimitiveTopologyTriangleList),
		WithSurfaceFormat(dev.SurfaceFormat()),
		WithBindGroupLayouts(layouts(t, dev)...),
		WithShaderSource("this is not wgsl"),
	).Build(dev)
	assert.ErrorIs(t, err, ErrInvalidShader)
	assert.Empty(t, dev.Pipelines)
}

func TestBuildOptions(t *testing.T) {
	dev := devicetest.New()
	depth := &wgpu.DepthStencilState{Format: DepthFormat, DepthCompare: wgpu.CompareFunctionGreater}
	_, err := NewBuilder(coloredKey,
		WithTopology(wgpu.PrimitiveTopologyLineStrip),
		WithSurfaceFormat(wgpu.TextureFormatRGBA8Unorm),
		WithBindGroupLayouts(layouts(t, dev)...),
		WithBlendEnabled(true),
		WithDepthStencil(depth),
		WithSampleCount(4),
		WithFrontFace(wgpu.FrontFaceCW),
		WithWriteMask(wgpu.ColorWriteMaskRed),
		WithShaderValidation(false),
	).Build(dev)
	require.NoError(t, err)

	desc := dev.Pipelines[0].Pipeline
	assert.NotNil(t, desc.Blend)
	assert.Same(t, depth, desc.DepthStencil)
	assert.Equal(t, uint32(4), desc.SampleCount)
	assert.Equal(t, wgpu.FrontFaceCW, desc.FrontFace)
	assert.Equal(t, wgpu.ColorWriteMaskRed, desc.WriteMask)
	assert.Equal(t, wgpu.TextureFormatRGBA8Unorm, desc.Format)
}

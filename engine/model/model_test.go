package model

import (
	"testing"

	"github.com/Carmen-Shannon/skygen/common"
	"github.com/Carmen-Shannon/skygen/engine/renderer/device/devicetest"
	"github.com/Carmen-Shannon/skygen/engine/renderer/vertex"
	"github.com/cogentcore/webgpu/wgpu"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewRect(t *testing.T) {
	dev := devicetest.New()
	m, err := NewRect(dev, [3]float32{2, 4, 6}, [4]float32{1, 0, 0, 1})
	require.NoError(t, err)

	assert.Equal(t, 8, m.VertexCount())
	assert.Equal(t, uint32(36), m.IndexCount())
	assert.Equal(t, vertex.FormatColored, m.Format())
	assert.Equal(t, KindMesh, m.Kind())
	assert.Equal(t, wgpu.IndexFormatUint16, m.IndexFormat())

	vb, err := m.VertexBuffer()
	require.NoError(t, err)
	assert.Equal(t, uint64(8*28), vb.Size())
	ib, err := m.IndexBuffer()
	require.NoError(t, err)
	assert.Equal(t, uint64(72), ib.Size())

	m.Release()
	assert.Empty(t, dev.LiveBuffers())
}

func TestBoxFacesPointOutward(t *testing.T) {
	corner := func(i uint16) common.Vec3 {
		p := common.Vec3{-1, -1, -1}
		for axis := 0; axis < 3; axis++ {
			if i&(1<<axis) != 0 {
				p[axis] = 1
			}
		}
		return p
	}
	require.Len(t, boxIndices, 36)
	for tri := 0; tri < len(boxIndices); tri += 3 {
		a, b, c := corner(boxIndices[tri]), corner(boxIndices[tri+1]), corner(boxIndices[tri+2])
		normal := b.Sub(a).Cross(c.Sub(a))
		center := a.Add(b).Add(c)
		assert.Greater(t, normal.Dot(center), float32(0), "triangle %d winds inward", tri/3)
	}
}

func TestNewMeshValidation(t *testing.T) {
	dev := devicetest.New()
	verts := []vertex.TexturedVertex{{}, {}, {}}

	_, err := NewMesh(dev, "empty", KindMesh, verts, nil)
	assert.ErrorIs(t, err, ErrEmptyMesh)

	_, err = NewMesh(dev, "bad", KindMesh, verts, []uint16{0, 1, 3})
	assert.ErrorIs(t, err, ErrIndexOutOfRange)

	mixed := []vertex.Vertex{vertex.ColoredVertex{}, vertex.TexturedVertex{}, vertex.ColoredVertex{}}
	_, err = NewMesh(dev, "mixed", KindMesh, mixed, []uint16{0, 1, 2})
	assert.ErrorIs(t, err, ErrFormatMismatch)

	_, err = NewMesh(dev, "kind", Kind(9), verts, []uint16{0, 1, 2})
	assert.Error(t, err)
	assert.Empty(t, dev.Buffers)

	m, err := NewMesh(dev, "points", KindPoints, verts, []uint16{0, 1, 2})
	require.NoError(t, err)
	assert.Equal(t, vertex.FormatTextured, m.Format())
}

func TestSetVertexWritesInPlace(t *testing.T) {
	dev := devicetest.New()
	m, err := NewCube(dev, 1, [4]float32{1, 1, 1, 1})
	require.NoError(t, err)

	require.NoError(t, m.SetVertex(0, vertex.ColoredVertex{Color: [4]float32{0, 0, 0, 1}}))
	assert.ErrorIs(t, m.SetVertex(0, vertex.TexturedVertex{}), ErrFormatMismatch)

	_, err = m.VertexBuffer()
	require.NoError(t, err)
	assert.Len(t, dev.Writes, 1)
	assert.Len(t, dev.Buffers, 2)
}

func TestKindTopology(t *testing.T) {
	cases := map[Kind]wgpu.PrimitiveTopology{
		KindMesh:      wgpu.PrimitiveTopologyTriangleList,
		KindWireframe: wgpu.PrimitiveTopologyLineList,
		KindLineStrip: wgpu.PrimitiveTopologyLineStrip,
		KindPoints:    wgpu.PrimitiveTopologyPointList,
	}
	for k, want := range cases {
		got, err := k.Topology()
		require.NoError(t, err)
		assert.Equal(t, want, got, k.String())
	}
}

func TestTransformMatrix(t *testing.T) {
	tr := NewTransform(1, 2, 3)
	tr.Translate(1, 0, 0)
	m := tr.Matrix()
	assert.Equal(t, common.Vec4{2, 2, 3, 1}, m.MulVec4(common.Vec4{0, 0, 0, 1}))

	tr.Rotate(0, common.DegToRad(90), 0)
	p := tr.Matrix().MulVec4(common.Vec4{1, 0, 0, 1})
	assert.InDelta(t, 2, p[0], 1e-5)
	assert.InDelta(t, 2, p[1], 1e-5)
	assert.InDelta(t, 2, p[2], 1e-5)

	assert.Len(t, tr.Marshal(), tr.Size())
}

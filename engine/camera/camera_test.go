package camera

import (
	"testing"

	"github.com/Carmen-Shannon/skygen/common"
	"github.com/stretchr/testify/assert"
)

func TestCameraModes(t *testing.T) {
	at := NewCamera(WithPosition(0, 0, 5), WithTarget(0, 0, 0))
	to := NewCamera(WithPosition(0, 0, 5), WithDirection(0, 0, -1))
	assert.Equal(t, ModeLookTo, to.Mode)

	a, b := at.View(), to.View()
	for i := range a {
		assert.InDelta(t, a[i], b[i], 1e-6)
	}
	origin := a.MulVec4(common.Vec4{0, 0, 0, 1})
	assert.InDelta(t, -5, origin[2], 1e-6)
	assert.Len(t, at.Marshal(), at.Size())
}

func TestPerspectiveDepth(t *testing.T) {
	p := Perspective(90, 1)
	m := p.Matrix()

	near := m.MulVec4(common.Vec4{0, 0, -Near, 1})
	assert.InDelta(t, 0, near[2]/near[3], 1e-6)

	far := m.MulVec4(common.Vec4{0, 0, -1e6, 1})
	assert.InDelta(t, 1, far[2]/far[3], 1e-5)
}

func TestProjectionResize(t *testing.T) {
	p := Perspective(60, 1)
	p.Resize(1600, 800)
	assert.Equal(t, float32(2), p.Aspect())
	assert.InDelta(t, p.Matrix()[5]/2, p.Matrix()[0], 1e-6)

	p.Resize(0, 800)
	assert.Equal(t, float32(2), p.Aspect())

	o := Orthographic([2]float32{0, 0}, [2]float32{10, 10})
	o.Resize(200, 100)
	assert.InDelta(t, 2.0/20, o.Matrix()[0], 1e-6)

	c := Custom(common.Identity())
	c.Resize(10, 20)
	assert.Equal(t, common.Identity(), c.Matrix())
}

func TestOrbit(t *testing.T) {
	o := NewOrbit(WithRadius(10), WithAngles(0, 0), WithRadiusBounds(2, 20))
	assert.InDelta(t, 10, o.Position()[2], 1e-5)

	o.Zoom(100)
	assert.Equal(t, float32(2), o.Radius())

	o.Rotate(0, 10)
	p := o.Position()
	assert.Greater(t, p[1], float32(1.9))

	var c Camera
	o.Apply(&c)
	assert.Equal(t, ModeLookAt, c.Mode)
	assert.Equal(t, p, c.Position)
}

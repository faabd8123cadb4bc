package camera

import (
	"github.com/Carmen-Shannon/skygen/common"
	"github.com/Carmen-Shannon/skygen/engine/renderer/buffer"
)

// Depth range constants. Perspective projections have no far plane.
const (
	Near     float32 = 0.1
	OrthoFar float32 = 1000
)

type projectionKind int

const (
	perspective projectionKind = iota
	orthographic
	custom
)

// Projection maps view space to clip space. Its Buffered projection is the projection matrix.
type Projection struct {
	kind   projectionKind
	fovY   float32
	aspect float32
	origin [2]float32
	size   [2]float32
	matrix common.Mat4
}

var _ buffer.Buffered = Projection{}

// Perspective creates a perspective projection with an infinite far plane.
//
// Parameters:
//   - fovDeg: vertical field of view in degrees
//   - aspect: viewport width over height
//
// Returns:
//   - Projection: the projection
func Perspective(fovDeg, aspect float32) Projection {
	p := Projection{kind: perspective, fovY: common.DegToRad(fovDeg), aspect: aspect}
	p.update()
	return p
}

// Orthographic creates an orthographic projection of the view-space rectangle starting at origin
// with the given size, and a depth range of [Near, OrthoFar].
//
// Parameters:
//   - origin: the bottom-left corner in view space
//   - size: the width and height of the visible rectangle
//
// Returns:
//   - Projection: the projection
func Orthographic(origin, size [2]float32) Projection {
	p := Projection{kind: orthographic, origin: origin, size: size}
	p.update()
	return p
}

// Custom wraps an explicit projection matrix. Resize leaves it unchanged.
func Custom(m common.Mat4) Projection {
	return Projection{kind: custom, matrix: m}
}

// Resize adapts the projection to a new viewport. Perspective projections take the new aspect
// ratio; orthographic ones keep their height and widen or narrow to match. Zero sizes are ignored.
//
// Parameters:
//   - width, height: the viewport size in pixels
func (p *Projection) Resize(width, height int) {
	if width <= 0 || height <= 0 {
		return
	}
	aspect := float32(width) / float32(height)
	switch p.kind {
	case perspective:
		p.aspect = aspect
	case orthographic:
		p.size[0] = p.size[1] * aspect
	default:
		return
	}
	p.update()
}

// Aspect returns the aspect ratio of a perspective projection, zero otherwise.
func (p Projection) Aspect() float32 {
	return p.aspect
}

// Matrix returns the view-to-clip matrix.
func (p Projection) Matrix() common.Mat4 {
	return p.matrix
}

func (p *Projection) update() {
	switch p.kind {
	case perspective:
		p.matrix = common.Perspective(p.fovY, p.aspect, Near)
	case orthographic:
		p.matrix = common.Orthographic(p.origin[0], p.origin[0]+p.size[0], p.origin[1], p.origin[1]+p.size[1], Near, OrthoFar)
	}
}

func (Projection) Size() int {
	return buffer.Mat4{}.Size()
}

func (p Projection) Marshal() []byte {
	return buffer.Mat4(p.matrix).Marshal()
}

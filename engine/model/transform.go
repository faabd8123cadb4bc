package model

import (
	"github.com/Carmen-Shannon/skygen/common"
	"github.com/Carmen-Shannon/skygen/engine/renderer/buffer"
)

// Transform places an entity in the world: a translation and Euler angles in radians, applied
// about x (pitch), then y (yaw), then z (roll).
type Transform struct {
	Position common.Vec3
	Pitch    float32
	Yaw      float32
	Roll     float32
}

var _ buffer.Buffered = Transform{}

// NewTransform creates a Transform at the given position with no rotation.
func NewTransform(x, y, z float32) Transform {
	return Transform{Position: common.Vec3{x, y, z}}
}

// Translate moves the transform by the given offset.
func (t *Transform) Translate(dx, dy, dz float32) {
	t.Position = t.Position.Add(common.Vec3{dx, dy, dz})
}

// Rotate adds the given angles, in radians, to the current rotation.
func (t *Transform) Rotate(pitch, yaw, roll float32) {
	t.Pitch += pitch
	t.Yaw += yaw
	t.Roll += roll
}

// Matrix returns the model matrix: translation times the XYZ Euler rotation.
func (t Transform) Matrix() common.Mat4 {
	p := t.Position
	return common.Translation(p[0], p[1], p[2]).Mul(common.EulerXYZ(t.Pitch, t.Yaw, t.Roll))
}

func (Transform) Size() int {
	return buffer.Mat4{}.Size()
}

func (t Transform) Marshal() []byte {
	return buffer.Mat4(t.Matrix()).Marshal()
}

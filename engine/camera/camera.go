// Package camera computes the view and projection matrices shared by every draw of a frame.
package camera

import (
	"fmt"

	"github.com/Carmen-Shannon/skygen/common"
	"github.com/Carmen-Shannon/skygen/engine/renderer/buffer"
)

// Mode selects how Camera interprets Target.
type Mode int

const (
	// ModeLookAt treats Target as a world-space point to face.
	ModeLookAt Mode = iota
	// ModeLookTo treats Target as a view direction.
	ModeLookTo
)

func (m Mode) String() string {
	switch m {
	case ModeLookAt:
		return "look at"
	case ModeLookTo:
		return "look to"
	default:
		return fmt.Sprintf("mode(%d)", int(m))
	}
}

// Camera is the viewer's placement. Its Buffered projection is the view matrix.
type Camera struct {
	Position common.Vec3
	Target   common.Vec3
	Up       common.Vec3
	Mode     Mode
}

var _ buffer.Buffered = Camera{}

// CameraBuilderOption is a functional option used to configure a Camera during construction.
type CameraBuilderOption func(*Camera)

// NewCamera creates a camera at (0, 0, 5) looking at the origin with +Y up.
//
// Parameters:
//   - opts: a variadic list of CameraBuilderOption functions to configure the camera
//
// Returns:
//   - Camera: the configured camera
func NewCamera(opts ...CameraBuilderOption) Camera {
	c := Camera{
		Position: common.Vec3{0, 0, 5},
		Up:       common.Vec3{0, 1, 0},
		Mode:     ModeLookAt,
	}
	for _, opt := range opts {
		opt(&c)
	}
	return c
}

// WithPosition sets the camera's world-space position.
//
// Parameters:
//   - x, y, z: world-space coordinates
//
// Returns:
//   - CameraBuilderOption: a function that sets the camera position
func WithPosition(x, y, z float32) CameraBuilderOption {
	return func(c *Camera) {
		c.Position = common.Vec3{x, y, z}
	}
}

// WithTarget points the camera at a world-space point.
//
// Parameters:
//   - x, y, z: world-space coordinates
//
// Returns:
//   - CameraBuilderOption: a function that sets ModeLookAt and the target
func WithTarget(x, y, z float32) CameraBuilderOption {
	return func(c *Camera) {
		c.Target = common.Vec3{x, y, z}
		c.Mode = ModeLookAt
	}
}

// WithDirection points the camera along a direction.
//
// Parameters:
//   - x, y, z: the view direction, need not be normalized
//
// Returns:
//   - CameraBuilderOption: a function that sets ModeLookTo and the direction
func WithDirection(x, y, z float32) CameraBuilderOption {
	return func(c *Camera) {
		c.Target = common.Vec3{x, y, z}
		c.Mode = ModeLookTo
	}
}

// WithUp sets the camera's up vector.
//
// Parameters:
//   - x, y, z: up vector components
//
// Returns:
//   - CameraBuilderOption: a function that sets the camera's up vector
func WithUp(x, y, z float32) CameraBuilderOption {
	return func(c *Camera) {
		c.Up = common.Vec3{x, y, z}
	}
}

// View returns the world-to-view matrix.
func (c Camera) View() common.Mat4 {
	if c.Mode == ModeLookTo {
		return common.LookTo(c.Position, c.Target, c.Up)
	}
	return common.LookAt(c.Position, c.Target, c.Up)
}

func (Camera) Size() int {
	return buffer.Mat4{}.Size()
}

func (c Camera) Marshal() []byte {
	return buffer.Mat4(c.View()).Marshal()
}

package model

import (
	"github.com/Carmen-Shannon/skygen/engine/renderer/device"
	"github.com/Carmen-Shannon/skygen/engine/renderer/vertex"
)

// boxIndices winds every face counter-clockwise seen from outside the box. Corner i sits at
// +x when bit 0 is set, +y for bit 1 and +z for bit 2.
var boxIndices = []uint16{
	4, 5, 7, 4, 7, 6, // +z
	1, 0, 2, 1, 2, 3, // -z
	5, 1, 3, 5, 3, 7, // +x
	0, 4, 6, 0, 6, 2, // -x
	6, 7, 3, 6, 3, 2, // +y
	0, 1, 5, 0, 5, 4, // -y
}

// NewRect creates an axis-aligned box centered on the origin: 8 shared corners and 36 indices.
//
// Parameters:
//   - dev: the device to allocate on
//   - size: the extent along x, y and z
//   - color: the RGBA color of every corner
//
// Returns:
//   - Mesh: the box mesh of KindMesh
//   - error: an allocation error
func NewRect(dev device.Device, size [3]float32, color [4]float32) (Mesh, error) {
	hx, hy, hz := size[0]/2, size[1]/2, size[2]/2
	corners := make([]vertex.ColoredVertex, 8)
	for i := range corners {
		p := [3]float32{-hx, -hy, -hz}
		if i&1 != 0 {
			p[0] = hx
		}
		if i&2 != 0 {
			p[1] = hy
		}
		if i&4 != 0 {
			p[2] = hz
		}
		corners[i] = vertex.ColoredVertex{Position: p, Color: color}
	}
	return NewMesh(dev, "Rect", KindMesh, corners, boxIndices)
}

// NewCube creates a cube of edge length size centered on the origin.
//
// Parameters:
//   - dev: the device to allocate on
//   - size: the edge length
//   - color: the RGBA color of every corner
//
// Returns:
//   - Mesh: the cube mesh of KindMesh
//   - error: an allocation error
func NewCube(dev device.Device, size float32, color [4]float32) (Mesh, error) {
	return NewRect(dev, [3]float32{size, size, size}, color)
}

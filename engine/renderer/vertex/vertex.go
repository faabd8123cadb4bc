// Package vertex describes the binary layout of every vertex format the renderer can draw.
package vertex

import (
	"errors"
	"fmt"

	"github.com/Carmen-Shannon/skygen/engine/renderer/buffer"
	"github.com/cogentcore/webgpu/wgpu"
)

// ErrUnknownFormat is returned when a Format has no registered layout.
var ErrUnknownFormat = errors.New("unknown vertex format")

// Format tags a vertex layout. It is one half of a pipeline key.
type Format int

const (
	// FormatColored is position (vec3) followed by RGBA color (vec4).
	FormatColored Format = iota
	// FormatTextured is position (vec3) followed by texture coordinates (vec2).
	FormatTextured
)

func (f Format) String() string {
	switch f {
	case FormatColored:
		return "colored"
	case FormatTextured:
		return "textured"
	default:
		return fmt.Sprintf("format(%d)", int(f))
	}
}

// Vertex is implemented by every vertex type. The Format ties a Go type to its GPU layout, so a
// mesh built from a given type can only be paired with pipelines for that layout.
type Vertex interface {
	buffer.Buffered

	// Format returns the layout tag of the vertex type.
	//
	// Returns:
	//   - Format: the vertex format
	Format() Format
}

// Shader locations used by per-vertex attributes; the instance transform follows them.
const (
	LocationPosition = 0
	LocationSecond   = 1
	// LocationInstance is the first of four consecutive locations holding the model matrix columns.
	LocationInstance = 5
)

// Layout returns the vertex buffer layout for f.
//
// Parameters:
//   - f: the vertex format
//
// Returns:
//   - wgpu.VertexBufferLayout: the per-vertex layout for slot 0
//   - error: ErrUnknownFormat if f has no layout
func Layout(f Format) (wgpu.VertexBufferLayout, error) {
	switch f {
	case FormatColored:
		return wgpu.VertexBufferLayout{
			ArrayStride: uint64(ColoredVertex{}.Size()),
			StepMode:    wgpu.VertexStepModeVertex,
			Attributes: []wgpu.VertexAttribute{
				{Format: wgpu.VertexFormatFloat32x3, Offset: 0, ShaderLocation: LocationPosition},
				{Format: wgpu.VertexFormatFloat32x4, Offset: 12, ShaderLocation: LocationSecond},
			},
		}, nil
	case FormatTextured:
		return wgpu.VertexBufferLayout{
			ArrayStride: uint64(TexturedVertex{}.Size()),
			StepMode:    wgpu.VertexStepModeVertex,
			Attributes: []wgpu.VertexAttribute{
				{Format: wgpu.VertexFormatFloat32x3, Offset: 0, ShaderLocation: LocationPosition},
				{Format: wgpu.VertexFormatFloat32x2, Offset: 12, ShaderLocation: LocationSecond},
			},
		}, nil
	default:
		return wgpu.VertexBufferLayout{}, fmt.Errorf("%w: %s", ErrUnknownFormat, f)
	}
}

// InstanceLayout returns the layout of the per-instance model matrix bound to slot 1:
// four vec4 columns stepped per instance.
func InstanceLayout() wgpu.VertexBufferLayout {
	attrs := make([]wgpu.VertexAttribute, 4)
	for i := range attrs {
		attrs[i] = wgpu.VertexAttribute{
			Format:         wgpu.VertexFormatFloat32x4,
			Offset:         uint64(i * 16),
			ShaderLocation: uint32(LocationInstance + i),
		}
	}
	return wgpu.VertexBufferLayout{
		ArrayStride: uint64(buffer.Mat4{}.Size()),
		StepMode:    wgpu.VertexStepModeInstance,
		Attributes:  attrs,
	}
}

// ColoredVertex is a position with a per-vertex RGBA color.
type ColoredVertex struct {
	Position [3]float32
	Color    [4]float32
}

func (ColoredVertex) Size() int      { return 28 }
func (ColoredVertex) Format() Format { return FormatColored }

func (v ColoredVertex) Marshal() []byte {
	return append(buffer.MarshalFloats(v.Position[:]), buffer.MarshalFloats(v.Color[:])...)
}

// TexturedVertex is a position with texture coordinates.
type TexturedVertex struct {
	Position [3]float32
	UV       [2]float32
}

func (TexturedVertex) Size() int      { return 20 }
func (TexturedVertex) Format() Format { return FormatTextured }

func (v TexturedVertex) Marshal() []byte {
	return append(buffer.MarshalFloats(v.Position[:]), buffer.MarshalFloats(v.UV[:])...)
}

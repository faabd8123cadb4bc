// Package model holds the geometry and placement data drawn by the renderer: meshes and their
// transforms.
package model

import (
	"errors"
	"fmt"

	"github.com/Carmen-Shannon/skygen/engine/renderer/buffer"
	"github.com/Carmen-Shannon/skygen/engine/renderer/device"
	"github.com/Carmen-Shannon/skygen/engine/renderer/vertex"
	"github.com/cogentcore/webgpu/wgpu"
)

var (
	// ErrEmptyMesh is returned when a mesh is created without vertices or indices.
	ErrEmptyMesh = errors.New("mesh has no geometry")

	// ErrIndexOutOfRange is returned when an index refers past the last vertex.
	ErrIndexOutOfRange = errors.New("mesh index out of range")

	// ErrFormatMismatch is returned when a mesh is given vertices of more than one format.
	ErrFormatMismatch = errors.New("vertex format mismatch")
)

// Kind is the render-component kind of a mesh. It selects the primitive topology its pipeline
// rasterizes with.
type Kind int

const (
	// KindMesh draws filled triangles.
	KindMesh Kind = iota
	// KindWireframe draws line segments, two indices per line.
	KindWireframe
	// KindLineStrip draws a connected polyline.
	KindLineStrip
	// KindPoints draws one point per index.
	KindPoints
)

func (k Kind) String() string {
	switch k {
	case KindMesh:
		return "mesh"
	case KindWireframe:
		return "wireframe"
	case KindLineStrip:
		return "line strip"
	case KindPoints:
		return "points"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

// Topology returns the primitive topology for k.
func (k Kind) Topology() (wgpu.PrimitiveTopology, error) {
	switch k {
	case KindMesh:
		return wgpu.PrimitiveTopologyTriangleList, nil
	case KindWireframe:
		return wgpu.PrimitiveTopologyLineList, nil
	case KindLineStrip:
		return wgpu.PrimitiveTopologyLineStrip, nil
	case KindPoints:
		return wgpu.PrimitiveTopologyPointList, nil
	default:
		return 0, fmt.Errorf("unknown render kind %s", k)
	}
}

// mesh is the implementation of the Mesh interface.
type mesh struct {
	label    string
	kind     Kind
	format   vertex.Format
	vertices *buffer.ManagedBuffer[vertex.Vertex]
	indices  *buffer.ManagedBuffer[buffer.U16]
}

// Mesh is indexed geometry mirrored in device vertex and index buffers.
// A Mesh is not safe for concurrent use; it is mutated and drawn from the render loop.
type Mesh interface {
	// Label returns the debug label of the mesh.
	//
	// Returns:
	//   - string: the label
	Label() string

	// Kind returns the render-component kind of the mesh.
	//
	// Returns:
	//   - Kind: the kind
	Kind() Kind

	// Format returns the vertex format shared by every vertex of the mesh.
	//
	// Returns:
	//   - vertex.Format: the vertex format
	Format() vertex.Format

	// VertexBuffer returns the device vertex buffer, syncing pending vertex edits first.
	//
	// Returns:
	//   - device.Buffer: the vertex buffer
	//   - error: an error if the sync failed
	VertexBuffer() (device.Buffer, error)

	// IndexBuffer returns the device index buffer, syncing pending index edits first.
	//
	// Returns:
	//   - device.Buffer: the index buffer
	//   - error: an error if the sync failed
	IndexBuffer() (device.Buffer, error)

	// IndexFormat returns the element format of the index buffer.
	//
	// Returns:
	//   - wgpu.IndexFormat: always wgpu.IndexFormatUint16
	IndexFormat() wgpu.IndexFormat

	// IndexCount returns the number of indices drawn for the mesh.
	//
	// Returns:
	//   - uint32: the index count
	IndexCount() uint32

	// VertexCount returns the number of vertices.
	//
	// Returns:
	//   - int: the vertex count
	VertexCount() int

	// SetVertex replaces the vertex at i. The device copy is updated in place on the next draw.
	//
	// Parameters:
	//   - i: the vertex index
	//   - v: the new vertex, of the mesh's format
	//
	// Returns:
	//   - error: ErrFormatMismatch or buffer.ErrIndexOutOfBounds
	SetVertex(i int, v vertex.Vertex) error

	// Release frees both device buffers.
	Release()
}

var _ Mesh = &mesh{}

// NewMesh uploads vertices and indices to dev. Every index must refer to an existing vertex.
//
// Parameters:
//   - dev: the device to allocate on
//   - label: a debug label for the mesh buffers
//   - kind: the render-component kind
//   - vertices: the vertex data
//   - indices: the index data
//
// Returns:
//   - Mesh: the uploaded mesh
//   - error: ErrEmptyMesh, ErrFormatMismatch, ErrIndexOutOfRange or an allocation error
func NewMesh[V vertex.Vertex](dev device.Device, label string, kind Kind, vertices []V, indices []uint16) (Mesh, error) {
	if len(vertices) == 0 || len(indices) == 0 {
		return nil, fmt.Errorf("%w: %s", ErrEmptyMesh, label)
	}
	if _, err := kind.Topology(); err != nil {
		return nil, err
	}
	idx := make([]buffer.U16, len(indices))
	for i, n := range indices {
		if int(n) >= len(vertices) {
			return nil, fmt.Errorf("%w: %s index %d refers to vertex %d of %d", ErrIndexOutOfRange, label, i, n, len(vertices))
		}
		idx[i] = buffer.U16(n)
	}
	format := vertices[0].Format()
	verts := make([]vertex.Vertex, len(vertices))
	for i, v := range vertices {
		if f := v.Format(); f != format {
			return nil, fmt.Errorf("%w: %s vertex %d is %s, want %s", ErrFormatMismatch, label, i, f, format)
		}
		verts[i] = v
	}

	m := &mesh{label: label, kind: kind, format: format}
	var err error
	if m.vertices, err = buffer.New(dev, label+" Vertices", wgpu.BufferUsageVertex, verts); err != nil {
		return nil, err
	}
	if m.indices, err = buffer.New(dev, label+" Indices", wgpu.BufferUsageIndex, idx); err != nil {
		m.vertices.Release()
		return nil, err
	}
	return m, nil
}

func (m *mesh) Label() string {
	return m.label
}

func (m *mesh) Kind() Kind {
	return m.kind
}

func (m *mesh) Format() vertex.Format {
	return m.format
}

func (m *mesh) VertexBuffer() (device.Buffer, error) {
	return m.vertices.Get()
}

func (m *mesh) IndexBuffer() (device.Buffer, error) {
	return m.indices.Get()
}

func (m *mesh) IndexFormat() wgpu.IndexFormat {
	return wgpu.IndexFormatUint16
}

func (m *mesh) IndexCount() uint32 {
	return uint32(m.indices.Len())
}

func (m *mesh) VertexCount() int {
	return m.vertices.Len()
}

func (m *mesh) SetVertex(i int, v vertex.Vertex) error {
	if v.Format() != m.format {
		return fmt.Errorf("%w: %s into %s mesh", ErrFormatMismatch, v.Format(), m.format)
	}
	return m.vertices.Set(i, v)
}

func (m *mesh) Release() {
	m.vertices.Release()
	m.indices.Release()
}

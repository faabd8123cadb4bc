// Package pipeline assembles immutable render pipelines from a vertex format, a material kind and
// the binding layouts they are drawn with.
package pipeline

import (
	"fmt"

	"github.com/Carmen-Shannon/skygen/engine/renderer/device"
	"github.com/Carmen-Shannon/skygen/engine/renderer/material"
	"github.com/Carmen-Shannon/skygen/engine/renderer/shader"
	"github.com/Carmen-Shannon/skygen/engine/renderer/vertex"
	"github.com/cogentcore/webgpu/wgpu"
)

// Key identifies the shader program of a pipeline: the vertex format it consumes and the material
// kind it shades with.
type Key struct {
	Vertex   vertex.Format
	Material material.Kind
}

func (k Key) String() string {
	return fmt.Sprintf("%s/%s", k.Vertex, k.Material)
}

// ShaderSource returns the WGSL program for key.
//
// Parameters:
//   - key: the vertex format and material kind
//
// Returns:
//   - string: the WGSL source
//   - error: an error if the pair is unknown or incompatible
func ShaderSource(key Key) (string, error) {
	return shader.Source(key.Vertex, key.Material)
}

// pipeline is the implementation of the Pipeline interface.
type pipeline struct {
	key              Key
	topology         wgpu.PrimitiveTopology
	surfaceFormat    wgpu.TextureFormat
	vertexLayouts    []wgpu.VertexBufferLayout
	bindGroupLayouts []device.BindGroupLayout
	handle           device.RenderPipeline
}

// Pipeline is a compiled render pipeline together with the configuration it was built from.
// It is never mutated after Build returns it.
type Pipeline interface {
	// Key returns the vertex format and material kind the pipeline was built for.
	//
	// Returns:
	//   - Key: the pipeline key
	Key() Key

	// Topology returns the primitive topology the pipeline rasterizes.
	//
	// Returns:
	//   - wgpu.PrimitiveTopology: the topology
	Topology() wgpu.PrimitiveTopology

	// VertexLayouts returns the vertex buffer layouts in slot order: per-vertex data at slot 0 and the
	// per-instance model matrix at slot 1.
	//
	// Returns:
	//   - []wgpu.VertexBufferLayout: a copy of the layouts
	VertexLayouts() []wgpu.VertexBufferLayout

	// BindGroupLayouts returns the binding layouts in @group order.
	//
	// Returns:
	//   - []device.BindGroupLayout: a copy of the layouts
	BindGroupLayouts() []device.BindGroupLayout

	// SurfaceFormat returns the color target format.
	//
	// Returns:
	//   - wgpu.TextureFormat: the surface format
	SurfaceFormat() wgpu.TextureFormat

	// Handle returns the device pipeline object to bind on a render pass.
	//
	// Returns:
	//   - device.RenderPipeline: the compiled pipeline
	Handle() device.RenderPipeline

	// Release frees the device pipeline. Binding layouts are owned by the caller and stay alive.
	Release()
}

var _ Pipeline = &pipeline{}

func (p *pipeline) Key() Key {
	return p.key
}

func (p *pipeline) Topology() wgpu.PrimitiveTopology {
	return p.topology
}

func (p *pipeline) VertexLayouts() []wgpu.VertexBufferLayout {
	return append([]wgpu.VertexBufferLayout(nil), p.vertexLayouts...)
}

func (p *pipeline) BindGroupLayouts() []device.BindGroupLayout {
	return append([]device.BindGroupLayout(nil), p.bindGroupLayouts...)
}

func (p *pipeline) SurfaceFormat() wgpu.TextureFormat {
	return p.surfaceFormat
}

func (p *pipeline) Handle() device.RenderPipeline {
	return p.handle
}

func (p *pipeline) Release() {
	if p.handle != nil {
		p.handle.Release()
		p.handle = nil
	}
}

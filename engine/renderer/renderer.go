// Package renderer owns the typed pipeline registry and the per-frame draw loop. Pipelines are
// keyed by render kind, vertex format and material kind, built on first use and never mutated.
package renderer

import (
	"errors"
	"fmt"
	"sync"

	"github.com/Carmen-Shannon/skygen/common"
	"github.com/Carmen-Shannon/skygen/engine/camera"
	"github.com/Carmen-Shannon/skygen/engine/model"
	"github.com/Carmen-Shannon/skygen/engine/renderer/bind_group_provider"
	"github.com/Carmen-Shannon/skygen/engine/renderer/buffer"
	"github.com/Carmen-Shannon/skygen/engine/renderer/device"
	"github.com/Carmen-Shannon/skygen/engine/renderer/material"
	"github.com/Carmen-Shannon/skygen/engine/renderer/pipeline"
	"github.com/Carmen-Shannon/skygen/engine/renderer/vertex"
	"github.com/Carmen-Shannon/skygen/engine/world"
	"github.com/cogentcore/webgpu/wgpu"
)

// Bind group indices shared by every pipeline.
const (
	GroupProjection = 0
	GroupMaterial   = 1
)

// Vertex buffer slots shared by every pipeline.
const (
	SlotVertex   = 0
	SlotInstance = 1
)

// Projection group bindings.
const (
	BindingProjection = 0
	BindingView       = 1
)

// Key identifies one registered pipeline.
type Key struct {
	Kind     model.Kind
	Vertex   vertex.Format
	Material material.Kind
}

func (k Key) String() string {
	return fmt.Sprintf("%s %s/%s", k.Kind, k.Vertex, k.Material)
}

// Stats summarizes one RenderMeshes call.
type Stats struct {
	Draws            int
	PipelinesBuilt   int
	InstancesPruned  int
	MaterialsSwept   int
	ProjectionGroups int
}

// renderer is the implementation of the Renderer interface.
type renderer struct {
	mu *sync.Mutex

	dev device.Device
	// surfaceFormat overrides the device's format when not Undefined.
	surfaceFormat wgpu.TextureFormat
	pipelineOpts  []pipeline.BuilderOption

	pipelines        map[Key]pipeline.Pipeline
	projectionLayout device.BindGroupLayout
	materialLayouts  map[material.Kind]device.BindGroupLayout

	camera     *buffer.ManagedBuffer[camera.Camera]
	projection *buffer.ManagedBuffer[camera.Projection]
	projGroup  bind_group_provider.BindGroupProvider

	arena     *material.Arena
	instances map[world.Entity]*buffer.ManagedBuffer[model.Transform]
}

// Renderer is the render container: a registry of typed pipelines, the shared projection group and
// the GPU mirrors of per-entity instance data.
//
// Every draw binds the projection group at GroupProjection, the material group at GroupMaterial,
// vertex data at SlotVertex and the model matrix at SlotInstance.
type Renderer interface {
	// InsertTypedPipeline builds and registers the pipeline for the given combination. It is a
	// no-op when the pipeline already exists.
	//
	// Parameters:
	//   - kind: the render kind, which selects the primitive topology
	//   - vf: the vertex format
	//   - mat: the material kind
	//
	// Returns:
	//   - error: a pipeline build error; nothing is registered on failure
	InsertTypedPipeline(kind model.Kind, vf vertex.Format, mat material.Kind) error

	// Pipeline retrieves a registered pipeline.
	//
	// Parameters:
	//   - key: the pipeline key
	//
	// Returns:
	//   - pipeline.Pipeline: the pipeline, or nil if it was never built
	Pipeline(key Key) pipeline.Pipeline

	// Len returns the number of registered pipelines.
	//
	// Returns:
	//   - int: the pipeline count
	Len() int

	// Camera returns the current camera.
	//
	// Returns:
	//   - camera.Camera: the camera
	Camera() camera.Camera

	// SetCamera replaces the camera. The view uniform is rewritten in place at the next frame.
	//
	// Parameters:
	//   - c: the new camera
	SetCamera(c camera.Camera)

	// Projection returns the current projection.
	//
	// Returns:
	//   - camera.Projection: the projection
	Projection() camera.Projection

	// SetProjection replaces the projection. The uniform is rewritten in place at the next frame.
	//
	// Parameters:
	//   - p: the new projection
	SetProjection(p camera.Projection)

	// Resize adapts the projection to a new viewport size.
	//
	// Parameters:
	//   - width, height: the viewport size in pixels
	Resize(width, height int)

	// RenderMeshes records one indexed draw per entity carrying a model.Mesh, a model.Transform and a
	// material.Material, in entity order. Missing pipelines are built on demand. Instance buffers and
	// material resources of entities no longer drawn are released.
	//
	// Parameters:
	//   - pass: the render pass to record into
	//   - w: the world to draw
	//
	// Returns:
	//   - Stats: counters for the call
	//   - error: the first failure, wrapped with the entity it occurred on
	RenderMeshes(pass device.RenderPass, w *world.World) (Stats, error)

	// Render acquires a frame from the device, records RenderMeshes into it, then submits and
	// presents. The frame is always ended once acquired.
	//
	// Parameters:
	//   - w: the world to draw
	//
	// Returns:
	//   - Stats: counters for the frame
	//   - error: a *device.SurfaceError from acquisition, or a recording or submission error
	Render(w *world.World) (Stats, error)

	// Release frees every pipeline, layout, buffer and bind group owned by the renderer.
	Release()
}

var _ Renderer = &renderer{}

// NewRenderer creates a Renderer drawing to dev's surface with the given camera and projection.
//
// Parameters:
//   - dev: the device to draw with
//   - cam: the initial camera
//   - proj: the initial projection
//   - options: variadic list of RendererBuilderOption functions to configure the Renderer
//
// Returns:
//   - Renderer: the renderer
//   - error: an error if the projection resources could not be created
func NewRenderer(dev device.Device, cam camera.Camera, proj camera.Projection, options ...RendererBuilderOption) (Renderer, error) {
	r := &renderer{
		mu:              &sync.Mutex{},
		dev:             dev,
		pipelines:       make(map[Key]pipeline.Pipeline),
		materialLayouts: make(map[material.Kind]device.BindGroupLayout),
		arena:           material.NewArena(),
		instances:       make(map[world.Entity]*buffer.ManagedBuffer[model.Transform]),
	}
	for _, opt := range options {
		opt(r)
	}

	uniform := wgpu.BufferBindingLayout{Type: wgpu.BufferBindingTypeUniform, MinBindingSize: uint64(buffer.Mat4{}.Size())}
	layout, err := dev.CreateBindGroupLayout("Projection Layout", []wgpu.BindGroupLayoutEntry{
		{Binding: BindingProjection, Visibility: wgpu.ShaderStageVertex, Buffer: uniform},
		{Binding: BindingView, Visibility: wgpu.ShaderStageVertex, Buffer: uniform},
	})
	if err != nil {
		return nil, fmt.Errorf("projection layout: %w", err)
	}
	r.projectionLayout = layout

	if r.projection, err = buffer.New(dev, "Projection", wgpu.BufferUsageUniform, []camera.Projection{proj}); err != nil {
		r.Release()
		return nil, err
	}
	if r.camera, err = buffer.New(dev, "View", wgpu.BufferUsageUniform, []camera.Camera{cam}); err != nil {
		r.Release()
		return nil, err
	}
	r.projGroup = bind_group_provider.NewBindGroupProvider("Projection", layout,
		bind_group_provider.WithBuffer(BindingProjection, r.projection),
		bind_group_provider.WithBuffer(BindingView, r.camera),
	)
	return r, nil
}

func (r *renderer) InsertTypedPipeline(kind model.Kind, vf vertex.Format, mat material.Kind) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	_, _, err := r.insert(Key{Kind: kind, Vertex: vf, Material: mat})
	return err
}

// insert returns the pipeline for key, building it if needed. The caller holds r.mu.
func (r *renderer) insert(key Key) (pipeline.Pipeline, bool, error) {
	if p, ok := r.pipelines[key]; ok {
		return p, false, nil
	}
	topology, err := key.Kind.Topology()
	if err != nil {
		return nil, false, err
	}
	matLayout, err := r.materialLayout(key.Material)
	if err != nil {
		return nil, false, err
	}
	format := r.surfaceFormat
	if format == wgpu.TextureFormatUndefined {
		format = r.dev.SurfaceFormat()
	}
	opts := append([]pipeline.BuilderOption{
		pipeline.WithTopology(topology),
		pipeline.WithSurfaceFormat(format),
		pipeline.WithBindGroupLayouts(r.projectionLayout, matLayout),
	}, r.pipelineOpts...)
	p, err := pipeline.NewBuilder(pipeline.Key{Vertex: key.Vertex, Material: key.Material}, opts...).Build(r.dev)
	if err != nil {
		return nil, false, fmt.Errorf("pipeline %s: %w", key, err)
	}
	r.pipelines[key] = p
	common.Logger().Debug("registered pipeline", "key", key.String(), "topology", topology)
	return p, true, nil
}

func (r *renderer) materialLayout(kind material.Kind) (device.BindGroupLayout, error) {
	if l, ok := r.materialLayouts[kind]; ok {
		return l, nil
	}
	entries, err := material.LayoutEntries(kind)
	if err != nil {
		return nil, err
	}
	l, err := r.dev.CreateBindGroupLayout("Material Layout "+kind.String(), entries)
	if err != nil {
		return nil, fmt.Errorf("material layout %s: %w", kind, err)
	}
	r.materialLayouts[kind] = l
	return l, nil
}

func (r *renderer) Pipeline(key Key) pipeline.Pipeline {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.pipelines[key]
}

func (r *renderer) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.pipelines)
}

func (r *renderer) Camera() camera.Camera {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.camera.Values()[0]
}

func (r *renderer) SetCamera(c camera.Camera) {
	r.mu.Lock()
	defer r.mu.Unlock()
	// index 0 always exists
	_ = r.camera.Set(0, c)
}

func (r *renderer) Projection() camera.Projection {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.projection.Values()[0]
}

func (r *renderer) SetProjection(p camera.Projection) {
	r.mu.Lock()
	defer r.mu.Unlock()
	_ = r.projection.Set(0, p)
}

func (r *renderer) Resize(width, height int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	p := r.projection.Values()[0]
	p.Resize(width, height)
	_ = r.projection.Set(0, p)
}

type meshRow = world.Row3[model.Mesh, model.Transform, material.Material]

func (r *renderer) RenderMeshes(pass device.RenderPass, w *world.World) (Stats, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var stats Stats
	before := r.projGroup.Rebuilds()
	projGroup, err := r.projGroup.Refresh(r.dev)
	if err != nil {
		return stats, err
	}
	stats.ProjectionGroups = r.projGroup.Rebuilds() - before

	rows := world.Query3[model.Mesh, model.Transform, material.Material](w)
	seen := make(map[world.Entity]struct{}, len(rows))
	r.arena.BeginFrame()
	for _, row := range rows {
		built, err := r.draw(pass, projGroup, row)
		if err != nil {
			return stats, fmt.Errorf("entity %d: %w", row.Entity, err)
		}
		if built {
			stats.PipelinesBuilt++
		}
		seen[row.Entity] = struct{}{}
		stats.Draws++
	}

	for e, inst := range r.instances {
		if _, ok := seen[e]; !ok {
			inst.Release()
			delete(r.instances, e)
			stats.InstancesPruned++
		}
	}
	stats.MaterialsSwept = r.arena.Sweep()
	return stats, nil
}

func (r *renderer) draw(pass device.RenderPass, projGroup device.BindGroup, row meshRow) (bool, error) {
	mesh, tr, mat := row.A, row.B, row.C
	if mesh == nil || mat == nil {
		return false, errors.New("nil mesh or material component")
	}

	p, built, err := r.insert(Key{Kind: mesh.Kind(), Vertex: mesh.Format(), Material: mat.Kind()})
	if err != nil {
		return false, err
	}
	matGroup, err := r.arena.Resolve(r.dev, r.materialLayouts[mat.Kind()], mat)
	if err != nil {
		return built, err
	}
	instance, err := r.instanceBuffer(row.Entity, tr)
	if err != nil {
		return built, err
	}
	vb, err := mesh.VertexBuffer()
	if err != nil {
		return built, err
	}
	ib, err := mesh.IndexBuffer()
	if err != nil {
		return built, err
	}

	pass.SetPipeline(p.Handle())
	pass.SetBindGroup(GroupProjection, projGroup)
	pass.SetBindGroup(GroupMaterial, matGroup)
	pass.SetVertexBuffer(SlotVertex, vb)
	pass.SetVertexBuffer(SlotInstance, instance)
	pass.SetIndexBuffer(ib, mesh.IndexFormat())
	pass.DrawIndexed(mesh.IndexCount(), 1)
	return built, nil
}

// instanceBuffer returns the entity's model matrix buffer, writing tr into it when it changed.
func (r *renderer) instanceBuffer(e world.Entity, tr model.Transform) (device.Buffer, error) {
	inst, ok := r.instances[e]
	if !ok {
		var err error
		inst, err = buffer.New(r.dev, fmt.Sprintf("Instance %d", e), wgpu.BufferUsageVertex, []model.Transform{tr})
		if err != nil {
			return nil, err
		}
		r.instances[e] = inst
	} else if inst.Values()[0] != tr {
		if err := inst.Set(0, tr); err != nil {
			return nil, err
		}
	}
	return inst.Get()
}

func (r *renderer) Render(w *world.World) (Stats, error) {
	pass, err := r.dev.BeginFrame()
	if err != nil {
		return Stats{}, err
	}
	stats, renderErr := r.RenderMeshes(pass, w)
	endErr := r.dev.EndFrame()
	r.dev.Present()
	return stats, errors.Join(renderErr, endErr)
}

func (r *renderer) Release() {
	r.mu.Lock()
	defer r.mu.Unlock()
	for k, p := range r.pipelines {
		p.Release()
		delete(r.pipelines, k)
	}
	for e, inst := range r.instances {
		inst.Release()
		delete(r.instances, e)
	}
	r.arena.Release()
	if r.projGroup != nil {
		r.projGroup.Release()
		r.projGroup = nil
	} else {
		if r.projection != nil {
			r.projection.Release()
		}
		if r.camera != nil {
			r.camera.Release()
		}
	}
	for k, l := range r.materialLayouts {
		l.Release()
		delete(r.materialLayouts, k)
	}
	if r.projectionLayout != nil {
		r.projectionLayout.Release()
		r.projectionLayout = nil
	}
}

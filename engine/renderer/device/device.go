// Package device is the seam between the renderer and the GPU API. Every GPU object the renderer
// touches is created through a Device and handed back as an opaque handle, so the renderer can be
// driven by the WebGPU backend at runtime and by an in-memory recorder in tests.
package device

import (
	"github.com/Carmen-Shannon/skygen/common"
	"github.com/cogentcore/webgpu/wgpu"
)

// PresentMode controls how rendered frames are presented to the display surface.
type PresentMode int

const (
	// PresentModeVSync waits for the next vertical blank before presenting, capping frame rate
	// to the monitor's refresh rate. Eliminates tearing.
	PresentModeVSync PresentMode = iota

	// PresentModeUncapped presents frames immediately without waiting for vertical blank.
	// May cause screen tearing but provides the lowest latency.
	PresentModeUncapped
)

// ParsePresentMode maps a configuration string ("vsync" or "uncapped") to a PresentMode.
// Unknown values fall back to PresentModeVSync and report false.
func ParsePresentMode(s string) (PresentMode, bool) {
	switch s {
	case "vsync", "":
		return PresentModeVSync, true
	case "uncapped":
		return PresentModeUncapped, true
	default:
		return PresentModeVSync, false
	}
}

// MSAASampleCount controls the number of samples used for multisample anti-aliasing (MSAA).
// WebGPU guarantees support for 1 (off) and 4; higher values are adapter-dependent.
type MSAASampleCount uint32

const (
	// MSAAOff disables multisample anti-aliasing (sample count 1).
	MSAAOff MSAASampleCount = 1

	// MSAA4x enables 4× multisample anti-aliasing.
	MSAA4x MSAASampleCount = 4
)

// Handle is implemented by every GPU object a Device hands out.
type Handle interface {
	// Label returns the debug label the object was created with.
	Label() string

	// Release frees the underlying GPU object. Releasing twice is a no-op.
	Release()
}

// Buffer is an opaque handle to a device memory region.
type Buffer interface {
	Handle

	// Size returns the allocated size in bytes, which may include alignment padding.
	Size() uint64

	// Usage returns the usage flags the buffer was created with.
	Usage() wgpu.BufferUsage
}

// BindGroupLayout is an opaque handle to a resource binding layout.
type BindGroupLayout interface{ Handle }

// BindGroup is an opaque handle to a set of bound GPU resources.
type BindGroup interface{ Handle }

// RenderPipeline is an opaque handle to a compiled render pipeline.
type RenderPipeline interface{ Handle }

// TextureView is an opaque handle to a sampled texture view.
type TextureView interface{ Handle }

// Sampler is an opaque handle to a texture sampler.
type Sampler interface{ Handle }

// BindGroupEntry binds exactly one of Buffer, TextureView or Sampler to Binding.
type BindGroupEntry struct {
	Binding     uint32
	Buffer      Buffer
	TextureView TextureView
	Sampler     Sampler
}

// RenderPipelineDescriptor carries everything a Device needs to compile a render pipeline.
// Vertex and fragment stages share a single WGSL module.
type RenderPipelineDescriptor struct {
	Label              string
	ShaderSource       string
	VertexEntryPoint   string
	FragmentEntryPoint string
	VertexLayouts      []wgpu.VertexBufferLayout
	// BindGroupLayouts is ordered; index i is bound as @group(i).
	BindGroupLayouts []BindGroupLayout
	Topology         wgpu.PrimitiveTopology
	FrontFace        wgpu.FrontFace
	CullMode         wgpu.CullMode
	Format           wgpu.TextureFormat
	Blend            *wgpu.BlendState
	WriteMask        wgpu.ColorWriteMask
	// DepthStencil is nil when the pipeline does not use the depth attachment.
	DepthStencil *wgpu.DepthStencilState
	SampleCount  uint32
}

// RenderPass records draw commands for the frame started by Device.BeginFrame.
type RenderPass interface {
	// SetPipeline binds the pipeline used by subsequent draws.
	SetPipeline(p RenderPipeline)

	// SetBindGroup binds bg at @group(index).
	SetBindGroup(index uint32, bg BindGroup)

	// SetVertexBuffer binds the whole of buf to vertex buffer slot.
	SetVertexBuffer(slot uint32, buf Buffer)

	// SetIndexBuffer binds the whole of buf as the index buffer.
	SetIndexBuffer(buf Buffer, format wgpu.IndexFormat)

	// DrawIndexed draws indexCount indices starting at zero, instanceCount times.
	DrawIndexed(indexCount, instanceCount uint32)
}

// Device is the graphics backend used by the renderer. Implementations own the GPU device, queue and
// presentation surface. A Device is not safe for concurrent use; callers serialize access through
// graphics.Context.
type Device interface {
	// SurfaceFormat returns the texture format negotiated for the presentation surface.
	//
	// Returns:
	//   - wgpu.TextureFormat: the surface format, or wgpu.TextureFormatUndefined before Configure
	SurfaceFormat() wgpu.TextureFormat

	// SampleCount returns the MSAA sample count every render pipeline must be built with.
	//
	// Returns:
	//   - uint32: the sample count of the main render pass
	SampleCount() uint32

	// Configure (re)configures the presentation surface and its attachments for the given size.
	// Must be called before the first frame and whenever the window is resized.
	//
	// Parameters:
	//   - width: the surface width in pixels
	//   - height: the surface height in pixels
	//
	// Returns:
	//   - error: an error if the surface or its attachments could not be created
	Configure(width, height int) error

	// SetPresentMode changes the present mode; it takes effect on the next Configure.
	//
	// Parameters:
	//   - mode: the PresentMode to use
	SetPresentMode(mode PresentMode)

	// CreateBuffer allocates a device buffer initialized with contents.
	//
	// Parameters:
	//   - label: a debug label for the buffer
	//   - usage: the usage flags of the buffer
	//   - contents: the initial bytes; may be empty
	//
	// Returns:
	//   - Buffer: the new buffer handle
	//   - error: an error if the device could not satisfy the size/usage combination
	CreateBuffer(label string, usage wgpu.BufferUsage, contents []byte) (Buffer, error)

	// WriteBuffer copies data into buf at offset without reallocating it.
	//
	// Parameters:
	//   - buf: the destination buffer, which must have been created with CopyDst usage
	//   - offset: the byte offset to write at
	//   - data: the bytes to write
	//
	// Returns:
	//   - error: an error if the write is out of range or the queue rejects it
	WriteBuffer(buf Buffer, offset uint64, data []byte) error

	// CreateBindGroupLayout creates a resource binding layout.
	//
	// Parameters:
	//   - label: a debug label for the layout
	//   - entries: the binding slots of the layout
	//
	// Returns:
	//   - BindGroupLayout: the new layout handle
	//   - error: an error if the layout is invalid
	CreateBindGroupLayout(label string, entries []wgpu.BindGroupLayoutEntry) (BindGroupLayout, error)

	// CreateBindGroup binds concrete resources against layout.
	//
	// Parameters:
	//   - label: a debug label for the bind group
	//   - layout: the layout the entries must satisfy
	//   - entries: the resources to bind
	//
	// Returns:
	//   - BindGroup: the new bind group handle
	//   - error: an error if an entry does not match the layout
	CreateBindGroup(label string, layout BindGroupLayout, entries []BindGroupEntry) (BindGroup, error)

	// CreateTexture uploads RGBA pixel data and returns a view suitable for sampling.
	//
	// Parameters:
	//   - label: a debug label for the texture
	//   - data: the staged pixels and dimensions
	//
	// Returns:
	//   - TextureView: the view of the uploaded texture
	//   - error: an error if the texture could not be created
	CreateTexture(label string, data common.TextureStagingData) (TextureView, error)

	// CreateSampler creates a sampler, filling zero fields with linear/repeat defaults.
	//
	// Parameters:
	//   - label: a debug label for the sampler
	//   - data: the sampler configuration
	//
	// Returns:
	//   - Sampler: the new sampler handle
	//   - error: an error if the sampler could not be created
	CreateSampler(label string, data common.SamplerStagingData) (Sampler, error)

	// CreateRenderPipeline compiles a render pipeline.
	//
	// Parameters:
	//   - desc: the pipeline description
	//
	// Returns:
	//   - RenderPipeline: the compiled pipeline handle
	//   - error: an error if the shader or pipeline state is rejected
	CreateRenderPipeline(desc *RenderPipelineDescriptor) (RenderPipeline, error)

	// BeginFrame acquires the next surface texture and begins the frame's single render pass.
	// Must be paired with EndFrame.
	//
	// Returns:
	//   - RenderPass: the pass to record draws into
	//   - error: a *SurfaceError if the surface texture could not be acquired
	BeginFrame() (RenderPass, error)

	// EndFrame ends the render pass and submits the recorded commands.
	//
	// Returns:
	//   - error: an error if the command buffer could not be finished
	EndFrame() error

	// Present presents the acquired surface texture. Must be called once after EndFrame.
	Present()

	// Release frees the device, the surface and all frame attachments.
	Release()
}

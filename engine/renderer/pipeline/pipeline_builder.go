package pipeline

import (
	"errors"
	"fmt"

	"github.com/Carmen-Shannon/skygen/engine/renderer/device"
	"github.com/Carmen-Shannon/skygen/engine/renderer/shader"
	"github.com/Carmen-Shannon/skygen/engine/renderer/vertex"
	"github.com/cogentcore/webgpu/wgpu"
)

var (
	// ErrBuilderConsumed is returned by Build on a builder that already built a pipeline.
	ErrBuilderConsumed = errors.New("pipeline builder already consumed")

	// ErrMissingField is matched by every MissingFieldError.
	ErrMissingField = errors.New("missing required pipeline field")

	// ErrIncompatibleMaterial is returned for a material kind that cannot shade the vertex format.
	ErrIncompatibleMaterial = shader.ErrIncompatibleMaterial

	// ErrInvalidShader is returned when the shader source fails validation.
	ErrInvalidShader = shader.ErrInvalidShader
)

// MissingFieldError names a builder field that was never set.
type MissingFieldError struct {
	Field string
}

func (e *MissingFieldError) Error() string {
	return fmt.Sprintf("%s: %s", ErrMissingField, e.Field)
}

func (e *MissingFieldError) Is(target error) bool {
	return target == ErrMissingField
}

// DepthFormat is the format of the depth attachment every frame renders with.
const DepthFormat = wgpu.TextureFormatDepth24Plus

// builder is the implementation of the Builder interface.
type builder struct {
	key      Key
	consumed bool

	topology         wgpu.PrimitiveTopology
	topologySet      bool
	surfaceFormat    wgpu.TextureFormat
	bindGroupLayouts []device.BindGroupLayout
	sampleCount      uint32
	shaderSource     string
	validateShader   bool

	depthStencil        *wgpu.DepthStencilState
	depthTestEnabled    bool
	depthWriteEnabled   bool
	depthBias           int32
	depthBiasSlopeScale float32
	blendEnabled        bool
	blendState          *wgpu.BlendState
	writeMask           wgpu.ColorWriteMask
	cullMode            wgpu.CullMode
	frontFace           wgpu.FrontFace
}

// Builder accumulates the configuration of one render pipeline. It is single use: the first call
// to Build consumes it, whether or not the build succeeds.
type Builder interface {
	// Key returns the key the builder was created for.
	//
	// Returns:
	//   - Key: the pipeline key
	Key() Key

	// Build validates the configuration, compiles the shader and creates the device pipeline.
	// Missing fields and shader problems are reported before any device call is made.
	//
	// Parameters:
	//   - dev: the device to create the pipeline on
	//
	// Returns:
	//   - Pipeline: the immutable pipeline
	//   - error: ErrBuilderConsumed, a *MissingFieldError, ErrIncompatibleMaterial, ErrInvalidShader or
	//     a device error
	Build(dev device.Device) (Pipeline, error)
}

var _ Builder = &builder{}

// BuilderOption is a functional option used to configure a Builder during construction.
type BuilderOption func(*builder)

// NewBuilder creates a Builder for key. Topology, surface format and at least one binding layout
// must be supplied through options before Build succeeds.
//
// Parameters:
//   - key: the vertex format and material kind of the pipeline
//   - opts: a variadic list of BuilderOption functions to configure the pipeline
//
// Returns:
//   - Builder: a new single-use builder
func NewBuilder(key Key, opts ...BuilderOption) Builder {
	b := &builder{
		key:               key,
		validateShader:    true,
		depthTestEnabled:  true,
		depthWriteEnabled: true,
		cullMode:          wgpu.CullModeNone,
		frontFace:         wgpu.FrontFaceCCW,
		writeMask:         wgpu.ColorWriteMaskAll,
		blendState: &wgpu.BlendState{
			Color: wgpu.BlendComponent{
				SrcFactor: wgpu.BlendFactorSrcAlpha,
				DstFactor: wgpu.BlendFactorOneMinusSrcAlpha,
				Operation: wgpu.BlendOperationAdd,
			},
			Alpha: wgpu.BlendComponent{
				SrcFactor: wgpu.BlendFactorOne,
				DstFactor: wgpu.BlendFactorOneMinusSrcAlpha,
				Operation: wgpu.BlendOperationAdd,
			},
		},
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

func (b *builder) Key() Key {
	return b.key
}

func (b *builder) Build(dev device.Device) (Pipeline, error) {
	if b.consumed {
		return nil, ErrBuilderConsumed
	}
	b.consumed = true

	if !b.topologySet {
		return nil, &MissingFieldError{Field: "topology"}
	}
	if len(b.bindGroupLayouts) == 0 {
		return nil, &MissingFieldError{Field: "bind group layouts"}
	}
	for i, l := range b.bindGroupLayouts {
		if l == nil {
			return nil, &MissingFieldError{Field: fmt.Sprintf("bind group layout %d", i)}
		}
	}
	if b.surfaceFormat == wgpu.TextureFormatUndefined {
		return nil, &MissingFieldError{Field: "surface format"}
	}
	if err := shader.Compatible(b.key.Vertex, b.key.Material); err != nil {
		return nil, err
	}

	vl, err := vertex.Layout(b.key.Vertex)
	if err != nil {
		return nil, err
	}
	layouts := []wgpu.VertexBufferLayout{vl, vertex.InstanceLayout()}

	src := b.shaderSource
	if src == "" {
		if src, err = ShaderSource(b.key); err != nil {
			return nil, err
		}
	}
	if b.validateShader {
		if err := shader.Validate(src); err != nil {
			return nil, fmt.Errorf("pipeline %s: %w", b.key, err)
		}
	}

	samples := b.sampleCount
	if samples == 0 {
		samples = dev.SampleCount()
	}
	var blend *wgpu.BlendState
	if b.blendEnabled {
		blend = b.blendState
	}

	handle, err := dev.CreateRenderPipeline(&device.RenderPipelineDescriptor{
		Label:              "Pipeline " + b.key.String(),
		ShaderSource:       src,
		VertexEntryPoint:   shader.VertexEntryPoint,
		FragmentEntryPoint: shader.FragmentEntryPoint,
		VertexLayouts:      layouts,
		BindGroupLayouts:   b.bindGroupLayouts,
		Topology:           b.topology,
		FrontFace:          b.frontFace,
		CullMode:           b.cullMode,
		Format:             b.surfaceFormat,
		Blend:              blend,
		WriteMask:          b.writeMask,
		DepthStencil:       b.depthStencilState(),
		SampleCount:        samples,
	})
	if err != nil {
		return nil, fmt.Errorf("pipeline %s: %w", b.key, err)
	}

	return &pipeline{
		key:              b.key,
		topology:         b.topology,
		surfaceFormat:    b.surfaceFormat,
		vertexLayouts:    layouts,
		bindGroupLayouts: append([]device.BindGroupLayout(nil), b.bindGroupLayouts...),
		handle:           handle,
	}, nil
}

// depthStencilState returns the explicit state if one was given, otherwise one derived from the
// depth flags. The frame always carries a depth attachment, so the state is never nil.
func (b *builder) depthStencilState() *wgpu.DepthStencilState {
	if b.depthStencil != nil {
		return b.depthStencil
	}
	compare := wgpu.CompareFunctionLess
	if !b.depthTestEnabled {
		compare = wgpu.CompareFunctionAlways
	}
	return &wgpu.DepthStencilState{
		Format:              DepthFormat,
		DepthWriteEnabled:   b.depthWriteEnabled,
		DepthCompare:        compare,
		DepthBias:           b.depthBias,
		DepthBiasSlopeScale: b.depthBiasSlopeScale,
		StencilFront:        wgpu.StencilFaceState{Compare: wgpu.CompareFunctionAlways},
		StencilBack:         wgpu.StencilFaceState{Compare: wgpu.CompareFunctionAlways},
	}
}

// WithTopology sets the primitive topology. It has no default.
//
// Parameters:
//   - topology: the primitive topology (e.g., wgpu.PrimitiveTopologyTriangleList)
//
// Returns:
//   - BuilderOption: a function that sets the primitive topology
func WithTopology(topology wgpu.PrimitiveTopology) BuilderOption {
	return func(b *builder) {
		b.topology = topology
		b.topologySet = true
	}
}

// WithSurfaceFormat sets the color target format, normally the device's surface format.
//
// Parameters:
//   - format: the color target format
//
// Returns:
//   - BuilderOption: a function that sets the surface format
func WithSurfaceFormat(format wgpu.TextureFormat) BuilderOption {
	return func(b *builder) {
		b.surfaceFormat = format
	}
}

// WithBindGroupLayouts sets the binding layouts. Order matters: the layout at index i is bound as
// @group(i) and must match the shader's expectations.
//
// Parameters:
//   - layouts: the binding layouts in group order
//
// Returns:
//   - BuilderOption: a function that sets the binding layouts
func WithBindGroupLayouts(layouts ...device.BindGroupLayout) BuilderOption {
	return func(b *builder) {
		b.bindGroupLayouts = append([]device.BindGroupLayout(nil), layouts...)
	}
}

// WithDepthStencil replaces the depth/stencil state derived from the depth options.
//
// Parameters:
//   - state: the depth/stencil state; its format must match DepthFormat
//
// Returns:
//   - BuilderOption: a function that sets the depth/stencil state
func WithDepthStencil(state *wgpu.DepthStencilState) BuilderOption {
	return func(b *builder) {
		b.depthStencil = state
	}
}

// WithDepthTestEnabled sets whether fragments are depth tested.
//
// Parameters:
//   - enabled: false compares with CompareFunctionAlways
//
// Returns:
//   - BuilderOption: a function that sets the depth test state
func WithDepthTestEnabled(enabled bool) BuilderOption {
	return func(b *builder) {
		b.depthTestEnabled = enabled
	}
}

// WithDepthWriteEnabled sets whether fragments write depth.
//
// Parameters:
//   - enabled: a boolean indicating whether depth writing should be enabled
//
// Returns:
//   - BuilderOption: a function that sets the depth write state
func WithDepthWriteEnabled(enabled bool) BuilderOption {
	return func(b *builder) {
		b.depthWriteEnabled = enabled
	}
}

// WithDepthBias sets the depth bias parameters.
//
// Parameters:
//   - bias: the constant depth bias to apply
//   - slopeScale: the slope scale depth bias to apply
//
// Returns:
//   - BuilderOption: a function that sets the depth bias parameters
func WithDepthBias(bias int32, slopeScale float32) BuilderOption {
	return func(b *builder) {
		b.depthBias = bias
		b.depthBiasSlopeScale = slopeScale
	}
}

// WithBlendState enables blending with the given state. A nil state disables blending.
//
// Parameters:
//   - state: the blend state
//
// Returns:
//   - BuilderOption: a function that sets the blend state
func WithBlendState(state *wgpu.BlendState) BuilderOption {
	return func(b *builder) {
		b.blendEnabled = state != nil
		if state != nil {
			b.blendState = state
		}
	}
}

// WithBlendEnabled toggles blending with the default alpha blend state.
//
// Parameters:
//   - enabled: a boolean indicating whether blending should be enabled
//
// Returns:
//   - BuilderOption: a function that sets the blend enabled state
func WithBlendEnabled(enabled bool) BuilderOption {
	return func(b *builder) {
		b.blendEnabled = enabled
	}
}

// WithWriteMask sets the color write mask.
//
// Parameters:
//   - mask: the color write mask (e.g., wgpu.ColorWriteMaskAll)
//
// Returns:
//   - BuilderOption: a function that sets the color write mask
func WithWriteMask(mask wgpu.ColorWriteMask) BuilderOption {
	return func(b *builder) {
		b.writeMask = mask
	}
}

// WithCullMode sets the cull mode.
//
// Parameters:
//   - mode: the cull mode (e.g., wgpu.CullModeNone, wgpu.CullModeBack)
//
// Returns:
//   - BuilderOption: a function that sets the cull mode
func WithCullMode(mode wgpu.CullMode) BuilderOption {
	return func(b *builder) {
		b.cullMode = mode
	}
}

// WithFrontFace sets the front face winding order.
//
// Parameters:
//   - face: the winding order (e.g., wgpu.FrontFaceCCW)
//
// Returns:
//   - BuilderOption: a function that sets the front face winding order
func WithFrontFace(face wgpu.FrontFace) BuilderOption {
	return func(b *builder) {
		b.frontFace = face
	}
}

// WithSampleCount overrides the multisample count. Zero uses the device's count.
//
// Parameters:
//   - count: the sample count
//
// Returns:
//   - BuilderOption: a function that sets the sample count
func WithSampleCount(count uint32) BuilderOption {
	return func(b *builder) {
		b.sampleCount = count
	}
}

// WithShaderSource replaces the embedded program for the key. The source must expose vs_main and
// fs_main entry points.
//
// Parameters:
//   - src: WGSL source
//
// Returns:
//   - BuilderOption: a function that sets the shader source
func WithShaderSource(src string) BuilderOption {
	return func(b *builder) {
		b.shaderSource = src
	}
}

// WithShaderValidation toggles compiling the shader with naga before the device sees it.
//
// Parameters:
//   - enabled: defaults to true
//
// Returns:
//   - BuilderOption: a function that sets shader validation
func WithShaderValidation(enabled bool) BuilderOption {
	return func(b *builder) {
		b.validateShader = enabled
	}
}

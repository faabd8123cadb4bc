package renderer

import (
	"github.com/Carmen-Shannon/skygen/engine/renderer/pipeline"
	"github.com/cogentcore/webgpu/wgpu"
)

// RendererBuilderOption is a functional option applied to a renderer during construction via NewRenderer.
type RendererBuilderOption func(*renderer)

// WithSurfaceFormat overrides the color target format of every pipeline. Defaults to the device's
// surface format at the time each pipeline is built.
//
// Parameters:
//   - format: the color target format
//
// Returns:
//   - RendererBuilderOption: a function that applies the surface format option to a renderer
func WithSurfaceFormat(format wgpu.TextureFormat) RendererBuilderOption {
	return func(r *renderer) {
		r.surfaceFormat = format
	}
}

// WithPipelineOptions appends builder options applied to every pipeline the renderer builds, after
// its own topology, surface format and binding layouts.
//
// Parameters:
//   - opts: the pipeline builder options
//
// Returns:
//   - RendererBuilderOption: a function that applies the pipeline options to a renderer
func WithPipelineOptions(opts ...pipeline.BuilderOption) RendererBuilderOption {
	return func(r *renderer) {
		r.pipelineOpts = append(r.pipelineOpts, opts...)
	}
}

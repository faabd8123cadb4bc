package bind_group_provider

import "github.com/Carmen-Shannon/skygen/engine/renderer/device"

// BindGroupProviderOption is a functional option used to configure a BindGroupProvider during construction.
type BindGroupProviderOption func(*bindGroupProvider)

// WithBuffer sets the buffer source for a specific binding index.
//
// Parameters:
//   - binding: the binding index for this buffer
//   - src: the buffer source to associate with this binding
//
// Returns:
//   - BindGroupProviderOption: a function that sets the buffer source for the specified binding
func WithBuffer(binding int, src BufferSource) BindGroupProviderOption {
	return func(p *bindGroupProvider) {
		p.buffers[binding] = src
	}
}

// WithTextureView sets the texture view for a specific binding index.
//
// Parameters:
//   - binding: the binding index for this texture view
//   - tv: the texture view to associate with this binding
//
// Returns:
//   - BindGroupProviderOption: a function that sets the texture view for the specified binding
func WithTextureView(binding int, tv device.TextureView) BindGroupProviderOption {
	return func(p *bindGroupProvider) {
		p.textureViews[binding] = tv
	}
}

// WithSampler sets the sampler for a specific binding index.
//
// Parameters:
//   - binding: the binding index for this sampler
//   - s: the sampler to associate with this binding
//
// Returns:
//   - BindGroupProviderOption: a function that sets the sampler for the specified binding
func WithSampler(binding int, s device.Sampler) BindGroupProviderOption {
	return func(p *bindGroupProvider) {
		p.samplers[binding] = s
	}
}

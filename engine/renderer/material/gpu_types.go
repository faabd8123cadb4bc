package material

import (
	"errors"
	"fmt"

	"github.com/Carmen-Shannon/skygen/engine/renderer/buffer"
	"github.com/cogentcore/webgpu/wgpu"
)

// ErrUnknownKind is returned for a Kind with no binding layout.
var ErrUnknownKind = errors.New("unknown material kind")

// Kind tags the binding layout a material needs. It is one half of a pipeline key.
type Kind int

const (
	// KindColored binds color, reflectance and metalness uniforms.
	KindColored Kind = iota
	// KindTextured binds the colored uniforms plus diffuse and normal texture/sampler pairs.
	KindTextured
)

func (k Kind) String() string {
	switch k {
	case KindColored:
		return "colored"
	case KindTextured:
		return "textured"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

// Binding indices within the material group.
const (
	BindingColor = iota
	BindingReflectance
	BindingMetalness
	BindingDiffuseTexture
	BindingDiffuseSampler
	BindingNormalTexture
	BindingNormalSampler
)

// LayoutEntries returns the bind group layout entries for a material kind.
//
// Parameters:
//   - kind: the material kind
//
// Returns:
//   - []wgpu.BindGroupLayoutEntry: the entries in binding order
//   - error: ErrUnknownKind if kind has no layout
func LayoutEntries(kind Kind) ([]wgpu.BindGroupLayoutEntry, error) {
	uniform := func(binding uint32, size int) wgpu.BindGroupLayoutEntry {
		return wgpu.BindGroupLayoutEntry{
			Binding:    binding,
			Visibility: wgpu.ShaderStageFragment,
			Buffer: wgpu.BufferBindingLayout{
				Type:           wgpu.BufferBindingTypeUniform,
				MinBindingSize: uint64(size),
			},
		}
	}
	texture := func(binding uint32) wgpu.BindGroupLayoutEntry {
		return wgpu.BindGroupLayoutEntry{
			Binding:    binding,
			Visibility: wgpu.ShaderStageFragment,
			Texture: wgpu.TextureBindingLayout{
				SampleType:    wgpu.TextureSampleTypeFloat,
				ViewDimension: wgpu.TextureViewDimension2D,
			},
		}
	}
	sampler := func(binding uint32) wgpu.BindGroupLayoutEntry {
		return wgpu.BindGroupLayoutEntry{
			Binding:    binding,
			Visibility: wgpu.ShaderStageFragment,
			Sampler:    wgpu.SamplerBindingLayout{Type: wgpu.SamplerBindingTypeFiltering},
		}
	}

	entries := []wgpu.BindGroupLayoutEntry{
		uniform(BindingColor, buffer.Vec4{}.Size()),
		uniform(BindingReflectance, buffer.F32(0).Size()),
		uniform(BindingMetalness, buffer.F32(0).Size()),
	}
	switch kind {
	case KindColored:
		return entries, nil
	case KindTextured:
		return append(entries,
			texture(BindingDiffuseTexture),
			sampler(BindingDiffuseSampler),
			texture(BindingNormalTexture),
			sampler(BindingNormalSampler),
		), nil
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnknownKind, kind)
	}
}

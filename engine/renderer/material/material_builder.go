package material

import (
	"github.com/Carmen-Shannon/skygen/common"
)

// MaterialBuilderOption is a function that configures a material instance during construction.
type MaterialBuilderOption func(*material)

// WithName is an option builder that sets the debug name of the material.
//
// Parameters:
//   - name: the identifier for the material
//
// Returns:
//   - MaterialBuilderOption: a function that applies the name option to a material
func WithName(name string) MaterialBuilderOption {
	return func(m *material) {
		m.name = name
	}
}

// WithColor is an option builder that sets the RGBA base color of the material.
//
// Parameters:
//   - color: the base color as RGBA float32 values
//
// Returns:
//   - MaterialBuilderOption: a function that applies the color option to a material
func WithColor(color [4]float32) MaterialBuilderOption {
	return func(m *material) {
		m.color = color
	}
}

// WithReflectance is an option builder that sets the reflectance factor of the material.
//
// Parameters:
//   - r: the reflectance factor in [0, 1]
//
// Returns:
//   - MaterialBuilderOption: a function that applies the reflectance option to a material
func WithReflectance(r float32) MaterialBuilderOption {
	return func(m *material) {
		m.reflectance = r
	}
}

// WithMetalness is an option builder that sets the metalness factor of the material.
//
// Parameters:
//   - v: the metalness factor (0.0 = dielectric, 1.0 = metal)
//
// Returns:
//   - MaterialBuilderOption: a function that applies the metalness option to a material
func WithMetalness(v float32) MaterialBuilderOption {
	return func(m *material) {
		m.metalness = v
	}
}

// WithDiffuseTexture is an option builder that stages the diffuse map of a textured material.
//
// Parameters:
//   - t: the RGBA pixel data of the diffuse map
//
// Returns:
//   - MaterialBuilderOption: a function that applies the diffuse texture option to a material
func WithDiffuseTexture(t common.TextureStagingData) MaterialBuilderOption {
	return func(m *material) {
		m.diffuse = &t
	}
}

// WithNormalTexture is an option builder that stages the normal map of a textured material.
//
// Parameters:
//   - t: the RGBA pixel data of the normal map
//
// Returns:
//   - MaterialBuilderOption: a function that applies the normal texture option to a material
func WithNormalTexture(t common.TextureStagingData) MaterialBuilderOption {
	return func(m *material) {
		m.normal = &t
	}
}

// WithSampler is an option builder that sets the sampler used for both texture maps.
//
// Parameters:
//   - s: the sampler configuration
//
// Returns:
//   - MaterialBuilderOption: a function that applies the sampler option to a material
func WithSampler(s common.SamplerStagingData) MaterialBuilderOption {
	return func(m *material) {
		m.sampler = s
	}
}

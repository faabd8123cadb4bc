package material

import (
	"github.com/Carmen-Shannon/skygen/common"
	"github.com/google/uuid"
)

// material is the implementation of the Material interface.
type material struct {
	id          uuid.UUID
	name        string
	kind        Kind
	color       [4]float32
	reflectance float32
	metalness   float32
	diffuse     *common.TextureStagingData
	normal      *common.TextureStagingData
	sampler     common.SamplerStagingData
	// version increments on every parameter change so cached GPU copies know to resync.
	version uint64
}

// Material describes the surface of a mesh: uniform parameters plus, for textured materials, the
// diffuse and normal maps. Each material has a stable identity used to cache its GPU bind group.
//
// Materials are stored as entity components and read by the renderer. Mutating a material that is
// being rendered must be serialized with the frame loop.
type Material interface {
	// ID returns the identity the material's GPU resources are cached under.
	//
	// Returns:
	//   - uuid.UUID: the material identity
	ID() uuid.UUID

	// Name returns the debug name of the material.
	//
	// Returns:
	//   - string: the material name
	Name() string

	// Kind returns the binding layout the material needs.
	//
	// Returns:
	//   - Kind: the material kind
	Kind() Kind

	// Color returns the RGBA base color multiplied into every fragment.
	//
	// Returns:
	//   - [4]float32: the base color
	Color() [4]float32

	// Reflectance returns the reflectance factor in [0, 1].
	//
	// Returns:
	//   - float32: the reflectance
	Reflectance() float32

	// Metalness returns the metalness factor in [0, 1].
	//
	// Returns:
	//   - float32: the metalness
	Metalness() float32

	// DiffuseTexture returns the staged diffuse map, or nil.
	//
	// Returns:
	//   - *common.TextureStagingData: the diffuse map or nil
	DiffuseTexture() *common.TextureStagingData

	// NormalTexture returns the staged normal map, or nil.
	//
	// Returns:
	//   - *common.TextureStagingData: the normal map or nil
	NormalTexture() *common.TextureStagingData

	// Sampler returns the sampler configuration shared by both maps.
	//
	// Returns:
	//   - common.SamplerStagingData: the sampler configuration
	Sampler() common.SamplerStagingData

	// SetColor changes the base color.
	//
	// Parameters:
	//   - c: the new RGBA color
	SetColor(c [4]float32)

	// SetReflectance changes the reflectance factor.
	//
	// Parameters:
	//   - r: the new reflectance
	SetReflectance(r float32)

	// SetMetalness changes the metalness factor.
	//
	// Parameters:
	//   - m: the new metalness
	SetMetalness(m float32)

	// Version returns a counter that changes whenever a parameter changes.
	//
	// Returns:
	//   - uint64: the parameter version
	Version() uint64
}

var _ Material = &material{}

// NewMaterial creates a Material of the given kind with a fresh identity. The defaults are an opaque
// white color, zero reflectance and zero metalness.
//
// Parameters:
//   - kind: the material kind
//   - opts: a variadic list of MaterialBuilderOption functions to configure the material
//
// Returns:
//   - Material: the new material
func NewMaterial(kind Kind, opts ...MaterialBuilderOption) Material {
	m := &material{
		id:    uuid.New(),
		kind:  kind,
		color: [4]float32{1, 1, 1, 1},
	}
	for _, opt := range opts {
		opt(m)
	}
	if m.name == "" {
		m.name = kind.String() + "-" + m.id.String()[:8]
	}
	return m
}

func (m *material) ID() uuid.UUID {
	return m.id
}

func (m *material) Name() string {
	return m.name
}

func (m *material) Kind() Kind {
	return m.kind
}

func (m *material) Color() [4]float32 {
	return m.color
}

func (m *material) Reflectance() float32 {
	return m.reflectance
}

func (m *material) Metalness() float32 {
	return m.metalness
}

func (m *material) DiffuseTexture() *common.TextureStagingData {
	return m.diffuse
}

func (m *material) NormalTexture() *common.TextureStagingData {
	return m.normal
}

func (m *material) Sampler() common.SamplerStagingData {
	return m.sampler
}

func (m *material) SetColor(c [4]float32) {
	m.color = c
	m.version++
}

func (m *material) SetReflectance(r float32) {
	m.reflectance = r
	m.version++
}

func (m *material) SetMetalness(v float32) {
	m.metalness = v
	m.version++
}

func (m *material) Version() uint64 {
	return m.version
}

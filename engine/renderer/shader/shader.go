// Package shader holds the WGSL programs for every vertex format and material kind combination.
package shader

import (
	_ "embed"
	"errors"
	"fmt"
	"sync"

	"github.com/Carmen-Shannon/skygen/engine/renderer/material"
	"github.com/Carmen-Shannon/skygen/engine/renderer/vertex"
	"github.com/gogpu/naga"
)

// Entry points every program exposes.
const (
	VertexEntryPoint   = "vs_main"
	FragmentEntryPoint = "fs_main"
)

var (
	// ErrIncompatibleMaterial is returned when a material kind cannot shade a vertex format.
	ErrIncompatibleMaterial = errors.New("material kind incompatible with vertex format")

	// ErrInvalidShader wraps WGSL validation failures.
	ErrInvalidShader = errors.New("invalid shader")
)

var (
	//go:embed assets/camera.wgsl
	cameraSource string
	//go:embed assets/instance.wgsl
	instanceSource string
	//go:embed assets/material_params.wgsl
	materialParamsSource string
	//go:embed assets/colored_vertex.wgsl
	coloredVertexSource string
	//go:embed assets/textured_vertex.wgsl
	texturedVertexSource string
	//go:embed assets/colored_material.wgsl
	coloredMaterialSource string
	//go:embed assets/textured_material.wgsl
	texturedMaterialSource string
)

var fragments = map[string]string{
	"camera":          cameraSource,
	"instance":        instanceSource,
	"material_params": materialParamsSource,
}

var vertexStages = map[vertex.Format]string{
	vertex.FormatColored:  coloredVertexSource,
	vertex.FormatTextured: texturedVertexSource,
}

var fragmentStages = map[material.Kind]string{
	material.KindColored:  coloredMaterialSource,
	material.KindTextured: texturedMaterialSource,
}

// Source returns the expanded WGSL program for a vertex format and material kind.
// A textured material needs texture coordinates, so it cannot shade colored vertices.
//
// Parameters:
//   - vf: the vertex format
//   - kind: the material kind
//
// Returns:
//   - string: the WGSL program with vs_main and fs_main entry points
//   - error: ErrIncompatibleMaterial, vertex.ErrUnknownFormat or material.ErrUnknownKind
func Source(vf vertex.Format, kind material.Kind) (string, error) {
	vs, ok := vertexStages[vf]
	if !ok {
		return "", fmt.Errorf("%w: %s", vertex.ErrUnknownFormat, vf)
	}
	fs, ok := fragmentStages[kind]
	if !ok {
		return "", fmt.Errorf("%w: %s", material.ErrUnknownKind, kind)
	}
	if err := Compatible(vf, kind); err != nil {
		return "", err
	}
	return NewPreProcessor(fragments).Process(vs + "\n" + fs)
}

// Compatible reports whether a material kind can shade a vertex format.
//
// Parameters:
//   - vf: the vertex format
//   - kind: the material kind
//
// Returns:
//   - error: ErrIncompatibleMaterial if the material needs attributes the format lacks
func Compatible(vf vertex.Format, kind material.Kind) error {
	if vf == vertex.FormatColored && kind == material.KindTextured {
		return fmt.Errorf("%w: %s material on %s vertices", ErrIncompatibleMaterial, kind, vf)
	}
	return nil
}

var validated sync.Map // source -> error

// Validate compiles WGSL source with naga and reports whether it is well formed.
// Results are cached per source text.
//
// Parameters:
//   - source: the WGSL program
//
// Returns:
//   - error: ErrInvalidShader wrapping the compiler diagnostic, or nil
func Validate(source string) error {
	if v, ok := validated.Load(source); ok {
		if v == nil {
			return nil
		}
		return v.(error)
	}
	var result error
	if _, err := naga.Compile(source); err != nil {
		result = fmt.Errorf("%w: %w", ErrInvalidShader, err)
	}
	validated.Store(source, result)
	return result
}

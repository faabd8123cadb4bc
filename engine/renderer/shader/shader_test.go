package shader

import (
	"strings"
	"testing"

	"github.com/Carmen-Shannon/skygen/engine/renderer/material"
	"github.com/Carmen-Shannon/skygen/engine/renderer/vertex"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSourceExpandsIncludes(t *testing.T) {
	cases := []struct {
		vf   vertex.Format
		kind material.Kind
	}{
		{vertex.FormatColored, material.KindColored},
		{vertex.FormatTextured, material.KindColored},
		{vertex.FormatTextured, material.KindTextured},
	}
	for _, c := range cases {
		t.Run(c.vf.String()+"/"+c.kind.String(), func(t *testing.T) {
			src, err := Source(c.vf, c.kind)
			require.NoError(t, err)
			assert.NotContains(t, src, annotationPrefix)
			assert.Contains(t, src, "fn "+VertexEntryPoint)
			assert.Contains(t, src, "fn "+FragmentEntryPoint)
			assert.Equal(t, 1, strings.Count(src, "struct VertexOutput"))
			assert.Equal(t, 1, strings.Count(src, "var<uniform> material_color"))
		})
	}
}

func TestSourceRejectsTexturedMaterialOnColoredVertices(t *testing.T) {
	_, err := Source(vertex.FormatColored, material.KindTextured)
	assert.ErrorIs(t, err, ErrIncompatibleMaterial)
}

func TestSourceUnknownKeys(t *testing.T) {
	_, err := Source(vertex.Format(7), material.KindColored)
	assert.ErrorIs(t, err, vertex.ErrUnknownFormat)

	_, err = Source(vertex.FormatColored, material.Kind(7))
	assert.ErrorIs(t, err, material.ErrUnknownKind)
}

func TestPreProcessorIncludesOnce(t *testing.T) {
	p := NewPreProcessor(map[string]string{
		"a": "//@skygen:include b\nA",
		"b": "B",
	})
	out, err := p.Process("//@skygen:include a\n//@skygen:include b\nmain")
	require.NoError(t, err)
	assert.Equal(t, "B\nA\nmain", out)
}

func TestPreProcessorErrors(t *testing.T) {
	p := NewPreProcessor(map[string]string{"loop": "x"})

	_, err := p.Process("//@skygen:include missing")
	assert.ErrorContains(t, err, `unknown include "missing"`)

	_, err = p.Process("//@skygen:")
	assert.ErrorContains(t, err, "empty annotation")

	_, err = p.Process("//@skygen:define X 1")
	assert.ErrorContains(t, err, "unknown annotation")

	_, err = p.Process("//@skygen:include a b")
	assert.ErrorContains(t, err, "exactly one argument")
}

func TestValidateRejectsMalformedSource(t *testing.T) {
	err := Validate("fn broken( {")
	assert.ErrorIs(t, err, ErrInvalidShader)

	// cached result
	assert.ErrorIs(t, Validate("fn broken( {"), ErrInvalidShader)
}

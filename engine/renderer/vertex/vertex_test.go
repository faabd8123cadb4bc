package vertex

import (
	"testing"

	"github.com/cogentcore/webgpu/wgpu"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLayoutStrideMatchesMarshal(t *testing.T) {
	cases := []Vertex{ColoredVertex{}, TexturedVertex{}}
	for _, v := range cases {
		t.Run(v.Format().String(), func(t *testing.T) {
			l, err := Layout(v.Format())
			require.NoError(t, err)
			assert.Equal(t, uint64(v.Size()), l.ArrayStride)
			assert.Len(t, v.Marshal(), v.Size())
			assert.Equal(t, wgpu.VertexStepModeVertex, l.StepMode)
		})
	}
}

func TestLayoutUnknownFormat(t *testing.T) {
	_, err := Layout(Format(42))
	assert.ErrorIs(t, err, ErrUnknownFormat)
}

func TestInstanceLayout(t *testing.T) {
	l := InstanceLayout()
	assert.Equal(t, uint64(64), l.ArrayStride)
	assert.Equal(t, wgpu.VertexStepModeInstance, l.StepMode)
	require.Len(t, l.Attributes, 4)
	assert.Equal(t, uint32(LocationInstance+3), l.Attributes[3].ShaderLocation)
	assert.Equal(t, uint64(48), l.Attributes[3].Offset)
}

func TestColoredVertexMarshalOrder(t *testing.T) {
	v := ColoredVertex{Position: [3]float32{1, 0, 0}, Color: [4]float32{0, 0, 0, 1}}
	raw := v.Marshal()
	assert.Equal(t, []byte{0, 0, 0x80, 0x3f}, raw[0:4])
	assert.Equal(t, []byte{0, 0, 0x80, 0x3f}, raw[24:28])
}

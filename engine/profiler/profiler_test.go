package profiler

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTickSamplesPerInterval(t *testing.T) {
	now := time.Unix(0, 0)
	p := NewProfiler(WithInterval(time.Second), WithClock(func() time.Time { return now }))

	for i := 0; i < 9; i++ {
		now = now.Add(100 * time.Millisecond)
		assert.False(t, p.Tick(4))
	}
	now = now.Add(100 * time.Millisecond)
	require.True(t, p.Tick(4))

	s := p.Last()
	assert.InDelta(t, 10, s.FPS, 1e-9)
	assert.InDelta(t, 40, s.DrawsPerSec, 1e-9)
	assert.Greater(t, s.SysMB, 0.0)

	now = now.Add(100 * time.Millisecond)
	assert.False(t, p.Tick(0))
}

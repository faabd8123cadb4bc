package device

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestClassifySurfaceError(t *testing.T) {
	cases := map[string]SurfaceStatus{
		"wgpu.(*Surface).GetCurrentTexture(): Timeout":     StatusTimeout,
		"wgpu.(*Surface).GetCurrentTexture(): Outdated":    StatusOutdated,
		"wgpu.(*Surface).GetCurrentTexture(): Lost":        StatusLost,
		"wgpu.(*Surface).GetCurrentTexture(): OutOfMemory": StatusOutOfMemory,
		"something else entirely":                          StatusUnknown,
	}
	for msg, want := range cases {
		t.Run(msg, func(t *testing.T) {
			se := classifySurfaceError(errors.New(msg))
			assert.Equal(t, want, se.Status)
		})
	}
}

func TestSurfaceErrorTransience(t *testing.T) {
	lost := fmt.Errorf("frame: %w", &SurfaceError{Status: StatusLost})
	assert.True(t, IsTransient(lost))

	var se *SurfaceError
	assert.True(t, errors.As(lost, &se))
	assert.True(t, se.NeedsReconfigure())

	timeout := &SurfaceError{Status: StatusTimeout}
	assert.True(t, timeout.Transient())
	assert.False(t, timeout.NeedsReconfigure())

	assert.False(t, IsTransient(&SurfaceError{Status: StatusOutOfMemory}))
	assert.False(t, IsTransient(classifySurfaceError(errors.New("device exploded"))))
	assert.False(t, IsTransient(errors.New("plain")))
}

func TestParsePresentMode(t *testing.T) {
	m, ok := ParsePresentMode("uncapped")
	assert.True(t, ok)
	assert.Equal(t, PresentModeUncapped, m)

	m, ok = ParsePresentMode("triple")
	assert.False(t, ok)
	assert.Equal(t, PresentModeVSync, m)
}

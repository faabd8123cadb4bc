package device

import (
	"errors"
	"fmt"
	"strings"
)

// ErrFramePending is returned by BeginFrame when the previous frame was never presented.
var ErrFramePending = errors.New("previous frame surface not yet presented")

// SurfaceStatus classifies a failure to acquire the next surface texture.
type SurfaceStatus int

const (
	// StatusTimeout means the texture was not available in time.
	StatusTimeout SurfaceStatus = iota
	// StatusOutdated means the surface no longer matches its configuration and must be reconfigured.
	StatusOutdated
	// StatusLost means the surface was lost and must be reconfigured.
	StatusLost
	// StatusOutOfMemory means the device ran out of memory. This is fatal.
	StatusOutOfMemory
	// StatusUnknown covers statuses the backend reported that have no mapping.
	StatusUnknown
)

func (s SurfaceStatus) String() string {
	switch s {
	case StatusTimeout:
		return "timeout"
	case StatusOutdated:
		return "outdated"
	case StatusLost:
		return "lost"
	case StatusOutOfMemory:
		return "out of memory"
	default:
		return "unknown"
	}
}

// SurfaceError reports a failure to acquire a surface texture.
type SurfaceError struct {
	Status SurfaceStatus
	Err    error
}

func (e *SurfaceError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("surface %s", e.Status)
	}
	return fmt.Sprintf("surface %s: %v", e.Status, e.Err)
}

func (e *SurfaceError) Unwrap() error {
	return e.Err
}

// Transient reports whether the frame can be skipped and retried. Unmapped statuses are not.
func (e *SurfaceError) Transient() bool {
	switch e.Status {
	case StatusTimeout, StatusOutdated, StatusLost:
		return true
	default:
		return false
	}
}

// NeedsReconfigure reports whether the surface must be reconfigured before the next frame.
func (e *SurfaceError) NeedsReconfigure() bool {
	return e.Status == StatusLost || e.Status == StatusOutdated
}

// IsTransient reports whether err is a SurfaceError the frame loop can recover from.
func IsTransient(err error) bool {
	var se *SurfaceError
	return errors.As(err, &se) && se.Transient()
}

// classifySurfaceError maps the backend's GetCurrentTexture error onto a SurfaceError.
// The bindings only expose the status through the error text.
func classifySurfaceError(err error) *SurfaceError {
	msg := strings.ToLower(err.Error())
	status := StatusUnknown
	switch {
	case strings.Contains(msg, "outofmemory"), strings.Contains(msg, "out of memory"):
		status = StatusOutOfMemory
	case strings.Contains(msg, "timeout"):
		status = StatusTimeout
	case strings.Contains(msg, "outdated"):
		status = StatusOutdated
	case strings.Contains(msg, "lost"):
		status = StatusLost
	}
	return &SurfaceError{Status: status, Err: err}
}

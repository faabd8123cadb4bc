// Package window opens the platform window the engine presents into and forwards its input and
// resize events.
package window

import (
	"github.com/cogentcore/webgpu/wgpu"
)

// Key is a keyboard key code.
type Key int

// Window provides a drawable surface and its events. The engine polls it once per frame.
type Window interface {
	// SurfaceDescriptor returns a platform-appropriate descriptor for creating a WebGPU surface.
	//
	// Returns:
	//   - *wgpu.SurfaceDescriptor: the descriptor, or nil if the window is closed
	SurfaceDescriptor() *wgpu.SurfaceDescriptor

	// Size returns the framebuffer size in pixels.
	//
	// Returns:
	//   - width, height: the framebuffer size
	Size() (width, height int)

	// SetResizeCallback sets the function called when the framebuffer is resized.
	//
	// Parameters:
	//   - callback: function receiving the new width and height in pixels
	SetResizeCallback(callback func(width, height int))

	// SetKeyCallback sets the function called on key presses, repeats and releases.
	//
	// Parameters:
	//   - callback: function receiving the key and whether it is down
	SetKeyCallback(callback func(key Key, down bool))

	// SetScrollCallback sets the function called for vertical scroll events.
	//
	// Parameters:
	//   - callback: function receiving the scroll delta, positive away from the user
	SetScrollCallback(callback func(delta float32))

	// PollEvents processes pending events without blocking.
	PollEvents()

	// ShouldClose reports whether the user asked to close the window.
	//
	// Returns:
	//   - bool: true once a close was requested
	ShouldClose() bool

	// Close destroys the window.
	//
	// Returns:
	//   - error: an error if the window was already closed
	Close() error
}

// engineWindow is the configuration shared by platform windows.
type engineWindow struct {
	title     string
	width     int
	height    int
	minWidth  int
	minHeight int
	maxWidth  int
	maxHeight int
	resizable bool

	onResize func(width, height int)
	onKey    func(key Key, down bool)
	onScroll func(delta float32)
}

// NewWindow creates and shows a window. It must be called from the main goroutine.
//
// Parameters:
//   - options: functional options to configure the window
//
// Returns:
//   - Window: the open window
//   - error: an error if the platform window could not be created
func NewWindow(options ...WindowBuilderOption) (Window, error) {
	w := &engineWindow{
		title:     "skygen",
		width:     1280,
		height:    720,
		minWidth:  320,
		minHeight: 200,
		resizable: true,
	}
	for _, opt := range options {
		opt(w)
	}
	return newGLFWWindow(w)
}

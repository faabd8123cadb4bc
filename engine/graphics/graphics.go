// Package graphics holds the device and renderer behind one lock. Frames run under the read lock;
// surface reconfiguration takes the write lock so it never interleaves with a frame.
package graphics

import (
	"fmt"
	"sync"

	"github.com/Carmen-Shannon/skygen/common"
	"github.com/Carmen-Shannon/skygen/engine/renderer"
	"github.com/Carmen-Shannon/skygen/engine/renderer/device"
)

// graphicsContext is the implementation of the Context interface.
type graphicsContext struct {
	mu *sync.RWMutex

	dev      device.Device
	renderer renderer.Renderer

	width, height int
}

// Context is the explicit owner of the device and renderer. Every consumer receives it by
// reference; there is no process-wide instance.
type Context interface {
	// Read runs fn with shared access to the device and renderer.
	//
	// Parameters:
	//   - fn: the function to run while the read lock is held
	//
	// Returns:
	//   - error: the error returned by fn
	Read(fn func(dev device.Device, r renderer.Renderer) error) error

	// Resize reconfigures the surface and adapts the projection. A zero dimension, as reported
	// for a minimized window, is recorded but leaves the surface untouched.
	//
	// Parameters:
	//   - width: the surface width in pixels
	//   - height: the surface height in pixels
	//
	// Returns:
	//   - error: an error if the surface could not be configured
	Resize(width, height int) error

	// Size returns the last size passed to Resize.
	//
	// Returns:
	//   - int: the width in pixels
	//   - int: the height in pixels
	Size() (int, int)

	// SetPresentMode changes the present mode and reconfigures the surface at the current size.
	//
	// Parameters:
	//   - mode: the new present mode
	//
	// Returns:
	//   - error: an error if the surface could not be configured
	SetPresentMode(mode device.PresentMode) error

	// Release frees the renderer, then the device.
	Release()
}

var _ Context = &graphicsContext{}

// NewContext configures dev for the initial size, then creates the renderer with newRenderer. The
// surface format is only known once the surface is configured, so the renderer is built afterwards.
//
// Parameters:
//   - dev: the device
//   - width: the initial surface width in pixels
//   - height: the initial surface height in pixels
//   - newRenderer: creates the renderer on the configured device
//
// Returns:
//   - Context: the context
//   - error: an error if the surface could not be configured or the renderer could not be created
func NewContext(dev device.Device, width, height int, newRenderer func(dev device.Device) (renderer.Renderer, error)) (Context, error) {
	if width > 0 && height > 0 {
		if err := dev.Configure(width, height); err != nil {
			return nil, fmt.Errorf("configure %dx%d: %w", width, height, err)
		}
	}
	r, err := newRenderer(dev)
	if err != nil {
		return nil, fmt.Errorf("create renderer: %w", err)
	}
	r.Resize(width, height)
	return &graphicsContext{mu: &sync.RWMutex{}, dev: dev, renderer: r, width: width, height: height}, nil
}

func (c *graphicsContext) Read(fn func(dev device.Device, r renderer.Renderer) error) error {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return fn(c.dev, c.renderer)
}

func (c *graphicsContext) Resize(width, height int) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.width, c.height = width, height
	if width <= 0 || height <= 0 {
		return nil
	}
	return c.configure()
}

// configure is called with the write lock held.
func (c *graphicsContext) configure() error {
	if err := c.dev.Configure(c.width, c.height); err != nil {
		return fmt.Errorf("resize %dx%d: %w", c.width, c.height, err)
	}
	c.renderer.Resize(c.width, c.height)
	common.Logger().Debug("surface configured", "width", c.width, "height", c.height)
	return nil
}

func (c *graphicsContext) Size() (int, int) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.width, c.height
}

func (c *graphicsContext) SetPresentMode(mode device.PresentMode) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.dev.SetPresentMode(mode)
	if c.width <= 0 || c.height <= 0 {
		return nil
	}
	return c.configure()
}

func (c *graphicsContext) Release() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.renderer.Release()
	c.dev.Release()
}

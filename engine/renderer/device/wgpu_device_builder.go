package device

import (
	"github.com/cogentcore/webgpu/wgpu"
)

// WGPUOption is a functional option applied to the WebGPU device during construction via NewWGPU.
type WGPUOption func(*wgpuDevice)

// WithPresentMode sets the surface present mode which controls how frames are delivered to the display.
//
// Parameters:
//   - mode: the PresentMode to use (VSync or Uncapped)
//
// Returns:
//   - WGPUOption: a function that applies the present mode option to the device
func WithPresentMode(mode PresentMode) WGPUOption {
	return func(d *wgpuDevice) {
		d.presentMode = toWGPUPresentMode(mode)
	}
}

// WithMSAA sets the multisample anti-aliasing sample count of the main render pass.
// When not specified, the default is MSAA4x.
//
// Parameters:
//   - count: the MSAASampleCount to use
//
// Returns:
//   - WGPUOption: a function that applies the MSAA option to the device
func WithMSAA(count MSAASampleCount) WGPUOption {
	return func(d *wgpuDevice) {
		d.sampleCount = count
	}
}

// WithForceSoftwareRenderer forces WGPU to use a CPU/software fallback adapter instead of
// hardware GPU acceleration. This requires a software Vulkan ICD to be installed on the system
// (e.g. SwiftShader or lavapipe).
//
// Parameters:
//   - force: true to force the software fallback adapter
//
// Returns:
//   - WGPUOption: a function that applies the option to the device
func WithForceSoftwareRenderer(force bool) WGPUOption {
	return func(d *wgpuDevice) {
		d.forceFallbackAdapter = force
	}
}

// WithHighPerformance requests the high-performance adapter when more than one is available.
//
// Parameters:
//   - high: true to prefer a discrete GPU, false to prefer low power
//
// Returns:
//   - WGPUOption: a function that applies the power preference to the device
func WithHighPerformance(high bool) WGPUOption {
	return func(d *wgpuDevice) {
		if high {
			d.powerPreference = wgpu.PowerPreferenceHighPerformance
		} else {
			d.powerPreference = wgpu.PowerPreferenceLowPower
		}
	}
}

// WithFeatures requests optional adapter features by name (for example "depth-clip-control").
// Features the adapter does not support are logged and skipped.
//
// Parameters:
//   - names: the feature names to request
//
// Returns:
//   - WGPUOption: a function that applies the feature request to the device
func WithFeatures(names ...string) WGPUOption {
	return func(d *wgpuDevice) {
		d.requestedFeatures = append(d.requestedFeatures, names...)
	}
}

// WithClearColor sets the color the main render pass clears to.
//
// Parameters:
//   - c: the clear color
//
// Returns:
//   - WGPUOption: a function that applies the clear color to the device
func WithClearColor(c wgpu.Color) WGPUOption {
	return func(d *wgpuDevice) {
		d.clearColor = c
	}
}

func toWGPUPresentMode(mode PresentMode) wgpu.PresentMode {
	switch mode {
	case PresentModeUncapped:
		return wgpu.PresentModeImmediate
	default:
		return wgpu.PresentModeFifo
	}
}

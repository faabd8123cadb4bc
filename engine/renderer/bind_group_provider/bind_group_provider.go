package bind_group_provider

import (
	"fmt"
	"sort"

	"github.com/Carmen-Shannon/skygen/engine/renderer/device"
)

// BufferSource supplies the device buffer for a buffer binding. buffer.ManagedBuffer implements it;
// Get syncs pending changes before returning the handle.
type BufferSource interface {
	Get() (device.Buffer, error)
}

// bindGroupProvider is the unexported implementation of BindGroupProvider.
type bindGroupProvider struct {
	// label is a debug label added for convenience.
	label string

	// layout is shared with the pipelines that consume this group and is not released here.
	layout device.BindGroupLayout

	// bindGroup is the bind group built by the last Refresh, or nil before the first one.
	bindGroup device.BindGroup
	// bound holds the buffer handle each buffer binding had when bindGroup was built.
	bound map[int]device.Buffer
	// rebuilds counts how many times bindGroup was (re)created.
	rebuilds int

	buffers      map[int]BufferSource
	textureViews map[int]device.TextureView
	samplers     map[int]device.Sampler
}

// BindGroupProvider owns the resources bound at one @group index and the bind group built over them.
// Buffers are supplied as BufferSources, so their contents can change between frames. The bind group
// is rebuilt only when a source hands back a different device buffer, which happens when a managed
// buffer reallocates after a length change.
//
// Usage pattern:
//  1. Create a provider with NewBindGroupProvider and the layout of the group
//  2. Attach buffer sources, texture views and samplers per binding
//  3. Call Refresh once per frame before drawing and bind the returned group
//  4. Call Release when the owner goes away
type BindGroupProvider interface {
	// Release releases the bind group and every owned resource. Buffer sources that expose
	// Release are released too. The layout is left alone.
	Release()

	// Label returns the debug label for this provider.
	//
	// Returns:
	//   - string: the debug label
	Label() string

	// Layout returns the bind group layout the provider builds against.
	//
	// Returns:
	//   - device.BindGroupLayout: the layout
	Layout() device.BindGroupLayout

	// BindGroup returns the bind group built by the last Refresh, or nil if Refresh has not run.
	//
	// Returns:
	//   - device.BindGroup: the bind group or nil
	BindGroup() device.BindGroup

	// SetBuffer attaches a buffer source to a binding.
	//
	// Parameters:
	//   - binding: the binding index
	//   - src: the buffer source
	SetBuffer(binding int, src BufferSource)

	// Buffer returns the buffer source at binding, or nil if none is set.
	//
	// Parameters:
	//   - binding: the binding index
	//
	// Returns:
	//   - BufferSource: the buffer source or nil
	Buffer(binding int) BufferSource

	// SetTextureView attaches a texture view to a binding.
	//
	// Parameters:
	//   - binding: the binding index
	//   - tv: the texture view
	SetTextureView(binding int, tv device.TextureView)

	// SetSampler attaches a sampler to a binding.
	//
	// Parameters:
	//   - binding: the binding index
	//   - s: the sampler
	SetSampler(binding int, s device.Sampler)

	// Refresh syncs every buffer source and builds the bind group if it does not exist yet or if any
	// buffer handle changed since it was built.
	//
	// Parameters:
	//   - dev: the device to build the bind group on
	//
	// Returns:
	//   - device.BindGroup: the current bind group
	//   - error: an error if a buffer failed to sync or the bind group could not be created
	Refresh(dev device.Device) (device.BindGroup, error)

	// Rebuilds returns how many times the bind group has been created.
	//
	// Returns:
	//   - int: the number of bind group creations
	Rebuilds() int
}

var _ BindGroupProvider = &bindGroupProvider{}

// NewBindGroupProvider creates a new BindGroupProvider for layout.
//
// Parameters:
//   - label: the debug label for the provider
//   - layout: the bind group layout the provider builds against
//   - opts: a variadic list of BindGroupProviderOption functions to configure the provider
//
// Returns:
//   - BindGroupProvider: the new provider
func NewBindGroupProvider(label string, layout device.BindGroupLayout, opts ...BindGroupProviderOption) BindGroupProvider {
	p := &bindGroupProvider{
		label:        label,
		layout:       layout,
		bound:        make(map[int]device.Buffer),
		buffers:      make(map[int]BufferSource),
		textureViews: make(map[int]device.TextureView),
		samplers:     make(map[int]device.Sampler),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

func (p *bindGroupProvider) Label() string {
	return p.label
}

func (p *bindGroupProvider) Layout() device.BindGroupLayout {
	return p.layout
}

func (p *bindGroupProvider) BindGroup() device.BindGroup {
	return p.bindGroup
}

func (p *bindGroupProvider) Rebuilds() int {
	return p.rebuilds
}

func (p *bindGroupProvider) SetBuffer(binding int, src BufferSource) {
	p.buffers[binding] = src
}

func (p *bindGroupProvider) Buffer(binding int) BufferSource {
	return p.buffers[binding]
}

func (p *bindGroupProvider) SetTextureView(binding int, tv device.TextureView) {
	p.textureViews[binding] = tv
}

func (p *bindGroupProvider) SetSampler(binding int, s device.Sampler) {
	p.samplers[binding] = s
}

func (p *bindGroupProvider) Refresh(dev device.Device) (device.BindGroup, error) {
	current := make(map[int]device.Buffer, len(p.buffers))
	stale := p.bindGroup == nil
	for binding, src := range p.buffers {
		buf, err := src.Get()
		if err != nil {
			return nil, fmt.Errorf("%s binding %d: %w", p.label, binding, err)
		}
		current[binding] = buf
		if p.bound[binding] != buf {
			stale = true
		}
	}
	if !stale {
		return p.bindGroup, nil
	}

	entries := make([]device.BindGroupEntry, 0, len(current)+len(p.textureViews)+len(p.samplers))
	for binding, buf := range current {
		entries = append(entries, device.BindGroupEntry{Binding: uint32(binding), Buffer: buf})
	}
	for binding, tv := range p.textureViews {
		entries = append(entries, device.BindGroupEntry{Binding: uint32(binding), TextureView: tv})
	}
	for binding, s := range p.samplers {
		entries = append(entries, device.BindGroupEntry{Binding: uint32(binding), Sampler: s})
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].Binding < entries[j].Binding })

	bg, err := dev.CreateBindGroup(p.label+" Bind Group", p.layout, entries)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", p.label, err)
	}
	if p.bindGroup != nil {
		p.bindGroup.Release()
	}
	p.bindGroup = bg
	p.bound = current
	p.rebuilds++
	return bg, nil
}

func (p *bindGroupProvider) Release() {
	if p.bindGroup != nil {
		p.bindGroup.Release()
		p.bindGroup = nil
	}
	for binding, src := range p.buffers {
		if r, ok := src.(interface{ Release() }); ok {
			r.Release()
		}
		delete(p.buffers, binding)
	}
	for binding, tv := range p.textureViews {
		tv.Release()
		delete(p.textureViews, binding)
	}
	for binding, s := range p.samplers {
		s.Release()
		delete(p.samplers, binding)
	}
	clear(p.bound)
}

package material

import (
	"fmt"

	"github.com/Carmen-Shannon/skygen/common"
	"github.com/Carmen-Shannon/skygen/engine/renderer/bind_group_provider"
	"github.com/Carmen-Shannon/skygen/engine/renderer/buffer"
	"github.com/Carmen-Shannon/skygen/engine/renderer/device"
	"github.com/cogentcore/webgpu/wgpu"
	"github.com/google/uuid"
)

// Fallback maps bound when a textured material leaves one unset.
var (
	whiteTexture = common.SolidTexture(common.Vec4{1, 1, 1, 1}, 1, 1)
	flatNormal   = common.SolidTexture(common.Vec4{0.5, 0.5, 1, 1}, 1, 1)
)

type arenaEntry struct {
	provider    bind_group_provider.BindGroupProvider
	color       *buffer.ManagedBuffer[buffer.Vec4]
	reflectance *buffer.ManagedBuffer[buffer.F32]
	metalness   *buffer.ManagedBuffer[buffer.F32]
	version     uint64
	lastFrame   uint64
}

// Arena owns the GPU side of every material: its uniform buffers, textures, samplers and bind
// group. Entries are created on first use, keyed by material identity, and live until a Sweep finds
// the material was not drawn during the frame. Parameter changes are written into the existing
// uniform buffers in place.
type Arena struct {
	entries map[uuid.UUID]*arenaEntry
	frame   uint64
}

// NewArena creates an empty Arena.
func NewArena() *Arena {
	return &Arena{entries: make(map[uuid.UUID]*arenaEntry)}
}

// BeginFrame starts a new frame for the purpose of Sweep.
func (a *Arena) BeginFrame() {
	a.frame++
}

// Resolve returns the bind group for m, creating its GPU resources on first use and syncing changed
// parameters otherwise.
//
// Parameters:
//   - dev: the device to allocate on
//   - layout: the bind group layout for m.Kind()
//   - m: the material
//
// Returns:
//   - device.BindGroup: the material's bind group
//   - error: an error if a resource could not be created or synced
func (a *Arena) Resolve(dev device.Device, layout device.BindGroupLayout, m Material) (device.BindGroup, error) {
	e, ok := a.entries[m.ID()]
	if !ok {
		var err error
		if e, err = newArenaEntry(dev, layout, m); err != nil {
			return nil, fmt.Errorf("material %s: %w", m.Name(), err)
		}
		a.entries[m.ID()] = e
	} else if e.version != m.Version() {
		if err := e.update(m); err != nil {
			return nil, fmt.Errorf("material %s: %w", m.Name(), err)
		}
	}
	e.lastFrame = a.frame

	bg, err := e.provider.Refresh(dev)
	if err != nil {
		return nil, fmt.Errorf("material %s: %w", m.Name(), err)
	}
	return bg, nil
}

// Sweep releases the entries of materials not resolved since the last BeginFrame.
//
// Returns:
//   - int: the number of entries released
func (a *Arena) Sweep() int {
	n := 0
	for id, e := range a.entries {
		if e.lastFrame != a.frame {
			e.provider.Release()
			delete(a.entries, id)
			n++
		}
	}
	return n
}

// Len returns the number of cached materials.
func (a *Arena) Len() int {
	return len(a.entries)
}

// Release frees every entry.
func (a *Arena) Release() {
	for id, e := range a.entries {
		e.provider.Release()
		delete(a.entries, id)
	}
}

func newArenaEntry(dev device.Device, layout device.BindGroupLayout, m Material) (_ *arenaEntry, err error) {
	label := m.Name()
	provider := bind_group_provider.NewBindGroupProvider(label, layout)
	e := &arenaEntry{version: m.Version(), provider: provider}
	defer func() {
		if err != nil {
			provider.Release()
		}
	}()

	if e.color, err = buffer.New(dev, label+" Color", wgpu.BufferUsageUniform, []buffer.Vec4{m.Color()}); err != nil {
		return nil, err
	}
	e.provider.SetBuffer(BindingColor, e.color)
	if e.reflectance, err = buffer.New(dev, label+" Reflectance", wgpu.BufferUsageUniform, []buffer.F32{buffer.F32(m.Reflectance())}); err != nil {
		return nil, err
	}
	e.provider.SetBuffer(BindingReflectance, e.reflectance)
	if e.metalness, err = buffer.New(dev, label+" Metalness", wgpu.BufferUsageUniform, []buffer.F32{buffer.F32(m.Metalness())}); err != nil {
		return nil, err
	}
	e.provider.SetBuffer(BindingMetalness, e.metalness)

	switch m.Kind() {
	case KindColored:
	case KindTextured:
		if err = bindTexture(dev, e.provider, label+" Diffuse", BindingDiffuseTexture, BindingDiffuseSampler, m.DiffuseTexture(), whiteTexture, m.Sampler()); err != nil {
			return nil, err
		}
		if err = bindTexture(dev, e.provider, label+" Normal", BindingNormalTexture, BindingNormalSampler, m.NormalTexture(), flatNormal, m.Sampler()); err != nil {
			return nil, err
		}
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnknownKind, m.Kind())
	}
	return e, nil
}

func bindTexture(dev device.Device, p bind_group_provider.BindGroupProvider, label string, texBinding, samplerBinding int, staged *common.TextureStagingData, fallback common.TextureStagingData, sampler common.SamplerStagingData) error {
	data := fallback
	if staged != nil {
		data = *staged
	}
	tv, err := dev.CreateTexture(label+" Texture", data)
	if err != nil {
		return err
	}
	p.SetTextureView(texBinding, tv)

	s, err := dev.CreateSampler(label+" Sampler", sampler)
	if err != nil {
		return err
	}
	p.SetSampler(samplerBinding, s)
	return nil
}

func (e *arenaEntry) update(m Material) error {
	if err := e.color.Set(0, buffer.Vec4(m.Color())); err != nil {
		return err
	}
	if err := e.reflectance.Set(0, buffer.F32(m.Reflectance())); err != nil {
		return err
	}
	if err := e.metalness.Set(0, buffer.F32(m.Metalness())); err != nil {
		return err
	}
	e.version = m.Version()
	return nil
}

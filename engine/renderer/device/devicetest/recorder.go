// Package devicetest provides an in-memory device.Device that records every call, for driving the
// renderer in tests without a GPU.
package devicetest

import (
	"errors"
	"fmt"
	"sync"

	"github.com/Carmen-Shannon/skygen/common"
	"github.com/Carmen-Shannon/skygen/engine/renderer/device"
	"github.com/cogentcore/webgpu/wgpu"
)

// Buffer is the recorder's buffer handle. Contents mirrors what a real device would hold.
type Buffer struct {
	ID       int
	label    string
	usage    wgpu.BufferUsage
	Contents []byte
	Released bool
}

func (b *Buffer) Label() string           { return b.label }
func (b *Buffer) Size() uint64            { return uint64(len(b.Contents)) }
func (b *Buffer) Usage() wgpu.BufferUsage { return b.usage }
func (b *Buffer) Release()                { b.Released = true }

// Object is the recorder's handle for layouts, bind groups, pipelines, textures and samplers.
type Object struct {
	ID       int
	Kind     string
	label    string
	Released bool
	// Entries holds the bind group entries for Kind "bind group".
	Entries []device.BindGroupEntry
	// Pipeline holds the descriptor for Kind "pipeline".
	Pipeline *device.RenderPipelineDescriptor
}

func (o *Object) Label() string { return o.label }
func (o *Object) Release()      { o.Released = true }

// Draw is one recorded DrawIndexed call with the state bound at the time.
type Draw struct {
	Pipeline      device.RenderPipeline
	BindGroups    map[uint32]device.BindGroup
	VertexBuffers map[uint32]device.Buffer
	IndexBuffer   device.Buffer
	IndexFormat   wgpu.IndexFormat
	IndexCount    uint32
	InstanceCount uint32
}

// Write is one recorded WriteBuffer call.
type Write struct {
	Buffer *Buffer
	Offset uint64
	Data   []byte
}

// Recorder implements device.Device in memory.
type Recorder struct {
	mu sync.Mutex

	Format        wgpu.TextureFormat
	Samples       uint32
	Width, Height int
	PresentMode   device.PresentMode

	Buffers   []*Buffer
	Writes    []Write
	Objects   []*Object
	Pipelines []*Object
	Frames    int
	Presents  int
	Draws     []Draw
	Configs   int

	// FrameErrors are returned by successive BeginFrame calls before frames succeed again.
	FrameErrors []error
	// FailCreateBuffer makes CreateBuffer fail when set.
	FailCreateBuffer error
	// ConfigureFormat, when set, replaces Format on every successful Configure, the way a real
	// surface only reports its format once configured.
	ConfigureFormat wgpu.TextureFormat

	nextID  int
	current *pass
}

var _ device.Device = &Recorder{}

// New returns a Recorder with a BGRA surface format and MSAA off.
func New() *Recorder {
	return &Recorder{Format: wgpu.TextureFormatBGRA8Unorm, Samples: 1}
}

func (r *Recorder) id() int {
	r.nextID++
	return r.nextID
}

func (r *Recorder) SurfaceFormat() wgpu.TextureFormat { return r.Format }
func (r *Recorder) SampleCount() uint32               { return r.Samples }

func (r *Recorder) SetPresentMode(mode device.PresentMode) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.PresentMode = mode
}

func (r *Recorder) Configure(width, height int) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if width <= 0 || height <= 0 {
		return fmt.Errorf("configure surface: invalid size %dx%d", width, height)
	}
	r.Width, r.Height = width, height
	if r.ConfigureFormat != wgpu.TextureFormatUndefined {
		r.Format = r.ConfigureFormat
	}
	r.Configs++
	return nil
}

func (r *Recorder) CreateBuffer(label string, usage wgpu.BufferUsage, contents []byte) (device.Buffer, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.FailCreateBuffer != nil {
		return nil, r.FailCreateBuffer
	}
	b := &Buffer{ID: r.id(), label: label, usage: usage, Contents: append([]byte(nil), contents...)}
	r.Buffers = append(r.Buffers, b)
	return b, nil
}

func (r *Recorder) WriteBuffer(buf device.Buffer, offset uint64, data []byte) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	b, ok := buf.(*Buffer)
	if !ok {
		return errors.New("write buffer: foreign handle")
	}
	if b.Released {
		return fmt.Errorf("write buffer %q: released", b.label)
	}
	if b.usage&wgpu.BufferUsageCopyDst == 0 {
		return fmt.Errorf("write buffer %q: missing CopyDst usage", b.label)
	}
	if offset+uint64(len(data)) > uint64(len(b.Contents)) {
		return fmt.Errorf("write buffer %q: %d bytes at offset %d exceeds size %d", b.label, len(data), offset, len(b.Contents))
	}
	copy(b.Contents[offset:], data)
	r.Writes = append(r.Writes, Write{Buffer: b, Offset: offset, Data: append([]byte(nil), data...)})
	return nil
}

func (r *Recorder) object(kind, label string) *Object {
	o := &Object{ID: r.id(), Kind: kind, label: label}
	r.Objects = append(r.Objects, o)
	return o
}

func (r *Recorder) CreateBindGroupLayout(label string, entries []wgpu.BindGroupLayoutEntry) (device.BindGroupLayout, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(entries) == 0 {
		return nil, fmt.Errorf("bind group layout %q: no entries", label)
	}
	return r.object("layout", label), nil
}

func (r *Recorder) CreateBindGroup(label string, layout device.BindGroupLayout, entries []device.BindGroupEntry) (device.BindGroup, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if layout == nil {
		return nil, fmt.Errorf("bind group %q: nil layout", label)
	}
	o := r.object("bind group", label)
	o.Entries = append([]device.BindGroupEntry(nil), entries...)
	return o, nil
}

func (r *Recorder) CreateTexture(label string, data common.TextureStagingData) (device.TextureView, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if !data.Valid() {
		return nil, fmt.Errorf("texture %q: invalid staging data", label)
	}
	return r.object("texture", label), nil
}

func (r *Recorder) CreateSampler(label string, _ common.SamplerStagingData) (device.Sampler, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.object("sampler", label), nil
}

func (r *Recorder) CreateRenderPipeline(desc *device.RenderPipelineDescriptor) (device.RenderPipeline, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	d := *desc
	o := r.object("pipeline", desc.Label)
	o.Pipeline = &d
	r.Pipelines = append(r.Pipelines, o)
	return o, nil
}

func (r *Recorder) BeginFrame() (device.RenderPass, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.FrameErrors) > 0 {
		err := r.FrameErrors[0]
		r.FrameErrors = r.FrameErrors[1:]
		return nil, err
	}
	if r.current != nil {
		return nil, device.ErrFramePending
	}
	r.Frames++
	r.current = &pass{r: r, bindGroups: map[uint32]device.BindGroup{}, vertexBuffers: map[uint32]device.Buffer{}}
	return r.current, nil
}

func (r *Recorder) EndFrame() error {
	return nil
}

func (r *Recorder) Present() {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.current == nil {
		return
	}
	r.current = nil
	r.Presents++
}

func (r *Recorder) Release() {}

// LiveBuffers returns the buffers that have not been released.
func (r *Recorder) LiveBuffers() []*Buffer {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*Buffer
	for _, b := range r.Buffers {
		if !b.Released {
			out = append(out, b)
		}
	}
	return out
}

// Count returns how many objects of kind were created.
func (r *Recorder) Count(kind string) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := 0
	for _, o := range r.Objects {
		if o.Kind == kind {
			n++
		}
	}
	return n
}

// NewPass returns a standalone RenderPass that records into r without acquiring a frame.
func (r *Recorder) NewPass() device.RenderPass {
	return &pass{r: r, bindGroups: map[uint32]device.BindGroup{}, vertexBuffers: map[uint32]device.Buffer{}}
}

type pass struct {
	r             *Recorder
	pipeline      device.RenderPipeline
	bindGroups    map[uint32]device.BindGroup
	vertexBuffers map[uint32]device.Buffer
	indexBuffer   device.Buffer
	indexFormat   wgpu.IndexFormat
}

func (p *pass) SetPipeline(rp device.RenderPipeline)           { p.pipeline = rp }
func (p *pass) SetBindGroup(i uint32, bg device.BindGroup)     { p.bindGroups[i] = bg }
func (p *pass) SetVertexBuffer(slot uint32, buf device.Buffer) { p.vertexBuffers[slot] = buf }

func (p *pass) SetIndexBuffer(buf device.Buffer, format wgpu.IndexFormat) {
	p.indexBuffer = buf
	p.indexFormat = format
}

func (p *pass) DrawIndexed(indexCount, instanceCount uint32) {
	d := Draw{
		Pipeline:      p.pipeline,
		BindGroups:    make(map[uint32]device.BindGroup, len(p.bindGroups)),
		VertexBuffers: make(map[uint32]device.Buffer, len(p.vertexBuffers)),
		IndexBuffer:   p.indexBuffer,
		IndexFormat:   p.indexFormat,
		IndexCount:    indexCount,
		InstanceCount: instanceCount,
	}
	for k, v := range p.bindGroups {
		d.BindGroups[k] = v
	}
	for k, v := range p.vertexBuffers {
		d.VertexBuffers[k] = v
	}
	p.r.mu.Lock()
	p.r.Draws = append(p.r.Draws, d)
	p.r.mu.Unlock()
}

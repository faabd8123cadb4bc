package buffer

import (
	"errors"
	"fmt"
	"slices"

	"github.com/Carmen-Shannon/skygen/engine/renderer/device"
	"github.com/cogentcore/webgpu/wgpu"
)

var (
	// ErrIndexOutOfBounds is returned by Remove for an index outside [0, Len()).
	ErrIndexOutOfBounds = errors.New("index out of bounds")

	// ErrAllocation wraps device failures to allocate a buffer.
	ErrAllocation = errors.New("buffer allocation failed")
)

// ManagedBuffer owns a sequence of values and the device buffer mirroring their projection.
// Mutations only mark the buffer modified; the device copy is brought up to date by the next Get.
// A sync writes in place when the length is unchanged and reallocates when it changed.
//
// A ManagedBuffer is not safe for concurrent use.
type ManagedBuffer[T Buffered] struct {
	dev      device.Device
	label    string
	usage    wgpu.BufferUsage
	values   []T
	modified bool
	synced   int
	buf      device.Buffer
}

// New allocates a device buffer holding the projection of values.
// CopyDst is always added to usage so same-length syncs can write in place.
//
// Parameters:
//   - dev: the device to allocate on
//   - label: a debug label for the device buffer
//   - usage: the usage classification (vertex, index, uniform, ...)
//   - values: the initial values; the slice is copied
//
// Returns:
//   - *ManagedBuffer[T]: the managed buffer, clean after construction
//   - error: ErrAllocation wrapping the device error if allocation failed
func New[T Buffered](dev device.Device, label string, usage wgpu.BufferUsage, values []T) (*ManagedBuffer[T], error) {
	b := &ManagedBuffer[T]{
		dev:    dev,
		label:  label,
		usage:  usage | wgpu.BufferUsageCopyDst,
		values: slices.Clone(values),
	}
	if err := b.allocate(); err != nil {
		return nil, err
	}
	return b, nil
}

// Get returns the device buffer, syncing first if the values were modified.
func (b *ManagedBuffer[T]) Get() (device.Buffer, error) {
	if err := b.Sync(); err != nil {
		return nil, err
	}
	return b.buf, nil
}

// Sync brings the device buffer up to date. It is a no-op when the buffer is clean.
func (b *ManagedBuffer[T]) Sync() error {
	if !b.modified {
		return nil
	}
	if len(b.values) == b.synced && b.buf != nil {
		if err := b.dev.WriteBuffer(b.buf, 0, Project(b.values)); err != nil {
			return fmt.Errorf("write %s: %w", b.label, err)
		}
		b.modified = false
		return nil
	}
	return b.allocate()
}

// allocate replaces the device buffer with a new one sized to the current values.
// The old buffer is released only after the new one exists.
func (b *ManagedBuffer[T]) allocate() error {
	buf, err := b.dev.CreateBuffer(b.label, b.usage, Project(b.values))
	if err != nil {
		return fmt.Errorf("%w: %s: %w", ErrAllocation, b.label, err)
	}
	if b.buf != nil {
		b.buf.Release()
	}
	b.buf = buf
	b.synced = len(b.values)
	b.modified = false
	return nil
}

// Push appends v.
func (b *ManagedBuffer[T]) Push(v T) {
	b.values = append(b.values, v)
	b.modified = true
}

// Replace swaps the whole sequence for values. The slice is copied.
func (b *ManagedBuffer[T]) Replace(values []T) {
	b.values = slices.Clone(values)
	b.modified = true
}

// Set overwrites the value at i, leaving the length unchanged.
func (b *ManagedBuffer[T]) Set(i int, v T) error {
	if i < 0 || i >= len(b.values) {
		return fmt.Errorf("set %d of %d: %w", i, len(b.values), ErrIndexOutOfBounds)
	}
	b.values[i] = v
	b.modified = true
	return nil
}

// Remove deletes and returns the value at i. An out-of-range index leaves the buffer untouched.
func (b *ManagedBuffer[T]) Remove(i int) (T, error) {
	var zero T
	if i < 0 || i >= len(b.values) {
		return zero, fmt.Errorf("remove %d of %d: %w", i, len(b.values), ErrIndexOutOfBounds)
	}
	v := b.values[i]
	b.values = slices.Delete(b.values, i, i+1)
	b.modified = true
	return v, nil
}

// Len returns the number of values.
func (b *ManagedBuffer[T]) Len() int {
	return len(b.values)
}

// Values returns a copy of the values.
func (b *ManagedBuffer[T]) Values() []T {
	return slices.Clone(b.values)
}

// Modified reports whether the device buffer is behind the values.
func (b *ManagedBuffer[T]) Modified() bool {
	return b.modified
}

// Bytes returns the projection of the current values.
func (b *ManagedBuffer[T]) Bytes() []byte {
	return Project(b.values)
}

// Label returns the debug label of the device buffer.
func (b *ManagedBuffer[T]) Label() string {
	return b.label
}

// Usage returns the usage flags, including the implied CopyDst.
func (b *ManagedBuffer[T]) Usage() wgpu.BufferUsage {
	return b.usage
}

// Release frees the device buffer. The ManagedBuffer must not be used afterwards.
func (b *ManagedBuffer[T]) Release() {
	if b.buf != nil {
		b.buf.Release()
		b.buf = nil
	}
}

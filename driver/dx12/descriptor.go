// Copyright 2022 Gustavo C. Viegas. All rights reserved.

package dx12

import (
	"reflect"

	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"

	"gviegas/neo3/driver"
)

// resourceAddr derives a stable, process-unique identity for a hal
// resource handle from its underlying pointer, used to synthesize
// the opaque Buffer/TextureView/SamplerHandle values
// gputypes.BindGroupEntry expects in place of a central handle table.
func resourceAddr(v any) uint64 { return uint64(reflect.ValueOf(v).Pointer()) }

// descHeap implements driver.DescHeap as a hal.BindGroupLayout plus
// the driver-level Descriptor declarations used to build DescTables
// from it (hal has no separate "pool" object to size up front; a
// bind group is allocated directly from the layout on NewTable).
type descHeap struct {
	gpu   *gpu
	h     hal.BindGroupLayout
	descs []driver.Descriptor
}

func newDescHeap(g *gpu, descs []driver.Descriptor) (driver.DescHeap, error) {
	entries := make([]gputypes.BindGroupLayoutEntry, len(descs))
	for i, d := range descs {
		e := gputypes.BindGroupLayoutEntry{
			Binding:    uint32(d.Nr),
			Visibility: shaderStages(d.Stages),
		}
		switch d.Type {
		case driver.DSampler:
			e.Sampler = &gputypes.SamplerBindingLayout{}
		case driver.DImage, driver.DInputAttachment:
			e.Texture = &gputypes.TextureBindingLayout{}
		case driver.DImageRW:
			e.Storage = &gputypes.StorageTextureBindingLayout{Access: gputypes.StorageTextureAccessReadWrite}
		case driver.DConstBuffer:
			e.Buffer = &gputypes.BufferBindingLayout{Type: gputypes.BufferBindingTypeUniform}
		default: // DBuffer, DAccelStruct (no native binding type; modeled as a storage buffer)
			e.Buffer = &gputypes.BufferBindingLayout{Type: gputypes.BufferBindingTypeStorage}
		}
		entries[i] = e
	}
	h, err := g.dev.CreateBindGroupLayout(&hal.BindGroupLayoutDescriptor{Entries: entries})
	if err != nil {
		return nil, driver.ErrInvalidArgument
	}
	return &descHeap{gpu: g, h: h, descs: append([]driver.Descriptor(nil), descs...)}, nil
}

// Descriptors implements driver.DescHeap.
func (h *descHeap) Descriptors() []driver.Descriptor { return h.descs }

// NewTable implements driver.DescHeap.
func (h *descHeap) NewTable() (driver.DescTable, error) {
	entries := make([]gputypes.BindGroupEntry, len(h.descs))
	for i, d := range h.descs {
		entries[i] = gputypes.BindGroupEntry{Binding: uint32(d.Nr)}
	}
	return &descTable{gpu: h.gpu, heap: h, entries: entries, dirty: true}, nil
}

// Destroy implements driver.Destroyer.
func (h *descHeap) Destroy() { h.gpu.dev.DestroyBindGroupLayout(h.h) }

// hasInputAttachment reports whether h declares any DInputAttachment
// binding, the condition under which SetPipeline auto-binds a table
// for it (spec.md §4.7).
func (h *descHeap) hasInputAttachment() bool {
	for _, d := range h.descs {
		if d.Type == driver.DInputAttachment {
			return true
		}
	}
	return false
}

// descTable implements driver.DescTable. hal's BindGroup is
// immutable once created (no vkUpdateDescriptorSets equivalent
// exposed), so writes accumulate into entries and the underlying
// hal.BindGroup is lazily (re)created by resolve on next use.
type descTable struct {
	gpu     *gpu
	heap    *descHeap
	entries []gputypes.BindGroupEntry
	cur     hal.BindGroup
	dirty   bool
}

func (t *descTable) SetBuffer(i int, buf driver.Buffer, offset, size int64) {
	if i < 0 || i >= len(t.entries) {
		return
	}
	b, ok := buf.(*buffer)
	if !ok {
		return
	}
	t.entries[i].Resource = gputypes.BufferBinding{Buffer: bufferHandle(b.h), Offset: uint64(offset), Size: uint64(size)}
	t.dirty = true
}

func (t *descTable) SetImage(i int, view driver.ImageView) {
	if i < 0 || i >= len(t.entries) {
		return
	}
	v, ok := view.(*imageView)
	if !ok {
		return
	}
	t.entries[i].Resource = gputypes.TextureViewBinding{TextureView: textureViewHandle(v.h)}
	t.dirty = true
}

func (t *descTable) SetSampler(i int, splr driver.Sampler) {
	if i < 0 || i >= len(t.entries) {
		return
	}
	s, ok := splr.(*sampler)
	if !ok {
		return
	}
	t.entries[i].Resource = gputypes.SamplerBinding{Sampler: samplerHandle(s.h)}
	t.dirty = true
}

func (t *descTable) SetAccelStruct(i int, as driver.AccelStruct) {
	// Modeled as the backing buffer's storage binding (see accel.go);
	// hal has no acceleration-structure binding resource kind.
	a, ok := as.(*accelStruct)
	if !ok {
		return
	}
	buf, off, size := a.Buffer()
	t.SetBuffer(i, buf, off, size)
}

// resolve returns the current hal.BindGroup, (re)building it if any
// Set* call has marked the table dirty since the last resolve.
func (t *descTable) resolve() (hal.BindGroup, error) {
	if !t.dirty && t.cur != nil {
		return t.cur, nil
	}
	g, err := t.gpu.dev.CreateBindGroup(&hal.BindGroupDescriptor{
		Layout:  t.heap.h,
		Entries: append([]gputypes.BindGroupEntry(nil), t.entries...),
	})
	if err != nil {
		return nil, runtimef("create bind group", err)
	}
	if t.cur != nil {
		t.gpu.dev.DestroyBindGroup(t.cur)
	}
	t.cur = g
	t.dirty = false
	return t.cur, nil
}

// Destroy implements driver.Destroyer.
func (t *descTable) Destroy() {
	if t.cur != nil {
		t.gpu.dev.DestroyBindGroup(t.cur)
		t.cur = nil
	}
}

// bufferHandle/textureViewHandle/samplerHandle convert backend
// resources into the opaque handle values gputypes.BindingResource
// expects, keyed by the resource's address to stay unique within the
// process without a central registry.
func bufferHandle(b hal.Buffer) gputypes.BufferHandle { return gputypes.BufferHandle(resourceAddr(b)) }
func textureViewHandle(v hal.TextureView) gputypes.TextureViewHandle {
	return gputypes.TextureViewHandle(resourceAddr(v))
}
func samplerHandle(s hal.Sampler) gputypes.SamplerHandle { return gputypes.SamplerHandle(resourceAddr(s)) }

// pipelineLayout implements driver.PipelineLayout atop a
// hal.PipelineLayout. Push-constant ranges are kept for reporting
// only: see cmdBuffer.SetPushConstants for why they are not
// forwarded to hal.
type pipelineLayout struct {
	gpu    *gpu
	h      hal.PipelineLayout
	heaps  []driver.DescHeap
	ranges []driver.PushConstantRange
}

func newPipelineLayout(g *gpu, heaps []driver.DescHeap, ranges []driver.PushConstantRange) (driver.PipelineLayout, error) {
	layouts := make([]hal.BindGroupLayout, len(heaps))
	for i, h := range heaps {
		dh, ok := h.(*descHeap)
		if !ok {
			return nil, driver.ErrInvalidArgument
		}
		layouts[i] = dh.h
	}
	pcr := make([]hal.PushConstantRange, len(ranges))
	for i, r := range ranges {
		pcr[i] = hal.PushConstantRange{
			Stages: shaderStages(r.Stages),
			Range:  hal.Range{Start: uint32(r.Offset), End: uint32(r.Offset + r.Size)},
		}
	}
	h, err := g.dev.CreatePipelineLayout(&hal.PipelineLayoutDescriptor{BindGroupLayouts: layouts, PushConstantRanges: pcr})
	if err != nil {
		return nil, driver.ErrInvalidArgument
	}
	return &pipelineLayout{gpu: g, h: h, heaps: heaps, ranges: ranges}, nil
}

// Heaps implements driver.PipelineLayout.
func (p *pipelineLayout) Heaps() []driver.DescHeap { return p.heaps }

// PushConstants implements driver.PipelineLayout.
func (p *pipelineLayout) PushConstants() []driver.PushConstantRange { return p.ranges }

// Destroy implements driver.Destroyer.
func (p *pipelineLayout) Destroy() { p.gpu.dev.DestroyPipelineLayout(p.h) }

// Copyright 2022 Gustavo C. Viegas. All rights reserved.

package driver

// DescType identifies the kind of resource a Descriptor binds.
type DescType int

// Descriptor types.
const (
	DBuffer DescType = iota
	DConstBuffer
	DImage
	DImageRW
	DTexture
	DSampler
	DInputAttachment
	DAccelStruct
)

// Descriptor declares a single binding point within a DescHeap:
// a (register, space) pair in DX12-like terms, or a (binding, set)
// pair in Vulkan-like terms.
type Descriptor struct {
	Type    DescType
	Stages  Stage
	Nr      int // register/binding
	Space   int // space/set
	Len     int // array length; 0 means a single descriptor
}

// DescHeap is a descriptor-set layout (Vulkan-like backend) or a
// validated binding layout checked against the device's process-wide
// global heaps (DX12-like backend).
type DescHeap interface {
	Destroyer

	// Descriptors returns the layout's binding declarations.
	Descriptors() []Descriptor

	// NewTable allocates a descriptor table (Vulkan-like: a
	// descriptor set from the heap's pool; DX12-like: a sub-range of
	// the process-wide global heaps via GPU.AllocateGlobalDescriptors).
	NewTable() (DescTable, error)
}

// DescTable is a concrete set of descriptors bound together at draw
// or dispatch time.
type DescTable interface {
	Destroyer

	// SetBuffer writes a buffer-backed descriptor at index i.
	SetBuffer(i int, buf Buffer, offset, size int64)

	// SetImage writes an image-view-backed descriptor at index i.
	SetImage(i int, view ImageView)

	// SetSampler writes a sampler descriptor at index i.
	SetSampler(i int, splr Sampler)

	// SetAccelStruct writes an acceleration-structure descriptor at
	// index i.
	SetAccelStruct(i int, as AccelStruct)
}

// PushConstantRange declares a byte range of inline constant data
// directly embedded in a command buffer's recorded commands, not
// backed by a Buffer.
type PushConstantRange struct {
	Stages Stage
	Offset int
	Size   int
}

// PipelineLayout binds together the descriptor-heap layouts and
// push-constant ranges a Pipeline's shaders expect. Always built
// explicitly by the caller from DescHeaps and PushConstantRanges; see
// DESIGN.md for why no bytecode-reflection step sits in front of it.
type PipelineLayout interface {
	Destroyer

	Heaps() []DescHeap
	PushConstants() []PushConstantRange
}

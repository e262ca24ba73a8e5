// Copyright 2022 Gustavo C. Viegas. All rights reserved.

package driver

// Sync identifies pipeline stages for the purpose of synchronization.
// Values compose as a bitmask; backends translate combinations into
// VkPipelineStageFlags2-like or D3D12_BARRIER_SYNC-like native masks
// in driver/vk/conv.go and driver/dx12/conv.go (spec.md §4.4).
type Sync int64

// Pipeline-stage synchronization scopes.
const (
	SNone Sync = 0
	SAll  Sync = 1 << iota
	SDraw
	SVertexInput
	SVertexShading
	SFragmentShading
	SDepthStencil
	SRenderTarget
	SCompute
	SRayTracing
	SCopy
	SResolve
	SExecuteIndirect
	SAllGraphics
	SAllCommands
)

// Access identifies the kind of memory access a Barrier or
// Transition guards. Values compose as a bitmask.
type Access int64

// Resource access scopes.
const (
	ANone Access = 0
	ACommon Access = 1 << iota
	AVertexBufRead
	AIndexBufRead
	AConstBufRead
	AIndirectRead
	AShaderRead
	AShaderWrite
	AShaderReadWrite
	AColorTargetRead
	AColorTargetWrite
	ADSRead
	ADSWrite
	ACopySrc
	ACopyDst
	AResolveSrc
	AResolveDst
	AAccelStructRead
	AAccelStructWrite
)

// Layout identifies an image's memory layout. A Transition moves an
// image (or a layer/level range of it) from one Layout to another.
type Layout int

// Image layouts.
const (
	LUndefined Layout = iota
	LGeneral
	LReadWrite
	LColorTarget
	LDepthRead
	LDepthWrite
	LShaderRead
	LCopySrc
	LCopyDst
	LResolveSrc
	LResolveDst
	LPresent
)

// Barrier guards a memory dependency between two points in a
// command buffer's recorded sequence, without changing an image's
// layout. It is used for buffers and for images whose layout need
// not change (e.g. a storage image read-after-write).
//
// Buffer identifies the buffer this barrier guards. It is nil for a
// barrier that guards an image whose layout does not change (backends
// currently only translate buffer barriers; an image-only Barrier
// with a nil Buffer is accepted but produces no native dependency).
type Barrier struct {
	SyncBefore, SyncAfter     Sync
	AccessBefore, AccessAfter Access
	Buffer                    Buffer
}

// Transition guards a memory dependency that also changes an
// image's layout (or a layer/level range of it).
type Transition struct {
	Barrier
	LayoutBefore, LayoutAfter Layout
	Image                     Image
	Layer, Layers             int
	Level, Levels             int
}

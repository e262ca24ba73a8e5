// Copyright 2022 Gustavo C. Viegas. All rights reserved.

package driver

// Features is a mask of optional capabilities that a device may
// support. Capabilities the backends rely on (enhanced barriers,
// bindless descriptor indexing, timeline semaphores, dynamic
// rendering, synchronization-v2) are not represented here, and the
// hal-based backends do not check for them when opening a device.
type Features int

// Optional device features (spec.md §4.1).
const (
	FMeshShading Features = 1 << iota
	FRayTracing
	FAccelStruct
	FNone Features = 0
)

// Contains reports whether f contains every feature in other.
func (f Features) Contains(other Features) bool { return f&other == other }

// Limits describes implementation limits. These may vary across
// devices and backends and are immutable for the lifetime of a GPU.
type Limits struct {
	// Maximum width of 1D images.
	MaxImage1D int
	// Maximum width and height of 2D images.
	MaxImage2D int
	// Maximum width and height of cube images.
	MaxImageCube int
	// Maximum width, height and depth of 3D images.
	MaxImage3D int
	// Maximum number of layers in an image.
	MaxLayers int

	// Maximum number of descriptor heaps (DX12) / descriptor sets
	// (Vulkan) bound to a pipeline layout at once.
	MaxDescHeaps int
	// Maximum number of buffer descriptors in a descriptor table.
	MaxDescBuffer int
	// Maximum number of image descriptors in a descriptor table.
	MaxDescImage int
	// Maximum number of constant-buffer descriptors.
	MaxDescConstant int
	// Maximum number of sampled-texture descriptors.
	MaxDescTexture int
	// Maximum number of sampler descriptors.
	MaxDescSampler int
	// Maximum range of a single buffer descriptor.
	MaxDescBufferRange int64
	// Maximum range of a single constant-buffer descriptor.
	MaxDescConstantRange int64

	// Maximum number of color render targets in a subpass.
	MaxColorTargets int
	// Maximum width/height for a render pass's render area.
	MaxRenderSize [2]int
	// Maximum number of layers in a framebuffer.
	MaxRenderLayers int
	// Maximum size of a point primitive.
	MaxPointSize float32
	// Maximum number of viewports.
	MaxViewports int

	// Maximum number of vertex inputs in a vertex shader.
	MaxVertexIn int
	// Maximum number of fragment inputs in a fragment shader.
	MaxFragmentIn int

	// Maximum dispatch count, per dimension.
	MaxDispatch [3]int

	// MinUniformBufferOffsetAlignment is the alignment that
	// ComputeAccelStructSizes and constant-buffer descriptor offsets
	// must respect (spec.md §4.1, §4.8).
	MinUniformBufferOffsetAlignment int64

	// SamplerHeapSize is the configured size of the process-wide
	// sampler descriptor heap (DX12-like backend only), capped at
	// 2048 per spec.md §4.1.
	SamplerHeapSize int
	// ShaderResourceHeapSize is the configured size of the
	// process-wide CBV/SRV/UAV descriptor heap (DX12-like backend
	// only).
	ShaderResourceHeapSize int

	// Features enabled on the device.
	Features Features
}

// QueuePriority is the priority class requested for a queue.
// The hal-based backends record it on the queue (see Queue.Priority)
// and do not otherwise act on it.
type QueuePriority int

// Queue priority classes, ordered from lowest to highest.
const (
	PNormal QueuePriority = iota
	PHigh
	PRealtime
)

// DefaultQueuePriorityFallback lists the queue priority classes from
// highest to lowest. Neither hal-based backend's NewQueue consults
// it: both hand out a queue at whatever priority is requested.
var DefaultQueuePriorityFallback = []QueuePriority{PRealtime, PHigh, PNormal}

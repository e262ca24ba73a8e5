// Copyright 2022 Gustavo C. Viegas. All rights reserved.

package driver

import "gviegas/neo3/wsi"

// Destroyer is the interface implemented by every type that owns
// driver/native resources and must be explicitly released.
type Destroyer interface {
	Destroy()
}

// QueueKind identifies the kind of work a Queue accepts.
type QueueKind int

// Queue kinds. A device exposes at least one queue of each of
// Graphics, Compute and Transfer (the graphics queue may alias as
// compute and/or transfer when the underlying family has no
// dedicated queue for them, spec.md §4.1).
const (
	QGraphics QueueKind = iota
	QCompute
	QTransfer
	QVideo
)

// GPU is the interface that provides access to a device's queues,
// resource constructors and global state.
//
// A GPU is obtained from Driver.Open and remains valid until the
// Driver is closed. All of a GPU's methods are safe for concurrent
// use unless individually documented otherwise.
type GPU interface {
	Destroyer

	// Queue returns the default queue of the given kind. The
	// graphics queue is always non-nil; Compute/Transfer/Video
	// queues may alias the graphics queue on devices that expose no
	// dedicated family for them.
	Queue(kind QueueKind) Queue

	// NewQueue creates an additional queue of the given kind and
	// priority, recording priority on the queue as requested.
	// The hal-based backends hand out such a queue at any priority,
	// over the same native queue as the default ones, and do not
	// consult DefaultQueuePriorityFallback; they return ErrNoQueue
	// only when the new queue's fence cannot be created.
	NewQueue(kind QueueKind, priority QueuePriority) (Queue, error)

	// Limits returns the device's implementation limits.
	Limits() *Limits

	// Features returns the optional capabilities enabled on this
	// device.
	Features() Features

	// NewBuffer creates a buffer resource.
	NewBuffer(size int64, usg Usage, kind BufferKind) (Buffer, error)

	// NewImage creates an image resource.
	NewImage(pf PixelFmt, size Dim3D, layers, levels, samples int, usg Usage) (Image, error)

	// NewSampler creates a sampler.
	NewSampler(splr *Sampling) (Sampler, error)

	// NewShaderCode validates and wraps backend-specific bytecode
	// (SPIR-V-like or DXIL-like) for later use in a ShaderFunc.
	NewShaderCode(code []byte) (ShaderCode, error)

	// NewDescHeap creates a descriptor-set layout (Vulkan-like
	// backend) or validates a compatible binding layout against the
	// process-wide global heaps (DX12-like backend).
	NewDescHeap(descs []Descriptor) (DescHeap, error)

	// NewPipelineLayout creates a pipeline layout from a list of
	// descriptor heaps and push-constant ranges.
	NewPipelineLayout(heaps []DescHeap, ranges []PushConstantRange) (PipelineLayout, error)

	// NewGraphPipeline creates a graphics (or mesh) pipeline.
	NewGraphPipeline(state *GraphState) (Pipeline, error)

	// NewCompPipeline creates a compute pipeline.
	NewCompPipeline(state *CompState) (Pipeline, error)

	// NewRayPipeline creates a ray-tracing pipeline.
	NewRayPipeline(state *RayState) (Pipeline, error)

	// NewRenderPass creates a render pass from an attachment list
	// and a subpass list.
	NewRenderPass(attachments []Attachment, subpasses []Subpass) (RenderPass, error)

	// NewFramebuf creates a frame buffer of the given pixel size and
	// layer count, binding views to a RenderPass's attachment slots
	// in order (spec.md §4.5). secondaries fixes the number of
	// secondary command buffers a RenderPass.Begin over this frame
	// buffer records (normally the render pass's subpass count). The
	// frame buffer owns none of the views' backing images; it only
	// holds references to them for the duration of the render-pass
	// begin/end cycles it is used in.
	NewFramebuf(width, height, layers, secondaries int, views []ImageView) (Framebuf, error)

	// NewAccelStruct creates an acceleration structure of the given
	// kind over the given backing buffer range.
	NewAccelStruct(kind AccelKind, buf Buffer, offset, size int64) (AccelStruct, error)

	// ComputeAccelStructSizes returns the scratch and result buffer
	// sizes required to build the given acceleration-structure
	// geometry, aligned to Limits().MinUniformBufferOffsetAlignment.
	ComputeAccelStructSizes(kind AccelKind, geom any) (scratch, result int64, err error)

	// AllocateGlobalDescriptors reserves n contiguous descriptors in
	// the process-wide global heap identified by typ (DX12-like
	// backend only; Vulkan-like backends return the Vulkan-like
	// backend's own pool-backed DescHeap instead and never call
	// this). The DX12-like backend takes the first free run of n
	// slots in the heap's bitmap (no exact-size or smallest-fit
	// preference), growing the heap when none is free, and returns
	// ErrOutOfDescriptors when the request still cannot be satisfied
	// (only the sampler heap has a growth cap, 2048 descriptors).
	AllocateGlobalDescriptors(typ DescType, n int) (offset int, err error)

	// ReleaseGlobalDescriptors returns a previously allocated range
	// to the free-fragment list.
	ReleaseGlobalDescriptors(typ DescType, offset, n int)

	// BindGlobalDescriptorHeaps binds the process-wide CBV/SRV/UAV
	// and sampler heaps on cb (DX12-like backend only; a no-op on
	// Vulkan-like backends).
	BindGlobalDescriptorHeaps(cb CmdBuffer)

	// Wait blocks until the work last submitted to the default
	// graphics queue completes (the default compute and transfer
	// queues alias it on the hal-based backends). Queues created by
	// NewQueue are not waited on.
	Wait() error

	// MaxMultisampleLevel returns 4 when the device reports
	// multisample support for pf and 1 otherwise; sample counts
	// above 4 are not reported even where the device supports them, or 1 if pf does not support
	// multisampling.
	MaxMultisampleLevel(pf PixelFmt) int

	// TicksPerMillisecond returns the frequency of timestamp query
	// results, for converting raw ticks to wall-clock time.
	TicksPerMillisecond() float64
}

// Presenter is implemented by a GPU that can create swap chains for
// presenting to a wsi.Window. Not every backend/device combination
// supports presentation (e.g. a headless compute device).
type Presenter interface {
	NewSwapchain(win wsi.Window, nframe int, pf PixelFmt, vsync bool) (Swapchain, error)
}

// Queue is a single native command-submission queue.
type Queue interface {
	// Kind returns the kind of work this queue accepts.
	Kind() QueueKind

	// Priority returns the priority class this queue was created
	// with.
	Priority() QueuePriority

	// CreateCmdBuffer creates a command buffer bound to this queue.
	// A secondary command buffer cannot be submitted directly (see
	// Submit); it can only be recorded inside a primary one via
	// RenderPass sub-pass dispatch. If beginRecording is true, the
	// returned buffer is already in the recording state.
	CreateCmdBuffer(secondary, beginRecording bool) (CmdBuffer, error)

	// Submit submits cbs for execution, in the given order, and
	// returns the timeline-semaphore value that WaitFor can later be
	// passed to detect completion. cbs may mix a leading/trailing
	// primary command buffer with secondaries recorded for a
	// RenderPass's subpasses (spec.md §4.6); only a cbs[0] that is
	// secondary is rejected, with ErrMustBePrimary, since a secondary
	// can never be the lead buffer of a submission.
	Submit(cbs []CmdBuffer) (fence uint64, err error)

	// WaitFor blocks until this queue's timeline semaphore reaches
	// value.
	WaitFor(value uint64) error

	// WaitForQueue makes all future submissions to this queue wait
	// on other's timeline semaphore reaching value, without blocking
	// the calling goroutine.
	WaitForQueue(other Queue, value uint64) error

	// BeginDebugRegion pushes a named marker onto the queue's debug
	// region stack. The hal-based backends keep the stack on the
	// queue only; nothing is forwarded to a native debug-marker call.
	BeginDebugRegion(name string)

	// EndDebugRegion pops the innermost marker pushed by
	// BeginDebugRegion.
	EndDebugRegion()
}

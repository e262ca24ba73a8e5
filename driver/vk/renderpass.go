// Copyright 2022 Gustavo C. Viegas. All rights reserved.

package vk

import (
	"sync"

	"gviegas/neo3/driver"
	"gviegas/neo3/internal/bitvec"
)

// renderPass implements driver.RenderPass. Unlike the teacher's
// persistent VkRenderPass/VkFramebuffer pair, hal has no subpass
// concept at all: each driver.Subpass becomes its own
// BeginRenderPass/End bracket recorded onto its own secondary
// hal.CommandEncoder (spec.md §4.6), with Subpass.Wait (the teacher's
// subpass-dependency flag) becoming an implicit ordering since the
// secondaries are submitted, in subpass order, within one batch.
type renderPass struct {
	gpu         *gpu
	attachments []driver.Attachment
	subpasses   []driver.Subpass

	mu          sync.Mutex
	active      bool
	q           *queue
	fb          *framebuf
	clear       []driver.ClearValue
	cur         int
	beginCB     *cmdBuffer
	secondaries []*cmdBuffer
}

func newRenderPass(g *gpu, attachments []driver.Attachment, subpasses []driver.Subpass) (driver.RenderPass, error) {
	if len(subpasses) == 0 {
		return nil, driver.ErrInvalidArgument
	}
	var nPresent, nDS int
	for _, a := range attachments {
		switch a.Role {
		case driver.RolePresent:
			nPresent++
		case driver.RoleDepthStencil:
			nDS++
		}
	}
	if nPresent > 1 || nDS > 1 {
		return nil, driver.ErrInvalidArgument
	}
	return &renderPass{
		gpu:         g,
		attachments: append([]driver.Attachment(nil), attachments...),
		subpasses:   append([]driver.Subpass(nil), subpasses...),
	}, nil
}

// Attachments implements driver.RenderPass.
func (rp *renderPass) Attachments() []driver.Attachment { return rp.attachments }

// Subpasses implements driver.RenderPass.
func (rp *renderPass) Subpasses() []driver.Subpass { return rp.subpasses }

// Begin implements driver.RenderPass. It records a primary command
// buffer carrying the input layout transitions (suspended without
// being submitted), then begins the first subpass's secondary command
// buffer (spec.md §4.6).
func (rp *renderPass) Begin(q driver.Queue, fb driver.Framebuf, clear []driver.ClearValue) error {
	rp.mu.Lock()
	defer rp.mu.Unlock()
	if rp.active {
		return driver.ErrAlreadyActive
	}
	vq, ok := q.(*queue)
	if !ok {
		return driver.ErrInvalidArgument
	}
	f, ok := fb.(*framebuf)
	if !ok {
		return driver.ErrInvalidArgument
	}
	if f.Secondaries() != len(rp.subpasses) {
		return driver.ErrInvalidArgument
	}
	if rp.hasPresentTarget() && vq.kind != driver.QGraphics {
		return driver.ErrWrongQueue
	}

	bc, err := vq.CreateCmdBuffer(false, true)
	if err != nil {
		return err
	}
	beginCB := bc.(*cmdBuffer)
	rp.recordInputBarriers(beginCB, f)
	if err := beginCB.End(); err != nil {
		beginCB.Destroy()
		return err
	}

	sc, err := vq.CreateCmdBuffer(true, true)
	if err != nil {
		beginCB.Destroy()
		return err
	}
	secondary := sc.(*cmdBuffer)
	if err := secondary.beginSubpassSingle(rp, f, clear, 0); err != nil {
		secondary.Destroy()
		beginCB.Destroy()
		return err
	}

	rp.q = vq
	rp.fb = f
	rp.clear = clear
	rp.cur = 0
	rp.beginCB = beginCB
	rp.secondaries = make([]*cmdBuffer, len(rp.subpasses))
	rp.secondaries[0] = secondary
	rp.active = true
	return nil
}

// NextSubpass implements driver.RenderPass.
func (rp *renderPass) NextSubpass() (driver.CmdBuffer, error) {
	rp.mu.Lock()
	defer rp.mu.Unlock()
	if !rp.active {
		return nil, driver.ErrNotActive
	}
	idx := rp.cur + 1
	if idx >= len(rp.subpasses) {
		return nil, driver.ErrNotActive
	}
	cur := rp.secondaries[rp.cur]
	if err := cur.endSubpassSingle(); err != nil {
		return nil, err
	}
	if err := cur.End(); err != nil {
		return nil, err
	}
	sc, err := rp.q.CreateCmdBuffer(true, true)
	if err != nil {
		return nil, err
	}
	next := sc.(*cmdBuffer)
	if err := next.beginSubpassSingle(rp, rp.fb, rp.clear, idx); err != nil {
		next.Destroy()
		return nil, err
	}
	rp.secondaries[idx] = next
	rp.cur = idx
	return next, nil
}

// CmdBuffer implements driver.RenderPass.
func (rp *renderPass) CmdBuffer() (driver.CmdBuffer, error) {
	rp.mu.Lock()
	defer rp.mu.Unlock()
	if !rp.active {
		return nil, driver.ErrNotActive
	}
	return rp.secondaries[rp.cur], nil
}

// End implements driver.RenderPass. It ends the last subpass's
// secondary, records a primary command buffer carrying the output
// layout transitions (resolve/present), and submits
// [beginCB, secondaries…, endCB] as a single Queue.Submit call
// (spec.md §4.6, Testable Property 6), presenting afterwards if fb
// declares a present target.
func (rp *renderPass) End() error {
	rp.mu.Lock()
	defer rp.mu.Unlock()
	if !rp.active {
		return driver.ErrNotActive
	}
	cur := rp.secondaries[rp.cur]
	if err := cur.endSubpassSingle(); err != nil {
		return err
	}
	if err := cur.End(); err != nil {
		return err
	}

	ec, err := rp.q.CreateCmdBuffer(false, true)
	if err != nil {
		return err
	}
	endCB := ec.(*cmdBuffer)
	rp.recordOutputBarriers(endCB, rp.fb)
	if err := endCB.End(); err != nil {
		endCB.Destroy()
		return err
	}

	cbs := make([]driver.CmdBuffer, 0, len(rp.secondaries)+2)
	cbs = append(cbs, rp.beginCB)
	for _, s := range rp.secondaries {
		cbs = append(cbs, s)
	}
	cbs = append(cbs, endCB)
	_, submitErr := rp.q.Submit(cbs)

	q := rp.q
	fb := rp.fb
	fb.markInitialized()
	sc, idx, hasPresent := rp.presentTarget(fb)

	rp.active = false
	rp.beginCB = nil
	rp.secondaries = nil
	rp.q = nil
	rp.fb = nil
	rp.clear = nil
	rp.cur = 0

	if submitErr != nil {
		return submitErr
	}
	if hasPresent {
		return sc.Present(q, idx)
	}
	return nil
}

// Destroy implements driver.Destroyer. renderPass holds no native
// resource of its own (it is a bookkeeping object translated into
// hal.RenderPassDescriptors per subpass at CmdBuffer-record time).
func (rp *renderPass) Destroy() {}

func (rp *renderPass) hasPresentTarget() bool {
	for _, a := range rp.attachments {
		if a.Role == driver.RolePresent {
			return true
		}
	}
	return false
}

// recordInputBarriers transitions each attachment into the layout its
// subpasses use it in, from LUndefined on an attachment's first use or
// from its steady-state layout otherwise (tracked by f.initialized,
// spec.md §4.5/§4.6).
func (rp *renderPass) recordInputBarriers(cb *cmdBuffer, f *framebuf) {
	var transitions []driver.Transition
	for i, att := range rp.attachments {
		if i >= len(f.views) {
			continue
		}
		before := driver.LUndefined
		if f.initialized.IsSet(i) {
			before = steadyLayout(att)
		}
		after := useLayout(att)
		if before == after {
			continue
		}
		transitions = append(transitions, driver.Transition{
			LayoutBefore: before,
			LayoutAfter:  after,
			Image:        f.views[i].Image(),
			Layers:       1,
			Levels:       1,
		})
	}
	if len(transitions) > 0 {
		cb.Transition(transitions...)
	}
}

// recordOutputBarriers transitions each attachment from its in-use
// layout to its steady-state layout (LPresent for a present target,
// otherwise unchanged).
func (rp *renderPass) recordOutputBarriers(cb *cmdBuffer, f *framebuf) {
	var transitions []driver.Transition
	for i, att := range rp.attachments {
		if i >= len(f.views) {
			continue
		}
		before := useLayout(att)
		after := steadyLayout(att)
		if before == after {
			continue
		}
		transitions = append(transitions, driver.Transition{
			LayoutBefore: before,
			LayoutAfter:  after,
			Image:        f.views[i].Image(),
			Layers:       1,
			Levels:       1,
		})
	}
	if len(transitions) > 0 {
		cb.Transition(transitions...)
	}
}

// presentTarget reports the swap chain and image index backing fb's
// present-role attachment, if any.
func (rp *renderPass) presentTarget(f *framebuf) (*swapchain, int, bool) {
	for i, att := range rp.attachments {
		if att.Role != driver.RolePresent || i >= len(f.views) {
			continue
		}
		v, ok := f.views[i].(*imageView)
		if !ok || v.presentSC == nil {
			continue
		}
		return v.presentSC, v.presentIdx, true
	}
	return nil, 0, false
}

func useLayout(att driver.Attachment) driver.Layout {
	if att.Role == driver.RoleDepthStencil {
		return driver.LDepthWrite
	}
	return driver.LColorTarget
}

func steadyLayout(att driver.Attachment) driver.Layout {
	switch att.Role {
	case driver.RolePresent:
		return driver.LPresent
	case driver.RoleDepthStencil:
		return driver.LDepthWrite
	default:
		return driver.LColorTarget
	}
}

// framebuf implements driver.Framebuf as a fixed-size set of image
// views plus the resize/release subscriber lists behind
// Framebuf.OnResize/OnRelease; no Swapchain method calls resize.
//
// initialized tracks, per attachment index, whether a render pass has
// already transitioned that attachment out of LUndefined at least
// once, so that a RenderPass.Begin after the first knows to transition
// from the attachment's steady-state layout rather than from undefined.
type framebuf struct {
	width, height int
	layers        int
	views         []driver.ImageView
	secondaries   int
	initialized   bitvec.V[uint64]

	mu          sync.Mutex
	onResize    map[driver.Token]driver.ResizeFunc
	onRelease   map[driver.Token]driver.ReleaseFunc
	nextTok     driver.Token
	inputTables map[inputTableKey]driver.DescTable
}

// inputTableKey identifies the cached DescTable auto-bound for a
// render pass's input-attachment descriptors (spec.md §4.7): one per
// (subpass, DescHeap) pair, since each subpass may read a different
// subset of the frame buffer's attachments as input.
type inputTableKey struct {
	subpass int
	heap    *descHeap
}

// inputTable returns the DescTable binding rp's current subpass's
// Input attachments into dh's DInputAttachment descriptors, building
// and caching it on first use. dh's descriptors partition by Space
// (the heap they belong to) from any other bindings sharing the same
// pipeline layout; within dh, Nr selects the attachment at that index
// of Subpass.Input.
func (f *framebuf) inputTable(rp *renderPass, dh *descHeap) (driver.DescTable, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	key := inputTableKey{subpass: rp.cur, heap: dh}
	if t, ok := f.inputTables[key]; ok {
		return t, nil
	}
	table, err := dh.NewTable()
	if err != nil {
		return nil, err
	}
	sp := rp.subpasses[rp.cur]
	for i, d := range dh.descs {
		if d.Type != driver.DInputAttachment || d.Nr < 0 || d.Nr >= len(sp.Input) {
			continue
		}
		ai := sp.Input[d.Nr]
		if ai < 0 || ai >= len(f.views) {
			continue
		}
		table.SetImage(i, f.views[ai])
	}
	if f.inputTables == nil {
		f.inputTables = map[inputTableKey]driver.DescTable{}
	}
	f.inputTables[key] = table
	return table, nil
}

func newFramebuf(width, height, layers, secondaries int, views []driver.ImageView) *framebuf {
	f := &framebuf{
		width: width, height: height, layers: layers,
		views:       append([]driver.ImageView(nil), views...),
		secondaries: secondaries,
		onResize:    map[driver.Token]driver.ResizeFunc{},
		onRelease:   map[driver.Token]driver.ReleaseFunc{},
	}
	// A single uint64 word covers up to 64 attachment slots, far more
	// than any render pass declares.
	f.initialized.Grow(1)
	return f
}

// Size implements driver.Framebuf.
func (f *framebuf) Size() (int, int) { return f.width, f.height }

// Layers implements driver.Framebuf.
func (f *framebuf) Layers() int { return f.layers }

// View implements driver.Framebuf.
func (f *framebuf) View(i int) driver.ImageView {
	if i < 0 || i >= len(f.views) {
		return nil
	}
	return f.views[i]
}

// Secondaries implements driver.Framebuf.
func (f *framebuf) Secondaries() int { return f.secondaries }

func (f *framebuf) markInitialized() {
	for i := range f.views {
		f.initialized.Set(i)
	}
}

// OnResize implements driver.Framebuf.
func (f *framebuf) OnResize(fn driver.ResizeFunc) driver.Token {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.nextTok++
	tk := f.nextTok
	f.onResize[tk] = fn
	return tk
}

// OffResize implements driver.Framebuf.
func (f *framebuf) OffResize(tk driver.Token) {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.onResize, tk)
}

// OnRelease implements driver.Framebuf.
func (f *framebuf) OnRelease(fn driver.ReleaseFunc) driver.Token {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.nextTok++
	tk := f.nextTok
	f.onRelease[tk] = fn
	return tk
}

// OffRelease implements driver.Framebuf.
func (f *framebuf) OffRelease(tk driver.Token) {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.onRelease, tk)
}

func (f *framebuf) resize(width, height int, views []driver.ImageView) {
	f.mu.Lock()
	f.width, f.height = width, height
	f.views = append([]driver.ImageView(nil), views...)
	f.initialized.Clear()
	for _, t := range f.inputTables {
		t.Destroy()
	}
	f.inputTables = nil
	fns := make([]driver.ResizeFunc, 0, len(f.onResize))
	for _, fn := range f.onResize {
		fns = append(fns, fn)
	}
	f.mu.Unlock()
	for _, fn := range fns {
		fn(width, height)
	}
}

// Destroy implements driver.Destroyer.
func (f *framebuf) Destroy() {
	f.mu.Lock()
	for _, t := range f.inputTables {
		t.Destroy()
	}
	f.inputTables = nil
	fns := make([]driver.ReleaseFunc, 0, len(f.onRelease))
	for _, fn := range f.onRelease {
		fns = append(fns, fn)
	}
	f.mu.Unlock()
	for _, fn := range fns {
		fn()
	}
}

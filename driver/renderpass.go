// Copyright 2022 Gustavo C. Viegas. All rights reserved.

package driver

// LoadOp identifies how an attachment's prior contents are treated
// at the start of a subpass that first references it.
type LoadOp int

// Load operations.
const (
	LoadLoad LoadOp = iota
	LoadClear
	LoadDontCare
)

// StoreOp identifies how an attachment's contents are treated at the
// end of the last subpass that references it.
type StoreOp int

// Store operations.
const (
	StoreStore StoreOp = iota
	StoreDontCare
)

// AttachRole identifies the role a render-pass attachment slot plays
// in a frame buffer, beyond how its subpasses use it: whether it is
// an ordinary color target, the depth-stencil target, or the target
// eventually presented to a swap chain.
type AttachRole int

// Attachment roles.
const (
	RoleColor AttachRole = iota
	RoleDepthStencil
	RolePresent
)

// Attachment declares a single render-pass attachment slot.
type Attachment struct {
	Format     PixelFmt
	Samples    int
	LoadOp     LoadOp
	StoreOp    StoreOp
	StencilLoad  LoadOp
	StencilStore StoreOp
	// Role identifies this attachment as the depth-stencil target or
	// the present target (spec.md §3); the zero value, RoleColor, is
	// an ordinary color target. A render pass accepts at most one
	// RolePresent and one RoleDepthStencil attachment.
	Role AttachRole
}

// Subpass declares one subpass's use of a render pass's attachments
// by index. -1 in any of Color/DS/Resolve means unused.
type Subpass struct {
	Color    []int
	Resolve  []int
	DS       int
	Input    []int
	// Wait forces a subpass dependency on the subpasses that wrote
	// the attachments this subpass reads as Input, matching the
	// teacher's subpass-dependency graph (kept from driver/vk/pass.go).
	Wait bool
}

// RenderPass is a render-pass object describing a set of attachments
// and the subpasses that read and write them, including MSAA resolve
// targets and input attachments.
//
// A RenderPass instance also owns the idle/active state machine
// described in spec.md §4.6: Begin creates fresh command buffers on
// every call (nothing is cached per Framebuf), records input barriers
// into a primary and begins the first subpass's secondary; NextSubpass
// ends the current subpass's secondary and begins the next; End ends
// the last secondary, records the output layout transitions into a
// second primary and submits [primary-begin, secondaries…, primary-end]
// as one Queue.Submit call, presenting if the frame buffer has a
// present target. MSAA resolve happens through the subpass's resolve
// targets while it records; End records no present copy and no
// timestamp-query resolve.
type RenderPass interface {
	Destroyer

	// Attachments returns the render pass's attachment declarations.
	Attachments() []Attachment
	// Subpasses returns the render pass's subpass declarations.
	Subpasses() []Subpass

	// Begin records the start of a render pass instance over fb,
	// using queue q to submit the per-subpass command buffers it
	// manages. It returns ErrAlreadyActive if called while already
	// active.
	Begin(q Queue, fb Framebuf, clear []ClearValue) error

	// NextSubpass advances from the current subpass's secondary
	// command buffer to the next, returning ErrNotActive if Begin
	// was not called first or the current subpass was already the
	// last.
	NextSubpass() (CmdBuffer, error)

	// CmdBuffer returns the secondary command buffer for the
	// currently active subpass, for recording draw/dispatch
	// commands. It returns ErrNotActive outside of an active render
	// pass instance.
	CmdBuffer() (CmdBuffer, error)

	// End ends the render pass instance, submits the recorded work
	// and presents if fb has a present target. Returns ErrNotActive
	// if not currently active.
	End() error
}

// Framebuf binds concrete image views to a RenderPass's attachment
// slots at a fixed size.
type Framebuf interface {
	Destroyer

	// Size returns the frame buffer's pixel dimensions.
	Size() (width, height int)
	// Layers returns the frame buffer's layer count.
	Layers() int
	// View returns the image view bound at attachment index i.
	View(i int) ImageView
	// Secondaries returns the number of secondary command buffers a
	// RenderPass.Begin over this frame buffer records, fixed at
	// construction (spec.md §4.5: "their count is fixed per frame
	// buffer"). A RenderPass rejects Begin when this does not equal
	// its subpass count.
	Secondaries() int

	// OnResize subscribes fn to the frame buffer's resize
	// notifications, returning a token for OffResize. No Swapchain
	// method sends them: Recreate and Present leave Framebufs as
	// they are.
	OnResize(fn ResizeFunc) Token
	// OffResize removes a subscription added by OnResize.
	OffResize(tk Token)
	// OnRelease subscribes fn to be called just before the frame
	// buffer is destroyed, returning a token for OffRelease.
	OnRelease(fn ReleaseFunc) Token
	// OffRelease removes a subscription added by OnRelease.
	OffRelease(tk Token)
}

// Copyright 2022 Gustavo C. Viegas. All rights reserved.

package driver

import "errors"

// ErrCannotPresent means the device/queue combination that created a
// Swapchain cannot present to it (e.g. the presenting queue does not
// support the surface on this platform).
var ErrCannotPresent = errors.New("driver: queue cannot present to this swapchain")

// ErrWindow means the wsi.Window passed to NewSwapchain is invalid or
// already associated with another swap chain.
var ErrWindow = errors.New("driver: invalid window")

// ErrCompositor means the platform's window compositor rejected
// swap-chain creation or configuration.
var ErrCompositor = errors.New("driver: compositor error")

// ErrSwapchain means a swap-chain operation failed for a reason not
// covered by a more specific sentinel.
var ErrSwapchain = errors.New("driver: swap chain error")

// ErrNoBackbuffer means Next was called but no backbuffer was
// available (e.g. the window was minimized or occluded).
var ErrNoBackbuffer = errors.New("driver: no backbuffer available")

// Swapchain manages a set of backbuffer images presented to a
// wsi.Window in turn.
type Swapchain interface {
	Destroyer

	// Views returns an ImageView for each backbuffer, in
	// presentation order.
	Views() []ImageView

	// Next acquires the next available backbuffer index, blocking
	// until one is available. It returns ErrNoBackbuffer if the
	// window is currently unable to present (e.g. zero-area).
	Next() (int, error)

	// Present queues the backbuffer at the given index for display.
	// It does not notify Framebufs created over this Swapchain's
	// views.
	Present(q Queue, index int) error

	// Recreate rebuilds the swap chain's backbuffers, e.g. after the
	// window changes size. Framebufs created over the old views are
	// left as they are and their OnResize subscriptions are not fired.
	Recreate() error

	// Format returns the pixel format of the swap chain's
	// backbuffers.
	Format() PixelFmt
}

// Copyright 2022 Gustavo C. Viegas. All rights reserved.

package driver

import (
	"errors"
	"fmt"
)

// Error kinds surfaced by package driver, grouped as described in
// spec.md §7.
//
// ErrInvalidArgument-class failures (out-of-range index, unsupported
// enum value, null where required, duplicate binding) are reported by
// wrapping one of the sentinels below with fmt.Errorf("...: %w", ...)
// so that the formatted parameter value travels with the error.
var (
	// ErrInvalidArgument is wrapped by every argument-validation
	// failure (out-of-range index, unsupported enum, duplicate
	// binding, ...).
	ErrInvalidArgument = errors.New("driver: invalid argument")

	// ErrNotInitialized means a required handle (most commonly a
	// scratch or destination buffer passed to an acceleration
	// structure operation) was nil.
	ErrNotInitialized = errors.New("driver: argument not initialized")

	// ErrMustBePrimary means a secondary command buffer was
	// submitted directly to a queue (spec.md §4.2).
	ErrMustBePrimary = errors.New("driver: must be executed on a primary command buffer")

	// ErrAlreadyActive means Begin was called on a render pass that
	// is already in the active state (spec.md §4.6).
	ErrAlreadyActive = errors.New("driver: render pass already active")

	// ErrNotActive means End was called on a render pass that is
	// not currently active.
	ErrNotActive = errors.New("driver: render pass not active")

	// ErrOutOfDescriptors means the global descriptor heap
	// sub-allocator (spec.md §4.1) could not find a fragment large
	// enough to satisfy a request.
	ErrOutOfDescriptors = errors.New("driver: out of descriptors")

	// ErrNoQueue means the device could not satisfy a queue
	// selection request, including the explicit priority fallback
	// chain of spec.md §9.
	ErrNoQueue = errors.New("driver: no suitable queue found")

	// ErrTooManyRenderTargets means a graphics pipeline declared
	// more than 8 color targets or more than one depth-stencil
	// target (spec.md §4.7).
	ErrTooManyRenderTargets = errors.New("driver: too many render targets")

	// ErrWrongQueue means a render pass whose frame buffer declares a
	// present target was begun on a queue other than the device's
	// graphics queue (spec.md §4.6).
	ErrWrongQueue = errors.New("driver: present target requires the graphics queue")

	// ErrDeviceLost is the RuntimeException-class failure raised
	// when the native driver reports an unrecoverable device-lost
	// condition (e.g. a TDR). Equivalent to ErrFatal but spelled out
	// for call sites that specifically check for it.
	ErrDeviceLost = ErrFatal
)

// invalidArgf wraps ErrInvalidArgument with a formatted, human
// readable message carrying the offending parameter values, per
// spec.md §7 ("all fatal errors carry a human-readable message with
// parameter values formatted in").
func invalidArgf(format string, args ...any) error {
	return fmt.Errorf("driver: invalid argument: "+format+": %w", append(args, ErrInvalidArgument)...)
}

// runtimef wraps a native result code into a RuntimeException-class
// failure (spec.md §7).
func runtimef(op string, err error) error {
	return fmt.Errorf("driver: %s failed: %w", op, err)
}

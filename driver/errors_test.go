// Copyright 2024 Gustavo C. Viegas. All rights reserved.

package driver

import (
	"errors"
	"strings"
	"testing"
)

func TestInvalidArgf(t *testing.T) {
	err := invalidArgf("index %d out of range [0, %d)", 5, 3)
	if !errors.Is(err, ErrInvalidArgument) {
		t.Error("invalidArgf: result does not wrap ErrInvalidArgument")
	}
	msg := err.Error()
	if !strings.Contains(msg, "5") || !strings.Contains(msg, "3") {
		t.Errorf("invalidArgf: formatted parameters missing from message: %q", msg)
	}
}

func TestRuntimef(t *testing.T) {
	cause := errors.New("native call failed")
	err := runtimef("CreateBuffer", cause)
	if !errors.Is(err, cause) {
		t.Error("runtimef: result does not wrap the underlying cause")
	}
	if !strings.Contains(err.Error(), "CreateBuffer") {
		t.Errorf("runtimef: operation name missing from message: %q", err.Error())
	}
}

func TestErrorSentinelsAreDistinct(t *testing.T) {
	sentinels := []error{
		ErrInvalidArgument,
		ErrNotInitialized,
		ErrMustBePrimary,
		ErrAlreadyActive,
		ErrNotActive,
		ErrOutOfDescriptors,
		ErrNoQueue,
		ErrTooManyRenderTargets,
	}
	for i, a := range sentinels {
		for j, b := range sentinels {
			if i != j && errors.Is(a, b) {
				t.Errorf("sentinel %d (%v) unexpectedly matches sentinel %d (%v)", i, a, j, b)
			}
		}
	}
	if !errors.Is(ErrDeviceLost, ErrFatal) {
		t.Error("ErrDeviceLost must wrap ErrFatal")
	}
}

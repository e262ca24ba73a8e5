// Copyright 2024 Gustavo C. Viegas. All rights reserved.

package driver_test

import (
	"testing"

	"gviegas/neo3/driver"
)

func TestFeaturesContains(t *testing.T) {
	f := driver.FMeshShading | driver.FRayTracing
	if !f.Contains(driver.FMeshShading) {
		t.Error("Features.Contains: expected FMeshShading to be reported present")
	}
	if !f.Contains(driver.FMeshShading | driver.FRayTracing) {
		t.Error("Features.Contains: expected the exact combined mask to be reported present")
	}
	if f.Contains(driver.FAccelStruct) {
		t.Error("Features.Contains: expected FAccelStruct to be reported absent")
	}
	if !f.Contains(driver.FNone) {
		t.Error("Features.Contains: FNone must be contained in any mask")
	}
}

func TestDefaultQueuePriorityFallback(t *testing.T) {
	chain := driver.DefaultQueuePriorityFallback
	want := []driver.QueuePriority{driver.PRealtime, driver.PHigh, driver.PNormal}
	if len(chain) != len(want) {
		t.Fatalf("DefaultQueuePriorityFallback: length = %d, want %d", len(chain), len(want))
	}
	for i := range want {
		if chain[i] != want[i] {
			t.Errorf("DefaultQueuePriorityFallback[%d] = %v, want %v (highest-to-lowest order)", i, chain[i], want[i])
		}
	}
}

// Copyright 2022 Gustavo C. Viegas. All rights reserved.

package vk

import "gviegas/neo3/driver"

// accelStruct implements driver.AccelStruct. hal exposes no
// acceleration-structure build API (VkAccelerationStructureKHR has
// no hal equivalent), so this backend only tracks the bookkeeping
// driver.AccelStruct promises — backing buffer range and geometry —
// and never actually builds a traversable structure:
// CmdBuffer.BuildAccelStruct/CopyAccelStruct are no-ops here, and a
// pipeline that tries to trace rays against one fails at
// NewRayPipeline with ErrFatal before it would ever matter.
type accelStruct struct {
	gpu    *gpu
	kind   driver.AccelKind
	buf    driver.Buffer
	offset int64
	size   int64

	geom      []driver.BLASGeometry
	instances driver.TLASInput
}

func newAccelStruct(g *gpu, kind driver.AccelKind, buf driver.Buffer, offset, size int64) (driver.AccelStruct, error) {
	if buf == nil || size <= 0 {
		return nil, driver.ErrInvalidArgument
	}
	return &accelStruct{gpu: g, kind: kind, buf: buf, offset: offset, size: size}, nil
}

// Kind implements driver.AccelStruct.
func (a *accelStruct) Kind() driver.AccelKind { return a.kind }

// Buffer implements driver.AccelStruct.
func (a *accelStruct) Buffer() (driver.Buffer, int64, int64) { return a.buf, a.offset, a.size }

// ScratchSize implements driver.AccelStruct.
func (a *accelStruct) ScratchSize() int64 {
	scratch, _, _ := computeAccelStructSizes(a.gpu, a.kind, a.geomArg())
	return scratch
}

func (a *accelStruct) geomArg() any {
	if a.kind == driver.ATLAS {
		return a.instances
	}
	return a.geom
}

// SetGeometry implements driver.AccelStruct.
func (a *accelStruct) SetGeometry(geom []driver.BLASGeometry) error {
	if a.kind != driver.ABLAS {
		return driver.ErrInvalidArgument
	}
	a.geom = geom
	return nil
}

// SetInstances implements driver.AccelStruct.
func (a *accelStruct) SetInstances(input driver.TLASInput) error {
	if a.kind != driver.ATLAS {
		return driver.ErrInvalidArgument
	}
	a.instances = input
	return nil
}

// Destroy implements driver.Destroyer. accelStruct owns no native
// resource beyond the caller-provided backing buffer.
func (a *accelStruct) Destroy() {}

// computeAccelStructSizes estimates BLAS/TLAS scratch and result
// sizes from geometry counts using the same 64-byte-per-primitive,
// 128-byte-header heuristic the teacher's driver/vk used for its
// pre-build size query fallback path, since hal has no device-side
// vkGetAccelerationStructureBuildSizesKHR equivalent to ask instead.
func computeAccelStructSizes(g *gpu, kind driver.AccelKind, geom any) (scratch, result int64, err error) {
	const (
		header    = 128
		perPrim   = 64
		perInst   = 64
		scratchFac = 2
	)
	var prims int64
	switch kind {
	case driver.ABLAS:
		bg, _ := geom.([]driver.BLASGeometry)
		for _, entry := range bg {
			switch {
			case entry.Triangles != nil:
				prims += int64(entry.Triangles.VertexCount) / 3
			case entry.AABBs != nil:
				prims += int64(entry.AABBs.Count)
			}
		}
	case driver.ATLAS:
		in, _ := geom.(driver.TLASInput)
		if in.Count > 0 {
			prims = int64(in.Count)
		} else {
			prims = int64(len(in.Instances))
		}
		result = header + prims*perInst
	default:
		return 0, 0, driver.ErrInvalidArgument
	}
	if kind == driver.ABLAS {
		result = header + prims*perPrim
	}
	scratch = result * scratchFac
	align := g.dlimits.MinUniformBufferOffsetAlignment
	if align > 0 {
		scratch = (scratch + align - 1) / align * align
		result = (result + align - 1) / align * align
	}
	return scratch, result, nil
}

// Copyright 2022 Gustavo C. Viegas. All rights reserved.

package driver

// AccelKind identifies whether an AccelStruct is a bottom-level
// (geometry) or top-level (instance) acceleration structure.
type AccelKind int

// Acceleration structure kinds.
const (
	ABLAS AccelKind = iota
	ATLAS
)

// GeomTriangles describes one triangle-geometry entry of a BLAS
// build, referencing vertex and (optional) index buffers by device
// address range.
type GeomTriangles struct {
	VertexBuf        Buffer
	VertexOffset     int64
	VertexStride     int64
	VertexFormat     VertexFmt
	VertexCount      int
	IndexBuf         Buffer
	IndexOffset      int64
	IndexFormat      IndexFmt
	IndexCount       int
	TransformBuf     Buffer
	TransformOffset  int64
	Opaque           bool
}

// GeomAABBs describes one procedural-AABB geometry entry of a BLAS
// build.
type GeomAABBs struct {
	Buf     Buffer
	Offset  int64
	Stride  int64
	Count   int
	Opaque  bool
}

// BLASGeometry is the union of geometry kinds a BLAS build accepts.
// Exactly one of Triangles or AABBs is populated.
type BLASGeometry struct {
	Triangles *GeomTriangles
	AABBs     *GeomAABBs
}

// Instance describes one entry of a TLAS build: a reference to a
// BLAS plus its instance transform and shader-binding-table offset.
type Instance struct {
	BLAS            AccelStruct
	Transform       [12]float32 // row-major 3x4
	InstanceID      uint32
	Mask            uint8
	SBTOffset       uint32
	Opaque          bool
	FlipFacing      bool
}

// TLASInput describes a TLAS build: either a host-visible array of
// Instance or a device buffer already holding them in native layout.
type TLASInput struct {
	Instances    []Instance
	Buf          Buffer
	Offset       int64
	Count        int
}

// AccelStruct is a bottom-level or top-level acceleration structure,
// built and consumed by ray-tracing pipelines.
//
// Building, updating and copying an AccelStruct are recorded onto a
// CmdBuffer (BuildAccelStruct/CopyAccelStruct); AccelStruct itself
// only identifies the backing buffer range and exposes the sizes
// GPU.ComputeAccelStructSizes computed for it.
type AccelStruct interface {
	Destroyer

	// Kind returns whether this is a BLAS or TLAS.
	Kind() AccelKind

	// Buffer returns the backing buffer and the byte range within it
	// that holds the structure's built representation.
	Buffer() (buf Buffer, offset, size int64)

	// ScratchSize returns the scratch-buffer size required to build
	// or update this structure, as computed by
	// GPU.ComputeAccelStructSizes and aligned to
	// Limits.MinUniformBufferOffsetAlignment.
	ScratchSize() int64

	// SetGeometry sets a BLAS's build geometry. It is an error to
	// call this on a TLAS.
	SetGeometry(geom []BLASGeometry) error

	// SetInstances sets a TLAS's build input. It is an error to call
	// this on a BLAS.
	SetInstances(input TLASInput) error
}

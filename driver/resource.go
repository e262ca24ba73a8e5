// Copyright 2022 Gustavo C. Viegas. All rights reserved.

package driver

// Usage is a bitmask of the ways a resource (buffer or image) may be
// used. The hal-based backends do not validate combinations: they pass
// the translated flags to hal, and a creation that hal rejects fails
// with ErrNoDeviceMemory.
type Usage int

// Resource usage flags.
const (
	UCopySrc Usage = 1 << iota
	UCopyDst
	UShaderRead
	UShaderWrite
	UVertexBuf
	UIndexBuf
	UConstBuf
	URenderTarget
	UDSTarget
	UIndirectBuf
	UShaderConst
	UAccelStruct
	UAccelStructInput
	UAccelStructScratch
)

// BufferKind further qualifies a buffer beyond Usage, distinguishing
// host-visible staging buffers from device-local ones so that
// backends can pick the right memory type/heap.
type BufferKind int

// Buffer kinds.
const (
	// BDefault is backed by device-local memory.
	BDefault BufferKind = iota
	// BShared is backed by host-visible, host-coherent memory
	// suitable for a CPU-to-GPU staging buffer.
	BShared
	// BReadback is backed by host-visible memory readable on the
	// CPU, suitable for a GPU-to-CPU read-back buffer.
	BReadback
)

// Buffer is a linear, untyped allocation of device or host memory.
type Buffer interface {
	Destroyer

	// Size returns the buffer's size in bytes.
	Size() int64

	// Usage returns the usage flags the buffer was created with.
	Usage() Usage

	// Bytes returns a byte slice over the buffer's memory. The
	// hal-based backends return nil for every buffer kind, BShared
	// and BReadback included.
	Bytes() []byte
}

// PixelFmt identifies an image's pixel layout.
type PixelFmt int

// FInternal is set on PixelFmt values reserved for internal or
// platform-dependent uses (e.g. swap-chain-only formats); such
// formats are rejected by NewImage outside of swap-chain creation.
const FInternal PixelFmt = 1 << 30

// IsInternal reports whether pf is reserved for internal use.
func (pf PixelFmt) IsInternal() bool { return pf&FInternal != 0 }

// Pixel formats.
const (
	FInvalid PixelFmt = iota
	RGBA8un
	RGBA8sRGB
	BGRA8un
	BGRA8sRGB
	RGBA16f
	RGBA32f
	RG8un
	RG16f
	R8un
	R16f
	R32f
	D16un
	D32f
	D24unS8ui
	D32fS8ui
)

// Dim3D is a three-dimensional extent.
type Dim3D struct{ Width, Height, Depth int }

// Off3D is a three-dimensional offset.
type Off3D struct{ X, Y, Z int }

// ViewType identifies how an ImageView's backing image is
// interpreted.
type ViewType int

// View types.
const (
	VT1D ViewType = iota
	VT1DArray
	VT2D
	VT2DArray
	VTCube
	VTCubeArray
	VT3D
)

// Image is a (possibly multisampled, mip-mapped, layered) texture
// resource.
type Image interface {
	Destroyer

	// Format returns the image's pixel format.
	Format() PixelFmt
	// Size returns the image's base-level extent.
	Size() Dim3D
	// Layers returns the number of array layers.
	Layers() int
	// Levels returns the number of mip levels.
	Levels() int
	// Samples returns the multisample sample count (1 for
	// non-multisampled images).
	Samples() int
	// Usage returns the usage flags the image was created with.
	Usage() Usage

	// NewView creates a view over a layer/level range of the image.
	NewView(vt ViewType, layer, layers, level, levels int) (ImageView, error)
}

// ImageView is a typed, range-bound view into an Image, used as a
// render target, input attachment, sampled texture or descriptor.
type ImageView interface {
	Destroyer

	// Image returns the view's backing image.
	Image() Image
	// Type returns the view's interpretation.
	Type() ViewType
}

// Filter selects the sampling filter used when magnifying or
// minifying a texture, and between mip levels.
type Filter int

// Filters.
const (
	FNearest Filter = iota
	FLinear
)

// AddrMode selects how out-of-range texture coordinates are handled.
type AddrMode int

// Addressing modes.
const (
	AWrap AddrMode = iota
	AMirror
	AClamp
	ABorder
)

// Sampling describes a sampler's configuration.
type Sampling struct {
	Min, Mag, Mip   Filter
	AddrU, AddrV, AddrW AddrMode
	MaxAniso        int
	MinLOD, MaxLOD  float32
	CmpFunc         CmpFunc
	Compare         bool
}

// Sampler is an immutable sampling-state object bound to texture
// descriptors.
type Sampler interface {
	Destroyer
}

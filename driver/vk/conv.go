// Copyright 2022 Gustavo C. Viegas. All rights reserved.

// Package vk implements the Vulkan-like driver.Driver backend,
// built on top of github.com/gogpu/wgpu's hal.Backend for the Vulkan
// variant rather than a direct cgo binding to the system's Vulkan
// loader (the teacher's original approach, kept only as read-only
// reference in DESIGN.md).
package vk

import (
	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"

	"gviegas/neo3/driver"
)

// pixelFmt translates a driver.PixelFmt into the gputypes.TextureFormat
// the hal layer expects.
func pixelFmt(pf driver.PixelFmt) gputypes.TextureFormat {
	switch pf {
	case driver.RGBA8un:
		return gputypes.TextureFormatRGBA8Unorm
	case driver.RGBA8sRGB:
		return gputypes.TextureFormatRGBA8UnormSrgb
	case driver.BGRA8un:
		return gputypes.TextureFormatBGRA8Unorm
	case driver.BGRA8sRGB:
		return gputypes.TextureFormatBGRA8UnormSrgb
	case driver.D32f:
		return gputypes.TextureFormatDepth32Float
	case driver.D24unS8ui:
		return gputypes.TextureFormatDepth24Plus
	default:
		return gputypes.TextureFormatRGBA8Unorm
	}
}

// bufferUsage translates driver.Usage into the gputypes.BufferUsage
// mask hal.BufferDescriptor expects; mapUsageFor adds the bits for a
// driver.BufferKind.
func bufferUsage(usg driver.Usage) gputypes.BufferUsage {
	var out gputypes.BufferUsage
	if usg&driver.UCopySrc != 0 {
		out |= gputypes.BufferUsageCopySrc
	}
	if usg&driver.UCopyDst != 0 {
		out |= gputypes.BufferUsageCopyDst
	}
	if usg&driver.UVertexBuf != 0 {
		out |= gputypes.BufferUsageVertex
	}
	if usg&driver.UIndexBuf != 0 {
		out |= gputypes.BufferUsageIndex
	}
	if usg&driver.UConstBuf != 0 {
		out |= gputypes.BufferUsageUniform
	}
	if usg&(driver.UShaderRead|driver.UShaderWrite) != 0 {
		out |= gputypes.BufferUsageStorage
	}
	if usg&driver.UIndirectBuf != 0 {
		out |= gputypes.BufferUsageIndirect
	}
	return out
}

// textureUsage translates driver.Usage into a gputypes.TextureUsage
// mask.
func textureUsage(usg driver.Usage) gputypes.TextureUsage {
	var out gputypes.TextureUsage
	if usg&driver.UCopySrc != 0 {
		out |= gputypes.TextureUsageCopySrc
	}
	if usg&driver.UCopyDst != 0 {
		out |= gputypes.TextureUsageCopyDst
	}
	if usg&driver.UShaderRead != 0 {
		out |= gputypes.TextureUsageTextureBinding
	}
	if usg&driver.UShaderWrite != 0 {
		out |= gputypes.TextureUsageStorageBinding
	}
	if usg&(driver.URenderTarget|driver.UDSTarget) != 0 {
		out |= gputypes.TextureUsageRenderAttachment
	}
	return out
}

// topology translates driver.Topology into gputypes.PrimitiveTopology.
func topology(t driver.Topology) gputypes.PrimitiveTopology {
	switch t {
	case driver.TLineList:
		return gputypes.PrimitiveTopologyLineList
	case driver.TLineStrip:
		return gputypes.PrimitiveTopologyLineStrip
	case driver.TTriangleStrip:
		return gputypes.PrimitiveTopologyTriangleStrip
	case driver.TPointList:
		return gputypes.PrimitiveTopologyPointList
	default:
		return gputypes.PrimitiveTopologyTriangleList
	}
}

// indexFmt translates driver.IndexFmt into gputypes.IndexFormat.
func indexFmt(f driver.IndexFmt) gputypes.IndexFormat {
	if f == driver.Index16 {
		return gputypes.IndexFormatUint16
	}
	return gputypes.IndexFormatUint32
}

// shaderStages translates a driver.Stage mask into gputypes.ShaderStages.
// Only the vertex, fragment and compute stages are translated; every
// other stage (mesh/task/ray-tracing included) is dropped from the mask,
// since the Vulkan-like backend here targets hal's rasterization/compute
// surface only.
func shaderStages(s driver.Stage) gputypes.ShaderStages {
	var out gputypes.ShaderStages
	if s&driver.SVertex != 0 {
		out |= gputypes.ShaderStageVertex
	}
	if s&driver.SFragment != 0 {
		out |= gputypes.ShaderStageFragment
	}
	if s&driver.SShaderCompute != 0 {
		out |= gputypes.ShaderStageCompute
	}
	return out
}

// addrMode translates driver.AddrMode into gputypes.AddressMode.
func addrMode(a driver.AddrMode) gputypes.AddressMode {
	switch a {
	case driver.AMirror:
		return gputypes.AddressModeMirrorRepeat
	case driver.AClamp:
		return gputypes.AddressModeClampToEdge
	case driver.ABorder:
		return gputypes.AddressModeClampToEdge
	default:
		return gputypes.AddressModeRepeat
	}
}

// filterMode translates driver.Filter into gputypes.FilterMode.
func filterMode(f driver.Filter) gputypes.FilterMode {
	if f == driver.FLinear {
		return gputypes.FilterModeLinear
	}
	return gputypes.FilterModeNearest
}

// cmpFunc translates driver.CmpFunc into gputypes.CompareFunction.
func cmpFunc(c driver.CmpFunc) gputypes.CompareFunction {
	switch c {
	case driver.CmpLess:
		return gputypes.CompareFunctionLess
	case driver.CmpEqual:
		return gputypes.CompareFunctionEqual
	case driver.CmpLessEqual:
		return gputypes.CompareFunctionLessEqual
	case driver.CmpGreater:
		return gputypes.CompareFunctionGreater
	case driver.CmpNotEqual:
		return gputypes.CompareFunctionNotEqual
	case driver.CmpGreaterEqual:
		return gputypes.CompareFunctionGreaterEqual
	case driver.CmpAlways:
		return gputypes.CompareFunctionAlways
	default:
		return gputypes.CompareFunctionNever
	}
}

// bufferBarrierUsage translates a driver.Access pair into the
// gputypes.BufferUsage "old/new" pair hal.BufferBarrier expects,
// approximating the Sync/Access split of spec.md §4.4 onto hal's
// coarser usage-transition model.
func bufferBarrierUsage(before, after driver.Access) hal.BufferUsageTransition {
	return hal.BufferUsageTransition{
		OldUsage: accessToBufferUsage(before),
		NewUsage: accessToBufferUsage(after),
	}
}

func accessToBufferUsage(a driver.Access) gputypes.BufferUsage {
	var out gputypes.BufferUsage
	if a&driver.AVertexBufRead != 0 {
		out |= gputypes.BufferUsageVertex
	}
	if a&driver.AIndexBufRead != 0 {
		out |= gputypes.BufferUsageIndex
	}
	if a&driver.AConstBufRead != 0 {
		out |= gputypes.BufferUsageUniform
	}
	if a&(driver.AShaderRead|driver.AShaderWrite|driver.AShaderReadWrite) != 0 {
		out |= gputypes.BufferUsageStorage
	}
	if a&driver.ACopySrc != 0 {
		out |= gputypes.BufferUsageCopySrc
	}
	if a&driver.ACopyDst != 0 {
		out |= gputypes.BufferUsageCopyDst
	}
	return out
}

// textureBarrierUsage translates a driver.Layout pair into the
// gputypes.TextureUsage "old/new" pair hal.TextureBarrier expects.
func textureBarrierUsage(before, after driver.Layout) hal.TextureUsageTransition {
	return hal.TextureUsageTransition{
		OldUsage: layoutToTextureUsage(before),
		NewUsage: layoutToTextureUsage(after),
	}
}

func layoutToTextureUsage(l driver.Layout) gputypes.TextureUsage {
	switch l {
	case driver.LColorTarget, driver.LDepthWrite:
		return gputypes.TextureUsageRenderAttachment
	case driver.LDepthRead, driver.LShaderRead:
		return gputypes.TextureUsageTextureBinding
	case driver.LCopySrc, driver.LResolveSrc:
		return gputypes.TextureUsageCopySrc
	case driver.LCopyDst, driver.LResolveDst:
		return gputypes.TextureUsageCopyDst
	default:
		return 0
	}
}

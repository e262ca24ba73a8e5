// Copyright 2024 Gustavo C. Viegas. All rights reserved.

package vk

import (
	"testing"

	"github.com/gogpu/gputypes"

	"gviegas/neo3/driver"
)

func TestPixelFmt(t *testing.T) {
	cases := []struct {
		in   driver.PixelFmt
		want gputypes.TextureFormat
	}{
		{driver.RGBA8un, gputypes.TextureFormatRGBA8Unorm},
		{driver.RGBA8sRGB, gputypes.TextureFormatRGBA8UnormSrgb},
		{driver.BGRA8un, gputypes.TextureFormatBGRA8Unorm},
		{driver.BGRA8sRGB, gputypes.TextureFormatBGRA8UnormSrgb},
		{driver.D32f, gputypes.TextureFormatDepth32Float},
	}
	for _, c := range cases {
		if have := pixelFmt(c.in); have != c.want {
			t.Errorf("pixelFmt(%v) = %v, want %v", c.in, have, c.want)
		}
	}
}

func TestTopology(t *testing.T) {
	cases := []struct {
		in   driver.Topology
		want gputypes.PrimitiveTopology
	}{
		{driver.TTriangleList, gputypes.PrimitiveTopologyTriangleList},
		{driver.TTriangleStrip, gputypes.PrimitiveTopologyTriangleStrip},
		{driver.TLineList, gputypes.PrimitiveTopologyLineList},
		{driver.TLineStrip, gputypes.PrimitiveTopologyLineStrip},
		{driver.TPointList, gputypes.PrimitiveTopologyPointList},
	}
	for _, c := range cases {
		if have := topology(c.in); have != c.want {
			t.Errorf("topology(%v) = %v, want %v", c.in, have, c.want)
		}
	}
}

func TestIndexFmt(t *testing.T) {
	if have := indexFmt(driver.Index16); have != gputypes.IndexFormatUint16 {
		t.Errorf("indexFmt(Index16) = %v, want Uint16", have)
	}
	if have := indexFmt(driver.Index32); have != gputypes.IndexFormatUint32 {
		t.Errorf("indexFmt(Index32) = %v, want Uint32", have)
	}
}

func TestBufferUsage(t *testing.T) {
	in := driver.UCopySrc | driver.UCopyDst | driver.UVertexBuf | driver.UIndexBuf | driver.UConstBuf | driver.UIndirectBuf
	out := bufferUsage(in)
	want := gputypes.BufferUsageCopySrc | gputypes.BufferUsageCopyDst | gputypes.BufferUsageVertex |
		gputypes.BufferUsageIndex | gputypes.BufferUsageUniform | gputypes.BufferUsageIndirect
	if out != want {
		t.Errorf("bufferUsage(%v) = %v, want %v", in, out, want)
	}
}

func TestTextureUsage(t *testing.T) {
	in := driver.UCopySrc | driver.UShaderRead | driver.URenderTarget
	out := textureUsage(in)
	want := gputypes.TextureUsageCopySrc | gputypes.TextureUsageTextureBinding | gputypes.TextureUsageRenderAttachment
	if out != want {
		t.Errorf("textureUsage(%v) = %v, want %v", in, out, want)
	}
}

func TestShaderStages(t *testing.T) {
	in := driver.SVertex | driver.SFragment | driver.SShaderCompute
	out := shaderStages(in)
	want := gputypes.ShaderStageVertex | gputypes.ShaderStageFragment | gputypes.ShaderStageCompute
	if out != want {
		t.Errorf("shaderStages(%v) = %v, want %v", in, out, want)
	}
}

func TestAddrModeAndFilterMode(t *testing.T) {
	if have := addrMode(driver.AMirror); have != gputypes.AddressModeMirrorRepeat {
		t.Errorf("addrMode(AMirror) = %v, want MirrorRepeat", have)
	}
	if have := addrMode(driver.AWrap); have != gputypes.AddressModeRepeat {
		t.Errorf("addrMode(AWrap) = %v, want Repeat", have)
	}
	if have := filterMode(driver.FLinear); have != gputypes.FilterModeLinear {
		t.Errorf("filterMode(FLinear) = %v, want Linear", have)
	}
	if have := filterMode(driver.FNearest); have != gputypes.FilterModeNearest {
		t.Errorf("filterMode(FNearest) = %v, want Nearest", have)
	}
}

func TestCmpFunc(t *testing.T) {
	cases := []struct {
		in   driver.CmpFunc
		want gputypes.CompareFunction
	}{
		{driver.CmpLess, gputypes.CompareFunctionLess},
		{driver.CmpEqual, gputypes.CompareFunctionEqual},
		{driver.CmpLessEqual, gputypes.CompareFunctionLessEqual},
		{driver.CmpGreater, gputypes.CompareFunctionGreater},
		{driver.CmpNotEqual, gputypes.CompareFunctionNotEqual},
		{driver.CmpGreaterEqual, gputypes.CompareFunctionGreaterEqual},
		{driver.CmpAlways, gputypes.CompareFunctionAlways},
		{driver.CmpNever, gputypes.CompareFunctionNever},
	}
	for _, c := range cases {
		if have := cmpFunc(c.in); have != c.want {
			t.Errorf("cmpFunc(%v) = %v, want %v", c.in, have, c.want)
		}
	}
}

func TestAccessToBufferUsage(t *testing.T) {
	in := driver.AVertexBufRead | driver.AIndexBufRead | driver.AConstBufRead | driver.ACopySrc | driver.ACopyDst
	out := accessToBufferUsage(in)
	want := gputypes.BufferUsageVertex | gputypes.BufferUsageIndex | gputypes.BufferUsageUniform |
		gputypes.BufferUsageCopySrc | gputypes.BufferUsageCopyDst
	if out != want {
		t.Errorf("accessToBufferUsage(%v) = %v, want %v", in, out, want)
	}
}

func TestLayoutToTextureUsage(t *testing.T) {
	cases := []struct {
		in   driver.Layout
		want gputypes.TextureUsage
	}{
		{driver.LColorTarget, gputypes.TextureUsageRenderAttachment},
		{driver.LDepthWrite, gputypes.TextureUsageRenderAttachment},
		{driver.LDepthRead, gputypes.TextureUsageTextureBinding},
		{driver.LShaderRead, gputypes.TextureUsageTextureBinding},
		{driver.LCopySrc, gputypes.TextureUsageCopySrc},
		{driver.LCopyDst, gputypes.TextureUsageCopyDst},
	}
	for _, c := range cases {
		if have := layoutToTextureUsage(c.in); have != c.want {
			t.Errorf("layoutToTextureUsage(%v) = %v, want %v", c.in, have, c.want)
		}
	}
}

func TestBufferBarrierUsage(t *testing.T) {
	tr := bufferBarrierUsage(driver.AVertexBufRead, driver.ACopyDst)
	if tr.OldUsage != gputypes.BufferUsageVertex {
		t.Errorf("bufferBarrierUsage: OldUsage = %v, want Vertex", tr.OldUsage)
	}
	if tr.NewUsage != gputypes.BufferUsageCopyDst {
		t.Errorf("bufferBarrierUsage: NewUsage = %v, want CopyDst", tr.NewUsage)
	}
}

func TestTextureBarrierUsage(t *testing.T) {
	tr := textureBarrierUsage(driver.LShaderRead, driver.LColorTarget)
	if tr.OldUsage != gputypes.TextureUsageTextureBinding {
		t.Errorf("textureBarrierUsage: OldUsage = %v, want TextureBinding", tr.OldUsage)
	}
	if tr.NewUsage != gputypes.TextureUsageRenderAttachment {
		t.Errorf("textureBarrierUsage: NewUsage = %v, want RenderAttachment", tr.NewUsage)
	}
}

// Copyright 2022 Gustavo C. Viegas. All rights reserved.

package vk

import (
	"github.com/gogpu/wgpu/hal"

	"gviegas/neo3/driver"
)

// buffer implements driver.Buffer atop a hal.Buffer.
type buffer struct {
	gpu   *gpu
	h     hal.Buffer
	size  int64
	usage driver.Usage
	kind  driver.BufferKind
}

func (b *buffer) Size() int64          { return b.size }
func (b *buffer) Usage() driver.Usage  { return b.usage }
func (b *buffer) Bytes() []byte        { return nil } // hal exposes no direct mapped-pointer accessor at this layer; staging/readback access goes through Queue.WriteBuffer/CopyBufferToBuffer instead.
func (b *buffer) Destroy()             { b.gpu.dev.DestroyBuffer(b.h) }
func (b *buffer) native() hal.Buffer    { return b.h }

// image implements driver.Image atop a hal.Texture.
type image struct {
	gpu     *gpu
	h       hal.Texture
	format  driver.PixelFmt
	size    driver.Dim3D
	layers  int
	levels  int
	samples int
	usage   driver.Usage
}

func (i *image) Format() driver.PixelFmt { return i.format }
func (i *image) Size() driver.Dim3D      { return i.size }
func (i *image) Layers() int             { return i.layers }
func (i *image) Levels() int             { return i.levels }
func (i *image) Samples() int            { return i.samples }
func (i *image) Usage() driver.Usage     { return i.usage }
func (i *image) Destroy()                { i.gpu.dev.DestroyTexture(i.h) }

func (i *image) NewView(vt driver.ViewType, layer, layers, level, levels int) (driver.ImageView, error) {
	hv, err := i.gpu.dev.CreateTextureView(i.h, &hal.TextureViewDescriptor{
		Format:         pixelFmt(i.format),
		BaseArrayLayer: uint32(layer),
		BaseMipLevel:   uint32(level),
	})
	if err != nil {
		return nil, driver.ErrInvalidArgument
	}
	return &imageView{gpu: i.gpu, img: i, h: hv, vt: vt}, nil
}

// imageView implements driver.ImageView atop a hal.TextureView.
//
// presentSC/presentIdx are set only on a view handed out by
// swapchain.Next, letting a RenderPass.End over a frame buffer whose
// present-role attachment is bound to this view present automatically
// (spec.md §4.6) instead of requiring a separate Swapchain.Present
// call.
type imageView struct {
	gpu *gpu
	img *image
	h   hal.TextureView
	vt  driver.ViewType

	presentSC  *swapchain
	presentIdx int
}

func (v *imageView) Image() driver.Image    { return v.img }
func (v *imageView) Type() driver.ViewType  { return v.vt }
func (v *imageView) Destroy()               { v.gpu.dev.DestroyTextureView(v.h) }
func (v *imageView) native() hal.TextureView { return v.h }

// sampler implements driver.Sampler atop a hal.Sampler.
type sampler struct {
	h hal.Sampler
	g *gpu
}

func (s *sampler) Destroy() {
	if s.g != nil {
		s.g.dev.DestroySampler(s.h)
	}
}

// shaderCode is backend-specific bytecode: a SPIR-V-like word stream
// wrapped and validated by gpu.NewShaderCode.
type shaderCode struct {
	spirv []uint32
}

// Copyright 2022 Gustavo C. Viegas. All rights reserved.

package vk

import (
	"time"

	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"

	"gviegas/neo3/driver"
	"gviegas/neo3/wsi"
)

// gpu implements driver.GPU atop a single hal.Device/hal.Queue pair.
//
// The Vulkan-like backend exposes driver.Queue as a thin, independently
// timelined wrapper around the one hal.Queue a hal.OpenDevice provides
// (hal has no multi-queue API); QueueKind/QueuePriority on this backend
// are therefore bookkeeping only, not a claim that distinct native
// queue families back them. This is a deliberate simplification noted
// in DESIGN.md: the richer multi-queue surface of spec.md §4.1/§4.2 is
// implemented at the driver.Queue interface level, but on this backend
// every Queue ultimately serializes through the same hal.Queue.Submit.
type gpu struct {
	inst    hal.Instance
	adapter hal.Adapter
	dev     hal.Device
	queue   hal.Queue
	exposed hal.ExposedAdapter

	graphics *queue
	compute  *queue
	transfer *queue

	dlimits driver.Limits
}

func newGPU(inst hal.Instance, exposed hal.ExposedAdapter, open hal.OpenDevice) (*gpu, error) {
	g := &gpu{
		inst:    inst,
		adapter: exposed.Adapter,
		dev:     open.Device,
		queue:   open.Queue,
		exposed: exposed,
	}
	g.dlimits = convLimits(exposed.Capabilities)
	fence, err := g.dev.CreateFence()
	if err != nil {
		return nil, driver.ErrNoDevice
	}
	g.graphics = &queue{gpu: g, kind: driver.QGraphics, priority: driver.PNormal, fence: fence}
	g.compute = g.graphics
	g.transfer = g.graphics
	return g, nil
}

func convLimits(caps hal.Capabilities) driver.Limits {
	return driver.Limits{
		MaxImage2D:                      int(caps.Limits.MaxTextureDimension2D),
		MaxImage3D:                      int(caps.Limits.MaxTextureDimension3D),
		MaxImageCube:                    int(caps.Limits.MaxTextureDimension2D),
		MaxLayers:                       int(caps.Limits.MaxTextureArrayLayers),
		MaxDescHeaps:                    int(caps.Limits.MaxBindGroups),
		MaxVertexIn:                     int(caps.Limits.MaxVertexAttributes),
		MaxDispatch:                     [3]int{int(caps.Limits.MaxComputeWorkgroupsPerDimension), int(caps.Limits.MaxComputeWorkgroupsPerDimension), int(caps.Limits.MaxComputeWorkgroupsPerDimension)},
		MinUniformBufferOffsetAlignment: int64(caps.AlignmentsMask.BufferCopyOffset),
		MaxViewports:                    1,
		MaxColorTargets:                 8,
	}
}

// Queue implements driver.GPU.
func (g *gpu) Queue(kind driver.QueueKind) driver.Queue {
	switch kind {
	case driver.QCompute:
		return g.compute
	case driver.QTransfer:
		return g.transfer
	default:
		return g.graphics
	}
}

// NewQueue implements driver.GPU. Since hal exposes a single queue per
// device, every additional queue aliases the same hal.Queue under an
// independent fence/timeline, per the simplification documented on
// the gpu type.
func (g *gpu) NewQueue(kind driver.QueueKind, priority driver.QueuePriority) (driver.Queue, error) {
	fence, err := g.dev.CreateFence()
	if err != nil {
		return nil, driver.ErrNoQueue
	}
	return &queue{gpu: g, kind: kind, priority: priority, fence: fence}, nil
}

// Limits implements driver.GPU.
func (g *gpu) Limits() *driver.Limits { return &g.dlimits }

// Features implements driver.GPU.
func (g *gpu) Features() driver.Features {
	var f driver.Features
	// gogpu/wgpu's Vulkan backend surfaces ray tracing and mesh
	// shading as gputypes.Features bits when the device extensions
	// are present; absent a stable constant name in the pack, feature
	// detection here defers to NewRayPipeline, which always fails with
	// ErrFatal on this backend.
	return f
}

// NewBuffer implements driver.GPU.
func (g *gpu) NewBuffer(size int64, usg driver.Usage, kind driver.BufferKind) (driver.Buffer, error) {
	if size <= 0 {
		return nil, driver.ErrInvalidArgument
	}
	mapped := kind != driver.BDefault
	hbuf, err := g.dev.CreateBuffer(&hal.BufferDescriptor{
		Size:             uint64(size),
		Usage:            bufferUsage(usg) | mapUsageFor(kind),
		MappedAtCreation: mapped,
	})
	if err != nil {
		return nil, driver.ErrNoDeviceMemory
	}
	return &buffer{gpu: g, h: hbuf, size: size, usage: usg, kind: kind}, nil
}

func mapUsageFor(kind driver.BufferKind) gputypes.BufferUsage {
	switch kind {
	case driver.BShared:
		return gputypes.BufferUsageMapWrite
	case driver.BReadback:
		return gputypes.BufferUsageMapRead
	default:
		return 0
	}
}

// NewImage implements driver.GPU.
func (g *gpu) NewImage(pf driver.PixelFmt, size driver.Dim3D, layers, levels, samples int, usg driver.Usage) (driver.Image, error) {
	if size.Width <= 0 || size.Height <= 0 || pf.IsInternal() {
		return nil, driver.ErrInvalidArgument
	}
	htex, err := g.dev.CreateTexture(&hal.TextureDescriptor{
		Size:          hal.Extent3D{Width: uint32(size.Width), Height: uint32(size.Height), DepthOrArrayLayers: uint32(max1(size.Depth) * max1(layers))},
		MipLevelCount: uint32(max1(levels)),
		SampleCount:   uint32(max1(samples)),
		Format:        pixelFmt(pf),
		Usage:         textureUsage(usg),
	})
	if err != nil {
		return nil, driver.ErrNoDeviceMemory
	}
	return &image{gpu: g, h: htex, format: pf, size: size, layers: max1(layers), levels: max1(levels), samples: max1(samples), usage: usg}, nil
}

func (g *gpu) adapterFormatCaps(pf driver.PixelFmt) hal.TextureFormatCapabilities {
	return g.adapter.TextureFormatCapabilities(pixelFmt(pf))
}

func max1(n int) int {
	if n < 1 {
		return 1
	}
	return n
}

// NewSampler implements driver.GPU.
func (g *gpu) NewSampler(splr *driver.Sampling) (driver.Sampler, error) {
	hs, err := g.dev.CreateSampler(&hal.SamplerDescriptor{
		AddressModeU: addrMode(splr.AddrU),
		AddressModeV: addrMode(splr.AddrV),
		AddressModeW: addrMode(splr.AddrW),
		MagFilter:    filterMode(splr.Mag),
	})
	if err != nil {
		return nil, driver.ErrInvalidArgument
	}
	return &sampler{h: hs, g: g}, nil
}

// NewShaderCode implements driver.GPU.
func (g *gpu) NewShaderCode(code []byte) (driver.ShaderCode, error) {
	if len(code) == 0 || len(code)%4 != 0 {
		return nil, driver.ErrInvalidArgument
	}
	words := make([]uint32, len(code)/4)
	for i := range words {
		words[i] = uint32(code[i*4]) | uint32(code[i*4+1])<<8 | uint32(code[i*4+2])<<16 | uint32(code[i*4+3])<<24
	}
	return &shaderCode{spirv: words}, nil
}

// Wait implements driver.GPU. It waits, for at most five seconds, on
// the graphics queue's fence only (the default compute and transfer
// queues alias that queue); queues created by NewQueue are not waited on.
func (g *gpu) Wait() error {
	_, err := g.dev.Wait(g.graphics.fence, g.graphics.lastValue, 5*time.Second)
	if err != nil {
		return driver.ErrFatal
	}
	return nil
}

// MaxMultisampleLevel implements driver.GPU. It checks only the
// adapter's multisample capability flag for pf, so it returns 4 or 1.
func (g *gpu) MaxMultisampleLevel(pf driver.PixelFmt) int {
	caps := g.adapterFormatCaps(pf)
	if caps.Flags&hal.TextureFormatCapabilityMultisample == 0 {
		return 1
	}
	return 4
}

// TicksPerMillisecond implements driver.GPU.
func (g *gpu) TicksPerMillisecond() float64 {
	period := g.queue.GetTimestampPeriod() // nanoseconds per tick
	if period <= 0 {
		return 0
	}
	return 1e6 / float64(period)
}

// AllocateGlobalDescriptors implements driver.GPU. The Vulkan-like
// backend has no process-wide descriptor heap (it allocates
// descriptor sets from a per-DescHeap pool instead, see descriptor.go);
// callers that reach this on a vk.gpu have mismatched the DX12-like
// global-heap model to this backend.
func (g *gpu) AllocateGlobalDescriptors(typ driver.DescType, n int) (int, error) {
	return 0, driver.ErrInvalidArgument
}

// ReleaseGlobalDescriptors implements driver.GPU.
func (g *gpu) ReleaseGlobalDescriptors(typ driver.DescType, offset, n int) {}

// BindGlobalDescriptorHeaps implements driver.GPU.
func (g *gpu) BindGlobalDescriptorHeaps(cb driver.CmdBuffer) {}

// NewDescHeap implements driver.GPU.
func (g *gpu) NewDescHeap(descs []driver.Descriptor) (driver.DescHeap, error) {
	return newDescHeap(g, descs)
}

// NewPipelineLayout implements driver.GPU.
func (g *gpu) NewPipelineLayout(heaps []driver.DescHeap, ranges []driver.PushConstantRange) (driver.PipelineLayout, error) {
	return newPipelineLayout(g, heaps, ranges)
}

// NewGraphPipeline implements driver.GPU.
func (g *gpu) NewGraphPipeline(state *driver.GraphState) (driver.Pipeline, error) {
	return newGraphPipeline(g, state)
}

// NewCompPipeline implements driver.GPU.
func (g *gpu) NewCompPipeline(state *driver.CompState) (driver.Pipeline, error) {
	return newCompPipeline(g, state)
}

// NewRayPipeline implements driver.GPU. The Vulkan-like backend here
// targets hal's rasterization/compute surface, which exposes no
// ray-tracing pipeline type; always fails until hal grows one.
func (g *gpu) NewRayPipeline(state *driver.RayState) (driver.Pipeline, error) {
	return nil, driver.ErrFatal
}

// NewRenderPass implements driver.GPU.
func (g *gpu) NewRenderPass(attachments []driver.Attachment, subpasses []driver.Subpass) (driver.RenderPass, error) {
	return newRenderPass(g, attachments, subpasses)
}

// NewFramebuf implements driver.GPU.
func (g *gpu) NewFramebuf(width, height, layers, secondaries int, views []driver.ImageView) (driver.Framebuf, error) {
	if width <= 0 || height <= 0 || layers <= 0 || secondaries <= 0 {
		return nil, driver.ErrInvalidArgument
	}
	return newFramebuf(width, height, layers, secondaries, views), nil
}

// NewAccelStruct implements driver.GPU.
func (g *gpu) NewAccelStruct(kind driver.AccelKind, buf driver.Buffer, offset, size int64) (driver.AccelStruct, error) {
	return newAccelStruct(g, kind, buf, offset, size)
}

// ComputeAccelStructSizes implements driver.GPU.
func (g *gpu) ComputeAccelStructSizes(kind driver.AccelKind, geom any) (int64, int64, error) {
	return computeAccelStructSizes(g, kind, geom)
}

// NewSwapchain implements driver.Presenter.
func (g *gpu) NewSwapchain(win wsi.Window, nframe int, pf driver.PixelFmt, vsync bool) (driver.Swapchain, error) {
	return newSwapchain(g, win, nframe, pf, vsync)
}

// Destroy implements driver.Destroyer.
func (g *gpu) Destroy() {
	g.dev.DestroyFence(g.graphics.fence)
	g.dev.Destroy()
}

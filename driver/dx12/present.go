// Copyright 2022 Gustavo C. Viegas. All rights reserved.

package dx12

import (
	"github.com/gogpu/wgpu/hal"

	"gviegas/neo3/driver"
	"gviegas/neo3/wsi"
)

// nativeHandle is implemented by a wsi.Window that can hand out the
// platform display/window handles hal.Instance.CreateSurface needs.
// wsi's public Window interface (wsi/wsi.go) exposes none today;
// until it does, NewSwapchain fails with ErrWindow on a window that
// does not additionally implement this interface.
type nativeHandle interface {
	NativeHandle() (display, window uintptr)
}

// swapchain implements driver.Swapchain atop a hal.Surface.
type swapchain struct {
	gpu     *gpu
	surface hal.Surface
	format  driver.PixelFmt
	win     wsi.Window
	fence   hal.Fence

	views   []driver.ImageView
	acquired *hal.AcquiredSurfaceTexture
}

func newSwapchain(g *gpu, win wsi.Window, nframe int, pf driver.PixelFmt, vsync bool) (driver.Swapchain, error) {
	nh, ok := win.(nativeHandle)
	if !ok {
		return nil, driver.ErrWindow
	}
	display, window := nh.NativeHandle()
	surf, err := g.inst.CreateSurface(display, window)
	if err != nil {
		return nil, driver.ErrWindow
	}
	fence, err := g.dev.CreateFence()
	if err != nil {
		surf.Destroy()
		return nil, driver.ErrNoDevice
	}
	s := &swapchain{gpu: g, surface: surf, format: pf, win: win, fence: fence}
	if err := s.configure(vsync); err != nil {
		surf.Destroy()
		g.dev.DestroyFence(fence)
		return nil, err
	}
	return s, nil
}

func (s *swapchain) configure(vsync bool) error {
	pm := hal.PresentModeFifo
	if !vsync {
		pm = hal.PresentModeImmediate
	}
	return s.surface.Configure(s.gpu.dev, &hal.SurfaceConfiguration{
		Width:       uint32(s.win.Width()),
		Height:      uint32(s.win.Height()),
		Format:      pixelFmt(s.format),
		Usage:       textureUsage(driver.URenderTarget),
		PresentMode: pm,
	})
}

// Views implements driver.Swapchain. The surface hands out one
// texture per AcquireTexture call rather than a fixed, enumerable
// backbuffer array (unlike VkSwapchainKHR), so this reports only the
// most recently acquired view.
func (s *swapchain) Views() []driver.ImageView { return s.views }

// Next implements driver.Swapchain.
func (s *swapchain) Next() (int, error) {
	acq, err := s.surface.AcquireTexture(s.fence)
	if err != nil {
		return 0, driver.ErrNoBackbuffer
	}
	s.acquired = acq
	view, err := s.gpu.dev.CreateTextureView(acq.Texture, &hal.TextureViewDescriptor{Format: pixelFmt(s.format)})
	if err != nil {
		s.surface.DiscardTexture(acq.Texture)
		return 0, driver.ErrNoBackbuffer
	}
	s.views = []driver.ImageView{&imageView{gpu: s.gpu, h: view, vt: driver.VT2D, presentSC: s, presentIdx: 0}}
	return 0, nil
}

// Present implements driver.Swapchain.
func (s *swapchain) Present(q driver.Queue, index int) error {
	if s.acquired == nil {
		return driver.ErrNoBackbuffer
	}
	vq, ok := q.(*queue)
	if !ok {
		return driver.ErrCannotPresent
	}
	err := s.gpu.queue.Present(s.surface, s.acquired.Texture)
	s.acquired = nil
	if err != nil {
		return driver.ErrSwapchain
	}
	_ = vq
	return nil
}

// Recreate implements driver.Swapchain.
func (s *swapchain) Recreate() error {
	return s.configure(true)
}

// Format implements driver.Swapchain.
func (s *swapchain) Format() driver.PixelFmt { return s.format }

// Destroy implements driver.Destroyer.
func (s *swapchain) Destroy() {
	s.surface.Unconfigure(s.gpu.dev)
	s.surface.Destroy()
	s.gpu.dev.DestroyFence(s.fence)
}

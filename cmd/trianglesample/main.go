// Copyright 2025 Gustavo C. Viegas. All rights reserved.

// Command trianglesample is a minimal runnable exercise of the
// device → swap chain → pipeline → render pass sequence described in
// spec.md §8 Scenario 1: a two-back-buffer swap chain, a single
// graphics pipeline drawing three vertices, cleared to a fixed color
// every frame, presented until the window is closed.
package main

import (
	"log"

	"gviegas/neo3/driver"
	_ "gviegas/neo3/driver/dx12"
	_ "gviegas/neo3/driver/vk"
	"gviegas/neo3/wsi"
)

const (
	winWidth  = 800
	winHeight = 600
	nframe    = 2
)

// vertShader/fragShader stand in for pre-compiled SPIR-V-like/DXIL-like
// bytecode (spec.md §1: "shaders are pre-compiled bytecode"; source
// compilation is out of scope for this core). A real build pipeline
// would embed the output of an offline shader compiler here; this
// placeholder only needs to satisfy GPU.NewShaderCode's length/
// alignment validation so the pipeline-construction path can be
// exercised end-to-end.
var (
	vertShader = make([]byte, 64)
	fragShader = make([]byte, 64)
)

type app struct {
	win wsi.Window
}

func (a *app) WindowClose(win wsi.Window) { closed = true }

func (a *app) WindowResize(win wsi.Window, w, h int) {}

var closed bool

func main() {
	drivers := driver.Drivers()
	if len(drivers) == 0 {
		log.Fatal("trianglesample: no driver registered")
	}

	var gpu driver.GPU
	var err error
	var drv driver.Driver
	for _, d := range drivers {
		if gpu, err = d.Open(); err == nil {
			drv = d
			break
		}
		log.Printf("trianglesample: %s: %v", d.Name(), err)
	}
	if gpu == nil {
		log.Fatal("trianglesample: no usable device found")
	}
	defer drv.Close()
	defer gpu.Destroy()

	win, err := wsi.NewWindow(winWidth, winHeight, "trianglesample")
	if err != nil {
		log.Fatalf("trianglesample: wsi.NewWindow: %v", err)
	}
	defer win.Close()
	a := &app{win: win}
	wsi.SetWindowHandler(a)
	if err := win.Map(); err != nil {
		log.Fatalf("trianglesample: Window.Map: %v", err)
	}

	presenter, ok := gpu.(driver.Presenter)
	if !ok {
		log.Fatal("trianglesample: device cannot present")
	}
	sc, err := presenter.NewSwapchain(win, nframe, driver.BGRA8un, true)
	if err != nil {
		log.Fatalf("trianglesample: NewSwapchain: %v", err)
	}
	defer sc.Destroy()

	rp, err := gpu.NewRenderPass(
		[]driver.Attachment{{
			Format:  sc.Format(),
			Samples: 1,
			LoadOp:  driver.LoadClear,
			StoreOp: driver.StoreStore,
			Role:    driver.RolePresent,
		}},
		[]driver.Subpass{{Color: []int{0}, DS: -1}},
	)
	if err != nil {
		log.Fatalf("trianglesample: NewRenderPass: %v", err)
	}
	defer rp.Destroy()

	vcode, err := gpu.NewShaderCode(vertShader)
	if err != nil {
		log.Fatalf("trianglesample: NewShaderCode (vertex): %v", err)
	}
	fcode, err := gpu.NewShaderCode(fragShader)
	if err != nil {
		log.Fatalf("trianglesample: NewShaderCode (fragment): %v", err)
	}
	layout, err := gpu.NewPipelineLayout(nil, nil)
	if err != nil {
		log.Fatalf("trianglesample: NewPipelineLayout: %v", err)
	}
	defer layout.Destroy()

	pipeln, err := gpu.NewGraphPipeline(&driver.GraphState{
		Layout: layout,
		Program: driver.ShaderProgram{Funcs: []driver.ShaderFunc{
			{Code: vcode, Name: "main", Stage: driver.SVertex},
			{Code: fcode, Name: "main", Stage: driver.SFragment},
		}},
		Topology: driver.TTriangleList,
		Raster:   driver.RasterState{Cull: driver.CullBack, Fill: driver.FillSolid},
		Blend:    driver.BlendState{Targets: []driver.ColorBlend{{Mask: driver.MaskAll}}},
		Pass:     rp,
		Subpass:  0,
		Samples:  1,
	})
	if err != nil {
		log.Fatalf("trianglesample: NewGraphPipeline: %v", err)
	}
	defer pipeln.Destroy()

	q := gpu.Queue(driver.QGraphics)
	clear := []driver.ClearValue{{Color: [4]float32{0.1, 0.1, 0.1, 1}}}
	vp := driver.Viewport{Width: winWidth, Height: winHeight, MaxDepth: 1}
	sciss := driver.Scissor{Width: winWidth, Height: winHeight}

	for !closed {
		wsi.Dispatch()

		if _, err := sc.Next(); err != nil {
			log.Printf("trianglesample: Swapchain.Next: %v", err)
			continue
		}

		// A fresh view backs every acquired backbuffer (see
		// Swapchain.Views), so the framebuffer wrapping it is built
		// per frame rather than once up front.
		fb, err := gpu.NewFramebuf(winWidth, winHeight, 1, len(rp.Subpasses()), sc.Views())
		if err != nil {
			log.Fatalf("trianglesample: NewFramebuf: %v", err)
		}

		if err := rp.Begin(q, fb, clear); err != nil {
			log.Fatalf("trianglesample: RenderPass.Begin: %v", err)
		}
		cb, err := rp.CmdBuffer()
		if err != nil {
			log.Fatalf("trianglesample: RenderPass.CmdBuffer: %v", err)
		}
		cb.SetPipeline(pipeln)
		cb.SetViewport(vp)
		cb.SetScissor(sciss)
		cb.Draw(3, 1, 0, 0)
		if err := rp.End(); err != nil {
			log.Fatalf("trianglesample: RenderPass.End: %v", err)
		}

		fb.Destroy()
	}
}

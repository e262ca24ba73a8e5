// Copyright 2022 Gustavo C. Viegas. All rights reserved.

package dx12

import (
	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"

	"gviegas/neo3/driver"
)

// pipeline implements driver.Pipeline over exactly one of a
// hal.RenderPipeline or hal.ComputePipeline.
type pipeline struct {
	gpu    *gpu
	layout driver.PipelineLayout
	graph  hal.RenderPipeline
	comp   hal.ComputePipeline
}

// Layout implements driver.Pipeline.
func (p *pipeline) Layout() driver.PipelineLayout { return p.layout }

// Destroy implements driver.Destroyer.
func (p *pipeline) Destroy() {
	if p.graph != nil {
		p.gpu.dev.DestroyRenderPipeline(p.graph)
	}
	if p.comp != nil {
		p.gpu.dev.DestroyComputePipeline(p.comp)
	}
}

// shaderModuleFor creates a one-off hal.ShaderModule for fn, since
// driver.ShaderCode carries only raw SPIR-V-like words and has no
// persistent hal.ShaderModule of its own; the module is destroyed
// once the pipeline that consumed it is created (hal does not retain
// a reference to the module after pipeline creation).
func (g *gpu) shaderModuleFor(fn driver.ShaderFunc) (hal.ShaderModule, error) {
	code, ok := fn.Code.(*shaderCode)
	if !ok {
		return nil, driver.ErrInvalidArgument
	}
	m, err := g.dev.CreateShaderModule(&hal.ShaderModuleDescriptor{Source: hal.ShaderSource{SPIRV: code.spirv}})
	if err != nil {
		return nil, runtimef("create shader module", err)
	}
	return m, nil
}

func funcFor(prog driver.ShaderProgram, stage driver.Stage) (driver.ShaderFunc, bool) {
	for _, f := range prog.Funcs {
		if f.Stage == stage {
			return f, true
		}
	}
	return driver.ShaderFunc{}, false
}

func newGraphPipeline(g *gpu, state *driver.GraphState) (driver.Pipeline, error) {
	layout, ok := state.Layout.(*pipelineLayout)
	if !ok {
		return nil, driver.ErrInvalidArgument
	}
	vs, ok := funcFor(state.Program, driver.SVertex)
	if !ok {
		return nil, driver.ErrInvalidArgument
	}
	vmod, err := g.shaderModuleFor(vs)
	if err != nil {
		return nil, err
	}
	defer g.dev.DestroyShaderModule(vmod)

	desc := &hal.RenderPipelineDescriptor{
		Layout: layout.h,
		Vertex: hal.VertexState{
			Module:     vmod,
			EntryPoint: vs.Name,
			Buffers:    vertexBuffers(state.VertexIn),
		},
		Primitive:   gputypes.PrimitiveState{Topology: topology(state.Topology), CullMode: cullMode(state.Raster.Cull), FrontFace: frontFace(state.Raster.FrontCCW)},
		Multisample: gputypes.MultisampleState{Count: uint32(max1(state.Samples))},
	}
	if fs, ok := funcFor(state.Program, driver.SFragment); ok {
		fmod, err := g.shaderModuleFor(fs)
		if err != nil {
			return nil, err
		}
		defer g.dev.DestroyShaderModule(fmod)
		desc.Fragment = &hal.FragmentState{Module: fmod, EntryPoint: fs.Name, Targets: colorTargets(state.Blend, state.Pass, state.Subpass)}
	}
	if state.DS.DepthTest || state.DS.StencilTest {
		desc.DepthStencil = depthStencilState(state.DS, dsFormat(state.Pass, state.Subpass))
	}
	h, err := g.dev.CreateRenderPipeline(desc)
	if err != nil {
		return nil, runtimef("create render pipeline", err)
	}
	return &pipeline{gpu: g, layout: state.Layout, graph: h}, nil
}

func newCompPipeline(g *gpu, state *driver.CompState) (driver.Pipeline, error) {
	layout, ok := state.Layout.(*pipelineLayout)
	if !ok {
		return nil, driver.ErrInvalidArgument
	}
	cs, ok := funcFor(state.Program, driver.SShaderCompute)
	if !ok {
		return nil, driver.ErrInvalidArgument
	}
	cmod, err := g.shaderModuleFor(cs)
	if err != nil {
		return nil, err
	}
	defer g.dev.DestroyShaderModule(cmod)
	h, err := g.dev.CreateComputePipeline(&hal.ComputePipelineDescriptor{
		Layout:  layout.h,
		Compute: hal.ComputeState{Module: cmod, EntryPoint: cs.Name},
	})
	if err != nil {
		return nil, runtimef("create compute pipeline", err)
	}
	return &pipeline{gpu: g, layout: state.Layout, comp: h}, nil
}

func vertexBuffers(ins []driver.VertexIn) []gputypes.VertexBufferLayout {
	byBinding := map[int]*gputypes.VertexBufferLayout{}
	var order []int
	for _, in := range ins {
		l, ok := byBinding[in.Binding]
		if !ok {
			nl := gputypes.VertexBufferLayout{ArrayStride: uint64(in.Stride), StepMode: stepMode(in.PerInstance)}
			byBinding[in.Binding] = &nl
			order = append(order, in.Binding)
			l = &nl
		}
		l.Attributes = append(l.Attributes, gputypes.VertexAttribute{
			Format:         vertexFormat(in.Format),
			Offset:         uint64(in.Offset),
			ShaderLocation: uint32(in.Location),
		})
	}
	out := make([]gputypes.VertexBufferLayout, len(order))
	for i, b := range order {
		out[i] = *byBinding[b]
	}
	return out
}

func stepMode(perInstance bool) gputypes.VertexStepMode {
	if perInstance {
		return gputypes.VertexStepModeInstance
	}
	return gputypes.VertexStepModeVertex
}

func vertexFormat(f driver.VertexFmt) gputypes.VertexFormat {
	switch f {
	case driver.VFloat32x2:
		return gputypes.VertexFormatFloat32x2
	case driver.VFloat32x3:
		return gputypes.VertexFormatFloat32x3
	case driver.VFloat32x4:
		return gputypes.VertexFormatFloat32x4
	case driver.VUint32:
		return gputypes.VertexFormatUint32
	case driver.VUint32x2:
		return gputypes.VertexFormatUint32x2
	case driver.VUint32x3:
		return gputypes.VertexFormatUint32x3
	case driver.VUint32x4:
		return gputypes.VertexFormatUint32x4
	case driver.VUnorm8x4:
		return gputypes.VertexFormatUnorm8x4
	default:
		return gputypes.VertexFormatFloat32
	}
}

func cullMode(c driver.CullMode) gputypes.CullMode {
	switch c {
	case driver.CullFront:
		return gputypes.CullModeFront
	case driver.CullBack:
		return gputypes.CullModeBack
	default:
		return gputypes.CullModeNone
	}
}

func frontFace(ccw bool) gputypes.FrontFace {
	if ccw {
		return gputypes.FrontFaceCCW
	}
	return gputypes.FrontFaceCW
}

func colorTargets(bs driver.BlendState, pass driver.RenderPass, subpass int) []gputypes.ColorTargetState {
	rp, ok := pass.(*renderPass)
	if !ok || subpass >= len(rp.subpasses) {
		return nil
	}
	sp := rp.subpasses[subpass]
	out := make([]gputypes.ColorTargetState, 0, len(sp.Color))
	for i, ci := range sp.Color {
		if ci < 0 {
			continue
		}
		t := gputypes.ColorTargetState{
			Format:    pixelFmt(rp.attachments[ci].Format),
			WriteMask: gputypes.ColorWriteMaskAll,
		}
		if bs.Independent && i < len(bs.Targets) {
			t.Blend = colorBlend(bs.Targets[i])
		} else if len(bs.Targets) > 0 {
			t.Blend = colorBlend(bs.Targets[0])
		}
		out = append(out, t)
	}
	return out
}

func colorBlend(b driver.ColorBlend) *gputypes.BlendState {
	if !b.Enable {
		return nil
	}
	return &gputypes.BlendState{
		Color: gputypes.BlendComponent{Operation: blendOp(b.ColorOp), SrcFactor: blendFac(b.SrcColor), DstFactor: blendFac(b.DstColor)},
		Alpha: gputypes.BlendComponent{Operation: blendOp(b.AlphaOp), SrcFactor: blendFac(b.SrcAlpha), DstFactor: blendFac(b.DstAlpha)},
	}
}

func blendOp(op driver.BlendOp) gputypes.BlendOperation {
	switch op {
	case driver.BlendSubtract:
		return gputypes.BlendOperationSubtract
	case driver.BlendRevSubtract:
		return gputypes.BlendOperationReverseSubtract
	case driver.BlendMin:
		return gputypes.BlendOperationMin
	case driver.BlendMax:
		return gputypes.BlendOperationMax
	default:
		return gputypes.BlendOperationAdd
	}
}

func blendFac(f driver.BlendFac) gputypes.BlendFactor {
	switch f {
	case driver.BlendOne:
		return gputypes.BlendFactorOne
	case driver.BlendSrcColor:
		return gputypes.BlendFactorSrc
	case driver.BlendInvSrcColor:
		return gputypes.BlendFactorOneMinusSrc
	case driver.BlendSrcAlpha:
		return gputypes.BlendFactorSrcAlpha
	case driver.BlendInvSrcAlpha:
		return gputypes.BlendFactorOneMinusSrcAlpha
	case driver.BlendDstColor:
		return gputypes.BlendFactorDst
	case driver.BlendInvDstColor:
		return gputypes.BlendFactorOneMinusDst
	case driver.BlendDstAlpha:
		return gputypes.BlendFactorDstAlpha
	case driver.BlendInvDstAlpha:
		return gputypes.BlendFactorOneMinusDstAlpha
	default:
		return gputypes.BlendFactorZero
	}
}

func dsFormat(pass driver.RenderPass, subpass int) driver.PixelFmt {
	rp, ok := pass.(*renderPass)
	if !ok || subpass >= len(rp.subpasses) {
		return driver.FInvalid
	}
	sp := rp.subpasses[subpass]
	if sp.DS < 0 {
		return driver.FInvalid
	}
	return rp.attachments[sp.DS].Format
}

func depthStencilState(ds driver.DSState, pf driver.PixelFmt) *hal.DepthStencilState {
	return &hal.DepthStencilState{
		Format:            pixelFmt(pf),
		DepthWriteEnabled: ds.DepthWrite,
		DepthCompare:      cmpFunc(ds.DepthCmp),
		StencilFront:      stencilFace(ds.Front),
		StencilBack:       stencilFace(ds.Back),
		StencilReadMask:   uint32(ds.StencilReadMask),
		StencilWriteMask:  uint32(ds.StencilWriteMask),
	}
}

func stencilFace(s driver.StencilT) hal.StencilFaceState {
	return hal.StencilFaceState{
		Compare:      cmpFunc(s.Cmp),
		FailOp:       stencilOp(s.Fail),
		DepthFailOp:  stencilOp(s.DepthFail),
		PassOp:       stencilOp(s.Pass),
	}
}

func stencilOp(op driver.StencilOp) hal.StencilOperation {
	switch op {
	case driver.StencilZero:
		return hal.StencilOperationZero
	case driver.StencilReplace:
		return hal.StencilOperationReplace
	case driver.StencilIncClamp:
		return hal.StencilOperationIncrementClamp
	case driver.StencilDecClamp:
		return hal.StencilOperationDecrementClamp
	case driver.StencilInvert:
		return hal.StencilOperationInvert
	case driver.StencilIncWrap:
		return hal.StencilOperationIncrementWrap
	case driver.StencilDecWrap:
		return hal.StencilOperationDecrementWrap
	default:
		return hal.StencilOperationKeep
	}
}

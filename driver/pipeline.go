// Copyright 2022 Gustavo C. Viegas. All rights reserved.

package driver

// Stage identifies a programmable shader stage. Values compose as a
// bitmask where a Descriptor or PushConstantRange is visible from
// more than one stage.
type Stage int

// Shader stages.
const (
	SVertex Stage = 1 << iota
	SFragment
	SGeometry
	STessCtrl
	STessEval
	SShaderCompute
	SMesh
	STask
	SRayGen
	SMiss
	SClosestHit
	SAnyHit
	SIntersection
	SCallable
)

// ShaderCode is backend-specific bytecode (SPIR-V-like for the
// Vulkan-like backend, DXIL-like for the DX12-like backend) validated
// and wrapped by GPU.NewShaderCode.
type ShaderCode interface{}

// ShaderFunc identifies a single entry point within a ShaderCode
// module.
type ShaderFunc struct {
	Code  ShaderCode
	Name  string
	Stage Stage
}

// ShaderProgram is the set of shader functions making up a pipeline.
// The caller always supplies an explicit PipelineLayout describing its
// descriptor bindings and push-constant ranges; this package does not
// parse or reflect over shader bytecode to derive one (see DESIGN.md
// for why gogpu/naga, which only operates on WGSL source text, could
// not serve that role here).
type ShaderProgram struct {
	Funcs []ShaderFunc
}

// Topology identifies how vertices assemble into primitives.
type Topology int

// Primitive topologies.
const (
	TPointList Topology = iota
	TLineList
	TLineStrip
	TTriangleList
	TTriangleStrip
	TPatchList
)

// IndexFmt identifies the width of indices in an index buffer.
type IndexFmt int

// Index formats.
const (
	Index16 IndexFmt = iota
	Index32
)

// VertexFmt identifies the layout of a single vertex attribute.
type VertexFmt int

// Vertex attribute formats.
const (
	VFloat32 VertexFmt = iota
	VFloat32x2
	VFloat32x3
	VFloat32x4
	VUint32
	VUint32x2
	VUint32x3
	VUint32x4
	VUnorm8x4
)

// VertexIn declares a single vertex input attribute.
type VertexIn struct {
	Format     VertexFmt
	Location   int
	Offset     int
	Binding    int
	Stride     int
	PerInstance bool
}

// Viewport describes a rasterizer viewport transform.
type Viewport struct {
	X, Y, Width, Height float32
	MinDepth, MaxDepth  float32
}

// Scissor restricts rasterization to a rectangle.
type Scissor struct{ X, Y, Width, Height int }

// CullMode selects which primitive winding is discarded.
type CullMode int

// Cull modes.
const (
	CullNone CullMode = iota
	CullFront
	CullBack
)

// FillMode selects how a primitive's interior is rasterized.
type FillMode int

// Fill modes.
const (
	FillSolid FillMode = iota
	FillWireframe
)

// RasterState configures the rasterizer stage.
type RasterState struct {
	Cull            CullMode
	Fill            FillMode
	FrontCCW        bool
	DepthClamp      bool
	DepthBias       float32
	DepthBiasSlope  float32
	DepthBiasClamp  float32
}

// CmpFunc identifies a comparison used by depth/stencil tests and
// texture-comparison samplers.
type CmpFunc int

// Comparison functions.
const (
	CmpNever CmpFunc = iota
	CmpLess
	CmpEqual
	CmpLessEqual
	CmpGreater
	CmpNotEqual
	CmpGreaterEqual
	CmpAlways
)

// StencilOp identifies a stencil-buffer update operation.
type StencilOp int

// Stencil operations.
const (
	StencilKeep StencilOp = iota
	StencilZero
	StencilReplace
	StencilIncClamp
	StencilDecClamp
	StencilInvert
	StencilIncWrap
	StencilDecWrap
)

// StencilT configures one face's stencil test.
type StencilT struct {
	Fail, DepthFail, Pass StencilOp
	Cmp                   CmpFunc
}

// DSState configures the depth/stencil test stages.
type DSState struct {
	DepthTest, DepthWrite bool
	DepthCmp              CmpFunc
	StencilTest           bool
	StencilReadMask       uint8
	StencilWriteMask      uint8
	Front, Back           StencilT
}

// BlendOp identifies a color/alpha blend combine operation.
type BlendOp int

// Blend operations.
const (
	BlendAdd BlendOp = iota
	BlendSubtract
	BlendRevSubtract
	BlendMin
	BlendMax
)

// BlendFac identifies a blend factor.
type BlendFac int

// Blend factors.
const (
	BlendZero BlendFac = iota
	BlendOne
	BlendSrcColor
	BlendInvSrcColor
	BlendSrcAlpha
	BlendInvSrcAlpha
	BlendDstColor
	BlendInvDstColor
	BlendDstAlpha
	BlendInvDstAlpha
)

// ColorMask is a bitmask of color channels a ColorBlend writes.
type ColorMask int

// Color channel mask bits.
const (
	MaskR ColorMask = 1 << iota
	MaskG
	MaskB
	MaskA
	MaskAll = MaskR | MaskG | MaskB | MaskA
)

// ColorBlend configures blending for a single render target.
type ColorBlend struct {
	Enable                bool
	SrcColor, DstColor     BlendFac
	ColorOp                BlendOp
	SrcAlpha, DstAlpha     BlendFac
	AlphaOp                BlendOp
	Mask                   ColorMask
}

// BlendState configures blending across every bound render target.
type BlendState struct {
	Independent bool
	Targets     []ColorBlend
}

// ClearValue is the value a render-pass attachment's contents are
// cleared to when its LoadOp is clear.
type ClearValue struct {
	Color        [4]float32
	Depth        float32
	Stencil      uint32
}

// GraphState describes a graphics (or mesh) pipeline.
type GraphState struct {
	Layout      PipelineLayout
	Program     ShaderProgram
	VertexIn    []VertexIn
	Topology    Topology
	Raster      RasterState
	DS          DSState
	Blend       BlendState
	Pass        RenderPass
	Subpass     int
	Samples     int
}

// CompState describes a compute pipeline.
type CompState struct {
	Layout  PipelineLayout
	Program ShaderProgram
}

// HitGroup is one entry of a RayState's shader-binding-table hit
// group collection.
type HitGroup struct {
	ClosestHit   string
	AnyHit       string
	Intersection string
}

// RayState describes a ray-tracing pipeline.
type RayState struct {
	Layout          PipelineLayout
	Program         ShaderProgram
	RayGen          string
	Miss            []string
	HitGroups       []HitGroup
	Callable        []string
	MaxRecursion    int
	MaxPayloadSize  int
	MaxAttributeSize int
}

// Pipeline is a constructed graphics, compute or ray-tracing
// pipeline state object.
type Pipeline interface {
	Destroyer

	// Layout returns the pipeline's layout.
	Layout() PipelineLayout
}

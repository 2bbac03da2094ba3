package tlb

import (
	"fmt"
	"sync"

	"github.com/gogpu/gputypes"
	"github.com/gogpu/naga"
)

// The blit pipeline fills the destination rectangle with a two-triangle
// strip; per-vertex texture coordinates carry the sampled source box in a
// 16-byte push constant (x0, y0, x1, y1 in normalized units). Mirroring
// is folded into the box by swapping its corners.
const blitVertexWGSL = `
struct TexBox {
    box: vec4<f32>,
}

var<push_constant> tex_box: TexBox;

struct VertexOut {
    @builtin(position) pos: vec4<f32>,
    @location(0) tex_coord: vec2<f32>,
}

@vertex
fn vs_main(@builtin(vertex_index) vi: u32) -> VertexOut {
    // vertex 0: (-1, -1)  box (x0, y0)
    // vertex 1: (-1,  1)  box (x0, y1)
    // vertex 2: ( 1, -1)  box (x1, y0)
    // vertex 3: ( 1,  1)  box (x1, y1)
    var out: VertexOut;
    let x = select(1.0, -1.0, vi < 2u);
    let y = select(-1.0, 1.0, (vi & 1u) == 1u);
    out.pos = vec4<f32>(x, y, 0.0, 1.0);
    let u = select(tex_box.box.z, tex_box.box.x, vi < 2u);
    let v = select(tex_box.box.y, tex_box.box.w, (vi & 1u) == 1u);
    out.tex_coord = vec2<f32>(u, v);
    return out;
}
`

const blitFragmentFloatWGSL = `
@group(0) @binding(0) var src_tex: texture_2d<f32>;
@group(0) @binding(1) var src_sampler: sampler;

@fragment
fn fs_main(@location(0) tex_coord: vec2<f32>) -> @location(0) vec4<f32> {
    return textureSample(src_tex, src_sampler, tex_coord);
}
`

// Integer destinations cannot be produced by filtered sampling, so the
// integer variant loads the exact texel under the interpolated
// coordinate.
const blitFragmentUintWGSL = `
@group(0) @binding(0) var src_tex: texture_2d<u32>;

@fragment
fn fs_main(@location(0) tex_coord: vec2<f32>) -> @location(0) vec4<u32> {
    let dims = vec2<f32>(textureDimensions(src_tex));
    return textureLoad(src_tex, vec2<i32>(tex_coord * dims), 0);
}
`

// blitPushConstantBytes is the size of the vertex-stage texture box.
const blitPushConstantBytes = 16

// compileWGSL compiles WGSL source to SPIR-V words. SPIR-V is
// little-endian 32-bit words.
func compileWGSL(source string) ([]uint32, error) {
	spirvBytes, err := naga.Compile(source)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrShaderCompile, err)
	}

	words := make([]uint32, len(spirvBytes)/4)
	for i := range words {
		words[i] = uint32(spirvBytes[i*4]) |
			uint32(spirvBytes[i*4+1])<<8 |
			uint32(spirvBytes[i*4+2])<<16 |
			uint32(spirvBytes[i*4+3])<<24
	}
	return words, nil
}

// blitPipeline is one cached render pass + pipeline pair for a
// destination format.
type blitPipeline struct {
	pass     RenderPassID
	pipeline PipelineID
}

// blitMeta holds the shared blit pipeline state: descriptor set layout,
// pipeline layout, compiled shaders, and the per-destination-format
// pipeline cache. One mutex guards it all; it is held across creation of
// a missing entry but never while recording draws.
type blitMeta struct {
	mu sync.Mutex

	dsLayout DescriptorSetLayoutID
	layout   PipelineLayoutID

	vsSPIRV      []uint32
	fsFloatSPIRV []uint32
	fsUintSPIRV  []uint32

	cache map[uint64]*blitPipeline
}

func newBlitMeta() *blitMeta {
	return &blitMeta{cache: make(map[uint64]*blitPipeline)}
}

func blitPipelineKey(dstFormat Format) uint64 {
	return uint64(dstFormat)
}

// get returns the pipeline for the destination format, creating and
// caching it on first use.
func (m *blitMeta) get(b BlitBackend, dstFormat Format) (*blitPipeline, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.layout == 0 {
		if err := m.createLayoutsLocked(b); err != nil {
			return nil, err
		}
	}

	key := blitPipelineKey(dstFormat)
	if p, ok := m.cache[key]; ok {
		return p, nil
	}

	if err := m.compileShadersLocked(); err != nil {
		return nil, err
	}

	p := &blitPipeline{}
	pass, err := b.CreateRenderPass(dstFormat)
	if err != nil {
		return nil, fmt.Errorf("%w: render pass: %v", ErrPipelineCreate, err)
	}
	p.pass = pass

	fs := m.fsFloatSPIRV
	if dstFormat.isInteger() {
		fs = m.fsUintSPIRV
	}

	desc := &BlitPipelineDescriptor{
		Label:             "blit",
		VertexSPIRV:       m.vsSPIRV,
		FragmentSPIRV:     fs,
		Layout:            m.layout,
		Pass:              p.pass,
		PrimitiveTopology: gputypes.PrimitiveTopologyTriangleStrip,
		FrontFace:         gputypes.FrontFaceCCW,
		CullMode:          gputypes.CullModeNone,
		ColorFormat:       dstFormat,
		SampleCount:       1,
	}
	pipeline, err := b.CreateGraphicsPipeline(desc)
	if err != nil {
		b.DestroyRenderPass(p.pass)
		return nil, fmt.Errorf("%w: %v", ErrPipelineCreate, err)
	}
	p.pipeline = pipeline

	m.cache[key] = p
	return p, nil
}

func (m *blitMeta) createLayoutsLocked(b BlitBackend) error {
	dsl, err := b.CreateDescriptorSetLayout()
	if err != nil {
		return fmt.Errorf("%w: descriptor set layout: %v", ErrPipelineCreate, err)
	}
	layout, err := b.CreatePipelineLayout(dsl, blitPushConstantBytes)
	if err != nil {
		b.DestroyDescriptorSetLayout(dsl)
		return fmt.Errorf("%w: pipeline layout: %v", ErrPipelineCreate, err)
	}
	m.dsLayout = dsl
	m.layout = layout
	return nil
}

func (m *blitMeta) compileShadersLocked() error {
	if m.vsSPIRV != nil {
		return nil
	}
	vs, err := compileWGSL(blitVertexWGSL)
	if err != nil {
		return err
	}
	fsFloat, err := compileWGSL(blitFragmentFloatWGSL)
	if err != nil {
		return err
	}
	fsUint, err := compileWGSL(blitFragmentUintWGSL)
	if err != nil {
		return err
	}
	m.vsSPIRV = vs
	m.fsFloatSPIRV = fsFloat
	m.fsUintSPIRV = fsUint
	return nil
}

// destroy releases every cached object. Called once at engine shutdown.
func (m *blitMeta) destroy(b BlitBackend) {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, p := range m.cache {
		b.DestroyPipeline(p.pipeline)
		b.DestroyRenderPass(p.pass)
	}
	m.cache = make(map[uint64]*blitPipeline)

	if m.layout != 0 {
		b.DestroyPipelineLayout(m.layout)
		m.layout = 0
	}
	if m.dsLayout != 0 {
		b.DestroyDescriptorSetLayout(m.dsLayout)
		m.dsLayout = 0
	}
}

package tlb

import (
	"github.com/gogpu/gputypes"
)

// Opaque handles for objects owned by the BlitBackend collaborator. Zero
// is never a valid handle.
type (
	RenderPassID          uint64
	PipelineID            uint64
	PipelineLayoutID      uint64
	DescriptorSetLayoutID uint64
	DescriptorSetID       uint64
	SamplerID             uint64
	ImageViewID           uint64
	FramebufferID         uint64
)

// SamplerSpec describes the blit source sampler. Both filters follow the
// blit's filter; addressing always clamps so edge texels do not bleed
// across the sampled box.
type SamplerSpec struct {
	MagFilter    gputypes.FilterMode
	MinFilter    gputypes.FilterMode
	MipmapFilter gputypes.FilterMode
	AddressModeU gputypes.AddressMode
	AddressModeV gputypes.AddressMode
	AddressModeW gputypes.AddressMode
}

func samplerSpecForFilter(filter Filter) SamplerSpec {
	mode := gputypes.FilterModeNearest
	if filter == FilterLinear {
		mode = gputypes.FilterModeLinear
	}
	return SamplerSpec{
		MagFilter:    mode,
		MinFilter:    mode,
		MipmapFilter: gputypes.FilterModeNearest,
		AddressModeU: gputypes.AddressModeClampToEdge,
		AddressModeV: gputypes.AddressModeClampToEdge,
		AddressModeW: gputypes.AddressModeClampToEdge,
	}
}

// BlitPipelineDescriptor is the full fixed-function and shader state of a
// blit pipeline. All of it is static except the color attachment format.
type BlitPipelineDescriptor struct {
	Label string

	VertexSPIRV   []uint32
	FragmentSPIRV []uint32

	Layout PipelineLayoutID
	Pass   RenderPassID

	PrimitiveTopology gputypes.PrimitiveTopology
	FrontFace         gputypes.FrontFace
	CullMode          gputypes.CullMode

	// ColorFormat is the render attachment format, matching the pass.
	ColorFormat Format
	SampleCount uint32
}

// BlitBackend is the pipeline/recording collaborator for the shader blit
// path. The host driver implements it on top of its own object model; the
// engine only sees opaque handles.
//
// Object creation methods return an error when the host is out of
// resources. Recording methods never fail; a recording that cannot
// proceed is the host's problem to surface at submit time.
type BlitBackend interface {
	CreateRenderPass(format Format) (RenderPassID, error)
	DestroyRenderPass(RenderPassID)

	CreateDescriptorSetLayout() (DescriptorSetLayoutID, error)
	DestroyDescriptorSetLayout(DescriptorSetLayoutID)

	// CreatePipelineLayout binds one combined image sampler set layout and
	// a vertex-stage push constant range of the given byte size.
	CreatePipelineLayout(dsl DescriptorSetLayoutID, pushConstantBytes uint32) (PipelineLayoutID, error)
	DestroyPipelineLayout(PipelineLayoutID)

	CreateGraphicsPipeline(desc *BlitPipelineDescriptor) (PipelineID, error)
	DestroyPipeline(PipelineID)

	CreateImageView(img *Image, level, layer uint32) (ImageViewID, error)
	DestroyImageView(ImageViewID)

	CreateSampler(spec SamplerSpec) (SamplerID, error)
	DestroySampler(SamplerID)

	AllocateDescriptorSet(layout DescriptorSetLayoutID) (DescriptorSetID, error)
	FreeDescriptorSet(DescriptorSetID)
	WriteCombinedImageSampler(set DescriptorSetID, view ImageViewID, sampler SamplerID)

	CreateFramebuffer(pass RenderPassID, attachment ImageViewID, width, height uint32) (FramebufferID, error)
	DestroyFramebuffer(FramebufferID)

	// PushRecordingState saves the surrounding command state so the blit
	// can bind its own pipeline and dynamic state; PopRecordingState
	// restores it.
	PushRecordingState()
	PopRecordingState()

	BeginRenderPass(pass RenderPassID, fb FramebufferID, area Rect) error
	EndRenderPass()
	BindPipeline(p PipelineID)
	BindDescriptorSet(layout PipelineLayoutID, set DescriptorSetID)
	PushConstants(layout PipelineLayoutID, data [4]float32)
	SetViewport(x, y, width, height float32)
	SetScissor(area Rect)
	Draw(vertexCount, instanceCount, firstVertex, firstInstance uint32)
}

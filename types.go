package tlb

// Offset3D is a signed texel offset into an image.
type Offset3D struct {
	X, Y, Z int32
}

// Extent3D is an image or region size in texels.
type Extent3D struct {
	Width, Height, Depth uint32
}

// Rect is an integer rectangle in pixels.
type Rect struct {
	X, Y          int32
	Width, Height uint32
}

// Sentinels for subresource ranges: "all remaining" levels or layers from
// the base, computed against the image's totals.
const (
	RemainingLevels = ^uint32(0)
	RemainingLayers = ^uint32(0)
)

// WholeSize selects the remaining buffer size in FillBuffer.
const WholeSize = ^uint64(0)

// SubresourceLayers selects one mip level and a layer range of an image.
type SubresourceLayers struct {
	Aspect     Aspect
	MipLevel   uint32
	BaseLayer  uint32
	LayerCount uint32
}

// SubresourceRange selects mip level and layer ranges of an image.
type SubresourceRange struct {
	Aspect     Aspect
	BaseLevel  uint32
	LevelCount uint32
	BaseLayer  uint32
	LayerCount uint32
}

// BufferImageCopy describes one region of a buffer<->image transfer.
// RowLength and ImageHeight override the buffer's texel pitch; zero means
// tightly packed at the image extent.
type BufferImageCopy struct {
	BufferOffset uint64
	RowLength    uint32
	ImageHeight  uint32
	Subresource  SubresourceLayers
	ImageOffset  Offset3D
	ImageExtent  Extent3D
}

// ImageCopy describes one region of an image<->image copy.
type ImageCopy struct {
	SrcSubresource SubresourceLayers
	SrcOffset      Offset3D
	DstSubresource SubresourceLayers
	DstOffset      Offset3D
	Extent         Extent3D
}

// BufferCopy describes one region of a buffer<->buffer copy.
type BufferCopy struct {
	SrcOffset uint64
	DstOffset uint64
	Size      uint64
}

// ImageBlit describes one region of a blit. The two offsets of each box
// are corners; a corner order opposite to the other image's mirrors the
// blit along that axis.
type ImageBlit struct {
	SrcSubresource SubresourceLayers
	SrcOffsets     [2]Offset3D
	DstSubresource SubresourceLayers
	DstOffsets     [2]Offset3D
}

// Filter selects blit sampling.
type Filter uint8

// Filters.
const (
	FilterNearest Filter = iota
	FilterLinear
)

// ClearColor is a clear value for a color aspect, carried both as floats
// and as raw integer channels; which union member applies follows the
// format's numeric class, as in Vulkan.
type ClearColor struct {
	Float32 [4]float32
	Uint32  [4]uint32
}

// ClearValue is the hardware clear state for one render target: up to four
// packed 32-bit color words, or a depth/stencil pair. Aspects on the
// surrounding operation select the interpretation.
type ClearValue struct {
	Color   [4]uint32
	Depth   float32
	Stencil uint8
}

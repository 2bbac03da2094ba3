package tlb

// Tiling is the hardware memory layout of an image mip level.
type Tiling uint8

// Memory layouts, ordered as the hardware encodes them. The UIF layouts
// interleave micro-tiles and carry padded-height bookkeeping.
const (
	TilingRaster Tiling = iota
	TilingLinearTile
	TilingUBLinear1
	TilingUBLinear2
	TilingUIFNoXOR
	TilingUIFXOR
)

// isUIF reports whether t is one of the UIF layouts.
func (t Tiling) isUIF() bool {
	return t == TilingUIFNoXOR || t == TilingUIFXOR
}

// BufferObject is a GPU memory allocation. It is created and owned by the
// host driver's allocator; this package only records addresses into it and
// writes staged data through Map.
type BufferObject struct {
	// Handle identifies the allocation to the kernel driver.
	Handle uint32

	// Size is the allocation size in bytes.
	Size uint64
}

// Allocator is the resource collaborator: buffer object allocation and
// CPU mapping.
type Allocator interface {
	// Alloc creates a buffer object of the given size. The name is a debug
	// label. Returns nil and an error on exhaustion.
	Alloc(size uint64, name string) (*BufferObject, error)

	// Map exposes the object's full contents for CPU writes.
	Map(bo *BufferObject) ([]byte, error)

	// Unmap releases a mapping obtained from Map.
	Unmap(bo *BufferObject)

	// Free releases a buffer object. Objects attached to a job are freed by
	// the job's completion handling instead.
	Free(bo *BufferObject)
}

// Slice is the layout of one mip level of an image: memory layout, row
// stride (raster), padded height (UIF, in pixels), byte offset from the
// start of the image's memory, and total level size.
type Slice struct {
	Offset       uint32
	Stride       uint32
	PaddedHeight uint32
	Size         uint32
	Tiling       Tiling
}

// paddedHeightInUIFBlocks returns the slice's padded height measured in
// UIF blocks for a pixel size of cpp bytes.
func (s *Slice) paddedHeightInUIFBlocks(cpp uint32) uint32 {
	return s.PaddedHeight / uifBlockHeight(cpp)
}

// ImageType distinguishes array-layered images from volumetric ones.
type ImageType uint8

// Image dimensionalities.
const (
	ImageType1D ImageType = iota
	ImageType2D
	ImageType3D
)

// Image is a logical image with its per-level layout. The memory and the
// slice layouts are produced by the host driver at image creation; this
// package treats them as read-only.
type Image struct {
	Type    ImageType
	Format  Format
	Aspects Aspect
	Extent  Extent3D
	Levels  uint32
	Layers  uint32
	Samples uint32
	CPP     uint32

	// Slices holds one layout entry per mip level.
	Slices []Slice

	// LayerSize is the byte distance between consecutive array layers.
	LayerSize uint32

	// Mem backs all levels and layers.
	Mem *BufferObject
}

// LayerOffset returns the byte offset of one layer of one mip level. For
// 3D images the "layer" is a depth slice within the level.
func (img *Image) LayerOffset(level, layer uint32) uint32 {
	slice := &img.Slices[level]
	if img.Type == ImageType3D {
		return slice.Offset + layer*slice.Size
	}
	return slice.Offset + layer*img.LayerSize
}

// levelWidth returns the width of the given mip level, minimum 1.
func (img *Image) levelWidth(level uint32) uint32 {
	return minify(img.Extent.Width, level)
}

// levelHeight returns the height of the given mip level, minimum 1.
func (img *Image) levelHeight(level uint32) uint32 {
	return minify(img.Extent.Height, level)
}

// levelDepth returns the depth of the given mip level, minimum 1.
func (img *Image) levelDepth(level uint32) uint32 {
	return minify(img.Extent.Depth, level)
}

// minify halves v level times, clamping at 1.
func minify(v, level uint32) uint32 {
	v >>= level
	if v == 0 {
		return 1
	}
	return v
}

// Buffer is a logical buffer bound to a buffer object.
type Buffer struct {
	Size uint64
	Mem  *BufferObject
}

// utileWidth returns the width in pixels of one 64-byte micro-tile for a
// pixel size of cpp bytes.
func utileWidth(cpp uint32) uint32 {
	switch cpp {
	case 1, 2:
		return 8
	case 4, 8:
		return 4
	case 16:
		return 4
	default:
		panic("tlb: unsupported cpp")
	}
}

// utileHeight returns the height in pixels of one 64-byte micro-tile for a
// pixel size of cpp bytes.
func utileHeight(cpp uint32) uint32 {
	switch cpp {
	case 1:
		return 8
	case 2, 4:
		return 4
	case 8:
		return 2
	case 16:
		return 1
	default:
		panic("tlb: unsupported cpp")
	}
}

// uifBlockHeight returns the height in pixels of one UIF block, which
// stacks two micro-tiles vertically.
func uifBlockHeight(cpp uint32) uint32 {
	return 2 * utileHeight(cpp)
}

// align rounds v up to the next multiple of a. a must be nonzero.
func align(v, a uint32) uint32 {
	return (v + a - 1) / a * a
}

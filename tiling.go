package tlb

// Hardware limits for one job.
const (
	// maxDimension is the largest frame width or height one job can cover.
	maxDimension = 4096

	// maxSupertiles bounds the supertile grid of one frame.
	maxSupertiles = 256

	// tileAllocGranularity is the per-tile slice of the tile allocation
	// memory, matching the 64-byte initial block size.
	tileAllocGranularity = 64
)

// FrameTiling is the tiling geometry of one job's frame: dimensions, tile
// and supertile sizes, and the internal bit depth that determined them.
// Produced by Job.StartFrame and consumed by every emitter.
type FrameTiling struct {
	Width  uint32
	Height uint32
	Layers uint32

	InternalBPP   InternalBPP
	Multisample4x bool

	TileWidth  uint32
	TileHeight uint32

	DrawTilesX uint32
	DrawTilesY uint32

	// Supertile size in tiles.
	SupertileWidth  uint32
	SupertileHeight uint32

	// Frame size in supertiles.
	FrameWidthInSupertiles  uint32
	FrameHeightInSupertiles uint32
}

// tileSizeForBPP returns the base tile dimensions for an internal bit
// depth. Deeper pixels shrink the tile so it still fits the on-chip
// buffer; 4x multisampling halves each dimension again.
func tileSizeForBPP(bpp InternalBPP, msaa bool) (w, h uint32) {
	switch bpp {
	case InternalBPP32:
		w, h = 64, 64
	case InternalBPP64:
		w, h = 64, 32
	case InternalBPP128:
		w, h = 32, 32
	default:
		panic("tlb: invalid internal bpp")
	}
	if msaa {
		w /= 2
		h /= 2
	}
	return w, h
}

// computeFrameTiling derives the full tiling geometry for a frame. The
// supertile size starts at 1x1 tiles and grows along its shorter axis
// until the supertile grid fits the hardware bound.
func computeFrameTiling(width, height, layers, samples uint32, bpp InternalBPP) FrameTiling {
	t := FrameTiling{
		Width:         width,
		Height:        height,
		Layers:        layers,
		InternalBPP:   bpp,
		Multisample4x: samples > 1,
	}

	t.TileWidth, t.TileHeight = tileSizeForBPP(bpp, t.Multisample4x)
	t.DrawTilesX = divRoundUp(width, t.TileWidth)
	t.DrawTilesY = divRoundUp(height, t.TileHeight)

	t.SupertileWidth, t.SupertileHeight = 1, 1
	for {
		t.FrameWidthInSupertiles = divRoundUp(t.DrawTilesX, t.SupertileWidth)
		t.FrameHeightInSupertiles = divRoundUp(t.DrawTilesY, t.SupertileHeight)
		if t.FrameWidthInSupertiles*t.FrameHeightInSupertiles < maxSupertiles {
			return t
		}
		if t.SupertileWidth < t.SupertileHeight {
			t.SupertileWidth++
		} else {
			t.SupertileHeight++
		}
	}
}

// tileAllocLayerStride is the byte distance between per-layer regions of
// the job's tile allocation memory.
func (t *FrameTiling) tileAllocLayerStride() uint32 {
	return tileAllocGranularity * t.DrawTilesX * t.DrawTilesY
}

// framebufferSizeForPixelCount picks a frame width and height covering at
// most numPixels, with both dimensions within the per-job bound. Linear
// transfers (buffer copy/fill) use this to shape their item ranges into
// rectangles: start at numPixels x 1 and repeatedly halve the width and
// double the height while the width exceeds the bound or remains more than
// twice the height, converging on a near-square frame.
//
// The result never covers more than numPixels, so callers loop, advancing
// by width*height items per job, until the count is consumed.
func framebufferSizeForPixelCount(numPixels uint32) (width, height uint32) {
	if numPixels == 0 {
		panic("tlb: zero pixel count")
	}

	const maxPixels = maxDimension * maxDimension
	if numPixels > maxPixels {
		return maxDimension, maxDimension
	}

	w, h := numPixels, uint32(1)
	for w > maxDimension || (w%2 == 0 && w > 2*h) {
		w >>= 1
		h <<= 1
	}
	return w, h
}

// divRoundUp divides rounding up. b must be nonzero.
func divRoundUp(a, b uint32) uint32 {
	return (a + b - 1) / b
}

package tlb

// framebuffer carries the render-target metadata behind a TLB operation.
// No framebuffer object exists for these operations; the job's frame
// tiling covers most of it, and this struct adds the single render
// target's internal type, supertile coverage, and format record. Built per
// operation, owned by the driving function for one job emission, never
// persisted.
type framebuffer struct {
	internalType InternalType

	// Supertile coverage, inclusive.
	minXSupertile uint32
	minYSupertile uint32
	maxXSupertile uint32
	maxYSupertile uint32

	format Format
	rec    formatRecord
}

// newFramebuffer derives the supertile bounding box from the frame tiling.
// Coverage always starts at (0,0): a TLB store for tile (x,y) lands at the
// same tile offset in the destination, which is why every TLB path
// requires its regions to start at the origin.
func newFramebuffer(format Format, internalType InternalType, tiling *FrameTiling) framebuffer {
	rec, ok := lookupFormat(format)
	if !ok {
		panic("tlb: unknown framebuffer format")
	}

	supertileW := tiling.TileWidth * tiling.SupertileWidth
	supertileH := tiling.TileHeight * tiling.SupertileHeight

	return framebuffer{
		internalType:  internalType,
		minXSupertile: 0,
		minYSupertile: 0,
		maxXSupertile: (tiling.Width - 1) / supertileW,
		maxYSupertile: (tiling.Height - 1) / supertileH,
		format:        format,
		rec:           rec,
	}
}

// supertileCount returns how many supertile coordinates the sweep emits.
func (fb *framebuffer) supertileCount() int {
	return int(fb.maxXSupertile-fb.minXSupertile+1) *
		int(fb.maxYSupertile-fb.minYSupertile+1)
}

// tileBufferFormat chooses the output image format for a tile buffer load
// or store within this operation.
//
// Color aspects use the render-target type of the framebuffer format. For
// depth/stencil aspects of image<->buffer transfers the hardware cannot do
// raster loads or stores of the true format, so the transfer runs through
// a packed integer color format instead. Combined depth/stencil needs an
// asymmetric choice: the image side always moves all four 8-bit channels
// (RGBA8UI), while the buffer side of a stencil-only transfer must be
// tightly packed one byte per pixel (R8UI).
func tileBufferFormat(fb *framebuffer, aspect Aspect, forStore, toBuffer, fromBuffer bool) OutputFormat {
	if !toBuffer && !fromBuffer {
		return fb.rec.rt
	}

	switch fb.format {
	case FormatD16Unorm:
		return OutputR16UI
	case FormatD32Float:
		return OutputR32F
	case FormatX8D24Unorm:
		return OutputRGBA8UI
	case FormatD24S8:
		if aspect&AspectDepth != 0 {
			return OutputRGBA8UI
		}
		if aspect&AspectStencil == 0 {
			panic("tlb: depth/stencil transfer without depth or stencil aspect")
		}
		if toBuffer {
			// Stores pack stencil bytes; loads read the full pixel.
			if forStore {
				return OutputR8UI
			}
			return OutputRGBA8UI
		}
		// Buffer to image: read packed stencil bytes into the R channel,
		// write them back through all four channels. The store lands each
		// stencil byte correctly but overwrites the depth channels; the
		// caller restores depth from the Z tile buffer afterwards.
		if forStore {
			return OutputRGBA8UI
		}
		return OutputR8UI
	case FormatS8Uint:
		return OutputR8UI
	default:
		return fb.rec.rt
	}
}

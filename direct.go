package tlb

// Transfer is one direct transfer descriptor: a fixed-function
// layout-converting copy that bypasses the tile buffer entirely. The
// recorder hands it to the kernel as a self-contained unit, so all
// fields are resolved device addresses and raw geometry.
type Transfer struct {
	Dst       *BufferObject
	DstOffset uint32
	Src       *BufferObject
	SrcOffset uint32

	Width  uint32
	Height uint32

	SrcTiling Tiling
	DstTiling Tiling

	// SrcPitch is the source pitch: pixels per row for raster sources,
	// padded height in UIF blocks for UIF sources, zero otherwise.
	SrcPitch uint32

	// DstPad counts extra UIF blocks of destination padding beyond the
	// implicit padding covering Height. Only meaningful for UIF
	// destinations.
	DstPad uint32

	// TexType is the destination texel type the transfer unit converts
	// into.
	TexType TexType
}

// emitTransfer builds and submits the transfer descriptor for one layer.
func (e *Engine) emitTransfer(dst *Image, dstLevel, dstLayer uint32, src *Image, srcLevel, srcLayer uint32, width, height uint32) {
	srcSlice := &src.Slices[srcLevel]
	dstSlice := &dst.Slices[dstLevel]

	t := &Transfer{
		Dst:       dst.Mem,
		DstOffset: dst.LayerOffset(dstLevel, dstLayer),
		Src:       src.Mem,
		SrcOffset: src.LayerOffset(srcLevel, srcLayer),
		Width:     width,
		Height:    height,
		SrcTiling: srcSlice.Tiling,
		DstTiling: dstSlice.Tiling,
		TexType:   formatTable[dst.Format].tex,
	}

	switch {
	case srcSlice.Tiling.isUIF():
		t.SrcPitch = srcSlice.paddedHeightInUIFBlocks(src.CPP)
	case srcSlice.Tiling == TilingRaster:
		t.SrcPitch = srcSlice.Stride / src.CPP
	}

	// Writing level 0 requires the explicit destination pad: how many UIF
	// blocks the slice carries beyond those covering the height.
	if dstSlice.Tiling.isUIF() {
		blockH := uifBlockHeight(dst.CPP)
		implicit := align(height, blockH)
		t.DstPad = (dstSlice.PaddedHeight - implicit) / blockH
	}

	e.rec.SubmitTransfer(t)
}

// blitDirect routes a blit region through the direct transfer unit when
// the fixed-function constraints allow it: nearest filtering, identical
// color formats the sampler can read, a tiled destination, both regions
// anchored at the origin, full destination coverage, and no scaling.
// Reports whether the region was handled.
func (e *Engine) blitDirect(dst, src *Image, region *ImageBlit, filter Filter) bool {
	if e.directDisabled {
		return false
	}

	if filter != FilterNearest {
		return false
	}
	if src.Format != dst.Format {
		return false
	}
	if formatTable[dst.Format].tex == TexNone {
		return false
	}
	if dst.Format.IsDepthStencil() {
		return false
	}

	dstLevel := region.DstSubresource.MipLevel
	if dst.Slices[dstLevel].Tiling == TilingRaster {
		return false
	}

	if region.SrcOffsets[0].X != 0 || region.SrcOffsets[0].Y != 0 {
		return false
	}
	if region.DstOffsets[0].X != 0 || region.DstOffsets[0].Y != 0 {
		return false
	}

	dstWidth := dst.levelWidth(dstLevel)
	dstHeight := dst.levelHeight(dstLevel)
	if region.DstOffsets[1].X < int32(dstWidth)-1 ||
		region.DstOffsets[1].Y < int32(dstHeight)-1 {
		return false
	}

	if region.SrcOffsets[1].X != region.DstOffsets[1].X ||
		region.SrcOffsets[1].Y != region.DstOffsets[1].Y {
		return false
	}

	if region.DstSubresource.LayerCount != region.SrcSubresource.LayerCount {
		panic("tlb: blit with mismatched layer counts")
	}

	layerCount := region.DstSubresource.LayerCount
	srcLevel := region.SrcSubresource.MipLevel
	for i := uint32(0); i < layerCount; i++ {
		var srcLayer, dstLayer uint32
		if src.Type == ImageType3D {
			srcLayer = src.levelDepth(srcLevel)
		} else {
			srcLayer = region.SrcSubresource.BaseLayer + i
		}
		if dst.Type == ImageType3D {
			dstLayer = dst.levelDepth(dstLevel)
		} else {
			dstLayer = region.DstSubresource.BaseLayer + i
		}

		e.emitTransfer(dst, dstLevel, dstLayer, src, srcLevel, srcLayer,
			dstWidth, dstHeight)
	}

	return true
}

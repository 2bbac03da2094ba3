package tlb

// clearInfo describes a requested tile-buffer clear for the RCL prologue.
// image/level identify the cleared surface when the erratum padding check
// applies; both may be zero for linear fills.
type clearInfo struct {
	value   *ClearValue
	image   *Image
	aspects Aspect
	level   uint32
}

// emitRCLPrologue opens a job's render command list: render mode
// configuration, clear state, and tile-list allocation setup.
//
// Clear colors are written in up to three parts. The first 64 bits are
// always written; the middle bits only when the internal depth reaches
// 64bpp; the top bits when it reaches 128bpp or when a nonzero UIF pad
// must be supplied to work around the padded-surface clear erratum.
func emitRCLPrologue(job *Job, fb *framebuffer, clear *clearInfo) {
	tiling := &job.Tiling
	rcl := &job.RCL
	rcl.EnsureSpace(16 + int(tiling.Layers)*(8+maxSupertiles))

	rcl.Emit(RenderModeCommonConfig{
		EarlyZDisable: true,
		Width:         tiling.Width,
		Height:        tiling.Height,
		RenderTargets: 1,
		Multisample4x: tiling.Multisample4x,
		MaxBPP:        tiling.InternalBPP,
	})

	if clear != nil && clear.aspects&AspectColor != 0 {
		var clearPad uint32
		if clear.image != nil {
			slice := &clear.image.Slices[clear.level]
			if slice.Tiling.isUIF() {
				blockH := uifBlockHeight(clear.image.CPP)
				implicit := align(tiling.Height, blockH) / blockH
				if padded := slice.paddedHeightInUIFBlocks(clear.image.CPP); padded-implicit >= 15 {
					clearPad = padded
				}
			}
		}

		color := &clear.value.Color
		rcl.Emit(ClearColorsPart1{
			Low32:  color[0],
			Next24: color[1] & 0x00ffffff,
		})
		if tiling.InternalBPP >= InternalBPP64 {
			rcl.Emit(ClearColorsPart2{
				MidLow32:  color[1]>>24 | color[2]<<8,
				MidHigh24: color[2]>>24 | (color[3]&0xffff)<<8,
			})
		}
		if tiling.InternalBPP >= InternalBPP128 || clearPad != 0 {
			rcl.Emit(ClearColorsPart3{
				UIFPaddedHeight: clearPad,
				High16:          color[3] >> 16,
			})
		}
	}

	rcl.Emit(RenderModeColorConfig{
		BPP:          tiling.InternalBPP,
		InternalType: fb.internalType,
	})

	zs := ZSClearValues{Z: 1.0, Stencil: 0}
	if clear != nil && clear.aspects&(AspectDepth|AspectStencil) != 0 {
		zs.Z = clear.value.Depth
		zs.Stencil = clear.value.Stencil
	}
	rcl.Emit(zs)

	rcl.Emit(TileListInitialBlockSize{
		AutoChain: true,
		BlockSize: tileAllocGranularity,
	})
}

// emitFrameSetup binds one layer's tile allocation memory, configures the
// supertile layout, and runs the double dummy-tile sequence required by
// hardware erratum GFXH-1742. When a clear is requested it is folded into
// the first pass.
func emitFrameSetup(job *Job, layer uint32, clearValue *ClearValue) {
	tiling := &job.Tiling
	rcl := &job.RCL

	rcl.Emit(MulticoreTileListBase{
		Address: Address{
			BO:     job.TileAlloc,
			Offset: layer * tiling.tileAllocLayerStride(),
		},
	})

	rcl.Emit(MulticoreSupertileConfig{
		BinTileLists:     1,
		TotalTilesX:      tiling.DrawTilesX,
		TotalTilesY:      tiling.DrawTilesY,
		SupertileWidth:   tiling.SupertileWidth,
		SupertileHeight:  tiling.SupertileHeight,
		TotalSupertilesX: tiling.FrameWidthInSupertiles,
		TotalSupertilesY: tiling.FrameHeightInSupertiles,
	})

	for i := 0; i < 2; i++ {
		rcl.Emit(TileCoordinates{})
		rcl.Emit(EndOfLoads{})
		rcl.Emit(StoreTileBuffer{Buffer: ChannelNone})
		if clearValue != nil && i == 0 {
			rcl.Emit(ClearTileBuffers{
				ClearZStencil:         true,
				ClearAllRenderTargets: true,
			})
		}
		rcl.Emit(EndOfTileMarker{})
	}

	rcl.Emit(FlushVCDCache{})
}

// emitSupertileCoordinates sweeps the framebuffer's supertile bounding
// box, inclusive on both axes, triggering per-tile execution of the bound
// tile list across the covered region.
func emitSupertileCoordinates(job *Job, fb *framebuffer) {
	for y := fb.minYSupertile; y <= fb.maxYSupertile; y++ {
		for x := fb.minXSupertile; x <= fb.maxXSupertile; x++ {
			job.RCL.Emit(SupertileCoordinates{Column: x, Row: y})
		}
	}
}

// beginTileList opens a per-tile sublist in the job's indirect command
// list and returns its start position.
func beginTileList(job *Job) Reloc {
	job.Indirect.EnsureSpace(16)
	job.sublists++
	return job.Indirect.Pos()
}

// endTileList closes the sublist and records the mandatory branch to it in
// the main render list: every sublist pairs with exactly one branch.
func endTileList(job *Job, start Reloc) {
	job.Indirect.Emit(ReturnFromSubList{})
	job.RCL.Emit(GenericTileListBranch{
		Start: start,
		End:   job.Indirect.Pos(),
	})
}

// emitLinearLoad loads a raster range of memory into a tile buffer.
func emitLinearLoad(cl *CommandList, channel TileBufferChannel, bo *BufferObject, offset, stride uint32, format OutputFormat) {
	cl.Emit(LoadTileBuffer{
		Buffer:         channel,
		Address:        Address{BO: bo, Offset: offset},
		Format:         format,
		Memory:         TilingRaster,
		HeightOrStride: stride,
		Decimate:       DecimateSample0,
	})
}

// emitLinearStore stores a tile buffer out to a raster range of memory.
func emitLinearStore(cl *CommandList, channel TileBufferChannel, bo *BufferObject, offset, stride uint32, msaa bool, format OutputFormat) {
	decimate := DecimateSample0
	if msaa {
		decimate = DecimateAllSamples
	}
	cl.Emit(StoreTileBuffer{
		Buffer:         channel,
		Address:        Address{BO: bo, Offset: offset},
		Format:         format,
		Memory:         TilingRaster,
		HeightOrStride: stride,
		Decimate:       decimate,
	})
}

// swizzleCorrection derives the R/B-swap and channel-reverse flags for an
// image load or store.
//
// When copying a D24 depth aspect to a buffer, the packed output must
// carry depth in the low bits of each 32-bit pixel, but the hardware keeps
// the X8/S8 bits there and depth on top. Reversing the channel order and
// then swapping R/B produces the packed layout; the store side applies the
// two operations in the opposite order, so setting both flags on both
// sides round-trips memory exactly. Only this combination works, and only
// on buffer transfers, where aspects are copied as separate tightly packed
// regions.
//
// A plain color operation that is not a raw copy (that is, a clear) must
// instead honor the format's swizzle, swapping R/B alone for blue-first
// formats.
func swizzleCorrection(fb *framebuffer, aspect Aspect, toBuffer, fromBuffer bool) (rbSwap, chanReverse bool) {
	packedD24 := fb.format == FormatX8D24Unorm ||
		(fb.format == FormatD24S8 && aspect&AspectDepth != 0)

	switch {
	case toBuffer && packedD24:
		return true, true
	case fromBuffer && packedD24:
		return true, true
	case !toBuffer && !fromBuffer && aspect&AspectColor != 0:
		return needsRBSwap(fb.format), false
	}
	return false, false
}

// emitImageLoad loads one image layer's pixels into the tile buffer.
//
// Buffer transfers always go through render target 0, whatever the
// aspect, because the hardware cannot pair raster loads/stores with the
// depth/stencil tile buffers. Pure image operations route depth/stencil
// aspects to their dedicated Z/S buffers.
func emitImageLoad(cl *CommandList, fb *framebuffer, img *Image, aspect Aspect, layer, level uint32, toBuffer, fromBuffer bool) {
	channel := ChannelRenderTarget0
	if !toBuffer && !fromBuffer && aspect != AspectColor {
		channel = zsChannelForAspect(aspect)
	}

	slice := &img.Slices[level]
	rbSwap, chanReverse := false, false
	if toBuffer {
		rbSwap, chanReverse = swizzleCorrection(fb, aspect, true, false)
	} else if !fromBuffer {
		rbSwap, chanReverse = swizzleCorrection(fb, aspect, false, false)
	}

	load := LoadTileBuffer{
		Buffer:         channel,
		Address:        Address{BO: img.Mem, Offset: img.LayerOffset(level, layer)},
		Format:         tileBufferFormat(fb, aspect, false, toBuffer, fromBuffer),
		Memory:         slice.Tiling,
		RBSwap:         rbSwap,
		ChannelReverse: chanReverse,
		Decimate:       DecimateSample0,
	}

	if slice.Tiling.isUIF() {
		load.HeightOrStride = slice.paddedHeightInUIFBlocks(img.CPP)
	} else if slice.Tiling == TilingRaster {
		load.HeightOrStride = slice.Stride
	}

	if img.Samples > 1 {
		load.Decimate = DecimateAllSamples
	}

	cl.Emit(load)
}

// emitImageStore mirrors emitImageLoad for the store side of a tile.
func emitImageStore(cl *CommandList, fb *framebuffer, img *Image, aspect Aspect, layer, level uint32, toBuffer, fromBuffer bool) {
	channel := ChannelRenderTarget0
	if !toBuffer && !fromBuffer && aspect != AspectColor {
		channel = zsChannelForAspect(aspect)
	}

	slice := &img.Slices[level]
	rbSwap, chanReverse := false, false
	if fromBuffer {
		rbSwap, chanReverse = swizzleCorrection(fb, aspect, false, true)
	} else if !toBuffer {
		rbSwap, chanReverse = swizzleCorrection(fb, aspect, false, false)
	}

	store := StoreTileBuffer{
		Buffer:         channel,
		Address:        Address{BO: img.Mem, Offset: img.LayerOffset(level, layer)},
		Format:         tileBufferFormat(fb, aspect, true, toBuffer, fromBuffer),
		Memory:         slice.Tiling,
		RBSwap:         rbSwap,
		ChannelReverse: chanReverse,
		Decimate:       DecimateSample0,
	}

	if slice.Tiling.isUIF() {
		store.HeightOrStride = slice.paddedHeightInUIFBlocks(img.CPP)
	} else if slice.Tiling == TilingRaster {
		store.HeightOrStride = slice.Stride
	}

	if img.Samples > 1 {
		store.Decimate = DecimateAllSamples
	}

	cl.Emit(store)
}

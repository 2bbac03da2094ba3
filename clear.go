package tlb

// ClearColorImage records a clear of color subresource ranges. The clear
// value is folded into the render mode configuration, so each cleared
// level and layer costs one store-only frame.
func (e *Engine) ClearColorImage(img *Image, color ClearColor, ranges []SubresourceRange) {
	origin := Offset3D{}
	fbFormat, ok := canUseTLB(img, origin)
	if !ok {
		panic("tlb: fallback path for ClearColorImage not implemented")
	}
	for i := range ranges {
		e.clearImageTLB(img, fbFormat, &color, 0, 0, &ranges[i])
	}
}

// ClearDepthStencilImage records a clear of depth and/or stencil
// subresource ranges. Depth/stencil formats always render natively, so
// the clear never goes through a substitute format.
func (e *Engine) ClearDepthStencilImage(img *Image, depth float32, stencil uint8, ranges []SubresourceRange) {
	origin := Offset3D{}
	if _, ok := canUseTLB(img, origin); !ok {
		panic("tlb: fallback path for ClearDepthStencilImage not implemented")
	}
	for i := range ranges {
		e.clearImageTLB(img, img.Format, nil, depth, stencil, &ranges[i])
	}
}

// hwClearColor packs the clear color for the framebuffer. When the clear
// runs through a compatible substitute format the words follow the
// image's own format layout, so reading the cleared memory under that
// format gives back the requested value.
func hwClearColor(color *ClearColor, fbFormat, imageFormat Format, internalType InternalType, internalBPP InternalBPP) [4]uint32 {
	if fbFormat == imageFormat {
		return packClearColorInternal(color, internalType, internalBPP.Size())
	}
	return packColorByFormat(imageFormat, color.Float32)
}

func (e *Engine) clearImageTLB(img *Image, fbFormat Format, color *ClearColor, depth float32, stencil uint8, rng *SubresourceRange) {
	if rng.Aspect&img.Aspects == 0 {
		panic("tlb: clear aspects not present in image")
	}

	internalType, internalBPP := internalTypeBPP(fbFormat, rng.Aspect)

	var hw ClearValue
	if rng.Aspect&AspectColor != 0 {
		hw.Color = hwClearColor(color, fbFormat, img.Format, internalType, internalBPP)
	} else {
		hw.Depth = depth
		hw.Stencil = stencil
	}

	levelCount := rng.LevelCount
	if levelCount == RemainingLevels {
		levelCount = img.Levels - rng.BaseLevel
	}
	minLevel := rng.BaseLevel
	maxLevel := rng.BaseLevel + levelCount

	// 3D images clear every depth slice of each level; the range's layer
	// selection only applies to arrays.
	var minLayer, maxLayer uint32
	if img.Type != ImageType3D {
		layerCount := rng.LayerCount
		if layerCount == RemainingLayers {
			layerCount = img.Layers - rng.BaseLayer
		}
		minLayer = rng.BaseLayer
		maxLayer = rng.BaseLayer + layerCount
	}

	for level := minLevel; level < maxLevel; level++ {
		if img.Type == ImageType3D {
			maxLayer = img.levelDepth(level)
		}
		for layer := minLayer; layer < maxLayer; layer++ {
			width := img.levelWidth(level)
			height := img.levelHeight(level)

			job := e.rec.StartJob()
			if job == nil {
				Logger().Warn("clear image aborted", "err", ErrJobExhausted)
				return
			}

			// One job per layer, so the frame depth is 1.
			job.StartFrame(width, height, 1, 1, internalBPP)

			fb := newFramebuffer(fbFormat, internalType, &job.Tiling)

			emitClearImageRCL(job, img, &fb, &hw, rng.Aspect, layer, level)

			e.rec.FinishJob(job)
		}
	}
}

func emitClearImageRCL(job *Job, img *Image, fb *framebuffer, hw *ClearValue, aspects Aspect, layer, level uint32) {
	clear := clearInfo{
		value:   hw,
		image:   img,
		aspects: aspects,
		level:   level,
	}

	emitRCLPrologue(job, fb, &clear)
	emitFrameSetup(job, 0, hw)
	emitClearImagePerTileList(job, fb, img, aspects, layer, level)
	emitSupertileCoordinates(job, fb)
	job.RCL.Emit(EndOfRendering{})
}

func emitClearImagePerTileList(job *Job, fb *framebuffer, img *Image, aspects Aspect, layer, level uint32) {
	cl := &job.Indirect
	start := beginTileList(job)

	cl.Emit(TileCoordinatesImplicit{})
	cl.Emit(EndOfLoads{})
	cl.Emit(BranchToImplicitTileList{})

	emitImageStore(cl, fb, img, aspects, layer, level, false, false)

	cl.Emit(EndOfTileMarker{})
	endTileList(job, start)
}

// FillBuffer records a fill of a buffer range with a repeated 32-bit
// word. WholeSize fills to the end of the buffer, rounded down to a
// multiple of four bytes.
func (e *Engine) FillBuffer(dst *Buffer, offset, size uint64, data uint32) {
	if size == WholeSize {
		size = dst.Size - offset
		size -= size % 4
	}
	e.fillBuffer(dst.Mem, uint32(offset), uint32(size), data)
}

func (e *Engine) fillBuffer(bo *BufferObject, offset, size, data uint32) {
	if size == 0 || size%4 != 0 {
		panic("tlb: fill size must be a positive multiple of 4")
	}
	if uint64(offset)+uint64(size) > bo.Size {
		panic("tlb: fill range out of bounds")
	}

	const internalBPP = InternalBPP32
	const internalType = InternalType8UI
	numItems := size / 4

	for numItems > 0 {
		job := e.rec.StartJob()
		if job == nil {
			Logger().Warn("fill buffer aborted", "err", ErrJobExhausted)
			return
		}

		width, height := framebufferSizeForPixelCount(numItems)
		job.StartFrame(width, height, 1, 1, internalBPP)

		fb := newFramebuffer(FormatRGBA8Uint, internalType, &job.Tiling)

		emitFillBufferRCL(job, bo, offset, &fb, data)

		e.rec.FinishJob(job)

		itemsFilled := width * height
		numItems -= itemsFilled
		offset += itemsFilled * 4
	}
}

func emitFillBufferRCL(job *Job, bo *BufferObject, offset uint32, fb *framebuffer, data uint32) {
	value := ClearValue{Color: [4]uint32{data, 0, 0, 0}}
	clear := clearInfo{
		value:   &value,
		aspects: AspectColor,
	}

	emitRCLPrologue(job, fb, &clear)
	emitFrameSetup(job, 0, &value)
	emitFillBufferPerTileList(job, bo, offset, job.Tiling.Width*4)
	emitSupertileCoordinates(job, fb)
	job.RCL.Emit(EndOfRendering{})
}

func emitFillBufferPerTileList(job *Job, bo *BufferObject, offset, stride uint32) {
	cl := &job.Indirect
	start := beginTileList(job)

	cl.Emit(TileCoordinatesImplicit{})
	cl.Emit(EndOfLoads{})
	cl.Emit(BranchToImplicitTileList{})

	emitLinearStore(cl, ChannelRenderTarget0, bo, offset, stride, false, OutputRGBA8UI)

	cl.Emit(EndOfTileMarker{})
	endTileList(job, start)
}

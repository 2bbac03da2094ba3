package tlb

// Copy operations routed through the tile buffer. Every copy renders a
// frame whose load and store instructions move pixel data instead of
// carrying shaded output: image sources are loaded through their slice
// tiling, buffer sources through raster loads into render target 0, and
// the per-tile store writes the destination in the same sweep.

// CopyImageToBuffer records a copy of image regions into tightly packed
// buffer memory. Regions whose image offset is not at the origin, or
// whose format has no tile-buffer representation, cannot run through the
// tile buffer and are a fatal capability gap.
func (e *Engine) CopyImageToBuffer(dst *Buffer, src *Image, regions []BufferImageCopy) {
	for i := range regions {
		fbFormat, ok := canUseTLB(src, regions[i].ImageOffset)
		if !ok {
			panic("tlb: fallback path for CopyImageToBuffer not implemented")
		}
		e.copyImageToBufferTLB(dst, src, fbFormat, &regions[i])
	}
}

// bufferRowSpec resolves the buffer-side row geometry of a region: row
// length and image height default to the image extent when zero, and
// stencil transfers of combined depth/stencil images always pack one byte
// per pixel.
func bufferRowSpec(img *Image, region *BufferImageCopy) (stride, sliceSize uint32) {
	width := region.RowLength
	if width == 0 {
		width = region.ImageExtent.Width
	}
	height := region.ImageHeight
	if height == 0 {
		height = region.ImageExtent.Height
	}

	cpp := img.CPP
	if region.Subresource.Aspect&AspectStencil != 0 {
		cpp = 1
	}
	stride = width * cpp
	return stride, height * stride
}

func (e *Engine) copyImageToBufferTLB(dst *Buffer, src *Image, fbFormat Format, region *BufferImageCopy) {
	internalType, internalBPP := internalTypeBPP(fbFormat, region.Subresource.Aspect)

	numLayers := region.Subresource.LayerCount
	if src.Type == ImageType3D {
		numLayers = region.ImageExtent.Depth
	}

	job := e.rec.StartJob()
	if job == nil {
		Logger().Warn("copy image to buffer aborted", "err", ErrJobExhausted)
		return
	}

	job.StartFrame(region.ImageExtent.Width, region.ImageExtent.Height,
		numLayers, 1, internalBPP)

	fb := newFramebuffer(fbFormat, internalType, &job.Tiling)

	emitRCLPrologue(job, &fb, nil)
	for layer := uint32(0); layer < job.Tiling.Layers; layer++ {
		emitFrameSetup(job, layer, nil)
		emitCopyLayerToBufferPerTileList(job, &fb, dst, src, layer, region)
		emitSupertileCoordinates(job, &fb)
	}
	job.RCL.Emit(EndOfRendering{})

	e.rec.FinishJob(job)
}

func emitCopyLayerToBufferPerTileList(job *Job, fb *framebuffer, dst *Buffer, src *Image, layer uint32, region *BufferImageCopy) {
	cl := &job.Indirect
	start := beginTileList(job)

	cl.Emit(TileCoordinatesImplicit{})

	rsc := &region.Subresource
	emitImageLoad(cl, fb, src, rsc.Aspect, rsc.BaseLayer+layer, rsc.MipLevel,
		true, false)

	cl.Emit(EndOfLoads{})
	cl.Emit(BranchToImplicitTileList{})

	stride, sliceSize := bufferRowSpec(src, region)
	offset := uint32(region.BufferOffset) + sliceSize*layer

	format := tileBufferFormat(fb, rsc.Aspect, true, true, false)
	msaa := src.Samples > 1
	emitLinearStore(cl, ChannelRenderTarget0, dst.Mem, offset, stride, msaa, format)

	cl.Emit(EndOfTileMarker{})
	endTileList(job, start)
}

// CopyBufferToImage records a copy of tightly packed buffer memory into
// image regions.
func (e *Engine) CopyBufferToImage(dst *Image, src *Buffer, regions []BufferImageCopy) {
	for i := range regions {
		fbFormat, ok := canUseTLB(dst, regions[i].ImageOffset)
		if !ok {
			panic("tlb: fallback path for CopyBufferToImage not implemented")
		}
		e.copyBufferToImageTLB(dst, src, fbFormat, &regions[i])
	}
}

func (e *Engine) copyBufferToImageTLB(dst *Image, src *Buffer, fbFormat Format, region *BufferImageCopy) {
	internalType, internalBPP := internalTypeBPP(fbFormat, region.Subresource.Aspect)

	numLayers := region.Subresource.LayerCount
	if dst.Type == ImageType3D {
		numLayers = region.ImageExtent.Depth
	}

	job := e.rec.StartJob()
	if job == nil {
		Logger().Warn("copy buffer to image aborted", "err", ErrJobExhausted)
		return
	}

	job.StartFrame(region.ImageExtent.Width, region.ImageExtent.Height,
		numLayers, 1, internalBPP)

	fb := newFramebuffer(fbFormat, internalType, &job.Tiling)

	emitRCLPrologue(job, &fb, nil)
	for layer := uint32(0); layer < job.Tiling.Layers; layer++ {
		emitFrameSetup(job, layer, nil)
		emitCopyBufferToLayerPerTileList(job, &fb, dst, src, layer, region)
		emitSupertileCoordinates(job, &fb)
	}
	job.RCL.Emit(EndOfRendering{})

	e.rec.FinishJob(job)
}

func emitCopyBufferToLayerPerTileList(job *Job, fb *framebuffer, dst *Image, src *Buffer, layer uint32, region *BufferImageCopy) {
	cl := &job.Indirect
	start := beginTileList(job)

	cl.Emit(TileCoordinatesImplicit{})

	rsc := &region.Subresource
	stride, sliceSize := bufferRowSpec(dst, region)
	offset := uint32(region.BufferOffset) + sliceSize*layer

	format := tileBufferFormat(fb, rsc.Aspect, false, false, true)
	emitLinearLoad(cl, ChannelRenderTarget0, src.Mem, offset, stride, format)

	// Raster loads and stores cannot touch real depth/stencil formats, so
	// the transfer runs through a color view of the pixels and the store
	// writes all four byte channels. When uploading a single aspect of a
	// combined depth/stencil image that would corrupt the other aspect:
	// pre-load it into its own Z/S tile buffer here and store it back after
	// the main store below.
	if fb.format == FormatD24S8 {
		other := AspectStencil
		if rsc.Aspect&AspectDepth == 0 {
			other = AspectDepth
		}
		emitImageLoad(cl, fb, dst, other, rsc.BaseLayer+layer, rsc.MipLevel,
			false, false)
	}

	cl.Emit(EndOfLoads{})
	cl.Emit(BranchToImplicitTileList{})

	emitImageStore(cl, fb, dst, rsc.Aspect, rsc.BaseLayer+layer, rsc.MipLevel,
		false, true)

	if fb.format == FormatD24S8 {
		other := AspectStencil
		if rsc.Aspect&AspectDepth == 0 {
			other = AspectDepth
		}
		emitImageStore(cl, fb, dst, other, rsc.BaseLayer+layer, rsc.MipLevel,
			false, false)
	}

	cl.Emit(EndOfTileMarker{})
	endTileList(job, start)
}

// CopyImage records an image to image copy. Source and destination
// subresources must name the same aspects and layer counts.
func (e *Engine) CopyImage(dst, src *Image, regions []ImageCopy) {
	for i := range regions {
		region := &regions[i]
		_, srcOK := canUseTLB(src, region.SrcOffset)
		fbFormat, dstOK := canUseTLB(dst, region.DstOffset)
		if !srcOK || !dstOK {
			panic("tlb: fallback path for CopyImage not implemented")
		}
		e.copyImageTLB(dst, src, fbFormat, region)
	}
}

func (e *Engine) copyImageTLB(dst, src *Image, fbFormat Format, region *ImageCopy) {
	if region.SrcSubresource.Aspect != region.DstSubresource.Aspect {
		panic("tlb: image copy with mismatched aspects")
	}
	if region.SrcSubresource.LayerCount != region.DstSubresource.LayerCount {
		panic("tlb: image copy with mismatched layer counts")
	}

	internalType, internalBPP := internalTypeBPP(fbFormat, region.DstSubresource.Aspect)

	numLayers := region.DstSubresource.LayerCount
	if dst.Type == ImageType3D {
		numLayers = region.Extent.Depth
	}

	job := e.rec.StartJob()
	if job == nil {
		Logger().Warn("copy image aborted", "err", ErrJobExhausted)
		return
	}

	job.StartFrame(region.Extent.Width, region.Extent.Height,
		numLayers, 1, internalBPP)

	fb := newFramebuffer(fbFormat, internalType, &job.Tiling)

	emitRCLPrologue(job, &fb, nil)
	for layer := uint32(0); layer < job.Tiling.Layers; layer++ {
		emitFrameSetup(job, layer, nil)
		emitCopyImageLayerPerTileList(job, &fb, dst, src, layer, region)
		emitSupertileCoordinates(job, &fb)
	}
	job.RCL.Emit(EndOfRendering{})

	e.rec.FinishJob(job)
}

func emitCopyImageLayerPerTileList(job *Job, fb *framebuffer, dst, src *Image, layer uint32, region *ImageCopy) {
	cl := &job.Indirect
	start := beginTileList(job)

	cl.Emit(TileCoordinatesImplicit{})

	srcrsc := &region.SrcSubresource
	emitImageLoad(cl, fb, src, srcrsc.Aspect, srcrsc.BaseLayer+layer,
		srcrsc.MipLevel, false, false)

	cl.Emit(EndOfLoads{})
	cl.Emit(BranchToImplicitTileList{})

	dstrsc := &region.DstSubresource
	emitImageStore(cl, fb, dst, dstrsc.Aspect, dstrsc.BaseLayer+layer,
		dstrsc.MipLevel, false, false)

	cl.Emit(EndOfTileMarker{})
	endTileList(job, start)
}

// CopyBuffer records buffer to buffer copies.
func (e *Engine) CopyBuffer(dst, src *Buffer, regions []BufferCopy) {
	for i := range regions {
		e.copyBuffer(dst.Mem, src.Mem, &regions[i])
	}
}

// copyBuffer copies a byte range between buffer objects, splitting the
// range into as many jobs as the frame size bound requires. The item size
// follows the alignment of the total size so every job moves whole
// pixels. Returns the last job recorded, or nil when job creation failed.
func (e *Engine) copyBuffer(dst, src *BufferObject, region *BufferCopy) *Job {
	const internalBPP = InternalBPP32
	const internalType = InternalType8UI

	var itemSize uint32
	var format OutputFormat
	var fbFormat Format
	switch region.Size % 4 {
	case 0:
		itemSize = 4
		format = OutputRGBA8UI
		fbFormat = FormatRGBA8Uint
	case 2:
		itemSize = 2
		format = OutputRG8UI
		fbFormat = FormatRG8Uint
	case 1, 3:
		itemSize = 1
		format = OutputR8UI
		fbFormat = FormatR8Uint
	}

	numItems := uint32(region.Size / uint64(itemSize))
	if numItems == 0 {
		panic("tlb: empty buffer copy")
	}

	var job *Job
	srcOffset := uint32(region.SrcOffset)
	dstOffset := uint32(region.DstOffset)
	for numItems > 0 {
		job = e.rec.StartJob()
		if job == nil {
			Logger().Warn("copy buffer aborted", "err", ErrJobExhausted)
			return nil
		}

		width, height := framebufferSizeForPixelCount(numItems)
		job.StartFrame(width, height, 1, 1, internalBPP)

		fb := newFramebuffer(fbFormat, internalType, &job.Tiling)

		emitRCLPrologue(job, &fb, nil)
		emitFrameSetup(job, 0, nil)
		emitCopyBufferPerTileList(job, dst, src, dstOffset, srcOffset, format)
		emitSupertileCoordinates(job, &fb)
		job.RCL.Emit(EndOfRendering{})

		e.rec.FinishJob(job)

		itemsCopied := width * height
		bytesCopied := itemsCopied * itemSize
		numItems -= itemsCopied
		srcOffset += bytesCopied
		dstOffset += bytesCopied
	}
	return job
}

func emitCopyBufferPerTileList(job *Job, dst, src *BufferObject, dstOffset, srcOffset uint32, format OutputFormat) {
	cl := &job.Indirect
	start := beginTileList(job)

	cl.Emit(TileCoordinatesImplicit{})

	stride := job.Tiling.Width * 4
	emitLinearLoad(cl, ChannelRenderTarget0, src, srcOffset, stride, format)

	cl.Emit(EndOfLoads{})
	cl.Emit(BranchToImplicitTileList{})

	emitLinearStore(cl, ChannelRenderTarget0, dst, dstOffset, stride, false, format)

	cl.Emit(EndOfTileMarker{})
	endTileList(job, start)
}

// UpdateBuffer records an inline update of dst with the given bytes. The
// data is staged in a fresh buffer object whose lifetime is tied to the
// last copy job.
func (e *Engine) UpdateBuffer(dst *Buffer, offset uint64, data []byte) {
	bo, err := e.alloc.Alloc(uint64(len(data)), "update buffer")
	if err != nil {
		Logger().Warn("update buffer: staging allocation failed", "err", err)
		return
	}

	m, err := e.alloc.Map(bo)
	if err != nil {
		Logger().Warn("update buffer: staging map failed", "err", err)
		e.alloc.Free(bo)
		return
	}
	copy(m, data)
	e.alloc.Unmap(bo)

	region := BufferCopy{
		SrcOffset: 0,
		DstOffset: offset,
		Size:      uint64(len(data)),
	}
	job := e.copyBuffer(dst.Mem, bo, &region)
	if job == nil {
		e.alloc.Free(bo)
		return
	}

	// If the copy split into several jobs the staging object only needs to
	// outlive the last one.
	job.AddExtraBO(bo)
}

package tlb

import "fmt"

// BlitImage records a scaled, possibly mirrored copy between color
// images. Each region tries the direct transfer unit first and falls
// back to a textured draw; a region neither path can express is a fatal
// capability gap. Multisampled blits are a caller contract violation.
func (e *Engine) BlitImage(dst, src *Image, regions []ImageBlit, filter Filter) {
	if dst.Samples > 1 || src.Samples > 1 {
		panic("tlb: blit of multisampled image")
	}

	for i := range regions {
		if e.blitDirect(dst, src, &regions[i], filter) {
			continue
		}
		handled, err := e.blitShader(dst, src, &regions[i], filter)
		if err != nil {
			Logger().Warn("blit: shader path failed", "err", err)
			return
		}
		if !handled {
			panic("tlb: unsupported blit operation")
		}
	}
}

// computeBlitBox normalizes one pair of blit corners into an origin,
// size, and mirror flags, clamped to the image dimensions.
func computeBlitBox(offsets [2]Offset3D, imgWidth, imgHeight uint32) (x, y, w, h uint32, mirrorX, mirrorY bool) {
	if offsets[1].X >= offsets[0].X {
		x = minU32(uint32(offsets[0].X), imgWidth-1)
		w = minU32(uint32(offsets[1].X-offsets[0].X), imgWidth-uint32(offsets[0].X))
	} else {
		mirrorX = true
		x = minU32(uint32(offsets[1].X), imgWidth-1)
		w = minU32(uint32(offsets[0].X-offsets[1].X), imgWidth-uint32(offsets[1].X))
	}

	if offsets[1].Y >= offsets[0].Y {
		y = minU32(uint32(offsets[0].Y), imgHeight-1)
		h = minU32(uint32(offsets[1].Y-offsets[0].Y), imgHeight-uint32(offsets[0].Y))
	} else {
		mirrorY = true
		y = minU32(uint32(offsets[1].Y), imgHeight-1)
		h = minU32(uint32(offsets[0].Y-offsets[1].Y), imgHeight-uint32(offsets[1].Y))
	}
	return
}

func minU32(a, b uint32) uint32 {
	if a < b {
		return a
	}
	return b
}

// blitShader draws the source box over the destination rectangle through
// a cached per-format pipeline. Returns handled=false when the region is
// outside this path's shape (non-color aspect, non-2D images, or no
// backend configured); a non-nil error means the region was eligible but
// a transient object or the pipeline could not be created, in which case
// everything acquired so far has been released and no further layers are
// recorded.
func (e *Engine) blitShader(dst, src *Image, region *ImageBlit, filter Filter) (handled bool, err error) {
	if region.DstSubresource.Aspect != AspectColor {
		return false, nil
	}
	if dst.Type != ImageType2D || src.Type != ImageType2D {
		return false, nil
	}
	if e.backend == nil {
		Logger().Debug("blit: shader path unavailable", "err", ErrNoBlitBackend)
		return false, nil
	}
	b := e.backend

	dstX, dstY, dstW, dstH, dstMirrorX, dstMirrorY :=
		computeBlitBox(region.DstOffsets, dst.Extent.Width, dst.Extent.Height)
	srcX, srcY, srcW, srcH, srcMirrorX, srcMirrorY :=
		computeBlitBox(region.SrcOffsets, src.Extent.Width, src.Extent.Height)

	// Source corners in normalized texture space, mirrored by swapping
	// when exactly one side asked for a flip.
	coords := [4]float32{
		float32(srcX) / float32(src.Extent.Width),
		float32(srcY) / float32(src.Extent.Height),
		float32(srcX+srcW) / float32(src.Extent.Width),
		float32(srcY+srcH) / float32(src.Extent.Height),
	}
	mirrorX := dstMirrorX != srcMirrorX
	mirrorY := dstMirrorY != srcMirrorY
	texBox := [4]float32{coords[0], coords[1], coords[2], coords[3]}
	if mirrorX {
		texBox[0], texBox[2] = coords[2], coords[0]
	}
	if mirrorY {
		texBox[1], texBox[3] = coords[3], coords[1]
	}

	pipeline, err := e.blit.get(b, dst.Format)
	if err != nil {
		return true, err
	}

	b.PushRecordingState()
	defer b.PopRecordingState()

	for i := uint32(0); i < region.DstSubresource.LayerCount; i++ {
		if err := e.blitShaderLayer(b, pipeline, dst, src, region, i,
			dstX, dstY, dstW, dstH, texBox, filter); err != nil {
			return true, err
		}
	}
	return true, nil
}

// blitShaderLayer records the draw for one destination layer. Transient
// objects are released in reverse acquisition order before returning,
// whether or not the recording succeeded.
func (e *Engine) blitShaderLayer(b BlitBackend, pipeline *blitPipeline, dst, src *Image, region *ImageBlit, layer uint32, dstX, dstY, dstW, dstH uint32, texBox [4]float32, filter Filter) (err error) {
	dstView, err := b.CreateImageView(dst,
		region.DstSubresource.MipLevel, region.DstSubresource.BaseLayer+layer)
	if err != nil {
		return transientErr("destination view", err)
	}
	defer b.DestroyImageView(dstView)

	fb, err := b.CreateFramebuffer(pipeline.pass, dstView,
		dst.Extent.Width, dst.Extent.Height)
	if err != nil {
		return transientErr("framebuffer", err)
	}
	defer b.DestroyFramebuffer(fb)

	set, err := b.AllocateDescriptorSet(e.blit.dsLayout)
	if err != nil {
		return transientErr("descriptor set", err)
	}
	defer b.FreeDescriptorSet(set)

	sampler, err := b.CreateSampler(samplerSpecForFilter(filter))
	if err != nil {
		return transientErr("sampler", err)
	}
	defer b.DestroySampler(sampler)

	srcView, err := b.CreateImageView(src,
		region.SrcSubresource.MipLevel, region.SrcSubresource.BaseLayer+layer)
	if err != nil {
		return transientErr("source view", err)
	}
	defer b.DestroyImageView(srcView)

	b.WriteCombinedImageSampler(set, srcView, sampler)

	area := Rect{X: int32(dstX), Y: int32(dstY), Width: dstW, Height: dstH}
	if err := b.BeginRenderPass(pipeline.pass, fb, area); err != nil {
		return transientErr("render pass", err)
	}

	b.PushConstants(e.blit.layout, texBox)
	b.BindPipeline(pipeline.pipeline)
	b.BindDescriptorSet(e.blit.layout, set)
	b.SetViewport(float32(dstX), float32(dstY), float32(dstW), float32(dstH))
	b.SetScissor(area)
	b.Draw(4, 1, 0, 0)

	b.EndRenderPass()
	return nil
}

func transientErr(what string, err error) error {
	return fmt.Errorf("%w: %s: %v", ErrTransientObject, what, err)
}

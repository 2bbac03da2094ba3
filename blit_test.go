package tlb

import (
	"errors"
	"fmt"
	"testing"
)

// newTestImageUIF registers a single-level UIF-tiled 2D image. The byte
// layout is irrelevant to the tests that use it; only the slice metadata
// matters.
func (a *mockAllocator) newTestImageUIF(format Format, width, height uint32, extraPadBlocks uint32) *Image {
	cpp := format.CPP()
	blockH := uifBlockHeight(cpp)
	paddedHeight := align(height, blockH) + extraPadBlocks*blockH
	stride := align(width*cpp, 256)
	size := stride * paddedHeight

	bo := &BufferObject{Handle: a.nextHandle, Size: uint64(size)}
	a.nextHandle++
	a.mem[bo] = make([]byte, size)

	return &Image{
		Type:    ImageType2D,
		Format:  format,
		Aspects: AspectColor,
		Extent:  Extent3D{Width: width, Height: height, Depth: 1},
		Levels:  1,
		Layers:  1,
		Samples: 1,
		CPP:     cpp,
		Slices: []Slice{{
			Stride:       stride,
			PaddedHeight: paddedHeight,
			Size:         size,
			Tiling:       TilingUIFNoXOR,
		}},
		LayerSize: size,
		Mem:       bo,
	}
}

func fullBlitRegion(w, h uint32, layers uint32) ImageBlit {
	return ImageBlit{
		SrcSubresource: SubresourceLayers{Aspect: AspectColor, LayerCount: layers},
		SrcOffsets:     [2]Offset3D{{}, {X: int32(w), Y: int32(h), Z: 1}},
		DstSubresource: SubresourceLayers{Aspect: AspectColor, LayerCount: layers},
		DstOffsets:     [2]Offset3D{{}, {X: int32(w), Y: int32(h), Z: 1}},
	}
}

func TestComputeBlitBox(t *testing.T) {
	cases := []struct {
		name             string
		offsets          [2]Offset3D
		imgW, imgH       uint32
		x, y, w, h       uint32
		mirrorX, mirrorY bool
	}{
		{
			name:    "forward",
			offsets: [2]Offset3D{{X: 2, Y: 3}, {X: 10, Y: 7}},
			imgW:    16, imgH: 16,
			x: 2, y: 3, w: 8, h: 4,
		},
		{
			name:    "mirrored x",
			offsets: [2]Offset3D{{X: 10, Y: 3}, {X: 2, Y: 7}},
			imgW:    16, imgH: 16,
			x: 2, y: 3, w: 8, h: 4, mirrorX: true,
		},
		{
			name:    "mirrored both",
			offsets: [2]Offset3D{{X: 10, Y: 7}, {X: 2, Y: 3}},
			imgW:    16, imgH: 16,
			x: 2, y: 3, w: 8, h: 4, mirrorX: true, mirrorY: true,
		},
		{
			name:    "clamped to image",
			offsets: [2]Offset3D{{X: 4, Y: 0}, {X: 32, Y: 8}},
			imgW:    16, imgH: 8,
			x: 4, y: 0, w: 12, h: 8,
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			x, y, w, h, mx, my := computeBlitBox(tc.offsets, tc.imgW, tc.imgH)
			if x != tc.x || y != tc.y || w != tc.w || h != tc.h ||
				mx != tc.mirrorX || my != tc.mirrorY {
				t.Fatalf("got (%d,%d %dx%d mirror %v,%v), want (%d,%d %dx%d mirror %v,%v)",
					x, y, w, h, mx, my, tc.x, tc.y, tc.w, tc.h, tc.mirrorX, tc.mirrorY)
			}
		})
	}
}

func TestBlitDirect(t *testing.T) {
	t.Run("eligible full copy", func(t *testing.T) {
		e, rec, alloc := newTestEngine()
		src := alloc.newTestImageUIF(FormatRGBA8Unorm, 64, 64, 0)
		dst := alloc.newTestImageUIF(FormatRGBA8Unorm, 64, 64, 2)

		e.BlitImage(dst, src, []ImageBlit{fullBlitRegion(64, 64, 1)}, FilterNearest)

		if len(rec.transfers) != 1 {
			t.Fatalf("got %d transfers, want 1", len(rec.transfers))
		}
		tr := rec.transfers[0]
		if tr.Width != 64 || tr.Height != 64 {
			t.Fatalf("transfer size %dx%d", tr.Width, tr.Height)
		}
		if tr.SrcTiling != TilingUIFNoXOR || tr.DstTiling != TilingUIFNoXOR {
			t.Fatalf("transfer tiling (%d, %d)", tr.SrcTiling, tr.DstTiling)
		}
		if tr.SrcPitch != src.Slices[0].paddedHeightInUIFBlocks(4) {
			t.Fatalf("source pitch = %d", tr.SrcPitch)
		}
		if tr.DstPad != 2 {
			t.Fatalf("destination pad = %d, want the extra blocks", tr.DstPad)
		}
		if tr.TexType != TexRGBA8 {
			t.Fatalf("texel type = %d", tr.TexType)
		}
	})

	t.Run("raster source pitch in pixels", func(t *testing.T) {
		e, rec, alloc := newTestEngine()
		src := alloc.newTestImage2D(FormatRGBA8Unorm, 64, 64, 1)
		dst := alloc.newTestImageUIF(FormatRGBA8Unorm, 64, 64, 0)

		e.BlitImage(dst, src, []ImageBlit{fullBlitRegion(64, 64, 1)}, FilterNearest)

		if len(rec.transfers) != 1 {
			t.Fatalf("got %d transfers", len(rec.transfers))
		}
		if got := rec.transfers[0].SrcPitch; got != 64 {
			t.Fatalf("source pitch = %d, want 64 pixels", got)
		}
	})

	t.Run("ineligible regions fall through", func(t *testing.T) {
		alloc := newMockAllocator()
		uif := func() *Image { return alloc.newTestImageUIF(FormatRGBA8Unorm, 64, 64, 0) }

		partial := fullBlitRegion(64, 64, 1)
		partial.DstOffsets[1] = Offset3D{X: 32, Y: 32, Z: 1}
		partial.SrcOffsets[1] = Offset3D{X: 32, Y: 32, Z: 1}

		scaled := fullBlitRegion(64, 64, 1)
		scaled.SrcOffsets[1] = Offset3D{X: 32, Y: 32, Z: 1}

		shifted := fullBlitRegion(64, 64, 1)
		shifted.SrcOffsets[0] = Offset3D{X: 1}

		cases := []struct {
			name     string
			dst, src *Image
			region   ImageBlit
			filter   Filter
		}{
			{"linear filter", uif(), uif(), fullBlitRegion(64, 64, 1), FilterLinear},
			{"format mismatch", uif(), alloc.newTestImageUIF(FormatRGBA8Uint, 64, 64, 0), fullBlitRegion(64, 64, 1), FilterNearest},
			{"raster destination", alloc.newTestImage2D(FormatRGBA8Unorm, 64, 64, 1), uif(), fullBlitRegion(64, 64, 1), FilterNearest},
			{"partial coverage", uif(), uif(), partial, FilterNearest},
			{"scaling", uif(), uif(), scaled, FilterNearest},
			{"offset origin", uif(), uif(), shifted, FilterNearest},
		}
		for _, tc := range cases {
			t.Run(tc.name, func(t *testing.T) {
				e, rec, _ := newTestEngine()
				if e.blitDirect(tc.dst, tc.src, &tc.region, tc.filter) {
					t.Fatalf("region took the direct path")
				}
				if len(rec.transfers) != 0 {
					t.Fatalf("transfer submitted for ineligible region")
				}
			})
		}
	})

	t.Run("disabled by option", func(t *testing.T) {
		rec := newMockRecorder()
		alloc := newMockAllocator()
		e := New(rec, alloc, WithDirectTransferDisabled())
		src := alloc.newTestImageUIF(FormatRGBA8Unorm, 64, 64, 0)
		dst := alloc.newTestImageUIF(FormatRGBA8Unorm, 64, 64, 0)

		region := fullBlitRegion(64, 64, 1)
		if e.blitDirect(dst, src, &region, FilterNearest) {
			t.Fatalf("direct path used while disabled")
		}
	})
}

// mockBlitBackend records the call sequence of the shader blit path and
// can fail any single creation call.
type mockBlitBackend struct {
	calls      []string
	nextHandle uint64

	failOn string

	live   map[string]int // outstanding objects per kind
	pushed [4]float32
	draws  int
}

func newMockBlitBackend() *mockBlitBackend {
	return &mockBlitBackend{nextHandle: 1, live: make(map[string]int)}
}

func (b *mockBlitBackend) create(kind string) (uint64, error) {
	b.calls = append(b.calls, "create "+kind)
	if b.failOn == kind {
		return 0, fmt.Errorf("induced %s failure", kind)
	}
	h := b.nextHandle
	b.nextHandle++
	b.live[kind]++
	return h, nil
}

func (b *mockBlitBackend) destroy(kind string) {
	b.calls = append(b.calls, "destroy "+kind)
	b.live[kind]--
	if b.live[kind] < 0 {
		panic("destroy of " + kind + " without a live object")
	}
}

func (b *mockBlitBackend) CreateRenderPass(format Format) (RenderPassID, error) {
	h, err := b.create("pass")
	return RenderPassID(h), err
}
func (b *mockBlitBackend) DestroyRenderPass(RenderPassID) { b.destroy("pass") }

func (b *mockBlitBackend) CreateDescriptorSetLayout() (DescriptorSetLayoutID, error) {
	h, err := b.create("ds layout")
	return DescriptorSetLayoutID(h), err
}
func (b *mockBlitBackend) DestroyDescriptorSetLayout(DescriptorSetLayoutID) { b.destroy("ds layout") }

func (b *mockBlitBackend) CreatePipelineLayout(dsl DescriptorSetLayoutID, pushConstantBytes uint32) (PipelineLayoutID, error) {
	if pushConstantBytes != blitPushConstantBytes {
		panic("unexpected push constant size")
	}
	h, err := b.create("layout")
	return PipelineLayoutID(h), err
}
func (b *mockBlitBackend) DestroyPipelineLayout(PipelineLayoutID) { b.destroy("layout") }

func (b *mockBlitBackend) CreateGraphicsPipeline(desc *BlitPipelineDescriptor) (PipelineID, error) {
	h, err := b.create("pipeline")
	return PipelineID(h), err
}
func (b *mockBlitBackend) DestroyPipeline(PipelineID) { b.destroy("pipeline") }

func (b *mockBlitBackend) CreateImageView(img *Image, level, layer uint32) (ImageViewID, error) {
	h, err := b.create("view")
	return ImageViewID(h), err
}
func (b *mockBlitBackend) DestroyImageView(ImageViewID) { b.destroy("view") }

func (b *mockBlitBackend) CreateSampler(spec SamplerSpec) (SamplerID, error) {
	h, err := b.create("sampler")
	return SamplerID(h), err
}
func (b *mockBlitBackend) DestroySampler(SamplerID) { b.destroy("sampler") }

func (b *mockBlitBackend) AllocateDescriptorSet(layout DescriptorSetLayoutID) (DescriptorSetID, error) {
	h, err := b.create("set")
	return DescriptorSetID(h), err
}
func (b *mockBlitBackend) FreeDescriptorSet(DescriptorSetID) { b.destroy("set") }

func (b *mockBlitBackend) WriteCombinedImageSampler(set DescriptorSetID, view ImageViewID, sampler SamplerID) {
	b.calls = append(b.calls, "write set")
}

func (b *mockBlitBackend) CreateFramebuffer(pass RenderPassID, attachment ImageViewID, width, height uint32) (FramebufferID, error) {
	h, err := b.create("framebuffer")
	return FramebufferID(h), err
}
func (b *mockBlitBackend) DestroyFramebuffer(FramebufferID) { b.destroy("framebuffer") }

func (b *mockBlitBackend) PushRecordingState() { b.calls = append(b.calls, "push state") }
func (b *mockBlitBackend) PopRecordingState()  { b.calls = append(b.calls, "pop state") }

func (b *mockBlitBackend) BeginRenderPass(pass RenderPassID, fb FramebufferID, area Rect) error {
	b.calls = append(b.calls, "begin pass")
	return nil
}
func (b *mockBlitBackend) EndRenderPass()          { b.calls = append(b.calls, "end pass") }
func (b *mockBlitBackend) BindPipeline(PipelineID) { b.calls = append(b.calls, "bind pipeline") }
func (b *mockBlitBackend) BindDescriptorSet(PipelineLayoutID, DescriptorSetID) {
	b.calls = append(b.calls, "bind set")
}

func (b *mockBlitBackend) PushConstants(layout PipelineLayoutID, data [4]float32) {
	b.calls = append(b.calls, "push constants")
	b.pushed = data
}

func (b *mockBlitBackend) SetViewport(x, y, width, height float32) {
	b.calls = append(b.calls, "set viewport")
}
func (b *mockBlitBackend) SetScissor(area Rect) { b.calls = append(b.calls, "set scissor") }
func (b *mockBlitBackend) Draw(vertexCount, instanceCount, firstVertex, firstInstance uint32) {
	b.calls = append(b.calls, fmt.Sprintf("draw %d", vertexCount))
	b.draws++
}

// precompiledEngine builds an engine whose blit shaders are already
// present, so pipeline cache tests exercise object creation without
// running the shader compiler.
func precompiledEngine(backend BlitBackend) (*Engine, *mockRecorder, *mockAllocator) {
	rec := newMockRecorder()
	alloc := newMockAllocator()
	e := New(rec, alloc, WithBlitBackend(backend))
	e.blit.vsSPIRV = []uint32{0x07230203}
	e.blit.fsFloatSPIRV = []uint32{0x07230203}
	e.blit.fsUintSPIRV = []uint32{0x07230203}
	return e, rec, alloc
}

func TestBlitShaderPath(t *testing.T) {
	backend := newMockBlitBackend()
	e, _, alloc := precompiledEngine(backend)

	src := alloc.newTestImage2D(FormatRGBA8Unorm, 32, 32, 1)
	dst := alloc.newTestImage2D(FormatRGBA8Unorm, 64, 64, 1)

	// Scaled raster-to-raster with linear filtering: only the shader path
	// can express this.
	region := ImageBlit{
		SrcSubresource: SubresourceLayers{Aspect: AspectColor, LayerCount: 1},
		SrcOffsets:     [2]Offset3D{{}, {X: 32, Y: 32, Z: 1}},
		DstSubresource: SubresourceLayers{Aspect: AspectColor, LayerCount: 1},
		DstOffsets:     [2]Offset3D{{}, {X: 64, Y: 64, Z: 1}},
	}
	e.BlitImage(dst, src, []ImageBlit{region}, FilterLinear)

	if backend.draws != 1 {
		t.Fatalf("got %d draws, want 1", backend.draws)
	}
	if backend.pushed != [4]float32{0, 0, 1, 1} {
		t.Fatalf("pushed texture box %v", backend.pushed)
	}

	// Recording state wraps the draws, and every transient object was
	// released: only the cached pass/pipeline and layouts stay live.
	assertBalanced(t, backend, "view", "framebuffer", "set", "sampler")
	if backend.live["pipeline"] != 1 || backend.live["pass"] != 1 {
		t.Fatalf("pipeline cache live objects: %v", backend.live)
	}

	e.Close()
	for kind, n := range backend.live {
		if n != 0 {
			t.Fatalf("%d %s objects leaked after close", n, kind)
		}
	}
}

func assertBalanced(t *testing.T, b *mockBlitBackend, kinds ...string) {
	t.Helper()
	for _, kind := range kinds {
		if b.live[kind] != 0 {
			t.Fatalf("%d outstanding %s objects", b.live[kind], kind)
		}
	}
}

func TestBlitShaderMirror(t *testing.T) {
	backend := newMockBlitBackend()
	e, _, alloc := precompiledEngine(backend)

	src := alloc.newTestImage2D(FormatRGBA8Unorm, 32, 32, 1)
	dst := alloc.newTestImage2D(FormatRGBA8Unorm, 32, 32, 1)

	// Destination corners reversed on X: the sampled box swaps its
	// horizontal corners instead of the draw rectangle.
	region := ImageBlit{
		SrcSubresource: SubresourceLayers{Aspect: AspectColor, LayerCount: 1},
		SrcOffsets:     [2]Offset3D{{}, {X: 32, Y: 32, Z: 1}},
		DstSubresource: SubresourceLayers{Aspect: AspectColor, LayerCount: 1},
		DstOffsets:     [2]Offset3D{{X: 32}, {X: 0, Y: 32, Z: 1}},
	}
	e.BlitImage(dst, src, []ImageBlit{region}, FilterNearest)

	if backend.pushed != [4]float32{1, 0, 0, 1} {
		t.Fatalf("pushed texture box %v, want X corners swapped", backend.pushed)
	}
}

func TestBlitShaderMultiLayer(t *testing.T) {
	backend := newMockBlitBackend()
	e, _, alloc := precompiledEngine(backend)

	src := alloc.newTestImage2D(FormatRGBA8Unorm, 32, 32, 3)
	dst := alloc.newTestImage2D(FormatRGBA8Unorm, 64, 64, 3)

	region := fullBlitRegion(0, 0, 3)
	region.SrcOffsets[1] = Offset3D{X: 32, Y: 32, Z: 1}
	region.DstOffsets[1] = Offset3D{X: 64, Y: 64, Z: 1}
	e.BlitImage(dst, src, []ImageBlit{region}, FilterLinear)

	if backend.draws != 3 {
		t.Fatalf("got %d draws, want one per layer", backend.draws)
	}
	// One pipeline serves all layers.
	if backend.live["pipeline"] != 1 {
		t.Fatalf("live pipelines: %d", backend.live["pipeline"])
	}
	assertBalanced(t, backend, "view", "framebuffer", "set", "sampler")
}

func TestBlitShaderTransientFailureCleansUp(t *testing.T) {
	for _, failOn := range []string{"view", "framebuffer", "set", "sampler"} {
		t.Run(failOn, func(t *testing.T) {
			backend := newMockBlitBackend()
			backend.failOn = failOn
			e, _, alloc := precompiledEngine(backend)

			src := alloc.newTestImage2D(FormatRGBA8Unorm, 32, 32, 1)
			dst := alloc.newTestImage2D(FormatRGBA8Unorm, 64, 64, 1)

			region := fullBlitRegion(0, 0, 1)
			region.SrcOffsets[1] = Offset3D{X: 32, Y: 32, Z: 1}
			region.DstOffsets[1] = Offset3D{X: 64, Y: 64, Z: 1}

			handled, err := e.blitShader(dst, src, &region, FilterLinear)
			if !handled {
				t.Fatalf("eligible region reported unhandled")
			}
			if !errors.Is(err, ErrTransientObject) {
				t.Fatalf("err = %v, want ErrTransientObject", err)
			}
			if backend.draws != 0 {
				t.Fatalf("draw recorded after failure")
			}
			assertBalanced(t, backend, "view", "framebuffer", "set", "sampler")
		})
	}
}

func TestBlitShaderRequiresBackend(t *testing.T) {
	e, _, alloc := newTestEngine()
	src := alloc.newTestImage2D(FormatRGBA8Unorm, 32, 32, 1)
	dst := alloc.newTestImage2D(FormatRGBA8Unorm, 64, 64, 1)

	region := fullBlitRegion(0, 0, 1)
	region.SrcOffsets[1] = Offset3D{X: 32, Y: 32, Z: 1}
	region.DstOffsets[1] = Offset3D{X: 64, Y: 64, Z: 1}

	handled, err := e.blitShader(dst, src, &region, FilterLinear)
	if handled || err != nil {
		t.Fatalf("got (%v, %v), want unhandled without a backend", handled, err)
	}
}

func TestBlitMultisampledPanics(t *testing.T) {
	e, _, alloc := newTestEngine()
	src := alloc.newTestImage2D(FormatRGBA8Unorm, 32, 32, 1)
	src.Samples = 4
	dst := alloc.newTestImage2D(FormatRGBA8Unorm, 32, 32, 1)

	defer func() {
		if recover() == nil {
			t.Fatalf("no panic for multisampled blit")
		}
	}()
	e.BlitImage(dst, src, []ImageBlit{fullBlitRegion(32, 32, 1)}, FilterNearest)
}

package tlb

import "fmt"

// mockRecorder hands out jobs backed by in-memory tile allocation state
// and collects everything the engine finishes or submits.
type mockRecorder struct {
	started   []*Job
	finished  []*Job
	transfers []*Transfer

	// failAfter makes StartJob fail once this many jobs were started.
	// Negative means never fail.
	failAfter int
}

func newMockRecorder() *mockRecorder {
	return &mockRecorder{failAfter: -1}
}

func (r *mockRecorder) StartJob() *Job {
	if r.failAfter >= 0 && len(r.started) >= r.failAfter {
		return nil
	}
	job := &Job{
		TileAlloc: &BufferObject{Handle: 0xf000, Size: 1 << 22},
	}
	r.started = append(r.started, job)
	return job
}

func (r *mockRecorder) FinishJob(job *Job) {
	r.finished = append(r.finished, job)
}

func (r *mockRecorder) SubmitTransfer(t *Transfer) {
	r.transfers = append(r.transfers, t)
}

// mockAllocator backs buffer objects with byte slices. The backing map
// doubles as the memory model for the packet interpreter in sim_test.go.
type mockAllocator struct {
	mem        map[*BufferObject][]byte
	nextHandle uint32

	failAlloc bool
	failMap   bool
	freed     []*BufferObject
}

func newMockAllocator() *mockAllocator {
	return &mockAllocator{mem: make(map[*BufferObject][]byte), nextHandle: 1}
}

func (a *mockAllocator) Alloc(size uint64, name string) (*BufferObject, error) {
	if a.failAlloc {
		return nil, fmt.Errorf("alloc %q: out of memory", name)
	}
	bo := &BufferObject{Handle: a.nextHandle, Size: size}
	a.nextHandle++
	a.mem[bo] = make([]byte, size)
	return bo, nil
}

func (a *mockAllocator) Map(bo *BufferObject) ([]byte, error) {
	if a.failMap {
		return nil, fmt.Errorf("map failed")
	}
	return a.mem[bo], nil
}

func (a *mockAllocator) Unmap(bo *BufferObject) {}

func (a *mockAllocator) Free(bo *BufferObject) {
	a.freed = append(a.freed, bo)
	delete(a.mem, bo)
}

// newTestBuffer registers a buffer of the given size with the allocator's
// memory model.
func (a *mockAllocator) newTestBuffer(size uint64) *Buffer {
	bo := &BufferObject{Handle: a.nextHandle, Size: size}
	a.nextHandle++
	a.mem[bo] = make([]byte, size)
	return &Buffer{Size: size, Mem: bo}
}

// newTestImage2D registers a single-level 2D raster image.
func (a *mockAllocator) newTestImage2D(format Format, width, height, layers uint32) *Image {
	cpp := format.CPP()
	stride := width * cpp
	layerSize := stride * height

	aspects := AspectColor
	if format.IsDepthStencil() {
		aspects = 0
		if format.HasDepth() {
			aspects |= AspectDepth
		}
		if format.HasStencil() {
			aspects |= AspectStencil
		}
	}

	size := uint64(layerSize * layers)
	bo := &BufferObject{Handle: a.nextHandle, Size: size}
	a.nextHandle++
	a.mem[bo] = make([]byte, size)

	return &Image{
		Type:    ImageType2D,
		Format:  format,
		Aspects: aspects,
		Extent:  Extent3D{Width: width, Height: height, Depth: 1},
		Levels:  1,
		Layers:  layers,
		Samples: 1,
		CPP:     cpp,
		Slices: []Slice{
			{Offset: 0, Stride: stride, Size: layerSize, Tiling: TilingRaster},
		},
		LayerSize: layerSize,
		Mem:       bo,
	}
}

// newTestEngine wires an engine to fresh mocks.
func newTestEngine(opts ...Option) (*Engine, *mockRecorder, *mockAllocator) {
	rec := newMockRecorder()
	alloc := newMockAllocator()
	return New(rec, alloc, opts...), rec, alloc
}

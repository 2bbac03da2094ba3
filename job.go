package tlb

// Job is one unit of GPU work: a frame's tiling geometry plus the command
// lists that drive it. Jobs are created by the Recorder collaborator at
// the start of every physical submission unit, populated by the emitters
// in this package, and handed back through Recorder.FinishJob when the
// operation's command sequence is complete.
//
// One job covers at most one 4096x4096 region; larger logical operations
// are split into multiple jobs, each independently created and finished.
type Job struct {
	// Tiling is the frame geometry, valid after StartFrame.
	Tiling FrameTiling

	// RCL is the main render command list.
	RCL CommandList

	// Indirect holds per-tile sublists referenced from RCL through
	// relocations.
	Indirect CommandList

	// TileAlloc is the tile allocation memory, assigned by the recorder
	// when it creates the job. Frame setup addresses into it per layer.
	TileAlloc *BufferObject

	// TileAllocSize is the allocation size StartFrame requires of
	// TileAlloc, in bytes.
	TileAllocSize uint32

	// extra buffer objects whose lifetime is tied to this job.
	extraBOs []*BufferObject

	// sublists counts per-tile list emissions; each must pair with
	// exactly one GenericTileListBranch in RCL.
	sublists int
}

// StartFrame fixes the job's frame geometry. Must be called exactly once,
// before any emission.
func (j *Job) StartFrame(width, height, layers, samples uint32, bpp InternalBPP) {
	if width == 0 || height == 0 || width > maxDimension || height > maxDimension {
		panic("tlb: job frame dimensions out of range")
	}
	if layers == 0 {
		panic("tlb: job needs at least one layer")
	}
	j.Tiling = computeFrameTiling(width, height, layers, samples, bpp)
	j.TileAllocSize = j.Tiling.tileAllocLayerStride() * layers

	Logger().Debug("frame started",
		"width", width, "height", height, "layers", layers,
		"tile_w", j.Tiling.TileWidth, "tile_h", j.Tiling.TileHeight,
		"supertiles_x", j.Tiling.FrameWidthInSupertiles,
		"supertiles_y", j.Tiling.FrameHeightInSupertiles)
}

// AddExtraBO ties a buffer object's lifetime to the job. The object is
// released by the job's completion handling, never by the operation that
// created it.
func (j *Job) AddExtraBO(bo *BufferObject) {
	j.extraBOs = append(j.extraBOs, bo)
}

// ExtraBOs returns the buffer objects attached to the job.
func (j *Job) ExtraBOs() []*BufferObject { return j.extraBOs }

// Sublists returns the number of per-tile sublists recorded so far.
func (j *Job) Sublists() int { return j.sublists }

// Recorder is the job/command-buffer collaborator: it owns job lifecycle
// and submission of direct transfer descriptors.
type Recorder interface {
	// StartJob creates a fresh job bound to the current command stream,
	// or nil when resources are exhausted. The recorder assigns the job's
	// tile allocation memory before or after recording, at its option.
	StartJob() *Job

	// FinishJob closes a fully recorded job and queues it.
	FinishJob(job *Job)

	// SubmitTransfer queues one direct transfer descriptor, bypassing the
	// tile-buffer pipeline.
	SubmitTransfer(t *Transfer)
}

// Package tlb implements copy, clear, and blit operations for a tile-based
// GPU by driving its tiling pipeline as an implicit data-movement engine.
//
// # Overview
//
// The target hardware has no general copy primitive. Instead, most transfers
// are synthesized by building per-tile command lists that load source data
// into the on-chip tile buffer (TLB) in one format and memory layout, and
// store it back out in another. This package builds those command lists:
//
//   - Format resolution: mapping a logical pixel format and aspect
//     (color/depth/stencil) to the hardware's internal tile-buffer types,
//     including compatible substitutions for formats the tile buffer cannot
//     render directly.
//   - Render command list (RCL) emission: prologue, per-layer frame setup,
//     per-tile load/store sublists referenced through relocations, and the
//     supertile coordinate sweep that triggers execution.
//   - Operation drivers: copy image<->buffer, image<->image, buffer<->buffer,
//     clear, fill, and update, each splitting oversized work into jobs
//     bounded to 4096x4096 pixels.
//   - A direct transfer path that bypasses the tile buffer entirely for
//     eligible same-format unscaled blits.
//   - A shader fallback that draws a textured full-screen quad for blits the
//     fixed-function paths cannot express (scaling, mirroring, filtering).
//
// # Collaborators
//
// The package records work but does not own GPU submission. Three small
// interfaces connect it to its host driver:
//
//   - [Recorder]: job lifecycle and direct transfer submission.
//   - [Allocator]: buffer object allocation and mapping.
//   - [BlitBackend]: pipeline/render-pass/view/sampler objects and draw
//     recording for the shader fallback.
//
// Command lists are produced as typed packet streams ([Packet]); byte-level
// encoding is the host driver's concern.
//
// # Concurrency
//
// Recording is single-threaded and synchronous. The only cross-goroutine
// state is the blit pipeline cache inside [Engine], which is guarded by its
// own mutex.
//
// # Logging
//
// The package is silent by default. Call [SetLogger] to receive structured
// diagnostics (job geometry at Debug, allocation failures at Warn).
package tlb

package tlb

import "log/slog"

// Engine records TLB copy, clear, and blit operations against a host
// driver's collaborators. One Engine belongs to one device; create it at
// device creation and Close it at device destruction.
//
// All operation methods are synchronous and must be called from the
// thread that owns the command stream. The blit pipeline cache inside the
// engine is the only state shared between goroutines.
type Engine struct {
	rec     Recorder
	alloc   Allocator
	backend BlitBackend

	directDisabled bool

	blit *blitMeta
}

// Option configures an Engine during creation.
type Option func(*Engine)

// WithBlitBackend enables the shader fallback path. Without it, blits
// that neither fixed-function path can express are a fatal capability
// gap.
func WithBlitBackend(b BlitBackend) Option {
	return func(e *Engine) { e.backend = b }
}

// WithDirectTransferDisabled forces all blits off the direct transfer
// path. Intended for driver debugging and tests.
func WithDirectTransferDisabled() Option {
	return func(e *Engine) { e.directDisabled = true }
}

// WithLogger installs the package logger. Equivalent to calling
// [SetLogger] before New.
func WithLogger(l *slog.Logger) Option {
	return func(e *Engine) { SetLogger(l) }
}

// New creates an engine bound to the given collaborators.
func New(rec Recorder, alloc Allocator, opts ...Option) *Engine {
	e := &Engine{
		rec:   rec,
		alloc: alloc,
		blit:  newBlitMeta(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Close releases the cached blit pipelines and layouts. The engine must
// not be used afterwards.
func (e *Engine) Close() {
	if e.backend != nil {
		e.blit.destroy(e.backend)
	}
}

// canUseTLB reports whether an image region can run through the tile
// buffer, resolving the framebuffer format to use.
//
// Two conditions gate the path: the region must start at (0,0), because
// supertile coverage always begins at the origin, and the image's format
// must either render natively to the tile buffer or have a bit-compatible
// substitute.
func canUseTLB(img *Image, offset Offset3D) (Format, bool) {
	if offset.X != 0 || offset.Y != 0 {
		return FormatUndefined, false
	}

	if formatTable[img.Format].rt != OutputNone || img.Format.IsDepthStencil() {
		return img.Format, true
	}

	if compat := CompatibleTileFormat(img.Format); compat != FormatUndefined {
		return compat, true
	}
	return FormatUndefined, false
}

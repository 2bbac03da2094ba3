package tlb

import "errors"

// Package errors.
var (
	// ErrJobExhausted is returned when the recorder cannot start a new job.
	ErrJobExhausted = errors.New("tlb: job allocation failed")

	// ErrNoBlitBackend is returned when the shader blit path is needed but
	// the engine was created without a BlitBackend.
	ErrNoBlitBackend = errors.New("tlb: no blit backend configured")

	// ErrShaderCompile is returned when the embedded blit shaders fail to
	// compile to SPIR-V.
	ErrShaderCompile = errors.New("tlb: blit shader compilation failed")

	// ErrPipelineCreate is returned when building a cached blit pipeline
	// fails.
	ErrPipelineCreate = errors.New("tlb: blit pipeline creation failed")

	// ErrTransientObject is returned when a per-layer transient object
	// (view, sampler, descriptor set, framebuffer) cannot be created during
	// a shader blit.
	ErrTransientObject = errors.New("tlb: transient blit object creation failed")
)

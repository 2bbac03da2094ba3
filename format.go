package tlb

// Format identifies a logical pixel format, following Vulkan naming.
// Only formats that can appear in tile-buffer operations are declared;
// the zero value is FormatUndefined.
type Format uint32

// Logical pixel formats.
const (
	FormatUndefined Format = iota

	FormatR8Unorm
	FormatR8Snorm
	FormatR8Uint
	FormatR8Sint
	FormatRG8Unorm
	FormatRG8Snorm
	FormatRG8Uint
	FormatRG8Sint
	FormatRGBA8Unorm
	FormatRGBA8Snorm
	FormatRGBA8Uint
	FormatRGBA8Sint
	FormatRGBA8SRGB
	FormatBGRA8Unorm
	FormatBGRA8SRGB
	FormatABGR8UnormPack32
	FormatABGR8SnormPack32
	FormatABGR8UintPack32

	FormatR16Unorm
	FormatR16Snorm
	FormatR16Uint
	FormatR16Sint
	FormatR16Float
	FormatRG16Unorm
	FormatRG16Snorm
	FormatRG16Uint
	FormatRG16Sint
	FormatRG16Float
	FormatRGBA16Unorm
	FormatRGBA16Snorm
	FormatRGBA16Uint
	FormatRGBA16Sint
	FormatRGBA16Float

	FormatR32Uint
	FormatR32Sint
	FormatR32Float
	FormatRG32Float
	FormatRGBA32Float

	FormatRGB10A2Unorm
	FormatRG11B10Float
	FormatE5B9G9R9Float

	FormatD16Unorm
	FormatD32Float
	FormatX8D24Unorm
	FormatD24S8
	FormatS8Uint

	formatCount
)

// Aspect selects sub-images of a combined format, Vulkan style.
type Aspect uint8

// Aspect bits.
const (
	AspectColor Aspect = 1 << iota
	AspectDepth
	AspectStencil
)

const aspectDepthStencil = AspectDepth | AspectStencil

// InternalType is the tile buffer's per-channel representation.
type InternalType uint8

// Internal tile-buffer types.
const (
	InternalType8I InternalType = iota
	InternalType8UI
	InternalType8
	InternalType16I
	InternalType16UI
	InternalType16F
	InternalType32I
	InternalType32UI
	InternalType32F
)

// InternalBPP classifies per-pixel tile-buffer storage. The byte size of
// one pixel's worth of tile buffer is 4 << bpp.
type InternalBPP uint8

// Internal bits-per-pixel classes.
const (
	InternalBPP32 InternalBPP = iota
	InternalBPP64
	InternalBPP128
)

// Size returns the tile-buffer pixel size in bytes for this class.
func (b InternalBPP) Size() uint32 { return 4 << b }

// OutputFormat is the hardware render-target (output image) format code
// used by tile-buffer load and store instructions.
type OutputFormat uint8

// Hardware output image formats. OutputNone marks formats the tile buffer
// cannot render or store directly.
const (
	OutputNone OutputFormat = iota
	OutputR8
	OutputR8I
	OutputR8UI
	OutputRG8
	OutputRG8I
	OutputRG8UI
	OutputRGBA8
	OutputRGBA8I
	OutputRGBA8UI
	OutputSRGB8Alpha8
	OutputR16I
	OutputR16UI
	OutputR16F
	OutputRG16I
	OutputRG16UI
	OutputRG16F
	OutputRGBA16I
	OutputRGBA16UI
	OutputRGBA16F
	OutputR32I
	OutputR32UI
	OutputR32F
	OutputRG32F
	OutputRGBA32F
	OutputRGB10A2
	OutputR11G11B10F
	OutputDepth16
	OutputDepth24X8
	OutputDepth32F
	OutputDepth24S8
)

// TexType is the hardware texture data type used by the direct transfer
// path and texture sampling. TexNone marks formats the sampler cannot read.
type TexType uint8

// Hardware texture data types.
const (
	TexNone TexType = iota
	TexR8
	TexR8I
	TexR8UI
	TexRG8
	TexRG8I
	TexRG8UI
	TexRGBA8
	TexRGBA8I
	TexRGBA8UI
	TexSRGB8Alpha8
	TexR16
	TexR16I
	TexR16UI
	TexR16F
	TexRG16
	TexRG16I
	TexRG16UI
	TexRG16F
	TexRGBA16
	TexRGBA16I
	TexRGBA16UI
	TexRGBA16F
	TexR32I
	TexR32UI
	TexR32F
	TexRG32F
	TexRGBA32F
	TexRGB10A2
	TexR11G11B10F
	TexRGB9E5
	TexDepth16
	TexDepth24X8
	TexDepth32F
	TexDepth24S8
)

// Swizzle identifies the source component feeding an output channel.
type Swizzle uint8

// Swizzle sources.
const (
	SwizzleX Swizzle = iota
	SwizzleY
	SwizzleZ
	SwizzleW
	SwizzleZero
	SwizzleOne
)

// Common swizzle orders.
var (
	swizzleXYZW = [4]Swizzle{SwizzleX, SwizzleY, SwizzleZ, SwizzleW}
	swizzleZYXW = [4]Swizzle{SwizzleZ, SwizzleY, SwizzleX, SwizzleW}
	swizzleX001 = [4]Swizzle{SwizzleX, SwizzleZero, SwizzleZero, SwizzleOne}
	swizzleXY01 = [4]Swizzle{SwizzleX, SwizzleY, SwizzleZero, SwizzleOne}
)

// formatRecord is the static per-format hardware metadata: render-target
// type, texture type, channel swizzle, and bytes per pixel. Read-only.
type formatRecord struct {
	rt      OutputFormat
	tex     TexType
	swizzle [4]Swizzle
	cpp     uint32
}

// formatTable holds one record per declared format. Formats with rt ==
// OutputNone cannot be rendered to the tile buffer natively and must go
// through CompatibleTileFormat before any TLB emission.
var formatTable = map[Format]formatRecord{
	FormatR8Unorm:  {OutputR8, TexR8, swizzleX001, 1},
	FormatR8Snorm:  {OutputNone, TexR8, swizzleX001, 1},
	FormatR8Uint:   {OutputR8UI, TexR8UI, swizzleX001, 1},
	FormatR8Sint:   {OutputR8I, TexR8I, swizzleX001, 1},
	FormatRG8Unorm: {OutputRG8, TexRG8, swizzleXY01, 2},
	FormatRG8Snorm: {OutputNone, TexRG8, swizzleXY01, 2},
	FormatRG8Uint:  {OutputRG8UI, TexRG8UI, swizzleXY01, 2},
	FormatRG8Sint:  {OutputRG8I, TexRG8I, swizzleXY01, 2},

	FormatRGBA8Unorm:       {OutputRGBA8, TexRGBA8, swizzleXYZW, 4},
	FormatRGBA8Snorm:       {OutputNone, TexRGBA8, swizzleXYZW, 4},
	FormatRGBA8Uint:        {OutputRGBA8UI, TexRGBA8UI, swizzleXYZW, 4},
	FormatRGBA8Sint:        {OutputRGBA8I, TexRGBA8I, swizzleXYZW, 4},
	FormatRGBA8SRGB:        {OutputSRGB8Alpha8, TexSRGB8Alpha8, swizzleXYZW, 4},
	FormatBGRA8Unorm:       {OutputRGBA8, TexRGBA8, swizzleZYXW, 4},
	FormatBGRA8SRGB:        {OutputSRGB8Alpha8, TexSRGB8Alpha8, swizzleZYXW, 4},
	FormatABGR8UnormPack32: {OutputRGBA8, TexRGBA8, swizzleXYZW, 4},
	FormatABGR8SnormPack32: {OutputNone, TexRGBA8, swizzleXYZW, 4},
	FormatABGR8UintPack32:  {OutputRGBA8UI, TexRGBA8UI, swizzleXYZW, 4},

	FormatR16Unorm:  {OutputNone, TexR16, swizzleX001, 2},
	FormatR16Snorm:  {OutputNone, TexR16, swizzleX001, 2},
	FormatR16Uint:   {OutputR16UI, TexR16UI, swizzleX001, 2},
	FormatR16Sint:   {OutputR16I, TexR16I, swizzleX001, 2},
	FormatR16Float:  {OutputR16F, TexR16F, swizzleX001, 2},
	FormatRG16Unorm: {OutputNone, TexRG16, swizzleXY01, 4},
	FormatRG16Snorm: {OutputNone, TexRG16, swizzleXY01, 4},
	FormatRG16Uint:  {OutputRG16UI, TexRG16UI, swizzleXY01, 4},
	FormatRG16Sint:  {OutputRG16I, TexRG16I, swizzleXY01, 4},
	FormatRG16Float: {OutputRG16F, TexRG16F, swizzleXY01, 4},

	FormatRGBA16Unorm: {OutputNone, TexRGBA16, swizzleXYZW, 8},
	FormatRGBA16Snorm: {OutputNone, TexRGBA16, swizzleXYZW, 8},
	FormatRGBA16Uint:  {OutputRGBA16UI, TexRGBA16UI, swizzleXYZW, 8},
	FormatRGBA16Sint:  {OutputRGBA16I, TexRGBA16I, swizzleXYZW, 8},
	FormatRGBA16Float: {OutputRGBA16F, TexRGBA16F, swizzleXYZW, 8},

	FormatR32Uint:     {OutputR32UI, TexR32UI, swizzleX001, 4},
	FormatR32Sint:     {OutputR32I, TexR32I, swizzleX001, 4},
	FormatR32Float:    {OutputR32F, TexR32F, swizzleX001, 4},
	FormatRG32Float:   {OutputRG32F, TexRG32F, swizzleXY01, 8},
	FormatRGBA32Float: {OutputRGBA32F, TexRGBA32F, swizzleXYZW, 16},

	FormatRGB10A2Unorm:  {OutputRGB10A2, TexRGB10A2, swizzleXYZW, 4},
	FormatRG11B10Float:  {OutputR11G11B10F, TexR11G11B10F, swizzleXYZW, 4},
	FormatE5B9G9R9Float: {OutputNone, TexRGB9E5, swizzleXYZW, 4},

	FormatD16Unorm:   {OutputDepth16, TexDepth16, swizzleX001, 2},
	FormatD32Float:   {OutputDepth32F, TexDepth32F, swizzleX001, 4},
	FormatX8D24Unorm: {OutputDepth24X8, TexDepth24X8, swizzleX001, 4},
	FormatD24S8:      {OutputDepth24S8, TexDepth24S8, swizzleX001, 4},
	FormatS8Uint:     {OutputR8UI, TexNone, swizzleX001, 1},
}

// lookupFormat returns the static hardware record for f.
func lookupFormat(f Format) (formatRecord, bool) {
	rec, ok := formatTable[f]
	return rec, ok
}

// CPP returns the bytes per pixel of f, or 0 if f is not a known format.
func (f Format) CPP() uint32 {
	return formatTable[f].cpp
}

// HasDepth reports whether f carries a depth aspect.
func (f Format) HasDepth() bool {
	switch f {
	case FormatD16Unorm, FormatD32Float, FormatX8D24Unorm, FormatD24S8:
		return true
	}
	return false
}

// HasStencil reports whether f carries a stencil aspect.
func (f Format) HasStencil() bool {
	return f == FormatD24S8 || f == FormatS8Uint
}

// IsDepthStencil reports whether f is a depth and/or stencil format.
func (f Format) IsDepthStencil() bool {
	return f.HasDepth() || f.HasStencil()
}

// isInteger reports whether f has integer (non-normalized) channels.
// Used to pick the integer-sampling variant of the blit fragment shader.
func (f Format) isInteger() bool {
	switch f {
	case FormatR8Uint, FormatR8Sint, FormatRG8Uint, FormatRG8Sint,
		FormatRGBA8Uint, FormatRGBA8Sint, FormatABGR8UintPack32,
		FormatR16Uint, FormatR16Sint, FormatRG16Uint, FormatRG16Sint,
		FormatRGBA16Uint, FormatRGBA16Sint,
		FormatR32Uint, FormatR32Sint:
		return true
	}
	return false
}

// CompatibleTileFormat returns a same-bit-layout format that the tile
// buffer can render when f itself cannot (signed-normalized and certain
// packed-float formats), or FormatUndefined when no substitute exists.
// Copies routed through a substitute reinterpret bits; they never convert.
func CompatibleTileFormat(f Format) Format {
	switch f {
	case FormatRGBA8Snorm:
		return FormatRGBA8Uint
	case FormatRG8Snorm:
		return FormatRG8Uint
	case FormatR8Snorm:
		return FormatR8Uint
	case FormatABGR8SnormPack32:
		return FormatABGR8UintPack32
	case FormatR16Unorm, FormatR16Snorm:
		return FormatR16Uint
	case FormatRG16Unorm, FormatRG16Snorm:
		return FormatRG16Uint
	case FormatRGBA16Unorm, FormatRGBA16Snorm:
		return FormatRGBA16Uint
	case FormatE5B9G9R9Float:
		return FormatR32Float
	default:
		return FormatUndefined
	}
}

// needsRBSwap reports whether f stores its blue component where the
// hardware expects red, requiring the load/store R/B swap flag.
func needsRBSwap(f Format) bool {
	return formatTable[f].swizzle[0] == SwizzleZ
}

// internalTypeBPPForOutput maps a hardware output format to the internal
// tile-buffer type and per-pixel storage class used when rendering to it.
func internalTypeBPPForOutput(rt OutputFormat) (InternalType, InternalBPP) {
	switch rt {
	case OutputR8, OutputRG8, OutputRGBA8:
		return InternalType8, InternalBPP32
	case OutputR8I, OutputRG8I, OutputRGBA8I:
		return InternalType8I, InternalBPP32
	case OutputR8UI, OutputRG8UI, OutputRGBA8UI:
		return InternalType8UI, InternalBPP32
	case OutputR16I, OutputRG16I:
		return InternalType16I, InternalBPP32
	case OutputRGBA16I:
		return InternalType16I, InternalBPP64
	case OutputR16UI, OutputRG16UI:
		return InternalType16UI, InternalBPP32
	case OutputRGBA16UI:
		return InternalType16UI, InternalBPP64
	case OutputR16F, OutputRG16F:
		return InternalType16F, InternalBPP32
	case OutputRGBA16F, OutputSRGB8Alpha8, OutputRGB10A2, OutputR11G11B10F:
		// Blendable formats render at 16F precision.
		return InternalType16F, InternalBPP64
	case OutputR32I:
		return InternalType32I, InternalBPP32
	case OutputR32UI:
		return InternalType32UI, InternalBPP32
	case OutputR32F:
		return InternalType32F, InternalBPP32
	case OutputRG32F:
		return InternalType32F, InternalBPP64
	case OutputRGBA32F:
		return InternalType32F, InternalBPP128
	default:
		panic("tlb: no internal type for output format")
	}
}

// internalTypeBPP maps an aspect-qualified format to the internal
// tile-buffer representation used for it.
//
// Depth/stencil aspects cannot use raster loads and stores, so they always
// resolve through a fixed color-format table: 16-bit depth as 16UI, 32-bit
// float depth as 32F, and the packed 24-bit variants as 8UI so the X/S bits
// can be relocated per-channel (see the reverse+swap logic on image loads).
func internalTypeBPP(f Format, aspects Aspect) (InternalType, InternalBPP) {
	if aspects&aspectDepthStencil != 0 {
		switch f {
		case FormatD16Unorm:
			return InternalType16UI, InternalBPP64
		case FormatD32Float:
			return InternalType32F, InternalBPP128
		case FormatX8D24Unorm, FormatD24S8, FormatS8Uint:
			return InternalType8UI, InternalBPP32
		default:
			panic("tlb: unsupported depth/stencil format")
		}
	}
	rec, ok := lookupFormat(f)
	if !ok || rec.rt == OutputNone {
		panic("tlb: format has no tile buffer representation")
	}
	return internalTypeBPPForOutput(rec.rt)
}

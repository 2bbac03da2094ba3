package tlb

import "math"

// Clear color packing. The hardware takes clear values as up to four raw
// 32-bit words laid out according to the internal tile-buffer type. When
// a clear runs through a compatible substitute format the value must be
// packed with the semantics of the image's own format instead, so the
// bits stored back to memory decode correctly under that format.

func unormBits(f float32, bits uint32) uint32 {
	if f != f || f <= 0 {
		return 0
	}
	if f >= 1 {
		return 1<<bits - 1
	}
	return uint32(f*float32(int32(1)<<bits-1) + 0.5)
}

func snormBits(f float32, bits uint32) uint32 {
	if f != f {
		return 0
	}
	if f < -1 {
		f = -1
	} else if f > 1 {
		f = 1
	}
	max := float32(int32(1)<<(bits-1) - 1)
	var v int32
	if f < 0 {
		v = int32(f*max - 0.5)
	} else {
		v = int32(f*max + 0.5)
	}
	return uint32(v) & (1<<bits - 1)
}

// float16Bits converts to IEEE half precision, round to nearest even.
func float16Bits(f float32) uint32 {
	u := math.Float32bits(f)
	sign := (u >> 16) & 0x8000
	exp := int32((u>>23)&0xff) - 127
	mant := u & 0x7fffff

	switch {
	case exp == 128: // Inf or NaN
		if mant != 0 {
			return sign | 0x7e00
		}
		return sign | 0x7c00
	case exp > 15:
		return sign | 0x7c00
	case exp >= -14:
		// Normal. Round the 13 dropped mantissa bits to nearest even.
		h := sign | uint32(exp+15)<<10 | mant>>13
		round := mant & 0x1fff
		if round > 0x1000 || (round == 0x1000 && h&1 != 0) {
			h++
		}
		return h
	case exp >= -24:
		// Subnormal half. The 24-bit significand shifts down so the
		// result scales by 2^-24.
		mant |= 0x800000
		shift := uint32(-exp - 1)
		h := sign | mant>>shift
		round := mant & (1<<shift - 1)
		half := uint32(1) << (shift - 1)
		if round > half || (round == half && h&1 != 0) {
			h++
		}
		return h
	default:
		return sign
	}
}

// packClearColorInternal packs a clear color into raw words following the
// internal tile-buffer type. Words beyond the internal pixel size are
// zero.
func packClearColorInternal(color *ClearColor, internalType InternalType, internalSize uint32) [4]uint32 {
	var hw [4]uint32
	f := &color.Float32
	u := &color.Uint32

	switch internalType {
	case InternalType8:
		hw[0] = unormBits(f[0], 8) | unormBits(f[1], 8)<<8 |
			unormBits(f[2], 8)<<16 | unormBits(f[3], 8)<<24
	case InternalType8I, InternalType8UI:
		hw[0] = u[0]&0xff | (u[1]&0xff)<<8 | (u[2]&0xff)<<16 | (u[3]&0xff)<<24
	case InternalType16F:
		hw[0] = float16Bits(f[0]) | float16Bits(f[1])<<16
		hw[1] = float16Bits(f[2]) | float16Bits(f[3])<<16
	case InternalType16I, InternalType16UI:
		hw[0] = u[0]&0xffff | u[1]<<16
		hw[1] = u[2]&0xffff | u[3]<<16
	case InternalType32F:
		hw[0] = math.Float32bits(f[0])
		hw[1] = math.Float32bits(f[1])
		hw[2] = math.Float32bits(f[2])
		hw[3] = math.Float32bits(f[3])
	case InternalType32I, InternalType32UI:
		hw = *u
	default:
		panic("tlb: clear color for unknown internal type")
	}

	for i := internalSize / 4; i < 4; i++ {
		hw[i] = 0
	}
	return hw
}

// packColorByFormat packs one pixel's worth of the color under the given
// format's memory layout, LSB first within each word. Only the formats
// that clear through a compatible substitute need this path.
func packColorByFormat(f Format, c [4]float32) [4]uint32 {
	var hw [4]uint32
	switch f {
	case FormatR8Snorm:
		hw[0] = snormBits(c[0], 8)
	case FormatRG8Snorm:
		hw[0] = snormBits(c[0], 8) | snormBits(c[1], 8)<<8
	case FormatRGBA8Snorm, FormatABGR8SnormPack32:
		hw[0] = snormBits(c[0], 8) | snormBits(c[1], 8)<<8 |
			snormBits(c[2], 8)<<16 | snormBits(c[3], 8)<<24
	case FormatR16Unorm:
		hw[0] = unormBits(c[0], 16)
	case FormatR16Snorm:
		hw[0] = snormBits(c[0], 16)
	case FormatRG16Unorm:
		hw[0] = unormBits(c[0], 16) | unormBits(c[1], 16)<<16
	case FormatRG16Snorm:
		hw[0] = snormBits(c[0], 16) | snormBits(c[1], 16)<<16
	case FormatRGBA16Unorm:
		hw[0] = unormBits(c[0], 16) | unormBits(c[1], 16)<<16
		hw[1] = unormBits(c[2], 16) | unormBits(c[3], 16)<<16
	case FormatRGBA16Snorm:
		hw[0] = snormBits(c[0], 16) | snormBits(c[1], 16)<<16
		hw[1] = snormBits(c[2], 16) | snormBits(c[3], 16)<<16
	case FormatE5B9G9R9Float:
		hw[0] = packRGB9E5(c[0], c[1], c[2])
	default:
		panic("tlb: no per-format clear packing for format")
	}
	return hw
}

const (
	rgb9e5MantissaBits = 9
	rgb9e5ExponentBias = 15
	rgb9e5MaxValue     = float32(0x1ff) / 0x200 * (1 << 16)
)

func clampRGB9E5(x float32) float32 {
	if !(x > 0) {
		return 0
	}
	if x > rgb9e5MaxValue {
		return rgb9e5MaxValue
	}
	return x
}

// packRGB9E5 encodes three channels into the shared-exponent
// E5B9G9R9 layout.
func packRGB9E5(r, g, b float32) uint32 {
	rc := clampRGB9E5(r)
	gc := clampRGB9E5(g)
	bc := clampRGB9E5(b)

	maxc := rc
	if gc > maxc {
		maxc = gc
	}
	if bc > maxc {
		maxc = bc
	}

	_, e := math.Frexp(float64(maxc))
	expShared := e + rgb9e5ExponentBias
	if expShared < 0 {
		expShared = 0
	}

	denom := math.Ldexp(1, expShared-rgb9e5ExponentBias-rgb9e5MantissaBits)
	maxm := int(float64(maxc)/denom + 0.5)
	if maxm == 1<<rgb9e5MantissaBits {
		expShared++
		denom *= 2
	}

	rm := uint32(float64(rc)/denom + 0.5)
	gm := uint32(float64(gc)/denom + 0.5)
	bm := uint32(float64(bc)/denom + 0.5)

	return rm | gm<<9 | bm<<18 | uint32(expShared)<<27
}

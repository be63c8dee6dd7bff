package math

import "math"

// IEEE-754 binary16 conversion. Chunk metadata stores min/max ranges as half
// pairs, so both directions must round-trip every finite half exactly.

// Float32ToHalf converts f to a binary16 bit pattern, rounding to nearest even.
// Values above the half range become infinity, NaN stays NaN.
func Float32ToHalf(f float32) uint16 {
	b := math.Float32bits(f)
	sign := uint16((b >> 16) & 0x8000)
	e := int32((b>>23)&0xFF) - 127
	m := b & 0x7FFFFF

	// Infinity and NaN.
	if e == 128 {
		if m != 0 {
			return sign | 0x7E00
		}
		return sign | 0x7C00
	}
	// Overflow to infinity.
	if e > 15 {
		return sign | 0x7C00
	}
	// Normal half range.
	if e >= -14 {
		he := uint16(e+15) << 10
		hm := uint16(m >> 13)
		rem := m & 0x1FFF
		if rem > 0x1000 || (rem == 0x1000 && hm&1 == 1) {
			// Carry may ripple into the exponent; that is the correct
			// rounding result (up to infinity at the very top).
			return sign + (he | hm) + 1
		}
		return sign | he | hm
	}
	// Underflow to zero. Values at e == -25 still round into the smallest
	// subnormal, so only smaller exponents flush.
	if e < -25 {
		return sign
	}
	// Subnormal half.
	m |= 0x800000
	shift := uint32(-e - 1) // 14..24
	hm := m >> shift
	rem := m & (1<<shift - 1)
	half := uint16(hm)
	mid := uint32(1) << (shift - 1)
	if rem > mid || (rem == mid && half&1 == 1) {
		half++
	}
	return sign | half
}

// HalfToFloat32 converts a binary16 bit pattern back to float32. Exact for
// every finite half value.
func HalfToFloat32(h uint16) float32 {
	sign := uint32(h&0x8000) << 16
	e := uint32(h>>10) & 0x1F
	m := uint32(h & 0x3FF)

	switch {
	case e == 0:
		if m == 0 {
			return math.Float32frombits(sign)
		}
		// Subnormal: renormalize into float32.
		exp := uint32(113)
		for m&0x400 == 0 {
			m <<= 1
			exp--
		}
		m &= 0x3FF
		return math.Float32frombits(sign | exp<<23 | m<<13)
	case e == 0x1F:
		if m == 0 {
			return math.Float32frombits(sign | 0x7F800000)
		}
		return math.Float32frombits(sign | 0x7FC00000 | m<<13)
	default:
		return math.Float32frombits(sign | (e+112)<<23 | m<<13)
	}
}

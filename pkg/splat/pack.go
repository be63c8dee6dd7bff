package splat

import (
	"encoding/binary"
	gomath "math"

	"github.com/arnevik/splatstream/pkg/math"
)

// Per-splat packing for the quantized attribute formats. All layouts are
// little-endian and frozen; renderers unpack them without this package.

func absf(x float32) float32 {
	if x < 0 {
		return -x
	}
	return x
}

func signf(x float32) float32 {
	if x < 0 {
		return -1
	}
	return 1
}

// encodeNorm16 packs v, clamped to [0,1], as three consecutive uint16s.
func encodeNorm16(dst []byte, v math.Vec3) {
	v = v.Clamp01()
	binary.LittleEndian.PutUint16(dst[0:2], uint16(v.X*65535.5))
	binary.LittleEndian.PutUint16(dst[2:4], uint16(v.Y*65535.5))
	binary.LittleEndian.PutUint16(dst[4:6], uint16(v.Z*65535.5))
}

func decodeNorm16(src []byte) math.Vec3 {
	return math.Vec3{
		X: float32(binary.LittleEndian.Uint16(src[0:2])) / 65535,
		Y: float32(binary.LittleEndian.Uint16(src[2:4])) / 65535,
		Z: float32(binary.LittleEndian.Uint16(src[4:6])) / 65535,
	}
}

// encodeNorm11 packs v, clamped to [0,1], as 11.10.11 bits in one word.
func encodeNorm11(dst []byte, v math.Vec3) {
	v = v.Clamp01()
	enc := uint32(v.X*2047.5) | uint32(v.Y*1023.5)<<11 | uint32(v.Z*2047.5)<<21
	binary.LittleEndian.PutUint32(dst[0:4], enc)
}

func decodeNorm11(src []byte) math.Vec3 {
	enc := binary.LittleEndian.Uint32(src[0:4])
	return math.Vec3{
		X: float32(enc&0x7FF) / 2047,
		Y: float32(enc>>11&0x3FF) / 1023,
		Z: float32(enc>>21&0x7FF) / 2047,
	}
}

// encodeNorm6 packs v, clamped to [0,1], as 6.5.5 bits in one half word.
func encodeNorm6(dst []byte, v math.Vec3) {
	v = v.Clamp01()
	enc := uint32(v.X*63.5) | uint32(v.Y*31.5)<<6 | uint32(v.Z*31.5)<<11
	binary.LittleEndian.PutUint16(dst[0:2], uint16(enc))
}

func decodeNorm6(src []byte) math.Vec3 {
	enc := binary.LittleEndian.Uint16(src[0:2])
	return math.Vec3{
		X: float32(enc&0x3F) / 63,
		Y: float32(enc>>6&0x1F) / 31,
		Z: float32(enc>>11&0x1F) / 31,
	}
}

// encodeVector writes one vector in the given format and returns the number
// of bytes written. VectorFloat32 stores the raw components; the normalized
// formats clamp to [0,1] first.
func encodeVector(dst []byte, v math.Vec3, format VectorFormat) int {
	switch format {
	case VectorNorm16:
		encodeNorm16(dst, v)
	case VectorNorm11:
		encodeNorm11(dst, v)
	case VectorNorm6:
		encodeNorm6(dst, v)
	default:
		binary.LittleEndian.PutUint32(dst[0:4], gomath.Float32bits(v.X))
		binary.LittleEndian.PutUint32(dst[4:8], gomath.Float32bits(v.Y))
		binary.LittleEndian.PutUint32(dst[8:12], gomath.Float32bits(v.Z))
	}
	return format.Size()
}

func decodeVector(src []byte, format VectorFormat) math.Vec3 {
	switch format {
	case VectorNorm16:
		return decodeNorm16(src)
	case VectorNorm11:
		return decodeNorm11(src)
	case VectorNorm6:
		return decodeNorm6(src)
	default:
		return math.Vec3{
			X: gomath.Float32frombits(binary.LittleEndian.Uint32(src[0:4])),
			Y: gomath.Float32frombits(binary.LittleEndian.Uint32(src[4:8])),
			Z: gomath.Float32frombits(binary.LittleEndian.Uint32(src[8:12])),
		}
	}
}

const invSqrt2 = float32(0.70710678118654752440)

// packSmallest3 rotates the largest-magnitude component of a normalized
// quaternion into the W slot, flips the sign so that slot is non-negative,
// and maps the remaining three components from [-1/sqrt2, 1/sqrt2] to [0,1].
// Returns the mapped components and the index of the dropped component.
func packSmallest3(q math.Quat) (math.Vec3, uint32) {
	index := uint32(0)
	maxV := absf(q.X)
	if a := absf(q.Y); a > maxV {
		index = 1
		maxV = a
	}
	if a := absf(q.Z); a > maxV {
		index = 2
		maxV = a
	}
	if a := absf(q.W); a > maxV {
		index = 3
	}
	switch index {
	case 0:
		q = math.Quat{X: q.Y, Y: q.Z, Z: q.W, W: q.X}
	case 1:
		q = math.Quat{X: q.X, Y: q.Z, Z: q.W, W: q.Y}
	case 2:
		q = math.Quat{X: q.X, Y: q.Y, Z: q.W, W: q.Z}
	}
	s := signf(q.W) * gomath.Sqrt2 * 0.5
	return math.Vec3{
		X: q.X*s + 0.5,
		Y: q.Y*s + 0.5,
		Z: q.Z*s + 0.5,
	}, index
}

// encodeQuat packs a rotation as 10.10.10.2: three smallest components at 10
// bits each and the dropped component's index in the top two bits. Rotations
// always use this layout regardless of the chosen vector formats.
func encodeQuat(dst []byte, q math.Quat) {
	v, index := packSmallest3(q.Normalize())
	v = v.Clamp01()
	enc := uint32(v.X*1023.5) | uint32(v.Y*1023.5)<<10 | uint32(v.Z*1023.5)<<20 | index<<30
	binary.LittleEndian.PutUint32(dst[0:4], enc)
}

func decodeQuat(src []byte) math.Quat {
	enc := binary.LittleEndian.Uint32(src[0:4])
	a := (float32(enc&0x3FF)/1023*2 - 1) * invSqrt2
	b := (float32(enc>>10&0x3FF)/1023*2 - 1) * invSqrt2
	c := (float32(enc>>20&0x3FF)/1023*2 - 1) * invSqrt2
	dd := 1 - a*a - b*b - c*c
	if dd < 0 {
		dd = 0
	}
	d := float32(gomath.Sqrt(float64(dd)))
	var q math.Quat
	switch enc >> 30 {
	case 0:
		q = math.Quat{X: d, Y: a, Z: b, W: c}
	case 1:
		q = math.Quat{X: a, Y: d, Z: b, W: c}
	case 2:
		q = math.Quat{X: a, Y: b, Z: d, W: c}
	default:
		q = math.Quat{X: a, Y: b, Z: c, W: d}
	}
	return q.Normalize()
}

// encodeSHCoeff writes one SH coefficient vector in the given format.
func encodeSHCoeff(dst []byte, v math.Vec3, format SHFormat) {
	switch format {
	case SHFloat16:
		binary.LittleEndian.PutUint16(dst[0:2], math.Float32ToHalf(v.X))
		binary.LittleEndian.PutUint16(dst[2:4], math.Float32ToHalf(v.Y))
		binary.LittleEndian.PutUint16(dst[4:6], math.Float32ToHalf(v.Z))
	case SHNorm11:
		encodeNorm11(dst, v)
	case SHNorm6:
		encodeNorm6(dst, v)
	default:
		binary.LittleEndian.PutUint32(dst[0:4], gomath.Float32bits(v.X))
		binary.LittleEndian.PutUint32(dst[4:8], gomath.Float32bits(v.Y))
		binary.LittleEndian.PutUint32(dst[8:12], gomath.Float32bits(v.Z))
	}
}

func decodeSHCoeff(src []byte, format SHFormat) math.Vec3 {
	switch format {
	case SHFloat16:
		return math.Vec3{
			X: math.HalfToFloat32(binary.LittleEndian.Uint16(src[0:2])),
			Y: math.HalfToFloat32(binary.LittleEndian.Uint16(src[2:4])),
			Z: math.HalfToFloat32(binary.LittleEndian.Uint16(src[4:6])),
		}
	case SHNorm11:
		return decodeNorm11(src)
	case SHNorm6:
		return decodeNorm6(src)
	default:
		return math.Vec3{
			X: gomath.Float32frombits(binary.LittleEndian.Uint32(src[0:4])),
			Y: gomath.Float32frombits(binary.LittleEndian.Uint32(src[4:8])),
			Z: gomath.Float32frombits(binary.LittleEndian.Uint32(src[8:12])),
		}
	}
}

// encodeColorPixel writes one RGBA texel in the given color format.
// ColorBC7 is handled at the texture level, never per pixel.
func encodeColorPixel(dst []byte, r, g, b, a float32, format ColorFormat) {
	switch format {
	case ColorFloat16x4:
		binary.LittleEndian.PutUint16(dst[0:2], math.Float32ToHalf(r))
		binary.LittleEndian.PutUint16(dst[2:4], math.Float32ToHalf(g))
		binary.LittleEndian.PutUint16(dst[4:6], math.Float32ToHalf(b))
		binary.LittleEndian.PutUint16(dst[6:8], math.Float32ToHalf(a))
	case ColorNorm8x4:
		enc := uint32(math.Clamp01(r)*255.5) |
			uint32(math.Clamp01(g)*255.5)<<8 |
			uint32(math.Clamp01(b)*255.5)<<16 |
			uint32(math.Clamp01(a)*255.5)<<24
		binary.LittleEndian.PutUint32(dst[0:4], enc)
	default:
		binary.LittleEndian.PutUint32(dst[0:4], gomath.Float32bits(r))
		binary.LittleEndian.PutUint32(dst[4:8], gomath.Float32bits(g))
		binary.LittleEndian.PutUint32(dst[8:12], gomath.Float32bits(b))
		binary.LittleEndian.PutUint32(dst[12:16], gomath.Float32bits(a))
	}
}

func decodeColorPixel(src []byte, format ColorFormat) (r, g, b, a float32) {
	switch format {
	case ColorFloat16x4:
		r = math.HalfToFloat32(binary.LittleEndian.Uint16(src[0:2]))
		g = math.HalfToFloat32(binary.LittleEndian.Uint16(src[2:4]))
		b = math.HalfToFloat32(binary.LittleEndian.Uint16(src[4:6]))
		a = math.HalfToFloat32(binary.LittleEndian.Uint16(src[6:8]))
	case ColorNorm8x4:
		enc := binary.LittleEndian.Uint32(src[0:4])
		r = float32(enc&0xFF) / 255
		g = float32(enc>>8&0xFF) / 255
		b = float32(enc>>16&0xFF) / 255
		a = float32(enc>>24&0xFF) / 255
	default:
		r = gomath.Float32frombits(binary.LittleEndian.Uint32(src[0:4]))
		g = gomath.Float32frombits(binary.LittleEndian.Uint32(src[4:8]))
		b = gomath.Float32frombits(binary.LittleEndian.Uint32(src[8:12]))
		a = gomath.Float32frombits(binary.LittleEndian.Uint32(src[12:16]))
	}
	return r, g, b, a
}

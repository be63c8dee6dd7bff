package splat

import (
	"encoding/binary"
	gomath "math"

	"github.com/arnevik/splatstream/pkg/math"
)

const (
	// ChunkSize is the number of consecutive splats sharing one set of
	// quantization ranges.
	ChunkSize = 256

	// chunkRangeEpsilon is the minimum per-component range width. It keeps
	// the normalization invertible when a chunk is constant on some axis.
	chunkRangeEpsilon = 1e-5

	// chunkInfoSize is the serialized size of one ChunkInfo record.
	chunkInfoSize = 64
)

// ChunkCount returns the number of chunks covering n splats.
func ChunkCount(n int) int {
	return (n + ChunkSize - 1) / ChunkSize
}

// ChunkInfo stores the value ranges one chunk was normalized against.
// Position ranges keep full float32 precision. Scale, color and aggregate SH
// ranges pack min and max as half floats in one word per component, min in
// the low 16 bits.
type ChunkInfo struct {
	ColR, ColG, ColB, ColA uint32
	PosX, PosY, PosZ       [2]float32
	SclX, SclY, SclZ       uint32
	SHR, SHG, SHB          uint32
}

// packHalfPair packs lo and hi as half floats into one word, lo in the low
// half.
func packHalfPair(lo, hi float32) uint32 {
	return uint32(math.Float32ToHalf(lo)) | uint32(math.Float32ToHalf(hi))<<16
}

// unpackHalfPair splits a packed word back into its two bounds.
func unpackHalfPair(w uint32) (lo, hi float32) {
	return math.HalfToFloat32(uint16(w)), math.HalfToFloat32(uint16(w >> 16))
}

// PosBounds returns the chunk's position range.
func (c *ChunkInfo) PosBounds() Bounds {
	return Bounds{
		Min: math.Vec3{X: c.PosX[0], Y: c.PosY[0], Z: c.PosZ[0]},
		Max: math.Vec3{X: c.PosX[1], Y: c.PosY[1], Z: c.PosZ[1]},
	}
}

// ScaleBounds returns the chunk's remapped scale range.
func (c *ChunkInfo) ScaleBounds() (minV, maxV math.Vec3) {
	minV.X, maxV.X = unpackHalfPair(c.SclX)
	minV.Y, maxV.Y = unpackHalfPair(c.SclY)
	minV.Z, maxV.Z = unpackHalfPair(c.SclZ)
	return minV, maxV
}

// ColorBounds returns the chunk's color range; the alpha pair holds the
// remapped opacity range.
func (c *ChunkInfo) ColorBounds() (minV, maxV math.Vec3, minA, maxA float32) {
	minV.X, maxV.X = unpackHalfPair(c.ColR)
	minV.Y, maxV.Y = unpackHalfPair(c.ColG)
	minV.Z, maxV.Z = unpackHalfPair(c.ColB)
	minA, maxA = unpackHalfPair(c.ColA)
	return minV, maxV, minA, maxA
}

// SHBounds returns the chunk's aggregate SH coefficient range.
func (c *ChunkInfo) SHBounds() (minV, maxV math.Vec3) {
	minV.X, maxV.X = unpackHalfPair(c.SHR)
	minV.Y, maxV.Y = unpackHalfPair(c.SHG)
	minV.Z, maxV.Z = unpackHalfPair(c.SHB)
	return minV, maxV
}

// linearToChunkScale remaps a linear scale component for quantization. The
// 1/8 power flattens the heavily skewed scale distribution so uniform
// quantization levels land where values actually cluster.
func linearToChunkScale(v float32) float32 {
	return float32(gomath.Pow(float64(v), 1.0/8.0))
}

// chunkToLinearScale undoes linearToChunkScale.
func chunkToLinearScale(v float32) float32 {
	v2 := v * v
	v4 := v2 * v2
	return v4 * v4
}

// squareCentered01 remaps opacity in [0,1] to spend quantization levels near
// the 0 and 1 ends, where alpha differences are most visible.
func squareCentered01(x float32) float32 {
	x -= 0.5
	x *= absf(x)
	return x*2 + 0.5
}

// invSquareCentered01 undoes squareCentered01.
func invSquareCentered01(x float32) float32 {
	x -= 0.5
	x *= 0.5
	x = signf(x) * float32(gomath.Sqrt(float64(absf(x))))
	return x + 0.5
}

// CalcChunkData splits points into ChunkSize runs and quantizes each run in
// place: scale and opacity are remapped, per-chunk ranges recorded, and
// every attribute normalized to [0,1] against its range. Chunks are
// independent, so they are processed in parallel.
func CalcChunkData(points []Splat) []ChunkInfo {
	chunks := make([]ChunkInfo, ChunkCount(len(points)))
	parallelFor(len(chunks), func(begin, end int) {
		for ci := begin; ci < end; ci++ {
			lo := ci * ChunkSize
			hi := lo + ChunkSize
			if hi > len(points) {
				hi = len(points)
			}
			chunks[ci] = quantizeChunk(points[lo:hi])
		}
	})
	return chunks
}

func quantizeChunk(span []Splat) ChunkInfo {
	huge := float32(gomath.MaxFloat32)
	posMin := math.Vec3{X: huge, Y: huge, Z: huge}
	posMax := posMin.Scale(-1)
	sclMin, sclMax := posMin, posMax
	colMin, colMax := posMin, posMax
	shMin, shMax := posMin, posMax
	opaMin, opaMax := huge, -huge

	for i := range span {
		s := &span[i]
		s.Scale = math.Vec3{
			X: linearToChunkScale(s.Scale.X),
			Y: linearToChunkScale(s.Scale.Y),
			Z: linearToChunkScale(s.Scale.Z),
		}
		s.Opacity = squareCentered01(s.Opacity)

		posMin = posMin.Min(s.Pos)
		posMax = posMax.Max(s.Pos)
		sclMin = sclMin.Min(s.Scale)
		sclMax = sclMax.Max(s.Scale)
		colMin = colMin.Min(s.Color)
		colMax = colMax.Max(s.Color)
		if s.Opacity < opaMin {
			opaMin = s.Opacity
		}
		if s.Opacity > opaMax {
			opaMax = s.Opacity
		}
		for k := range s.SH {
			shMin = shMin.Min(s.SH[k])
			shMax = shMax.Max(s.SH[k])
		}
	}

	// Degenerate ranges would divide by zero below; widen them by epsilon.
	posMax = posMax.Max(posMin.AddScalar(chunkRangeEpsilon))
	sclMax = sclMax.Max(sclMin.AddScalar(chunkRangeEpsilon))
	colMax = colMax.Max(colMin.AddScalar(chunkRangeEpsilon))
	shMax = shMax.Max(shMin.AddScalar(chunkRangeEpsilon))
	if opaMax < opaMin+chunkRangeEpsilon {
		opaMax = opaMin + chunkRangeEpsilon
	}

	posInv := invRange(posMin, posMax)
	sclInv := invRange(sclMin, sclMax)
	colInv := invRange(colMin, colMax)
	shInv := invRange(shMin, shMax)
	opaInv := 1 / (opaMax - opaMin)

	for i := range span {
		s := &span[i]
		s.Pos = s.Pos.Sub(posMin).Mul(posInv)
		s.Scale = s.Scale.Sub(sclMin).Mul(sclInv)
		s.Color = s.Color.Sub(colMin).Mul(colInv)
		s.Opacity = (s.Opacity - opaMin) * opaInv
		for k := range s.SH {
			s.SH[k] = s.SH[k].Sub(shMin).Mul(shInv)
		}
	}

	return ChunkInfo{
		ColR: packHalfPair(colMin.X, colMax.X),
		ColG: packHalfPair(colMin.Y, colMax.Y),
		ColB: packHalfPair(colMin.Z, colMax.Z),
		ColA: packHalfPair(opaMin, opaMax),
		PosX: [2]float32{posMin.X, posMax.X},
		PosY: [2]float32{posMin.Y, posMax.Y},
		PosZ: [2]float32{posMin.Z, posMax.Z},
		SclX: packHalfPair(sclMin.X, sclMax.X),
		SclY: packHalfPair(sclMin.Y, sclMax.Y),
		SclZ: packHalfPair(sclMin.Z, sclMax.Z),
		SHR:  packHalfPair(shMin.X, shMax.X),
		SHG:  packHalfPair(shMin.Y, shMax.Y),
		SHB:  packHalfPair(shMin.Z, shMax.Z),
	}
}

func invRange(minV, maxV math.Vec3) math.Vec3 {
	return math.Vec3{
		X: 1 / (maxV.X - minV.X),
		Y: 1 / (maxV.Y - minV.Y),
		Z: 1 / (maxV.Z - minV.Z),
	}
}

// serializeChunks lays all chunk records out in one little-endian buffer.
func serializeChunks(chunks []ChunkInfo) []byte {
	buf := make([]byte, len(chunks)*chunkInfoSize)
	for i := range chunks {
		writeChunkInfo(buf[i*chunkInfoSize:], &chunks[i])
	}
	return buf
}

func writeChunkInfo(dst []byte, c *ChunkInfo) {
	le := binary.LittleEndian
	le.PutUint32(dst[0:], c.ColR)
	le.PutUint32(dst[4:], c.ColG)
	le.PutUint32(dst[8:], c.ColB)
	le.PutUint32(dst[12:], c.ColA)
	le.PutUint32(dst[16:], gomath.Float32bits(c.PosX[0]))
	le.PutUint32(dst[20:], gomath.Float32bits(c.PosX[1]))
	le.PutUint32(dst[24:], gomath.Float32bits(c.PosY[0]))
	le.PutUint32(dst[28:], gomath.Float32bits(c.PosY[1]))
	le.PutUint32(dst[32:], gomath.Float32bits(c.PosZ[0]))
	le.PutUint32(dst[36:], gomath.Float32bits(c.PosZ[1]))
	le.PutUint32(dst[40:], c.SclX)
	le.PutUint32(dst[44:], c.SclY)
	le.PutUint32(dst[48:], c.SclZ)
	le.PutUint32(dst[52:], c.SHR)
	le.PutUint32(dst[56:], c.SHG)
	le.PutUint32(dst[60:], c.SHB)
}

func parseChunkInfo(src []byte) ChunkInfo {
	le := binary.LittleEndian
	return ChunkInfo{
		ColR: le.Uint32(src[0:]),
		ColG: le.Uint32(src[4:]),
		ColB: le.Uint32(src[8:]),
		ColA: le.Uint32(src[12:]),
		PosX: [2]float32{gomath.Float32frombits(le.Uint32(src[16:])), gomath.Float32frombits(le.Uint32(src[20:]))},
		PosY: [2]float32{gomath.Float32frombits(le.Uint32(src[24:])), gomath.Float32frombits(le.Uint32(src[28:]))},
		PosZ: [2]float32{gomath.Float32frombits(le.Uint32(src[32:])), gomath.Float32frombits(le.Uint32(src[36:]))},
		SclX: le.Uint32(src[40:]),
		SclY: le.Uint32(src[44:]),
		SclZ: le.Uint32(src[48:]),
		SHR:  le.Uint32(src[52:]),
		SHG:  le.Uint32(src[56:]),
		SHB:  le.Uint32(src[60:]),
	}
}

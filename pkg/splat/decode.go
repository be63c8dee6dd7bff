package splat

import (
	"github.com/arnevik/splatstream/pkg/math"
)

// Decode reconstructs the splats of an asset in stored (Morton) order.
// Quantized attributes come back at their format's precision; the remaps
// applied during encoding are undone. Block-compressed color assets cannot
// be decoded on the CPU.
func Decode(a *Asset) ([]Splat, error) {
	if err := a.Validate(); err != nil {
		return nil, err
	}
	if a.ColorFormat == ColorBC7 {
		return nil, ErrNotDecodable
	}

	chunked := a.UsesChunks()
	posSize := a.PosFormat.Size()
	otherStride := a.OtherStride()
	shStride := a.SHFormat.SplatSize()
	shSize := a.SHFormat.coeffSize()
	bpp := a.ColorFormat.BytesPerPixel()

	points := make([]Splat, a.SplatCount)
	parallelFor(a.SplatCount, func(begin, end int) {
		for i := begin; i < end; i++ {
			s := &points[i]

			s.Pos = decodeVector(a.PosData[i*posSize:], a.PosFormat)
			other := a.OtherData[i*otherStride:]
			s.Rot = decodeQuat(other)
			s.Scale = decodeVector(other[4:], a.ScaleFormat)

			x, y := SplatIndexToTexel(i, a.ColorWidth)
			r, g, b, alpha := decodeColorPixel(a.ColorData[(y*a.ColorWidth+x)*bpp:], a.ColorFormat)
			s.Color = math.Vec3{X: r, Y: g, Z: b}
			s.Opacity = alpha

			sh := a.SHData[i*shStride:]
			for k := range s.SH {
				s.SH[k] = decodeSHCoeff(sh[k*shSize:], a.SHFormat)
			}

			if chunked {
				denormalizeSplat(s, a.Chunk(i/ChunkSize))
			}
		}
	})
	return points, nil
}

// denormalizeSplat maps a splat's [0,1] attributes back through its chunk
// ranges and undoes the scale and opacity remaps. When chunking ran, every
// stream holds normalized values, whatever its format.
func denormalizeSplat(s *Splat, c ChunkInfo) {
	pb := c.PosBounds()
	sclMin, sclMax := c.ScaleBounds()
	colMin, colMax, opaMin, opaMax := c.ColorBounds()
	shMin, shMax := c.SHBounds()

	s.Pos = lerpVec(pb.Min, pb.Max, s.Pos)
	scl := lerpVec(sclMin, sclMax, s.Scale)
	s.Scale = math.Vec3{
		X: chunkToLinearScale(scl.X),
		Y: chunkToLinearScale(scl.Y),
		Z: chunkToLinearScale(scl.Z),
	}
	s.Color = lerpVec(colMin, colMax, s.Color)
	s.Opacity = invSquareCentered01(opaMin + (opaMax-opaMin)*s.Opacity)
	for k := range s.SH {
		s.SH[k] = lerpVec(shMin, shMax, s.SH[k])
	}
}

// lerpVec interpolates each component of t between lo and hi.
func lerpVec(lo, hi, t math.Vec3) math.Vec3 {
	return math.Vec3{
		X: lo.X + (hi.X-lo.X)*t.X,
		Y: lo.Y + (hi.Y-lo.Y)*t.Y,
		Z: lo.Z + (hi.Z-lo.Z)*t.Z,
	}
}

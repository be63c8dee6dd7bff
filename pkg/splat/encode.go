package splat

import (
	"fmt"
)

// TextureCompressor produces a block-compressed payload from a float RGBA
// texture. Implementations live outside this package; the codec only
// arranges the source texels.
type TextureCompressor interface {
	// Compress receives width*height*4 float32 components in row-major RGBA
	// order and returns the compressed payload.
	Compress(width, height int, rgba []float32) ([]byte, error)
}

// EncodeOptions selects the per-stream formats for Encode.
type EncodeOptions struct {
	Position VectorFormat
	Scale    VectorFormat
	Color    ColorFormat
	SH       SHFormat

	// Compressor handles the ColorBC7 path and is required for it.
	Compressor TextureCompressor
}

// PresetOptions returns the EncodeOptions a preset stands for.
func PresetOptions(p Preset) EncodeOptions {
	pos, scale, color, sh := p.Formats()
	return EncodeOptions{Position: pos, Scale: scale, Color: color, SH: sh}
}

// UsesChunks reports whether encoding with these options quantizes against
// per-chunk ranges. Only the all-float32 combination skips chunking.
func (o EncodeOptions) UsesChunks() bool {
	return o.Position != VectorFloat32 ||
		o.Scale != VectorFloat32 ||
		o.Color != ColorFloat32x4 ||
		o.SH != SHFloat32
}

func (o EncodeOptions) validate() error {
	if o.Position.Size() == 0 {
		return fmt.Errorf("%w: position format %d", ErrUnknownFormat, o.Position)
	}
	if o.Scale.Size() == 0 {
		return fmt.Errorf("%w: scale format %d", ErrUnknownFormat, o.Scale)
	}
	if o.Color.BytesPerPixel() == 0 {
		return fmt.Errorf("%w: color format %d", ErrUnknownFormat, o.Color)
	}
	if o.SH.SplatSize() == 0 {
		return fmt.Errorf("%w: SH format %d", ErrUnknownFormat, o.SH)
	}
	if o.Color == ColorBC7 && o.Compressor == nil {
		return ErrNoCompressor
	}
	return nil
}

// Encode converts points into one immutable Asset using the formats in
// opts. The input slice is reordered along the Morton curve and, when any
// format quantizes, rewritten with chunk-normalized values; callers that
// still need the original data must copy it first.
func Encode(points []Splat, opts EncodeOptions) (*Asset, error) {
	if len(points) == 0 {
		return nil, ErrNoSplats
	}
	if err := opts.validate(); err != nil {
		return nil, err
	}

	bounds, err := CalcBounds(points)
	if err != nil {
		return nil, err
	}
	ReorderMorton(points, bounds)

	var chunkData []byte
	if opts.UsesChunks() {
		chunkData = serializeChunks(CalcChunkData(points))
	}

	colorData, width, height, err := createColorData(points, opts.Color, opts.Compressor)
	if err != nil {
		return nil, err
	}

	a := &Asset{
		SplatCount:  len(points),
		PosFormat:   opts.Position,
		ScaleFormat: opts.Scale,
		ColorFormat: opts.Color,
		SHFormat:    opts.SH,
		Bounds:      bounds,
		ColorWidth:  width,
		ColorHeight: height,
		ChunkData:   chunkData,
		PosData:     createPosData(points, opts.Position),
		OtherData:   createOtherData(points, opts.Scale),
		ColorData:   colorData,
		SHData:      createSHData(points, opts.SH),
	}
	a.Hash = contentHash(a)
	return a, nil
}

// createPosData encodes one position per splat.
func createPosData(points []Splat, format VectorFormat) []byte {
	size := format.Size()
	buf := make([]byte, len(points)*size)
	parallelFor(len(points), func(begin, end int) {
		for i := begin; i < end; i++ {
			encodeVector(buf[i*size:], points[i].Pos, format)
		}
	})
	return buf
}

// createOtherData interleaves one packed rotation and one encoded scale per
// splat. Rotations always use the 10.10.10.2 smallest-three layout.
func createOtherData(points []Splat, scaleFormat VectorFormat) []byte {
	stride := 4 + scaleFormat.Size()
	buf := make([]byte, len(points)*stride)
	parallelFor(len(points), func(begin, end int) {
		for i := begin; i < end; i++ {
			dst := buf[i*stride:]
			encodeQuat(dst, points[i].Rot)
			encodeVector(dst[4:], points[i].Scale, scaleFormat)
		}
	})
	return buf
}

// createColorData assembles the full-precision RGBA source texture, then
// converts it to the requested format. Every output format derives from the
// same source, including the compressed one.
func createColorData(points []Splat, format ColorFormat, comp TextureCompressor) ([]byte, int, int, error) {
	width, height := CalcColorTextureSize(len(points))
	src := make([]float32, width*height*4)
	parallelFor(len(points), func(begin, end int) {
		for i := begin; i < end; i++ {
			x, y := SplatIndexToTexel(i, width)
			o := (y*width + x) * 4
			src[o+0] = points[i].Color.X
			src[o+1] = points[i].Color.Y
			src[o+2] = points[i].Color.Z
			src[o+3] = points[i].Opacity
		}
	})

	if format == ColorBC7 {
		out, err := comp.Compress(width, height, src)
		if err != nil {
			return nil, 0, 0, fmt.Errorf("compressing color texture: %w", err)
		}
		if want := width * height * format.BytesPerPixel(); len(out) != want {
			return nil, 0, 0, fmt.Errorf("%w: compressor returned %d bytes, want %d", ErrBufferSize, len(out), want)
		}
		return out, width, height, nil
	}

	bpp := format.BytesPerPixel()
	buf := make([]byte, width*height*bpp)
	parallelFor(height, func(beginRow, endRow int) {
		for y := beginRow; y < endRow; y++ {
			for x := 0; x < width; x++ {
				o := (y*width + x) * 4
				encodeColorPixel(buf[(y*width+x)*bpp:], src[o], src[o+1], src[o+2], src[o+3], format)
			}
		}
	})
	return buf, width, height, nil
}

// createSHData encodes the SH coefficients, 16 padded slots per splat. The
// sixteenth slot stays zero.
func createSHData(points []Splat, format SHFormat) []byte {
	stride := format.SplatSize()
	size := format.coeffSize()
	buf := make([]byte, len(points)*stride)
	parallelFor(len(points), func(begin, end int) {
		for i := begin; i < end; i++ {
			dst := buf[i*stride:]
			for k := range points[i].SH {
				encodeSHCoeff(dst[k*size:], points[i].SH[k], format)
			}
		}
	})
	return buf
}

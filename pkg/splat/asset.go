package splat

import (
	"crypto/sha256"
	"encoding/binary"
	"fmt"
)

// FormatVersion identifies the encoded buffer layout. Bump only on
// incompatible changes.
const FormatVersion = 1

// Asset is one encoded splat cloud: format tags, geometric bounds, a content
// hash and the encoded buffers. Assets are immutable once created.
type Asset struct {
	SplatCount  int
	PosFormat   VectorFormat
	ScaleFormat VectorFormat
	ColorFormat ColorFormat
	SHFormat    SHFormat

	// Bounds is the axis-aligned box of all decoded positions.
	Bounds Bounds

	// ColorWidth and ColorHeight are the color texture dimensions.
	ColorWidth  int
	ColorHeight int

	// Hash summarizes the header fields and every buffer; consumers use it
	// to detect content changes without comparing buffers.
	Hash [sha256.Size]byte

	// ChunkData holds the serialized per-chunk ranges. It is empty for
	// full-precision assets, which skip normalization entirely.
	ChunkData []byte
	// PosData holds one encoded position per splat.
	PosData []byte
	// OtherData interleaves one packed rotation and one encoded scale per
	// splat.
	OtherData []byte
	// ColorData holds the color texture in the asset's color format.
	ColorData []byte
	// SHData holds the encoded SH coefficients, 16 padded slots per splat.
	SHData []byte
}

// UsesChunks reports whether the asset's streams hold chunk-normalized
// values.
func (a *Asset) UsesChunks() bool {
	return len(a.ChunkData) > 0
}

// ChunkCount returns the number of chunk records, 0 for full-precision
// assets.
func (a *Asset) ChunkCount() int {
	if !a.UsesChunks() {
		return 0
	}
	return ChunkCount(a.SplatCount)
}

// Chunk returns the i-th chunk record.
func (a *Asset) Chunk(i int) ChunkInfo {
	return parseChunkInfo(a.ChunkData[i*chunkInfoSize:])
}

// OtherStride returns the byte stride of one splat in OtherData.
func (a *Asset) OtherStride() int {
	return 4 + a.ScaleFormat.Size()
}

// DataSize returns the total size of all encoded buffers in bytes.
func (a *Asset) DataSize() int64 {
	return int64(len(a.ChunkData) + len(a.PosData) + len(a.OtherData) +
		len(a.ColorData) + len(a.SHData))
}

// Validate checks that the color texture shape matches the splat count and
// that every buffer length is consistent with the count and format tags.
// Parsed assets must pass before any decoder walks the buffers.
func (a *Asset) Validate() error {
	if a.SplatCount <= 0 {
		return fmt.Errorf("%w: splat count %d", ErrNoSplats, a.SplatCount)
	}
	posSize := a.PosFormat.Size()
	sclSize := a.ScaleFormat.Size()
	bpp := a.ColorFormat.BytesPerPixel()
	shSize := a.SHFormat.SplatSize()
	if posSize == 0 || sclSize == 0 || bpp == 0 || shSize == 0 {
		return fmt.Errorf("%w: formats %v/%v/%v/%v", ErrUnknownFormat,
			a.PosFormat, a.ScaleFormat, a.ColorFormat, a.SHFormat)
	}
	if want := a.SplatCount * posSize; len(a.PosData) != want {
		return fmt.Errorf("%w: position data %d bytes, want %d", ErrBufferSize, len(a.PosData), want)
	}
	if want := a.SplatCount * a.OtherStride(); len(a.OtherData) != want {
		return fmt.Errorf("%w: rotation/scale data %d bytes, want %d", ErrBufferSize, len(a.OtherData), want)
	}
	if w, h := CalcColorTextureSize(a.SplatCount); a.ColorWidth != w || a.ColorHeight != h {
		return fmt.Errorf("%w: color texture %dx%d, want %dx%d for %d splats",
			ErrBufferSize, a.ColorWidth, a.ColorHeight, w, h, a.SplatCount)
	}
	if want := a.ColorWidth * a.ColorHeight * bpp; len(a.ColorData) != want {
		return fmt.Errorf("%w: color data %d bytes, want %d", ErrBufferSize, len(a.ColorData), want)
	}
	if want := a.SplatCount * shSize; len(a.SHData) != want {
		return fmt.Errorf("%w: SH data %d bytes, want %d", ErrBufferSize, len(a.SHData), want)
	}
	if a.UsesChunks() {
		if want := ChunkCount(a.SplatCount) * chunkInfoSize; len(a.ChunkData) != want {
			return fmt.Errorf("%w: chunk data %d bytes, want %d", ErrBufferSize, len(a.ChunkData), want)
		}
	}
	return nil
}

// contentHash digests the header fields and every encoded buffer.
func contentHash(a *Asset) [sha256.Size]byte {
	h := sha256.New()
	var hdr [12]byte
	binary.LittleEndian.PutUint32(hdr[0:4], uint32(a.SplatCount))
	binary.LittleEndian.PutUint32(hdr[4:8], FormatVersion)
	hdr[8] = byte(a.PosFormat)
	hdr[9] = byte(a.ScaleFormat)
	hdr[10] = byte(a.ColorFormat)
	hdr[11] = byte(a.SHFormat)
	h.Write(hdr[:])
	h.Write(a.ChunkData)
	h.Write(a.PosData)
	h.Write(a.OtherData)
	h.Write(a.ColorData)
	h.Write(a.SHData)
	var sum [sha256.Size]byte
	h.Sum(sum[:0])
	return sum
}

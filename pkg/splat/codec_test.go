package splat

import (
	"errors"
	"fmt"
	"testing"

	"github.com/arnevik/splatstream/pkg/math"
)

// encodeWithReference encodes a copy of points and returns the asset plus
// the original values in stored (Morton) order for comparison.
func encodeWithReference(t *testing.T, points []Splat, opts EncodeOptions) (*Asset, []Splat) {
	t.Helper()
	ref := make([]Splat, len(points))
	copy(ref, points)
	bounds, err := CalcBounds(ref)
	if err != nil {
		t.Fatalf("CalcBounds: %v", err)
	}
	ReorderMorton(ref, bounds)
	a, err := Encode(points, opts)
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}
	return a, ref
}

func TestEncodeEmpty(t *testing.T) {
	_, err := Encode(nil, PresetOptions(PresetMedium))
	if !errors.Is(err, ErrNoSplats) {
		t.Errorf("Encode(nil) error = %v, want ErrNoSplats", err)
	}
}

func TestEncodeBC7WithoutCompressor(t *testing.T) {
	opts := PresetOptions(PresetMedium)
	opts.Color = ColorBC7
	_, err := Encode(makeTestCloud(10, 1), opts)
	if !errors.Is(err, ErrNoCompressor) {
		t.Errorf("Encode error = %v, want ErrNoCompressor", err)
	}
}

func TestEncodeBufferSizes(t *testing.T) {
	const n = 700
	a, _ := encodeWithReference(t, makeTestCloud(n, 2), PresetOptions(PresetLow))
	if a.SplatCount != n {
		t.Errorf("SplatCount = %d, want %d", a.SplatCount, n)
	}
	if len(a.PosData) != n*4 {
		t.Errorf("PosData = %d bytes, want %d", len(a.PosData), n*4)
	}
	if len(a.OtherData) != n*6 {
		t.Errorf("OtherData = %d bytes, want %d", len(a.OtherData), n*6)
	}
	if len(a.SHData) != n*32 {
		t.Errorf("SHData = %d bytes, want %d", len(a.SHData), n*32)
	}
	if len(a.ChunkData) != ChunkCount(n)*chunkInfoSize {
		t.Errorf("ChunkData = %d bytes, want %d", len(a.ChunkData), ChunkCount(n)*chunkInfoSize)
	}
	if len(a.ColorData) != a.ColorWidth*a.ColorHeight*4 {
		t.Errorf("ColorData = %d bytes, want %d", len(a.ColorData), a.ColorWidth*a.ColorHeight*4)
	}
	if err := a.Validate(); err != nil {
		t.Errorf("Validate: %v", err)
	}
}

func TestEncodeFullPrecisionSkipsChunks(t *testing.T) {
	a, ref := encodeWithReference(t, makeTestCloud(400, 3), PresetOptions(PresetVeryHigh))
	if a.UsesChunks() {
		t.Fatal("full-precision asset carries chunk data")
	}
	decoded, err := Decode(a)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	for i := range ref {
		if decoded[i].Pos != ref[i].Pos {
			t.Fatalf("splat %d pos = %v, want exact %v", i, decoded[i].Pos, ref[i].Pos)
		}
		if decoded[i].Scale != ref[i].Scale {
			t.Fatalf("splat %d scale = %v, want exact %v", i, decoded[i].Scale, ref[i].Scale)
		}
		if decoded[i].Color != ref[i].Color || decoded[i].Opacity != ref[i].Opacity {
			t.Fatalf("splat %d color/opacity not exact", i)
		}
		if decoded[i].SH != ref[i].SH {
			t.Fatalf("splat %d SH not exact", i)
		}
		// Rotations always pass through the 10-bit packing.
		if d := absf(decoded[i].Rot.Dot(ref[i].Rot)); d < 0.9995 {
			t.Fatalf("splat %d rot |dot| = %v", i, d)
		}
	}
}

func TestEncodeDecodeQuantized(t *testing.T) {
	// Tolerances follow the format step sizes over the worst-case chunk
	// range, plus slack for the half-precision range bounds.
	cases := []struct {
		name   string
		opts   EncodeOptions
		posTol float32
		sclTol float32 // in the remapped scale domain
		colTol float32
		opaTol float32
		shTol  float32
	}{
		{"high", PresetOptions(PresetHigh), 0.001, 0.005, 0.005, 0.04, 0.01},
		{"medium", PresetOptions(PresetMedium), 0.02, 0.005, 0.01, 0.08, 0.01},
		{"low", PresetOptions(PresetLow), 0.02, 0.04, 0.01, 0.08, 0.05},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			a, ref := encodeWithReference(t, makeTestCloud(600, 17), c.opts)
			if !a.UsesChunks() {
				t.Fatal("quantized asset missing chunk data")
			}
			decoded, err := Decode(a)
			if err != nil {
				t.Fatalf("Decode: %v", err)
			}
			for i := range ref {
				want, got := &ref[i], &decoded[i]
				checkNear(t, i, "pos.x", got.Pos.X, want.Pos.X, c.posTol)
				checkNear(t, i, "pos.y", got.Pos.Y, want.Pos.Y, c.posTol)
				checkNear(t, i, "pos.z", got.Pos.Z, want.Pos.Z, c.posTol)
				checkNear(t, i, "scale.x", linearToChunkScale(got.Scale.X), linearToChunkScale(want.Scale.X), c.sclTol)
				checkNear(t, i, "scale.y", linearToChunkScale(got.Scale.Y), linearToChunkScale(want.Scale.Y), c.sclTol)
				checkNear(t, i, "scale.z", linearToChunkScale(got.Scale.Z), linearToChunkScale(want.Scale.Z), c.sclTol)
				checkNear(t, i, "color.r", got.Color.X, want.Color.X, c.colTol)
				checkNear(t, i, "color.g", got.Color.Y, want.Color.Y, c.colTol)
				checkNear(t, i, "color.b", got.Color.Z, want.Color.Z, c.colTol)
				checkNear(t, i, "opacity", got.Opacity, want.Opacity, c.opaTol)
				for k := range want.SH {
					checkNear(t, i, fmt.Sprintf("sh[%d].x", k), got.SH[k].X, want.SH[k].X, c.shTol)
					checkNear(t, i, fmt.Sprintf("sh[%d].y", k), got.SH[k].Y, want.SH[k].Y, c.shTol)
					checkNear(t, i, fmt.Sprintf("sh[%d].z", k), got.SH[k].Z, want.SH[k].Z, c.shTol)
				}
				if d := absf(got.Rot.Dot(want.Rot)); d < 0.9995 {
					t.Fatalf("splat %d rot |dot| = %v", i, d)
				}
			}
		})
	}
}

func checkNear(t *testing.T, i int, label string, got, want, tol float32) {
	t.Helper()
	if absf(got-want) > tol {
		t.Fatalf("splat %d %s = %v, want %v within %v", i, label, got, want, tol)
	}
}

func TestEncodeHashDeterministic(t *testing.T) {
	a1, _ := encodeWithReference(t, makeTestCloud(500, 23), PresetOptions(PresetMedium))
	a2, _ := encodeWithReference(t, makeTestCloud(500, 23), PresetOptions(PresetMedium))
	if a1.Hash != a2.Hash {
		t.Error("same input and formats produced different hashes")
	}
}

func TestEncodeHashSensitivity(t *testing.T) {
	base, _ := encodeWithReference(t, makeTestCloud(200, 29), PresetOptions(PresetMedium))

	other, _ := encodeWithReference(t, makeTestCloud(200, 30), PresetOptions(PresetMedium))
	if base.Hash == other.Hash {
		t.Error("different clouds share a hash")
	}

	lower, _ := encodeWithReference(t, makeTestCloud(200, 29), PresetOptions(PresetLow))
	if base.Hash == lower.Hash {
		t.Error("different formats share a hash")
	}
}

func TestAssetValidateCorrupt(t *testing.T) {
	a, _ := encodeWithReference(t, makeTestCloud(100, 31), PresetOptions(PresetMedium))
	a.PosData = a.PosData[:len(a.PosData)-4]
	if err := a.Validate(); !errors.Is(err, ErrBufferSize) {
		t.Errorf("Validate on truncated data = %v, want ErrBufferSize", err)
	}
}

func TestAssetValidateMismatchedTexture(t *testing.T) {
	// The texture buffer length matches the shrunk header here, so only the
	// shape check can catch that 512 splats do not fit a 16x16 texture.
	a, _ := encodeWithReference(t, makeTestCloud(512, 33), PresetOptions(PresetMedium))
	a.ColorWidth, a.ColorHeight = 16, 16
	a.ColorData = a.ColorData[:16*16*4]
	if err := a.Validate(); !errors.Is(err, ErrBufferSize) {
		t.Errorf("Validate on undersized texture = %v, want ErrBufferSize", err)
	}
	if _, err := Decode(a); !errors.Is(err, ErrBufferSize) {
		t.Errorf("Decode on undersized texture = %v, want ErrBufferSize", err)
	}

	// A width below one 16-pixel tile must be rejected as well.
	b, _ := encodeWithReference(t, makeTestCloud(20, 34), PresetOptions(PresetMedium))
	b.ColorWidth, b.ColorHeight = 8, 40
	b.ColorData = b.ColorData[:8*40*4]
	if err := b.Validate(); !errors.Is(err, ErrBufferSize) {
		t.Errorf("Validate on narrow texture = %v, want ErrBufferSize", err)
	}
	if _, err := Decode(b); !errors.Is(err, ErrBufferSize) {
		t.Errorf("Decode on narrow texture = %v, want ErrBufferSize", err)
	}
}

// flatCompressor stands in for a real block compressor: one byte per pixel,
// derived from the red channel.
type flatCompressor struct{}

func (flatCompressor) Compress(width, height int, rgba []float32) ([]byte, error) {
	out := make([]byte, width*height)
	for i := range out {
		out[i] = byte(math.Clamp01(rgba[i*4]) * 255)
	}
	return out, nil
}

func TestEncodeBC7(t *testing.T) {
	opts := PresetOptions(PresetLow)
	opts.Color = ColorBC7
	opts.Compressor = flatCompressor{}
	a, _ := encodeWithReference(t, makeTestCloud(300, 37), opts)
	if want := a.ColorWidth * a.ColorHeight; len(a.ColorData) != want {
		t.Errorf("BC7 color data = %d bytes, want %d", len(a.ColorData), want)
	}
	if err := a.Validate(); err != nil {
		t.Errorf("Validate: %v", err)
	}
	if _, err := Decode(a); !errors.Is(err, ErrNotDecodable) {
		t.Errorf("Decode of BC7 asset = %v, want ErrNotDecodable", err)
	}
}

func TestSequenceAccessors(t *testing.T) {
	a1, _ := encodeWithReference(t, makeTestCloud(50, 41), PresetOptions(PresetMedium))
	a2, _ := encodeWithReference(t, makeTestCloud(50, 43), PresetOptions(PresetMedium))
	seq := &Sequence{Frames: []*Asset{a1, a2}, FPS: 25}

	if seq.FrameCount() != 2 {
		t.Errorf("FrameCount = %d, want 2", seq.FrameCount())
	}
	if seq.Duration() != 0.08 {
		t.Errorf("Duration = %v, want 0.08", seq.Duration())
	}
	if seq.Frame(1) != a2 || seq.Frame(2) != nil || seq.Frame(-1) != nil {
		t.Error("Frame accessor out-of-range handling wrong")
	}
	b, err := seq.Bounds()
	if err != nil {
		t.Fatalf("Bounds: %v", err)
	}
	want := a1.Bounds.Union(a2.Bounds)
	if b != want {
		t.Errorf("Bounds = %+v, want %+v", b, want)
	}

	var nilSeq *Sequence
	if nilSeq.FrameCount() != 0 || nilSeq.Duration() != 0 || nilSeq.Frame(0) != nil {
		t.Error("nil sequence accessors not inert")
	}
}

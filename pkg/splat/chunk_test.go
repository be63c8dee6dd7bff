package splat

import (
	"testing"

	"github.com/arnevik/splatstream/pkg/math"
)

func TestChunkCount(t *testing.T) {
	cases := []struct{ n, want int }{
		{0, 0},
		{1, 1},
		{255, 1},
		{256, 1},
		{257, 2},
		{1024, 4},
		{1025, 5},
	}
	for _, c := range cases {
		if got := ChunkCount(c.n); got != c.want {
			t.Errorf("ChunkCount(%d) = %d, want %d", c.n, got, c.want)
		}
	}
}

func TestScaleRemapRoundTrip(t *testing.T) {
	for _, v := range []float32{1e-6, 0.001, 0.02, 0.5, 1, 2, 10} {
		r := chunkToLinearScale(linearToChunkScale(v))
		if d := absf(r-v) / v; d > 1e-5 {
			t.Errorf("scale remap round trip of %v = %v (rel err %v)", v, r, d)
		}
	}
}

func TestSquareCentered01(t *testing.T) {
	cases := []struct{ in, want float32 }{
		{0, 0},
		{0.5, 0.5},
		{1, 1},
		{0.25, 0.375},
		{0.75, 0.625},
	}
	for _, c := range cases {
		if got := squareCentered01(c.in); absf(got-c.want) > 1e-6 {
			t.Errorf("squareCentered01(%v) = %v, want %v", c.in, got, c.want)
		}
	}
	for x := float32(0); x <= 1; x += 1.0 / 64 {
		r := invSquareCentered01(squareCentered01(x))
		if absf(r-x) > 1e-6 {
			t.Errorf("opacity remap round trip of %v = %v", x, r)
		}
	}
}

func TestHalfPairPacking(t *testing.T) {
	w := packHalfPair(0.25, 1.5)
	lo, hi := unpackHalfPair(w)
	if lo != 0.25 || hi != 1.5 {
		t.Errorf("half pair round trip = %v,%v, want 0.25,1.5", lo, hi)
	}
	if w&0xFFFF != uint32(math.Float32ToHalf(0.25)) {
		t.Errorf("min not in low half: %#x", w)
	}
}

func TestCalcChunkDataNormalizes(t *testing.T) {
	points := makeTestCloud(600, 11)
	chunks := CalcChunkData(points)
	if len(chunks) != 3 {
		t.Fatalf("got %d chunks for 600 splats, want 3", len(chunks))
	}
	for i := range points {
		s := &points[i]
		for _, v := range []float32{
			s.Pos.X, s.Pos.Y, s.Pos.Z,
			s.Scale.X, s.Scale.Y, s.Scale.Z,
			s.Color.X, s.Color.Y, s.Color.Z,
			s.Opacity,
		} {
			if v < 0 || v > 1 {
				t.Fatalf("splat %d attribute %v outside [0,1]", i, v)
			}
		}
		for k := range s.SH {
			sh := s.SH[k]
			if sh.X < 0 || sh.X > 1 || sh.Y < 0 || sh.Y > 1 || sh.Z < 0 || sh.Z > 1 {
				t.Fatalf("splat %d SH[%d] = %v outside [0,1]", i, k, sh)
			}
		}
	}
}

func TestCalcChunkDataRanges(t *testing.T) {
	points := makeTestCloud(256, 5)
	// Remember the raw position extremes of the single chunk.
	wantMin, wantMax := points[0].Pos, points[0].Pos
	for i := range points {
		wantMin = wantMin.Min(points[i].Pos)
		wantMax = wantMax.Max(points[i].Pos)
	}
	chunks := CalcChunkData(points)
	pb := chunks[0].PosBounds()
	if pb.Min != wantMin {
		t.Errorf("chunk pos min = %v, want %v", pb.Min, wantMin)
	}
	if pb.Max != wantMax {
		t.Errorf("chunk pos max = %v, want %v", pb.Max, wantMax)
	}
}

func TestCalcChunkDataConstantChunk(t *testing.T) {
	// A constant chunk has zero ranges; the epsilon widening must keep
	// normalization finite and map every value to 0.
	points := make([]Splat, 10)
	for i := range points {
		points[i].Pos = math.Vec3{X: 1, Y: 2, Z: 3}
		points[i].Rot = math.QuatIdentity()
		points[i].Scale = math.Vec3{X: 0.1, Y: 0.1, Z: 0.1}
		points[i].Opacity = 0.7
		points[i].Color = math.Vec3{X: 0.2, Y: 0.4, Z: 0.6}
	}
	chunks := CalcChunkData(points)
	if len(chunks) != 1 {
		t.Fatalf("got %d chunks, want 1", len(chunks))
	}
	for i := range points {
		s := &points[i]
		if s.Pos != (math.Vec3{}) {
			t.Errorf("constant chunk pos normalized to %v, want zero", s.Pos)
		}
		if s.Opacity != 0 {
			t.Errorf("constant chunk opacity normalized to %v, want 0", s.Opacity)
		}
	}
	pb := chunks[0].PosBounds()
	if pb.Min != (math.Vec3{X: 1, Y: 2, Z: 3}) {
		t.Errorf("constant chunk min = %v", pb.Min)
	}
	if pb.Max.X <= pb.Min.X || pb.Max.Y <= pb.Min.Y || pb.Max.Z <= pb.Min.Z {
		t.Errorf("constant chunk range not widened: %v..%v", pb.Min, pb.Max)
	}
}

func TestChunkInfoSerialization(t *testing.T) {
	points := makeTestCloud(300, 21)
	chunks := CalcChunkData(points)
	buf := serializeChunks(chunks)
	if len(buf) != len(chunks)*chunkInfoSize {
		t.Fatalf("serialized %d bytes, want %d", len(buf), len(chunks)*chunkInfoSize)
	}
	for i := range chunks {
		got := parseChunkInfo(buf[i*chunkInfoSize:])
		if got != chunks[i] {
			t.Errorf("chunk %d round trip mismatch:\n got %+v\nwant %+v", i, got, chunks[i])
		}
	}
}

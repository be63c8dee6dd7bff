package splat

import (
	"math/rand"
	"testing"

	"github.com/arnevik/splatstream/pkg/math"
)

func TestMortonPart1By2(t *testing.T) {
	cases := []struct {
		in   uint64
		want uint64
	}{
		{0, 0},
		{1, 1},
		{2, 0b1000},
		{3, 0b1001},
		{0b111, 0b1001001},
		{0x1FFFFF, 0x1249249249249249},
	}
	for _, c := range cases {
		if got := mortonPart1By2(c.in); got != c.want {
			t.Errorf("mortonPart1By2(%#x) = %#x, want %#x", c.in, got, c.want)
		}
	}
}

func TestMortonEncode3(t *testing.T) {
	cases := []struct {
		x, y, z uint64
		want    uint64
	}{
		{0, 0, 0, 0},
		{1, 0, 0, 1},
		{0, 1, 0, 2},
		{0, 0, 1, 4},
		{1, 1, 1, 7},
		{2, 0, 0, 8},
		{0x1FFFFF, 0x1FFFFF, 0x1FFFFF, 0x7FFFFFFFFFFFFFFF},
	}
	for _, c := range cases {
		if got := mortonEncode3(c.x, c.y, c.z); got != c.want {
			t.Errorf("mortonEncode3(%d,%d,%d) = %#x, want %#x", c.x, c.y, c.z, got, c.want)
		}
	}
}

func TestReorderMortonSortsCodes(t *testing.T) {
	points := makeTestCloud(1000, 42)
	bounds, err := CalcBounds(points)
	if err != nil {
		t.Fatalf("CalcBounds: %v", err)
	}
	ReorderMorton(points, bounds)
	prev := uint64(0)
	for i := range points {
		code := mortonCode(points[i].Pos, bounds)
		if code < prev {
			t.Fatalf("code at %d went backwards: %#x after %#x", i, code, prev)
		}
		prev = code
	}
}

func TestReorderMortonPreservesSet(t *testing.T) {
	points := makeTestCloud(500, 7)
	seen := make(map[math.Vec3]int, len(points))
	for i := range points {
		seen[points[i].Pos]++
	}
	bounds, _ := CalcBounds(points)
	ReorderMorton(points, bounds)
	for i := range points {
		seen[points[i].Pos]--
	}
	for pos, n := range seen {
		if n != 0 {
			t.Fatalf("position %v count off by %d after reorder", pos, n)
		}
	}
}

func TestReorderMortonDeterministic(t *testing.T) {
	a := makeTestCloud(300, 9)
	b := makeTestCloud(300, 9)
	bounds, _ := CalcBounds(a)
	ReorderMorton(a, bounds)
	ReorderMorton(b, bounds)
	for i := range a {
		if a[i] != b[i] {
			t.Fatalf("reorder not deterministic at index %d", i)
		}
	}
}

func TestReorderMortonStableOnEqualCodes(t *testing.T) {
	// All points share one position, so every code ties and the input
	// order must survive.
	points := make([]Splat, 20)
	for i := range points {
		points[i].Pos = math.Vec3{X: 1, Y: 2, Z: 3}
		points[i].Opacity = float32(i)
	}
	bounds, _ := CalcBounds(points)
	ReorderMorton(points, bounds)
	for i := range points {
		if points[i].Opacity != float32(i) {
			t.Fatalf("tied points reordered: index %d holds %v", i, points[i].Opacity)
		}
	}
}

func TestReorderMortonZeroExtentAxis(t *testing.T) {
	// A flat cloud must still reorder along the remaining axes.
	points := makeTestCloud(200, 3)
	for i := range points {
		points[i].Pos.Z = 4
	}
	bounds, _ := CalcBounds(points)
	ReorderMorton(points, bounds)
	prev := uint64(0)
	for i := range points {
		code := mortonCode(points[i].Pos, bounds)
		if code < prev {
			t.Fatalf("code at %d went backwards on flat cloud", i)
		}
		prev = code
	}
}

// makeTestCloud builds a deterministic random cloud: positions in [-5,5],
// normalized rotations, positive scales, colors and opacity in [0,1] and
// small SH coefficients.
func makeTestCloud(n int, seed int64) []Splat {
	rng := rand.New(rand.NewSource(seed))
	f := func(lo, hi float32) float32 {
		return lo + (hi-lo)*rng.Float32()
	}
	points := make([]Splat, n)
	for i := range points {
		s := &points[i]
		s.Pos = math.Vec3{X: f(-5, 5), Y: f(-5, 5), Z: f(-5, 5)}
		axis := math.Vec3{X: f(-1, 1), Y: f(-1, 1), Z: f(-1, 1)}
		if axis.Length() == 0 {
			axis = math.Vec3{X: 1}
		}
		s.Rot = math.QuatFromAxisAngle(axis.Normalize(), f(0, 6.28))
		s.Scale = math.Vec3{X: f(0.001, 0.8), Y: f(0.001, 0.8), Z: f(0.001, 0.8)}
		s.Opacity = f(0, 1)
		s.Color = math.Vec3{X: f(0, 1), Y: f(0, 1), Z: f(0, 1)}
		for k := range s.SH {
			s.SH[k] = math.Vec3{X: f(-0.5, 0.5), Y: f(-0.5, 0.5), Z: f(-0.5, 0.5)}
		}
	}
	return points
}

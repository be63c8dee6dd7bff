package splat

import "testing"

func TestCalcColorTextureSize(t *testing.T) {
	cases := []struct {
		n, wantW, wantH int
	}{
		{1, 2048, 16},
		{2048, 2048, 16},
		{2048 * 16, 2048, 16},
		{2048*16 + 1, 2048, 32},
		{2048 * 100, 2048, 112},
	}
	for _, c := range cases {
		w, h := CalcColorTextureSize(c.n)
		if w != c.wantW || h != c.wantH {
			t.Errorf("CalcColorTextureSize(%d) = %dx%d, want %dx%d", c.n, w, h, c.wantW, c.wantH)
		}
	}
}

func TestCalcColorTextureSizeTileAligned(t *testing.T) {
	for _, n := range []int{1, 100, 4096, 50000, 1 << 20} {
		w, h := CalcColorTextureSize(n)
		if w%16 != 0 || h%16 != 0 {
			t.Errorf("texture %dx%d for %d splats not tile aligned", w, h, n)
		}
		if w*h < n {
			t.Errorf("texture %dx%d too small for %d splats", w, h, n)
		}
	}
}

func TestSplatIndexToTexelInTile(t *testing.T) {
	// The first splats trace the Morton curve inside tile (0,0).
	cases := []struct {
		index, x, y int
	}{
		{0, 0, 0},
		{1, 1, 0},
		{2, 0, 1},
		{3, 1, 1},
		{4, 2, 0},
		{255, 15, 15},
		{256, 16, 0},   // second tile starts right of the first
		{257, 17, 0},
	}
	for _, c := range cases {
		x, y := SplatIndexToTexel(c.index, 2048)
		if x != c.x || y != c.y {
			t.Errorf("SplatIndexToTexel(%d) = (%d,%d), want (%d,%d)", c.index, x, y, c.x, c.y)
		}
	}
}

func TestSplatIndexToTexelWrapsRows(t *testing.T) {
	// 128 tiles fit in one 2048-wide row; tile 128 starts the next row.
	x, y := SplatIndexToTexel(128*256, 2048)
	if x != 0 || y != 16 {
		t.Errorf("tile row wrap: got (%d,%d), want (0,16)", x, y)
	}
}

func TestSplatIndexToTexelUnique(t *testing.T) {
	const n = 100000
	w, h := CalcColorTextureSize(n)
	seen := make(map[int]int, n)
	for i := 0; i < n; i++ {
		x, y := SplatIndexToTexel(i, w)
		if x < 0 || x >= w || y < 0 || y >= h {
			t.Fatalf("index %d maps outside texture: (%d,%d)", i, x, y)
		}
		key := y*w + x
		if prev, dup := seen[key]; dup {
			t.Fatalf("indices %d and %d share texel (%d,%d)", prev, i, x, y)
		}
		seen[key] = i
	}
}

package splat

import (
	"sort"

	"github.com/arnevik/splatstream/pkg/math"
)

// mortonScaler maps a normalized [0,1] coordinate onto the 21-bit integer
// grid used for Morton codes.
const mortonScaler = float32(1<<21 - 1)

// mortonPart1By2 spreads the low 21 bits of x so that two zero bits separate
// each original bit.
func mortonPart1By2(x uint64) uint64 {
	x &= 0x1FFFFF
	x = (x ^ (x << 32)) & 0x001F00000000FFFF
	x = (x ^ (x << 16)) & 0x001F0000FF0000FF
	x = (x ^ (x << 8)) & 0x100F00F00F00F00F
	x = (x ^ (x << 4)) & 0x10C30C30C30C30C3
	x = (x ^ (x << 2)) & 0x1249249249249249
	return x
}

// mortonEncode3 interleaves three 21-bit grid coordinates into a 63-bit
// Morton code.
func mortonEncode3(x, y, z uint64) uint64 {
	return mortonPart1By2(z)<<2 | mortonPart1By2(y)<<1 | mortonPart1By2(x)
}

// mortonCode quantizes a position onto the code grid spanned by bounds.
// A zero-extent axis maps every point to grid coordinate 0.
func mortonCode(pos math.Vec3, bounds Bounds) uint64 {
	size := bounds.Size()
	rel := pos.Sub(bounds.Min)
	var gx, gy, gz uint64
	if size.X > 0 {
		gx = uint64(rel.X / size.X * mortonScaler)
	}
	if size.Y > 0 {
		gy = uint64(rel.Y / size.Y * mortonScaler)
	}
	if size.Z > 0 {
		gz = uint64(rel.Z / size.Z * mortonScaler)
	}
	return mortonEncode3(gx, gy, gz)
}

// ReorderMorton sorts points in place along a Morton (Z-order) curve over
// the given bounds. Equal codes keep their relative input order, so the
// permutation is fully deterministic. Spatially close splats end up
// index-adjacent, which tightens per-chunk value ranges and with them the
// quantization error.
func ReorderMorton(points []Splat, bounds Bounds) {
	type orderEntry struct {
		code  uint64
		index int32
	}
	order := make([]orderEntry, len(points))
	for i := range points {
		order[i] = orderEntry{code: mortonCode(points[i].Pos, bounds), index: int32(i)}
	}
	sort.Slice(order, func(a, b int) bool {
		if order[a].code != order[b].code {
			return order[a].code < order[b].code
		}
		return order[a].index < order[b].index
	})
	sorted := make([]Splat, len(points))
	for i := range order {
		sorted[i] = points[order[i].index]
	}
	copy(points, sorted)
}

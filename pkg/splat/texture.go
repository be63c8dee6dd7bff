package splat

// Base color and opacity are stored as a 2-D texture so renderers can sample
// them directly. Splats fill 16x16 tiles in Morton order, one tile per 256
// consecutive splats, so texture locality follows the chunk order.

// colorTextureWidth is the fixed width of the color texture.
const colorTextureWidth = 2048

// CalcColorTextureSize returns the texture dimensions for n splats: fixed
// width, height rounded up to whole 16-pixel tile rows.
func CalcColorTextureSize(n int) (width, height int) {
	width = colorTextureWidth
	height = (n + width - 1) / width
	if height < 1 {
		height = 1
	}
	height = (height + 15) / 16 * 16
	return width, height
}

// compactEvenBits gathers the even-position bits of t into a 4-bit value.
func compactEvenBits(t uint32) uint32 {
	return t&1 | t>>1&2 | t>>2&4 | t>>3&8
}

// SplatIndexToTexel maps a linear splat index to its texel coordinates in a
// texture of the given width.
func SplatIndexToTexel(index, width int) (x, y int) {
	t := uint32(index & 0xFF)
	tileX := int(compactEvenBits(t))
	tileY := int(compactEvenBits(t >> 1))
	tilesPerRow := width / 16
	tile := index >> 8
	x = tile%tilesPerRow*16 + tileX
	y = tile/tilesPerRow*16 + tileY
	return x, y
}

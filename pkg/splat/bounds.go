package splat

import "github.com/arnevik/splatstream/pkg/math"

// Bounds is an axis-aligned bounding box.
type Bounds struct {
	Min math.Vec3
	Max math.Vec3
}

// CalcBounds returns the axis-aligned bounding box over all splat positions.
func CalcBounds(points []Splat) (Bounds, error) {
	if len(points) == 0 {
		return Bounds{}, ErrNoSplats
	}
	b := Bounds{Min: points[0].Pos, Max: points[0].Pos}
	for i := 1; i < len(points); i++ {
		b.Min = b.Min.Min(points[i].Pos)
		b.Max = b.Max.Max(points[i].Pos)
	}
	return b, nil
}

// Size returns the box extent per axis.
func (b Bounds) Size() math.Vec3 {
	return b.Max.Sub(b.Min)
}

// Center returns the box midpoint.
func (b Bounds) Center() math.Vec3 {
	return b.Min.Add(b.Max).Scale(0.5)
}

// Contains reports whether p lies inside the box, boundary included.
func (b Bounds) Contains(p math.Vec3) bool {
	return p.X >= b.Min.X && p.X <= b.Max.X &&
		p.Y >= b.Min.Y && p.Y <= b.Max.Y &&
		p.Z >= b.Min.Z && p.Z <= b.Max.Z
}

// Union returns the smallest box containing both boxes.
func (b Bounds) Union(o Bounds) Bounds {
	return Bounds{Min: b.Min.Min(o.Min), Max: b.Max.Max(o.Max)}
}

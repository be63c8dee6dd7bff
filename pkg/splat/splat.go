// Package splat encodes gaussian splat point clouds into compact binary
// assets and decodes them back.
//
// Encoding reorders splats along a Morton curve so that spatially close
// points become index-adjacent, quantizes attributes against per-chunk value
// ranges, and packs each attribute stream in a selectable bit-width format.
// Every buffer layout is little-endian and frozen: renderers consume these
// buffers directly, without this package.
package splat

import (
	"github.com/arnevik/splatstream/pkg/math"
)

// SHCoeffCount is the number of higher-order spherical harmonic color
// coefficients carried per splat (bands 1 through 3).
const SHCoeffCount = 15

// Splat is one gaussian splat as delivered by a source reader. Scale is
// linear per axis, opacity and base color are in [0,1], and the rotation
// quaternion is expected to be normalized.
type Splat struct {
	Pos     math.Vec3
	Rot     math.Quat
	Scale   math.Vec3
	Opacity float32
	Color   math.Vec3
	SH      [SHCoeffCount]math.Vec3
}

package splat

import "fmt"

// VectorFormat selects the encoded width of a 3-component vector stream.
type VectorFormat uint8

const (
	// VectorFloat32 stores three raw float32 components, 12 bytes.
	VectorFloat32 VectorFormat = iota
	// VectorNorm16 stores three 16-bit normalized components, 6 bytes.
	VectorNorm16
	// VectorNorm11 stores 11.10.11 normalized components in 4 bytes.
	VectorNorm11
	// VectorNorm6 stores 6.5.5 normalized components in 2 bytes.
	VectorNorm6
)

// Size returns the encoded size of one vector in bytes, 0 for unknown
// formats.
func (f VectorFormat) Size() int {
	switch f {
	case VectorFloat32:
		return 12
	case VectorNorm16:
		return 6
	case VectorNorm11:
		return 4
	case VectorNorm6:
		return 2
	default:
		return 0
	}
}

func (f VectorFormat) String() string {
	switch f {
	case VectorFloat32:
		return "float32"
	case VectorNorm16:
		return "norm16"
	case VectorNorm11:
		return "norm11"
	case VectorNorm6:
		return "norm6"
	default:
		return fmt.Sprintf("vector(%d)", uint8(f))
	}
}

// ParseVectorFormat maps a config name to its format.
func ParseVectorFormat(s string) (VectorFormat, error) {
	switch s {
	case "float32":
		return VectorFloat32, nil
	case "norm16":
		return VectorNorm16, nil
	case "norm11":
		return VectorNorm11, nil
	case "norm6":
		return VectorNorm6, nil
	default:
		return 0, fmt.Errorf("%w: vector format %q", ErrUnknownFormat, s)
	}
}

// ColorFormat selects the pixel layout of the base color texture.
type ColorFormat uint8

const (
	// ColorFloat32x4 stores RGBA as four float32s, 16 bytes per pixel.
	ColorFloat32x4 ColorFormat = iota
	// ColorFloat16x4 stores RGBA as four half floats, 8 bytes per pixel.
	ColorFloat16x4
	// ColorNorm8x4 stores RGBA as four bytes.
	ColorNorm8x4
	// ColorBC7 stores BC7 blocks, 1 byte per pixel. Encoding requires an
	// external TextureCompressor and the result is not CPU-decodable.
	ColorBC7
)

// BytesPerPixel returns the storage cost of one texel, 0 for unknown
// formats.
func (f ColorFormat) BytesPerPixel() int {
	switch f {
	case ColorFloat32x4:
		return 16
	case ColorFloat16x4:
		return 8
	case ColorNorm8x4:
		return 4
	case ColorBC7:
		return 1
	default:
		return 0
	}
}

func (f ColorFormat) String() string {
	switch f {
	case ColorFloat32x4:
		return "float32x4"
	case ColorFloat16x4:
		return "float16x4"
	case ColorNorm8x4:
		return "norm8x4"
	case ColorBC7:
		return "bc7"
	default:
		return fmt.Sprintf("color(%d)", uint8(f))
	}
}

// ParseColorFormat maps a config name to its format.
func ParseColorFormat(s string) (ColorFormat, error) {
	switch s {
	case "float32x4":
		return ColorFloat32x4, nil
	case "float16x4":
		return ColorFloat16x4, nil
	case "norm8x4":
		return ColorNorm8x4, nil
	case "bc7":
		return ColorBC7, nil
	default:
		return 0, fmt.Errorf("%w: color format %q", ErrUnknownFormat, s)
	}
}

// SHFormat selects the encoded width of the spherical harmonic coefficients.
type SHFormat uint8

const (
	// SHFloat32 stores each coefficient as three float32s.
	SHFloat32 SHFormat = iota
	// SHFloat16 stores each coefficient as three half floats.
	SHFloat16
	// SHNorm11 packs each coefficient into 4 bytes (11.10.11).
	SHNorm11
	// SHNorm6 packs each coefficient into 2 bytes (6.5.5).
	SHNorm6
)

// coeffSize returns the encoded size of one coefficient vector.
func (f SHFormat) coeffSize() int {
	switch f {
	case SHFloat32:
		return 12
	case SHFloat16:
		return 6
	case SHNorm11:
		return 4
	case SHNorm6:
		return 2
	default:
		return 0
	}
}

// SplatSize returns the encoded SH size of one splat. The 15 coefficients
// are padded to 16 slots so renderers index them with a shift.
func (f SHFormat) SplatSize() int {
	return (SHCoeffCount + 1) * f.coeffSize()
}

func (f SHFormat) String() string {
	switch f {
	case SHFloat32:
		return "float32"
	case SHFloat16:
		return "float16"
	case SHNorm11:
		return "norm11"
	case SHNorm6:
		return "norm6"
	default:
		return fmt.Sprintf("sh(%d)", uint8(f))
	}
}

// ParseSHFormat maps a config name to its format.
func ParseSHFormat(s string) (SHFormat, error) {
	switch s {
	case "float32":
		return SHFloat32, nil
	case "float16":
		return SHFloat16, nil
	case "norm11":
		return SHNorm11, nil
	case "norm6":
		return SHNorm6, nil
	default:
		return 0, fmt.Errorf("%w: SH format %q", ErrUnknownFormat, s)
	}
}

// Preset names a consistent format tuple trading size against fidelity.
type Preset uint8

const (
	// PresetVeryHigh keeps every stream at full float precision.
	PresetVeryHigh Preset = iota
	// PresetHigh halves storage with 16-bit streams.
	PresetHigh
	// PresetMedium uses the packed normalized formats throughout.
	PresetMedium
	// PresetLow squeezes scale and SH down to 2 bytes per vector.
	PresetLow
)

// Formats returns the per-stream formats the preset stands for.
func (p Preset) Formats() (pos, scale VectorFormat, color ColorFormat, sh SHFormat) {
	switch p {
	case PresetHigh:
		return VectorNorm16, VectorNorm16, ColorFloat16x4, SHFloat16
	case PresetMedium:
		return VectorNorm11, VectorNorm11, ColorNorm8x4, SHNorm11
	case PresetLow:
		return VectorNorm11, VectorNorm6, ColorNorm8x4, SHNorm6
	default:
		return VectorFloat32, VectorFloat32, ColorFloat32x4, SHFloat32
	}
}

func (p Preset) String() string {
	switch p {
	case PresetVeryHigh:
		return "veryhigh"
	case PresetHigh:
		return "high"
	case PresetMedium:
		return "medium"
	case PresetLow:
		return "low"
	default:
		return fmt.Sprintf("preset(%d)", uint8(p))
	}
}

// ParsePreset maps a config name to its preset.
func ParsePreset(s string) (Preset, error) {
	switch s {
	case "veryhigh":
		return PresetVeryHigh, nil
	case "high":
		return PresetHigh, nil
	case "medium":
		return PresetMedium, nil
	case "low":
		return PresetLow, nil
	default:
		return 0, fmt.Errorf("%w: preset %q", ErrUnknownFormat, s)
	}
}

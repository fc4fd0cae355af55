package color

import "math"

// Scale16 converts a channel fraction to the nearest 16-bit duty value.
// Fractions outside [0,1] are clamped.
func Scale16(frac float64) uint16 {
	return uint16(math.Round(clamp01(frac) * math.MaxUint16))
}

// Scale8 converts a channel fraction to the nearest 8-bit value (DMX levels).
func Scale8(frac float64) uint8 {
	return uint8(math.Round(clamp01(frac) * math.MaxUint8))
}

// Hex returns the color as #rrggbb with channels clamped to [0,1].
func Hex(c Color) string {
	return c.Clamped().Hex()
}

// Package color converts hue/saturation/intensity values into linear RGB
// channel fractions suitable for driving LED outputs.
package color

import (
	"math"

	"github.com/lucasb-eyer/go-colorful"
)

// Color is a linear RGB triple with each channel expressed as a fraction.
type Color = colorful.Color

// hueCutoff is 60 degrees in radians. The sector boundaries sit at two and
// four times this value.
const (
	hueCutoff  = 1.047196667
	hueCutoff2 = hueCutoff * 2
	hueCutoff4 = hueCutoff2 * 2
)

var (
	// Pink is the attention color used by identify.
	Pink = Color{R: 1, G: 0, B: 127.0 / 255.0}

	// Black turns every channel off.
	Black = Color{}
)

// HSIToRGB converts hue (degrees), saturation (percent) and intensity
// (percent) into RGB fractions.
//
// Hue is normalized into [0,360) and saturation/intensity are clamped to
// [0,100] before use. Intensity is reshaped as i*sqrt(i) to give finer
// resolution near zero. The result is not clamped.
func HSIToRGB(hue, saturation, intensity float64) Color {
	for hue < 0 {
		hue += 360
	}
	for hue >= 360 {
		hue -= 360
	}

	h := math.Pi * hue / 180
	s := clamp01(saturation / 100)
	i := clamp01(intensity / 100)

	i = i * math.Sqrt(i)

	var c Color
	switch {
	case h < hueCutoff2:
		c.R = i / 3 * (1 + s*math.Cos(h)/math.Cos(hueCutoff-h))
		c.G = i / 3 * (1 + s*(1-math.Cos(h)/math.Cos(hueCutoff-h)))
		c.B = i / 3 * (1 - s)
	case h < hueCutoff4:
		h -= hueCutoff2
		c.R = i / 3 * (1 - s)
		c.G = i / 3 * (1 + s*math.Cos(h)/math.Cos(hueCutoff-h))
		c.B = i / 3 * (1 + s*(1-math.Cos(h)/math.Cos(hueCutoff-h)))
	default:
		h -= hueCutoff4
		c.R = i / 3 * (1 + s*(1-math.Cos(h)/math.Cos(hueCutoff-h)))
		c.G = i / 3 * (1 - s)
		c.B = i / 3 * (1 + s*math.Cos(h)/math.Cos(hueCutoff-h))
	}
	return c
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

package compute

import (
	"image/color"
	"math"

	colorful "github.com/lucasb-eyer/go-colorful"

	"github.com/san-kum/mandelzoom/internal/fractal"
)

const (
	Grayscale fractal.PaintMode = iota
	HSL1
	HSL2
	HSL3
	RGB1
	Fire
)

var paintModes = []fractal.PaintModeOption{
	{Label: "Grayscale", Value: Grayscale},
	{Label: "HSL1", Value: HSL1},
	{Label: "HSL2", Value: HSL2},
	{Label: "HSL3", Value: HSL3},
	{Label: "RGB1", Value: RGB1},
	{Label: "FIRE", Value: Fire},
}

var inside = color.RGBA{A: 255}

// color maps an escape count to a pixel. Points that never escaped are black.
func (w worker) color(n int, mu float64) color.RGBA {
	if n >= w.Iterations {
		return inside
	}
	limit := float64(w.Iterations)
	t := float64(n) / limit

	switch w.PaintMode {
	case Grayscale:
		v := 255 - uint8(t*255)
		return color.RGBA{v, v, v, 255}
	case HSL1:
		return hsl(t * 360)
	case HSL2:
		logN := 0.0
		if n > 1 && w.Iterations > 1 {
			logN = math.Log(float64(n)) / math.Log(limit)
		}
		return hsl((1 - logN) * 240)
	case HSL3:
		return hsl(360 * mu / limit)
	case RGB1:
		f := float64(n)
		return color.RGBA{
			R: uint8(math.Abs(math.Sin(f*9)) * 255),
			G: uint8(math.Abs(math.Sin(f*3)) * 255),
			B: uint8(math.Abs(math.Sin(f*5)) * 255),
			A: 255,
		}
	case Fire:
		return color.RGBA{
			R: uint8(math.Min(9*(1-t)*t*t*t*255, 255)),
			G: uint8(math.Min(15*(1-t)*(1-t)*t*t*255, 255)),
			B: uint8(math.Min(8.5*(1-t)*(1-t)*(1-t)*t*255, 255)),
			A: 255,
		}
	}
	// unknown modes fall back to grayscale
	v := 255 - uint8(t*255)
	return color.RGBA{v, v, v, 255}
}

// hsl returns a fully saturated mid-lightness color for a hue in degrees.
func hsl(hue float64) color.RGBA {
	hue = math.Mod(hue, 360)
	if hue < 0 || math.IsNaN(hue) {
		hue = 0
	}
	r, g, b := colorful.Hsl(hue, 1, 0.5).Clamped().RGB255()
	return color.RGBA{r, g, b, 255}
}

package config

import (
	"sort"

	"github.com/san-kum/mandelzoom/internal/fractal"
)

// Preset is a named viewport.
type Preset struct {
	Description string
	PosX        float64
	PosY        float64
	Size        float64
}

// region builds a preset from a bounding box in the complex plane. The
// horizontal extent becomes the view size.
func region(desc string, xmin, xmax, ymin, ymax float64) Preset {
	return Preset{
		Description: desc,
		PosX:        (xmin + xmax) / 2,
		PosY:        (ymin + ymax) / 2,
		Size:        xmax - xmin,
	}
}

var Presets = map[string]Preset{
	"home":                 {Description: "the whole set", PosX: fractal.DefaultPosX, PosY: fractal.DefaultPosY, Size: fractal.DefaultSize},
	"seahorse-valley":      region("dense filaments and repeating seahorse curls", -0.8, -0.7, 0.05, 0.15),
	"elephant-valley":      region("large bulb with trunk-like tendrils", -1.85, -1.75, -0.10, -0.02),
	"spiral-minibrot":      region("small copy with tight spiral arms", -0.7435, -0.7420, 0.1310, 0.1325),
	"triple-spiral":        region("threefold symmetric spiral", -0.7480, -0.7450, 0.0950, 0.0980),
	"dragon-valley":        region("deep spiral filaments", -0.7400, -0.7350, 0.1800, 0.1850),
	"mini-spiral-minibrot": region("self-similar copy inside a spiral arm", -1.7390, -1.7375, -0.0235, -0.0220),
}

func GetPreset(name string) *Preset {
	p, ok := Presets[name]
	if !ok {
		return nil
	}
	return &p
}

// ListPresets returns the preset names in sorted order.
func ListPresets() []string {
	names := make([]string, 0, len(Presets))
	for name := range Presets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Apply moves the viewport of params onto the preset.
func (p Preset) Apply(params fractal.Params) fractal.Params {
	params.PosX = p.PosX
	params.PosY = p.PosY
	params.Size = p.Size
	return params
}

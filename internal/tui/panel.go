package tui

import (
	"fmt"
	"math"
	"strings"

	"github.com/san-kum/mandelzoom/internal/fractal"
)

// slider is the range control for one field. The numeric field next to it
// accepts any value; only the slider is bounded.
type slider struct {
	field    fractal.Field
	label    string
	min, max float64
	step     float64
}

var sliders = []slider{
	{fractal.FieldPosX, "pos x", -1, 1, 0.05},
	{fractal.FieldPosY, "pos y", -1, 1, 0.05},
	{fractal.FieldSize, "size", 0.01, 6, 0.01},
	{fractal.FieldIterations, "iterations", 100, 5000, 100},
	{fractal.FieldSamples, "samples", 1, 10, 1},
	{fractal.FieldWidth, "width", 128, 1920, 64},
	{fractal.FieldHeight, "height", 128, 1080, 64},
	{fractal.FieldThreads, "threads", 1, 32, 1},
	{fractal.FieldPaintMode, "paint mode", 0, 0, 1},
}

// nudge moves v by dir steps and clamps the result to the slider range.
// Integer fields snap to whole numbers.
func (s slider) nudge(v fractal.Value, dir int) fractal.Value {
	x := v.Float() + float64(dir)*s.step
	x = math.Max(s.min, math.Min(s.max, x))
	if s.field.Kind() == fractal.KindReal {
		// snap to the step grid
		x = math.Round(x/s.step) * s.step
		return fractal.Real(x)
	}
	return fractal.Int(int(math.Round(x)))
}

// fraction is where v sits within the slider range, clamped to [0,1].
func (s slider) fraction(v float64) float64 {
	if s.max <= s.min {
		return 0
	}
	f := (v - s.min) / (s.max - s.min)
	return math.Max(0, math.Min(1, f))
}

func (s slider) bar(v float64, width int) string {
	filled := int(math.Round(s.fraction(v) * float64(width)))
	return strings.Repeat("━", filled) + strings.Repeat("─", width-filled)
}

// cycleMode returns the paint mode dir places away from cur, wrapping.
func cycleMode(modes []fractal.PaintModeOption, cur fractal.PaintMode, dir int) fractal.PaintMode {
	if len(modes) == 0 {
		return cur
	}
	idx := 0
	for i, m := range modes {
		if m.Value == cur {
			idx = i
			break
		}
	}
	idx = (idx + dir + len(modes)) % len(modes)
	return modes[idx].Value
}

func formatValue(f fractal.Field, v fractal.Value, modes []fractal.PaintModeOption) string {
	switch f.Kind() {
	case fractal.KindEnum:
		return fractal.PaintModeLabel(modes, fractal.PaintMode(v.Int()))
	case fractal.KindInt:
		return fmt.Sprintf("%d", v.Int())
	default:
		return fmt.Sprintf("%.6g", v.Float())
	}
}

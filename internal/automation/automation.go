package automation

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/san-kum/mandelzoom/internal/config"
	"github.com/san-kum/mandelzoom/internal/control"
	"github.com/san-kum/mandelzoom/internal/fractal"
	"gopkg.in/yaml.v3"
)

// Tour defines a scripted sequence of edits, zooms, renders and exports.
type Tour struct {
	Name        string `yaml:"name"`
	Description string `yaml:"description"`
	Steps       []Step `yaml:"steps"`
}

// Step is a single tour step. Its parts run in field order: set, preset,
// zoom, zoom_out, render, save.
type Step struct {
	Set     map[string]string `yaml:"set"`
	Preset  string            `yaml:"preset"`
	Zoom    *Rect             `yaml:"zoom"`
	ZoomOut float64           `yaml:"zoom_out"`
	Render  bool              `yaml:"render"`
	Save    string            `yaml:"save"`
}

// Rect is a drag rectangle in canvas pixels.
type Rect struct {
	X float64 `yaml:"x"`
	Y float64 `yaml:"y"`
	W float64 `yaml:"w"`
	H float64 `yaml:"h"`
}

// StepResult records the state after a step.
type StepResult struct {
	Step       int
	Params     fractal.Params
	Zoomed     bool
	RenderTime float64
	Saved      string
}

// LoadTour loads a tour from a YAML file
func LoadTour(path string) (*Tour, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return ParseTour(data)
}

func ParseTour(data []byte) (*Tour, error) {
	var tour Tour
	if err := yaml.Unmarshal(data, &tour); err != nil {
		return nil, err
	}
	return &tour, nil
}

// RunTour executes all steps against s and stops at the first failure.
// Progress lines go to out.
func RunTour(ctx context.Context, s *control.Session, tour *Tour, out io.Writer) ([]StepResult, error) {
	results := make([]StepResult, 0, len(tour.Steps))

	for i, step := range tour.Steps {
		if err := ctx.Err(); err != nil {
			return results, err
		}
		fmt.Fprintf(out, "Running step %d/%d\n", i+1, len(tour.Steps))

		res, err := runStep(ctx, s, step)
		res.Step = i + 1
		if err != nil {
			return results, fmt.Errorf("step %d: %w", i+1, err)
		}
		results = append(results, res)
	}
	return results, nil
}

func runStep(ctx context.Context, s *control.Session, step Step) (StepResult, error) {
	var res StepResult

	for name := range step.Set {
		if _, err := fractal.ParseField(name); err != nil {
			return res, err
		}
	}
	for _, f := range fractal.Fields {
		raw, ok := step.Set[string(f)]
		if !ok {
			continue
		}
		v, err := coerce(s, f, raw)
		if err != nil {
			return res, err
		}
		if err := s.SetParameter(f, v); err != nil {
			return res, err
		}
	}

	if step.Preset != "" {
		preset := config.GetPreset(step.Preset)
		if preset == nil {
			return res, fmt.Errorf("unknown preset %q", step.Preset)
		}
		if _, err := s.Apply(preset.Apply(s.Params())); err != nil {
			return res, err
		}
	}

	if step.Zoom != nil {
		r := control.Rect{X: step.Zoom.X, Y: step.Zoom.Y, W: step.Zoom.W, H: step.Zoom.H}
		res.Zoomed = s.Zoom(r)
	}
	if step.ZoomOut > 0 {
		res.Zoomed = s.Zoom(control.ZoomOutRect(s.Params(), step.ZoomOut)) || res.Zoomed
	}

	if step.Render {
		if err := s.Render(ctx); err != nil {
			return res, err
		}
		res.RenderTime = s.Snapshot().RenderTime
	}

	if step.Save != "" {
		if err := s.SaveImageTo(step.Save); err != nil {
			return res, err
		}
		res.Saved = step.Save
	}

	res.Params = s.Params()
	return res, nil
}

// coerce accepts paint modes by label as well as by number.
func coerce(s *control.Session, f fractal.Field, raw string) (fractal.Value, error) {
	v, err := fractal.Coerce(f, raw)
	if err == nil || f != fractal.FieldPaintMode {
		return v, err
	}
	m, lerr := fractal.LookupPaintMode(s.PaintModes(), raw)
	if lerr != nil {
		return v, err
	}
	return fractal.Enum(int(m)), nil
}

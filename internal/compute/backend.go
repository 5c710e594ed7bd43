package compute

import (
	"fmt"

	"github.com/san-kum/mandelzoom/internal/canvas"
	"github.com/san-kum/mandelzoom/internal/fractal"
)

// CPUBackend creates CPU engines bound to surfaces from a registry.
type CPUBackend struct {
	surfaces *canvas.Registry
}

func NewBackend(surfaces *canvas.Registry) *CPUBackend {
	return &CPUBackend{surfaces: surfaces}
}

func (b *CPUBackend) Name() string { return "cpu" }

func (b *CPUBackend) PaintModes() []fractal.PaintModeOption {
	out := make([]fractal.PaintModeOption, len(paintModes))
	copy(out, paintModes)
	return out
}

// Create resolves canvasID and sizes its surface to the requested raster.
func (b *CPUBackend) Create(canvasID string, p fractal.Params) (fractal.Engine, error) {
	return b.NewEngine(canvasID, p)
}

// NewEngine is Create with the concrete return type.
func (b *CPUBackend) NewEngine(canvasID string, p fractal.Params) (*Engine, error) {
	surface, ok := b.surfaces.Lookup(canvasID)
	if !ok {
		return nil, fmt.Errorf("%w: %q", fractal.ErrCanvasNotFound, canvasID)
	}
	surface.Resize(p.Width, p.Height)
	return &Engine{surface: surface, params: p}, nil
}

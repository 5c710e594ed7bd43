package fractal

import "context"

// Engine is a live binding to a rendering engine. Mutators overwrite one
// field each and are assumed infallible.
type Engine interface {
	SetPosX(x float64)
	SetPosY(y float64)
	SetSize(size float64)
	SetMaxIterations(n int)
	SetSamples(n int)
	SetWidth(w int)
	SetHeight(h int)
	SetPaintMode(m PaintMode)

	// RenderParallel renders the current parameters using the given number
	// of workers and returns the elapsed time in seconds.
	RenderParallel(ctx context.Context, threads int) (float64, error)

	// RenderTime reports the elapsed seconds of the most recent completed render.
	RenderTime() float64

	// SaveToFile exports the current raster as PNG. It fails with
	// ErrNothingRendered before the first completed render.
	SaveToFile(path string) error
}

// Backend creates engines bound to a canvas and describes their capabilities.
type Backend interface {
	Name() string
	PaintModes() []PaintModeOption
	Create(canvasID string, p Params) (Engine, error)
}

// Push sends one field to eng through its matching mutator. threads has no
// mutator and is ignored.
func Push(eng Engine, f Field, v Value) {
	switch f {
	case FieldPosX:
		eng.SetPosX(v.Float())
	case FieldPosY:
		eng.SetPosY(v.Float())
	case FieldSize:
		eng.SetSize(v.Float())
	case FieldIterations:
		eng.SetMaxIterations(v.Int())
	case FieldSamples:
		eng.SetSamples(v.Int())
	case FieldWidth:
		eng.SetWidth(v.Int())
	case FieldHeight:
		eng.SetHeight(v.Int())
	case FieldPaintMode:
		eng.SetPaintMode(PaintMode(v.Int()))
	}
}

// PushAll sends every field that differs between from and to, in panel
// order, and returns the fields sent.
func PushAll(eng Engine, from, to Params) []Field {
	changed := from.Diff(to)
	for _, f := range changed {
		v, _ := to.Get(f)
		Push(eng, f, v)
	}
	return changed
}

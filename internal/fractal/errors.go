package fractal

import "errors"

// Domain errors for engines and parameter handling.
var (
	// ErrCanvasNotFound indicates the canvas identifier did not resolve to a surface.
	ErrCanvasNotFound = errors.New("fractal: canvas not found")

	// ErrNothingRendered indicates an export was requested before any render completed.
	ErrNothingRendered = errors.New("fractal: nothing rendered yet")

	// ErrUnknownField indicates a parameter name outside the fixed field set.
	ErrUnknownField = errors.New("fractal: unknown parameter field")

	// ErrBadValue indicates raw input that could not be coerced to the field's kind.
	ErrBadValue = errors.New("fractal: value cannot be coerced")

	// ErrUnknownPaintMode indicates a paint mode label the engine does not offer.
	ErrUnknownPaintMode = errors.New("fractal: unknown paint mode")
)

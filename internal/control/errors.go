package control

import "errors"

var (
	// ErrRenderInFlight indicates a render request was dropped because another is outstanding.
	ErrRenderInFlight = errors.New("control: render already in flight")

	// ErrNoEngine indicates the engine handle is absent (not opened, failed to open, or closed).
	ErrNoEngine = errors.New("control: no engine")
)

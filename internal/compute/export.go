package compute

import (
	"fmt"
	"image/png"
	"os"

	"github.com/san-kum/mandelzoom/internal/fractal"
)

// SaveToFile writes the last completed frame to path as PNG.
func (e *Engine) SaveToFile(path string) error {
	frame := e.Frame()
	if frame == nil {
		return fractal.ErrNothingRendered
	}

	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := png.Encode(f, frame); err != nil {
		f.Close()
		return fmt.Errorf("compute: encode %s: %w", path, err)
	}
	return f.Close()
}

package compute

import (
	"context"
	"fmt"
	"image"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/san-kum/mandelzoom/internal/canvas"
	"github.com/san-kum/mandelzoom/internal/fractal"
)

// Engine renders on the CPU. Mutators may be called while a render is
// running; the render works on a snapshot taken when it starts.
type Engine struct {
	mu         sync.Mutex
	surface    *canvas.Surface
	params     fractal.Params
	renderTime float64
	frame      *image.RGBA
}

var _ fractal.Engine = (*Engine)(nil)

func (e *Engine) SetPosX(x float64) {
	e.mu.Lock()
	e.params.PosX = x
	e.mu.Unlock()
}

func (e *Engine) SetPosY(y float64) {
	e.mu.Lock()
	e.params.PosY = y
	e.mu.Unlock()
}

func (e *Engine) SetSize(size float64) {
	e.mu.Lock()
	e.params.Size = size
	e.mu.Unlock()
}

func (e *Engine) SetMaxIterations(n int) {
	e.mu.Lock()
	e.params.Iterations = n
	e.mu.Unlock()
}

func (e *Engine) SetSamples(n int) {
	e.mu.Lock()
	e.params.Samples = n
	e.mu.Unlock()
}

func (e *Engine) SetPaintMode(m fractal.PaintMode) {
	e.mu.Lock()
	e.params.PaintMode = m
	e.mu.Unlock()
}

// SetWidth also resizes the surface, clearing it.
func (e *Engine) SetWidth(w int) {
	e.mu.Lock()
	e.params.Width = w
	h := e.params.Height
	e.mu.Unlock()
	e.surface.Resize(w, h)
}

// SetHeight also resizes the surface, clearing it.
func (e *Engine) SetHeight(h int) {
	e.mu.Lock()
	e.params.Height = h
	w := e.params.Width
	e.mu.Unlock()
	e.surface.Resize(w, h)
}

// Params returns the engine's current view of the parameters.
func (e *Engine) Params() fractal.Params {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.params
}

func (e *Engine) RenderTime() float64 {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.renderTime
}

// RenderParallel renders the current parameters with threads row chunks in
// parallel and paints the result onto the surface.
func (e *Engine) RenderParallel(ctx context.Context, threads int) (float64, error) {
	e.mu.Lock()
	w := worker{e.params}
	e.mu.Unlock()

	if w.Width <= 0 || w.Height <= 0 {
		return 0, fmt.Errorf("compute: cannot render %dx%d raster", w.Width, w.Height)
	}

	start := time.Now()
	img := image.NewRGBA(image.Rect(0, 0, w.Width, w.Height))

	g, ctx := errgroup.WithContext(ctx)
	for _, chunk := range splitRows(w.Height, threads) {
		chunk := chunk
		g.Go(func() error {
			for y := chunk.start; y < chunk.end; y++ {
				if err := ctx.Err(); err != nil {
					return err
				}
				w.renderRow(img, y)
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return 0, fmt.Errorf("compute: render: %w", err)
	}

	e.surface.Put(img)
	elapsed := time.Since(start).Seconds()

	e.mu.Lock()
	e.renderTime = elapsed
	e.frame = img
	e.mu.Unlock()

	return elapsed, nil
}

// Frame returns the most recently completed frame, or nil.
func (e *Engine) Frame() *image.RGBA {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.frame
}

type rowRange struct {
	start, end int
}

// splitRows divides height rows into chunks of max(height/chunks, 1) rows;
// the last chunk takes the remainder.
func splitRows(height, chunks int) []rowRange {
	if height <= 0 {
		return nil
	}
	if chunks < 1 {
		chunks = 1
	}
	if chunks > height {
		chunks = height
	}
	size := height / chunks
	if size < 1 {
		size = 1
	}

	out := make([]rowRange, chunks)
	for c := 0; c < chunks; c++ {
		out[c] = rowRange{start: c * size, end: (c + 1) * size}
	}
	out[chunks-1].end = height
	return out
}

package control

import (
	"context"
	"math"

	"github.com/san-kum/mandelzoom/internal/fractal"
)

// MinZoomPixels is the dead zone: drags narrower or shorter than this are
// treated as clicks and discarded.
const MinZoomPixels = 5

// Point is a canvas-local position in pixels.
type Point struct {
	X, Y float64
}

// Rect is a drag rectangle anchored at the pointer-down point. W and H are
// signed: dragging up or left gives negative extents.
type Rect struct {
	X, Y, W, H float64
}

// Normalized returns the same area with non-negative extents.
func (r Rect) Normalized() Rect {
	if r.W < 0 {
		r.X, r.W = r.X+r.W, -r.W
	}
	if r.H < 0 {
		r.Y, r.H = r.Y+r.H, -r.H
	}
	return r
}

// Gesture tracks one drag over the canvas: idle until Down, dragging until Up.
type Gesture struct {
	dragging bool
	origin   Point
	rect     Rect
	hasRect  bool
}

func (g *Gesture) Down(p Point) {
	*g = Gesture{dragging: true, origin: p}
}

// Move recomputes the rectangle from the origin to p. It is ignored unless
// dragging.
func (g *Gesture) Move(p Point) {
	if !g.dragging {
		return
	}
	g.rect = Rect{X: g.origin.X, Y: g.origin.Y, W: p.X - g.origin.X, H: p.Y - g.origin.Y}
	g.hasRect = true
}

// Up ends the drag and returns the rectangle if it is large enough to zoom.
func (g *Gesture) Up() (Rect, bool) {
	r, ok := g.rect, g.hasRect
	*g = Gesture{}
	if !ok || tooSmall(r) {
		return Rect{}, false
	}
	return r, true
}

func (g *Gesture) Dragging() bool { return g.dragging }

// Rect returns the current drag rectangle, for drawing feedback.
func (g *Gesture) Rect() (Rect, bool) {
	return g.rect, g.hasRect
}

func tooSmall(r Rect) bool {
	return math.Abs(r.W) < MinZoomPixels || math.Abs(r.H) < MinZoomPixels
}

func finite(vs ...float64) bool {
	for _, v := range vs {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}
	return true
}

// ZoomTransform maps a drag rectangle in canvas pixels onto a new viewport.
// The larger of the two axis ratios is used so the whole rectangle fits.
// Only PosX, PosY and Size change. It reports false, leaving p untouched,
// for dead-zone rectangles and for non-positive canvas dimensions.
func ZoomTransform(p fractal.Params, r Rect) (fractal.Params, bool) {
	if !finite(r.X, r.Y, r.W, r.H) || tooSmall(r) || p.Width <= 0 || p.Height <= 0 {
		return p, false
	}
	w, h := float64(p.Width), float64(p.Height)

	cx := r.X + r.W/2
	cy := r.Y + r.H/2
	scale := math.Max(math.Abs(r.W)/w, math.Abs(r.H)/h)
	aspect := h / w

	next := p
	next.Size = p.Size * scale
	next.PosX = p.PosX + (cx/w-0.5)*p.Size
	next.PosY = p.PosY + (cy/h-0.5)*p.Size*aspect
	return next, true
}

// UnzoomRect returns the rectangle, in the canvas pixels of after, whose
// zoom-commit restores the viewport of before.
func UnzoomRect(before, after fractal.Params) Rect {
	w, h := float64(after.Width), float64(after.Height)
	aspect := h / w
	scale := before.Size / after.Size

	cx := w * (0.5 + (before.PosX-after.PosX)/after.Size)
	cy := h * (0.5 + (before.PosY-after.PosY)/(after.Size*aspect))
	rw, rh := w*scale, h*scale
	return Rect{X: cx - rw/2, Y: cy - rh/2, W: rw, H: rh}
}

// ZoomOutRect returns a rectangle centered on the canvas that widens the
// viewport by factor.
func ZoomOutRect(p fractal.Params, factor float64) Rect {
	w, h := float64(p.Width), float64(p.Height)
	rw, rh := w*factor, h*factor
	return Rect{X: (w - rw) / 2, Y: (h - rh) / 2, W: rw, H: rh}
}

// Zoom commits r as three single-field pushes (posX, posY, size) and
// remembers the previous viewport for Back. It does not render.
func (s *Session) Zoom(r Rect) bool {
	before := s.Params()
	next, ok := ZoomTransform(before, r)
	if !ok {
		return false
	}
	s.pushViewport(next)

	s.mu.Lock()
	s.zooms = append(s.zooms, before)
	if len(s.zooms) > zoomHistory {
		s.zooms = s.zooms[len(s.zooms)-zoomHistory:]
	}
	s.mu.Unlock()

	s.log.Info("zoom committed", "posX", next.PosX, "posY", next.PosY, "size", next.Size)
	return true
}

// Back undoes the most recent committed zoom by committing the rectangle
// that inverts it. It does not render.
func (s *Session) Back() bool {
	s.mu.Lock()
	n := len(s.zooms)
	if n == 0 {
		s.mu.Unlock()
		return false
	}
	before := s.zooms[n-1]
	s.zooms = s.zooms[:n-1]
	cur := s.params
	s.mu.Unlock()

	next, ok := ZoomTransform(cur, UnzoomRect(before, cur))
	if !ok {
		return false
	}
	s.pushViewport(next)
	s.log.Info("zoom reverted", "posX", next.PosX, "posY", next.PosY, "size", next.Size)
	return true
}

func (s *Session) PointerDown(p Point) {
	s.mu.Lock()
	s.gesture.Down(p)
	s.mu.Unlock()
}

func (s *Session) PointerMove(p Point) {
	s.mu.Lock()
	s.gesture.Move(p)
	s.mu.Unlock()
}

// PointerRelease ends the drag and commits the zoom without rendering.
func (s *Session) PointerRelease() bool {
	s.mu.Lock()
	r, ok := s.gesture.Up()
	s.mu.Unlock()
	if !ok {
		return false
	}
	return s.Zoom(r)
}

// PointerUp ends the drag; a committed zoom is followed by a render.
func (s *Session) PointerUp(ctx context.Context) (bool, error) {
	if !s.PointerRelease() {
		return false, nil
	}
	return true, s.Render(ctx)
}

// Package canvas holds the named raster surfaces engines draw onto.
package canvas

import (
	"image"
	"image/draw"
	"sync"
)

// Surface is a resizable RGBA raster shared between an engine, which paints
// whole frames onto it, and a frontend, which reads snapshots.
type Surface struct {
	mu  sync.RWMutex
	img *image.RGBA
}

func NewSurface(w, h int) *Surface {
	s := &Surface{}
	s.Resize(w, h)
	return s
}

// Resize reallocates the raster and clears it. Non-positive sizes give an
// empty raster.
func (s *Surface) Resize(w, h int) {
	if w < 0 {
		w = 0
	}
	if h < 0 {
		h = 0
	}
	s.mu.Lock()
	s.img = image.NewRGBA(image.Rect(0, 0, w, h))
	s.mu.Unlock()
}

// Size returns the raster dimensions in pixels.
func (s *Surface) Size() (w, h int) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	b := s.img.Bounds()
	return b.Dx(), b.Dy()
}

// Put paints a frame at the origin. A frame of a different size replaces
// the raster.
func (s *Surface) Put(frame image.Image) {
	b := frame.Bounds()
	s.mu.Lock()
	defer s.mu.Unlock()
	if b.Dx() != s.img.Bounds().Dx() || b.Dy() != s.img.Bounds().Dy() {
		s.img = image.NewRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	}
	draw.Draw(s.img, s.img.Bounds(), frame, b.Min, draw.Src)
}

// Snapshot returns a copy of the raster.
func (s *Surface) Snapshot() *image.RGBA {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := image.NewRGBA(s.img.Bounds())
	copy(out.Pix, s.img.Pix)
	return out
}

// Registry resolves canvas identifiers to surfaces.
type Registry struct {
	mu       sync.RWMutex
	surfaces map[string]*Surface
}

func NewRegistry() *Registry {
	return &Registry{surfaces: make(map[string]*Surface)}
}

// Register binds id to s, replacing any previous surface.
func (r *Registry) Register(id string, s *Surface) {
	r.mu.Lock()
	r.surfaces[id] = s
	r.mu.Unlock()
}

func (r *Registry) Lookup(id string) (*Surface, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	s, ok := r.surfaces[id]
	return s, ok
}

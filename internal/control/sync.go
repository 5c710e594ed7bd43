package control

import (
	"github.com/san-kum/mandelzoom/internal/fractal"
)

// SetParameter updates one canonical field and, when an engine exists,
// pushes it through the matching mutator. threads has no mutator; it is read
// when a render starts. No range validation is applied.
func (s *Session) SetParameter(f fractal.Field, v fractal.Value) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.params.Set(f, v); err != nil {
		return err
	}
	if s.engine != nil {
		canonical, _ := s.params.Get(f)
		fractal.Push(s.engine, f, canonical)
	}
	return nil
}

// pushViewport writes posX, posY and size in that order, one mutator each.
func (s *Session) pushViewport(next fractal.Params) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.params.PosX = next.PosX
	s.params.PosY = next.PosY
	s.params.Size = next.Size
	if s.engine == nil {
		return
	}
	s.engine.SetPosX(next.PosX)
	s.engine.SetPosY(next.PosY)
	s.engine.SetSize(next.Size)
}

// Apply pushes every field that differs from p and returns the changed
// fields in panel order.
func (s *Session) Apply(p fractal.Params) ([]fractal.Field, error) {
	changed := s.Params().Diff(p)
	for _, f := range changed {
		v, _ := p.Get(f)
		if err := s.SetParameter(f, v); err != nil {
			return nil, err
		}
	}
	return changed, nil
}

package control

import (
	"context"
	"fmt"
)

// Render runs one render with the current threads setting. A call made
// while another render is in flight is dropped with ErrRenderInFlight and
// never reaches the engine. The in-flight flag is cleared on every exit
// path, including engine panics.
func (s *Session) Render(ctx context.Context) (err error) {
	s.mu.Lock()
	eng := s.engine
	if eng == nil {
		s.mu.Unlock()
		return ErrNoEngine
	}
	if s.rendering {
		s.mu.Unlock()
		s.log.Debug("render dropped, one already in flight")
		return ErrRenderInFlight
	}
	s.rendering = true
	threads := s.params.Threads
	s.mu.Unlock()

	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("control: render: engine panic: %v", r)
			s.log.Error("render failed", "err", err)
		}
		s.mu.Lock()
		s.rendering = false
		if err != nil {
			s.lastErr = err
		}
		s.mu.Unlock()
	}()

	if _, rerr := eng.RenderParallel(ctx, threads); rerr != nil {
		s.log.Error("render failed", "threads", threads, "err", rerr)
		return fmt.Errorf("control: render: %w", rerr)
	}

	elapsed := eng.RenderTime()
	s.mu.Lock()
	s.elapsed = elapsed
	s.lastErr = nil
	s.mu.Unlock()

	s.log.Info("render complete", "seconds", elapsed, "threads", threads)
	return nil
}

// SaveImage exports the last frame to the configured export path.
func (s *Session) SaveImage() error {
	return s.SaveImageTo(s.exportPath)
}

// SaveImageTo exports the last frame to path. Failures are logged and
// returned; nothing is retried.
func (s *Session) SaveImageTo(path string) error {
	s.mu.Lock()
	eng := s.engine
	s.mu.Unlock()
	if eng == nil {
		return ErrNoEngine
	}

	if err := eng.SaveToFile(path); err != nil {
		s.log.Error("save image failed", "path", path, "err", err)
		s.setErr(err)
		return fmt.Errorf("control: save image: %w", err)
	}
	s.log.Info("image saved", "path", path)
	return nil
}

// ExportPath returns the default destination of SaveImage.
func (s *Session) ExportPath() string { return s.exportPath }

package control

import (
	"fmt"
	"io"
	"log/slog"
	"sync"

	"github.com/san-kum/mandelzoom/internal/fractal"
)

const (
	DefaultCanvasID   = "mandelbrot-canvas"
	DefaultExportPath = "mandelbrot.png"

	zoomHistory = 64
)

// Options configure a Session.
type Options struct {
	CanvasID   string
	ExportPath string
	Logger     *slog.Logger
}

// Session owns the canonical parameters, the single engine handle and the
// render-in-flight flag.
type Session struct {
	backend    fractal.Backend
	canvasID   string
	exportPath string
	log        *slog.Logger

	// openMu serializes Open and Close so at most one engine exists.
	openMu sync.Mutex

	mu        sync.Mutex
	params    fractal.Params
	engine    fractal.Engine
	rendering bool
	elapsed   float64
	lastErr   error
	gesture   Gesture
	zooms     []fractal.Params
}

// Snapshot is a consistent copy of the session state for display.
type Snapshot struct {
	Params     fractal.Params
	HasEngine  bool
	Rendering  bool
	RenderTime float64
	LastErr    error
	Drag       Rect
	Dragging   bool
}

func NewSession(backend fractal.Backend, p fractal.Params, opts Options) *Session {
	if opts.CanvasID == "" {
		opts.CanvasID = DefaultCanvasID
	}
	if opts.ExportPath == "" {
		opts.ExportPath = DefaultExportPath
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	return &Session{
		backend:    backend,
		canvasID:   opts.CanvasID,
		exportPath: opts.ExportPath,
		log:        opts.Logger,
		params:     p,
	}
}

// Open creates the engine handle from the current parameters, closing any
// previous handle first. On failure the handle stays absent and every
// engine operation becomes a no-op.
func (s *Session) Open() error {
	s.openMu.Lock()
	defer s.openMu.Unlock()

	s.drop()

	s.mu.Lock()
	p := s.params
	s.mu.Unlock()

	eng, err := s.backend.Create(s.canvasID, p)
	if err != nil {
		s.log.Error("engine init failed", "backend", s.backend.Name(), "canvas", s.canvasID, "err", err)
		s.setErr(err)
		return fmt.Errorf("control: open engine: %w", err)
	}

	s.mu.Lock()
	s.engine = eng
	s.lastErr = nil
	s.mu.Unlock()

	s.log.Info("engine ready", "backend", s.backend.Name(), "canvas", s.canvasID)
	return nil
}

// Close drops the engine handle. Engines implementing io.Closer are closed.
func (s *Session) Close() {
	s.openMu.Lock()
	defer s.openMu.Unlock()
	s.drop()
}

func (s *Session) drop() {
	s.mu.Lock()
	eng := s.engine
	s.engine = nil
	s.mu.Unlock()

	if c, ok := eng.(io.Closer); ok {
		if err := c.Close(); err != nil {
			s.log.Warn("engine close failed", "err", err)
		}
	}
}

// Params returns the canonical parameters.
func (s *Session) Params() fractal.Params {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.params
}

// PaintModes returns the backend's paint mode capability description.
func (s *Session) PaintModes() []fractal.PaintModeOption {
	return s.backend.PaintModes()
}

func (s *Session) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	drag, dragging := s.gesture.Rect()
	return Snapshot{
		Params:     s.params,
		HasEngine:  s.engine != nil,
		Rendering:  s.rendering,
		RenderTime: s.elapsed,
		LastErr:    s.lastErr,
		Drag:       drag,
		Dragging:   dragging,
	}
}

func (s *Session) setErr(err error) {
	s.mu.Lock()
	s.lastErr = err
	s.mu.Unlock()
}

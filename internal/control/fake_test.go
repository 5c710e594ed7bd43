package control

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sync"

	"github.com/san-kum/mandelzoom/internal/fractal"
)

type call struct {
	name  string
	value any
}

type fakeEngine struct {
	mu         sync.Mutex
	calls      []call
	renders    int
	threads    []int
	started    chan struct{}
	release    chan struct{}
	renderErr  error
	panicMsg   string
	renderTime float64
	saveErr    error
	saved      []string
	closed     bool
}

func newFakeEngine() *fakeEngine {
	return &fakeEngine{renderTime: 0.25}
}

func (f *fakeEngine) record(name string, v any) {
	f.mu.Lock()
	f.calls = append(f.calls, call{name, v})
	f.mu.Unlock()
}

func (f *fakeEngine) SetPosX(x float64)                { f.record("SetPosX", x) }
func (f *fakeEngine) SetPosY(y float64)                { f.record("SetPosY", y) }
func (f *fakeEngine) SetSize(s float64)                { f.record("SetSize", s) }
func (f *fakeEngine) SetMaxIterations(n int)           { f.record("SetMaxIterations", n) }
func (f *fakeEngine) SetSamples(n int)                 { f.record("SetSamples", n) }
func (f *fakeEngine) SetWidth(w int)                   { f.record("SetWidth", w) }
func (f *fakeEngine) SetHeight(h int)                  { f.record("SetHeight", h) }
func (f *fakeEngine) SetPaintMode(m fractal.PaintMode) { f.record("SetPaintMode", m) }

func (f *fakeEngine) RenderParallel(ctx context.Context, threads int) (float64, error) {
	f.mu.Lock()
	f.renders++
	f.threads = append(f.threads, threads)
	started, release := f.started, f.release
	renderErr, panicMsg := f.renderErr, f.panicMsg
	f.mu.Unlock()

	f.record("RenderParallel", threads)
	if started != nil {
		started <- struct{}{}
	}
	if release != nil {
		<-release
	}
	if panicMsg != "" {
		panic(panicMsg)
	}
	if renderErr != nil {
		return 0, renderErr
	}
	return f.renderTime, nil
}

func (f *fakeEngine) RenderTime() float64 {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.renderTime
}

func (f *fakeEngine) SaveToFile(path string) error {
	f.record("SaveToFile", path)
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.saveErr != nil {
		return f.saveErr
	}
	f.saved = append(f.saved, path)
	return nil
}

func (f *fakeEngine) Close() error {
	f.mu.Lock()
	f.closed = true
	f.mu.Unlock()
	return nil
}

func (f *fakeEngine) Calls() []call {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]call, len(f.calls))
	copy(out, f.calls)
	return out
}

func (f *fakeEngine) Renders() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.renders
}

type fakeBackend struct {
	engines []*fakeEngine
	created []fractal.Params
	err     error
}

func (b *fakeBackend) Name() string { return "fake" }

func (b *fakeBackend) PaintModes() []fractal.PaintModeOption {
	return []fractal.PaintModeOption{{Label: "Grayscale", Value: 0}, {Label: "HSL3", Value: 3}}
}

func (b *fakeBackend) Create(canvasID string, p fractal.Params) (fractal.Engine, error) {
	if b.err != nil {
		return nil, fmt.Errorf("%w: %q", b.err, canvasID)
	}
	e := newFakeEngine()
	b.engines = append(b.engines, e)
	b.created = append(b.created, p)
	return e, nil
}

func (b *fakeBackend) last() *fakeEngine {
	return b.engines[len(b.engines)-1]
}

var errEngine = errors.New("engine exploded")

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTestSession(b *fakeBackend) *Session {
	return NewSession(b, fractal.DefaultParams(), Options{Logger: quietLogger()})
}

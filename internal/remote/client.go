package remote

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/png"
	"log/slog"
	"os"
	"sync"
	"time"

	"github.com/coder/websocket"
	"github.com/coder/websocket/wsjson"

	"github.com/san-kum/mandelzoom/internal/canvas"
	"github.com/san-kum/mandelzoom/internal/fractal"
)

const (
	readLimit   = 64 << 20
	callTimeout = 10 * time.Second
)

// Backend creates engines that render on a remote server and paint the
// returned frames onto local surfaces.
type Backend struct {
	url      string
	surfaces *canvas.Registry
	log      *slog.Logger

	mu    sync.Mutex
	conn  *websocket.Conn
	modes []fractal.PaintModeOption
}

var _ fractal.Backend = (*Backend)(nil)

// Dial connects to the server at url and fetches its paint modes.
func Dial(ctx context.Context, url string, surfaces *canvas.Registry, log *slog.Logger) (*Backend, error) {
	c, _, err := websocket.Dial(ctx, url, nil)
	if err != nil {
		return nil, fmt.Errorf("remote: dial %s: %w", url, err)
	}
	c.SetReadLimit(readLimit)

	b := &Backend{url: url, surfaces: surfaces, log: log, conn: c}
	resp, err := b.call(ctx, Request{Op: OpModes})
	if err != nil {
		c.CloseNow()
		return nil, err
	}
	b.modes = resp.Modes
	log.Info("connected to render server", "url", url, "modes", len(resp.Modes))
	return b, nil
}

func (b *Backend) Name() string { return "remote" }

func (b *Backend) PaintModes() []fractal.PaintModeOption {
	out := make([]fractal.PaintModeOption, len(b.modes))
	copy(out, b.modes)
	return out
}

// Create resolves canvasID locally and asks the server for an engine.
func (b *Backend) Create(canvasID string, p fractal.Params) (fractal.Engine, error) {
	surface, ok := b.surfaces.Lookup(canvasID)
	if !ok {
		return nil, fmt.Errorf("%w: %q", fractal.ErrCanvasNotFound, canvasID)
	}

	ctx, cancel := context.WithTimeout(context.Background(), callTimeout)
	defer cancel()
	if _, err := b.call(ctx, Request{Op: OpCreate, Canvas: canvasID, Params: &p}); err != nil {
		return nil, err
	}

	surface.Resize(p.Width, p.Height)
	return &Engine{backend: b, canvasID: canvasID, surface: surface, params: p}, nil
}

// Close ends the connection.
func (b *Backend) Close() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.conn.Close(websocket.StatusNormalClosure, "")
}

func (b *Backend) call(ctx context.Context, req Request) (Response, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	var resp Response
	if err := wsjson.Write(ctx, b.conn, req); err != nil {
		return resp, fmt.Errorf("remote: %s: %w", req.Op, err)
	}
	if err := wsjson.Read(ctx, b.conn, &resp); err != nil {
		return resp, fmt.Errorf("remote: %s: %w", req.Op, err)
	}
	if resp.Error != "" {
		return resp, fmt.Errorf("%w: %s: %s", ErrRemote, req.Op, resp.Error)
	}
	return resp, nil
}

// Engine mirrors the parameters locally so mutators never touch the
// network. Each render ships the full parameter set.
type Engine struct {
	backend  *Backend
	canvasID string
	surface  *canvas.Surface

	mu         sync.Mutex
	params     fractal.Params
	renderTime float64
	frame      []byte
}

var _ fractal.Engine = (*Engine)(nil)

func (e *Engine) set(fn func(p *fractal.Params)) {
	e.mu.Lock()
	fn(&e.params)
	e.mu.Unlock()
}

func (e *Engine) SetPosX(x float64)      { e.set(func(p *fractal.Params) { p.PosX = x }) }
func (e *Engine) SetPosY(y float64)      { e.set(func(p *fractal.Params) { p.PosY = y }) }
func (e *Engine) SetSize(size float64)   { e.set(func(p *fractal.Params) { p.Size = size }) }
func (e *Engine) SetMaxIterations(n int) { e.set(func(p *fractal.Params) { p.Iterations = n }) }
func (e *Engine) SetSamples(n int)       { e.set(func(p *fractal.Params) { p.Samples = n }) }
func (e *Engine) SetPaintMode(m fractal.PaintMode) {
	e.set(func(p *fractal.Params) { p.PaintMode = m })
}

func (e *Engine) SetWidth(w int) {
	e.set(func(p *fractal.Params) { p.Width = w })
	p := e.Params()
	e.surface.Resize(p.Width, p.Height)
}

func (e *Engine) SetHeight(h int) {
	e.set(func(p *fractal.Params) { p.Height = h })
	p := e.Params()
	e.surface.Resize(p.Width, p.Height)
}

func (e *Engine) Params() fractal.Params {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.params
}

func (e *Engine) RenderParallel(ctx context.Context, threads int) (float64, error) {
	p := e.Params()
	resp, err := e.backend.call(ctx, Request{Op: OpRender, Canvas: e.canvasID, Params: &p, Threads: threads})
	if err != nil {
		return 0, err
	}

	img, err := png.Decode(bytes.NewReader(resp.Frame))
	if err != nil {
		return 0, fmt.Errorf("remote: decode frame: %w", err)
	}
	e.surface.Put(img)

	e.mu.Lock()
	e.renderTime = resp.Seconds
	e.frame = resp.Frame
	e.mu.Unlock()
	return resp.Seconds, nil
}

func (e *Engine) RenderTime() float64 {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.renderTime
}

// Frame decodes the last received frame, or returns nil.
func (e *Engine) Frame() image.Image {
	e.mu.Lock()
	data := e.frame
	e.mu.Unlock()
	if data == nil {
		return nil
	}
	img, err := png.Decode(bytes.NewReader(data))
	if err != nil {
		return nil
	}
	return img
}

// SaveToFile writes the PNG bytes received from the server.
func (e *Engine) SaveToFile(path string) error {
	e.mu.Lock()
	data := e.frame
	e.mu.Unlock()
	if data == nil {
		return fractal.ErrNothingRendered
	}
	return os.WriteFile(path, data, 0644)
}

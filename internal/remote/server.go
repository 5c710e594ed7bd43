package remote

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image/png"
	"log/slog"
	"net/http"
	"time"

	"github.com/coder/websocket"
	"github.com/coder/websocket/wsjson"

	"github.com/san-kum/mandelzoom/internal/canvas"
	"github.com/san-kum/mandelzoom/internal/compute"
	"github.com/san-kum/mandelzoom/internal/fractal"
)

// Server hosts one CPU engine per websocket connection.
type Server struct {
	log *slog.Logger
}

func NewServer(log *slog.Logger) *Server {
	return &Server{log: log}
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	c, err := websocket.Accept(w, r, &websocket.AcceptOptions{
		OriginPatterns: []string{"*"},
	})
	if err != nil {
		s.log.Warn("websocket accept failed", "remote", r.RemoteAddr, "err", err)
		return
	}
	defer c.CloseNow()

	log := s.log.With("remote", r.RemoteAddr)
	log.Info("client connected")

	conn := newConnState()
	ctx := r.Context()
	for {
		var req Request
		if err := wsjson.Read(ctx, c, &req); err != nil {
			switch websocket.CloseStatus(err) {
			case websocket.StatusNormalClosure, websocket.StatusGoingAway:
				log.Info("client disconnected")
			default:
				log.Warn("read failed", "err", err)
			}
			return
		}

		resp := conn.handle(ctx, req)
		if resp.Error != "" {
			log.Warn("request failed", "op", req.Op, "err", resp.Error)
		} else {
			log.Debug("request served", "op", req.Op, "seconds", resp.Seconds)
		}

		if err := wsjson.Write(ctx, c, resp); err != nil {
			log.Warn("write failed", "err", err)
			return
		}
	}
}

// connState is the server side of one connection: a private surface
// registry and at most one engine.
type connState struct {
	surfaces *canvas.Registry
	backend  *compute.CPUBackend
	engine   *compute.Engine
}

func newConnState() *connState {
	reg := canvas.NewRegistry()
	return &connState{surfaces: reg, backend: compute.NewBackend(reg)}
}

func (c *connState) handle(ctx context.Context, req Request) Response {
	switch req.Op {
	case OpModes:
		return Response{Modes: c.backend.PaintModes()}

	case OpCreate:
		if req.Params == nil {
			return Response{Error: "create: missing params"}
		}
		if _, ok := c.surfaces.Lookup(req.Canvas); !ok {
			c.surfaces.Register(req.Canvas, canvas.NewSurface(0, 0))
		}
		eng, err := c.backend.NewEngine(req.Canvas, *req.Params)
		if err != nil {
			return Response{Error: err.Error()}
		}
		c.engine = eng
		return Response{Modes: c.backend.PaintModes()}

	case OpRender:
		if c.engine == nil {
			return Response{Error: ErrNoEngine.Error()}
		}
		if req.Params != nil {
			fractal.PushAll(c.engine, c.engine.Params(), *req.Params)
		}
		seconds, err := c.engine.RenderParallel(ctx, req.Threads)
		if err != nil {
			return Response{Error: err.Error()}
		}
		var buf bytes.Buffer
		if err := png.Encode(&buf, c.engine.Frame()); err != nil {
			return Response{Error: err.Error()}
		}
		return Response{Seconds: seconds, Frame: buf.Bytes()}

	default:
		return Response{Error: fmt.Sprintf("unknown op %q", req.Op)}
	}
}

// Serve listens on addr until ctx is done.
func Serve(ctx context.Context, addr string, log *slog.Logger) error {
	mux := http.NewServeMux()
	mux.Handle(Path, NewServer(log))

	srv := &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	errc := make(chan error, 1)
	go func() {
		log.Info("listening", "addr", "ws://"+addr+Path)
		errc <- srv.ListenAndServe()
	}()

	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return err
		}
		if err := <-errc; !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	}
}

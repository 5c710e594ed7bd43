package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/spf13/cobra"

	"github.com/san-kum/mandelzoom/internal/canvas"
	"github.com/san-kum/mandelzoom/internal/compute"
	"github.com/san-kum/mandelzoom/internal/config"
	"github.com/san-kum/mandelzoom/internal/control"
	"github.com/san-kum/mandelzoom/internal/fractal"
	"github.com/san-kum/mandelzoom/internal/remote"
	"github.com/san-kum/mandelzoom/internal/storage"
)

func newLogger(w io.Writer) *slog.Logger {
	level := slog.LevelWarn
	if verbose {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level}))
}

// loadConfig reads --config over the defaults, then applies the persistent
// flags that were set explicitly.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg := config.DefaultConfig()
	if configFile != "" {
		loaded, err := config.Load(configFile)
		if err != nil {
			return nil, fmt.Errorf("failed to load config: %w", err)
		}
		cfg = loaded
	}

	flags := cmd.Flags()
	if flags.Changed("data") {
		cfg.DataDir = dataDir
	}
	if flags.Changed("backend") {
		cfg.Backend = backend
	}
	if flags.Changed("remote") {
		cfg.Remote = remoteURL
	}
	return cfg, nil
}

type env struct {
	session *control.Session
	surface *canvas.Surface
	store   *storage.Store
	log     *slog.Logger
	backend string
	closer  io.Closer
}

func (e *env) Close() {
	e.session.Close()
	if e.closer != nil {
		e.closer.Close()
	}
}

// openSession builds the backend named by cfg, resolves the starting view
// and opens the engine.
func openSession(cmd *cobra.Command, cfg *config.Config, log *slog.Logger) (*env, error) {
	reg := canvas.NewRegistry()
	surface := canvas.NewSurface(0, 0)
	reg.Register(cfg.Canvas, surface)

	e := &env{surface: surface, log: log, backend: cfg.Backend, store: storage.New(cfg.BookmarkDir())}
	if err := e.store.Init(); err != nil {
		return nil, err
	}

	var b fractal.Backend
	switch cfg.Backend {
	case config.BackendCPU:
		b = compute.NewBackend(reg)
	case config.BackendRemote:
		ctx, cancel := context.WithTimeout(cmd.Context(), 10*time.Second)
		defer cancel()
		rb, err := remote.Dial(ctx, cfg.Remote, reg, log)
		if err != nil {
			return nil, err
		}
		b, e.closer = rb, rb
	default:
		return nil, fmt.Errorf("unknown backend %q (available: %s, %s)", cfg.Backend, config.BackendCPU, config.BackendRemote)
	}

	p, err := startParams(cmd, cfg, b.PaintModes(), e.store)
	if err != nil {
		if e.closer != nil {
			e.closer.Close()
		}
		return nil, err
	}

	e.session = control.NewSession(b, p, control.Options{
		CanvasID:   cfg.Canvas,
		ExportPath: cfg.Export,
		Logger:     log,
	})
	if err := e.session.Open(); err != nil {
		e.Close()
		return nil, err
	}
	return e, nil
}

// startParams layers the starting view: config, then --view, then --preset,
// then individual flags.
func startParams(cmd *cobra.Command, cfg *config.Config, modes []fractal.PaintModeOption, store *storage.Store) (fractal.Params, error) {
	p, err := cfg.Params(modes)
	if err != nil {
		return p, err
	}

	if view != "" {
		v, err := store.Find(view)
		if err != nil {
			return p, err
		}
		p = v.Params
	}

	if preset != "" {
		pr := config.GetPreset(preset)
		if pr == nil {
			return p, fmt.Errorf("unknown preset: %s (available: %v)", preset, config.ListPresets())
		}
		p = pr.Apply(p)
	}

	flags := cmd.Flags()
	if flags.Changed("posx") {
		p.PosX = posX
	}
	if flags.Changed("posy") {
		p.PosY = posY
	}
	if flags.Changed("size") {
		p.Size = size
	}
	if flags.Changed("iterations") {
		p.Iterations = iterations
	}
	if flags.Changed("samples") {
		p.Samples = samples
	}
	if flags.Changed("width") {
		p.Width = width
	}
	if flags.Changed("height") {
		p.Height = height
	}
	if flags.Changed("threads") {
		p.Threads = threads
	}
	if flags.Changed("paint") {
		m, err := fractal.LookupPaintMode(modes, paintMode)
		if err != nil {
			return p, err
		}
		p.PaintMode = m
	}
	return p, nil
}

package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/san-kum/mandelzoom/internal/fractal"
	"gopkg.in/yaml.v3"
)

const (
	BackendCPU    = "cpu"
	BackendRemote = "remote"

	DefaultPaintMode = "HSL3"
	DefaultRemote    = "ws://localhost:8080/ws"
	DefaultDataDir   = ".mandelzoom"
)

type Config struct {
	Backend string     `yaml:"backend"`
	Remote  string     `yaml:"remote"`
	Canvas  string     `yaml:"canvas"`
	Export  string     `yaml:"export"`
	DataDir string     `yaml:"data_dir"`
	View    ViewConfig `yaml:"view"`
}

// ViewConfig is the startup viewport. PaintMode is a label resolved against
// the backend's paint modes.
type ViewConfig struct {
	PosX       float64 `yaml:"pos_x"`
	PosY       float64 `yaml:"pos_y"`
	Size       float64 `yaml:"size"`
	Iterations int     `yaml:"iterations"`
	Samples    int     `yaml:"samples"`
	Width      int     `yaml:"width"`
	Height     int     `yaml:"height"`
	Threads    int     `yaml:"threads"`
	PaintMode  string  `yaml:"paint_mode"`
}

func DefaultConfig() *Config {
	return &Config{
		Backend: BackendCPU,
		Remote:  DefaultRemote,
		Canvas:  "mandelbrot-canvas",
		Export:  "mandelbrot.png",
		DataDir: DefaultDataDir,
		View: ViewConfig{
			PosX:       fractal.DefaultPosX,
			PosY:       fractal.DefaultPosY,
			Size:       fractal.DefaultSize,
			Iterations: fractal.DefaultIterations,
			Samples:    fractal.DefaultSamples,
			Width:      fractal.DefaultWidth,
			Height:     fractal.DefaultHeight,
			Threads:    fractal.DefaultThreads,
			PaintMode:  DefaultPaintMode,
		},
	}
}

func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("config: parse %s: %w", path, err)
	}
	return cfg, nil
}

func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// Params resolves the view against the paint modes a backend offers.
func (c *Config) Params(modes []fractal.PaintModeOption) (fractal.Params, error) {
	v := c.View
	p := fractal.Params{
		PosX:       v.PosX,
		PosY:       v.PosY,
		Size:       v.Size,
		Iterations: v.Iterations,
		Samples:    v.Samples,
		Width:      v.Width,
		Height:     v.Height,
		Threads:    v.Threads,
	}
	if v.PaintMode != "" {
		m, err := fractal.LookupPaintMode(modes, v.PaintMode)
		if err != nil {
			return p, err
		}
		p.PaintMode = m
	}
	return p, nil
}

// SetView stores p as the startup view.
func (c *Config) SetView(p fractal.Params, modes []fractal.PaintModeOption) {
	c.View = ViewConfig{
		PosX:       p.PosX,
		PosY:       p.PosY,
		Size:       p.Size,
		Iterations: p.Iterations,
		Samples:    p.Samples,
		Width:      p.Width,
		Height:     p.Height,
		Threads:    p.Threads,
		PaintMode:  fractal.PaintModeLabel(modes, p.PaintMode),
	}
}

// BookmarkDir is where saved views live.
func (c *Config) BookmarkDir() string {
	return filepath.Join(c.DataDir, "views")
}

// LogPath is the log file used while the terminal UI owns the screen.
func (c *Config) LogPath() string {
	return filepath.Join(c.DataDir, "mandelzoom.log")
}

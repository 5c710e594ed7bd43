package tui

import (
	"image"
	"image/color"
	"io"
	"log/slog"
	"math"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/san-kum/mandelzoom/internal/canvas"
	"github.com/san-kum/mandelzoom/internal/compute"
	"github.com/san-kum/mandelzoom/internal/config"
	"github.com/san-kum/mandelzoom/internal/control"
	"github.com/san-kum/mandelzoom/internal/fractal"
	"github.com/san-kum/mandelzoom/internal/storage"
)

func TestFit(t *testing.T) {
	tests := []struct {
		w, h, maxCols, maxRows int
		cols, rows             int
	}{
		{512, 512, 80, 60, 80, 40},
		{512, 512, 80, 20, 40, 20},
		{800, 400, 100, 100, 100, 25},
		{512, 512, 0, 20, 0, 0},
		{0, 512, 80, 20, 0, 0},
	}
	for _, tt := range tests {
		cols, rows := fit(tt.w, tt.h, tt.maxCols, tt.maxRows)
		if cols != tt.cols || rows != tt.rows {
			t.Errorf("fit(%d,%d,%d,%d) = %d,%d want %d,%d",
				tt.w, tt.h, tt.maxCols, tt.maxRows, cols, rows, tt.cols, tt.rows)
		}
	}
}

func TestToCanvas(t *testing.T) {
	s := screen{left: 0, top: 2, cols: 64, rows: 32, w: 512, h: 512}

	p, ok := s.toCanvas(0, 2)
	if !ok || p.X != 4 || p.Y != 8 {
		t.Errorf("first cell = %+v, %v", p, ok)
	}
	p, ok = s.toCanvas(63, 33)
	if !ok || p.X != 508 || p.Y != 504 {
		t.Errorf("last cell = %+v, %v", p, ok)
	}
	for _, c := range [][2]int{{0, 1}, {64, 10}, {10, 34}, {-1, 5}} {
		if _, ok := s.toCanvas(c[0], c[1]); ok {
			t.Errorf("cell %v should be outside", c)
		}
	}
	if p := s.clampCanvas(200, 0); p.X != 508 || p.Y != 8 {
		t.Errorf("clamped = %+v", p)
	}
}

func TestRenderCells(t *testing.T) {
	s := screen{cols: 8, rows: 4, w: 16, h: 16}
	src := image.NewRGBA(image.Rect(0, 0, 16, 16))
	out := s.render(src, control.Rect{}, false)

	lines := strings.Split(out, "\n")
	if len(lines) != 4 {
		t.Fatalf("expected 4 lines, got %d", len(lines))
	}
	for _, l := range lines {
		if n := strings.Count(l, "▀"); n != 8 {
			t.Errorf("expected 8 cells, got %d", n)
		}
	}
	if s := (screen{}).render(src, control.Rect{}, false); s != "" {
		t.Errorf("empty screen rendered %q", s)
	}
}

func TestTint(t *testing.T) {
	s := screen{cols: 4, rows: 2, w: 40, h: 40}
	img := image.NewRGBA(image.Rect(0, 0, 4, 4))
	gray := color.RGBA{R: 100, G: 100, B: 100, A: 255}
	for y := 0; y < 4; y++ {
		for x := 0; x < 4; x++ {
			img.SetRGBA(x, y, gray)
		}
	}

	// drawn bottom-right to top-left, covering the top-left quarter
	s.tint(img, control.Rect{X: 20, Y: 20, W: -20, H: -20})

	in := img.RGBAAt(0, 0)
	if in.R <= gray.R || in.G >= gray.G {
		t.Errorf("inside pixel not tinted: %+v", in)
	}
	if out := img.RGBAAt(3, 3); out != gray {
		t.Errorf("outside pixel changed: %+v", out)
	}
}

func TestSliderNudge(t *testing.T) {
	posX := sliders[0]
	if v := posX.nudge(fractal.Real(0), 1); v.Float() != 0.05 {
		t.Errorf("posX step = %v", v.Float())
	}
	if v := posX.nudge(fractal.Real(0.98), 1); v.Float() != 1 {
		t.Errorf("posX should clamp at 1, got %v", v.Float())
	}

	iter := sliders[3]
	if v := iter.nudge(fractal.Int(1000), -1); v.Kind != fractal.KindInt || v.Int() != 900 {
		t.Errorf("iterations step = %v", v)
	}
	if v := iter.nudge(fractal.Int(50), -1); v.Int() != 100 {
		t.Errorf("iterations should clamp at 100, got %d", v.Int())
	}

	if f := iter.fraction(2550); f != 0.5 {
		t.Errorf("fraction = %v", f)
	}
	if bar := iter.bar(5000, 10); strings.Count(bar, "━") != 10 {
		t.Errorf("full bar = %q", bar)
	}
}

func TestCycleMode(t *testing.T) {
	modes := []fractal.PaintModeOption{{Label: "a", Value: 0}, {Label: "b", Value: 3}, {Label: "c", Value: 5}}
	if m := cycleMode(modes, 3, 1); m != 5 {
		t.Errorf("next = %d", m)
	}
	if m := cycleMode(modes, 5, 1); m != 0 {
		t.Errorf("wrap = %d", m)
	}
	if m := cycleMode(modes, 0, -1); m != 5 {
		t.Errorf("prev wrap = %d", m)
	}
	if m := cycleMode(nil, 2, 1); m != 2 {
		t.Errorf("no modes = %d", m)
	}
}

func TestSparkline(t *testing.T) {
	if s := sparkline([]float64{1, 2, 3}, 10); s != "▁▄█" {
		t.Errorf("sparkline = %q", s)
	}
	if s := sparkline(nil, 10); s != "" {
		t.Errorf("empty sparkline = %q", s)
	}
}

func newTestModel(t *testing.T) model {
	t.Helper()
	reg := canvas.NewRegistry()
	surface := canvas.NewSurface(0, 0)
	reg.Register(control.DefaultCanvasID, surface)

	p := fractal.DefaultParams()
	p.Width, p.Height = 64, 64
	p.Iterations, p.Samples, p.Threads = 40, 1, 2

	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	s := control.NewSession(compute.NewBackend(reg), p, control.Options{Logger: log})
	if err := s.Open(); err != nil {
		t.Fatal(err)
	}
	return newModel(Options{Session: s, Surface: surface, Store: storage.New(t.TempDir()), Log: log})
}

func key(s string) tea.KeyMsg {
	switch s {
	case "tab":
		return tea.KeyMsg{Type: tea.KeyTab}
	case "enter":
		return tea.KeyMsg{Type: tea.KeyEnter}
	case "esc":
		return tea.KeyMsg{Type: tea.KeyEsc}
	}
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func send(m model, msgs ...tea.Msg) (model, tea.Cmd) {
	var cmd tea.Cmd
	for _, msg := range msgs {
		var next tea.Model
		next, cmd = m.Update(msg)
		m = next.(model)
	}
	return m, cmd
}

// drain runs cmd and feeds a render completion back into the model.
func drain(m model, cmd tea.Cmd) model {
	if cmd == nil {
		return m
	}
	if msg, ok := cmd().(renderDoneMsg); ok {
		m, _ = send(m, msg)
	}
	return m
}

func TestSliderKeys(t *testing.T) {
	m := newTestModel(t)

	m, _ = send(m, key("l"))
	if got := m.session.Params().PosX; got != 0.05 {
		t.Errorf("posX = %v", got)
	}

	m, _ = send(m, key("tab"), key("tab"), key("tab"), key("h"))
	if got := m.session.Params().Iterations; got != 100 {
		t.Errorf("iterations = %d, want clamp to 100", got)
	}

	m, _ = send(m, key("k"), key("k"), key("k"))
	if m.cursor != 0 {
		t.Errorf("cursor = %d", m.cursor)
	}
	m, _ = send(m, key("k"))
	if m.cursor != len(sliders)-1 {
		t.Errorf("cursor should wrap to paint mode, got %d", m.cursor)
	}
	m, _ = send(m, key("l"))
	if got := m.session.Params().PaintMode; got != compute.HSL1 {
		t.Errorf("paint mode = %d", got)
	}
}

func TestEditField(t *testing.T) {
	m := newTestModel(t)
	m, _ = send(m, key("tab"), key("tab"), key("tab"), key("enter"))
	if !m.editing {
		t.Fatal("expected edit mode")
	}
	m.input.SetValue("1500")
	m, _ = send(m, key("enter"))
	if m.editing {
		t.Error("enter should leave edit mode")
	}
	if got := m.session.Params().Iterations; got != 1500 {
		t.Errorf("iterations = %d, want 1500", got)
	}

	m, _ = send(m, key("enter"))
	m.input.SetValue("lots")
	m, _ = send(m, key("enter"))
	if m.status == "" || m.session.Params().Iterations != 1500 {
		t.Errorf("bad input should leave value and report, status=%q", m.status)
	}

	m, _ = send(m, key("tab"), key("tab"), key("tab"), key("tab"), key("tab"), key("enter"))
	m.input.SetValue("FIRE")
	m, _ = send(m, key("enter"))
	if got := m.session.Params().PaintMode; got != compute.Fire {
		t.Errorf("paint mode = %d", got)
	}
}

func TestRenderAndDrag(t *testing.T) {
	m := newTestModel(t)

	m, cmd := send(m, key("r"))
	if !m.pending {
		t.Fatal("render should be pending")
	}
	m = drain(m, cmd)
	if m.pending || len(m.history) != 1 {
		t.Fatalf("after render: pending=%v history=%v", m.pending, m.history)
	}
	if !strings.Contains(m.View(), "Render time:") {
		t.Error("status line missing render time")
	}

	top := m.screen.top
	m, _ = send(m,
		tea.MouseMsg{X: 2, Y: top + 2, Action: tea.MouseActionPress, Button: tea.MouseButtonLeft},
		tea.MouseMsg{X: 20, Y: top + 12, Action: tea.MouseActionMotion, Button: tea.MouseButtonLeft},
	)
	if !m.session.Snapshot().Dragging {
		t.Fatal("expected drag in progress")
	}
	before := m.session.Params().Size
	m, cmd = send(m, tea.MouseMsg{X: 20, Y: top + 12, Action: tea.MouseActionRelease, Button: tea.MouseButtonLeft})
	if cmd == nil {
		t.Fatal("release should trigger a render")
	}
	m = drain(m, cmd)
	if after := m.session.Params().Size; after >= before {
		t.Errorf("size %v did not shrink from %v", after, before)
	}

	m, cmd = send(m, key("z"))
	if cmd == nil {
		t.Fatal("back should trigger a render")
	}
	m = drain(m, cmd)
	if got := m.session.Params().Size; math.Abs(got-before) > 1e-9 {
		t.Errorf("size after back = %v, want %v", got, before)
	}

	m, cmd = send(m, key("u"))
	drain(m, cmd)
}

func TestControlsLockedWhileRendering(t *testing.T) {
	m := newTestModel(t)
	m, cmd := send(m, key("r"))
	if cmd == nil || !m.pending {
		t.Fatal("render should be pending")
	}

	before := m.session.Params()
	for _, k := range []string{"u", "z", "p", "l"} {
		var c tea.Cmd
		m, c = send(m, key(k))
		if c != nil {
			t.Errorf("%q dispatched a command while rendering", k)
		}
	}
	if got := m.session.Params(); got != before {
		t.Errorf("params changed while rendering: %+v", got)
	}

	m = drain(m, cmd)
	m, cmd = send(m, key("u"))
	if cmd == nil {
		t.Error("zoom out should work once the render is done")
	}
	drain(m, cmd)
}

func TestConfigReloadResizesScreen(t *testing.T) {
	m := newTestModel(t)

	cfg := config.DefaultConfig()
	cfg.SetView(m.session.Params(), m.session.PaintModes())
	cfg.View.Width = 128
	m, _ = send(m, configMsg{cfg: cfg})

	p := m.session.Params()
	if p.Width != 128 || p.Height != 64 {
		t.Fatalf("params %dx%d", p.Width, p.Height)
	}
	if m.screen.w != p.Width || m.screen.h != p.Height {
		t.Fatalf("screen maps to %dx%d, params %dx%d", m.screen.w, m.screen.h, p.Width, p.Height)
	}

	last, ok := m.screen.toCanvas(m.screen.cols-1, m.screen.top+m.screen.rows-1)
	if !ok || last.X < 120 || last.Y < 56 {
		t.Errorf("bottom-right cell maps to %+v", last)
	}
}

func TestBookmarkAndPreset(t *testing.T) {
	m := newTestModel(t)
	m = drain(send(m, key("r")))

	m, _ = send(m, key("b"))
	if !strings.HasPrefix(m.status, "bookmarked ") {
		t.Fatalf("status = %q", m.status)
	}
	views, err := m.store.List()
	if err != nil || len(views) != 1 {
		t.Fatalf("views = %v, %v", views, err)
	}

	m, cmd := send(m, key("p"))
	if cmd == nil || !strings.HasPrefix(m.status, "preset ") {
		t.Fatalf("preset status = %q", m.status)
	}
	drain(m, cmd)
}

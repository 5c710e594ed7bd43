package tui

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/san-kum/mandelzoom/internal/canvas"
	"github.com/san-kum/mandelzoom/internal/config"
	"github.com/san-kum/mandelzoom/internal/control"
	"github.com/san-kum/mandelzoom/internal/fractal"
	"github.com/san-kum/mandelzoom/internal/storage"
)

var (
	cyan    = lipgloss.NewStyle().Foreground(lipgloss.Color("86"))
	white   = lipgloss.NewStyle().Foreground(lipgloss.Color("255"))
	dim     = lipgloss.NewStyle().Foreground(lipgloss.Color("242"))
	dimmer  = lipgloss.NewStyle().Foreground(lipgloss.Color("238"))
	green   = lipgloss.NewStyle().Foreground(lipgloss.Color("82"))
	yellow  = lipgloss.NewStyle().Foreground(lipgloss.Color("220"))
	red     = lipgloss.NewStyle().Foreground(lipgloss.Color("196"))
	magenta = lipgloss.NewStyle().Foreground(lipgloss.Color("213"))
)

const (
	panelWidth = 44
	barWidth   = 16
	historyLen = 24
)

// Options wire the terminal UI to a session.
type Options struct {
	Session *control.Session
	Surface *canvas.Surface
	Store   *storage.Store
	Log     *slog.Logger

	// ConfigPath, when set, is watched and reapplied on change.
	ConfigPath string
}

type renderDoneMsg struct{ err error }

type configMsg struct {
	cfg *config.Config
	err error
}

type model struct {
	session *control.Session
	surface *canvas.Surface
	store   *storage.Store
	log     *slog.Logger

	cursor  int
	editing bool
	input   textinput.Model
	spinner spinner.Model

	pending bool
	history []float64
	preset  int
	status  string

	width, height int
	screen        screen

	configs chan configMsg
	cancel  context.CancelFunc
}

func newModel(opts Options) model {
	in := textinput.New()
	in.Prompt = ""
	in.CharLimit = 24
	in.Width = 12

	spin := spinner.New()
	spin.Spinner = spinner.MiniDot
	spin.Style = yellow

	log := opts.Log
	if log == nil {
		log = slog.Default()
	}

	m := model{
		session: opts.Session,
		surface: opts.Surface,
		store:   opts.Store,
		log:     log,
		input:   in,
		spinner: spin,
		preset:  -1,
		width:   120,
		height:  40,
	}
	m.layout()
	return m
}

func (m model) Init() tea.Cmd {
	cmds := []tea.Cmd{m.spinner.Tick}
	if m.pending {
		cmds = append(cmds, renderCmd(m.session))
	}
	if m.configs != nil {
		cmds = append(cmds, waitConfig(m.configs))
	}
	return tea.Batch(cmds...)
}

// render dispatches a render off the update loop. The session drops it if
// one is already running.
func (m *model) render() tea.Cmd {
	m.pending = true
	return renderCmd(m.session)
}

func renderCmd(s *control.Session) tea.Cmd {
	return func() tea.Msg {
		return renderDoneMsg{err: s.Render(context.Background())}
	}
}

func waitConfig(ch <-chan configMsg) tea.Cmd {
	return func() tea.Msg {
		msg, ok := <-ch
		if !ok {
			return nil
		}
		return msg
	}
}

func (m *model) layout() {
	p := m.session.Params()
	cols, rows := fit(p.Width, p.Height, m.width-panelWidth-2, m.height-4)
	m.screen = screen{left: 0, top: 2, cols: cols, rows: rows, w: p.Width, h: p.Height}
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		m.layout()
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)

	case tea.MouseMsg:
		return m.handleMouse(msg)

	case renderDoneMsg:
		return m.renderDone(msg.err), nil

	case configMsg:
		cmd := m.applyConfig(msg)
		return m, tea.Batch(cmd, waitConfig(m.configs))

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	}
	return m, nil
}

func (m model) renderDone(err error) model {
	if errors.Is(err, control.ErrRenderInFlight) {
		return m
	}
	m.pending = false
	if err != nil {
		m.status = ""
		return m
	}
	m.history = append(m.history, m.session.Snapshot().RenderTime)
	if len(m.history) > historyLen {
		m.history = m.history[len(m.history)-historyLen:]
	}
	return m
}

func (m model) busy() bool {
	return m.pending || m.session.Snapshot().Rendering
}

func (m model) handleKey(msg tea.KeyMsg) (model, tea.Cmd) {
	if m.editing {
		return m.editKey(msg)
	}

	switch msg.String() {
	case "q", "ctrl+c":
		if m.cancel != nil {
			m.cancel()
		}
		return m, tea.Quit
	case "tab", "down", "j":
		m.cursor = (m.cursor + 1) % len(sliders)
	case "shift+tab", "up", "k":
		m.cursor = (m.cursor - 1 + len(sliders)) % len(sliders)
	case "left", "h":
		return m.step(-1)
	case "right", "l":
		return m.step(1)
	case "enter":
		if m.busy() {
			return m, nil
		}
		v, _ := m.session.Params().Get(sliders[m.cursor].field)
		m.input.SetValue(v.String())
		m.input.CursorEnd()
		m.editing = true
		return m, m.input.Focus()
	case "r":
		return m, m.render()
	case "s":
		m.save()
	case "u":
		if !m.busy() && m.session.Zoom(control.ZoomOutRect(m.session.Params(), 2)) {
			return m, m.render()
		}
	case "z":
		if !m.busy() && m.session.Back() {
			return m, m.render()
		}
	case "b":
		m.bookmark()
	case "p":
		if m.busy() {
			return m, nil
		}
		return m.nextPreset()
	}
	return m, nil
}

func (m model) editKey(msg tea.KeyMsg) (model, tea.Cmd) {
	switch msg.String() {
	case "enter":
		m.editing = false
		m.input.Blur()
		f := sliders[m.cursor].field
		v, err := m.coerce(f, m.input.Value())
		if err != nil {
			m.status = err.Error()
			return m, nil
		}
		if err := m.session.SetParameter(f, v); err != nil {
			m.status = err.Error()
			return m, nil
		}
		m.status = ""
		m.layout()
		return m, nil
	case "esc":
		m.editing = false
		m.input.Blur()
		return m, nil
	}
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

// coerce also accepts paint modes by label.
func (m model) coerce(f fractal.Field, raw string) (fractal.Value, error) {
	v, err := fractal.Coerce(f, raw)
	if err == nil || f != fractal.FieldPaintMode {
		return v, err
	}
	mode, lerr := fractal.LookupPaintMode(m.session.PaintModes(), strings.TrimSpace(raw))
	if lerr != nil {
		return v, err
	}
	return fractal.Enum(int(mode)), nil
}

func (m model) step(dir int) (model, tea.Cmd) {
	if m.busy() {
		return m, nil
	}
	s := sliders[m.cursor]
	cur, _ := m.session.Params().Get(s.field)

	var next fractal.Value
	if s.field == fractal.FieldPaintMode {
		next = fractal.Enum(int(cycleMode(m.session.PaintModes(), fractal.PaintMode(cur.Int()), dir)))
	} else {
		next = s.nudge(cur, dir)
	}
	if err := m.session.SetParameter(s.field, next); err != nil {
		m.status = err.Error()
	}
	m.layout()
	return m, nil
}

func (m *model) save() {
	if err := m.session.SaveImage(); err != nil {
		m.status = ""
		return
	}
	m.status = "saved " + m.session.ExportPath()
}

func (m *model) bookmark() {
	if m.store == nil {
		return
	}
	snap := m.session.Snapshot()
	name := "view " + time.Now().Format("15:04:05")
	id, err := m.store.Save(name, snap.Params, snap.RenderTime)
	if err != nil {
		m.log.Error("bookmark failed", "err", err)
		m.status = "bookmark failed: " + err.Error()
		return
	}
	if snap.RenderTime > 0 {
		m.session.SaveImageTo(m.store.FramePath(id))
	}
	m.status = "bookmarked " + id
}

func (m model) nextPreset() (model, tea.Cmd) {
	names := config.ListPresets()
	m.preset = (m.preset + 1) % len(names)
	name := names[m.preset]
	if _, err := m.session.Apply(config.GetPreset(name).Apply(m.session.Params())); err != nil {
		m.status = err.Error()
		return m, nil
	}
	m.status = "preset " + name
	return m, m.render()
}

func (m *model) applyConfig(msg configMsg) tea.Cmd {
	if msg.err != nil {
		m.log.Warn("config reload failed", "err", msg.err)
		return nil
	}
	p, err := msg.cfg.Params(m.session.PaintModes())
	if err != nil {
		m.log.Warn("config reload failed", "err", err)
		return nil
	}
	changed, err := m.session.Apply(p)
	if err != nil || len(changed) == 0 {
		return nil
	}
	m.layout()
	m.log.Info("config reloaded", "changed", len(changed))
	return m.render()
}

func (m model) handleMouse(msg tea.MouseMsg) (model, tea.Cmd) {
	switch msg.Action {
	case tea.MouseActionPress:
		if msg.Button != tea.MouseButtonLeft {
			return m, nil
		}
		if p, ok := m.screen.toCanvas(msg.X, msg.Y); ok && !m.busy() {
			m.session.PointerDown(p)
		}
	case tea.MouseActionMotion:
		m.session.PointerMove(m.screen.clampCanvas(msg.X, msg.Y))
	case tea.MouseActionRelease:
		m.session.PointerMove(m.screen.clampCanvas(msg.X, msg.Y))
		if m.session.PointerRelease() {
			return m, m.render()
		}
	}
	return m, nil
}

func (m model) View() string {
	snap := m.session.Snapshot()

	var b strings.Builder
	b.WriteString(" " + cyan.Bold(true).Render("MANDELZOOM") + "  " + dim.Render(fmt.Sprintf("%.6g%+.6gi  size %.4g", snap.Params.PosX, snap.Params.PosY, snap.Params.Size)) + "\n\n")

	var frame string
	if m.surface != nil {
		frame = m.screen.render(m.surface.Snapshot(), snap.Drag, snap.Dragging)
	}
	b.WriteString(lipgloss.JoinHorizontal(lipgloss.Top, frame, "  ", m.viewPanel(snap)))
	b.WriteString("\n" + m.viewStatus(snap) + "\n")
	b.WriteString(dim.Render(" r render  s save  u zoom out  z back  b bookmark  p preset  tab select  h/l adjust  enter edit  q quit"))
	return b.String()
}

func (m model) viewPanel(snap control.Snapshot) string {
	modes := m.session.PaintModes()
	busy := m.busy()

	var b strings.Builder
	for i, s := range sliders {
		v, _ := snap.Params.Get(s.field)
		val := formatValue(s.field, v, modes)

		cursor := "  "
		label := dim.Render(fmt.Sprintf("%-11s", s.label))
		if i == m.cursor {
			cursor = cyan.Bold(true).Render("▸ ")
			label = white.Bold(true).Render(fmt.Sprintf("%-11s", s.label))
		}

		var bar string
		switch {
		case s.field == fractal.FieldPaintMode:
			bar = strings.Repeat(" ", barWidth)
		case busy:
			bar = dimmer.Render(s.bar(v.Float(), barWidth))
		default:
			bar = cyan.Render(s.bar(v.Float(), barWidth))
		}

		switch {
		case m.editing && i == m.cursor:
			val = m.input.View()
		case busy:
			val = dimmer.Render(val)
		case i == m.cursor:
			val = magenta.Bold(true).Render(val)
		default:
			val = white.Render(val)
		}
		b.WriteString(cursor + label + " " + bar + " " + val + "\n")
	}

	if len(m.history) > 1 {
		b.WriteString("\n  " + dim.Render("history ") + cyan.Render(sparkline(m.history, historyLen)) + "\n")
	}
	return b.String()
}

func (m model) viewStatus(snap control.Snapshot) string {
	var line string
	if m.busy() {
		line = " " + m.spinner.View() + " " + yellow.Render("Rendering...")
	} else {
		line = " " + green.Render("●") + " " + white.Render(fmt.Sprintf("Render time: %.3f seconds", snap.RenderTime))
	}
	if snap.LastErr != nil {
		line += "  " + red.Render(snap.LastErr.Error())
	} else if m.status != "" {
		line += "  " + dim.Render(m.status)
	}
	return line
}

func sparkline(data []float64, width int) string {
	if len(data) == 0 {
		return ""
	}
	chars := []rune{'▁', '▂', '▃', '▄', '▅', '▆', '▇', '█'}
	minVal, maxVal := data[0], data[0]
	for _, v := range data {
		minVal = min(minVal, v)
		maxVal = max(maxVal, v)
	}
	rang := maxVal - minVal
	if rang == 0 {
		rang = 1
	}
	step := len(data) / width
	if step < 1 {
		step = 1
	}
	var sb strings.Builder
	for i := 0; i < width && i*step < len(data); i++ {
		idx := int((data[i*step] - minVal) / rang * 7)
		idx = max(0, min(7, idx))
		sb.WriteRune(chars[idx])
	}
	return sb.String()
}

// Run starts the terminal UI and renders the initial view. It returns when
// the user quits.
func Run(opts Options) error {
	m := newModel(opts)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	m.cancel = cancel

	if opts.ConfigPath != "" {
		m.configs = make(chan configMsg, 1)
		go func() {
			err := config.Watch(ctx, opts.ConfigPath, m.log, func(cfg *config.Config, err error) {
				select {
				case m.configs <- configMsg{cfg: cfg, err: err}:
				case <-ctx.Done():
				}
			})
			if err != nil {
				m.log.Warn("config watch stopped", "err", err)
			}
		}()
	}

	m.pending = true
	_, err := tea.NewProgram(m, tea.WithAltScreen(), tea.WithMouseCellMotion()).Run()
	return err
}

package ui

import (
	"fmt"
	"runtime/debug"
	"strings"
	"sync"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"

	"headerzoom/internal/render"
	"headerzoom/internal/telemetry"
)

const (
	// labelGutter keeps room right of the bands for the level label.
	labelGutter = 14
	// unitsPerColumn converts terminal columns to layout units; a minimum
	// width node spans five columns.
	unitsPerColumn = 10
)

type animateMsg time.Time

type navKeyMap struct {
	Tab      key.Binding
	StepUp   key.Binding
	StepDown key.Binding
	ZoomIn   key.Binding
	ZoomOut  key.Binding
	Help     key.Binding
	Quit     key.Binding
}

func (k navKeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Tab, k.StepUp, k.StepDown, k.ZoomIn, k.ZoomOut, k.Help, k.Quit}
}

func (k navKeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{{k.Tab, k.StepUp, k.StepDown}, {k.ZoomIn, k.ZoomOut}, {k.Help, k.Quit}}
}

type Options struct {
	Terminal     *render.Terminal
	Controller   Controller
	Title        string
	StyleVariant string
	Logger       *telemetry.Logger
}

// Root is the bubbletea model of the header navigator.
type Root struct {
	term   *render.Terminal
	ctrl   Controller
	theme  render.Theme
	title  string
	logger *telemetry.Logger

	mu      sync.Mutex
	program *tea.Program
	running bool

	layout LayoutMode
	cols   int
	rows   int

	help    help.Model
	keymap  navKeyMap
	status  string
	drag    bool
	quitted bool
}

func New(opts Options) *Root {
	if opts.Logger == nil {
		opts.Logger = telemetry.Nop()
	}
	h := help.New()
	r := &Root{
		term:   opts.Terminal,
		ctrl:   opts.Controller,
		theme:  render.ThemeForVariant(opts.StyleVariant),
		title:  opts.Title,
		logger: opts.Logger,
		layout: LayoutWide,
		cols:   120,
		rows:   30,
		help:   h,
	}
	r.keymap = navKeyMap{
		Tab:      key.NewBinding(key.WithKeys("1", "2", "3", "4", "5", "6", "7", "8", "9"), key.WithHelp("1-9", "group")),
		StepUp:   key.NewBinding(key.WithKeys("k", "up"), key.WithHelp("k/↑", "step up")),
		StepDown: key.NewBinding(key.WithKeys("j", "down"), key.WithHelp("j/↓", "step down")),
		ZoomIn:   key.NewBinding(key.WithKeys("+", "="), key.WithHelp("+", "zoom in")),
		ZoomOut:  key.NewBinding(key.WithKeys("-", "_"), key.WithHelp("-", "zoom out")),
		Help:     key.NewBinding(key.WithKeys("?"), key.WithHelp("?", "help")),
		Quit:     key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
	}
	return r
}

func (r *Root) Init() tea.Cmd {
	return r.animateIfNeeded()
}

func (r *Root) Update(msg tea.Msg) (model tea.Model, cmd tea.Cmd) {
	defer func() {
		if rec := recover(); rec != nil {
			r.onModelPanic("update", rec, msg)
			model = r
			cmd = nil
		}
	}()

	switch msg := msg.(type) {
	case applyMsg:
		if msg.fn != nil {
			msg.fn(r)
		}
		return r, nil
	case tea.WindowSizeMsg:
		r.cols = msg.Width
		r.rows = msg.Height
		r.layout = DetermineLayoutMode(r.cols, r.rows)
		r.help.Width = msg.Width
		if r.layout == LayoutTooSmall {
			return r, nil
		}
		cols := max(1, msg.Width-labelGutter)
		if r.term != nil {
			r.term.SetColumns(cols)
		}
		r.dispatch(func(c Controller) { c.OnResize(float64(cols * unitsPerColumn)) })
		return r, r.animateIfNeeded()
	case animateMsg:
		if r.term != nil && r.term.Tick() {
			return r, animateTickCmd()
		}
		return r, nil
	case tea.MouseMsg:
		return r.handleMouse(msg)
	case tea.KeyMsg:
		return r.handleKey(msg)
	}
	return r, nil
}

func (r *Root) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, r.keymap.Quit):
		r.quitted = true
		if r.ctrl != nil {
			r.ctrl.OnQuit()
		}
		return r, tea.Quit
	case key.Matches(msg, r.keymap.Help):
		r.help.ShowAll = !r.help.ShowAll
		return r, nil
	case key.Matches(msg, r.keymap.Tab):
		n := int(msg.String()[0] - '1')
		r.dispatch(func(c Controller) { c.OnSelectTab(n) })
	case key.Matches(msg, r.keymap.StepUp):
		r.dispatch(Controller.OnStepUp)
	case key.Matches(msg, r.keymap.StepDown):
		r.dispatch(Controller.OnStepDown)
	case key.Matches(msg, r.keymap.ZoomIn):
		r.dispatch(Controller.OnZoomIn)
	case key.Matches(msg, r.keymap.ZoomOut):
		r.dispatch(Controller.OnZoomOut)
	default:
		return r, nil
	}
	return r, r.animateIfNeeded()
}

// handleMouse maps clicks on a band to the node's click zone: expand
// toggles, select sorts, and a press on the resize edge starts a drag.
func (r *Root) handleMouse(msg tea.MouseMsg) (tea.Model, tea.Cmd) {
	if r.term == nil {
		return r, nil
	}
	scale := r.term.Scale()
	if scale <= 0 {
		return r, nil
	}
	x := float64(msg.X) / scale
	switch msg.Action {
	case tea.MouseActionMotion:
		if r.drag {
			r.dispatch(func(c Controller) { c.OnDragMove(x) })
		}
		return r, nil
	case tea.MouseActionRelease:
		if r.drag {
			r.drag = false
			r.dispatch(Controller.OnDragEnd)
		}
		return r, nil
	}
	if msg.Button != tea.MouseButtonLeft {
		return r, nil
	}
	id, zone, ok := r.term.HitTest(msg.X, msg.Y-r.bandOffset())
	if !ok {
		return r, nil
	}
	switch zone {
	case "expand":
		r.dispatch(func(c Controller) { c.OnToggle(id) })
	case "select":
		r.dispatch(func(c Controller) { c.OnSort(id) })
	case "resize":
		r.drag = true
		r.dispatch(func(c Controller) { c.OnDragStart(id, x) })
	}
	return r, r.animateIfNeeded()
}

// bandOffset is the screen row of the first band: the title line plus
// the tab strip when there is one.
func (r *Root) bandOffset() int {
	offset := 1
	if len(r.term.Frame().Tabs) > 0 {
		offset++
	}
	return offset
}

func (r *Root) dispatch(fn func(Controller)) {
	if fn == nil || r.ctrl == nil {
		return
	}
	fn(r.ctrl)
}

func (r *Root) animateIfNeeded() tea.Cmd {
	if r.term == nil || !r.term.Animating() {
		return nil
	}
	return animateTickCmd()
}

func (r *Root) View() (view string) {
	defer func() {
		if rec := recover(); rec != nil {
			r.onModelPanic("view", rec, nil)
			view = r.theme.Fallback.Render("UI recovered from a rendering panic. Check logs.")
		}
	}()
	if r.layout == LayoutTooSmall {
		return r.theme.Fallback.Render(fmt.Sprintf("terminal too small (%dx%d)", r.cols, r.rows))
	}
	var b strings.Builder
	b.WriteString(r.theme.Header.Width(max(1, r.cols)).Render(r.title))
	b.WriteByte('\n')
	if r.term != nil {
		b.WriteString(r.term.View())
		b.WriteByte('\n')
	}
	if r.status != "" {
		b.WriteString(r.theme.Muted.Render(r.status))
		b.WriteByte('\n')
	}
	if r.layout == LayoutWide || r.help.ShowAll {
		b.WriteString(r.help.View(r.keymap))
	}
	return b.String()
}

// SetStatus shows a one-line message under the header.
func (r *Root) SetStatus(msg string) {
	r.apply(func(m *Root) { m.status = msg })
}

func (r *Root) apply(fn func(*Root)) {
	r.mu.Lock()
	p := r.program
	running := r.running
	if !running || p == nil {
		fn(r)
		r.mu.Unlock()
		return
	}
	r.mu.Unlock()
	// Send blocks until the loop reads it, and callers may be inside Update.
	go p.Send(applyMsg{fn: fn})
}

type applyMsg struct {
	fn func(*Root)
}

func (r *Root) Run() error {
	r.mu.Lock()
	if r.running {
		r.mu.Unlock()
		return nil
	}
	p := tea.NewProgram(r, tea.WithAltScreen(), tea.WithMouseCellMotion())
	r.program = p
	r.running = true
	r.mu.Unlock()

	_, err := p.Run()

	r.mu.Lock()
	r.program = nil
	r.running = false
	r.mu.Unlock()
	return err
}

func (r *Root) Stop() {
	r.mu.Lock()
	p := r.program
	r.mu.Unlock()
	if p != nil {
		p.Quit()
	}
}

func animateTickCmd() tea.Cmd {
	return tea.Tick(time.Second/60, func(t time.Time) tea.Msg { return animateMsg(t) })
}

func (r *Root) onModelPanic(where string, recovered any, msg tea.Msg) {
	r.status = "Recovered UI panic"
	msgType := ""
	if msg != nil {
		msgType = fmt.Sprintf("%T", msg)
	}
	r.logger.Error("ui.panic_recovered", map[string]any{
		"where":       where,
		"panic":       fmt.Sprintf("%v", recovered),
		"messageType": msgType,
		"cols":        r.cols,
		"rows":        r.rows,
		"stack":       string(debug.Stack()),
	})
}

var _ tea.Model = (*Root)(nil)

package render

import (
	"errors"
	"fmt"
	"math"
	"sort"
	"strings"
	"sync"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"

	"headerzoom/internal/disclosure"
	"headerzoom/internal/sorting"
)

var errNoWidth = errors.New("frame has nodes but no usable total width")

type Options struct {
	Theme       Theme
	MotionLevel string
	Columns     int
	ASCII       bool
}

// Terminal paints engine frames as one text row per visible level. It is
// written to by the engine and read by the UI loop, so every method locks.
type Terminal struct {
	mu       sync.Mutex
	theme    Theme
	anim     *Animator
	cols     int
	ascii    bool
	frame    disclosure.Frame
	fallback string
	frames   int
}

func NewTerminal(opts Options) *Terminal {
	if opts.Columns <= 0 {
		opts.Columns = 80
	}
	return &Terminal{
		theme: opts.Theme,
		anim:  NewAnimator(opts.MotionLevel),
		cols:  opts.Columns,
		ascii: opts.ASCII,
	}
}

var _ disclosure.Renderer = (*Terminal)(nil)

func (t *Terminal) Render(f disclosure.Frame) error {
	if len(f.Nodes) > 0 && (f.TotalWidth <= 0 || math.IsNaN(f.TotalWidth) || math.IsInf(f.TotalWidth, 0)) {
		return errNoWidth
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	t.frame = f
	t.fallback = ""
	t.frames++
	return nil
}

func (t *Terminal) Transition(old, new []int) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.anim.Start(old, new)
}

func (t *Terminal) SettleTransition() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.anim.Settle()
}

func (t *Terminal) RenderFallback(reason string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if reason == "" {
		reason = "header unavailable"
	}
	t.fallback = reason
}

// Tick advances the transition by one frame and reports whether another
// tick is needed.
func (t *Terminal) Tick() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.anim.Step()
}

func (t *Terminal) Animating() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.anim.Active()
}

func (t *Terminal) SetColumns(cols int) {
	if cols <= 0 {
		return
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	t.cols = cols
}

func (t *Terminal) Frame() disclosure.Frame {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.frame
}

func (t *Terminal) Fallback() string {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.fallback
}

// Scale converts layout units to terminal columns for the current frame.
func (t *Terminal) Scale() float64 {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.scaleLocked()
}

func (t *Terminal) scaleLocked() float64 {
	if t.frame.TotalWidth <= 0 {
		return 0
	}
	return float64(t.cols) / t.frame.TotalWidth
}

// View draws the tab strip, one band per visible level and the zoom line.
func (t *Terminal) View() string {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.fallback != "" {
		return t.theme.Fallback.Width(t.cols).Render(truncate("header unavailable: "+t.fallback, t.cols-2))
	}
	var b strings.Builder
	if tabs := t.tabsLocked(); tabs != "" {
		b.WriteString(tabs)
		b.WriteByte('\n')
	}
	for _, level := range t.frame.VisibleLevels {
		b.WriteString(t.bandLocked(level))
		b.WriteByte('\n')
	}
	b.WriteString(t.zoomLocked())
	return b.String()
}

func (t *Terminal) tabsLocked() string {
	if len(t.frame.Tabs) == 0 {
		return ""
	}
	parts := make([]string, 0, len(t.frame.Tabs))
	for i, tab := range t.frame.Tabs {
		label := fmt.Sprintf("%d %s", i+1, tab.Label)
		if tab.IsActive {
			parts = append(parts, t.theme.TabActive.Render(label))
			continue
		}
		parts = append(parts, t.theme.Tab.Render(label))
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, parts...)
}

func (t *Terminal) bandLocked(level int) string {
	nodes := t.frame.NodesAt(level)
	sort.SliceStable(nodes, func(i, j int) bool { return nodes[i].X < nodes[j].X })
	scale := t.scaleLocked()
	entering := t.anim.Presence(level) < 0.5

	var b strings.Builder
	cursor := 0
	for _, n := range nodes {
		start := int(math.Round(n.X * scale))
		end := min(int(math.Round((n.X+n.Width)*scale)), t.cols)
		if end-start <= 0 {
			continue
		}
		if start > cursor {
			b.WriteString(strings.Repeat(" ", start-cursor))
		}
		style := t.nodeStyle(n, entering)
		w := end - start
		b.WriteString(style.Width(w).MaxWidth(w).Render(truncate(t.nodeLabel(n), w)))
		cursor = end
	}
	label := ""
	if level < len(t.frame.LevelLabels) {
		label = t.frame.LevelLabels[level]
	}
	return b.String() + t.theme.Muted.Render(" "+label)
}

func (t *Terminal) nodeStyle(n disclosure.FrameNode, entering bool) lipgloss.Style {
	switch {
	case entering:
		return t.theme.Entering
	case t.frame.Sort.Active() && t.frame.Sort.NodeID == n.ID:
		return t.theme.Sorted
	case !n.IsLeaf && !n.IsExpanded:
		return t.theme.Collapsed
	case n.IsLeaf:
		return t.theme.Leaf
	default:
		return t.theme.Node
	}
}

func (t *Terminal) nodeLabel(n disclosure.FrameNode) string {
	open, closed, up, down := "▾", "▸", "↑", "↓"
	if t.ascii {
		open, closed, up, down = "-", "+", "^", "v"
	}
	label := n.Label
	if !n.IsLeaf {
		if n.IsExpanded {
			label = open + label
		} else {
			label = closed + label
		}
	}
	if t.frame.Sort.NodeID == n.ID {
		switch t.frame.Sort.Direction {
		case sorting.Asc:
			label += up
		case sorting.Desc:
			label += down
		}
	}
	return label
}

func (t *Terminal) zoomLocked() string {
	z := t.frame.Zoom
	if !t.frame.Disclosure {
		return t.theme.Status.Render(fmt.Sprintf("levels %s", levelList(t.frame.VisibleLevels)))
	}
	return t.theme.Status.Render(fmt.Sprintf("levels %s  zoom %d/%d  %s%s%s%s",
		levelList(t.frame.VisibleLevels), z.CurrentLevel, z.MaxLevel,
		flag(z.CanStepUp, "[k]up "), flag(z.CanStepDown, "[j]down "),
		flag(z.CanZoomIn, "[+]in "), flag(z.CanZoomOut, "[-]out"),
	))
}

func flag(ok bool, s string) string {
	if ok {
		return s
	}
	return ""
}

func levelList(levels []int) string {
	parts := make([]string, len(levels))
	for i, l := range levels {
		parts[i] = fmt.Sprint(l)
	}
	return "[" + strings.Join(parts, ",") + "]"
}

// truncate cuts s to at most w cells, marking the cut with "…". Escape
// sequences in s are preserved.
func truncate(s string, w int) string {
	if w <= 0 {
		return ""
	}
	return ansi.Truncate(s, w, "…")
}

// HitTest returns the id of the frame node under terminal cell (col, row),
// where row 0 is the first band. It reports which zone was hit.
func (t *Terminal) HitTest(col, row int) (id string, zone string, ok bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if row < 0 || row >= len(t.frame.VisibleLevels) {
		return "", "", false
	}
	scale := t.scaleLocked()
	if scale <= 0 {
		return "", "", false
	}
	x := (float64(col) + 0.5) / scale
	level := t.frame.VisibleLevels[row]
	for _, n := range t.frame.NodesAt(level) {
		y := n.ClickZones.Select.Y
		switch {
		case n.ClickZones.Expand.Contains(x, y):
			return n.ID, "expand", true
		case n.ClickZones.Resize.Contains(x, y):
			return n.ID, "resize", true
		case n.ClickZones.Select.Contains(x, y):
			return n.ID, "select", true
		}
	}
	return "", "", false
}

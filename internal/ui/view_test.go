package ui

import (
	"context"
	"path/filepath"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"headerzoom/internal/disclosure"
	"headerzoom/internal/hierarchy"
	"headerzoom/internal/render"
	"headerzoom/internal/schedule"
)

type navFixture struct {
	root   *Root
	engine *disclosure.Engine
	term   *render.Terminal
}

func newNavFixture(t *testing.T) *navFixture {
	t.Helper()
	term := render.NewTerminal(render.Options{Theme: render.DefaultTheme(), MotionLevel: "off", Columns: 106, ASCII: true})
	settings := disclosure.DefaultSettings()
	settings.TotalWidth = 1600
	eng := disclosure.NewEngine(disclosure.Options{
		Settings:  settings,
		Renderer:  term,
		Scheduler: schedule.NewManual(time.Date(2026, time.June, 1, 8, 0, 0, 0, time.UTC)),
	})
	t.Cleanup(eng.Close)
	_, h, err := hierarchy.NewLoader().LoadFile(context.Background(), filepath.Join("..", "..", "testdata", "hierarchies", "time.yaml"))
	require.NoError(t, err)
	eng.UpdateHierarchy(h)

	root := New(Options{Terminal: term, Controller: EngineController{Engine: eng}, Title: "time"})
	root.Update(tea.WindowSizeMsg{Width: 120, Height: 30})
	return &navFixture{root: root, engine: eng, term: term}
}

func runes(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func TestKeysStepAndZoom(t *testing.T) {
	f := newNavFixture(t)

	f.root.Update(runes("j"))
	assert.Equal(t, []int{1, 2, 3}, f.engine.ProgressiveState().VisibleLevels)

	f.root.Update(tea.KeyMsg{Type: tea.KeyUp})
	assert.Equal(t, []int{0, 1, 2}, f.engine.ProgressiveState().VisibleLevels)

	f.root.Update(runes("-"))
	assert.Equal(t, 1, f.engine.ProgressiveState().ZoomLevel)
	f.root.Update(runes("+"))
	assert.Equal(t, 2, f.engine.ProgressiveState().ZoomLevel)
}

func TestNumberKeysSelectTabs(t *testing.T) {
	f := newNavFixture(t)

	f.root.Update(runes("2"))
	st := f.engine.ProgressiveState()
	assert.Equal(t, 1, st.CurrentTab)
	assert.Equal(t, []int{3, 4}, st.VisibleLevels)

	f.root.Update(runes("9"))
	assert.Equal(t, 1, f.engine.ProgressiveState().CurrentTab, "missing tab is ignored")
}

func TestQuitReturnsQuitCmd(t *testing.T) {
	f := newNavFixture(t)
	quit := false
	f.root.ctrl = EngineController{Engine: f.engine, Quit: func() { quit = true }}

	_, cmd := f.root.Update(runes("q"))
	require.NotNil(t, cmd)
	assert.IsType(t, tea.QuitMsg{}, cmd())
	assert.True(t, quit)
}

func TestWindowSizeSetsColumnsAndLayout(t *testing.T) {
	f := newNavFixture(t)

	f.root.Update(tea.WindowSizeMsg{Width: 30, Height: 5})
	assert.Contains(t, f.root.View(), "terminal too small")

	f.root.Update(tea.WindowSizeMsg{Width: 80, Height: 24})
	assert.InDelta(t, 1.0/unitsPerColumn, f.term.Scale(), 1e-9)
	assert.Equal(t, float64((80-labelGutter)*unitsPerColumn), f.engine.Frame().TotalWidth)
	assert.NotContains(t, f.root.View(), "terminal too small")
}

type resizeRecorder struct {
	EngineController
	widths []float64
}

func (r *resizeRecorder) OnResize(w float64) { r.widths = append(r.widths, w) }

func TestWindowSizeResizesLayout(t *testing.T) {
	f := newNavFixture(t)
	rec := &resizeRecorder{EngineController: EngineController{Engine: f.engine}}
	f.root.ctrl = rec

	f.root.Update(tea.WindowSizeMsg{Width: 100, Height: 30})
	f.root.Update(tea.WindowSizeMsg{Width: 20, Height: 30})
	assert.Equal(t, []float64{float64((100 - labelGutter) * unitsPerColumn)}, rec.widths, "too small a window is not laid out")
}

func TestViewShowsTitleBandsAndHelp(t *testing.T) {
	f := newNavFixture(t)
	view := f.root.View()

	assert.Contains(t, view, "time")
	assert.Contains(t, view, "Time 1")
	assert.Contains(t, view, "step down")
	lines := strings.Split(view, "\n")
	assert.GreaterOrEqual(t, len(lines), 6)
}

func TestMouseClickOnSelectZoneSorts(t *testing.T) {
	f := newNavFixture(t)

	// Row 3 is the second band (title, tabs, level 0, level 1). The
	// middle of the first quarter node is well inside its select zone.
	col := int(f.term.Scale() * 200)
	f.root.Update(tea.MouseMsg{X: col, Y: 3, Action: tea.MouseActionPress, Button: tea.MouseButtonLeft})

	sort := f.engine.SortState()
	assert.True(t, sort.Active())
	assert.Equal(t, "q-1-1", sort.NodeID)
}

func TestMouseOutsideBandsIsIgnored(t *testing.T) {
	f := newNavFixture(t)

	f.root.Update(tea.MouseMsg{X: 3, Y: 0, Action: tea.MouseActionPress, Button: tea.MouseButtonLeft})
	f.root.Update(tea.MouseMsg{X: 3, Y: 40, Action: tea.MouseActionPress, Button: tea.MouseButtonLeft})
	assert.False(t, f.engine.SortState().Active())
}

func TestSetStatusBeforeRun(t *testing.T) {
	f := newNavFixture(t)
	f.root.SetStatus("restored dataset")
	assert.Contains(t, f.root.View(), "restored dataset")
}

type panickyController struct{ EngineController }

func (panickyController) OnStepDown() { panic("controller exploded") }

func TestUpdateRecoversFromPanics(t *testing.T) {
	f := newNavFixture(t)
	f.root.ctrl = panickyController{EngineController{Engine: f.engine}}

	model, cmd := f.root.Update(runes("j"))
	assert.Same(t, f.root, model)
	assert.Nil(t, cmd)
	assert.Contains(t, f.root.View(), "Recovered UI panic")
}

func TestDetermineLayoutMode(t *testing.T) {
	assert.Equal(t, LayoutTooSmall, DetermineLayoutMode(39, 20))
	assert.Equal(t, LayoutTooSmall, DetermineLayoutMode(80, 7))
	assert.Equal(t, LayoutCompact, DetermineLayoutMode(80, 24))
	assert.Equal(t, LayoutWide, DetermineLayoutMode(120, 24))
}

package ui

import "headerzoom/internal/disclosure"

// Controller receives navigation intents from the terminal UI.
type Controller interface {
	OnSelectTab(index int)
	OnStepUp()
	OnStepDown()
	OnZoomIn()
	OnZoomOut()
	OnToggle(nodeID string)
	OnSort(nodeID string)
	OnDragStart(nodeID string, x float64)
	OnDragMove(x float64)
	OnDragEnd()
	OnResize(width float64)
	OnQuit()
}

// EngineController drives a disclosure.Engine directly; the engine is
// safe for concurrent use and renders synchronously.
type EngineController struct {
	Engine *disclosure.Engine
	Quit   func()
}

func (c EngineController) OnSelectTab(i int) {
	c.Engine.SelectLevelTab(i)
}

func (c EngineController) OnStepUp() {
	c.Engine.StepUp()
}

func (c EngineController) OnStepDown() {
	c.Engine.StepDown()
}

func (c EngineController) OnZoomIn() {
	c.Engine.ZoomIn()
}

func (c EngineController) OnZoomOut() {
	c.Engine.ZoomOut()
}

func (c EngineController) OnToggle(id string) {
	c.Engine.ToggleNode(id)
}

func (c EngineController) OnSort(id string) {
	c.Engine.ClickHeader(id)
}

func (c EngineController) OnDragStart(id string, x float64) {
	c.Engine.StartResize(id, x, 0)
}

func (c EngineController) OnDragMove(x float64) {
	c.Engine.MoveResize(x, 0)
}

func (c EngineController) OnDragEnd() {
	c.Engine.EndResize()
}

// OnResize takes the viewport width in layout units.
func (c EngineController) OnResize(w float64) {
	c.Engine.SetTotalWidth(w)
}

func (c EngineController) OnQuit() {
	if c.Quit != nil {
		c.Quit()
	}
}

type LayoutMode int

const (
	LayoutTooSmall LayoutMode = iota
	LayoutCompact
	LayoutWide
)

func DetermineLayoutMode(cols, rows int) LayoutMode {
	if cols < 40 || rows < 8 {
		return LayoutTooSmall
	}
	if cols >= 120 {
		return LayoutWide
	}
	return LayoutCompact
}

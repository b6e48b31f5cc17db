package disclosure

// Renderer paints frames produced by the Engine. Calls arrive with the
// engine lock held, so implementations must not call back into the
// Engine synchronously.
type Renderer interface {
	Render(frame Frame) error
	// Transition announces a visible-window change so the renderer can
	// animate from old to new.
	Transition(old, new []int)
	// SettleTransition jumps any running transition to its end state.
	SettleTransition()
	// RenderFallback replaces the header with a single static band.
	RenderFallback(reason string)
}

// Materializer prepares the rows of a level ahead of it becoming visible.
type Materializer interface {
	MaterializeLevel(level int) error
}

type MaterializerFunc func(level int) error

func (f MaterializerFunc) MaterializeLevel(level int) error { return f(level) }

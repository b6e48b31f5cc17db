package state

import (
	"context"
	"sync"
	"time"

	"headerzoom/internal/schedule"
	"headerzoom/internal/telemetry"
)

const storeTimeout = 2 * time.Second

type GatewayOptions struct {
	Progressive ProgressiveStore
	Visibility  VisibilityStore
	Scheduler   schedule.Scheduler
	Debounce    time.Duration
	Logger      *telemetry.Logger
}

// Gateway debounces saves of the navigational state and restores it per
// StateKey. Store failures are logged and otherwise ignored; the caller
// keeps working from memory.
type Gateway struct {
	progressive ProgressiveStore
	visibility  VisibilityStore
	debouncer   *schedule.Debouncer
	logger      *telemetry.Logger

	mu  sync.Mutex
	key StateKey
}

func NewGateway(opts GatewayOptions) *Gateway {
	if opts.Logger == nil {
		opts.Logger = telemetry.Nop()
	}
	return &Gateway{
		progressive: opts.Progressive,
		visibility:  opts.Visibility,
		debouncer:   schedule.NewDebouncer(opts.Scheduler, opts.Debounce),
		logger:      opts.Logger,
	}
}

func (g *Gateway) Key() StateKey {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.key
}

// Enabled reports whether a save could reach any store.
func (g *Gateway) Enabled() bool {
	return g != nil && (g.progressive != nil || g.visibility != nil)
}

// Save schedules a write of st under the current key. A later Save within
// the quiet period replaces this one.
func (g *Gateway) Save(st ProgressiveState) {
	if !g.Enabled() {
		return
	}
	key := g.Key()
	if !key.Valid() {
		return
	}
	snapshot := st.Clone()
	g.debouncer.Trigger(func() { g.write(key, snapshot) })
}

func (g *Gateway) write(key StateKey, st ProgressiveState) {
	ctx, cancel := context.WithTimeout(context.Background(), storeTimeout)
	defer cancel()
	if g.progressive != nil {
		if err := g.progressive.SaveProgressiveState(ctx, key, st); err != nil {
			g.logger.Error("state.save_failed", map[string]any{"key": key.String(), "error": err.Error()})
		}
	}
	if g.visibility != nil {
		if err := g.visibility.SaveLevelVisibility(ctx, key, VisibilityOf(st)); err != nil {
			g.logger.Error("state.visibility_save_failed", map[string]any{"key": key.String(), "error": err.Error()})
		}
	}
	g.logger.Debug("state.saved", map[string]any{"key": key.String(), "visible": st.VisibleLevels})
}

// Restore returns the saved state for the current key, or nil when none
// exists or the store failed. The legacy visibility channel is consulted
// when no full snapshot is stored.
func (g *Gateway) Restore() *ProgressiveState {
	if !g.Enabled() {
		return nil
	}
	key := g.Key()
	if !key.Valid() {
		return nil
	}
	ctx, cancel := context.WithTimeout(context.Background(), storeTimeout)
	defer cancel()
	if g.progressive != nil {
		st, err := g.progressive.LoadProgressiveState(ctx, key)
		if err != nil {
			g.logger.Warn("state.restore_failed", map[string]any{"key": key.String(), "error": err.Error()})
		} else if st != nil {
			return st
		}
	}
	if g.visibility != nil {
		v, err := g.visibility.LoadLevelVisibility(ctx, key)
		if err != nil {
			g.logger.Warn("state.visibility_restore_failed", map[string]any{"key": key.String(), "error": err.Error()})
			return nil
		}
		if levels := v.Levels(); len(levels) > 0 {
			return &ProgressiveState{VisibleLevels: levels, VisibilityOnly: true}
		}
	}
	return nil
}

// SetStateContext writes any pending save for the old key, switches to
// the new key and returns whatever was saved under it.
func (g *Gateway) SetStateContext(datasetID, appContext string) *ProgressiveState {
	g.Flush()
	g.mu.Lock()
	g.key = StateKey{DatasetID: datasetID, AppContext: appContext}
	g.mu.Unlock()
	return g.Restore()
}

// Flush performs any pending save immediately.
func (g *Gateway) Flush() bool {
	if g == nil {
		return false
	}
	return g.debouncer.Flush()
}

func (g *Gateway) Pending() bool {
	return g != nil && g.debouncer.Pending()
}

func (g *Gateway) Close() {
	g.Flush()
}

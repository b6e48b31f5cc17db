package app

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/google/uuid"

	"headerzoom/internal/config"
	"headerzoom/internal/disclosure"
	"headerzoom/internal/hierarchy"
	"headerzoom/internal/layout"
	"headerzoom/internal/render"
	"headerzoom/internal/schedule"
	"headerzoom/internal/sorting"
	"headerzoom/internal/state"
	"headerzoom/internal/telemetry"
	"headerzoom/internal/ui"
)

const DefaultAppContext = "browse"

type Options struct {
	// Path is the hierarchy fixture to browse.
	Path       string
	DatasetID  string
	AppContext string
	Columns    int
	ASCII      bool
	Logger     *telemetry.Logger
	Scheduler  schedule.Scheduler
}

// App wires one browse session: fixture, store, engine, renderer and view.
type App struct {
	cfg       config.Config
	logger    *telemetry.Logger
	ownLogger bool
	store     state.Store
	engine    *disclosure.Engine
	term      *render.Terminal
	view      *ui.Root
	doc       hierarchy.Document
	h         *hierarchy.Hierarchy
	sessionID string
}

func New(ctx context.Context, cfg config.Config, opts Options) (*App, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if err := os.MkdirAll(cfg.Persistence.DataDir, 0o755); err != nil {
		return nil, err
	}

	logger := opts.Logger
	ownLogger := false
	if logger == nil {
		l, err := telemetry.New(telemetry.Options{Path: cfg.Log.Path, Level: cfg.Log.Level})
		if err != nil {
			return nil, err
		}
		logger, ownLogger = l, true
	}
	closeLogger := func() {
		if ownLogger {
			_ = logger.Close()
		}
	}

	doc, h, err := hierarchy.NewLoader().LoadFile(ctx, opts.Path)
	if err != nil {
		closeLogger()
		return nil, err
	}

	store, err := state.Open(ctx, cfg.Persistence.Backend, cfg.Persistence.DataDir)
	if err != nil {
		closeLogger()
		return nil, fmt.Errorf("open %s store: %w", cfg.Persistence.Backend, err)
	}

	sched := opts.Scheduler
	if sched == nil {
		sched = schedule.Real{}
	}
	a := &App{
		cfg:       cfg,
		logger:    logger,
		ownLogger: ownLogger,
		store:     store,
		doc:       doc,
		h:         h,
		sessionID: uuid.NewString(),
	}

	a.term = render.NewTerminal(render.Options{
		Theme:       render.ThemeForVariant(cfg.UI.StyleVariant),
		MotionLevel: cfg.UI.MotionLevel,
		Columns:     opts.Columns,
		ASCII:       opts.ASCII,
	})
	gateway := state.NewGateway(state.GatewayOptions{
		Progressive: store,
		Visibility:  store,
		Scheduler:   sched,
		Debounce:    cfg.Debounce(),
		Logger:      logger,
	})
	a.engine = disclosure.NewEngine(disclosure.Options{
		Settings: settingsFrom(cfg),
		Calculator: layout.New(layout.Options{
			Allocator:  layout.AllocatorByName(cfg.Layout.Allocator),
			BandHeight: cfg.Layout.BandHeight,
			Logger:     logger,
		}),
		Renderer:     a.term,
		Materializer: disclosure.MaterializerFunc(a.materialize),
		Gateway:      gateway,
		Scheduler:    sched,
		Logger:       logger,
		SortListener: a.onSort,
	})

	datasetID := strings.TrimSpace(opts.DatasetID)
	if datasetID == "" {
		datasetID = doc.DatasetID
	}
	appContext := strings.TrimSpace(opts.AppContext)
	if appContext == "" {
		appContext = DefaultAppContext
	}
	a.engine.SetStateContext(datasetID, appContext)
	a.engine.UpdateHierarchy(h)

	title := doc.Name
	if title == "" {
		title = doc.DatasetID
	}
	a.view = ui.New(ui.Options{
		Terminal:     a.term,
		Controller:   ui.EngineController{Engine: a.engine},
		Title:        title,
		StyleVariant: cfg.UI.StyleVariant,
		Logger:       logger,
	})
	return a, nil
}

func settingsFrom(cfg config.Config) disclosure.Settings {
	return disclosure.Settings{
		AutoGroupThreshold: cfg.Disclosure.AutoGroupThreshold,
		MaxVisibleLevels:   cfg.Disclosure.MaxVisibleLevels,
		SemanticGrouping:   cfg.Disclosure.SemanticGrouping,
		LazyLoading:        cfg.Disclosure.LazyLoading,
		LazyLoadingBuffer:  cfg.Disclosure.LazyLoadingBuffer,
		TotalWidth:         cfg.Layout.TotalWidth,
	}
}

// materialize stands in for a data fetch: fixtures already hold every
// level, so it only checks the level exists.
func (a *App) materialize(level int) error {
	n := a.h.LevelSize(level)
	if n == 0 {
		return fmt.Errorf("level %d has no nodes", level)
	}
	a.logger.Debug("lazy.materialized", map[string]any{"session": a.sessionID, "level": level, "nodes": n})
	return nil
}

func (a *App) onSort(ev sorting.Event) {
	a.logger.Info("sort.changed", map[string]any{
		"session":   a.sessionID,
		"node":      ev.NodeID,
		"facet":     ev.Facet,
		"value":     ev.Value,
		"level":     ev.Level,
		"direction": string(ev.Direction),
	})
	if ev.Direction == sorting.None {
		a.view.SetStatus("sort cleared")
		return
	}
	a.view.SetStatus(fmt.Sprintf("sort %s %s %s", ev.Facet, ev.Value, ev.Direction))
}

func (a *App) Run(ctx context.Context) error {
	st := a.engine.ProgressiveState()
	a.logger.Info("app.start", map[string]any{
		"session": a.sessionID,
		"dataset": a.doc.DatasetID,
		"nodes":   a.h.Len(),
		"depth":   a.h.MaxDepth(),
		"visible": st.VisibleLevels,
	})
	done := make(chan struct{})
	defer close(done)
	go func() {
		select {
		case <-ctx.Done():
			a.view.Stop()
		case <-done:
		}
	}()
	return a.view.Run()
}

func (a *App) Engine() *disclosure.Engine { return a.engine }

func (a *App) SessionID() string { return a.sessionID }

func (a *App) Close() {
	a.engine.Close()
	if err := a.store.Close(); err != nil {
		a.logger.Warn("state.close_failed", map[string]any{"error": err.Error()})
	}
	a.logger.Info("app.stop", map[string]any{"session": a.sessionID})
	if a.ownLogger {
		_ = a.logger.Close()
	}
}

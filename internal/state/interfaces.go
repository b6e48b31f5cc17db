package state

import "context"

// ProgressiveStore persists whole ProgressiveState snapshots. Load returns
// (nil, nil) when nothing is saved for key.
type ProgressiveStore interface {
	LoadProgressiveState(ctx context.Context, key StateKey) (*ProgressiveState, error)
	SaveProgressiveState(ctx context.Context, key StateKey, st ProgressiveState) error
}

// VisibilityStore is the older per-level visibility channel. Load returns
// a nil map when nothing is saved.
type VisibilityStore interface {
	LoadLevelVisibility(ctx context.Context, key StateKey) (LevelVisibility, error)
	SaveLevelVisibility(ctx context.Context, key StateKey, v LevelVisibility) error
}

type Store interface {
	ProgressiveStore
	VisibilityStore
	EnsureSchema(ctx context.Context) error
	ListKeys(ctx context.Context) ([]StateKey, error)
	Close() error
}

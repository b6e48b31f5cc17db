package state

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	json "github.com/goccy/go-json"
	_ "modernc.org/sqlite"
)

type SQLiteStore struct {
	db *sql.DB
}

func NewSQLite(path string) (*SQLiteStore, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, err
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	return &SQLiteStore{db: db}, nil
}

func (s *SQLiteStore) EnsureSchema(ctx context.Context) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS progressive_state (
			dataset_id TEXT NOT NULL,
			app_context TEXT NOT NULL DEFAULT '',
			payload TEXT NOT NULL,
			updated_ts TEXT NOT NULL,
			PRIMARY KEY(dataset_id, app_context)
		);`,
		`CREATE TABLE IF NOT EXISTS level_visibility (
			dataset_id TEXT NOT NULL,
			app_context TEXT NOT NULL DEFAULT '',
			level INTEGER NOT NULL,
			visible INTEGER NOT NULL,
			PRIMARY KEY(dataset_id, app_context, level)
		);`,
	}
	for _, stmt := range stmts {
		if _, err := s.db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("ensure schema: %w", err)
		}
	}
	return nil
}

func (s *SQLiteStore) SaveProgressiveState(ctx context.Context, key StateKey, st ProgressiveState) error {
	if !key.Valid() {
		return nil
	}
	payload, err := json.Marshal(st)
	if err != nil {
		return fmt.Errorf("encode progressive state: %w", err)
	}
	updated := st.LastUpdated
	if updated.IsZero() {
		updated = time.Now().UTC()
	}
	_, err = s.db.ExecContext(ctx, `
		INSERT INTO progressive_state(dataset_id, app_context, payload, updated_ts)
		VALUES(?, ?, ?, ?)
		ON CONFLICT(dataset_id, app_context) DO UPDATE SET
			payload = excluded.payload,
			updated_ts = excluded.updated_ts
	`, key.DatasetID, key.AppContext, string(payload), updated.UTC().Format(timeLayout))
	return err
}

func (s *SQLiteStore) LoadProgressiveState(ctx context.Context, key StateKey) (*ProgressiveState, error) {
	var payload string
	err := s.db.QueryRowContext(ctx,
		`SELECT payload FROM progressive_state WHERE dataset_id = ? AND app_context = ?`,
		key.DatasetID, key.AppContext,
	).Scan(&payload)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	var st ProgressiveState
	if err := json.Unmarshal([]byte(payload), &st); err != nil {
		return nil, fmt.Errorf("decode progressive state %s: %w", key, err)
	}
	return &st, nil
}

func (s *SQLiteStore) SaveLevelVisibility(ctx context.Context, key StateKey, v LevelVisibility) error {
	if !key.Valid() {
		return nil
	}
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()
	if _, err := tx.ExecContext(ctx,
		`DELETE FROM level_visibility WHERE dataset_id = ? AND app_context = ?`,
		key.DatasetID, key.AppContext,
	); err != nil {
		return err
	}
	for level, visible := range v {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO level_visibility(dataset_id, app_context, level, visible) VALUES(?, ?, ?, ?)`,
			key.DatasetID, key.AppContext, level, ifThen(visible, 1, 0),
		); err != nil {
			return err
		}
	}
	return tx.Commit()
}

func (s *SQLiteStore) LoadLevelVisibility(ctx context.Context, key StateKey) (LevelVisibility, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT level, visible FROM level_visibility WHERE dataset_id = ? AND app_context = ?`,
		key.DatasetID, key.AppContext,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out LevelVisibility
	for rows.Next() {
		var level, visible int
		if err := rows.Scan(&level, &visible); err != nil {
			return nil, err
		}
		if out == nil {
			out = LevelVisibility{}
		}
		out[level] = visible != 0
	}
	return out, rows.Err()
}

// ListKeys returns every key with a saved progressive state, most recently
// updated first.
func (s *SQLiteStore) ListKeys(ctx context.Context) ([]StateKey, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT dataset_id, app_context FROM progressive_state
		ORDER BY updated_ts DESC, dataset_id ASC, app_context ASC
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := make([]StateKey, 0)
	for rows.Next() {
		var k StateKey
		if err := rows.Scan(&k.DatasetID, &k.AppContext); err != nil {
			return nil, err
		}
		out = append(out, k)
	}
	return out, rows.Err()
}

func (s *SQLiteStore) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

const timeLayout = "2006-01-02T15:04:05Z07:00"

func ifThen(cond bool, yes, no int) int {
	if cond {
		return yes
	}
	return no
}

// Open picks a store by backend name.
func Open(ctx context.Context, backend, dataDir string) (Store, error) {
	switch strings.ToLower(strings.TrimSpace(backend)) {
	case "memory":
		return NewMemory(), nil
	case "", "sqlite":
		s, err := NewSQLite(filepath.Join(dataDir, "headerzoom.db"))
		if err != nil {
			return nil, err
		}
		if err := s.EnsureSchema(ctx); err != nil {
			_ = s.Close()
			return nil, err
		}
		return s, nil
	default:
		return nil, fmt.Errorf("unknown persistence backend %q", backend)
	}
}

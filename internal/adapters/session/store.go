// Package session provides the server-side session store: a per-token
// ordered ledger of prediction results plus free-form project metadata.
// Tokens are opaque; clients only ever hold the token, never the data.
package session

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/nandira/taksir/internal/domain/model"
)

const schema = `
CREATE TABLE IF NOT EXISTS sessions (
	token        TEXT PRIMARY KEY,
	results      TEXT NOT NULL DEFAULT '[]',
	project_info TEXT NOT NULL DEFAULT '{}',
	updated_at   DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
);
CREATE INDEX IF NOT EXISTS idx_sessions_updated_at ON sessions(updated_at);
`

// Store keeps session ledgers in a local SQLite database, so sessions
// survive process restarts without a client-readable cookie payload.
type Store struct {
	db *sql.DB
}

// Open opens (or creates) the session database at path.
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("%w: open: %w", ErrStore, err)
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("%w: create schema: %w", ErrStore, err)
	}
	return &Store{db: db}, nil
}

// Close releases the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}

// Results returns the session's ledger in insertion order. A session
// that was never written yields an empty ledger, not an error.
func (s *Store) Results(ctx context.Context, token string) ([]model.PredictionResult, error) {
	var raw string
	err := s.db.QueryRowContext(ctx,
		`SELECT results FROM sessions WHERE token = ?`, token).Scan(&raw)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("%w: read results: %w", ErrStore, err)
	}
	var results []model.PredictionResult
	if err := json.Unmarshal([]byte(raw), &results); err != nil {
		return nil, fmt.Errorf("%w: decode results: %w", ErrStore, err)
	}
	return results, nil
}

// Replace adopts results as the session's ledger, e.g. after seeding
// from the remote sink.
func (s *Store) Replace(ctx context.Context, token string, results []model.PredictionResult) error {
	return s.writeResults(ctx, token, results)
}

// Append adds one result to the end of the ledger (most-recent-last).
func (s *Store) Append(ctx context.Context, token string, rec model.PredictionResult) error {
	results, err := s.Results(ctx, token)
	if err != nil {
		return err
	}
	return s.writeResults(ctx, token, append(results, rec))
}

// DeleteAt removes the element at index i. Out-of-range indexes are
// silently tolerated and leave the ledger unchanged.
func (s *Store) DeleteAt(ctx context.Context, token string, i int) error {
	results, err := s.Results(ctx, token)
	if err != nil {
		return err
	}
	if i < 0 || i >= len(results) {
		return nil
	}
	results = append(results[:i], results[i+1:]...)
	return s.writeResults(ctx, token, results)
}

// Clear empties the session's ledger.
func (s *Store) Clear(ctx context.Context, token string) error {
	return s.writeResults(ctx, token, nil)
}

// ProjectInfo returns the session's project metadata; the zero value
// when none was saved.
func (s *Store) ProjectInfo(ctx context.Context, token string) (model.ProjectInfo, error) {
	var raw string
	err := s.db.QueryRowContext(ctx,
		`SELECT project_info FROM sessions WHERE token = ?`, token).Scan(&raw)
	if errors.Is(err, sql.ErrNoRows) {
		return model.ProjectInfo{}, nil
	}
	if err != nil {
		return model.ProjectInfo{}, fmt.Errorf("%w: read project info: %w", ErrStore, err)
	}
	var info model.ProjectInfo
	if err := json.Unmarshal([]byte(raw), &info); err != nil {
		return model.ProjectInfo{}, fmt.Errorf("%w: decode project info: %w", ErrStore, err)
	}
	return info, nil
}

// SaveProjectInfo stores the session's project metadata as-is.
func (s *Store) SaveProjectInfo(ctx context.Context, token string, info model.ProjectInfo) error {
	raw, err := json.Marshal(info)
	if err != nil {
		return fmt.Errorf("%w: encode project info: %w", ErrStore, err)
	}
	_, err = s.db.ExecContext(ctx, `
		INSERT INTO sessions (token, project_info, updated_at) VALUES (?, ?, ?)
		ON CONFLICT(token) DO UPDATE SET project_info = excluded.project_info,
			updated_at = excluded.updated_at`,
		token, string(raw), time.Now().UTC())
	if err != nil {
		return fmt.Errorf("%w: save project info: %w", ErrStore, err)
	}
	return nil
}

// Count reports the number of stored sessions, for stats.
func (s *Store) Count(ctx context.Context) (int, error) {
	var n int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM sessions`).Scan(&n); err != nil {
		return 0, fmt.Errorf("%w: count: %w", ErrStore, err)
	}
	return n, nil
}

func (s *Store) writeResults(ctx context.Context, token string, results []model.PredictionResult) error {
	if results == nil {
		results = []model.PredictionResult{}
	}
	raw, err := json.Marshal(results)
	if err != nil {
		return fmt.Errorf("%w: encode results: %w", ErrStore, err)
	}
	_, err = s.db.ExecContext(ctx, `
		INSERT INTO sessions (token, results, updated_at) VALUES (?, ?, ?)
		ON CONFLICT(token) DO UPDATE SET results = excluded.results,
			updated_at = excluded.updated_at`,
		token, string(raw), time.Now().UTC())
	if err != nil {
		return fmt.Errorf("%w: save results: %w", ErrStore, err)
	}
	return nil
}

package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"queryosity/pkg/models"
)

// SQLite persists one JSON-encoded record per session in project_state.
type SQLite struct {
	DB *sql.DB
}

func NewSQLite(db *sql.DB) *SQLite {
	return &SQLite{DB: db}
}

func (s *SQLite) Get(ctx context.Context, sessionID string) (models.Project, error) {
	if sessionID == "" {
		return models.Project{}, ErrNoSession
	}
	row := s.DB.QueryRowContext(ctx, `
		SELECT record
		FROM project_state
		WHERE session_id = ?
	`, sessionID)

	var record string
	if err := row.Scan(&record); err != nil {
		if err == sql.ErrNoRows {
			return models.Project{}, nil
		}
		return models.Project{}, fmt.Errorf("get project state: %w", err)
	}

	var p models.Project
	if err := json.Unmarshal([]byte(record), &p); err != nil {
		return models.Project{}, fmt.Errorf("decode project state: %w", err)
	}
	return p, nil
}

func (s *SQLite) Replace(ctx context.Context, sessionID string, p models.Project) error {
	if sessionID == "" {
		return ErrNoSession
	}
	record, err := json.Marshal(p)
	if err != nil {
		return fmt.Errorf("encode project state: %w", err)
	}

	_, err = s.DB.ExecContext(ctx, `
		INSERT INTO project_state (session_id, record, updated_at)
		VALUES (?, ?, CURRENT_TIMESTAMP)
		ON CONFLICT(session_id) DO UPDATE SET
			record = excluded.record,
			updated_at = CURRENT_TIMESTAMP
	`, sessionID, string(record))
	if err != nil {
		return fmt.Errorf("replace project state: %w", err)
	}
	return nil
}

func (s *SQLite) Clear(ctx context.Context, sessionID string) error {
	if sessionID == "" {
		return ErrNoSession
	}
	if _, err := s.DB.ExecContext(ctx, `
		DELETE FROM project_state
		WHERE session_id = ?
	`, sessionID); err != nil {
		return fmt.Errorf("clear project state: %w", err)
	}
	return nil
}

func (s *SQLite) Ping(ctx context.Context) error {
	return s.DB.PingContext(ctx)
}

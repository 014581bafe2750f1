// Package store handles SQLite persistence of the reading session log.
package store

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/verte-zerg/tuiread/internal/model"

	_ "modernc.org/sqlite" // SQLite driver.
)

// timeLayout is fixed width so stored timestamps sort as text.
const timeLayout = "2006-01-02T15:04:05.000000000Z07:00"

// Store wraps SQLite access for session data.
type Store struct {
	db *sql.DB
}

// Open opens or creates the SQLite database and applies migrations.
func Open(path string) (*Store, error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	store := &Store{db: db}
	if err := store.migrate(); err != nil {
		if cerr := db.Close(); cerr != nil {
			// Best-effort close on migration failure.
			_ = cerr
		}
		return nil, err
	}
	return store, nil
}

// Close closes the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) migrate() error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS reading_sessions (
			id INTEGER PRIMARY KEY,
			started_at TEXT NOT NULL,
			ended_at TEXT NOT NULL,
			document TEXT NOT NULL,
			words INTEGER NOT NULL,
			pace REAL NOT NULL,
			duration_ms INTEGER NOT NULL
		);`,
		`CREATE INDEX IF NOT EXISTS idx_reading_sessions_ended_at ON reading_sessions(ended_at);`,
		`CREATE INDEX IF NOT EXISTS idx_reading_sessions_document ON reading_sessions(document);`,
	}
	for _, stmt := range stmts {
		if _, err := s.db.Exec(stmt); err != nil {
			return err
		}
	}
	return nil
}

// InsertSession stores a finished reading session.
func (s *Store) InsertSession(ctx context.Context, session model.ReadingSession) (int64, error) {
	res, err := s.db.ExecContext(ctx,
		`INSERT INTO reading_sessions (started_at, ended_at, document, words, pace, duration_ms)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		session.StartedAt.UTC().Format(timeLayout),
		session.EndedAt.UTC().Format(timeLayout),
		session.Document,
		session.Words,
		session.Pace,
		session.DurationMs,
	)
	if err != nil {
		return 0, err
	}
	return res.LastInsertId()
}

func filterClauses(cfg model.StatsConfig) (string, []any) {
	clauses := []string{"1=1"}
	args := []any{}
	if cfg.Since != nil {
		clauses = append(clauses, "ended_at >= ?")
		args = append(args, cfg.Since.UTC().Format(timeLayout))
	}
	return strings.Join(clauses, " AND "), args
}

// ListSessions returns session aggregates filtered by stats config, oldest first.
func (s *Store) ListSessions(ctx context.Context, cfg model.StatsConfig) ([]model.SessionAggregate, error) {
	where, args := filterClauses(cfg)
	query := fmt.Sprintf(`SELECT id, ended_at, document, words, duration_ms
		FROM reading_sessions
		WHERE %s
		ORDER BY ended_at ASC, id ASC`, where)
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer func() {
		if cerr := rows.Close(); cerr != nil {
			// Best-effort rows close.
			_ = cerr
		}
	}()

	var sessions []model.SessionAggregate
	for rows.Next() {
		var agg model.SessionAggregate
		var endedAt string
		if err := rows.Scan(&agg.SessionID, &endedAt, &agg.Document, &agg.Words, &agg.DurationMs); err != nil {
			return nil, err
		}
		parsed, err := time.Parse(time.RFC3339Nano, endedAt)
		if err != nil {
			return nil, err
		}
		agg.EndedAt = parsed
		sessions = append(sessions, agg)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return sessions, nil
}

// ListDocumentAggregatesForSessions sums the given sessions per document.
func (s *Store) ListDocumentAggregatesForSessions(ctx context.Context, sessionIDs []int64) ([]model.DocumentAggregate, error) {
	if len(sessionIDs) == 0 {
		return nil, nil
	}
	placeholders := make([]string, len(sessionIDs))
	args := make([]any, len(sessionIDs))
	for i, id := range sessionIDs {
		placeholders[i] = "?"
		args[i] = id
	}
	query := fmt.Sprintf(`SELECT document, COUNT(*) AS sessions, SUM(words) AS words, SUM(duration_ms) AS duration_ms, MAX(ended_at) AS last_ended_at
		FROM reading_sessions
		WHERE id IN (%s)
		GROUP BY document
		ORDER BY document ASC`, strings.Join(placeholders, ","))
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer func() {
		if cerr := rows.Close(); cerr != nil {
			// Best-effort rows close.
			_ = cerr
		}
	}()

	var result []model.DocumentAggregate
	for rows.Next() {
		var agg model.DocumentAggregate
		var lastEndedAt string
		if err := rows.Scan(&agg.Document, &agg.Sessions, &agg.Words, &agg.DurationMs, &lastEndedAt); err != nil {
			return nil, err
		}
		parsed, err := time.Parse(time.RFC3339Nano, lastEndedAt)
		if err != nil {
			return nil, err
		}
		agg.LastEndedAt = parsed
		result = append(result, agg)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

// Package storage provides SQLite session storage.
//
// Information Hiding:
// - SQLite connection management hidden behind interface
// - Schema details encapsulated
// - Thread-safe via sql.DB's built-in connection pooling

package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"github.com/richinex/condense/compaction"
	"github.com/richinex/condense/conversation"
)

// SqliteStorage implements Store using SQLite.
// Each history item is one row holding the item's JSON encoding.
// Thread-safe: sql.DB handles connection pooling and concurrent access.
type SqliteStorage struct {
	db *sql.DB
}

// OpenSqlite opens or creates a SQLite database at the given path.
// Creates parent directories if they don't exist.
func OpenSqlite(path string) (*SqliteStorage, error) {
	dir := filepath.Dir(path)
	if dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite3", path+"?_foreign_keys=on")
	if err != nil {
		return nil, fmt.Errorf("failed to open SQLite database: %w", err)
	}
	return newSqlite(db)
}

// NewSqliteInMemory creates an in-memory database (useful for testing).
func NewSqliteInMemory() (*SqliteStorage, error) {
	db, err := sql.Open("sqlite3", ":memory:?_foreign_keys=on")
	if err != nil {
		return nil, fmt.Errorf("failed to create in-memory SQLite: %w", err)
	}
	// Every connection to :memory: is a separate database.
	db.SetMaxOpenConns(1)
	return newSqlite(db)
}

func newSqlite(db *sql.DB) (*SqliteStorage, error) {
	storage := &SqliteStorage{db: db}
	if err := storage.createSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}
	return storage, nil
}

// Close closes the database connection.
func (s *SqliteStorage) Close() error {
	return s.db.Close()
}

func (s *SqliteStorage) createSchema() error {
	schema := `
		CREATE TABLE IF NOT EXISTS sessions (
			session_id TEXT PRIMARY KEY,
			provider TEXT NOT NULL,
			created_at INTEGER NOT NULL,
			updated_at INTEGER NOT NULL
		);

		CREATE TABLE IF NOT EXISTS items (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			session_id TEXT NOT NULL,
			item_index INTEGER NOT NULL,
			role TEXT NOT NULL,
			content TEXT NOT NULL,
			FOREIGN KEY (session_id) REFERENCES sessions(session_id) ON DELETE CASCADE,
			UNIQUE(session_id, item_index)
		);

		CREATE INDEX IF NOT EXISTS idx_items_session
		ON items(session_id, item_index);

		CREATE TABLE IF NOT EXISTS compaction_events (
			id TEXT PRIMARY KEY,
			session_id TEXT NOT NULL,
			strategy TEXT NOT NULL,
			compacted INTEGER NOT NULL,
			original_tokens INTEGER NOT NULL,
			new_tokens INTEGER NOT NULL,
			turns_summarized INTEGER NOT NULL,
			summary TEXT NOT NULL,
			created_at INTEGER NOT NULL,
			FOREIGN KEY (session_id) REFERENCES sessions(session_id) ON DELETE CASCADE
		);

		CREATE INDEX IF NOT EXISTS idx_events_session
		ON compaction_events(session_id, created_at);
	`

	_, err := s.db.Exec(schema)
	if err != nil {
		return fmt.Errorf("failed to create schema: %w", err)
	}
	return nil
}

// Save replaces the history for a session in one transaction.
func (s *SqliteStorage) Save(ctx context.Context, sessionID, provider string, items []conversation.Item) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	// defer tx.Rollback() is safe even after Commit() - it becomes a no-op
	defer func() { _ = tx.Rollback() }()

	now := time.Now().UTC().UnixMilli()
	_, err = tx.ExecContext(ctx, `
		INSERT INTO sessions (session_id, provider, created_at, updated_at)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(session_id) DO UPDATE SET provider = excluded.provider, updated_at = excluded.updated_at`,
		sessionID, provider, now, now)
	if err != nil {
		return fmt.Errorf("failed to upsert session: %w", err)
	}

	_, err = tx.ExecContext(ctx, "DELETE FROM items WHERE session_id = ?", sessionID)
	if err != nil {
		return fmt.Errorf("failed to clear old items: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx,
		"INSERT INTO items (session_id, item_index, role, content) VALUES (?, ?, ?, ?)")
	if err != nil {
		return fmt.Errorf("failed to prepare insert statement: %w", err)
	}
	defer stmt.Close()

	for i, item := range items {
		content, err := json.Marshal(item)
		if err != nil {
			return fmt.Errorf("failed to encode item %d: %w", i, err)
		}
		if _, err := stmt.ExecContext(ctx, sessionID, i, item.String("role"), string(content)); err != nil {
			return fmt.Errorf("failed to insert item: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

// Load loads a session and its items in order.
func (s *SqliteStorage) Load(ctx context.Context, sessionID string) (Session, error) {
	session := Session{ID: sessionID}
	var updatedAt int64
	err := s.db.QueryRowContext(ctx,
		"SELECT provider, updated_at FROM sessions WHERE session_id = ?",
		sessionID).Scan(&session.Provider, &updatedAt)
	if err == sql.ErrNoRows {
		return Session{}, fmt.Errorf("%w: %s", ErrSessionNotFound, sessionID)
	}
	if err != nil {
		return Session{}, fmt.Errorf("failed to query session: %w", err)
	}
	session.UpdatedAt = time.UnixMilli(updatedAt).UTC()

	rows, err := s.db.QueryContext(ctx,
		"SELECT content FROM items WHERE session_id = ? ORDER BY item_index ASC",
		sessionID)
	if err != nil {
		return Session{}, fmt.Errorf("failed to query items: %w", err)
	}
	defer rows.Close()

	session.Items = []conversation.Item{} // Start with empty slice, not nil
	for rows.Next() {
		var content string
		if err := rows.Scan(&content); err != nil {
			return Session{}, fmt.Errorf("failed to scan item: %w", err)
		}
		var item conversation.Item
		if err := json.Unmarshal([]byte(content), &item); err != nil {
			return Session{}, fmt.Errorf("failed to decode item: %w", err)
		}
		session.Items = append(session.Items, item)
	}

	if err := rows.Err(); err != nil {
		return Session{}, fmt.Errorf("error iterating items: %w", err)
	}
	return session, nil
}

// Delete deletes a session; items and events cascade.
func (s *SqliteStorage) Delete(ctx context.Context, sessionID string) error {
	_, err := s.db.ExecContext(ctx,
		"DELETE FROM sessions WHERE session_id = ?",
		sessionID)
	if err != nil {
		return fmt.Errorf("failed to delete session: %w", err)
	}
	return nil
}

// ListSessions lists sessions, most recently updated first.
func (s *SqliteStorage) ListSessions(ctx context.Context) ([]SessionInfo, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT s.session_id, s.provider, s.updated_at, COUNT(i.id)
		FROM sessions s
		LEFT JOIN items i ON i.session_id = s.session_id
		GROUP BY s.session_id
		ORDER BY s.updated_at DESC, s.session_id ASC`)
	if err != nil {
		return nil, fmt.Errorf("failed to query sessions: %w", err)
	}
	defer rows.Close()

	sessions := []SessionInfo{} // Start with empty slice, not nil
	for rows.Next() {
		var info SessionInfo
		var updatedAt int64
		if err := rows.Scan(&info.ID, &info.Provider, &updatedAt, &info.ItemCount); err != nil {
			return nil, fmt.Errorf("failed to scan session: %w", err)
		}
		info.UpdatedAt = time.UnixMilli(updatedAt).UTC()
		sessions = append(sessions, info)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating sessions: %w", err)
	}
	return sessions, nil
}

// Exists checks if a session exists.
func (s *SqliteStorage) Exists(ctx context.Context, sessionID string) (bool, error) {
	var count int
	err := s.db.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM sessions WHERE session_id = ?",
		sessionID).Scan(&count)
	if err != nil {
		return false, fmt.Errorf("failed to check session existence: %w", err)
	}
	return count > 0, nil
}

// EventLog implementation

// RecordEvent appends a compaction event to a session's log.
func (s *SqliteStorage) RecordEvent(ctx context.Context, event CompactionEvent) error {
	exists, err := s.Exists(ctx, event.SessionID)
	if err != nil {
		return err
	}
	if !exists {
		return fmt.Errorf("%w: %s", ErrSessionNotFound, event.SessionID)
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO compaction_events
		(id, session_id, strategy, compacted, original_tokens, new_tokens, turns_summarized, summary, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		event.ID,
		event.SessionID,
		string(event.Strategy),
		event.Compacted,
		event.OriginalTokens,
		event.NewTokens,
		event.TurnsSummarized,
		event.Summary,
		event.CreatedAt.UnixMilli(),
	)
	if err != nil {
		return fmt.Errorf("failed to record compaction event: %w", err)
	}
	return nil
}

// Events returns a session's compaction events, oldest first.
func (s *SqliteStorage) Events(ctx context.Context, sessionID string) ([]CompactionEvent, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, session_id, strategy, compacted, original_tokens, new_tokens, turns_summarized, summary, created_at
		FROM compaction_events
		WHERE session_id = ?
		ORDER BY created_at ASC, rowid ASC`,
		sessionID)
	if err != nil {
		return nil, fmt.Errorf("failed to query compaction events: %w", err)
	}
	defer rows.Close()

	events := []CompactionEvent{} // Start with empty slice, not nil
	for rows.Next() {
		var event CompactionEvent
		var strategy string
		var createdAt int64
		if err := rows.Scan(
			&event.ID,
			&event.SessionID,
			&strategy,
			&event.Compacted,
			&event.OriginalTokens,
			&event.NewTokens,
			&event.TurnsSummarized,
			&event.Summary,
			&createdAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan compaction event: %w", err)
		}
		event.Strategy = compaction.Strategy(strategy)
		event.CreatedAt = time.UnixMilli(createdAt).UTC()
		events = append(events, event)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating compaction events: %w", err)
	}
	return events, nil
}

// Verify SqliteStorage implements Store
var _ Store = (*SqliteStorage)(nil)

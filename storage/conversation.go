// Package storage provides session history storage for the condense CLI.
//
// Information Hiding:
// - Storage backend implementation details hidden behind interfaces
// - Allows swapping between memory and SQLite without API changes
// - Items are stored as opaque JSON; storage never interprets provider shapes

package storage

import (
	"context"
	"errors"
	"time"

	"github.com/richinex/condense/conversation"
)

// ErrSessionNotFound is returned when a session does not exist.
var ErrSessionNotFound = errors.New("session not found")

// Session is a stored conversation history.
type Session struct {
	ID        string
	Provider  string
	Items     []conversation.Item
	UpdatedAt time.Time
}

// SessionInfo summarizes a stored session without its items.
type SessionInfo struct {
	ID        string
	Provider  string
	ItemCount int
	UpdatedAt time.Time
}

// HistoryStore defines the interface for storing conversation histories.
type HistoryStore interface {
	// Save replaces the history of a session, creating it if needed.
	Save(ctx context.Context, sessionID, provider string, items []conversation.Item) error

	// Load loads a session. Returns ErrSessionNotFound if it does not exist.
	Load(ctx context.Context, sessionID string) (Session, error)

	// Delete deletes a session, its items and its events.
	Delete(ctx context.Context, sessionID string) error

	// ListSessions lists sessions, most recently updated first.
	ListSessions(ctx context.Context) ([]SessionInfo, error)

	// Exists checks if a session exists.
	Exists(ctx context.Context, sessionID string) (bool, error)
}

// EventLog records compaction runs per session.
type EventLog interface {
	// RecordEvent appends an event to the session's log.
	RecordEvent(ctx context.Context, event CompactionEvent) error

	// Events returns a session's events, oldest first.
	Events(ctx context.Context, sessionID string) ([]CompactionEvent, error)
}

// Store combines history storage and the event log.
type Store interface {
	HistoryStore
	EventLog
	Close() error
}

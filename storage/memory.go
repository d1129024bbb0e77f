// In-memory session storage.
//
// Information Hiding:
// - Map storage structure hidden from users
// - Thread-safe access via RWMutex hidden behind interface
// - Suitable for testing and ephemeral sessions

package storage

import (
	"cmp"
	"context"
	"encoding/json"
	"fmt"
	"slices"
	"sync"
	"time"

	"github.com/richinex/condense/conversation"
)

type memorySession struct {
	provider  string
	items     []byte
	count     int
	updatedAt time.Time
}

// InMemoryStorage implements Store using in-memory maps.
// Data is lost when process terminates.
type InMemoryStorage struct {
	mu       sync.RWMutex
	sessions map[string]memorySession
	events   map[string][]CompactionEvent
}

// NewInMemoryStorage creates a new in-memory storage.
func NewInMemoryStorage() *InMemoryStorage {
	return &InMemoryStorage{
		sessions: make(map[string]memorySession),
		events:   make(map[string][]CompactionEvent),
	}
}

// Save saves the history for a session.
// Items are stored encoded so later mutation by the caller has no effect.
func (s *InMemoryStorage) Save(ctx context.Context, sessionID, provider string, items []conversation.Item) error {
	data, err := json.Marshal(items)
	if err != nil {
		return fmt.Errorf("failed to encode history: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.sessions[sessionID] = memorySession{
		provider:  provider,
		items:     data,
		count:     len(items),
		updatedAt: time.Now().UTC(),
	}
	return nil
}

// Load loads a session.
func (s *InMemoryStorage) Load(ctx context.Context, sessionID string) (Session, error) {
	s.mu.RLock()
	stored, ok := s.sessions[sessionID]
	s.mu.RUnlock()

	if !ok {
		return Session{}, fmt.Errorf("%w: %s", ErrSessionNotFound, sessionID)
	}

	items, err := conversation.ParseItems(stored.items)
	if err != nil {
		return Session{}, err
	}
	return Session{
		ID:        sessionID,
		Provider:  stored.provider,
		Items:     items,
		UpdatedAt: stored.updatedAt,
	}, nil
}

// Delete deletes a session and its events.
func (s *InMemoryStorage) Delete(ctx context.Context, sessionID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.sessions, sessionID)
	delete(s.events, sessionID)
	return nil
}

// ListSessions lists sessions, most recently updated first.
func (s *InMemoryStorage) ListSessions(ctx context.Context) ([]SessionInfo, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	sessions := make([]SessionInfo, 0, len(s.sessions))
	for id, stored := range s.sessions {
		sessions = append(sessions, SessionInfo{
			ID:        id,
			Provider:  stored.provider,
			ItemCount: stored.count,
			UpdatedAt: stored.updatedAt,
		})
	}
	slices.SortFunc(sessions, func(a, b SessionInfo) int {
		if c := b.UpdatedAt.Compare(a.UpdatedAt); c != 0 {
			return c
		}
		return cmp.Compare(a.ID, b.ID)
	})
	return sessions, nil
}

// Exists checks if a session exists.
func (s *InMemoryStorage) Exists(ctx context.Context, sessionID string) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	_, ok := s.sessions[sessionID]
	return ok, nil
}

// RecordEvent appends a compaction event.
func (s *InMemoryStorage) RecordEvent(ctx context.Context, event CompactionEvent) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.sessions[event.SessionID]; !ok {
		return fmt.Errorf("%w: %s", ErrSessionNotFound, event.SessionID)
	}
	s.events[event.SessionID] = append(s.events[event.SessionID], event)
	return nil
}

// Events returns a session's events, oldest first.
func (s *InMemoryStorage) Events(ctx context.Context, sessionID string) ([]CompactionEvent, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return append([]CompactionEvent{}, s.events[sessionID]...), nil
}

// Close is a no-op.
func (s *InMemoryStorage) Close() error {
	return nil
}

// Verify InMemoryStorage implements Store
var _ Store = (*InMemoryStorage)(nil)

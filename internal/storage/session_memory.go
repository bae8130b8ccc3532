package storage

import (
	"context"
	"sync"

	"github.com/ad/gitelegram-greeter-bot/internal/domain"
)

// MemorySessionStore keeps sessions in process memory. Selections are lost on
// restart.
type MemorySessionStore struct {
	mu       sync.RWMutex
	sessions map[int64]string
}

// NewMemorySessionStore creates an empty in-memory store
func NewMemorySessionStore() *MemorySessionStore {
	return &MemorySessionStore{
		sessions: make(map[int64]string),
	}
}

// Get returns the session for the conversation, empty if none was stored
func (s *MemorySessionStore) Get(ctx context.Context, conversationID int64) (*domain.Session, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.RLock()
	locale := s.sessions[conversationID]
	s.mu.RUnlock()

	return &domain.Session{ConversationID: conversationID, Locale: locale}, nil
}

// SetLocale stores the locale for the conversation
func (s *MemorySessionStore) SetLocale(ctx context.Context, conversationID int64, locale string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	s.sessions[conversationID] = locale
	s.mu.Unlock()

	return nil
}

// Len returns the number of conversations with a stored locale
func (s *MemorySessionStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.sessions)
}

// Close is a no-op
func (s *MemorySessionStore) Close() error {
	return nil
}

package domain

import "context"

// Session is the per-conversation state. An empty Locale means no language
// has been chosen yet and the default locale applies.
type Session struct {
	ConversationID int64
	Locale         string
}

// HasLocale reports whether a language was selected for the conversation
func (s *Session) HasLocale() bool {
	return s != nil && s.Locale != ""
}

// SessionStore keeps one Session per conversation id.
// Get never returns a nil session without an error: unknown conversations
// get an empty session.
type SessionStore interface {
	Get(ctx context.Context, conversationID int64) (*Session, error)
	SetLocale(ctx context.Context, conversationID int64, locale string) error
	Close() error
}

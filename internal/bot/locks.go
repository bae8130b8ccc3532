package bot

import (
	"context"
	"sync"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
)

// ConversationLocks serializes handlers of the same conversation.
// The bot runs handlers concurrently, so without it a language change could
// race a reply that reads the old locale.
type ConversationLocks struct {
	mu    sync.Mutex
	locks map[int64]*conversationLock
}

type conversationLock struct {
	mu   sync.Mutex
	refs int
}

// NewConversationLocks creates an empty lock set
func NewConversationLocks() *ConversationLocks {
	return &ConversationLocks{
		locks: make(map[int64]*conversationLock),
	}
}

// Lock blocks until the conversation is free and returns its unlock func.
// Entries are removed once nobody holds or waits for them.
func (l *ConversationLocks) Lock(id int64) func() {
	l.mu.Lock()
	lock, ok := l.locks[id]
	if !ok {
		lock = &conversationLock{}
		l.locks[id] = lock
	}
	lock.refs++
	l.mu.Unlock()

	lock.mu.Lock()

	return func() {
		lock.mu.Unlock()

		l.mu.Lock()
		lock.refs--
		if lock.refs == 0 {
			delete(l.locks, id)
		}
		l.mu.Unlock()
	}
}

// Len returns the number of conversations currently locked or waited on
func (l *ConversationLocks) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.locks)
}

// Middleware wraps every handler with the lock of the update's conversation.
// Updates without a conversation run unlocked.
func (l *ConversationLocks) Middleware(next bot.HandlerFunc) bot.HandlerFunc {
	return func(ctx context.Context, b *bot.Bot, update *models.Update) {
		id, ok := conversationID(update)
		if !ok {
			next(ctx, b, update)
			return
		}

		unlock := l.Lock(id)
		defer unlock()

		next(ctx, b, update)
	}
}

package storage

import (
	"context"
	"database/sql"
	"errors"

	"github.com/ad/gitelegram-greeter-bot/internal/domain"
	"github.com/ad/gitelegram-greeter-bot/internal/logger"
)

// SQLiteSessionStore persists sessions in the sessions table.
// All queries go through a DBQueue.
type SQLiteSessionStore struct {
	db     *sql.DB
	queue  *DBQueue
	logger *logger.Logger
}

// NewSQLiteSessionStore wraps an open, migrated database
func NewSQLiteSessionStore(db *sql.DB, log *logger.Logger) *SQLiteSessionStore {
	return &SQLiteSessionStore{
		db:     db,
		queue:  NewDBQueue(db),
		logger: log,
	}
}

// OpenSQLiteSessionStore opens the database at path, applies migrations and
// returns a store that owns the connection
func OpenSQLiteSessionStore(path string, log *logger.Logger) (*SQLiteSessionStore, error) {
	db, err := OpenSQLite(path)
	if err != nil {
		return nil, err
	}

	if err := RunMigrations(db, log); err != nil {
		db.Close()
		return nil, err
	}

	return NewSQLiteSessionStore(db, log), nil
}

// Get returns the stored session, or an empty one for an unknown conversation
func (s *SQLiteSessionStore) Get(ctx context.Context, conversationID int64) (*domain.Session, error) {
	session := &domain.Session{ConversationID: conversationID}

	err := s.queue.Execute(ctx, func(ctx context.Context, db *sql.DB) error {
		row := db.QueryRowContext(ctx, `
			SELECT locale
			FROM sessions
			WHERE conversation_id = ?
		`, conversationID)

		return row.Scan(&session.Locale)
	})

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			s.logger.Debug("session not found", "conversation_id", conversationID)
			return session, nil
		}
		s.logger.Error("failed to get session", "conversation_id", conversationID, "error", err)
		return nil, err
	}

	return session, nil
}

// SetLocale inserts or updates the conversation's locale
func (s *SQLiteSessionStore) SetLocale(ctx context.Context, conversationID int64, locale string) error {
	err := s.queue.Execute(ctx, func(ctx context.Context, db *sql.DB) error {
		_, err := db.ExecContext(ctx, `
			INSERT INTO sessions (conversation_id, locale)
			VALUES (?, ?)
			ON CONFLICT(conversation_id) DO UPDATE SET
				locale = excluded.locale,
				updated_at = CURRENT_TIMESTAMP
		`, conversationID, locale)
		return err
	})

	if err != nil {
		s.logger.Error("failed to set session locale", "conversation_id", conversationID, "locale", locale, "error", err)
		return err
	}

	s.logger.Debug("session locale stored", "conversation_id", conversationID, "locale", locale)
	return nil
}

// Close stops the queue and closes the database
func (s *SQLiteSessionStore) Close() error {
	s.queue.Close()
	return s.db.Close()
}

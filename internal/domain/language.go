package domain

import (
	"context"
	"errors"
	"fmt"
)

// ErrUnsupportedLocale is returned when a locale code is not in the catalog
var ErrUnsupportedLocale = errors.New("unsupported locale")

// LocaleSet describes the locales a catalog can render
type LocaleSet interface {
	Locales() []string
	DefaultLocale() string
	IsSupported(code string) bool
}

// LanguageSelector drives the per-conversation language state:
// Unset -> Selected(locale), re-enterable with any other supported locale.
type LanguageSelector struct {
	sessions SessionStore
	locales  LocaleSet
	logger   Logger
}

// NewLanguageSelector creates a new LanguageSelector
func NewLanguageSelector(sessions SessionStore, locales LocaleSet, logger Logger) *LanguageSelector {
	return &LanguageSelector{
		sessions: sessions,
		locales:  locales,
		logger:   logger,
	}
}

// Choices returns the supported locales in menu order
func (s *LanguageSelector) Choices() []string {
	choices := s.locales.Locales()
	out := make([]string, len(choices))
	copy(out, choices)
	return out
}

// Select stores the locale for the conversation. Unsupported codes are
// rejected with ErrUnsupportedLocale and the session is left untouched.
func (s *LanguageSelector) Select(ctx context.Context, conversationID int64, code string) error {
	if !s.locales.IsSupported(code) {
		s.logger.Warn("rejected unsupported locale", "conversation_id", conversationID, "locale", code)
		return fmt.Errorf("%w: %q", ErrUnsupportedLocale, code)
	}

	if err := s.sessions.SetLocale(ctx, conversationID, code); err != nil {
		return fmt.Errorf("failed to store locale: %w", err)
	}

	s.logger.Info("locale selected", "conversation_id", conversationID, "locale", code)
	return nil
}

// EffectiveLocale returns the conversation's locale, or the default locale when
// none was selected or the stored one is no longer supported.
func (s *LanguageSelector) EffectiveLocale(ctx context.Context, conversationID int64) (string, error) {
	session, err := s.sessions.Get(ctx, conversationID)
	if err != nil {
		return s.locales.DefaultLocale(), fmt.Errorf("failed to load session: %w", err)
	}

	if session.HasLocale() && s.locales.IsSupported(session.Locale) {
		return session.Locale, nil
	}

	return s.locales.DefaultLocale(), nil
}

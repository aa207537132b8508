// Package prefs stores per-user display preferences and resolves the locale of a request.
package prefs

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"
	"golang.org/x/text/language"

	"pharmadash/internal/kv"
)

const keyPrefix = "pref:lang:"

var (
	ErrNotSet      = errors.New("language preference not set")
	ErrUnsupported = errors.New("unsupported language")
	ErrNoUser      = errors.New("user id is required")
)

// Store keeps the preferred display language of each user.
type Store struct {
	kv        kv.KV
	supported []language.Tag
	matcher   language.Matcher
	logger    *zap.Logger
}

// NewStore creates a Store. The first supported tag is the default locale.
func NewStore(store kv.KV, supported []language.Tag, logger *zap.Logger) (*Store, error) {
	if len(supported) == 0 {
		return nil, errors.New("prefs: at least one supported language is required")
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Store{
		kv:        store,
		supported: supported,
		matcher:   language.NewMatcher(supported),
		logger:    logger,
	}, nil
}

// Default returns the locale used when nothing else applies.
func (s *Store) Default() language.Tag { return s.supported[0] }

// Supported returns the languages the service can present.
func (s *Store) Supported() []language.Tag { return s.supported }

// Get returns the stored language of userID or ErrNotSet.
func (s *Store) Get(ctx context.Context, userID string) (language.Tag, error) {
	if userID == "" {
		return language.Und, ErrNoUser
	}
	v, err := s.kv.Get(ctx, keyPrefix+userID)
	if errors.Is(err, kv.ErrMiss) {
		return language.Und, ErrNotSet
	}
	if err != nil {
		return language.Und, fmt.Errorf("load language of %s: %w", userID, err)
	}
	tag, err := language.Parse(v)
	if err != nil {
		return language.Und, ErrNotSet
	}
	return tag, nil
}

// Set stores the language of userID after matching it against the supported set.
// It returns the tag actually stored.
func (s *Store) Set(ctx context.Context, userID, lang string) (language.Tag, error) {
	if userID == "" {
		return language.Und, ErrNoUser
	}
	requested, err := language.Parse(lang)
	if err != nil {
		return language.Und, fmt.Errorf("%w: %q", ErrUnsupported, lang)
	}
	tag, ok := s.match(requested)
	if !ok {
		return language.Und, fmt.Errorf("%w: %q", ErrUnsupported, lang)
	}
	if err := s.kv.Set(ctx, keyPrefix+userID, tag.String(), 0); err != nil {
		return language.Und, fmt.Errorf("save language of %s: %w", userID, err)
	}
	return tag, nil
}

// Clear forgets the stored language of userID. Clearing an unset preference is not an error.
func (s *Store) Clear(ctx context.Context, userID string) error {
	if userID == "" {
		return ErrNoUser
	}
	if err := s.kv.Delete(ctx, keyPrefix+userID); err != nil {
		return fmt.Errorf("clear language of %s: %w", userID, err)
	}
	return nil
}

// Resolve picks the locale of a request: explicit, then the stored preference of
// userID, then the Accept-Language header, then the default.
func (s *Store) Resolve(ctx context.Context, explicit language.Tag, userID, acceptLanguage string) language.Tag {
	if explicit != language.Und {
		return explicit
	}

	if userID != "" {
		tag, err := s.Get(ctx, userID)
		switch {
		case err == nil:
			return tag
		case !errors.Is(err, ErrNotSet):
			s.logger.Warn("language preference lookup failed", zap.String("user_id", userID), zap.Error(err))
		}
	}

	if acceptLanguage != "" {
		tags, _, err := language.ParseAcceptLanguage(acceptLanguage)
		if err == nil && len(tags) > 0 {
			if tag, ok := s.match(tags...); ok {
				return tag
			}
		}
	}
	return s.Default()
}

func (s *Store) match(tags ...language.Tag) (language.Tag, bool) {
	_, idx, conf := s.matcher.Match(tags...)
	if conf == language.No {
		return language.Und, false
	}
	return s.supported[idx], true
}

// ParseTags parses a comma separated list such as "en,de,hi".
func ParseTags(list []string) ([]language.Tag, error) {
	tags := make([]language.Tag, 0, len(list))
	for _, v := range list {
		tag, err := language.Parse(v)
		if err != nil {
			return nil, fmt.Errorf("parse language %q: %w", v, err)
		}
		tags = append(tags, tag)
	}
	return tags, nil
}

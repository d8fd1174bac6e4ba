package session

import (
	"fmt"
	"sync"

	"github.com/gpt-relay-bot/internal/models"
	"github.com/patrickmn/go-cache"
	"github.com/sirupsen/logrus"
)

// Store keeps per-user transient state. Sessions are created lazily with the
// default language and never evicted: entries live for the process lifetime,
// matching the lifetime of the interaction log.
type Store struct {
	sessions *cache.Cache
	mu       sync.Mutex
	logger   *logrus.Logger
}

// NewStore creates a new session store
func NewStore(logger *logrus.Logger) *Store {
	return &Store{
		sessions: cache.New(cache.NoExpiration, cache.NoExpiration),
		logger:   logger,
	}
}

// Get returns the user's session, creating a default-language one if absent.
func (s *Store) Get(userID int64) models.Session {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.getOrCreate(userID)
}

// SetLanguage overwrites the user's selected language.
func (s *Store) SetLanguage(userID int64, lang models.Language) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess := s.getOrCreate(userID)
	sess.Language = lang
	s.sessions.Set(key(userID), sess, cache.NoExpiration)

	s.logger.WithFields(logrus.Fields{
		"user_id":  userID,
		"language": lang,
	}).Debug("Session language updated")
}

// SetLastQuestion overwrites the user's last question.
func (s *Store) SetLastQuestion(userID int64, text string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess := s.getOrCreate(userID)
	sess.LastQuestion = text
	s.sessions.Set(key(userID), sess, cache.NoExpiration)
}

// Count returns the number of live sessions.
func (s *Store) Count() int {
	return s.sessions.ItemCount()
}

// getOrCreate must be called with the mutex held: go-cache serializes single
// operations but not the read-modify-write sequences above.
func (s *Store) getOrCreate(userID int64) models.Session {
	if val, found := s.sessions.Get(key(userID)); found {
		return val.(models.Session)
	}

	sess := models.Session{
		UserID:   userID,
		Language: models.DefaultLanguage,
	}
	s.sessions.Set(key(userID), sess, cache.NoExpiration)
	return sess
}

func key(userID int64) string {
	return fmt.Sprintf("session:%d", userID)
}

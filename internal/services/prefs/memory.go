package prefs

import (
	"context"
	"fmt"

	"github.com/gpt-relay-bot/internal/models"
	"github.com/patrickmn/go-cache"
)

// MemoryStore is a non-persistent backend for local runs and tests.
type MemoryStore struct {
	languages *cache.Cache
}

// NewMemoryStore creates an in-memory preference store
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		languages: cache.New(cache.NoExpiration, cache.NoExpiration),
	}
}

// Save upserts the user's language.
func (m *MemoryStore) Save(ctx context.Context, userID int64, lang models.Language) error {
	m.languages.Set(fmt.Sprintf("%d", userID), lang, cache.NoExpiration)
	return nil
}

// Statistics aggregates language counts across all users.
func (m *MemoryStore) Statistics(ctx context.Context) ([]models.LanguageStat, error) {
	counts := make(map[models.Language]int)
	for _, item := range m.languages.Items() {
		counts[item.Object.(models.Language)]++
	}

	stats := make([]models.LanguageStat, 0, len(counts))
	for lang, count := range counts {
		stats = append(stats, models.LanguageStat{Language: lang, Count: count})
	}
	sortStats(stats)
	return stats, nil
}

// Close is a no-op for the memory backend.
func (m *MemoryStore) Close() error {
	return nil
}

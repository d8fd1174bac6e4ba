package prefs

import (
	"context"
	"fmt"
	"sort"

	"github.com/gpt-relay-bot/internal/config"
	"github.com/gpt-relay-bot/internal/models"
	"github.com/sirupsen/logrus"
)

// Store persists user language preferences. Save has upsert semantics keyed
// uniquely by user ID.
type Store interface {
	Save(ctx context.Context, userID int64, lang models.Language) error
	Statistics(ctx context.Context) ([]models.LanguageStat, error)
	Close() error
}

// Manager selects a storage backend and absorbs its failures: persistence
// errors are logged here and never propagate to the dispatcher.
type Manager struct {
	store  Store
	logger *logrus.Logger
}

// NewManager creates a preference store manager for the configured backend
func NewManager(cfg *config.StorageConfig, logger *logrus.Logger) (*Manager, error) {
	var (
		store Store
		err   error
	)

	switch cfg.Type {
	case "sqlite":
		store, err = NewSQLiteStore(cfg.SQLite.Path)
	case "redis":
		store, err = NewRedisStore(&cfg.Redis)
	case "memory":
		store = NewMemoryStore()
	default:
		return nil, fmt.Errorf("unsupported storage type: %s", cfg.Type)
	}
	if err != nil {
		return nil, err
	}

	logger.WithField("type", cfg.Type).Info("Preference store initialized")

	return &Manager{store: store, logger: logger}, nil
}

// Save upserts the user's language choice. Failures are logged and swallowed:
// the selection still takes effect for the session.
func (m *Manager) Save(ctx context.Context, userID int64, lang models.Language) {
	if err := m.store.Save(ctx, userID, lang); err != nil {
		m.logger.WithError(err).WithFields(logrus.Fields{
			"user_id":  userID,
			"language": lang,
		}).Error("Failed to save language preference")
	}
}

// Statistics returns per-language selection counts sorted by count descending.
// On failure it returns an empty result, which renders as "no statistics".
func (m *Manager) Statistics(ctx context.Context) []models.LanguageStat {
	stats, err := m.store.Statistics(ctx)
	if err != nil {
		m.logger.WithError(err).Error("Failed to query language statistics")
		return nil
	}
	return stats
}

// Close releases the underlying backend.
func (m *Manager) Close() error {
	return m.store.Close()
}

// sortStats orders stats by count descending; ties break by label ascending so
// the rendering is deterministic.
func sortStats(stats []models.LanguageStat) {
	sort.Slice(stats, func(i, j int) bool {
		if stats[i].Count != stats[j].Count {
			return stats[i].Count > stats[j].Count
		}
		return stats[i].Language < stats[j].Language
	})
}

package prefs

import (
	"context"
	"errors"
	"io"
	"testing"

	"github.com/gpt-relay-bot/internal/config"
	"github.com/gpt-relay-bot/internal/models"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func discardLogger() *logrus.Logger {
	log := logrus.New()
	log.SetOutput(io.Discard)
	return log
}

func TestMemoryStoreUpsert(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()

	require.NoError(t, s.Save(ctx, 1, models.LanguageRussian))
	require.NoError(t, s.Save(ctx, 1, models.LanguagePolish)) // overwrite, not a second row

	stats, err := s.Statistics(ctx)
	require.NoError(t, err)
	require.Len(t, stats, 1)
	assert.Equal(t, models.LanguagePolish, stats[0].Language)
	assert.Equal(t, 1, stats[0].Count)
}

func TestMemoryStoreStatisticsOrdering(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()

	for i := int64(0); i < 3; i++ {
		require.NoError(t, s.Save(ctx, i, models.LanguageEnglish))
	}
	require.NoError(t, s.Save(ctx, 10, models.LanguageRussian))
	require.NoError(t, s.Save(ctx, 11, models.LanguagePolish))

	stats, err := s.Statistics(ctx)
	require.NoError(t, err)
	require.Len(t, stats, 3)
	assert.Equal(t, models.LanguageEnglish, stats[0].Language)
	assert.Equal(t, 3, stats[0].Count)
	// tie between Russian and Polish breaks by label ascending
	assert.Equal(t, models.LanguagePolish, stats[1].Language)
	assert.Equal(t, models.LanguageRussian, stats[2].Language)
}

func TestManagerUsesConfiguredBackend(t *testing.T) {
	m, err := NewManager(&config.StorageConfig{Type: "memory"}, discardLogger())
	require.NoError(t, err)
	defer m.Close()

	ctx := context.Background()
	m.Save(ctx, 5, models.LanguageRussian)

	stats := m.Statistics(ctx)
	require.Len(t, stats, 1)
	assert.Equal(t, models.LanguageRussian, stats[0].Language)
}

func TestManagerRejectsUnknownBackend(t *testing.T) {
	_, err := NewManager(&config.StorageConfig{Type: "mongodb"}, discardLogger())
	assert.Error(t, err)
}

type failingStore struct{}

func (failingStore) Save(ctx context.Context, userID int64, lang models.Language) error {
	return errors.New("connection refused")
}

func (failingStore) Statistics(ctx context.Context) ([]models.LanguageStat, error) {
	return nil, errors.New("connection refused")
}

func (failingStore) Close() error { return nil }

func TestManagerAbsorbsStoreFailures(t *testing.T) {
	m := &Manager{store: failingStore{}, logger: discardLogger()}

	ctx := context.Background()
	// must not panic and must not propagate
	m.Save(ctx, 1, models.LanguageEnglish)
	assert.Empty(t, m.Statistics(ctx))
}

func TestSQLiteStoreUpsertAndStatistics(t *testing.T) {
	s, err := NewSQLiteStore("file::memory:?cache=shared")
	require.NoError(t, err)
	defer s.Close()

	ctx := context.Background()
	require.NoError(t, s.Save(ctx, 1, models.LanguageRussian))
	require.NoError(t, s.Save(ctx, 2, models.LanguageRussian))
	require.NoError(t, s.Save(ctx, 3, models.LanguagePolish))
	require.NoError(t, s.Save(ctx, 3, models.LanguageEnglish)) // upsert overwrites

	stats, err := s.Statistics(ctx)
	require.NoError(t, err)
	require.Len(t, stats, 2)
	assert.Equal(t, models.LanguageRussian, stats[0].Language)
	assert.Equal(t, 2, stats[0].Count)
	assert.Equal(t, models.LanguageEnglish, stats[1].Language)
	assert.Equal(t, 1, stats[1].Count)
}

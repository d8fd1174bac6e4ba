package prefs

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/gpt-relay-bot/internal/config"
	"github.com/gpt-relay-bot/internal/models"
)

const languageHashKey = "prefs:language"

// RedisStore keeps preferences in a single hash userID -> language. Counts
// are aggregated client-side; the user base this serves fits one HGETALL.
type RedisStore struct {
	client *redis.Client
}

// NewRedisStore connects to redis and verifies the connection
func NewRedisStore(cfg *config.RedisConfig) (*RedisStore, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}

	return &RedisStore{client: client}, nil
}

// Save upserts the user's language.
func (r *RedisStore) Save(ctx context.Context, userID int64, lang models.Language) error {
	return r.client.HSet(ctx, languageHashKey, strconv.FormatInt(userID, 10), string(lang)).Err()
}

// Statistics aggregates language counts across all users.
func (r *RedisStore) Statistics(ctx context.Context) ([]models.LanguageStat, error) {
	entries, err := r.client.HGetAll(ctx, languageHashKey).Result()
	if err != nil {
		return nil, err
	}

	counts := make(map[models.Language]int)
	for _, lang := range entries {
		counts[models.Language(lang)]++
	}

	stats := make([]models.LanguageStat, 0, len(counts))
	for lang, count := range counts {
		stats = append(stats, models.LanguageStat{Language: lang, Count: count})
	}
	sortStats(stats)
	return stats, nil
}

// Close closes the redis client.
func (r *RedisStore) Close() error {
	return r.client.Close()
}

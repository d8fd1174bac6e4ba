package cache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"time"

	"github.com/gpt-relay-bot/internal/config"
	"github.com/gpt-relay-bot/internal/models"
	"github.com/patrickmn/go-cache"
	"github.com/sirupsen/logrus"
)

// Service caches rendered answers so an identical question in the same
// language skips the Q&A and translation round-trips.
type Service interface {
	Get(ctx context.Context, question string, lang models.Language) (string, bool)
	Set(ctx context.Context, question string, lang models.Language, answer string) error
	Clear(ctx context.Context) error
}

type entry struct {
	Answer    string
	CreatedAt time.Time
}

// Cache implements the caching service
type Cache struct {
	enabled bool
	cache   *cache.Cache
	logger  *logrus.Logger
	maxSize int
}

// NewCache creates a new cache service
func NewCache(cfg *config.CacheConfig, logger *logrus.Logger) Service {
	if !cfg.Enabled {
		return &Cache{enabled: false}
	}

	return &Cache{
		enabled: true,
		cache:   cache.New(cfg.TTL, cfg.TTL*2),
		logger:  logger,
		maxSize: cfg.MaxSize,
	}
}

// Get retrieves a cached answer
func (c *Cache) Get(ctx context.Context, question string, lang models.Language) (string, bool) {
	if !c.enabled {
		return "", false
	}

	key := generateKey(question, lang)
	if val, found := c.cache.Get(key); found {
		e := val.(*entry)
		c.logger.WithFields(logrus.Fields{
			"language": lang,
			"age":      time.Since(e.CreatedAt),
		}).Debug("Answer cache hit")
		return e.Answer, true
	}

	return "", false
}

// Set stores an answer in cache
func (c *Cache) Set(ctx context.Context, question string, lang models.Language, answer string) error {
	if !c.enabled {
		return nil
	}

	if c.cache.ItemCount() >= c.maxSize {
		c.logger.Warn("Cache size limit reached, clearing expired entries")
		c.cache.DeleteExpired()
	}

	c.cache.SetDefault(generateKey(question, lang), &entry{
		Answer:    answer,
		CreatedAt: time.Now(),
	})
	return nil
}

// Clear removes all cached entries
func (c *Cache) Clear(ctx context.Context) error {
	if !c.enabled {
		return nil
	}

	c.cache.Flush()
	c.logger.Info("Answer cache cleared")
	return nil
}

func generateKey(question string, lang models.Language) string {
	data := fmt.Sprintf("%s:%s", lang, question)
	hash := sha256.Sum256([]byte(data))
	return hex.EncodeToString(hash[:])
}

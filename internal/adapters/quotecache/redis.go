package quotecache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/go-faster/errors"
	"github.com/go-redis/redis/v8"

	"github.com/nezferoz/fashion-park-sub001/internal/models"
)

// QuoteCacheRedis caches rate API responses in redis with a TTL.
// It implements ports.QuoteCache
type QuoteCacheRedis struct {
	rdb *redis.Client
	ttl time.Duration
}

func NewQuoteCacheRedis(rdb *redis.Client, ttl time.Duration) *QuoteCacheRedis {
	return &QuoteCacheRedis{rdb: rdb, ttl: ttl}
}

// Get returns the cached quotes for key, reporting a miss on redis.Nil
func (c *QuoteCacheRedis) Get(ctx context.Context, key string) ([]models.ShippingQuote, bool, error) {
	data, err := c.rdb.Get(ctx, key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("error reading quote cache: %w", err)
	}

	var quotes []models.ShippingQuote
	if err = json.Unmarshal(data, &quotes); err != nil {
		return nil, false, fmt.Errorf("error decoding cached quotes: %w", err)
	}
	return quotes, true, nil
}

// Set stores the quotes under key for the configured TTL
func (c *QuoteCacheRedis) Set(ctx context.Context, key string, quotes []models.ShippingQuote) error {
	data, err := json.Marshal(quotes)
	if err != nil {
		return fmt.Errorf("error encoding quotes for cache: %w", err)
	}
	if err = c.rdb.Set(ctx, key, data, c.ttl).Err(); err != nil {
		return fmt.Errorf("error writing quote cache: %w", err)
	}
	return nil
}

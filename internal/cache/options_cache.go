package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"caa_portal_backend/internal/config"
	"caa_portal_backend/internal/metrics"
	"caa_portal_backend/internal/models"

	"github.com/redis/go-redis/v9"
)

const (
	groupedKey        = "caa:options:all"
	categoryKeyPrefix = "caa:options:category:"
	generationKey     = "caa:options:generation"
)

// NewRedisClient builds a go-redis client from configuration.
func NewRedisClient(cfg config.RedisConfig) *redis.Client {
	return redis.NewClient(&redis.Options{
		Addr:         cfg.Addr,
		Password:     cfg.Password,
		DB:           cfg.DB,
		DialTimeout:  5 * time.Second,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
		PoolSize:     10,
		MinIdleConns: 2,
	})
}

// OptionsCache keeps the read views of the options registry in Redis.
type OptionsCache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewOptionsCache wraps client; entries expire after ttl.
func NewOptionsCache(client *redis.Client, ttl time.Duration) *OptionsCache {
	return &OptionsCache{client: client, ttl: ttl}
}

func categoryKey(category string) string {
	return categoryKeyPrefix + category
}

func (c *OptionsCache) get(ctx context.Context, key string, dst interface{}) (bool, error) {
	raw, err := c.client.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		metrics.OptionsCacheLookups.WithLabelValues("miss").Inc()
		return false, nil
	}
	if err != nil {
		metrics.OptionsCacheLookups.WithLabelValues("error").Inc()
		return false, fmt.Errorf("redis get %s: %w", key, err)
	}
	if err := json.Unmarshal(raw, dst); err != nil {
		metrics.OptionsCacheLookups.WithLabelValues("error").Inc()
		return false, fmt.Errorf("decode cached %s: %w", key, err)
	}
	metrics.OptionsCacheLookups.WithLabelValues("hit").Inc()
	return true, nil
}

// Generation returns the invalidation counter. A reader takes it before loading
// from the database and hands it back to SetGrouped/SetCategory.
func (c *OptionsCache) Generation(ctx context.Context) (int64, error) {
	gen, err := c.client.Get(ctx, generationKey).Int64()
	if errors.Is(err, redis.Nil) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("redis get %s: %w", generationKey, err)
	}
	return gen, nil
}

// set stores value only while the generation is still gen. A write racing with
// Invalidate is dropped, so a view loaded before an update is never cached after it.
func (c *OptionsCache) set(ctx context.Context, gen int64, key string, value interface{}) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("encode %s for cache: %w", key, err)
	}

	err = c.client.Watch(ctx, func(tx *redis.Tx) error {
		current, err := tx.Get(ctx, generationKey).Int64()
		if err != nil && !errors.Is(err, redis.Nil) {
			return err
		}
		if current != gen {
			return redis.TxFailedErr
		}
		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, key, raw, c.ttl)
			return nil
		})
		return err
	}, generationKey)

	if errors.Is(err, redis.TxFailedErr) {
		metrics.OptionsCacheLookups.WithLabelValues("stale_write").Inc()
		return nil
	}
	if err != nil {
		return fmt.Errorf("redis set %s: %w", key, err)
	}
	return nil
}

// GetGrouped returns the cached category -> value -> label view.
func (c *OptionsCache) GetGrouped(ctx context.Context) (models.GroupedOptions, bool, error) {
	var grouped models.GroupedOptions
	ok, err := c.get(ctx, groupedKey, &grouped)
	return grouped, ok, err
}

// SetGrouped stores the grouped view loaded under generation gen.
func (c *OptionsCache) SetGrouped(ctx context.Context, gen int64, grouped models.GroupedOptions) error {
	return c.set(ctx, gen, groupedKey, grouped)
}

// GetCategory returns the cached choices of one category.
func (c *OptionsCache) GetCategory(ctx context.Context, category string) ([]models.OptionChoice, bool, error) {
	var choices []models.OptionChoice
	ok, err := c.get(ctx, categoryKey(category), &choices)
	return choices, ok, err
}

// SetCategory stores the choices of one category loaded under generation gen.
func (c *OptionsCache) SetCategory(ctx context.Context, gen int64, category string, choices []models.OptionChoice) error {
	if choices == nil {
		choices = []models.OptionChoice{}
	}
	return c.set(ctx, gen, categoryKey(category), choices)
}

// Invalidate bumps the generation and drops the grouped view and the views of
// the given categories.
func (c *OptionsCache) Invalidate(ctx context.Context, categories ...string) error {
	keys := []string{groupedKey}
	for _, cat := range categories {
		keys = append(keys, categoryKey(cat))
	}
	_, err := c.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Incr(ctx, generationKey)
		pipe.Del(ctx, keys...)
		return nil
	})
	if err != nil {
		return fmt.Errorf("redis invalidate options: %w", err)
	}
	return nil
}

// Ping checks the Redis connection.
func (c *OptionsCache) Ping(ctx context.Context) error {
	if err := c.client.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("redis ping failed: %w", err)
	}
	return nil
}

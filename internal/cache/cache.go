package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/rs/zerolog"

	"dynamic-pricing-service/internal/config"
	"dynamic-pricing-service/internal/entity"
)

var logger = zerolog.New(os.Stdout).With().Timestamp().Str("component", "cache").Logger()

// NewRedisClient creates a redis client and checks the connection.
func NewRedisClient(cfg config.RedisConfig) *redis.Client {
	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := rdb.Ping(ctx).Err(); err != nil {
		logger.Warn().Err(err).Msgf("Failed to connect to Redis at %s, cache reads will miss", cfg.Addr)
	} else {
		logger.Info().Msgf("Connected to Redis at %s", cfg.Addr)
	}
	return rdb
}

// RecommendationCache stores computed recommendations per SKU. Each SKU owns one hash whose
// fields are the parameter signatures it was priced with, so a ledger change drops them all.
type RecommendationCache struct {
	rdb *redis.Client
	ttl time.Duration
}

// NewRecommendationCache creates a new instance of RecommendationCache.
func NewRecommendationCache(rdb *redis.Client, ttl time.Duration) *RecommendationCache {
	return &RecommendationCache{rdb: rdb, ttl: ttl}
}

func recommendationKey(sku string) string {
	return fmt.Sprintf("pricing:%s", sku)
}

// Get returns the cached recommendation, or nil on a miss.
func (c *RecommendationCache) Get(ctx context.Context, sku string, params entity.PricingParams) (*entity.PricingRecommendation, error) {
	data, err := c.rdb.HGet(ctx, recommendationKey(sku), params.Signature()).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return nil, err
	}

	var rec entity.PricingRecommendation
	if err := json.Unmarshal([]byte(data), &rec); err != nil {
		return nil, fmt.Errorf("could not unmarshal recommendation for %s: %w", sku, err)
	}
	return &rec, nil
}

// Set caches a recommendation and refreshes the SKU's expiry.
func (c *RecommendationCache) Set(ctx context.Context, rec *entity.PricingRecommendation, params entity.PricingParams) error {
	data, err := json.Marshal(rec)
	if err != nil {
		return err
	}

	key := recommendationKey(rec.SKU)
	pipe := c.rdb.TxPipeline()
	pipe.HSet(ctx, key, params.Signature(), data)
	pipe.Expire(ctx, key, c.ttl)
	_, err = pipe.Exec(ctx)
	return err
}

// Invalidate drops every cached recommendation of a SKU.
func (c *RecommendationCache) Invalidate(ctx context.Context, sku string) error {
	return c.rdb.Del(ctx, recommendationKey(sku)).Err()
}

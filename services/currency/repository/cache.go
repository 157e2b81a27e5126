package repository

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/piresc/kasbot/internal/pkg/constants"
	"github.com/piresc/kasbot/internal/pkg/database"
)

// ErrRateNotCached is returned when no rate is stored for a pair
var ErrRateNotCached = fmt.Errorf("exchange rate not cached")

// RateCacheRepo stores exchange rates in Redis. The fresh entry
// expires after the configured TTL; a second entry without TTL keeps
// the last known rate for the stale-fallback rung.
type RateCacheRepo struct {
	redisClient *database.RedisClient
	ttl         time.Duration
}

// NewRateCacheRepo creates a new rate cache repository
func NewRateCacheRepo(redisClient *database.RedisClient, ttl time.Duration) *RateCacheRepo {
	if ttl <= 0 {
		ttl = time.Hour
	}
	return &RateCacheRepo{
		redisClient: redisClient,
		ttl:         ttl,
	}
}

// GetRate returns the fresh cached rate for a pair
func (r *RateCacheRepo) GetRate(ctx context.Context, from, to string) (float64, error) {
	key := fmt.Sprintf(constants.KeyExchangeRate, from, to)

	val, err := r.redisClient.Get(ctx, key)
	if err == redis.Nil {
		return 0, ErrRateNotCached
	}
	if err != nil {
		return 0, fmt.Errorf("failed to get cached rate: %w", err)
	}

	rate, err := strconv.ParseFloat(val, 64)
	if err != nil {
		return 0, fmt.Errorf("failed to parse cached rate: %w", err)
	}

	return rate, nil
}

// SetRate stores a rate under both the expiring and the last-known keys
func (r *RateCacheRepo) SetRate(ctx context.Context, from, to string, rate float64) error {
	val := strconv.FormatFloat(rate, 'f', -1, 64)

	key := fmt.Sprintf(constants.KeyExchangeRate, from, to)
	if err := r.redisClient.Set(ctx, key, val, r.ttl); err != nil {
		return fmt.Errorf("failed to cache rate: %w", err)
	}

	lastKey := fmt.Sprintf(constants.KeyLastRate, from, to)
	if err := r.redisClient.Set(ctx, lastKey, val, 0); err != nil {
		return fmt.Errorf("failed to store last known rate: %w", err)
	}

	return nil
}

// GetLastRate returns the last rate ever stored for a pair
func (r *RateCacheRepo) GetLastRate(ctx context.Context, from, to string) (float64, error) {
	key := fmt.Sprintf(constants.KeyLastRate, from, to)

	val, err := r.redisClient.Get(ctx, key)
	if err == redis.Nil {
		return 0, ErrRateNotCached
	}
	if err != nil {
		return 0, fmt.Errorf("failed to get last known rate: %w", err)
	}

	rate, err := strconv.ParseFloat(val, 64)
	if err != nil {
		return 0, fmt.Errorf("failed to parse last known rate: %w", err)
	}

	return rate, nil
}

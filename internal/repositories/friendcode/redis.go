// Package friendcode stores players' friend codes, keyed by Discord ID.
package friendcode

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strconv"

	"github.com/redis/go-redis/v9"
)

const (
	// Key for the friend-code hash in Redis
	fcKey = "queuebot:friendcodes"
)

// ErrNotFound is returned when a player has no friend code set
var ErrNotFound = errors.New("friend code not found")

// ErrInvalidFormat is returned for malformed friend codes
var ErrInvalidFormat = errors.New("friend code must look like xxxx-xxxx-xxxx")

var fcPattern = regexp.MustCompile(`^[0-9]{4}-[0-9]{4}-[0-9]{4}(-2)?$`)

// IsValid reports whether a friend code is well formed
func IsValid(fc string) bool {
	return fcPattern.MatchString(fc)
}

// Config holds configuration for the Redis friend-code repository
type Config struct {
	// Redis client
	RedisClient *redis.Client
}

// redisRepository implements the Repository interface using Redis
type redisRepository struct {
	client *redis.Client
}

// NewRedis creates a new Redis-backed friend-code repository
func NewRedis(cfg *Config) (*redisRepository, error) {
	if cfg == nil {
		return nil, errors.New("config cannot be nil")
	}

	if cfg.RedisClient == nil {
		return nil, errors.New("redis client cannot be nil")
	}

	if err := cfg.RedisClient.Ping(context.Background()).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	return &redisRepository{
		client: cfg.RedisClient,
	}, nil
}

// Set stores a player's friend code
func (r *redisRepository) Set(ctx context.Context, discordID int64, fc string) error {
	if !IsValid(fc) {
		return ErrInvalidFormat
	}

	if err := r.client.HSet(ctx, fcKey, strconv.FormatInt(discordID, 10), fc).Err(); err != nil {
		return fmt.Errorf("failed to save friend code: %w", err)
	}
	return nil
}

// Get retrieves a player's friend code
func (r *redisRepository) Get(ctx context.Context, discordID int64) (string, error) {
	fc, err := r.client.HGet(ctx, fcKey, strconv.FormatInt(discordID, 10)).Result()
	if err != nil {
		if err == redis.Nil {
			return "", ErrNotFound
		}
		return "", fmt.Errorf("failed to get friend code: %w", err)
	}
	return fc, nil
}

// Remove deletes a player's friend code
func (r *redisRepository) Remove(ctx context.Context, discordID int64) error {
	if err := r.client.HDel(ctx, fcKey, strconv.FormatInt(discordID, 10)).Err(); err != nil {
		return fmt.Errorf("failed to remove friend code: %w", err)
	}
	return nil
}

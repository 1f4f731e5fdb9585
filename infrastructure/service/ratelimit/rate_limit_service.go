package ratelimit

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/sirupsen/logrus"

	"github.com/fixora/tasklist/application/port/inbound"
	"github.com/fixora/tasklist/infrastructure/service/logger"
)

const blockKeyPrefix = "blocked:"

// rateLimitService counts attempts per key in Redis
type rateLimitService struct {
	redisClient *redis.Client
	logger      *logrus.Logger
}

// RateLimitConfig configuration for rate limiting
type RateLimitConfig struct {
	Enabled  bool
	RedisURL string
}

// NewRateLimitService returns a Redis backed service, or a no-op one when disabled
func NewRateLimitService(config RateLimitConfig, log *logrus.Logger) (inbound.RateLimitService, error) {
	if !config.Enabled {
		log.Info("Rate limiting disabled")
		return NewNoopRateLimitService(), nil
	}

	opt, err := redis.ParseURL(config.RedisURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse Redis URL: %w", err)
	}

	redisClient := redis.NewClient(opt)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := redisClient.Ping(ctx).Err(); err != nil {
		_ = redisClient.Close()
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	return NewRedisRateLimitService(redisClient, log), nil
}

// NewRedisRateLimitService wraps an existing client
func NewRedisRateLimitService(client *redis.Client, log *logrus.Logger) inbound.RateLimitService {
	return &rateLimitService{
		redisClient: client,
		logger:      log,
	}
}

func (s *rateLimitService) entry(ctx context.Context) *logrus.Entry {
	e := s.logger.WithContext(ctx)
	if cid := logger.CorrelationID(ctx); cid != "" {
		e = e.WithField("correlation_id", cid)
	}
	return e
}

// CheckLimit reports whether key is still under limit
func (s *rateLimitService) CheckLimit(ctx context.Context, key string, limit int, window time.Duration) (bool, error) {
	currentCount, err := s.GetAttempts(ctx, key)
	if err != nil {
		return false, err
	}

	isUnderLimit := currentCount < limit

	s.entry(ctx).WithFields(logrus.Fields{
		"key":         key,
		"current":     currentCount,
		"limit":       limit,
		"under_limit": isUnderLimit,
	}).Debug("Rate limit check")

	return isUnderLimit, nil
}

// Increment bumps the counter; the window starts on the first attempt
func (s *rateLimitService) Increment(ctx context.Context, key string, window time.Duration) error {
	count, err := s.redisClient.Incr(ctx, key).Result()
	if err != nil {
		s.entry(ctx).WithError(err).Error("Failed to increment rate limit counter")
		return fmt.Errorf("failed to increment rate limit: %w", err)
	}

	if count == 1 {
		if err := s.redisClient.Expire(ctx, key, window).Err(); err != nil {
			s.entry(ctx).WithError(err).Error("Failed to set rate limit window")
			return fmt.Errorf("failed to set rate limit window: %w", err)
		}
	}

	s.entry(ctx).WithFields(logrus.Fields{
		"key":    key,
		"count":  count,
		"window": window,
	}).Debug("Rate limit incremented")

	return nil
}

// Block marks key as blocked for duration
func (s *rateLimitService) Block(ctx context.Context, key string, duration time.Duration, reason string) error {
	blockKey := blockKeyPrefix + key

	blockData := map[string]interface{}{
		"reason":     reason,
		"blocked_at": time.Now().Unix(),
		"duration":   duration.Seconds(),
	}

	pipeline := s.redisClient.TxPipeline()
	pipeline.HSet(ctx, blockKey, blockData)
	pipeline.Expire(ctx, blockKey, duration)

	if _, err := pipeline.Exec(ctx); err != nil {
		s.entry(ctx).WithError(err).Error("Failed to block key")
		return fmt.Errorf("failed to block key: %w", err)
	}

	s.entry(ctx).WithFields(logrus.Fields{
		"key":      key,
		"duration": duration,
		"reason":   reason,
	}).Warn("Key blocked due to rate limit exceeded")

	return nil
}

// IsBlocked reports whether key is currently blocked
func (s *rateLimitService) IsBlocked(ctx context.Context, key string) (bool, error) {
	exists, err := s.redisClient.Exists(ctx, blockKeyPrefix+key).Result()
	if err != nil {
		s.entry(ctx).WithError(err).Error("Failed to check block status")
		return false, fmt.Errorf("failed to check block status: %w", err)
	}

	return exists > 0, nil
}

// GetAttempts returns the current counter for key
func (s *rateLimitService) GetAttempts(ctx context.Context, key string) (int, error) {
	count, err := s.redisClient.Get(ctx, key).Int()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return 0, nil
		}
		s.entry(ctx).WithError(err).Error("Failed to get attempts count")
		return 0, fmt.Errorf("failed to get attempts: %w", err)
	}

	return count, nil
}

// noopRateLimitService allows everything; used when rate limiting is disabled
type noopRateLimitService struct{}

func NewNoopRateLimitService() inbound.RateLimitService {
	return noopRateLimitService{}
}

func (noopRateLimitService) CheckLimit(context.Context, string, int, time.Duration) (bool, error) {
	return true, nil
}

func (noopRateLimitService) Increment(context.Context, string, time.Duration) error {
	return nil
}

func (noopRateLimitService) Block(context.Context, string, time.Duration, string) error {
	return nil
}

func (noopRateLimitService) IsBlocked(context.Context, string) (bool, error) {
	return false, nil
}

func (noopRateLimitService) GetAttempts(context.Context, string) (int, error) {
	return 0, nil
}

// Package gateway implements the in-process API gateway: per-client rate
// limiting with a shared Redis counter store and internal request
// forwarding with diagnostic headers.
package gateway

import (
	"context"
	"strings"
	"sync/atomic"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

// Requests allowed per 60-second window, per service class.
const (
	apiRateLimit     = 100
	adminRateLimit   = 20
	paymentRateLimit = 10

	rateLimitWindow  = time.Minute
	counterTimeout   = 250 * time.Millisecond
	fallbackCapacity = 10000
)

// Backend states for the dual-backend limiter.
const (
	backendDegraded int32 = iota
	backendPrimary
)

// CounterStore is the shared, cross-instance counter backend. Incr must
// be an atomic increment-and-read; the first increment of a key starts
// its expiry window.
type CounterStore interface {
	Incr(ctx context.Context, key string, window time.Duration) (int64, error)
	Ping(ctx context.Context) error
}

// RedisCounterStore backs the limiter with Redis INCR + EXPIRE.
type RedisCounterStore struct {
	client *redis.Client
}

func NewRedisCounterStore(client *redis.Client) *RedisCounterStore {
	return &RedisCounterStore{client: client}
}

var _ CounterStore = (*RedisCounterStore)(nil)

func (s *RedisCounterStore) Incr(ctx context.Context, key string, window time.Duration) (int64, error) {
	ctx, cancel := context.WithTimeout(ctx, counterTimeout)
	defer cancel()

	count, err := s.client.Incr(ctx, key).Result()
	if err != nil {
		return 0, err
	}
	if count == 1 {
		if err := s.client.Expire(ctx, key, window).Err(); err != nil {
			return 0, err
		}
	}
	return count, nil
}

func (s *RedisCounterStore) Ping(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, counterTimeout)
	defer cancel()
	return s.client.Ping(ctx).Err()
}

// RateLimitService bounds request throughput per client per service class
// over a fixed 60-second window. Redis is the authoritative backend; on
// any Redis failure the limiter degrades to a process-local counter cache
// and keeps enforcing the same limits. If even the local cache fails the
// request is allowed: availability wins over strict enforcement here.
type RateLimitService struct {
	store  CounterStore
	local  *localCounterCache
	state  atomic.Int32
	logger zerolog.Logger
}

func NewRateLimitService(store CounterStore, logger zerolog.Logger) *RateLimitService {
	s := &RateLimitService{
		store:  store,
		local:  newLocalCounterCache(fallbackCapacity),
		logger: logger,
	}
	// Starts degraded; the first check probes the shared store.
	s.state.Store(backendDegraded)
	return s
}

// Allow reports whether one more request from clientID against the given
// service class fits inside the current window.
func (s *RateLimitService) Allow(ctx context.Context, clientID, serviceType string) bool {
	limit := rateLimitFor(serviceType)
	key := "rate_limit:" + serviceType + ":" + clientID

	if s.store != nil {
		if s.state.Load() == backendDegraded {
			if err := s.store.Ping(ctx); err == nil {
				s.state.Store(backendPrimary)
			}
		}

		if s.state.Load() == backendPrimary {
			count, err := s.store.Incr(ctx, key, rateLimitWindow)
			if err == nil {
				return count <= int64(limit)
			}
			s.state.Store(backendDegraded)
			s.logger.Warn().Err(err).Msg("rate limit store error, falling back to in-memory")
		}
	}

	count, err := s.local.Incr(key, rateLimitWindow)
	if err != nil {
		// Fail open: never block traffic because the limiter itself broke.
		s.logger.Error().Err(err).Msg("in-memory rate limiting error")
		return true
	}
	return count <= int64(limit)
}

func rateLimitFor(serviceType string) int {
	switch strings.ToLower(serviceType) {
	case "admin":
		return adminRateLimit
	case "payment", "payments":
		return paymentRateLimit
	default:
		return apiRateLimit
	}
}

// Healthy reports whether the limiter has a usable backend. The local
// cache always counts as a valid degraded-mode backend.
func (s *RateLimitService) Healthy() bool {
	return s.local != nil
}

// Status names the currently authoritative backend.
func (s *RateLimitService) Status() string {
	if s.store != nil && s.state.Load() == backendPrimary {
		return "Redis-backed rate limiting active"
	}
	return "In-memory rate limiting active (Redis unavailable)"
}

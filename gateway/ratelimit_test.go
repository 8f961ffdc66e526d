package gateway

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeCounterStore is an in-test CounterStore whose failure modes can be
// toggled mid-test to drive backend state transitions.
type fakeCounterStore struct {
	mu       sync.Mutex
	counts   map[string]int64
	failPing bool
	failIncr bool
}

func newFakeCounterStore() *fakeCounterStore {
	return &fakeCounterStore{counts: map[string]int64{}}
}

func (s *fakeCounterStore) Incr(ctx context.Context, key string, window time.Duration) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failIncr {
		return 0, errors.New("store down")
	}
	s.counts[key]++
	return s.counts[key], nil
}

func (s *fakeCounterStore) Ping(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failPing {
		return errors.New("store down")
	}
	return nil
}

func newTestLimiter(store CounterStore) *RateLimitService {
	return NewRateLimitService(store, zerolog.Nop())
}

func TestAllowEnforcesAPILimit(t *testing.T) {
	limiter := newTestLimiter(newFakeCounterStore())
	ctx := context.Background()

	for i := 0; i < apiRateLimit; i++ {
		require.True(t, limiter.Allow(ctx, "1.2.3.4", "api"), "request %d should pass", i+1)
	}
	assert.False(t, limiter.Allow(ctx, "1.2.3.4", "api"), "request over the limit must be rejected")
}

func TestAllowLimitsPerServiceClass(t *testing.T) {
	limiter := newTestLimiter(newFakeCounterStore())
	ctx := context.Background()

	for i := 0; i < adminRateLimit; i++ {
		require.True(t, limiter.Allow(ctx, "1.2.3.4", "admin"))
	}
	assert.False(t, limiter.Allow(ctx, "1.2.3.4", "admin"))

	// Exhausting the admin budget does not touch the api budget.
	assert.True(t, limiter.Allow(ctx, "1.2.3.4", "api"))
}

func TestAllowPaymentAliases(t *testing.T) {
	limiter := newTestLimiter(newFakeCounterStore())
	ctx := context.Background()

	// "payment" and "payments" are distinct keys but share the same limit.
	for i := 0; i < paymentRateLimit; i++ {
		require.True(t, limiter.Allow(ctx, "1.2.3.4", "payment"))
	}
	assert.False(t, limiter.Allow(ctx, "1.2.3.4", "payment"))

	for i := 0; i < paymentRateLimit; i++ {
		require.True(t, limiter.Allow(ctx, "1.2.3.4", "payments"))
	}
	assert.False(t, limiter.Allow(ctx, "1.2.3.4", "payments"))
}

func TestAllowUnknownServiceUsesAPILimit(t *testing.T) {
	assert.Equal(t, apiRateLimit, rateLimitFor("something-else"))
	assert.Equal(t, apiRateLimit, rateLimitFor(""))
	assert.Equal(t, adminRateLimit, rateLimitFor("ADMIN"))
	assert.Equal(t, paymentRateLimit, rateLimitFor("Payments"))
}

func TestAllowIsolatesClients(t *testing.T) {
	limiter := newTestLimiter(newFakeCounterStore())
	ctx := context.Background()

	for i := 0; i < adminRateLimit; i++ {
		require.True(t, limiter.Allow(ctx, "1.2.3.4", "admin"))
	}
	assert.False(t, limiter.Allow(ctx, "1.2.3.4", "admin"))
	assert.True(t, limiter.Allow(ctx, "5.6.7.8", "admin"), "other clients keep their own budget")
}

func TestAllowFallsBackToLocalOnStoreFailure(t *testing.T) {
	store := newFakeCounterStore()
	limiter := newTestLimiter(store)
	ctx := context.Background()

	require.True(t, limiter.Allow(ctx, "1.2.3.4", "admin"))
	assert.Equal(t, "Redis-backed rate limiting active", limiter.Status())

	store.failIncr = true

	// The limit stays enforced by the local cache.
	for i := 0; i < adminRateLimit; i++ {
		require.True(t, limiter.Allow(ctx, "1.2.3.4", "admin"))
	}
	assert.False(t, limiter.Allow(ctx, "1.2.3.4", "admin"))
	assert.Equal(t, "In-memory rate limiting active (Redis unavailable)", limiter.Status())
}

func TestAllowRecoversWhenStoreReturns(t *testing.T) {
	store := newFakeCounterStore()
	store.failPing = true
	limiter := newTestLimiter(store)
	ctx := context.Background()

	// Store unreachable: the local cache is authoritative.
	require.True(t, limiter.Allow(ctx, "1.2.3.4", "api"))
	assert.Equal(t, "In-memory rate limiting active (Redis unavailable)", limiter.Status())

	store.mu.Lock()
	store.failPing = false
	store.mu.Unlock()

	require.True(t, limiter.Allow(ctx, "1.2.3.4", "api"))
	assert.Equal(t, "Redis-backed rate limiting active", limiter.Status())
}

func TestAllowWithoutSharedStore(t *testing.T) {
	limiter := newTestLimiter(nil)
	ctx := context.Background()

	for i := 0; i < paymentRateLimit; i++ {
		require.True(t, limiter.Allow(ctx, "1.2.3.4", "payment"))
	}
	assert.False(t, limiter.Allow(ctx, "1.2.3.4", "payment"))
	assert.True(t, limiter.Healthy())
	assert.Equal(t, "In-memory rate limiting active (Redis unavailable)", limiter.Status())
}

func TestAllowFailsOpenWhenLocalCacheFull(t *testing.T) {
	store := newFakeCounterStore()
	store.failPing = true
	limiter := newTestLimiter(store)
	limiter.local = newLocalCounterCache(1)
	ctx := context.Background()

	require.True(t, limiter.Allow(ctx, "1.2.3.4", "api"))
	// A second client cannot get a counter slot, so it is let through.
	assert.True(t, limiter.Allow(ctx, "5.6.7.8", "api"))
}

func TestLocalCacheWindowExpiry(t *testing.T) {
	cache := newLocalCounterCache(10)
	now := time.Now()
	cache.nowFunc = func() time.Time { return now }

	for i := int64(1); i <= 3; i++ {
		count, err := cache.Incr("k", time.Minute)
		require.NoError(t, err)
		assert.Equal(t, i, count)
	}

	// After the window lapses the counter restarts from 1.
	now = now.Add(time.Minute + time.Second)
	count, err := cache.Incr("k", time.Minute)
	require.NoError(t, err)
	assert.Equal(t, int64(1), count)
}

func TestLocalCacheEvictsExpiredAtCapacity(t *testing.T) {
	cache := newLocalCounterCache(2)
	now := time.Now()
	cache.nowFunc = func() time.Time { return now }

	_, err := cache.Incr("a", time.Minute)
	require.NoError(t, err)
	_, err = cache.Incr("b", time.Minute)
	require.NoError(t, err)

	// Full and nothing expired yet.
	_, err = cache.Incr("c", time.Minute)
	assert.ErrorIs(t, err, errCacheFull)

	// Once the first entries expire, new keys fit again.
	now = now.Add(2 * time.Minute)
	count, err := cache.Incr("c", time.Minute)
	require.NoError(t, err)
	assert.Equal(t, int64(1), count)
	assert.Equal(t, 1, cache.Len())
}

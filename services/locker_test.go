package services_test

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"mandi-backend/services"

	"github.com/alicebob/miniredis/v2"
	"github.com/bsm/redislock"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newRedisLocker(t *testing.T) (*services.RedisLocker, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { rdb.Close() })
	return services.NewRedisLocker(rdb, 5*time.Second), mr
}

func lockers(t *testing.T) map[string]services.Locker {
	rl, _ := newRedisLocker(t)
	return map[string]services.Locker{
		"local": services.NewLocalLocker(),
		"redis": rl,
	}
}

func TestLocker_MutualExclusion(t *testing.T) {
	for name, l := range lockers(t) {
		t.Run(name, func(t *testing.T) {
			// GIVEN: 8 workers incrementing a shared counter under one key
			// THEN: No two are ever inside the critical section together

			var inside, maxInside int32
			var wg sync.WaitGroup
			for i := 0; i < 8; i++ {
				wg.Add(1)
				go func() {
					defer wg.Done()
					ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
					defer cancel()
					unlock, err := l.Lock(ctx, "lot:A")
					if !assert.NoError(t, err) {
						return
					}
					n := atomic.AddInt32(&inside, 1)
					for {
						m := atomic.LoadInt32(&maxInside)
						if n <= m || atomic.CompareAndSwapInt32(&maxInside, m, n) {
							break
						}
					}
					time.Sleep(2 * time.Millisecond)
					atomic.AddInt32(&inside, -1)
					unlock()
				}()
			}
			wg.Wait()
			assert.Equal(t, int32(1), maxInside)
		})
	}
}

func TestLocker_TimesOutWhileHeld(t *testing.T) {
	for name, l := range lockers(t) {
		t.Run(name, func(t *testing.T) {
			unlock, err := l.Lock(context.Background(), "customer:Ravi", "lot:A")
			require.NoError(t, err)
			defer unlock()

			ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
			defer cancel()
			_, err = l.Lock(ctx, "lot:A")
			assert.Error(t, err)

			// Other keys are unaffected.
			other, err := l.Lock(context.Background(), "lot:B")
			require.NoError(t, err)
			other()
		})
	}
}

func TestLocker_UnlockIsIdempotent(t *testing.T) {
	for name, l := range lockers(t) {
		t.Run(name, func(t *testing.T) {
			unlock, err := l.Lock(context.Background(), "lot:A", "lot:A")
			require.NoError(t, err)
			unlock()
			unlock()

			ctx, cancel := context.WithTimeout(context.Background(), time.Second)
			defer cancel()
			again, err := l.Lock(ctx, "lot:A")
			require.NoError(t, err)
			again()
		})
	}
}

func TestRedisLocker_KeysAreNamespaced(t *testing.T) {
	l, mr := newRedisLocker(t)
	unlock, err := l.Lock(context.Background(), "lot:A")
	require.NoError(t, err)
	assert.True(t, mr.Exists("mandi:lock:lot:A"))
	unlock()
	assert.False(t, mr.Exists("mandi:lock:lot:A"))
}

func TestRedisLocker_BusyMapsToStoreUnavailable(t *testing.T) {
	// GIVEN: Another instance holds the lot lock
	// WHEN: The engine tries to sell from the lot
	// THEN: The error is StoreUnavailable and retryable

	f := newFixture(t)
	l, mr := newRedisLocker(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer rdb.Close()
	f.customer(t, "Ravi")
	f.lot(t, "LOT1", 2)

	other := redislock.New(rdb)
	held, err := other.Obtain(context.Background(), "mandi:lock:lot:LOT1", 5*time.Second, nil)
	require.NoError(t, err)
	defer held.Release(context.Background())

	engine := services.NewEngine(f.db, services.Options{Locker: l, Timeout: 150 * time.Millisecond})
	_, err = engine.CreateSale(context.Background(), saleInput("Ravi", "LOT1", 10, "cash"))
	require.Error(t, err)
	assert.True(t, services.IsRetryable(err))
	assert.Equal(t, 2, f.remaining(t, "LOT1"))
}

package services

import (
	"context"
	"fmt"
	"slices"
	"sync"
	"time"

	"github.com/bsm/redislock"
)

// Locker serializes read-modify-write on hot rows (a lot's remaining bags, a
// customer's balance). Keys are always taken in sorted order so two
// operations touching the same pair of keys cannot deadlock.
type Locker interface {
	Lock(ctx context.Context, keys ...string) (unlock func(), err error)
}

func lotKey(lotName string) string           { return "lot:" + lotName }
func customerKey(customerName string) string { return "customer:" + customerName }

func sortedKeys(keys []string) []string {
	out := slices.Clone(keys)
	slices.Sort(out)
	return slices.Compact(out)
}

// LocalLocker is an in-process keyed mutex. It is enough for a single
// instance; multi-instance deployments use RedisLocker.
type LocalLocker struct {
	mu    sync.Mutex
	slots map[string]*slot
}

type slot struct {
	ch   chan struct{}
	refs int
}

func NewLocalLocker() *LocalLocker {
	return &LocalLocker{slots: make(map[string]*slot)}
}

func (l *LocalLocker) Lock(ctx context.Context, keys ...string) (func(), error) {
	keys = sortedKeys(keys)
	held := make([]string, 0, len(keys))
	for _, k := range keys {
		if err := l.acquire(ctx, k); err != nil {
			l.release(held)
			return nil, fmt.Errorf("lock %s: %w", k, err)
		}
		held = append(held, k)
	}
	var once sync.Once
	return func() { once.Do(func() { l.release(held) }) }, nil
}

func (l *LocalLocker) acquire(ctx context.Context, key string) error {
	l.mu.Lock()
	s, ok := l.slots[key]
	if !ok {
		s = &slot{ch: make(chan struct{}, 1)}
		l.slots[key] = s
	}
	s.refs++
	l.mu.Unlock()

	select {
	case s.ch <- struct{}{}:
		return nil
	case <-ctx.Done():
		l.drop(key, s)
		return ctx.Err()
	}
}

func (l *LocalLocker) release(keys []string) {
	for i := len(keys) - 1; i >= 0; i-- {
		l.mu.Lock()
		s := l.slots[keys[i]]
		l.mu.Unlock()
		<-s.ch
		l.drop(keys[i], s)
	}
}

func (l *LocalLocker) drop(key string, s *slot) {
	l.mu.Lock()
	s.refs--
	if s.refs == 0 {
		delete(l.slots, key)
	}
	l.mu.Unlock()
}

// RedisLocker takes the same keys as redis locks so that every instance of
// the service serializes on them.
type RedisLocker struct {
	client  *redislock.Client
	ttl     time.Duration
	backoff time.Duration
	prefix  string
}

func NewRedisLocker(rdb redislock.RedisClient, ttl time.Duration) *RedisLocker {
	return &RedisLocker{
		client:  redislock.New(rdb),
		ttl:     ttl,
		backoff: 25 * time.Millisecond,
		prefix:  "mandi:lock:",
	}
}

// Lock retries until ctx expires; the engine always passes a deadline.
func (r *RedisLocker) Lock(ctx context.Context, keys ...string) (func(), error) {
	keys = sortedKeys(keys)
	held := make([]*redislock.Lock, 0, len(keys))
	releaseAll := func() {
		// Release with a fresh context: ctx may already be done.
		rctx, cancel := context.WithTimeout(context.Background(), time.Second)
		defer cancel()
		for i := len(held) - 1; i >= 0; i-- {
			_ = held[i].Release(rctx)
		}
	}
	for _, k := range keys {
		lock, err := r.client.Obtain(ctx, r.prefix+k, r.ttl, &redislock.Options{
			RetryStrategy: redislock.LinearBackoff(r.backoff),
		})
		if err != nil {
			releaseAll()
			return nil, fmt.Errorf("lock %s: %w", k, err)
		}
		held = append(held, lock)
	}
	var once sync.Once
	return func() { once.Do(releaseAll) }, nil
}

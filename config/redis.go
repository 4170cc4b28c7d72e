package config

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
)

// ConnectRedis dials REDIS_ADDRESS and pings it a few times with backoff.
// It returns nil (no error) when no address is configured so callers can
// fall back to in-process locks and notifications.
func ConnectRedis(ctx context.Context, addr string, logger *logrus.Logger) (*redis.Client, error) {
	if addr == "" {
		logger.Info("REDIS_ADDRESS not set; using in-process locks and notifications")
		return nil, nil
	}

	rdb := redis.NewClient(&redis.Options{
		Addr:     addr,
		DB:       0,
		PoolSize: 50,
	})

	var err error
	for attempt := 1; attempt <= 5; attempt++ {
		if err = rdb.Ping(ctx).Err(); err == nil {
			logger.WithFields(logrus.Fields{"addr": addr, "attempt": attempt}).Info("connected to redis")
			return rdb, nil
		}
		sleep := time.Duration(1<<attempt) * 100 * time.Millisecond
		logger.WithFields(logrus.Fields{"addr": addr, "attempt": attempt}).Warnf("redis ping failed: %v; retrying in %s", err, sleep)
		select {
		case <-ctx.Done():
			_ = rdb.Close()
			return nil, ctx.Err()
		case <-time.After(sleep):
		}
	}
	_ = rdb.Close()
	return nil, err
}

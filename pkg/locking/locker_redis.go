package locking

import (
	"context"
	"github.com/bsm/redislock"
	"github.com/go-redis/redis/v8"
	"github.com/pkg/errors"
	"time"
)

const (
	redisKeyPrefix      = "lock:"
	defaultRetryWait    = 100 * time.Millisecond
	defaultRetryTimeout = 10 * time.Second
)

// LockerRedis is a LockerInterface shared between instances
type LockerRedis struct {
	client       *redislock.Client
	RetryWait    time.Duration
	RetryTimeout time.Duration
}

// NewLockerRedis builds a new LockerRedis instance
func NewLockerRedis(redisClient *redis.Client) *LockerRedis {
	return &LockerRedis{
		client:       redislock.New(redisClient),
		RetryWait:    defaultRetryWait,
		RetryTimeout: defaultRetryTimeout,
	}
}

// Acquire retries every RetryWait until the lock is obtained, ctx is done or RetryTimeout passed
func (l *LockerRedis) Acquire(ctx context.Context, key string, ttl time.Duration) (LockInterface, error) {
	ctx, cancel := context.WithTimeout(ctx, l.RetryTimeout)
	defer cancel()

	lock, err := l.client.Obtain(ctx, redisKeyPrefix+key, ttl, &redislock.Options{
		RetryStrategy: redislock.LinearBackoff(l.RetryWait),
	})
	if errors.Is(err, redislock.ErrNotObtained) || errors.Is(err, context.DeadlineExceeded) {
		return nil, errors.Wrap(ErrNotObtained, key)
	}
	if err != nil {
		return nil, errors.Wrapf(err, "could not obtain lock %s", key)
	}

	return &LockRedis{key: key, lock: lock}, nil
}

// LockRedis is a lock held in Redis
type LockRedis struct {
	key  string
	lock *redislock.Lock
}

// Key returns the locked key without the redis prefix
func (l *LockRedis) Key() string {
	return l.key
}

// Release frees the lock, a lock that already expired is not an error
func (l *LockRedis) Release(ctx context.Context) error {
	err := l.lock.Release(ctx)
	if errors.Is(err, redislock.ErrLockNotHeld) {
		return nil
	}

	return err
}

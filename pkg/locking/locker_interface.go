package locking

import (
	"context"
	"github.com/pkg/errors"
	"time"
)

// ErrNotObtained is returned when a lock stayed taken until the context or retry window ran out
var ErrNotObtained = errors.New("lock not obtained")

// LockerInterface hands out exclusive locks per key
type LockerInterface interface {
	// Acquire waits for the lock on key. The lock expires after ttl where the implementation supports it.
	Acquire(ctx context.Context, key string, ttl time.Duration) (LockInterface, error)
}

// LockInterface is a held lock
type LockInterface interface {
	Key() string
	Release(ctx context.Context) error
}

package locking

import (
	"context"
	"github.com/pkg/errors"
	"sync"
	"time"
)

// LockerMemory is a LockerInterface for single instance deployments and tests
type LockerMemory struct {
	mutex sync.Mutex
	slots map[string]chan struct{}
}

// NewLockerMemory builds a new LockerMemory instance
func NewLockerMemory() *LockerMemory {
	return &LockerMemory{slots: map[string]chan struct{}{}}
}

// Acquire waits until the lock on key is free or ctx is done. The ttl is ignored, memory locks live until released.
func (l *LockerMemory) Acquire(ctx context.Context, key string, _ time.Duration) (LockInterface, error) {
	slot := l.slot(key)

	select {
	case slot <- struct{}{}:
		return &LockMemory{key: key, slot: slot}, nil
	case <-ctx.Done():
		return nil, errors.Wrapf(ErrNotObtained, "%s: %v", key, ctx.Err())
	}
}

func (l *LockerMemory) slot(key string) chan struct{} {
	l.mutex.Lock()
	defer l.mutex.Unlock()

	slot, ok := l.slots[key]
	if !ok {
		slot = make(chan struct{}, 1)
		l.slots[key] = slot
	}

	return slot
}

// LockMemory is a lock held on a LockerMemory
type LockMemory struct {
	key  string
	slot chan struct{}
	once sync.Once
}

// Key returns the locked key
func (l *LockMemory) Key() string {
	return l.key
}

// Release frees the lock, releasing twice is a no-op
func (l *LockMemory) Release(_ context.Context) error {
	l.once.Do(func() {
		<-l.slot
	})
	return nil
}

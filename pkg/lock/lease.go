package lock

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// LeaseStore persists lock leases. TryAcquire must succeed only when the
// key is free or its previous lease has expired.
type LeaseStore interface {
	TryAcquire(ctx context.Context, key, token string, ttl time.Duration) (bool, error)
	Release(ctx context.Context, key, token string) error
}

// LeaseLocker polls a LeaseStore until the key is free.
type LeaseLocker struct {
	store LeaseStore
	ttl   time.Duration
	wait  time.Duration
	retry time.Duration
}

func NewLeaseLocker(store LeaseStore, ttl, wait, retry time.Duration) *LeaseLocker {
	return &LeaseLocker{
		store: store,
		ttl:   ttl,
		wait:  wait,
		retry: retry,
	}
}

func (l *LeaseLocker) Acquire(ctx context.Context, key string) (Release, error) {
	token := uuid.NewString()

	err := acquireWithRetry(ctx, l.wait, l.retry, func(ctx context.Context) (bool, error) {
		return l.store.TryAcquire(ctx, key, token, l.ttl)
	})
	if err != nil {
		return nil, err
	}

	return func(ctx context.Context) error {
		return l.store.Release(ctx, key, token)
	}, nil
}

// Package lock serializes writers of one specialist's day.
//
// A Serializer runs a function while holding the per-(specialist, date)
// lock and inside a store transaction. Readers never touch this package.
package lock

import (
	"context"
	"errors"
	"fmt"
	"time"
)

// ErrLockTimeout is returned when the key stayed held for the whole wait
// budget.
var ErrLockTimeout = errors.New("timed out waiting for occupancy lock")

type Release func(ctx context.Context) error

type Locker interface {
	Acquire(ctx context.Context, key string) (Release, error)
}

type TxFunc func(ctx context.Context) error

type Transactor interface {
	WithinTransaction(ctx context.Context, fn TxFunc) error
}

type Serializer interface {
	Serialize(ctx context.Context, key string, fn TxFunc) error
}

func Key(specialistID, date string) string {
	return fmt.Sprintf("occupancy:%s:%s", specialistID, date)
}

// NoTransaction runs fn directly. Used when the store cannot provide
// multi-document transactions and the lock alone provides serialization.
type NoTransaction struct{}

func (NoTransaction) WithinTransaction(ctx context.Context, fn TxFunc) error {
	return fn(ctx)
}

// acquireWithRetry calls try until it reports success, fails, or the wait
// budget runs out.
func acquireWithRetry(ctx context.Context, wait, interval time.Duration, try func(ctx context.Context) (bool, error)) error {
	waitCtx, cancel := context.WithTimeout(ctx, wait)
	defer cancel()

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		ok, err := try(waitCtx)
		if err != nil {
			if waitCtx.Err() != nil {
				return waitError(ctx)
			}
			return err
		}
		if ok {
			return nil
		}

		select {
		case <-waitCtx.Done():
			return waitError(ctx)
		case <-ticker.C:
		}
	}
}

func waitError(parent context.Context) error {
	if err := parent.Err(); err != nil {
		return err
	}
	return ErrLockTimeout
}

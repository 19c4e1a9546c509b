package postgres

import (
	"context"
	"fmt"
	"time"

	"slotkeeper/pkg/lock"
	"slotkeeper/pkg/metrics"

	"github.com/jackc/pgx/v5"
)

const backendName = "postgres"

// AdvisorySerializer takes a transaction-scoped advisory lock on the key
// and runs fn inside that same transaction. The lock is released by
// PostgreSQL on commit or rollback.
type AdvisorySerializer struct {
	db      Beginner
	wait    time.Duration
	metrics *metrics.Metrics
}

var _ lock.Serializer = (*AdvisorySerializer)(nil)

func NewAdvisorySerializer(db Beginner, wait time.Duration, m *metrics.Metrics) *AdvisorySerializer {
	return &AdvisorySerializer{
		db:      db,
		wait:    wait,
		metrics: m,
	}
}

func (s *AdvisorySerializer) Serialize(ctx context.Context, key string, fn lock.TxFunc) error {
	return runInTx(ctx, s.db, func(ctx context.Context, tx pgx.Tx) error {
		start := time.Now()
		err := s.acquire(ctx, tx, key)
		s.metrics.ObserveLockWait(backendName, time.Since(start), err == nil)
		if err != nil {
			return err
		}
		return fn(ctx)
	})
}

func (s *AdvisorySerializer) acquire(ctx context.Context, tx pgx.Tx, key string) error {
	timeout := fmt.Sprintf("%dms", s.wait.Milliseconds())
	if _, err := tx.Exec(ctx, `SELECT set_config('lock_timeout', $1, true)`, timeout); err != nil {
		return fmt.Errorf("set lock_timeout: %w", err)
	}

	if _, err := tx.Exec(ctx, `SELECT pg_advisory_xact_lock(hashtextextended($1, 0))`, key); err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		if IsLockNotAvailable(err) {
			return lock.ErrLockTimeout
		}
		return fmt.Errorf("acquire advisory lock %s: %w", key, err)
	}
	return nil
}

package lock

import (
	"context"
	"slotkeeper/pkg/logger"
	"slotkeeper/pkg/metrics"
	"time"
)

const releaseTimeout = 5 * time.Second

type lockingSerializer struct {
	backend string
	locker  Locker
	tx      Transactor
	log     *logger.Logger
	metrics *metrics.Metrics
}

// NewSerializer acquires the key from locker and then runs fn inside tx.
// A nil tx runs fn without a transaction.
func NewSerializer(backend string, locker Locker, tx Transactor, log *logger.Logger, m *metrics.Metrics) Serializer {
	if tx == nil {
		tx = NoTransaction{}
	}
	return &lockingSerializer{
		backend: backend,
		locker:  locker,
		tx:      tx,
		log:     log,
		metrics: m,
	}
}

func (s *lockingSerializer) Serialize(ctx context.Context, key string, fn TxFunc) error {
	start := time.Now()
	release, err := s.locker.Acquire(ctx, key)
	s.metrics.ObserveLockWait(s.backend, time.Since(start), err == nil)
	if err != nil {
		return err
	}

	defer func() {
		releaseCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), releaseTimeout)
		defer cancel()
		if releaseErr := release(releaseCtx); releaseErr != nil {
			s.log.Warn("Failed to release occupancy lock", "key", key, "backend", s.backend, "error", releaseErr)
		}
	}()

	return s.tx.WithinTransaction(ctx, fn)
}

package kafka_middleware

import (
	"context"
	"time"

	"slotkeeper/pkg/kafka"
	"slotkeeper/pkg/metrics"
)

// MetricsProducerMiddleware records publish outcome and latency per event
// type.
func MetricsProducerMiddleware(m *metrics.Metrics) kafka.ProducerMiddleware {
	return func(ctx context.Context, msg kafka.Message, next kafka.PublishFunc) error {
		start := time.Now()
		err := next(ctx, msg)
		m.ObserveEventPublish(msg.GetEventType(), err, time.Since(start))
		return err
	}
}

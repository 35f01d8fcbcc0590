package kafka_middleware

import (
	"context"

	"medibites/pkg/kafka"
	"medibites/pkg/metrics"
)

func MetricsProducerMiddleware(m *metrics.Metrics) kafka.ProducerMiddleware {
	return func(ctx context.Context, msg kafka.Message, next func(ctx context.Context, msg kafka.Message) error) error {
		err := next(ctx, msg)
		m.ObserveEventPublish(msg.GetEventType(), err)
		return err
	}
}

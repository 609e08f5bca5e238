package order

import (
	"context"
	"encoding/json"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/fx"
	"go.uber.org/zap"

	"github.com/Additional-Code/repairhub/internal/config"
	"github.com/Additional-Code/repairhub/internal/messaging"
	"github.com/Additional-Code/repairhub/internal/notification"
	"github.com/Additional-Code/repairhub/internal/worker"
)

var workerTracer = otel.Tracer("github.com/Additional-Code/repairhub/worker/order")

// Module registers order-related worker handlers.
var Module = fx.Module("worker_order",
	fx.Provide(
		fx.Annotate(
			NewOrderEventsHandler,
			fx.ResultTags(`group:"worker.handlers"`),
		),
	),
)

// NewOrderEventsHandler delivers order events relayed through the bus.
func NewOrderEventsHandler(dispatcher *notification.Dispatcher, logger *zap.Logger, cfg config.Config) worker.HandlerRegistration {
	handler := func(ctx context.Context, msg messaging.Message) error {
		ctx, span := workerTracer.Start(ctx, "worker.orders.process", trace.WithAttributes(
			attribute.String("messaging.topic", msg.Topic),
			attribute.Int64("messaging.offset", msg.Offset),
		))
		defer span.End()

		var event notification.Event
		if err := json.Unmarshal(msg.Value, &event); err != nil {
			logger.Error("failed to decode order event", zap.Error(err))

			span.RecordError(err)
			span.SetStatus(codes.Error, "decode error")
			return err
		}

		if err := dispatcher.Handle(ctx, event); err != nil {
			// Unknown events are skipped so they do not block the partition.
			logger.Warn("order event skipped", zap.String("type", string(event.Type)), zap.Error(err))
			return nil
		}

		logger.Debug("order event processed",
			zap.String("type", string(event.Type)),
			zap.String("order_id", event.Order.ID),
			zap.String("status", string(event.Order.Status)),
		)
		return nil
	}

	return worker.HandlerRegistration{
		Topic:   cfg.Messaging.Kafka.Topic,
		Handler: handler,
	}
}

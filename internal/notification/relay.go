package notification

import (
	"context"
	"encoding/json"
	"time"

	"go.uber.org/zap"

	"github.com/Additional-Code/repairhub/internal/entity"
	"github.com/Additional-Code/repairhub/internal/lifecycle"
	"github.com/Additional-Code/repairhub/internal/messaging"
)

// Relay hands order changes to the message bus; the worker's Dispatcher delivers
// them later.
type Relay struct {
	client messaging.Client
	logger *zap.Logger
	now    func() time.Time
}

// NewRelay constructs a Relay.
func NewRelay(client messaging.Client, logger *zap.Logger) *Relay {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Relay{client: client, logger: logger, now: time.Now}
}

// OrderCreated implements the order service's notifier.
func (r *Relay) OrderCreated(ctx context.Context, order entity.Order) {
	r.publish(ctx, Event{Type: EventOrderCreated, Order: order, OccurredAt: r.now().UTC()})
}

// StatusChanged implements the order service's notifier.
func (r *Relay) StatusChanged(ctx context.Context, order entity.Order, previous entity.Status, actor lifecycle.Actor) {
	r.publish(ctx, Event{
		Type:           EventStatusChanged,
		Order:          order,
		PreviousStatus: previous,
		ActorID:        actor.ID,
		ActorRole:      actor.Role,
		OccurredAt:     r.now().UTC(),
	})
}

func (r *Relay) publish(ctx context.Context, event Event) {
	payload, err := json.Marshal(event)
	if err != nil {
		r.logger.Error("marshal order event", zap.Error(err))
		return
	}
	headers := map[string]string{"event-type": string(event.Type)}
	if err := r.client.Publish(ctx, []byte(event.Order.ID), payload, headers); err != nil {
		r.logger.Error("publish order event",
			zap.String("type", string(event.Type)),
			zap.String("order_id", event.Order.ID),
			zap.Error(err),
		)
	}
}

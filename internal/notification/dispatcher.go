package notification

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"github.com/Additional-Code/repairhub/internal/entity"
	"github.com/Additional-Code/repairhub/internal/lifecycle"
	techrepo "github.com/Additional-Code/repairhub/internal/repository/technician"
)

var dispatchTracer = otel.Tracer("github.com/Additional-Code/repairhub/notification")

type availableTechnicians interface {
	ListAvailable(ctx context.Context) ([]entity.Technician, error)
}

// Dispatcher decides who hears about an order change and sends to each of them.
// Delivery failures are logged and never returned to the writer.
type Dispatcher struct {
	technicians availableTechnicians
	sender      Sender
	logger      *zap.Logger
	now         func() time.Time
}

// NewDispatcher constructs a Dispatcher.
func NewDispatcher(technicians *techrepo.Repository, sender Sender, logger *zap.Logger) *Dispatcher {
	if logger == nil {
		logger = zap.NewNop()
	}
	d := &Dispatcher{sender: sender, logger: logger, now: time.Now}
	if technicians != nil {
		d.technicians = technicians
	}
	return d
}

// OrderCreated notifies every available technician about a new pending order.
func (d *Dispatcher) OrderCreated(ctx context.Context, order entity.Order) {
	_ = d.Handle(ctx, Event{Type: EventOrderCreated, Order: order, OccurredAt: d.now().UTC()})
}

// StatusChanged notifies the customer, and the assigned technician unless they
// made the change themselves.
func (d *Dispatcher) StatusChanged(ctx context.Context, order entity.Order, previous entity.Status, actor lifecycle.Actor) {
	_ = d.Handle(ctx, Event{
		Type:           EventStatusChanged,
		Order:          order,
		PreviousStatus: previous,
		ActorID:        actor.ID,
		ActorRole:      actor.Role,
		OccurredAt:     d.now().UTC(),
	})
}

// Handle fans a single event out. Only an unknown event type is an error.
func (d *Dispatcher) Handle(ctx context.Context, event Event) error {
	ctx, span := dispatchTracer.Start(ctx, "Dispatcher.Handle", trace.WithAttributes(
		attribute.String("event.type", string(event.Type)),
		attribute.String("order.id", event.Order.ID),
	))
	defer span.End()

	var (
		recipients  []string
		title, body string
	)
	switch event.Type {
	case EventOrderCreated:
		recipients = d.availableTechnicianIDs(ctx)
		title, body = newOrderMessage(event.Order)
	case EventStatusChanged:
		recipients = statusRecipients(event.Order, event.actor())
		title, body = statusMessage(event.Order)
	default:
		return fmt.Errorf("unknown event type %q", event.Type)
	}

	for _, userID := range recipients {
		n := Notification{
			UserID:    userID,
			Kind:      event.Type,
			OrderID:   event.Order.ID,
			Status:    event.Order.Status,
			Title:     title,
			Body:      body,
			CreatedAt: event.OccurredAt,
		}
		if err := d.sender.Send(ctx, n); err != nil {
			span.RecordError(err)
			d.logger.Warn("notification delivery failed",
				zap.String("user_id", userID),
				zap.String("order_id", event.Order.ID),
				zap.String("kind", string(event.Type)),
				zap.Error(err),
			)
		}
	}
	return nil
}

func (d *Dispatcher) availableTechnicianIDs(ctx context.Context) []string {
	if d.technicians == nil {
		return nil
	}
	techs, err := d.technicians.ListAvailable(ctx)
	if err != nil {
		d.logger.Warn("list available technicians failed", zap.Error(err))
		return nil
	}
	ids := make([]string, 0, len(techs))
	for _, tech := range techs {
		ids = append(ids, tech.ID)
	}
	return ids
}

func statusRecipients(order entity.Order, actor lifecycle.Actor) []string {
	recipients := []string{order.CustomerID}
	if order.TechnicianID != nil && *order.TechnicianID != "" && *order.TechnicianID != actor.ID {
		recipients = append(recipients, *order.TechnicianID)
	}
	return recipients
}

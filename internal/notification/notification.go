// Package notification fans committed order changes out to the people involved.
package notification

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/Additional-Code/repairhub/internal/entity"
	"github.com/Additional-Code/repairhub/internal/lifecycle"
	"github.com/Additional-Code/repairhub/internal/realtime"
)

// EventType names an order change carried between the service and the dispatcher.
type EventType string

const (
	EventOrderCreated  EventType = "order.created"
	EventStatusChanged EventType = "order.status_changed"
)

// Event is the wire form of a committed order change.
type Event struct {
	Type           EventType      `json:"type"`
	Order          entity.Order   `json:"order"`
	PreviousStatus entity.Status  `json:"previous_status,omitempty"`
	ActorID        string         `json:"actor_id,omitempty"`
	ActorRole      lifecycle.Role `json:"actor_role,omitempty"`
	OccurredAt     time.Time      `json:"occurred_at"`
}

func (e Event) actor() lifecycle.Actor {
	return lifecycle.Actor{ID: e.ActorID, Role: e.ActorRole}
}

// Notification is a single message addressed to one user.
type Notification struct {
	UserID    string        `json:"user_id"`
	Kind      EventType     `json:"kind"`
	OrderID   string        `json:"order_id"`
	Status    entity.Status `json:"status"`
	Title     string        `json:"title"`
	Body      string        `json:"body"`
	CreatedAt time.Time     `json:"created_at"`
}

// Sender delivers a notification to its recipient.
type Sender interface {
	Send(ctx context.Context, n Notification) error
}

// BrokerSender publishes notifications on the recipient's realtime topic.
type BrokerSender struct {
	broker realtime.Broker
}

// NewBrokerSender wraps broker as a Sender.
func NewBrokerSender(broker realtime.Broker) *BrokerSender {
	return &BrokerSender{broker: broker}
}

// Send implements Sender.
func (s *BrokerSender) Send(ctx context.Context, n Notification) error {
	payload, err := json.Marshal(n)
	if err != nil {
		return fmt.Errorf("marshal notification: %w", err)
	}
	return s.broker.Publish(ctx, realtime.UserTopic(n.UserID), payload)
}

func newOrderMessage(order entity.Order) (string, string) {
	return "New repair request", fmt.Sprintf("%s %s: %s", order.DeviceBrand, order.DeviceModel, order.IssueDescription)
}

func statusMessage(order entity.Order) (string, string) {
	label := strings.ReplaceAll(string(order.Status), "_", " ")
	return "Order update", fmt.Sprintf("%s %s is now %s", order.DeviceBrand, order.DeviceModel, label)
}

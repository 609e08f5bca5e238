// Package realtime fans record snapshots and user notifications out to live
// subscribers, either inside one process or across instances through redis.
package realtime

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"

	"go.uber.org/fx"
	"go.uber.org/zap"

	"github.com/Additional-Code/repairhub/internal/config"
)

// PendingTopic carries a snapshot of every order entering pending.
const PendingTopic = "orders.pending"

// OrderTopic carries snapshots of a single order.
func OrderTopic(orderID string) string {
	return "orders." + orderID
}

// UserTopic carries notifications addressed to one user.
func UserTopic(userID string) string {
	return "users." + userID + ".notifications"
}

// Message is a payload delivered on a topic.
type Message struct {
	Topic   string
	Payload []byte
}

// Broker publishes payloads to topics and hands out subscriptions.
type Broker interface {
	Publish(ctx context.Context, topic string, payload []byte) error
	// Subscribe registers interest in topic until Unsubscribe is called or ctx ends.
	Subscribe(ctx context.Context, topic string) (*Subscription, error)
}

// Module provides the configured broker to the Fx graph.
var Module = fx.Provide(NewBroker)

// NewBroker initialises the configured broker (redis or memory).
func NewBroker(lc fx.Lifecycle, cfg config.Config, logger *zap.Logger) (Broker, error) {
	switch cfg.Realtime.Driver {
	case "memory":
		logger.Info("realtime broker is process-local")
		return NewMemoryBroker(cfg.Realtime.BufferSize), nil
	case "redis":
		return newRedisBroker(lc, cfg.Realtime, logger), nil
	default:
		return nil, fmt.Errorf("unsupported realtime driver: %s", cfg.Realtime.Driver)
	}
}

// Subscription is a buffered stream of messages. When the buffer is full the oldest
// message is dropped: every payload is a full snapshot, so only the latest matters.
type Subscription struct {
	mu      sync.Mutex
	ch      chan Message
	closed  bool
	stop    func() bool
	release func()
	once    sync.Once
}

var active atomic.Int64

// ActiveSubscriptions counts subscriptions not yet unsubscribed, across brokers.
func ActiveSubscriptions() int64 {
	return active.Load()
}

func newSubscription(buffer int) *Subscription {
	if buffer <= 0 {
		buffer = 1
	}
	active.Add(1)
	return &Subscription{ch: make(chan Message, buffer)}
}

// Messages is closed after Unsubscribe.
func (s *Subscription) Messages() <-chan Message {
	return s.ch
}

// Unsubscribe stops delivery and closes Messages. Safe to call more than once.
func (s *Subscription) Unsubscribe() {
	s.once.Do(func() {
		active.Add(-1)
		s.mu.Lock()
		stop := s.stop
		s.closed = true
		close(s.ch)
		s.mu.Unlock()

		if stop != nil {
			stop()
		}
		if s.release != nil {
			s.release()
		}
	})
}

func (s *Subscription) bind(ctx context.Context) {
	stop := context.AfterFunc(ctx, s.Unsubscribe)
	s.mu.Lock()
	s.stop = stop
	s.mu.Unlock()
}

func (s *Subscription) deliver(msg Message) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	for {
		select {
		case s.ch <- msg:
			return
		default:
		}
		select {
		case <-s.ch:
		default:
		}
	}
}

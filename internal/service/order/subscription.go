package order

import (
	"context"
	"encoding/json"
	"sync"

	"go.uber.org/zap"

	"github.com/Additional-Code/repairhub/internal/entity"
	"github.com/Additional-Code/repairhub/internal/realtime"
	"github.com/Additional-Code/repairhub/pkg/errorbank"
)

// OrderSubscription streams order snapshots. Updates is closed once the
// subscription ends, either through Unsubscribe or the subscribing context.
type OrderSubscription struct {
	sub     *realtime.Subscription
	updates chan entity.Order
	done    chan struct{}
	once    sync.Once
}

// Updates yields full order snapshots.
func (s *OrderSubscription) Updates() <-chan entity.Order {
	return s.updates
}

// Unsubscribe stops delivery. Safe to call more than once.
func (s *OrderSubscription) Unsubscribe() {
	s.once.Do(func() {
		close(s.done)
		s.sub.Unsubscribe()
	})
}

// Subscribe streams snapshots of a single order. The current snapshot is delivered
// first; afterwards only snapshots with a newer revision are forwarded, so a late
// message never overwrites fresher state.
func (s *Service) Subscribe(ctx context.Context, orderID string) (*OrderSubscription, error) {
	if s.broker == nil {
		return nil, errorbank.Internal("realtime broker is not configured")
	}

	sub, err := s.broker.Subscribe(ctx, realtime.OrderTopic(orderID))
	if err != nil {
		return nil, persistenceError("failed to subscribe to order", err)
	}

	lookupCtx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()
	current, err := s.repo.GetByID(lookupCtx, orderID)
	if err != nil {
		sub.Unsubscribe()
		return nil, lookupError(err)
	}

	return s.stream(ctx, sub, current, true), nil
}

// SubscribeToNewPending streams every order created after the call.
func (s *Service) SubscribeToNewPending(ctx context.Context) (*OrderSubscription, error) {
	if s.broker == nil {
		return nil, errorbank.Internal("realtime broker is not configured")
	}
	sub, err := s.broker.Subscribe(ctx, realtime.PendingTopic)
	if err != nil {
		return nil, persistenceError("failed to subscribe to pending orders", err)
	}
	return s.stream(ctx, sub, nil, false), nil
}

func (s *Service) stream(ctx context.Context, sub *realtime.Subscription, initial *entity.Order, newerOnly bool) *OrderSubscription {
	out := &OrderSubscription{
		sub:     sub,
		updates: make(chan entity.Order, 1),
		done:    make(chan struct{}),
	}

	go func() {
		defer close(out.updates)

		var last int64
		emit := func(order entity.Order) bool {
			if newerOnly {
				if order.Revision <= last {
					return true
				}
				last = order.Revision
			}
			select {
			case out.updates <- order:
				return true
			case <-out.done:
				return false
			case <-ctx.Done():
				return false
			}
		}

		if initial != nil && !emit(*initial) {
			return
		}
		for msg := range sub.Messages() {
			var order entity.Order
			if err := json.Unmarshal(msg.Payload, &order); err != nil {
				s.logger.Warn("discarding malformed order snapshot", zap.String("topic", msg.Topic), zap.Error(err))
				continue
			}
			if !emit(order) {
				return
			}
		}
	}()

	return out
}

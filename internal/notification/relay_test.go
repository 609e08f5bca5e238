package notification

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/Additional-Code/repairhub/internal/config"
	"github.com/Additional-Code/repairhub/internal/entity"
	"github.com/Additional-Code/repairhub/internal/lifecycle"
	"github.com/Additional-Code/repairhub/internal/messaging"
)

type capturingClient struct {
	keys    []string
	values  [][]byte
	headers []map[string]string
	err     error
}

func (c *capturingClient) Publish(_ context.Context, key, value []byte, headers map[string]string) error {
	if c.err != nil {
		return c.err
	}
	c.keys = append(c.keys, string(key))
	c.values = append(c.values, value)
	c.headers = append(c.headers, headers)
	return nil
}

func (c *capturingClient) Consume(ctx context.Context, _ messaging.Handler) error {
	<-ctx.Done()
	return ctx.Err()
}

func (c *capturingClient) Topic() string { return "repairhub.orders" }

func TestRelayPublishesEventsKeyedByOrder(t *testing.T) {
	client := &capturingClient{}
	relay := NewRelay(client, zap.NewNop())

	order := assignedOrder(entity.StatusDelivering)
	relay.StatusChanged(context.Background(), order, entity.StatusRepairing, lifecycle.Actor{ID: "t1", Role: lifecycle.RoleTechnician})

	require.Len(t, client.values, 1)
	assert.Equal(t, "o1", client.keys[0])
	assert.Equal(t, "order.status_changed", client.headers[0]["event-type"])

	var event Event
	require.NoError(t, json.Unmarshal(client.values[0], &event))
	assert.Equal(t, EventStatusChanged, event.Type)
	assert.Equal(t, entity.StatusRepairing, event.PreviousStatus)
	assert.Equal(t, entity.StatusDelivering, event.Order.Status)
	assert.Equal(t, "t1", event.ActorID)

	// The consumer side delivers the same recipients the in-process path would.
	sender := &recordingSender{}
	require.NoError(t, NewDispatcher(nil, sender, zap.NewNop()).Handle(context.Background(), event))
	assert.Equal(t, []string{"c1"}, sender.recipients())
}

func TestRelaySwallowsPublishErrors(t *testing.T) {
	relay := NewRelay(&capturingClient{err: errors.New("broker down")}, zap.NewNop())
	assert.NotPanics(t, func() {
		relay.OrderCreated(context.Background(), assignedOrder(entity.StatusPending))
	})
}

func TestNewNotifierSelectsPath(t *testing.T) {
	dispatcher := NewDispatcher(nil, &recordingSender{}, zap.NewNop())
	client := &capturingClient{}

	direct := NewNotifier(NotifierParams{Config: config.Config{}, Client: client, Dispatcher: dispatcher, Logger: zap.NewNop()})
	assert.Same(t, dispatcher, direct)

	cfg := config.Config{Messaging: config.Messaging{Enabled: true, Driver: "kafka"}}
	relayed := NewNotifier(NotifierParams{Config: cfg, Client: client, Dispatcher: dispatcher, Logger: zap.NewNop()})
	assert.IsType(t, &Relay{}, relayed)
}

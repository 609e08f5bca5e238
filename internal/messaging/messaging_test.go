package messaging

import (
	"context"
	"testing"
	"time"

	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/fx/fxtest"
	"go.uber.org/zap"

	"github.com/Additional-Code/repairhub/internal/config"
)

func TestHeadersRoundTrip(t *testing.T) {
	assert.Nil(t, toKafkaHeaders(nil))
	assert.Nil(t, fromKafkaHeaders(nil))

	in := map[string]string{"event-type": "order.created", "order-id": "o1"}
	assert.Equal(t, in, fromKafkaHeaders(toKafkaHeaders(in)))
	assert.Equal(t, map[string]string{"a": "b"}, fromKafkaHeaders([]kafka.Header{{Key: "a", Value: []byte("b")}}))
}

func TestDisabledMessagingUsesNoop(t *testing.T) {
	lc := fxtest.NewLifecycle(t)
	cfg := config.Config{Messaging: config.Messaging{Enabled: false, Kafka: config.Kafka{Topic: "repairhub.orders"}}}
	client, err := NewClient(lc, cfg, zap.NewNop())
	require.NoError(t, err)
	assert.Equal(t, "repairhub.orders", client.Topic())
	assert.NoError(t, client.Publish(context.Background(), []byte("k"), []byte("v"), nil))

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()
	assert.ErrorIs(t, client.Consume(ctx, nil), context.DeadlineExceeded)
}

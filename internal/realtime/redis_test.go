package realtime

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/fx/fxtest"
	"go.uber.org/zap"

	"github.com/Additional-Code/repairhub/internal/config"
)

func TestRedisChannelNames(t *testing.T) {
	prefixed := &redisBroker{prefix: "repairhub"}
	assert.Equal(t, "repairhub:"+OrderTopic("o1"), prefixed.channel(OrderTopic("o1")))
	assert.Equal(t, "repairhub:"+PendingTopic, prefixed.channel(PendingTopic))

	bare := &redisBroker{}
	assert.Equal(t, UserTopic("c1"), bare.channel(UserTopic("c1")))
}

func TestNewBrokerDrivers(t *testing.T) {
	lc := fxtest.NewLifecycle(t)

	broker, err := NewBroker(lc, config.Config{Realtime: config.Realtime{Driver: "redis", ChannelPrefix: "rh", BufferSize: 4}}, zap.NewNop())
	require.NoError(t, err)
	rb, ok := broker.(*redisBroker)
	require.True(t, ok)
	assert.Equal(t, 4, rb.buffer)
	require.NoError(t, rb.client.Close())

	broker, err = NewBroker(lc, config.Config{Realtime: config.Realtime{Driver: "memory"}}, zap.NewNop())
	require.NoError(t, err)
	assert.IsType(t, &MemoryBroker{}, broker)

	_, err = NewBroker(lc, config.Config{Realtime: config.Realtime{Driver: "nats"}}, zap.NewNop())
	assert.Error(t, err)
}

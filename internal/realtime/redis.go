package realtime

import (
	"context"
	"fmt"

	goredis "github.com/redis/go-redis/v9"
	"go.uber.org/fx"
	"go.uber.org/zap"

	"github.com/Additional-Code/repairhub/internal/config"
)

type redisBroker struct {
	client *goredis.Client
	prefix string
	buffer int
	logger *zap.Logger
}

func newRedisBroker(lc fx.Lifecycle, cfg config.Realtime, logger *zap.Logger) *redisBroker {
	client := goredis.NewClient(&goredis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	broker := &redisBroker{client: client, prefix: cfg.ChannelPrefix, buffer: cfg.BufferSize, logger: logger}

	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			if err := client.Ping(ctx).Err(); err != nil {
				return fmt.Errorf("ping realtime redis: %w", err)
			}
			logger.Info("realtime broker connected", zap.String("addr", cfg.Redis.Addr))
			return nil
		},
		OnStop: func(ctx context.Context) error {
			logger.Info("closing realtime broker")
			return client.Close()
		},
	})

	return broker
}

func (b *redisBroker) channel(topic string) string {
	if b.prefix == "" {
		return topic
	}
	return b.prefix + ":" + topic
}

func (b *redisBroker) Publish(ctx context.Context, topic string, payload []byte) error {
	return b.client.Publish(ctx, b.channel(topic), payload).Err()
}

func (b *redisBroker) Subscribe(ctx context.Context, topic string) (*Subscription, error) {
	ps := b.client.Subscribe(ctx, b.channel(topic))
	if _, err := ps.Receive(ctx); err != nil {
		_ = ps.Close()
		return nil, fmt.Errorf("subscribe %s: %w", topic, err)
	}

	sub := newSubscription(b.buffer)
	sub.release = func() {
		if err := ps.Close(); err != nil {
			b.logger.Warn("realtime unsubscribe failed", zap.String("topic", topic), zap.Error(err))
		}
	}

	go func() {
		for msg := range ps.Channel() {
			sub.deliver(Message{Topic: topic, Payload: []byte(msg.Payload)})
		}
	}()

	sub.bind(ctx)
	return sub, nil
}

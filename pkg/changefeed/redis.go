package changefeed

import (
	"context"
	"encoding/json"
	"fmt"

	"akiya-share/pkg/cache"
	"akiya-share/pkg/config"
	"akiya-share/pkg/logger"

	"github.com/redis/go-redis/v9"
)

func redisChannel(table string) string {
	return "changes:" + table
}

type RedisBus struct {
	client *redis.Client
	owned  bool
	logger *logger.Logger
}

func NewRedisBus(client *redis.Client, log *logger.Logger) *RedisBus {
	return &RedisBus{client: client, logger: log}
}

func NewRedisBusFromConfig(cfg *config.Config, log *logger.Logger) (*RedisBus, error) {
	client, err := cache.NewRedisClient(cfg)
	if err != nil {
		return nil, err
	}
	log.Info("[CHANGEFEED] Using Redis pub/sub at %s:%s", cfg.RedisHost, cfg.RedisPort)
	return &RedisBus{client: client, owned: true, logger: log}, nil
}

func (b *RedisBus) Publish(ctx context.Context, event Event) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}
	if err := b.client.Publish(ctx, redisChannel(event.Table), payload).Err(); err != nil {
		return fmt.Errorf("failed to publish %s event: %w", event.Table, err)
	}
	return nil
}

func (b *RedisBus) Subscribe(ctx context.Context, table string) (Stream, error) {
	pubsub := b.client.Subscribe(ctx, redisChannel(table))
	// Wait for the subscription confirmation so no event published after
	// Subscribe returns is missed.
	if _, err := pubsub.Receive(ctx); err != nil {
		pubsub.Close()
		return nil, fmt.Errorf("failed to subscribe to %s: %w", table, err)
	}

	raw := make(chan []byte)
	relayCtx, stop := context.WithCancel(ctx)
	go func() {
		defer close(raw)
		msgs := pubsub.Channel()
		for {
			select {
			case <-relayCtx.Done():
				return
			case msg, ok := <-msgs:
				if !ok {
					return
				}
				select {
				case raw <- []byte(msg.Payload):
				case <-relayCtx.Done():
					return
				}
			}
		}
	}()

	return newStream(ctx, raw, func() error {
		stop()
		return pubsub.Close()
	}, b.logger), nil
}

func (b *RedisBus) Close() error {
	if b.owned {
		return b.client.Close()
	}
	return nil
}

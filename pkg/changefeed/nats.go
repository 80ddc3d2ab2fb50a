package changefeed

import (
	"context"
	"encoding/json"
	"fmt"

	"akiya-share/pkg/config"
	"akiya-share/pkg/logger"

	"github.com/nats-io/nats.go"
)

func natsSubject(table string) string {
	return "changes." + table
}

type NATSBus struct {
	conn   *nats.Conn
	logger *logger.Logger
}

func NewNATSBus(cfg *config.Config, log *logger.Logger) (*NATSBus, error) {
	url := fmt.Sprintf("nats://%s:%s", cfg.NATSHost, cfg.NATSPort)
	conn, err := nats.Connect(url, nats.Name("akiya-share"))
	if err != nil {
		return nil, fmt.Errorf("failed to connect to NATS: %w", err)
	}
	log.Info("[CHANGEFEED] Connected to NATS at %s", url)
	return &NATSBus{conn: conn, logger: log}, nil
}

func (b *NATSBus) Publish(ctx context.Context, event Event) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}
	if err := b.conn.Publish(natsSubject(event.Table), payload); err != nil {
		return fmt.Errorf("failed to publish %s event: %w", event.Table, err)
	}
	return nil
}

func (b *NATSBus) Subscribe(ctx context.Context, table string) (Stream, error) {
	msgs := make(chan *nats.Msg, 64)
	sub, err := b.conn.ChanSubscribe(natsSubject(table), msgs)
	if err != nil {
		return nil, fmt.Errorf("failed to subscribe to %s: %w", table, err)
	}
	if err := b.conn.Flush(); err != nil {
		sub.Unsubscribe()
		return nil, fmt.Errorf("failed to subscribe to %s: %w", table, err)
	}

	raw := make(chan []byte)
	relayCtx, stop := context.WithCancel(ctx)
	go func() {
		defer close(raw)
		for {
			select {
			case <-relayCtx.Done():
				return
			case msg := <-msgs:
				select {
				case raw <- msg.Data:
				case <-relayCtx.Done():
					return
				}
			}
		}
	}()

	return newStream(ctx, raw, func() error {
		stop()
		return sub.Unsubscribe()
	}, b.logger), nil
}

func (b *NATSBus) Close() error {
	b.conn.Close()
	return nil
}

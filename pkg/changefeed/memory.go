package changefeed

import (
	"context"
	"encoding/json"
	"sync"

	"akiya-share/pkg/logger"
)

// MemoryBus delivers events within one process.
type MemoryBus struct {
	mu     sync.Mutex
	subs   map[string]map[chan []byte]struct{}
	logger *logger.Logger
}

func NewMemoryBus(log *logger.Logger) *MemoryBus {
	return &MemoryBus{subs: make(map[string]map[chan []byte]struct{}), logger: log}
}

func (b *MemoryBus) Publish(ctx context.Context, event Event) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return err
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	for ch := range b.subs[event.Table] {
		select {
		case ch <- payload:
		default:
			b.logger.Warn("[CHANGEFEED] Subscriber on %s is full, dropping event", event.Table)
		}
	}
	return nil
}

func (b *MemoryBus) Subscribe(ctx context.Context, table string) (Stream, error) {
	ch := make(chan []byte, 64)

	b.mu.Lock()
	if b.subs[table] == nil {
		b.subs[table] = make(map[chan []byte]struct{})
	}
	b.subs[table][ch] = struct{}{}
	b.mu.Unlock()

	return newStream(ctx, ch, func() error {
		b.mu.Lock()
		delete(b.subs[table], ch)
		b.mu.Unlock()
		return nil
	}, b.logger), nil
}

// Subscribers reports how many streams are open on table.
func (b *MemoryBus) Subscribers(table string) int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.subs[table])
}

func (b *MemoryBus) Close() error {
	return nil
}

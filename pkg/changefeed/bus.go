package changefeed

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"akiya-share/pkg/config"
	"akiya-share/pkg/logger"
)

type Stream interface {
	Events() <-chan Event
	Close() error
}

type Bus interface {
	Publish(ctx context.Context, event Event) error
	Subscribe(ctx context.Context, table string) (Stream, error)
	Close() error
}

// NewBus picks the transport named by cfg.ChangeBus.
func NewBus(cfg *config.Config, log *logger.Logger) (Bus, error) {
	switch cfg.ChangeBus {
	case "", "redis":
		return NewRedisBusFromConfig(cfg, log)
	case "nats":
		return NewNATSBus(cfg, log)
	default:
		return nil, fmt.Errorf("unknown change bus %q", cfg.ChangeBus)
	}
}

// stream decodes raw payloads from a transport subscription.
type stream struct {
	events    chan Event
	cancel    context.CancelFunc
	closeOnce sync.Once
	release   func() error
	done      chan struct{}
}

func newStream(ctx context.Context, raw <-chan []byte, release func() error, log *logger.Logger) *stream {
	ctx, cancel := context.WithCancel(ctx)
	s := &stream{
		events:  make(chan Event, 64),
		cancel:  cancel,
		release: release,
		done:    make(chan struct{}),
	}

	go func() {
		defer close(s.done)
		defer close(s.events)
		for {
			select {
			case <-ctx.Done():
				return
			case payload, ok := <-raw:
				if !ok {
					return
				}
				var event Event
				if err := json.Unmarshal(payload, &event); err != nil {
					log.Warn("[CHANGEFEED] Dropping malformed event: %v", err)
					continue
				}
				select {
				case s.events <- event:
				case <-ctx.Done():
					return
				}
			}
		}
	}()

	return s
}

func (s *stream) Events() <-chan Event {
	return s.events
}

func (s *stream) Close() error {
	var err error
	s.closeOnce.Do(func() {
		s.cancel()
		if s.release != nil {
			err = s.release()
		}
		<-s.done
	})
	return err
}

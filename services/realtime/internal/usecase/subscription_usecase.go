package usecase

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"akiya-share/pkg/changefeed"
	"akiya-share/pkg/logger"
)

var (
	ErrUnknownTable = errors.New("unknown table")
	ErrBadFilter    = errors.New("invalid filter")
)

// Subscription is a filtered view over one bus stream.
type Subscription struct {
	events    chan changefeed.Event
	stream    changefeed.Stream
	cancel    context.CancelFunc
	closeOnce sync.Once
	closeErr  error
}

func (s *Subscription) Events() <-chan changefeed.Event {
	return s.events
}

// Close releases the bus subscription. Safe to call more than once.
func (s *Subscription) Close() error {
	s.closeOnce.Do(func() {
		s.cancel()
		s.closeErr = s.stream.Close()
	})
	return s.closeErr
}

type SubscriptionUseCase interface {
	Subscribe(ctx context.Context, table, filter string) (*Subscription, error)
}

type subscriptionUseCase struct {
	bus    changefeed.Bus
	tables map[string]bool
	logger *logger.Logger
}

func NewSubscriptionUseCase(bus changefeed.Bus, logger *logger.Logger) SubscriptionUseCase {
	return &subscriptionUseCase{
		bus: bus,
		tables: map[string]bool{
			changefeed.TablePosts:    true,
			changefeed.TableLikes:    true,
			changefeed.TableComments: true,
		},
		logger: logger,
	}
}

func (uc *subscriptionUseCase) Subscribe(ctx context.Context, table, filter string) (*Subscription, error) {
	if !uc.tables[table] {
		return nil, fmt.Errorf("%w: %q", ErrUnknownTable, table)
	}
	f, err := changefeed.ParseFilter(filter)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrBadFilter, err)
	}

	ctx, cancel := context.WithCancel(ctx)
	stream, err := uc.bus.Subscribe(ctx, table)
	if err != nil {
		cancel()
		uc.logger.Error("[REALTIME] Failed to subscribe to %s: %v", table, err)
		return nil, err
	}

	sub := &Subscription{
		events: make(chan changefeed.Event, 64),
		stream: stream,
		cancel: cancel,
	}

	go func() {
		defer close(sub.events)
		for {
			select {
			case <-ctx.Done():
				return
			case event, ok := <-stream.Events():
				if !ok {
					return
				}
				if !f.Match(event) {
					continue
				}
				select {
				case sub.events <- event:
				case <-ctx.Done():
					return
				}
			}
		}
	}()

	return sub, nil
}

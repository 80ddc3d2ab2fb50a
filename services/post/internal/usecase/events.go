package usecase

import (
	"context"
	"time"

	"akiya-share/pkg/changefeed"
	"akiya-share/pkg/logger"
)

// publisher emits bare-row change events after a write has committed.
// A failed publish is logged and never fails the write.
type publisher struct {
	bus    changefeed.Bus
	logger *logger.Logger
}

func (p publisher) publish(ctx context.Context, table string, typ changefeed.EventType, row interface{}) {
	if p.bus == nil {
		return
	}

	event, err := changefeed.NewEvent(table, typ, row)
	if err != nil {
		p.logger.Error("[CHANGEFEED] Failed to build %s %s event: %v", typ, table, err)
		return
	}

	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 2*time.Second)
	defer cancel()
	if err := p.bus.Publish(ctx, event); err != nil {
		p.logger.Error("[CHANGEFEED] Failed to publish %s %s event: %v", typ, table, err)
	}
}

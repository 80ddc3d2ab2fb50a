package httpbackend

import (
	"context"
	"net/http"
	"net/url"
	"sync"
	"time"

	"akiya-share/pkg/changefeed"

	"github.com/gorilla/websocket"
)

const (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	eventQueue = 64
)

// Subscribe opens a websocket on the realtime service. The subscription is
// live once Subscribe returns.
func (b *Backend) Subscribe(ctx context.Context, table string, filter *changefeed.Filter) (changefeed.Stream, error) {
	params := url.Values{}
	params.Set("token", b.tokens.Token())
	params.Set("table", table)
	if filter != nil {
		params.Set("filter", filter.String())
	}
	endpoint := b.opts.RealtimeURL + "/realtime/v1/ws?" + params.Encode()

	conn, resp, err := b.dialer.DialContext(ctx, endpoint, nil)
	if err != nil {
		if resp != nil && resp.StatusCode != http.StatusSwitchingProtocols {
			defer resp.Body.Close()
			return nil, decodeError(resp)
		}
		return nil, err
	}
	return newWSStream(ctx, conn), nil
}

type wsStream struct {
	conn      *websocket.Conn
	events    chan changefeed.Event
	done      chan struct{}
	closeOnce sync.Once
}

func newWSStream(ctx context.Context, conn *websocket.Conn) *wsStream {
	s := &wsStream{
		conn:   conn,
		events: make(chan changefeed.Event, eventQueue),
		done:   make(chan struct{}),
	}
	go func() {
		select {
		case <-ctx.Done():
			s.Close()
		case <-s.done:
		}
	}()

	conn.SetReadDeadline(time.Now().Add(pongWait))
	conn.SetPingHandler(func(data string) error {
		conn.SetReadDeadline(time.Now().Add(pongWait))
		return conn.WriteControl(websocket.PongMessage, []byte(data), time.Now().Add(writeWait))
	})

	go s.readLoop()
	return s
}

func (s *wsStream) readLoop() {
	defer close(s.events)
	for {
		var event changefeed.Event
		if err := s.conn.ReadJSON(&event); err != nil {
			return
		}
		s.conn.SetReadDeadline(time.Now().Add(pongWait))
		select {
		case s.events <- event:
		case <-s.done:
			return
		}
	}
}

func (s *wsStream) Events() <-chan changefeed.Event {
	return s.events
}

func (s *wsStream) Close() error {
	var err error
	s.closeOnce.Do(func() {
		close(s.done)
		s.conn.WriteControl(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""), time.Now().Add(writeWait))
		err = s.conn.Close()
	})
	return err
}

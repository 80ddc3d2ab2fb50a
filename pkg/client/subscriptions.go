package client

import (
	"sync"

	"akiya-share/pkg/changefeed"
)

// subscriptions tracks the streams a view holds so Close can release them
// no matter how far the view got.
type subscriptions struct {
	mu      sync.Mutex
	closed  bool
	streams []changefeed.Stream
}

// add keeps s, or closes it straight away when the view is already gone.
func (s *subscriptions) add(stream changefeed.Stream) bool {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		stream.Close()
		return false
	}
	s.streams = append(s.streams, stream)
	s.mu.Unlock()
	return true
}

func (s *subscriptions) closeAll() {
	s.mu.Lock()
	s.closed = true
	streams := s.streams
	s.streams = nil
	s.mu.Unlock()

	for _, stream := range streams {
		stream.Close()
	}
}

func (s *subscriptions) count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.streams)
}

// pump forwards events from stream onto the loop until either side ends.
func pump(l *loop, stream changefeed.Stream, handle func(changefeed.Event)) {
	go func() {
		for {
			select {
			case <-l.ctx.Done():
				return
			case event, ok := <-stream.Events():
				if !ok {
					return
				}
				if !l.post(func() { handle(event) }) {
					return
				}
			}
		}
	}()
}

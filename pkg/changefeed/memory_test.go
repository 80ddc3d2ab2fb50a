package changefeed

import (
	"context"
	"testing"
	"time"

	"akiya-share/pkg/logger"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func receive(t *testing.T, s Stream) Event {
	t.Helper()
	select {
	case e, ok := <-s.Events():
		require.True(t, ok, "stream closed")
		return e
	case <-time.After(time.Second):
		t.Fatal("no event received")
		return Event{}
	}
}

func TestMemoryBus_PublishSubscribe(t *testing.T) {
	bus := NewMemoryBus(logger.New())
	ctx := context.Background()

	posts, err := bus.Subscribe(ctx, TablePosts)
	require.NoError(t, err)
	defer posts.Close()
	likes, err := bus.Subscribe(ctx, TableLikes)
	require.NoError(t, err)
	defer likes.Close()

	event, err := NewEvent(TablePosts, Insert, map[string]string{"id": "p1"})
	require.NoError(t, err)
	require.NoError(t, bus.Publish(ctx, event))

	got := receive(t, posts)
	assert.Equal(t, TablePosts, got.Table)
	assert.Equal(t, Insert, got.Type)
	assert.JSONEq(t, `{"id":"p1"}`, string(got.New))

	select {
	case e := <-likes.Events():
		t.Fatalf("likes stream got unrelated event %+v", e)
	case <-time.After(50 * time.Millisecond):
	}
}

func TestMemoryBus_CloseReleasesSubscription(t *testing.T) {
	bus := NewMemoryBus(logger.New())

	s, err := bus.Subscribe(context.Background(), TableComments)
	require.NoError(t, err)
	assert.Equal(t, 1, bus.Subscribers(TableComments))

	require.NoError(t, s.Close())
	require.NoError(t, s.Close(), "close is idempotent")
	assert.Equal(t, 0, bus.Subscribers(TableComments))

	_, ok := <-s.Events()
	assert.False(t, ok)
}

func TestStream_ContextCancelClosesEvents(t *testing.T) {
	bus := NewMemoryBus(logger.New())
	ctx, cancel := context.WithCancel(context.Background())

	s, err := bus.Subscribe(ctx, TablePosts)
	require.NoError(t, err)
	cancel()

	assert.Eventually(t, func() bool {
		select {
		case _, ok := <-s.Events():
			return !ok
		default:
			return false
		}
	}, time.Second, 10*time.Millisecond)
	assert.NoError(t, s.Close())
}

func TestStream_DropsMalformedPayload(t *testing.T) {
	raw := make(chan []byte, 2)
	s := newStream(context.Background(), raw, nil, logger.New())
	defer s.Close()

	raw <- []byte("not json")
	raw <- []byte(`{"table":"posts","type":"DELETE","old":{"id":"p1"}}`)

	got := receive(t, s)
	assert.Equal(t, Delete, got.Type)
	assert.JSONEq(t, `{"id":"p1"}`, string(got.Old))
}

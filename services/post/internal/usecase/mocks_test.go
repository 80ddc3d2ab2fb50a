package usecase

import (
	"context"
	"io"
	"testing"
	"time"

	"akiya-share/pkg/changefeed"
	"akiya-share/pkg/queue"
	"akiya-share/pkg/s3"
	"akiya-share/services/post/internal/entity"
	"akiya-share/services/post/internal/repo/persistent"

	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type MockPostRepository struct {
	mock.Mock
}

func (m *MockPostRepository) List(filter entity.PostFilter) ([]*entity.Post, error) {
	args := m.Called(filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*entity.Post), args.Error(1)
}

func (m *MockPostRepository) GetByID(id string) (*entity.Post, error) {
	args := m.Called(id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.Post), args.Error(1)
}

func (m *MockPostRepository) Create(post *entity.Post) error {
	args := m.Called(post)
	if post.ID == "" {
		post.ID = "post-1"
	}
	return args.Error(0)
}

func (m *MockPostRepository) Update(post *entity.Post) error {
	return m.Called(post).Error(0)
}

func (m *MockPostRepository) Delete(id string) error {
	return m.Called(id).Error(0)
}

type MockLikeRepository struct {
	mock.Mock
}

func (m *MockLikeRepository) Create(like *entity.Like) error {
	return m.Called(like).Error(0)
}

func (m *MockLikeRepository) Delete(postID, userID string) (bool, error) {
	args := m.Called(postID, userID)
	return args.Bool(0), args.Error(1)
}

type MockCommentRepository struct {
	mock.Mock
}

func (m *MockCommentRepository) ListByPost(postID string) ([]*entity.Comment, error) {
	args := m.Called(postID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*entity.Comment), args.Error(1)
}

func (m *MockCommentRepository) GetByID(id string) (*entity.Comment, error) {
	args := m.Called(id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.Comment), args.Error(1)
}

func (m *MockCommentRepository) Create(comment *entity.Comment) error {
	args := m.Called(comment)
	if comment.ID == "" {
		comment.ID = "comment-1"
	}
	return args.Error(0)
}

func (m *MockCommentRepository) UpdateBody(id, body string) error {
	return m.Called(id, body).Error(0)
}

func (m *MockCommentRepository) Delete(id string) error {
	return m.Called(id).Error(0)
}

type MockProfileRepository struct {
	mock.Mock
}

func (m *MockProfileRepository) GetByID(id string) (*entity.Profile, error) {
	args := m.Called(id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.Profile), args.Error(1)
}

func (m *MockProfileRepository) Upsert(profile *entity.Profile) error {
	return m.Called(profile).Error(0)
}

type MockObjectStore struct {
	mock.Mock
}

func (m *MockObjectStore) Upload(ctx context.Context, bucket, key string, body io.ReadSeeker, contentType string, upsert bool) (string, error) {
	args := m.Called(ctx, bucket, key, body, contentType, upsert)
	return args.String(0), args.Error(1)
}

func (m *MockObjectStore) Remove(ctx context.Context, bucket string, keys []string) ([]string, error) {
	args := m.Called(ctx, bucket, keys)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]string), args.Error(1)
}

func (m *MockObjectStore) Get(ctx context.Context, bucket, key string) (*s3.Object, error) {
	args := m.Called(ctx, bucket, key)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*s3.Object), args.Error(1)
}

type MockCleanupQueue struct {
	mock.Mock
}

func (m *MockCleanupQueue) PublishCleanupTask(ctx context.Context, task queue.CleanupTask) error {
	return m.Called(ctx, task).Error(0)
}

var (
	_ persistent.PostRepository    = (*MockPostRepository)(nil)
	_ persistent.LikeRepository    = (*MockLikeRepository)(nil)
	_ persistent.CommentRepository = (*MockCommentRepository)(nil)
	_ persistent.ProfileRepository = (*MockProfileRepository)(nil)
	_ ObjectStore                  = (*MockObjectStore)(nil)
	_ CleanupQueue                 = (*MockCleanupQueue)(nil)
)

func subscribe(t *testing.T, bus changefeed.Bus, table string) changefeed.Stream {
	t.Helper()
	stream, err := bus.Subscribe(context.Background(), table)
	require.NoError(t, err)
	t.Cleanup(func() { stream.Close() })
	return stream
}

func nextEvent(t *testing.T, stream changefeed.Stream) changefeed.Event {
	t.Helper()
	select {
	case event := <-stream.Events():
		return event
	case <-time.After(time.Second):
		t.Fatal("no change event received")
		return changefeed.Event{}
	}
}

func noEvent(t *testing.T, stream changefeed.Stream) {
	t.Helper()
	select {
	case event := <-stream.Events():
		t.Fatalf("unexpected change event: %+v", event)
	case <-time.After(50 * time.Millisecond):
	}
}

package http

import (
	"context"
	"io"

	"akiya-share/pkg/queue"
	"akiya-share/pkg/s3"
	"akiya-share/services/post/internal/entity"
	"akiya-share/services/post/internal/usecase"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/mock"
)

type MockPostUseCase struct {
	mock.Mock
}

func (m *MockPostUseCase) ListPosts(ctx context.Context, filter entity.PostFilter) ([]*entity.Post, error) {
	args := m.Called(filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*entity.Post), args.Error(1)
}

func (m *MockPostUseCase) GetPost(ctx context.Context, postID string) (*entity.Post, error) {
	args := m.Called(postID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.Post), args.Error(1)
}

func (m *MockPostUseCase) CreatePost(ctx context.Context, userID string, input usecase.CreatePostInput) (*entity.Post, error) {
	args := m.Called(userID, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.Post), args.Error(1)
}

func (m *MockPostUseCase) UpdatePost(ctx context.Context, postID, userID string, update entity.PostUpdate) (*entity.Post, error) {
	args := m.Called(postID, userID, update)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.Post), args.Error(1)
}

func (m *MockPostUseCase) DeletePost(ctx context.Context, postID, userID string) error {
	return m.Called(postID, userID).Error(0)
}

func (m *MockPostUseCase) LikePost(ctx context.Context, postID, userID string) (*entity.Like, error) {
	args := m.Called(postID, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.Like), args.Error(1)
}

func (m *MockPostUseCase) UnlikePost(ctx context.Context, postID, userID string) error {
	return m.Called(postID, userID).Error(0)
}

type MockCommentUseCase struct {
	mock.Mock
}

func (m *MockCommentUseCase) ListComments(ctx context.Context, postID string) ([]*entity.Comment, error) {
	args := m.Called(postID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*entity.Comment), args.Error(1)
}

func (m *MockCommentUseCase) AddComment(ctx context.Context, postID, userID, body string) (*entity.Comment, error) {
	args := m.Called(postID, userID, body)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.Comment), args.Error(1)
}

func (m *MockCommentUseCase) EditComment(ctx context.Context, commentID, userID, body string) (*entity.Comment, error) {
	args := m.Called(commentID, userID, body)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.Comment), args.Error(1)
}

func (m *MockCommentUseCase) DeleteComment(ctx context.Context, commentID, userID string) error {
	return m.Called(commentID, userID).Error(0)
}

type MockProfileUseCase struct {
	mock.Mock
}

func (m *MockProfileUseCase) GetProfile(ctx context.Context, userID string) (*entity.Profile, error) {
	args := m.Called(userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.Profile), args.Error(1)
}

func (m *MockProfileUseCase) UpsertProfile(ctx context.Context, profile *entity.Profile) (*entity.Profile, error) {
	args := m.Called(profile)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.Profile), args.Error(1)
}

type MockStorageUseCase struct {
	mock.Mock
}

func (m *MockStorageUseCase) Upload(ctx context.Context, userID, bucket, objectPath string, body io.ReadSeeker, contentType string, upsert bool) (string, error) {
	args := m.Called(userID, bucket, objectPath, contentType, upsert)
	return args.String(0), args.Error(1)
}

func (m *MockStorageUseCase) Remove(ctx context.Context, userID, bucket string, paths []string) (*usecase.RemoveResult, error) {
	args := m.Called(userID, bucket, paths)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*usecase.RemoveResult), args.Error(1)
}

func (m *MockStorageUseCase) Open(ctx context.Context, bucket, objectPath string) (*s3.Object, error) {
	args := m.Called(bucket, objectPath)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*s3.Object), args.Error(1)
}

func (m *MockStorageUseCase) RetryCleanup(ctx context.Context, task queue.CleanupTask) error {
	return m.Called(task).Error(0)
}

var (
	_ usecase.PostUseCase    = (*MockPostUseCase)(nil)
	_ usecase.CommentUseCase = (*MockCommentUseCase)(nil)
	_ usecase.ProfileUseCase = (*MockProfileUseCase)(nil)
	_ usecase.StorageUseCase = (*MockStorageUseCase)(nil)
)

func setupTestRouter() *gin.Engine {
	gin.SetMode(gin.TestMode)
	return gin.New()
}

func asUser(userID string, h gin.HandlerFunc) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set("user_id", userID)
		h(c)
	}
}

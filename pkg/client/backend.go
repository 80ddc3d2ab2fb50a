// Package client keeps views of akiya-share posts, likes and comments live
// against the backend services. Each view owns its state and serializes every
// mutation through its own event loop.
package client

import (
	"context"

	"akiya-share/pkg/changefeed"
	"akiya-share/pkg/logger"
)

type Auth interface {
	// CurrentUser returns nil without error when nobody is signed in.
	CurrentUser(ctx context.Context) (*Identity, error)
	SignIn(ctx context.Context, email, password string) (*Identity, error)
	SignUp(ctx context.Context, email, password string, meta Metadata) (*Identity, error)
	SignOut(ctx context.Context) error
	UpdateUser(ctx context.Context, update MetadataUpdate) (*Identity, error)
	UploadAvatar(ctx context.Context, filename string, data []byte) (string, error)
	RequestPasswordReset(ctx context.Context, email, redirectTo string) error
	// UpdatePassword uses resetToken when set, otherwise the current session.
	UpdatePassword(ctx context.Context, resetToken, password string) error
}

type Records interface {
	ListPosts(ctx context.Context, q PostQuery) ([]Post, error)
	InsertPost(ctx context.Context, p NewPost) (*Post, error)
	DeletePost(ctx context.Context, postID string) error
	InsertLike(ctx context.Context, postID, userID string) error
	DeleteLike(ctx context.Context, postID, userID string) error
	ListComments(ctx context.Context, postID string) ([]Comment, error)
	InsertComment(ctx context.Context, postID, userID, body string) (*Comment, error)
	GetProfile(ctx context.Context, userID string) (*Profile, error)
	UpsertProfile(ctx context.Context, p Profile) error
}

type Realtime interface {
	// Subscribe streams changes on table until the stream is closed. A nil
	// filter receives every row.
	Subscribe(ctx context.Context, table string, filter *changefeed.Filter) (changefeed.Stream, error)
}

type Storage interface {
	Upload(ctx context.Context, bucket, path string, data []byte, contentType string, overwrite bool) error
	PublicURL(bucket, path string) string
	Remove(ctx context.Context, bucket string, paths []string) error
}

type Backend struct {
	Auth     Auth
	Records  Records
	Realtime Realtime
	Storage  Storage
}

// Logger is satisfied by *logger.Logger.
type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}

func defaultLogger(l Logger) Logger {
	if l != nil {
		return l
	}
	return logger.New()
}

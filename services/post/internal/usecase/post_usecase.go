package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"akiya-share/pkg/changefeed"
	"akiya-share/pkg/logger"
	"akiya-share/services/post/internal/entity"
	"akiya-share/services/post/internal/repo/persistent"
)

type CreatePostInput struct {
	Title         string
	ImageURL      string
	ImageURLs     []string
	AuthorComment string
	Tags          []string
}

type PostUseCase interface {
	ListPosts(ctx context.Context, filter entity.PostFilter) ([]*entity.Post, error)
	GetPost(ctx context.Context, postID string) (*entity.Post, error)
	CreatePost(ctx context.Context, userID string, input CreatePostInput) (*entity.Post, error)
	UpdatePost(ctx context.Context, postID, userID string, update entity.PostUpdate) (*entity.Post, error)
	DeletePost(ctx context.Context, postID, userID string) error
	LikePost(ctx context.Context, postID, userID string) (*entity.Like, error)
	UnlikePost(ctx context.Context, postID, userID string) error
}

type postUseCase struct {
	postRepo persistent.PostRepository
	likeRepo persistent.LikeRepository
	events   publisher
	logger   *logger.Logger
}

func NewPostUseCase(
	postRepo persistent.PostRepository,
	likeRepo persistent.LikeRepository,
	bus changefeed.Bus,
	logger *logger.Logger,
) PostUseCase {
	return &postUseCase{
		postRepo: postRepo,
		likeRepo: likeRepo,
		events:   publisher{bus: bus, logger: logger},
		logger:   logger,
	}
}

func (uc *postUseCase) ListPosts(ctx context.Context, filter entity.PostFilter) ([]*entity.Post, error) {
	filter.Title = strings.TrimSpace(filter.Title)
	posts, err := uc.postRepo.List(filter)
	if err != nil {
		uc.logger.Error("Failed to list posts: %v", err)
		return nil, fmt.Errorf("failed to list posts")
	}
	return posts, nil
}

func (uc *postUseCase) GetPost(ctx context.Context, postID string) (*entity.Post, error) {
	post, err := uc.postRepo.GetByID(postID)
	if err != nil {
		if errors.Is(err, persistent.ErrNotFound) {
			return nil, ErrPostNotFound
		}
		return nil, err
	}
	return post, nil
}

func normalizeTags(tags []string) []string {
	out := make([]string, 0, len(tags))
	seen := make(map[string]bool, len(tags))
	for _, tag := range tags {
		tag = strings.TrimSpace(tag)
		if tag == "" || seen[tag] {
			continue
		}
		seen[tag] = true
		out = append(out, tag)
	}
	return out
}

func (uc *postUseCase) CreatePost(ctx context.Context, userID string, input CreatePostInput) (*entity.Post, error) {
	title := strings.TrimSpace(input.Title)
	if title == "" {
		return nil, ErrEmptyTitle
	}

	imageURLs := make([]string, 0, len(input.ImageURLs))
	for _, u := range input.ImageURLs {
		if u = strings.TrimSpace(u); u != "" {
			imageURLs = append(imageURLs, u)
		}
	}
	imageURL := strings.TrimSpace(input.ImageURL)
	if imageURL == "" && len(imageURLs) > 0 {
		imageURL = imageURLs[0]
	}
	if imageURL == "" {
		return nil, ErrNoImage
	}

	post := &entity.Post{
		PostRecord: entity.PostRecord{
			UserID:        userID,
			Title:         title,
			ImageURL:      imageURL,
			ImageURLs:     imageURLs,
			AuthorComment: strings.TrimSpace(input.AuthorComment),
			Tags:          normalizeTags(input.Tags),
			CreatedAt:     time.Now().UTC(),
		},
		Likes: []entity.Like{},
	}
	if err := uc.postRepo.Create(post); err != nil {
		uc.logger.Error("Failed to create post: %v", err)
		return nil, fmt.Errorf("failed to create post")
	}

	uc.events.publish(ctx, changefeed.TablePosts, changefeed.Insert, post.PostRecord)
	return post, nil
}

func (uc *postUseCase) ownedPost(postID, userID string) (*entity.Post, error) {
	post, err := uc.postRepo.GetByID(postID)
	if err != nil {
		if errors.Is(err, persistent.ErrNotFound) {
			return nil, ErrPostNotFound
		}
		return nil, err
	}
	if post.UserID != userID {
		return nil, ErrNotOwner
	}
	return post, nil
}

func (uc *postUseCase) UpdatePost(ctx context.Context, postID, userID string, update entity.PostUpdate) (*entity.Post, error) {
	post, err := uc.ownedPost(postID, userID)
	if err != nil {
		return nil, err
	}

	if update.Title != nil {
		title := strings.TrimSpace(*update.Title)
		if title == "" {
			return nil, ErrEmptyTitle
		}
		post.Title = title
	}
	if update.AuthorComment != nil {
		post.AuthorComment = strings.TrimSpace(*update.AuthorComment)
	}
	if update.Tags != nil {
		post.Tags = normalizeTags(*update.Tags)
	}

	if err := uc.postRepo.Update(post); err != nil {
		uc.logger.Error("Failed to update post %s: %v", postID, err)
		return nil, fmt.Errorf("failed to update post")
	}

	uc.events.publish(ctx, changefeed.TablePosts, changefeed.Update, post.PostRecord)
	return post, nil
}

func (uc *postUseCase) DeletePost(ctx context.Context, postID, userID string) error {
	post, err := uc.ownedPost(postID, userID)
	if err != nil {
		return err
	}

	if err := uc.postRepo.Delete(postID); err != nil {
		if errors.Is(err, persistent.ErrNotFound) {
			return ErrPostNotFound
		}
		uc.logger.Error("Failed to delete post %s: %v", postID, err)
		return fmt.Errorf("failed to delete post")
	}

	uc.events.publish(ctx, changefeed.TablePosts, changefeed.Delete, post.PostRecord)
	return nil
}

func (uc *postUseCase) LikePost(ctx context.Context, postID, userID string) (*entity.Like, error) {
	if _, err := uc.GetPost(ctx, postID); err != nil {
		return nil, err
	}

	like := &entity.Like{PostID: postID, UserID: userID, CreatedAt: time.Now().UTC()}
	if err := uc.likeRepo.Create(like); err != nil {
		if errors.Is(err, persistent.ErrDuplicate) {
			return nil, ErrAlreadyLiked
		}
		uc.logger.Error("Failed to like post %s: %v", postID, err)
		return nil, fmt.Errorf("failed to like post")
	}

	uc.events.publish(ctx, changefeed.TableLikes, changefeed.Insert, like)
	return like, nil
}

// UnlikePost is idempotent. An event is only published when a row went away.
func (uc *postUseCase) UnlikePost(ctx context.Context, postID, userID string) error {
	deleted, err := uc.likeRepo.Delete(postID, userID)
	if err != nil {
		uc.logger.Error("Failed to unlike post %s: %v", postID, err)
		return fmt.Errorf("failed to unlike post")
	}

	if deleted {
		uc.events.publish(ctx, changefeed.TableLikes, changefeed.Delete, entity.Like{PostID: postID, UserID: userID})
	}
	return nil
}

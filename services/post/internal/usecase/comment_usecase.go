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

type CommentUseCase interface {
	ListComments(ctx context.Context, postID string) ([]*entity.Comment, error)
	AddComment(ctx context.Context, postID, userID, body string) (*entity.Comment, error)
	EditComment(ctx context.Context, commentID, userID, body string) (*entity.Comment, error)
	DeleteComment(ctx context.Context, commentID, userID string) error
}

type commentUseCase struct {
	commentRepo persistent.CommentRepository
	postRepo    persistent.PostRepository
	events      publisher
	logger      *logger.Logger
}

func NewCommentUseCase(
	commentRepo persistent.CommentRepository,
	postRepo persistent.PostRepository,
	bus changefeed.Bus,
	logger *logger.Logger,
) CommentUseCase {
	return &commentUseCase{
		commentRepo: commentRepo,
		postRepo:    postRepo,
		events:      publisher{bus: bus, logger: logger},
		logger:      logger,
	}
}

func (uc *commentUseCase) ListComments(ctx context.Context, postID string) ([]*entity.Comment, error) {
	comments, err := uc.commentRepo.ListByPost(postID)
	if err != nil {
		uc.logger.Error("Failed to list comments for %s: %v", postID, err)
		return nil, fmt.Errorf("failed to list comments")
	}
	return comments, nil
}

func (uc *commentUseCase) AddComment(ctx context.Context, postID, userID, body string) (*entity.Comment, error) {
	body = strings.TrimSpace(body)
	if body == "" {
		return nil, ErrEmptyComment
	}
	if _, err := uc.postRepo.GetByID(postID); err != nil {
		if errors.Is(err, persistent.ErrNotFound) {
			return nil, ErrPostNotFound
		}
		return nil, err
	}

	comment := &entity.Comment{CommentRecord: entity.CommentRecord{
		PostID:    postID,
		UserID:    userID,
		Body:      body,
		CreatedAt: time.Now().UTC(),
	}}
	if err := uc.commentRepo.Create(comment); err != nil {
		uc.logger.Error("Failed to create comment on %s: %v", postID, err)
		return nil, fmt.Errorf("failed to add comment")
	}

	uc.events.publish(ctx, changefeed.TableComments, changefeed.Insert, comment.CommentRecord)
	return comment, nil
}

func (uc *commentUseCase) ownedComment(commentID, userID string) (*entity.Comment, error) {
	comment, err := uc.commentRepo.GetByID(commentID)
	if err != nil {
		if errors.Is(err, persistent.ErrNotFound) {
			return nil, ErrCommentNotFound
		}
		return nil, err
	}
	if comment.UserID != userID {
		return nil, ErrNotOwner
	}
	return comment, nil
}

func (uc *commentUseCase) EditComment(ctx context.Context, commentID, userID, body string) (*entity.Comment, error) {
	body = strings.TrimSpace(body)
	if body == "" {
		return nil, ErrEmptyComment
	}
	comment, err := uc.ownedComment(commentID, userID)
	if err != nil {
		return nil, err
	}

	if err := uc.commentRepo.UpdateBody(commentID, body); err != nil {
		uc.logger.Error("Failed to edit comment %s: %v", commentID, err)
		return nil, fmt.Errorf("failed to edit comment")
	}
	comment.Body = body

	uc.events.publish(ctx, changefeed.TableComments, changefeed.Update, comment.CommentRecord)
	return comment, nil
}

func (uc *commentUseCase) DeleteComment(ctx context.Context, commentID, userID string) error {
	comment, err := uc.ownedComment(commentID, userID)
	if err != nil {
		return err
	}

	if err := uc.commentRepo.Delete(commentID); err != nil {
		uc.logger.Error("Failed to delete comment %s: %v", commentID, err)
		return fmt.Errorf("failed to delete comment")
	}

	uc.events.publish(ctx, changefeed.TableComments, changefeed.Delete, comment.CommentRecord)
	return nil
}

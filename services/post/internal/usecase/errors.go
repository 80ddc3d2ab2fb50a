package usecase

import "errors"

var (
	ErrPostNotFound    = errors.New("post not found")
	ErrCommentNotFound = errors.New("comment not found")
	ErrProfileNotFound = errors.New("profile not found")
	ErrNotOwner        = errors.New("only the author can change this")
	ErrAlreadyLiked    = errors.New("post already liked")
	ErrEmptyTitle      = errors.New("title must not be empty")
	ErrNoImage         = errors.New("at least one image is required")
	ErrEmptyComment    = errors.New("comment must not be empty")
	ErrEmptyUsername   = errors.New("username must not be empty")
	ErrUnknownBucket   = errors.New("unknown storage bucket")
	ErrForeignPath     = errors.New("storage paths must start with your user id")
	ErrObjectExists    = errors.New("object already exists")
	ErrObjectNotFound  = errors.New("object not found")
)

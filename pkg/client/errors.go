package client

import "errors"

var (
	ErrLoginRequired    = errors.New("please log in first")
	ErrNotOwner         = errors.New("only the author can delete this post")
	ErrNotFound         = errors.New("not found")
	ErrAlreadyLiked     = errors.New("post already liked")
	ErrConflict         = errors.New("conflict")
	ErrCancelled        = errors.New("cancelled")
	ErrClosed           = errors.New("view closed")
	ErrEmptyTitle       = errors.New("title must not be empty")
	ErrNoImage          = errors.New("at least one image is required")
	ErrEmptyComment     = errors.New("comment must not be empty")
	ErrPasswordMismatch = errors.New("passwords do not match")
	ErrEmptyUsername    = errors.New("username must not be empty")
	ErrInvalidForm      = errors.New("invalid form")
)

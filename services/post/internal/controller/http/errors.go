package http

import (
	"errors"
	"net/http"

	"akiya-share/services/post/internal/usecase"

	"github.com/gin-gonic/gin"
)

func statusFor(err error) int {
	switch {
	case errors.Is(err, usecase.ErrPostNotFound),
		errors.Is(err, usecase.ErrCommentNotFound),
		errors.Is(err, usecase.ErrProfileNotFound),
		errors.Is(err, usecase.ErrObjectNotFound):
		return http.StatusNotFound
	case errors.Is(err, usecase.ErrNotOwner),
		errors.Is(err, usecase.ErrForeignPath):
		return http.StatusForbidden
	case errors.Is(err, usecase.ErrAlreadyLiked),
		errors.Is(err, usecase.ErrObjectExists):
		return http.StatusConflict
	case errors.Is(err, usecase.ErrEmptyTitle),
		errors.Is(err, usecase.ErrNoImage),
		errors.Is(err, usecase.ErrEmptyComment),
		errors.Is(err, usecase.ErrEmptyUsername),
		errors.Is(err, usecase.ErrUnknownBucket):
		return http.StatusBadRequest
	}
	return http.StatusInternalServerError
}

func respondError(c *gin.Context, err error) {
	c.JSON(statusFor(err), gin.H{"error": err.Error()})
}

package httpbackend

import (
	"fmt"
	"net/http"

	"akiya-share/pkg/client"
)

// APIError is a non-2xx answer from one of the services.
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("request failed with status %d", e.Status)
	}
	return e.Message
}

// Is lets callers test API errors against the client sentinels.
func (e *APIError) Is(target error) bool {
	switch target {
	case client.ErrLoginRequired:
		return e.Status == http.StatusUnauthorized
	case client.ErrNotOwner:
		return e.Status == http.StatusForbidden
	case client.ErrNotFound:
		return e.Status == http.StatusNotFound
	case client.ErrConflict:
		return e.Status == http.StatusConflict
	}
	return false
}

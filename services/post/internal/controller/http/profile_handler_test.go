package http

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"testing"

	"akiya-share/services/post/internal/entity"
	"akiya-share/services/post/internal/usecase"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

func TestGetProfile(t *testing.T) {
	mockUseCase := new(MockProfileUseCase)
	handler := NewProfileHandler(mockUseCase)

	router := setupTestRouter()
	router.GET("/profiles/:id", handler.GetProfile)

	mockUseCase.On("GetProfile", "u1").Return(&entity.Profile{ID: "u1", Username: "hanako"}, nil)
	mockUseCase.On("GetProfile", "ghost").Return(nil, usecase.ErrProfileNotFound)

	w := httptest.NewRecorder()
	req, _ := http.NewRequest("GET", "/profiles/u1", nil)
	router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "hanako")

	w = httptest.NewRecorder()
	req, _ = http.NewRequest("GET", "/profiles/ghost", nil)
	router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestUpsertProfile_UsesCaller(t *testing.T) {
	mockUseCase := new(MockProfileUseCase)
	handler := NewProfileHandler(mockUseCase)

	router := setupTestRouter()
	router.PUT("/profiles", asUser("u1", handler.UpsertProfile))

	mockUseCase.On("UpsertProfile", mock.MatchedBy(func(p *entity.Profile) bool {
		return p.ID == "u1" && p.Username == "hanako"
	})).Return(&entity.Profile{ID: "u1", Username: "hanako"}, nil)

	w := httptest.NewRecorder()
	req, _ := http.NewRequest("PUT", "/profiles", bytes.NewBufferString(`{"id":"someone-else","username":"hanako"}`))
	req.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	mockUseCase.AssertExpectations(t)
}

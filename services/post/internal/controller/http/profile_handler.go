package http

import (
	"net/http"

	"akiya-share/services/post/internal/entity"
	"akiya-share/services/post/internal/usecase"

	"github.com/gin-gonic/gin"
)

type ProfileHandler struct {
	profileUseCase usecase.ProfileUseCase
}

func NewProfileHandler(profileUseCase usecase.ProfileUseCase) *ProfileHandler {
	return &ProfileHandler{profileUseCase: profileUseCase}
}

type ProfileRequest struct {
	Username  string `json:"username" binding:"required,max=50"`
	AvatarURL string `json:"avatar_url" binding:"max=500"`
	Bio       string `json:"bio" binding:"max=1000"`
}

// GetProfile godoc
// @Summary      Public profile
// @Tags         profiles
// @Produce      json
// @Param        id path string true "User ID"
// @Success      200  {object}  entity.Profile
// @Failure      404  {object}  map[string]string
// @Router       /profiles/{id} [get]
func (h *ProfileHandler) GetProfile(c *gin.Context) {
	profile, err := h.profileUseCase.GetProfile(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, profile)
}

// UpsertProfile godoc
// @Summary      Create or replace own profile
// @Tags         profiles
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        request body ProfileRequest true "Profile"
// @Success      200  {object}  entity.Profile
// @Failure      400  {object}  map[string]string
// @Router       /profiles [put]
func (h *ProfileHandler) UpsertProfile(c *gin.Context) {
	var req ProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	profile, err := h.profileUseCase.UpsertProfile(c.Request.Context(), &entity.Profile{
		ID:        c.GetString("user_id"),
		Username:  req.Username,
		AvatarURL: req.AvatarURL,
		Bio:       req.Bio,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, profile)
}

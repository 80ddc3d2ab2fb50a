package http

import (
	"net/http"

	"akiya-share/pkg/logger"
	"akiya-share/services/post/internal/entity"
	"akiya-share/services/post/internal/usecase"

	"github.com/gin-gonic/gin"
)

type PostHandler struct {
	postUseCase usecase.PostUseCase
	logger      *logger.Logger
}

func NewPostHandler(postUseCase usecase.PostUseCase, logger *logger.Logger) *PostHandler {
	return &PostHandler{
		postUseCase: postUseCase,
		logger:      logger,
	}
}

type CreatePostRequest struct {
	Title         string   `json:"title" binding:"required,max=255"`
	ImageURL      string   `json:"image_url" binding:"omitempty,url"`
	ImageURLs     []string `json:"image_urls" binding:"omitempty,dive,url"`
	AuthorComment string   `json:"author_comment"`
	Tags          []string `json:"tags" binding:"omitempty,max=20,dive,max=50"`
}

type UpdatePostRequest struct {
	Title         *string   `json:"title" binding:"omitempty,max=255"`
	AuthorComment *string   `json:"author_comment"`
	Tags          *[]string `json:"tags" binding:"omitempty,max=20,dive,max=50"`
}

type LikeRequest struct {
	PostID string `json:"post_id" binding:"required"`
}

// ListPosts godoc
// @Summary      List posts
// @Description  Newest first, joined with author profile and likes. title is a case-insensitive substring match.
// @Tags         posts
// @Produce      json
// @Param        title    query string false "Title substring"
// @Param        user_id  query string false "Author id"
// @Success      200  {array}   entity.Post
// @Failure      500  {object}  map[string]string
// @Router       /posts [get]
func (h *PostHandler) ListPosts(c *gin.Context) {
	posts, err := h.postUseCase.ListPosts(c.Request.Context(), entity.PostFilter{
		Title:  c.Query("title"),
		UserID: c.Query("user_id"),
	})
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, posts)
}

// GetPost godoc
// @Summary      Get post by ID
// @Tags         posts
// @Produce      json
// @Param        id path string true "Post ID"
// @Success      200  {object}  entity.Post
// @Failure      404  {object}  map[string]string
// @Router       /posts/{id} [get]
func (h *PostHandler) GetPost(c *gin.Context) {
	post, err := h.postUseCase.GetPost(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, post)
}

// CreatePost godoc
// @Summary      Create a post
// @Description  Image files are uploaded beforehand through the storage endpoint; the post references their public URLs.
// @Tags         posts
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        request body CreatePostRequest true "Post data"
// @Success      201  {object}  entity.Post
// @Failure      400  {object}  map[string]string
// @Failure      500  {object}  map[string]string
// @Router       /posts [post]
func (h *PostHandler) CreatePost(c *gin.Context) {
	var req CreatePostRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	post, err := h.postUseCase.CreatePost(c.Request.Context(), c.GetString("user_id"), usecase.CreatePostInput{
		Title:         req.Title,
		ImageURL:      req.ImageURL,
		ImageURLs:     req.ImageURLs,
		AuthorComment: req.AuthorComment,
		Tags:          req.Tags,
	})
	if err != nil {
		respondError(c, err)
		return
	}

	h.logger.Info("Post %s created by %s", post.ID, post.UserID)
	c.JSON(http.StatusCreated, post)
}

// UpdatePost godoc
// @Summary      Update a post
// @Tags         posts
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id path string true "Post ID"
// @Param        request body UpdatePostRequest true "Fields to change"
// @Success      200  {object}  entity.Post
// @Failure      400  {object}  map[string]string
// @Failure      403  {object}  map[string]string
// @Failure      404  {object}  map[string]string
// @Router       /posts/{id} [patch]
func (h *PostHandler) UpdatePost(c *gin.Context) {
	var req UpdatePostRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	post, err := h.postUseCase.UpdatePost(c.Request.Context(), c.Param("id"), c.GetString("user_id"), entity.PostUpdate{
		Title:         req.Title,
		AuthorComment: req.AuthorComment,
		Tags:          req.Tags,
	})
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, post)
}

// DeletePost godoc
// @Summary      Delete a post
// @Description  Removes the record with its likes and comments. Image objects are removed separately.
// @Tags         posts
// @Security     BearerAuth
// @Param        id path string true "Post ID"
// @Success      204
// @Failure      403  {object}  map[string]string
// @Failure      404  {object}  map[string]string
// @Router       /posts/{id} [delete]
func (h *PostHandler) DeletePost(c *gin.Context) {
	if err := h.postUseCase.DeletePost(c.Request.Context(), c.Param("id"), c.GetString("user_id")); err != nil {
		respondError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

// LikePost godoc
// @Summary      Like a post
// @Tags         likes
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        request body LikeRequest true "Post to like"
// @Success      201  {object}  entity.Like
// @Failure      404  {object}  map[string]string
// @Failure      409  {object}  map[string]string
// @Router       /likes [post]
func (h *PostHandler) LikePost(c *gin.Context) {
	var req LikeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	like, err := h.postUseCase.LikePost(c.Request.Context(), req.PostID, c.GetString("user_id"))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, like)
}

// UnlikePost godoc
// @Summary      Remove the caller's like
// @Tags         likes
// @Security     BearerAuth
// @Param        post_id path string true "Post ID"
// @Success      204
// @Router       /likes/{post_id} [delete]
func (h *PostHandler) UnlikePost(c *gin.Context) {
	if err := h.postUseCase.UnlikePost(c.Request.Context(), c.Param("post_id"), c.GetString("user_id")); err != nil {
		respondError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

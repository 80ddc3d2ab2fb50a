package http

import (
	"bytes"
	"io"
	"net/http"
	"strconv"

	"akiya-share/services/post/internal/usecase"

	"github.com/gin-gonic/gin"
)

const maxUploadSize = 10 << 20

type StorageHandler struct {
	storageUseCase usecase.StorageUseCase
}

func NewStorageHandler(storageUseCase usecase.StorageUseCase) *StorageHandler {
	return &StorageHandler{storageUseCase: storageUseCase}
}

type RemoveRequest struct {
	Paths []string `json:"paths" binding:"required,min=1"`
}

// Upload godoc
// @Summary      Upload an object
// @Description  path must start with the caller's user id. Without upsert an existing object is a conflict.
// @Tags         storage
// @Accept       multipart/form-data
// @Produce      json
// @Security     BearerAuth
// @Param        bucket  path     string true  "Bucket"
// @Param        file    formData file   true  "Object data"
// @Param        path    formData string true  "Object path"
// @Param        upsert  formData bool   false "Overwrite existing"
// @Success      201  {object}  map[string]string
// @Failure      400  {object}  map[string]string
// @Failure      403  {object}  map[string]string
// @Failure      409  {object}  map[string]string
// @Router       /storage/{bucket} [post]
func (h *StorageHandler) Upload(c *gin.Context) {
	file, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "File is required"})
		return
	}
	if file.Size > maxUploadSize {
		c.JSON(http.StatusBadRequest, gin.H{"error": "File must be 10MB or smaller"})
		return
	}
	objectPath := c.PostForm("path")
	if objectPath == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Path is required"})
		return
	}
	upsert, _ := strconv.ParseBool(c.PostForm("upsert"))

	src, err := file.Open()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to process file"})
		return
	}
	defer src.Close()

	data, err := io.ReadAll(src)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to process file"})
		return
	}

	contentType := file.Header.Get("Content-Type")
	if contentType == "" || contentType == "application/octet-stream" {
		contentType = http.DetectContentType(data)
	}

	url, err := h.storageUseCase.Upload(c.Request.Context(), c.GetString("user_id"), c.Param("bucket"), objectPath, bytes.NewReader(data), contentType, upsert)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"path": objectPath, "public_url": url})
}

// Remove godoc
// @Summary      Remove objects
// @Description  Reports removed and failed paths. Failed paths are retried in the background.
// @Tags         storage
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        bucket  path string        true "Bucket"
// @Param        request body RemoveRequest true "Paths"
// @Success      200  {object}  usecase.RemoveResult
// @Failure      403  {object}  map[string]string
// @Router       /storage/{bucket} [delete]
func (h *StorageHandler) Remove(c *gin.Context) {
	var req RemoveRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	result, err := h.storageUseCase.Remove(c.Request.Context(), c.GetString("user_id"), c.Param("bucket"), req.Paths)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

// ServePublic streams a public object.
func (h *StorageHandler) ServePublic(c *gin.Context) {
	obj, err := h.storageUseCase.Open(c.Request.Context(), c.Param("bucket"), c.Param("path"))
	if err != nil {
		respondError(c, err)
		return
	}
	defer obj.Body.Close()

	size := obj.ContentLength
	if size <= 0 {
		size = -1
	}
	c.Header("Cache-Control", "public, max-age=3600")
	c.DataFromReader(http.StatusOK, size, obj.ContentType, obj.Body, nil)
}

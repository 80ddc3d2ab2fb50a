package client

import (
	"context"
	"errors"
	"fmt"
	"path"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
)

var validate = validator.New(validator.WithRequiredStructEnabled())

type ImageFile struct {
	Name        string `validate:"required"`
	Data        []byte `validate:"required"`
	ContentType string
}

type PostForm struct {
	Title         string      `validate:"required,max=255"`
	AuthorComment string      `validate:"max=2000"`
	Tags          []string    `validate:"max=20,dive,max=50"`
	Images        []ImageFile `validate:"min=1,dive"`
}

// ParseTags splits a comma separated tag list.
func ParseTags(s string) []string {
	var tags []string
	for _, t := range strings.Split(s, ",") {
		if t = strings.TrimSpace(t); t != "" {
			tags = append(tags, t)
		}
	}
	return tags
}

func (f PostForm) normalized() PostForm {
	f.Title = strings.TrimSpace(f.Title)
	f.AuthorComment = strings.TrimSpace(f.AuthorComment)
	tags := make([]string, 0, len(f.Tags))
	for _, t := range f.Tags {
		if t = strings.TrimSpace(t); t != "" {
			tags = append(tags, t)
		}
	}
	f.Tags = tags
	return f
}

// Validate reports the first problem with the form as a sentinel error.
func (f PostForm) Validate() error {
	err := validate.Struct(f.normalized())
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}
	for _, fe := range verrs {
		switch {
		case fe.Field() == "Title" && fe.Tag() == "required":
			return ErrEmptyTitle
		case fe.Field() == "Images":
			return ErrNoImage
		}
	}
	fe := verrs[0]
	return fmt.Errorf("%w: %s failed %s", ErrInvalidForm, fe.Namespace(), fe.Tag())
}

func imageExt(name string) string {
	ext := strings.TrimPrefix(strings.ToLower(path.Ext(name)), ".")
	if ext == "" {
		return "jpg"
	}
	return ext
}

// CreatePost uploads the form's images under the user's folder and inserts
// the post. Nothing is sent when the form is invalid. Images uploaded before
// a later failure are left in storage.
func CreatePost(ctx context.Context, backend Backend, userID string, form PostForm, bucket string) (*Post, error) {
	if userID == "" {
		return nil, ErrLoginRequired
	}
	if err := form.Validate(); err != nil {
		return nil, err
	}
	form = form.normalized()
	if bucket == "" {
		bucket = "images"
	}

	urls := make([]string, 0, len(form.Images))
	for _, img := range form.Images {
		objectPath := fmt.Sprintf("%s/%s.%s", userID, uuid.New().String(), imageExt(img.Name))
		if err := backend.Storage.Upload(ctx, bucket, objectPath, img.Data, img.ContentType, false); err != nil {
			return nil, fmt.Errorf("upload of %s failed: %w", img.Name, err)
		}
		urls = append(urls, backend.Storage.PublicURL(bucket, objectPath))
	}

	post, err := backend.Records.InsertPost(ctx, NewPost{
		UserID:        userID,
		Title:         form.Title,
		ImageURL:      urls[0],
		ImageURLs:     urls,
		AuthorComment: form.AuthorComment,
		Tags:          form.Tags,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to save post: %w", err)
	}
	return post, nil
}

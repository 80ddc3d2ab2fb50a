package persistent

import (
	"akiya-share/services/post/internal/entity"
	"akiya-share/services/post/internal/model"

	"github.com/lib/pq"
)

func ToProfileEntity(m *model.ProfileModel) *entity.Profile {
	if m == nil {
		return nil
	}

	return &entity.Profile{
		ID:        m.ID,
		Username:  m.Username,
		AvatarURL: m.AvatarURL,
		Bio:       m.Bio,
		UpdatedAt: m.UpdatedAt,
	}
}

func ToProfileModel(e *entity.Profile) *model.ProfileModel {
	if e == nil {
		return nil
	}

	return &model.ProfileModel{
		ID:        e.ID,
		Username:  e.Username,
		AvatarURL: e.AvatarURL,
		Bio:       e.Bio,
		UpdatedAt: e.UpdatedAt,
	}
}

func ToLikeEntity(m *model.LikeModel) entity.Like {
	return entity.Like{PostID: m.PostID, UserID: m.UserID, CreatedAt: m.CreatedAt}
}

func ToPostEntity(m *model.PostModel) *entity.Post {
	if m == nil {
		return nil
	}

	likes := make([]entity.Like, 0, len(m.Likes))
	for i := range m.Likes {
		likes = append(likes, ToLikeEntity(&m.Likes[i]))
	}

	return &entity.Post{
		PostRecord: entity.PostRecord{
			ID:            m.ID,
			UserID:        m.UserID,
			Title:         m.Title,
			ImageURL:      m.ImageURL,
			ImageURLs:     nonNil(m.ImageURLs),
			AuthorComment: m.AuthorComment,
			Tags:          nonNil(m.Tags),
			CreatedAt:     m.CreatedAt,
		},
		User:  ToProfileEntity(m.User),
		Likes: likes,
	}
}

func ToPostModel(e *entity.Post) *model.PostModel {
	if e == nil {
		return nil
	}

	return &model.PostModel{
		ID:            e.ID,
		UserID:        e.UserID,
		Title:         e.Title,
		ImageURL:      e.ImageURL,
		ImageURLs:     pq.StringArray(e.ImageURLs),
		AuthorComment: e.AuthorComment,
		Tags:          pq.StringArray(e.Tags),
		CreatedAt:     e.CreatedAt,
	}
}

func ToCommentEntity(m *model.CommentModel) *entity.Comment {
	if m == nil {
		return nil
	}

	return &entity.Comment{
		CommentRecord: entity.CommentRecord{
			ID:        m.ID,
			PostID:    m.PostID,
			UserID:    m.UserID,
			Body:      m.Body,
			CreatedAt: m.CreatedAt,
		},
		User: ToProfileEntity(m.User),
	}
}

func ToCommentModel(e *entity.Comment) *model.CommentModel {
	if e == nil {
		return nil
	}

	return &model.CommentModel{
		ID:        e.ID,
		PostID:    e.PostID,
		UserID:    e.UserID,
		Body:      e.Body,
		CreatedAt: e.CreatedAt,
	}
}

func nonNil(s pq.StringArray) []string {
	if s == nil {
		return []string{}
	}
	return []string(s)
}

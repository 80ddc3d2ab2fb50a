package persistent

import (
	"akiya-share/services/post/internal/entity"
	"akiya-share/services/post/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type CommentRepository interface {
	ListByPost(postID string) ([]*entity.Comment, error)
	GetByID(id string) (*entity.Comment, error)
	Create(comment *entity.Comment) error
	UpdateBody(id, body string) error
	Delete(id string) error
}

type commentRepository struct {
	db *gorm.DB
}

func NewCommentRepository(db *gorm.DB) CommentRepository {
	return &commentRepository{db: db}
}

func (r *commentRepository) ListByPost(postID string) ([]*entity.Comment, error) {
	var commentModels []model.CommentModel
	err := r.db.Preload("User").
		Where("post_id = ?", postID).
		Order("created_at ASC").
		Find(&commentModels).Error
	if err != nil {
		return nil, err
	}

	comments := make([]*entity.Comment, len(commentModels))
	for i := range commentModels {
		comments[i] = ToCommentEntity(&commentModels[i])
	}
	return comments, nil
}

func (r *commentRepository) GetByID(id string) (*entity.Comment, error) {
	var commentModel model.CommentModel
	if err := r.db.Preload("User").Where("id = ?", id).First(&commentModel).Error; err != nil {
		return nil, translate(err)
	}
	return ToCommentEntity(&commentModel), nil
}

func (r *commentRepository) Create(comment *entity.Comment) error {
	commentModel := ToCommentModel(comment)
	if commentModel.ID == "" {
		commentModel.ID = uuid.New().String()
	}
	if err := r.db.Create(commentModel).Error; err != nil {
		return translate(err)
	}
	comment.CommentRecord = ToCommentEntity(commentModel).CommentRecord
	return nil
}

func (r *commentRepository) UpdateBody(id, body string) error {
	res := r.db.Model(&model.CommentModel{}).Where("id = ?", id).Update("body", body)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *commentRepository) Delete(id string) error {
	res := r.db.Where("id = ?", id).Delete(&model.CommentModel{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

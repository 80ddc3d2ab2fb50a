package persistent

import (
	"time"

	"akiya-share/services/post/internal/entity"
	"akiya-share/services/post/internal/model"

	"gorm.io/gorm"
)

type LikeRepository interface {
	// Create fails with ErrDuplicate when the pair already exists.
	Create(like *entity.Like) error
	// Delete reports whether a row was removed.
	Delete(postID, userID string) (bool, error)
}

type likeRepository struct {
	db *gorm.DB
}

func NewLikeRepository(db *gorm.DB) LikeRepository {
	return &likeRepository{db: db}
}

func (r *likeRepository) Create(like *entity.Like) error {
	likeModel := &model.LikeModel{PostID: like.PostID, UserID: like.UserID, CreatedAt: like.CreatedAt}
	if likeModel.CreatedAt.IsZero() {
		likeModel.CreatedAt = time.Now()
	}
	if err := r.db.Create(likeModel).Error; err != nil {
		return translate(err)
	}
	*like = ToLikeEntity(likeModel)
	return nil
}

func (r *likeRepository) Delete(postID, userID string) (bool, error) {
	res := r.db.Where("post_id = ? AND user_id = ?", postID, userID).Delete(&model.LikeModel{})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

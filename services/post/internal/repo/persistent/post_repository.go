package persistent

import (
	"errors"
	"strings"

	"akiya-share/services/post/internal/entity"
	"akiya-share/services/post/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

var (
	ErrNotFound  = errors.New("record not found")
	ErrDuplicate = errors.New("record already exists")
)

func translate(err error) error {
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		return ErrNotFound
	case errors.Is(err, gorm.ErrDuplicatedKey):
		return ErrDuplicate
	}
	return err
}

var likePattern = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// ContainsPattern builds an ILIKE pattern matching s literally anywhere.
func ContainsPattern(s string) string {
	return "%" + likePattern.Replace(s) + "%"
}

type PostRepository interface {
	List(filter entity.PostFilter) ([]*entity.Post, error)
	GetByID(id string) (*entity.Post, error)
	Create(post *entity.Post) error
	Update(post *entity.Post) error
	Delete(id string) error
}

type postRepository struct {
	db *gorm.DB
}

func NewPostRepository(db *gorm.DB) PostRepository {
	return &postRepository{db: db}
}

func (r *postRepository) joined() *gorm.DB {
	return r.db.Preload("User").Preload("Likes", func(db *gorm.DB) *gorm.DB {
		return db.Order("likes.created_at ASC")
	})
}

func (r *postRepository) List(filter entity.PostFilter) ([]*entity.Post, error) {
	query := r.joined().Order("posts.created_at DESC")
	if filter.Title != "" {
		query = query.Where("posts.title ILIKE ?", ContainsPattern(filter.Title))
	}
	if filter.UserID != "" {
		query = query.Where("posts.user_id = ?", filter.UserID)
	}

	var postModels []model.PostModel
	if err := query.Find(&postModels).Error; err != nil {
		return nil, err
	}

	posts := make([]*entity.Post, len(postModels))
	for i := range postModels {
		posts[i] = ToPostEntity(&postModels[i])
	}
	return posts, nil
}

func (r *postRepository) GetByID(id string) (*entity.Post, error) {
	var postModel model.PostModel
	if err := r.joined().Where("posts.id = ?", id).First(&postModel).Error; err != nil {
		return nil, translate(err)
	}
	return ToPostEntity(&postModel), nil
}

func (r *postRepository) Create(post *entity.Post) error {
	postModel := ToPostModel(post)
	if postModel.ID == "" {
		postModel.ID = uuid.New().String()
	}
	if err := r.db.Create(postModel).Error; err != nil {
		return translate(err)
	}
	post.PostRecord = ToPostEntity(postModel).PostRecord
	if post.Likes == nil {
		post.Likes = []entity.Like{}
	}
	return nil
}

func (r *postRepository) Update(post *entity.Post) error {
	postModel := ToPostModel(post)
	return translate(r.db.Model(postModel).Select("title", "author_comment", "tags").Updates(postModel).Error)
}

// Delete removes the post along with its likes and comments.
func (r *postRepository) Delete(id string) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("post_id = ?", id).Delete(&model.LikeModel{}).Error; err != nil {
			return err
		}
		if err := tx.Where("post_id = ?", id).Delete(&model.CommentModel{}).Error; err != nil {
			return err
		}
		res := tx.Where("id = ?", id).Delete(&model.PostModel{})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return ErrNotFound
		}
		return nil
	})
}

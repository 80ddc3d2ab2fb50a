package model

import "time"

type LikeModel struct {
	PostID    string    `gorm:"type:uuid;primaryKey;uniqueIndex:idx_like_post_user" json:"post_id"`
	UserID    string    `gorm:"type:uuid;primaryKey;uniqueIndex:idx_like_post_user;index" json:"user_id"`
	CreatedAt time.Time `json:"created_at"`
}

func (LikeModel) TableName() string {
	return "likes"
}

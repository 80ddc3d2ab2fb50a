package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type CommentModel struct {
	ID        string        `gorm:"type:uuid;primary_key" json:"id"`
	PostID    string        `gorm:"type:uuid;not null;index" json:"post_id"`
	UserID    string        `gorm:"type:uuid;not null" json:"user_id"`
	Body      string        `gorm:"type:text;not null" json:"body"`
	CreatedAt time.Time     `gorm:"index" json:"created_at"`
	User      *ProfileModel `gorm:"foreignKey:UserID;references:ID" json:"user,omitempty"`
}

func (CommentModel) TableName() string {
	return "comments"
}

func (c *CommentModel) BeforeCreate(tx *gorm.DB) error {
	if c.ID == "" {
		c.ID = uuid.New().String()
	}
	return nil
}

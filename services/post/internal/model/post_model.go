package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"gorm.io/gorm"
)

type PostModel struct {
	ID            string         `gorm:"type:uuid;primary_key" json:"id"`
	UserID        string         `gorm:"type:uuid;not null;index" json:"user_id"`
	Title         string         `gorm:"type:varchar(255);not null" json:"title"`
	ImageURL      string         `gorm:"type:varchar(500)" json:"image_url"`
	ImageURLs     pq.StringArray `gorm:"type:text[]" json:"image_urls"`
	AuthorComment string         `gorm:"type:text" json:"author_comment"`
	Tags          pq.StringArray `gorm:"type:text[]" json:"tags"`
	CreatedAt     time.Time      `gorm:"index" json:"created_at"`
	User          *ProfileModel  `gorm:"foreignKey:UserID;references:ID" json:"user,omitempty"`
	Likes         []LikeModel    `gorm:"foreignKey:PostID" json:"likes,omitempty"`
}

func (PostModel) TableName() string {
	return "posts"
}

func (p *PostModel) BeforeCreate(tx *gorm.DB) error {
	if p.ID == "" {
		p.ID = uuid.New().String()
	}
	return nil
}

package model

import "time"

type ProfileModel struct {
	ID        string    `gorm:"type:uuid;primary_key" json:"id"`
	Username  string    `gorm:"type:varchar(50);not null" json:"username"`
	AvatarURL string    `gorm:"type:varchar(500)" json:"avatar_url"`
	Bio       string    `gorm:"type:text" json:"bio"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (ProfileModel) TableName() string {
	return "profiles"
}

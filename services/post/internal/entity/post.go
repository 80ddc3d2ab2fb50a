package entity

import "time"

type Profile struct {
	ID        string    `json:"id"`
	Username  string    `json:"username"`
	AvatarURL string    `json:"avatar_url"`
	Bio       string    `json:"bio"`
	UpdatedAt time.Time `json:"updated_at"`
}

// PostRecord is the bare posts row, as carried by change events.
type PostRecord struct {
	ID            string    `json:"id"`
	UserID        string    `json:"user_id"`
	Title         string    `json:"title"`
	ImageURL      string    `json:"image_url"`
	ImageURLs     []string  `json:"image_urls"`
	AuthorComment string    `json:"author_comment"`
	Tags          []string  `json:"tags"`
	CreatedAt     time.Time `json:"created_at"`
}

// Post is a record joined with its author profile and likes.
type Post struct {
	PostRecord
	User  *Profile `json:"user"`
	Likes []Like   `json:"likes"`
}

type Like struct {
	PostID    string    `json:"post_id"`
	UserID    string    `json:"user_id"`
	CreatedAt time.Time `json:"created_at"`
}

type PostFilter struct {
	Title  string
	UserID string
}

type PostUpdate struct {
	Title         *string
	AuthorComment *string
	Tags          *[]string
}

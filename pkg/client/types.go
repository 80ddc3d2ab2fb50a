package client

import (
	"strings"
	"time"
)

type Metadata struct {
	Username  string `json:"username"`
	AvatarURL string `json:"avatar_url"`
}

// Identity is the signed-in account as reported by the auth service.
type Identity struct {
	ID        string    `json:"id"`
	Email     string    `json:"email"`
	Metadata  Metadata  `json:"metadata"`
	CreatedAt time.Time `json:"created_at"`
}

// DisplayName falls back to the local part of the email.
func (i *Identity) DisplayName() string {
	if i.Metadata.Username != "" {
		return i.Metadata.Username
	}
	if local, _, ok := strings.Cut(i.Email, "@"); ok && local != "" {
		return local
	}
	return "user"
}

type MetadataUpdate struct {
	Username  *string `json:"username,omitempty"`
	AvatarURL *string `json:"avatar_url,omitempty"`
	Bio       *string `json:"bio,omitempty"`
}

type Profile struct {
	ID        string `json:"id"`
	Username  string `json:"username"`
	AvatarURL string `json:"avatar_url"`
	Bio       string `json:"bio,omitempty"`
}

type Like struct {
	PostID    string    `json:"post_id"`
	UserID    string    `json:"user_id"`
	CreatedAt time.Time `json:"created_at"`
}

type Post struct {
	ID            string    `json:"id"`
	UserID        string    `json:"user_id"`
	Title         string    `json:"title"`
	ImageURL      string    `json:"image_url"`
	ImageURLs     []string  `json:"image_urls"`
	AuthorComment string    `json:"author_comment"`
	Tags          []string  `json:"tags"`
	CreatedAt     time.Time `json:"created_at"`
	User          *Profile  `json:"user"`
	Likes         []Like    `json:"likes"`
}

// Images returns image_urls when present, otherwise the single image_url.
func (p *Post) Images() []string {
	if len(p.ImageURLs) > 0 {
		return p.ImageURLs
	}
	if p.ImageURL != "" {
		return []string{p.ImageURL}
	}
	return nil
}

// OwnerID prefers the joined profile id.
func (p *Post) OwnerID() string {
	if p.User != nil && p.User.ID != "" {
		return p.User.ID
	}
	return p.UserID
}

func (p *Post) likedBy(userID string) bool {
	if userID == "" {
		return false
	}
	for _, l := range p.Likes {
		if l.UserID == userID {
			return true
		}
	}
	return false
}

func (p *Post) clone() *Post {
	c := *p
	c.ImageURLs = append([]string(nil), p.ImageURLs...)
	c.Tags = append([]string(nil), p.Tags...)
	c.Likes = append([]Like(nil), p.Likes...)
	if p.User != nil {
		u := *p.User
		c.User = &u
	}
	return &c
}

type NewPost struct {
	UserID        string   `json:"-"`
	Title         string   `json:"title"`
	ImageURL      string   `json:"image_url"`
	ImageURLs     []string `json:"image_urls"`
	AuthorComment string   `json:"author_comment"`
	Tags          []string `json:"tags"`
}

type PostQuery struct {
	TitleContains string
	AuthorID      string
}

type Comment struct {
	ID        string    `json:"id"`
	PostID    string    `json:"post_id"`
	UserID    string    `json:"user_id"`
	Body      string    `json:"body"`
	CreatedAt time.Time `json:"created_at"`
	User      *Profile  `json:"user"`
}

// PostView is a post as one viewer sees it.
type PostView struct {
	Post      *Post
	LikeCount int
	IsLiked   bool
	IsOwner   bool
}

func viewOf(p *Post, userID string) PostView {
	return PostView{
		Post:      p.clone(),
		LikeCount: len(p.Likes),
		IsLiked:   p.likedBy(userID),
		IsOwner:   userID != "" && p.OwnerID() == userID,
	}
}

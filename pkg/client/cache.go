package client

import "encoding/json"

// postCache is the ordered post collection a single view renders from.
// It is only touched from the owning view's loop.
type postCache struct {
	posts []*Post
}

func (c *postCache) index(id string) int {
	for i, p := range c.posts {
		if p.ID == id {
			return i
		}
	}
	return -1
}

func (c *postCache) get(id string) *Post {
	if i := c.index(id); i >= 0 {
		return c.posts[i]
	}
	return nil
}

func (c *postCache) reset(posts []Post) {
	c.posts = make([]*Post, 0, len(posts))
	for i := range posts {
		p := posts[i]
		if p.Likes == nil {
			p.Likes = []Like{}
		}
		p.Likes = uniqueLikes(p.Likes)
		c.posts = append(c.posts, &p)
	}
}

func (c *postCache) prepend(p *Post) bool {
	if c.index(p.ID) >= 0 {
		return false
	}
	c.posts = append([]*Post{p}, c.posts...)
	return true
}

func (c *postCache) remove(id string) bool {
	i := c.index(id)
	if i < 0 {
		return false
	}
	c.posts = append(c.posts[:i], c.posts[i+1:]...)
	return true
}

// merge overlays the fields present in a bare row onto the cached post.
// The joined profile and like set are left alone.
func (c *postCache) merge(row json.RawMessage) (bool, error) {
	var key struct {
		ID string `json:"id"`
	}
	if err := json.Unmarshal(row, &key); err != nil {
		return false, err
	}
	p := c.get(key.ID)
	if p == nil {
		return false, nil
	}
	return true, mergeRow(p, row)
}

func mergeRow(p *Post, row json.RawMessage) error {
	merged := *p
	if err := json.Unmarshal(row, &merged); err != nil {
		return err
	}
	merged.User = p.User
	merged.Likes = p.Likes
	*p = merged
	return nil
}

func (c *postCache) addLike(l Like) bool {
	p := c.get(l.PostID)
	if p == nil {
		return false
	}
	return addLike(p, l)
}

func (c *postCache) removeLike(postID, userID string) bool {
	p := c.get(postID)
	if p == nil {
		return false
	}
	return removeLike(p, userID)
}

func (c *postCache) views(userID string) []PostView {
	out := make([]PostView, 0, len(c.posts))
	for _, p := range c.posts {
		out = append(out, viewOf(p, userID))
	}
	return out
}

// addLike keeps at most one like per user on p. Likes without a user are dropped.
func addLike(p *Post, l Like) bool {
	if l.UserID == "" || p.likedBy(l.UserID) {
		return false
	}
	p.Likes = append(p.Likes, l)
	return true
}

func removeLike(p *Post, userID string) bool {
	for i, l := range p.Likes {
		if l.UserID == userID {
			p.Likes = append(p.Likes[:i:i], p.Likes[i+1:]...)
			return true
		}
	}
	return false
}

func ownLike(p *Post, userID string) (Like, bool) {
	for _, l := range p.Likes {
		if l.UserID == userID {
			return l, true
		}
	}
	return Like{}, false
}

func uniqueLikes(likes []Like) []Like {
	seen := make(map[string]bool, len(likes))
	out := likes[:0:0]
	for _, l := range likes {
		if seen[l.UserID] {
			continue
		}
		seen[l.UserID] = true
		out = append(out, l)
	}
	return out
}

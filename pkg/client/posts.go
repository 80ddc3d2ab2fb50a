package client

import (
	"context"
	"errors"
	"fmt"
	"time"

	"akiya-share/pkg/changefeed"
)

// likeState tracks one post's like for the current user while writes are
// outstanding. Only one write per post is in flight at a time.
type likeState struct {
	confirmed     bool
	confirmedLike Like
	desired       bool
	inFlight      bool
}

// postSet is the state shared by the feed and search views: a post cache,
// the selected post and the optimistic like coordinator.
type postSet struct {
	loop     *loop
	records  Records
	userID   string
	cache    postCache
	selected string
	likes    map[string]*likeState
	alert    func(error)
	changed  func()
	log      Logger
}

func newPostSet(l *loop, records Records, userID string, alert func(error), log Logger) postSet {
	s := postSet{
		loop:    l,
		records: records,
		userID:  userID,
		likes:   make(map[string]*likeState),
		log:     defaultLogger(log),
		changed: func() {},
	}
	s.alert = alert
	if s.alert == nil {
		s.alert = func(err error) { s.log.Error("%v", err) }
	}
	return s
}

// ToggleLike flips the current user's like on postID. The local like set is
// updated before ToggleLike returns; the backend write follows.
func (s *postSet) ToggleLike(postID string) error {
	if s.userID == "" {
		return ErrLoginRequired
	}
	var err error
	if cerr := s.loop.call(func() { err = s.toggleLike(postID) }); cerr != nil {
		return cerr
	}
	return err
}

func (s *postSet) toggleLike(postID string) error {
	p := s.cache.get(postID)
	if p == nil {
		return ErrNotFound
	}

	st := s.likes[postID]
	if st == nil {
		mine, liked := ownLike(p, s.userID)
		st = &likeState{confirmed: liked, confirmedLike: mine, desired: liked}
		s.likes[postID] = st
	}

	// The target always comes from the latest local state.
	st.desired = !p.likedBy(s.userID)
	s.setOwnLike(p, st.desired, Like{PostID: postID, UserID: s.userID, CreatedAt: time.Now().UTC()})
	s.changed()

	if !st.inFlight {
		s.writeLike(postID, st)
	}
	return nil
}

func (s *postSet) setOwnLike(p *Post, liked bool, like Like) {
	if liked {
		addLike(p, like)
	} else {
		removeLike(p, s.userID)
	}
}

func (s *postSet) writeLike(postID string, st *likeState) {
	target := st.desired
	st.inFlight = true

	// Writes outlive the view; only their results are dropped after Close.
	ctx := context.WithoutCancel(s.loop.ctx)
	go func() {
		var err error
		if target {
			err = s.records.InsertLike(ctx, postID, s.userID)
			if errors.Is(err, ErrAlreadyLiked) {
				err = nil
			}
		} else {
			err = s.records.DeleteLike(ctx, postID, s.userID)
		}
		s.loop.post(func() { s.likeWritten(postID, target, err) })
	}()
}

func (s *postSet) likeWritten(postID string, target bool, err error) {
	st := s.likes[postID]
	if st == nil {
		return
	}
	st.inFlight = false

	if err != nil {
		delete(s.likes, postID)
		s.alert(fmt.Errorf("could not update like: %w", err))
		if p := s.cache.get(postID); p != nil {
			// like entry, like count and liked flag all come back together
			s.setOwnLike(p, st.confirmed, st.confirmedLike)
			s.changed()
		}
		return
	}

	st.confirmed = target
	if target {
		// The local entry may already be gone when a later unlike is pending.
		st.confirmedLike = Like{PostID: postID, UserID: s.userID, CreatedAt: time.Now().UTC()}
		if p := s.cache.get(postID); p != nil {
			if mine, ok := ownLike(p, s.userID); ok {
				st.confirmedLike = mine
			}
		}
	}
	if st.desired != st.confirmed {
		s.writeLike(postID, st)
		return
	}
	delete(s.likes, postID)
}

// reapplyLikes re-asserts outstanding toggles after the cache was reloaded.
func (s *postSet) reapplyLikes() {
	for postID, st := range s.likes {
		if p := s.cache.get(postID); p != nil {
			s.setOwnLike(p, st.desired, Like{PostID: postID, UserID: s.userID, CreatedAt: time.Now().UTC()})
		}
	}
}

// applyLikeEvent merges a like change from the backend. While the current
// user has a toggle outstanding on the post, the local state stands.
func (s *postSet) applyLikeEvent(event changefeed.Event) (*Like, bool) {
	var like Like
	if err := event.Decode(&like); err != nil || like.PostID == "" {
		s.log.Warn("[FEED] Ignoring like event: %v", err)
		return nil, false
	}
	if like.UserID == s.userID && s.likes[like.PostID] != nil {
		return &like, false
	}

	switch event.Type {
	case changefeed.Insert:
		return &like, s.cache.addLike(like)
	case changefeed.Delete:
		return &like, s.cache.removeLike(like.PostID, like.UserID)
	}
	return &like, false
}

// Select opens postID as the detail view.
func (s *postSet) Select(postID string) error {
	var err error
	if cerr := s.loop.call(func() {
		if postID != "" && s.cache.get(postID) == nil {
			err = ErrNotFound
			return
		}
		s.selected = postID
		s.changed()
	}); cerr != nil {
		return cerr
	}
	return err
}

// Remove drops postID from the view and clears it as the selection.
func (s *postSet) Remove(postID string) error {
	return s.loop.call(func() {
		if s.removeLocal(postID) {
			s.changed()
		}
	})
}

func (s *postSet) removeLocal(postID string) bool {
	removed := s.cache.remove(postID)
	if s.selected == postID {
		s.selected = ""
		removed = true
	}
	delete(s.likes, postID)
	return removed
}

// Post returns the cached copy of postID.
func (s *postSet) Post(postID string) (*Post, error) {
	var p *Post
	if err := s.loop.call(func() {
		if cached := s.cache.get(postID); cached != nil {
			p = cached.clone()
		}
	}); err != nil {
		return nil, err
	}
	if p == nil {
		return nil, ErrNotFound
	}
	return p, nil
}

func (s *postSet) selectedView() *PostView {
	if s.selected == "" {
		return nil
	}
	p := s.cache.get(s.selected)
	if p == nil {
		return nil
	}
	v := viewOf(p, s.userID)
	return &v
}

// PendingLikes reports how many posts still have a like write outstanding.
func (s *postSet) PendingLikes() (int, error) {
	var n int
	err := s.loop.call(func() { n = len(s.likes) })
	return n, err
}

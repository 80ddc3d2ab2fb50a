package client

import (
	"context"
	"errors"
	"sync"
)

type WorkspaceOptions struct {
	// Confirm is asked before a post is deleted.
	Confirm      func(*Post) bool
	ImagesBucket string
	Alert        func(error)
	Logger       Logger
}

// Workspace ties the session to the views opened under it, so that a
// deletion made from any of them reaches all of them.
type Workspace struct {
	Session *Session

	ctx     context.Context
	backend Backend
	opts    WorkspaceOptions
	log     Logger

	mu       sync.Mutex
	feeds    []*Feed
	searches []*Search
	comments []*CommentStream
}

func NewWorkspace(ctx context.Context, backend Backend, opts WorkspaceOptions) *Workspace {
	log := defaultLogger(opts.Logger)
	return &Workspace{
		Session: NewSession(backend.Auth, backend.Records, log),
		ctx:     ctx,
		backend: backend,
		opts:    opts,
		log:     log,
	}
}

func (w *Workspace) alertFunc(own func(error)) func(error) {
	if own != nil {
		return own
	}
	return w.opts.Alert
}

func (w *Workspace) logger(own Logger) Logger {
	if own != nil {
		return own
	}
	return w.log
}

// OpenFeed opens a feed for whoever is signed in now. Views keep the user
// they were opened with; reopen them after signing in or out.
func (w *Workspace) OpenFeed(opts FeedOptions) *Feed {
	opts.Alert = w.alertFunc(opts.Alert)
	opts.Logger = w.logger(opts.Logger)
	f := OpenFeed(w.ctx, w.backend, w.Session.UserID(), opts)
	w.mu.Lock()
	w.feeds = append(w.feeds, f)
	w.mu.Unlock()
	return f
}

// OpenMyPosts opens a feed scoped to the signed-in user's own posts.
func (w *Workspace) OpenMyPosts(opts FeedOptions) (*Feed, error) {
	userID, err := w.Session.Require()
	if err != nil {
		return nil, err
	}
	opts.AuthorID = userID
	return w.OpenFeed(opts), nil
}

func (w *Workspace) OpenSearch(opts SearchOptions) *Search {
	opts.Alert = w.alertFunc(opts.Alert)
	opts.Logger = w.logger(opts.Logger)
	s := NewSearch(w.ctx, w.backend, w.Session.UserID(), opts)
	w.mu.Lock()
	w.searches = append(w.searches, s)
	w.mu.Unlock()
	return s
}

func (w *Workspace) OpenComments(postID string, opts CommentOptions) *CommentStream {
	opts.Alert = w.alertFunc(opts.Alert)
	opts.Logger = w.logger(opts.Logger)
	cs := OpenComments(w.ctx, w.backend, postID, w.Session.UserID(), opts)
	w.mu.Lock()
	w.comments = append(w.comments, cs)
	w.mu.Unlock()
	return cs
}

func (w *Workspace) CreatePost(ctx context.Context, form PostForm) (*Post, error) {
	userID, err := w.Session.Require()
	if err != nil {
		return nil, err
	}
	return CreatePost(ctx, w.backend, userID, form, w.opts.ImagesBucket)
}

// DeletePost deletes a post held by one of the open views and removes it
// from every view on success.
func (w *Workspace) DeletePost(ctx context.Context, postID string) error {
	userID, err := w.Session.Require()
	if err != nil {
		return err
	}
	post, err := w.findPost(postID)
	if err != nil {
		return err
	}
	return DeletePost(ctx, w.backend, userID, post, DeleteOptions{
		Confirm:      w.opts.Confirm,
		ImagesBucket: w.opts.ImagesBucket,
		OnDeleted:    w.removeEverywhere,
		Logger:       w.log,
	})
}

func (w *Workspace) findPost(postID string) (*Post, error) {
	w.mu.Lock()
	sets := make([]*postSet, 0, len(w.feeds)+len(w.searches))
	for _, f := range w.feeds {
		sets = append(sets, &f.postSet)
	}
	for _, s := range w.searches {
		sets = append(sets, &s.postSet)
	}
	w.mu.Unlock()

	for _, set := range sets {
		if p, err := set.Post(postID); err == nil {
			return p, nil
		}
	}
	return nil, ErrNotFound
}

// removeEverywhere waits on each view's loop, so it runs without w.mu held;
// view callbacks may call back into the workspace.
func (w *Workspace) removeEverywhere(postID string) {
	w.mu.Lock()
	feeds := append([]*Feed(nil), w.feeds...)
	searches := append([]*Search(nil), w.searches...)
	comments := append([]*CommentStream(nil), w.comments...)
	w.mu.Unlock()

	gone := make(map[interface{}]bool)
	for _, f := range feeds {
		if err := f.Remove(postID); errors.Is(err, ErrClosed) {
			gone[f] = true
		}
	}
	for _, s := range searches {
		if err := s.Remove(postID); errors.Is(err, ErrClosed) {
			gone[s] = true
		}
	}
	for _, cs := range comments {
		if cs.PostID() == postID {
			cs.Close()
			gone[cs] = true
		}
	}
	if len(gone) == 0 {
		return
	}

	w.mu.Lock()
	defer w.mu.Unlock()
	w.feeds = prune(w.feeds, gone)
	w.searches = prune(w.searches, gone)
	w.comments = prune(w.comments, gone)
}

func prune[V comparable](views []V, gone map[interface{}]bool) []V {
	kept := views[:0]
	for _, v := range views {
		if !gone[v] {
			kept = append(kept, v)
		}
	}
	return kept
}

// Close closes every view opened through the workspace.
func (w *Workspace) Close() {
	w.mu.Lock()
	feeds, searches, comments := w.feeds, w.searches, w.comments
	w.feeds, w.searches, w.comments = nil, nil, nil
	w.mu.Unlock()

	for _, f := range feeds {
		f.Close()
	}
	for _, s := range searches {
		s.Close()
	}
	for _, cs := range comments {
		cs.Close()
	}
}

package client

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"akiya-share/pkg/changefeed"
)

type LoadState int

const (
	Loading LoadState = iota
	Ready
	Failed
)

func (s LoadState) String() string {
	switch s {
	case Loading:
		return "loading"
	case Ready:
		return "ready"
	case Failed:
		return "failed"
	}
	return fmt.Sprintf("LoadState(%d)", int(s))
}

type FeedSnapshot struct {
	State    LoadState
	Posts    []PostView
	Selected *PostView
	Err      error
}

type FeedOptions struct {
	// AuthorID limits the feed to one author's posts.
	AuthorID string
	// OnChange runs on the feed's loop after every applied change. It must
	// not call back into the feed synchronously.
	OnChange func(FeedSnapshot)
	Alert    func(error)
	Logger   Logger
}

// Feed is the live post collection: one initial fetch followed by standing
// subscriptions on posts and likes.
type Feed struct {
	postSet
	backend   Backend
	opts      FeedOptions
	state     LoadState
	err       error
	pending   joinQueue[*Post]
	subs      subscriptions
	closeOnce sync.Once
}

func OpenFeed(ctx context.Context, backend Backend, userID string, opts FeedOptions) *Feed {
	l := newLoop(ctx)
	f := &Feed{
		postSet: newPostSet(l, backend.Records, userID, opts.Alert, opts.Logger),
		backend: backend,
		opts:    opts,
		state:   Loading,
	}
	f.changed = f.notify
	go f.start()
	return f
}

func (f *Feed) start() {
	ctx := f.loop.ctx
	posts, err := f.records.ListPosts(ctx, PostQuery{AuthorID: f.opts.AuthorID})
	if !f.loop.post(func() { f.loaded(posts, err) }) || err != nil {
		return
	}

	var filter *changefeed.Filter
	if f.opts.AuthorID != "" {
		filter = changefeed.Eq("user_id", f.opts.AuthorID)
	}
	f.subscribe(ctx, changefeed.TablePosts, filter, f.onPostEvent)
	f.subscribe(ctx, changefeed.TableLikes, nil, f.onLikeEvent)
}

func (f *Feed) loaded(posts []Post, err error) {
	if err != nil {
		f.state = Failed
		f.err = err
		f.alert(fmt.Errorf("could not load posts: %w", err))
		f.notify()
		return
	}
	f.cache.reset(posts)
	f.reapplyLikes()
	f.state = Ready
	f.notify()
}

func (f *Feed) subscribe(ctx context.Context, table string, filter *changefeed.Filter, handle func(changefeed.Event)) {
	stream, err := f.backend.Realtime.Subscribe(ctx, table, filter)
	if err != nil {
		if ctx.Err() == nil {
			f.loop.post(func() { f.alert(fmt.Errorf("live updates for %s unavailable: %w", table, err)) })
		}
		return
	}
	if f.subs.add(stream) {
		pump(f.loop, stream, handle)
	}
}

func (f *Feed) onPostEvent(event changefeed.Event) {
	switch event.Type {
	case changefeed.Insert:
		var p Post
		if err := event.Decode(&p); err != nil || p.ID == "" {
			f.log.Warn("[FEED] Ignoring post insert: %v", err)
			return
		}
		if f.opts.AuthorID != "" && p.UserID != f.opts.AuthorID {
			return
		}
		if f.cache.get(p.ID) != nil || f.pending.find(p.ID) != nil {
			return
		}
		p.User = nil
		p.Likes = []Like{}
		f.joinAuthor(f.pending.push(p.ID, &p))

	case changefeed.Update:
		if ok, err := f.cache.merge(event.New); err != nil {
			f.log.Warn("[FEED] Ignoring post update: %v", err)
		} else if ok {
			f.notify()
		} else if p := f.pendingFor(event.New); p != nil {
			mergeRow(p.item, event.New)
		}

	case changefeed.Delete:
		var old struct {
			ID string `json:"id"`
		}
		if err := event.Decode(&old); err != nil {
			f.log.Warn("[FEED] Ignoring post delete: %v", err)
			return
		}
		if f.removeLocal(old.ID) {
			f.notify()
		}
		if f.pending.drop(old.ID) && f.pending.release(f.prependPost) > 0 {
			f.notify()
		}
	}
}

func (f *Feed) pendingFor(row json.RawMessage) *pendingJoin[*Post] {
	var key struct {
		ID string `json:"id"`
	}
	if err := json.Unmarshal(row, &key); err != nil {
		return nil
	}
	return f.pending.find(key.ID)
}

// joinAuthor is the secondary lookup that fills in the author profile a bare
// insert event does not carry.
func (f *Feed) joinAuthor(entry *pendingJoin[*Post]) {
	ctx := f.loop.ctx
	userID := entry.item.UserID
	go func() {
		profile, err := f.records.GetProfile(ctx, userID)
		f.loop.post(func() {
			if err != nil {
				f.log.Warn("[FEED] Profile lookup for %s failed: %v", userID, err)
			} else {
				entry.item.User = profile
			}
			entry.ready = true
			if f.pending.release(f.prependPost) > 0 {
				f.notify()
			}
		})
	}()
}

func (f *Feed) prependPost(p *Post) {
	f.cache.prepend(p)
}

func (f *Feed) onLikeEvent(event changefeed.Event) {
	like, changed := f.applyLikeEvent(event)
	if changed {
		f.notify()
		return
	}
	if like == nil {
		return
	}
	// likes for a post whose author lookup is still running
	if entry := f.pending.find(like.PostID); entry != nil {
		switch event.Type {
		case changefeed.Insert:
			addLike(entry.item, *like)
		case changefeed.Delete:
			removeLike(entry.item, like.UserID)
		}
	}
}

func (f *Feed) snapshot() FeedSnapshot {
	return FeedSnapshot{
		State:    f.state,
		Posts:    f.cache.views(f.userID),
		Selected: f.selectedView(),
		Err:      f.err,
	}
}

func (f *Feed) notify() {
	if f.opts.OnChange != nil {
		f.opts.OnChange(f.snapshot())
	}
}

func (f *Feed) Snapshot() (FeedSnapshot, error) {
	var snap FeedSnapshot
	err := f.loop.call(func() { snap = f.snapshot() })
	return snap, err
}

// Close stops the feed and releases its subscriptions. Results that arrive
// afterwards are discarded.
func (f *Feed) Close() {
	f.closeOnce.Do(func() {
		f.subs.closeAll()
		f.loop.stop()
	})
}

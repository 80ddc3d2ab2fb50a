package client

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"sync"

	"akiya-share/pkg/changefeed"
)

type CommentSnapshot struct {
	PostID     string
	State      LoadState
	Comments   []Comment
	Draft      string
	Submitting bool
	Err        error
}

type CommentOptions struct {
	// OnChange runs on the stream's loop; see FeedOptions.OnChange.
	OnChange func(CommentSnapshot)
	Alert    func(error)
	Logger   Logger
}

// CommentStream keeps one post's comments live and holds the draft being
// written for it.
type CommentStream struct {
	loop       *loop
	backend    Backend
	postID     string
	userID     string
	opts       CommentOptions
	log        Logger
	state      LoadState
	err        error
	comments   []*Comment
	pending    joinQueue[*Comment]
	draft      string
	submitting bool
	subs       subscriptions
	closeOnce  sync.Once
}

func OpenComments(ctx context.Context, backend Backend, postID, userID string, opts CommentOptions) *CommentStream {
	cs := &CommentStream{
		loop:    newLoop(ctx),
		backend: backend,
		postID:  postID,
		userID:  userID,
		opts:    opts,
		log:     defaultLogger(opts.Logger),
		state:   Loading,
	}
	go cs.start()
	return cs
}

func (cs *CommentStream) alert(err error) {
	if cs.opts.Alert != nil {
		cs.opts.Alert(err)
		return
	}
	cs.log.Error("%v", err)
}

func (cs *CommentStream) start() {
	ctx := cs.loop.ctx
	comments, err := cs.backend.Records.ListComments(ctx, cs.postID)
	if !cs.loop.post(func() { cs.loaded(comments, err) }) || err != nil {
		return
	}

	stream, err := cs.backend.Realtime.Subscribe(ctx, changefeed.TableComments, changefeed.Eq("post_id", cs.postID))
	if err != nil {
		if ctx.Err() == nil {
			cs.loop.post(func() { cs.alert(fmt.Errorf("live comments unavailable: %w", err)) })
		}
		return
	}
	if cs.subs.add(stream) {
		pump(cs.loop, stream, cs.onEvent)
	}
}

func (cs *CommentStream) loaded(comments []Comment, err error) {
	if err != nil {
		cs.state = Failed
		cs.err = err
		cs.alert(fmt.Errorf("could not load comments: %w", err))
		cs.notify()
		return
	}
	cs.comments = make([]*Comment, 0, len(comments))
	for i := range comments {
		c := comments[i]
		cs.comments = append(cs.comments, &c)
	}
	cs.state = Ready
	cs.notify()
}

func (cs *CommentStream) index(id string) int {
	for i, c := range cs.comments {
		if c.ID == id {
			return i
		}
	}
	return -1
}

func (cs *CommentStream) onEvent(event changefeed.Event) {
	var row Comment
	if err := event.Decode(&row); err != nil || row.ID == "" {
		cs.log.Warn("[COMMENTS] Ignoring event: %v", err)
		return
	}
	if row.PostID != "" && row.PostID != cs.postID {
		return
	}

	switch event.Type {
	case changefeed.Insert:
		if cs.index(row.ID) >= 0 || cs.pending.find(row.ID) != nil {
			return
		}
		row.User = nil
		cs.joinAuthor(cs.pending.push(row.ID, &row))

	case changefeed.Update:
		var target *Comment
		if i := cs.index(row.ID); i >= 0 {
			target = cs.comments[i]
		} else if p := cs.pending.find(row.ID); p != nil {
			target = p.item
		}
		if target == nil {
			return
		}
		merged := *target
		if err := json.Unmarshal(event.New, &merged); err != nil {
			return
		}
		merged.User = target.User
		*target = merged
		cs.notify()

	case changefeed.Delete:
		if i := cs.index(row.ID); i >= 0 {
			cs.comments = append(cs.comments[:i], cs.comments[i+1:]...)
			cs.notify()
		}
		if cs.pending.drop(row.ID) && cs.pending.release(cs.appendComment) > 0 {
			cs.notify()
		}
	}
}

func (cs *CommentStream) joinAuthor(entry *pendingJoin[*Comment]) {
	ctx := cs.loop.ctx
	userID := entry.item.UserID
	go func() {
		profile, err := cs.backend.Records.GetProfile(ctx, userID)
		cs.loop.post(func() {
			if err != nil {
				cs.log.Warn("[COMMENTS] Profile lookup for %s failed: %v", userID, err)
			} else {
				entry.item.User = profile
			}
			entry.ready = true
			if cs.pending.release(cs.appendComment) > 0 {
				cs.notify()
			}
		})
	}()
}

func (cs *CommentStream) appendComment(c *Comment) {
	if cs.index(c.ID) < 0 {
		cs.comments = append(cs.comments, c)
	}
}

func (cs *CommentStream) SetDraft(text string) error {
	return cs.loop.call(func() {
		cs.draft = text
		cs.notify()
	})
}

// Submit posts the current draft. The draft is cleared only once the
// backend accepted it; the comment itself arrives through the stream.
func (cs *CommentStream) Submit(ctx context.Context) error {
	var body string
	var err error
	if cerr := cs.loop.call(func() {
		if cs.submitting {
			err = ErrCancelled
			return
		}
		body = strings.TrimSpace(cs.draft)
		if body == "" {
			err = ErrEmptyComment
			return
		}
		if cs.userID == "" {
			err = ErrLoginRequired
			return
		}
		cs.submitting = true
		cs.notify()
	}); cerr != nil {
		return cerr
	}
	if err != nil {
		return err
	}

	_, insertErr := cs.backend.Records.InsertComment(ctx, cs.postID, cs.userID, body)

	if cerr := cs.loop.call(func() {
		cs.submitting = false
		if insertErr != nil {
			cs.alert(fmt.Errorf("could not post comment: %w", insertErr))
		} else {
			cs.draft = ""
		}
		cs.notify()
	}); cerr != nil && insertErr == nil {
		return cerr
	}
	return insertErr
}

func (cs *CommentStream) snapshot() CommentSnapshot {
	comments := make([]Comment, 0, len(cs.comments))
	for _, c := range cs.comments {
		cc := *c
		if c.User != nil {
			u := *c.User
			cc.User = &u
		}
		comments = append(comments, cc)
	}
	return CommentSnapshot{
		PostID:     cs.postID,
		State:      cs.state,
		Comments:   comments,
		Draft:      cs.draft,
		Submitting: cs.submitting,
		Err:        cs.err,
	}
}

func (cs *CommentStream) notify() {
	if cs.opts.OnChange != nil {
		cs.opts.OnChange(cs.snapshot())
	}
}

func (cs *CommentStream) Snapshot() (CommentSnapshot, error) {
	var snap CommentSnapshot
	err := cs.loop.call(func() { snap = cs.snapshot() })
	return snap, err
}

func (cs *CommentStream) PostID() string {
	return cs.postID
}

func (cs *CommentStream) Close() {
	cs.closeOnce.Do(func() {
		cs.subs.closeAll()
		cs.loop.stop()
	})
}

package client

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sort"
	"strings"
	"sync"
	"testing"
	"time"

	"akiya-share/pkg/changefeed"
	"akiya-share/pkg/logger"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

func quietLogger() *logger.Logger {
	return logger.NewWithWriters(io.Discard, io.Discard)
}

type postRow struct {
	ID            string    `json:"id"`
	UserID        string    `json:"user_id"`
	Title         string    `json:"title"`
	ImageURL      string    `json:"image_url"`
	ImageURLs     []string  `json:"image_urls"`
	AuthorComment string    `json:"author_comment"`
	Tags          []string  `json:"tags"`
	CreatedAt     time.Time `json:"created_at"`
}

type commentRow struct {
	ID        string    `json:"id"`
	PostID    string    `json:"post_id"`
	UserID    string    `json:"user_id"`
	Body      string    `json:"body"`
	CreatedAt time.Time `json:"created_at"`
}

// fakeStore behaves like the post service: it keeps rows in memory and
// publishes a bare change event for every mutation.
type fakeStore struct {
	bus *changefeed.MemoryBus

	mu       sync.Mutex
	clock    time.Time
	posts    []postRow
	likes    []Like
	comments []commentRow
	profiles map[string]Profile
	objects  map[string][]byte
	users    map[string]*Identity
	calls    map[string]int

	listPostsErr     error
	insertLikeErr    error
	deleteLikeErr    error
	deletePostErr    error
	removeErr        error
	insertPostErr    error
	insertCommentErr error
	likeGate         chan struct{}
	profileGates     map[string]chan struct{}
	listGate         chan struct{}
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		bus:          changefeed.NewMemoryBus(quietLogger()),
		clock:        time.Date(2026, 4, 1, 9, 0, 0, 0, time.UTC),
		profiles:     make(map[string]Profile),
		objects:      make(map[string][]byte),
		users:        make(map[string]*Identity),
		calls:        make(map[string]int),
		profileGates: make(map[string]chan struct{}),
	}
}

func (s *fakeStore) count(name string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls[name]
}

func (s *fakeStore) totalCalls() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for _, c := range s.calls {
		n += c
	}
	return n
}

func (s *fakeStore) track(name string) {
	s.mu.Lock()
	s.calls[name]++
	s.mu.Unlock()
}

func (s *fakeStore) tick() time.Time {
	s.clock = s.clock.Add(time.Minute)
	return s.clock
}

func (s *fakeStore) publish(table string, typ changefeed.EventType, row interface{}) {
	event, err := changefeed.NewEvent(table, typ, row)
	if err != nil {
		panic(err)
	}
	s.bus.Publish(context.Background(), event)
}

func (s *fakeStore) addUser(id, email, username string) *Identity {
	s.mu.Lock()
	defer s.mu.Unlock()
	ident := &Identity{ID: id, Email: email, Metadata: Metadata{Username: username}}
	s.users[id] = ident
	s.profiles[id] = Profile{ID: id, Username: username}
	return ident
}

// seedPost inserts a post without publishing an event.
func (s *fakeStore) seedPost(id, userID, title string, likers ...string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.posts = append(s.posts, postRow{
		ID: id, UserID: userID, Title: title,
		ImageURL:  "http://storage.test/object/public/images/" + userID + "/" + id + ".jpg",
		CreatedAt: s.tick(),
	})
	for _, u := range likers {
		s.likes = append(s.likes, Like{PostID: id, UserID: u, CreatedAt: s.tick()})
	}
}

func (s *fakeStore) gateProfile(userID string) chan struct{} {
	s.mu.Lock()
	defer s.mu.Unlock()
	gate := make(chan struct{})
	s.profileGates[userID] = gate
	return gate
}

func (s *fakeStore) setErr(target *error, err error) {
	s.mu.Lock()
	*target = err
	s.mu.Unlock()
}

func (s *fakeStore) joined(row postRow) Post {
	p := Post{
		ID: row.ID, UserID: row.UserID, Title: row.Title, ImageURL: row.ImageURL,
		ImageURLs: row.ImageURLs, AuthorComment: row.AuthorComment, Tags: row.Tags,
		CreatedAt: row.CreatedAt, Likes: []Like{},
	}
	if prof, ok := s.profiles[row.UserID]; ok {
		p.User = &prof
	}
	for _, l := range s.likes {
		if l.PostID == row.ID {
			p.Likes = append(p.Likes, l)
		}
	}
	return p
}

func (s *fakeStore) ListPosts(ctx context.Context, q PostQuery) ([]Post, error) {
	s.track("ListPosts")
	s.mu.Lock()
	gate := s.listGate
	s.mu.Unlock()
	if gate != nil {
		select {
		case <-gate:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.listPostsErr != nil {
		return nil, s.listPostsErr
	}
	var out []Post
	for _, row := range s.posts {
		if q.AuthorID != "" && row.UserID != q.AuthorID {
			continue
		}
		if q.TitleContains != "" && !strings.Contains(strings.ToLower(row.Title), strings.ToLower(q.TitleContains)) {
			continue
		}
		out = append(out, s.joined(row))
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (s *fakeStore) InsertPost(ctx context.Context, np NewPost) (*Post, error) {
	s.track("InsertPost")
	s.mu.Lock()
	if s.insertPostErr != nil {
		s.mu.Unlock()
		return nil, s.insertPostErr
	}
	row := postRow{
		ID: uuid.New().String(), UserID: np.UserID, Title: np.Title, ImageURL: np.ImageURL,
		ImageURLs: np.ImageURLs, AuthorComment: np.AuthorComment, Tags: np.Tags, CreatedAt: s.tick(),
	}
	s.posts = append(s.posts, row)
	p := s.joined(row)
	s.mu.Unlock()

	s.publish(changefeed.TablePosts, changefeed.Insert, row)
	return &p, nil
}

func (s *fakeStore) updateTitle(postID, title string) {
	s.mu.Lock()
	var row postRow
	for i := range s.posts {
		if s.posts[i].ID == postID {
			s.posts[i].Title = title
			row = s.posts[i]
		}
	}
	s.mu.Unlock()
	s.publish(changefeed.TablePosts, changefeed.Update, row)
}

func (s *fakeStore) DeletePost(ctx context.Context, postID string) error {
	s.track("DeletePost")
	s.mu.Lock()
	if s.deletePostErr != nil {
		s.mu.Unlock()
		return s.deletePostErr
	}
	var removed *postRow
	for i := range s.posts {
		if s.posts[i].ID == postID {
			row := s.posts[i]
			removed = &row
			s.posts = append(s.posts[:i], s.posts[i+1:]...)
			break
		}
	}
	kept := s.likes[:0]
	for _, l := range s.likes {
		if l.PostID != postID {
			kept = append(kept, l)
		}
	}
	s.likes = kept
	s.mu.Unlock()

	if removed == nil {
		return ErrNotFound
	}
	s.publish(changefeed.TablePosts, changefeed.Delete, removed)
	return nil
}

func (s *fakeStore) waitLikeGate(ctx context.Context) {
	s.mu.Lock()
	gate := s.likeGate
	s.mu.Unlock()
	if gate != nil {
		select {
		case <-gate:
		case <-ctx.Done():
		}
	}
}

func (s *fakeStore) InsertLike(ctx context.Context, postID, userID string) error {
	s.track("InsertLike")
	s.waitLikeGate(ctx)
	s.mu.Lock()
	if s.insertLikeErr != nil {
		s.mu.Unlock()
		return s.insertLikeErr
	}
	for _, l := range s.likes {
		if l.PostID == postID && l.UserID == userID {
			s.mu.Unlock()
			return ErrAlreadyLiked
		}
	}
	like := Like{PostID: postID, UserID: userID, CreatedAt: s.tick()}
	s.likes = append(s.likes, like)
	s.mu.Unlock()

	s.publish(changefeed.TableLikes, changefeed.Insert, like)
	return nil
}

func (s *fakeStore) DeleteLike(ctx context.Context, postID, userID string) error {
	s.track("DeleteLike")
	s.waitLikeGate(ctx)
	s.mu.Lock()
	if s.deleteLikeErr != nil {
		s.mu.Unlock()
		return s.deleteLikeErr
	}
	var removed *Like
	for i, l := range s.likes {
		if l.PostID == postID && l.UserID == userID {
			removed = &l
			s.likes = append(s.likes[:i], s.likes[i+1:]...)
			break
		}
	}
	s.mu.Unlock()

	if removed != nil {
		s.publish(changefeed.TableLikes, changefeed.Delete, removed)
	}
	return nil
}

func (s *fakeStore) likeCount(postID string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for _, l := range s.likes {
		if l.PostID == postID {
			n++
		}
	}
	return n
}

func (s *fakeStore) ListComments(ctx context.Context, postID string) ([]Comment, error) {
	s.track("ListComments")
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []Comment
	for _, row := range s.comments {
		if row.PostID != postID {
			continue
		}
		c := Comment{ID: row.ID, PostID: row.PostID, UserID: row.UserID, Body: row.Body, CreatedAt: row.CreatedAt}
		if prof, ok := s.profiles[row.UserID]; ok {
			c.User = &prof
		}
		out = append(out, c)
	}
	return out, nil
}

func (s *fakeStore) InsertComment(ctx context.Context, postID, userID, body string) (*Comment, error) {
	s.track("InsertComment")
	s.mu.Lock()
	if s.insertCommentErr != nil {
		s.mu.Unlock()
		return nil, s.insertCommentErr
	}
	row := commentRow{ID: uuid.New().String(), PostID: postID, UserID: userID, Body: body, CreatedAt: s.tick()}
	s.comments = append(s.comments, row)
	s.mu.Unlock()

	s.publish(changefeed.TableComments, changefeed.Insert, row)
	return &Comment{ID: row.ID, PostID: postID, UserID: userID, Body: body, CreatedAt: row.CreatedAt}, nil
}

func (s *fakeStore) updateComment(id, body string) {
	s.mu.Lock()
	var row commentRow
	for i := range s.comments {
		if s.comments[i].ID == id {
			s.comments[i].Body = body
			row = s.comments[i]
		}
	}
	s.mu.Unlock()
	s.publish(changefeed.TableComments, changefeed.Update, row)
}

func (s *fakeStore) deleteComment(id string) {
	s.mu.Lock()
	var removed commentRow
	for i, row := range s.comments {
		if row.ID == id {
			removed = row
			s.comments = append(s.comments[:i], s.comments[i+1:]...)
			break
		}
	}
	s.mu.Unlock()
	s.publish(changefeed.TableComments, changefeed.Delete, removed)
}

func (s *fakeStore) GetProfile(ctx context.Context, userID string) (*Profile, error) {
	s.track("GetProfile")
	s.mu.Lock()
	gate := s.profileGates[userID]
	s.mu.Unlock()
	if gate != nil {
		select {
		case <-gate:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.profiles[userID]
	if !ok {
		return nil, ErrNotFound
	}
	return &p, nil
}

func (s *fakeStore) UpsertProfile(ctx context.Context, p Profile) error {
	s.track("UpsertProfile")
	s.mu.Lock()
	defer s.mu.Unlock()
	s.profiles[p.ID] = p
	return nil
}

func (s *fakeStore) Subscribe(ctx context.Context, table string, filter *changefeed.Filter) (changefeed.Stream, error) {
	inner, err := s.bus.Subscribe(ctx, table)
	if err != nil {
		return nil, err
	}
	return newFilteredStream(inner, filter), nil
}

func (s *fakeStore) Upload(ctx context.Context, bucket, path string, data []byte, contentType string, overwrite bool) error {
	s.track("Upload")
	s.mu.Lock()
	defer s.mu.Unlock()
	key := bucket + "/" + path
	if _, exists := s.objects[key]; exists && !overwrite {
		return ErrConflict
	}
	s.objects[key] = data
	return nil
}

func (s *fakeStore) PublicURL(bucket, path string) string {
	return "http://storage.test/object/public/" + bucket + "/" + path
}

func (s *fakeStore) Remove(ctx context.Context, bucket string, paths []string) error {
	s.track("Remove")
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.removeErr != nil {
		return s.removeErr
	}
	for _, p := range paths {
		delete(s.objects, bucket+"/"+p)
	}
	return nil
}

func (s *fakeStore) hasObject(bucket, path string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.objects[bucket+"/"+path]
	return ok
}

type filteredStream struct {
	inner     changefeed.Stream
	events    chan changefeed.Event
	done      chan struct{}
	closeOnce sync.Once
}

func newFilteredStream(inner changefeed.Stream, filter *changefeed.Filter) *filteredStream {
	fs := &filteredStream{inner: inner, events: make(chan changefeed.Event, 64), done: make(chan struct{})}
	go func() {
		defer close(fs.events)
		for event := range inner.Events() {
			if !filter.Match(event) {
				continue
			}
			select {
			case fs.events <- event:
			case <-fs.done:
				return
			}
		}
	}()
	return fs
}

func (fs *filteredStream) Events() <-chan changefeed.Event { return fs.events }

func (fs *filteredStream) Close() error {
	var err error
	fs.closeOnce.Do(func() {
		close(fs.done)
		err = fs.inner.Close()
	})
	return err
}

// fakeAuth is one session's view of the store's accounts.
type fakeAuth struct {
	store   *fakeStore
	mu      sync.Mutex
	current *Identity
	signErr error
}

func (a *fakeAuth) CurrentUser(ctx context.Context) (*Identity, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.current, nil
}

func (a *fakeAuth) SignIn(ctx context.Context, email, password string) (*Identity, error) {
	a.store.track("SignIn")
	a.store.mu.Lock()
	defer a.store.mu.Unlock()
	for _, u := range a.store.users {
		if u.Email == email && password == "secret1" {
			a.mu.Lock()
			a.current = u
			a.mu.Unlock()
			return u, nil
		}
	}
	return nil, errors.New("invalid login credentials")
}

func (a *fakeAuth) SignUp(ctx context.Context, email, password string, meta Metadata) (*Identity, error) {
	a.store.track("SignUp")
	if a.signErr != nil {
		return nil, a.signErr
	}
	a.store.mu.Lock()
	id := &Identity{ID: uuid.New().String(), Email: email, Metadata: meta}
	a.store.users[id.ID] = id
	a.store.mu.Unlock()
	a.mu.Lock()
	a.current = id
	a.mu.Unlock()
	return id, nil
}

func (a *fakeAuth) SignOut(ctx context.Context) error {
	a.mu.Lock()
	a.current = nil
	a.mu.Unlock()
	return nil
}

func (a *fakeAuth) UpdateUser(ctx context.Context, update MetadataUpdate) (*Identity, error) {
	a.store.track("UpdateUser")
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.current == nil {
		return nil, ErrLoginRequired
	}
	next := *a.current
	if update.Username != nil {
		next.Metadata.Username = *update.Username
	}
	if update.AvatarURL != nil {
		next.Metadata.AvatarURL = *update.AvatarURL
	}
	a.current = &next
	return &next, nil
}

func (a *fakeAuth) UploadAvatar(ctx context.Context, filename string, data []byte) (string, error) {
	a.store.track("UploadAvatar")
	return fmt.Sprintf("http://storage.test/object/public/avatars/%s?v=1", filename), nil
}

func (a *fakeAuth) RequestPasswordReset(ctx context.Context, email, redirectTo string) error {
	a.store.track("RequestPasswordReset")
	return nil
}

func (a *fakeAuth) UpdatePassword(ctx context.Context, resetToken, password string) error {
	a.store.track("UpdatePassword")
	return nil
}

func (a *fakeAuth) signInAs(id *Identity) {
	a.mu.Lock()
	a.current = id
	a.mu.Unlock()
}

func (s *fakeStore) backend() (Backend, *fakeAuth) {
	auth := &fakeAuth{store: s}
	return Backend{Auth: auth, Records: s, Realtime: s, Storage: s}, auth
}

// alerts collects Alert calls.
type alerts struct {
	mu   sync.Mutex
	errs []error
}

func (a *alerts) add(err error) {
	a.mu.Lock()
	a.errs = append(a.errs, err)
	a.mu.Unlock()
}

func (a *alerts) count() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return len(a.errs)
}

func (a *alerts) last() error {
	a.mu.Lock()
	defer a.mu.Unlock()
	if len(a.errs) == 0 {
		return nil
	}
	return a.errs[len(a.errs)-1]
}

const (
	waitFor   = 2 * time.Second
	pollEvery = 5 * time.Millisecond
)

func waitSubscribed(t *testing.T, s *fakeStore, table string, n int) {
	t.Helper()
	require.Eventually(t, func() bool { return s.bus.Subscribers(table) == n }, waitFor, pollEvery,
		"expected %d subscriber(s) on %s", n, table)
}

func feedSnap(t *testing.T, f *Feed) FeedSnapshot {
	t.Helper()
	snap, err := f.Snapshot()
	require.NoError(t, err)
	return snap
}

func viewByID(posts []PostView, id string) (PostView, bool) {
	for _, v := range posts {
		if v.Post.ID == id {
			return v, true
		}
	}
	return PostView{}, false
}

func titles(posts []PostView) []string {
	out := make([]string, 0, len(posts))
	for _, v := range posts {
		out = append(out, v.Post.Title)
	}
	return out
}

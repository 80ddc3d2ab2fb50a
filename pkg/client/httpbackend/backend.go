// Package httpbackend implements the client interfaces against the auth,
// post and realtime services.
package httpbackend

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"net/url"
	"strconv"
	"strings"
	"time"

	"akiya-share/pkg/client"
	"akiya-share/pkg/config"

	"github.com/gorilla/websocket"
)

type Options struct {
	AuthURL          string
	PostURL          string
	RealtimeURL      string
	StoragePublicURL string
	HTTPClient       *http.Client
	Dialer           *websocket.Dialer
	Tokens           TokenStore
}

type Backend struct {
	opts   Options
	http   *http.Client
	dialer *websocket.Dialer
	tokens TokenStore
}

func New(opts Options) *Backend {
	b := &Backend{opts: opts, http: opts.HTTPClient, dialer: opts.Dialer, tokens: opts.Tokens}
	if b.http == nil {
		b.http = &http.Client{Timeout: 30 * time.Second}
	}
	if b.dialer == nil {
		b.dialer = websocket.DefaultDialer
	}
	if b.tokens == nil {
		b.tokens = &MemoryTokens{}
	}
	b.opts.AuthURL = strings.TrimRight(opts.AuthURL, "/")
	b.opts.PostURL = strings.TrimRight(opts.PostURL, "/")
	b.opts.RealtimeURL = strings.TrimRight(opts.RealtimeURL, "/")
	b.opts.StoragePublicURL = strings.TrimRight(opts.StoragePublicURL, "/")
	return b
}

func NewFromConfig(cfg *config.Config, tokens TokenStore) *Backend {
	return New(Options{
		AuthURL:          cfg.AuthServiceURL,
		PostURL:          cfg.PostServiceURL,
		RealtimeURL:      cfg.RealtimeServiceURL,
		StoragePublicURL: cfg.StoragePublicURL,
		Tokens:           tokens,
	})
}

// Client bundles b as the collaborator set the client views need.
func (b *Backend) Client() client.Backend {
	return client.Backend{Auth: b, Records: b, Realtime: b, Storage: b}
}

func (b *Backend) Token() string {
	return b.tokens.Token()
}

func (b *Backend) doJSON(ctx context.Context, method, endpoint string, body, out interface{}) error {
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to encode request: %w", err)
		}
		reader = bytes.NewReader(payload)
	}
	req, err := http.NewRequestWithContext(ctx, method, endpoint, reader)
	if err != nil {
		return err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	return b.do(req, out)
}

func (b *Backend) do(req *http.Request, out interface{}) error {
	if token := b.tokens.Token(); token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := b.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return decodeError(resp)
	}
	if out == nil {
		io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}

func decodeError(resp *http.Response) error {
	var body struct {
		Error string `json:"error"`
	}
	data, _ := io.ReadAll(io.LimitReader(resp.Body, 64<<10))
	if json.Unmarshal(data, &body) != nil || body.Error == "" {
		body.Error = strings.TrimSpace(string(data))
	}
	return &APIError{Status: resp.StatusCode, Message: body.Error}
}

func (b *Backend) upload(ctx context.Context, endpoint, field, filename string, data []byte, contentType string, fields map[string]string, out interface{}) error {
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	for k, v := range fields {
		if err := w.WriteField(k, v); err != nil {
			return err
		}
	}
	header := make(textproto.MIMEHeader)
	header.Set("Content-Disposition", fmt.Sprintf(`form-data; name=%q; filename=%q`, field, filename))
	if contentType == "" {
		contentType = http.DetectContentType(data)
	}
	header.Set("Content-Type", contentType)
	part, err := w.CreatePart(header)
	if err != nil {
		return err
	}
	if _, err := part.Write(data); err != nil {
		return err
	}
	if err := w.Close(); err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, &buf)
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", w.FormDataContentType())
	return b.do(req, out)
}

type authResponse struct {
	Token string          `json:"token"`
	User  client.Identity `json:"user"`
}

func (b *Backend) CurrentUser(ctx context.Context) (*client.Identity, error) {
	if b.tokens.Token() == "" {
		return nil, nil
	}
	var user client.Identity
	err := b.doJSON(ctx, http.MethodGet, b.opts.AuthURL+"/api/v1/user", nil, &user)
	if errors.Is(err, client.ErrLoginRequired) {
		b.tokens.SetToken("")
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &user, nil
}

func (b *Backend) SignIn(ctx context.Context, email, password string) (*client.Identity, error) {
	var resp authResponse
	body := map[string]string{"email": email, "password": password}
	if err := b.doJSON(ctx, http.MethodPost, b.opts.AuthURL+"/api/v1/login", body, &resp); err != nil {
		return nil, err
	}
	if err := b.tokens.SetToken(resp.Token); err != nil {
		return nil, fmt.Errorf("failed to store token: %w", err)
	}
	return &resp.User, nil
}

func (b *Backend) SignUp(ctx context.Context, email, password string, meta client.Metadata) (*client.Identity, error) {
	var resp authResponse
	body := map[string]string{"email": email, "password": password, "username": meta.Username}
	if err := b.doJSON(ctx, http.MethodPost, b.opts.AuthURL+"/api/v1/signup", body, &resp); err != nil {
		return nil, err
	}
	if err := b.tokens.SetToken(resp.Token); err != nil {
		return nil, fmt.Errorf("failed to store token: %w", err)
	}
	return &resp.User, nil
}

// SignOut revokes the token on the server and forgets it locally even when
// the server call fails.
func (b *Backend) SignOut(ctx context.Context) error {
	if b.tokens.Token() == "" {
		return nil
	}
	err := b.doJSON(ctx, http.MethodPost, b.opts.AuthURL+"/api/v1/logout", nil, nil)
	if serr := b.tokens.SetToken(""); serr != nil && err == nil {
		err = serr
	}
	if errors.Is(err, client.ErrLoginRequired) {
		return nil
	}
	return err
}

func (b *Backend) UpdateUser(ctx context.Context, update client.MetadataUpdate) (*client.Identity, error) {
	var resp struct {
		User client.Identity `json:"user"`
	}
	if err := b.doJSON(ctx, http.MethodPut, b.opts.AuthURL+"/api/v1/user", update, &resp); err != nil {
		return nil, err
	}
	return &resp.User, nil
}

func (b *Backend) UploadAvatar(ctx context.Context, filename string, data []byte) (string, error) {
	var resp struct {
		AvatarURL string `json:"avatar_url"`
	}
	if err := b.upload(ctx, b.opts.AuthURL+"/api/v1/avatar", "avatar", filename, data, "", nil, &resp); err != nil {
		return "", err
	}
	return resp.AvatarURL, nil
}

func (b *Backend) RequestPasswordReset(ctx context.Context, email, redirectTo string) error {
	body := map[string]string{"email": email, "redirect_to": redirectTo}
	return b.doJSON(ctx, http.MethodPost, b.opts.AuthURL+"/api/v1/recover", body, nil)
}

func (b *Backend) UpdatePassword(ctx context.Context, resetToken, password string) error {
	body := map[string]string{"token": resetToken, "password": password}
	return b.doJSON(ctx, http.MethodPut, b.opts.AuthURL+"/api/v1/password", body, nil)
}

func (b *Backend) ListPosts(ctx context.Context, q client.PostQuery) ([]client.Post, error) {
	params := url.Values{}
	if q.TitleContains != "" {
		params.Set("title", q.TitleContains)
	}
	if q.AuthorID != "" {
		params.Set("user_id", q.AuthorID)
	}
	endpoint := b.opts.PostURL + "/api/v1/posts"
	if len(params) > 0 {
		endpoint += "?" + params.Encode()
	}
	var posts []client.Post
	if err := b.doJSON(ctx, http.MethodGet, endpoint, nil, &posts); err != nil {
		return nil, err
	}
	return posts, nil
}

func (b *Backend) InsertPost(ctx context.Context, p client.NewPost) (*client.Post, error) {
	var post client.Post
	if err := b.doJSON(ctx, http.MethodPost, b.opts.PostURL+"/api/v1/posts", p, &post); err != nil {
		return nil, err
	}
	return &post, nil
}

func (b *Backend) DeletePost(ctx context.Context, postID string) error {
	return b.doJSON(ctx, http.MethodDelete, b.opts.PostURL+"/api/v1/posts/"+url.PathEscape(postID), nil, nil)
}

// InsertLike likes postID as the token's user; userID only has to match it.
func (b *Backend) InsertLike(ctx context.Context, postID, userID string) error {
	err := b.doJSON(ctx, http.MethodPost, b.opts.PostURL+"/api/v1/likes", map[string]string{"post_id": postID}, nil)
	if errors.Is(err, client.ErrConflict) {
		return fmt.Errorf("%w: %v", client.ErrAlreadyLiked, err)
	}
	return err
}

func (b *Backend) DeleteLike(ctx context.Context, postID, userID string) error {
	return b.doJSON(ctx, http.MethodDelete, b.opts.PostURL+"/api/v1/likes/"+url.PathEscape(postID), nil, nil)
}

func (b *Backend) ListComments(ctx context.Context, postID string) ([]client.Comment, error) {
	var comments []client.Comment
	endpoint := b.opts.PostURL + "/api/v1/posts/" + url.PathEscape(postID) + "/comments"
	if err := b.doJSON(ctx, http.MethodGet, endpoint, nil, &comments); err != nil {
		return nil, err
	}
	return comments, nil
}

func (b *Backend) InsertComment(ctx context.Context, postID, userID, body string) (*client.Comment, error) {
	var comment client.Comment
	endpoint := b.opts.PostURL + "/api/v1/posts/" + url.PathEscape(postID) + "/comments"
	if err := b.doJSON(ctx, http.MethodPost, endpoint, map[string]string{"body": body}, &comment); err != nil {
		return nil, err
	}
	return &comment, nil
}

func (b *Backend) GetProfile(ctx context.Context, userID string) (*client.Profile, error) {
	var profile client.Profile
	if err := b.doJSON(ctx, http.MethodGet, b.opts.PostURL+"/api/v1/profiles/"+url.PathEscape(userID), nil, &profile); err != nil {
		return nil, err
	}
	return &profile, nil
}

func (b *Backend) UpsertProfile(ctx context.Context, p client.Profile) error {
	return b.doJSON(ctx, http.MethodPut, b.opts.PostURL+"/api/v1/profiles", p, nil)
}

func (b *Backend) Upload(ctx context.Context, bucket, objectPath string, data []byte, contentType string, overwrite bool) error {
	fields := map[string]string{"path": objectPath, "upsert": strconv.FormatBool(overwrite)}
	endpoint := b.opts.PostURL + "/api/v1/storage/" + url.PathEscape(bucket)
	name := objectPath
	if i := strings.LastIndex(name, "/"); i >= 0 {
		name = name[i+1:]
	}
	return b.upload(ctx, endpoint, "file", name, data, contentType, fields, nil)
}

func (b *Backend) PublicURL(bucket, objectPath string) string {
	segments := strings.Split(objectPath, "/")
	for i, s := range segments {
		segments[i] = url.PathEscape(s)
	}
	return b.opts.StoragePublicURL + "/object/public/" + url.PathEscape(bucket) + "/" + strings.Join(segments, "/")
}

func (b *Backend) Remove(ctx context.Context, bucket string, paths []string) error {
	var result struct {
		Removed []string `json:"removed"`
		Failed  []string `json:"failed"`
	}
	endpoint := b.opts.PostURL + "/api/v1/storage/" + url.PathEscape(bucket)
	if err := b.doJSON(ctx, http.MethodDelete, endpoint, map[string][]string{"paths": paths}, &result); err != nil {
		return err
	}
	if len(result.Failed) > 0 {
		return fmt.Errorf("failed to remove %s", strings.Join(result.Failed, ", "))
	}
	return nil
}

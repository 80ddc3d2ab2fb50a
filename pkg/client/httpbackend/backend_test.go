package httpbackend

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"akiya-share/pkg/changefeed"
	"akiya-share/pkg/client"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupServer(t *testing.T, routes func(r *gin.Engine)) (*Backend, *MemoryTokens) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	r := gin.New()
	routes(r)
	srv := httptest.NewServer(r)
	t.Cleanup(srv.Close)

	tokens := &MemoryTokens{}
	b := New(Options{
		AuthURL:          srv.URL,
		PostURL:          srv.URL,
		RealtimeURL:      "ws" + strings.TrimPrefix(srv.URL, "http"),
		StoragePublicURL: srv.URL + "/storage/v1/",
		Tokens:           tokens,
	})
	return b, tokens
}

func TestSignInStoresToken(t *testing.T) {
	b, tokens := setupServer(t, func(r *gin.Engine) {
		r.POST("/api/v1/login", func(c *gin.Context) {
			var body map[string]string
			require.NoError(t, c.ShouldBindJSON(&body))
			assert.Equal(t, "hanako@example.com", body["email"])
			c.JSON(http.StatusOK, gin.H{
				"token": "tok-1",
				"user":  gin.H{"id": "u1", "email": "hanako@example.com", "metadata": gin.H{"username": "hanako"}},
			})
		})
		r.GET("/api/v1/user", func(c *gin.Context) {
			if c.GetHeader("Authorization") != "Bearer tok-1" {
				c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid token"})
				return
			}
			c.JSON(http.StatusOK, gin.H{"id": "u1", "email": "hanako@example.com"})
		})
	})

	id, err := b.SignIn(context.Background(), "hanako@example.com", "secret1")
	require.NoError(t, err)
	assert.Equal(t, "hanako", id.Metadata.Username)
	assert.Equal(t, "tok-1", tokens.Token())

	current, err := b.CurrentUser(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "u1", current.ID)
}

func TestCurrentUser_SignedOut(t *testing.T) {
	calls := 0
	b, tokens := setupServer(t, func(r *gin.Engine) {
		r.GET("/api/v1/user", func(c *gin.Context) {
			calls++
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Token has been revoked"})
		})
	})

	id, err := b.CurrentUser(context.Background())
	assert.NoError(t, err)
	assert.Nil(t, id)
	assert.Zero(t, calls)

	tokens.SetToken("stale")
	id, err = b.CurrentUser(context.Background())
	assert.NoError(t, err)
	assert.Nil(t, id)
	assert.Empty(t, tokens.Token())
}

func TestErrorMapping(t *testing.T) {
	b, _ := setupServer(t, func(r *gin.Engine) {
		r.GET("/api/v1/profiles/:id", func(c *gin.Context) {
			c.JSON(http.StatusNotFound, gin.H{"error": "profile not found"})
		})
		r.DELETE("/api/v1/posts/:id", func(c *gin.Context) {
			c.JSON(http.StatusForbidden, gin.H{"error": "not the owner"})
		})
		r.POST("/api/v1/likes", func(c *gin.Context) {
			c.JSON(http.StatusConflict, gin.H{"error": "post already liked"})
		})
		r.POST("/api/v1/posts", func(c *gin.Context) {
			c.String(http.StatusBadGateway, "upstream down")
		})
	})

	_, err := b.GetProfile(context.Background(), "u1")
	assert.ErrorIs(t, err, client.ErrNotFound)
	assert.EqualError(t, err, "profile not found")

	err = b.DeletePost(context.Background(), "p1")
	assert.ErrorIs(t, err, client.ErrNotOwner)

	err = b.InsertLike(context.Background(), "p1", "u1")
	assert.ErrorIs(t, err, client.ErrAlreadyLiked)

	_, err = b.InsertPost(context.Background(), client.NewPost{Title: "x"})
	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusBadGateway, apiErr.Status)
	assert.Equal(t, "upstream down", apiErr.Message)
}

func TestListPostsQuery(t *testing.T) {
	b, _ := setupServer(t, func(r *gin.Engine) {
		r.GET("/api/v1/posts", func(c *gin.Context) {
			assert.Equal(t, "farm house", c.Query("title"))
			assert.Equal(t, "u1", c.Query("user_id"))
			c.JSON(http.StatusOK, []gin.H{{
				"id": "p1", "user_id": "u1", "title": "Old farm house",
				"image_urls": []string{"a", "b"},
				"user":       gin.H{"id": "u1", "username": "hanako"},
				"likes":      []gin.H{{"post_id": "p1", "user_id": "u2"}},
			}})
		})
	})

	posts, err := b.ListPosts(context.Background(), client.PostQuery{TitleContains: "farm house", AuthorID: "u1"})

	require.NoError(t, err)
	require.Len(t, posts, 1)
	assert.Equal(t, []string{"a", "b"}, posts[0].Images())
	assert.Equal(t, "hanako", posts[0].User.Username)
	assert.Len(t, posts[0].Likes, 1)
}

func TestInsertPostOmitsUserID(t *testing.T) {
	b, _ := setupServer(t, func(r *gin.Engine) {
		r.POST("/api/v1/posts", func(c *gin.Context) {
			var body map[string]interface{}
			require.NoError(t, c.ShouldBindJSON(&body))
			_, hasUser := body["user_id"]
			assert.False(t, hasUser)
			assert.Equal(t, "Old Farmhouse", body["title"])
			c.JSON(http.StatusCreated, gin.H{"id": "p1", "title": body["title"], "user_id": "u1"})
		})
	})

	post, err := b.InsertPost(context.Background(), client.NewPost{UserID: "u1", Title: "Old Farmhouse", ImageURL: "http://x/a.jpg"})

	require.NoError(t, err)
	assert.Equal(t, "p1", post.ID)
}

func TestUploadMultipart(t *testing.T) {
	b, tokens := setupServer(t, func(r *gin.Engine) {
		r.POST("/api/v1/storage/:bucket", func(c *gin.Context) {
			assert.Equal(t, "images", c.Param("bucket"))
			assert.Equal(t, "Bearer tok", c.GetHeader("Authorization"))
			assert.Equal(t, "u1/abc.png", c.PostForm("path"))
			assert.Equal(t, "false", c.PostForm("upsert"))
			fh, err := c.FormFile("file")
			require.NoError(t, err)
			assert.Equal(t, "abc.png", fh.Filename)
			assert.Equal(t, "image/png", fh.Header.Get("Content-Type"))
			f, _ := fh.Open()
			data, _ := io.ReadAll(f)
			assert.Equal(t, []byte("png-bytes"), data)
			c.JSON(http.StatusCreated, gin.H{"path": "u1/abc.png"})
		})
	})
	tokens.SetToken("tok")

	err := b.Upload(context.Background(), "images", "u1/abc.png", []byte("png-bytes"), "image/png", false)

	assert.NoError(t, err)
}

func TestRemoveReportsFailedPaths(t *testing.T) {
	b, _ := setupServer(t, func(r *gin.Engine) {
		r.DELETE("/api/v1/storage/:bucket", func(c *gin.Context) {
			var body struct {
				Paths []string `json:"paths"`
			}
			require.NoError(t, c.ShouldBindJSON(&body))
			c.JSON(http.StatusOK, gin.H{"removed": body.Paths[:1], "failed": body.Paths[1:]})
		})
	})

	assert.NoError(t, b.Remove(context.Background(), "images", []string{"u1/a.jpg"}))
	err := b.Remove(context.Background(), "images", []string{"u1/a.jpg", "u1/b.jpg"})
	assert.ErrorContains(t, err, "u1/b.jpg")
}

func TestPublicURLRoundTrip(t *testing.T) {
	b := New(Options{StoragePublicURL: "http://localhost:8002/storage/v1/"})

	u := b.PublicURL("images", "u1/my house.jpg")

	assert.Equal(t, "http://localhost:8002/storage/v1/object/public/images/u1/my%20house.jpg", u)
	p, ok := client.StoragePath(u, "images")
	assert.True(t, ok)
	assert.Equal(t, "u1/my house.jpg", p)
}

func TestSubscribeStreamsEvents(t *testing.T) {
	upgrader := websocket.Upgrader{}
	closed := make(chan struct{})
	b, tokens := setupServer(t, func(r *gin.Engine) {
		r.GET("/realtime/v1/ws", func(c *gin.Context) {
			if c.Query("token") != "tok" {
				c.JSON(http.StatusUnauthorized, gin.H{"error": "Token required"})
				return
			}
			assert.Equal(t, "comments", c.Query("table"))
			assert.Equal(t, "post_id=eq.p1", c.Query("filter"))
			conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
			require.NoError(t, err)
			defer conn.Close()

			event, _ := changefeed.NewEvent("comments", changefeed.Insert, gin.H{"id": "c1", "post_id": "p1"})
			require.NoError(t, conn.WriteJSON(event))
			for {
				if _, _, err := conn.ReadMessage(); err != nil {
					close(closed)
					return
				}
			}
		})
	})

	_, err := b.Subscribe(context.Background(), "comments", changefeed.Eq("post_id", "p1"))
	assert.ErrorIs(t, err, client.ErrLoginRequired)

	tokens.SetToken("tok")
	stream, err := b.Subscribe(context.Background(), "comments", changefeed.Eq("post_id", "p1"))
	require.NoError(t, err)

	select {
	case event := <-stream.Events():
		assert.Equal(t, changefeed.Insert, event.Type)
		var row map[string]string
		require.NoError(t, json.Unmarshal(event.New, &row))
		assert.Equal(t, "c1", row["id"])
	case <-time.After(2 * time.Second):
		t.Fatal("no event received")
	}

	require.NoError(t, stream.Close())
	select {
	case <-closed:
	case <-time.After(2 * time.Second):
		t.Fatal("server did not see the socket close")
	}
	_, open := <-stream.Events()
	assert.False(t, open)
}

func TestSubscribeClosesWithContext(t *testing.T) {
	upgrader := websocket.Upgrader{}
	b, tokens := setupServer(t, func(r *gin.Engine) {
		r.GET("/realtime/v1/ws", func(c *gin.Context) {
			conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
			require.NoError(t, err)
			defer conn.Close()
			for {
				if _, _, err := conn.ReadMessage(); err != nil {
					return
				}
			}
		})
	})
	tokens.SetToken("tok")
	ctx, cancel := context.WithCancel(context.Background())

	stream, err := b.Subscribe(ctx, "posts", nil)
	require.NoError(t, err)
	cancel()

	require.Eventually(t, func() bool {
		select {
		case _, open := <-stream.Events():
			return !open
		default:
			return false
		}
	}, 2*time.Second, 10*time.Millisecond)
}

func TestFileTokens(t *testing.T) {
	store := &FileTokens{Path: filepath.Join(t.TempDir(), "akiya", "token")}

	assert.Empty(t, store.Token())
	require.NoError(t, store.SetToken("tok-9"))
	assert.Equal(t, "tok-9", store.Token())
	require.NoError(t, store.SetToken(""))
	assert.Empty(t, store.Token())
	assert.NoError(t, store.SetToken(""))
}

func TestBackendSatisfiesClientInterfaces(t *testing.T) {
	b := New(Options{})
	backend := b.Client()
	assert.NotNil(t, backend.Auth)
	assert.NotNil(t, backend.Records)
	assert.NotNil(t, backend.Realtime)
	assert.NotNil(t, backend.Storage)
}

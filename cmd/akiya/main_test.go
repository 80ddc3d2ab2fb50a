package main

import (
	"bytes"
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"akiya-share/pkg/client"
	"akiya-share/pkg/client/httpbackend"
	"akiya-share/pkg/config"
	"akiya-share/pkg/logger"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// testCLI wires a cli to a gin server. Requests not handled by routes are
// counted and answered with 500.
func testCLI(t *testing.T, routes func(r *gin.Engine)) (*cli, *bytes.Buffer, *int64) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	var unhandled int64
	r := gin.New()
	if routes != nil {
		routes(r)
	}
	r.NoRoute(func(c *gin.Context) {
		atomic.AddInt64(&unhandled, 1)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "unexpected request"})
	})
	srv := httptest.NewServer(r)
	t.Cleanup(srv.Close)

	backend := httpbackend.New(httpbackend.Options{
		AuthURL:          srv.URL,
		PostURL:          srv.URL,
		RealtimeURL:      "ws" + strings.TrimPrefix(srv.URL, "http"),
		StoragePublicURL: srv.URL + "/storage/v1/",
		Tokens:           &httpbackend.MemoryTokens{},
	})
	cfg := &config.Config{ImagesBucket: "images"}
	app := newCLI(context.Background(), cfg, logger.NewWithWriters(io.Discard, io.Discard), backend.Client())
	t.Cleanup(app.ws.Close)

	var out bytes.Buffer
	app.out = &out
	app.errOut = io.Discard
	return app, &out, &unhandled
}

func TestDispatch_RejectedLocally(t *testing.T) {
	tests := []struct {
		name    string
		args    []string
		wantErr error
		errText string
		wantOut string
	}{
		{name: "unknown command", args: []string{"frobnicate"}, wantErr: errUnknownCommand},
		{name: "no command", args: nil, wantErr: errUnknownCommand},
		{name: "like needs a post id", args: []string{"like"}, errText: "expected exactly one post id"},
		{name: "delete needs one post id", args: []string{"delete", "p1", "p2"}, errText: "expected exactly one post id"},
		{name: "comments needs a post id", args: []string{"comments", "-say", "hi"}, errText: "expected exactly one post id"},
		{name: "unknown flag", args: []string{"login", "-nope"}, errText: "flag provided but not defined"},
		{
			name:    "signup password mismatch",
			args:    []string{"signup", "-email", "a@example.com", "-password", "secret1", "-confirm", "secret2", "-username", "akiko"},
			wantErr: client.ErrPasswordMismatch,
		},
		{
			name:    "signup without username",
			args:    []string{"signup", "-email", "a@example.com", "-password", "secret1", "-confirm", "secret1"},
			wantErr: client.ErrEmptyUsername,
		},
		{name: "post signed out", args: []string{"post", "-title", "Old Farmhouse"}, wantErr: client.ErrLoginRequired},
		{name: "post missing image file", args: []string{"post", "-title", "Old Farmhouse", "-image", "/nonexistent/akiya.jpg"}, errText: "no such file"},
		{name: "feed signed out", args: []string{"feed"}, wantErr: client.ErrLoginRequired},
		{name: "my posts signed out", args: []string{"feed", "-mine"}, wantErr: client.ErrLoginRequired},
		{name: "comments signed out", args: []string{"comments", "p1"}, wantErr: client.ErrLoginRequired},
		{name: "profile update signed out", args: []string{"profile", "-bio", "Renovating in Nagano"}, wantErr: client.ErrLoginRequired},
		{name: "reset mismatch", args: []string{"reset", "-token", "t1", "-password", "secret1", "-confirm", "other1"}, wantErr: client.ErrPasswordMismatch},
		{name: "reset-request bad email", args: []string{"reset-request", "-email", "not-an-email"}, wantErr: client.ErrInvalidForm},
		{name: "whoami signed out", args: []string{"whoami"}, wantOut: "Not logged in\n"},
		{name: "profile without flags", args: []string{"profile"}, wantOut: "Not logged in\n"},
		{name: "blank search", args: []string{"search", "  "}, wantOut: "Enter a search term\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			app, out, unhandled := testCLI(t, nil)

			err := dispatch(context.Background(), app, tt.args)

			switch {
			case tt.wantErr != nil:
				assert.ErrorIs(t, err, tt.wantErr)
			case tt.errText != "":
				assert.ErrorContains(t, err, tt.errText)
			default:
				assert.NoError(t, err)
			}
			assert.Equal(t, tt.wantOut, out.String())
			assert.Zero(t, atomic.LoadInt64(unhandled))
		})
	}
}

func TestDispatch_LoginThenWhoAmI(t *testing.T) {
	app, out, unhandled := testCLI(t, func(r *gin.Engine) {
		r.POST("/api/v1/login", func(c *gin.Context) {
			c.JSON(http.StatusOK, gin.H{
				"token": "tok-1",
				"user":  gin.H{"id": "u1", "email": "hanako@example.com", "metadata": gin.H{"username": "hanako"}},
			})
		})
		r.GET("/api/v1/profiles/:id", func(c *gin.Context) {
			c.JSON(http.StatusOK, gin.H{"id": c.Param("id"), "username": "hanako"})
		})
	})

	require.NoError(t, dispatch(context.Background(), app, []string{"login", "-email", "hanako@example.com", "-password", "secret1"}))
	require.NoError(t, dispatch(context.Background(), app, []string{"whoami"}))

	assert.Equal(t, "Logged in as hanako\nhanako <hanako@example.com> id=u1\n", out.String())
	assert.Zero(t, atomic.LoadInt64(unhandled))
}

func TestUsageListsEveryCommand(t *testing.T) {
	var buf bytes.Buffer
	usage(&buf)

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, len(commands)+1)
	prev := ""
	for _, line := range lines[1:] {
		name := strings.Fields(line)[0]
		_, ok := commands[name]
		assert.True(t, ok, name)
		assert.Greater(t, name, prev)
		prev = name
	}
}

func TestConfirm(t *testing.T) {
	post := &client.Post{Title: "Old Farmhouse"}
	tests := []struct {
		input     string
		assumeYes bool
		want      bool
	}{
		{input: "y\n", want: true},
		{input: " YES \n", want: true},
		{input: "n\n", want: false},
		{input: "", want: false},
		{input: "", assumeYes: true, want: true},
	}
	for _, tt := range tests {
		var out bytes.Buffer
		app := &cli{out: &out, in: strings.NewReader(tt.input), assumeYes: tt.assumeYes}

		assert.Equal(t, tt.want, app.confirm(post), "input %q", tt.input)
		if !tt.assumeYes {
			assert.Contains(t, out.String(), `Delete "Old Farmhouse"?`)
		}
	}
}

func TestPrintPosts(t *testing.T) {
	var out bytes.Buffer
	app := &cli{out: &out}

	app.printPosts(nil)
	assert.Equal(t, "No posts yet\n", out.String())

	out.Reset()
	app.printPosts([]client.PostView{
		{
			Post: &client.Post{
				ID: "p1", UserID: "u1", Title: "Old Farmhouse",
				ImageURLs: []string{"a.jpg", "b.jpg"},
				User:      &client.Profile{ID: "u1", Username: "hanako"},
				CreatedAt: time.Date(2026, 4, 1, 9, 30, 0, 0, time.Local),
			},
			LikeCount: 2, IsLiked: true, IsOwner: true,
		},
		{
			Post:      &client.Post{ID: "p2", UserID: "u2", Title: "Machiya", ImageURL: "c.jpg"},
			LikeCount: 0,
		},
	})

	lines := strings.Split(strings.TrimSpace(out.String()), "\n")
	require.Len(t, lines, 3)
	assert.Equal(t, []string{"ID", "TITLE", "AUTHOR", "LIKES", "IMAGES", "POSTED"}, strings.Fields(lines[0]))
	assert.Contains(t, lines[1], "hanako (you)")
	assert.Contains(t, lines[1], "2 *")
	assert.Contains(t, lines[1], "2026-04-01 09:30")
	row := strings.Fields(lines[2])
	assert.Equal(t, []string{"p2", "Machiya", "u2", "0", "1"}, row[:5])
}

package main

import (
	"bytes"
	"context"
	"errors"
	"flag"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"time"

	"akiya-share/pkg/client"
	"akiya-share/pkg/client/httpbackend"
	"akiya-share/pkg/config"
	"akiya-share/pkg/logger"
)

type seedUser struct {
	email    string
	username string
	password string
}

var testUsers = []seedUser{
	{"hanako@test.com", "hanako", "password123"},
	{"taro@test.com", "taro", "password123"},
	{"yuki@test.com", "yuki", "password123"},
}

var testPosts = []struct {
	title   string
	comment string
	tags    string
}{
	{"Old Farmhouse in Nagano", "Thatched roof is intact. Could be a guesthouse.", "kominka,guesthouse"},
	{"Machiya near the river", "Narrow lot, deep garden. Cafe downstairs, studio upstairs.", "machiya,cafe"},
	{"Closed village school", "Gym and classrooms in good shape. Coworking space?", "school,coworking"},
	{"Seaside fisherman's house", "Needs new floors. Great spot for a surf shop.", "seaside,shop"},
}

func main() {
	var perUser int
	flag.IntVar(&perUser, "posts", 2, "posts to create per user")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		panic(fmt.Sprintf("Failed to load config: %v", err))
	}

	log := logger.New()
	if err := seed(context.Background(), cfg, log, perUser); err != nil {
		log.Error("Failed to seed: %v", err)
		panic(err)
	}
	log.Info("Seeded successfully!")
}

func seed(ctx context.Context, cfg *config.Config, log *logger.Logger, perUser int) error {
	var postIDs []string
	workspaces := make([]*client.Workspace, 0, len(testUsers))

	for i, u := range testUsers {
		backend := httpbackend.NewFromConfig(cfg, &httpbackend.MemoryTokens{})
		ws := client.NewWorkspace(ctx, backend.Client(), client.WorkspaceOptions{ImagesBucket: cfg.ImagesBucket, Logger: log})
		defer ws.Close()

		if _, err := ws.Session.SignIn(ctx, u.email, u.password); err != nil {
			if _, err := ws.Session.SignUp(ctx, client.SignUpForm{
				Email: u.email, Password: u.password, ConfirmPassword: u.password, Username: u.username,
			}); err != nil {
				log.Error("Failed to create user %s: %v", u.username, err)
				continue
			}
			log.Info("Created user: %s (%s)", u.username, u.email)
		} else {
			log.Info("User %s already exists, signed in", u.username)
		}
		workspaces = append(workspaces, ws)

		for j := 0; j < perUser; j++ {
			tp := testPosts[(i+j)%len(testPosts)]
			img, err := placeholderImage(i*perUser + j)
			if err != nil {
				return fmt.Errorf("failed to render image: %w", err)
			}
			post, err := ws.CreatePost(ctx, client.PostForm{
				Title:         tp.title,
				AuthorComment: tp.comment,
				Tags:          client.ParseTags(tp.tags),
				Images:        []client.ImageFile{{Name: fmt.Sprintf("seed_%d.png", j), Data: img, ContentType: "image/png"}},
			})
			if err != nil {
				log.Error("Failed to create post %d for user %s: %v", j+1, u.username, err)
				continue
			}
			log.Info("Created post: %s by %s", post.Title, u.username)
			postIDs = append(postIDs, post.ID)
			time.Sleep(200 * time.Millisecond)
		}
	}

	for i, ws := range workspaces {
		userID := ws.Session.UserID()
		for j, postID := range postIDs {
			if (i+j)%2 != 0 {
				continue
			}
			if err := likeDirect(ctx, ws, postID); err != nil && !errors.Is(err, client.ErrAlreadyLiked) {
				log.Warn("Failed to like %s as %s: %v", postID, userID, err)
			}
		}
	}

	log.Info("Created %d posts for %d users", len(postIDs), len(workspaces))
	return nil
}

// likeDirect likes postID through a feed so the write takes the same path as
// the app's like button.
func likeDirect(ctx context.Context, ws *client.Workspace, postID string) error {
	f := ws.OpenFeed(client.FeedOptions{})
	defer f.Close()

	deadline := time.Now().Add(10 * time.Second)
	for {
		snap, err := f.Snapshot()
		if err != nil {
			return err
		}
		if snap.State == client.Failed {
			return snap.Err
		}
		if snap.State == client.Ready {
			break
		}
		if time.Now().After(deadline) {
			return errors.New("feed did not load")
		}
		time.Sleep(50 * time.Millisecond)
	}

	p, err := f.Post(postID)
	if err != nil {
		return err
	}
	for _, l := range p.Likes {
		if l.UserID == ws.Session.UserID() {
			return nil
		}
	}
	if err := f.ToggleLike(postID); err != nil {
		return err
	}
	for {
		n, err := f.PendingLikes()
		if err != nil || n == 0 {
			return err
		}
		if time.Now().After(deadline) {
			return errors.New("like did not settle")
		}
		time.Sleep(50 * time.Millisecond)
	}
}

// placeholderImage draws a small striped PNG so seeded posts have a real image.
func placeholderImage(n int) ([]byte, error) {
	const size = 64
	img := image.NewRGBA(image.Rect(0, 0, size, size))
	base := color.RGBA{R: uint8(80 + 40*(n%4)), G: uint8(120 + 25*(n%3)), B: uint8(90 + 30*(n%5)), A: 255}
	for y := 0; y < size; y++ {
		for x := 0; x < size; x++ {
			c := base
			if (x+y+n)%16 < 4 {
				c = color.RGBA{R: 240, G: 235, B: 220, A: 255}
			}
			img.Set(x, y, c)
		}
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

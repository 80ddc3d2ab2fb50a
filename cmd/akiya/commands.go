package main

import (
	"bufio"
	"context"
	"errors"
	"flag"
	"fmt"
	"mime"
	"os"
	"path/filepath"
	"strings"
	"text/tabwriter"
	"time"

	"akiya-share/pkg/client"
)

const pollInterval = 50 * time.Millisecond

type multiFlag []string

func (m *multiFlag) String() string     { return strings.Join(*m, ",") }
func (m *multiFlag) Set(v string) error { *m = append(*m, v); return nil }

func parse(name string, args []string, define func(fs *flag.FlagSet)) (*flag.FlagSet, error) {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	if define != nil {
		define(fs)
	}
	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	return fs, nil
}

func oneArg(fs *flag.FlagSet, what string) (string, error) {
	if fs.NArg() != 1 {
		return "", fmt.Errorf("expected exactly one %s", what)
	}
	return fs.Arg(0), nil
}

func runSignUp(ctx context.Context, app *cli, args []string) error {
	var form client.SignUpForm
	if _, err := parse("signup", args, func(fs *flag.FlagSet) {
		fs.StringVar(&form.Email, "email", "", "email address")
		fs.StringVar(&form.Password, "password", "", "password")
		fs.StringVar(&form.ConfirmPassword, "confirm", "", "password again")
		fs.StringVar(&form.Username, "username", "", "display name")
	}); err != nil {
		return err
	}
	id, err := app.ws.Session.SignUp(ctx, form)
	if err != nil {
		return err
	}
	fmt.Fprintf(app.out, "Signed up as %s (%s)\n", id.DisplayName(), id.Email)
	return nil
}

func runLogin(ctx context.Context, app *cli, args []string) error {
	var email, password string
	if _, err := parse("login", args, func(fs *flag.FlagSet) {
		fs.StringVar(&email, "email", "", "email address")
		fs.StringVar(&password, "password", "", "password")
	}); err != nil {
		return err
	}
	id, err := app.ws.Session.SignIn(ctx, email, password)
	if err != nil {
		return err
	}
	fmt.Fprintf(app.out, "Logged in as %s\n", id.DisplayName())
	return nil
}

func runLogout(ctx context.Context, app *cli, args []string) error {
	if err := app.ws.Session.SignOut(ctx); err != nil {
		return err
	}
	fmt.Fprintln(app.out, "Logged out")
	return nil
}

func runWhoAmI(ctx context.Context, app *cli, args []string) error {
	id := app.ws.Session.Current()
	if id == nil {
		fmt.Fprintln(app.out, "Not logged in")
		return nil
	}
	fmt.Fprintf(app.out, "%s <%s> id=%s\n", id.DisplayName(), id.Email, id.ID)
	return nil
}

func (a *cli) printPosts(posts []client.PostView) {
	if len(posts) == 0 {
		fmt.Fprintln(a.out, "No posts yet")
		return
	}
	w := tabwriter.NewWriter(a.out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tTITLE\tAUTHOR\tLIKES\tIMAGES\tPOSTED")
	for _, v := range posts {
		author := v.Post.UserID
		if v.Post.User != nil {
			author = v.Post.User.Username
		}
		likes := fmt.Sprint(v.LikeCount)
		if v.IsLiked {
			likes += " *"
		}
		if v.IsOwner {
			author += " (you)"
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%d\t%s\n", v.Post.ID, v.Post.Title, author, likes,
			len(v.Post.Images()), v.Post.CreatedAt.Local().Format("2006-01-02 15:04"))
	}
	w.Flush()
}

// waitFeed polls until the feed finished its first load.
func waitFeed(ctx context.Context, f *client.Feed) (client.FeedSnapshot, error) {
	ticker := time.NewTicker(pollInterval)
	defer ticker.Stop()
	for {
		snap, err := f.Snapshot()
		if err != nil {
			return snap, err
		}
		switch snap.State {
		case client.Ready:
			return snap, nil
		case client.Failed:
			return snap, snap.Err
		}
		select {
		case <-ctx.Done():
			return snap, ctx.Err()
		case <-ticker.C:
		}
	}
}

func (a *cli) openFeed(mine bool, opts client.FeedOptions) (*client.Feed, error) {
	if mine {
		return a.ws.OpenMyPosts(opts)
	}
	if _, err := a.ws.Session.Require(); err != nil {
		return nil, err
	}
	return a.ws.OpenFeed(opts), nil
}

func runFeed(ctx context.Context, app *cli, args []string) error {
	var mine, follow bool
	if _, err := parse("feed", args, func(fs *flag.FlagSet) {
		fs.BoolVar(&mine, "mine", false, "only my posts")
		fs.BoolVar(&follow, "follow", false, "keep printing live changes")
	}); err != nil {
		return err
	}

	updates := make(chan client.FeedSnapshot, 1)
	var onChange func(client.FeedSnapshot)
	if follow {
		onChange = func(s client.FeedSnapshot) {
			select {
			case <-updates:
			default:
			}
			updates <- s
		}
	}
	f, err := app.openFeed(mine, client.FeedOptions{OnChange: onChange})
	if err != nil {
		return err
	}
	snap, err := waitFeed(ctx, f)
	if err != nil {
		return err
	}
	if !follow {
		app.printPosts(snap.Posts)
		return nil
	}

	for {
		select {
		case <-ctx.Done():
			return nil
		case snap := <-updates:
			fmt.Fprintf(app.out, "\n-- %s --\n", time.Now().Format("15:04:05"))
			app.printPosts(snap.Posts)
		}
	}
}

func runSearch(ctx context.Context, app *cli, args []string) error {
	var order string
	fs, err := parse("search", args, func(fs *flag.FlagSet) {
		fs.StringVar(&order, "sort", "recent", "recent or likes")
	})
	if err != nil {
		return err
	}
	s := app.ws.OpenSearch(client.SearchOptions{})
	if order == "likes" {
		if err := s.SortBy(client.ByLikes); err != nil {
			return err
		}
	}
	query := strings.Join(fs.Args(), " ")
	if err := s.Search(ctx, query); err != nil {
		return err
	}
	snap, err := s.Snapshot()
	if err != nil {
		return err
	}
	switch snap.State {
	case client.Unsearched:
		fmt.Fprintln(app.out, "Enter a search term")
	case client.NoMatches:
		fmt.Fprintf(app.out, "No posts match %q\n", snap.Query)
	default:
		app.printPosts(snap.Posts)
	}
	return nil
}

func runLike(ctx context.Context, app *cli, args []string) error {
	fs, err := parse("like", args, nil)
	if err != nil {
		return err
	}
	postID, err := oneArg(fs, "post id")
	if err != nil {
		return err
	}

	alerted := make(chan error, 1)
	f, err := app.openFeed(false, client.FeedOptions{Alert: func(err error) {
		select {
		case alerted <- err:
		default:
		}
	}})
	if err != nil {
		return err
	}
	if _, err := waitFeed(ctx, f); err != nil {
		return err
	}
	if err := f.ToggleLike(postID); err != nil {
		return err
	}

	ticker := time.NewTicker(pollInterval)
	defer ticker.Stop()
	for {
		n, err := f.PendingLikes()
		if err != nil {
			return err
		}
		if n == 0 {
			break
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case err := <-alerted:
			return err
		case <-ticker.C:
		}
	}

	p, err := f.Post(postID)
	if err != nil {
		return err
	}
	verb := "Unliked"
	for _, l := range p.Likes {
		if l.UserID == app.ws.Session.UserID() {
			verb = "Liked"
		}
	}
	fmt.Fprintf(app.out, "%s %q (%d likes)\n", verb, p.Title, len(p.Likes))
	return nil
}

func readImage(path string) (client.ImageFile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return client.ImageFile{}, err
	}
	return client.ImageFile{
		Name:        filepath.Base(path),
		Data:        data,
		ContentType: mime.TypeByExtension(strings.ToLower(filepath.Ext(path))),
	}, nil
}

func runPost(ctx context.Context, app *cli, args []string) error {
	var (
		form   client.PostForm
		tags   string
		images multiFlag
	)
	if _, err := parse("post", args, func(fs *flag.FlagSet) {
		fs.StringVar(&form.Title, "title", "", "post title")
		fs.StringVar(&form.AuthorComment, "comment", "", "renovation idea")
		fs.StringVar(&tags, "tags", "", "comma separated tags")
		fs.Var(&images, "image", "image file, repeatable")
	}); err != nil {
		return err
	}
	form.Tags = client.ParseTags(tags)
	for _, path := range images {
		img, err := readImage(path)
		if err != nil {
			return err
		}
		form.Images = append(form.Images, img)
	}

	post, err := app.ws.CreatePost(ctx, form)
	if err != nil {
		return err
	}
	fmt.Fprintf(app.out, "Posted %q as %s\n", post.Title, post.ID)
	return nil
}

func (a *cli) confirm(p *client.Post) bool {
	if a.assumeYes {
		return true
	}
	fmt.Fprintf(a.out, "Delete %q? This cannot be undone. [y/N] ", p.Title)
	line, err := bufio.NewReader(a.in).ReadString('\n')
	if err != nil && line == "" {
		return false
	}
	answer := strings.ToLower(strings.TrimSpace(line))
	return answer == "y" || answer == "yes"
}

func runDelete(ctx context.Context, app *cli, args []string) error {
	var yes bool
	fs, err := parse("delete", args, func(fs *flag.FlagSet) {
		fs.BoolVar(&yes, "yes", false, "do not ask for confirmation")
	})
	if err != nil {
		return err
	}
	postID, err := oneArg(fs, "post id")
	if err != nil {
		return err
	}

	f, err := app.openFeed(true, client.FeedOptions{})
	if err != nil {
		return err
	}
	if _, err := waitFeed(ctx, f); err != nil {
		return err
	}
	app.assumeYes = yes
	err = app.ws.DeletePost(ctx, postID)
	if errors.Is(err, client.ErrNotFound) {
		return fmt.Errorf("post %s is not one of yours", postID)
	}
	if err != nil {
		return err
	}
	fmt.Fprintln(app.out, "Deleted")
	return nil
}

func (a *cli) printComments(comments []client.Comment) {
	for _, c := range comments {
		author := c.UserID
		if c.User != nil {
			author = c.User.Username
		}
		fmt.Fprintf(a.out, "[%s] %s: %s\n", c.CreatedAt.Local().Format("01-02 15:04"), author, c.Body)
	}
}

func runComments(ctx context.Context, app *cli, args []string) error {
	var say string
	var follow bool
	fs, err := parse("comments", args, func(fs *flag.FlagSet) {
		fs.StringVar(&say, "say", "", "add a comment")
		fs.BoolVar(&follow, "follow", false, "keep printing new comments")
	})
	if err != nil {
		return err
	}
	postID, err := oneArg(fs, "post id")
	if err != nil {
		return err
	}
	if _, err := app.ws.Session.Require(); err != nil {
		return err
	}

	seen := make(chan []client.Comment, 1)
	cs := app.ws.OpenComments(postID, client.CommentOptions{
		OnChange: func(s client.CommentSnapshot) {
			select {
			case <-seen:
			default:
			}
			seen <- s.Comments
		},
	})

	ticker := time.NewTicker(pollInterval)
	defer ticker.Stop()
	for {
		snap, err := cs.Snapshot()
		if err != nil {
			return err
		}
		if snap.State == client.Failed {
			return snap.Err
		}
		if snap.State == client.Ready {
			break
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}
	}

	if say != "" {
		if err := cs.SetDraft(say); err != nil {
			return err
		}
		if err := cs.Submit(ctx); err != nil {
			return err
		}
	}

	printed := 0
	show := func(comments []client.Comment) {
		if len(comments) < printed {
			printed = 0
		}
		app.printComments(comments[printed:])
		printed = len(comments)
	}
	snap, err := cs.Snapshot()
	if err != nil {
		return err
	}
	show(snap.Comments)
	if !follow {
		return nil
	}
	for {
		select {
		case <-ctx.Done():
			return nil
		case comments := <-seen:
			show(comments)
		}
	}
}

func runProfile(ctx context.Context, app *cli, args []string) error {
	var username, bio, avatar string
	fs, err := parse("profile", args, func(fs *flag.FlagSet) {
		fs.StringVar(&username, "username", "", "new display name")
		fs.StringVar(&bio, "bio", "", "new bio")
		fs.StringVar(&avatar, "avatar", "", "avatar image file")
	})
	if err != nil {
		return err
	}

	var update client.ProfileUpdate
	fs.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "username":
			update.Username = &username
		case "bio":
			update.Bio = &bio
		}
	})
	if avatar != "" {
		img, err := readImage(avatar)
		if err != nil {
			return err
		}
		update.AvatarName, update.AvatarData = img.Name, img.Data
	}
	if update.Username == nil && update.Bio == nil && update.AvatarData == nil {
		return runWhoAmI(ctx, app, nil)
	}

	id, err := app.ws.Session.UpdateProfile(ctx, update)
	if err != nil {
		return err
	}
	fmt.Fprintf(app.out, "Profile updated: %s %s\n", id.DisplayName(), id.Metadata.AvatarURL)
	return nil
}

func runResetRequest(ctx context.Context, app *cli, args []string) error {
	var email, redirect string
	if _, err := parse("reset-request", args, func(fs *flag.FlagSet) {
		fs.StringVar(&email, "email", "", "account email")
		fs.StringVar(&redirect, "redirect", "", "where the reset link should point")
	}); err != nil {
		return err
	}
	if err := app.ws.Session.RequestPasswordReset(ctx, email, redirect); err != nil {
		return err
	}
	fmt.Fprintln(app.out, "If the email is registered, a reset link has been sent")
	return nil
}

func runReset(ctx context.Context, app *cli, args []string) error {
	var token, password, confirm string
	if _, err := parse("reset", args, func(fs *flag.FlagSet) {
		fs.StringVar(&token, "token", "", "reset token from the email link")
		fs.StringVar(&password, "password", "", "new password")
		fs.StringVar(&confirm, "confirm", "", "new password again")
	}); err != nil {
		return err
	}
	if err := app.ws.Session.UpdatePassword(ctx, token, password, confirm); err != nil {
		return err
	}
	fmt.Fprintln(app.out, "Password updated")
	return nil
}

package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"sort"
	"syscall"

	"akiya-share/pkg/client"
	"akiya-share/pkg/client/httpbackend"
	"akiya-share/pkg/config"
	"akiya-share/pkg/logger"
)

type command struct {
	usage string
	run   func(ctx context.Context, app *cli, args []string) error
}

var commands = map[string]command{
	"signup":        {"-email E -password P -confirm P -username U", runSignUp},
	"login":         {"-email E -password P", runLogin},
	"logout":        {"", runLogout},
	"whoami":        {"", runWhoAmI},
	"feed":          {"[-mine] [-follow]", runFeed},
	"search":        {"[-sort recent|likes] QUERY", runSearch},
	"like":          {"POST_ID", runLike},
	"post":          {"-title T [-comment C] [-tags a,b] -image FILE [-image FILE...]", runPost},
	"delete":        {"[-yes] POST_ID", runDelete},
	"comments":      {"[-say TEXT] [-follow] POST_ID", runComments},
	"profile":       {"[-username U] [-bio B] [-avatar FILE]", runProfile},
	"reset-request": {"-email E [-redirect URL]", runResetRequest},
	"reset":         {"-token T -password P -confirm P", runReset},
}

var errUnknownCommand = errors.New("unknown command")

func usage(w io.Writer) {
	fmt.Fprintln(w, "usage: akiya <command> [flags]")
	names := make([]string, 0, len(commands))
	for name := range commands {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		fmt.Fprintf(w, "  %-14s %s\n", name, commands[name].usage)
	}
}

func tokenPath() string {
	if p := os.Getenv("AKIYA_TOKEN_FILE"); p != "" {
		return p
	}
	dir, err := os.UserConfigDir()
	if err != nil {
		dir = os.TempDir()
	}
	return filepath.Join(dir, "akiya", "token")
}

func main() {
	if len(os.Args) < 2 {
		usage(os.Stderr)
		os.Exit(2)
	}
	if _, ok := commands[os.Args[1]]; !ok {
		usage(os.Stderr)
		os.Exit(2)
	}

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	backend := httpbackend.NewFromConfig(cfg, &httpbackend.FileTokens{Path: tokenPath()})
	app := newCLI(ctx, cfg, logger.New(), backend.Client())
	defer app.ws.Close()

	if _, err := app.ws.Session.Load(ctx); err != nil {
		app.log.Warn("Could not restore session: %v", err)
	}

	if err := dispatch(ctx, app, os.Args[1:]); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		app.ws.Close()
		os.Exit(1)
	}
}

// cli is the state shared by every subcommand.
type cli struct {
	cfg    *config.Config
	log    *logger.Logger
	ws     *client.Workspace
	out    io.Writer
	errOut io.Writer
	in     io.Reader

	assumeYes bool
}

func newCLI(ctx context.Context, cfg *config.Config, log *logger.Logger, backend client.Backend) *cli {
	app := &cli{cfg: cfg, log: log, out: os.Stdout, errOut: os.Stderr, in: os.Stdin}
	app.ws = client.NewWorkspace(ctx, backend, client.WorkspaceOptions{
		Confirm:      app.confirm,
		ImagesBucket: cfg.ImagesBucket,
		Alert:        app.alert,
		Logger:       log,
	})
	return app
}

// dispatch runs the subcommand named by args[0].
func dispatch(ctx context.Context, app *cli, args []string) error {
	if len(args) == 0 {
		return errUnknownCommand
	}
	cmd, ok := commands[args[0]]
	if !ok {
		return fmt.Errorf("%w: %s", errUnknownCommand, args[0])
	}
	return cmd.run(ctx, app, args[1:])
}

func (a *cli) alert(err error) {
	fmt.Fprintf(a.errOut, "! %v\n", err)
}

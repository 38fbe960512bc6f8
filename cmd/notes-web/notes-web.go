package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/mrshanahan/notes-web/internal/config"
	"github.com/mrshanahan/notes-web/internal/logging"
	"github.com/mrshanahan/notes-web/internal/utils"
	"github.com/mrshanahan/notes-web/internal/web"
	notesdb "github.com/mrshanahan/notes-web/pkg/notes-db"
)

var (
	NotesConfigDirectory = path.Join(os.Getenv("HOME"), ".notes-web")
	DatabaseName         = "notes.sqlite"
)

func main() {
	exitCode := Run()
	os.Exit(exitCode)
}

func Run() int {
	if len(os.Args) > 1 && utils.Any(os.Args[1:], func(x string) bool { return x == "-h" || x == "--help" || x == "-?" }) {
		printHelp()
		return 0
	}

	cfg, err := config.Parse()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to parse configuration: %s\n", err)
		return 1
	}

	if _, err := logging.Setup(os.Stderr, cfg.LogLevel, cfg.LogPretty); err != nil {
		fmt.Fprintf(os.Stderr, "failed to set up logging: %s\n", err)
		return 1
	}

	dbDir := cfg.DBDir
	if dbDir == "" {
		dbDir = NotesConfigDirectory
		slog.Info("no DB directory provided; using default", "dir", dbDir)
	} else {
		slog.Info("given DB directory", "dir", dbDir)
	}
	if err := os.MkdirAll(dbDir, 0777); err != nil {
		slog.Error("failed to create notes DB directory",
			"dir", dbDir,
			"err", err)
		return 1
	}
	dbPath := path.Join(dbDir, DatabaseName)

	db, err := notesdb.Initialize(dbPath)
	if err != nil {
		slog.Error("failed to initialize notes DB",
			"path", dbPath,
			"err", err)
		return 1
	}
	defer db.Close()

	srv := web.NewServer(db, cfg.SessionExpiration)
	app := srv.Router()

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	eg, ctx := errgroup.WithContext(ctx)
	eg.Go(func() error {
		slog.Info("listening for requests", "addr", cfg.Addr)
		return app.Listen(cfg.Addr)
	})
	eg.Go(func() error {
		<-ctx.Done()
		return app.ShutdownWithTimeout(5 * time.Second)
	})

	if err := eg.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		slog.Error("server stopped with error", "err", err)
		return 1
	}
	return 0
}

func printHelp() {
	fmt.Fprintf(os.Stderr, `
notes-web [-h|--help|-?]

OPTIONS:
	-h|--help|-?	Display this help message and exit

ENVIRONMENT VARIABLES:
	NOTES_WEB_ADDR:               (optional) Address to listen on (default: :3333)
	NOTES_WEB_DB_DIR:             (optional) Path to directory where %s is located (default: %s)
	NOTES_WEB_LOG_LEVEL:          (optional) Log level (default: info)
	NOTES_WEB_LOG_PRETTY:         (optional) Use colored text logs instead of JSON (default: false)
	NOTES_WEB_SESSION_EXPIRATION: (optional) Session lifetime (default: 24h)
`,
		DatabaseName,
		NotesConfigDirectory)
}

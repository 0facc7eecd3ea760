package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"go.opentelemetry.io/otel/attribute"

	"github.com/bakkerme/photoselector/internal/config"
	"github.com/bakkerme/photoselector/internal/core"
	"github.com/bakkerme/photoselector/internal/gallery"
	"github.com/bakkerme/photoselector/internal/lifecycle"
	"github.com/bakkerme/photoselector/internal/observability/otelx"
	"github.com/bakkerme/photoselector/internal/retry"
	"github.com/bakkerme/photoselector/internal/selection"
	"github.com/bakkerme/photoselector/internal/selector"
	"github.com/bakkerme/photoselector/internal/terminal"
)

func main() {
	env := config.LoadEnv()
	configPath := flag.String("config", env.ConfigPath, "path to photoselector document")
	sessionID := flag.Int("session", env.SessionID, "selection session id (-1 disables deduplication)")
	maxCount := flag.Int("max", 0, "maximum items per selection (0 uses the document value)")
	flag.Parse()

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: parseLevel(env.LogLevel)}))

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	req := selector.Request{MaxCount: *maxCount, Session: selection.SessionID(*sessionID)}
	if err := serve(ctx, logger, env, *configPath, req); err != nil {
		stop()
		log.Fatalf("photoselector: %v", err)
	}
}

// serve wires the gallery and selector and runs the terminal loop. Every
// resource it opens is released before it returns, error or not.
func serve(ctx context.Context, logger *slog.Logger, env config.EnvConfig, configPath string, req selector.Request) error {
	doc, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("load document: %w", err)
	}
	fileProvider := doc.Selector.FileProvider
	if env.FileProvider != "" {
		fileProvider = env.FileProvider
	}
	if fileProvider == "" {
		return fmt.Errorf("a file provider is required (selector.file_provider or FILE_PROVIDER)")
	}

	shutdown, err := otelx.Init(ctx, logger, env.OTel,
		attribute.String("photoselector.file_provider", fileProvider),
		attribute.Int("photoselector.gallery.roots", len(doc.Gallery.Roots)),
		attribute.Int("photoselector.max_count", doc.Selector.MaxCount),
	)
	if err != nil {
		return fmt.Errorf("init otel: %w", err)
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := shutdown(shutdownCtx); err != nil {
			logger.Warn("otel shutdown failed", "error", err)
		}
	}()

	var index *gallery.Index
	err = retry.Do(ctx, retry.Config{
		Attempts:  5,
		BaseDelay: 250 * time.Millisecond,
		Retryable: sqliteBusy,
		Logger:    logger,
		Name:      "open gallery index",
	}, func() error {
		var openErr error
		index, openErr = gallery.NewSQLiteIndex(doc.Gallery.Index.DSN, doc.Gallery.Index.Table, doc.Gallery.Index.Authority)
		return openErr
	})
	if err != nil {
		return fmt.Errorf("open gallery index: %w", err)
	}
	defer index.Close()

	filter, err := gallery.NewFilter(doc.Gallery.Filter)
	if err != nil {
		return fmt.Errorf("invalid gallery filter: %w", err)
	}
	media, err := gallery.NewFSGallery(gallery.FSOptions{
		Logger: logger,
		Roots:  doc.Gallery.Roots,
		Index:  index,
		Filter: filter,
	})
	if err != nil {
		return fmt.Errorf("create gallery: %w", err)
	}
	err = retry.Do(ctx, retry.Config{Attempts: 3, Logger: logger, Name: "initial gallery scan"}, func() error {
		return media.Refresh(ctx)
	})
	if err != nil {
		return fmt.Errorf("scan gallery: %w", err)
	}

	if r := doc.Gallery.Refresh; r != nil {
		refresher := gallery.NewRefresher(logger, media, r.Schedule, r.Timezone)
		if err := refresher.Start(ctx); err != nil {
			return fmt.Errorf("start gallery refresher: %w", err)
		}
		defer refresher.Stop()
	}

	screen := terminal.NewScreen(os.Stdin, os.Stdout)
	s := selector.New(selector.Options{
		Logger:          logger,
		Registry:        selection.NewRegistry(logger),
		Gallery:         media,
		Screen:          screen,
		Permissions:     promptPermissions{screen: screen},
		Camera:          promptCamera{screen: screen},
		Viewer:          printViewer{screen: screen},
		TempDir:         doc.Selector.TempDir,
		DefaultMaxCount: doc.Selector.MaxCount,
	})
	s.Init(fileProvider)
	if len(doc.Gallery.Albums) > 0 {
		s.RegisterAlbumNameTransformer(gallery.MapNameTransformer{
			Names: doc.Gallery.Albums,
			Next:  gallery.AlbumNameTransformer{},
		})
	}

	scope := lifecycle.NewScope("terminal")
	defer scope.Close()

	return run(ctx, s, screen, scope, req)
}

const usage = "commands: photo, video, all, take-photo, take-video, quit\n"

func run(ctx context.Context, s *selector.Selector, screen *terminal.Screen, scope *lifecycle.Scope, req selector.Request) error {
	screen.Printf(usage)
	for {
		if ctx.Err() != nil {
			return nil
		}
		line, ok := screen.Prompt("photoselector> ")
		if !ok {
			return nil
		}
		var err error
		switch strings.TrimSpace(line) {
		case "":
			continue
		case "photo":
			err = pick(screen, func() ([]string, error) { return uris(s.OpenPhotoSelector(ctx, scope, req)) })
		case "video":
			err = pick(screen, func() ([]string, error) { return uris(s.OpenVideoSelector(ctx, scope, req)) })
		case "all":
			err = pick(screen, func() ([]string, error) { return uris(s.OpenPictureSelector(ctx, scope, req)) })
		case "take-photo":
			err = pick(screen, func() ([]string, error) { return single(s.TakePhoto(ctx, "")) })
		case "take-video":
			err = pick(screen, func() ([]string, error) { return single(s.TakeVideo(ctx, "")) })
		case "quit", "exit":
			return nil
		default:
			screen.Printf(usage)
		}
		if err != nil {
			return err
		}
	}
}

// pick reports the outcome of one host call. Cancellation and denied
// permissions are user outcomes, not failures.
func pick(screen *terminal.Screen, call func() ([]string, error)) error {
	paths, err := call()
	switch {
	case errors.Is(err, selector.ErrCanceled):
		screen.Printf("canceled\n")
		return nil
	case errors.Is(err, selector.ErrPermissionDenied):
		screen.Printf("permission denied\n")
		return nil
	case errors.Is(err, context.Canceled):
		return nil
	case err != nil:
		return err
	}
	for _, p := range paths {
		screen.Printf("%s\n", p)
	}
	return nil
}

func uris(items []core.Photo, err error) ([]string, error) {
	if err != nil {
		return nil, err
	}
	out := make([]string, 0, len(items))
	for _, item := range items {
		out = append(out, fmt.Sprintf("%s %s", item.URI, item.Path))
	}
	return out, nil
}

func single(path string, err error) ([]string, error) {
	if err != nil {
		return nil, err
	}
	return []string{path}, nil
}

func sqliteBusy(err error) bool {
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "database is locked") || strings.Contains(msg, "sqlite_busy")
}

func parseLevel(raw string) slog.Level {
	var level slog.Level
	if err := level.UnmarshalText([]byte(raw)); err != nil {
		return slog.LevelInfo
	}
	return level
}

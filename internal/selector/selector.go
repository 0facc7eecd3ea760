package selector

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"path/filepath"
	"sync"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/bakkerme/photoselector/internal/core"
	"github.com/bakkerme/photoselector/internal/gallery"
	"github.com/bakkerme/photoselector/internal/platform"
	"github.com/bakkerme/photoselector/internal/selection"
)

const (
	DefaultMaxCount   = 9
	TempImageFileName = "photoselector_take_photo_temp_image.jpg"
	TempVideoFileName = "photoselector_take_photo_temp_video.mp4"

	tracerName = "github.com/bakkerme/photoselector/internal/selector"
)

var (
	ErrCanceled         = errors.New("selection canceled")
	ErrPermissionDenied = errors.New("permission denied")
	ErrLimitReached     = errors.New("selection limit reached")
	ErrUnknownItem      = errors.New("unknown gallery item")
	ErrPageClosed       = errors.New("selector page already closed")
)

// Screen is the host UI. ShowAlbum presents the page and returns once the
// user confirmed or backed out; ShowPreview pages through items starting at
// position.
type Screen interface {
	ShowAlbum(ctx context.Context, page *Page) error
	ShowPreview(ctx context.Context, items []core.Photo, position int) error
}

type Options struct {
	Logger      *slog.Logger
	Registry    *selection.Registry
	Gallery     gallery.Gallery
	Screen      Screen
	Permissions platform.PermissionRequester
	Camera      platform.Camera
	Viewer      platform.Viewer
	// TempDir holds default capture targets. Defaults to <os temp>/photoselector.
	TempDir         string
	DefaultMaxCount int
}

// Selector opens selector and preview pages and drives capture. Its
// registry remembers confirmed selections per session.
type Selector struct {
	logger      *slog.Logger
	registry    *selection.Registry
	gallery     gallery.Gallery
	screen      Screen
	permissions platform.PermissionRequester
	camera      platform.Camera
	viewer      platform.Viewer
	tempDir     string
	maxCount    int
	tracer      trace.Tracer

	mu           sync.RWMutex
	fileProvider string
	transformer  gallery.NameTransformer

	bindMu   sync.Mutex
	bindings map[bindingKey]*selection.Handle
}

func New(opts Options) *Selector {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	registry := opts.Registry
	if registry == nil {
		registry = selection.NewRegistry(logger)
	}
	tempDir := opts.TempDir
	if tempDir == "" {
		tempDir = filepath.Join(os.TempDir(), "photoselector")
	}
	maxCount := opts.DefaultMaxCount
	if maxCount <= 0 {
		maxCount = DefaultMaxCount
	}
	return &Selector{
		logger:      logger,
		registry:    registry,
		gallery:     opts.Gallery,
		screen:      opts.Screen,
		permissions: opts.Permissions,
		camera:      opts.Camera,
		viewer:      opts.Viewer,
		tempDir:     tempDir,
		maxCount:    maxCount,
		tracer:      otel.Tracer(tracerName),
		transformer: gallery.AlbumNameTransformer{},
		bindings:    map[bindingKey]*selection.Handle{},
	}
}

// Init sets the file provider authority used to build content URIs for
// capture targets. It must be called before TakePhoto or TakeVideo.
func (s *Selector) Init(fileProvider string) {
	s.mu.Lock()
	s.fileProvider = fileProvider
	s.mu.Unlock()
}

// RegisterAlbumNameTransformer replaces the album naming rule. Embed
// gallery.AlbumNameTransformer to keep the defaults for names you skip.
func (s *Selector) RegisterAlbumNameTransformer(t gallery.NameTransformer) {
	if t == nil {
		return
	}
	s.mu.Lock()
	s.transformer = t
	s.mu.Unlock()
}

func (s *Selector) TransformAlbumName(name string) string {
	return s.albumNames().Transform(name)
}

func (s *Selector) Registry() *selection.Registry {
	return s.registry
}

func (s *Selector) albumNames() gallery.NameTransformer {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.transformer
}

func (s *Selector) requireFileProvider() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.fileProvider == "" {
		panic("photoselector: Init must be called with a file provider before use")
	}
	return s.fileProvider
}

func (s *Selector) optionalFileProvider() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.fileProvider
}

func endSpan(span trace.Span, err error) {
	if err != nil && !errors.Is(err, ErrCanceled) {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	span.End()
}

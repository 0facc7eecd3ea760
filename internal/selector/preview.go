package selector

import (
	"context"
	"fmt"
	"net/url"
	"path/filepath"
	"strings"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/bakkerme/photoselector/internal/core"
)

const defaultVideoMime = "video/*"

// OpenPreview pages through pictures starting at position. Pictures may be
// local or remote, photos or videos. Nothing happens for an empty list.
func (s *Selector) OpenPreview(ctx context.Context, pictures []core.Photo, position int) (err error) {
	if len(pictures) == 0 {
		return nil
	}
	ctx, span := s.tracer.Start(ctx, "selector.preview", trace.WithAttributes(
		attribute.Int("preview.count", len(pictures)),
	))
	defer func() { endSpan(span, err) }()

	if s.screen == nil {
		return fmt.Errorf("preview needs a screen")
	}
	if position < 0 {
		position = 0
	}
	if position >= len(pictures) {
		position = len(pictures) - 1
	}
	return s.screen.ShowPreview(ctx, append([]core.Photo(nil), pictures...), position)
}

// PlayVideo hands photo to the system player.
func (s *Selector) PlayVideo(ctx context.Context, photo core.Photo) error {
	mimeType := photo.Mime
	if !strings.HasPrefix(mimeType, "video/") {
		mimeType = core.MimeForPath(photo.Path)
	}
	if mimeType == "" {
		mimeType = core.MimeForPath(uriPath(photo.URI))
	}
	return s.PlayURI(ctx, s.resolveURI(photo), mimeType)
}

// PlayURI hands uri to the system player. An empty mimeType means video/*.
func (s *Selector) PlayURI(ctx context.Context, uri, mimeType string) (err error) {
	ctx, span := s.tracer.Start(ctx, "selector.play", trace.WithAttributes(
		attribute.String("play.uri", uri),
	))
	defer func() { endSpan(span, err) }()

	if s.viewer == nil {
		return fmt.Errorf("playback needs a viewer")
	}
	if uri == "" {
		return fmt.Errorf("uri is required")
	}
	if mimeType == "" {
		mimeType = defaultVideoMime
	}
	return s.viewer.View(ctx, uri, mimeType)
}

// resolveURI keeps remote and already addressed items as they are and turns
// bare local paths into content URIs, or file URIs without a provider.
func (s *Selector) resolveURI(photo core.Photo) string {
	if photo.IsRemote() || strings.Contains(photo.URI, "://") {
		return photo.URI
	}
	path := photo.Path
	if path == "" {
		path = photo.URI
	}
	if path == "" {
		return ""
	}
	if provider := s.optionalFileProvider(); provider != "" {
		return ContentURI(provider, path)
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		abs = path
	}
	return (&url.URL{Scheme: "file", Path: filepath.ToSlash(abs)}).String()
}

// ContentURI addresses a local file through the file provider authority.
func ContentURI(authority, path string) string {
	abs, err := filepath.Abs(path)
	if err != nil {
		abs = path
	}
	return (&url.URL{Scheme: "content", Host: authority, Path: "/files" + filepath.ToSlash(abs)}).String()
}

func uriPath(uri string) string {
	u, err := url.Parse(uri)
	if err != nil {
		return uri
	}
	return u.Path
}

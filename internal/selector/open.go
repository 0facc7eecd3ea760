package selector

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/bakkerme/photoselector/internal/core"
	"github.com/bakkerme/photoselector/internal/lifecycle"
	"github.com/bakkerme/photoselector/internal/selection"
)

// Request configures one opening of the selector page.
type Request struct {
	// MaxCount caps how many items can be checked. Zero means the
	// selector default.
	MaxCount int
	// Session scopes deduplication. Openings that pass the same session
	// see each other's confirmed selection; selection.Disabled opts out.
	Session selection.SessionID
}

// OpenPhotoSelector opens a page offering only photos.
func (s *Selector) OpenPhotoSelector(ctx context.Context, owner lifecycle.Owner, req Request) ([]core.Photo, error) {
	return s.open(ctx, owner, core.AlbumPhoto, req)
}

// OpenVideoSelector opens a page offering only videos.
func (s *Selector) OpenVideoSelector(ctx context.Context, owner lifecycle.Owner, req Request) ([]core.Photo, error) {
	return s.open(ctx, owner, core.AlbumVideo, req)
}

// OpenPictureSelector opens a page offering photos and videos.
func (s *Selector) OpenPictureSelector(ctx context.Context, owner lifecycle.Owner, req Request) ([]core.Photo, error) {
	return s.open(ctx, owner, core.AlbumPhotoVideo, req)
}

// open binds the session record to owner, so destroying the owner forgets
// the selection. A nil owner keeps the record for the registry's lifetime.
func (s *Selector) open(ctx context.Context, owner lifecycle.Owner, albumType core.AlbumType, req Request) (result []core.Photo, err error) {
	ctx, span := s.tracer.Start(ctx, "selector.open", trace.WithAttributes(
		attribute.String("album.type", albumType.String()),
		attribute.Int("session.id", int(req.Session)),
	))
	defer func() { endSpan(span, err) }()

	if s.gallery == nil || s.screen == nil {
		return nil, fmt.Errorf("selector needs a gallery and a screen")
	}
	ctx = core.WithSession(ctx, s.logger, int(req.Session))
	logger := core.LoggerFromContext(ctx, s.logger)

	maxCount := req.MaxCount
	if maxCount <= 0 {
		maxCount = s.maxCount
	}

	handle := s.handleFor(owner, req.Session)

	items, err := s.gallery.Items(ctx, albumType)
	if err != nil {
		return nil, fmt.Errorf("list gallery: %w", err)
	}
	page := newPage(albumType, maxCount, handle, items, s.albumNames())
	logger.Debug("selector page opened",
		"album_type", albumType.String(),
		"count", len(items),
		"preselected", len(page.Selected()),
	)

	if err := s.screen.ShowAlbum(ctx, page); err != nil {
		page.Cancel()
		return nil, fmt.Errorf("show selector page: %w", err)
	}
	// a screen that returns without finishing the page counts as backing out
	page.Cancel()

	result, ok := page.Result()
	if !ok {
		logger.Debug("selector page canceled")
		return nil, ErrCanceled
	}
	span.SetAttributes(attribute.Int("selection.count", len(result)))
	logger.Info("selection confirmed", "album_type", albumType.String(), "count", len(result))
	return result, nil
}

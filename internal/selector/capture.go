package selector

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/bakkerme/photoselector/internal/core"
	"github.com/bakkerme/photoselector/internal/platform"
)

// TakePhoto launches the camera and returns the path of the captured photo.
// An empty target uses TempImageFileName under the temp dir.
func (s *Selector) TakePhoto(ctx context.Context, target string) (string, error) {
	return s.capture(ctx, platform.ActionImageCapture, target, TempImageFileName, platform.PermissionCamera)
}

// TakeVideo is TakePhoto for video; it also needs the microphone.
func (s *Selector) TakeVideo(ctx context.Context, target string) (string, error) {
	return s.capture(ctx, platform.ActionVideoCapture, target, TempVideoFileName, platform.PermissionCamera, platform.PermissionRecordAudio)
}

func (s *Selector) capture(ctx context.Context, action platform.CaptureAction, target, defaultName string, perms ...platform.Permission) (path string, err error) {
	ctx, span := s.tracer.Start(ctx, "selector.capture", trace.WithAttributes(
		attribute.String("capture.action", string(action)),
	))
	defer func() { endSpan(span, err) }()
	logger := core.LoggerFromContext(ctx, s.logger)

	if s.permissions == nil || s.camera == nil {
		return "", fmt.Errorf("capture needs a permission requester and a camera")
	}
	granted, err := s.permissions.Request(ctx, perms...)
	if err != nil {
		return "", fmt.Errorf("request permissions: %w", err)
	}
	if !granted {
		logger.Info("capture permission denied", "action", action)
		return "", ErrPermissionDenied
	}

	if target == "" {
		target = filepath.Join(s.tempDir, defaultName)
	}
	if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
		return "", fmt.Errorf("create capture dir: %w", err)
	}
	if err := os.Remove(target); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return "", fmt.Errorf("remove previous capture: %w", err)
	}

	uri := ContentURI(s.requireFileProvider(), target)
	span.SetAttributes(attribute.String("capture.uri", uri))
	code, err := s.camera.Capture(ctx, platform.CaptureRequest{
		Action:     action,
		Output:     uri,
		Target:     target,
		GrantRead:  true,
		GrantWrite: true,
	})
	if err != nil {
		return "", fmt.Errorf("launch camera: %w", err)
	}
	if code != platform.ResultOK {
		return "", ErrCanceled
	}
	logger.Info("capture finished", "action", action, "path", target)
	return target, nil
}

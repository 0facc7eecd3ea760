// Package platform declares what the selector needs from its host: the
// permission prompt, the camera, and a system viewer for playback.
package platform

import "context"

type Permission string

const (
	PermissionCamera      Permission = "camera"
	PermissionRecordAudio Permission = "record_audio"
	PermissionReadMedia   Permission = "read_media"
)

// PermissionRequester asks the user for permissions, blocking until they
// answer. It reports true only when every permission was granted.
type PermissionRequester interface {
	Request(ctx context.Context, perms ...Permission) (bool, error)
}

type CaptureAction string

const (
	ActionImageCapture CaptureAction = "image_capture"
	ActionVideoCapture CaptureAction = "video_capture"
)

// ResultCode is what a launched host screen reports when it finishes.
type ResultCode int

const (
	ResultCanceled ResultCode = 0
	ResultOK       ResultCode = -1
)

type CaptureRequest struct {
	Action CaptureAction
	// Output is the URI the camera writes to.
	Output string
	// Target is the local file behind Output.
	Target     string
	GrantRead  bool
	GrantWrite bool
}

type Camera interface {
	Capture(ctx context.Context, req CaptureRequest) (ResultCode, error)
}

// Viewer hands a URI to the system application registered for mimeType.
type Viewer interface {
	View(ctx context.Context, uri, mimeType string) error
}

package mock

import (
	"context"
	"os"
	"sync"

	"github.com/bakkerme/photoselector/internal/platform"
)

type Permissions struct {
	Denied    map[platform.Permission]bool
	Err       error
	mu        sync.Mutex
	Requested [][]platform.Permission
}

func (p *Permissions) Request(ctx context.Context, perms ...platform.Permission) (bool, error) {
	_ = ctx
	p.mu.Lock()
	p.Requested = append(p.Requested, append([]platform.Permission(nil), perms...))
	p.mu.Unlock()
	if p.Err != nil {
		return false, p.Err
	}
	for _, perm := range perms {
		if p.Denied[perm] {
			return false, nil
		}
	}
	return true, nil
}

// Camera records capture requests. When Result is ResultOK and Content is
// set, it writes Content to the request target like a real camera would.
type Camera struct {
	Result   platform.ResultCode
	Content  []byte
	Err      error
	mu       sync.Mutex
	Requests []platform.CaptureRequest
}

func (c *Camera) Capture(ctx context.Context, req platform.CaptureRequest) (platform.ResultCode, error) {
	_ = ctx
	c.mu.Lock()
	c.Requests = append(c.Requests, req)
	c.mu.Unlock()
	if c.Err != nil {
		return platform.ResultCanceled, c.Err
	}
	if c.Result == platform.ResultOK && c.Content != nil {
		if err := os.WriteFile(req.Target, c.Content, 0o644); err != nil {
			return platform.ResultCanceled, err
		}
	}
	return c.Result, nil
}

type ViewCall struct {
	URI      string
	MimeType string
}

type Viewer struct {
	Err   error
	mu    sync.Mutex
	Calls []ViewCall
}

func (v *Viewer) View(ctx context.Context, uri, mimeType string) error {
	_ = ctx
	v.mu.Lock()
	v.Calls = append(v.Calls, ViewCall{URI: uri, MimeType: mimeType})
	v.mu.Unlock()
	return v.Err
}

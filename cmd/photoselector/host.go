package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/bakkerme/photoselector/internal/platform"
	"github.com/bakkerme/photoselector/internal/terminal"
)

// promptPermissions asks once per request on the terminal.
type promptPermissions struct {
	screen *terminal.Screen
}

func (p promptPermissions) Request(ctx context.Context, perms ...platform.Permission) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}
	names := make([]string, 0, len(perms))
	for _, perm := range perms {
		names = append(names, string(perm))
	}
	answer, ok := p.screen.Prompt(fmt.Sprintf("allow %s? [y/N] ", strings.Join(names, ", ")))
	if !ok {
		return false, nil
	}
	switch strings.ToLower(answer) {
	case "y", "yes":
		return true, nil
	default:
		return false, nil
	}
}

// promptCamera stands in for a camera app: the user names an existing file
// and it is copied to the capture target. An empty answer cancels.
type promptCamera struct {
	screen *terminal.Screen
}

func (c promptCamera) Capture(ctx context.Context, req platform.CaptureRequest) (platform.ResultCode, error) {
	if err := ctx.Err(); err != nil {
		return platform.ResultCanceled, err
	}
	c.screen.Printf("%s -> %s\n", req.Action, req.Output)
	source, ok := c.screen.Prompt("file to capture (empty cancels)> ")
	if !ok || source == "" {
		return platform.ResultCanceled, nil
	}
	if err := copyFile(source, req.Target); err != nil {
		// a bad path at the prompt behaves like backing out of the camera
		c.screen.Printf("capture failed: %v\n", err)
		return platform.ResultCanceled, nil
	}
	return platform.ResultOK, nil
}

func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()
	out, err := os.Create(dst)
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		return err
	}
	return out.Close()
}

// printViewer reports what would be handed to the system viewer.
type printViewer struct {
	screen *terminal.Screen
}

func (v printViewer) View(ctx context.Context, uri, mimeType string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	v.screen.Printf("view %s (%s)\n", uri, mimeType)
	return nil
}

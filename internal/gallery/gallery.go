package gallery

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/bakkerme/photoselector/internal/core"
)

// Gallery is the source of selectable media.
type Gallery interface {
	Items(ctx context.Context, albumType core.AlbumType) ([]core.Photo, error)
	Get(ctx context.Context, id core.ItemID) (core.Photo, bool, error)
}

// FSGallery serves photos and videos found under a set of directories.
// Items are listed newest first; Refresh rescans and swaps the snapshot.
type FSGallery struct {
	logger *slog.Logger
	roots  []string
	index  *Index
	filter *Filter

	mu    sync.RWMutex
	items []core.Photo
	byID  map[core.ItemID]int
}

type FSOptions struct {
	Logger *slog.Logger
	Roots  []string
	Index  *Index
	Filter *Filter
}

func NewFSGallery(opts FSOptions) (*FSGallery, error) {
	if len(opts.Roots) == 0 {
		return nil, fmt.Errorf("at least one gallery root is required")
	}
	if opts.Index == nil {
		return nil, fmt.Errorf("gallery index is required")
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &FSGallery{
		logger: logger,
		roots:  append([]string(nil), opts.Roots...),
		index:  opts.Index,
		filter: opts.Filter,
		byID:   map[core.ItemID]int{},
	}, nil
}

// Refresh rescans every root and forgets index rows for files that are gone.
func (g *FSGallery) Refresh(ctx context.Context) error {
	started := time.Now()
	items := []core.Photo{}
	for _, root := range g.roots {
		found, err := g.scan(ctx, root)
		if err != nil {
			return err
		}
		items = append(items, found...)
	}
	sort.SliceStable(items, func(i, j int) bool {
		if items[i].ModifiedAt.Equal(items[j].ModifiedAt) {
			return items[i].Path < items[j].Path
		}
		return items[i].ModifiedAt.After(items[j].ModifiedAt)
	})

	keep := make([]core.ItemID, 0, len(items))
	byID := make(map[core.ItemID]int, len(items))
	visible := items[:0]
	for _, item := range items {
		keep = append(keep, item.ID)
		ok, err := g.filter.Match(item)
		if err != nil {
			g.logger.Warn("gallery filter failed", "path", item.Path, "error", err)
			continue
		}
		if !ok {
			continue
		}
		byID[item.ID] = len(visible)
		visible = append(visible, item)
	}
	pruned, err := g.index.Prune(ctx, keep)
	if err != nil {
		return fmt.Errorf("prune gallery index: %w", err)
	}

	g.mu.Lock()
	g.items = visible
	g.byID = byID
	g.mu.Unlock()

	g.logger.Info("gallery refreshed",
		"count", len(visible),
		"pruned", pruned,
		"duration", time.Since(started).String(),
	)
	return nil
}

func (g *FSGallery) Items(ctx context.Context, albumType core.AlbumType) ([]core.Photo, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	g.mu.RLock()
	defer g.mu.RUnlock()
	out := make([]core.Photo, 0, len(g.items))
	for _, item := range g.items {
		if albumType.Accepts(item.Type) {
			out = append(out, item)
		}
	}
	return out, nil
}

func (g *FSGallery) Get(ctx context.Context, id core.ItemID) (core.Photo, bool, error) {
	if err := ctx.Err(); err != nil {
		return core.Photo{}, false, err
	}
	g.mu.RLock()
	defer g.mu.RUnlock()
	i, ok := g.byID[id]
	if !ok {
		return core.Photo{}, false, nil
	}
	return g.items[i], true, nil
}

func (g *FSGallery) scan(ctx context.Context, root string) ([]core.Photo, error) {
	root, err := filepath.Abs(root)
	if err != nil {
		return nil, err
	}
	items := []core.Photo{}
	err = filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			// unreadable subtrees are skipped, a missing root is not
			if path == root {
				return err
			}
			g.logger.Warn("gallery scan skipped path", "path", path, "error", err)
			return nil
		}
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		if strings.HasPrefix(d.Name(), ".") && path != root {
			if d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}
		if d.IsDir() {
			return nil
		}
		mimeType := core.MimeForPath(path)
		mediaType := core.MediaTypeForMime(mimeType)
		if mediaType == core.MediaTypeUnknown {
			return nil
		}
		info, err := d.Info()
		if err != nil {
			return nil
		}
		id, err := g.index.Resolve(ctx, path)
		if err != nil {
			return fmt.Errorf("index %s: %w", path, err)
		}
		items = append(items, core.Photo{
			ID:         id,
			URI:        string(id),
			Path:       path,
			Mime:       mimeType,
			Type:       mediaType,
			Size:       info.Size(),
			Album:      filepath.Base(filepath.Dir(path)),
			ModifiedAt: info.ModTime().UTC(),
		})
		return nil
	})
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("gallery root %s does not exist", root)
		}
		return nil, err
	}
	return items, nil
}

package gallery

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/bakkerme/photoselector/internal/core"
)

func writeFile(t *testing.T, path string, size int, modified time.Time) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir failed: %v", err)
	}
	if err := os.WriteFile(path, make([]byte, size), 0o644); err != nil {
		t.Fatalf("write failed: %v", err)
	}
	if err := os.Chtimes(path, modified, modified); err != nil {
		t.Fatalf("chtimes failed: %v", err)
	}
}

func newTestIndex(t *testing.T, dir string) *Index {
	t.Helper()
	index, err := NewSQLiteIndex(filepath.Join(dir, "index.db"), "", "test.provider")
	if err != nil {
		t.Fatalf("failed to init sqlite index: %v", err)
	}
	t.Cleanup(func() { _ = index.Close() })
	return index
}

func TestIndexKeepsIDsStableAcrossReopen(t *testing.T) {
	dir := t.TempDir()
	dbPath := filepath.Join(dir, "nested", "index.db")

	index, err := NewSQLiteIndex(dbPath, "", "test.provider")
	if err != nil {
		t.Fatalf("failed to init sqlite index: %v", err)
	}
	first, err := index.Resolve(context.Background(), "/photos/a.jpg")
	if err != nil {
		t.Fatalf("resolve failed: %v", err)
	}
	again, err := index.Resolve(context.Background(), "/photos/a.jpg")
	if err != nil {
		t.Fatalf("resolve failed: %v", err)
	}
	if first != again {
		t.Fatalf("expected same id for same path, got %q and %q", first, again)
	}
	if !strings.HasPrefix(string(first), "content://test.provider/media/") {
		t.Fatalf("unexpected id format %q", first)
	}
	_ = index.Close()

	reopened, err := NewSQLiteIndex(dbPath, "", "test.provider")
	if err != nil {
		t.Fatalf("failed to reopen sqlite index: %v", err)
	}
	t.Cleanup(func() { _ = reopened.Close() })
	afterRestart, err := reopened.Resolve(context.Background(), "/photos/a.jpg")
	if err != nil {
		t.Fatalf("resolve failed: %v", err)
	}
	if afterRestart != first {
		t.Fatalf("expected id to survive restart, got %q want %q", afterRestart, first)
	}
	path, ok, err := reopened.Path(context.Background(), first)
	if err != nil || !ok || path != "/photos/a.jpg" {
		t.Fatalf("expected path lookup to succeed, got %q ok=%v err=%v", path, ok, err)
	}
}

func TestIndexRejectsBadTableName(t *testing.T) {
	if _, err := NewSQLiteIndex(filepath.Join(t.TempDir(), "x.db"), "bad-name;", ""); err == nil {
		t.Fatalf("expected invalid table name to be rejected")
	}
}

func TestIndexPrune(t *testing.T) {
	index := newTestIndex(t, t.TempDir())
	ctx := context.Background()
	a, _ := index.Resolve(ctx, "/a.jpg")
	b, _ := index.Resolve(ctx, "/b.jpg")

	pruned, err := index.Prune(ctx, []core.ItemID{a})
	if err != nil {
		t.Fatalf("prune failed: %v", err)
	}
	if pruned != 1 {
		t.Fatalf("expected one pruned row, got %d", pruned)
	}
	if _, ok, _ := index.Path(ctx, b); ok {
		t.Fatalf("expected %q to be pruned", b)
	}
	if _, ok, _ := index.Path(ctx, a); !ok {
		t.Fatalf("expected %q to be kept", a)
	}
}

func TestFSGalleryRefreshListsMediaNewestFirst(t *testing.T) {
	dir := t.TempDir()
	root := filepath.Join(dir, "media")
	now := time.Now().Add(-time.Hour).Truncate(time.Second)
	writeFile(t, filepath.Join(root, "Camera", "old.jpg"), 10, now.Add(-2*time.Minute))
	writeFile(t, filepath.Join(root, "Camera", "new.png"), 20, now)
	writeFile(t, filepath.Join(root, "Movies", "clip.mp4"), 30, now.Add(-time.Minute))
	writeFile(t, filepath.Join(root, "notes.txt"), 5, now)
	writeFile(t, filepath.Join(root, ".hidden", "secret.jpg"), 5, now)

	g, err := NewFSGallery(FSOptions{Roots: []string{root}, Index: newTestIndex(t, dir)})
	if err != nil {
		t.Fatalf("new gallery failed: %v", err)
	}
	if err := g.Refresh(context.Background()); err != nil {
		t.Fatalf("refresh failed: %v", err)
	}

	all, err := g.Items(context.Background(), core.AlbumPhotoVideo)
	if err != nil {
		t.Fatalf("items failed: %v", err)
	}
	if len(all) != 3 {
		t.Fatalf("expected 3 media items, got %d", len(all))
	}
	if filepath.Base(all[0].Path) != "new.png" || filepath.Base(all[2].Path) != "old.jpg" {
		t.Fatalf("expected newest first, got %s ... %s", all[0].Path, all[2].Path)
	}

	videos, _ := g.Items(context.Background(), core.AlbumVideo)
	if len(videos) != 1 || !videos[0].IsVideo() || videos[0].Album != "Movies" {
		t.Fatalf("expected one video in Movies, got %+v", videos)
	}

	got, ok, err := g.Get(context.Background(), all[1].ID)
	if err != nil || !ok || got.Path != all[1].Path {
		t.Fatalf("expected Get to find %s", all[1].Path)
	}
}

func TestFSGalleryAppliesFilter(t *testing.T) {
	dir := t.TempDir()
	root := filepath.Join(dir, "media")
	now := time.Now().Truncate(time.Second)
	writeFile(t, filepath.Join(root, "a.jpg"), 0, now)
	writeFile(t, filepath.Join(root, "b.gif"), 10, now)
	writeFile(t, filepath.Join(root, "c.jpg"), 10, now)

	filter, err := NewFilter(`size > 0 && ext != ".gif"`)
	if err != nil {
		t.Fatalf("filter compile failed: %v", err)
	}
	g, err := NewFSGallery(FSOptions{Roots: []string{root}, Index: newTestIndex(t, dir), Filter: filter})
	if err != nil {
		t.Fatalf("new gallery failed: %v", err)
	}
	if err := g.Refresh(context.Background()); err != nil {
		t.Fatalf("refresh failed: %v", err)
	}
	items, _ := g.Items(context.Background(), core.AlbumPhoto)
	if len(items) != 1 || filepath.Base(items[0].Path) != "c.jpg" {
		t.Fatalf("expected only c.jpg, got %+v", items)
	}
}

func TestFSGalleryMissingRoot(t *testing.T) {
	dir := t.TempDir()
	g, err := NewFSGallery(FSOptions{Roots: []string{filepath.Join(dir, "missing")}, Index: newTestIndex(t, dir)})
	if err != nil {
		t.Fatalf("new gallery failed: %v", err)
	}
	if err := g.Refresh(context.Background()); err == nil {
		t.Fatalf("expected error for missing root")
	}
}

func TestNewFilterRejectsInvalidRule(t *testing.T) {
	if _, err := NewFilter(""); err == nil {
		t.Fatalf("expected empty rule to be rejected")
	}
	if _, err := NewFilter("size +"); err == nil {
		t.Fatalf("expected syntax error")
	}
	if _, err := NewFilter(`size`); err == nil {
		t.Fatalf("expected non-bool rule to be rejected")
	}
}

func TestGroupAlbums(t *testing.T) {
	items := []core.Photo{
		{ID: "1", Album: "WeiXin"},
		{ID: "2", Album: "Camera"},
		{ID: "3", Album: "weixin"},
		{ID: "4", Album: "Trip"},
	}
	albums := GroupAlbums(items, MapNameTransformer{Names: map[string]string{"Trip": "Holiday"}})

	names := []string{}
	for _, a := range albums {
		names = append(names, a.Name)
	}
	want := []string{AllAlbumName, "Camera", "Holiday", "WeChat"}
	if strings.Join(names, ",") != strings.Join(want, ",") {
		t.Fatalf("expected albums %v, got %v", want, names)
	}
	if len(albums[0].Items) != 4 {
		t.Fatalf("expected All album to hold every item")
	}
	if len(albums[3].Items) != 2 {
		t.Fatalf("expected WeChat album to merge both folders, got %d", len(albums[3].Items))
	}
	cover, ok := albums[3].Cover()
	if !ok || cover.ID != "1" {
		t.Fatalf("expected first item to be the cover")
	}
}

func TestAlbumNameTransformerDefaults(t *testing.T) {
	tr := AlbumNameTransformer{}
	if got := tr.Transform(""); got != "Unknown" {
		t.Fatalf("expected Unknown, got %q", got)
	}
	if got := tr.Transform("Screenshots"); got != "Screenshots" {
		t.Fatalf("expected Screenshots, got %q", got)
	}
	if got := tr.Transform("Family"); got != "Family" {
		t.Fatalf("expected unchanged name, got %q", got)
	}
}

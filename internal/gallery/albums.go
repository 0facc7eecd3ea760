package gallery

import (
	"sort"
	"strings"

	"github.com/bakkerme/photoselector/internal/core"
)

// AllAlbumName is the album holding every item on the page.
const AllAlbumName = "All"

type Album struct {
	Name  string
	Items []core.Photo
}

// Cover is the first item of the album, the one shown as its thumbnail.
func (a Album) Cover() (core.Photo, bool) {
	if len(a.Items) == 0 {
		return core.Photo{}, false
	}
	return a.Items[0], true
}

// NameTransformer turns a folder name into the album name shown to users.
type NameTransformer interface {
	Transform(name string) string
}

type NameTransformerFunc func(name string) string

func (f NameTransformerFunc) Transform(name string) string {
	return f(name)
}

// AlbumNameTransformer renames well-known device folders. Embed it and call
// its Transform for names you do not handle yourself.
type AlbumNameTransformer struct{}

var wellKnownAlbums = map[string]string{
	"camera":      "Camera",
	"dcim":        "Camera",
	"100andro":    "Camera",
	"screenshot":  "Screenshots",
	"screenshots": "Screenshots",
	"weixin":      "WeChat",
	"wechat":      "WeChat",
	"download":    "Downloads",
	"downloads":   "Downloads",
	"pictures":    "Pictures",
	"movies":      "Videos",
	"video":       "Videos",
}

func (AlbumNameTransformer) Transform(name string) string {
	name = strings.TrimSpace(name)
	if name == "" {
		return "Unknown"
	}
	if known, ok := wellKnownAlbums[strings.ToLower(name)]; ok {
		return known
	}
	return name
}

// MapNameTransformer applies explicit renames and defers to Next (or the
// default transformer) for everything else.
type MapNameTransformer struct {
	Names map[string]string
	Next  NameTransformer
}

func (m MapNameTransformer) Transform(name string) string {
	if renamed, ok := m.Names[name]; ok && renamed != "" {
		return renamed
	}
	if m.Next != nil {
		return m.Next.Transform(name)
	}
	return AlbumNameTransformer{}.Transform(name)
}

// GroupAlbums returns the "All" album followed by one album per transformed
// folder name, sorted by name. Item order inside each album is preserved.
func GroupAlbums(items []core.Photo, transformer NameTransformer) []Album {
	if transformer == nil {
		transformer = AlbumNameTransformer{}
	}
	all := Album{Name: AllAlbumName, Items: append([]core.Photo(nil), items...)}
	byName := map[string]*Album{}
	names := []string{}
	for _, item := range items {
		name := transformer.Transform(item.Album)
		album, ok := byName[name]
		if !ok {
			album = &Album{Name: name}
			byName[name] = album
			names = append(names, name)
		}
		album.Items = append(album.Items, item)
	}
	sort.Strings(names)
	out := make([]Album, 0, len(names)+1)
	out = append(out, all)
	for _, name := range names {
		out = append(out, *byName[name])
	}
	return out
}

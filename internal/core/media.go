package core

import (
	"fmt"
	"mime"
	"path/filepath"
	"strings"
	"time"
)

// ItemID is a stable reference to a gallery item. It is a content-style
// identifier, never a file path, so it survives files being moved by the host.
type ItemID string

type MediaType uint8

const (
	MediaTypeUnknown MediaType = iota // the zero value is unknown
	MediaTypePhoto
	MediaTypeVideo
)

var ErrUnknownMediaType = fmt.Errorf("unknown media type")

func (m MediaType) String() string {
	switch m {
	case MediaTypePhoto:
		return "photo"
	case MediaTypeVideo:
		return "video"
	default:
		return "<unknown>"
	}
}

func (m MediaType) MarshalText() ([]byte, error) {
	s := m.String()
	if s == "<unknown>" {
		return nil, ErrUnknownMediaType
	}
	return []byte(s), nil
}

func (m *MediaType) UnmarshalText(b []byte) error {
	switch strings.ToLower(string(b)) {
	case "photo":
		*m = MediaTypePhoto
	case "video":
		*m = MediaTypeVideo
	default:
		return ErrUnknownMediaType
	}
	return nil
}

// AlbumType selects which media types a selector page offers.
type AlbumType uint8

const (
	AlbumPhoto AlbumType = iota
	AlbumVideo
	AlbumPhotoVideo
)

func (a AlbumType) String() string {
	switch a {
	case AlbumPhoto:
		return "photo"
	case AlbumVideo:
		return "video"
	case AlbumPhotoVideo:
		return "photo_video"
	default:
		return "<unknown>"
	}
}

// Accepts reports whether items of type m belong on a page of this album type.
func (a AlbumType) Accepts(m MediaType) bool {
	switch a {
	case AlbumPhoto:
		return m == MediaTypePhoto
	case AlbumVideo:
		return m == MediaTypeVideo
	case AlbumPhotoVideo:
		return m == MediaTypePhoto || m == MediaTypeVideo
	default:
		return false
	}
}

// Photo is a single selectable item. Despite the name it may be a video.
type Photo struct {
	ID         ItemID    `json:"id" yaml:"id"`
	URI        string    `json:"uri" yaml:"uri"`
	Path       string    `json:"path,omitempty" yaml:"path,omitempty"`
	Mime       string    `json:"mime" yaml:"mime"`
	Type       MediaType `json:"type" yaml:"type"`
	Size       int64     `json:"size" yaml:"size"`
	Album      string    `json:"album,omitempty" yaml:"album,omitempty"`
	ModifiedAt time.Time `json:"modified_at" yaml:"modified_at"`
}

func (p Photo) IsVideo() bool {
	return p.Type == MediaTypeVideo
}

// IsRemote reports whether the item is addressed by an http(s) URL rather
// than something on the device.
func (p Photo) IsRemote() bool {
	uri := strings.ToLower(p.URI)
	return strings.HasPrefix(uri, "http://") || strings.HasPrefix(uri, "https://")
}

// MimeForPath returns the MIME type implied by the file extension, without
// parameters. Unknown extensions yield "".
func MimeForPath(path string) string {
	ext := strings.ToLower(filepath.Ext(path))
	if ext == "" {
		return ""
	}
	if m, ok := extraMimeTypes[ext]; ok {
		return m
	}
	m := mime.TypeByExtension(ext)
	if m == "" {
		return ""
	}
	if base, _, err := mime.ParseMediaType(m); err == nil {
		return base
	}
	return m
}

// the host's mime tables are frequently missing these
var extraMimeTypes = map[string]string{
	".heic": "image/heic",
	".heif": "image/heif",
	".webp": "image/webp",
	".mp4":  "video/mp4",
	".m4v":  "video/x-m4v",
	".mov":  "video/quicktime",
	".3gp":  "video/3gpp",
	".mkv":  "video/x-matroska",
	".webm": "video/webm",
}

func MediaTypeForMime(mimeType string) MediaType {
	switch {
	case strings.HasPrefix(mimeType, "image/"):
		return MediaTypePhoto
	case strings.HasPrefix(mimeType, "video/"):
		return MediaTypeVideo
	default:
		return MediaTypeUnknown
	}
}

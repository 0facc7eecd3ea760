package config

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/robfig/cron/v3"
	"gopkg.in/yaml.v3"
)

// Document represents the top-level structure of a photoselector.yaml file
type Document struct {
	Selector SelectorConfig `yaml:"selector"`
	Gallery  GalleryConfig  `yaml:"gallery"`
}

// SelectorConfig configures the selector facade
type SelectorConfig struct {
	// FileProvider is the authority used to build content URIs for capture targets.
	FileProvider string `yaml:"file_provider"`
	TempDir      string `yaml:"temp_dir,omitempty"`
	MaxCount     int    `yaml:"max_count,omitempty"`
}

// GalleryConfig configures where media comes from
type GalleryConfig struct {
	Roots []string    `yaml:"roots"`
	Index IndexConfig `yaml:"index,omitempty"`
	// Filter is an expression evaluated per item; false hides the item.
	Filter string `yaml:"filter,omitempty"`
	// Albums renames folders, e.g. {"WeiXin": "WeChat"}.
	Albums  map[string]string `yaml:"albums,omitempty"`
	Refresh *RefreshConfig    `yaml:"refresh,omitempty"`
}

// IndexConfig configures the SQLite table holding stable item ids
type IndexConfig struct {
	DSN       string `yaml:"dsn,omitempty"`
	Table     string `yaml:"table,omitempty"`
	Authority string `yaml:"authority,omitempty"`
}

// RefreshConfig schedules gallery rescans
type RefreshConfig struct {
	Schedule string `yaml:"schedule"`
	Timezone string `yaml:"timezone,omitempty"`
}

const (
	DefaultMaxCount  = 9
	defaultIndexFile = "index.db"
	defaultIndexTbl  = "media_items"
)

// Load reads, defaults and validates the document at path.
func Load(path string) (*Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	doc, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	return doc, nil
}

// Parse decodes a document, rejecting unknown keys, then applies defaults
// and validates it.
func Parse(data []byte) (*Document, error) {
	var doc Document
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&doc); err != nil {
		return nil, fmt.Errorf("parse photoselector document: %w", err)
	}
	doc.ApplyDefaults()
	if err := doc.Validate(); err != nil {
		return nil, err
	}
	return &doc, nil
}

// ApplyDefaults fills optional fields and expands ~ in paths
func (d *Document) ApplyDefaults() {
	if d.Selector.MaxCount <= 0 {
		d.Selector.MaxCount = DefaultMaxCount
	}
	if d.Selector.TempDir == "" {
		d.Selector.TempDir = filepath.Join(os.TempDir(), "photoselector")
	}
	d.Selector.TempDir = ExpandHome(d.Selector.TempDir)

	for i, root := range d.Gallery.Roots {
		d.Gallery.Roots[i] = ExpandHome(strings.TrimSpace(root))
	}
	if d.Gallery.Index.DSN == "" {
		d.Gallery.Index.DSN = filepath.Join("~", ".photoselector", defaultIndexFile)
	}
	d.Gallery.Index.DSN = ExpandHome(d.Gallery.Index.DSN)
	if d.Gallery.Index.Table == "" {
		d.Gallery.Index.Table = defaultIndexTbl
	}
	if d.Gallery.Index.Authority == "" {
		d.Gallery.Index.Authority = d.Selector.FileProvider
	}
}

// Validate performs validation on the document
func (d *Document) Validate() error {
	if len(d.Gallery.Roots) == 0 {
		return fmt.Errorf("gallery: at least one root is required")
	}
	for i, root := range d.Gallery.Roots {
		if root == "" {
			return fmt.Errorf("gallery: root %d is empty", i)
		}
	}
	if d.Selector.MaxCount < 1 {
		return fmt.Errorf("selector: max_count must be >= 1")
	}
	for from, to := range d.Gallery.Albums {
		if strings.TrimSpace(to) == "" {
			return fmt.Errorf("gallery: album %q has an empty name", from)
		}
	}
	if r := d.Gallery.Refresh; r != nil {
		if r.Schedule == "" {
			return fmt.Errorf("gallery refresh: schedule is required")
		}
		if _, err := cron.ParseStandard(r.Schedule); err != nil {
			return fmt.Errorf("gallery refresh: invalid schedule: %w", err)
		}
		if r.Timezone != "" {
			if _, err := time.LoadLocation(r.Timezone); err != nil {
				return fmt.Errorf("gallery refresh: invalid timezone: %w", err)
			}
		}
	}
	return nil
}

// ExpandHome replaces a leading ~ with $HOME.
func ExpandHome(path string) string {
	if path == "~" {
		return os.Getenv("HOME")
	}
	if strings.HasPrefix(path, "~/") {
		return filepath.Join(os.Getenv("HOME"), path[2:])
	}
	return path
}

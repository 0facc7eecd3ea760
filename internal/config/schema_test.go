package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestParseAppliesDefaults(t *testing.T) {
	t.Setenv("HOME", "/home/tester")
	data := []byte(`
selector:
  file_provider: com.example.fileprovider
gallery:
  roots: ["~/Pictures", " /media/card "]
`)

	doc, err := Parse(data)
	if err != nil {
		t.Fatalf("parse failed: %v", err)
	}
	if doc.Selector.MaxCount != DefaultMaxCount {
		t.Errorf("expected default max count, got %d", doc.Selector.MaxCount)
	}
	if doc.Gallery.Roots[0] != "/home/tester/Pictures" || doc.Gallery.Roots[1] != "/media/card" {
		t.Errorf("unexpected roots %v", doc.Gallery.Roots)
	}
	if doc.Gallery.Index.DSN != "/home/tester/.photoselector/index.db" {
		t.Errorf("unexpected index dsn %q", doc.Gallery.Index.DSN)
	}
	if doc.Gallery.Index.Table != "media_items" {
		t.Errorf("unexpected index table %q", doc.Gallery.Index.Table)
	}
	if doc.Gallery.Index.Authority != "com.example.fileprovider" {
		t.Errorf("expected authority to follow file provider, got %q", doc.Gallery.Index.Authority)
	}
}

func TestParseFullDocument(t *testing.T) {
	data := []byte(`
selector:
  file_provider: fp
  temp_dir: /tmp/ps
  max_count: 3
gallery:
  roots: [/data]
  index:
    dsn: /var/lib/ps/index.db
    table: items
    authority: media.example
  filter: 'size > 0 && ext != ".gif"'
  albums:
    WeiXin: WeChat
  refresh:
    schedule: "*/10 * * * *"
    timezone: UTC
`)
	doc, err := Parse(data)
	if err != nil {
		t.Fatalf("parse failed: %v", err)
	}
	if doc.Selector.MaxCount != 3 || doc.Selector.TempDir != "/tmp/ps" {
		t.Errorf("unexpected selector config %+v", doc.Selector)
	}
	if doc.Gallery.Index.Authority != "media.example" || doc.Gallery.Index.Table != "items" {
		t.Errorf("unexpected index config %+v", doc.Gallery.Index)
	}
	if doc.Gallery.Albums["WeiXin"] != "WeChat" {
		t.Errorf("expected album override")
	}
	if doc.Gallery.Refresh == nil || doc.Gallery.Refresh.Schedule != "*/10 * * * *" {
		t.Errorf("expected refresh schedule")
	}
}

func TestParseRejectsInvalidDocuments(t *testing.T) {
	cases := map[string]string{
		"no roots":      "selector:\n  file_provider: fp\n",
		"unknown key":   "gallery:\n  roots: [/d]\n  colour: red\n",
		"bad schedule":  "gallery:\n  roots: [/d]\n  refresh:\n    schedule: sometimes\n",
		"no schedule":   "gallery:\n  roots: [/d]\n  refresh:\n    timezone: UTC\n",
		"bad timezone":  "gallery:\n  roots: [/d]\n  refresh:\n    schedule: '@hourly'\n    timezone: Nowhere/Land\n",
		"empty album":   "gallery:\n  roots: [/d]\n  albums:\n    Camera: ''\n",
		"empty root":    "gallery:\n  roots: ['']\n",
		"not a mapping": "- a\n- b\n",
	}
	for name, data := range cases {
		if _, err := Parse([]byte(data)); err == nil {
			t.Errorf("%s: expected error", name)
		}
	}
}

func TestLoadReadsFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "photoselector.yaml")
	if err := os.WriteFile(path, []byte("gallery:\n  roots: [/d]\n"), 0o644); err != nil {
		t.Fatalf("write failed: %v", err)
	}
	doc, err := Load(path)
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if len(doc.Gallery.Roots) != 1 {
		t.Fatalf("expected one root")
	}
	if _, err := Load(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Fatalf("expected error for missing file")
	}
}

func TestExpandHome(t *testing.T) {
	t.Setenv("HOME", "/h")
	cases := map[string]string{
		"~":        "/h",
		"~/a/b":    "/h/a/b",
		"/abs":     "/abs",
		"~other/x": "~other/x",
	}
	for in, want := range cases {
		if got := ExpandHome(in); got != want {
			t.Errorf("ExpandHome(%q)=%q, want %q", in, got, want)
		}
	}
}

func TestLoadEnv(t *testing.T) {
	t.Setenv("PHOTOSELECTOR_CONFIG", "/etc/ps.yaml")
	t.Setenv("SESSION_ID", "-1")
	t.Setenv("OTEL_EXPORTER_OTLP_HEADERS", "a=1, b = 2,bad")
	t.Setenv("OTEL_TRACES_SAMPLE_RATIO", "3")
	t.Setenv("OTEL_EXPORTER_OTLP_ENDPOINT", "https://collector:4317")

	env := LoadEnv()
	if env.ConfigPath != "/etc/ps.yaml" || env.SessionID != -1 {
		t.Fatalf("unexpected env %+v", env)
	}
	if env.OTel.Headers["a"] != "1" || env.OTel.Headers["b"] != "2" || len(env.OTel.Headers) != 2 {
		t.Fatalf("unexpected headers %v", env.OTel.Headers)
	}
	if env.OTel.SampleRatio != 1 {
		t.Fatalf("expected sample ratio clamped to 1, got %v", env.OTel.SampleRatio)
	}
	if env.OTel.Insecure {
		t.Fatalf("expected https endpoint to be secure")
	}
	if !strings.EqualFold(env.OTel.ServiceName, "photoselector") {
		t.Fatalf("unexpected service name %q", env.OTel.ServiceName)
	}
}

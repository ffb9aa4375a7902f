package config_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"reelpress/internal/config"
)

func TestDefaultValidates(t *testing.T) {
	cfg := config.Default()
	cfg.Paths.OutputDir = t.TempDir()
	cfg.Paths.WorkDir = t.TempDir()
	cfg.Paths.LogDir = t.TempDir()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("default config should validate: %v", err)
	}
}

func TestLoadMissingFileUsesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	cfg, resolved, exists, err := config.Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if exists {
		t.Fatal("expected missing config file")
	}
	if resolved != path {
		t.Fatalf("resolved path %q, want %q", resolved, path)
	}
	if cfg.Video.FrameRate != 24 {
		t.Fatalf("frame rate %d, want default 24", cfg.Video.FrameRate)
	}
	if cfg.Encoding.Threads != 4 {
		t.Fatalf("threads %d, want default 4", cfg.Encoding.Threads)
	}
}

func TestLoadParsesAndNormalizes(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")
	content := `
[package]
content_kind = "Trailer"

[video]
frame_rate = 25
reel_seconds = 600

[subtitles]
language = "EN-us"
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, _, exists, err := config.Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if !exists {
		t.Fatal("expected config file to be found")
	}
	if cfg.Package.ContentKind != "trailer" {
		t.Fatalf("content kind %q, want trailer", cfg.Package.ContentKind)
	}
	if cfg.Video.FrameRate != 25 {
		t.Fatalf("frame rate %d, want 25", cfg.Video.FrameRate)
	}
	if cfg.Subtitles.Language != "en-US" {
		t.Fatalf("language %q, want en-US", cfg.Subtitles.Language)
	}
}

func TestLoadRejectsBadFrameRate(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")
	if err := os.WriteFile(path, []byte("[video]\nframe_rate = 23\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	_, _, _, err := config.Load(path)
	if err == nil || !strings.Contains(err.Error(), "frame_rate") {
		t.Fatalf("expected frame rate validation error, got %v", err)
	}
}

func TestMaxFramesInMemory(t *testing.T) {
	cfg := config.Default()
	cfg.Encoding.Threads = 10
	if got := cfg.MaxFramesInMemory(); got != 11 {
		t.Fatalf("MaxFramesInMemory = %d, want 11", got)
	}
	cfg.Encoding.Threads = 1
	if got := cfg.MaxFramesInMemory(); got != 1 {
		t.Fatalf("MaxFramesInMemory = %d, want 1", got)
	}
}

func TestSampleConfigParses(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	if err := config.WriteSample(path); err != nil {
		t.Fatalf("WriteSample failed: %v", err)
	}
	if _, _, _, err := config.Load(path); err != nil {
		t.Fatalf("sample config should load cleanly: %v", err)
	}
}

func TestSignedRequiresKey(t *testing.T) {
	cfg := config.Default()
	cfg.Package.Signed = true
	if err := cfg.Validate(); err == nil {
		t.Fatal("signed config without a key should not validate")
	}
	cfg.Package.SigningKey = "/tmp/key"
	if err := cfg.Validate(); err != nil {
		t.Fatalf("signed config with a key should validate: %v", err)
	}
}

package testsupport

import (
	"path/filepath"
	"testing"

	"reelpress/internal/config"
)

// ConfigOption allows callers to customize the generated test configuration.
type ConfigOption func(*config.Config)

// NewConfig produces a config seeded with unique temp directories per test.
// It defaults common fields and applies any provided options.
func NewConfig(t testing.TB, opts ...ConfigOption) *config.Config {
	t.Helper()

	base := t.TempDir()
	cfg := config.Default()
	cfg.Package.Title = "Test Composition"
	cfg.Paths.OutputDir = filepath.Join(base, "output")
	cfg.Paths.WorkDir = filepath.Join(base, "work")
	cfg.Paths.LogDir = filepath.Join(base, "logs")
	cfg.Video.ReelSeconds = 10
	cfg.Encoding.Threads = 2

	for _, opt := range opts {
		opt(&cfg)
	}

	return &cfg
}

// WithThreeD marks the test package as stereoscopic.
func WithThreeD() ConfigOption {
	return func(c *config.Config) {
		c.Package.ThreeD = true
	}
}

// WithFrameRate overrides the video frame rate on the test config.
func WithFrameRate(rate int) ConfigOption {
	return func(c *config.Config) {
		c.Video.FrameRate = rate
	}
}

// BaseDir returns the root temp directory backing the generated config.
func BaseDir(cfg *config.Config) string {
	return filepath.Dir(cfg.Paths.OutputDir)
}

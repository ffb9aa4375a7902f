package config

import (
	_ "embed"
	"errors"
	"fmt"
	"io/fs"
	"math"
	"os"
	"path/filepath"

	"github.com/pelletier/go-toml/v2"

	"reelpress/internal/dcptime"
)

//go:embed sample_config.toml
var sampleConfig string

// Paths contains directory configuration.
type Paths struct {
	OutputDir string `toml:"output_dir"`
	WorkDir   string `toml:"work_dir"`
	LogDir    string `toml:"log_dir"`
}

// Package contains metadata written into the final manifest.
type Package struct {
	Title       string `toml:"title"`
	Issuer      string `toml:"issuer"`
	Creator     string `toml:"creator"`
	ContentKind string `toml:"content_kind"`
	Signed      bool   `toml:"signed"`
	SigningKey  string `toml:"signing_key"`
	ThreeD      bool   `toml:"three_d"`
}

// Video contains timeline parameters.
type Video struct {
	FrameRate   int `toml:"frame_rate"`
	ReelSeconds int `toml:"reel_seconds"`
}

// Audio contains PCM track parameters.
type Audio struct {
	Channels   int `toml:"channels"`
	SampleRate int `toml:"sample_rate"`
}

// Subtitles contains subtitle track parameters.
type Subtitles struct {
	Language string `toml:"language"`
}

// Encoding contains encoder parallelism settings. The writer's in-memory
// frame ceiling is derived from Threads.
type Encoding struct {
	Threads int `toml:"threads"`
}

// Logging contains configuration for log output.
type Logging struct {
	Format string `toml:"format"`
	Level  string `toml:"level"`
}

// Config encapsulates all configuration values for reelpress.
type Config struct {
	Paths     Paths     `toml:"paths"`
	Package   Package   `toml:"package"`
	Video     Video     `toml:"video"`
	Audio     Audio     `toml:"audio"`
	Subtitles Subtitles `toml:"subtitles"`
	Encoding  Encoding  `toml:"encoding"`
	Logging   Logging   `toml:"logging"`
}

// DefaultConfigPath returns the absolute path to the default configuration
// file location.
func DefaultConfigPath() (string, error) {
	return expandPath("~/.config/reelpress/config.toml")
}

// Load locates, parses, and validates a configuration file. The returned
// config has all path fields expanded and normalized. The boolean reports
// whether a file was actually found at the resolved path.
func Load(path string) (*Config, string, bool, error) {
	cfg := Default()

	resolvedPath, exists, err := resolveConfigPath(path)
	if err != nil {
		return nil, "", false, err
	}

	if exists {
		file, err := os.Open(resolvedPath)
		if err != nil {
			return nil, "", false, fmt.Errorf("open config: %w", err)
		}
		defer file.Close()

		decoder := toml.NewDecoder(file)
		if err := decoder.Decode(&cfg); err != nil {
			return nil, "", false, fmt.Errorf("parse config: %w", err)
		}
	}

	if err := cfg.normalize(); err != nil {
		return nil, "", false, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, "", false, err
	}

	return &cfg, resolvedPath, exists, nil
}

func resolveConfigPath(path string) (string, bool, error) {
	if path != "" {
		expanded, err := expandPath(path)
		if err != nil {
			return "", false, err
		}
		_, err = os.Stat(expanded)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return expanded, false, nil
			}
			return "", false, fmt.Errorf("stat config: %w", err)
		}
		return expanded, true, nil
	}

	defaultPath, err := DefaultConfigPath()
	if err != nil {
		return "", false, err
	}
	if info, err := os.Stat(defaultPath); err == nil && !info.IsDir() {
		return defaultPath, true, nil
	}
	return defaultPath, false, nil
}

// EnsureDirectories creates the configured directories if needed.
func (c *Config) EnsureDirectories() error {
	for _, dir := range []string{c.Paths.OutputDir, c.Paths.WorkDir, c.Paths.LogDir} {
		if dir == "" {
			continue
		}
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create directory %s: %w", dir, err)
		}
	}
	return nil
}

// WriteSample writes the embedded sample configuration to path.
func WriteSample(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create config directory: %w", err)
	}
	return os.WriteFile(path, []byte(sampleConfig), 0o644)
}

// Sample returns the embedded sample configuration text.
func Sample() string {
	return sampleConfig
}

// MaxFramesInMemory derives the writer's in-memory full-frame ceiling from
// the configured encoder parallelism.
func (c *Config) MaxFramesInMemory() int {
	return int(math.Round(float64(c.Encoding.Threads) * 1.1))
}

// ReelLength returns the configured maximum reel duration.
func (c *Config) ReelLength() dcptime.Time {
	return dcptime.FromSeconds(int64(c.Video.ReelSeconds))
}

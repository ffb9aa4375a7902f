package config

import (
	"errors"
	"fmt"
)

var validContentKinds = map[string]struct{}{
	"feature":         {},
	"trailer":         {},
	"test":            {},
	"teaser":          {},
	"rating":          {},
	"advertisement":   {},
	"short":           {},
	"transitional":    {},
	"psa":             {},
	"policy":          {},
	"public-service":  {},
	"special-feature": {},
}

var validFrameRates = map[int]struct{}{
	24: {}, 25: {}, 30: {}, 48: {}, 50: {}, 60: {},
}

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validatePackage(); err != nil {
		return err
	}
	if err := c.validateVideo(); err != nil {
		return err
	}
	if err := c.validateAudio(); err != nil {
		return err
	}
	if err := c.validateEncoding(); err != nil {
		return err
	}
	return c.validateLogging()
}

func (c *Config) validatePackage() error {
	if _, ok := validContentKinds[c.Package.ContentKind]; !ok {
		return fmt.Errorf("package.content_kind: unsupported value %q", c.Package.ContentKind)
	}
	if c.Package.Signed && c.Package.SigningKey == "" {
		return errors.New("package.signing_key is required when package.signed is true")
	}
	return nil
}

func (c *Config) validateVideo() error {
	if _, ok := validFrameRates[c.Video.FrameRate]; !ok {
		return fmt.Errorf("video.frame_rate: %d is not a DCI frame rate", c.Video.FrameRate)
	}
	if c.Video.ReelSeconds < 0 {
		return errors.New("video.reel_seconds must not be negative")
	}
	return nil
}

func (c *Config) validateAudio() error {
	if c.Audio.Channels < 1 || c.Audio.Channels > 16 {
		return fmt.Errorf("audio.channels: %d outside the supported range 1-16", c.Audio.Channels)
	}
	if c.Audio.SampleRate != 48000 && c.Audio.SampleRate != 96000 {
		return fmt.Errorf("audio.sample_rate: %d must be 48000 or 96000", c.Audio.SampleRate)
	}
	return nil
}

func (c *Config) validateEncoding() error {
	if c.Encoding.Threads < 1 {
		return errors.New("encoding.threads must be at least 1")
	}
	return nil
}

func (c *Config) validateLogging() error {
	switch c.Logging.Format {
	case "console", "json":
	default:
		return fmt.Errorf("logging.format: unsupported value %q", c.Logging.Format)
	}
	switch c.Logging.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("logging.level: unsupported value %q", c.Logging.Level)
	}
	return nil
}

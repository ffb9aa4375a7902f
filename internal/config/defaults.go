package config

const (
	defaultOutputDir   = "~/.local/share/reelpress/output"
	defaultWorkDir     = "~/.local/share/reelpress/work"
	defaultLogDir      = "~/.local/share/reelpress/logs"
	defaultContentKind = "feature"
	defaultFrameRate   = 24
	defaultReelSeconds = 1200
	defaultChannels    = 6
	defaultSampleRate  = 48000
	defaultLanguage    = "en"
	defaultThreads     = 4
	defaultLogFormat   = "console"
	defaultLogLevel    = "info"
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			OutputDir: defaultOutputDir,
			WorkDir:   defaultWorkDir,
			LogDir:    defaultLogDir,
		},
		Package: Package{
			ContentKind: defaultContentKind,
		},
		Video: Video{
			FrameRate:   defaultFrameRate,
			ReelSeconds: defaultReelSeconds,
		},
		Audio: Audio{
			Channels:   defaultChannels,
			SampleRate: defaultSampleRate,
		},
		Subtitles: Subtitles{
			Language: defaultLanguage,
		},
		Encoding: Encoding{
			Threads: defaultThreads,
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
	}
}

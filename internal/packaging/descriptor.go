package packaging

import (
	"time"

	"reelpress/internal/media"
)

// AssetRef identifies one asset file within the package.
type AssetRef struct {
	ID     string
	Path   string
	Digest string
	Size   int64
}

// PictureAsset describes a reel's picture track.
type PictureAsset struct {
	AssetRef
	FrameRate    int
	Frames       int64
	Stereoscopic bool
}

// SoundAsset describes a reel's sound track.
type SoundAsset struct {
	AssetRef
	Channels   int
	SampleRate int
	Frames     int64
}

// SubtitleAsset describes a reel's subtitle document.
type SubtitleAsset struct {
	AssetRef
	Language string
}

// ReelDescriptor is everything the manifest needs to know about one sealed
// reel. It is the only reel-writer output exposed outside the engine.
type ReelDescriptor struct {
	ID             string
	DurationFrames int64
	Picture        *PictureAsset
	Sound          *SoundAsset
	Subtitles      *SubtitleAsset
	Referenced     []media.ReferencedAsset
}

// Metadata carries package-level fields for the manifest.
type Metadata struct {
	Title       string
	Issuer      string
	Creator     string
	ContentKind string
	IssueDate   time.Time
}

package media

import (
	"reelpress/internal/dcptime"
)

// Eyes identifies which stereoscopic channel a video frame belongs to.
// The numeric order (Left < Right < Both) is relied on by the writer's
// queue ordering; do not reorder.
type Eyes int

const (
	EyesLeft Eyes = iota
	EyesRight
	EyesBoth
)

func (e Eyes) String() string {
	switch e {
	case EyesLeft:
		return "left"
	case EyesRight:
		return "right"
	case EyesBoth:
		return "both"
	default:
		return "unknown"
	}
}

// AudioBuffer holds interleaved PCM samples for some span of the timeline.
// Samples are 24-bit values stored in int32s.
type AudioBuffer struct {
	Channels    int
	SampleRate  int
	Interleaved []int32
}

// Frames returns the number of audio frames (one sample per channel) held.
func (b AudioBuffer) Frames() int64 {
	if b.Channels <= 0 {
		return 0
	}
	return int64(len(b.Interleaved) / b.Channels)
}

// SubtitleLine is one rendered line of subtitle text.
type SubtitleLine struct {
	Text      string
	VPosition float64
}

// SubtitleBatch is a group of subtitle lines sharing one display interval.
type SubtitleBatch struct {
	From  dcptime.Time
	To    dcptime.Time
	Lines []SubtitleLine
}

// HasText reports whether any line in the batch carries text.
func (b SubtitleBatch) HasText() bool {
	for _, line := range b.Lines {
		if line.Text != "" {
			return true
		}
	}
	return false
}

// Font is a font resource referenced by subtitles.
type Font struct {
	ID   string
	Path string
}

// ReferencedAsset points at a reel asset produced elsewhere that should be
// referenced by the final manifest rather than re-written.
type ReferencedAsset struct {
	ID     string
	Kind   string
	Path   string
	Period dcptime.Period
}

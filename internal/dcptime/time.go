package dcptime

import "fmt"

// TicksPerSecond is the resolution of Time. 96000 divides evenly by all DCI
// frame rates (24, 25, 30, 48, 50, 60) and by 48 kHz audio.
const TicksPerSecond = 96000

// Time is a position or duration on the package timeline, in ticks.
type Time int64

// FromFrames converts a video frame count to a Time at the given frame rate.
func FromFrames(frames int64, frameRate int) Time {
	return Time(frames * TicksPerSecond / int64(frameRate))
}

// FromSeconds converts whole seconds to a Time.
func FromSeconds(seconds int64) Time {
	return Time(seconds * TicksPerSecond)
}

// Frames returns the number of complete video frames in t at the given rate.
func (t Time) Frames(frameRate int) int64 {
	return int64(t) * int64(frameRate) / TicksPerSecond
}

// AudioFrames returns the number of complete audio samples in t at the given
// sample rate.
func (t Time) AudioFrames(sampleRate int) int64 {
	return int64(t) * int64(sampleRate) / TicksPerSecond
}

// Seconds returns t as floating-point seconds.
func (t Time) Seconds() float64 {
	return float64(t) / TicksPerSecond
}

func (t Time) String() string {
	return fmt.Sprintf("%.3fs", t.Seconds())
}

// Period is a half-open time range [From, To).
type Period struct {
	From Time
	To   Time
}

// Contains reports whether t falls inside the period.
func (p Period) Contains(t Time) bool {
	return p.From <= t && t < p.To
}

// Duration returns the length of the period.
func (p Period) Duration() Time {
	return p.To - p.From
}

func (p Period) String() string {
	return fmt.Sprintf("[%s, %s)", p.From, p.To)
}

// Split divides [0, total) into consecutive periods of at most maxLength.
// A non-positive maxLength yields a single period covering everything.
func Split(total, maxLength Time) []Period {
	if total <= 0 {
		return nil
	}
	if maxLength <= 0 || maxLength >= total {
		return []Period{{From: 0, To: total}}
	}
	var periods []Period
	for from := Time(0); from < total; from += maxLength {
		to := from + maxLength
		if to > total {
			to = total
		}
		periods = append(periods, Period{From: from, To: to})
	}
	return periods
}

// FindPeriod returns the index of the period containing t, or -1 if no period
// does. Periods are expected to be ordered, contiguous, and non-overlapping.
func FindPeriod(periods []Period, t Time) int {
	for i, p := range periods {
		if p.Contains(t) {
			return i
		}
	}
	return -1
}

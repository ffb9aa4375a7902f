package writer

import (
	"context"
	"fmt"
	"path/filepath"
	"testing"
	"time"

	"reelpress/internal/dcptime"
	"reelpress/internal/media"
)

func engineOptions(t *testing.T, totalFrames int64, maxInMemory int) Options {
	t.Helper()
	return Options{
		Periods:           []dcptime.Period{{From: 0, To: dcptime.FromFrames(totalFrames, 24)}},
		FrameRate:         24,
		MaxFramesInMemory: maxInMemory,
		OutputDir:         filepath.Join(t.TempDir(), "pkg"),
		WorkDir:           filepath.Join(t.TempDir(), "work"),
		AudioChannels:     2,
		AudioSampleRate:   48000,
		SubtitleLanguage:  "en",
		TotalFrames:       totalFrames,
	}
}

func framePayload(frame int64) []byte {
	return []byte(fmt.Sprintf("payload-%04d", frame))
}

// waitForSpills polls until the consumer has pushed want payloads to disk
// and brought the in-memory count back under the ceiling.
func waitForSpills(t *testing.T, w *Writer, want int64) {
	t.Helper()
	deadline := time.Now().Add(10 * time.Second)
	for time.Now().Before(deadline) {
		w.mu.Lock()
		done := w.pushedToDisk >= want && w.queuedFullInMemory <= w.maxInMemory
		w.mu.Unlock()
		if done {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatalf("consumer did not spill %d payloads in time", want)
}

func TestSpillVictimIsFurthestFromHead(t *testing.T) {
	w, err := New(engineOptions(t, 8, 2))
	if err != nil {
		t.Fatal(err)
	}

	// Frame 0 is never submitted, so nothing is sequence-ready and the
	// queue only shrinks by spilling. Descending submission order leaves
	// the smallest key at the tail of the raw slice, where a naive
	// reverse scan would pick it.
	for _, frame := range []int64{4, 3, 2, 1} {
		if err := w.WriteFrame(framePayload(frame), frame, media.EyesBoth); err != nil {
			t.Fatal(err)
		}
	}
	waitForSpills(t, w, 2)

	w.mu.Lock()
	sortQueue(w.queue)
	var spilled, inMemory []int64
	for _, item := range w.queue {
		if item.spilled {
			spilled = append(spilled, item.Frame)
		} else {
			inMemory = append(inMemory, item.Frame)
		}
	}
	w.mu.Unlock()

	if len(inMemory) != 2 || inMemory[0] != 1 || inMemory[1] != 2 {
		t.Fatalf("in-memory frames = %v, want the two closest to the head [1 2]", inMemory)
	}
	if len(spilled) != 2 || spilled[0] != 3 || spilled[1] != 4 {
		t.Fatalf("spilled frames = %v, want the two furthest from the head [3 4]", spilled)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	result, err := w.Finish(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if len(result.Unsequenced) != 4 {
		t.Fatalf("unsequenced = %d items, want 4", len(result.Unsequenced))
	}
}

func TestProducerBlocksUntilSpillMakesRoom(t *testing.T) {
	w, err := New(engineOptions(t, 16, 1))
	if err != nil {
		t.Fatal(err)
	}

	// Frame 0 is missing, so the consumer can free memory only by
	// spilling. A producer over the ceiling therefore stays blocked until
	// a spill lands; by the time its submission returns, the spill
	// counter must account for everything that no longer fits.
	for n, frame := range []int64{1, 2, 3, 4, 5, 6} {
		if err := w.WriteFrame(framePayload(frame), frame, media.EyesBoth); err != nil {
			t.Fatal(err)
		}
		w.mu.Lock()
		pushed := w.pushedToDisk
		queued := w.queuedFullInMemory
		w.mu.Unlock()
		if want := int64(n+1) - 2; want > 0 && pushed < want {
			t.Fatalf("submission of frame %d returned with %d spills, want at least %d", frame, pushed, want)
		}
		if queued > w.maxInMemory+1 {
			t.Fatalf("%d payloads in memory, ceiling is %d", queued, w.maxInMemory)
		}
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	result, err := w.Finish(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if len(result.Unsequenced) != 6 {
		t.Fatalf("unsequenced = %d items, want 6", len(result.Unsequenced))
	}
}

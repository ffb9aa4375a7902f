package reel_test

import (
	"bytes"
	"errors"
	"testing"

	"reelpress/internal/asset"
	"reelpress/internal/dcptime"
	"reelpress/internal/digest"
	"reelpress/internal/frameinfo"
	"reelpress/internal/logging"
	"reelpress/internal/media"
	"reelpress/internal/reel"
)

func newTestWriter(t *testing.T, threeD bool) *reel.Writer {
	t.Helper()
	cfg := reel.Config{
		Index:            0,
		Period:           dcptime.Period{From: 0, To: dcptime.FromSeconds(10)},
		OutputDir:        t.TempDir(),
		WorkDir:          t.TempDir(),
		FrameRate:        24,
		ThreeD:           threeD,
		AudioChannels:    2,
		AudioSampleRate:  48000,
		SubtitleLanguage: "en",
	}
	w, err := reel.NewWriter(cfg, logging.NewNop())
	if err != nil {
		t.Fatalf("NewWriter failed: %v", err)
	}
	return w
}

func TestWriteFullAdvancesCursor(t *testing.T) {
	w := newTestWriter(t, false)
	if w.LastWrittenFrame() != -1 {
		t.Fatalf("initial cursor %d, want -1", w.LastWrittenFrame())
	}

	if err := w.WriteFull([]byte("frame zero"), 0, media.EyesBoth); err != nil {
		t.Fatal(err)
	}
	if w.LastWrittenFrame() != 0 || w.LastWrittenEyes() != media.EyesBoth {
		t.Fatalf("cursor (%d, %s) after first write", w.LastWrittenFrame(), w.LastWrittenEyes())
	}

	next, err := w.FirstNonexistentFrame()
	if err != nil {
		t.Fatal(err)
	}
	if next != 1 {
		t.Fatalf("FirstNonexistentFrame = %d, want 1", next)
	}
}

func TestFrameInfoRoundTrip(t *testing.T) {
	w := newTestWriter(t, false)
	payload := []byte("payload bytes for frame three")
	if err := w.WriteFull(payload, 3, media.EyesBoth); err != nil {
		t.Fatal(err)
	}

	info, err := w.ReadFrameInfo(3, media.EyesBoth)
	if err != nil {
		t.Fatalf("ReadFrameInfo failed: %v", err)
	}
	if info.Size != int64(len(payload)) {
		t.Fatalf("size %d, want %d", info.Size, len(payload))
	}
	if info.Hash != digest.Bytes(payload) {
		t.Fatal("hash mismatch")
	}

	if _, err := w.ReadFrameInfo(4, media.EyesBoth); !errors.Is(err, frameinfo.ErrUnavailable) {
		t.Fatalf("expected ErrUnavailable for unwritten slot, got %v", err)
	}
}

func TestRepeatCopiesPreviousFrame(t *testing.T) {
	w := newTestWriter(t, false)
	payload := []byte("the frame to be repeated")
	if err := w.WriteFull(payload, 0, media.EyesBoth); err != nil {
		t.Fatal(err)
	}
	if err := w.WriteRepeat(1, media.EyesBoth); err != nil {
		t.Fatalf("WriteRepeat failed: %v", err)
	}
	if err := w.Finish(nil); err != nil {
		t.Fatal(err)
	}

	desc, err := w.Descriptor(nil)
	if err != nil {
		t.Fatal(err)
	}
	info, err := asset.ReadPictureInfo(desc.Picture.Path)
	if err != nil {
		t.Fatal(err)
	}
	if len(info.Index) != 2 {
		t.Fatalf("picture has %d frames, want 2", len(info.Index))
	}
	repeated, err := asset.ReadFrame(desc.Picture.Path, info.Index[1])
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(repeated, payload) {
		t.Fatal("repeated frame differs from original")
	}
}

func TestRepeatWithoutPredecessorFails(t *testing.T) {
	w := newTestWriter(t, false)
	if err := w.WriteRepeat(0, media.EyesBoth); err == nil {
		t.Fatal("expected error repeating with no previous frame")
	}
}

func TestFakeWriteMatchesRecordedSize(t *testing.T) {
	w := newTestWriter(t, false)
	if err := w.WriteFull(make([]byte, 512), 0, media.EyesBoth); err != nil {
		t.Fatal(err)
	}
	if err := w.WriteFake(1, media.EyesBoth, 512); err != nil {
		t.Fatal(err)
	}
	info, err := w.ReadFrameInfo(1, media.EyesBoth)
	if err != nil {
		t.Fatal(err)
	}
	if info.Size != 512 {
		t.Fatalf("fake slot size %d, want 512", info.Size)
	}
}

func TestFinishAndDescriptor(t *testing.T) {
	w := newTestWriter(t, false)
	if err := w.WriteFull([]byte("only frame"), 0, media.EyesBoth); err != nil {
		t.Fatal(err)
	}
	if err := w.WriteAudio(media.AudioBuffer{Channels: 2, SampleRate: 48000, Interleaved: make([]int32, 2*4000)}); err != nil {
		t.Fatal(err)
	}
	w.WriteSubtitles(media.SubtitleBatch{
		From:  dcptime.FromSeconds(1),
		To:    dcptime.FromSeconds(2),
		Lines: []media.SubtitleLine{{Text: "hello"}},
	})

	if err := w.Finish(nil); err != nil {
		t.Fatalf("Finish failed: %v", err)
	}
	if err := w.CalculateDigests(digest.SHA256{}); err != nil {
		t.Fatalf("CalculateDigests failed: %v", err)
	}

	desc, err := w.Descriptor(nil)
	if err != nil {
		t.Fatalf("Descriptor failed: %v", err)
	}
	if desc.Picture == nil || desc.Picture.Digest == "" {
		t.Fatal("picture asset missing digest")
	}
	if desc.Picture.Frames != 1 {
		t.Fatalf("picture frames %d, want 1", desc.Picture.Frames)
	}
	if desc.Sound == nil || desc.Sound.Frames != 4000 {
		t.Fatalf("unexpected sound asset: %+v", desc.Sound)
	}
	if desc.Subtitles == nil || desc.Subtitles.Language != "en" {
		t.Fatalf("unexpected subtitle asset: %+v", desc.Subtitles)
	}
	if desc.DurationFrames != 240 {
		t.Fatalf("duration %d frames, want 240", desc.DurationFrames)
	}
}

func TestDescriptorFiltersReferencedAssets(t *testing.T) {
	w := newTestWriter(t, false)
	if err := w.WriteFull([]byte("frame"), 0, media.EyesBoth); err != nil {
		t.Fatal(err)
	}
	if err := w.Finish(nil); err != nil {
		t.Fatal(err)
	}
	if err := w.CalculateDigests(digest.SHA256{}); err != nil {
		t.Fatal(err)
	}

	inside := media.ReferencedAsset{
		ID:     "in",
		Kind:   "sound",
		Period: dcptime.Period{From: dcptime.FromSeconds(2), To: dcptime.FromSeconds(4)},
	}
	outside := media.ReferencedAsset{
		ID:     "out",
		Kind:   "sound",
		Period: dcptime.Period{From: dcptime.FromSeconds(20), To: dcptime.FromSeconds(30)},
	}

	desc, err := w.Descriptor([]media.ReferencedAsset{inside, outside})
	if err != nil {
		t.Fatal(err)
	}
	if len(desc.Referenced) != 1 || desc.Referenced[0].ID != "in" {
		t.Fatalf("unexpected referenced assets: %+v", desc.Referenced)
	}
}

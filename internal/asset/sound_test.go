package asset_test

import (
	"io"
	"path/filepath"
	"testing"

	"reelpress/internal/asset"
	"reelpress/internal/media"
)

func TestSoundWriteAndHeaderPatch(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sound.wav")
	w, err := asset.NewSoundWriter(path, 2, 48000)
	if err != nil {
		t.Fatalf("NewSoundWriter failed: %v", err)
	}

	buf := media.AudioBuffer{
		Channels:    2,
		SampleRate:  48000,
		Interleaved: make([]int32, 2*480),
	}
	for i := range buf.Interleaved {
		buf.Interleaved[i] = int32(i - 480)
	}

	frames, err := w.WriteBuffer(buf)
	if err != nil {
		t.Fatalf("WriteBuffer failed: %v", err)
	}
	if frames != 480 {
		t.Fatalf("frames written %d, want 480", frames)
	}
	if _, err := w.WriteBuffer(buf); err != nil {
		t.Fatal(err)
	}
	if w.Frames() != 960 {
		t.Fatalf("Frames() = %d, want 960", w.Frames())
	}
	if err := w.Finalize(); err != nil {
		t.Fatalf("Finalize failed: %v", err)
	}

	info, err := asset.ReadSoundInfo(path)
	if err != nil {
		t.Fatalf("ReadSoundInfo failed: %v", err)
	}
	if info.Channels != 2 || info.SampleRate != 48000 {
		t.Fatalf("unexpected header: %+v", info)
	}
	if info.Frames != 960 {
		t.Fatalf("header frames %d, want 960", info.Frames)
	}
}

func TestSoundRejectsChannelMismatch(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sound.wav")
	w, err := asset.NewSoundWriter(path, 6, 48000)
	if err != nil {
		t.Fatal(err)
	}
	_, err = w.WriteBuffer(media.AudioBuffer{Channels: 2, SampleRate: 48000, Interleaved: make([]int32, 4)})
	if err == nil {
		t.Fatal("expected channel mismatch error")
	}
}

func TestSoundReaderRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sound.wav")
	w, err := asset.NewSoundWriter(path, 2, 48000)
	if err != nil {
		t.Fatal(err)
	}

	samples := []int32{0, 1, -1, 8388607, -8388608, 42, -42, 1000}
	if _, err := w.WriteBuffer(media.AudioBuffer{Channels: 2, SampleRate: 48000, Interleaved: samples}); err != nil {
		t.Fatal(err)
	}
	if err := w.Finalize(); err != nil {
		t.Fatal(err)
	}

	r, err := asset.OpenSound(path)
	if err != nil {
		t.Fatal(err)
	}
	defer r.Close()
	if r.Channels() != 2 || r.SampleRate() != 48000 {
		t.Fatalf("stream parameters %d/%d", r.Channels(), r.SampleRate())
	}

	buf, err := r.ReadBuffer(3)
	if err != nil {
		t.Fatal(err)
	}
	if buf.Frames() != 3 {
		t.Fatalf("first read returned %d frames, want 3", buf.Frames())
	}
	rest, err := r.ReadBuffer(100)
	if err != nil {
		t.Fatal(err)
	}
	got := append(buf.Interleaved, rest.Interleaved...)
	for i, want := range samples {
		if got[i] != want {
			t.Fatalf("sample %d: got %d, want %d", i, got[i], want)
		}
	}

	if _, err := r.ReadBuffer(1); err != io.EOF {
		t.Fatalf("expected io.EOF at end of stream, got %v", err)
	}
}

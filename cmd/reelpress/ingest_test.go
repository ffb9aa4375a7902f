package main

import (
	"fmt"
	"path/filepath"
	"testing"

	"reelpress/internal/media"
	"reelpress/internal/testsupport"
)

func TestCollectFramesFlat(t *testing.T) {
	dir := t.TempDir()
	for i := 0; i < 5; i++ {
		testsupport.WriteFile(t, filepath.Join(dir, fmt.Sprintf("frame_%03d.j2c", i)), 64)
	}

	files, total, err := collectFrames(dir, false)
	if err != nil {
		t.Fatal(err)
	}
	if total != 5 || len(files) != 5 {
		t.Fatalf("got %d files over %d frames, want 5/5", len(files), total)
	}
	for i, f := range files {
		if f.frame != int64(i) || f.eyes != media.EyesBoth {
			t.Fatalf("file %d: frame %d eyes %s", i, f.frame, f.eyes)
		}
	}
}

func TestCollectFramesStereoscopic(t *testing.T) {
	dir := t.TempDir()
	testsupport.WriteFile(t, filepath.Join(dir, "frame_000_L.j2c"), 64)
	testsupport.WriteFile(t, filepath.Join(dir, "frame_000_R.j2c"), 64)
	testsupport.WriteFile(t, filepath.Join(dir, "frame_001.j2c"), 64)
	testsupport.WriteFile(t, filepath.Join(dir, "frame_002_L.j2c"), 64)
	testsupport.WriteFile(t, filepath.Join(dir, "frame_002_R.j2c"), 64)

	files, total, err := collectFrames(dir, true)
	if err != nil {
		t.Fatal(err)
	}
	if total != 3 {
		t.Fatalf("total frames = %d, want 3", total)
	}

	want := []struct {
		frame int64
		eyes  media.Eyes
	}{
		{0, media.EyesLeft},
		{0, media.EyesRight},
		{1, media.EyesBoth},
		{2, media.EyesLeft},
		{2, media.EyesRight},
	}
	if len(files) != len(want) {
		t.Fatalf("got %d files, want %d", len(files), len(want))
	}
	for i, w := range want {
		if files[i].frame != w.frame || files[i].eyes != w.eyes {
			t.Fatalf("file %d: frame %d eyes %s, want frame %d eyes %s",
				i, files[i].frame, files[i].eyes, w.frame, w.eyes)
		}
	}
}

func TestCollectFramesSkipsHiddenAndDirs(t *testing.T) {
	dir := t.TempDir()
	testsupport.WriteFile(t, filepath.Join(dir, ".hidden"), 1)
	testsupport.WriteFile(t, filepath.Join(dir, "sub", "nested.j2c"), 1)
	testsupport.WriteFile(t, filepath.Join(dir, "frame.j2c"), 64)

	files, total, err := collectFrames(dir, false)
	if err != nil {
		t.Fatal(err)
	}
	if total != 1 || len(files) != 1 {
		t.Fatalf("got %d files over %d frames, want 1/1", len(files), total)
	}
}

func TestCollectFramesEmptyDir(t *testing.T) {
	if _, _, err := collectFrames(t.TempDir(), false); err == nil {
		t.Fatal("expected error for empty frames directory")
	}
}

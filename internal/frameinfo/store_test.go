package frameinfo_test

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"reelpress/internal/frameinfo"
	"reelpress/internal/media"
	"reelpress/internal/testsupport"
)

func TestPutGetRoundTrip(t *testing.T) {
	store := testsupport.MustOpenStore(t, filepath.Join(t.TempDir(), "info.db"))
	ctx := context.Background()

	want := frameinfo.Info{Offset: 1024, Size: 4096, Hash: "abc123"}
	if err := store.Put(ctx, 7, media.EyesLeft, want); err != nil {
		t.Fatalf("Put failed: %v", err)
	}

	got, err := store.Get(ctx, 7, media.EyesLeft)
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if got != want {
		t.Fatalf("info mismatch: got %+v, want %+v", got, want)
	}
}

func TestGetUnwrittenSlot(t *testing.T) {
	store := testsupport.MustOpenStore(t, filepath.Join(t.TempDir(), "info.db"))

	_, err := store.Get(context.Background(), 0, media.EyesBoth)
	if !errors.Is(err, frameinfo.ErrUnavailable) {
		t.Fatalf("expected ErrUnavailable, got %v", err)
	}
}

func TestEyesAreDistinctSlots(t *testing.T) {
	store := testsupport.MustOpenStore(t, filepath.Join(t.TempDir(), "info.db"))
	ctx := context.Background()

	if err := store.Put(ctx, 3, media.EyesLeft, frameinfo.Info{Offset: 10, Size: 20}); err != nil {
		t.Fatal(err)
	}
	if err := store.Put(ctx, 3, media.EyesRight, frameinfo.Info{Offset: 30, Size: 40}); err != nil {
		t.Fatal(err)
	}

	left, err := store.Get(ctx, 3, media.EyesLeft)
	if err != nil {
		t.Fatal(err)
	}
	right, err := store.Get(ctx, 3, media.EyesRight)
	if err != nil {
		t.Fatal(err)
	}
	if left.Offset != 10 || right.Offset != 30 {
		t.Fatalf("slots not distinct: left %+v right %+v", left, right)
	}
}

func TestFirstNonexistentFrame(t *testing.T) {
	store := testsupport.MustOpenStore(t, filepath.Join(t.TempDir(), "info.db"))
	ctx := context.Background()

	next, err := store.FirstNonexistentFrame(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if next != 0 {
		t.Fatalf("empty store: FirstNonexistentFrame = %d, want 0", next)
	}

	for frame := int64(0); frame < 5; frame++ {
		if err := store.Put(ctx, frame, media.EyesBoth, frameinfo.Info{Offset: frame * 100, Size: 100}); err != nil {
			t.Fatal(err)
		}
	}

	next, err = store.FirstNonexistentFrame(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if next != 5 {
		t.Fatalf("FirstNonexistentFrame = %d, want 5", next)
	}
}

func TestMetadataSurvivesReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "info.db")
	ctx := context.Background()

	store, err := frameinfo.Open(path)
	if err != nil {
		t.Fatal(err)
	}
	if err := store.Put(ctx, 12, media.EyesBoth, frameinfo.Info{Offset: 55, Size: 66, Hash: "h"}); err != nil {
		t.Fatal(err)
	}
	if err := store.Close(); err != nil {
		t.Fatal(err)
	}

	reopened := testsupport.MustOpenStore(t, path)
	got, err := reopened.Get(ctx, 12, media.EyesBoth)
	if err != nil {
		t.Fatalf("Get after reopen failed: %v", err)
	}
	if got.Offset != 55 || got.Size != 66 || got.Hash != "h" {
		t.Fatalf("unexpected info after reopen: %+v", got)
	}
}

package testsupport

import (
	"testing"

	"reelpress/internal/frameinfo"
)

// MustOpenStore opens a frame metadata store for tests and registers
// cleanup.
func MustOpenStore(t testing.TB, path string) *frameinfo.Store {
	t.Helper()

	store, err := frameinfo.Open(path)
	if err != nil {
		t.Fatalf("frameinfo.Open: %v", err)
	}
	t.Cleanup(func() {
		store.Close()
	})
	return store
}

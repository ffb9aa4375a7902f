package writer

import (
	"fmt"
	"os"
	"path/filepath"

	"reelpress/internal/fileutil"
)

// spillStore persists overflow frame payloads on disk, keyed by
// (reel, frame, eye). Files are written via temp-and-rename and removed as
// soon as they are read back.
type spillStore struct {
	dir string
}

func newSpillStore(dir string) (*spillStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create spill directory: %w", err)
	}
	return &spillStore{dir: dir}, nil
}

func (s *spillStore) path(key Key) string {
	return filepath.Join(s.dir, fmt.Sprintf("r%03d_f%08d_%s.j2c", key.Reel, key.Frame, key.Eyes))
}

func (s *spillStore) put(key Key, data []byte) error {
	if err := fileutil.WriteViaTemp(s.path(key), data); err != nil {
		return fmt.Errorf("spill %s: %w", key, err)
	}
	return nil
}

// take reads the payload back and removes the file.
func (s *spillStore) take(key Key) ([]byte, error) {
	path := s.path(key)
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read back spilled %s: %w", key, err)
	}
	_ = os.Remove(path)
	return data, nil
}

// removeAll deletes the store; leftovers are transient by contract.
func (s *spillStore) removeAll() {
	_ = os.RemoveAll(s.dir)
}

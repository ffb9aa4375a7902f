package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"reelpress/internal/media"
)

// frameFile is one encoded frame payload waiting on disk.
type frameFile struct {
	path  string
	frame int64
	eyes  media.Eyes
}

// collectFrames scans dir for frame payloads in name order. In 2D mode every
// file is one frame. In 3D mode files whose stem ends in _L or _R pair into
// the left and right eyes of a single frame; anything else is treated as
// both-eye material to be faked into a pair by the writer.
func collectFrames(dir string, threeD bool) ([]frameFile, int64, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, 0, fmt.Errorf("read frames directory: %w", err)
	}

	var files []frameFile
	frame := int64(-1)
	lastStem := ""
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || strings.HasPrefix(name, ".") {
			continue
		}
		path := filepath.Join(dir, name)

		if !threeD {
			frame++
			files = append(files, frameFile{path: path, frame: frame, eyes: media.EyesBoth})
			continue
		}

		stem := strings.TrimSuffix(name, filepath.Ext(name))
		eyes := media.EyesBoth
		pairStem := stem
		switch {
		case strings.HasSuffix(stem, "_L"):
			eyes = media.EyesLeft
			pairStem = strings.TrimSuffix(stem, "_L")
		case strings.HasSuffix(stem, "_R"):
			eyes = media.EyesRight
			pairStem = strings.TrimSuffix(stem, "_R")
		}
		if pairStem != lastStem || frame < 0 {
			frame++
			lastStem = pairStem
		}
		files = append(files, frameFile{path: path, frame: frame, eyes: eyes})
	}

	if len(files) == 0 {
		return nil, 0, fmt.Errorf("no frame files found in %s", dir)
	}
	return files, frame + 1, nil
}

package asset

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"os"
)

// PictureMagic identifies a reelpress picture track file.
const PictureMagic = "RPIC"

const pictureVersion = 1

// pictureHeader is the fixed-size file header. FrameCount and IndexOffset
// are zero until Finalize patches them.
type pictureHeader struct {
	Magic        [4]byte
	Version      uint16
	FrameRate    uint16
	Stereoscopic uint8
	_            [3]byte
	FrameCount   uint32
	IndexOffset  uint64
}

const pictureHeaderSize = 24

// IndexEntry locates one frame inside the picture track.
type IndexEntry struct {
	Offset int64
	Size   int64
}

// PictureWriter appends encoded frames to a picture track file.
type PictureWriter struct {
	file         *os.File
	path         string
	frameRate    int
	stereoscopic bool
	offset       int64
	index        []IndexEntry
	finalized    bool
}

// NewPictureWriter creates the track file and writes a provisional header.
func NewPictureWriter(path string, frameRate int, stereoscopic bool) (*PictureWriter, error) {
	file, err := os.OpenFile(path, os.O_CREATE|os.O_RDWR|os.O_TRUNC, 0o644)
	if err != nil {
		return nil, fmt.Errorf("create picture track: %w", err)
	}

	w := &PictureWriter{
		file:         file,
		path:         path,
		frameRate:    frameRate,
		stereoscopic: stereoscopic,
		offset:       pictureHeaderSize,
	}
	if err := w.writeHeader(0, 0); err != nil {
		_ = file.Close()
		return nil, err
	}
	return w, nil
}

func (w *PictureWriter) writeHeader(frameCount uint32, indexOffset uint64) error {
	header := pictureHeader{
		Version:     pictureVersion,
		FrameRate:   uint16(w.frameRate),
		FrameCount:  frameCount,
		IndexOffset: indexOffset,
	}
	copy(header.Magic[:], PictureMagic)
	if w.stereoscopic {
		header.Stereoscopic = 1
	}

	if _, err := w.file.Seek(0, io.SeekStart); err != nil {
		return fmt.Errorf("seek picture header: %w", err)
	}
	if err := binary.Write(w.file, binary.LittleEndian, &header); err != nil {
		return fmt.Errorf("write picture header: %w", err)
	}
	return nil
}

// AppendFrame writes one encoded frame payload and returns its location.
func (w *PictureWriter) AppendFrame(data []byte) (IndexEntry, error) {
	if w.finalized {
		return IndexEntry{}, errors.New("picture track already finalized")
	}
	if _, err := w.file.Seek(w.offset, io.SeekStart); err != nil {
		return IndexEntry{}, fmt.Errorf("seek picture track: %w", err)
	}
	if _, err := w.file.Write(data); err != nil {
		return IndexEntry{}, fmt.Errorf("write frame: %w", err)
	}
	entry := IndexEntry{Offset: w.offset, Size: int64(len(data))}
	w.offset += entry.Size
	w.index = append(w.index, entry)
	return entry, nil
}

// AppendFiller writes size zero bytes in place of a frame whose real
// content is known from a previous pass.
func (w *PictureWriter) AppendFiller(size int64) (IndexEntry, error) {
	return w.AppendFrame(make([]byte, size))
}

// DuplicateFrame re-appends the bytes already written at src.
func (w *PictureWriter) DuplicateFrame(src IndexEntry) (IndexEntry, error) {
	data := make([]byte, src.Size)
	if _, err := w.file.ReadAt(data, src.Offset); err != nil {
		return IndexEntry{}, fmt.Errorf("read frame for duplication: %w", err)
	}
	return w.AppendFrame(data)
}

// FrameCount returns the number of frames appended so far.
func (w *PictureWriter) FrameCount() int {
	return len(w.index)
}

// Path returns the track file location.
func (w *PictureWriter) Path() string {
	return w.path
}

// Finalize writes the frame index, patches the header, and closes the file.
func (w *PictureWriter) Finalize() error {
	if w.finalized {
		return nil
	}
	w.finalized = true

	indexOffset := w.offset
	if _, err := w.file.Seek(indexOffset, io.SeekStart); err != nil {
		return fmt.Errorf("seek picture index: %w", err)
	}
	for _, entry := range w.index {
		if err := binary.Write(w.file, binary.LittleEndian, uint64(entry.Offset)); err != nil {
			return fmt.Errorf("write picture index: %w", err)
		}
		if err := binary.Write(w.file, binary.LittleEndian, uint64(entry.Size)); err != nil {
			return fmt.Errorf("write picture index: %w", err)
		}
	}

	if err := w.writeHeader(uint32(len(w.index)), uint64(indexOffset)); err != nil {
		return err
	}
	return w.file.Close()
}

// PictureInfo describes a finalized picture track.
type PictureInfo struct {
	FrameRate    int
	Stereoscopic bool
	Index        []IndexEntry
}

// ReadPictureInfo parses the header and index of a finalized picture track.
func ReadPictureInfo(path string) (PictureInfo, error) {
	file, err := os.Open(path)
	if err != nil {
		return PictureInfo{}, fmt.Errorf("open picture track: %w", err)
	}
	defer file.Close()

	var header pictureHeader
	if err := binary.Read(file, binary.LittleEndian, &header); err != nil {
		return PictureInfo{}, fmt.Errorf("read picture header: %w", err)
	}
	if string(header.Magic[:]) != PictureMagic {
		return PictureInfo{}, fmt.Errorf("not a picture track: magic %q", header.Magic)
	}
	if header.Version != pictureVersion {
		return PictureInfo{}, fmt.Errorf("unsupported picture track version %d", header.Version)
	}
	if header.IndexOffset == 0 {
		return PictureInfo{}, errors.New("picture track not finalized")
	}

	info := PictureInfo{
		FrameRate:    int(header.FrameRate),
		Stereoscopic: header.Stereoscopic != 0,
		Index:        make([]IndexEntry, header.FrameCount),
	}
	if _, err := file.Seek(int64(header.IndexOffset), io.SeekStart); err != nil {
		return PictureInfo{}, fmt.Errorf("seek picture index: %w", err)
	}
	for i := range info.Index {
		var offset, size uint64
		if err := binary.Read(file, binary.LittleEndian, &offset); err != nil {
			return PictureInfo{}, fmt.Errorf("read picture index: %w", err)
		}
		if err := binary.Read(file, binary.LittleEndian, &size); err != nil {
			return PictureInfo{}, fmt.Errorf("read picture index: %w", err)
		}
		info.Index[i] = IndexEntry{Offset: int64(offset), Size: int64(size)}
	}
	return info, nil
}

// ReadFrame returns the payload bytes at entry.
func ReadFrame(path string, entry IndexEntry) ([]byte, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open picture track: %w", err)
	}
	defer file.Close()

	data := make([]byte, entry.Size)
	if _, err := file.ReadAt(data, entry.Offset); err != nil {
		return nil, fmt.Errorf("read frame at %d: %w", entry.Offset, err)
	}
	return data, nil
}

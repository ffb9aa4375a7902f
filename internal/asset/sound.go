package asset

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"os"

	"reelpress/internal/media"
)

const (
	wavHeaderSize    = 44
	bytesPerSample   = 3 // 24-bit PCM
	wavFormatPCM     = 1
	wavBitsPerSample = 24
)

// SoundWriter appends 24-bit PCM audio to a WAV track file.
type SoundWriter struct {
	file       *os.File
	path       string
	channels   int
	sampleRate int
	dataBytes  int64
	frames     int64
	finalized  bool
}

// NewSoundWriter creates the track file and writes a provisional WAV header.
func NewSoundWriter(path string, channels, sampleRate int) (*SoundWriter, error) {
	file, err := os.OpenFile(path, os.O_CREATE|os.O_RDWR|os.O_TRUNC, 0o644)
	if err != nil {
		return nil, fmt.Errorf("create sound track: %w", err)
	}

	w := &SoundWriter{
		file:       file,
		path:       path,
		channels:   channels,
		sampleRate: sampleRate,
	}
	if err := w.writeHeader(); err != nil {
		_ = file.Close()
		return nil, err
	}
	return w, nil
}

func (w *SoundWriter) writeHeader() error {
	blockAlign := w.channels * bytesPerSample
	byteRate := w.sampleRate * blockAlign

	header := make([]byte, wavHeaderSize)
	copy(header[0:4], "RIFF")
	binary.LittleEndian.PutUint32(header[4:8], uint32(36+w.dataBytes))
	copy(header[8:12], "WAVE")
	copy(header[12:16], "fmt ")
	binary.LittleEndian.PutUint32(header[16:20], 16)
	binary.LittleEndian.PutUint16(header[20:22], wavFormatPCM)
	binary.LittleEndian.PutUint16(header[22:24], uint16(w.channels))
	binary.LittleEndian.PutUint32(header[24:28], uint32(w.sampleRate))
	binary.LittleEndian.PutUint32(header[28:32], uint32(byteRate))
	binary.LittleEndian.PutUint16(header[32:34], uint16(blockAlign))
	binary.LittleEndian.PutUint16(header[34:36], wavBitsPerSample)
	copy(header[36:40], "data")
	binary.LittleEndian.PutUint32(header[40:44], uint32(w.dataBytes))

	if _, err := w.file.Seek(0, io.SeekStart); err != nil {
		return fmt.Errorf("seek sound header: %w", err)
	}
	if _, err := w.file.Write(header); err != nil {
		return fmt.Errorf("write sound header: %w", err)
	}
	return nil
}

// WriteBuffer appends the buffer's interleaved samples and returns the
// number of audio frames written.
func (w *SoundWriter) WriteBuffer(buf media.AudioBuffer) (int64, error) {
	if w.finalized {
		return 0, errors.New("sound track already finalized")
	}
	if buf.Channels != w.channels {
		return 0, fmt.Errorf("audio buffer has %d channels, track has %d", buf.Channels, w.channels)
	}

	packed := make([]byte, len(buf.Interleaved)*bytesPerSample)
	for i, sample := range buf.Interleaved {
		packed[i*3] = byte(sample)
		packed[i*3+1] = byte(sample >> 8)
		packed[i*3+2] = byte(sample >> 16)
	}

	if _, err := w.file.Seek(wavHeaderSize+w.dataBytes, io.SeekStart); err != nil {
		return 0, fmt.Errorf("seek sound track: %w", err)
	}
	if _, err := w.file.Write(packed); err != nil {
		return 0, fmt.Errorf("write audio: %w", err)
	}

	frames := buf.Frames()
	w.dataBytes += int64(len(packed))
	w.frames += frames
	return frames, nil
}

// Frames returns the total audio frames written so far.
func (w *SoundWriter) Frames() int64 {
	return w.frames
}

// Path returns the track file location.
func (w *SoundWriter) Path() string {
	return w.path
}

// Finalize patches the WAV size fields and closes the file.
func (w *SoundWriter) Finalize() error {
	if w.finalized {
		return nil
	}
	w.finalized = true

	if err := w.writeHeader(); err != nil {
		return err
	}
	return w.file.Close()
}

// SoundReader streams 24-bit PCM frames out of a WAV file.
type SoundReader struct {
	file       *os.File
	channels   int
	sampleRate int
	remaining  int64
}

// OpenSound opens a WAV file for streaming reads.
func OpenSound(path string) (*SoundReader, error) {
	info, err := ReadSoundInfo(path)
	if err != nil {
		return nil, err
	}
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open sound file: %w", err)
	}
	if _, err := file.Seek(wavHeaderSize, io.SeekStart); err != nil {
		_ = file.Close()
		return nil, fmt.Errorf("seek past sound header: %w", err)
	}
	return &SoundReader{
		file:       file,
		channels:   info.Channels,
		sampleRate: info.SampleRate,
		remaining:  info.Frames,
	}, nil
}

// Channels returns the stream's channel count.
func (r *SoundReader) Channels() int {
	return r.channels
}

// SampleRate returns the stream's sample rate.
func (r *SoundReader) SampleRate() int {
	return r.sampleRate
}

// ReadBuffer returns up to maxFrames of audio. io.EOF is returned once the
// stream is exhausted.
func (r *SoundReader) ReadBuffer(maxFrames int64) (media.AudioBuffer, error) {
	if r.remaining == 0 {
		return media.AudioBuffer{}, io.EOF
	}
	frames := maxFrames
	if frames > r.remaining {
		frames = r.remaining
	}

	packed := make([]byte, frames*int64(r.channels)*bytesPerSample)
	if _, err := io.ReadFull(r.file, packed); err != nil {
		return media.AudioBuffer{}, fmt.Errorf("read audio frames: %w", err)
	}
	r.remaining -= frames

	samples := make([]int32, frames*int64(r.channels))
	for i := range samples {
		// Sign-extend 24-bit little-endian.
		v := int32(packed[i*3]) | int32(packed[i*3+1])<<8 | int32(packed[i*3+2])<<16
		samples[i] = v << 8 >> 8
	}
	return media.AudioBuffer{
		Channels:    r.channels,
		SampleRate:  r.sampleRate,
		Interleaved: samples,
	}, nil
}

// Close releases the underlying file.
func (r *SoundReader) Close() error {
	return r.file.Close()
}

// SoundInfo describes a finalized sound track.
type SoundInfo struct {
	Channels   int
	SampleRate int
	Frames     int64
}

// ReadSoundInfo parses the WAV header of a finalized sound track.
func ReadSoundInfo(path string) (SoundInfo, error) {
	file, err := os.Open(path)
	if err != nil {
		return SoundInfo{}, fmt.Errorf("open sound track: %w", err)
	}
	defer file.Close()

	header := make([]byte, wavHeaderSize)
	if _, err := io.ReadFull(file, header); err != nil {
		return SoundInfo{}, fmt.Errorf("read sound header: %w", err)
	}
	if string(header[0:4]) != "RIFF" || string(header[8:12]) != "WAVE" {
		return SoundInfo{}, errors.New("not a WAV file")
	}

	channels := int(binary.LittleEndian.Uint16(header[22:24]))
	sampleRate := int(binary.LittleEndian.Uint32(header[24:28]))
	dataBytes := int64(binary.LittleEndian.Uint32(header[40:44]))
	if channels == 0 {
		return SoundInfo{}, errors.New("sound track has no channels")
	}

	return SoundInfo{
		Channels:   channels,
		SampleRate: sampleRate,
		Frames:     dataBytes / int64(channels*bytesPerSample),
	}, nil
}

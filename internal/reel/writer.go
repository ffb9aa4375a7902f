package reel

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/google/uuid"

	"reelpress/internal/asset"
	"reelpress/internal/dcptime"
	"reelpress/internal/digest"
	"reelpress/internal/frameinfo"
	"reelpress/internal/logging"
	"reelpress/internal/media"
	"reelpress/internal/packaging"
	"reelpress/internal/subtitles"
)

// Config describes one reel at construction time.
type Config struct {
	Index            int
	Period           dcptime.Period
	OutputDir        string
	WorkDir          string
	FrameRate        int
	ThreeD           bool
	AudioChannels    int
	AudioSampleRate  int
	SubtitleLanguage string
}

// Writer owns the assets of a single reel.
type Writer struct {
	cfg    Config
	logger *slog.Logger

	picture *asset.PictureWriter
	sound   *asset.SoundWriter
	subs    *subtitles.Asset
	info    *frameinfo.Store

	pictureID string
	soundID   string

	// Video cursor; touched only by the engine's consumer goroutine.
	lastWrittenFrame int64
	lastWrittenEyes  media.Eyes

	subtitlePath string
	digests      map[string]string
	finished     bool
}

// NewWriter creates the reel's asset files and opens its metadata store.
func NewWriter(cfg Config, logger *slog.Logger) (*Writer, error) {
	w := &Writer{
		cfg:              cfg,
		logger:           logging.NewComponentLogger(logger, fmt.Sprintf("reel-%02d", cfg.Index+1)),
		pictureID:        uuid.NewString(),
		soundID:          uuid.NewString(),
		subs:             subtitles.NewAsset(cfg.SubtitleLanguage),
		lastWrittenFrame: -1,
		// Starting on Right makes the Left eye of frame 0 the first
		// in-sequence unit of a stereoscopic reel.
		lastWrittenEyes: media.EyesRight,
		digests:         map[string]string{},
	}

	var err error
	w.picture, err = asset.NewPictureWriter(w.picturePath(), cfg.FrameRate, cfg.ThreeD)
	if err != nil {
		return nil, err
	}
	w.sound, err = asset.NewSoundWriter(w.soundPath(), cfg.AudioChannels, cfg.AudioSampleRate)
	if err != nil {
		return nil, err
	}
	w.info, err = frameinfo.Open(filepath.Join(cfg.WorkDir, fmt.Sprintf("frameinfo_reel%02d.db", cfg.Index+1)))
	if err != nil {
		return nil, err
	}
	return w, nil
}

func (w *Writer) picturePath() string {
	return filepath.Join(w.cfg.OutputDir, fmt.Sprintf("picture_reel%02d.rpic", w.cfg.Index+1))
}

func (w *Writer) soundPath() string {
	return filepath.Join(w.cfg.OutputDir, fmt.Sprintf("sound_reel%02d.wav", w.cfg.Index+1))
}

// Period returns the reel's time span on the package timeline.
func (w *Writer) Period() dcptime.Period {
	return w.cfg.Period
}

// LastWrittenFrame returns the reel-local index of the last video frame
// written, or -1 when nothing has been written.
func (w *Writer) LastWrittenFrame() int64 {
	return w.lastWrittenFrame
}

// LastWrittenEyes returns the eye of the last video frame written.
func (w *Writer) LastWrittenEyes() media.Eyes {
	return w.lastWrittenEyes
}

// WriteFull appends an encoded frame payload and records its metadata.
func (w *Writer) WriteFull(data []byte, frame int64, eyes media.Eyes) error {
	entry, err := w.picture.AppendFrame(data)
	if err != nil {
		return err
	}
	info := frameinfo.Info{Offset: entry.Offset, Size: entry.Size, Hash: digest.Bytes(data)}
	if err := w.info.Put(context.Background(), frame, eyes, info); err != nil {
		return err
	}
	w.advanceCursor(frame, eyes)
	return nil
}

// WriteFake appends size bytes of filler for a slot whose real content is
// already known from a previous pass.
func (w *Writer) WriteFake(frame int64, eyes media.Eyes, size int64) error {
	entry, err := w.picture.AppendFiller(size)
	if err != nil {
		return err
	}
	info := frameinfo.Info{Offset: entry.Offset, Size: entry.Size}
	if err := w.info.Put(context.Background(), frame, eyes, info); err != nil {
		return err
	}
	w.advanceCursor(frame, eyes)
	return nil
}

// WriteRepeat duplicates the bytes of the preceding frame (same eye) into
// the given slot.
func (w *Writer) WriteRepeat(frame int64, eyes media.Eyes) error {
	prev, err := w.info.Get(context.Background(), frame-1, eyes)
	if err != nil {
		return fmt.Errorf("repeat of frame %d: %w", frame, err)
	}
	entry, err := w.picture.DuplicateFrame(asset.IndexEntry{Offset: prev.Offset, Size: prev.Size})
	if err != nil {
		return err
	}
	info := frameinfo.Info{Offset: entry.Offset, Size: entry.Size, Hash: prev.Hash}
	if err := w.info.Put(context.Background(), frame, eyes, info); err != nil {
		return err
	}
	w.advanceCursor(frame, eyes)
	return nil
}

func (w *Writer) advanceCursor(frame int64, eyes media.Eyes) {
	w.lastWrittenFrame = frame
	w.lastWrittenEyes = eyes
}

// ReadFrameInfo returns the recorded metadata for a slot. The metadata
// store survives the process, so a resumed build can interrogate slots
// written by an earlier run.
func (w *Writer) ReadFrameInfo(frame int64, eyes media.Eyes) (frameinfo.Info, error) {
	return w.info.Get(context.Background(), frame, eyes)
}

// FirstNonexistentFrame returns one past the highest frame index recorded
// for this reel, across all runs.
func (w *Writer) FirstNonexistentFrame() (int64, error) {
	return w.info.FirstNonexistentFrame(context.Background())
}

// WriteAudio appends an audio buffer to the reel's sound track.
func (w *Writer) WriteAudio(buf media.AudioBuffer) error {
	_, err := w.sound.WriteBuffer(buf)
	return err
}

// TotalAudioFrames returns the audio frames written so far.
func (w *Writer) TotalAudioFrames() int64 {
	return w.sound.Frames()
}

// WriteSubtitles appends a subtitle batch to the reel's subtitle asset.
func (w *Writer) WriteSubtitles(batch media.SubtitleBatch) {
	w.subs.Append(batch)
}

// Finish seals the reel's assets. The subtitle document is only written
// when the reel actually received text; fonts are attached to it here.
func (w *Writer) Finish(fonts []media.Font) error {
	if w.finished {
		return nil
	}
	w.finished = true

	if err := w.picture.Finalize(); err != nil {
		return fmt.Errorf("finalize picture track: %w", err)
	}
	if err := w.sound.Finalize(); err != nil {
		return fmt.Errorf("finalize sound track: %w", err)
	}
	if !w.subs.Empty() {
		w.subtitlePath = filepath.Join(w.cfg.OutputDir, fmt.Sprintf("subtitles_reel%02d.xml", w.cfg.Index+1))
		if err := w.subs.WriteXML(w.subtitlePath, fonts); err != nil {
			return err
		}
	}
	if err := w.info.Close(); err != nil {
		return fmt.Errorf("close frame info store: %w", err)
	}

	w.logger.Info("reel sealed",
		slog.Int("video_frames", w.picture.FrameCount()),
		slog.Int64("audio_frames", w.sound.Frames()),
		slog.Bool("subtitles", w.subtitlePath != ""),
	)
	return nil
}

// CalculateDigests computes and caches content digests for the sealed
// assets. Must be called after Finish.
func (w *Writer) CalculateDigests(svc digest.Service) error {
	paths := map[string]string{
		w.pictureID: w.picturePath(),
		w.soundID:   w.soundPath(),
	}
	if w.subtitlePath != "" {
		paths[w.subs.ID()] = w.subtitlePath
	}
	for id, path := range paths {
		sum, err := svc.FileDigest(path)
		if err != nil {
			return err
		}
		w.digests[id] = sum
	}
	return nil
}

// Descriptor returns the structure the package builder needs. Referenced
// assets are filtered to those whose period starts inside this reel.
func (w *Writer) Descriptor(referenced []media.ReferencedAsset) (packaging.ReelDescriptor, error) {
	desc := packaging.ReelDescriptor{
		ID:             uuid.NewString(),
		DurationFrames: w.cfg.Period.Duration().Frames(w.cfg.FrameRate),
	}

	picSize, err := fileSize(w.picturePath())
	if err != nil {
		return desc, err
	}
	desc.Picture = &packaging.PictureAsset{
		AssetRef: packaging.AssetRef{
			ID:     w.pictureID,
			Path:   w.picturePath(),
			Digest: w.digests[w.pictureID],
			Size:   picSize,
		},
		FrameRate:    w.cfg.FrameRate,
		Frames:       int64(w.picture.FrameCount()),
		Stereoscopic: w.cfg.ThreeD,
	}

	sndSize, err := fileSize(w.soundPath())
	if err != nil {
		return desc, err
	}
	desc.Sound = &packaging.SoundAsset{
		AssetRef: packaging.AssetRef{
			ID:     w.soundID,
			Path:   w.soundPath(),
			Digest: w.digests[w.soundID],
			Size:   sndSize,
		},
		Channels:   w.cfg.AudioChannels,
		SampleRate: w.cfg.AudioSampleRate,
		Frames:     w.sound.Frames(),
	}

	if w.subtitlePath != "" {
		subsSize, err := fileSize(w.subtitlePath)
		if err != nil {
			return desc, err
		}
		desc.Subtitles = &packaging.SubtitleAsset{
			AssetRef: packaging.AssetRef{
				ID:     w.subs.ID(),
				Path:   w.subtitlePath,
				Digest: w.digests[w.subs.ID()],
				Size:   subsSize,
			},
			Language: w.cfg.SubtitleLanguage,
		}
	}

	for _, ref := range referenced {
		if w.cfg.Period.Contains(ref.Period.From) {
			desc.Referenced = append(desc.Referenced, ref)
		}
	}
	return desc, nil
}

func fileSize(path string) (int64, error) {
	info, err := os.Stat(path)
	if err != nil {
		return 0, fmt.Errorf("stat asset: %w", err)
	}
	return info.Size(), nil
}

package writer

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"

	"reelpress/internal/dcptime"
	"reelpress/internal/digest"
	"reelpress/internal/logging"
	"reelpress/internal/media"
	"reelpress/internal/packaging"
	"reelpress/internal/reel"
)

// PackageBuilder assembles the final manifest documents from sealed reels.
type PackageBuilder interface {
	Build(meta packaging.Metadata, reels []packaging.ReelDescriptor, fonts []media.Font) (*packaging.Result, error)
}

// Progress reports how far the write has come. Indeterminate is set when
// the total frame count is unknown.
type Progress struct {
	Fraction      float64
	Indeterminate bool
}

// ProgressFunc receives progress updates from the consumer goroutine.
type ProgressFunc func(Progress)

// Options configures a Writer.
type Options struct {
	// Periods are the reel spans on the package timeline, ordered and
	// contiguous from zero.
	Periods []dcptime.Period

	FrameRate int
	ThreeD    bool

	// MaxFramesInMemory caps the number of full payloads held in the
	// queue before overflow is spilled to disk and producers block.
	MaxFramesInMemory int

	OutputDir string
	WorkDir   string

	AudioChannels    int
	AudioSampleRate  int
	SubtitleLanguage string

	// TotalFrames is the expected number of video frames across all
	// reels; zero makes progress reports indeterminate.
	TotalFrames int64

	Metadata packaging.Metadata

	Logger   *slog.Logger
	Builder  PackageBuilder
	Signer   digest.Signer
	Digests  digest.Service
	Progress ProgressFunc
}

// Result summarizes a completed write.
type Result struct {
	FullWritten   int64
	FakeWritten   int64
	RepeatWritten int64
	PushedToDisk  int64

	// Unsequenced lists queue positions that could never be written
	// because an earlier frame was missing when Finish was called.
	Unsequenced []Key

	Manifest *packaging.Result
}

// Writer multiplexes out-of-order frame submissions into ordered reels.
//
// WriteFrame, FakeWrite, and Repeat may be called concurrently from any
// number of goroutines. WriteAudio and WriteSubtitles expect a single
// caller delivering in timeline order. Finish must be called exactly once
// after all submissions have been made.
type Writer struct {
	opts        Options
	logger      *slog.Logger
	maxInMemory int

	reels []*reel.Writer
	spill *spillStore

	mu        sync.Mutex
	emptyCond *sync.Cond
	fullCond  *sync.Cond

	queue              []queueItem
	queuedFullInMemory int
	finishing          bool
	consumerErr        error
	unsequenced        []Key

	fonts      []media.Font
	referenced []media.ReferencedAsset

	// Counters; written only by the consumer goroutine.
	fullWritten   int64
	fakeWritten   int64
	repeatWritten int64
	pushedToDisk  int64

	// audioReel is the reel currently receiving sound. Advanced only by
	// WriteAudio's single caller.
	audioReel int

	done chan struct{}
}

// New prepares the output directories and reel writers and starts the
// consumer goroutine. Any previous package at OutputDir is removed.
func New(opts Options) (*Writer, error) {
	if len(opts.Periods) == 0 {
		return nil, errors.New("no reel periods declared")
	}
	if opts.FrameRate <= 0 {
		return nil, fmt.Errorf("invalid frame rate %d", opts.FrameRate)
	}
	if opts.Signer != nil && !opts.Signer.Valid() {
		return nil, fmt.Errorf("refusing to start: %w", digest.ErrSigningUnavailable)
	}
	if opts.Logger == nil {
		opts.Logger = logging.NewNop()
	}
	if opts.Digests == nil {
		opts.Digests = digest.SHA256{}
	}

	if err := os.RemoveAll(opts.OutputDir); err != nil {
		return nil, fmt.Errorf("remove previous output: %w", err)
	}
	if err := os.MkdirAll(opts.OutputDir, 0o755); err != nil {
		return nil, fmt.Errorf("create output directory: %w", err)
	}
	if err := os.MkdirAll(opts.WorkDir, 0o755); err != nil {
		return nil, fmt.Errorf("create work directory: %w", err)
	}

	w := &Writer{
		opts:        opts,
		logger:      logging.NewComponentLogger(opts.Logger, "writer"),
		maxInMemory: opts.MaxFramesInMemory,
		done:        make(chan struct{}),
	}
	if w.maxInMemory < 1 {
		w.maxInMemory = 1
	}
	w.emptyCond = sync.NewCond(&w.mu)
	w.fullCond = sync.NewCond(&w.mu)

	var err error
	w.spill, err = newSpillStore(filepath.Join(opts.WorkDir, "spill"))
	if err != nil {
		return nil, err
	}

	for i, period := range opts.Periods {
		r, err := reel.NewWriter(reel.Config{
			Index:            i,
			Period:           period,
			OutputDir:        opts.OutputDir,
			WorkDir:          opts.WorkDir,
			FrameRate:        opts.FrameRate,
			ThreeD:           opts.ThreeD,
			AudioChannels:    opts.AudioChannels,
			AudioSampleRate:  opts.AudioSampleRate,
			SubtitleLanguage: opts.SubtitleLanguage,
		}, opts.Logger)
		if err != nil {
			return nil, fmt.Errorf("create reel %d: %w", i+1, err)
		}
		w.reels = append(w.reels, r)
	}

	go w.run()
	return w, nil
}

// videoReel maps a global frame index to its reel and reel-local frame.
func (w *Writer) videoReel(frame int64) (int, int64, error) {
	t := dcptime.FromFrames(frame, w.opts.FrameRate)
	idx := dcptime.FindPeriod(w.opts.Periods, t)
	if idx < 0 {
		return 0, 0, fmt.Errorf("frame %d: %w", frame, ErrFrameOutOfRange)
	}
	local := frame - w.opts.Periods[idx].From.Frames(w.opts.FrameRate)
	return idx, local, nil
}

// waitForRoom blocks the calling producer while the in-memory payload count
// is over the ceiling. Returns the consumer's error if it has failed.
func (w *Writer) waitForRoom() error {
	for w.queuedFullInMemory > w.maxInMemory && w.consumerErr == nil && !w.finishing {
		w.fullCond.Wait()
	}
	return w.consumerErr
}

// WriteFrame queues an encoded frame payload. In a stereoscopic package a
// frame submitted for both eyes is queued once per eye with the same bytes.
func (w *Writer) WriteFrame(data []byte, frame int64, eyes media.Eyes) error {
	reelIdx, local, err := w.videoReel(frame)
	if err != nil {
		return err
	}

	w.mu.Lock()
	defer w.mu.Unlock()
	if err := w.waitForRoom(); err != nil {
		return err
	}

	item := queueItem{
		Key:  Key{Reel: reelIdx, Frame: local, Eyes: eyes},
		kind: KindFull,
		data: data,
		size: int64(len(data)),
	}
	if w.opts.ThreeD && eyes == media.EyesBoth {
		// 2D material in a 3D package; fake the second eye.
		item.Eyes = media.EyesLeft
		w.queue = append(w.queue, item)
		w.queuedFullInMemory++
		item.Eyes = media.EyesRight
		w.queue = append(w.queue, item)
		w.queuedFullInMemory++
	} else {
		w.queue = append(w.queue, item)
		w.queuedFullInMemory++
	}
	w.emptyCond.Broadcast()
	return nil
}

// CanRepeat reports whether frame can be written as a repeat of its
// predecessor, which requires a predecessor within the same reel.
func (w *Writer) CanRepeat(frame int64) bool {
	_, local, err := w.videoReel(frame)
	return err == nil && local > 0
}

// Repeat queues a duplicate of the frame preceding the given one.
func (w *Writer) Repeat(frame int64, eyes media.Eyes) error {
	reelIdx, local, err := w.videoReel(frame)
	if err != nil {
		return err
	}
	if local == 0 {
		return fmt.Errorf("frame %d: %w", frame, ErrInvalidRepeat)
	}

	w.mu.Lock()
	defer w.mu.Unlock()
	if err := w.waitForRoom(); err != nil {
		return err
	}

	item := queueItem{
		Key:  Key{Reel: reelIdx, Frame: local, Eyes: eyes},
		kind: KindRepeat,
	}
	if w.opts.ThreeD && eyes == media.EyesBoth {
		item.Eyes = media.EyesLeft
		w.queue = append(w.queue, item)
		item.Eyes = media.EyesRight
		w.queue = append(w.queue, item)
	} else {
		w.queue = append(w.queue, item)
	}
	w.emptyCond.Broadcast()
	return nil
}

// CanFakeWrite reports whether frame's content is already known from an
// earlier run, so it can be queued without a payload. A reel's first frame
// can never be fake-written.
func (w *Writer) CanFakeWrite(frame int64) bool {
	reelIdx, local, err := w.videoReel(frame)
	if err != nil || local == 0 {
		return false
	}
	next, err := w.reels[reelIdx].FirstNonexistentFrame()
	return err == nil && local < next
}

// FakeWrite queues filler of the recorded size for a frame written by an
// earlier run.
func (w *Writer) FakeWrite(frame int64, eyes media.Eyes) error {
	if !w.CanFakeWrite(frame) {
		return fmt.Errorf("frame %d: %w", frame, ErrInvalidFakeWrite)
	}
	reelIdx, local, err := w.videoReel(frame)
	if err != nil {
		return err
	}

	var items []queueItem
	if w.opts.ThreeD && eyes == media.EyesBoth {
		for _, eye := range []media.Eyes{media.EyesLeft, media.EyesRight} {
			info, err := w.reels[reelIdx].ReadFrameInfo(local, eye)
			if err != nil {
				return fmt.Errorf("fake write of frame %d (%s): %w", frame, eye, err)
			}
			items = append(items, queueItem{
				Key:  Key{Reel: reelIdx, Frame: local, Eyes: eye},
				kind: KindFake,
				size: info.Size,
			})
		}
	} else {
		info, err := w.reels[reelIdx].ReadFrameInfo(local, eyes)
		if err != nil {
			return fmt.Errorf("fake write of frame %d: %w", frame, err)
		}
		items = append(items, queueItem{
			Key:  Key{Reel: reelIdx, Frame: local, Eyes: eyes},
			kind: KindFake,
			size: info.Size,
		})
	}

	w.mu.Lock()
	defer w.mu.Unlock()
	if err := w.waitForRoom(); err != nil {
		return err
	}
	w.queue = append(w.queue, items...)
	w.emptyCond.Broadcast()
	return nil
}

// WriteAudio appends a buffer to the sound track, splitting it across reel
// boundaries as needed. Buffers must arrive in timeline order from a single
// caller. Audio past the end of the last reel is dropped.
func (w *Writer) WriteAudio(buf media.AudioBuffer) error {
	for buf.Frames() > 0 {
		if w.audioReel >= len(w.reels) {
			w.logger.Warn("dropping audio past the end of the last reel",
				slog.Int64("frames", buf.Frames()))
			return nil
		}
		r := w.reels[w.audioReel]
		capacity := r.Period().Duration().AudioFrames(w.opts.AudioSampleRate) - r.TotalAudioFrames()
		if capacity <= 0 {
			w.audioReel++
			continue
		}
		n := buf.Frames()
		if n > capacity {
			n = capacity
		}
		split := n * int64(buf.Channels)
		part := media.AudioBuffer{
			Channels:    buf.Channels,
			SampleRate:  buf.SampleRate,
			Interleaved: buf.Interleaved[:split],
		}
		if err := r.WriteAudio(part); err != nil {
			return err
		}
		buf.Interleaved = buf.Interleaved[split:]
	}
	return nil
}

// WriteSubtitles routes a batch to the reel containing its start time.
// Batches without any text are dropped.
func (w *Writer) WriteSubtitles(batch media.SubtitleBatch) error {
	if !batch.HasText() {
		return nil
	}
	idx := dcptime.FindPeriod(w.opts.Periods, batch.From)
	if idx < 0 {
		return fmt.Errorf("subtitle batch at %s: %w", batch.From, ErrFrameOutOfRange)
	}
	w.reels[idx].WriteSubtitles(batch)
	return nil
}

// WriteFont registers a font for the subtitle assets. Duplicate IDs are
// ignored.
func (w *Writer) WriteFont(font media.Font) {
	w.mu.Lock()
	defer w.mu.Unlock()
	for _, f := range w.fonts {
		if f.ID == font.ID {
			return
		}
	}
	w.fonts = append(w.fonts, font)
}

// WriteReferencedAsset records an externally produced asset for the
// manifest.
func (w *Writer) WriteReferencedAsset(ref media.ReferencedAsset) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.referenced = append(w.referenced, ref)
}

// headSequencedLocked sorts the queue and reports whether its head is the
// next unit its reel expects. Callers must hold mu.
func (w *Writer) headSequencedLocked() bool {
	if len(w.queue) == 0 {
		return false
	}
	sortQueue(w.queue)
	head := w.queue[0]
	r := w.reels[head.Reel]
	last := r.LastWrittenFrame()
	if !w.opts.ThreeD || head.Eyes == media.EyesBoth {
		return head.Frame == last+1
	}
	lastEyes := r.LastWrittenEyes()
	if head.Frame == last && lastEyes == media.EyesLeft && head.Eyes == media.EyesRight {
		return true
	}
	if head.Frame == last+1 && lastEyes == media.EyesRight && head.Eyes == media.EyesLeft {
		return true
	}
	return false
}

// failLocked records a consumer failure and wakes any blocked producers.
// Callers must hold mu.
func (w *Writer) failLocked(err error) {
	w.consumerErr = err
	w.logger.Error("writer failed", logging.Error(err))
	w.fullCond.Broadcast()
}

func (w *Writer) reportProgress() {
	if w.opts.Progress == nil {
		return
	}
	if w.opts.TotalFrames <= 0 {
		w.opts.Progress(Progress{Indeterminate: true})
		return
	}
	total := w.opts.TotalFrames
	if w.opts.ThreeD {
		total *= 2
	}
	fraction := float64(w.fullWritten+w.fakeWritten+w.repeatWritten) / float64(total)
	if fraction > 1 {
		fraction = 1
	}
	w.opts.Progress(Progress{Fraction: fraction})
}

// run is the consumer goroutine. It drains the queue in strict sequence,
// spilling overflow payloads to disk when the memory ceiling is exceeded.
func (w *Writer) run() {
	defer close(w.done)
	for {
		w.mu.Lock()
		for !(w.finishing || w.queuedFullInMemory > w.maxInMemory || w.headSequencedLocked()) {
			w.emptyCond.Wait()
		}

		if w.finishing && len(w.queue) == 0 {
			w.mu.Unlock()
			return
		}
		if w.finishing && !w.headSequencedLocked() {
			// No more submissions are coming, so the gap at the head
			// will never fill.
			w.logger.Warn("finishing with a left-over queue",
				slog.Int("items", len(w.queue)))
			for _, item := range w.queue {
				w.logger.Warn("left-over",
					slog.String("item", item.Key.String()),
					slog.String("kind", item.kind.String()))
				w.unsequenced = append(w.unsequenced, item.Key)
			}
			w.mu.Unlock()
			return
		}

		if w.headSequencedLocked() {
			item := w.queue[0]
			w.queue = w.queue[1:]
			if item.kind == KindFull && !item.spilled {
				w.queuedFullInMemory--
			}
			w.mu.Unlock()

			if err := w.writeItem(item); err != nil {
				w.mu.Lock()
				w.failLocked(fmt.Errorf("write %s: %w", item.Key, err))
				w.mu.Unlock()
				return
			}
			w.reportProgress()

			w.mu.Lock()
			w.fullCond.Broadcast()
		}

		if !w.spillLocked() {
			return
		}
		w.fullCond.Broadcast()
		w.mu.Unlock()
	}
}

// writeItem commits one unit to its reel. Called without mu held.
func (w *Writer) writeItem(item queueItem) error {
	switch item.kind {
	case KindFull:
		data := item.data
		if item.spilled {
			var err error
			data, err = w.spill.take(item.Key)
			if err != nil {
				return err
			}
		}
		if err := w.reels[item.Reel].WriteFull(data, item.Frame, item.Eyes); err != nil {
			return err
		}
		w.fullWritten++
	case KindFake:
		if err := w.reels[item.Reel].WriteFake(item.Frame, item.Eyes, item.size); err != nil {
			return err
		}
		w.fakeWritten++
	case KindRepeat:
		if err := w.reels[item.Reel].WriteRepeat(item.Frame, item.Eyes); err != nil {
			return err
		}
		w.repeatWritten++
	}
	return nil
}

// spillLocked pushes payloads to disk until the in-memory count is back
// under the ceiling, picking victims furthest from the queue head. Returns
// false if the consumer must stop. Callers hold mu; the lock is released
// around each disk write.
func (w *Writer) spillLocked() bool {
	for w.queuedFullInMemory > w.maxInMemory {
		// Producers append out of order, so sort before scanning; the
		// reverse scan must pick the in-memory payload furthest from
		// the head, and the head itself must stay in memory.
		sortQueue(w.queue)
		victim := -1
		for i := len(w.queue) - 1; i >= 0; i-- {
			if w.queue[i].kind == KindFull && !w.queue[i].spilled {
				victim = i
				break
			}
		}
		if victim < 0 {
			break
		}
		key, data := w.queue[victim].Key, w.queue[victim].data
		w.pushedToDisk++
		w.mu.Unlock()
		w.logger.Debug("queue over memory ceiling; pushing a frame to disk",
			slog.String("item", key.String()))
		err := w.spill.put(key, data)
		w.mu.Lock()
		if err != nil {
			w.failLocked(err)
			w.mu.Unlock()
			return false
		}
		// Producers may have appended while unlocked; find the item
		// again by key.
		for i := range w.queue {
			if w.queue[i].Key == key && w.queue[i].kind == KindFull && !w.queue[i].spilled {
				w.queue[i].spilled = true
				w.queue[i].data = nil
				w.queuedFullInMemory--
				break
			}
		}
	}
	return true
}

// Finish stops the consumer, seals every reel, and builds the package
// manifest. Producers must have stopped submitting before Finish is called.
func (w *Writer) Finish(ctx context.Context) (*Result, error) {
	w.mu.Lock()
	if !w.finishing {
		w.finishing = true
		w.emptyCond.Broadcast()
		w.fullCond.Broadcast()
	}
	w.mu.Unlock()

	select {
	case <-w.done:
	case <-ctx.Done():
		return nil, ctx.Err()
	}

	w.mu.Lock()
	consumerErr := w.consumerErr
	unsequenced := append([]Key(nil), w.unsequenced...)
	fonts := append([]media.Font(nil), w.fonts...)
	referenced := append([]media.ReferencedAsset(nil), w.referenced...)
	w.mu.Unlock()

	w.spill.removeAll()
	if consumerErr != nil {
		return nil, consumerErr
	}

	var descriptors []packaging.ReelDescriptor
	for _, r := range w.reels {
		if err := r.Finish(fonts); err != nil {
			return nil, err
		}
		if err := r.CalculateDigests(w.opts.Digests); err != nil {
			return nil, err
		}
		desc, err := r.Descriptor(referenced)
		if err != nil {
			return nil, err
		}
		descriptors = append(descriptors, desc)
	}

	result := &Result{
		FullWritten:   w.fullWritten,
		FakeWritten:   w.fakeWritten,
		RepeatWritten: w.repeatWritten,
		PushedToDisk:  w.pushedToDisk,
		Unsequenced:   unsequenced,
	}
	if w.opts.Builder != nil {
		manifest, err := w.opts.Builder.Build(w.opts.Metadata, descriptors, fonts)
		if err != nil {
			return nil, err
		}
		result.Manifest = manifest
	}

	w.logger.Info("writer finished",
		slog.Int64("full", result.FullWritten),
		slog.Int64("fake", result.FakeWritten),
		slog.Int64("repeat", result.RepeatWritten),
		slog.Int64("pushed_to_disk", result.PushedToDisk),
	)
	return result, nil
}

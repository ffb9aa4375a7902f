package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"

	"github.com/gofrs/flock"
	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"

	"reelpress/internal/asset"
	"reelpress/internal/config"
	"reelpress/internal/dcptime"
	"reelpress/internal/digest"
	"reelpress/internal/logging"
	"reelpress/internal/media"
	"reelpress/internal/packaging"
	"reelpress/internal/writer"
)

func newBuildCommand(ctx *commandContext) *cobra.Command {
	var audioPath string
	var subtitleLanguage string

	cmd := &cobra.Command{
		Use:   "build <frames-dir>",
		Short: "Assemble a package from a directory of pre-encoded frames",
		Long: `Build reads encoded frame payloads from a directory (one file per frame,
ordered by name; in 3D mode stems ending in _L/_R pair into eyes), multiplexes
them into reels, and writes the package manifest.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			if subtitleLanguage != "" {
				cfg.Subtitles.Language = subtitleLanguage
			}
			return runBuild(cmd, cfg, args[0], audioPath)
		},
	}

	cmd.Flags().StringVarP(&audioPath, "audio", "a", "", "WAV file with the package sound track")
	cmd.Flags().StringVar(&subtitleLanguage, "subtitle-language", "", "Override the configured subtitle language")
	return cmd
}

func runBuild(cmd *cobra.Command, cfg *config.Config, framesDir, audioPath string) error {
	out := cmd.OutOrStdout()

	logger, err := logging.NewFromConfig(cfg)
	if err != nil {
		return err
	}

	lock := flock.New(filepath.Join(cfg.Paths.WorkDir, "build.lock"))
	locked, err := lock.TryLock()
	if err != nil {
		return fmt.Errorf("acquire build lock: %w", err)
	}
	if !locked {
		return errors.New("another build is already running against this work directory")
	}
	defer func() { _ = lock.Unlock() }()

	framesDir, err = config.ExpandPath(framesDir)
	if err != nil {
		return err
	}
	files, totalFrames, err := collectFrames(framesDir, cfg.Package.ThreeD)
	if err != nil {
		return err
	}

	builder := &recordingBuilder{}
	var signer digest.Signer
	if cfg.Package.Signed {
		signer = digest.NewKeySigner(cfg.Package.SigningKey)
	}
	builder.inner = packaging.NewBuilder(cfg.Paths.OutputDir, logger, signer)

	progress := newProgressPrinter(out)

	w, err := writer.New(writer.Options{
		Periods:           dcptime.Split(dcptime.FromFrames(totalFrames, cfg.Video.FrameRate), cfg.ReelLength()),
		FrameRate:         cfg.Video.FrameRate,
		ThreeD:            cfg.Package.ThreeD,
		MaxFramesInMemory: cfg.MaxFramesInMemory(),
		OutputDir:         cfg.Paths.OutputDir,
		WorkDir:           cfg.Paths.WorkDir,
		AudioChannels:     cfg.Audio.Channels,
		AudioSampleRate:   cfg.Audio.SampleRate,
		SubtitleLanguage:  cfg.Subtitles.Language,
		TotalFrames:       totalFrames,
		Metadata:          buildMetadata(cfg),
		Logger:            logger,
		Builder:           builder,
		Signer:            signer,
		Progress:          progress.update,
	})
	if err != nil {
		return err
	}

	if err := submitFrames(w, files, cfg.Encoding.Threads); err != nil {
		return err
	}
	if audioPath != "" {
		if err := submitAudio(w, cfg, audioPath); err != nil {
			return err
		}
	}

	result, err := w.Finish(cmd.Context())
	progress.done()
	if err != nil {
		return err
	}

	for _, key := range result.Unsequenced {
		fmt.Fprintf(out, "warning: %s was never written (missing earlier frame)\n", key)
	}

	fmt.Fprintln(out, renderReelSummary(builder.reels))
	fmt.Fprintf(out, "Package written to %s\n", cfg.Paths.OutputDir)
	if result.Manifest != nil {
		fmt.Fprintf(out, "Composition playlist: %s (signed: %s)\n",
			filepath.Base(result.Manifest.CPLPath), yesNo(result.Manifest.Signed))
	}
	return nil
}

func buildMetadata(cfg *config.Config) packaging.Metadata {
	meta := packaging.Metadata{
		Title:       cfg.Package.Title,
		Issuer:      cfg.Package.Issuer,
		Creator:     cfg.Package.Creator,
		ContentKind: cfg.Package.ContentKind,
	}
	if meta.Title == "" {
		meta.Title = filepath.Base(cfg.Paths.OutputDir)
	}
	if meta.Issuer == "" {
		meta.Issuer = "reelpress " + version
	}
	if meta.Creator == "" {
		meta.Creator = "reelpress " + version
	}
	return meta
}

// submitFrames feeds the writer from a pool of readers, mimicking encode
// workers delivering frames concurrently.
func submitFrames(w *writer.Writer, files []frameFile, workers int) error {
	if workers < 1 {
		workers = 1
	}

	var wg sync.WaitGroup
	var mu sync.Mutex
	var firstErr error

	fail := func(err error) {
		mu.Lock()
		defer mu.Unlock()
		if firstErr == nil {
			firstErr = err
		}
	}

	for stripe := 0; stripe < workers; stripe++ {
		wg.Add(1)
		go func(stripe int) {
			defer wg.Done()
			for i := stripe; i < len(files); i += workers {
				f := files[i]
				data, err := os.ReadFile(f.path)
				if err != nil {
					fail(fmt.Errorf("read frame %s: %w", f.path, err))
					return
				}
				if err := w.WriteFrame(data, f.frame, f.eyes); err != nil {
					fail(fmt.Errorf("submit frame %d: %w", f.frame, err))
					return
				}
			}
		}(stripe)
	}
	wg.Wait()

	mu.Lock()
	defer mu.Unlock()
	return firstErr
}

func submitAudio(w *writer.Writer, cfg *config.Config, path string) error {
	path, err := config.ExpandPath(path)
	if err != nil {
		return err
	}
	reader, err := asset.OpenSound(path)
	if err != nil {
		return err
	}
	defer reader.Close()

	if reader.Channels() != cfg.Audio.Channels {
		return fmt.Errorf("audio file has %d channels, config expects %d", reader.Channels(), cfg.Audio.Channels)
	}
	if reader.SampleRate() != cfg.Audio.SampleRate {
		return fmt.Errorf("audio file has sample rate %d, config expects %d", reader.SampleRate(), cfg.Audio.SampleRate)
	}

	const chunkFrames = 8192
	for {
		buf, err := reader.ReadBuffer(chunkFrames)
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return err
		}
		if err := w.WriteAudio(buf); err != nil {
			return err
		}
	}
}

// recordingBuilder captures reel descriptors on their way to the manifest
// builder so the command can render a summary afterwards.
type recordingBuilder struct {
	inner *packaging.Builder
	reels []packaging.ReelDescriptor
}

func (b *recordingBuilder) Build(meta packaging.Metadata, reels []packaging.ReelDescriptor, fonts []media.Font) (*packaging.Result, error) {
	b.reels = reels
	return b.inner.Build(meta, reels, fonts)
}

// progressPrinter writes an in-place percentage line, but only when stdout
// is a terminal.
type progressPrinter struct {
	out     io.Writer
	enabled bool
}

func newProgressPrinter(out io.Writer) *progressPrinter {
	enabled := false
	if f, ok := out.(*os.File); ok {
		enabled = isatty.IsTerminal(f.Fd())
	}
	return &progressPrinter{out: out, enabled: enabled}
}

func (p *progressPrinter) update(pr writer.Progress) {
	if !p.enabled {
		return
	}
	if pr.Indeterminate {
		fmt.Fprint(p.out, "\rwriting frames...")
		return
	}
	fmt.Fprintf(p.out, "\rwriting frames: %3.0f%%", pr.Fraction*100)
}

func (p *progressPrinter) done() {
	if p.enabled {
		fmt.Fprintln(p.out)
	}
}

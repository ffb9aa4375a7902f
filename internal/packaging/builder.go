package packaging

import (
	"encoding/base64"
	"encoding/xml"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	"reelpress/internal/digest"
	"reelpress/internal/fileutil"
	"reelpress/internal/logging"
	"reelpress/internal/media"
)

// Result reports where the manifest documents were written.
type Result struct {
	CPLID        string
	CPLPath      string
	PKLPath      string
	AssetMapPath string
	Signed       bool
}

// Builder writes manifest documents into a package directory.
type Builder struct {
	dir    string
	logger *slog.Logger
	signer digest.Signer
}

// NewBuilder creates a manifest builder for the given output directory.
// signer may be nil for unsigned packages.
func NewBuilder(dir string, logger *slog.Logger, signer digest.Signer) *Builder {
	return &Builder{
		dir:    dir,
		logger: logging.NewComponentLogger(logger, "packaging"),
		signer: signer,
	}
}

// Build writes the composition playlist, packing list, and asset map for
// the given reels, copying font attachments into the package directory.
func (b *Builder) Build(meta Metadata, reels []ReelDescriptor, fonts []media.Font) (*Result, error) {
	if b.signer != nil && !b.signer.Valid() {
		return nil, fmt.Errorf("manifest build: %w", digest.ErrSigningUnavailable)
	}
	if err := os.MkdirAll(b.dir, 0o755); err != nil {
		return nil, fmt.Errorf("create package directory: %w", err)
	}

	for _, font := range fonts {
		target := filepath.Join(b.dir, filepath.Base(font.Path))
		if err := fileutil.CopyFileVerified(font.Path, target); err != nil {
			return nil, fmt.Errorf("copy font %s: %w", font.ID, err)
		}
	}

	if meta.IssueDate.IsZero() {
		meta.IssueDate = time.Now().UTC()
	}

	cplID := uuid.NewString()
	cplPath := filepath.Join(b.dir, fmt.Sprintf("cpl_%s.xml", cplID))
	cplBytes, err := b.composeCPL(cplID, meta, reels)
	if err != nil {
		return nil, err
	}
	if err := os.WriteFile(cplPath, cplBytes, 0o644); err != nil {
		return nil, fmt.Errorf("write composition playlist: %w", err)
	}

	pklID := uuid.NewString()
	pklPath := filepath.Join(b.dir, fmt.Sprintf("pkl_%s.xml", pklID))
	pklBytes, err := composePKL(pklID, cplID, cplPath, meta, reels)
	if err != nil {
		return nil, err
	}
	if err := os.WriteFile(pklPath, pklBytes, 0o644); err != nil {
		return nil, fmt.Errorf("write packing list: %w", err)
	}

	assetMapPath := filepath.Join(b.dir, "ASSETMAP.xml")
	assetMapBytes, err := composeAssetMap(meta, cplID, cplPath, pklID, pklPath, reels)
	if err != nil {
		return nil, err
	}
	if err := os.WriteFile(assetMapPath, assetMapBytes, 0o644); err != nil {
		return nil, fmt.Errorf("write asset map: %w", err)
	}

	b.logger.Info("manifest written",
		slog.String("cpl", filepath.Base(cplPath)),
		slog.Int("reels", len(reels)),
		slog.Bool("signed", b.signer != nil),
	)

	return &Result{
		CPLID:        cplID,
		CPLPath:      cplPath,
		PKLPath:      pklPath,
		AssetMapPath: assetMapPath,
		Signed:       b.signer != nil,
	}, nil
}

func (b *Builder) composeCPL(cplID string, meta Metadata, reels []ReelDescriptor) ([]byte, error) {
	doc := cplXML{
		ID:          "urn:uuid:" + cplID,
		Title:       meta.Title,
		Issuer:      meta.Issuer,
		Creator:     meta.Creator,
		ContentKind: meta.ContentKind,
		IssueDate:   meta.IssueDate.Format(time.RFC3339),
	}
	for _, reel := range reels {
		reelDoc := cplReelXML{ID: "urn:uuid:" + reel.ID, Duration: reel.DurationFrames}
		if pic := reel.Picture; pic != nil {
			reelDoc.Picture = &cplPictureXML{
				ID:           "urn:uuid:" + pic.ID,
				FrameRate:    fmt.Sprintf("%d 1", pic.FrameRate),
				Duration:     pic.Frames,
				Stereoscopic: pic.Stereoscopic,
				Hash:         pic.Digest,
			}
		}
		if snd := reel.Sound; snd != nil {
			reelDoc.Sound = &cplSoundXML{
				ID:         "urn:uuid:" + snd.ID,
				Channels:   snd.Channels,
				SampleRate: snd.SampleRate,
				Duration:   snd.Frames,
				Hash:       snd.Digest,
			}
		}
		if subs := reel.Subtitles; subs != nil {
			reelDoc.Subtitles = &cplSubtitleXML{
				ID:       "urn:uuid:" + subs.ID,
				Language: subs.Language,
				Hash:     subs.Digest,
			}
		}
		for _, ref := range reel.Referenced {
			reelDoc.Referenced = append(reelDoc.Referenced, cplReferencedXML{
				ID:   "urn:uuid:" + ref.ID,
				Kind: ref.Kind,
			})
		}
		doc.Reels = append(doc.Reels, reelDoc)
	}

	body, err := xml.MarshalIndent(doc, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshal composition playlist: %w", err)
	}

	if b.signer != nil {
		signature, err := b.signer.Sign(body)
		if err != nil {
			return nil, fmt.Errorf("sign composition playlist: %w", err)
		}
		doc.Signature = base64.StdEncoding.EncodeToString(signature)
		body, err = xml.MarshalIndent(doc, "", "  ")
		if err != nil {
			return nil, fmt.Errorf("marshal signed composition playlist: %w", err)
		}
	}

	return append([]byte(xml.Header), body...), nil
}

package packaging

import (
	"encoding/xml"
	"fmt"
	"os"
	"path/filepath"
	"time"
)

type cplPictureXML struct {
	ID           string `xml:"Id"`
	FrameRate    string `xml:"FrameRate"`
	Duration     int64  `xml:"IntrinsicDuration"`
	Stereoscopic bool   `xml:"Stereoscopic,attr"`
	Hash         string `xml:"Hash"`
}

type cplSoundXML struct {
	ID         string `xml:"Id"`
	Channels   int    `xml:"Channels"`
	SampleRate int    `xml:"SampleRate"`
	Duration   int64  `xml:"IntrinsicDuration"`
	Hash       string `xml:"Hash"`
}

type cplSubtitleXML struct {
	ID       string `xml:"Id"`
	Language string `xml:"Language"`
	Hash     string `xml:"Hash"`
}

type cplReferencedXML struct {
	ID   string `xml:"Id"`
	Kind string `xml:"Kind,attr"`
}

type cplReelXML struct {
	ID         string             `xml:"Id"`
	Duration   int64              `xml:"Duration"`
	Picture    *cplPictureXML     `xml:"AssetList>MainPicture,omitempty"`
	Sound      *cplSoundXML       `xml:"AssetList>MainSound,omitempty"`
	Subtitles  *cplSubtitleXML    `xml:"AssetList>MainSubtitle,omitempty"`
	Referenced []cplReferencedXML `xml:"AssetList>ReferencedAsset,omitempty"`
}

type cplXML struct {
	XMLName     xml.Name     `xml:"CompositionPlaylist"`
	ID          string       `xml:"Id"`
	Title       string       `xml:"ContentTitleText"`
	Issuer      string       `xml:"Issuer"`
	Creator     string       `xml:"Creator"`
	ContentKind string       `xml:"ContentKind"`
	IssueDate   string       `xml:"IssueDate"`
	Reels       []cplReelXML `xml:"ReelList>Reel"`
	Signature   string       `xml:"Signature,omitempty"`
}

type pklAssetXML struct {
	ID   string `xml:"Id"`
	Hash string `xml:"Hash"`
	Size int64  `xml:"Size"`
	Type string `xml:"Type"`
}

type pklXML struct {
	XMLName   xml.Name      `xml:"PackingList"`
	ID        string        `xml:"Id"`
	Issuer    string        `xml:"Issuer"`
	Creator   string        `xml:"Creator"`
	IssueDate string        `xml:"IssueDate"`
	Assets    []pklAssetXML `xml:"AssetList>Asset"`
}

type assetMapChunkXML struct {
	Path string `xml:"Path"`
}

type assetMapAssetXML struct {
	ID     string             `xml:"Id"`
	Chunks []assetMapChunkXML `xml:"ChunkList>Chunk"`
}

type assetMapXML struct {
	XMLName   xml.Name           `xml:"AssetMap"`
	ID        string             `xml:"Id"`
	Creator   string             `xml:"Creator"`
	IssueDate string             `xml:"IssueDate"`
	Assets    []assetMapAssetXML `xml:"AssetList>Asset"`
}

func composePKL(pklID, cplID, cplPath string, meta Metadata, reels []ReelDescriptor) ([]byte, error) {
	doc := pklXML{
		ID:        "urn:uuid:" + pklID,
		Issuer:    meta.Issuer,
		Creator:   meta.Creator,
		IssueDate: meta.IssueDate.Format(time.RFC3339),
	}

	cplInfo, err := os.Stat(cplPath)
	if err != nil {
		return nil, fmt.Errorf("stat composition playlist: %w", err)
	}
	doc.Assets = append(doc.Assets, pklAssetXML{
		ID:   "urn:uuid:" + cplID,
		Size: cplInfo.Size(),
		Type: "text/xml",
	})

	for _, reel := range reels {
		for _, ref := range reelAssetRefs(reel) {
			doc.Assets = append(doc.Assets, pklAssetXML{
				ID:   "urn:uuid:" + ref.ID,
				Hash: ref.Digest,
				Size: ref.Size,
				Type: "application/octet-stream",
			})
		}
	}

	body, err := xml.MarshalIndent(doc, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshal packing list: %w", err)
	}
	return append([]byte(xml.Header), body...), nil
}

func composeAssetMap(meta Metadata, cplID, cplPath, pklID, pklPath string, reels []ReelDescriptor) ([]byte, error) {
	doc := assetMapXML{
		ID:        "urn:uuid:" + cplID,
		Creator:   meta.Creator,
		IssueDate: meta.IssueDate.Format(time.RFC3339),
	}

	addAsset := func(id, path string) {
		doc.Assets = append(doc.Assets, assetMapAssetXML{
			ID:     "urn:uuid:" + id,
			Chunks: []assetMapChunkXML{{Path: filepath.Base(path)}},
		})
	}

	addAsset(cplID, cplPath)
	addAsset(pklID, pklPath)
	for _, reel := range reels {
		for _, ref := range reelAssetRefs(reel) {
			addAsset(ref.ID, ref.Path)
		}
	}

	body, err := xml.MarshalIndent(doc, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshal asset map: %w", err)
	}
	return append([]byte(xml.Header), body...), nil
}

// reelAssetRefs returns the asset references a reel contributes to the
// package, in manifest order.
func reelAssetRefs(reel ReelDescriptor) []AssetRef {
	var refs []AssetRef
	if reel.Picture != nil {
		refs = append(refs, reel.Picture.AssetRef)
	}
	if reel.Sound != nil {
		refs = append(refs, reel.Sound.AssetRef)
	}
	if reel.Subtitles != nil {
		refs = append(refs, reel.Subtitles.AssetRef)
	}
	return refs
}

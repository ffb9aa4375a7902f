package subtitles

import (
	"encoding/xml"
	"fmt"
	"os"
	"path/filepath"

	"github.com/google/uuid"

	"reelpress/internal/dcptime"
	"reelpress/internal/media"
)

// Asset collects subtitle batches destined for one reel.
type Asset struct {
	id       string
	language string
	batches  []media.SubtitleBatch
}

// NewAsset creates an empty subtitle asset for the given language tag.
func NewAsset(language string) *Asset {
	return &Asset{
		id:       uuid.NewString(),
		language: language,
	}
}

// ID returns the asset's UUID.
func (a *Asset) ID() string {
	return a.id
}

// Empty reports whether no batches have been appended.
func (a *Asset) Empty() bool {
	return len(a.batches) == 0
}

// Append adds a batch to the asset. Batches must arrive in time order.
func (a *Asset) Append(batch media.SubtitleBatch) {
	a.batches = append(a.batches, batch)
}

type xmlText struct {
	VPosition float64 `xml:"VPosition,attr"`
	Value     string  `xml:",chardata"`
}

type xmlSubtitle struct {
	TimeIn  string    `xml:"TimeIn,attr"`
	TimeOut string    `xml:"TimeOut,attr"`
	Text    []xmlText `xml:"Text"`
}

type xmlLoadFont struct {
	ID   string `xml:"ID,attr"`
	File string `xml:",chardata"`
}

type xmlSubtitleReel struct {
	XMLName  xml.Name      `xml:"SubtitleReel"`
	ID       string        `xml:"Id"`
	Language string        `xml:"Language"`
	Fonts    []xmlLoadFont `xml:"LoadFont,omitempty"`
	Subs     []xmlSubtitle `xml:"SubtitleList>Subtitle"`
}

// WriteXML renders the asset to path with the given font attachments.
func (a *Asset) WriteXML(path string, fonts []media.Font) error {
	doc := xmlSubtitleReel{
		ID:       "urn:uuid:" + a.id,
		Language: a.language,
	}
	for _, font := range fonts {
		doc.Fonts = append(doc.Fonts, xmlLoadFont{ID: font.ID, File: filepath.Base(font.Path)})
	}
	for _, batch := range a.batches {
		sub := xmlSubtitle{
			TimeIn:  timecode(batch.From),
			TimeOut: timecode(batch.To),
		}
		for _, line := range batch.Lines {
			sub.Text = append(sub.Text, xmlText{VPosition: line.VPosition, Value: line.Text})
		}
		doc.Subs = append(doc.Subs, sub)
	}

	data, err := xml.MarshalIndent(doc, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal subtitle reel: %w", err)
	}
	data = append([]byte(xml.Header), data...)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write subtitle asset: %w", err)
	}
	return nil
}

// timecode formats t as HH:MM:SS:mmm.
func timecode(t dcptime.Time) string {
	totalMillis := int64(t) * 1000 / dcptime.TicksPerSecond
	millis := totalMillis % 1000
	seconds := totalMillis / 1000 % 60
	minutes := totalMillis / 60000 % 60
	hours := totalMillis / 3600000
	return fmt.Sprintf("%02d:%02d:%02d:%03d", hours, minutes, seconds, millis)
}

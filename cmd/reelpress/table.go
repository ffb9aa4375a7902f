package main

import (
	"strconv"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"

	"reelpress/internal/packaging"
)

// renderReelSummary lays out one row per sealed reel. The numeric columns
// are right-aligned so durations and frame counts line up.
func renderReelSummary(reels []packaging.ReelDescriptor) string {
	tw := table.NewWriter()
	tw.SetStyle(table.StyleRounded)
	tw.Style().Format.Header = text.FormatDefault
	tw.AppendHeader(table.Row{"Reel", "Duration", "Video frames", "Audio frames", "Subtitles"})

	for i, reel := range reels {
		var videoFrames, audioFrames int64
		if reel.Picture != nil {
			videoFrames = reel.Picture.Frames
		}
		if reel.Sound != nil {
			audioFrames = reel.Sound.Frames
		}
		tw.AppendRow(table.Row{
			strconv.Itoa(i + 1),
			strconv.FormatInt(reel.DurationFrames, 10),
			strconv.FormatInt(videoFrames, 10),
			strconv.FormatInt(audioFrames, 10),
			yesNo(reel.Subtitles != nil),
		})
	}

	configs := make([]table.ColumnConfig, 0, 4)
	for col := 1; col <= 4; col++ {
		configs = append(configs, table.ColumnConfig{
			Number:      col,
			Align:       text.AlignRight,
			AlignHeader: text.AlignLeft,
		})
	}
	tw.SetColumnConfigs(configs)

	return tw.Render()
}

// Package subtitles accumulates timed-text batches for a reel and writes
// them out as a single XML subtitle asset at finalize time.
//
// Batches arrive pre-ordered from the decode pipeline; this package does no
// reordering. Font resources are attached when the document is written.
package subtitles

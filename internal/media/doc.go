// Package media defines the value types passed between the decode pipeline,
// the encode workers, and the writing engine.
//
// These are plain data carriers: stereoscopic eye designators, interleaved
// audio buffers, timed subtitle batches, font resources, and references to
// externally produced reel assets. Behavior lives in the packages that
// consume them.
package media

// Package writer is the ordered frame-multiplexing engine at the heart of
// reelpress.
//
// Encode workers deliver video frames out of order from many goroutines;
// audio and subtitles arrive pre-ordered on a single caller. The Writer
// buffers pending video in a key-ordered queue under a hard memory ceiling,
// spilling overflow payloads to a disk side-store, while one consumer
// goroutine drains the queue in strict per-reel sequence (including
// stereoscopic left/right pairing) into the reel writers. Finish seals
// every reel and hands the results to the package builder.
package writer

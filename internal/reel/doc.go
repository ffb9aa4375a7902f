// Package reel writes one time-bounded segment of the output package.
//
// A reel Writer owns the picture, sound, and subtitle assets for its period,
// tracks the video cursor (last written frame and eye), and records frame
// metadata so fake- and repeat-writes can locate bytes that are already on
// disk. Video methods are driven by the engine's single consumer goroutine;
// audio and subtitle methods are driven by their own single ordered caller,
// so the Writer itself carries no locking.
package reel

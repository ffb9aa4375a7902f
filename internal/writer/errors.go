package writer

import "errors"

var (
	// ErrFrameOutOfRange indicates a producer submitted a frame index
	// outside the declared timeline. This is a programming contract
	// violation, not a recoverable condition.
	ErrFrameOutOfRange = errors.New("frame outside the declared timeline")

	// ErrInvalidFakeWrite indicates a fake-write for a reel's first frame
	// or for territory that has never been really written.
	ErrInvalidFakeWrite = errors.New("invalid fake write")

	// ErrInvalidRepeat indicates a repeat of a reel's first frame, which
	// has no predecessor to duplicate.
	ErrInvalidRepeat = errors.New("invalid repeat")
)

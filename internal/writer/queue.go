package writer

import (
	"fmt"
	"sort"

	"reelpress/internal/media"
)

// Kind distinguishes the three kinds of queued video unit.
type Kind int

const (
	// KindFull carries an encoded payload.
	KindFull Kind = iota
	// KindFake carries only the byte size of an already-known frame.
	KindFake
	// KindRepeat duplicates the previously written frame.
	KindRepeat
)

func (k Kind) String() string {
	switch k {
	case KindFull:
		return "full"
	case KindFake:
		return "fake"
	case KindRepeat:
		return "repeat"
	default:
		return "unknown"
	}
}

// Key is the ordering key addressing one pending video unit. Two items are
// the same queue position iff their keys are equal; payload plays no part.
type Key struct {
	Reel  int
	Frame int64
	Eyes  media.Eyes
}

func (k Key) String() string {
	return fmt.Sprintf("reel %d frame %d (%s)", k.Reel, k.Frame, k.Eyes)
}

// less orders keys by (reel, frame, eye), with Left < Right < Both.
func (k Key) less(other Key) bool {
	if k.Reel != other.Reel {
		return k.Reel < other.Reel
	}
	if k.Frame != other.Frame {
		return k.Frame < other.Frame
	}
	return k.Eyes < other.Eyes
}

// queueItem is one pending video unit. data is non-nil only for full items
// still holding their payload in memory; spilled items recover it from the
// side-store when they reach the head.
type queueItem struct {
	Key
	kind    Kind
	data    []byte
	spilled bool
	size    int64
}

func sortQueue(queue []queueItem) {
	sort.Slice(queue, func(i, j int) bool {
		return queue[i].Key.less(queue[j].Key)
	})
}

package heap

import (
	"fmt"
	"strings"

	"github.com/joshuapare/tagheap/internal/layout"
)

// Ref is a payload reference: the arena offset of the first payload byte of an
// allocated block. The zero Ref is never a valid payload.
type Ref int

// Nil is the null reference. Releasing it is a no-op.
const Nil Ref = 0

// Policy selects which free block satisfies an allocation.
type Policy uint8

const (
	// FirstFit takes the first sufficiently large block in free-list order.
	FirstFit Policy = iota
	// BestFit scans the whole free list and takes the smallest sufficient
	// block. Ties go to the block found first.
	BestFit
)

func (p Policy) String() string {
	switch p {
	case FirstFit:
		return "first-fit"
	case BestFit:
		return "best-fit"
	default:
		return fmt.Sprintf("Policy(%d)", uint8(p))
	}
}

// ParsePolicy accepts "first", "first-fit", "firstfit", "best", "best-fit" and
// "bestfit" in any case.
func ParsePolicy(s string) (Policy, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "first", "first-fit", "firstfit":
		return FirstFit, nil
	case "best", "best-fit", "bestfit":
		return BestFit, nil
	}
	return 0, fmt.Errorf("%w: %q", ErrBadPolicy, s)
}

// Block describes one block of the arena.
type Block struct {
	Offset    int  `json:"offset"`    // arena offset of the header
	Size      int  `json:"size"`      // total size including header and footer
	Allocated bool `json:"allocated"` // false while the block is on the free list
}

// Ref returns the payload reference of the block.
func (b Block) Ref() Ref {
	return Ref(layout.Payload(b.Offset))
}

// End returns the offset one past the block's last byte.
func (b Block) End() int {
	return b.Offset + b.Size
}

func (b Block) String() string {
	state := "FREE"
	if b.Allocated {
		state = "ALLOCATED"
	}
	return fmt.Sprintf("Block %#x size: %d %s", b.Offset, b.Size, state)
}

// MinBlockSize is the smallest block the heap manages. A heap needs at least
// this many bytes to become active.
const MinBlockSize = layout.MinBlockSize

// Alignment is the alignment of every payload relative to the arena base.
const Alignment = layout.Align

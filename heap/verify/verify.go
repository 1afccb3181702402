package verify

import (
	"fmt"

	"github.com/joshuapare/tagheap/internal/layout"
)

// ValidationError describes the first invariant violation found.
type ValidationError struct {
	Type    string
	Message string
	Offset  int
	Details map[string]any
}

func (e *ValidationError) Error() string {
	if e.Offset >= 0 {
		return fmt.Sprintf("%s at offset 0x%X: %s", e.Type, e.Offset, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Type, e.Message)
}

// AllInvariants validates the block chain and the free list in one call.
// Returns the first error encountered, or nil if all checks pass.
func AllInvariants(data []byte, freeHead int) error {
	if err := BlockChain(data); err != nil {
		return err
	}
	return FreeList(data, freeHead)
}

// BlockChain walks the arena block by block from offset 0.
func BlockChain(data []byte) error {
	if len(data) < layout.MinBlockSize || !layout.IsAligned(len(data)) {
		return &ValidationError{
			Type:    "BlockChain",
			Message: fmt.Sprintf("arena size %d is not an aligned size of at least %d", len(data), layout.MinBlockSize),
			Offset:  -1,
		}
	}

	off := 0
	prevFree := false
	for off < len(data) {
		if off+layout.HeaderSize > len(data) {
			return &ValidationError{
				Type:    "BlockChain",
				Message: fmt.Sprintf("header truncated by arena end 0x%X", len(data)),
				Offset:  off,
			}
		}

		size := layout.Size(data, off)
		switch {
		case size < layout.MinBlockSize:
			return &ValidationError{
				Type:    "BlockChain",
				Message: fmt.Sprintf("block size %d below minimum %d", size, layout.MinBlockSize),
				Offset:  off,
			}
		case !layout.IsAligned(size):
			return &ValidationError{
				Type:    "BlockChain",
				Message: fmt.Sprintf("block size %d not %d-byte aligned", size, layout.Align),
				Offset:  off,
			}
		case size > len(data)-off:
			return &ValidationError{
				Type:    "BlockChain",
				Message: fmt.Sprintf("block extends beyond arena: size=%d, available=%d", size, len(data)-off),
				Offset:  off,
			}
		}

		if footer := layout.Footer(data, off); footer != size {
			return &ValidationError{
				Type:    "BlockChain",
				Message: fmt.Sprintf("footer mismatch: header=%d, footer=%d", size, footer),
				Offset:  off,
				Details: map[string]any{"header": size, "footer": footer},
			}
		}

		free := !layout.Allocated(data, off)
		if free && prevFree {
			return &ValidationError{
				Type:    "BlockChain",
				Message: "adjacent free blocks were not coalesced",
				Offset:  off,
			}
		}
		prevFree = free
		off += size
	}

	// off can only overshoot if a size check above was skipped.
	if off != len(data) {
		return &ValidationError{
			Type:    "BlockChain",
			Message: fmt.Sprintf("block sizes sum to %d, arena is %d", off, len(data)),
			Offset:  -1,
		}
	}
	return nil
}

// FreeList walks the free list from freeHead and cross-checks it against the
// free blocks of the chain. BlockChain should pass first.
func FreeList(data []byte, freeHead int) error {
	want := make(map[int]bool)
	for off := 0; off+layout.HeaderSize <= len(data); {
		size := layout.Size(data, off)
		if size < layout.MinBlockSize || size > len(data)-off {
			break
		}
		if !layout.Allocated(data, off) {
			want[off] = true
		}
		off += size
	}

	seen := make(map[int]bool, len(want))
	prev := layout.Nil
	for off := freeHead; off != layout.Nil; off = layout.NextFree(data, off) {
		if off < 0 || off+layout.HeaderSize > len(data) || !layout.IsAligned(off) {
			return &ValidationError{
				Type:    "FreeList",
				Message: fmt.Sprintf("link 0x%X outside arena or misaligned", off),
				Offset:  prev,
			}
		}
		if seen[off] {
			return &ValidationError{
				Type:    "FreeList",
				Message: "block appears twice (cycle)",
				Offset:  off,
			}
		}
		seen[off] = true

		if layout.Allocated(data, off) {
			return &ValidationError{
				Type:    "FreeList",
				Message: "allocated block on free list",
				Offset:  off,
			}
		}
		if !want[off] {
			return &ValidationError{
				Type:    "FreeList",
				Message: "free-list member is not a block of the chain",
				Offset:  off,
			}
		}
		if back := layout.PrevFree(data, off); back != prev {
			return &ValidationError{
				Type:    "FreeList",
				Message: fmt.Sprintf("broken back link: prev=%d, want %d", back, prev),
				Offset:  off,
			}
		}
		prev = off
	}

	if len(seen) != len(want) {
		for off := range want {
			if !seen[off] {
				return &ValidationError{
					Type:    "FreeList",
					Message: "free block missing from free list",
					Offset:  off,
					Details: map[string]any{"listed": len(seen), "free": len(want)},
				}
			}
		}
	}
	return nil
}

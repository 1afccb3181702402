package heap

import (
	"github.com/joshuapare/tagheap/internal/layout"
)

// Release returns the block behind ref to the free list and merges it with
// free neighbors on both sides.
//
// Releasing Nil, or releasing on an inert heap, does nothing. A reference
// whose block would lie outside the arena (or off the block grid) fails with
// ErrInvalidPointer; a block that is already free fails with ErrDoubleFree.
// Neither failure changes any state.
//
// Passing a reference that never came from this heap's Alloc, or whose header
// has been overwritten, is undefined behavior.
func (h *Heap) Release(ref Ref) error {
	if ref == Nil || !h.Active() {
		return nil
	}
	h.stats.releaseCalls++

	data := h.data
	off, ok := h.blockRange(ref)
	if !ok {
		return h.refuse(ErrInvalidPointer, ref)
	}
	if !layout.Allocated(data, off) {
		return h.refuse(ErrDoubleFree, ref)
	}
	size := layout.Size(data, off)
	if !h.wellFormed(off, size) {
		return h.refuse(ErrInvalidPointer, ref)
	}

	layout.SetAllocated(data, off, false)
	h.stats.bytesReleased += int64(size)

	// Forward coalesce: absorb the next block if it is free.
	if next := off + size; next < len(data) && !layout.Allocated(data, next) {
		h.removeFree(next)
		size += layout.Size(data, next)
		layout.SetSize(data, off, size)
		layout.WriteFooter(data, off)
		h.stats.coalesceForward++
	}

	// Backward coalesce: the footer right before off records the previous
	// block's size. Bounds-check the computed offset before touching it, then
	// confirm the header agrees with the footer.
	if off > 0 {
		prevSize := layout.FooterBefore(data, off)
		if prevSize >= layout.MinBlockSize && prevSize <= off {
			prev := off - prevSize
			if !layout.Allocated(data, prev) && layout.Size(data, prev) == prevSize {
				h.removeFree(prev)
				size += prevSize
				layout.SetSize(data, prev, size)
				layout.WriteFooter(data, prev)
				off = prev
				h.stats.coalesceBackward++
			}
		}
	}

	h.pushFree(off)
	return nil
}

// wellFormed reports whether size is a plausible size for a block at off and
// the footer agrees with it.
func (h *Heap) wellFormed(off, size int) bool {
	if size < layout.MinBlockSize || !layout.IsAligned(size) || size > len(h.data)-off {
		return false
	}
	return layout.Footer(h.data, off) == size
}

func (h *Heap) refuse(err error, ref Ref) error {
	h.stats.releaseFailures++
	h.logger().Debug("release refused", "ref", int(ref), "err", err)
	return err
}

package heap

import (
	"github.com/joshuapare/tagheap/internal/layout"
)

// Alloc reserves a block with room for n payload bytes, chosen by policy p.
//
// It returns the payload reference and a slice of exactly n bytes over the
// payload. The payload is Alignment-aligned relative to the arena base, and the
// arena base is page aligned, so the slice's address is aligned too.
//
// A zero or negative n returns ErrZeroSize and an inert heap returns
// ErrInactive; neither changes any state. When no free block is large enough
// Alloc returns ErrOutOfSpace and leaves the heap untouched.
func (h *Heap) Alloc(n int, p Policy) (Ref, []byte, error) {
	if !h.Active() {
		return Nil, nil, ErrInactive
	}
	if n <= 0 {
		return Nil, nil, ErrZeroSize
	}
	if p != FirstFit && p != BestFit {
		return Nil, nil, ErrBadPolicy
	}
	h.stats.allocCalls++

	need, ok := layout.BlockSize(n)
	if !ok || need > len(h.data) {
		return h.outOfSpace(n, need, p)
	}

	var off int
	if p == BestFit {
		off = h.bestFit(need)
	} else {
		off = h.firstFit(need)
	}
	if off == layout.Nil {
		return h.outOfSpace(n, need, p)
	}

	h.removeFree(off)
	size := h.split(off, need)

	layout.SetAllocated(h.data, off, true)
	layout.WriteFooter(h.data, off)
	h.stats.bytesAllocated += int64(size)

	ref := layout.Payload(off)
	return Ref(ref), h.data[ref : ref+n : ref+n], nil
}

// AllocDefault allocates with the heap's default policy.
func (h *Heap) AllocDefault(n int) (Ref, []byte, error) {
	return h.Alloc(n, h.policy)
}

// DefaultPolicy returns the policy used by AllocDefault.
func (h *Heap) DefaultPolicy() Policy {
	return h.policy
}

func (h *Heap) outOfSpace(n, need int, p Policy) (Ref, []byte, error) {
	h.stats.allocFailures++
	h.logger().Debug("alloc: no free block large enough",
		"bytes", n, "need", need, "policy", p, "capacity", len(h.data))
	return Nil, nil, ErrOutOfSpace
}

// firstFit returns the first free block of at least need bytes, or layout.Nil.
// Best case O(1), worst case the whole list.
func (h *Heap) firstFit(need int) int {
	data := h.data
	for off := h.freeHead; off != layout.Nil; off = layout.NextFree(data, off) {
		if layout.Size(data, off) >= need {
			return off
		}
	}
	return layout.Nil
}

// bestFit returns the smallest free block of at least need bytes, or
// layout.Nil. Only a strictly smaller block replaces the current candidate,
// so among equal sizes the one nearest the head wins. Always scans the whole
// list.
func (h *Heap) bestFit(need int) int {
	data := h.data
	best, bestSize := layout.Nil, 0
	for off := h.freeHead; off != layout.Nil; off = layout.NextFree(data, off) {
		size := layout.Size(data, off)
		if size < need {
			continue
		}
		if best == layout.Nil || size < bestSize {
			best, bestSize = off, size
		}
	}
	return best
}

// split truncates the (already unlinked) block at off to need bytes when the
// leftover can stand alone as a block, and pushes the leftover onto the free
// list. It returns the resulting size of the block at off.
func (h *Heap) split(off, need int) int {
	data := h.data
	size := layout.Size(data, off)
	rem := size - need
	if rem < layout.MinBlockSize {
		// Too small to host its own header and footer; hand out the whole block.
		return size
	}

	layout.SetSize(data, off, need)
	tail := off + need
	layout.InitFree(data, tail, rem)
	h.pushFree(tail)
	h.stats.splits++
	return need
}

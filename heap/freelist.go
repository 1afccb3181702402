package heap

import (
	"iter"

	"github.com/joshuapare/tagheap/internal/layout"
)

// The free list is threaded through the prevFree/nextFree words of each free
// block's header. Insertion is always at the head, so list order is
// most-recently-inserted first, not address order.

// pushFree marks the block at off free and links it in at the head.
func (h *Heap) pushFree(off int) {
	data := h.data
	layout.SetAllocated(data, off, false)
	layout.SetPrevFree(data, off, layout.Nil)
	layout.SetNextFree(data, off, h.freeHead)
	if h.freeHead != layout.Nil {
		layout.SetPrevFree(data, h.freeHead, off)
	}
	h.freeHead = off
}

// removeFree unlinks the block at off. The block must be on the list.
func (h *Heap) removeFree(off int) {
	data := h.data
	prev := layout.PrevFree(data, off)
	next := layout.NextFree(data, off)
	if prev != layout.Nil {
		layout.SetNextFree(data, prev, next)
	} else {
		h.freeHead = next
	}
	if next != layout.Nil {
		layout.SetPrevFree(data, next, prev)
	}
	layout.SetPrevFree(data, off, layout.Nil)
	layout.SetNextFree(data, off, layout.Nil)
}

// maxFreeBlocks bounds free-list walks so a corrupted link cannot loop forever.
func (h *Heap) maxFreeBlocks() int {
	return len(h.data)/layout.MinBlockSize + 1
}

// FreeBlocks returns the free list from head to tail. The sequence is lazy
// and can be ranged over again after the heap changes. It must not be
// consumed while the heap is being mutated.
func (h *Heap) FreeBlocks() iter.Seq[Block] {
	return func(yield func(Block) bool) {
		if !h.Active() {
			return
		}
		data := h.data
		limit := h.maxFreeBlocks()
		for off := h.freeHead; off != layout.Nil && limit > 0; limit-- {
			if off < 0 || off+layout.HeaderSize > len(data) {
				return
			}
			b := Block{Offset: off, Size: layout.Size(data, off), Allocated: layout.Allocated(data, off)}
			if !yield(b) {
				return
			}
			off = layout.NextFree(data, off)
		}
	}
}

// FreeHead returns the offset of the free-list head, or -1 when the list is
// empty. It exists for diagnostics and invariant checks.
func (h *Heap) FreeHead() int {
	if !h.Active() {
		return layout.Nil
	}
	return h.freeHead
}

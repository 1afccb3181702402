package heap

import "github.com/joshuapare/tagheap/heap/verify"

// Check validates the arena's boundary tags and the free list. It returns nil
// for an inert heap.
func (h *Heap) Check() error {
	if !h.Active() {
		return nil
	}
	return verify.AllInvariants(h.data, h.freeHead)
}

// Package heap provides a boundary-tag allocator over a single fixed-size arena.
//
// # Overview
//
// A Heap reserves one contiguous, page-aligned region from the operating
// system when it is built and carves it into blocks on demand. Every block
// carries a header (size, allocation flag, free-list links) and a footer that
// repeats the size, so both neighbors of a block can be found in O(1). Free
// blocks are threaded into a single doubly-linked list that lives inside the
// arena itself; the allocator keeps no side tables.
//
// # Usage Example
//
//	h := heap.New(64<<10, nil)
//	if err := h.Err(); err != nil {
//	    return err
//	}
//	defer h.Close()
//
//	ref, buf, err := h.Alloc(200, heap.BestFit)
//	if err != nil {
//	    return err
//	}
//	copy(buf, payload)
//
//	// Later, give the block back
//	err = h.Release(ref)
//
// # Fit Policies
//
// FirstFit walks the free list from the head and takes the first block that
// is large enough. BestFit walks the whole list and takes the smallest block
// that is large enough; among blocks of equal size the one nearest the head
// wins. The list is kept in insertion order (newest first), not address
// order, so FirstFit favors recently released blocks.
//
// # Splitting and Coalescing
//
// When the chosen block is larger than needed and the leftover can hold its
// own header, footer and one alignment unit of payload, the block is split
// and the leftover goes back on the free list. Otherwise the caller receives
// the whole block; UsableSize reports the real capacity.
//
// Release merges the block with a free successor and with a free predecessor
// before putting the result on the free list, so two adjacent blocks are never
// both free.
//
// # Block Sizes
//
//	request   block
//	1..16     64
//	17..32    80
//	33..48    96
//	n         AlignUp(n) + 48
//
// # Errors
//
// Refused operations return sentinel errors (ErrOutOfSpace,
// ErrInvalidPointer, ErrDoubleFree, ...) and leave the heap untouched. A heap
// whose construction failed is inert rather than nil: every operation on it
// is a harmless no-op or returns ErrInactive, and Err reports what went wrong.
//
// # Ownership
//
// A Heap owns its arena exclusively. Transfer it with Move or Assign, never by
// copying the struct. Close releases the region and may be called any number
// of times.
//
// # Concurrency
//
// Heap is single-threaded. Locked wraps a Heap with a mutex for shared use.
//
// # Debug Logging
//
// Set TAGHEAP_LOG_ALLOC=1 to log refused operations to stderr, or pass a
// *slog.Logger in Options.
//
// # Related Packages
//
//   - github.com/joshuapare/tagheap/heap/verify: Arena invariant checks
//   - github.com/joshuapare/tagheap/heap/printer: Text and JSON dumps
package heap

package heap

import (
	"iter"

	"github.com/joshuapare/tagheap/internal/layout"
)

// Blocks returns every block of the arena in address order. The sequence is
// lazy, finite and restartable: each range walks the arena as it is at that
// moment. It stops early if it meets a header that cannot be a block. It must
// not be consumed while the heap is being mutated.
func (h *Heap) Blocks() iter.Seq[Block] {
	return func(yield func(Block) bool) {
		if !h.Active() {
			return
		}
		data := h.data
		for off := 0; off+layout.HeaderSize <= len(data); {
			size := layout.Size(data, off)
			if size < layout.MinBlockSize || size > len(data)-off {
				return
			}
			if !yield(Block{Offset: off, Size: size, Allocated: layout.Allocated(data, off)}) {
				return
			}
			off += size
		}
	}
}

// Bytes returns the full payload of the live allocation behind ref. Its
// length is UsableSize(ref), which may exceed the size originally requested.
func (h *Heap) Bytes(ref Ref) ([]byte, error) {
	off, size, err := h.lookup(ref)
	if err != nil {
		return nil, err
	}
	start := layout.Payload(off)
	end := start + layout.PayloadCap(size)
	return h.data[start:end:end], nil
}

// UsableSize returns how many payload bytes the allocation behind ref can hold.
func (h *Heap) UsableSize(ref Ref) (int, error) {
	_, size, err := h.lookup(ref)
	if err != nil {
		return 0, err
	}
	return layout.PayloadCap(size), nil
}

// BlockOf returns the block hosting ref.
func (h *Heap) BlockOf(ref Ref) (Block, error) {
	off, size, err := h.lookup(ref)
	if err != nil {
		return Block{}, err
	}
	return Block{Offset: off, Size: size, Allocated: true}, nil
}

// lookup validates ref as a live allocation without changing anything.
func (h *Heap) lookup(ref Ref) (int, int, error) {
	if !h.Active() {
		return 0, 0, ErrInactive
	}
	off, ok := h.blockRange(ref)
	if !ok {
		return 0, 0, ErrInvalidPointer
	}
	if !layout.Allocated(h.data, off) {
		return 0, 0, ErrDoubleFree
	}
	size := layout.Size(h.data, off)
	if !h.wellFormed(off, size) {
		return 0, 0, ErrInvalidPointer
	}
	return off, size, nil
}

// blockRange maps ref to its block offset. It reports false when the header
// would start before the arena, end past it, or sit off the block grid.
// The payload offset is range-checked before any arithmetic so extreme refs
// cannot wrap into the arena.
func (h *Heap) blockRange(ref Ref) (int, bool) {
	r := int(ref)
	if r < layout.HeaderSize || r > len(h.data) {
		return 0, false
	}
	off := layout.BlockOf(r)
	if !layout.IsAligned(off) {
		return 0, false
	}
	return off, true
}

// Package layout defines the boundary-tag block format embedded in arena bytes.
//
// Every block starts with a fixed header and ends with a footer that mirrors
// the block size:
//
//	+0   size      uint64  total block size (header + payload + footer)
//	+8   flags     uint64  bit 0 set while allocated
//	+16  prevFree  uint64  free-list back link (NoBlock when none)
//	+24  nextFree  uint64  free-list forward link (NoBlock when none)
//	...  payload
//	-8   footer    uint64  copy of size
//
// All values are little-endian. Block offsets and sizes are multiples of
// Align, so a payload that starts right after the header is Align-aligned
// whenever the arena base is.
package layout

const (
	// Align is the maximum alignment unit. Block sizes and offsets are
	// multiples of it.
	Align     = 16
	AlignMask = Align - 1

	// HeaderSize is the size of the block header that precedes the payload.
	HeaderSize = 32
	// FooterSize is the size of the trailing size tag.
	FooterSize = 8

	// Overhead is the per-block metadata cost.
	Overhead = HeaderSize + FooterSize

	// MinBlockSize is the smallest block that can host its own header,
	// one alignment unit of payload, and its footer. Split remainders
	// below this size are left attached to the allocated block.
	MinBlockSize = HeaderSize + Align + FooterSize
)

// Header field offsets, relative to the block start.
const (
	SizeOffset  = 0
	FlagsOffset = 8
	PrevOffset  = 16
	NextOffset  = 24
)

// FlagAllocated marks a block as handed out to a caller.
const FlagAllocated = 1

// NoBlock is the on-disk encoding of a missing free-list link.
const NoBlock = ^uint64(0)

// Nil is the in-memory form of NoBlock.
const Nil = -1

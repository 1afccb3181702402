package heap

import "errors"

var (
	// ErrConstruction indicates the heap could not be built: the requested size
	// is below the minimum block size or the region reservation failed.
	// The heap is left inert; Err reports the wrapped cause.
	ErrConstruction = errors.New("heap: construction failed")

	// ErrOutOfSpace indicates that no free block is large enough.
	ErrOutOfSpace = errors.New("heap: no free block large enough")

	// ErrInvalidPointer indicates a reference whose block lies outside the arena.
	ErrInvalidPointer = errors.New("heap: invalid pointer")

	// ErrDoubleFree indicates a release of a block that is already free.
	ErrDoubleFree = errors.New("heap: double free")

	// ErrInactive indicates an operation on an inert heap.
	ErrInactive = errors.New("heap: inactive")

	// ErrZeroSize indicates an allocation request for zero (or fewer) bytes.
	ErrZeroSize = errors.New("heap: allocation size must be positive")

	// ErrBadPolicy indicates an unknown fit policy.
	ErrBadPolicy = errors.New("heap: unknown fit policy")
)

// Package region reserves and releases page-aligned, zero-filled memory
// regions outside the Go heap.
//
// On Unix the region is an anonymous private mapping (mmap/munmap). On
// Windows it is committed with VirtualAlloc and released with VirtualFree.
// Other platforms fall back to a page-aligned Go slice.
package region

import "errors"

var (
	// ErrInvalidSize is returned when a reservation size is not positive.
	ErrInvalidSize = errors.New("region: size must be positive")

	// ErrNotReserved is returned when releasing a region that did not come from Reserve.
	ErrNotReserved = errors.New("region: not a reserved region")
)

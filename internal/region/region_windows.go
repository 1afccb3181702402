//go:build windows

package region

import (
	"fmt"
	"os"
	"unsafe"

	"golang.org/x/sys/windows"
)

// PageSize returns the system page size.
func PageSize() int {
	return os.Getpagesize()
}

// Reserve commits size bytes of read-write memory. VirtualAlloc returns
// zero-filled pages aligned to the allocation granularity.
func Reserve(size int) ([]byte, error) {
	if size <= 0 {
		return nil, ErrInvalidSize
	}
	addr, err := windows.VirtualAlloc(0, uintptr(size), windows.MEM_COMMIT|windows.MEM_RESERVE, windows.PAGE_READWRITE)
	if err != nil {
		return nil, fmt.Errorf("region: VirtualAlloc %d bytes: %w", size, err)
	}
	return unsafe.Slice((*byte)(unsafe.Pointer(addr)), size), nil
}

// Release frees a region returned by Reserve.
func Release(data []byte) error {
	if len(data) == 0 {
		return ErrNotReserved
	}
	addr := uintptr(unsafe.Pointer(unsafe.SliceData(data)))
	return windows.VirtualFree(addr, 0, windows.MEM_RELEASE)
}

//go:build !unix && !windows

package region

import (
	"os"
	"unsafe"
)

// PageSize returns the system page size.
func PageSize() int {
	return os.Getpagesize()
}

// Reserve allocates a Go slice and trims it to a page-aligned window.
func Reserve(size int) ([]byte, error) {
	if size <= 0 {
		return nil, ErrInvalidSize
	}
	page := PageSize()
	raw := make([]byte, size+page)
	addr := uintptr(unsafe.Pointer(unsafe.SliceData(raw)))
	skip := int((uintptr(page) - addr%uintptr(page)) % uintptr(page))
	return raw[skip : skip+size : skip+size], nil
}

// Release drops the region. The garbage collector reclaims the memory.
func Release(data []byte) error {
	if len(data) == 0 {
		return ErrNotReserved
	}
	return nil
}

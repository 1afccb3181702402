//go:build unix

package region

import (
	"errors"
	"fmt"

	"golang.org/x/sys/unix"
)

// PageSize returns the system page size.
func PageSize() int {
	return unix.Getpagesize()
}

// Reserve maps size bytes of anonymous read-write memory. size should be a
// multiple of PageSize; the kernel rounds it up otherwise.
func Reserve(size int) ([]byte, error) {
	if size <= 0 {
		return nil, ErrInvalidSize
	}
	data, err := unix.Mmap(-1, 0, size, unix.PROT_READ|unix.PROT_WRITE, unix.MAP_ANON|unix.MAP_PRIVATE)
	if err != nil {
		return nil, fmt.Errorf("region: mmap %d bytes: %w", size, err)
	}
	return data, nil
}

// Release unmaps a region returned by Reserve.
func Release(data []byte) error {
	if len(data) == 0 {
		return ErrNotReserved
	}
	err := unix.Munmap(data)
	if errors.Is(err, unix.EINVAL) {
		return ErrNotReserved
	}
	return err
}

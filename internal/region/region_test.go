package region

import (
	"testing"
	"unsafe"

	"github.com/stretchr/testify/require"
)

func TestPageSize(t *testing.T) {
	page := PageSize()
	require.Positive(t, page)
	require.Zero(t, page&(page-1), "page size %d should be a power of two", page)
}

func TestReserveRelease(t *testing.T) {
	size := 4 * PageSize()
	data, err := Reserve(size)
	require.NoError(t, err)
	require.Len(t, data, size)

	addr := uintptr(unsafe.Pointer(unsafe.SliceData(data)))
	require.Zero(t, addr%uintptr(PageSize()), "region should be page aligned")

	for i, b := range data {
		if b != 0 {
			t.Fatalf("byte %d not zeroed: %#x", i, b)
		}
	}

	// Region must be writable end to end.
	data[0] = 0xAA
	data[size-1] = 0xBB
	require.Equal(t, byte(0xAA), data[0])
	require.Equal(t, byte(0xBB), data[size-1])

	require.NoError(t, Release(data))
}

func TestReserveInvalidSize(t *testing.T) {
	_, err := Reserve(0)
	require.ErrorIs(t, err, ErrInvalidSize)
	_, err = Reserve(-4096)
	require.ErrorIs(t, err, ErrInvalidSize)
}

func TestReleaseEmpty(t *testing.T) {
	require.ErrorIs(t, Release(nil), ErrNotReserved)
}

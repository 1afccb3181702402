package heap

import (
	"errors"
	"slices"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/joshuapare/tagheap/internal/layout"
)

const testPage = 4096

// sliceReserver hands out plain Go slices so tests do not depend on the OS
// page size.
type sliceReserver struct {
	page     int
	reserves int
	releases int
}

func (r *sliceReserver) Reserve(size int) ([]byte, error) {
	r.reserves++
	return make([]byte, size), nil
}

func (r *sliceReserver) Release([]byte) error {
	r.releases++
	return nil
}

func (r *sliceReserver) PageSize() int {
	if r.page == 0 {
		return testPage
	}
	return r.page
}

var errNoMemory = errors.New("no memory for you")

type failingReserver struct{ sliceReserver }

func (r *failingReserver) Reserve(int) ([]byte, error) {
	return nil, errNoMemory
}

// shortReserver returns one page less than asked.
type shortReserver struct{ sliceReserver }

func (r *shortReserver) Reserve(size int) ([]byte, error) {
	r.reserves++
	return make([]byte, size-testPage), nil
}

// newTestHeap builds an active heap over a Go slice and closes it at cleanup.
func newTestHeap(tb testing.TB, size int) (*Heap, *sliceReserver) {
	tb.Helper()
	res := &sliceReserver{}
	h := New(size, &Options{Reserver: res})
	require.NoError(tb, h.Err())
	require.True(tb, h.Active())
	tb.Cleanup(func() { _ = h.Close() })
	return h, res
}

// payloadFor returns the smallest request that produces a block of exactly
// blockSize bytes.
func payloadFor(tb testing.TB, blockSize int) int {
	tb.Helper()
	for n := 1; n <= blockSize; n++ {
		if got, _ := layout.BlockSize(n); got == blockSize {
			return n
		}
	}
	tb.Fatalf("no request size yields a %d-byte block", blockSize)
	return 0
}

// mustAlloc allocates a block of exactly blockSize bytes with FirstFit.
func mustAlloc(tb testing.TB, h *Heap, blockSize int) Ref {
	tb.Helper()
	ref, _, err := h.Alloc(payloadFor(tb, blockSize), FirstFit)
	require.NoError(tb, err)
	return ref
}

func freeList(h *Heap) []Block {
	return slices.Collect(h.FreeBlocks())
}

func allBlocks(h *Heap) []Block {
	return slices.Collect(h.Blocks())
}

func assertInvariants(tb testing.TB, h *Heap) {
	tb.Helper()
	require.NoError(tb, h.Check(), "arena invariants violated")
}

func offsetOf(ref Ref) int {
	return layout.BlockOf(int(ref))
}

// fitLayout builds the arena
//
//	[A 128][S1 64][B 256][S2 64][C 64][S3 64][tail 3456]
//
// and releases C, B and A in that order, leaving the free list
// A -> B -> C -> tail. The spacers keep the freed blocks from coalescing.
func fitLayout(t *testing.T) (h *Heap, a, b, c Ref) {
	t.Helper()
	h, _ = newTestHeap(t, testPage)

	a = mustAlloc(t, h, 128)
	mustAlloc(t, h, 64)
	b = mustAlloc(t, h, 256)
	mustAlloc(t, h, 64)
	c = mustAlloc(t, h, 64)
	mustAlloc(t, h, 64)

	require.NoError(t, h.Release(c))
	require.NoError(t, h.Release(b))
	require.NoError(t, h.Release(a))

	require.Equal(t, []Block{
		{Offset: 0, Size: 128},
		{Offset: 192, Size: 256},
		{Offset: 512, Size: 64},
		{Offset: 640, Size: testPage - 640},
	}, freeList(h))
	assertInvariants(t, h)
	return h, a, b, c
}

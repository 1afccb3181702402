package heap

import (
	"math"
	"math/rand/v2"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joshuapare/tagheap/internal/layout"
)

func TestRelease_NilIsNoop(t *testing.T) {
	h, _ := newTestHeap(t, testPage)

	require.NoError(t, h.Release(Nil))
	assert.Zero(t, h.Stats().ReleaseCalls)
	assert.Equal(t, []Block{{Offset: 0, Size: testPage}}, allBlocks(h))
}

func TestRelease_DoubleFree(t *testing.T) {
	h, _ := newTestHeap(t, testPage)
	ref, _, err := h.Alloc(16, FirstFit)
	require.NoError(t, err)
	require.NoError(t, h.Release(ref))

	before := allBlocks(h)
	err = h.Release(ref)

	require.ErrorIs(t, err, ErrDoubleFree)
	assert.Equal(t, before, allBlocks(h))
	assert.Equal(t, 1, h.Stats().ReleaseFailures)
	assertInvariants(t, h)

	// The refused release must not have corrupted the free list.
	again, _, err := h.Alloc(16, FirstFit)
	require.NoError(t, err)
	assert.Equal(t, ref, again)
	assertInvariants(t, h)
}

func TestRelease_DoubleFreeAfterBackwardMerge(t *testing.T) {
	h, _ := newTestHeap(t, testPage)
	a := mustAlloc(t, h, 64)
	b := mustAlloc(t, h, 64)
	mustAlloc(t, h, 64)

	require.NoError(t, h.Release(a))
	require.NoError(t, h.Release(b)) // merges into a

	require.ErrorIs(t, h.Release(b), ErrDoubleFree)
	assertInvariants(t, h)
}

func TestRelease_InvalidPointer(t *testing.T) {
	h, _ := newTestHeap(t, testPage)
	ref, _, err := h.Alloc(16, FirstFit)
	require.NoError(t, err)

	tests := []struct {
		name string
		ref  Ref
	}{
		{"before arena", Ref(layout.HeaderSize - Alignment)},
		{"negative", Ref(-64)},
		{"past arena", Ref(testPage + layout.HeaderSize)},
		{"far past arena", Ref(1 << 30)},
		{"misaligned", ref + 8},
		{"min int", Ref(math.MinInt)},
		{"max int", Ref(math.MaxInt)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			before := allBlocks(h)

			err := h.Release(tt.ref)

			require.ErrorIs(t, err, ErrInvalidPointer)
			assert.Equal(t, before, allBlocks(h))
			assertInvariants(t, h)
		})
	}

	require.NoError(t, h.Release(ref))
}

func TestRelease_CorruptedFooterIsRefused(t *testing.T) {
	h, _ := newTestHeap(t, testPage)
	ref, _, err := h.Alloc(16, FirstFit)
	require.NoError(t, err)

	// Simulate a payload overrun that reached the footer.
	layout.PutU64(h.data, layout.FooterOffset(0, 64), 128)

	require.ErrorIs(t, h.Release(ref), ErrInvalidPointer)
	require.Error(t, h.Check())
}

func TestRelease_CoalesceForward(t *testing.T) {
	h, _ := newTestHeap(t, testPage)
	a := mustAlloc(t, h, 64)
	b := mustAlloc(t, h, 128)

	require.NoError(t, h.Release(b))
	assert.Equal(t, []Block{
		{Offset: 0, Size: 64, Allocated: true},
		{Offset: 64, Size: testPage - 64},
	}, allBlocks(h))

	require.NoError(t, h.Release(a))
	assert.Equal(t, []Block{{Offset: 0, Size: testPage}}, allBlocks(h))
	assert.Equal(t, []Block{{Offset: 0, Size: testPage}}, freeList(h))

	s := h.Stats()
	assert.Equal(t, 2, s.CoalesceForward)
	assert.Zero(t, s.CoalesceBackward)
	assertInvariants(t, h)
}

func TestRelease_CoalesceBackward(t *testing.T) {
	h, _ := newTestHeap(t, testPage)
	a := mustAlloc(t, h, 64)
	b := mustAlloc(t, h, 64)
	mustAlloc(t, h, 64)

	require.NoError(t, h.Release(a))
	require.NoError(t, h.Release(b))

	assert.Equal(t, Block{Offset: 0, Size: 128}, allBlocks(h)[0])
	assert.Equal(t, []Block{
		{Offset: 0, Size: 128},
		{Offset: 192, Size: testPage - 192},
	}, freeList(h))

	s := h.Stats()
	assert.Equal(t, 1, s.CoalesceBackward)
	assert.Zero(t, s.CoalesceForward)
	assertInvariants(t, h)
}

func TestRelease_CoalesceBothSides(t *testing.T) {
	h, _ := newTestHeap(t, testPage)
	a := mustAlloc(t, h, 64)
	b := mustAlloc(t, h, 128)
	c := mustAlloc(t, h, 64)
	mustAlloc(t, h, 64)

	require.NoError(t, h.Release(a))
	require.NoError(t, h.Release(c))
	require.NoError(t, h.Release(b))

	assert.Equal(t, []Block{
		{Offset: 0, Size: 256},
		{Offset: 256, Size: 64, Allocated: true},
		{Offset: 320, Size: testPage - 320},
	}, allBlocks(h))
	assert.Len(t, freeList(h), 2)

	s := h.Stats()
	assert.Equal(t, 1, s.CoalesceForward)
	assert.Equal(t, 1, s.CoalesceBackward)
	assertInvariants(t, h)
}

func TestRelease_NoAdjacentFreeBlocks(t *testing.T) {
	h, _ := newTestHeap(t, 4*testPage)
	var refs []Ref
	for {
		ref, _, err := h.Alloc(48, FirstFit)
		if err != nil {
			break
		}
		refs = append(refs, ref)
	}

	// Release every other block, then the rest.
	for i := 0; i < len(refs); i += 2 {
		require.NoError(t, h.Release(refs[i]))
	}
	assertInvariants(t, h)
	for i := 1; i < len(refs); i += 2 {
		require.NoError(t, h.Release(refs[i]))
		assertInvariants(t, h)
	}

	assert.Equal(t, []Block{{Offset: 0, Size: 4 * testPage}}, allBlocks(h))
}

// TestFullCycle fills the arena, drains it in a shuffled order and expects a
// single free block covering the whole arena again.
func TestFullCycle(t *testing.T) {
	for _, p := range []Policy{FirstFit, BestFit} {
		t.Run(p.String(), func(t *testing.T) {
			h, _ := newTestHeap(t, 8*testPage)
			rng := rand.New(rand.NewPCG(7, 11))

			for round := range 3 {
				var refs []Ref
				for {
					ref, _, err := h.Alloc(1+rng.IntN(400), p)
					if err != nil {
						require.ErrorIs(t, err, ErrOutOfSpace)
						break
					}
					refs = append(refs, ref)
				}
				require.NotEmpty(t, refs)

				rng.Shuffle(len(refs), func(i, j int) { refs[i], refs[j] = refs[j], refs[i] })
				for _, ref := range refs {
					require.NoError(t, h.Release(ref))
				}

				require.Equal(t, []Block{{Offset: 0, Size: 8 * testPage}}, allBlocks(h), "round %d", round)
				require.Equal(t, []Block{{Offset: 0, Size: 8 * testPage}}, freeList(h), "round %d", round)
				assertInvariants(t, h)
			}
		})
	}
}

// TestRandomOperations interleaves allocations and releases with a fixed seed
// and checks the arena after every step. Each live payload is filled with a
// byte derived from its reference so clobbering shows up on release.
func TestRandomOperations(t *testing.T) {
	for _, p := range []Policy{FirstFit, BestFit} {
		t.Run(p.String(), func(t *testing.T) {
			h, _ := newTestHeap(t, 4*testPage)
			rng := rand.New(rand.NewPCG(42, 1))
			live := map[Ref][]byte{}

			steps := 2000
			if testing.Short() {
				steps = 300
			}

			for step := range steps {
				if len(live) == 0 || rng.IntN(100) < 55 {
					n := 1 + rng.IntN(512)
					ref, buf, err := h.Alloc(n, p)
					if err != nil {
						require.ErrorIs(t, err, ErrOutOfSpace, "step %d", step)
						continue
					}
					require.NotContains(t, live, ref, "step %d: ref handed out twice", step)
					fill := byte(ref >> 4)
					for i := range buf {
						buf[i] = fill
					}
					live[ref] = buf
				} else {
					var victim Ref
					for ref := range live {
						victim = ref
						break
					}
					buf := live[victim]
					fill := byte(victim >> 4)
					for i, c := range buf {
						require.Equal(t, fill, c, "step %d: payload %d byte %d clobbered", step, victim, i)
					}
					require.NoError(t, h.Release(victim), "step %d", step)
					delete(live, victim)
				}
				assertInvariants(t, h)
			}

			for ref := range live {
				require.NoError(t, h.Release(ref))
			}
			require.Equal(t, []Block{{Offset: 0, Size: 4 * testPage}}, allBlocks(h))

			s := h.Stats()
			assert.Equal(t, s.BytesAllocated, s.BytesReleased)
			assert.Zero(t, s.ReleaseFailures)
		})
	}
}

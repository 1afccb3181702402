package printer

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/text/language"

	"github.com/joshuapare/tagheap/heap"
)

type memReserver struct{}

func (memReserver) Reserve(size int) ([]byte, error) { return make([]byte, size), nil }
func (memReserver) Release([]byte) error             { return nil }
func (memReserver) PageSize() int                    { return 4096 }

func newHeap(t *testing.T) (*heap.Heap, heap.Ref) {
	t.Helper()
	h := heap.New(8192, &heap.Options{Reserver: memReserver{}})
	require.NoError(t, h.Err())
	t.Cleanup(func() { _ = h.Close() })

	ref, _, err := h.Alloc(100, heap.FirstFit)
	require.NoError(t, err)
	return h, ref
}

func TestPrintBlocks_Text(t *testing.T) {
	h, _ := newHeap(t)
	var buf bytes.Buffer

	p := New(&buf, DefaultOptions())
	require.NoError(t, p.PrintBlocks(h))

	assert.Equal(t,
		"Block 0x000000 size: 160 ALLOCATED\n"+
			"Block 0x0000a0 size: 8,032 FREE\n"+
			"2 blocks, 160 bytes allocated, 8,032 bytes free, capacity 8,192\n",
		buf.String())
}

func TestPrintBlocks_TextNoSummary(t *testing.T) {
	h, _ := newHeap(t)
	var buf bytes.Buffer

	opts := DefaultOptions()
	opts.Summary = false
	require.NoError(t, New(&buf, opts).PrintBlocks(h))

	assert.NotContains(t, buf.String(), "capacity")
}

func TestPrintBlocks_Locale(t *testing.T) {
	h, _ := newHeap(t)
	var buf bytes.Buffer

	opts := DefaultOptions()
	opts.Language = language.German
	require.NoError(t, New(&buf, opts).PrintBlocks(h))

	assert.Contains(t, buf.String(), "size: 8.032 FREE")
}

func TestPrintBlocks_JSON(t *testing.T) {
	h, _ := newHeap(t)
	var buf bytes.Buffer

	require.NoError(t, New(&buf, Options{Format: FormatJSON}).PrintBlocks(h))

	var got jsonArena
	require.NoError(t, json.Unmarshal(buf.Bytes(), &got))
	assert.Equal(t, jsonArena{
		Capacity: 8192,
		Blocks: []heap.Block{
			{Offset: 0, Size: 160, Allocated: true},
			{Offset: 160, Size: 8032, Allocated: false},
		},
	}, got)
}

func TestPrintBlocks_Locked(t *testing.T) {
	h, _ := newHeap(t)
	l := heap.NewLocked(h)
	var buf bytes.Buffer

	require.NoError(t, New(&buf, DefaultOptions()).PrintBlocks(l))
	assert.Contains(t, buf.String(), "ALLOCATED")
}

func TestPrintFreeList(t *testing.T) {
	h, ref := newHeap(t)
	var buf bytes.Buffer
	p := New(&buf, DefaultOptions())

	require.NoError(t, p.PrintFreeList(h.FreeBlocks()))
	assert.Equal(t, "#0 0x0000a0 size: 8,032\n", buf.String())

	// Fill the arena so the list is empty.
	_, _, err := h.Alloc(8032-48, heap.FirstFit)
	require.NoError(t, err)
	buf.Reset()
	require.NoError(t, p.PrintFreeList(h.FreeBlocks()))
	assert.Equal(t, "(free list empty)\n", buf.String())

	require.NoError(t, h.Release(ref))
}

func TestPrintFreeList_JSONEmpty(t *testing.T) {
	h, _ := newHeap(t)
	_, _, err := h.Alloc(8032-48, heap.FirstFit)
	require.NoError(t, err)
	var buf bytes.Buffer

	require.NoError(t, New(&buf, Options{Format: FormatJSON}).PrintFreeList(h.FreeBlocks()))
	assert.JSONEq(t, "[]", buf.String())
}

func TestPrintStats(t *testing.T) {
	h, _ := newHeap(t)

	t.Run("text", func(t *testing.T) {
		var buf bytes.Buffer
		require.NoError(t, New(&buf, DefaultOptions()).PrintStats(h.Stats()))

		out := buf.String()
		assert.Contains(t, out, "Capacity:            8,192\n")
		assert.Contains(t, out, "Allocated blocks:    1\n")
		assert.Contains(t, out, "Splits:              1\n")
		assert.Contains(t, out, "Fragmentation:       0.0%\n")
	})

	t.Run("json", func(t *testing.T) {
		var buf bytes.Buffer
		require.NoError(t, New(&buf, Options{Format: FormatJSON}).PrintStats(h.Stats()))

		var got map[string]any
		require.NoError(t, json.Unmarshal(buf.Bytes(), &got))
		assert.InDelta(t, 8192, got["capacity"], 0)
		assert.InDelta(t, 1, got["alloc_calls"], 0)
		assert.InDelta(t, 160, got["bytes_allocated"], 0)
	})
}

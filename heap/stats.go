package heap

// Stats is a snapshot of allocator activity and arena fragmentation.
type Stats struct {
	Capacity int `json:"capacity"` // arena size in bytes

	AllocCalls       int   `json:"alloc_calls"`       // Alloc calls that reached the fit search
	AllocFailures    int   `json:"alloc_failures"`    // Alloc calls that ended in ErrOutOfSpace
	ReleaseCalls     int   `json:"release_calls"`     // Release calls with a non-nil reference
	ReleaseFailures  int   `json:"release_failures"`  // Release calls refused as invalid or double free
	Splits           int   `json:"splits"`            // blocks split during Alloc
	CoalesceForward  int   `json:"coalesce_forward"`  // merges with the following block
	CoalesceBackward int   `json:"coalesce_backward"` // merges with the preceding block
	BytesAllocated   int64 `json:"bytes_allocated"`   // block bytes handed out, overhead included
	BytesReleased    int64 `json:"bytes_released"`    // block bytes returned, overhead included

	AllocatedBlocks int `json:"allocated_blocks"` // blocks currently allocated
	AllocatedBytes  int `json:"allocated_bytes"`  // bytes in allocated blocks, overhead included
	FreeBlocks      int `json:"free_blocks"`      // blocks currently on the free list
	FreeBytes       int `json:"free_bytes"`       // bytes in free blocks
	LargestFree     int `json:"largest_free"`     // size of the largest free block

	// Fragmentation is the external fragmentation ratio 1 - LargestFree/FreeBytes:
	// 0 when all free space is one block, approaching 1 as it scatters.
	Fragmentation float64 `json:"fragmentation"`
}

// Stats walks the arena and returns the current statistics.
func (h *Heap) Stats() Stats {
	s := Stats{
		Capacity:         h.Capacity(),
		AllocCalls:       h.stats.allocCalls,
		AllocFailures:    h.stats.allocFailures,
		ReleaseCalls:     h.stats.releaseCalls,
		ReleaseFailures:  h.stats.releaseFailures,
		Splits:           h.stats.splits,
		CoalesceForward:  h.stats.coalesceForward,
		CoalesceBackward: h.stats.coalesceBackward,
		BytesAllocated:   h.stats.bytesAllocated,
		BytesReleased:    h.stats.bytesReleased,
	}
	for b := range h.Blocks() {
		if b.Allocated {
			s.AllocatedBlocks++
			s.AllocatedBytes += b.Size
			continue
		}
		s.FreeBlocks++
		s.FreeBytes += b.Size
		s.LargestFree = max(s.LargestFree, b.Size)
	}
	if s.FreeBytes > 0 {
		s.Fragmentation = 1 - float64(s.LargestFree)/float64(s.FreeBytes)
	}
	return s
}

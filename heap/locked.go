package heap

import (
	"iter"
	"slices"
	"sync"
)

// Locked serializes access to a Heap with a mutex so several goroutines can
// share one arena.
type Locked struct {
	mu sync.Mutex
	h  *Heap
}

// NewLocked wraps h. The caller must not use h directly afterwards.
func NewLocked(h *Heap) *Locked {
	return &Locked{h: h}
}

// Alloc is Heap.Alloc under the lock.
func (l *Locked) Alloc(n int, p Policy) (Ref, []byte, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.h.Alloc(n, p)
}

// Release is Heap.Release under the lock.
func (l *Locked) Release(ref Ref) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.h.Release(ref)
}

// Stats is Heap.Stats under the lock.
func (l *Locked) Stats() Stats {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.h.Stats()
}

// Blocks collects a consistent snapshot of the arena's blocks.
func (l *Locked) Blocks() iter.Seq[Block] {
	l.mu.Lock()
	snapshot := slices.Collect(l.h.Blocks())
	l.mu.Unlock()
	return slices.Values(snapshot)
}

// Active is Heap.Active under the lock.
func (l *Locked) Active() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.h.Active()
}

// Capacity is Heap.Capacity under the lock.
func (l *Locked) Capacity() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.h.Capacity()
}

// Do runs fn with exclusive access to the underlying heap.
func (l *Locked) Do(fn func(h *Heap) error) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	return fn(l.h)
}

// Close releases the underlying arena.
func (l *Locked) Close() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.h.Close()
}

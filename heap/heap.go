package heap

import (
	"fmt"
	"log/slog"

	"github.com/joshuapare/tagheap/internal/layout"
)

// noCopy makes `go vet` flag value copies of Heap. A copied Heap would
// release the same region twice.
type noCopy struct{}

func (*noCopy) Lock()   {}
func (*noCopy) Unlock() {}

// Heap is an allocator over a single fixed-size arena.
//
// A Heap exclusively owns its arena. It must not be copied; use Move or
// Assign to transfer ownership, and Close to release the region.
//
// Heap is not safe for concurrent use. Wrap it in Locked or give each
// goroutine its own Heap.
type Heap struct {
	_ noCopy

	data     []byte // arena; nil while inert
	freeHead int    // offset of the first free block, or layout.Nil

	res    Reserver
	log    *slog.Logger
	policy Policy
	err    error // construction failure, if any

	stats counters
}

// counters are the running totals reported by Stats.
type counters struct {
	allocCalls       int
	allocFailures    int
	releaseCalls     int
	releaseFailures  int
	splits           int
	coalesceForward  int
	coalesceBackward int
	bytesAllocated   int64
	bytesReleased    int64
}

// New builds a heap over a freshly reserved arena of at least size bytes.
//
// The size is rounded up to a multiple of the reserver's page size. If size is
// below MinBlockSize or the reservation fails, New still returns a usable
// value, but it is inert: Active reports false and Err reports the cause.
// New never panics.
func New(size int, opts *Options) *Heap {
	o := opts.withDefaults()
	h := &Heap{
		freeHead: layout.Nil,
		res:      o.Reserver,
		log:      o.Logger,
		policy:   o.DefaultPolicy,
	}

	if size < layout.MinBlockSize {
		h.fail(fmt.Errorf("%w: size %d is below the minimum block size %d",
			ErrConstruction, size, layout.MinBlockSize))
		return h
	}

	page := h.res.PageSize()
	if page <= 0 || page%layout.Align != 0 {
		page = defaultPageSize
	}
	capacity, ok := layout.RoundTo(size, page)
	if !ok {
		h.fail(fmt.Errorf("%w: size %d overflows when rounded to %d-byte pages",
			ErrConstruction, size, page))
		return h
	}

	data, err := h.res.Reserve(capacity)
	if err != nil {
		h.fail(fmt.Errorf("%w: reserve %d bytes: %w", ErrConstruction, capacity, err))
		return h
	}
	if len(data) != capacity {
		relErr := h.res.Release(data)
		h.fail(fmt.Errorf("%w: reserver returned %d bytes, want %d (release: %v)",
			ErrConstruction, len(data), capacity, relErr))
		return h
	}

	// The whole arena starts as one free block.
	h.data = data
	layout.InitFree(data, 0, capacity)
	h.pushFree(0)
	return h
}

func (h *Heap) fail(err error) {
	h.err = err
	h.logger().Debug("heap construction failed", "err", err)
}

// logger tolerates zero-value and moved-into heaps that never saw New.
func (h *Heap) logger() *slog.Logger {
	if h.log == nil {
		return defaultLogger()
	}
	return h.log
}

// Active reports whether the heap owns an arena.
func (h *Heap) Active() bool {
	return h != nil && h.data != nil
}

// Capacity returns the arena size in bytes, or 0 for an inert heap.
func (h *Heap) Capacity() int {
	if h == nil {
		return 0
	}
	return len(h.data)
}

// Err returns the construction error of an inert heap, or nil.
func (h *Heap) Err() error {
	if h == nil {
		return nil
	}
	return h.err
}

// Close releases the arena. It is idempotent, and a no-op on inert and
// moved-from heaps. Payload slices obtained from the heap must not be used
// afterwards.
func (h *Heap) Close() error {
	if h == nil || h.data == nil {
		return nil
	}
	data := h.data
	h.data = nil
	h.freeHead = layout.Nil
	return h.res.Release(data)
}

// Move transfers ownership of the arena to a new Heap and leaves h inert.
// References and payload slices stay valid against the returned Heap.
// Moving a nil Heap returns an inert one.
func (h *Heap) Move() *Heap {
	dst := &Heap{freeHead: layout.Nil}
	if h != nil {
		dst.takeFrom(h)
	}
	return dst
}

// Assign releases h's own arena and takes ownership of src's, leaving src
// inert. Assigning a heap to itself does nothing. The returned error comes
// from releasing h's previous arena; the transfer happens regardless.
// A nil h cannot take ownership: it returns ErrInactive and src is untouched.
func (h *Heap) Assign(src *Heap) error {
	if h == src {
		return nil
	}
	if h == nil {
		return ErrInactive
	}
	err := h.Close()
	if src == nil {
		return err
	}
	h.takeFrom(src)
	return err
}

func (h *Heap) takeFrom(src *Heap) {
	h.data = src.data
	h.freeHead = src.freeHead
	h.res = src.res
	h.log = src.log
	h.policy = src.policy
	h.err = src.err
	h.stats = src.stats

	src.data = nil
	src.freeHead = layout.Nil
	src.err = nil
	src.stats = counters{}
}

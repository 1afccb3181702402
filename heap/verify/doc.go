// Package verify validates the boundary-tag structure of a heap arena.
//
// # Overview
//
// The checks walk raw arena bytes, so they work on any arena regardless of
// how it was produced. They are used by heap.Check, by tests after every
// mutation, and by the heapctl trace command.
//
// Validation categories:
//   - Block chain: alignment, minimum size, bounds, header/footer agreement,
//     sizes summing to the arena length, no two adjacent free blocks
//   - Free list: links in bounds, members free, back links consistent, no
//     duplicates, same population as the free blocks of the chain
//
// # Quick Start
//
//	if err := verify.AllInvariants(data, freeHead); err != nil {
//	    var verr *verify.ValidationError
//	    if errors.As(err, &verr) {
//	        fmt.Printf("%s at 0x%X: %s\n", verr.Type, verr.Offset, verr.Message)
//	    }
//	}
//
// freeHead is the offset of the first free block, or -1 for an empty list.
package verify

package layout

import "math"

// AlignUp returns n rounded up to the next multiple of Align.
//
// Example:
//
//	AlignUp(1)  = 16
//	AlignUp(16) = 16
//	AlignUp(17) = 32
func AlignUp(n int) int {
	return (n + AlignMask) &^ AlignMask
}

// IsAligned reports whether n is a multiple of Align.
func IsAligned(n int) bool {
	return n&AlignMask == 0
}

// RoundTo returns n rounded up to a multiple of unit. ok is false when unit is
// not positive or the result would overflow int.
func RoundTo(n, unit int) (int, bool) {
	if unit <= 0 || n < 0 {
		return 0, false
	}
	rem := n % unit
	if rem == 0 {
		return n, true
	}
	if n > math.MaxInt-(unit-rem) {
		return 0, false
	}
	return n + unit - rem, true
}

// BlockSize returns the total block size needed to host payload bytes.
// The payload is aligned first, the header and footer are added, and the total
// is aligned again so the following block's header starts aligned.
// ok is false when payload is not positive or the size would overflow.
func BlockSize(payload int) (int, bool) {
	if payload <= 0 || payload > math.MaxInt-2*Align-Overhead {
		return 0, false
	}
	return AlignUp(AlignUp(payload) + Overhead), true
}

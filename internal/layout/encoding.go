package layout

import "encoding/binary"

// PutU64 writes v at off in little-endian order.
func PutU64(b []byte, off int, v uint64) {
	binary.LittleEndian.PutUint64(b[off:off+8], v)
}

// ReadU64 reads a little-endian uint64 at off.
func ReadU64(b []byte, off int) uint64 {
	return binary.LittleEndian.Uint64(b[off : off+8])
}

// readInt converts a stored word to int. Values that do not fit come back as
// -1 so callers' range checks reject them.
func readInt(b []byte, off int) int {
	v := ReadU64(b, off)
	if v > uint64(maxInt) {
		return -1
	}
	return int(v)
}

const maxInt = int(^uint(0) >> 1)

func encodeLink(off int) uint64 {
	if off < 0 {
		return NoBlock
	}
	return uint64(off)
}

func decodeLink(v uint64) int {
	if v == NoBlock || v > uint64(maxInt) {
		return Nil
	}
	return int(v)
}

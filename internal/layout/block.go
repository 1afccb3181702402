package layout

// Accessors for a block at offset off inside arena bytes b. Callers are
// responsible for bounds: off+HeaderSize must lie within b.

// Size returns the block size recorded in the header, or -1 if the stored
// value cannot be a size.
func Size(b []byte, off int) int {
	return readInt(b, off+SizeOffset)
}

// SetSize records size in the header. The footer is not touched.
func SetSize(b []byte, off, size int) {
	PutU64(b, off+SizeOffset, uint64(size))
}

// Allocated reports whether the block is marked allocated.
func Allocated(b []byte, off int) bool {
	return ReadU64(b, off+FlagsOffset)&FlagAllocated != 0
}

// SetAllocated flips the allocation flag.
func SetAllocated(b []byte, off int, allocated bool) {
	flags := ReadU64(b, off+FlagsOffset) &^ FlagAllocated
	if allocated {
		flags |= FlagAllocated
	}
	PutU64(b, off+FlagsOffset, flags)
}

// PrevFree returns the free-list back link, or Nil.
func PrevFree(b []byte, off int) int {
	return decodeLink(ReadU64(b, off+PrevOffset))
}

// NextFree returns the free-list forward link, or Nil.
func NextFree(b []byte, off int) int {
	return decodeLink(ReadU64(b, off+NextOffset))
}

// SetPrevFree stores the free-list back link. Pass Nil to clear it.
func SetPrevFree(b []byte, off, prev int) {
	PutU64(b, off+PrevOffset, encodeLink(prev))
}

// SetNextFree stores the free-list forward link. Pass Nil to clear it.
func SetNextFree(b []byte, off, next int) {
	PutU64(b, off+NextOffset, encodeLink(next))
}

// FooterOffset returns the offset of the footer of a block of the given size.
func FooterOffset(off, size int) int {
	return off + size - FooterSize
}

// Footer returns the size stored in the block's footer. The header size locates it.
func Footer(b []byte, off int) int {
	return readInt(b, FooterOffset(off, Size(b, off)))
}

// WriteFooter copies the header size into the footer.
func WriteFooter(b []byte, off int) {
	size := Size(b, off)
	PutU64(b, FooterOffset(off, size), uint64(size))
}

// FooterBefore returns the size recorded in the footer that ends right before
// off, i.e. the size of the previous adjacent block. off must be >= FooterSize.
func FooterBefore(b []byte, off int) int {
	return readInt(b, off-FooterSize)
}

// InitFree writes a fresh free block of the given size at off, footer included.
func InitFree(b []byte, off, size int) {
	SetSize(b, off, size)
	PutU64(b, off+FlagsOffset, 0)
	SetPrevFree(b, off, Nil)
	SetNextFree(b, off, Nil)
	WriteFooter(b, off)
}

// Payload returns the payload offset of the block at off.
func Payload(off int) int {
	return off + HeaderSize
}

// BlockOf returns the block offset owning the payload at p.
func BlockOf(p int) int {
	return p - HeaderSize
}

// PayloadCap returns the usable payload bytes in a block of the given size.
func PayloadCap(size int) int {
	return size - Overhead
}

// Package geometry maps string byte lengths onto 8-byte dictionary slots and
// very-long-string (VLS) segments.
//
// A string of up to 255 bytes occupies one head slot plus continuation slots,
// one slot per started 8 bytes. Longer strings are split into segments: every
// non-final segment is declared with width 255 and therefore occupies 32 slots
// (256 bytes), while the segment count is derived from a 252-byte divisor. The
// 256th byte of every 32-slot segment is structural padding. Both the read and
// the write path rely on these functions, so they must stay bit-exact.
//
// All functions are pure. They panic on negative input, which always
// indicates a programming error in the caller.
package geometry

import "github.com/arloliu/savcodec/format"

const (
	// MaxSegmentWidth is the largest declared width of a single string slot group.
	MaxSegmentWidth = 255
	// SegmentDivisor is the number of bytes each non-final VLS segment accounts for.
	SegmentDivisor = 252
	// SegmentSlots is the slot count of a non-final VLS segment, ContinuationBlocks(255).
	SegmentSlots = 32
	// SegmentBytes is the physical size of a non-final VLS segment.
	SegmentBytes = SegmentSlots * format.ElementSize
	// PadOffset is the in-segment offset of the structural padding byte.
	PadOffset = SegmentBytes - 1
)

func mustNotBeNegative(length int) {
	if length < 0 {
		panic("geometry: negative string length")
	}
}

// ContinuationBlocks returns the number of 8-byte slots, head included, needed
// by an ordinary string of length bytes.
func ContinuationBlocks(length int) int {
	mustNotBeNegative(length)

	return (length + format.ElementSize - 1) / format.ElementSize
}

// VLSSegmentCount returns 1 for ordinary strings and ceil(length/252) for very long strings.
func VLSSegmentCount(length int) int {
	mustNotBeNegative(length)
	if length <= MaxSegmentWidth {
		return 1
	}

	return (length + SegmentDivisor - 1) / SegmentDivisor
}

// FinalSegmentLength returns the declared width of the last of segments segments.
func FinalSegmentLength(length, segments int) int {
	mustNotBeNegative(length)
	if segments < 1 {
		panic("geometry: segment count must be positive")
	}

	return length - (segments-1)*SegmentDivisor
}

// VLSTotalSlotCount returns the number of dictionary slots occupied by a string
// of length bytes across all of its segments.
func VLSTotalSlotCount(length int) int {
	segments := VLSSegmentCount(length)

	return (segments-1)*SegmentSlots + ContinuationBlocks(FinalSegmentLength(length, segments))
}

// SegmentWidths returns the declared head width of every segment of a string
// of length bytes, 255 for all but the last.
func SegmentWidths(length int) []int {
	segments := VLSSegmentCount(length)
	widths := make([]int, segments)
	for i := range segments - 1 {
		widths[i] = MaxSegmentWidth
	}
	widths[segments-1] = FinalSegmentLength(length, segments)

	return widths
}

// ByteBudget returns the number of physical bytes written for a string of
// length bytes, padding bytes included.
func ByteBudget(length int) int {
	return VLSTotalSlotCount(length) * format.ElementSize
}

// ContentCapacity returns how many bytes of string content fit into the byte
// budget of a string of length bytes: the budget minus the padding byte of
// every segment that spans a full 32 slots.
func ContentCapacity(length int) int {
	budget := ByteBudget(length)

	return budget - budget/SegmentBytes
}

// IsPadPosition reports whether the byte at offset pos of a string's physical
// image is a structural padding byte. Every segment that reaches 32 slots ends
// with one, whether or not the string is a very long string.
func IsPadPosition(pos int) bool {
	return pos >= 0 && pos%SegmentBytes == PadOffset
}

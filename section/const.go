package section

// ZSAV record sizes.
const (
	ZHeaderSize       = 24       // fixed size of the zlib data header
	ZTrailerFixedSize = 24       // fixed part of the zlib data trailer
	ZBlockEntrySize   = 24       // size of one block entry in the trailer
	DefaultZBlockSize = 0x3FF000 // block size written by every known producer
)

// Spool record sizes and identifiers.
const (
	SpoolHeaderSize = 32 // fixed size of the spool header
	FrameHeaderSize = 8  // size of a frame header
	SpoolVersion    = 1  // current spool format version

	SpoolFlagBigEndian = 0x01 // numeric elements are big-endian
	SpoolFlagRaw       = 0x02 // frames hold uncompressed elements instead of byte-code data
)

// SpoolMagic identifies a case spool.
var SpoolMagic = [8]byte{'S', 'A', 'V', 'S', 'P', 'O', 'O', 'L'}

// Package section defines the fixed-size binary records that frame case data:
// the ZSAV zlib data header and trailer, and the case spool header and frame
// headers.
//
// This package handles binary serialization/deserialization only. Readers and
// writers that stream case data through these records live in packages zdata
// and spool.
//
// # ZSAV Layout
//
// A ZSAV file (header compression 2) stores the byte-code compressed case
// stream in independently inflatable zlib blocks:
//
//	┌─────────────────────────────────────────────────────────┐
//	│ ZHeader (24 bytes)                                      │
//	│  - HeaderOffset (int64): file offset of this record      │
//	│  - TrailerOffset (int64): file offset of the ZTrailer    │
//	│  - TrailerLength (int64): 24 × (blocks + 1)              │
//	├─────────────────────────────────────────────────────────┤
//	│ Block 1..N: zlib streams                                │
//	│  - Each inflates to at most BlockSize bytes              │
//	├─────────────────────────────────────────────────────────┤
//	│ ZTrailer (24 bytes + 24 bytes per block)                │
//	│  - Bias (int64): the compression bias, negated           │
//	│  - Zero (int64)                                          │
//	│  - BlockSize (int32), BlockCount (int32)                 │
//	│  - Per block: uncompressed offset (int64), compressed    │
//	│    offset (int64), uncompressed size (int32),            │
//	│    compressed size (int32)                               │
//	└─────────────────────────────────────────────────────────┘
//
// Uncompressed offsets are virtual: the first block's uncompressed offset is
// the ZHeader offset, and every block continues where the previous one ended.
// Compressed offsets are real file offsets, the first being right after the
// ZHeader. All integers use the byte order of the SAV file.
//
// # Spool Layout
//
// A case spool is always little-endian:
//
//	Bytes  | Field        | Type    | Description
//	-------|--------------|---------|----------------------------------
//	0-7    | Magic        | [8]byte | "SAVSPOOL"
//	8-9    | Version      | uint16  | SpoolVersion
//	10     | Codec        | uint8   | format.CompressionType of frames
//	11     | Flags        | uint8   | SpoolFlagBigEndian, SpoolFlagRaw
//	12-15  | Reserved     | uint32  | zero
//	16-23  | Fingerprint  | uint64  | dictionary layout fingerprint
//	24-31  | Bias         | float64 | compression bias
//
// The header is followed by frames, each a FrameHeader (uint32 raw length,
// uint32 compressed length) and the compressed payload. A frame with both
// lengths zero ends the spool and is followed by the int64 case count.
package section

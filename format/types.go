package format

import "math"

type (
	// CaseCompression is the compression field of the SAV file header.
	CaseCompression int32
	// CompressionType identifies a block codec used by the zlib data layer and the case spool.
	CompressionType uint8
)

const (
	CaseUncompressed CaseCompression = 0 // CaseUncompressed stores raw 8-byte elements.
	CaseBytecode     CaseCompression = 1 // CaseBytecode stores the byte-code compressed stream.
	CaseZlib         CaseCompression = 2 // CaseZlib stores the byte-code stream inside zlib blocks (ZSAV).

	CompressionNone CompressionType = 0x1 // CompressionNone represents no compression.
	CompressionZstd CompressionType = 0x2 // CompressionZstd represents Zstandard compression.
	CompressionS2   CompressionType = 0x3 // CompressionS2 represents S2 compression.
	CompressionLZ4  CompressionType = 0x4 // CompressionLZ4 represents LZ4 compression.
	CompressionZlib CompressionType = 0x5 // CompressionZlib represents zlib (RFC 1950) compression.
)

// Control codes of the byte-code compression scheme.
const (
	CodePadding   byte = 0   // CodePadding produces no element.
	CodeMaxNumber byte = 251 // CodeMaxNumber is the largest code carrying a biased integer.
	CodeEndOfData byte = 252 // CodeEndOfData terminates the case stream.
	CodeLiteral   byte = 253 // CodeLiteral is followed by 8 raw bytes after the control block.
	CodeSpaces    byte = 254 // CodeSpaces is an element of eight ASCII spaces.
	CodeSysMiss   byte = 255 // CodeSysMiss is the system-missing element.
)

const (
	// ElementSize is the width in bytes of one dictionary slot and of one case element.
	ElementSize = 8
	// ControlBlockSize is the number of control codes in one compression block.
	ControlBlockSize = 8
	// DefaultBias is the compression bias written by every known producer.
	DefaultBias = 100.0
	// Space is the padding byte of string elements.
	Space byte = 0x20
)

// SysMissing is the system-missing sentinel, -DBL_MAX (bit pattern 0xFFEFFFFFFFFFFFFF).
var SysMissing = -math.MaxFloat64

// SpaceElement is an element made of eight ASCII spaces.
var SpaceElement = Element{Space, Space, Space, Space, Space, Space, Space, Space}

// Element is one opaque 8-byte case value: a double or raw string bytes.
type Element [ElementSize]byte

// IsSpaces reports whether all bytes of the element are ASCII spaces.
func (e Element) IsSpaces() bool {
	return e == SpaceElement
}

func (c CaseCompression) String() string {
	switch c {
	case CaseUncompressed:
		return "Uncompressed"
	case CaseBytecode:
		return "Bytecode"
	case CaseZlib:
		return "Zlib"
	default:
		return "Unknown"
	}
}

func (c CompressionType) String() string {
	switch c {
	case CompressionNone:
		return "None"
	case CompressionZstd:
		return "Zstd"
	case CompressionS2:
		return "S2"
	case CompressionLZ4:
		return "LZ4"
	case CompressionZlib:
		return "Zlib"
	default:
		return "Unknown"
	}
}

// IsValid reports whether c is a case compression this module can read and write.
func (c CaseCompression) IsValid() bool {
	return c >= CaseUncompressed && c <= CaseZlib
}

// IsValid reports whether c names a known block codec.
func (c CompressionType) IsValid() bool {
	return c >= CompressionNone && c <= CompressionZlib
}

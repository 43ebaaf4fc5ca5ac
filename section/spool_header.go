package section

import (
	"encoding/binary"
	"fmt"
	"math"

	"github.com/arloliu/savcodec/errs"
	"github.com/arloliu/savcodec/format"
)

// SpoolHeader is the fixed-size record that starts a case spool.
type SpoolHeader struct {
	Version     uint16
	Codec       format.CompressionType
	Flags       uint8
	Fingerprint uint64
	Bias        float64
}

// NewSpoolHeader creates a header for the current spool version.
func NewSpoolHeader(codec format.CompressionType, fingerprint uint64, bias float64) SpoolHeader {
	return SpoolHeader{
		Version:     SpoolVersion,
		Codec:       codec,
		Fingerprint: fingerprint,
		Bias:        bias,
	}
}

// IsBigEndian reports whether numeric elements in the spool are big-endian.
func (h *SpoolHeader) IsBigEndian() bool {
	return h.Flags&SpoolFlagBigEndian != 0
}

// IsRaw reports whether the spool holds uncompressed elements.
func (h *SpoolHeader) IsRaw() bool {
	return h.Flags&SpoolFlagRaw != 0
}

// Parse parses the header from a byte slice.
//
// Parameters:
//   - data: Byte slice containing the header (must be exactly 32 bytes)
//
// Returns:
//   - error: ErrInvalidSpoolHeader for a wrong size, magic or version
func (h *SpoolHeader) Parse(data []byte) error {
	if len(data) != SpoolHeaderSize {
		return fmt.Errorf("%w: %d bytes", errs.ErrInvalidSpoolHeader, len(data))
	}
	if [8]byte(data[0:8]) != SpoolMagic {
		return fmt.Errorf("%w: bad magic %q", errs.ErrInvalidSpoolHeader, data[0:8])
	}

	h.Version = binary.LittleEndian.Uint16(data[8:10])
	h.Codec = format.CompressionType(data[10])
	h.Flags = data[11]
	h.Fingerprint = binary.LittleEndian.Uint64(data[16:24])
	h.Bias = math.Float64frombits(binary.LittleEndian.Uint64(data[24:32]))

	if h.Version != SpoolVersion {
		return fmt.Errorf("%w: unsupported version %d", errs.ErrInvalidSpoolHeader, h.Version)
	}

	return nil
}

// Bytes serializes the header.
func (h *SpoolHeader) Bytes() []byte {
	b := make([]byte, SpoolHeaderSize)
	copy(b[0:8], SpoolMagic[:])
	binary.LittleEndian.PutUint16(b[8:10], h.Version)
	b[10] = byte(h.Codec)
	b[11] = h.Flags
	binary.LittleEndian.PutUint64(b[16:24], h.Fingerprint)
	binary.LittleEndian.PutUint64(b[24:32], math.Float64bits(h.Bias))

	return b
}

// FrameHeader precedes every spool frame.
type FrameHeader struct {
	RawLength        uint32
	CompressedLength uint32
}

// IsTerminator reports whether the frame ends the spool.
func (f FrameHeader) IsTerminator() bool {
	return f.RawLength == 0 && f.CompressedLength == 0
}

// Parse parses the frame header from a byte slice of FrameHeaderSize bytes.
func (f *FrameHeader) Parse(data []byte) error {
	if len(data) != FrameHeaderSize {
		return fmt.Errorf("%w: frame header of %d bytes", errs.ErrInvalidSpoolFrame, len(data))
	}
	f.RawLength = binary.LittleEndian.Uint32(data[0:4])
	f.CompressedLength = binary.LittleEndian.Uint32(data[4:8])

	if (f.RawLength == 0) != (f.CompressedLength == 0) {
		return fmt.Errorf("%w: raw length %d with compressed length %d",
			errs.ErrInvalidSpoolFrame, f.RawLength, f.CompressedLength)
	}

	return nil
}

// AppendTo appends the serialized frame header to b.
func (f FrameHeader) AppendTo(b []byte) []byte {
	b = binary.LittleEndian.AppendUint32(b, f.RawLength)
	return binary.LittleEndian.AppendUint32(b, f.CompressedLength)
}

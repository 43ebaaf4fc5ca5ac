package section

import (
	"fmt"

	"github.com/arloliu/savcodec/endian"
	"github.com/arloliu/savcodec/errs"
)

// ZHeader is the fixed-size record that starts the case data of a ZSAV file.
type ZHeader struct {
	// HeaderOffset is the file offset of the ZHeader itself.
	HeaderOffset int64 // byte offset 0-7
	// TrailerOffset is the file offset of the ZTrailer.
	TrailerOffset int64 // byte offset 8-15
	// TrailerLength is the size of the ZTrailer, 24 × (blocks + 1).
	TrailerLength int64 // byte offset 16-23
}

// Parse parses the header from a byte slice.
//
// Parameters:
//   - data: Byte slice containing the header (must be exactly 24 bytes)
//   - engine: byte order of the SAV file
//
// Returns:
//   - error: ErrInvalidZHeader for a wrong size or inconsistent fields
func (h *ZHeader) Parse(data []byte, engine endian.EndianEngine) error {
	if len(data) != ZHeaderSize {
		return fmt.Errorf("%w: %d bytes", errs.ErrInvalidZHeader, len(data))
	}

	h.HeaderOffset = int64(engine.Uint64(data[0:8]))    //nolint:gosec
	h.TrailerOffset = int64(engine.Uint64(data[8:16]))  //nolint:gosec
	h.TrailerLength = int64(engine.Uint64(data[16:24])) //nolint:gosec

	return h.Validate()
}

// Validate checks the fields that can be checked without the trailer.
func (h *ZHeader) Validate() error {
	switch {
	case h.HeaderOffset < 0:
		return fmt.Errorf("%w: negative header offset %d", errs.ErrInvalidZHeader, h.HeaderOffset)
	case h.TrailerOffset < h.HeaderOffset+ZHeaderSize:
		return fmt.Errorf("%w: trailer offset %d precedes end of header at %d",
			errs.ErrInvalidZHeader, h.TrailerOffset, h.HeaderOffset+ZHeaderSize)
	case h.TrailerLength < ZTrailerFixedSize || h.TrailerLength%ZBlockEntrySize != 0:
		return fmt.Errorf("%w: trailer length %d is not a multiple of %d",
			errs.ErrInvalidZHeader, h.TrailerLength, ZBlockEntrySize)
	}

	return nil
}

// BlockCount returns the number of blocks implied by TrailerLength.
func (h *ZHeader) BlockCount() int {
	return int(h.TrailerLength/ZBlockEntrySize) - 1
}

// Bytes serializes the header.
func (h *ZHeader) Bytes(engine endian.EndianEngine) []byte {
	b := make([]byte, ZHeaderSize)
	engine.PutUint64(b[0:8], uint64(h.HeaderOffset))    //nolint:gosec
	engine.PutUint64(b[8:16], uint64(h.TrailerOffset))  //nolint:gosec
	engine.PutUint64(b[16:24], uint64(h.TrailerLength)) //nolint:gosec

	return b
}

// ParseZHeader parses a ZHeader from the start of a byte slice.
func ParseZHeader(data []byte, engine endian.EndianEngine) (ZHeader, error) {
	if len(data) < ZHeaderSize {
		return ZHeader{}, fmt.Errorf("%w: %d bytes", errs.ErrInvalidZHeader, len(data))
	}

	h := ZHeader{}
	if err := h.Parse(data[:ZHeaderSize], engine); err != nil {
		return ZHeader{}, err
	}

	return h, nil
}

package section

import (
	"fmt"
	"math"

	"github.com/arloliu/savcodec/endian"
	"github.com/arloliu/savcodec/errs"
)

// ZBlockEntry describes one zlib block in the ZTrailer.
type ZBlockEntry struct {
	// UncompressedOffset is the virtual offset of the block's inflated data.
	//
	// Offset: 0, Size: 8 bytes
	UncompressedOffset int64

	// CompressedOffset is the file offset of the zlib stream.
	//
	// Offset: 8, Size: 8 bytes
	CompressedOffset int64

	// UncompressedSize is the inflated size, at most the trailer's BlockSize.
	//
	// Offset: 16, Size: 4 bytes
	UncompressedSize int32

	// CompressedSize is the size of the zlib stream.
	//
	// Offset: 20, Size: 4 bytes
	CompressedSize int32
}

// ZTrailer is the block index at the end of a ZSAV file.
type ZTrailer struct {
	// Bias is the compression bias. It is stored negated as an int64.
	Bias float64
	// BlockSize is the maximum inflated size of a block.
	BlockSize int32
	// Entries describes every block in file order.
	Entries []ZBlockEntry
}

// Len returns the serialized size of the trailer.
func (t *ZTrailer) Len() int64 {
	return int64(ZTrailerFixedSize + ZBlockEntrySize*len(t.Entries))
}

// Parse parses the trailer from a byte slice.
//
// Parameters:
//   - data: the complete trailer, 24 × (blocks + 1) bytes
//   - engine: byte order of the SAV file
//
// Returns:
//   - error: ErrInvalidZTrailer if the size or the block count is inconsistent
func (t *ZTrailer) Parse(data []byte, engine endian.EndianEngine) error {
	if len(data) < ZTrailerFixedSize || len(data)%ZBlockEntrySize != 0 {
		return fmt.Errorf("%w: %d bytes", errs.ErrInvalidZTrailer, len(data))
	}

	bias := int64(engine.Uint64(data[0:8])) //nolint:gosec
	zero := engine.Uint64(data[8:16])
	blockSize := int32(engine.Uint32(data[16:20])) //nolint:gosec
	count := int32(engine.Uint32(data[20:24]))     //nolint:gosec

	if zero != 0 {
		return fmt.Errorf("%w: reserved field is %d", errs.ErrInvalidZTrailer, zero)
	}
	if want := len(data)/ZBlockEntrySize - 1; int(count) != want {
		return fmt.Errorf("%w: trailer declares %d blocks, its length allows %d", errs.ErrInvalidZTrailer, count, want)
	}

	t.Bias = float64(-bias)
	t.BlockSize = blockSize
	t.Entries = make([]ZBlockEntry, count)
	for i := range t.Entries {
		b := data[ZTrailerFixedSize+i*ZBlockEntrySize:]
		t.Entries[i] = ZBlockEntry{
			UncompressedOffset: int64(engine.Uint64(b[0:8])),   //nolint:gosec
			CompressedOffset:   int64(engine.Uint64(b[8:16])),  //nolint:gosec
			UncompressedSize:   int32(engine.Uint32(b[16:20])), //nolint:gosec
			CompressedSize:     int32(engine.Uint32(b[20:24])), //nolint:gosec
		}
	}

	return nil
}

// Validate checks the trailer against the header that points to it: blocks
// must be contiguous in both the inflated and the compressed space, start
// right after the header, end right before the trailer, and inflate to at
// most BlockSize bytes.
func (t *ZTrailer) Validate(h ZHeader) error {
	if t.BlockSize <= 0 {
		return fmt.Errorf("%w: block size %d", errs.ErrInvalidZTrailer, t.BlockSize)
	}
	if t.Len() != h.TrailerLength {
		return fmt.Errorf("%w: trailer is %d bytes, header says %d", errs.ErrInvalidZTrailer, t.Len(), h.TrailerLength)
	}

	uncompressed := h.HeaderOffset
	compressed := h.HeaderOffset + ZHeaderSize
	for i, e := range t.Entries {
		switch {
		case e.UncompressedOffset != uncompressed:
			return fmt.Errorf("%w: block %d uncompressed offset %d, expected %d",
				errs.ErrInvalidZTrailer, i, e.UncompressedOffset, uncompressed)
		case e.CompressedOffset != compressed:
			return fmt.Errorf("%w: block %d compressed offset %d, expected %d",
				errs.ErrInvalidZTrailer, i, e.CompressedOffset, compressed)
		case e.UncompressedSize < 0 || e.UncompressedSize > t.BlockSize:
			return fmt.Errorf("%w: block %d inflates to %d bytes, block size is %d",
				errs.ErrInvalidZTrailer, i, e.UncompressedSize, t.BlockSize)
		case e.CompressedSize <= 0:
			return fmt.Errorf("%w: block %d has compressed size %d", errs.ErrInvalidZTrailer, i, e.CompressedSize)
		}
		uncompressed += int64(e.UncompressedSize)
		compressed += int64(e.CompressedSize)
	}

	if compressed != h.TrailerOffset {
		return fmt.Errorf("%w: blocks end at %d, trailer starts at %d", errs.ErrInvalidZTrailer, compressed, h.TrailerOffset)
	}

	return nil
}

// CheckBias reports whether the trailer's bias matches the file header's.
func (t *ZTrailer) CheckBias(bias float64) error {
	if math.Round(bias) != t.Bias {
		return fmt.Errorf("%w: trailer bias %v, file bias %v", errs.ErrInvalidZTrailer, t.Bias, bias)
	}

	return nil
}

// Bytes serializes the trailer.
func (t *ZTrailer) Bytes(engine endian.EndianEngine) []byte {
	b := make([]byte, t.Len())
	engine.PutUint64(b[0:8], uint64(-int64(t.Bias)))   //nolint:gosec
	engine.PutUint32(b[16:20], uint32(t.BlockSize))    //nolint:gosec
	engine.PutUint32(b[20:24], uint32(len(t.Entries))) //nolint:gosec

	for i, e := range t.Entries {
		d := b[ZTrailerFixedSize+i*ZBlockEntrySize:]
		engine.PutUint64(d[0:8], uint64(e.UncompressedOffset)) //nolint:gosec
		engine.PutUint64(d[8:16], uint64(e.CompressedOffset))  //nolint:gosec
		engine.PutUint32(d[16:20], uint32(e.UncompressedSize)) //nolint:gosec
		engine.PutUint32(d[20:24], uint32(e.CompressedSize))   //nolint:gosec
	}

	return b
}

// UncompressedSize returns the total inflated size of all blocks.
func (t *ZTrailer) UncompressedSize() int64 {
	var n int64
	for _, e := range t.Entries {
		n += int64(e.UncompressedSize)
	}

	return n
}

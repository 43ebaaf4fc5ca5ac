package compress

import (
	"fmt"

	"github.com/arloliu/savcodec/errs"
	"github.com/arloliu/savcodec/format"
)

// Compressor compresses one self-contained block of case data.
//
// The input is a run of byte-code compressed case data: a ZSAV block of up to
// 4 MiB, or one spool frame. Blocks are compressed independently so that a
// reader can inflate them one at a time.
//
// Memory management:
//   - Returned slice is newly allocated and owned by the caller, except for
//     NoOpCompressor which returns its input
//   - Input slice is not modified
type Compressor interface {
	Compress(data []byte) ([]byte, error)
}

// Decompressor restores a block produced by the matching Compressor.
//
// Example:
//
//	decompressor := NewZlibCompressor()
//	block, err := decompressor.Decompress(payload)
//	if err != nil {
//	    return fmt.Errorf("inflate block: %w", err)
//	}
//
// Thread Safety: all implementations in this package are safe for concurrent use.
type Decompressor interface {
	// Decompress returns an error if the input is corrupted or was produced by
	// a different algorithm.
	Decompress(data []byte) ([]byte, error)
}

// LimitedDecompressor restores a block whose size is known in advance and
// stops as soon as the output would grow past it.
type LimitedDecompressor interface {
	// DecompressLimit returns an error wrapping ErrBlockTooLarge once the
	// output exceeds limit bytes.
	DecompressLimit(data []byte, limit int) ([]byte, error)
}

// Codec combines both compression and decompression capabilities.
type Codec interface {
	Compressor
	Decompressor
}

// DecompressLimit decompresses data into at most limit bytes. Decompressors
// that cannot stop early are checked after the fact.
func DecompressLimit(d Decompressor, data []byte, limit int) ([]byte, error) {
	if ld, ok := d.(LimitedDecompressor); ok {
		return ld.DecompressLimit(data, limit)
	}

	out, err := d.Decompress(data)
	if err != nil {
		return nil, err
	}
	if len(out) > limit {
		return nil, tooLarge(limit)
	}

	return out, nil
}

func tooLarge(limit int) error {
	return fmt.Errorf("%w: more than %d bytes", errs.ErrBlockTooLarge, limit)
}

// CompressionStats accumulates block sizes seen by a writer.
type CompressionStats struct {
	// Algorithm identifies the compression algorithm used
	Algorithm format.CompressionType

	// Blocks is the number of blocks compressed
	Blocks int64

	// OriginalSize is the total size of the blocks before compression
	OriginalSize int64

	// CompressedSize is the total size of the blocks after compression
	CompressedSize int64
}

// Add records one compressed block.
func (s *CompressionStats) Add(original, compressed int) {
	s.Blocks++
	s.OriginalSize += int64(original)
	s.CompressedSize += int64(compressed)
}

// CompressionRatio returns the compression ratio (compressed size / original size).
//
// Returns:
//   - float64: Compression ratio (0.0 if original size is zero)
func (s CompressionStats) CompressionRatio() float64 {
	if s.OriginalSize == 0 {
		return 0.0
	}

	return float64(s.CompressedSize) / float64(s.OriginalSize)
}

// SpaceSavings returns the space savings as a percentage (0-100%).
func (s CompressionStats) SpaceSavings() float64 {
	return (1.0 - s.CompressionRatio()) * 100.0
}

// CreateCodec is a factory function that creates a Codec based on the specified compression type.
//
// Parameters:
//   - compressionType: Type of compression (None, Zstd, S2, LZ4 or Zlib)
//   - target: Description of target usage (for error messages)
//
// Returns:
//   - Codec: Compressor instance for the specified type
//   - error: ErrUnsupportedCompression for any other type
func CreateCodec(compressionType format.CompressionType, target string) (Codec, error) {
	switch compressionType {
	case format.CompressionNone:
		return NewNoOpCompressor(), nil
	case format.CompressionZstd:
		return NewZstdCompressor(), nil
	case format.CompressionS2:
		return NewS2Compressor(), nil
	case format.CompressionLZ4:
		return NewLZ4Compressor(), nil
	case format.CompressionZlib:
		return NewZlibCompressor(), nil
	default:
		return nil, fmt.Errorf("%w: invalid %s compression %s", errs.ErrUnsupportedCompression, target, compressionType)
	}
}

var builtinCodecs = map[format.CompressionType]Codec{
	format.CompressionNone: NewNoOpCompressor(),
	format.CompressionZstd: NewZstdCompressor(),
	format.CompressionS2:   NewS2Compressor(),
	format.CompressionLZ4:  NewLZ4Compressor(),
	format.CompressionZlib: NewZlibCompressor(),
}

// GetCodec retrieves a built-in Codec for the specified compression type.
func GetCodec(compressionType format.CompressionType) (Codec, error) {
	if codec, ok := builtinCodecs[compressionType]; ok {
		return codec, nil
	}

	return nil, fmt.Errorf("%w: %s", errs.ErrUnsupportedCompression, compressionType)
}

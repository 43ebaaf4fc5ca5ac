package compress

// NoOpCompressor passes blocks through unchanged.
//
// It backs spools written with CompressionNone, which is useful when the
// case data is going to be compressed again by the SAV byte-code layer or
// when spool throughput matters more than its size.
type NoOpCompressor struct{}

var (
	_ Codec               = (*NoOpCompressor)(nil)
	_ LimitedDecompressor = (*NoOpCompressor)(nil)
)

// NewNoOpCompressor creates a new no-operation compressor.
func NewNoOpCompressor() NoOpCompressor {
	return NoOpCompressor{}
}

// Compress returns the input slice as-is, without copying.
//
// Note: The returned slice shares the same underlying memory as the input.
func (c NoOpCompressor) Compress(data []byte) ([]byte, error) {
	return data, nil
}

// Decompress returns the input slice as-is, without copying.
//
// Note: The returned slice shares the same underlying memory as the input.
func (c NoOpCompressor) Decompress(data []byte) ([]byte, error) {
	return data, nil
}

// DecompressLimit returns the input slice as-is if it fits in limit bytes.
func (c NoOpCompressor) DecompressLimit(data []byte, limit int) ([]byte, error) {
	if len(data) > limit {
		return nil, tooLarge(limit)
	}

	return data, nil
}

// Package compress provides the block codecs used around byte-code compressed
// case data.
//
// Two layers compress whole blocks of case data:
//
//  1. ZSAV files (header compression 2) store the byte-code stream in zlib
//     blocks, see package zdata. Other readers only understand Zlib there.
//  2. The case spool buffers encoded cases until the case count is known, see
//     package spool. Any codec may be used; S2 is the default.
//
// Supported algorithms:
//   - None: No compression (fastest, largest)
//   - Zlib: RFC 1950, the ZSAV block format
//   - Zstd: Excellent compression ratio, moderate speed
//   - S2: Balanced compression and speed
//   - LZ4: Fast decompression, moderate compression
//
// # Architecture
//
// The package defines three core interfaces:
//
//	type Compressor interface {
//	    Compress(data []byte) ([]byte, error)
//	}
//
//	type Decompressor interface {
//	    Decompress(data []byte) ([]byte, error)
//	}
//
//	type Codec interface {
//	    Compressor
//	    Decompressor
//	}
//
// Codecs are looked up by format.CompressionType:
//
//	codec, err := compress.GetCodec(format.CompressionZlib)
//	if err != nil {
//	    return err
//	}
//	block, err := codec.Compress(caseData)
//
// # Thread Safety
//
// All codecs are stateless values backed by sync.Pool encoders and decoders
// and are safe for concurrent use.
package compress

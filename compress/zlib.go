package compress

import (
	"bytes"
	"fmt"
	"io"
	"sync"

	"github.com/klauspost/compress/zlib"
)

// ZlibCompressor compresses blocks as RFC 1950 zlib streams, the block format
// of ZSAV files.
//
// Every block is a complete zlib stream (header, deflate data, Adler-32
// trailer), which is what other ZSAV readers expect.
type ZlibCompressor struct {
	level int
}

var (
	_ Codec               = (*ZlibCompressor)(nil)
	_ LimitedDecompressor = (*ZlibCompressor)(nil)
)

// NewZlibCompressor creates a zlib compressor at the default compression level.
func NewZlibCompressor() ZlibCompressor {
	return ZlibCompressor{level: zlib.DefaultCompression}
}

// NewZlibCompressorLevel creates a zlib compressor at the given level
// (zlib.BestSpeed through zlib.BestCompression, or zlib.DefaultCompression).
//
// Returns:
//   - ZlibCompressor: the compressor
//   - error: invalid level
func NewZlibCompressorLevel(level int) (ZlibCompressor, error) {
	if level < zlib.DefaultCompression || level > zlib.BestCompression {
		return ZlibCompressor{}, fmt.Errorf("invalid zlib compression level: %d", level)
	}

	return ZlibCompressor{level: level}, nil
}

// zlibWriterPools holds one writer pool per compression level.
var zlibWriterPools sync.Map // int -> *sync.Pool

func zlibWriterPool(level int) *sync.Pool {
	if p, ok := zlibWriterPools.Load(level); ok {
		return p.(*sync.Pool)
	}

	p, _ := zlibWriterPools.LoadOrStore(level, &sync.Pool{
		New: func() any {
			w, err := zlib.NewWriterLevel(nil, level)
			if err != nil {
				panic(fmt.Sprintf("failed to create zlib writer for pool: %v", err))
			}
			return w
		},
	})

	return p.(*sync.Pool)
}

var zlibReaderPool sync.Pool // io.ReadCloser implementing zlib.Resetter

// Compress deflates data into a complete zlib stream.
func (c ZlibCompressor) Compress(data []byte) ([]byte, error) {
	if len(data) == 0 {
		return nil, nil
	}

	pool := zlibWriterPool(c.level)
	w := pool.Get().(*zlib.Writer)
	defer pool.Put(w)

	var buf bytes.Buffer
	buf.Grow(len(data)/2 + 64)
	w.Reset(&buf)
	if _, err := w.Write(data); err != nil {
		return nil, err
	}
	if err := w.Close(); err != nil {
		return nil, err
	}

	return buf.Bytes(), nil
}

// Decompress inflates one zlib stream and verifies its checksum.
func (c ZlibCompressor) Decompress(data []byte) ([]byte, error) {
	if len(data) == 0 {
		return nil, nil
	}

	src := bytes.NewReader(data)
	r, err := getZlibReader(src)
	if err != nil {
		return nil, fmt.Errorf("zlib decompression failed: %w", err)
	}
	defer zlibReaderPool.Put(r)

	var out bytes.Buffer
	out.Grow(len(data) * 4)
	if _, err := io.Copy(&out, r); err != nil {
		return nil, fmt.Errorf("zlib decompression failed: %w", err)
	}

	return out.Bytes(), nil
}

// DecompressLimit inflates one zlib stream, reading no more than limit+1
// bytes of output.
func (c ZlibCompressor) DecompressLimit(data []byte, limit int) ([]byte, error) {
	if len(data) == 0 {
		return nil, nil
	}

	src := bytes.NewReader(data)
	r, err := getZlibReader(src)
	if err != nil {
		return nil, fmt.Errorf("zlib decompression failed: %w", err)
	}
	defer zlibReaderPool.Put(r)

	var out bytes.Buffer
	out.Grow(min(limit, len(data)*4))
	if _, err := io.Copy(&out, io.LimitReader(r, int64(limit)+1)); err != nil {
		return nil, fmt.Errorf("zlib decompression failed: %w", err)
	}
	if out.Len() > limit {
		return nil, tooLarge(limit)
	}

	return out.Bytes(), nil
}

func getZlibReader(src io.Reader) (io.ReadCloser, error) {
	if pooled, ok := zlibReaderPool.Get().(io.ReadCloser); ok {
		if err := pooled.(zlib.Resetter).Reset(src, nil); err != nil {
			return nil, err
		}

		return pooled, nil
	}

	return zlib.NewReader(src)
}

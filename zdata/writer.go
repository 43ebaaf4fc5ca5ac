package zdata

import (
	"fmt"
	"io"
	"math"

	"github.com/arloliu/savcodec/compress"
	"github.com/arloliu/savcodec/errs"
	"github.com/arloliu/savcodec/internal/pool"
	"github.com/arloliu/savcodec/section"
)

// Writer deflates a byte-code stream into ZSAV blocks.
//
// Nothing but the placeholder header is written until a block fills up. The
// header is only valid once Close has written the trailer.
//
// Note: The Writer is NOT thread-safe.
type Writer struct {
	dst   io.WriteSeeker
	cfg   *config
	codec compress.Compressor

	start   int64
	trailer section.ZTrailer
	buf     *pool.ByteBuffer

	uncompressed int64 // file offset recorded for the next block's inflated data
	compressed   int64 // file offset of the next block
	stats        compress.CompressionStats

	closed bool
	err    error
}

var _ io.WriteCloser = (*Writer)(nil)

// NewWriter writes a placeholder zlib data header at the current offset of dst.
//
// Parameters:
//   - dst: the ZSAV file, positioned right after the dictionary termination record
//   - opts: block size, bias, byte order and block codec options
//
// Returns:
//   - *Writer: writer accepting the byte-code stream
//   - error: invalid option or write error
func NewWriter(dst io.WriteSeeker, opts ...Option) (*Writer, error) {
	cfg, err := newConfig(opts)
	if err != nil {
		return nil, err
	}
	codec, err := compress.CreateCodec(cfg.codec, "zlib data block")
	if err != nil {
		return nil, err
	}

	start, err := dst.Seek(0, io.SeekCurrent)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", errs.ErrNotSeekable, err)
	}

	placeholder := section.ZHeader{HeaderOffset: start}
	if _, err := dst.Write(placeholder.Bytes(cfg.engine)); err != nil {
		return nil, err
	}

	return &Writer{
		dst:   dst,
		cfg:   cfg,
		codec: codec,
		start: start,
		trailer: section.ZTrailer{
			Bias:      math.Round(cfg.bias),
			BlockSize: int32(cfg.blockSize), //nolint:gosec
		},
		buf:          pool.GetBlockBuffer(),
		uncompressed: start,
		compressed:   start + section.ZHeaderSize,
		stats:        compress.CompressionStats{Algorithm: cfg.codec},
	}, nil
}

// Write buffers p, deflating every block that fills up.
func (w *Writer) Write(p []byte) (int, error) {
	if w.closed {
		return 0, errs.ErrClosed
	}
	if w.err != nil {
		return 0, w.err
	}

	n := 0
	for n < len(p) {
		take := min(w.buf.Available(w.cfg.blockSize), len(p)-n)
		_, _ = w.buf.Write(p[n : n+take])
		n += take

		if w.buf.Len() >= w.cfg.blockSize {
			if err := w.flushBlock(); err != nil {
				w.err = err
				return n, err
			}
		}
	}

	return n, nil
}

// Close deflates the last partial block, writes the trailer and patches the
// header. The destination is left positioned after the trailer.
//
// Close is idempotent; later calls return nil.
func (w *Writer) Close() error {
	if w.closed {
		return nil
	}
	w.closed = true
	defer func() {
		pool.PutBlockBuffer(w.buf)
		w.buf = nil
	}()

	if w.err != nil {
		return w.err
	}
	if err := w.flushBlock(); err != nil {
		return err
	}

	trailer := w.trailer.Bytes(w.cfg.engine)
	if _, err := w.dst.Write(trailer); err != nil {
		return err
	}

	header := w.Header()
	if _, err := w.dst.Seek(w.start, io.SeekStart); err != nil {
		return err
	}
	if _, err := w.dst.Write(header.Bytes(w.cfg.engine)); err != nil {
		return err
	}
	_, err := w.dst.Seek(header.TrailerOffset+header.TrailerLength, io.SeekStart)

	return err
}

// Header returns the zlib data header describing the blocks written so far.
func (w *Writer) Header() section.ZHeader {
	return section.ZHeader{
		HeaderOffset:  w.start,
		TrailerOffset: w.compressed,
		TrailerLength: w.trailer.Len(),
	}
}

// Trailer returns the block index written so far.
func (w *Writer) Trailer() section.ZTrailer {
	return w.trailer
}

// Stats returns the block compression statistics.
func (w *Writer) Stats() compress.CompressionStats {
	return w.stats
}

func (w *Writer) flushBlock() error {
	size := w.buf.Len()
	if size == 0 {
		return nil
	}

	data, err := w.codec.Compress(w.buf.Bytes())
	if err != nil {
		return fmt.Errorf("deflate zlib block %d: %w", len(w.trailer.Entries), err)
	}
	if _, err := w.dst.Write(data); err != nil {
		return err
	}

	w.trailer.Entries = append(w.trailer.Entries, section.ZBlockEntry{
		UncompressedOffset: w.uncompressed,
		CompressedOffset:   w.compressed,
		UncompressedSize:   int32(size),      //nolint:gosec
		CompressedSize:     int32(len(data)), //nolint:gosec
	})
	w.stats.Add(size, len(data))
	w.uncompressed += int64(size)
	w.compressed += int64(len(data))
	w.buf.Reset()

	return nil
}

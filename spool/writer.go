package spool

import (
	"encoding/binary"
	"fmt"
	"io"

	"github.com/arloliu/savcodec/compress"
	"github.com/arloliu/savcodec/endian"
	"github.com/arloliu/savcodec/errs"
	"github.com/arloliu/savcodec/internal/pool"
	"github.com/arloliu/savcodec/section"
)

// Writer buffers a case stream into compressed frames.
//
// Note: The Writer is NOT thread-safe.
type Writer struct {
	dst   io.Writer
	cfg   *config
	codec compress.Compressor

	buf   *pool.ByteBuffer
	frame []byte // frame header scratch
	cases int64
	stats compress.CompressionStats

	closed bool
	err    error
}

var _ io.WriteCloser = (*Writer)(nil)

// NewWriter writes the spool header to dst.
//
// Parameters:
//   - dst: destination of the spool
//   - fingerprint: layout fingerprint of the dictionary the cases are encoded with
//   - opts: frame size, codec, bias, byte order and raw-element options
//
// Returns:
//   - *Writer: writer accepting the case stream
//   - error: invalid option or write error
func NewWriter(dst io.Writer, fingerprint uint64, opts ...Option) (*Writer, error) {
	cfg, err := newConfig(opts)
	if err != nil {
		return nil, err
	}
	codec, err := compress.GetCodec(cfg.codec)
	if err != nil {
		return nil, err
	}

	header := section.NewSpoolHeader(cfg.codec, fingerprint, cfg.bias)
	if cfg.engine == endian.GetBigEndianEngine() {
		header.Flags |= section.SpoolFlagBigEndian
	}
	if cfg.raw {
		header.Flags |= section.SpoolFlagRaw
	}
	if _, err := dst.Write(header.Bytes()); err != nil {
		return nil, err
	}

	return &Writer{
		dst:   dst,
		cfg:   cfg,
		codec: codec,
		buf:   pool.GetFrameBuffer(),
		frame: make([]byte, 0, section.FrameHeaderSize),
		stats: compress.CompressionStats{Algorithm: cfg.codec},
	}, nil
}

// Write buffers p, compressing and writing every frame that fills up.
func (w *Writer) Write(p []byte) (int, error) {
	if w.closed {
		return 0, errs.ErrClosed
	}
	if w.err != nil {
		return 0, w.err
	}

	n := 0
	for n < len(p) {
		take := min(w.buf.Available(w.cfg.frameSize), len(p)-n)
		_, _ = w.buf.Write(p[n : n+take])
		n += take

		if w.buf.Len() >= w.cfg.frameSize {
			if err := w.flushFrame(); err != nil {
				w.err = err
				return n, err
			}
		}
	}

	return n, nil
}

// SetCaseCount sets the case count written by Close.
func (w *Writer) SetCaseCount(n int64) {
	w.cases = n
}

// Close writes the last frame, the terminator and the case count.
// Close is idempotent; later calls return nil.
func (w *Writer) Close() error {
	if w.closed {
		return nil
	}
	w.closed = true
	defer func() {
		pool.PutFrameBuffer(w.buf)
		w.buf = nil
	}()

	if w.err != nil {
		return w.err
	}
	if err := w.flushFrame(); err != nil {
		return err
	}

	tail := section.FrameHeader{}.AppendTo(w.frame[:0])
	tail = binary.LittleEndian.AppendUint64(tail, uint64(w.cases)) //nolint:gosec
	_, err := w.dst.Write(tail)

	return err
}

// Stats returns the frame compression statistics.
func (w *Writer) Stats() compress.CompressionStats {
	return w.stats
}

func (w *Writer) flushFrame() error {
	size := w.buf.Len()
	if size == 0 {
		return nil
	}

	data, err := w.codec.Compress(w.buf.Bytes())
	if err != nil {
		return fmt.Errorf("compress spool frame: %w", err)
	}

	fh := section.FrameHeader{RawLength: uint32(size), CompressedLength: uint32(len(data))} //nolint:gosec
	if _, err := w.dst.Write(fh.AppendTo(w.frame[:0])); err != nil {
		return err
	}
	if _, err := w.dst.Write(data); err != nil {
		return err
	}

	w.stats.Add(size, len(data))
	w.buf.Reset()

	return nil
}

package spool

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"

	"github.com/arloliu/savcodec/compress"
	"github.com/arloliu/savcodec/endian"
	"github.com/arloliu/savcodec/errs"
	"github.com/arloliu/savcodec/section"
)

// Reader decompresses the frames of a spool back into the case stream.
//
// Reader implements io.Seeker only as far as a bytecode decompressor needs:
// Seek(0, io.SeekCurrent) reports the stream position and Seek(0,
// io.SeekStart) restarts at the first frame when the source is seekable.
//
// Note: The Reader is NOT thread-safe.
type Reader struct {
	src    io.Reader
	header section.SpoolHeader
	codec  compress.Decompressor
	start  int64 // source offset of the first frame, -1 if src cannot seek

	raw   [section.FrameHeaderSize]byte
	comp  []byte
	buf   []byte
	off   int
	pos   int64
	cases int64
	done  bool
	err   error
}

var _ io.ReadSeeker = (*Reader)(nil)

// NewReader reads the spool header and checks it against the dictionary
// the cases will be decoded with.
//
// Parameters:
//   - src: spool positioned at its header
//   - fingerprint: layout fingerprint of the reading dictionary
//
// Returns:
//   - *Reader: reader of the spooled case stream
//   - error: ErrInvalidSpoolHeader, ErrFingerprintMismatch or ErrUnsupportedCompression
func NewReader(src io.Reader, fingerprint uint64) (*Reader, error) {
	start := int64(-1)
	if sk, ok := src.(io.Seeker); ok {
		if pos, err := sk.Seek(0, io.SeekCurrent); err == nil {
			start = pos + section.SpoolHeaderSize
		}
	}

	raw := make([]byte, section.SpoolHeaderSize)
	if _, err := io.ReadFull(src, raw); err != nil {
		return nil, fmt.Errorf("%w: %w", errs.ErrInvalidSpoolHeader, err)
	}

	var header section.SpoolHeader
	if err := header.Parse(raw); err != nil {
		return nil, err
	}
	if header.Fingerprint != fingerprint {
		return nil, fmt.Errorf("%w: spool %016x, dictionary %016x",
			errs.ErrFingerprintMismatch, header.Fingerprint, fingerprint)
	}

	codec, err := compress.GetCodec(header.Codec)
	if err != nil {
		return nil, err
	}

	return &Reader{
		src:    src,
		header: header,
		codec:  codec,
		start:  start,
		cases:  -1,
	}, nil
}

// Header returns the spool header.
func (r *Reader) Header() section.SpoolHeader {
	return r.header
}

// Engine returns the byte order of the spooled numeric elements.
func (r *Reader) Engine() endian.EndianEngine {
	if r.header.IsBigEndian() {
		return endian.GetBigEndianEngine()
	}

	return endian.GetLittleEndianEngine()
}

// Cases returns the case count stored after the terminator. It is only
// known once Read has returned io.EOF.
func (r *Reader) Cases() (int64, bool) {
	return r.cases, r.done
}

// Read reads the decompressed case stream.
func (r *Reader) Read(p []byte) (int, error) {
	if r.err != nil {
		return 0, r.err
	}

	n := 0
	for n < len(p) {
		if r.off >= len(r.buf) {
			if r.done {
				break
			}
			if err := r.nextFrame(); err != nil {
				r.err = err
				return n, err
			}

			continue
		}

		c := copy(p[n:], r.buf[r.off:])
		r.off += c
		n += c
	}
	r.pos += int64(n)

	if n == 0 && len(p) > 0 {
		return 0, io.EOF
	}

	return n, nil
}

// Seek supports Seek(0, io.SeekCurrent) and, on a seekable source,
// Seek(0, io.SeekStart).
func (r *Reader) Seek(offset int64, whence int) (int64, error) {
	switch {
	case offset == 0 && whence == io.SeekCurrent:
		return r.pos, nil
	case offset == 0 && whence == io.SeekStart:
		if r.start < 0 {
			return 0, errs.ErrNotSeekable
		}
		if _, err := r.src.(io.Seeker).Seek(r.start, io.SeekStart); err != nil {
			return 0, err
		}
		r.buf, r.off, r.pos = r.buf[:0], 0, 0
		r.done, r.err, r.cases = false, nil, -1

		return 0, nil
	default:
		return 0, fmt.Errorf("%w: spool supports rewinding only", errs.ErrNotSeekable)
	}
}

// nextFrame loads the next frame, or the case count after the terminator.
func (r *Reader) nextFrame() error {
	if _, err := io.ReadFull(r.src, r.raw[:]); err != nil {
		return truncated("spool frame header", err)
	}

	var fh section.FrameHeader
	if err := fh.Parse(r.raw[:]); err != nil {
		return err
	}

	if fh.IsTerminator() {
		if _, err := io.ReadFull(r.src, r.raw[:]); err != nil {
			return truncated("spool case count", err)
		}
		r.cases = int64(binary.LittleEndian.Uint64(r.raw[:])) //nolint:gosec
		r.done = true
		r.buf, r.off = r.buf[:0], 0

		return nil
	}

	if fh.RawLength > MaxFrameSize || fh.CompressedLength > MaxFrameSize+MaxFrameSize/2 {
		return fmt.Errorf("%w: frame of %d bytes (%d compressed)",
			errs.ErrInvalidSpoolFrame, fh.RawLength, fh.CompressedLength)
	}

	if cap(r.comp) < int(fh.CompressedLength) {
		r.comp = make([]byte, fh.CompressedLength)
	}
	r.comp = r.comp[:fh.CompressedLength]
	if _, err := io.ReadFull(r.src, r.comp); err != nil {
		return truncated("spool frame", err)
	}

	data, err := compress.DecompressLimit(r.codec, r.comp, int(fh.RawLength))
	if err != nil {
		return fmt.Errorf("%w: %w", errs.ErrInvalidSpoolFrame, err)
	}
	if len(data) != int(fh.RawLength) {
		return fmt.Errorf("%w: frame decompressed to %d bytes, header says %d",
			errs.ErrInvalidSpoolFrame, len(data), fh.RawLength)
	}
	r.buf, r.off = data, 0

	return nil
}

func truncated(what string, err error) error {
	if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
		return fmt.Errorf("%w: %s", errs.ErrFormatTruncated, what)
	}

	return fmt.Errorf("read %s: %w", what, err)
}

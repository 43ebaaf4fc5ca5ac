package zdata

import (
	"errors"
	"fmt"
	"io"
	"sort"

	"github.com/arloliu/savcodec/compress"
	"github.com/arloliu/savcodec/errs"
	"github.com/arloliu/savcodec/section"
)

// Reader inflates the blocks of a ZSAV file one at a time.
//
// Note: The Reader is NOT thread-safe.
type Reader struct {
	src     io.ReadSeeker
	codec   compress.Decompressor
	header  section.ZHeader
	trailer section.ZTrailer
	size    int64

	block int    // next block to load
	buf   []byte // inflated current block
	base  int64  // stream offset of buf[0]
	off   int    // read position in buf
	comp  []byte // compressed block scratch
	err   error
}

var _ io.ReadSeeker = (*Reader)(nil)

// NewReader validates the zlib data header and trailer of a ZSAV file.
//
// src must be positioned at the ZHeader, right after the dictionary
// termination record. On success src is positioned at the first block.
//
// Parameters:
//   - src: the ZSAV file
//   - opts: bias, byte order and block codec options
//
// Returns:
//   - *Reader: reader of the inflated byte-code stream
//   - error: ErrInvalidZHeader or ErrInvalidZTrailer for an inconsistent
//     layout, ErrFormatTruncated for a file too short to hold it
func NewReader(src io.ReadSeeker, opts ...Option) (*Reader, error) {
	cfg, err := newConfig(opts)
	if err != nil {
		return nil, err
	}
	codec, err := compress.CreateCodec(cfg.codec, "zlib data block")
	if err != nil {
		return nil, err
	}

	start, err := src.Seek(0, io.SeekCurrent)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", errs.ErrNotSeekable, err)
	}

	raw := make([]byte, section.ZHeaderSize)
	if _, err := io.ReadFull(src, raw); err != nil {
		return nil, truncated("zlib data header", err)
	}
	header, err := section.ParseZHeader(raw, cfg.engine)
	if err != nil {
		return nil, err
	}
	if header.HeaderOffset != start {
		return nil, fmt.Errorf("%w: header offset %d, header found at %d",
			errs.ErrInvalidZHeader, header.HeaderOffset, start)
	}

	end, err := src.Seek(0, io.SeekEnd)
	if err != nil {
		return nil, err
	}
	if header.TrailerOffset > end || header.TrailerLength > end-header.TrailerOffset {
		return nil, fmt.Errorf("%w: trailer at %d+%d exceeds file size %d",
			errs.ErrFormatTruncated, header.TrailerOffset, header.TrailerLength, end)
	}

	if _, err := src.Seek(header.TrailerOffset, io.SeekStart); err != nil {
		return nil, err
	}
	raw = make([]byte, header.TrailerLength)
	if _, err := io.ReadFull(src, raw); err != nil {
		return nil, truncated("zlib data trailer", err)
	}

	var trailer section.ZTrailer
	if err := trailer.Parse(raw, cfg.engine); err != nil {
		return nil, err
	}
	if err := trailer.Validate(header); err != nil {
		return nil, err
	}
	if err := trailer.CheckBias(cfg.bias); err != nil {
		return nil, err
	}

	if _, err := src.Seek(start+section.ZHeaderSize, io.SeekStart); err != nil {
		return nil, err
	}

	return &Reader{
		src:     src,
		codec:   codec,
		header:  header,
		trailer: trailer,
		size:    trailer.UncompressedSize(),
	}, nil
}

// Header returns the validated zlib data header.
func (r *Reader) Header() section.ZHeader {
	return r.header
}

// Trailer returns the validated zlib data trailer.
func (r *Reader) Trailer() section.ZTrailer {
	return r.trailer
}

// Size returns the total inflated size of the byte-code stream.
func (r *Reader) Size() int64 {
	return r.size
}

// Read reads inflated byte-code data, loading blocks as needed.
func (r *Reader) Read(p []byte) (int, error) {
	if r.err != nil {
		return 0, r.err
	}

	n := 0
	for n < len(p) {
		if r.off >= len(r.buf) {
			if r.block >= len(r.trailer.Entries) {
				if n == 0 {
					return 0, io.EOF
				}

				break
			}
			if err := r.load(r.block); err != nil {
				r.err = err
				return n, err
			}
		}

		c := copy(p[n:], r.buf[r.off:])
		r.off += c
		n += c
	}

	return n, nil
}

// Seek sets the offset for the next Read within the inflated stream.
// Offset 0 is the first byte of the first block.
func (r *Reader) Seek(offset int64, whence int) (int64, error) {
	pos := r.base + int64(r.off)

	var abs int64
	switch whence {
	case io.SeekStart:
		abs = offset
	case io.SeekCurrent:
		abs = pos + offset
	case io.SeekEnd:
		abs = r.size + offset
	default:
		return 0, errors.New("zdata.Reader.Seek: invalid whence")
	}
	if abs < 0 || abs > r.size {
		return 0, fmt.Errorf("zdata.Reader.Seek: offset %d outside [0, %d]", abs, r.size)
	}

	if abs == pos {
		return pos, nil
	}
	if abs >= r.base && abs < r.base+int64(len(r.buf)) {
		r.off = int(abs - r.base)
		return abs, nil
	}
	if r.err != nil {
		return 0, r.err
	}

	entries := r.trailer.Entries
	i := sort.Search(len(entries), func(i int) bool {
		return r.streamOffset(i)+int64(entries[i].UncompressedSize) > abs
	})
	if i == len(entries) {
		r.block, r.buf, r.base, r.off = i, r.buf[:0], r.size, 0
		return abs, nil
	}
	if err := r.load(i); err != nil {
		r.err = err
		return 0, err
	}
	r.off = int(abs - r.base)

	return abs, nil
}

// streamOffset converts the file offset of block i to a stream offset.
func (r *Reader) streamOffset(i int) int64 {
	return r.trailer.Entries[i].UncompressedOffset - r.header.HeaderOffset
}

// load inflates block i into buf.
func (r *Reader) load(i int) error {
	e := r.trailer.Entries[i]

	if _, err := r.src.Seek(e.CompressedOffset, io.SeekStart); err != nil {
		return err
	}
	if cap(r.comp) < int(e.CompressedSize) {
		r.comp = make([]byte, e.CompressedSize)
	}
	r.comp = r.comp[:e.CompressedSize]
	if _, err := io.ReadFull(r.src, r.comp); err != nil {
		return truncated(fmt.Sprintf("zlib block %d", i), err)
	}

	data, err := compress.DecompressLimit(r.codec, r.comp, int(e.UncompressedSize))
	if errors.Is(err, errs.ErrBlockTooLarge) {
		return fmt.Errorf("%w: block %d: %w", errs.ErrInvalidZTrailer, i, err)
	}
	if err != nil {
		return fmt.Errorf("inflate zlib block %d: %w", i, err)
	}
	if len(data) != int(e.UncompressedSize) {
		return fmt.Errorf("%w: block %d inflated to %d bytes, trailer says %d",
			errs.ErrInvalidZTrailer, i, len(data), e.UncompressedSize)
	}

	r.block = i + 1
	r.buf = data
	r.base = r.streamOffset(i)
	r.off = 0

	return nil
}

func truncated(what string, err error) error {
	if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
		return fmt.Errorf("%w: %s", errs.ErrFormatTruncated, what)
	}

	return fmt.Errorf("read %s: %w", what, err)
}

package bytecode

import (
	"bytes"
	"errors"
	"fmt"
	"io"

	"github.com/arloliu/savcodec/endian"
	"github.com/arloliu/savcodec/errs"
	"github.com/arloliu/savcodec/format"
)

// Decompressor turns a byte-code compressed stream into a pull-based sequence
// of 8-byte elements.
//
// A block of 8 control codes is only read once every element produced by the
// previous block has been delivered. Decoding ends for good at a 252 code, or
// when the stream ends exactly on a block boundary. Any other short read is
// ErrFormatTruncated, and once a decompressor has failed it keeps returning
// the same error.
//
// Note: The Decompressor is NOT thread-safe.
type Decompressor struct {
	stream
	cfg         *config
	sysMissElem format.Element

	codes    [format.ControlBlockSize]byte
	elems    [format.ControlBlockSize]format.Element
	literals [format.ControlBlockSize]int // element positions waiting for literal bytes
	n, pos   int
	blocks   int64

	done bool
	err  error
}

// NewDecompressor creates a decompressor reading compressed case data from r.
//
// If r implements io.Seeker, the current offset is remembered as the first
// case offset and Rewind can restart decoding from it.
//
// Parameters:
//   - r: reader positioned at the first control block
//   - opts: bias, system-missing and byte order options
//
// Returns:
//   - *Decompressor: the decompressor
//   - error: invalid option
func NewDecompressor(r io.Reader, opts ...Option) (*Decompressor, error) {
	cfg, err := newConfig(opts)
	if err != nil {
		return nil, err
	}

	return &Decompressor{
		stream:      newStream(r),
		cfg:         cfg,
		sysMissElem: cfg.sysMissingElement(),
	}, nil
}

// ReadElement stores the next element in dst.
//
// Returns:
//   - error: io.EOF at the end of data, ErrFormatTruncated for a stream that
//     ends inside a control block or literal, or a read error
func (d *Decompressor) ReadElement(dst *format.Element) error {
	if d.err != nil {
		return d.err
	}

	for d.pos >= d.n {
		if d.done {
			return io.EOF
		}
		if err := d.readBlock(); err != nil {
			d.err = err
			return err
		}
	}

	*dst = d.elems[d.pos]
	d.pos++

	return nil
}

// Rewind restarts decoding at the first case offset.
//
// Returns:
//   - error: ErrNotSeekable if the source cannot seek, or the seek error
func (d *Decompressor) Rewind() error {
	if err := d.rewind(); err != nil {
		return err
	}

	d.n, d.pos, d.blocks = 0, 0, 0
	d.done = false
	d.err = nil

	return nil
}

// Blocks returns the number of control blocks read so far.
func (d *Decompressor) Blocks() int64 {
	return d.blocks
}

func (d *Decompressor) readBlock() error {
	n, err := io.ReadFull(d.br, d.codes[:])
	switch {
	case errors.Is(err, io.EOF):
		d.done = true
		return nil
	case errors.Is(err, io.ErrUnexpectedEOF):
		// a short final block is fine as long as it carries the end marker
		if bytes.IndexByte(d.codes[:n], format.CodeEndOfData) < 0 {
			return fmt.Errorf("%w: control block %d has %d of %d bytes and no end-of-data code",
				errs.ErrFormatTruncated, d.blocks, n, format.ControlBlockSize)
		}
	case err != nil:
		return err
	}

	d.blocks++

	return d.decodeBlock(d.codes[:n])
}

func (d *Decompressor) decodeBlock(codes []byte) error {
	d.n, d.pos = 0, 0
	literals := 0

loop:
	for _, code := range codes {
		switch {
		case code == format.CodePadding:
		case code <= format.CodeMaxNumber:
			endian.PutFloat64(d.cfg.engine, d.elems[d.n][:], float64(code)-d.cfg.bias)
			d.n++
		case code == format.CodeEndOfData:
			d.done = true
			break loop
		case code == format.CodeLiteral:
			d.literals[literals] = d.n
			literals++
			d.n++
		case code == format.CodeSpaces:
			d.elems[d.n] = format.SpaceElement
			d.n++
		default: // format.CodeSysMiss
			d.elems[d.n] = d.sysMissElem
			d.n++
		}
	}

	for i := range literals {
		if _, err := io.ReadFull(d.br, d.elems[d.literals[i]][:]); err != nil {
			if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
				return fmt.Errorf("%w: literal %d of %d in control block %d",
					errs.ErrFormatTruncated, i+1, literals, d.blocks-1)
			}

			return err
		}
	}

	return nil
}

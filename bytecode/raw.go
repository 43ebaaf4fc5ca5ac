package bytecode

import (
	"errors"
	"fmt"
	"io"

	"github.com/arloliu/savcodec/endian"
	"github.com/arloliu/savcodec/errs"
	"github.com/arloliu/savcodec/format"
)

// RawSource reads elements stored without compression, 8 bytes each.
//
// The stream ends cleanly only on an element boundary; a partial trailing
// element is ErrFormatTruncated.
//
// Note: The RawSource is NOT thread-safe.
type RawSource struct {
	stream
	elements int64
	err      error
}

// NewRawSource creates an element source over uncompressed case data.
//
// Options are accepted for symmetry with NewDecompressor and validated, but
// an uncompressed stream has no bias or sentinel to interpret.
func NewRawSource(r io.Reader, opts ...Option) (*RawSource, error) {
	if _, err := newConfig(opts); err != nil {
		return nil, err
	}

	return &RawSource{stream: newStream(r)}, nil
}

// ReadElement stores the next element in dst, or returns io.EOF at the end of data.
func (s *RawSource) ReadElement(dst *format.Element) error {
	if s.err != nil {
		return s.err
	}

	n, err := io.ReadFull(s.br, dst[:])
	switch {
	case errors.Is(err, io.EOF):
		s.err = io.EOF
	case errors.Is(err, io.ErrUnexpectedEOF):
		s.err = fmt.Errorf("%w: element %d has %d of %d bytes",
			errs.ErrFormatTruncated, s.elements, n, format.ElementSize)
	case err != nil:
		s.err = err
	default:
		s.elements++
		return nil
	}

	return s.err
}

// Rewind restarts reading at the first case offset.
func (s *RawSource) Rewind() error {
	if err := s.rewind(); err != nil {
		return err
	}
	s.elements = 0
	s.err = nil

	return nil
}

// RawSink writes elements without compression.
//
// Note: The RawSink is NOT thread-safe.
type RawSink struct {
	w           io.Writer
	cfg         *config
	sysMissElem format.Element
	written     int64
	elements    int64
	closed      bool
	err         error
}

// NewRawSink creates an element sink writing uncompressed case data to w.
func NewRawSink(w io.Writer, opts ...Option) (*RawSink, error) {
	cfg, err := newConfig(opts)
	if err != nil {
		return nil, err
	}

	return &RawSink{w: w, cfg: cfg, sysMissElem: cfg.sysMissingElement()}, nil
}

// WriteNumber writes v as an 8-byte double.
func (s *RawSink) WriteNumber(v float64) error {
	var e format.Element
	endian.PutFloat64(s.cfg.engine, e[:], v)

	return s.write(e)
}

// WriteSysMiss writes the system-missing value.
func (s *RawSink) WriteSysMiss() error {
	return s.write(s.sysMissElem)
}

// WriteCharBlock writes one element of string data.
func (s *RawSink) WriteCharBlock(e format.Element) error {
	return s.write(e)
}

// EndFile marks the sink closed. Uncompressed data has no terminator.
func (s *RawSink) EndFile() error {
	if s.err != nil {
		return s.err
	}
	s.closed = true

	return nil
}

// Written returns the number of bytes written to the sink.
func (s *RawSink) Written() int64 {
	return s.written
}

// Elements returns the number of elements accepted so far.
func (s *RawSink) Elements() int64 {
	return s.elements
}

func (s *RawSink) write(e format.Element) error {
	if s.err != nil {
		return s.err
	}
	if s.closed {
		return errs.ErrClosed
	}

	n, err := s.w.Write(e[:])
	s.written += int64(n)
	if err == nil && n < len(e) {
		err = io.ErrShortWrite
	}
	if err != nil {
		s.err = err
		return err
	}
	s.elements++

	return nil
}

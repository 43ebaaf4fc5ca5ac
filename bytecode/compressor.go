package bytecode

import (
	"io"
	"math"

	"github.com/arloliu/savcodec/endian"
	"github.com/arloliu/savcodec/errs"
	"github.com/arloliu/savcodec/format"
)

// integralTolerance is how close a biased value must be to an integer to be
// stored as a one-byte code.
const integralTolerance = 1e-5

// Compressor writes elements as a byte-code compressed stream.
//
// Codes are collected 8 at a time. When a block is full the 8 codes and then
// the literals they reference are written to the sink in a single Write call.
// EndFile pads the last partial block with code 0 and flushes it.
//
// Write errors are sticky: after the sink has failed every further call
// returns the same error.
//
// Note: The Compressor is NOT thread-safe.
type Compressor struct {
	w           io.Writer
	cfg         *config
	sysMissElem format.Element

	codes    [format.ControlBlockSize]byte
	literals [format.ControlBlockSize]format.Element
	n, lits  int
	scratch  []byte
	written  int64
	elements int64

	closed bool
	err    error
}

// NewCompressor creates a compressor writing to w.
//
// Parameters:
//   - w: destination of the compressed case data
//   - opts: bias, system-missing and byte order options
//
// Returns:
//   - *Compressor: the compressor
//   - error: invalid option
func NewCompressor(w io.Writer, opts ...Option) (*Compressor, error) {
	cfg, err := newConfig(opts)
	if err != nil {
		return nil, err
	}

	return &Compressor{
		w:           w,
		cfg:         cfg,
		sysMissElem: cfg.sysMissingElement(),
		scratch:     make([]byte, 0, format.ControlBlockSize*(1+format.ElementSize)),
	}, nil
}

// WriteNumber appends a numeric element.
//
// The system-missing value becomes code 255. A value whose biased form is an
// integer between 1 and 251 becomes that single code. Everything else,
// including NaN and infinities, is stored as a literal.
func (c *Compressor) WriteNumber(v float64) error {
	if err := c.check(); err != nil {
		return err
	}

	if v == c.cfg.sysMissing {
		return c.putCode(format.CodeSysMiss)
	}

	if code, ok := c.numberCode(v); ok {
		return c.putCode(code)
	}

	var e format.Element
	endian.PutFloat64(c.cfg.engine, e[:], v)

	return c.putLiteral(e)
}

// WriteSysMiss appends the system-missing element.
func (c *Compressor) WriteSysMiss() error {
	if err := c.check(); err != nil {
		return err
	}

	return c.putCode(format.CodeSysMiss)
}

// WriteCharBlock appends one 8-byte element of string data. A block of eight
// spaces becomes code 254, anything else a literal.
func (c *Compressor) WriteCharBlock(e format.Element) error {
	if err := c.check(); err != nil {
		return err
	}

	if e.IsSpaces() {
		return c.putCode(format.CodeSpaces)
	}

	return c.putLiteral(e)
}

// EndFile pads the current block with code 0 and flushes it. Nothing is
// written when the current block is empty. Further writes return ErrClosed.
func (c *Compressor) EndFile() error {
	if c.err != nil {
		return c.err
	}
	if c.closed {
		return nil
	}
	c.closed = true

	if c.n == 0 {
		return nil
	}
	for c.n < format.ControlBlockSize {
		c.codes[c.n] = format.CodePadding
		c.n++
	}

	return c.flush()
}

// Written returns the number of compressed bytes written to the sink.
func (c *Compressor) Written() int64 {
	return c.written
}

// Elements returns the number of elements accepted so far.
func (c *Compressor) Elements() int64 {
	return c.elements
}

func (c *Compressor) check() error {
	if c.err != nil {
		return c.err
	}
	if c.closed {
		return errs.ErrClosed
	}

	return nil
}

func (c *Compressor) numberCode(v float64) (byte, bool) {
	biased := v + c.cfg.bias
	if !(biased > 0 && biased < float64(format.CodeEndOfData)) {
		return 0, false
	}

	r := math.Round(biased)
	if math.Abs(biased-r) >= integralTolerance || r < 1 || r > float64(format.CodeMaxNumber) {
		return 0, false
	}

	return byte(r), true
}

func (c *Compressor) putCode(code byte) error {
	c.codes[c.n] = code
	c.n++
	c.elements++

	if c.n == format.ControlBlockSize {
		return c.flush()
	}

	return nil
}

func (c *Compressor) putLiteral(e format.Element) error {
	c.literals[c.lits] = e
	c.lits++

	return c.putCode(format.CodeLiteral)
}

func (c *Compressor) flush() error {
	buf := append(c.scratch[:0], c.codes[:]...)
	for i := range c.lits {
		buf = append(buf, c.literals[i][:]...)
	}
	c.n, c.lits = 0, 0

	n, err := c.w.Write(buf)
	c.written += int64(n)
	if err == nil && n < len(buf) {
		err = io.ErrShortWrite
	}
	if err != nil {
		c.err = err
	}

	return err
}

package row

import (
	"errors"
	"fmt"
	"io"
	"iter"

	"github.com/arloliu/savcodec/dict"
	"github.com/arloliu/savcodec/errs"
	"github.com/arloliu/savcodec/format"
)

// ElementSource produces the elements of consecutive cases and returns io.EOF
// after the last one. bytecode.Decompressor and bytecode.RawSource implement it.
type ElementSource interface {
	ReadElement(dst *format.Element) error
}

// Rewinder is implemented by element sources that can restart at the first case.
type Rewinder interface {
	Rewind() error
}

// Reader pulls rows from an element source, one case at a time.
//
// Only one enumeration may be active at a time. Abandoning an enumeration is
// always safe; it simply stops reading. After a format error the reader keeps
// returning that error until it is rewound.
//
// Note: The Reader is NOT thread-safe.
type Reader struct {
	src    ElementSource
	dec    *Decoder
	record []format.Element
	cases  int64
	err    error
}

// NewReader creates a row reader over src.
//
// Parameters:
//   - src: element source positioned at the first case
//   - d: validated dictionary
//   - opts: text codec, system-missing and byte order options
//
// Returns:
//   - *Reader: the reader
//   - error: invalid option
func NewReader(src ElementSource, d *dict.Dictionary, opts ...Option) (*Reader, error) {
	cfg, err := newConfig(opts)
	if err != nil {
		return nil, err
	}

	return &Reader{
		src:    src,
		dec:    newDecoder(d, cfg),
		record: make([]format.Element, d.SlotCount()),
	}, nil
}

// Next reads and decodes the next case.
//
// Returns:
//   - []Value: a new row, one value per logical variable
//   - error: io.EOF after the last case, ErrFormatTruncated when the data ends
//     inside a case, or any error of the element source
func (r *Reader) Next() ([]Value, error) {
	return r.NextInto(make([]Value, 0, r.dec.dict.VariableCount()))
}

// NextInto is Next reusing the storage of dst.
func (r *Reader) NextInto(dst []Value) ([]Value, error) {
	if r.err != nil {
		return dst[:0], r.err
	}

	if err := r.readRecord(); err != nil {
		r.err = err
		return dst[:0], err
	}

	row, err := r.dec.DecodeRowInto(dst, r.record)
	if err != nil {
		r.err = err
		return row, err
	}
	r.cases++

	return row, nil
}

// All returns an iterator over the remaining rows. Iteration stops after the
// last case or after yielding the first error; io.EOF is never yielded.
func (r *Reader) All() iter.Seq2[[]Value, error] {
	return func(yield func([]Value, error) bool) {
		for {
			row, err := r.Next()
			if errors.Is(err, io.EOF) {
				return
			}
			if !yield(row, err) || err != nil {
				return
			}
		}
	}
}

// Rewind restarts reading at the first case. It requires an element source
// implementing Rewinder, which in turn needs a seekable byte source.
//
// Returns:
//   - error: ErrNotSeekable, or the error of the source's Rewind
func (r *Reader) Rewind() error {
	rw, ok := r.src.(Rewinder)
	if !ok {
		return errs.ErrNotSeekable
	}
	if err := rw.Rewind(); err != nil {
		return err
	}
	r.cases = 0
	r.err = nil

	return nil
}

// Cases returns the number of cases read since the start or the last Rewind.
func (r *Reader) Cases() int64 {
	return r.cases
}

// Decoder returns the decoder used for every case.
func (r *Reader) Decoder() *Decoder {
	return r.dec
}

func (r *Reader) readRecord() error {
	for i := range r.record {
		err := r.src.ReadElement(&r.record[i])
		if err == nil {
			continue
		}
		if errors.Is(err, io.EOF) {
			if i == 0 {
				return io.EOF
			}

			return errs.NewSlotError(i, errs.ErrFormatTruncated,
				"case %d ends after %d of %d elements", r.cases+1, i, len(r.record))
		}

		return fmt.Errorf("case %d: %w", r.cases+1, err)
	}

	return nil
}

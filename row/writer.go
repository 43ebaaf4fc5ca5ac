package row

import (
	"errors"

	"github.com/arloliu/savcodec/dict"
	"github.com/arloliu/savcodec/errs"
)

// Writer encodes rows into an element sink and ends the stream on Close.
//
// Note: The Writer is NOT thread-safe.
type Writer struct {
	sink   ElementSink
	enc    *Encoder
	cases  int64
	closed bool
}

// NewWriter creates a row writer over sink.
//
// Parameters:
//   - sink: element sink, usually a bytecode.Compressor
//   - d: validated dictionary
//   - opts: text codec, strict mode and logger options
//
// Returns:
//   - *Writer: the writer
//   - error: invalid option
func NewWriter(sink ElementSink, d *dict.Dictionary, opts ...Option) (*Writer, error) {
	cfg, err := newConfig(opts)
	if err != nil {
		return nil, err
	}

	return &Writer{sink: sink, enc: newEncoder(d, cfg)}, nil
}

// WriteRow encodes one case.
//
// A strict-mode ErrEncodingOverflow does not prevent the case from being
// written and counted; every other error means the case was not written
// completely.
func (w *Writer) WriteRow(values []Value) error {
	if w.closed {
		return errs.ErrClosed
	}

	err := w.enc.EncodeRow(w.sink, values)
	if err == nil || isOverflowOnly(err) {
		w.cases++
	}

	return err
}

// Close ends the case stream. Calling Close more than once is a no-op.
func (w *Writer) Close() error {
	if w.closed {
		return nil
	}
	w.closed = true

	return w.sink.EndFile()
}

// Cases returns the number of cases written.
func (w *Writer) Cases() int64 {
	return w.cases
}

// Encoder returns the encoder used for every case.
func (w *Writer) Encoder() *Encoder {
	return w.enc
}

// isOverflowOnly reports whether err consists only of ErrEncodingOverflow errors.
func isOverflowOnly(err error) bool {
	if joined, ok := err.(interface{ Unwrap() []error }); ok {
		for _, e := range joined.Unwrap() {
			if !errors.Is(e, errs.ErrEncodingOverflow) {
				return false
			}
		}

		return true
	}

	return errors.Is(err, errs.ErrEncodingOverflow)
}

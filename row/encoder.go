package row

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/arloliu/savcodec/dict"
	"github.com/arloliu/savcodec/errs"
	"github.com/arloliu/savcodec/format"
	"github.com/arloliu/savcodec/geometry"
	"github.com/arloliu/savcodec/textcodec"
)

// ElementSink receives the elements of encoded cases. bytecode.Compressor and
// bytecode.RawSink implement it.
type ElementSink interface {
	WriteNumber(v float64) error
	WriteSysMiss() error
	WriteCharBlock(e format.Element) error
	EndFile() error
}

// Encoder encodes rows of one dictionary into an element sink.
//
// Strings are encoded with the configured text codec, trailing spaces are
// trimmed and the result is space padded to the variable's byte budget. A
// string that does not fit is cut at a character boundary.
//
// Note: The Encoder is NOT thread-safe. Its scratch buffers are sized once
// from the widest string variable and reused for every row.
type Encoder struct {
	dict *dict.Dictionary
	cfg  *config
	text *textcodec.Encoder

	content []byte // encoded string content
	image   []byte // physical bytes of a string variable, padding included
}

// NewEncoder creates an encoder for rows of d.
//
// Parameters:
//   - d: validated dictionary
//   - opts: text codec, strict mode and logger options
//
// Returns:
//   - *Encoder: the encoder
//   - error: invalid option
func NewEncoder(d *dict.Dictionary, opts ...Option) (*Encoder, error) {
	cfg, err := newConfig(opts)
	if err != nil {
		return nil, err
	}

	return newEncoder(d, cfg), nil
}

func newEncoder(d *dict.Dictionary, cfg *config) *Encoder {
	return &Encoder{
		dict:    d,
		cfg:     cfg,
		text:    cfg.codec.NewEncoder(),
		content: make([]byte, 0, d.MaxStringBytes()),
		image:   make([]byte, d.MaxStringBytes()),
	}
}

// Dictionary returns the dictionary the encoder was created for.
func (e *Encoder) Dictionary() *dict.Dictionary {
	return e.dict
}

// EncodeRow writes one row to sink.
//
// The row is checked against the dictionary before anything is written, so a
// row rejected with ErrRowLength or ErrValueKind leaves the sink untouched.
// Numeric variables accept Number and Missing, string variables accept Text
// and Missing (written as an empty string).
//
// Parameters:
//   - sink: destination of the case elements
//   - values: one value per logical variable
//
// Returns:
//   - error: ErrRowLength, ErrValueKind, a sink error, or in strict mode a
//     joined list of ErrEncodingOverflow slot errors after the whole row was written
func (e *Encoder) EncodeRow(sink ElementSink, values []Value) error {
	if err := e.check(values); err != nil {
		return err
	}

	var overflows []error
	for i, v := range e.dict.Variables() {
		val := values[i]
		if v.Numeric {
			if err := writeNumber(sink, val); err != nil {
				return err
			}

			continue
		}

		truncated, err := e.writeString(sink, v, val)
		if err != nil {
			return err
		}
		if truncated && e.cfg.strict {
			overflows = append(overflows, errs.NewSlotError(v.Slot, errs.ErrEncodingOverflow,
				"string %q cut to %d bytes", v.Name, geometry.ContentCapacity(v.Length)))
		}
	}

	return errors.Join(overflows...)
}

func (e *Encoder) check(values []Value) error {
	if len(values) != e.dict.VariableCount() {
		return fmt.Errorf("%w: got %d values, dictionary has %d variables",
			errs.ErrRowLength, len(values), e.dict.VariableCount())
	}

	for i, v := range e.dict.Variables() {
		kind := values[i].Kind()
		if kind == KindMissing {
			continue
		}
		if (v.Numeric && kind != KindNumber) || (!v.Numeric && kind != KindText) {
			return errs.NewSlotError(v.Slot, errs.ErrValueKind,
				"variable %q cannot hold a %s value", v.Name, kind)
		}
	}

	return nil
}

func writeNumber(sink ElementSink, val Value) error {
	if f, ok := val.Float(); ok {
		return sink.WriteNumber(f)
	}

	return sink.WriteSysMiss()
}

// writeString lays the encoded content of val out over the physical bytes of
// v, skipping the padding byte of every 32-slot segment, and writes the image
// one element at a time.
func (e *Encoder) writeString(sink ElementSink, v dict.Variable, val Value) (bool, error) {
	s, _ := val.Text()
	s = strings.TrimRight(s, " ")

	capacity := geometry.ContentCapacity(v.Length)
	content, truncated, err := e.text.Append(e.content[:0], s, capacity)
	if err != nil {
		return false, errs.NewSlotError(v.Slot, err, "encoding string %q", v.Name)
	}
	e.content = content[:0]

	if truncated {
		e.cfg.logger.LogAttrs(context.Background(), slog.LevelDebug, "string truncated to fit variable",
			slog.String("variable", v.Name),
			slog.Int("index", v.Slot),
			slog.Int("capacity", capacity),
			slog.Int("length", len(s)),
		)
	}

	budget := v.ByteBudget()
	image := e.image[:budget]
	for i := range image {
		image[i] = format.Space
	}
	pos := 0
	for _, b := range content {
		if geometry.IsPadPosition(pos) {
			pos++
		}
		image[pos] = b
		pos++
	}

	var elem format.Element
	for off := 0; off < budget; off += format.ElementSize {
		copy(elem[:], image[off:off+format.ElementSize])
		if err := sink.WriteCharBlock(elem); err != nil {
			return truncated, err
		}
	}

	return truncated, nil
}

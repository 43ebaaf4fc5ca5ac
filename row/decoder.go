// Package row converts between case records of 8-byte elements and rows of
// logical values.
//
// A Decoder turns one record, one element per dictionary slot, into one Value
// per logical variable. Continuation slots are consumed and never surfaced,
// and the segments of a very long string are joined into a single Text. An
// Encoder does the reverse and drives an element sink such as
// bytecode.Compressor. Reader and Writer add the per-case lifecycle on top.
//
// String values keep their space padding: a string declared 16 bytes wide
// decodes to 16 bytes (rounded up to whole elements) whatever its content.
// The structural padding byte at the end of every 32-slot segment is dropped
// on decode and inserted on encode.
package row

import (
	"fmt"
	"strings"

	"github.com/arloliu/savcodec/dict"
	"github.com/arloliu/savcodec/endian"
	"github.com/arloliu/savcodec/errs"
	"github.com/arloliu/savcodec/format"
	"github.com/arloliu/savcodec/geometry"
	"github.com/arloliu/savcodec/textcodec"
)

// Decoder decodes case records of one dictionary.
//
// Note: The Decoder is NOT thread-safe. It owns a text decoder that is reused
// across rows.
type Decoder struct {
	dict *dict.Dictionary
	cfg  *config
	text *textcodec.Decoder
	sb   strings.Builder
}

// NewDecoder creates a decoder for records laid out by d.
//
// Parameters:
//   - d: validated dictionary
//   - opts: text codec, system-missing and byte order options
//
// Returns:
//   - *Decoder: the decoder
//   - error: invalid option
func NewDecoder(d *dict.Dictionary, opts ...Option) (*Decoder, error) {
	cfg, err := newConfig(opts)
	if err != nil {
		return nil, err
	}

	return newDecoder(d, cfg), nil
}

func newDecoder(d *dict.Dictionary, cfg *config) *Decoder {
	return &Decoder{
		dict: d,
		cfg:  cfg,
		text: cfg.codec.NewDecoder(),
	}
}

// Dictionary returns the dictionary the decoder was created for.
func (d *Decoder) Dictionary() *dict.Dictionary {
	return d.dict
}

// DecodeRow decodes one record into a new row.
//
// Parameters:
//   - record: one element per dictionary slot
//
// Returns:
//   - []Value: one value per logical variable
//   - error: ErrRowLength for a record of the wrong size, or a text decoding error
func (d *Decoder) DecodeRow(record []format.Element) ([]Value, error) {
	return d.DecodeRowInto(make([]Value, 0, d.dict.VariableCount()), record)
}

// DecodeRowInto decodes one record, appending the values to dst[:0].
func (d *Decoder) DecodeRowInto(dst []Value, record []format.Element) ([]Value, error) {
	if len(record) != d.dict.SlotCount() {
		return dst[:0], fmt.Errorf("%w: record has %d elements, dictionary has %d slots",
			errs.ErrRowLength, len(record), d.dict.SlotCount())
	}

	dst = dst[:0]
	for _, v := range d.dict.Variables() {
		if v.Numeric {
			dst = append(dst, d.decodeNumber(record[v.Slot]))
			continue
		}

		s, err := d.decodeString(v, record)
		if err != nil {
			return dst, errs.NewSlotError(v.Slot, err, "decoding string %q", v.Name)
		}
		dst = append(dst, Text(s))
	}

	return dst, nil
}

func (d *Decoder) decodeNumber(e format.Element) Value {
	f := endian.Float64(d.cfg.engine, e[:])
	if f == d.cfg.sysMissing {
		return Missing()
	}

	return Number(f)
}

// decodeString feeds every element of every segment to the text decoder,
// leaving out the padding byte that ends each 32-slot segment.
func (d *Decoder) decodeString(v dict.Variable, record []format.Element) (string, error) {
	d.sb.Reset()
	d.sb.Grow(v.ByteBudget())
	d.text.Reset()

	for _, seg := range v.Segments {
		for k := range seg.Slots {
			elem := record[seg.Head+k][:]
			if k == geometry.SegmentSlots-1 {
				elem = elem[:format.ElementSize-1]
			}
			if err := d.text.Feed(elem); err != nil {
				return "", err
			}
		}
		d.sb.WriteString(d.text.Flush())
	}

	tail, err := d.text.Finish()
	if err != nil {
		return "", err
	}
	d.sb.WriteString(tail)

	return d.sb.String(), nil
}

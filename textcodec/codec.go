// Package textcodec converts between Go strings and the byte encoding of
// string case data.
//
// The codec does not choose an encoding: the dictionary parser reads it from
// the file's encoding record and hands it over by name or as an
// encoding.Encoding. UTF-8 is the default.
//
// Decoding is incremental. String bytes arrive one 8-byte element at a time
// and a multi-byte character may straddle elements and segments, so Decoder
// keeps undecoded trailing bytes between Feed calls and only gives them up on
// Finish.
package textcodec

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/htmlindex"
	"golang.org/x/text/encoding/ianaindex"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"

	"github.com/arloliu/savcodec/errs"
)

const initialScratchSize = 512

// Codec is a named text encoding. A Codec is immutable and safe for
// concurrent use; the decoders and encoders it creates are not.
type Codec struct {
	name string
	enc  encoding.Encoding
	utf8 bool
}

var utf8Codec = &Codec{name: "UTF-8", enc: unicode.UTF8, utf8: true}

// UTF8 returns the UTF-8 codec.
func UTF8() *Codec {
	return utf8Codec
}

// New wraps an encoding under the given name.
func New(name string, enc encoding.Encoding) *Codec {
	return &Codec{name: name, enc: enc, utf8: enc == unicode.UTF8}
}

// Lookup returns the codec registered under an IANA or WHATWG encoding name.
//
// Parameters:
//   - name: encoding name as stored in the file, e.g. "UTF-8" or "windows-1252"
//
// Returns:
//   - *Codec: the codec
//   - error: ErrUnknownEncoding if no implementation exists for name
func Lookup(name string) (*Codec, error) {
	trimmed := strings.TrimSpace(name)
	if strings.EqualFold(trimmed, "UTF-8") || strings.EqualFold(trimmed, "UTF8") {
		return UTF8(), nil
	}

	if enc, err := ianaindex.IANA.Encoding(trimmed); err == nil && enc != nil {
		return New(trimmed, enc), nil
	}
	if enc, err := htmlindex.Get(trimmed); err == nil && enc != nil {
		return New(trimmed, enc), nil
	}

	return nil, fmt.Errorf("%w: %q", errs.ErrUnknownEncoding, name)
}

// Name returns the name the codec was created with.
func (c *Codec) Name() string {
	return c.name
}

// Encoding returns the underlying encoding.
func (c *Codec) Encoding() encoding.Encoding {
	return c.enc
}

// NewDecoder returns a resumable decoder.
func (c *Codec) NewDecoder() *Decoder {
	return &Decoder{
		t:       c.enc.NewDecoder(),
		scratch: make([]byte, initialScratchSize),
	}
}

// NewEncoder returns a truncating encoder. Characters the encoding cannot
// represent are replaced by the encoding's replacement byte.
func (c *Codec) NewEncoder() *Encoder {
	return &Encoder{
		enc:  encoding.ReplaceUnsupported(c.enc.NewEncoder()),
		utf8: c.utf8,
	}
}

// Decoder decodes a byte stream fed in arbitrary chunks.
//
// The contract is Feed any number of times, Flush to take the text decoded so
// far, and Finish to end the string. Bytes of an incomplete character are
// retained across Feed and Flush calls.
type Decoder struct {
	t       transform.Transformer
	pending []byte
	out     []byte
	scratch []byte
}

// Feed decodes b, keeping an incomplete trailing character for the next call.
func (d *Decoder) Feed(b []byte) error {
	d.pending = append(d.pending, b...)

	return d.transform(false)
}

// Flush returns the text decoded since the previous Flush or Finish.
func (d *Decoder) Flush() string {
	s := string(d.out)
	d.out = d.out[:0]

	return s
}

// Finish decodes any retained bytes, returns the remaining text and resets the
// decoder for the next string.
func (d *Decoder) Finish() (string, error) {
	err := d.transform(true)
	s := d.Flush()
	d.Reset()

	return s, err
}

// Reset discards all state.
func (d *Decoder) Reset() {
	d.t.Reset()
	d.pending = d.pending[:0]
	d.out = d.out[:0]
}

func (d *Decoder) transform(atEOF bool) error {
	for {
		nDst, nSrc, err := d.t.Transform(d.scratch, d.pending, atEOF)
		d.out = append(d.out, d.scratch[:nDst]...)
		d.pending = append(d.pending[:0], d.pending[nSrc:]...)

		switch err {
		case nil:
			return nil
		case transform.ErrShortSrc:
			if atEOF {
				return err
			}

			return nil
		case transform.ErrShortDst:
			if nDst == 0 && nSrc == 0 {
				d.scratch = make([]byte, 2*len(d.scratch))
			}
		default:
			return err
		}
	}
}

// Encoder encodes strings into at most a given number of bytes without
// splitting a character.
type Encoder struct {
	enc     *encoding.Encoder
	utf8    bool
	runeBuf []byte
}

// Append appends the encoding of s to dst, dropping whole characters that
// would take the appended bytes past limit.
//
// Parameters:
//   - dst: buffer to append to
//   - s: the string to encode
//   - limit: maximum number of bytes to append
//
// Returns:
//   - []byte: dst with the encoded bytes appended
//   - bool: true if characters were dropped
//   - error: encoding failure
func (e *Encoder) Append(dst []byte, s string, limit int) ([]byte, bool, error) {
	if e.utf8 {
		return appendUTF8(dst, s, limit)
	}

	encoded, err := e.enc.String(s)
	if err != nil {
		return dst, false, err
	}
	if len(encoded) <= limit {
		return append(dst, encoded...), false, nil
	}

	// Slow path: encode one character at a time until the budget is used up.
	used := 0
	for _, r := range s {
		e.runeBuf = utf8.AppendRune(e.runeBuf[:0], r)
		b, err := e.enc.Bytes(e.runeBuf)
		if err != nil {
			return dst, true, err
		}
		if used+len(b) > limit {
			break
		}
		dst = append(dst, b...)
		used += len(b)
	}

	return dst, true, nil
}

func appendUTF8(dst []byte, s string, limit int) ([]byte, bool, error) {
	if len(s) <= limit {
		return append(dst, s...), false, nil
	}

	cut := 0
	for cut < len(s) {
		_, size := utf8.DecodeRuneInString(s[cut:])
		if cut+size > limit {
			break
		}
		cut += size
	}

	return append(dst, s[:cut]...), true, nil
}

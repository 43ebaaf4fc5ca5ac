// Package savcodec reads and writes the case data of SAV statistical data files.
//
// Case data is the part of a SAV file that follows the dictionary: one record
// per case, one 8-byte element per dictionary slot, usually byte-code
// compressed and, in ZSAV files, additionally deflated in zlib blocks. This
// package wires the pieces together for one dictionary and one set of header
// settings:
//
//   - dict validates the slot list and the very long string registry
//   - bytecode compresses and decompresses the element stream
//   - zdata adds the ZSAV zlib block layer
//   - row turns records into values and back
//   - spool buffers encoded cases until their count is known
//
// # Basic Usage
//
// Reading cases from a file positioned at the first case:
//
//	session, _ := savcodec.New(slots, registry,
//	    savcodec.WithCompression(format.CaseBytecode),
//	    savcodec.WithEncoding("windows-1252"),
//	)
//	reader, _ := session.NewReader(file)
//	for values, err := range reader.All() {
//	    if err != nil {
//	        return err
//	    }
//	    fmt.Println(values)
//	}
//
// Writing cases:
//
//	writer, _ := session.NewWriter(file)
//	_ = writer.WriteRow([]row.Value{row.Number(1), row.Text("abc")})
//	_ = writer.Close()
//
// # Spooling
//
// The SAV header stores the case count before the case data. A producer that
// streams cases writes them to a spool, writes the header once the count is
// known, and then moves the spooled stream into the file with CopySpool.
//
// # Thread Safety
//
// A Session is immutable and safe for concurrent use. The readers and writers
// it creates are not.
package savcodec

import (
	"fmt"
	"io"

	"github.com/arloliu/savcodec/bytecode"
	"github.com/arloliu/savcodec/dict"
	"github.com/arloliu/savcodec/errs"
	"github.com/arloliu/savcodec/format"
	"github.com/arloliu/savcodec/row"
	"github.com/arloliu/savcodec/spool"
	"github.com/arloliu/savcodec/zdata"
)

// Session holds a validated dictionary and the header settings its case data
// is read and written with.
type Session struct {
	dict *dict.Dictionary
	cfg  *config
}

// New validates the dictionary slots and the very long string registry and
// creates a session for them.
//
// Parameters:
//   - slots: one entry per dictionary slot, in file order
//   - registry: very long string lengths, may be nil
//   - opts: header settings (see Option)
//
// Returns:
//   - *Session: the session
//   - error: dictionary or option error
//
// Example:
//
//	slots := []dict.VariableSlot{dict.Numeric("AGE"), dict.StringHead("NAME", 16), dict.Continuation()}
//	session, err := savcodec.New(slots, nil)
func New(slots []dict.VariableSlot, registry *dict.Registry, opts ...Option) (*Session, error) {
	d, err := dict.New(slots, registry)
	if err != nil {
		return nil, err
	}

	return NewSession(d, opts...)
}

// NewSession creates a session for an already validated dictionary.
func NewSession(d *dict.Dictionary, opts ...Option) (*Session, error) {
	cfg, err := newConfig(opts)
	if err != nil {
		return nil, err
	}

	return &Session{dict: d, cfg: cfg}, nil
}

// Dictionary returns the session's dictionary.
func (s *Session) Dictionary() *dict.Dictionary {
	return s.dict
}

// Compression returns the case compression the session reads and writes.
func (s *Session) Compression() format.CaseCompression {
	return s.cfg.compression
}

// NewReader creates a row reader over case data.
//
// The returned reader can rewind to the first case when r implements
// io.Seeker. ZSAV case data requires an io.ReadSeeker positioned at the zlib
// data header.
//
// Parameters:
//   - r: case data positioned at the first case
//
// Returns:
//   - *row.Reader: reader yielding one row per case
//   - error: ErrNotSeekable for ZSAV data on a plain reader, or a zlib data
//     header/trailer error
func (s *Session) NewReader(r io.Reader) (*row.Reader, error) {
	src, err := s.elementSource(r)
	if err != nil {
		return nil, err
	}

	return row.NewReader(src, s.dict, s.cfg.rowOptions()...)
}

// NewWriter creates a row writer producing case data.
//
// ZSAV case data requires an io.WriteSeeker positioned right after the
// dictionary termination record. Close must be called to end the stream.
func (s *Session) NewWriter(w io.Writer) (*Writer, error) {
	switch s.cfg.compression {
	case format.CaseUncompressed:
		sink, err := bytecode.NewRawSink(w, s.cfg.bytecodeOptions()...)
		if err != nil {
			return nil, err
		}

		return s.newWriter(sink, nil)
	case format.CaseZlib:
		ws, ok := w.(io.WriteSeeker)
		if !ok {
			return nil, fmt.Errorf("%w: zlib case data needs an io.WriteSeeker", errs.ErrNotSeekable)
		}
		zw, err := zdata.NewWriter(ws, s.cfg.zdataOptions()...)
		if err != nil {
			return nil, err
		}
		sink, err := bytecode.NewCompressor(zw, s.cfg.bytecodeOptions()...)
		if err != nil {
			return nil, err
		}

		return s.newWriter(sink, func(int64) error { return zw.Close() })
	default:
		sink, err := bytecode.NewCompressor(w, s.cfg.bytecodeOptions()...)
		if err != nil {
			return nil, err
		}

		return s.newWriter(sink, nil)
	}
}

// NewSpoolWriter creates a row writer that spools cases to w.
//
// The spool stores raw elements for uncompressed sessions and a byte-code
// stream otherwise, in frames compressed with the spool codec. Close records
// the case count.
func (s *Session) NewSpoolWriter(w io.Writer) (*Writer, error) {
	sw, err := spool.NewWriter(w, s.dict.Fingerprint(), s.cfg.spoolOptions()...)
	if err != nil {
		return nil, err
	}

	var sink row.ElementSink
	if s.cfg.compression == format.CaseUncompressed {
		sink, err = bytecode.NewRawSink(sw, s.cfg.bytecodeOptions()...)
	} else {
		sink, err = bytecode.NewCompressor(sw, s.cfg.bytecodeOptions()...)
	}
	if err != nil {
		return nil, err
	}

	return s.newWriter(sink, func(cases int64) error {
		sw.SetCaseCount(cases)
		return sw.Close()
	})
}

// NewSpoolReader creates a row reader over a spool written by a session with
// the same dictionary layout.
//
// Returns:
//   - *row.Reader: reader yielding the spooled rows
//   - error: ErrFingerprintMismatch if the spool was written for another layout
func (s *Session) NewSpoolReader(r io.Reader) (*row.Reader, error) {
	sr, err := spool.NewReader(r, s.dict.Fingerprint())
	if err != nil {
		return nil, err
	}

	h := sr.Header()
	bopts := []bytecode.Option{
		bytecode.WithBias(h.Bias),
		bytecode.WithSysMissing(s.cfg.sysMissing),
		bytecode.WithEngine(sr.Engine()),
	}

	var src row.ElementSource
	if h.IsRaw() {
		src, err = bytecode.NewRawSource(sr, bopts...)
	} else {
		src, err = bytecode.NewDecompressor(sr, bopts...)
	}
	if err != nil {
		return nil, err
	}

	return row.NewReader(src, s.dict, append(s.cfg.rowOptions(), row.WithEngine(sr.Engine()))...)
}

// CopySpool moves the case stream of a spool into case data written with
// the session's compression, without decoding it.
//
// The spool must have been written by a session with the same dictionary
// layout, element kind, byte order and bias. ZSAV output requires an
// io.WriteSeeker.
//
// Parameters:
//   - dst: case data destination, positioned after the dictionary
//   - src: the spool
//
// Returns:
//   - int64: number of cases recorded in the spool
//   - error: incompatible spool, or read/write error
func (s *Session) CopySpool(dst io.Writer, src io.Reader) (int64, error) {
	sr, err := spool.NewReader(src, s.dict.Fingerprint())
	if err != nil {
		return 0, err
	}

	h := sr.Header()
	if h.IsRaw() != (s.cfg.compression == format.CaseUncompressed) {
		return 0, fmt.Errorf("%w: spool raw=%t cannot be copied into %s case data",
			errs.ErrUnsupportedCompression, h.IsRaw(), s.cfg.compression)
	}
	if sr.Engine() != s.cfg.engine {
		return 0, fmt.Errorf("%w: spool byte order differs from the session's", errs.ErrInvalidSpoolHeader)
	}
	if !h.IsRaw() && h.Bias != s.cfg.bias {
		return 0, fmt.Errorf("%w: spool bias %v, session bias %v", errs.ErrInvalidSpoolHeader, h.Bias, s.cfg.bias)
	}

	if s.cfg.compression == format.CaseZlib {
		ws, ok := dst.(io.WriteSeeker)
		if !ok {
			return 0, fmt.Errorf("%w: zlib case data needs an io.WriteSeeker", errs.ErrNotSeekable)
		}
		zw, err := zdata.NewWriter(ws, s.cfg.zdataOptions()...)
		if err != nil {
			return 0, err
		}
		if _, err := io.Copy(zw, sr); err != nil {
			return 0, err
		}
		if err := zw.Close(); err != nil {
			return 0, err
		}
	} else if _, err := io.Copy(dst, sr); err != nil {
		return 0, err
	}

	cases, _ := sr.Cases()

	return cases, nil
}

func (s *Session) elementSource(r io.Reader) (row.ElementSource, error) {
	switch s.cfg.compression {
	case format.CaseUncompressed:
		return bytecode.NewRawSource(r, s.cfg.bytecodeOptions()...)
	case format.CaseZlib:
		rs, ok := r.(io.ReadSeeker)
		if !ok {
			return nil, fmt.Errorf("%w: zlib case data needs an io.ReadSeeker", errs.ErrNotSeekable)
		}
		zr, err := zdata.NewReader(rs, s.cfg.zdataOptions()...)
		if err != nil {
			return nil, err
		}

		return bytecode.NewDecompressor(zr, s.cfg.bytecodeOptions()...)
	default:
		return bytecode.NewDecompressor(r, s.cfg.bytecodeOptions()...)
	}
}

func (s *Session) newWriter(sink row.ElementSink, finish func(cases int64) error) (*Writer, error) {
	rows, err := row.NewWriter(sink, s.dict, s.cfg.rowOptions()...)
	if err != nil {
		return nil, err
	}

	return &Writer{rows: rows, finish: finish}, nil
}

// Writer writes rows and finishes the underlying container on Close.
//
// Note: The Writer is NOT thread-safe.
type Writer struct {
	rows   *row.Writer
	finish func(cases int64) error
	closed bool
}

// WriteRow encodes one case. See row.Writer.WriteRow for the error semantics.
func (w *Writer) WriteRow(values []row.Value) error {
	return w.rows.WriteRow(values)
}

// Close ends the case stream and completes the container: the ZSAV trailer
// or the spool terminator. Close is idempotent.
func (w *Writer) Close() error {
	if w.closed {
		return nil
	}
	w.closed = true

	if err := w.rows.Close(); err != nil {
		return err
	}
	if w.finish != nil {
		return w.finish(w.rows.Cases())
	}

	return nil
}

// Cases returns the number of cases written.
func (w *Writer) Cases() int64 {
	return w.rows.Cases()
}
